package domain

import (
	"errors"
	"fmt"
	"strings"
)

// EquipmentAccessKind tags the shape of an Equipment value.
type EquipmentAccessKind string

const (
	EquipmentAccessNone   EquipmentAccessKind = "none"   // bodyweight only, Items must be empty
	EquipmentAccessHome   EquipmentAccessKind = "home"   // Items lists what is at home
	EquipmentAccessGym    EquipmentAccessKind = "gym"    // full commercial gym, Items ignored
	EquipmentAccessCustom EquipmentAccessKind = "custom" // free-form Items, at least one
)

// EquipmentType is the equipment requirement of a catalog exercise.
type EquipmentType string

const (
	EquipBarbell    EquipmentType = "barbell"
	EquipDumbbell   EquipmentType = "dumbbell"
	EquipMachine    EquipmentType = "machine"
	EquipCable      EquipmentType = "cable"
	EquipKettlebell EquipmentType = "kettlebell"
	EquipBand       EquipmentType = "band"
	EquipBodyweight EquipmentType = "bodyweight"
	EquipNone       EquipmentType = "none"
)

// Equipment is the user's equipment access as a tagged union.
type Equipment struct {
	Kind  EquipmentAccessKind `bson:"kind,omitempty" json:"kind,omitempty"`
	Items []EquipmentType     `bson:"items,omitempty" json:"items,omitempty"`
}

var ErrInvalidEquipment = errors.New("invalid equipment")

// Validate checks that Items fits the shape allowed by Kind.
func (e Equipment) Validate() error {
	switch e.Kind {
	case "", EquipmentAccessNone:
		if len(e.Items) > 0 {
			return fmt.Errorf("%w: kind %q does not take items", ErrInvalidEquipment, EquipmentAccessNone)
		}
	case EquipmentAccessGym:
	case EquipmentAccessHome, EquipmentAccessCustom:
		if e.Kind == EquipmentAccessCustom && len(e.Items) == 0 {
			return fmt.Errorf("%w: kind %q needs at least one item", ErrInvalidEquipment, e.Kind)
		}
		for _, it := range e.Items {
			if strings.TrimSpace(string(it)) == "" {
				return fmt.Errorf("%w: empty item", ErrInvalidEquipment)
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEquipment, e.Kind)
	}
	return nil
}

// Allows reports whether an exercise needing t can be performed.
func (e Equipment) Allows(t EquipmentType) bool {
	if t == "" || t == EquipBodyweight || t == EquipNone {
		return true
	}
	switch e.Kind {
	case EquipmentAccessGym:
		return true
	case EquipmentAccessHome, EquipmentAccessCustom:
		for _, it := range e.Items {
			if it == t {
				return true
			}
		}
	}
	return false
}

// Describe renders the equipment for a prompt.
func (e Equipment) Describe() string {
	switch e.Kind {
	case EquipmentAccessGym:
		return "full gym access"
	case EquipmentAccessHome, EquipmentAccessCustom:
		if len(e.Items) == 0 {
			return "no equipment"
		}
		parts := make([]string, 0, len(e.Items))
		for _, it := range e.Items {
			parts = append(parts, string(it))
		}
		return strings.Join(parts, ", ")
	default:
		return "no equipment"
	}
}
