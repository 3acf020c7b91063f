package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExperienceLevel describes how long a user has been training.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// Valid reports whether the level is one of the known values.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

// User is a registered person, created on the first identity sync event.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID string             `bson:"externalId" json:"externalId"` // Identity provider reference, unique
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"`

	// --- Body metrics ---
	WeightKg float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	HeightCm float64 `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	Age      int     `bson:"age,omitempty" json:"age,omitempty"`

	Experience ExperienceLevel `bson:"experience,omitempty" json:"experience,omitempty"`
	Equipment  Equipment       `bson:"equipment" json:"equipment"`
	Injuries   []string        `bson:"injuries,omitempty" json:"injuries,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasEquipment is true when the user has anything beyond bodyweight.
func (u *User) HasEquipment() bool {
	return u.Equipment.Kind != "" && u.Equipment.Kind != EquipmentAccessNone
}
