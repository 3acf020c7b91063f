// internal/domain/exercise.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a catalog movement. Read-only outside catalog import.
type Exercise struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	BodyParts []string           `bson:"bodyParts" json:"bodyParts"` // e.g. "chest", "triceps"
	Compound  bool               `bson:"compound" json:"compound"`
	Equipment EquipmentType      `bson:"equipment,omitempty" json:"equipment,omitempty"`
	MediaKey  string             `bson:"mediaKey,omitempty" json:"-"` // Object key of a demo video, if any
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Targets reports whether the exercise trains the given body part.
func (e *Exercise) Targets(bodyPart string) bool {
	for _, bp := range e.BodyParts {
		if strings.EqualFold(bp, bodyPart) {
			return true
		}
	}
	return false
}
