package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalCategory is the fixed goal taxonomy.
type GoalCategory string

const (
	GoalStrength        GoalCategory = "strength"
	GoalBodyComposition GoalCategory = "body_composition"
	GoalEndurance       GoalCategory = "endurance"
	GoalMobility        GoalCategory = "mobility"
	GoalSkill           GoalCategory = "skill"
)

// Valid reports whether c is part of the taxonomy.
func (c GoalCategory) Valid() bool {
	switch c {
	case GoalStrength, GoalBodyComposition, GoalEndurance, GoalMobility, GoalSkill:
		return true
	}
	return false
}

// GoalDirection is the direction the target metric should move in.
type GoalDirection string

const (
	DirectionIncrease GoalDirection = "increase"
	DirectionDecrease GoalDirection = "decrease"
	DirectionMaintain GoalDirection = "maintain"
)

// GoalTarget names the movement and metric a goal is measured against.
type GoalTarget struct {
	Exercise string `bson:"exercise,omitempty" json:"exercise,omitempty"` // e.g. "Bench Press"
	Metric   string `bson:"metric,omitempty" json:"metric,omitempty"`     // e.g. "1rm", "5k_time"
}

// Goal is a user's training objective. At most one is active per user.
type Goal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Description string             `bson:"description" json:"description"` // The free text the user typed
	Category    GoalCategory       `bson:"category" json:"category"`
	Direction   GoalDirection      `bson:"direction" json:"direction"`
	Target      *GoalTarget        `bson:"target,omitempty" json:"target,omitempty"`
	Value       float64            `bson:"value,omitempty" json:"value,omitempty"`
	Unit        string             `bson:"unit,omitempty" json:"unit,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
