package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StrategyDraft is the last generated, not yet saved, strategy of a user.
type StrategyDraft struct {
	GoalID    primitive.ObjectID `json:"goalId"`
	GoalText  string             `json:"goalText"`
	Strategy  TrainingStrategy   `json:"strategy"`
	Diet      DietPlan           `json:"diet"`
	CreatedAt time.Time          `json:"createdAt"`
}
