// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingPlan holds the strategy and diet generated for a goal.
// Only one plan per user is active; regenerating inserts a new plan.
type TrainingPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	GoalID    primitive.ObjectID `bson:"goalId,omitempty" json:"goalId,omitempty"`
	Strategy  TrainingStrategy   `bson:"strategy" json:"strategy"`
	Diet      DietPlan           `bson:"diet" json:"diet"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TrainingStrategy is the high-level coaching intent derived from a goal.
type TrainingStrategy struct {
	GoalType              string                `bson:"goalType" json:"goal_type"`
	PrimaryFocus          string                `bson:"primaryFocus" json:"primary_focus"`
	TimeHorizonWeeks      int                   `bson:"timeHorizonWeeks" json:"time_horizon_weeks"`
	TrainingPriorities    []TrainingPriority    `bson:"trainingPriorities" json:"training_priorities"`
	SecondarySupport      []string              `bson:"secondarySupport" json:"secondary_support"`
	RecommendedFrequency  map[string]any        `bson:"recommendedFrequency" json:"recommended_frequency"`
	IntensityDistribution IntensityDistribution `bson:"intensityDistribution" json:"intensity_distribution"`
	SplitType             string                `bson:"splitType" json:"split_type"`
	Phases                []StrategyPhase       `bson:"phases,omitempty" json:"phases,omitempty"`
}

// TrainingPriority is one entry of the prioritized focus list.
type TrainingPriority struct {
	Name      string `bson:"name" json:"name"`
	Frequency string `bson:"frequency,omitempty" json:"frequency,omitempty"`
	Notes     string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// IntensityDistribution holds heavy/moderate/light fractions. They are not
// guaranteed to sum to 1.
type IntensityDistribution struct {
	Heavy    float64 `bson:"heavy" json:"heavy"`
	Moderate float64 `bson:"moderate" json:"moderate"`
	Light    float64 `bson:"light" json:"light"`
}

// StrategyPhase is one block of the phased overview.
type StrategyPhase struct {
	Name  string `bson:"name" json:"name"`
	Weeks int    `bson:"weeks" json:"weeks"`
	Focus string `bson:"focus,omitempty" json:"focus,omitempty"`
}

// DietPlan is the trimmed nutrition plan: daily calories and named meals.
type DietPlan struct {
	DailyCalories int        `bson:"dailyCalories" json:"dailyCalories"`
	Meals         []DietMeal `bson:"meals" json:"meals"`
}

// DietMeal is a meal slot of a DietPlan.
type DietMeal struct {
	Name     string   `bson:"name" json:"name"`
	Foods    []string `bson:"foods" json:"foods"`
	Calories int      `bson:"calories" json:"calories"`
}

// SpreadCalories sets every meal to floor(DailyCalories / len(Meals)).
func (d *DietPlan) SpreadCalories() {
	if len(d.Meals) == 0 {
		return
	}
	per := d.DailyCalories / len(d.Meals)
	for i := range d.Meals {
		d.Meals[i].Calories = per
	}
}
