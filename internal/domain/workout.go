package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the ISO calendar date format used for session dates.
const DateLayout = "2006-01-02"

// Intensity labels a session's load.
type Intensity string

const (
	IntensityHeavy    Intensity = "heavy"
	IntensityModerate Intensity = "moderate"
	IntensityLight    Intensity = "light"
)

// WorkoutType enumerates the kinds of sessions.
type WorkoutType string

const (
	WorkoutStrength    WorkoutType = "strength"
	WorkoutHypertrophy WorkoutType = "hypertrophy"
	WorkoutCardio      WorkoutType = "cardio"
	WorkoutMobility    WorkoutType = "mobility"
	WorkoutRest        WorkoutType = "rest"
	WorkoutMixed       WorkoutType = "mixed"
)

// ParseWorkoutType maps free text onto a WorkoutType, defaulting to mixed.
func ParseWorkoutType(s string) WorkoutType {
	switch t := WorkoutType(s); t {
	case WorkoutStrength, WorkoutHypertrophy, WorkoutCardio, WorkoutMobility, WorkoutRest, WorkoutMixed:
		return t
	}
	return WorkoutMixed
}

// WorkoutSession is one calendar day's workout for a user.
// There is exactly one session per (user, date).
type WorkoutSession struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID      primitive.ObjectID `bson:"planId,omitempty" json:"planId,omitempty"`
	Date        string             `bson:"date" json:"date"` // YYYY-MM-DD
	WeekNumber  *int               `bson:"weekNumber,omitempty" json:"weekNumber,omitempty"`
	DayOfWeek   *int               `bson:"dayOfWeek,omitempty" json:"dayOfWeek,omitempty"` // 1 (Mon) - 7 (Sun)
	Intensity   Intensity          `bson:"intensity,omitempty" json:"intensity,omitempty"`
	WorkoutType WorkoutType        `bson:"workoutType" json:"workoutType"`
	Explanation string             `bson:"explanation,omitempty" json:"explanation,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseSet is one planned/actual set within a session.
type ExerciseSet struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID     primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseID    primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	SetNumber     int                `bson:"setNumber" json:"setNumber"`
	PlannedWeight float64            `bson:"plannedWeight" json:"plannedWeight"`
	PlannedReps   int                `bson:"plannedReps" json:"plannedReps"`
	ActualWeight  *float64           `bson:"actualWeight,omitempty" json:"actualWeight,omitempty"`
	ActualReps    *int               `bson:"actualReps,omitempty" json:"actualReps,omitempty"`
	RPE           *float64           `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Completed     bool               `bson:"completed" json:"completed"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Date          string             `bson:"date" json:"date"` // Denormalized from the session for range queries
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveWeight is the actual weight if logged, else the planned one.
func (s *ExerciseSet) EffectiveWeight() float64 {
	if s.ActualWeight != nil {
		return *s.ActualWeight
	}
	return s.PlannedWeight
}

// EffectiveReps is the actual reps if logged, else the planned ones.
func (s *ExerciseSet) EffectiveReps() int {
	if s.ActualReps != nil {
		return *s.ActualReps
	}
	return s.PlannedReps
}
