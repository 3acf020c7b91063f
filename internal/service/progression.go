package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Progression constants.
const (
	CompoundIncrementKg  = 2.5
	IsolationIncrementKg = 1.25
	IsolationMaxReps     = 15
	DeloadFactor         = 0.9
)

// Target is the planned load for the next session of one exercise.
type Target struct {
	Weight float64
	Reps   int
	Reason string
}

// NextTarget applies linear progression to the sets of the last session of
// an exercise. baseReps is the rep target of the new day.
//
//   - no history: weight 0 (user picks), baseReps
//   - every set done at planned reps or more: compound +2.5 kg; isolation +1 rep
//     up to 15, then +1.25 kg back at baseReps
//   - anything missed: -10% weight rounded to 0.5 kg, same reps
func NextTarget(prev []domain.ExerciseSet, compound bool, baseReps int) Target {
	if len(prev) == 0 {
		return Target{Weight: 0, Reps: baseReps, Reason: "no history"}
	}

	weight := 0.0
	prevReps := 0
	allDone := true
	for _, s := range prev {
		if w := s.EffectiveWeight(); w > weight {
			weight = w
		}
		if s.PlannedReps > prevReps {
			prevReps = s.PlannedReps
		}
		if !s.Completed || s.EffectiveReps() < s.PlannedReps {
			allDone = false
		}
	}
	if prevReps == 0 {
		prevReps = baseReps
	}

	if !allDone {
		return Target{Weight: roundToHalf(weight * DeloadFactor), Reps: prevReps, Reason: "missed reps, deload"}
	}
	if weight == 0 {
		// Bodyweight: only reps can go up.
		return Target{Weight: 0, Reps: min(prevReps+1, IsolationMaxReps), Reason: "add a rep"}
	}
	if compound {
		return Target{Weight: weight + CompoundIncrementKg, Reps: prevReps, Reason: "add weight"}
	}
	if prevReps+1 <= IsolationMaxReps {
		return Target{Weight: weight, Reps: prevReps + 1, Reason: "add a rep"}
	}
	return Target{Weight: weight + IsolationIncrementKg, Reps: baseReps, Reason: "add weight, reset reps"}
}

func roundToHalf(w float64) float64 {
	return math.Round(w*2) / 2
}

// recentHistoryLimit bounds the completed sets scanned to find the last session.
const recentHistoryLimit = 50

// lastSessionSets returns every set of exerciseID in the most recent session
// before date that has at least one completed set of it.
func lastSessionSets(ctx context.Context, store *repository.Store, userID, exerciseID primitive.ObjectID, before string) ([]domain.ExerciseSet, error) {
	recent, err := store.Sets.ListRecentCompleted(ctx, userID, exerciseID, recentHistoryLimit)
	if err != nil {
		return nil, err
	}
	var sessionID primitive.ObjectID
	for _, s := range recent {
		if s.Date < before {
			sessionID = s.SessionID
			break
		}
	}
	if sessionID.IsZero() {
		return nil, nil
	}
	all, err := store.Sets.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ExerciseSet, 0, len(all))
	for _, s := range all {
		if s.ExerciseID == exerciseID {
			out = append(out, s)
		}
	}
	return out, nil
}

// targetFor is NextTarget over the stored history of an exercise.
func targetFor(ctx context.Context, store *repository.Store, userID primitive.ObjectID, ex *domain.Exercise, before string, baseReps int) (Target, error) {
	prev, err := lastSessionSets(ctx, store, userID, ex.ID, before)
	if err != nil {
		return Target{}, err
	}
	return NextTarget(prev, ex.Compound, baseReps), nil
}
