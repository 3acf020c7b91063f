package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrGeneration   = errors.New("generation failed")

	ErrUserNotFound         = errors.New("user not found")
	ErrGoalNotFound         = errors.New("goal not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrNoActivePlan         = errors.New("no active plan")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSetNotFound          = errors.New("set not found")
	ErrMealNotFound         = errors.New("meal not found")
	ErrDateOccupied         = errors.New("date already has a session")
	ErrNoSetsInSession      = errors.New("session has no sets")
	ErrExerciseNotInCatalog = errors.New("exercise not found in catalog")
	ErrExerciseNotInSession = errors.New("exercise not in session")
	ErrNoAlternative        = errors.New("no alternative available")
	ErrAlreadyBlocked       = errors.New("item is already blocked")
)

// invalidf wraps ErrInvalidInput with a message.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// LiftValidationError reports a goal lift that is not an allowed primary lift.
type LiftValidationError struct {
	Name       string
	Suggestion string
}

func (e *LiftValidationError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("%q is not a primary lift", e.Name)
	}
	return fmt.Sprintf("%q is not a primary lift, did you mean %q?", e.Name, e.Suggestion)
}
