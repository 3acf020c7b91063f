package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/llm"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/matching"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DraftStore keeps the last generated strategy of a user until it is saved.
type DraftStore interface {
	SaveStrategyDraft(ctx context.Context, userID primitive.ObjectID, draft *domain.StrategyDraft) error
	// GetStrategyDraft returns nil, nil when no draft exists.
	GetStrategyDraft(ctx context.Context, userID primitive.ObjectID) (*domain.StrategyDraft, error)
}

// ProgramResult is the outcome of GenerateProgram.
type ProgramResult struct {
	Goal     *domain.Goal            `json:"goal"`
	Strategy domain.TrainingStrategy `json:"strategy"`
	Diet     domain.DietPlan         `json:"dietPlan"`
}

// SavePlanInput selects what SaveLongTermPlan persists. Without a Strategy
// the cached draft is used.
type SavePlanInput struct {
	GoalID   *primitive.ObjectID
	Strategy *domain.TrainingStrategy
	Diet     *domain.DietPlan
}

// LiftValidation is the result of ValidatePrimaryLiftForGoal.
type LiftValidation struct {
	IsValid    bool   `json:"isValid"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

type StrategyService interface {
	GenerateProgram(ctx context.Context, userID primitive.ObjectID, goalText string) (*ProgramResult, error)
	SaveLongTermPlan(ctx context.Context, userID primitive.ObjectID, in SavePlanInput) (*domain.TrainingPlan, error)
	// ActivePlan returns nil, nil when the user has no active plan.
	ActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error)
	ValidatePrimaryLiftForGoal(ctx context.Context, name *string) (LiftValidation, error)
}

type strategyService struct {
	store    *repository.Store
	profiles ProfileService
	gen      llm.Generator
	drafts   DraftStore
	log      *logger.Logger
}

// NewStrategyService creates the strategy generator. drafts may be nil.
func NewStrategyService(store *repository.Store, profiles ProfileService, gen llm.Generator, drafts DraftStore, log *logger.Logger) StrategyService {
	return &strategyService{store: store, profiles: profiles, gen: gen, drafts: drafts, log: log}
}

// GenerateProgram asks the generator for a strategy and diet, then records
// the goal. The strategy is only cached as a draft here.
func (s *strategyService) GenerateProgram(ctx context.Context, userID primitive.ObjectID, goalText string) (*ProgramResult, error) {
	goalText = strings.TrimSpace(goalText)
	if goalText == "" {
		return nil, invalidf("goal is required")
	}
	user, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 1. Generate
	text, err := s.gen.Complete(ctx, llm.Request{
		Kind:   llm.KindStrategy,
		System: strategySystemPrompt,
		User:   buildStrategyPrompt(goalText, user),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	// 2. Parse and normalize; no retry on failure
	strategy, diet, err := ParseProgram(text)
	if err != nil {
		s.log.Warn("strategy response rejected", "userId", userID.Hex(), "error", err)
		return nil, err
	}

	// 3. Record the goal
	goal, err := s.profiles.CreateGoal(ctx, userID, GoalInput{Description: goalText, Target: goalTarget(goalText)})
	if err != nil {
		return nil, err
	}

	if s.drafts != nil {
		draft := &domain.StrategyDraft{GoalID: goal.ID, GoalText: goalText, Strategy: strategy, Diet: diet, CreatedAt: time.Now().UTC()}
		if err := s.drafts.SaveStrategyDraft(ctx, userID, draft); err != nil {
			s.log.Warn("failed to cache strategy draft", "userId", userID.Hex(), "error", err)
		}
	}
	return &ProgramResult{Goal: goal, Strategy: strategy, Diet: diet}, nil
}

// goalTarget picks the lift a numeric goal is about, if any.
func goalTarget(goalText string) *domain.GoalTarget {
	if !numericTarget.MatchString(goalText) {
		return nil
	}
	lifts := liftsNamed(goalText)
	if len(lifts) == 0 {
		return nil
	}
	l, ok := matching.FindMatchingPrimaryLift(goalText)
	if !ok {
		l = lifts[0]
	}
	return &domain.GoalTarget{Exercise: l.Name, Metric: "1rm"}
}

// SaveLongTermPlan replaces the user's active plan inside one transaction.
func (s *strategyService) SaveLongTermPlan(ctx context.Context, userID primitive.ObjectID, in SavePlanInput) (*domain.TrainingPlan, error) {
	plan := &domain.TrainingPlan{UserID: userID, IsActive: true}

	switch {
	case in.Strategy != nil:
		plan.Strategy = *in.Strategy
		if in.Diet != nil {
			plan.Diet = *in.Diet
			plan.Diet.SpreadCalories()
		}
	case s.drafts != nil:
		draft, err := s.drafts.GetStrategyDraft(ctx, userID)
		if err != nil {
			return nil, err
		}
		if draft == nil {
			return nil, invalidf("no strategy given and no recent draft to save")
		}
		plan.Strategy = draft.Strategy
		plan.Diet = draft.Diet
		plan.GoalID = draft.GoalID
	default:
		return nil, invalidf("strategy is required")
	}
	if plan.Diet.Meals == nil {
		plan.Diet.Meals = []domain.DietMeal{}
	}

	if in.GoalID != nil {
		goal, err := s.store.Goals.GetByID(ctx, *in.GoalID)
		if err != nil || goal.UserID != userID {
			return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, in.GoalID.Hex())
		}
		plan.GoalID = goal.ID
	} else if plan.GoalID.IsZero() {
		if goal, err := s.profiles.ActiveGoal(ctx, userID); err == nil && goal != nil {
			plan.GoalID = goal.ID
		}
	}

	err := s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := s.store.Plans.DeactivateAllForUser(ctx, userID)
		if err != nil {
			return err
		}
		if n > 0 {
			s.log.Debug("deactivated previous plans", "userId", userID.Hex(), "count", n)
		}
		_, err = s.store.Plans.Create(ctx, plan)
		return err
	})
	if err != nil {
		s.log.Error("plan activation failed", "userId", userID.Hex(), "error", err)
		return nil, err
	}
	return plan, nil
}

func (s *strategyService) ActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.store.Plans.GetActiveByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return plan, err
}

// ValidatePrimaryLiftForGoal accepts a blank name ("overall strength").
// Otherwise the name must resolve to a catalog exercise whose name is a
// primary lift.
func (s *strategyService) ValidatePrimaryLiftForGoal(ctx context.Context, name *string) (LiftValidation, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return LiftValidation{IsValid: true}, nil
	}
	query := matching.Normalize(*name)

	catalog, err := s.store.Exercises.ListAll(ctx)
	if err != nil {
		return LiftValidation{}, err
	}
	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.Name
	}

	suggestion := ""
	if l, ok := matching.NearestPrimaryLift(query); ok {
		suggestion = l.Name
	}

	m := matching.Best(matching.RankedScorer{}, query, names)
	if !m.Found() || m.Tier < matching.TierContains {
		msg := fmt.Sprintf("%s: %q", ErrExerciseNotInCatalog, *name)
		if suggestion != "" {
			msg = fmt.Sprintf("%s, did you mean %q?", msg, suggestion)
		}
		return LiftValidation{IsValid: false, Error: msg, Suggestion: suggestion}, nil
	}
	if !matching.IsPrimaryLift(catalog[m.Index].Name) {
		verr := &LiftValidationError{Name: catalog[m.Index].Name, Suggestion: suggestion}
		return LiftValidation{IsValid: false, Error: verr.Error(), Suggestion: suggestion}, nil
	}
	return LiftValidation{IsValid: true}, nil
}
