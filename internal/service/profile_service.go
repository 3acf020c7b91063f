package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity event types sent by the identity provider webhook.
const (
	IdentityUserCreated = "user.created"
	IdentityUserUpdated = "user.updated"
	IdentityUserDeleted = "user.deleted"
)

// IdentityEvent is the part of an identity webhook payload we use.
type IdentityEvent struct {
	Type       string
	ExternalID string
	Email      string
	Name       string
}

// ProfilePatch holds optional profile changes. Nil fields stay unchanged.
type ProfilePatch struct {
	Name       *string
	WeightKg   *float64
	HeightCm   *float64
	Age        *int
	Experience *domain.ExperienceLevel
	Equipment  *domain.Equipment
	Injuries   []string
}

// GoalInput describes a new goal. Category and Direction are inferred from
// Description when empty.
type GoalInput struct {
	Description string
	Category    domain.GoalCategory
	Direction   domain.GoalDirection
	Target      *domain.GoalTarget
	Value       float64
	Unit        string
}

type ProfileService interface {
	SyncIdentity(ctx context.Context, ev IdentityEvent) (*domain.User, error)
	// ResolveUser maps an identity reference to a user, creating it on first sight.
	ResolveUser(ctx context.Context, externalID string) (*domain.User, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, patch ProfilePatch) (*domain.User, error)
	CreateGoal(ctx context.Context, userID primitive.ObjectID, in GoalInput) (*domain.Goal, error)
	// ActiveGoal returns nil, nil when the user has no active goal.
	ActiveGoal(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error)
	CompleteGoal(ctx context.Context, userID, goalID primitive.ObjectID) (*domain.Goal, error)
}

type profileService struct {
	store *repository.Store
	log   *logger.Logger
}

func NewProfileService(store *repository.Store, log *logger.Logger) ProfileService {
	return &profileService{store: store, log: log}
}

// SyncIdentity upserts the user behind an identity event. Deletions are
// acknowledged without touching data.
func (s *profileService) SyncIdentity(ctx context.Context, ev IdentityEvent) (*domain.User, error) {
	switch ev.Type {
	case IdentityUserCreated, IdentityUserUpdated:
	case IdentityUserDeleted:
		s.log.Info("ignoring identity deletion", "externalId", ev.ExternalID)
		return nil, nil
	default:
		return nil, invalidf("unsupported identity event %q", ev.Type)
	}
	if strings.TrimSpace(ev.ExternalID) == "" {
		return nil, invalidf("identity event without user id")
	}
	user, err := s.store.Users.UpsertByExternalID(ctx, &domain.User{
		ExternalID: ev.ExternalID,
		Email:      strings.ToLower(strings.TrimSpace(ev.Email)),
		Name:       strings.TrimSpace(ev.Name),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("identity synced", "event", ev.Type, "userId", user.ID.Hex())
	return user, nil
}

func (s *profileService) ResolveUser(ctx context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.store.Users.GetByExternalID(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.store.Users.UpsertByExternalID(ctx, &domain.User{ExternalID: externalID})
}

func (s *profileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, patch ProfilePatch) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.WeightKg != nil {
		if *patch.WeightKg <= 0 || *patch.WeightKg > 500 {
			return nil, invalidf("weightKg %.1f out of range", *patch.WeightKg)
		}
		user.WeightKg = *patch.WeightKg
	}
	if patch.HeightCm != nil {
		if *patch.HeightCm <= 0 || *patch.HeightCm > 300 {
			return nil, invalidf("heightCm %.1f out of range", *patch.HeightCm)
		}
		user.HeightCm = *patch.HeightCm
	}
	if patch.Age != nil {
		if *patch.Age < 10 || *patch.Age > 120 {
			return nil, invalidf("age %d out of range", *patch.Age)
		}
		user.Age = *patch.Age
	}
	if patch.Experience != nil {
		if !patch.Experience.Valid() {
			return nil, invalidf("unknown experience level %q", *patch.Experience)
		}
		user.Experience = *patch.Experience
	}
	if patch.Equipment != nil {
		if err := patch.Equipment.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		user.Equipment = *patch.Equipment
	}
	if patch.Injuries != nil {
		user.Injuries = patch.Injuries
	}

	if err := s.store.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// categoryRule maps goal keywords to a category. Order matters.
type categoryRule struct {
	keywords  []string
	category  domain.GoalCategory
	direction domain.GoalDirection
}

var categoryRules = []categoryRule{
	{[]string{"lose", "fat", "weight", "cut"}, domain.GoalBodyComposition, domain.DirectionDecrease},
	{[]string{"strength", "strong", "power", "lift"}, domain.GoalStrength, domain.DirectionIncrease},
	{[]string{"endurance", "cardio", "run", "marathon"}, domain.GoalEndurance, domain.DirectionIncrease},
	{[]string{"mobility", "flexibility"}, domain.GoalMobility, domain.DirectionIncrease},
	{[]string{"skill", "technique"}, domain.GoalSkill, domain.DirectionIncrease},
}

// InferGoalCategory classifies free goal text. First matching rule wins;
// the fallback is body composition (increase).
func InferGoalCategory(text string) (domain.GoalCategory, domain.GoalDirection) {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, rule.direction
			}
		}
	}
	return domain.GoalBodyComposition, domain.DirectionIncrease
}

// CreateGoal makes the new goal the user's only active one.
func (s *profileService) CreateGoal(ctx context.Context, userID primitive.ObjectID, in GoalInput) (*domain.Goal, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, invalidf("goal description is required")
	}
	category, direction := in.Category, in.Direction
	if category == "" {
		category, direction = InferGoalCategory(desc)
	} else if !category.Valid() {
		return nil, invalidf("unknown goal category %q", category)
	}
	if direction == "" {
		direction = domain.DirectionIncrease
	}

	goal := &domain.Goal{
		UserID:      userID,
		Description: desc,
		Category:    category,
		Direction:   direction,
		Target:      in.Target,
		Value:       in.Value,
		Unit:        in.Unit,
		IsActive:    true,
	}
	err := s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.store.Goals.DeactivateAllForUser(ctx, userID); err != nil {
			return err
		}
		_, err := s.store.Goals.Create(ctx, goal)
		return err
	})
	if err != nil {
		s.log.Error("goal activation failed", "userId", userID.Hex(), "error", err)
		return nil, err
	}
	return goal, nil
}

func (s *profileService) ActiveGoal(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error) {
	goal, err := s.store.Goals.GetActiveByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return goal, err
}

// CompleteGoal marks the goal completed and inactive. Completed goals stay
// in history.
func (s *profileService) CompleteGoal(ctx context.Context, userID, goalID primitive.ObjectID) (*domain.Goal, error) {
	goal, err := s.store.Goals.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotFound
	}
	if goal.Completed {
		return goal, nil
	}
	now := time.Now().UTC()
	goal.Completed = true
	goal.CompletedAt = &now
	goal.IsActive = false
	if err := s.store.Goals.Update(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}
