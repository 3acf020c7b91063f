package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/matching"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Limits are the volume ceilings applied to a materialized day.
type Limits struct {
	MaxSetsPerSession      int
	MaxSetsPerBodyPartWeek int
}

// DefaultLimits match the configuration defaults.
var DefaultLimits = Limits{MaxSetsPerSession: 24, MaxSetsPerBodyPartWeek: 20}

type SkippedExercise struct {
	Name       string `json:"name"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion,omitempty"`
}

type TrimmedExercise struct {
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Kept      int    `json:"kept"`
	Reason    string `json:"reason"`
}

// MaterializeResult is the persisted day plus what was left out of it.
type MaterializeResult struct {
	Session      domain.WorkoutSession `json:"session"`
	Sets         []domain.ExerciseSet  `json:"sets"`
	Meals        []domain.DailyMeal    `json:"meals"`
	Skipped      []SkippedExercise     `json:"skipped"`
	Trimmed      []TrimmedExercise     `json:"trimmed"`
	SkippedMeals []string              `json:"skippedMeals,omitempty"`
	Superseded   bool                  `json:"superseded"`
}

type Materializer interface {
	// Materialize writes day as the only session of the user on day.Date.
	Materialize(ctx context.Context, userID primitive.ObjectID, plan *domain.TrainingPlan, day *DayPlan) (*MaterializeResult, error)
	// GenerateDay plans and materializes date.
	GenerateDay(ctx context.Context, userID primitive.ObjectID, date string) (*MaterializeResult, error)
}

type materializer struct {
	store   *repository.Store
	planner DailyPlanService
	scorer  matching.Scorer
	limits  Limits
	log     *logger.Logger
}

// NewMaterializer creates the plan-to-execution materializer. A nil scorer
// means matching.RankedScorer.
func NewMaterializer(store *repository.Store, planner DailyPlanService, scorer matching.Scorer, limits Limits, log *logger.Logger) Materializer {
	if scorer == nil {
		scorer = matching.RankedScorer{}
	}
	if limits.MaxSetsPerSession <= 0 {
		limits.MaxSetsPerSession = DefaultLimits.MaxSetsPerSession
	}
	if limits.MaxSetsPerBodyPartWeek <= 0 {
		limits.MaxSetsPerBodyPartWeek = DefaultLimits.MaxSetsPerBodyPartWeek
	}
	return &materializer{store: store, planner: planner, scorer: scorer, limits: limits, log: log}
}

func (m *materializer) GenerateDay(ctx context.Context, userID primitive.ObjectID, date string) (*MaterializeResult, error) {
	day, plan, err := m.planner.Plan(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return m.Materialize(ctx, userID, plan, day)
}

// plannedSets is one resolved exercise with its load, before IDs exist.
type plannedSets struct {
	exercise *domain.Exercise
	count    int
	target   Target
}

func (m *materializer) Materialize(ctx context.Context, userID primitive.ObjectID, plan *domain.TrainingPlan, day *DayPlan) (*MaterializeResult, error) {
	if day == nil {
		return nil, invalidf("day plan is required")
	}
	date, err := parseDate(day.Date)
	if err != nil {
		return nil, err
	}
	user, err := m.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}
	catalog, err := loadCatalog(ctx, m.store)
	if err != nil {
		return nil, err
	}
	blocked, err := loadBlocked(ctx, m.store, userID)
	if err != nil {
		return nil, err
	}

	result := &MaterializeResult{
		Sets:    []domain.ExerciseSet{},
		Meals:   []domain.DailyMeal{},
		Skipped: []SkippedExercise{},
		Trimmed: []TrimmedExercise{},
	}

	// (a) resolve names, excluding blocked and unusable exercises
	resolved := make([]plannedSets, 0, len(day.Exercises))
	seen := map[primitive.ObjectID]bool{}
	for _, pe := range day.Exercises {
		ex, match := catalog.resolve(m.scorer, pe.Name)
		switch {
		case ex == nil:
			result.Skipped = append(result.Skipped, SkippedExercise{Name: pe.Name, Reason: ErrExerciseNotInCatalog.Error(), Suggestion: catalog.suggestion(match)})
			continue
		case blocked.Has(domain.BlockedExercise, ex.ID):
			alt := catalog.alternative(primaryBodyPart(ex), blocked, user.Equipment, seen)
			result.Skipped = append(result.Skipped, SkippedExercise{Name: pe.Name, Reason: "blocked", Suggestion: nameOf(alt)})
			continue
		case !user.Equipment.Allows(ex.Equipment):
			alt := catalog.alternative(primaryBodyPart(ex), blocked, user.Equipment, seen)
			result.Skipped = append(result.Skipped, SkippedExercise{Name: pe.Name, Reason: fmt.Sprintf("requires %s", ex.Equipment), Suggestion: nameOf(alt)})
			continue
		case seen[ex.ID]:
			result.Skipped = append(result.Skipped, SkippedExercise{Name: pe.Name, Reason: "duplicate of " + ex.Name})
			continue
		}
		seen[ex.ID] = true

		// (b) progression
		target, err := targetFor(ctx, m.store, userID, ex, day.Date, pe.Reps)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, plannedSets{exercise: ex, count: pe.Sets, target: target})
	}

	// (c) volume ceilings
	weekly, err := m.weeklyBodyPartSets(ctx, userID, date, day.Date, catalog)
	if err != nil {
		return nil, err
	}
	sessionLeft := m.limits.MaxSetsPerSession
	for i := range resolved {
		ps := &resolved[i]
		bp := primaryBodyPart(ps.exercise)
		kept := min(ps.count, sessionLeft, max(m.limits.MaxSetsPerBodyPartWeek-weekly[bp], 0))
		if kept < ps.count {
			reason := "weekly body part volume"
			if sessionLeft < ps.count && sessionLeft <= m.limits.MaxSetsPerBodyPartWeek-weekly[bp] {
				reason = "session volume"
			}
			result.Trimmed = append(result.Trimmed, TrimmedExercise{Name: ps.exercise.Name, Requested: ps.count, Kept: kept, Reason: reason})
		}
		ps.count = kept
		sessionLeft -= kept
		weekly[bp] += kept
	}

	session := domain.WorkoutSession{
		UserID:      userID,
		Date:        day.Date,
		Intensity:   day.Intensity,
		WorkoutType: day.WorkoutType,
		Explanation: day.Explanation,
	}
	if session.WorkoutType == "" {
		session.WorkoutType = domain.WorkoutMixed
	}
	dow := isoWeekday(date)
	session.DayOfWeek = &dow
	if plan != nil {
		session.PlanID = plan.ID
		if days := daysBetween(plan.CreatedAt, date); days >= 0 {
			week := days/7 + 1
			session.WeekNumber = &week
		}
	}

	// (d) one transaction: supersede, then write session, sets and meals
	err = m.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		result.Superseded = false
		result.SkippedMeals = nil
		existing, err := m.store.Sessions.GetByUserAndDate(ctx, userID, day.Date)
		switch {
		case err == nil:
			if err := deleteSessionCascade(ctx, m.store, existing.ID); err != nil {
				return err
			}
			result.Superseded = true
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		s := session
		if _, err := m.store.Sessions.Create(ctx, &s); err != nil {
			return err
		}
		sets := buildSets(s, resolved)
		if err := m.store.Sets.CreateMany(ctx, sets); err != nil {
			return err
		}
		meals, skipped, err := m.linkMeals(ctx, userID, s.ID, day.Meals, blocked)
		if err != nil {
			return err
		}
		if err := m.store.DailyMeals.CreateMany(ctx, meals); err != nil {
			return err
		}
		result.Session = s
		result.Sets = sets
		result.Meals = meals
		result.SkippedMeals = skipped
		return nil
	})
	if err != nil {
		m.log.Error("materialization failed", "userId", userID.Hex(), "date", day.Date, "error", err)
		return nil, err
	}
	m.log.Info("day materialized", "userId", userID.Hex(), "date", day.Date,
		"sets", len(result.Sets), "skipped", len(result.Skipped), "trimmed", len(result.Trimmed), "superseded", result.Superseded)
	return result, nil
}

func buildSets(session domain.WorkoutSession, resolved []plannedSets) []domain.ExerciseSet {
	sets := []domain.ExerciseSet{}
	for _, ps := range resolved {
		for n := 1; n <= ps.count; n++ {
			sets = append(sets, domain.ExerciseSet{
				SessionID:     session.ID,
				UserID:        session.UserID,
				ExerciseID:    ps.exercise.ID,
				SetNumber:     n,
				PlannedWeight: ps.target.Weight,
				PlannedReps:   ps.target.Reps,
				Date:          session.Date,
			})
		}
	}
	return sets
}

// weeklyBodyPartSets counts the sets already planned in the ISO week of
// date, leaving out the day being (re)generated.
func (m *materializer) weeklyBodyPartSets(ctx context.Context, userID primitive.ObjectID, date time.Time, day string, catalog *exerciseCatalog) (map[string]int, error) {
	from, to := weekBounds(date)
	sets, err := m.store.Sets.ListByUserInRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, s := range sets {
		if s.Date == day {
			continue
		}
		counts[primaryBodyPart(catalog.byID[s.ExerciseID])]++
	}
	return counts, nil
}

// linkMeals resolves planned meals against the meal catalog, creating the
// missing ones. Blocked meals are left out.
func (m *materializer) linkMeals(ctx context.Context, userID, sessionID primitive.ObjectID, planned []PlannedMeal, blocked domain.BlockedSet) ([]domain.DailyMeal, []string, error) {
	out := []domain.DailyMeal{}
	var skipped []string
	for _, pm := range planned {
		meal, err := m.store.Meals.FindByName(ctx, pm.Name)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			meal = &domain.Meal{Name: pm.Name, Foods: pm.Foods, Calories: pm.Calories, MealType: pm.MealType}
			if meal.Foods == nil {
				meal.Foods = []string{}
			}
			if _, err := m.store.Meals.Create(ctx, meal); err != nil {
				return nil, nil, err
			}
		case err != nil:
			return nil, nil, err
		}
		if blocked.Has(domain.BlockedMeal, meal.ID) {
			skipped = append(skipped, pm.Name)
			continue
		}
		out = append(out, domain.DailyMeal{SessionID: sessionID, UserID: userID, MealID: meal.ID, Order: len(out)})
	}
	return out, skipped, nil
}

// deleteSessionCascade removes a session with its sets and meal links. Call
// inside a transaction.
func deleteSessionCascade(ctx context.Context, store *repository.Store, sessionID primitive.ObjectID) error {
	if _, err := store.Sets.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	if _, err := store.DailyMeals.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	return store.Sessions.Delete(ctx, sessionID)
}

func nameOf(ex *domain.Exercise) string {
	if ex == nil {
		return ""
	}
	return ex.Name
}
