package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/llm"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	adherenceWindowDays = 14
	fatigueWindowDays   = 7
	lowAdherence        = 0.5
	highRPE             = 9.0
	defaultPlannedSets  = 3
	defaultPlannedReps  = 10
)

// DayPlan is the abstract plan of one day before materialization.
type DayPlan struct {
	Date        string             `json:"date"`
	Intensity   domain.Intensity   `json:"intensity"`
	WorkoutType domain.WorkoutType `json:"workoutType"`
	Explanation string             `json:"explanation"`
	Exercises   []PlannedExercise  `json:"exercises"`
	Meals       []PlannedMeal      `json:"meals"`
}

type PlannedExercise struct {
	Name     string `json:"name"`
	BodyPart string `json:"bodyPart"`
	Sets     int    `json:"sets"`
	Reps     int    `json:"reps"`
}

type PlannedMeal struct {
	Name     string   `json:"name"`
	Foods    []string `json:"foods"`
	Calories float64  `json:"calories"`
	MealType string   `json:"mealType"`
}

// Signals are the execution inputs that shape a day.
type Signals struct {
	Adherence float64  // completed/total sets over the adherence window, 1 when empty
	AvgRPE    *float64 // nil when no set in the fatigue window has an RPE
}

type DailyPlanService interface {
	// Plan builds the abstract day for date from the user's active plan.
	Plan(ctx context.Context, userID primitive.ObjectID, date string) (*DayPlan, *domain.TrainingPlan, error)
}

type dailyPlanService struct {
	store *repository.Store
	gen   llm.Generator
	log   *logger.Logger
}

func NewDailyPlanService(store *repository.Store, gen llm.Generator, log *logger.Logger) DailyPlanService {
	return &dailyPlanService{store: store, gen: gen, log: log}
}

func (s *dailyPlanService) Plan(ctx context.Context, userID primitive.ObjectID, date string) (*DayPlan, *domain.TrainingPlan, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.store.Plans.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNoActivePlan
		}
		return nil, nil, err
	}
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}

	signals, err := s.signals(ctx, userID, date)
	if err != nil {
		return nil, nil, err
	}
	position := daysBetween(plan.CreatedAt, day)
	intensity := adjustIntensity(IntensityForDay(plan.Strategy.IntensityDistribution, position), signals)

	avoid, err := s.avoidNames(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	text, err := s.gen.Complete(ctx, llm.Request{
		Kind:   llm.KindDayPlan,
		System: dayPlanSystemPrompt,
		User: buildDayPrompt(dayPromptInput{
			Date:       date,
			Intensity:  intensity,
			Strategy:   plan.Strategy,
			User:       user,
			Adherence:  signals.Adherence,
			AvgRPE:     signals.AvgRPE,
			AvoidNames: avoid,
			Diet:       plan.Diet,
		}),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	dp, err := ParseDayPlan(text)
	if err != nil {
		s.log.Warn("day plan response rejected", "userId", userID.Hex(), "date", date, "error", err)
		return nil, nil, err
	}
	dp.Date = date
	dp.Intensity = intensity
	return dp, plan, nil
}

// signals computes adherence over the 14 days before date and the average
// RPE over the 7 days before date.
func (s *dailyPlanService) signals(ctx context.Context, userID primitive.ObjectID, date string) (Signals, error) {
	sets, err := s.store.Sets.ListByUserInRange(ctx, userID, addDays(date, -adherenceWindowDays), addDays(date, -1))
	if err != nil {
		return Signals{}, err
	}
	return computeSignals(sets, addDays(date, -fatigueWindowDays)), nil
}

func computeSignals(sets []domain.ExerciseSet, fatigueFrom string) Signals {
	sig := Signals{Adherence: 1}
	if len(sets) == 0 {
		return sig
	}
	completed := 0
	rpeSum, rpeN := 0.0, 0
	for _, set := range sets {
		if !set.Completed {
			continue
		}
		completed++
		if set.RPE != nil && set.Date >= fatigueFrom {
			rpeSum += *set.RPE
			rpeN++
		}
	}
	sig.Adherence = float64(completed) / float64(len(sets))
	if rpeN > 0 {
		avg := rpeSum / float64(rpeN)
		sig.AvgRPE = &avg
	}
	return sig
}

func (s *dailyPlanService) avoidNames(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	blocked, err := s.store.Blocked.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(blocked))
	for _, b := range blocked {
		if b.ItemName != "" {
			names = append(names, b.ItemName)
		}
	}
	return names, nil
}

// IntensityCycle spreads a 7-day cycle over heavy/moderate/light using
// largest-remainder apportionment and smooth weighted round-robin ordering.
func IntensityCycle(dist domain.IntensityDistribution) [7]domain.Intensity {
	levels := []domain.Intensity{domain.IntensityHeavy, domain.IntensityModerate, domain.IntensityLight}
	weights := []float64{math.Max(dist.Heavy, 0), math.Max(dist.Moderate, 0), math.Max(dist.Light, 0)}
	total := weights[0] + weights[1] + weights[2]

	var cycle [7]domain.Intensity
	if total == 0 {
		for i := range cycle {
			cycle[i] = domain.IntensityModerate
		}
		return cycle
	}

	// Largest remainder
	counts := make([]int, 3)
	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, 3)
	assigned := 0
	for i, w := range weights {
		exact := w / total * 7
		counts[i] = int(math.Floor(exact))
		assigned += counts[i]
		rems[i] = rem{i, exact - math.Floor(exact)}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; assigned < 7; i++ {
		counts[rems[i%3].idx]++
		assigned++
	}

	// Smooth weighted round-robin
	current := make([]int, 3)
	for slot := range cycle {
		best := -1
		for i := range current {
			current[i] += counts[i]
			if counts[i] > 0 && (best < 0 || current[i] > current[best]) {
				best = i
			}
		}
		current[best] -= 7
		cycle[slot] = levels[best]
	}
	return cycle
}

// IntensityForDay picks the intensity at a day position of the plan.
func IntensityForDay(dist domain.IntensityDistribution, position int) domain.Intensity {
	cycle := IntensityCycle(dist)
	p := position % 7
	if p < 0 {
		p += 7
	}
	return cycle[p]
}

// adjustIntensity lowers the intensity one level on poor adherence or high fatigue.
func adjustIntensity(in domain.Intensity, sig Signals) domain.Intensity {
	tired := sig.AvgRPE != nil && *sig.AvgRPE >= highRPE
	if sig.Adherence >= lowAdherence && !tired {
		return in
	}
	switch in {
	case domain.IntensityHeavy:
		return domain.IntensityModerate
	default:
		return domain.IntensityLight
	}
}

// ParseDayPlan decodes a day plan answer. "exercises" must be present.
func ParseDayPlan(text string) (*DayPlan, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(llm.StripFences(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrGeneration, err)
	}
	if _, ok := raw["exercises"]; !ok {
		return nil, fmt.Errorf("%w: missing key %q", ErrGeneration, "exercises")
	}
	var body struct {
		WorkoutType string            `json:"workoutType"`
		Explanation string            `json:"explanation"`
		Exercises   []PlannedExercise `json:"exercises"`
		Meals       []PlannedMeal     `json:"meals"`
	}
	if err := json.Unmarshal([]byte(llm.StripFences(text)), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	dp := &DayPlan{
		WorkoutType: domain.ParseWorkoutType(strings.ToLower(strings.TrimSpace(body.WorkoutType))),
		Explanation: strings.TrimSpace(body.Explanation),
		Exercises:   make([]PlannedExercise, 0, len(body.Exercises)),
		Meals:       make([]PlannedMeal, 0, len(body.Meals)),
	}
	for _, e := range body.Exercises {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		e.BodyPart = strings.ToLower(strings.TrimSpace(e.BodyPart))
		if e.Sets <= 0 {
			e.Sets = defaultPlannedSets
		}
		if e.Reps <= 0 {
			e.Reps = defaultPlannedReps
		}
		dp.Exercises = append(dp.Exercises, e)
	}
	for _, m := range body.Meals {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			continue
		}
		dp.Meals = append(dp.Meals, m)
	}
	return dp, nil
}
