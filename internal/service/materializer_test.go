package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/llm"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dayPlanResponse = `{
  "workoutType": "strength",
  "explanation": "Heavy lower and push day",
  "exercises": [
    {"name": "bench press", "bodyPart": "chest", "sets": 4, "reps": 5},
    {"name": "Unknown Movement Zzz", "sets": 3, "reps": 10},
    {"name": "squat", "bodyPart": "legs", "sets": 3, "reps": 5},
    {"name": "Bench Press", "sets": 2, "reps": 8}
  ],
  "meals": [
    {"name": "Oats Bowl", "foods": ["oats", "milk"], "calories": 600, "mealType": "breakfast"},
    {"name": "Chicken Rice", "foods": ["chicken", "rice"], "calories": 800, "mealType": "lunch"}
  ]
}`

func newMaterializer(f *fixture, limits Limits) (Materializer, *fakeGenerator) {
	gen := newFakeGenerator().on(llm.KindDayPlan, dayPlanResponse)
	planner := NewDailyPlanService(f.store, gen, f.log)
	return NewMaterializer(f.store, planner, nil, limits, f.log), gen
}

func skippedNames(res *MaterializeResult) map[string]SkippedExercise {
	out := map[string]SkippedExercise{}
	for _, s := range res.Skipped {
		out[s.Name] = s
	}
	return out
}

func TestGenerateDayPersistsSessionSetsAndMeals(t *testing.T) {
	f := newFixture(t)
	f.activePlan(domain.IntensityDistribution{Moderate: 1})
	m, _ := newMaterializer(f, Limits{})

	res, err := m.GenerateDay(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	assert.False(t, res.Superseded)
	assert.Equal(t, "2024-03-06", res.Session.Date)
	require.NotNil(t, res.Session.DayOfWeek)
	assert.Equal(t, 3, *res.Session.DayOfWeek)

	skipped := skippedNames(res)
	assert.Contains(t, skipped, "Unknown Movement Zzz")
	assert.Contains(t, skipped, "Bench Press", "second bench entry is a duplicate")

	sets := f.setsOf(res.Session.ID)
	require.Len(t, sets, 7)
	counts := countByExercise(sets)
	assert.Equal(t, 4, counts[f.ex["Bench Press"].ID])
	assert.Equal(t, 3, counts[f.ex["Squat"].ID])
	assert.Equal(t, f.ex["Bench Press"].ID, sets[0].ExerciseID, "sets keep exercise order")
	assert.Equal(t, 1, sets[0].SetNumber)

	require.Len(t, res.Meals, 2)
	oats, err := f.store.Meals.FindByName(f.ctx, "oats bowl")
	require.NoError(t, err, "unknown meals are added to the catalog")
	assert.Equal(t, oats.ID, res.Meals[0].MealID)
}

func TestGenerateDaySupersedesExistingSession(t *testing.T) {
	f := newFixture(t)
	f.activePlan(domain.IntensityDistribution{Moderate: 1})
	m, _ := newMaterializer(f, Limits{})

	first, err := m.GenerateDay(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	second, err := m.GenerateDay(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	assert.True(t, second.Superseded)

	current, err := f.store.Sessions.GetByUserAndDate(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, second.Session.ID, current.ID)

	assert.Empty(t, f.setsOf(first.Session.ID))
	oldMeals, err := f.store.DailyMeals.ListBySession(f.ctx, first.Session.ID)
	require.NoError(t, err)
	assert.Empty(t, oldMeals)

	all, err := f.store.Sets.ListByUserInRange(f.ctx, f.user.ID, "2024-03-06", "2024-03-06")
	require.NoError(t, err)
	assert.Len(t, all, 7, "regeneration is idempotent")
}

func TestGenerateDayExcludesBlockedAndUnavailable(t *testing.T) {
	f := newFixture(t)
	f.activePlan(domain.IntensityDistribution{Moderate: 1})
	tracking := f.tracking()
	_, err := tracking.BlockItem(f.ctx, f.user.ID, domain.BlockedExercise, f.ex["Squat"].ID, "")
	require.NoError(t, err)

	f.user.Equipment = domain.Equipment{Kind: domain.EquipmentAccessHome, Items: []domain.EquipmentType{domain.EquipDumbbell}}
	require.NoError(t, f.store.Users.Update(f.ctx, f.user))

	m, _ := newMaterializer(f, Limits{})
	res, err := m.GenerateDay(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)

	skipped := skippedNames(res)
	require.Contains(t, skipped, "squat")
	assert.Equal(t, "blocked", skipped["squat"].Reason)
	require.Contains(t, skipped, "bench press")
	assert.Equal(t, "Incline Dumbbell Press", skipped["bench press"].Suggestion)
	assert.Empty(t, res.Sets)
}

func TestGenerateDayAppliesVolumeCeilings(t *testing.T) {
	t.Run("per session", func(t *testing.T) {
		f := newFixture(t)
		f.activePlan(domain.IntensityDistribution{Moderate: 1})
		m, _ := newMaterializer(f, Limits{MaxSetsPerSession: 5})

		res, err := m.GenerateDay(f.ctx, f.user.ID, "2024-03-06")
		require.NoError(t, err)
		counts := countByExercise(res.Sets)
		assert.Equal(t, 4, counts[f.ex["Bench Press"].ID])
		assert.Equal(t, 1, counts[f.ex["Squat"].ID])
		require.Len(t, res.Trimmed, 1)
		assert.Equal(t, TrimmedExercise{Name: "Squat", Requested: 3, Kept: 1, Reason: "session volume"}, res.Trimmed[0])
	})

	t.Run("per body part and week", func(t *testing.T) {
		f := newFixture(t)
		f.activePlan(domain.IntensityDistribution{Moderate: 1})
		// Monday of the same ISO week.
		f.session("2024-03-04", exerciseSets{name: "Cable Fly", sets: 4, weight: 20, reps: 12})
		// The previous week does not count.
		f.session("2024-03-03", exerciseSets{name: "Cable Fly", sets: 6, weight: 20, reps: 12})
		m, _ := newMaterializer(f, Limits{MaxSetsPerBodyPartWeek: 6})

		res, err := m.GenerateDay(f.ctx, f.user.ID, "2024-03-06")
		require.NoError(t, err)
		counts := countByExercise(res.Sets)
		assert.Equal(t, 2, counts[f.ex["Bench Press"].ID])
		assert.Equal(t, 3, counts[f.ex["Squat"].ID])
	})
}

func TestGenerateDayAppliesProgression(t *testing.T) {
	f := newFixture(t)
	f.activePlan(domain.IntensityDistribution{Moderate: 1})
	f.session("2024-03-04",
		exerciseSets{name: "Bench Press", sets: 3, weight: 100, reps: 5, done: true},
		exerciseSets{name: "Squat", sets: 3, weight: 120, reps: 5},
	)
	m, _ := newMaterializer(f, Limits{})

	res, err := m.GenerateDay(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	for _, s := range res.Sets {
		switch s.ExerciseID {
		case f.ex["Bench Press"].ID:
			assert.Equal(t, 102.5, s.PlannedWeight)
			assert.Equal(t, 5, s.PlannedReps)
		case f.ex["Squat"].ID:
			// Squat was never completed, so there is no history to progress from.
			assert.Equal(t, 0.0, s.PlannedWeight)
		}
	}
}

func TestNextTarget(t *testing.T) {
	reps := func(n int) *int { return &n }
	done := func(w float64, planned, actual int) domain.ExerciseSet {
		return domain.ExerciseSet{PlannedWeight: w, PlannedReps: planned, ActualReps: reps(actual), Completed: true}
	}

	assert.Equal(t, Target{Weight: 0, Reps: 8, Reason: "no history"}, NextTarget(nil, true, 8))

	got := NextTarget([]domain.ExerciseSet{done(100, 5, 5), done(100, 5, 6)}, true, 5)
	assert.Equal(t, 102.5, got.Weight)
	assert.Equal(t, 5, got.Reps)

	got = NextTarget([]domain.ExerciseSet{done(20, 12, 12)}, false, 12)
	assert.Equal(t, 20.0, got.Weight)
	assert.Equal(t, 13, got.Reps)

	got = NextTarget([]domain.ExerciseSet{done(20, 15, 15)}, false, 10)
	assert.Equal(t, 21.25, got.Weight)
	assert.Equal(t, 10, got.Reps)

	got = NextTarget([]domain.ExerciseSet{done(100, 5, 5), done(100, 5, 3)}, true, 5)
	assert.Equal(t, 90.0, got.Weight)
	assert.Equal(t, 5, got.Reps)

	got = NextTarget([]domain.ExerciseSet{done(0, 15, 15)}, false, 10)
	assert.Equal(t, 0.0, got.Weight)
	assert.Equal(t, 15, got.Reps, "bodyweight reps are capped")
}
