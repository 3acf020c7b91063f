package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/llm"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countIntensities(cycle [7]domain.Intensity) map[domain.Intensity]int {
	out := map[domain.Intensity]int{}
	for _, in := range cycle {
		out[in]++
	}
	return out
}

func TestIntensityCycleApportionment(t *testing.T) {
	cycle := IntensityCycle(domain.IntensityDistribution{Heavy: 0.3, Moderate: 0.5, Light: 0.2})
	counts := countIntensities(cycle)
	assert.Equal(t, 2, counts[domain.IntensityHeavy])
	assert.Equal(t, 4, counts[domain.IntensityModerate])
	assert.Equal(t, 1, counts[domain.IntensityLight])

	// Fractions that do not sum to 1 are used as weights.
	counts = countIntensities(IntensityCycle(domain.IntensityDistribution{Heavy: 2, Moderate: 2, Light: 0}))
	assert.Equal(t, 7, counts[domain.IntensityHeavy]+counts[domain.IntensityModerate])
	assert.Zero(t, counts[domain.IntensityLight])

	for _, in := range IntensityCycle(domain.IntensityDistribution{}) {
		assert.Equal(t, domain.IntensityModerate, in)
	}
}

func TestIntensityCycleSpreadsHeavyDays(t *testing.T) {
	cycle := IntensityCycle(domain.IntensityDistribution{Heavy: 2.0 / 7, Moderate: 5.0 / 7})
	for i := 1; i < len(cycle); i++ {
		if cycle[i] == domain.IntensityHeavy {
			assert.NotEqual(t, domain.IntensityHeavy, cycle[i-1], "heavy days back to back: %v", cycle)
		}
	}
	assert.Equal(t, cycle[3], IntensityForDay(domain.IntensityDistribution{Heavy: 2.0 / 7, Moderate: 5.0 / 7}, 10))
}

func TestAdjustIntensity(t *testing.T) {
	rpe := 9.5
	assert.Equal(t, domain.IntensityHeavy, adjustIntensity(domain.IntensityHeavy, Signals{Adherence: 0.9}))
	assert.Equal(t, domain.IntensityModerate, adjustIntensity(domain.IntensityHeavy, Signals{Adherence: 0.3}))
	assert.Equal(t, domain.IntensityLight, adjustIntensity(domain.IntensityModerate, Signals{Adherence: 1, AvgRPE: &rpe}))
	assert.Equal(t, domain.IntensityLight, adjustIntensity(domain.IntensityLight, Signals{Adherence: 0}))
}

func TestComputeSignals(t *testing.T) {
	assert.Equal(t, 1.0, computeSignals(nil, "2024-03-01").Adherence)

	rpe8, rpe10 := 8.0, 10.0
	sig := computeSignals([]domain.ExerciseSet{
		{Date: "2024-02-20", Completed: true, RPE: &rpe10}, // outside the fatigue window
		{Date: "2024-03-02", Completed: true, RPE: &rpe8},
		{Date: "2024-03-03", Completed: false},
		{Date: "2024-03-03", Completed: false},
	}, "2024-03-01")
	assert.Equal(t, 0.5, sig.Adherence)
	require.NotNil(t, sig.AvgRPE)
	assert.Equal(t, 8.0, *sig.AvgRPE)
}

func TestParseDayPlan(t *testing.T) {
	_, err := ParseDayPlan(`{"workoutType": "strength"}`)
	assert.ErrorIs(t, err, ErrGeneration)

	dp, err := ParseDayPlan(`{"workoutType": "Hypertrophy", "exercises": [
		{"name": " Bench Press ", "bodyPart": "Chest", "sets": 4, "reps": 8},
		{"name": "Cable Fly"},
		{"name": ""}
	], "meals": [{"name": "Oats Bowl", "calories": 500}]}`)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkoutHypertrophy, dp.WorkoutType)
	require.Len(t, dp.Exercises, 2)
	assert.Equal(t, PlannedExercise{Name: "Bench Press", BodyPart: "chest", Sets: 4, Reps: 8}, dp.Exercises[0])
	assert.Equal(t, 3, dp.Exercises[1].Sets)
	assert.Equal(t, 10, dp.Exercises[1].Reps)
	assert.Len(t, dp.Meals, 1)
}

func TestPlanUsesActivePlanAndSignals(t *testing.T) {
	f := newFixture(t)
	gen := newFakeGenerator().on(llm.KindDayPlan, `{"exercises": [{"name": "Squat", "sets": 3, "reps": 5}]}`)
	svc := NewDailyPlanService(f.store, gen, f.log)

	_, _, err := svc.Plan(f.ctx, f.user.ID, "2024-03-06")
	assert.ErrorIs(t, err, ErrNoActivePlan)

	f.activePlan(domain.IntensityDistribution{Heavy: 1})
	// Missed sets drag adherence to 0.
	f.session("2024-03-04", exerciseSets{name: "Squat", sets: 3, weight: 100, reps: 5})

	dp, plan, err := svc.Plan(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "2024-03-06", dp.Date)
	assert.Equal(t, domain.IntensityModerate, dp.Intensity, "heavy lowered on poor adherence")
	require.Len(t, gen.requests, 1)
	assert.True(t, strings.Contains(gen.requests[0].User, "2024-03-06"))

	_, _, err = svc.Plan(f.ctx, f.user.ID, "06/03/2024")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
