package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/storage"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReduceVolumeRemoveSet(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06",
		exerciseSets{name: "Bench Press", sets: 3, weight: 100, reps: 5},
		exerciseSets{name: "Squat", sets: 2, weight: 120, reps: 5},
	)

	res, err := f.tracking().ReduceVolume(f.ctx, f.user.ID, s.ID, ReduceRemoveSet)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RemovedSets)

	sets := f.setsOf(s.ID)
	counts := countByExercise(sets)
	assert.Equal(t, 2, counts[f.ex["Bench Press"].ID])
	assert.Equal(t, 1, counts[f.ex["Squat"].ID])
	for _, set := range sets {
		if set.ExerciseID == f.ex["Bench Press"].ID {
			assert.NotEqual(t, 3, set.SetNumber, "the highest set number goes first")
		}
		if set.ExerciseID == f.ex["Squat"].ID {
			assert.Equal(t, 1, set.SetNumber)
		}
	}
}

func TestReduceVolumeRemoveExercise(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06",
		exerciseSets{name: "Bench Press", sets: 3, weight: 100, reps: 5},
		exerciseSets{name: "Squat", sets: 2, weight: 120, reps: 5},
	)

	res, err := f.tracking().ReduceVolume(f.ctx, f.user.ID, s.ID, ReduceRemoveExercise)
	require.NoError(t, err)
	assert.Equal(t, 3, res.RemovedSets)
	assert.Equal(t, []primitive.ObjectID{f.ex["Bench Press"].ID}, res.ExerciseIDs)

	counts := countByExercise(f.setsOf(s.ID))
	assert.Zero(t, counts[f.ex["Bench Press"].ID])
	assert.Equal(t, 2, counts[f.ex["Squat"].ID])
}

func TestReduceVolumeTieKeepsFirstSeen(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06",
		exerciseSets{name: "Squat", sets: 2, weight: 120, reps: 5},
		exerciseSets{name: "Bench Press", sets: 2, weight: 100, reps: 5},
	)
	res, err := f.tracking().ReduceVolume(f.ctx, f.user.ID, s.ID, ReduceRemoveExercise)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{f.ex["Squat"].ID}, res.ExerciseIDs)
}

func TestReduceVolumeErrors(t *testing.T) {
	f := newFixture(t)
	empty := f.session("2024-03-06")
	tracking := f.tracking()

	_, err := tracking.ReduceVolume(f.ctx, f.user.ID, empty.ID, ReduceRemoveExercise)
	assert.ErrorIs(t, err, ErrNoSetsInSession)
	_, err = tracking.ReduceVolume(f.ctx, f.user.ID, empty.ID, "remove_everything")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = tracking.ReduceVolume(f.ctx, primitive.NewObjectID(), empty.ID, ReduceRemoveSet)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMoveSession(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06", exerciseSets{name: "Squat", sets: 2, weight: 120, reps: 5})
	f.session("2024-03-07")
	tracking := f.tracking()

	_, err := tracking.MoveSession(f.ctx, f.user.ID, s.ID, "2024-03-07")
	require.ErrorIs(t, err, ErrDateOccupied)
	assert.Contains(t, err.Error(), "2024-03-07")
	unchanged, err := f.store.Sessions.GetByID(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", unchanged.Date)

	moved, err := tracking.MoveSession(f.ctx, f.user.ID, s.ID, "2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", moved.Date)
	require.NotNil(t, moved.DayOfWeek)
	assert.Equal(t, 6, *moved.DayOfWeek)
	for _, set := range f.setsOf(s.ID) {
		assert.Equal(t, "2024-03-09", set.Date)
	}
}

func TestCompleteSetIsMonotonic(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06", exerciseSets{name: "Squat", sets: 1, weight: 120, reps: 5})
	setID := f.setsOf(s.ID)[0].ID
	tracking := f.tracking()

	w1, r1 := 120.0, 5
	set, err := tracking.CompleteSet(f.ctx, f.user.ID, setID, SetCompletion{ActualWeight: &w1, ActualReps: &r1, Completed: true})
	require.NoError(t, err)
	assert.True(t, set.Completed)
	require.NotNil(t, set.CompletedAt)

	w2, r2, rpe := 125.0, 4, 9.0
	set, err = tracking.CompleteSet(f.ctx, f.user.ID, setID, SetCompletion{ActualWeight: &w2, ActualReps: &r2, RPE: &rpe, Completed: false})
	require.NoError(t, err)
	assert.True(t, set.Completed, "completed never reverts")
	assert.Equal(t, 125.0, *set.ActualWeight, "last write wins")
	assert.Equal(t, 4, *set.ActualReps)

	stored, err := f.store.Sets.GetByID(f.ctx, setID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, 9.0, *stored.RPE)

	bad := 11.0
	_, err = tracking.CompleteSet(f.ctx, f.user.ID, setID, SetCompletion{RPE: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = tracking.CompleteSet(f.ctx, primitive.NewObjectID(), setID, SetCompletion{Completed: true})
	assert.ErrorIs(t, err, ErrSetNotFound)
}

func TestDeleteSessionCascades(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06", exerciseSets{name: "Squat", sets: 3, weight: 120, reps: 5})
	meal := &domain.Meal{Name: "Oats Bowl", Foods: []string{"oats"}, MealType: "breakfast"}
	_, err := f.store.Meals.Create(f.ctx, meal)
	require.NoError(t, err)
	require.NoError(t, f.store.DailyMeals.CreateMany(f.ctx, []domain.DailyMeal{{SessionID: s.ID, UserID: f.user.ID, MealID: meal.ID}}))

	require.NoError(t, f.tracking().DeleteSession(f.ctx, f.user.ID, s.ID))

	_, err = f.store.Sessions.GetByID(f.ctx, s.ID)
	assert.Error(t, err)
	assert.Empty(t, f.setsOf(s.ID))
	meals, err := f.store.DailyMeals.ListBySession(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestUpcomingAndHistory(t *testing.T) {
	f := newFixture(t)
	f.session("2024-02-20", exerciseSets{name: "Squat", sets: 2, weight: 100, reps: 5, done: true}) // outside history
	f.session("2024-02-23", exerciseSets{name: "Squat", sets: 4, weight: 100, reps: 5, done: true})
	f.session("2024-03-01")
	s := f.session("2024-03-06",
		exerciseSets{name: "Bench Press", sets: 2, weight: 80, reps: 5, done: true},
		exerciseSets{name: "Squat", sets: 2, weight: 100, reps: 5},
	)
	f.session("2024-03-12")
	f.session("2024-03-13") // outside upcoming
	tracking := f.tracking()

	upcoming, err := tracking.Upcoming(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, s.ID, upcoming[0].ID)
	assert.Equal(t, "2024-03-12", upcoming[1].Date)

	history, err := tracking.History(f.ctx, f.user.ID, "2024-03-07")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2024-03-06", history[0].Session.Date)
	assert.Equal(t, 2, history[0].CompletedSets)
	assert.Equal(t, 4, history[0].TotalSets)
	assert.Equal(t, 0.5, history[0].CompletionRate)
	assert.Equal(t, "2024-03-01", history[1].Session.Date)
	assert.Equal(t, 0.0, history[1].CompletionRate, "no sets means a rate of 0")
	assert.Equal(t, 1.0, history[2].CompletionRate)
}

func TestAddAccessory(t *testing.T) {
	f := newFixture(t)
	s1 := f.session("2024-03-04", exerciseSets{name: "Bench Press", sets: 3, weight: 100, reps: 5})
	s2 := f.session("2024-03-05", exerciseSets{name: "Squat", sets: 3, weight: 100, reps: 5})
	s3 := f.session("2024-03-06", exerciseSets{name: "Barbell Row", sets: 3, weight: 60, reps: 8})

	res, err := f.tracking().AddAccessory(f.ctx, f.user.ID, "Biceps", "2024-03-04", 2)
	require.NoError(t, err)
	assert.Equal(t, "Bicep Curl", res.Exercise.Name)
	assert.Equal(t, []string{"2024-03-04", "2024-03-05"}, res.Dates)
	assert.Equal(t, 6, res.SetsAdded)

	for _, id := range []primitive.ObjectID{s1.ID, s2.ID} {
		var curls []domain.ExerciseSet
		for _, set := range f.setsOf(id) {
			if set.ExerciseID == f.ex["Bicep Curl"].ID {
				curls = append(curls, set)
			}
		}
		require.Len(t, curls, 3)
		for _, set := range curls {
			assert.Equal(t, 12, set.PlannedReps)
		}
	}
	assert.Len(t, f.setsOf(s3.ID), 3, "only the first two sessions get the accessory")
}

func TestAddAccessorySkipsBlocked(t *testing.T) {
	f := newFixture(t)
	f.session("2024-03-04", exerciseSets{name: "Bench Press", sets: 3, weight: 100, reps: 5})
	tracking := f.tracking()
	_, err := tracking.BlockItem(f.ctx, f.user.ID, domain.BlockedExercise, f.ex["Bicep Curl"].ID, "")
	require.NoError(t, err)

	res, err := tracking.AddAccessory(f.ctx, f.user.ID, "biceps", "2024-03-04", 0)
	require.NoError(t, err)
	assert.Equal(t, "Hammer Curl", res.Exercise.Name)

	_, err = tracking.AddAccessory(f.ctx, f.user.ID, "calves", "2024-03-04", 0)
	assert.ErrorIs(t, err, ErrNoAlternative)
	_, err = tracking.AddAccessory(f.ctx, f.user.ID, "biceps", "2024-04-01", 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSwapExercise(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06",
		exerciseSets{name: "Bench Press", sets: 3, weight: 100, reps: 5},
		exerciseSets{name: "Squat", sets: 2, weight: 120, reps: 5},
	)
	tracking := f.tracking()

	res, err := tracking.SwapExercise(f.ctx, f.user.ID, s.ID, f.ex["Bench Press"].ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "Incline Dumbbell Press", res.To.Name)
	assert.Equal(t, 3, res.SetsChanged)

	counts := countByExercise(f.setsOf(s.ID))
	assert.Zero(t, counts[f.ex["Bench Press"].ID])
	assert.Equal(t, 3, counts[f.ex["Incline Dumbbell Press"].ID])

	blocked, err := tracking.ListBlocked(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, "Bench Press", blocked[0].ItemName)

	_, err = tracking.BlockItem(f.ctx, f.user.ID, domain.BlockedExercise, f.ex["Bench Press"].ID, "")
	assert.ErrorIs(t, err, ErrAlreadyBlocked)

	_, err = tracking.SwapExercise(f.ctx, f.user.ID, s.ID, f.ex["Lat Pulldown"].ID, nil, false)
	assert.ErrorIs(t, err, ErrExerciseNotInSession)
}

func TestTodayWorkout(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06", exerciseSets{name: "Squat", sets: 2, weight: 120, reps: 5})
	meal := &domain.Meal{Name: "Oats Bowl", Foods: []string{"oats"}}
	_, err := f.store.Meals.Create(f.ctx, meal)
	require.NoError(t, err)
	require.NoError(t, f.store.DailyMeals.CreateMany(f.ctx, []domain.DailyMeal{{SessionID: s.ID, UserID: f.user.ID, MealID: meal.ID}}))
	tracking := f.tracking()

	view, err := tracking.TodayWorkout(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Len(t, view.Sets, 2)
	require.Len(t, view.Exercises, 1)
	assert.Equal(t, "Squat", view.Exercises[0].Name)
	require.Len(t, view.Meals, 1)
	assert.Equal(t, "Oats Bowl", view.Meals[0].Meal.Name)

	view, err = tracking.TodayWorkout(f.ctx, f.user.ID, "2024-03-07")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestWeeklyAndBodyPartVolume(t *testing.T) {
	f := newFixture(t)
	f.session("2024-03-04",
		exerciseSets{name: "Bench Press", sets: 2, weight: 100, reps: 5, done: true},
		exerciseSets{name: "Cable Fly", sets: 1, weight: 20, reps: 10},
	)
	f.session("2024-03-10", exerciseSets{name: "Squat", sets: 3, weight: 100, reps: 5, done: true})
	f.session("2024-03-11", exerciseSets{name: "Squat", sets: 3, weight: 100, reps: 5, done: true})
	tracking := f.tracking()

	v, err := tracking.WeeklyVolume(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", v.WeekStart)
	assert.Equal(t, "2024-03-10", v.WeekEnd)
	assert.Equal(t, 5, v.CompletedSets)
	assert.Equal(t, 2*100*5+3*100*5.0, v.Tonnage)

	bp, err := tracking.BodyPartVolume(f.ctx, f.user.ID, "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chest": 2, "legs": 3}, bp.Sets)
}

func TestDailyLogs(t *testing.T) {
	f := newFixture(t)
	tracking := f.tracking()

	_, err := tracking.LogWater(f.ctx, f.user.ID, "2024-03-06", 500)
	require.NoError(t, err)
	log, err := tracking.LogWater(f.ctx, f.user.ID, "2024-03-06", 250)
	require.NoError(t, err)
	assert.Equal(t, 750, log.WaterMl)

	log, err = tracking.LogSteps(f.ctx, f.user.ID, "2024-03-06", 8000)
	require.NoError(t, err)
	assert.Equal(t, 8000, log.Steps)
	assert.Equal(t, 750, log.WaterMl)

	_, err = tracking.LogSteps(f.ctx, f.user.ID, "2024-03-06", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExportHistory(t *testing.T) {
	f := newFixture(t)
	f.session("2024-03-06", exerciseSets{name: "Squat", sets: 2, weight: 120, reps: 5, done: true})
	files := storage.NewMemoryStorage()
	tracking := NewTrackingService(f.store, files, TrackingOptions{}, f.log)

	res, err := tracking.ExportHistory(f.ctx, f.user.ID, "2024-03-07")
	require.NoError(t, err)
	assert.NotEmpty(t, res.URL)
	assert.Equal(t, "2024-02-23", res.Export.FromDate)

	body, err := files.GetObject(f.ctx, res.Export.ObjectKey)
	require.NoError(t, err)
	assert.Contains(t, string(body), "2024-03-06")

	exports, err := f.store.Exports.ListByUser(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, exports, 1)
}
