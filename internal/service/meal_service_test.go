package service

import (
	"alcyxob/coach-app/internal/domain"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestImportMealsPartialSuccess(t *testing.T) {
	f := newFixture(t)
	svc := NewMealService(f.store, f.log)

	var items []any
	require.NoError(t, json.Unmarshal([]byte(`[
		{"name": "Oats Bowl", "foods": ["oats", "milk"], "calories": 450, "instructions": ["mix"], "mealType": "Breakfast", "protein": 20},
		{"name": "Mystery Stew", "foods": ["beef"], "instructions": []},
		{"name": "Salad", "foods": "lettuce", "calories": 200, "instructions": []},
		"Pancakes",
		{"name": "Rice Bowl", "foods": ["rice"], "calories": 600, "instructions": []}
	]`), &items))

	res, err := svc.ImportMeals(f.ctx, items)
	require.NoError(t, err)
	require.Len(t, res.Imported, 2)
	assert.Equal(t, "Oats Bowl", res.Imported[0].Name)
	assert.Equal(t, "breakfast", res.Imported[0].MealType)
	require.NotNil(t, res.Imported[0].Protein)
	assert.Equal(t, "Rice Bowl", res.Imported[1].Name)

	require.Len(t, res.Failed, 3)
	assert.Equal(t, ImportFailure{Index: 1, Name: "Mystery Stew", Error: "calories must be a number"}, res.Failed[0])
	assert.Equal(t, 2, res.Failed[1].Index)
	assert.Equal(t, ImportFailure{Index: 3, Error: "meal must be an object"}, res.Failed[2])

	_, err = f.store.Meals.FindByName(f.ctx, "Rice Bowl")
	assert.NoError(t, err)

	_, err = svc.ImportMeals(f.ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlanMealEditing(t *testing.T) {
	f := newFixture(t)
	plan := f.activePlan(domain.IntensityDistribution{Moderate: 1})
	svc := NewMealService(f.store, f.log)

	diet, err := svc.AddMeal(f.ctx, f.user.ID, plan.ID, domain.DietMeal{Name: " Snack ", Foods: []string{"nuts", " "}})
	require.NoError(t, err)
	require.Len(t, diet.Meals, 3)
	assert.Equal(t, "Snack", diet.Meals[2].Name)
	assert.Equal(t, []string{"nuts"}, diet.Meals[2].Foods)
	for _, m := range diet.Meals {
		assert.Equal(t, 666, m.Calories)
	}

	diet, err = svc.UpdateMeal(f.ctx, f.user.ID, plan.ID, 0, domain.DietMeal{Name: "Eggs", Foods: []string{"eggs"}})
	require.NoError(t, err)
	assert.Equal(t, "Eggs", diet.Meals[0].Name)

	diet, err = svc.RemoveMeal(f.ctx, f.user.ID, plan.ID, 1)
	require.NoError(t, err)
	require.Len(t, diet.Meals, 2)
	assert.Equal(t, []string{"Eggs", "Snack"}, []string{diet.Meals[0].Name, diet.Meals[1].Name})
	assert.Equal(t, 1000, diet.Meals[0].Calories)

	stored, err := f.store.Plans.GetByID(f.ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, diet.Meals, stored.Diet.Meals)

	_, err = svc.RemoveMeal(f.ctx, f.user.ID, plan.ID, 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddMeal(f.ctx, f.user.ID, primitive.NilObjectID, domain.DietMeal{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput, "plan_id is required")
	_, err = svc.AddMeal(f.ctx, f.user.ID, primitive.NewObjectID(), domain.DietMeal{Name: "x"})
	assert.ErrorIs(t, err, ErrPlanNotFound)
	_, err = svc.AddMeal(f.ctx, primitive.NewObjectID(), plan.ID, domain.DietMeal{Name: "x"})
	assert.ErrorIs(t, err, ErrPlanNotFound, "plans of other users are invisible")
}

func TestMealLogs(t *testing.T) {
	f := newFixture(t)
	svc := NewMealService(f.store, f.log)

	first, err := svc.LogMeal(f.ctx, f.user.ID, MealLogInput{Date: "2024-03-06", Name: "Burrito", Calories: 700})
	require.NoError(t, err)
	_, err = svc.LogMeal(f.ctx, f.user.ID, MealLogInput{Date: "2024-03-06", Name: "Shake", Calories: 300})
	require.NoError(t, err)
	_, err = svc.LogMeal(f.ctx, f.user.ID, MealLogInput{Date: "2024-03-06", Name: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	day, err := svc.MealLogs(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	assert.Len(t, day.Logs, 2)
	assert.Equal(t, 1000.0, day.TotalCalories)

	assert.ErrorIs(t, svc.DeleteMealLog(f.ctx, primitive.NewObjectID(), first.ID), ErrMealNotFound)
	require.NoError(t, svc.DeleteMealLog(f.ctx, f.user.ID, first.ID))
	day, err = svc.MealLogs(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	assert.Len(t, day.Logs, 1)
}

func TestRegenerateMeal(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06")
	meals := []*domain.Meal{
		{Name: "Oats Bowl", MealType: "breakfast"},
		{Name: "Pancakes", MealType: "breakfast"},
		{Name: "Omelette", MealType: "breakfast"},
		{Name: "Steak", MealType: "dinner"},
	}
	for _, m := range meals {
		_, err := f.store.Meals.Create(f.ctx, m)
		require.NoError(t, err)
	}
	require.NoError(t, f.store.DailyMeals.CreateMany(f.ctx, []domain.DailyMeal{{SessionID: s.ID, UserID: f.user.ID, MealID: meals[0].ID}}))
	planned, err := f.store.DailyMeals.ListBySession(f.ctx, s.ID)
	require.NoError(t, err)

	_, err = f.tracking().BlockItem(f.ctx, f.user.ID, domain.BlockedMeal, meals[1].ID, "")
	require.NoError(t, err)

	svc := NewMealService(f.store, f.log)
	view, err := svc.RegenerateMeal(f.ctx, f.user.ID, planned[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Omelette", view.Meal.Name, "blocked meals are skipped")

	stored, err := f.store.DailyMeals.GetByID(f.ctx, planned[0].ID)
	require.NoError(t, err)
	assert.Equal(t, meals[2].ID, stored.MealID)

	_, err = svc.RegenerateMeal(f.ctx, primitive.NewObjectID(), planned[0].ID)
	assert.ErrorIs(t, err, ErrMealNotFound)
}
