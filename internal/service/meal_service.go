package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImportFailure describes one rejected entry of an import batch.
type ImportFailure struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

// ImportResult is the partial-success outcome of ImportMeals.
type ImportResult struct {
	Imported []domain.Meal   `json:"imported"`
	Failed   []ImportFailure `json:"failed"`
}

type MealLogInput struct {
	Date     string
	Name     string
	Foods    []string
	Calories float64
	Protein  *float64
}

type MealLogDay struct {
	Date          string           `json:"date"`
	Logs          []domain.MealLog `json:"logs"`
	TotalCalories float64          `json:"totalCalories"`
}

type MealService interface {
	AddMeal(ctx context.Context, userID, planID primitive.ObjectID, meal domain.DietMeal) (*domain.DietPlan, error)
	UpdateMeal(ctx context.Context, userID, planID primitive.ObjectID, index int, meal domain.DietMeal) (*domain.DietPlan, error)
	RemoveMeal(ctx context.Context, userID, planID primitive.ObjectID, index int) (*domain.DietPlan, error)
	ImportMeals(ctx context.Context, items []any) (*ImportResult, error)

	LogMeal(ctx context.Context, userID primitive.ObjectID, in MealLogInput) (*domain.MealLog, error)
	DeleteMealLog(ctx context.Context, userID, logID primitive.ObjectID) error
	MealLogs(ctx context.Context, userID primitive.ObjectID, date string) (*MealLogDay, error)

	// RegenerateMeal swaps a planned meal for another catalog meal of the same type.
	RegenerateMeal(ctx context.Context, userID, dailyMealID primitive.ObjectID) (*MealView, error)
}

type mealService struct {
	store *repository.Store
	log   *logger.Logger
}

func NewMealService(store *repository.Store, log *logger.Logger) MealService {
	return &mealService{store: store, log: log}
}

func (s *mealService) ownedPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	if planID.IsZero() {
		return nil, invalidf("plan_id is required")
	}
	plan, err := s.store.Plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID.Hex())
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID.Hex())
	}
	return plan, nil
}

// editDiet applies edit to the plan's diet, respreads calories and stores it.
func (s *mealService) editDiet(ctx context.Context, userID, planID primitive.ObjectID, edit func(d *domain.DietPlan) error) (*domain.DietPlan, error) {
	plan, err := s.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	diet := plan.Diet
	diet.Meals = append([]domain.DietMeal(nil), plan.Diet.Meals...)
	if err := edit(&diet); err != nil {
		return nil, err
	}
	if diet.Meals == nil {
		diet.Meals = []domain.DietMeal{}
	}
	diet.SpreadCalories()
	if err := s.store.Plans.UpdateDiet(ctx, planID, diet); err != nil {
		return nil, err
	}
	return &diet, nil
}

func cleanDietMeal(m domain.DietMeal) (domain.DietMeal, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return m, invalidf("meal name is required")
	}
	foods := make([]string, 0, len(m.Foods))
	for _, f := range m.Foods {
		if f = strings.TrimSpace(f); f != "" {
			foods = append(foods, f)
		}
	}
	return domain.DietMeal{Name: m.Name, Foods: foods}, nil
}

func checkIndex(index, n int) error {
	if index < 0 || index >= n {
		return invalidf("meal index %d out of range [0, %d)", index, n)
	}
	return nil
}

func (s *mealService) AddMeal(ctx context.Context, userID, planID primitive.ObjectID, meal domain.DietMeal) (*domain.DietPlan, error) {
	meal, err := cleanDietMeal(meal)
	if err != nil {
		return nil, err
	}
	return s.editDiet(ctx, userID, planID, func(d *domain.DietPlan) error {
		d.Meals = append(d.Meals, meal)
		return nil
	})
}

func (s *mealService) UpdateMeal(ctx context.Context, userID, planID primitive.ObjectID, index int, meal domain.DietMeal) (*domain.DietPlan, error) {
	meal, err := cleanDietMeal(meal)
	if err != nil {
		return nil, err
	}
	return s.editDiet(ctx, userID, planID, func(d *domain.DietPlan) error {
		if err := checkIndex(index, len(d.Meals)); err != nil {
			return err
		}
		d.Meals[index] = meal
		return nil
	})
}

func (s *mealService) RemoveMeal(ctx context.Context, userID, planID primitive.ObjectID, index int) (*domain.DietPlan, error) {
	return s.editDiet(ctx, userID, planID, func(d *domain.DietPlan) error {
		if err := checkIndex(index, len(d.Meals)); err != nil {
			return err
		}
		d.Meals = append(d.Meals[:index], d.Meals[index+1:]...)
		return nil
	})
}

func (s *mealService) ImportMeals(ctx context.Context, items []any) (*ImportResult, error) {
	if len(items) == 0 {
		return nil, invalidf("meals must be a non-empty array")
	}
	result := &ImportResult{Imported: []domain.Meal{}, Failed: []ImportFailure{}}
	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			result.Failed = append(result.Failed, ImportFailure{Index: i, Error: "meal must be an object"})
			continue
		}
		meal, err := mealFromImport(item)
		if err != nil {
			name, _ := item["name"].(string)
			result.Failed = append(result.Failed, ImportFailure{Index: i, Name: name, Error: err.Error()})
			continue
		}
		if _, err := s.store.Meals.Create(ctx, meal); err != nil {
			result.Failed = append(result.Failed, ImportFailure{Index: i, Name: meal.Name, Error: err.Error()})
			continue
		}
		result.Imported = append(result.Imported, *meal)
	}
	s.log.Info("meals imported", "imported", len(result.Imported), "failed", len(result.Failed))
	return result, nil
}

// mealFromImport validates name:string, foods:array, calories:number and
// instructions:array. mealType and macros are optional.
func mealFromImport(item map[string]any) (*domain.Meal, error) {
	name, ok := item["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, errors.New("name must be a non-empty string")
	}
	foods, ok := item["foods"].([]any)
	if !ok {
		return nil, errors.New("foods must be an array")
	}
	calories, ok := item["calories"].(float64)
	if !ok {
		return nil, errors.New("calories must be a number")
	}
	instructions, ok := item["instructions"].([]any)
	if !ok {
		return nil, errors.New("instructions must be an array")
	}

	meal := &domain.Meal{
		Name:         strings.TrimSpace(name),
		Foods:        stringList(foods),
		Calories:     calories,
		Instructions: stringList(instructions),
	}
	if t, ok := item["mealType"].(string); ok {
		meal.MealType = strings.ToLower(strings.TrimSpace(t))
	}
	for key, dst := range map[string]**float64{"protein": &meal.Protein, "carbs": &meal.Carbs, "fat": &meal.Fat} {
		if v, ok := item[key].(float64); ok {
			*dst = &v
		}
	}
	return meal, nil
}

func (s *mealService) LogMeal(ctx context.Context, userID primitive.ObjectID, in MealLogInput) (*domain.MealLog, error) {
	if _, err := parseDate(in.Date); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidf("meal name is required")
	}
	if in.Calories < 0 {
		return nil, invalidf("calories must not be negative")
	}
	entry := &domain.MealLog{
		UserID:   userID,
		Date:     in.Date,
		Name:     name,
		Foods:    in.Foods,
		Calories: in.Calories,
		Protein:  in.Protein,
	}
	if _, err := s.store.MealLogs.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *mealService) DeleteMealLog(ctx context.Context, userID, logID primitive.ObjectID) error {
	err := s.store.MealLogs.Delete(ctx, logID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMealNotFound
	}
	return err
}

func (s *mealService) MealLogs(ctx context.Context, userID primitive.ObjectID, date string) (*MealLogDay, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	logs, err := s.store.MealLogs.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	day := &MealLogDay{Date: date, Logs: logs}
	for _, l := range logs {
		day.TotalCalories += l.Calories
	}
	return day, nil
}

func (s *mealService) RegenerateMeal(ctx context.Context, userID, dailyMealID primitive.ObjectID) (*MealView, error) {
	dm, err := s.store.DailyMeals.GetByID(ctx, dailyMealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	if dm.UserID != userID {
		return nil, ErrMealNotFound
	}
	current, err := s.store.Meals.GetByID(ctx, dm.MealID)
	if err != nil {
		return nil, err
	}
	blocked, err := loadBlocked(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	planned, err := s.store.DailyMeals.ListBySession(ctx, dm.SessionID)
	if err != nil {
		return nil, err
	}
	inSession := map[primitive.ObjectID]bool{}
	for _, p := range planned {
		inSession[p.MealID] = true
	}

	candidates, err := s.store.Meals.ListByType(ctx, current.MealType)
	if err != nil {
		return nil, err
	}
	var next *domain.Meal
	for i := range candidates {
		c := &candidates[i]
		if c.ID == current.ID || blocked.Has(domain.BlockedMeal, c.ID) {
			continue
		}
		if !inSession[c.ID] {
			next = c
			break
		}
		if next == nil {
			next = c
		}
	}
	if next == nil {
		return nil, fmt.Errorf("%w: for meal %q", ErrNoAlternative, current.Name)
	}
	if err := s.store.DailyMeals.UpdateMeal(ctx, dm.ID, next.ID); err != nil {
		return nil, err
	}
	dm.MealID = next.ID
	return &MealView{DailyMeal: *dm, Meal: next}, nil
}
