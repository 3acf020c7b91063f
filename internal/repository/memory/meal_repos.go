package memory

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mealRepo struct{ db *DB }

func (r *mealRepo) Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error) {
	if meal.Name == "" {
		return primitive.NilObjectID, errors.New("meal name is required")
	}
	defer r.db.lock(ctx)()
	meal.ID = primitive.NewObjectID()
	meal.CreatedAt = time.Now().UTC()
	r.db.t.meals[meal.ID] = *meal
	return meal.ID, nil
}

func (r *mealRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	defer r.db.lock(ctx)()
	return get(r.db.t.meals, id)
}

func (r *mealRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Meal, error) {
	defer r.db.lock(ctx)()
	want := idSet(ids)
	return collect(r.db.t.meals, func(m domain.Meal) bool { _, ok := want[m.ID]; return ok }), nil
}

func (r *mealRepo) FindByName(ctx context.Context, name string) (*domain.Meal, error) {
	defer r.db.lock(ctx)()
	return first(r.db.t.meals, func(m domain.Meal) bool { return strings.EqualFold(m.Name, name) })
}

func (r *mealRepo) ListByType(ctx context.Context, mealType string) ([]domain.Meal, error) {
	defer r.db.lock(ctx)()
	return collect(r.db.t.meals, func(m domain.Meal) bool { return m.MealType == mealType }), nil
}

type dailyMealRepo struct{ db *DB }

func (r *dailyMealRepo) CreateMany(ctx context.Context, meals []domain.DailyMeal) error {
	defer r.db.lock(ctx)()
	now := time.Now().UTC()
	for i := range meals {
		meals[i].ID = primitive.NewObjectID()
		meals[i].CreatedAt = now
		r.db.t.dailyMeals[meals[i].ID] = meals[i]
	}
	return nil
}

func (r *dailyMealRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DailyMeal, error) {
	defer r.db.lock(ctx)()
	return get(r.db.t.dailyMeals, id)
}

func (r *dailyMealRepo) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.DailyMeal, error) {
	defer r.db.lock(ctx)()
	out := collect(r.db.t.dailyMeals, func(m domain.DailyMeal) bool { return m.SessionID == sessionID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *dailyMealRepo) UpdateMeal(ctx context.Context, id, mealID primitive.ObjectID) error {
	defer r.db.lock(ctx)()
	m, ok := r.db.t.dailyMeals[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.MealID = mealID
	m.Eaten = false
	r.db.t.dailyMeals[id] = m
	return nil
}

func (r *dailyMealRepo) DeleteBySession(ctx context.Context, sessionID primitive.ObjectID) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for id, m := range r.db.t.dailyMeals {
		if m.SessionID == sessionID {
			delete(r.db.t.dailyMeals, id)
			n++
		}
	}
	return n, nil
}

type mealLogRepo struct{ db *DB }

func (r *mealLogRepo) Create(ctx context.Context, log *domain.MealLog) (primitive.ObjectID, error) {
	if log.UserID == primitive.NilObjectID || log.Date == "" || log.Name == "" {
		return primitive.NilObjectID, errors.New("meal log requires userId, date and name")
	}
	defer r.db.lock(ctx)()
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()
	r.db.t.mealLogs[log.ID] = *log
	return log.ID, nil
}

func (r *mealLogRepo) ListByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) ([]domain.MealLog, error) {
	defer r.db.lock(ctx)()
	return collect(r.db.t.mealLogs, func(l domain.MealLog) bool { return l.UserID == userID && l.Date == date }), nil
}

func (r *mealLogRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	defer r.db.lock(ctx)()
	l, ok := r.db.t.mealLogs[id]
	if !ok || l.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.db.t.mealLogs, id)
	return nil
}

type blockedRepo struct{ db *DB }

func (r *blockedRepo) Create(ctx context.Context, item *domain.BlockedItem) (primitive.ObjectID, error) {
	if item.UserID == primitive.NilObjectID || item.ItemID == "" || item.ItemType == "" {
		return primitive.NilObjectID, errors.New("blocked item requires userId, itemType and itemId")
	}
	defer r.db.lock(ctx)()
	for _, b := range r.db.t.blocked {
		if b.UserID == item.UserID && b.ItemType == item.ItemType && b.ItemID == item.ItemID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Now().UTC()
	r.db.t.blocked[item.ID] = *item
	return item.ID, nil
}

func (r *blockedRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error) {
	defer r.db.lock(ctx)()
	return collect(r.db.t.blocked, func(b domain.BlockedItem) bool { return b.UserID == userID }), nil
}

type dailyLogRepo struct{ db *DB }

func (r *dailyLogRepo) upsert(userID primitive.ObjectID, date string, apply func(*domain.DailyLog)) *domain.DailyLog {
	log, err := first(r.db.t.dailyLogs, func(l domain.DailyLog) bool { return l.UserID == userID && l.Date == date })
	if err != nil {
		log = &domain.DailyLog{ID: primitive.NewObjectID(), UserID: userID, Date: date}
	}
	apply(log)
	log.UpdatedAt = time.Now().UTC()
	r.db.t.dailyLogs[log.ID] = *log
	return log
}

func (r *dailyLogRepo) Increment(ctx context.Context, userID primitive.ObjectID, date string, steps, waterMl int) (*domain.DailyLog, error) {
	defer r.db.lock(ctx)()
	return r.upsert(userID, date, func(l *domain.DailyLog) {
		l.Steps += steps
		l.WaterMl += waterMl
	}), nil
}

func (r *dailyLogRepo) SetSteps(ctx context.Context, userID primitive.ObjectID, date string, steps int) (*domain.DailyLog, error) {
	defer r.db.lock(ctx)()
	return r.upsert(userID, date, func(l *domain.DailyLog) { l.Steps = steps }), nil
}

type exportRepo struct{ db *DB }

func (r *exportRepo) Create(ctx context.Context, export *domain.HistoryExport) (primitive.ObjectID, error) {
	if export.UserID == primitive.NilObjectID || export.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("export requires userId and objectKey")
	}
	defer r.db.lock(ctx)()
	export.ID = primitive.NewObjectID()
	export.CreatedAt = time.Now().UTC()
	r.db.t.exports[export.ID] = *export
	return export.ID, nil
}

func (r *exportRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.HistoryExport, error) {
	defer r.db.lock(ctx)()
	out := collect(r.db.t.exports, func(e domain.HistoryExport) bool { return e.UserID == userID })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
