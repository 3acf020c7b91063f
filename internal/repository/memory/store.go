// Package memory is an in-process implementation of the repository
// interfaces. It backs the "memory://" database URI and the service tests.
package memory

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"bytes"
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type tables struct {
	users      map[primitive.ObjectID]domain.User
	goals      map[primitive.ObjectID]domain.Goal
	plans      map[primitive.ObjectID]domain.TrainingPlan
	exercises  map[primitive.ObjectID]domain.Exercise
	sessions   map[primitive.ObjectID]domain.WorkoutSession
	sets       map[primitive.ObjectID]domain.ExerciseSet
	meals      map[primitive.ObjectID]domain.Meal
	dailyMeals map[primitive.ObjectID]domain.DailyMeal
	mealLogs   map[primitive.ObjectID]domain.MealLog
	blocked    map[primitive.ObjectID]domain.BlockedItem
	dailyLogs  map[primitive.ObjectID]domain.DailyLog
	exports    map[primitive.ObjectID]domain.HistoryExport
}

func newTables() tables {
	return tables{
		users:      map[primitive.ObjectID]domain.User{},
		goals:      map[primitive.ObjectID]domain.Goal{},
		plans:      map[primitive.ObjectID]domain.TrainingPlan{},
		exercises:  map[primitive.ObjectID]domain.Exercise{},
		sessions:   map[primitive.ObjectID]domain.WorkoutSession{},
		sets:       map[primitive.ObjectID]domain.ExerciseSet{},
		meals:      map[primitive.ObjectID]domain.Meal{},
		dailyMeals: map[primitive.ObjectID]domain.DailyMeal{},
		mealLogs:   map[primitive.ObjectID]domain.MealLog{},
		blocked:    map[primitive.ObjectID]domain.BlockedItem{},
		dailyLogs:  map[primitive.ObjectID]domain.DailyLog{},
		exports:    map[primitive.ObjectID]domain.HistoryExport{},
	}
}

func cloneMap[T any](m map[primitive.ObjectID]T) map[primitive.ObjectID]T {
	out := make(map[primitive.ObjectID]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t tables) clone() tables {
	return tables{
		users:      cloneMap(t.users),
		goals:      cloneMap(t.goals),
		plans:      cloneMap(t.plans),
		exercises:  cloneMap(t.exercises),
		sessions:   cloneMap(t.sessions),
		sets:       cloneMap(t.sets),
		meals:      cloneMap(t.meals),
		dailyMeals: cloneMap(t.dailyMeals),
		mealLogs:   cloneMap(t.mealLogs),
		blocked:    cloneMap(t.blocked),
		dailyLogs:  cloneMap(t.dailyLogs),
		exports:    cloneMap(t.exports),
	}
}

// DB holds every table behind one mutex. Transactions run one at a time;
// calls outside a transaction wait for the running one to finish, so a
// rollback never discards their writes.
type DB struct {
	mu   sync.Mutex
	txMu sync.Mutex
	t    tables
}

type txKey struct{}

// NewDB creates an empty database.
func NewDB() *DB {
	return &DB{t: newTables()}
}

func (db *DB) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*DB)
	return owner == db
}

// lock acquires the tables for one repository call and returns the release func.
func (db *DB) lock(ctx context.Context) func() {
	if db.inTx(ctx) {
		db.mu.Lock()
		return db.mu.Unlock
	}
	db.txMu.Lock()
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		db.txMu.Unlock()
	}
}

// WithTransaction serializes transactions and restores a snapshot when fn
// fails, so partial writes are never visible afterwards. A nested call joins
// the outer transaction.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.inTx(ctx) {
		return fn(ctx)
	}
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	snapshot := db.t.clone()
	db.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		db.mu.Lock()
		db.t = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

// NewStore wires every in-memory repository against one DB.
func NewStore() *repository.Store {
	return NewStoreWithDB(NewDB())
}

// NewStoreWithDB wires a store around an existing DB.
func NewStoreWithDB(db *DB) *repository.Store {
	return &repository.Store{
		Tx:         db,
		Users:      &userRepo{db},
		Goals:      &goalRepo{db},
		Plans:      &planRepo{db},
		Exercises:  &exerciseRepo{db},
		Sessions:   &sessionRepo{db},
		Sets:       &setRepo{db},
		Meals:      &mealRepo{db},
		DailyMeals: &dailyMealRepo{db},
		MealLogs:   &mealLogRepo{db},
		Blocked:    &blockedRepo{db},
		DailyLogs:  &dailyLogRepo{db},
		Exports:    &exportRepo{db},
	}
}

func idLess(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// collect returns the rows matching keep, ordered by id.
func collect[T any](m map[primitive.ObjectID]T, keep func(T) bool) []T {
	ids := make([]primitive.ObjectID, 0, len(m))
	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func get[T any](m map[primitive.ObjectID]T, id primitive.ObjectID) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func first[T any](m map[primitive.ObjectID]T, keep func(T) bool) (*T, error) {
	rows := collect(m, keep)
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return &rows[0], nil
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	out := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
