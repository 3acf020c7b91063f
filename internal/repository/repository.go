package repository

import (
	"alcyxob/coach-app/internal/domain" // Import our defined domain models
	"context"                           // Standard for request-scoped deadlines, cancellation signals, etc.

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxRunner runs fn inside one transaction. Repository calls made with the
// ctx handed to fn take part in it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	// UpsertByExternalID creates the user on first sync or refreshes identity fields.
	UpsertByExternalID(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// GoalRepository defines the interface for interacting with goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error)
	DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, goal *domain.Goal) error
}

// TrainingPlanRepository defines the interface for interacting with training plan data.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error)
	DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	UpdateDiet(ctx context.Context, planID primitive.ObjectID, diet domain.DietPlan) error
}

// ExerciseRepository defines the interface for interacting with the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	// UpsertByName inserts or replaces the catalog entry with the same name (case-insensitive).
	UpsertByName(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	ListAll(ctx context.Context) ([]domain.Exercise, error)
	ListByBodyPart(ctx context.Context, bodyPart string) ([]domain.Exercise, error)
}

// SessionRepository defines the interface for interacting with workout sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.WorkoutSession, error)
	// ListByUserInRange returns sessions with from <= date <= to.
	ListByUserInRange(ctx context.Context, userID primitive.ObjectID, from, to string, ascending bool) ([]domain.WorkoutSession, error)
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.WorkoutSession, error)
	UpdateDate(ctx context.Context, id primitive.ObjectID, date string, dayOfWeek *int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SetRepository defines the interface for interacting with exercise sets.
type SetRepository interface {
	CreateMany(ctx context.Context, sets []domain.ExerciseSet) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error)
	// ListBySession returns sets ordered by insertion (exercise order), then set number.
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseSet, error)
	ListBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) ([]domain.ExerciseSet, error)
	// ListRecentCompleted returns completed sets of one exercise, most recent date first.
	ListRecentCompleted(ctx context.Context, userID, exerciseID primitive.ObjectID, limit int) ([]domain.ExerciseSet, error)
	ListByUserInRange(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.ExerciseSet, error)
	Update(ctx context.Context, set *domain.ExerciseSet) error
	UpdateDateForSession(ctx context.Context, sessionID primitive.ObjectID, date string) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	DeleteBySession(ctx context.Context, sessionID primitive.ObjectID) (int64, error)
}

// MealRepository defines the interface for the meal catalog.
type MealRepository interface {
	Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Meal, error)
	FindByName(ctx context.Context, name string) (*domain.Meal, error)
	ListByType(ctx context.Context, mealType string) ([]domain.Meal, error)
}

// DailyMealRepository defines the interface for session meal links.
type DailyMealRepository interface {
	CreateMany(ctx context.Context, meals []domain.DailyMeal) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DailyMeal, error)
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.DailyMeal, error)
	UpdateMeal(ctx context.Context, id, mealID primitive.ObjectID) error
	DeleteBySession(ctx context.Context, sessionID primitive.ObjectID) (int64, error)
}

// MealLogRepository defines the interface for user meal logs.
type MealLogRepository interface {
	Create(ctx context.Context, log *domain.MealLog) (primitive.ObjectID, error)
	ListByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) ([]domain.MealLog, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// BlockedItemRepository defines the interface for permanent exclusions.
type BlockedItemRepository interface {
	// Create returns ErrDuplicate if the item is already blocked.
	Create(ctx context.Context, item *domain.BlockedItem) (primitive.ObjectID, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error)
}

// DailyLogRepository defines the interface for steps/water logs.
type DailyLogRepository interface {
	// Increment adds to the day's counters, creating the log if needed.
	Increment(ctx context.Context, userID primitive.ObjectID, date string, steps, waterMl int) (*domain.DailyLog, error)
	SetSteps(ctx context.Context, userID primitive.ObjectID, date string, steps int) (*domain.DailyLog, error)
}

// ExportRepository defines the interface for history export metadata.
type ExportRepository interface {
	Create(ctx context.Context, export *domain.HistoryExport) (primitive.ObjectID, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.HistoryExport, error)
}

// Store groups every repository plus the transaction runner.
type Store struct {
	Tx         TxRunner
	Users      UserRepository
	Goals      GoalRepository
	Plans      TrainingPlanRepository
	Exercises  ExerciseRepository
	Sessions   SessionRepository
	Sets       SetRepository
	Meals      MealRepository
	DailyMeals DailyMealRepository
	MealLogs   MealLogRepository
	Blocked    BlockedItemRepository
	DailyLogs  DailyLogRepository
	Exports    ExportRepository
}
