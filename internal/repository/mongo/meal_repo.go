package mongo

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mealCollectionName      = "meals"
	dailyMealCollectionName = "daily_meals"
	mealLogCollectionName   = "meal_logs"
)

// --- Meal catalog ---

type mongoMealRepository struct {
	collection *mongo.Collection
}

// NewMongoMealRepository creates a new Meal catalog repository.
func NewMongoMealRepository(db *mongo.Database) repository.MealRepository {
	return &mongoMealRepository{collection: db.Collection(mealCollectionName)}
}

func (r *mongoMealRepository) Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error) {
	if meal.Name == "" {
		return primitive.NilObjectID, errors.New("meal name is required")
	}
	meal.ID = primitive.NewObjectID()
	meal.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, meal)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoMealRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	return findOne[domain.Meal](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoMealRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Meal, error) {
	if len(ids) == 0 {
		return []domain.Meal{}, nil
	}
	return findMany[domain.Meal](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

// FindByName looks a meal up by name, ignoring case.
func (r *mongoMealRepository) FindByName(ctx context.Context, name string) (*domain.Meal, error) {
	return findOne[domain.Meal](ctx, r.collection, bson.M{"name": name}, options.FindOne().SetCollation(nameCollation))
}

func (r *mongoMealRepository) ListByType(ctx context.Context, mealType string) ([]domain.Meal, error) {
	return findMany[domain.Meal](ctx, r.collection, bson.M{"mealType": mealType}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// EnsureMealIndexes creates necessary indexes for the meals collection.
func EnsureMealIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetCollation(nameCollation)},
		{Keys: bson.D{{Key: "mealType", Value: 1}}, Options: options.Index()},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// --- Daily meals (session links) ---

type mongoDailyMealRepository struct {
	collection *mongo.Collection
}

// NewMongoDailyMealRepository creates a new DailyMeal repository.
func NewMongoDailyMealRepository(db *mongo.Database) repository.DailyMealRepository {
	return &mongoDailyMealRepository{collection: db.Collection(dailyMealCollectionName)}
}

func (r *mongoDailyMealRepository) CreateMany(ctx context.Context, meals []domain.DailyMeal) error {
	if len(meals) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(meals))
	for i := range meals {
		meals[i].ID = primitive.NewObjectID()
		meals[i].CreatedAt = now
		docs = append(docs, meals[i])
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *mongoDailyMealRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DailyMeal, error) {
	return findOne[domain.DailyMeal](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoDailyMealRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.DailyMeal, error) {
	return findMany[domain.DailyMeal](ctx, r.collection, bson.M{"sessionId": sessionID}, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
}

func (r *mongoDailyMealRepository) UpdateMeal(ctx context.Context, id, mealID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"mealId": mealID, "eaten": false}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoDailyMealRepository) DeleteBySession(ctx context.Context, sessionID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureDailyMealIndexes creates necessary indexes.
func EnsureDailyMealIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "order", Value: 1}},
		Options: options.Index(),
	})
	return err
}

// --- Meal logs ---

type mongoMealLogRepository struct {
	collection *mongo.Collection
}

// NewMongoMealLogRepository creates a new MealLog repository.
func NewMongoMealLogRepository(db *mongo.Database) repository.MealLogRepository {
	return &mongoMealLogRepository{collection: db.Collection(mealLogCollectionName)}
}

func (r *mongoMealLogRepository) Create(ctx context.Context, log *domain.MealLog) (primitive.ObjectID, error) {
	if log.UserID == primitive.NilObjectID || log.Date == "" || log.Name == "" {
		return primitive.NilObjectID, errors.New("meal log requires userId, date and name")
	}
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoMealLogRepository) ListByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) ([]domain.MealLog, error) {
	return findMany[domain.MealLog](ctx, r.collection, bson.M{"userId": userID, "date": date}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

// Delete removes a log, only if it belongs to userID.
func (r *mongoMealLogRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMealLogIndexes creates necessary indexes.
func EnsureMealLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index(),
	})
	return err
}
