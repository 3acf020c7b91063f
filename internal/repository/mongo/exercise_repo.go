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

const exerciseCollectionName = "exercises"

// Case-insensitive comparison for exercise names.
var nameCollation = &options.Collation{Locale: "en", Strength: 2}

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the catalog.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// UpsertByName inserts the exercise or refreshes the entry with the same name.
func (r *mongoExerciseRepository) UpsertByName(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":      exercise.Name,
			"bodyParts": exercise.BodyParts,
			"compound":  exercise.Compound,
			"equipment": exercise.Equipment,
			"mediaKey":  exercise.MediaKey,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetCollation(nameCollation)

	var out domain.Exercise
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"name": exercise.Name}, update, opts).Decode(&out); err != nil {
		return primitive.NilObjectID, err
	}
	exercise.ID = out.ID
	return out.ID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return findOne[domain.Exercise](ctx, r.collection, bson.M{"_id": id})
}

// GetByIDs retrieves every exercise whose id is in ids.
func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	return findMany[domain.Exercise](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

// ListAll returns the whole catalog ordered by insertion.
func (r *mongoExerciseRepository) ListAll(ctx context.Context) ([]domain.Exercise, error) {
	return findMany[domain.Exercise](ctx, r.collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// ListByBodyPart returns exercises tagged with bodyPart.
func (r *mongoExerciseRepository) ListByBodyPart(ctx context.Context, bodyPart string) ([]domain.Exercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "compound", Value: -1}, {Key: "_id", Value: 1}})
	return findMany[domain.Exercise](ctx, r.collection, bson.M{"bodyParts": bodyPart}, findOptions)
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(nameCollation),
		},
		{
			Keys:    bson.D{{Key: "bodyParts", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
