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

const setCollectionName = "exercise_sets"

// mongoSetRepository implements repository.SetRepository
type mongoSetRepository struct {
	collection *mongo.Collection
}

// NewMongoSetRepository creates a new ExerciseSet repository.
func NewMongoSetRepository(db *mongo.Database) repository.SetRepository {
	return &mongoSetRepository{
		collection: db.Collection(setCollectionName),
	}
}

// CreateMany inserts sets in order. IDs are assigned here so that _id order
// matches exercise order within a session.
func (r *mongoSetRepository) CreateMany(ctx context.Context, sets []domain.ExerciseSet) error {
	if len(sets) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(sets))
	for i := range sets {
		if sets[i].SessionID == primitive.NilObjectID || sets[i].ExerciseID == primitive.NilObjectID {
			return errors.New("set requires sessionId and exerciseId")
		}
		sets[i].ID = primitive.NewObjectID()
		sets[i].CreatedAt = now
		sets[i].UpdatedAt = now
		docs = append(docs, sets[i])
	}
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a single set.
func (r *mongoSetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error) {
	return findOne[domain.ExerciseSet](ctx, r.collection, bson.M{"_id": id})
}

// ListBySession returns the session's sets in creation order.
func (r *mongoSetRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	return findMany[domain.ExerciseSet](ctx, r.collection, bson.M{"sessionId": sessionID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// ListBySessions returns the sets of several sessions in creation order.
func (r *mongoSetRepository) ListBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) ([]domain.ExerciseSet, error) {
	if len(sessionIDs) == 0 {
		return []domain.ExerciseSet{}, nil
	}
	filter := bson.M{"sessionId": bson.M{"$in": sessionIDs}}
	return findMany[domain.ExerciseSet](ctx, r.collection, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// ListRecentCompleted returns the most recent completed sets of one exercise.
func (r *mongoSetRepository) ListRecentCompleted(ctx context.Context, userID, exerciseID primitive.ObjectID, limit int) ([]domain.ExerciseSet, error) {
	filter := bson.M{"userId": userID, "exerciseId": exerciseID, "completed": true}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "setNumber", Value: 1}}).
		SetLimit(int64(limit))
	return findMany[domain.ExerciseSet](ctx, r.collection, filter, findOptions)
}

// ListByUserInRange returns every set of the user dated within [from, to].
func (r *mongoSetRepository) ListByUserInRange(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.ExerciseSet, error) {
	filter := bson.M{"userId": userID, "date": bson.M{"$gte": from, "$lte": to}}
	return findMany[domain.ExerciseSet](ctx, r.collection, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}))
}

// Update persists planned/actual values and completion.
func (r *mongoSetRepository) Update(ctx context.Context, set *domain.ExerciseSet) error {
	if set.ID == primitive.NilObjectID {
		return errors.New("set ID is required for update")
	}
	set.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"exerciseId":    set.ExerciseID,
			"plannedWeight": set.PlannedWeight,
			"plannedReps":   set.PlannedReps,
			"actualWeight":  set.ActualWeight,
			"actualReps":    set.ActualReps,
			"rpe":           set.RPE,
			"completed":     set.Completed,
			"completedAt":   set.CompletedAt,
			"updatedAt":     set.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": set.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateDateForSession keeps the denormalized date in step with a moved session.
func (r *mongoSetRepository) UpdateDateForSession(ctx context.Context, sessionID primitive.ObjectID, date string) error {
	update := bson.M{"$set": bson.M{"date": date, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, bson.M{"sessionId": sessionID}, update)
	return err
}

// DeleteByIDs deletes the given sets.
func (r *mongoSetRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteBySession deletes every set of a session.
func (r *mongoSetRepository) DeleteBySession(ctx context.Context, sessionID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureSetIndexes creates necessary indexes. Call during startup.
func EnsureSetIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Set numbers are unique within (session, exercise)
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "exerciseId", Value: 1}, {Key: "setNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Progression lookups
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "exerciseId", Value: 1}, {Key: "completed", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
