package mongo

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dailyLogCollectionName = "daily_logs"

type mongoDailyLogRepository struct {
	collection *mongo.Collection
}

// NewMongoDailyLogRepository creates a new DailyLog repository.
func NewMongoDailyLogRepository(db *mongo.Database) repository.DailyLogRepository {
	return &mongoDailyLogRepository{collection: db.Collection(dailyLogCollectionName)}
}

// Increment adds steps and water to the day's log, creating it if needed.
func (r *mongoDailyLogRepository) Increment(ctx context.Context, userID primitive.ObjectID, date string, steps, waterMl int) (*domain.DailyLog, error) {
	update := bson.M{
		"$inc":         bson.M{"steps": steps, "waterMl": waterMl},
		"$set":         bson.M{"updatedAt": time.Now().UTC()},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	return r.upsert(ctx, userID, date, update)
}

// SetSteps overwrites the day's step count.
func (r *mongoDailyLogRepository) SetSteps(ctx context.Context, userID primitive.ObjectID, date string, steps int) (*domain.DailyLog, error) {
	update := bson.M{
		"$set":         bson.M{"steps": steps, "updatedAt": time.Now().UTC()},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "waterMl": 0},
	}
	return r.upsert(ctx, userID, date, update)
}

func (r *mongoDailyLogRepository) upsert(ctx context.Context, userID primitive.ObjectID, date string, update bson.M) (*domain.DailyLog, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out domain.DailyLog
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"userId": userID, "date": date}, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsureDailyLogIndexes creates necessary indexes.
func EnsureDailyLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
