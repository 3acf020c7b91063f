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

const blockedCollectionName = "blocked_items"

// mongoBlockedItemRepository implements repository.BlockedItemRepository
type mongoBlockedItemRepository struct {
	collection *mongo.Collection
}

// NewMongoBlockedItemRepository creates a new BlockedItem repository.
func NewMongoBlockedItemRepository(db *mongo.Database) repository.BlockedItemRepository {
	return &mongoBlockedItemRepository{collection: db.Collection(blockedCollectionName)}
}

// Create blocks an item. Blocking twice returns repository.ErrDuplicate.
func (r *mongoBlockedItemRepository) Create(ctx context.Context, item *domain.BlockedItem) (primitive.ObjectID, error) {
	if item.UserID == primitive.NilObjectID || item.ItemID == "" || item.ItemType == "" {
		return primitive.NilObjectID, errors.New("blocked item requires userId, itemType and itemId")
	}
	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// ListByUser returns every block of the user.
func (r *mongoBlockedItemRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error) {
	return findMany[domain.BlockedItem](ctx, r.collection, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

// EnsureBlockedItemIndexes creates necessary indexes.
func EnsureBlockedItemIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "itemType", Value: 1}, {Key: "itemId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
