package mongo

import (
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// txRunner runs callbacks inside a multi-document transaction.
// Requires a replica set (a single-node replica set is enough).
type txRunner struct {
	client *mongo.Client
}

// NewTxRunner creates a repository.TxRunner backed by client sessions.
func NewTxRunner(client *mongo.Client) repository.TxRunner {
	return &txRunner{client: client}
}

func (t *txRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// NewStore wires every MongoDB repository against db.
func NewStore(client *mongo.Client, db *mongo.Database) *repository.Store {
	return &repository.Store{
		Tx:         NewTxRunner(client),
		Users:      NewMongoUserRepository(db),
		Goals:      NewMongoGoalRepository(db),
		Plans:      NewMongoTrainingPlanRepository(db),
		Exercises:  NewMongoExerciseRepository(db),
		Sessions:   NewMongoSessionRepository(db),
		Sets:       NewMongoSetRepository(db),
		Meals:      NewMongoMealRepository(db),
		DailyMeals: NewMongoDailyMealRepository(db),
		MealLogs:   NewMongoMealLogRepository(db),
		Blocked:    NewMongoBlockedItemRepository(db),
		DailyLogs:  NewMongoDailyLogRepository(db),
		Exports:    NewMongoExportRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Failures are logged,
// not fatal.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *logger.Logger) {
	ensure := map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:         EnsureUserIndexes,
		goalCollectionName:         EnsureGoalIndexes,
		trainingPlanCollectionName: EnsureTrainingPlanIndexes,
		exerciseCollectionName:     EnsureExerciseIndexes,
		sessionCollectionName:      EnsureSessionIndexes,
		setCollectionName:          EnsureSetIndexes,
		mealCollectionName:         EnsureMealIndexes,
		dailyMealCollectionName:    EnsureDailyMealIndexes,
		mealLogCollectionName:      EnsureMealLogIndexes,
		blockedCollectionName:      EnsureBlockedItemIndexes,
		dailyLogCollectionName:     EnsureDailyLogIndexes,
		exportCollectionName:       EnsureExportIndexes,
	}
	for name, fn := range ensure {
		if err := fn(ctx, db.Collection(name)); err != nil {
			log.Warn("failed to create indexes", "collection", name, "error", err)
		}
	}
}

var errFailedIDConversion = errors.New("failed to convert inserted ID")

// insertedObjectID converts an InsertOne result id.
func insertedObjectID(result *mongo.InsertOneResult) (primitive.ObjectID, error) {
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errFailedIDConversion
	}
	return id, nil
}

// findOne decodes a single document, mapping ErrNoDocuments to repository.ErrNotFound.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter, opts...).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// findMany decodes every matching document. Returns an empty slice, never nil.
func findMany[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
