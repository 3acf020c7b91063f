// Command catalog-import loads the exercise and meal catalog from a JSON
// document, either a local file or the catalog object in the S3 bucket.
package main

import (
	"alcyxob/coach-app/internal/config"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/repository/mongo"
	"alcyxob/coach-app/internal/service"
	"alcyxob/coach-app/internal/storage"
	"context"
	"flag"
	stdlog "log"
	"os"
	"time"
)

func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	file := flag.String("file", "", "local catalog file; the S3 catalog object is used when empty")
	key := flag.String("key", "", "S3 object key, defaults to s3.catalog_key")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		stdlog.Fatalf("FATAL: Could not load config: %v", err)
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		stdlog.Fatalf("FATAL: Could not create logger: %v", err)
	}
	defer log.Sync()

	if cfg.Database.InMemory() {
		log.Fatal("catalog import needs a MongoDB database, got the in-memory store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	raw, source, err := readCatalog(ctx, cfg.S3, *file, *key, log)
	if err != nil {
		log.Fatal("failed to read catalog", "error", err)
	}
	log.Info("catalog loaded", "source", source, "bytes", len(raw))

	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("could not connect to MongoDB", "error", err)
	}
	defer func() {
		if err := mongo.DisconnectDB(client); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	db := client.Database(cfg.Database.Name)
	mongo.EnsureIndexes(ctx, db, log)
	store := mongo.NewStore(client, db)

	meals := service.NewMealService(store, log)
	exercises := service.NewExerciseService(store, nil, meals, 0, log)
	result, err := exercises.ImportCatalog(ctx, raw)
	if err != nil {
		log.Fatal("catalog import failed", "error", err)
	}
	for _, f := range result.Failed {
		log.Warn("exercise rejected", "index", f.Index, "name", f.Name, "error", f.Error)
	}
	if result.Meals != nil {
		for _, f := range result.Meals.Failed {
			log.Warn("meal rejected", "index", f.Index, "name", f.Name, "error", f.Error)
		}
	}
	log.Info("catalog import finished", "exercises", result.Exercises, "rejected", len(result.Failed))
}

// readCatalog reads the local file when one is given, otherwise the catalog
// object from the bucket.
func readCatalog(ctx context.Context, cfg config.S3Config, file, key string, log *logger.Logger) ([]byte, string, error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		return raw, file, err
	}
	if key == "" {
		key = cfg.CatalogKey
	}
	files, err := storage.NewS3Storage(ctx, cfg, log)
	if err != nil {
		return nil, "", err
	}
	raw, err := files.GetObject(ctx, key)
	return raw, "s3://" + cfg.BucketName + "/" + key, err
}
