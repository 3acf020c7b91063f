package main

import (
	"alcyxob/coach-app/internal/api"
	"alcyxob/coach-app/internal/cache"
	"alcyxob/coach-app/internal/config"
	"alcyxob/coach-app/internal/llm"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/metrics"
	"alcyxob/coach-app/internal/repository"
	"alcyxob/coach-app/internal/repository/memory"
	"alcyxob/coach-app/internal/repository/mongo"
	"alcyxob/coach-app/internal/service"
	"alcyxob/coach-app/internal/storage"
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title Coach API
// @version 1.0
// @description Goal-driven training plans, daily workouts, tracking and chat commands.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		stdlog.Fatalf("FATAL: Could not load config: %v", err)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		stdlog.Fatalf("FATAL: Could not create logger: %v", err)
	}
	defer log.Sync()
	log.Info("Starting Coach API server...", "address", cfg.Server.Address)

	ctx := context.Background()

	// --- Database ---
	store, closeStore, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("could not open store", "error", err)
	}
	defer closeStore()

	// --- Storage ---
	var files storage.FileStorage
	if cfg.S3.Enabled() {
		files, err = storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			log.Fatal("failed to initialize S3 storage", "error", err)
		}
	} else {
		log.Warn("no S3 bucket configured, keeping objects in memory")
		files = storage.NewMemoryStorage()
	}

	// --- Redis: rate limiting and strategy drafts ---
	var (
		limiter cache.Limiter
		drafts  service.DraftStore
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal("could not connect to redis", "error", err)
		}
		defer func(rdb *redis.Client) {
			if err := rdb.Close(); err != nil {
				log.Error("failed to close redis", "error", err)
			}
		}(rdb)
		limiter = cache.NewRedisLimiter(rdb, "ratelimit", cfg.RateLimit.Window, cfg.RateLimit.Limit)
		drafts = cache.NewRedisDraftStore(rdb, cache.DraftTTL)
	} else {
		log.Warn("no redis configured, rate limits and drafts are per process")
		limiter = cache.NewMemoryLimiter(cfg.RateLimit.Window, cfg.RateLimit.Limit)
		drafts = cache.NewMemoryDraftStore(cache.DraftTTL)
	}

	// --- Metrics & generation client ---
	metricsManager := metrics.NewManager("api")
	generator := llm.NewClient(cfg.LLM, log, metricsManager)
	if cfg.LLM.APIKey == "" {
		log.Warn("llm.api_key is empty, generation endpoints will fail")
	}

	// --- Services ---
	profileService := service.NewProfileService(store, log)
	authService := service.NewAuthService(profileService, cfg.JWT.Secret, cfg.JWT.Issuer)
	strategyService := service.NewStrategyService(store, profileService, generator, drafts, log)
	dailyPlanService := service.NewDailyPlanService(store, generator, log)
	materializer := service.NewMaterializer(store, dailyPlanService, nil, service.Limits{
		MaxSetsPerSession:      cfg.Limits.MaxSetsPerSession,
		MaxSetsPerBodyPartWeek: cfg.Limits.MaxSetsPerBodyPartWeek,
	}, log)
	trackingService := service.NewTrackingService(store, files, service.TrackingOptions{
		AccessorySessions: cfg.Limits.AccessorySessions,
		ExportURLTTL:      cfg.S3.PresignTTL,
	}, log)
	mealService := service.NewMealService(store, log)

	services := api.Services{
		Auth:         authService,
		Profiles:     profileService,
		Strategy:     strategyService,
		Materializer: materializer,
		Tracking:     trackingService,
		Projection:   service.NewProjectionService(store, nil),
		Meals:        mealService,
		Chat:         service.NewChatService(store, generator, trackingService, mealService, log),
		Exercises:    service.NewExerciseService(store, files, mealService, cfg.S3.PresignTTL, log),
	}

	// --- Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, services, api.RouterOptions{
		CORSOrigins:   cfg.Server.CORSOrigins,
		WebhookSecret: cfg.Webhook.Secret,
		Limiter:       limiter,
		Metrics:       metricsManager,
	}, log)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe error", "error", err)
		}
	}()
	log.Info("Server started", "address", cfg.Server.Address)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("Server exiting.")
}

// openStore connects to MongoDB, or builds the in-process store for a
// memory:// URI.
func openStore(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*repository.Store, func(), error) {
	if cfg.InMemory() {
		log.Warn("using the in-memory store, data is lost on exit")
		return memory.NewStore(), func() {}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	db := client.Database(cfg.Name)
	log.Info("Database connection established.", "database", cfg.Name)

	indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	mongo.EnsureIndexes(indexCtx, db, log)

	closeFn := func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(client); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}
	return mongo.NewStore(client, db), closeFn, nil
}
