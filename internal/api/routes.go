package api

import (
	"alcyxob/coach-app/internal/cache"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/metrics"
	"alcyxob/coach-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services are the business dependencies of the routes.
type Services struct {
	Auth         service.AuthService
	Profiles     service.ProfileService
	Strategy     service.StrategyService
	Materializer service.Materializer
	Tracking     service.TrackingService
	Projection   service.ProjectionService
	Meals        service.MealService
	Chat         service.ChatService
	Exercises    service.ExerciseService
}

// RouterOptions holds the cross-cutting settings of the router.
type RouterOptions struct {
	CORSOrigins   []string
	WebhookSecret string
	// Limiter guards the generation and chat routes. Nil disables limiting.
	Limiter cache.Limiter
	// Metrics is optional; /metrics is only served when set.
	Metrics *metrics.Manager
}

func SetupRoutes(router *gin.Engine, svc Services, opts RouterOptions, log *logger.Logger) {
	identityHandler := NewIdentityHandler(svc.Profiles, log)
	profileHandler := NewProfileHandler(svc.Profiles, svc.Strategy, log)
	programHandler := NewProgramHandler(svc.Strategy, svc.Meals, log)
	workoutHandler := NewWorkoutHandler(svc.Materializer, svc.Tracking, log)
	exerciseHandler := NewExerciseHandler(svc.Exercises, svc.Projection, svc.Tracking, log)
	mealHandler := NewMealHandler(svc.Meals, svc.Tracking, log)
	chatHandler := NewChatHandler(svc.Chat, log)

	router.Use(RequestID(), RequestLogger(log), corsMiddleware(opts.CORSOrigins))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.RequestMetrics())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.POST("/clerk-webhook", WebhookSecretMiddleware(opts.WebhookSecret), identityHandler.IdentityWebhook)

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth, log))

	// Generation and chat call the text generator; everything else is cheap.
	limited := protected.Group("")
	if opts.Limiter != nil {
		limited.Use(RateLimitMiddleware(opts.Limiter, log))
	}
	{
		limited.POST("/generate-program", programHandler.GenerateProgram)
		limited.POST("/workouts/generate", workoutHandler.GenerateDay)
		limited.POST("/chat", chatHandler.Chat)
	}

	{
		protected.GET("/me", func(c *gin.Context) {
			user, ok := requireUser(c)
			if !ok {
				return
			}
			respondOK(c, user)
		})

		// --- Profile & goals ---
		protected.GET("/profile", profileHandler.GetProfile)
		protected.PATCH("/profile", profileHandler.UpdateProfile)
		protected.POST("/goals", profileHandler.CreateGoal)
		protected.GET("/goals/active", profileHandler.ActiveGoal)
		protected.POST("/goals/:id/complete", profileHandler.CompleteGoal)
		protected.POST("/goals/validate-lift", profileHandler.ValidateLift)

		// --- Long-term plan & diet ---
		protected.POST("/plans", programHandler.SavePlan)
		protected.GET("/plans/active", programHandler.ActivePlan)
		protected.POST("/add-meal", programHandler.AddMeal)
		protected.POST("/update-meal", programHandler.UpdateMeal)
		protected.POST("/remove-meal", programHandler.RemoveMeal)
		protected.POST("/import-meals", programHandler.ImportMeals)

		// --- Workouts ---
		protected.GET("/workouts/today", workoutHandler.Today)
		protected.GET("/workouts/upcoming", workoutHandler.Upcoming)
		protected.GET("/workouts/history", workoutHandler.History)
		protected.POST("/workouts/history/export", workoutHandler.ExportHistory)
		protected.POST("/sets/:id/complete", workoutHandler.CompleteSet)
		protected.POST("/sessions/:id/reduce", workoutHandler.ReduceVolume)
		protected.POST("/sessions/:id/move", workoutHandler.MoveSession)
		protected.POST("/sessions/:id/swap", workoutHandler.SwapExercise)
		protected.DELETE("/sessions/:id", workoutHandler.DeleteSession)
		protected.POST("/accessories", workoutHandler.AddAccessory)
		protected.GET("/volume/weekly", workoutHandler.WeeklyVolume)
		protected.GET("/volume/body-parts", workoutHandler.BodyPartVolume)

		// --- Exercises & exclusions ---
		protected.GET("/exercises", exerciseHandler.ListExercises)
		protected.GET("/exercises/:id/projection", exerciseHandler.Projection)
		protected.GET("/exercises/:id/media", exerciseHandler.Media)
		protected.POST("/blocked", exerciseHandler.BlockItem)
		protected.GET("/blocked", exerciseHandler.ListBlocked)

		// --- Nutrition & daily logs ---
		protected.POST("/meal-logs", mealHandler.LogMeal)
		protected.GET("/meal-logs", mealHandler.MealLogs)
		protected.DELETE("/meal-logs/:id", mealHandler.DeleteMealLog)
		protected.POST("/daily-meals/:id/regenerate", mealHandler.RegenerateMeal)
		protected.POST("/daily-logs/steps", mealHandler.LogSteps)
		protected.POST("/daily-logs/water", mealHandler.LogWater)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
