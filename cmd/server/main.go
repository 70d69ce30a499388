package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wordvault/api/internal/auth"
	"github.com/wordvault/api/internal/cache"
	"github.com/wordvault/api/internal/config"
	"github.com/wordvault/api/internal/database"
	"github.com/wordvault/api/internal/handler"
	"github.com/wordvault/api/internal/history"
	"github.com/wordvault/api/internal/middleware"
	"github.com/wordvault/api/internal/model"
	"github.com/wordvault/api/internal/quiz"
	"github.com/wordvault/api/internal/scheduler"
	"github.com/wordvault/api/internal/store"
	"github.com/wordvault/api/internal/vocab"
)

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisCache = nil
		// Continue without Redis (fail-open): no snapshot cache, drill
		// history is recorded straight to nothing until Redis returns
	}

	vocabStore := store.NewGormStore(db)

	// Keep the per-user snapshot cache in step with the live entry feed
	if redisCache != nil {
		ctx := context.Background()
		vocabStore.EntryFeed().Subscribe(func(userID int64, entries []model.VocabEntry) {
			data, err := json.Marshal(entries)
			if err != nil {
				return
			}
			if err := redisCache.Set(ctx, cache.EntrySnapshotKey(userID), data); err != nil {
				log.Printf("Warning: failed to refresh entry snapshot for user %d: %v", userID, err)
			}
		})
	}

	// Drill-history flusher and optional background scheduler
	var flusher *history.Flusher
	if redisCache != nil {
		flusher = history.NewFlusher(db, redisCache)
	}

	var flushScheduler *scheduler.FlushScheduler
	if cfg.FlushEnabled && flusher != nil {
		flushScheduler = scheduler.NewFlushScheduler(flusher, cfg.FlushInterval)
		go flushScheduler.Start(context.Background())
		defer flushScheduler.Stop()
		log.Println("Background drill-history flush scheduler started")
	}

	// Initialize handlers
	googleConfig := auth.NewGoogleConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	quizManager := quiz.NewManager(cfg.QuizAdvanceDelay, nil)

	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret, googleConfig, cfg.FrontendURL)
	entryHandler := handler.NewEntryHandler(vocabStore, redisCache)
	categoryHandler := handler.NewCategoryHandler(vocabStore)
	importHandler := handler.NewImportHandler(vocab.NewImporter(vocabStore))
	quizHandler := handler.NewQuizHandler(quizManager, vocabStore, db, redisCache, cfg.QuizAdvanceDelay)
	historyHandler := handler.NewHistoryHandler(db, flusher)
	exportHandler := handler.NewExportHandler(vocabStore)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Use(middleware.MetricsMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Scheduler status
	r.GET("/scheduler/status", func(c *gin.Context) {
		if flushScheduler != nil {
			c.JSON(200, flushScheduler.GetStatus())
		} else {
			c.JSON(200, gin.H{"enabled": false, "message": "Scheduler is disabled"})
		}
	})

	// Auth routes
	r.GET("/auth/google", authHandler.GoogleAuth)
	r.GET("/auth/google/callback", authHandler.GoogleCallback)
	r.POST("/auth/refresh", authHandler.RefreshToken)
	r.POST("/auth/logout", authHandler.Logout)

	// API routes (all per-user, all authenticated)
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.GET("/me", authHandler.Me)

		// Entries
		api.GET("/entries", entryHandler.List)
		api.POST("/entries", entryHandler.Create)
		api.PUT("/entries/:id", entryHandler.Update)
		api.DELETE("/entries/:id", entryHandler.Delete)
		api.POST("/entries/:id/categories/:categoryId", entryHandler.AddCategory)
		api.DELETE("/entries/:id/categories/:categoryId", entryHandler.RemoveCategory)

		// Categories
		api.GET("/categories", categoryHandler.List)
		api.POST("/categories", categoryHandler.Create)
		api.DELETE("/categories/:id", categoryHandler.Delete)

		// Bulk import
		api.POST("/import", importHandler.Import)

		// Quiz
		api.POST("/quiz", quizHandler.Start)
		api.GET("/quiz/results", quizHandler.Results)
		api.GET("/quiz/:id", quizHandler.Current)
		api.POST("/quiz/:id/answer", quizHandler.Answer)
		api.POST("/quiz/:id/next", quizHandler.Next)
		api.POST("/quiz/:id/prev", quizHandler.Prev)
		api.POST("/quiz/:id/favorite", quizHandler.Favorite)
		api.GET("/quiz/:id/result", quizHandler.Result)
		api.POST("/quiz/:id/restart", quizHandler.Restart)

		// Drill history
		api.GET("/history", historyHandler.List)

		// Export
		api.GET("/export", exportHandler.Export)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("API server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
