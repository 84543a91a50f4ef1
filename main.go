// File: ruach/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ruach/config"
	"ruach/cron"
	"ruach/database"
	catalogRepo "ruach/database/repository/catalog"
	"ruach/handlers"
	"ruach/middleware"
	"ruach/routes"
	"ruach/services/assistant"
	"ruach/services/tasks"
	"ruach/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitHistoryCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Catalog collaborator and transcript sink.
	catRepo := catalogRepo.NewMongoCatalogRepo()

	// Shared engine collaborators.
	catalogCache := assistant.NewCatalogCache(catRepo, time.Duration(config.AppConfig.CatalogTTLMin)*time.Minute)
	scorer := assistant.NewScorer(catalogCache)
	executor := assistant.NewRemoteExecutor(time.Duration(config.AppConfig.RemoteTimeoutSec) * time.Second)
	historyStore := assistant.NewRedisHistoryStore(utils.GetHistoryCacheClient(), 7*24*time.Hour, config.AppConfig.HistoryLimit)

	var knowledge assistant.KnowledgeBase
	if config.AppConfig.GeminiAPIKey != "" {
		knowledge = assistant.NewGeminiKnowledgeBase(config.AppConfig.GeminiAPIKey, catRepo)
	} else {
		logger.Warn("main: GEMINI_API_KEY not set, knowledge-base fallback disabled")
	}

	// Background history sync via the task queue.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSyncQueueDB,
	})
	defer asynqClient.Close()
	cron.InitHistorySyncWorker(catRepo)

	assistantHandler := handlers.NewAssistantHandler(handlers.AssistantDeps{
		Store:     historyStore,
		Knowledge: knowledge,
		Executor:  executor,
		Syncer:    tasks.NewEnqueuer(asynqClient),
		Scorer:    scorer,
	})

	// Register routes.
	routes.RegisterRoutes(router, assistantHandler)

	utils.StartHealthMonitor([]*redis.Client{utils.GetHistoryCacheClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
