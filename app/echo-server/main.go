package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/MayurUbarhande0/recommendations-api/app/echo-server/router"
	"github.com/MayurUbarhande0/recommendations-api/business/recommendation"
	"github.com/MayurUbarhande0/recommendations-api/business/recommender"
	"github.com/MayurUbarhande0/recommendations-api/internal/middleware"
	"github.com/MayurUbarhande0/recommendations-api/internal/repository/memory"
	psqlRepo "github.com/MayurUbarhande0/recommendations-api/internal/repository/postgres"
	redisRepo "github.com/MayurUbarhande0/recommendations-api/internal/repository/redis"
	"github.com/MayurUbarhande0/recommendations-api/internal/rest"
	"github.com/MayurUbarhande0/recommendations-api/pkg/config"
	"github.com/MayurUbarhande0/recommendations-api/pkg/database"
	redisdb "github.com/MayurUbarhande0/recommendations-api/pkg/database/redis"
	"github.com/MayurUbarhande0/recommendations-api/pkg/logger"
	"github.com/MayurUbarhande0/recommendations-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Recommendations API", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully",
		"pool_min", cfg.Database.PoolMin,
		"pool_max", cfg.Database.PoolMax,
	)

	// Redis is optional at startup: without it the service degrades to a
	// single-tier cache and computes on every distributed miss.
	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis not available, running degraded", "error", err)
	} else {
		logger.Info("Redis connected successfully")
	}

	// Init repositories & cache tiers
	activityRepo := psqlRepo.NewActivityRepository(db)
	remoteCache := redisRepo.NewRecommendationCache(redisClient)
	localCache := memory.NewRecommendationCache(cfg.Cache.LocalMaxEntries, cfg.Cache.LocalTTL)

	// Init engine & coordinator
	engine := recommender.NewEngine(recommender.Config{
		SearchScore:            cfg.Recommender.SearchScore,
		PurchaseScore:          cfg.Recommender.PurchaseScore,
		DuplicateSearchBonus:   cfg.Recommender.DuplicateSearchBonus,
		DuplicatePurchaseBonus: cfg.Recommender.DuplicatePurchaseBonus,
		UniqueDivisor:          cfg.Recommender.UniqueDivisor,
		RecommendLimit:         cfg.Recommender.RecommendLimit,
		ExploreLimit:           cfg.Recommender.ExploreLimit,
	})

	recommendationService := recommendation.NewService(
		activityRepo,
		engine,
		localCache,
		remoteCache,
		recommendation.Config{
			RecommendationTTL:    cfg.Cache.RecommendationTTL,
			EmptyResultTTL:       cfg.Cache.EmptyResultTTL,
			MaxConcurrentFetches: int64(cfg.Activity.MaxConcurrent),
			AcquireTimeout:       cfg.Activity.AcquireTimeout,
			BatchConcurrency:     cfg.Batch.Concurrency,
		},
	)

	// Init handlers
	recommendationHandler := rest.NewRecommendationHandler(recommendationService, cfg.Batch.MaxSize)
	healthHandler := rest.NewHealthHandler(db, redisClient, cfg.Database.PoolMin, cfg.Database.PoolMax)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Setup routes
	router.SetupRecommendationRoutes(e, recommendationHandler)
	router.SetupHealthRoutes(e, healthHandler)
	router.SetupMetricsRoutes(e)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
