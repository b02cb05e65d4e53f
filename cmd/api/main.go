package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/api"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/cache"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/config"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/db"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/pipeline"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/queue"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/recognition"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/resolve"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/storage"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/uploader"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repo := db.NewRepository(database)
	persister := db.NewPersister(database)

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	producer := queue.NewProducer(redisClient, cfg)
	extractionCache := cache.New(redisClient.Client(), cfg.Redis.CacheKeyPrefix, cfg.Redis.ExtractionTTL)

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	// The API only stages files and enqueues, but the coordinator owns the
	// whole stage graph; wire it fully so submit and status share one object.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := worker.NewPool(cfg.Workers.Upload.Concurrency)
	pool.Start(ctx)
	defer pool.Stop()

	coordinator := pipeline.NewCoordinator(
		cfg,
		repo,
		s3Storage,
		extractionCache,
		recognition.NewClient(cfg),
		resolve.NewResolver(repo),
		uploader.New(s3Storage, pool, cfg.Workers.Upload.Retries, cfg.Workers.Upload.RetryDelay),
		persister,
		producer,
	)

	handler := api.NewHandler(coordinator, producer, extractionCache, pool, cfg)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())

	api.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("API server exited")
}
