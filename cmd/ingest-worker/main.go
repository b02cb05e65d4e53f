package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

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

	log.Info().Str("version", cfg.App.Version).Msg("Starting ingest worker")

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

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	extractionCache := cache.New(redisClient.Client(), cfg.Redis.CacheKeyPrefix, cfg.Redis.ExtractionTTL)
	producer := queue.NewProducer(redisClient, cfg)
	consumer := queue.NewConsumer(redisClient, cfg)

	pool := worker.NewPool(cfg.Workers.Upload.Concurrency)

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

	ingestWorker := worker.NewIngestWorker(cfg, consumer, coordinator, pool)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker
	errCh := make(chan error, 1)
	go func() {
		errCh <- ingestWorker.Start(ctx)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutting down ingest worker...")
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Ingest worker failed")
		}
	}

	cancel()
	ingestWorker.Stop()

	log.Info().Msg("Ingest worker exited")
}
