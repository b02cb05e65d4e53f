package worker

import (
	"context"
	"sync"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/config"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/queue"

	"github.com/rs/zerolog"
)

// BatchProcessor is the coordinator as the worker sees it.
type BatchProcessor interface {
	Process(ctx context.Context, msg model.BatchMessage) error
}

// IngestWorker runs the consume side: a fixed number of consumer loops pull
// batches off the queue and drive them through the processor, while the shared
// pool bounds the upload fan-out inside each batch.
type IngestWorker struct {
	cfg       *config.Config
	consumer  *queue.Consumer
	processor BatchProcessor
	pool      *Pool
	log       zerolog.Logger
}

func NewIngestWorker(cfg *config.Config, consumer *queue.Consumer, processor BatchProcessor, pool *Pool) *IngestWorker {
	return &IngestWorker{
		cfg:       cfg,
		consumer:  consumer,
		processor: processor,
		pool:      pool,
		log:       logger.With("ingest_worker"),
	}
}

func (w *IngestWorker) Start(ctx context.Context) error {
	w.log.Info().Int("consumers", w.cfg.Workers.Ingest.Count).Msg("Starting ingest worker")

	w.pool.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Workers.Ingest.Count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := w.consumer.Consume(ctx, w.processor.Process); err != nil && ctx.Err() == nil {
				w.log.Error().Err(err).Int("consumer", id).Msg("Consumer loop exited")
			}
		}(i)
	}

	wg.Wait()
	return ctx.Err()
}

func (w *IngestWorker) Stop() {
	w.log.Info().Msg("Stopping ingest worker")
	w.pool.Stop()
}
