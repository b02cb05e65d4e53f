package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"

	"github.com/rs/zerolog"
)

// Pool is a fixed-size worker pool. Every file group in flight is a unit of
// work submitted here, so remote-connection and memory pressure are capped by
// the worker count, not by batch size.
type Pool struct {
	workerCount int
	jobChan     chan func(context.Context) error
	wg          sync.WaitGroup
	active      atomic.Int64
	log         zerolog.Logger
}

func NewPool(workerCount int) *Pool {
	return &Pool{
		workerCount: workerCount,
		jobChan:     make(chan func(context.Context) error, workerCount*2),
		log:         logger.With("worker_pool"),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Msg("Starting worker pool")

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.log.Info().Msg("Stopping worker pool")
	close(p.jobChan)
	p.wg.Wait()
	p.log.Info().Msg("Worker pool stopped")
}

// Submit blocks until a worker can take the job. Pipeline work must not be
// dropped on backpressure; callers own their own cancellation.
func (p *Pool) Submit(job func(context.Context) error) {
	p.jobChan <- job
}

// Active reports how many workers are executing a job right now.
func (p *Pool) Active() int64 {
	return p.active.Load()
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for job := range p.jobChan {
		p.active.Add(1)
		if err := job(ctx); err != nil {
			p.log.Error().Err(err).Int("worker", id).Msg("Job failed")
		}
		p.active.Add(-1)
	}
}
