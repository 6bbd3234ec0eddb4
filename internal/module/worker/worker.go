package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/project-tktt/bayt-crawler/internal/common/cleaner"
	"github.com/project-tktt/bayt-crawler/internal/common/indexer"
	"github.com/project-tktt/bayt-crawler/internal/common/normalizer"
	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/logger"
)

// BatchConsumer yields queued jobs; an empty batch means the wait timed out
type BatchConsumer interface {
	ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.JobPost, error)
}

// Worker processes jobs from queue and indexes to storage
type Worker struct {
	consumer   BatchConsumer
	normalizer *normalizer.Normalizer
	cleaner    *cleaner.Cleaner
	indexer    indexer.Indexer
	log        logger.Logger

	batchSize   int
	concurrency int
}

// Config holds worker configuration
type Config struct {
	Concurrency int
	BatchSize   int
	Logger      logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	consumer BatchConsumer,
	norm *normalizer.Normalizer,
	clean *cleaner.Cleaner,
	idx indexer.Indexer,
	cfg Config,
) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	return &Worker{
		consumer:    consumer,
		normalizer:  norm,
		cleaner:     clean,
		indexer:     idx,
		log:         cfg.Logger,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
	}
}

// Run starts the worker pool and blocks until ctx is done
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Starting worker pool", "workers", w.concurrency)

	var wg sync.WaitGroup
	errChan := make(chan error, w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			if err := w.runSingle(ctx, workerID); err != nil {
				errChan <- fmt.Errorf("worker %d: %w", workerID, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		<-done
		return ctx.Err()
	case err := <-errChan:
		return err
	case <-done:
		return nil
	}
}

func (w *Worker) runSingle(ctx context.Context, workerID int) error {
	w.log.Info("Worker started", "worker", workerID)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker stopping", "worker", workerID)
			return nil
		default:
		}

		queued, err := w.consumer.ConsumeBatch(ctx, w.batchSize)
		if err != nil && ctx.Err() == nil {
			w.log.Error("Consume error", "worker", workerID, "error", err, "popped", len(queued))
		}
		if len(queued) == 0 {
			continue
		}

		w.log.Info("Processing jobs", "worker", workerID, "count", len(queued))

		jobs := w.processJobs(queued)
		if len(jobs) == 0 {
			continue
		}
		if err := w.indexer.BulkIndex(ctx, jobs); err != nil {
			w.log.Error("Index error", "worker", workerID, "error", err)
		} else {
			w.log.Info("Indexed jobs", "worker", workerID, "count", len(jobs))
		}
	}
}

// processJobs normalizes and cleans a batch, dropping posts that fail either step
func (w *Worker) processJobs(queued []*domain.JobPost) []*domain.JobPost {
	jobs := make([]*domain.JobPost, 0, len(queued))

	for _, post := range queued {
		w.cleaner.CleanJob(post)

		job, err := w.normalizer.Normalize(post)
		if err != nil {
			w.log.Warn("Dropping job", "id", post.ID, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs
}
