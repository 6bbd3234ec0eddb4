package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/bayt-crawler/internal/common/cleaner"
	"github.com/project-tktt/bayt-crawler/internal/common/indexer"
	"github.com/project-tktt/bayt-crawler/internal/common/normalizer"
	"github.com/project-tktt/bayt-crawler/internal/config"
	"github.com/project-tktt/bayt-crawler/internal/logger"
	"github.com/project-tktt/bayt-crawler/internal/module/worker"
	"github.com/project-tktt/bayt-crawler/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Error("Load config failed", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	log.Info("Starting Job Worker Service")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Redis connection failed", "error", err)
		os.Exit(1)
	}
	log.Info("Redis connected", "addr", cfg.Redis.Addr)

	idx, err := newIndexer(ctx, cfg, log)
	if err != nil {
		log.Error("Indexer setup failed", "backend", cfg.Indexer.Backend, "error", err)
		os.Exit(1)
	}
	defer idx.Close()

	consumer := queue.NewConsumer(rdb, cfg.Redis.JobQueue, 5*time.Second, log)
	w := worker.NewWorker(consumer, normalizer.NewNormalizer(), cleaner.NewCleaner(), idx, worker.Config{
		Concurrency: cfg.Worker.Concurrency,
		BatchSize:   cfg.Worker.BatchSize,
		Logger:      log,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Worker error", "error", err)
		}
	}()

	<-sigChan
	log.Info("Shutdown signal received, stopping...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Graceful shutdown complete")
	case <-time.After(30 * time.Second):
		log.Warn("Shutdown timeout, forcing exit")
	}
}

func newIndexer(ctx context.Context, cfg *config.Config, log logger.Logger) (indexer.Indexer, error) {
	switch cfg.Indexer.Backend {
	case "postgres":
		idx, err := indexer.NewPostgresIndexer(ctx, cfg.Postgres.ConnectionString, cfg.Postgres.TableName, log)
		if err != nil {
			return nil, err
		}
		log.Info("PostgreSQL connected", "table", cfg.Postgres.TableName)
		return idx, nil
	case "elasticsearch":
		idx, err := indexer.NewElasticsearchIndexer(ctx, cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index, log)
		if err != nil {
			return nil, err
		}
		if err := idx.EnsureIndex(ctx); err != nil {
			log.Warn("Failed to ensure index", "error", err)
		}
		log.Info("Elasticsearch connected", "index", cfg.Elasticsearch.Index)
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown indexer backend %q", cfg.Indexer.Backend)
	}
}
