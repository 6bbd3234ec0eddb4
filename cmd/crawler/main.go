package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/bayt-crawler/internal/common/dedup"
	"github.com/project-tktt/bayt-crawler/internal/config"
	"github.com/project-tktt/bayt-crawler/internal/logger"
	"github.com/project-tktt/bayt-crawler/internal/module"
	"github.com/project-tktt/bayt-crawler/internal/module/bayt"
	"github.com/project-tktt/bayt-crawler/internal/queue"
	"github.com/project-tktt/bayt-crawler/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Error("Load config failed", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	log.Info("Starting Bayt Crawler Service")

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

	scraper, err := bayt.NewScraper(bayt.Config{
		BaseURL:        cfg.Bayt.BaseURL,
		UserAgent:      cfg.Bayt.UserAgent,
		ProxyURL:       cfg.Bayt.ProxyURL,
		RequestTimeout: cfg.Bayt.RequestTimeout,
		RequestDelay:   cfg.Bayt.RequestDelay,
		BandDelay:      cfg.Bayt.BandDelay,
		Logger:         log,
	})
	if err != nil {
		log.Error("Create scraper failed", "error", err)
		os.Exit(1)
	}

	deduplicator := dedup.NewDeduplicator(rdb, cfg.Redis.SeenPrefix, cfg.Redis.SeenTTL)
	publisher := queue.NewPublisher(rdb, cfg.Redis.JobQueue)

	sched, err := scheduler.New(
		[]module.Scraper{scraper},
		scheduler.NewPublishHandler(deduplicator, publisher, log),
		scheduler.Config{
			Spec:          cfg.Scheduler.Spec,
			Terms:         cfg.Search.Terms,
			ResultsWanted: cfg.Search.ResultsWanted,
			Logger:        log,
		},
	)
	if err != nil {
		log.Error("Create scheduler failed", "error", err)
		os.Exit(1)
	}
	sched.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Shutdown signal received, stopping...")
	cancel()

	select {
	case <-sched.Stop().Done():
		log.Info("Graceful shutdown complete")
	case <-time.After(30 * time.Second):
		log.Warn("Shutdown timeout, forcing exit")
	}
}
