package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/project-tktt/bayt-crawler/internal/api"
	"github.com/project-tktt/bayt-crawler/internal/config"
	"github.com/project-tktt/bayt-crawler/internal/logger"
	"github.com/project-tktt/bayt-crawler/internal/module/bayt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Error("Load config failed", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

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

	srv, err := api.NewServer(cfg.API.Addr, api.NewJobsHandler(scraper, cfg.API.RequestTimeout, log), log)
	if err != nil {
		log.Error("Create server failed", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("API server failed", "error", err)
			os.Exit(1)
		}
	case <-sigChan:
		log.Info("Shutdown signal received, stopping...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Shutdown failed", "error", err)
	}
}
