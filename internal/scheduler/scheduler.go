// Package scheduler runs the configured searches through every scraper on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/logger"
	"github.com/project-tktt/bayt-crawler/internal/module"
)

// Handler receives the result of one search on one scraper
type Handler func(ctx context.Context, source domain.JobSource, resp domain.JobResponse) error

// Config holds scheduling settings
type Config struct {
	// Cron spec, e.g. "@every 1h"
	Spec          string
	Terms         []string
	ResultsWanted int
	Logger        logger.Logger
}

// CycleStats summarizes one crawl cycle
type CycleStats struct {
	RunID    string
	Searches int
	Jobs     int
	Failed   int
	Skipped  bool
}

// Scheduler wraps robfig/cron and manages the crawl loop.
type Scheduler struct {
	cron     *cron.Cron
	scrapers []module.Scraper
	handler  Handler
	cfg      Config
	log      logger.Logger

	// running guards against overlapping cycles
	running sync.Mutex
	ctx     context.Context
	// initial tracks the cycle Start launches outside cron
	initial sync.WaitGroup
}

// New creates a Scheduler. The cron spec is parsed here so a bad value fails fast.
func New(scrapers []module.Scraper, handler Handler, cfg Config) (*Scheduler, error) {
	if cfg.Spec == "" {
		cfg.Spec = "@every 1h"
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLogger(cronLogger{cfg.Logger})),
		scrapers: scrapers,
		handler:  handler,
		cfg:      cfg,
		log:      cfg.Logger,
		ctx:      context.Background(),
	}
	if _, err := s.cron.AddFunc(cfg.Spec, func() { s.RunOnce(s.ctx) }); err != nil {
		return nil, fmt.Errorf("cron.AddFunc %q: %w", cfg.Spec, err)
	}
	return s, nil
}

// Start starts the cron loop and runs one cycle immediately in the background
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.log.Info("Scheduler started", "spec", s.cfg.Spec)

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.RunOnce(ctx)
	}()
}

// Stop stops scheduling new cycles. The returned context is done once every
// running cycle has finished, including the one Start kicked off.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("Scheduler stopping")
	cronDone := s.cron.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		s.initial.Wait()
		cancel()
	}()
	return ctx
}

// RunOnce runs every search term through every scraper sequentially.
// A cycle that starts while another is running is skipped.
func (s *Scheduler) RunOnce(ctx context.Context) CycleStats {
	stats := CycleStats{RunID: uuid.NewString()}
	if !s.running.TryLock() {
		s.log.Warn("Previous crawl cycle still running, skipping", "run_id", stats.RunID)
		stats.Skipped = true
		return stats
	}
	defer s.running.Unlock()

	log := s.log
	log.Info("Crawl cycle started", "run_id", stats.RunID, "terms", len(s.cfg.Terms), "scrapers", len(s.scrapers))

	for _, sc := range s.scrapers {
		for _, term := range s.cfg.Terms {
			if ctx.Err() != nil {
				log.Info("Crawl cycle cancelled", "run_id", stats.RunID)
				return stats
			}

			req := domain.SearchRequest{SearchTerm: term, ResultsWanted: s.cfg.ResultsWanted}
			resp := sc.Scrape(ctx, req)
			stats.Searches++
			stats.Jobs += len(resp.Jobs)

			if err := s.handler(ctx, sc.Source(), resp); err != nil {
				stats.Failed++
				log.Error("Handler error", "run_id", stats.RunID, "source", sc.Source(), "search_term", term, "error", err)
				continue
			}
			log.Info("Search complete", "run_id", stats.RunID, "source", sc.Source(), "search_term", term, "jobs", len(resp.Jobs))
		}
	}

	log.Info("Crawl cycle complete", "run_id", stats.RunID, "searches", stats.Searches, "jobs", stats.Jobs, "failed", stats.Failed)
	return stats
}

// cronLogger adapts logger.Logger to cron.Logger
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error(msg, append(keysAndValues, "error", err)...)
}
