package bayt

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/project-tktt/bayt-crawler/internal/common/fetcher"
	"github.com/project-tktt/bayt-crawler/internal/common/htmldoc"
	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/logger"
)

const (
	BaseURL          = "https://www.bayt.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/115.0.0.0 Safari/537.36"

	snippetLimit = 500
	// initial capacity bound; results_wanted comes straight from callers
	maxPrealloc = 64
)

// Config holds Bayt-specific configuration
type Config struct {
	BaseURL        string
	UserAgent      string
	ProxyURL       string
	RequestTimeout time.Duration
	// Pages are spaced by RequestDelay plus a uniform random part of BandDelay
	RequestDelay time.Duration
	BandDelay    time.Duration

	Logger logger.Logger
	// Sleep and Jitter default to a context-aware timer and math/rand
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func() float64
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = BaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.RequestDelay <= 0 {
		c.RequestDelay = 2 * time.Second
	}
	if c.BandDelay <= 0 {
		c.BandDelay = 3 * time.Second
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Sleep == nil {
		c.Sleep = sleepContext
	}
	if c.Jitter == nil {
		c.Jitter = rand.Float64
	}
	return c
}

type nodeExtractor interface {
	Extract(node htmldoc.Node) (*domain.JobPost, error)
}

// Scraper implements module.Scraper for bayt.com. It holds no per-call state,
// so one value can serve concurrent Scrape calls.
type Scraper struct {
	pages     PageFetcher
	extractor nodeExtractor
	config    Config
	log       logger.Logger
}

// NewScraper creates a Bayt scraper backed by a Colly fetcher
func NewScraper(cfg Config) (*Scraper, error) {
	cfg = cfg.withDefaults()
	lists := fetcher.NewCollyFetcher(fetcher.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
		ProxyURL:  cfg.ProxyURL,
	})
	return NewScraperWithFetcher(cfg, NewFetcher(cfg.BaseURL, lists, cfg.Logger))
}

// NewScraperWithFetcher creates a Bayt scraper reading pages from pages
func NewScraperWithFetcher(cfg Config, pages PageFetcher) (*Scraper, error) {
	cfg = cfg.withDefaults()
	ext, err := NewExtractor(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return &Scraper{
		pages:     pages,
		extractor: ext,
		config:    cfg,
		log:       cfg.Logger,
	}, nil
}

// Source returns the source identifier
func (s *Scraper) Source() domain.JobSource {
	return domain.SourceBayt
}

// Scrape walks the result pages until the quota is met, a page cannot be
// fetched or is empty, or a page adds no new postings. It never fails: whatever
// was collected so far is returned, truncated to the requested count.
func (s *Scraper) Scrape(ctx context.Context, req domain.SearchRequest) domain.JobResponse {
	wanted := req.Wanted()
	jobs := make([]domain.JobPost, 0, min(wanted, maxPrealloc))
	seen := make(map[string]struct{}, min(wanted, maxPrealloc))

	page := 1
	for len(jobs) < wanted {
		s.log.Info("Fetching Bayt jobs page", "page", page, "search_term", req.SearchTerm)

		nodes, err := s.pages.FetchPage(ctx, req.SearchTerm, page)
		if err != nil {
			s.log.Info("Page fetch failed, ending pagination", "page", page)
			break
		}
		if len(nodes) == 0 {
			s.log.Info("No job listings on page, ending pagination", "page", page)
			break
		}
		s.log.Debug("First job element snippet", "snippet", nodes[0].Snippet(snippetLimit))

		before := len(jobs)
		for _, node := range nodes {
			post, err := s.extractSafely(node)
			if err != nil {
				s.log.Error("Error extracting job info", "page", page, "error", err,
					"snippet", node.Snippet(snippetLimit))
				continue
			}
			if post == nil {
				s.log.Debug("Extraction returned no job", "page", page, "snippet", node.Snippet(snippetLimit))
				continue
			}
			if _, dup := seen[post.ID]; dup {
				s.log.Debug("Job already collected", "id", post.ID, "url", post.JobURL)
				continue
			}

			seen[post.ID] = struct{}{}
			jobs = append(jobs, *post)
			if len(jobs) >= wanted {
				break
			}
		}

		if len(jobs) >= wanted {
			break
		}
		if len(jobs) == before {
			s.log.Info("No new jobs found on page, ending pagination", "page", page)
			break
		}

		page++
		if err := s.wait(ctx); err != nil {
			s.log.Info("Scrape cancelled, ending pagination", "page", page, "error", err)
			break
		}
	}

	if len(jobs) > wanted {
		jobs = jobs[:wanted]
	}
	s.log.Info("Bayt scrape finished", "search_term", req.SearchTerm, "jobs", len(jobs), "last_page", page)
	return domain.JobResponse{Jobs: jobs}
}

// extractSafely converts a panic during DOM traversal into an error so one bad
// listing cannot abort the page.
func (s *Scraper) extractSafely(node htmldoc.Node) (post *domain.JobPost, err error) {
	defer func() {
		if r := recover(); r != nil {
			post = nil
			err = fmt.Errorf("extract job: panic: %v", r)
		}
	}()
	return s.extractor.Extract(node)
}

// wait sleeps for RequestDelay plus a uniform random share of BandDelay
func (s *Scraper) wait(ctx context.Context) error {
	delay := s.config.RequestDelay + time.Duration(s.config.Jitter()*float64(s.config.BandDelay))
	s.log.Debug("Waiting before next page", "delay", delay)
	return s.config.Sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
