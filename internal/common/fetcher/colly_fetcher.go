// Package fetcher downloads listing pages and selects the item elements on them.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/project-tktt/bayt-crawler/internal/common/htmldoc"
)

// Config holds transport settings shared by all list fetches
type Config struct {
	UserAgent string
	Timeout   time.Duration
	ProxyURL  string
}

// CollyFetcher implements list-page fetching on top of Colly
type CollyFetcher struct {
	config Config
}

// NewCollyFetcher creates a fetcher; a zero Timeout means 10s
func NewCollyFetcher(cfg Config) *CollyFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &CollyFetcher{config: cfg}
}

// FetchList issues a single GET for pageURL and returns every element matching
// itemSelector. Transport errors, timeouts and non-2xx responses are returned as
// errors; a page without matches yields an empty slice.
func (f *CollyFetcher) FetchList(ctx context.Context, pageURL, itemSelector string) ([]htmldoc.Node, error) {
	// A fresh collector per call keeps concurrent fetches independent
	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.config.Timeout)

	if f.config.ProxyURL != "" {
		if err := c.SetProxy(f.config.ProxyURL); err != nil {
			return nil, fmt.Errorf("set proxy: %w", err)
		}
	}

	nodes := make([]htmldoc.Node, 0)
	var fetchErr error

	c.OnHTML(itemSelector, func(el *colly.HTMLElement) {
		nodes = append(nodes, htmldoc.FromSelection(el.DOM))
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("colly error: %w (status: %d)", err, r.StatusCode)
	})

	if err := c.Visit(pageURL); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, fmt.Errorf("visit list url: %w", err)
	}

	if fetchErr != nil {
		return nil, fetchErr
	}

	return nodes, nil
}
