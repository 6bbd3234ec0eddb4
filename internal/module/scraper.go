package module

import (
	"context"

	"github.com/project-tktt/bayt-crawler/internal/domain"
)

// Scraper is the common interface for all site adapters
type Scraper interface {
	// Scrape returns up to req.Wanted() postings in discovery order.
	// It is best-effort: failures end the scrape early instead of being returned.
	Scrape(ctx context.Context, req domain.SearchRequest) domain.JobResponse
	// Source returns the source identifier
	Source() domain.JobSource
}
