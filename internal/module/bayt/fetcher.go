package bayt

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/project-tktt/bayt-crawler/internal/common/htmldoc"
	"github.com/project-tktt/bayt-crawler/internal/logger"
)

// ListingSelector matches one job entry on a results page
const ListingSelector = "li[data-js-job]"

// ErrFetchFailed wraps every page-level transport or status failure
var ErrFetchFailed = errors.New("bayt: fetch failed")

// ListFetcher is the transport capability the fetcher depends on
type ListFetcher interface {
	FetchList(ctx context.Context, pageURL, itemSelector string) ([]htmldoc.Node, error)
}

// PageFetcher returns the listing nodes of one results page
type PageFetcher interface {
	FetchPage(ctx context.Context, searchTerm string, page int) ([]htmldoc.Node, error)
}

// BuildPageURL builds the results-page URL for a 1-based page number
func BuildPageURL(baseURL, searchTerm string, page int) string {
	return fmt.Sprintf("%s/en/international/jobs/%s-jobs/?page=%d",
		strings.TrimRight(baseURL, "/"), url.PathEscape(searchTerm), page)
}

// Fetcher builds Bayt search URLs and returns the listing nodes found on them
type Fetcher struct {
	baseURL string
	lists   ListFetcher
	log     logger.Logger
}

// NewFetcher creates a fetcher for the given site root
func NewFetcher(baseURL string, lists ListFetcher, log logger.Logger) *Fetcher {
	return &Fetcher{baseURL: baseURL, lists: lists, log: log}
}

// FetchPage fetches one results page. An empty slice means the page has no
// listings; any failure is returned wrapped in ErrFetchFailed.
func (f *Fetcher) FetchPage(ctx context.Context, searchTerm string, page int) ([]htmldoc.Node, error) {
	pageURL := BuildPageURL(f.baseURL, searchTerm, page)
	f.log.Info("Constructed URL", "url", pageURL)

	nodes, err := f.lists.FetchList(ctx, pageURL, ListingSelector)
	if err != nil {
		f.log.Error("Error fetching jobs", "url", pageURL, "error", err)
		return nil, fmt.Errorf("%w: page %d: %w", ErrFetchFailed, page, err)
	}

	f.log.Info("Found job listing elements", "count", len(nodes), "page", page)
	return nodes, nil
}
