package bayt

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/project-tktt/bayt-crawler/internal/common/htmldoc"
	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(resp domain.JobResponse) []string {
	out := make([]string, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		out = append(out, j.Title)
	}
	return out
}

func TestScrapeStopsAtQuotaWithinPage(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingRange(1, 8)...),
	}}
	rec := &sleepRecorder{}

	resp := newTestScraper(t, pages, rec).Scrape(context.Background(),
		domain.SearchRequest{SearchTerm: "engineer", ResultsWanted: 5})

	assert.Equal(t, []string{"Job 1", "Job 2", "Job 3", "Job 4", "Job 5"}, titles(resp))
	assert.Equal(t, []int{1}, pages.calls)
	assert.Empty(t, rec.delays)
}

func TestScrapeSkipsMalformedAndStopsOnFetchFailure(t *testing.T) {
	page1 := listingNodes(t,
		listingHTML(1), malformedHTML, listingHTML(2), malformedHTML, listingHTML(3))
	pages := &fakePages{
		pages: map[int][]htmldoc.Node{1: page1},
		errs:  map[int]error{2: ErrFetchFailed},
	}

	resp := newTestScraper(t, pages, &sleepRecorder{}).Scrape(context.Background(),
		domain.SearchRequest{SearchTerm: "engineer", ResultsWanted: 10})

	assert.Equal(t, []string{"Job 1", "Job 2", "Job 3"}, titles(resp))
	assert.Equal(t, []int{1, 2}, pages.calls)
}

func TestScrapeStopsWhenPageRepeats(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingHTML(1)),
		2: listingNodes(t, listingHTML(1)),
		3: listingNodes(t, listingHTML(2)),
	}}

	resp := newTestScraper(t, pages, &sleepRecorder{}).Scrape(context.Background(),
		domain.SearchRequest{SearchTerm: "engineer", ResultsWanted: 10})

	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "Job 1", resp.Jobs[0].Title)
	assert.Equal(t, []int{1, 2}, pages.calls)
}

func TestScrapeStopsWhenEveryListingFails(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, malformedHTML, malformedHTML, malformedHTML),
		2: listingNodes(t, listingRange(1, 3)...),
	}}

	resp := newTestScraper(t, pages, &sleepRecorder{}).Scrape(context.Background(),
		domain.SearchRequest{SearchTerm: "engineer", ResultsWanted: 10})

	assert.Empty(t, resp.Jobs)
	assert.Equal(t, []int{1}, pages.calls)
}

func TestScrapeFirstFetchFails(t *testing.T) {
	pages := &fakePages{errs: map[int]error{1: errors.New("dial tcp: refused")}}

	resp := newTestScraper(t, pages, &sleepRecorder{}).Scrape(context.Background(),
		domain.SearchRequest{SearchTerm: "engineer", ResultsWanted: 3})

	assert.NotNil(t, resp.Jobs)
	assert.Empty(t, resp.Jobs)
	assert.Equal(t, []int{1}, pages.calls)
}

func TestScrapeEmptyFirstPage(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{1: {}}}

	resp := newTestScraper(t, pages, &sleepRecorder{}).Scrape(context.Background(),
		domain.SearchRequest{SearchTerm: "nothing"})

	assert.Empty(t, resp.Jobs)
}

func TestScrapeTruncatesToRequestedCount(t *testing.T) {
	for n := 1; n <= 15; n++ {
		pages := &fakePages{pages: map[int][]htmldoc.Node{
			1: listingNodes(t, listingRange(1, 5)...),
			2: listingNodes(t, listingRange(6, 10)...),
			3: listingNodes(t, listingRange(11, 15)...),
		}}

		resp := newTestScraper(t, pages, &sleepRecorder{}).Scrape(context.Background(),
			domain.SearchRequest{SearchTerm: "engineer", ResultsWanted: n})

		require.Len(t, resp.Jobs, n, "results wanted %d", n)
		assert.Equal(t, "Job 1", resp.Jobs[0].Title)
		assert.Equal(t, (n-1)/5+1, len(pages.calls), "pages fetched for %d", n)
	}
}

func TestScrapeDefaultsToTenResults(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingRange(1, 12)...),
	}}

	resp := newTestScraper(t, pages, &sleepRecorder{}).Scrape(context.Background(),
		domain.SearchRequest{SearchTerm: "engineer"})

	assert.Len(t, resp.Jobs, domain.DefaultResultsWanted)
}

func TestScrapeHugeResultsWanted(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingRange(1, 3)...),
	}}

	var resp domain.JobResponse
	require.NotPanics(t, func() {
		resp = newTestScraper(t, pages, &sleepRecorder{}).Scrape(context.Background(),
			domain.SearchRequest{SearchTerm: "engineer", ResultsWanted: math.MaxInt})
	})

	assert.Len(t, resp.Jobs, 3)
	assert.Equal(t, []int{1, 2}, pages.calls)
}

func TestScrapeDelaysBetweenPages(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingRange(1, 2)...),
		2: listingNodes(t, listingRange(3, 4)...),
		3: listingNodes(t, listingRange(5, 6)...),
	}}
	rec := &sleepRecorder{}

	resp := newTestScraper(t, pages, rec).Scrape(context.Background(),
		domain.SearchRequest{SearchTerm: "engineer", ResultsWanted: 100})

	assert.Len(t, resp.Jobs, 6)
	assert.Equal(t, []int{1, 2, 3, 4}, pages.calls)
	require.GreaterOrEqual(t, len(rec.delays), 2)
	for _, d := range rec.delays {
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}

func TestScrapeUsesJitterWithinBand(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingHTML(1)),
		2: listingNodes(t, listingHTML(2)),
	}}
	rec := &sleepRecorder{}
	s, err := NewScraperWithFetcher(Config{
		RequestDelay: 100 * time.Millisecond,
		BandDelay:    40 * time.Millisecond,
		Sleep:        rec.sleep,
		Jitter:       func() float64 { return 0.5 },
	}, pages)
	require.NoError(t, err)

	s.Scrape(context.Background(), domain.SearchRequest{SearchTerm: "x", ResultsWanted: 10})

	assert.Equal(t, []time.Duration{120 * time.Millisecond, 120 * time.Millisecond}, rec.delays)
}

type panicOnce struct {
	next     nodeExtractor
	panicked bool
}

func (p *panicOnce) Extract(node htmldoc.Node) (*domain.JobPost, error) {
	if !p.panicked {
		p.panicked = true
		panic("unexpected markup")
	}
	return p.next.Extract(node)
}

func TestScrapeRecoversFromExtractorPanic(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingRange(1, 3)...),
	}}
	s := newTestScraper(t, pages, &sleepRecorder{})
	s.extractor = &panicOnce{next: s.extractor}

	resp := s.Scrape(context.Background(), domain.SearchRequest{SearchTerm: "x", ResultsWanted: 2})

	assert.Equal(t, []string{"Job 2", "Job 3"}, titles(resp))
}

type errorExtractor struct{}

func (errorExtractor) Extract(htmldoc.Node) (*domain.JobPost, error) {
	return nil, errors.New("bad href")
}

func TestScrapeExtractionErrorsCountTowardStagnation(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingRange(1, 3)...),
		2: listingNodes(t, listingRange(4, 6)...),
	}}
	s := newTestScraper(t, pages, &sleepRecorder{})
	s.extractor = errorExtractor{}

	resp := s.Scrape(context.Background(), domain.SearchRequest{SearchTerm: "x", ResultsWanted: 10})

	assert.Empty(t, resp.Jobs)
	assert.Equal(t, []int{1}, pages.calls)
}

func TestScrapeHonorsCancelledContext(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingRange(1, 2)...),
		2: listingNodes(t, listingRange(3, 4)...),
	}}
	s, err := NewScraperWithFetcher(Config{RequestDelay: time.Hour}, pages)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := s.Scrape(ctx, domain.SearchRequest{SearchTerm: "x", ResultsWanted: 10})

	assert.Len(t, resp.Jobs, 2)
	assert.Equal(t, []int{1}, pages.calls)
}

func TestScrapeConcurrentCallsAreIndependent(t *testing.T) {
	pages := &fakePages{pages: map[int][]htmldoc.Node{
		1: listingNodes(t, listingRange(1, 4)...),
	}}
	s := newTestScraper(t, pages, &sleepRecorder{})

	results := make(chan domain.JobResponse, 2)
	for _, n := range []int{2, 3} {
		go func(n int) {
			results <- s.Scrape(context.Background(), domain.SearchRequest{SearchTerm: "x", ResultsWanted: n})
		}(n)
	}

	sizes := map[int]bool{}
	for i := 0; i < 2; i++ {
		sizes[len((<-results).Jobs)] = true
	}
	assert.Equal(t, map[int]bool{2: true, 3: true}, sizes)
}

func TestScrapeEndToEnd(t *testing.T) {
	var (
		mu         sync.Mutex
		userAgents []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		userAgents = append(userAgents, r.Header.Get("User-Agent"))
		mu.Unlock()
		if r.URL.Path != "/en/international/jobs/data engineer-jobs/" {
			http.NotFound(w, r)
			return
		}

		var body string
		switch r.URL.Query().Get("page") {
		case "1":
			body = strings.Join(append(listingRange(1, 2), malformedHTML), "")
		case "2":
			body = strings.Join(listingRange(3, 4), "")
		default:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><ul>" + body + "</ul></body></html>"))
	}))
	defer srv.Close()

	rec := &sleepRecorder{}
	s, err := NewScraper(Config{BaseURL: srv.URL, Sleep: rec.sleep})
	require.NoError(t, err)

	resp := s.Scrape(context.Background(), domain.SearchRequest{SearchTerm: "data engineer", ResultsWanted: 10})

	require.Len(t, resp.Jobs, 4)
	assert.Equal(t, srv.URL+"/en/uae/jobs/job-1/", resp.Jobs[0].JobURL)
	assert.Equal(t, "Job 4", resp.Jobs[3].Title)
	assert.Len(t, rec.delays, 2)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, userAgents, 3)
	for _, ua := range userAgents {
		assert.Equal(t, DefaultUserAgent, ua)
	}
}
