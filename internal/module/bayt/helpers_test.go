package bayt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/project-tktt/bayt-crawler/internal/common/htmldoc"
	"github.com/stretchr/testify/require"
)

func listingHTML(id int) string {
	return fmt.Sprintf(`<li data-js-job="">
  <h2><a href="/en/uae/jobs/job-%d/">Job %d</a></h2>
  <div class="t-nowrap p10l"><span>Company %d</span></div>
  <div class="t-mute t-small"> Dubai </div>
</li>`, id, id, id)
}

const malformedHTML = `<li data-js-job=""><div class="t-mute t-small">Dubai</div></li>`

func listingNodes(t *testing.T, items ...string) []htmldoc.Node {
	t.Helper()
	root, err := htmldoc.ParseString("<html><body><ul>" + strings.Join(items, "") + "</ul></body></html>")
	require.NoError(t, err)
	return root.FindAll(ListingSelector)
}

func listingRange(from, to int) []string {
	items := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		items = append(items, listingHTML(i))
	}
	return items
}

type fakePages struct {
	mu    sync.Mutex
	pages map[int][]htmldoc.Node
	errs  map[int]error
	calls []int
}

func (f *fakePages) FetchPage(_ context.Context, _ string, page int) ([]htmldoc.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	if err := f.errs[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

type sleepRecorder struct {
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestScraper(t *testing.T, pages PageFetcher, rec *sleepRecorder) *Scraper {
	t.Helper()
	s, err := NewScraperWithFetcher(Config{Sleep: rec.sleep}, pages)
	require.NoError(t, err)
	return s
}

