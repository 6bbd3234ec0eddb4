package bayt

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/project-tktt/bayt-crawler/internal/common/htmldoc"
	"github.com/project-tktt/bayt-crawler/internal/domain"
)

const (
	titleSelector    = "h2"
	linkSelector     = "a"
	companySelector  = "div.t-nowrap.p10l span"
	locationSelector = "div.t-mute.t-small"
)

// Extractor turns one listing node into a JobPost
type Extractor struct {
	base    *url.URL
	country domain.Country
	now     func() time.Time
}

// NewExtractor creates an extractor resolving detail links against baseURL
func NewExtractor(baseURL string) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return &Extractor{
		base:    base,
		country: domain.CountryFromString("worldwide"),
		now:     time.Now,
	}, nil
}

// Extract returns nil without an error when the listing has no title or no
// detail link, which is how ads and malformed entries look on the page.
func (e *Extractor) Extract(node htmldoc.Node) (*domain.JobPost, error) {
	heading, ok := node.Find(titleSelector)
	if !ok {
		return nil, nil
	}

	title := heading.Text()
	if title == "" {
		return nil, nil
	}

	jobURL, err := e.jobURL(heading)
	if err != nil {
		return nil, err
	}
	if jobURL == "" {
		return nil, nil
	}

	var company string
	if tag, ok := node.Find(companySelector); ok {
		company = tag.Text()
	}

	var city string
	if tag, ok := node.Find(locationSelector); ok {
		city = tag.Text()
	}

	return &domain.JobPost{
		ID:          JobID(jobURL),
		Site:        domain.SourceBayt,
		Title:       title,
		CompanyName: domain.StringPtr(company),
		JobURL:      jobURL,
		Location: &domain.Location{
			City:    domain.StringPtr(city),
			Country: e.country,
		},
		Emails:    []string{},
		CrawledAt: e.now(),
	}, nil
}

func (e *Extractor) jobURL(heading htmldoc.Node) (string, error) {
	a, ok := heading.Find(linkSelector)
	if !ok {
		return "", nil
	}
	href, ok := a.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse job href %q: %w", href, err)
	}
	return e.base.ResolveReference(ref).String(), nil
}

// JobID derives the stable identifier of a posting from its detail URL using
// 64-bit xxHash, so the same URL maps to the same ID across runs and processes.
func JobID(jobURL string) string {
	return "bayt-" + strconv.FormatUint(xxhash.Sum64String(jobURL), 10)
}
