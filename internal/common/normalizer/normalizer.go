package normalizer

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/project-tktt/bayt-crawler/internal/domain"
)

// ErrIncomplete marks posts that lack a field every stored job needs
var ErrIncomplete = errors.New("incomplete job post")

var spaceRe = regexp.MustCompile(`\s+`)

// Normalizer brings posts from the queue into their canonical stored form
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize decodes entities, collapses whitespace and fills defaults.
// The post is modified in place and returned.
func (n *Normalizer) Normalize(job *domain.JobPost) (*domain.JobPost, error) {
	job.ID = strings.TrimSpace(job.ID)
	job.JobURL = strings.TrimSpace(job.JobURL)
	job.Title = normalizeText(job.Title)

	switch {
	case job.ID == "":
		return nil, fmt.Errorf("%w: missing id", ErrIncomplete)
	case job.Title == "":
		return nil, fmt.Errorf("%w: %s has no title", ErrIncomplete, job.ID)
	case job.JobURL == "":
		return nil, fmt.Errorf("%w: %s has no url", ErrIncomplete, job.ID)
	}

	if job.Site == "" {
		job.Site = domain.SourceBayt
	}
	job.CompanyName = normalizePtr(job.CompanyName)
	job.JobLevel = normalizePtr(job.JobLevel)
	job.CompanyIndustry = normalizePtr(job.CompanyIndustry)
	job.JobFunction = normalizePtr(job.JobFunction)

	if job.Location == nil {
		job.Location = &domain.Location{}
	}
	job.Location.City = normalizePtr(job.Location.City)
	job.Location.State = normalizePtr(job.Location.State)
	job.Location.Country = domain.CountryFromString(string(job.Location.Country))

	if job.Emails == nil {
		job.Emails = []string{}
	}
	if job.CrawledAt.IsZero() {
		job.CrawledAt = n.now().UTC()
	}
	return job, nil
}

func normalizeText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(html.UnescapeString(s), " "))
}

func normalizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	return domain.StringPtr(normalizeText(*s))
}
