package cleaner

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/project-tktt/bayt-crawler/internal/domain"
)

// Cleaner sanitizes HTML content using Bluemonday
type Cleaner struct {
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewCleaner creates a new HTML cleaner with a safe policy
func NewCleaner() *Cleaner {
	// Basic formatting only, dangerous elements are stripped
	policy := bluemonday.NewPolicy()

	policy.AllowElements("p", "br", "div", "span")
	policy.AllowElements("strong", "b", "em", "i", "u")
	policy.AllowElements("ul", "ol", "li")
	policy.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")

	// Links without javascript:
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowRelativeURLs(true)
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto")

	return &Cleaner{policy: policy, strict: bluemonday.StrictPolicy()}
}

// Clean sanitizes HTML content
func (c *Cleaner) Clean(html string) string {
	return c.policy.Sanitize(html)
}

// CleanToText removes all HTML and returns plain text
func (c *Cleaner) CleanToText(html string) string {
	text := c.strict.Sanitize(html)
	text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	return strings.TrimSpace(text)
}

// CleanJob strips markup from the single-line fields of a post and sanitizes
// its description. Fields that end up empty become nil.
func (c *Cleaner) CleanJob(job *domain.JobPost) {
	job.Title = c.CleanToText(job.Title)
	job.CompanyName = c.cleanPtr(job.CompanyName, c.CleanToText)
	job.JobLevel = c.cleanPtr(job.JobLevel, c.CleanToText)
	job.CompanyIndustry = c.cleanPtr(job.CompanyIndustry, c.CleanToText)
	job.JobFunction = c.cleanPtr(job.JobFunction, c.CleanToText)
	job.Description = c.cleanPtr(job.Description, c.Clean)
	if job.Location != nil {
		job.Location.City = c.cleanPtr(job.Location.City, c.CleanToText)
		job.Location.State = c.cleanPtr(job.Location.State, c.CleanToText)
	}
}

func (c *Cleaner) cleanPtr(s *string, fn func(string) string) *string {
	if s == nil {
		return nil
	}
	return domain.StringPtr(fn(*s))
}
