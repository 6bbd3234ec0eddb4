package domain

import (
	"strings"
	"time"
)

// DefaultResultsWanted is used when a SearchRequest does not set a positive count
const DefaultResultsWanted = 10

// SearchRequest is the input of a single scrape call
type SearchRequest struct {
	SearchTerm    string `json:"search_term"`
	ResultsWanted int    `json:"results_wanted"`
}

// Wanted returns the requested result count, falling back to DefaultResultsWanted
func (r SearchRequest) Wanted() int {
	if r.ResultsWanted <= 0 {
		return DefaultResultsWanted
	}
	return r.ResultsWanted
}

// JobPost represents a normalized job posting in the shared pipeline schema.
// Fields a source cannot populate stay nil and serialize as explicit nulls.
type JobPost struct {
	ID               string        `json:"id"`
	Site             JobSource     `json:"site"`
	Title            string        `json:"title"`
	CompanyName      *string       `json:"company_name"`
	JobURL           string        `json:"job_url"`
	JobURLDirect     *string       `json:"job_url_direct"`
	Location         *Location     `json:"location"`
	Description      *string       `json:"description"`
	CompanyURL       *string       `json:"company_url"`
	CompanyURLDirect *string       `json:"company_url_direct"`
	JobType          []JobType     `json:"job_type"`
	Compensation     *Compensation `json:"compensation"`
	DatePosted       *time.Time    `json:"date_posted"`
	Emails           []string      `json:"emails"`
	IsRemote         *bool         `json:"is_remote"`
	JobLevel         *string       `json:"job_level"`
	CompanyIndustry  *string       `json:"company_industry"`
	CompanyLogo      *string       `json:"company_logo"`
	JobFunction      *string       `json:"job_function"`
	CrawledAt        time.Time     `json:"crawled_at"`
}

// Location holds the free-text location of a posting
type Location struct {
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country Country `json:"country"`
}

// DisplayLocation joins the known parts of the location
func (l *Location) DisplayLocation() string {
	if l == nil {
		return ""
	}
	var parts []string
	if l.City != nil && *l.City != "" {
		parts = append(parts, *l.City)
	}
	if l.State != nil && *l.State != "" {
		parts = append(parts, *l.State)
	}
	if l.Country != "" && l.Country != CountryWorldwide {
		parts = append(parts, string(l.Country))
	}
	return strings.Join(parts, ", ")
}

// Compensation is the salary range of a posting
type Compensation struct {
	Interval  string   `json:"interval"`
	MinAmount *float64 `json:"min_amount"`
	MaxAmount *float64 `json:"max_amount"`
	Currency  string   `json:"currency"`
}

// JobType classifies the employment type of a posting
type JobType string

const (
	JobTypeFullTime   JobType = "fulltime"
	JobTypePartTime   JobType = "parttime"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
)

// JobResponse is the ordered result of a scrape call
type JobResponse struct {
	Jobs []JobPost `json:"jobs"`
}

// JobSource represents a job listing source
type JobSource string

const (
	SourceBayt JobSource = "bayt"
)

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
