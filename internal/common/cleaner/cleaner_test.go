package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/bayt-crawler/internal/domain"
)

func TestCleanStripsScripts(t *testing.T) {
	c := NewCleaner()

	out := c.Clean(`<p>Apply <a href="javascript:alert(1)">here</a></p><script>alert(1)</script>`)
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "<p>")
}

func TestCleanToText(t *testing.T) {
	c := NewCleaner()
	assert.Equal(t, "Senior Engineer", c.CleanToText("  <b>Senior</b> Engineer "))
}

func TestCleanJob(t *testing.T) {
	c := NewCleaner()
	job := &domain.JobPost{
		Title:       "<em>Data</em> Engineer",
		CompanyName: domain.StringPtr("<span></span>"),
		Description: domain.StringPtr(`<div onclick="x()">Build pipelines</div>`),
		Location:    &domain.Location{City: domain.StringPtr("<i>Dubai</i>")},
	}

	c.CleanJob(job)

	assert.Equal(t, "Data Engineer", job.Title)
	assert.Nil(t, job.CompanyName)
	require.NotNil(t, job.Description)
	assert.Equal(t, "<div>Build pipelines</div>", *job.Description)
	assert.Equal(t, "Dubai", *job.Location.City)
	assert.Nil(t, job.JobLevel)
}
