package htmldoc

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<html><body><ul>
<li data-js-job="" class="has-pointer-d">
  <h2> <a href="/en/uae/jobs/backend-engineer-123/">  Backend Engineer </a></h2>
  <div class="t-nowrap p10l"><span>Acme</span></div>
</li>
<li data-js-job=""><h2>Second</h2></li>
</ul></body></html>`

func TestFindAndText(t *testing.T) {
	root, err := ParseString(fixture)
	require.NoError(t, err)

	items := root.FindAll("li[data-js-job]")
	require.Len(t, items, 2)

	h2, ok := items[0].Find("h2")
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", h2.Text())

	a, ok := h2.Find("a")
	require.True(t, ok)
	href, ok := a.Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/en/uae/jobs/backend-engineer-123/", href)

	span, ok := items[0].Find("div.t-nowrap.p10l span")
	require.True(t, ok)
	assert.Equal(t, "Acme", span.Text())

	_, ok = items[1].Find("a")
	assert.False(t, ok)
	_, ok = items[1].Attr("href")
	assert.False(t, ok)
}

func TestSnippetIsTruncated(t *testing.T) {
	root, err := ParseString(fixture)
	require.NoError(t, err)

	li, ok := root.Find("li")
	require.True(t, ok)

	full := li.Snippet(0)
	assert.Contains(t, full, "Backend Engineer")
	assert.Len(t, li.Snippet(10), 10)
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	root, err := ParseString(`<html><body><p>café</p></body></html>`)
	require.NoError(t, err)

	p, ok := root.Find("p")
	require.True(t, ok)

	snippet := p.Snippet(7)
	assert.Equal(t, "<p>caf", snippet)
	assert.True(t, utf8.ValidString(snippet))
	assert.Equal(t, "<p>café", p.Snippet(8))
}
