// Package htmldoc exposes parsed HTML through a small query interface so
// site extractors do not depend on a specific parser.
package htmldoc

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Node is a read-only handle to one element of a parsed document
type Node interface {
	// Find returns the first descendant matching the CSS selector
	Find(selector string) (Node, bool)
	// FindAll returns every descendant matching the CSS selector
	FindAll(selector string) []Node
	// Text returns the combined text of the node, trimmed
	Text() string
	// Attr returns the value of the named attribute
	Attr(name string) (string, bool)
	// Snippet returns at most n bytes of the node's outer HTML, cut on a rune boundary
	Snippet(n int) string
}

// Parse reads an HTML document and returns its root node
func Parse(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return selectionNode{sel: doc.Selection}, nil
}

// ParseString is Parse for an in-memory document
func ParseString(html string) (Node, error) {
	return Parse(strings.NewReader(html))
}

// FromSelection wraps a goquery selection, using only its first element
func FromSelection(sel *goquery.Selection) Node {
	return selectionNode{sel: sel.First()}
}

type selectionNode struct {
	sel *goquery.Selection
}

func (n selectionNode) Find(selector string) (Node, bool) {
	found := n.sel.Find(selector)
	if found.Length() == 0 {
		return nil, false
	}
	return selectionNode{sel: found.First()}, true
}

func (n selectionNode) FindAll(selector string) []Node {
	found := n.sel.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, selectionNode{sel: s})
	})
	return nodes
}

func (n selectionNode) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

func (n selectionNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n selectionNode) Snippet(limit int) string {
	html, err := goquery.OuterHtml(n.sel)
	if err != nil {
		return ""
	}
	if limit > 0 && len(html) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(html[cut]) {
			cut--
		}
		return html[:cut]
	}
	return html
}
