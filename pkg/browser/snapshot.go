package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Snapshot is a parsed copy of the page HTML at one point in time.
// Queries against it never touch the live page.
type Snapshot struct {
	URL string
	Doc *goquery.Document
}

// Anchor is an <a> element read from a snapshot.
type Anchor struct {
	Href  string
	Label string // aria-label attribute
	Text  string
}

// NewSnapshot parses rawHTML captured from url.
func NewSnapshot(url, rawHTML string) (*Snapshot, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Snapshot{
		URL: url,
		Doc: goquery.NewDocumentFromNode(root),
	}, nil
}

// FirstText returns the whitespace-collapsed text of the first element
// matching selector, or "" if none matches.
func (s *Snapshot) FirstText(selector string) string {
	sel := s.Doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return collapseSpace(sel.Text())
}

// Anchors returns every element matching selector in document order.
func (s *Snapshot) Anchors(selector string) []Anchor {
	var anchors []Anchor
	s.Doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		label, _ := sel.Attr("aria-label")
		anchors = append(anchors, Anchor{
			Href:  strings.TrimSpace(href),
			Label: strings.TrimSpace(label),
			Text:  collapseSpace(sel.Text()),
		})
	})
	return anchors
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
