// Package opml reads OPML subscription lists for bulk feed import.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type document struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    struct {
		Title string `xml:"title"`
	} `xml:"head"`
	Body struct {
		Outlines []outline `xml:"outline"`
	} `xml:"body"`
}

type outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr"`
	Type     string    `xml:"type,attr"`
	XMLURL   string    `xml:"xmlUrl,attr"`
	HTMLURL  string    `xml:"htmlUrl,attr"`
	Outlines []outline `xml:"outline"`
}

// Source is one feed to import. Category is the name of the innermost
// folder holding it, empty for top-level feeds.
type Source struct {
	Category string
	Title    string
	URL      string
	SiteURL  string
}

// Parse reads an OPML document and returns its feeds in document order.
func Parse(r io.Reader) ([]Source, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode opml: %w", err)
	}
	var sources []Source
	var walk func(outlines []outline, category string)
	walk = func(outlines []outline, category string) {
		for _, o := range outlines {
			switch {
			case o.XMLURL != "":
				sources = append(sources, Source{
					Category: category,
					Title:    firstNonEmpty(o.Title, o.Text, o.XMLURL),
					URL:      strings.TrimSpace(o.XMLURL),
					SiteURL:  o.HTMLURL,
				})
			case len(o.Outlines) > 0:
				walk(o.Outlines, firstNonEmpty(o.Text, o.Title, category))
			}
		}
	}
	walk(doc.Body.Outlines, "")
	return sources, nil
}

// Categories returns the distinct non-empty categories of sources in
// first-seen order.
func Categories(sources []Source) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range sources {
		if s.Category == "" || seen[s.Category] {
			continue
		}
		seen[s.Category] = true
		names = append(names, s.Category)
	}
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
