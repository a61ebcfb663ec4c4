// Package sitemap builds sitemap-0.9 XML documents.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Namespace is the sitemap protocol 0.9 XML namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// MaxURLs is the largest number of entries the protocol allows in one file.
const MaxURLs = 50000

// URLSet is the root element of a sitemap.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNs   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is a single entry of a sitemap.
type URL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Location joins a site origin and a path segment into an absolute page URL.
// Trailing slashes on base are dropped and segment is percent-encoded.
func Location(base, segment string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(segment)
}

// Builder accumulates sitemap entries in insertion order.
type Builder struct {
	urls    []URL
	lastMod string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetLastMod sets the <lastmod> value (W3C date, e.g. "2006-01-02") used for
// entries added afterwards. An empty value omits the element.
func (b *Builder) SetLastMod(lastMod string) {
	b.lastMod = lastMod
}

// Add appends an entry for loc. Duplicates are kept.
func (b *Builder) Add(loc string) {
	b.urls = append(b.urls, URL{Loc: loc, LastMod: b.lastMod})
}

// Len returns the number of entries added so far.
func (b *Builder) Len() int {
	return len(b.urls)
}

// Marshal serializes the entries as an indented sitemap document, starting
// with the XML declaration.
func (b *Builder) Marshal() ([]byte, error) {
	set := URLSet{XMLNs: Namespace, URLs: b.urls}
	output, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sitemap: %w", err)
	}
	doc := make([]byte, 0, len(xml.Header)+len(output)+1)
	doc = append(doc, xml.Header...)
	doc = append(doc, output...)
	doc = append(doc, '\n')
	return doc, nil
}

// Parse decodes a sitemap document.
func Parse(r io.Reader) (*URLSet, error) {
	var set URLSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}
	return &set, nil
}
