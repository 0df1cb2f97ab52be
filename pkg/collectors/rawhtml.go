package collectors

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/poutila/tokenwarehouse/pkg/token"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// HTMLSnippet is one raw HTML occurrence, flagged but never sanitized.
type HTMLSnippet struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Inline  bool     `json:"inline"`
	Allowed bool     `json:"allowed"`
	Line    int      `json:"line"`
	Section int      `json:"section"`
}

// RawHTML collects html_block and html_inline occurrences. Every snippet
// is flagged not-allowed unless the warehouse was configured with
// AllowRawHTML; sanitization stays a downstream concern.
type RawHTML struct {
	Base
	allow bool
	items []HTMLSnippet
}

// NewRawHTML creates the raw HTML collector.
func NewRawHTML(allow bool) *RawHTML {
	return &RawHTML{
		Base: NewBase("raw_html", warehouse.Interest{
			Types:        []string{"html_block", "html_inline"},
			IgnoreInside: []string{"fence", "code_block"},
		}),
		allow: allow,
	}
}

// OnToken records the snippet and its tag inventory.
func (c *RawHTML) OnToken(_ int, v token.View, w *warehouse.Warehouse) error {
	line, section := locate(v, w)
	c.items = append(c.items, HTMLSnippet{
		Content: v.Content,
		Tags:    tagNames(v.Content),
		Inline:  v.Type == "html_inline",
		Allowed: c.allow,
		Line:    line,
		Section: section,
	})
	return nil
}

// Finalize returns the collected snippets.
func (c *RawHTML) Finalize(*warehouse.Warehouse) (any, error) {
	return c.items, nil
}

// tagNames extracts the distinct element names in document order.
// The tokenizer operates on an in-memory string; no I/O is involved.
func tagNames(snippet string) []string {
	if snippet == "" {
		return nil
	}

	var names []string
	seen := make(map[string]struct{})

	tz := html.NewTokenizer(strings.NewReader(snippet))
	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			return names
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tz.TagName()
			tag := string(name)
			if _, dup := seen[tag]; !dup && tag != "" {
				seen[tag] = struct{}{}
				names = append(names, tag)
			}
		}
	}
}
