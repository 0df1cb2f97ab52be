package collectors

import (
	"github.com/poutila/tokenwarehouse/pkg/token"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// Heading is one outline entry.
type Heading struct {
	Level   int    `json:"level"`
	Text    string `json:"text"`
	Line    int    `json:"line"`
	Section int    `json:"section"`
}

// Headings builds the document outline from heading_open/inline pairs.
type Headings struct {
	Base
	items   []Heading
	pending int // token index of the open heading, -1 otherwise
}

// NewHeadings creates the headings collector.
func NewHeadings() *Headings {
	return &Headings{
		Base: NewBase("headings", warehouse.Interest{
			Types: []string{"heading_open", "inline", "heading_close"},
		}),
		pending: -1,
	}
}

// OnToken tracks the open heading and captures the inline text directly
// under it. Tokens arrive in document order, so the inline between a
// heading_open and its heading_close is the heading text.
func (c *Headings) OnToken(index int, v token.View, w *warehouse.Warehouse) error {
	switch v.Type {
	case "heading_open":
		line, section := locate(v, w)
		c.items = append(c.items, Heading{
			Level:   headingLevel(v.Tag),
			Line:    line,
			Section: section,
		})
		c.pending = index

	case "inline":
		if c.pending < 0 || len(c.items) == 0 {
			return nil
		}
		if parent, ok := w.ParentOf(index); ok && parent == c.pending {
			c.items[len(c.items)-1].Text = v.Content
		}

	case "heading_close":
		c.pending = -1
	}
	return nil
}

// Finalize returns the outline.
func (c *Headings) Finalize(*warehouse.Warehouse) (any, error) {
	return c.items, nil
}

// headingLevel parses "h1".."h6"; anything else is 0.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
