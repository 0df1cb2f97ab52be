package collectors

import (
	"github.com/poutila/tokenwarehouse/pkg/token"
	"github.com/poutila/tokenwarehouse/pkg/urlnorm"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// Link is one extracted link destination with its policy verdict.
type Link struct {
	HRef       string `json:"href"`
	Normalized string `json:"normalized,omitempty"`
	Scheme     string `json:"scheme,omitempty"`
	Allowed    bool   `json:"allowed"`
	Line       int    `json:"line"`
	Section    int    `json:"section"`
}

// Links extracts link destinations. Links inside fenced or indented code
// are literal text, not links, so those regions are ignored.
type Links struct {
	Base
	policy urlnorm.Policy
	items  []Link
}

// NewLinks creates the link collector.
func NewLinks(policy urlnorm.Policy) *Links {
	return &Links{
		Base: NewBase("links", warehouse.Interest{
			Types:        []string{"link_open"},
			IgnoreInside: []string{"fence", "code_block"},
		}),
		policy: policy,
	}
}

// OnToken records one link with the shared normalizer's verdict. An
// unparseable URL is recorded as unsafe rather than failing the document.
func (c *Links) OnToken(_ int, v token.View, w *warehouse.Warehouse) error {
	line, section := locate(v, w)
	item := Link{HRef: v.HRef, Line: line, Section: section}

	if res, err := urlnorm.Normalize(v.HRef, c.policy); err == nil {
		item.Normalized = res.Normalized
		item.Scheme = res.Scheme
		item.Allowed = res.Allowed
	}

	c.items = append(c.items, item)
	return nil
}

// Finalize returns the collected links.
func (c *Links) Finalize(*warehouse.Warehouse) (any, error) {
	return c.items, nil
}
