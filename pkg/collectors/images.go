package collectors

import (
	"github.com/poutila/tokenwarehouse/pkg/token"
	"github.com/poutila/tokenwarehouse/pkg/urlnorm"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// Image is one extracted image reference.
type Image struct {
	Src        string `json:"src"`
	Alt        string `json:"alt,omitempty"`
	Normalized string `json:"normalized,omitempty"`
	Allowed    bool   `json:"allowed"`
	Line       int    `json:"line"`
	Section    int    `json:"section"`
}

// Images extracts image sources, sharing the link collector's policy
// posture: verdicts come from urlnorm, fetching is someone else's job.
type Images struct {
	Base
	policy urlnorm.Policy
	items  []Image
}

// NewImages creates the image collector.
func NewImages(policy urlnorm.Policy) *Images {
	return &Images{
		Base: NewBase("images", warehouse.Interest{
			Types:        []string{"image"},
			IgnoreInside: []string{"fence", "code_block"},
		}),
		policy: policy,
	}
}

// OnToken records one image. The canonicalized href carries the source
// attribute; content carries the alt text.
func (c *Images) OnToken(_ int, v token.View, w *warehouse.Warehouse) error {
	line, section := locate(v, w)
	item := Image{Src: v.HRef, Alt: v.Content, Line: line, Section: section}

	if res, err := urlnorm.Normalize(v.HRef, c.policy); err == nil {
		item.Normalized = res.Normalized
		item.Allowed = res.Allowed
	}

	c.items = append(c.items, item)
	return nil
}

// Finalize returns the collected images.
func (c *Images) Finalize(*warehouse.Warehouse) (any, error) {
	return c.items, nil
}
