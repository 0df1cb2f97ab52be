// Package collectors provides the reference extractors shipped with the
// warehouse: links, images, headings, tables, raw HTML and code blocks.
//
// All of them honor the collector contract: no blocking work in OnToken or
// Finalize, URL verdicts only through urlnorm, accumulation bounded by the
// dispatcher's per-collector caps.
package collectors

import (
	"github.com/poutila/tokenwarehouse/pkg/token"
	"github.com/poutila/tokenwarehouse/pkg/urlnorm"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// Base carries the name/interest plumbing shared by every collector.
type Base struct {
	name     string
	interest warehouse.Interest
}

// NewBase creates the embedded base.
func NewBase(name string, interest warehouse.Interest) Base {
	return Base{name: name, interest: interest}
}

// Name returns the collector name.
func (b Base) Name() string { return b.name }

// Interest returns the declared subscription.
func (b Base) Interest() warehouse.Interest { return b.interest }

// ShouldProcess accepts everything; collectors with a cheaper pre-filter
// override it.
func (b Base) ShouldProcess(int, token.View, *warehouse.Warehouse) bool { return true }

// Defaults returns the full reference collector set wired against the
// given policy and limits.
func Defaults(policy urlnorm.Policy, limits warehouse.Limits) []warehouse.Collector {
	return []warehouse.Collector{
		NewLinks(policy),
		NewImages(policy),
		NewHeadings(),
		NewTables(),
		NewRawHTML(limits.AllowRawHTML),
		NewCodeBlocks(),
	}
}

// locate resolves line and section attribution for a view.
func locate(v token.View, w *warehouse.Warehouse) (line, section int) {
	line, section = -1, -1
	if v.HasMap {
		line = v.MapStart
		if sec, ok := w.SectionOf(line); ok {
			section = sec
		}
	}
	return line, section
}
