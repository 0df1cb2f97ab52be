package collectors

import (
	"strings"

	"github.com/poutila/tokenwarehouse/pkg/langdetect"
	"github.com/poutila/tokenwarehouse/pkg/token"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// CodeBlock is one fenced or indented code block.
type CodeBlock struct {
	Info     string `json:"info,omitempty"`
	Language string `json:"language"`
	Lines    int    `json:"lines"`
	Line     int    `json:"line"`
	Section  int    `json:"section"`
}

// CodeBlocks inventories code blocks, resolving each block's language
// from its fence hint or, failing that, from the content itself.
type CodeBlocks struct {
	Base
	items []CodeBlock
}

// NewCodeBlocks creates the code block collector.
func NewCodeBlocks() *CodeBlocks {
	return &CodeBlocks{
		Base: NewBase("code_blocks", warehouse.Interest{
			Types: []string{"fence", "code_block"},
		}),
	}
}

// OnToken records one block.
func (c *CodeBlocks) OnToken(_ int, v token.View, w *warehouse.Warehouse) error {
	line, section := locate(v, w)

	lang := langdetect.NormalizeHint(v.Info)
	if lang == "" {
		lang = langdetect.Detect([]byte(v.Content))
	}

	c.items = append(c.items, CodeBlock{
		Info:     v.Info,
		Language: lang,
		Lines:    countLines(v.Content),
		Line:     line,
		Section:  section,
	})
	return nil
}

// Finalize returns the code block inventory.
func (c *CodeBlocks) Finalize(*warehouse.Warehouse) (any, error) {
	return c.items, nil
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
