package warehouse

import (
	"fmt"

	"github.com/poutila/tokenwarehouse/pkg/token"
)

// tv builds a test view.
func tv(typ string, nesting int) token.View {
	return token.View{Type: typ, Nesting: nesting}
}

// tvm builds a test view with a map range.
func tvm(typ string, nesting, start, end int) token.View {
	return token.View{Type: typ, Nesting: nesting, HasMap: true, MapStart: start, MapEnd: end}
}

// headingViews produces a heading_open/inline/heading_close triple.
func headingViews(level, line int, title string) []token.View {
	return []token.View{
		{Type: "heading_open", Nesting: 1, Tag: fmt.Sprintf("h%d", level), HasMap: true, MapStart: line, MapEnd: line + 1},
		{Type: "inline", Content: title, HasMap: true, MapStart: line, MapEnd: line + 1},
		{Type: "heading_close", Nesting: -1, Tag: fmt.Sprintf("h%d", level)},
	}
}

// stubCollector is a scriptable collector for dispatcher tests.
type stubCollector struct {
	name     string
	interest Interest

	onToken  func(index int, v token.View, w *Warehouse) error
	finalize func(w *Warehouse) (any, error)
	should   func(index int, v token.View, w *Warehouse) bool

	seen []string
}

func (s *stubCollector) Name() string       { return s.name }
func (s *stubCollector) Interest() Interest { return s.interest }

func (s *stubCollector) ShouldProcess(index int, v token.View, w *Warehouse) bool {
	if s.should != nil {
		return s.should(index, v, w)
	}
	return true
}

func (s *stubCollector) OnToken(index int, v token.View, w *Warehouse) error {
	s.seen = append(s.seen, fmt.Sprintf("%d:%s", index, v.Type))
	if s.onToken != nil {
		return s.onToken(index, v, w)
	}
	return nil
}

func (s *stubCollector) Finalize(w *Warehouse) (any, error) {
	if s.finalize != nil {
		return s.finalize(w)
	}
	out := make([]string, len(s.seen))
	copy(out, s.seen)
	return out, nil
}
