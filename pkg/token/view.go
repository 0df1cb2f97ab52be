// Package token defines the canonical, primitive-only projection of parsed
// document nodes and the trust boundary that produces it.
//
// Nodes arrive from an external parser or from third-party plugins and are
// treated as hostile: any accessor may panic, loop, or lie about its bounds.
// Canonicalize copies every field exactly once into a View; after that no
// code in this module touches the original node again.
package token

// MaxLine is the upper bound for line numbers in a map range.
// Values above it are clamped down during canonicalization.
const MaxLine = 1_000_000

// Node is the read surface of one raw parser node.
//
// Implementations are untrusted. Every method is invoked at most once per
// node, inside a recover boundary, during canonicalization.
type Node interface {
	// Type returns the token type name (e.g. "heading_open", "inline").
	Type() string

	// Nesting returns 1 for opening tokens, -1 for closing, 0 for self-closing.
	Nesting() int

	// Tag returns the HTML tag associated with the token ("h1", "a", ...).
	Tag() string

	// Map returns the source line range [start, end) if known.
	Map() (start, end int, ok bool)

	// Info returns the info string (fence language hint etc.).
	Info() string

	// Content returns the token's text content.
	Content() string

	// AttrGet returns a named attribute value, or "" if absent.
	AttrGet(name string) string

	// Children returns nested tokens (inline runs), or nil.
	Children() []Node
}

// View is an immutable, primitive-only copy of one node.
//
// Once constructed, a View holds no reference to the node it came from.
// Invariants: Nesting is one of -1, 0, 1; if HasMap is true then
// 0 <= MapStart <= MapEnd <= MaxLine.
type View struct {
	// Type is the token type name.
	Type string

	// Nesting is 1 (opening), -1 (closing) or 0 (self-closing).
	Nesting int

	// Tag is the associated HTML tag, or empty.
	Tag string

	// HasMap reports whether MapStart/MapEnd carry a source range.
	HasMap bool

	// MapStart is the 0-based first source line of the token.
	MapStart int

	// MapEnd is the 0-based exclusive last source line of the token.
	MapEnd int

	// Info is the info string, or empty.
	Info string

	// Content is the text content, or empty.
	Content string

	// HRef is the link destination attribute, or empty.
	HRef string
}

// IsOpening reports whether the view opens a paired region.
func (v View) IsOpening() bool { return v.Nesting == 1 }

// IsClosing reports whether the view closes a paired region.
func (v View) IsClosing() bool { return v.Nesting == -1 }

// ByteLen returns the number of payload bytes held by the view.
// The resource guard sums this across the stream when no raw source
// text is available.
func (v View) ByteLen() int {
	return len(v.Type) + len(v.Tag) + len(v.Info) + len(v.Content) + len(v.HRef)
}
