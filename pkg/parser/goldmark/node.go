package goldmark

import "github.com/poutila/tokenwarehouse/pkg/token"

// streamNode is one emitted token. It implements token.Node so the
// warehouse can canonicalize the stream like any other parser's output.
type streamNode struct {
	typ      string
	nesting  int
	tag      string
	hasMap   bool
	mapStart int
	mapEnd   int
	info     string
	content  string
	attrs    map[string]string
	children []token.Node
}

func (n *streamNode) Type() string    { return n.typ }
func (n *streamNode) Nesting() int    { return n.nesting }
func (n *streamNode) Tag() string     { return n.tag }
func (n *streamNode) Info() string    { return n.info }
func (n *streamNode) Content() string { return n.content }

func (n *streamNode) Map() (start, end int, ok bool) {
	return n.mapStart, n.mapEnd, n.hasMap
}

func (n *streamNode) AttrGet(name string) string {
	return n.attrs[name]
}

func (n *streamNode) Children() []token.Node {
	return n.children
}

// open creates an opening token.
func open(typ, tag string) *streamNode {
	return &streamNode{typ: typ, nesting: 1, tag: tag}
}

// clos creates the matching closing token.
func clos(typ, tag string) *streamNode {
	return &streamNode{typ: typ, nesting: -1, tag: tag}
}

// self creates a self-closing token.
func self(typ, tag string) *streamNode {
	return &streamNode{typ: typ, tag: tag}
}

// withMap attaches a 0-based [start, end) line range.
func (n *streamNode) withMap(start, end int) *streamNode {
	n.hasMap = true
	n.mapStart = start
	n.mapEnd = end
	return n
}

// withAttr sets a named attribute.
func (n *streamNode) withAttr(name, value string) *streamNode {
	if n.attrs == nil {
		n.attrs = make(map[string]string, 2)
	}
	n.attrs[name] = value
	return n
}
