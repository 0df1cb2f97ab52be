package goldmark

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/poutila/tokenwarehouse/pkg/token"
)

// emitter walks a goldmark AST and emits the flat token stream.
type emitter struct {
	source []byte
	lines  *token.LineCache
}

func newEmitter(source []byte) *emitter {
	return &emitter{
		source: source,
		lines:  token.NewLineCache(source),
	}
}

// document emits the token stream for a parsed document root.
func (e *emitter) document(doc ast.Node) []token.Node {
	var out []token.Node
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		out = e.block(out, c)
	}
	return out
}

// block emits the tokens for one block-level node.
func (e *emitter) block(out []token.Node, n ast.Node) []token.Node {
	start, end, hasMap := e.blockMap(n)

	switch b := n.(type) {
	case *ast.Heading:
		tag := "h" + strconv.Itoa(clampHeadingLevel(b.Level))
		out = append(out, e.mapped(open("heading_open", tag), start, end, hasMap))
		out = append(out, e.inlineNode(b, start, end, hasMap))
		out = append(out, clos("heading_close", tag))

	case *ast.Paragraph:
		out = append(out, e.mapped(open("paragraph_open", "p"), start, end, hasMap))
		out = append(out, e.inlineNode(b, start, end, hasMap))
		out = append(out, clos("paragraph_close", "p"))

	case *ast.TextBlock:
		// Tight list items carry bare text blocks; no paragraph wrapper.
		out = append(out, e.inlineNode(b, start, end, hasMap))

	case *ast.Blockquote:
		out = append(out, e.mapped(open("blockquote_open", "blockquote"), start, end, hasMap))
		for c := b.FirstChild(); c != nil; c = c.NextSibling() {
			out = e.block(out, c)
		}
		out = append(out, clos("blockquote_close", "blockquote"))

	case *ast.List:
		typ, tag := "bullet_list", "ul"
		if b.IsOrdered() {
			typ, tag = "ordered_list", "ol"
		}
		opener := e.mapped(open(typ+"_open", tag), start, end, hasMap)
		if b.IsOrdered() && b.Start != 1 {
			opener.withAttr("start", strconv.Itoa(b.Start))
		}
		out = append(out, opener)
		for c := b.FirstChild(); c != nil; c = c.NextSibling() {
			out = e.block(out, c)
		}
		out = append(out, clos(typ+"_close", tag))

	case *ast.ListItem:
		out = append(out, e.mapped(open("list_item_open", "li"), start, end, hasMap))
		for c := b.FirstChild(); c != nil; c = c.NextSibling() {
			out = e.block(out, c)
		}
		out = append(out, clos("list_item_close", "li"))

	case *ast.FencedCodeBlock:
		node := self("fence", "code")
		if b.Info != nil {
			node.info = string(b.Info.Value(e.source))
		}
		node.content = e.segmentsText(b)
		if hasMap {
			// Extend the content range to cover the fence marker lines.
			node.withMap(clampLine(start-1, e.lines.Count()), clampLine(end+1, e.lines.Count()))
		}
		out = append(out, node)

	case *ast.CodeBlock:
		node := self("code_block", "code")
		node.content = e.segmentsText(b)
		out = append(out, e.mapped(node, start, end, hasMap))

	case *ast.HTMLBlock:
		node := self("html_block", "")
		var sb strings.Builder
		sb.WriteString(e.segmentsText(b))
		if b.HasClosure() {
			sb.Write(b.ClosureLine.Value(e.source))
		}
		node.content = sb.String()
		out = append(out, e.mapped(node, start, end, hasMap))

	case *ast.ThematicBreak:
		out = append(out, self("hr", "hr"))

	case *east.Table:
		out = e.table(out, b, start, end, hasMap)

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			out = e.block(out, c)
		}
	}

	return out
}

// table emits the table_* token family: header row as thead/th, data
// rows wrapped in a single tbody.
func (e *emitter) table(out []token.Node, t *east.Table, start, end int, hasMap bool) []token.Node {
	out = append(out, e.mapped(open("table_open", "table"), start, end, hasMap))

	rowsOpen := false
	for c := t.FirstChild(); c != nil; c = c.NextSibling() {
		switch row := c.(type) {
		case *east.TableHeader:
			out = append(out, open("thead_open", "thead"))
			out = e.tableRow(out, row, "th")
			out = append(out, clos("thead_close", "thead"))

		case *east.TableRow:
			if !rowsOpen {
				out = append(out, open("tbody_open", "tbody"))
				rowsOpen = true
			}
			out = e.tableRow(out, row, "td")
		}
	}
	if rowsOpen {
		out = append(out, clos("tbody_close", "tbody"))
	}

	return append(out, clos("table_close", "table"))
}

func (e *emitter) tableRow(out []token.Node, row ast.Node, cellTag string) []token.Node {
	out = append(out, open("tr_open", "tr"))
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, open(cellTag+"_open", cellTag))
		out = append(out, e.inlineNode(c, 0, 0, false))
		out = append(out, clos(cellTag+"_close", cellTag))
	}
	return append(out, clos("tr_close", "tr"))
}

// inlineNode wraps a block's inline content: the flattened text in
// Content, the structured inline tokens as children.
func (e *emitter) inlineNode(parent ast.Node, start, end int, hasMap bool) *streamNode {
	node := self("inline", "")
	node.content = e.text(parent)
	node.children = e.inline(nil, parent)
	if hasMap {
		node.withMap(start, end)
	}
	return node
}

// inline emits the inline token run for a parent's children.
func (e *emitter) inline(out []token.Node, parent ast.Node) []token.Node {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch i := c.(type) {
		case *ast.Text:
			if i.Segment.Len() > 0 {
				node := self("text", "")
				node.content = string(i.Segment.Value(e.source))
				out = append(out, node)
			}
			if i.HardLineBreak() {
				out = append(out, self("hardbreak", "br"))
			} else if i.SoftLineBreak() {
				out = append(out, self("softbreak", ""))
			}

		case *ast.String:
			node := self("text", "")
			node.content = string(i.Value)
			out = append(out, node)

		case *ast.CodeSpan:
			node := self("code_inline", "code")
			node.content = e.text(i)
			out = append(out, node)

		case *ast.Emphasis:
			typ, tag := "em", "em"
			if i.Level == 2 {
				typ, tag = "strong", "strong"
			}
			out = append(out, open(typ+"_open", tag))
			out = e.inline(out, i)
			out = append(out, clos(typ+"_close", tag))

		case *ast.Link:
			opener := open("link_open", "a").withAttr("href", string(i.Destination))
			if len(i.Title) > 0 {
				opener.withAttr("title", string(i.Title))
			}
			out = append(out, opener)
			out = e.inline(out, i)
			out = append(out, clos("link_close", "a"))

		case *ast.AutoLink:
			url := string(i.URL(e.source))
			out = append(out, open("link_open", "a").withAttr("href", url))
			node := self("text", "")
			node.content = string(i.Label(e.source))
			out = append(out, node, clos("link_close", "a"))

		case *ast.Image:
			dest := string(i.Destination)
			img := self("image", "img").withAttr("href", dest).withAttr("src", dest)
			if len(i.Title) > 0 {
				img.withAttr("title", string(i.Title))
			}
			img.content = e.text(i)
			img.children = e.inline(nil, i)
			out = append(out, img)

		case *ast.RawHTML:
			node := self("html_inline", "")
			var sb strings.Builder
			for s := 0; s < i.Segments.Len(); s++ {
				seg := i.Segments.At(s)
				sb.Write(seg.Value(e.source))
			}
			node.content = sb.String()
			out = append(out, node)

		case *east.Strikethrough:
			out = append(out, open("s_open", "s"))
			out = e.inline(out, i)
			out = append(out, clos("s_close", "s"))

		case *east.TaskCheckBox:
			node := self("text", "")
			if i.IsChecked {
				node.content = "[x] "
			} else {
				node.content = "[ ] "
			}
			out = append(out, node)

		default:
			out = e.inline(out, c)
		}
	}
	return out
}

// text flattens a node's inline content to plain text.
func (e *emitter) text(n ast.Node) string {
	var sb strings.Builder
	e.writeText(&sb, n)
	return sb.String()
}

func (e *emitter) writeText(sb *strings.Builder, n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch i := c.(type) {
		case *ast.Text:
			sb.Write(i.Segment.Value(e.source))
			if i.SoftLineBreak() || i.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(i.Value)
		default:
			e.writeText(sb, c)
		}
	}
}

// segmentsText joins a block node's content line segments.
func (e *emitter) segmentsText(n ast.Node) string {
	lines := n.Lines()
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(e.source))
	}
	return sb.String()
}

// blockMap resolves a node's 0-based [start, end) line range. Nodes
// without their own line segments fall back to the span of their
// descendant text segments.
func (e *emitter) blockMap(n ast.Node) (start, end int, ok bool) {
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		if lines.Len() > 0 {
			first := lines.At(0).Start
			last := lines.At(lines.Len() - 1).Stop
			return e.offsetRange(first, last)
		}
	}

	lo, hi := -1, -1
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, isText := child.(*ast.Text); isText {
			seg := t.Segment
			if lo == -1 || seg.Start < lo {
				lo = seg.Start
			}
			if seg.Stop > hi {
				hi = seg.Stop
			}
		}
		return ast.WalkContinue, nil
	})
	if lo == -1 {
		return 0, 0, false
	}
	return e.offsetRange(lo, hi)
}

// offsetRange converts a byte span to a 0-based [start, end) line range.
func (e *emitter) offsetRange(lo, hi int) (start, end int, ok bool) {
	startLine, okStart := e.lines.LineOf(lo)
	if !okStart {
		return 0, 0, false
	}
	endLine, okEnd := e.lines.LineOf(hi - 1)
	if !okEnd {
		endLine = e.lines.Count() - 1
	}
	return startLine, endLine + 1, true
}

func (e *emitter) mapped(n *streamNode, start, end int, ok bool) *streamNode {
	if ok {
		n.withMap(start, end)
	}
	return n
}

func clampHeadingLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func clampLine(line, count int) int {
	if line < 0 {
		return 0
	}
	if line > count {
		return count
	}
	return line
}
