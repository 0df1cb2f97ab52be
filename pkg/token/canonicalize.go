package token

// Canonicalize converts one untrusted node into a View.
//
// Each accessor is called exactly once, inside a recover boundary. A
// panicking accessor yields the zero value for its field; the panic never
// propagates. Out-of-range map bounds are clamped so that
// 0 <= MapStart <= MapEnd <= MaxLine, and nesting is coerced into
// {-1, 0, 1}. Canonicalize never fails.
func Canonicalize(n Node) View {
	if n == nil {
		return View{}
	}

	v := View{
		Type:    safeString(n.Type),
		Tag:     safeString(n.Tag),
		Info:    safeString(n.Info),
		Content: safeString(n.Content),
		HRef:    safeAttr(n, "href"),
	}

	v.Nesting = coerceNesting(safeInt(n.Nesting))

	if start, end, ok := safeMap(n); ok {
		v.HasMap = true
		v.MapStart, v.MapEnd = clampRange(start, end)
	}

	return v
}

// Flatten canonicalizes a node sequence in document order, descending into
// children with an explicit stack. Parents precede their children.
//
// Traversal stops after limit+1 views so the resource guard can observe an
// over-limit stream without the flattener itself being unbounded; this also
// caps nodes whose Children form a cycle. A limit <= 0 means no cap.
func Flatten(nodes []Node, limit int) []View {
	views := make([]View, 0, len(nodes))

	// Stack of remaining nodes, pushed in reverse so pops come out in
	// document order.
	stack := make([]Node, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, nodes[i])
	}

	for len(stack) > 0 {
		if limit > 0 && len(views) > limit {
			break
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}

		views = append(views, Canonicalize(n))

		children := safeChildren(n)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return views
}

// clampRange normalizes a map range: negatives become 0, inverted ranges
// collapse to (start, start), and both bounds are capped at MaxLine.
func clampRange(start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > MaxLine {
		start = MaxLine
	}
	if end < start {
		end = start
	}
	if end > MaxLine {
		end = MaxLine
	}
	return start, end
}

// coerceNesting forces a nesting value into {-1, 0, 1}.
func coerceNesting(n int) int {
	switch n {
	case -1, 0, 1:
		return n
	default:
		return 0
	}
}

func safeString(fn func() string) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return fn()
}

func safeInt(fn func() int) (i int) {
	defer func() {
		if recover() != nil {
			i = 0
		}
	}()
	return fn()
}

func safeAttr(n Node, name string) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return n.AttrGet(name)
}

func safeMap(n Node) (start, end int, ok bool) {
	defer func() {
		if recover() != nil {
			start, end, ok = 0, 0, false
		}
	}()
	return n.Map()
}

func safeChildren(n Node) (children []Node) {
	defer func() {
		if recover() != nil {
			children = nil
		}
	}()
	return n.Children()
}
