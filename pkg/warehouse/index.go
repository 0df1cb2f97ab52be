package warehouse

import (
	"sort"

	"github.com/poutila/tokenwarehouse/pkg/token"
)

// Section is one heading-delimited region of the document.
// The section table is sorted by StartLine; sections are non-overlapping
// and partition [0, document end). Lines before the first heading belong
// to a synthetic preamble section with HeadingIndex -1 and Level 0.
type Section struct {
	// HeadingIndex is the token index of the heading_open, or -1 for the
	// preamble.
	HeadingIndex int `json:"heading_index"`

	// StartLine is the 0-based first line of the section (inclusive).
	StartLine int `json:"start_line"`

	// EndLine is the 0-based end line (exclusive).
	EndLine int `json:"end_line"`

	// Level is the heading level 1-6, or 0 for the preamble.
	Level int `json:"level"`

	// Title is the heading text, empty for the preamble.
	Title string `json:"title"`
}

// Fence is one fenced or indented code block region.
type Fence struct {
	// TokenIndex is the position of the fence token in the stream.
	TokenIndex int `json:"token_index"`

	// StartLine and EndLine delimit the block (0-based, end exclusive).
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`

	// Info is the fence info string ("go", "python", ...), or empty.
	Info string `json:"info"`
}

// indexTables holds every auxiliary index built over the token stream.
// All tables come out of one forward pass; collectors query them instead
// of re-scanning the stream.
type indexTables struct {
	// byType maps a token type to its positions in document order.
	byType map[string][]int

	// pairClose maps an opening token index to its closing index, -1 if
	// unmatched. pairOpen is the reverse mapping.
	pairClose []int
	pairOpen  []int

	// parents maps a token index to its enclosing opening token, -1 at
	// top level.
	parents []int

	// sections is sorted by StartLine.
	sections []Section

	// fences lists code block regions in document order.
	fences []Fence
}

// buildIndexes performs the single O(N) indexing pass. Pair and parent
// tracking uses an explicit stack: nesting is bounded by the resource
// guard, never by goroutine stack depth.
func buildIndexes(views []token.View) *indexTables {
	n := len(views)
	idx := &indexTables{
		byType:    make(map[string][]int),
		pairClose: make([]int, n),
		pairOpen:  make([]int, n),
		parents:   make([]int, n),
	}

	stack := make([]int, 0, 64)
	maxLine := 0

	var sections []Section
	pendingHeading := -1

	for i, v := range views {
		idx.byType[v.Type] = append(idx.byType[v.Type], i)
		idx.pairClose[i] = -1
		idx.pairOpen[i] = -1

		if len(stack) > 0 {
			idx.parents[i] = stack[len(stack)-1]
		} else {
			idx.parents[i] = -1
		}

		if v.HasMap && v.MapEnd > maxLine {
			maxLine = v.MapEnd
		}

		switch v.Nesting {
		case 1:
			stack = append(stack, i)
		case -1:
			if len(stack) > 0 {
				open := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				idx.pairClose[open] = i
				idx.pairOpen[i] = open
				// The closing token's parent is the pair's parent, not
				// the open it closes.
				idx.parents[i] = idx.parents[open]
			}
		}

		switch v.Type {
		case "heading_open":
			start := 0
			if v.HasMap {
				start = v.MapStart
			}
			sections = append(sections, Section{
				HeadingIndex: i,
				StartLine:    start,
				EndLine:      start,
				Level:        headingLevel(v.Tag),
			})
			pendingHeading = i

		case "inline":
			if pendingHeading >= 0 && idx.parents[i] == pendingHeading && len(sections) > 0 {
				sections[len(sections)-1].Title = v.Content
			}

		case "heading_close":
			pendingHeading = -1

		case "fence", "code_block":
			f := Fence{TokenIndex: i, Info: v.Info}
			if v.HasMap {
				f.StartLine, f.EndLine = v.MapStart, v.MapEnd
			}
			idx.fences = append(idx.fences, f)
		}
	}

	idx.sections = finishSections(sections, maxLine)
	return idx
}

// finishSections sorts the section table, clamps each section's end to the
// next section's start, and prepends the synthetic preamble when needed.
// Hostile maps may arrive out of order; sorting restores the invariant.
func finishSections(sections []Section, maxLine int) []Section {
	docEnd := maxLine
	if docEnd < 1 {
		docEnd = 1
	}

	if len(sections) == 0 {
		return []Section{{HeadingIndex: -1, StartLine: 0, EndLine: docEnd}}
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].StartLine < sections[j].StartLine
	})

	for i := range sections {
		if i+1 < len(sections) {
			sections[i].EndLine = sections[i+1].StartLine
		} else {
			end := docEnd
			if end < sections[i].StartLine+1 {
				end = sections[i].StartLine + 1
			}
			sections[i].EndLine = end
		}
	}

	if sections[0].StartLine > 0 {
		preamble := Section{
			HeadingIndex: -1,
			StartLine:    0,
			EndLine:      sections[0].StartLine,
		}
		sections = append([]Section{preamble}, sections...)
	}

	return sections
}

// headingLevel parses "h1".."h6" into 1..6; anything else is 0.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
