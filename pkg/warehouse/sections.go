package warehouse

import "sort"

// SectionOf answers "which section does line belong to" with a binary
// search over the sorted section table: O(log S) per query regardless of
// how many collectors ask.
//
// Lines outside every section (negative, or beyond the document end)
// return (0, false). The method never panics for any integer input.
func (w *Warehouse) SectionOf(line int) (int, bool) {
	secs := w.idx.sections
	if line < 0 || len(secs) == 0 {
		return 0, false
	}

	// First section starting after the line, then step back one.
	i := sort.Search(len(secs), func(i int) bool {
		return secs[i].StartLine > line
	}) - 1

	if i < 0 {
		return 0, false
	}
	if line >= secs[i].EndLine {
		return 0, false
	}
	return i, true
}

// Sections returns a copy of the section table, sorted by start line.
func (w *Warehouse) Sections() []Section {
	out := make([]Section, len(w.idx.sections))
	copy(out, w.idx.sections)
	return out
}

// Section returns the section at the given table index.
func (w *Warehouse) Section(i int) (Section, bool) {
	if i < 0 || i >= len(w.idx.sections) {
		return Section{}, false
	}
	return w.idx.sections[i], true
}

// Fences returns a copy of the code block region table.
func (w *Warehouse) Fences() []Fence {
	out := make([]Fence, len(w.idx.fences))
	copy(out, w.idx.fences)
	return out
}
