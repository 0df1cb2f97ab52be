package token

import "sort"

// LineInfo holds byte offsets for a single source line.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of input).
	EndOffset int
}

// BuildLines constructs line metadata from raw source bytes.
// It handles both LF and CRLF line endings.
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return nil
	}

	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char == '\n' {
			newlineStart := idx
			if idx > 0 && content[idx-1] == '\r' {
				newlineStart = idx - 1
			}

			lines = append(lines, LineInfo{
				StartOffset:  lineStart,
				NewlineStart: newlineStart,
				EndOffset:    idx + 1,
			})
			lineStart = idx + 1
		}
	}

	if lineStart < len(content) {
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: len(content),
			EndOffset:    len(content),
		})
	}

	return lines
}

// LineCache maps 0-based line numbers to their source text.
// Line numbering matches the map ranges carried by canonicalized views.
type LineCache struct {
	content []byte
	lines   []LineInfo
}

// NewLineCache builds a line cache over raw source bytes.
func NewLineCache(content []byte) *LineCache {
	return &LineCache{
		content: content,
		lines:   BuildLines(content),
	}
}

// Size returns the source length in bytes.
func (c *LineCache) Size() int {
	if c == nil {
		return 0
	}
	return len(c.content)
}

// Count returns the number of lines in the source.
func (c *LineCache) Count() int {
	if c == nil {
		return 0
	}
	return len(c.lines)
}

// Text returns the text of the 0-based line, excluding the newline.
// Out-of-range lines return ("", false).
func (c *LineCache) Text(line int) (string, bool) {
	if c == nil || line < 0 || line >= len(c.lines) {
		return "", false
	}
	info := c.lines[line]
	return string(c.content[info.StartOffset:info.NewlineStart]), true
}

// LineOf converts a byte offset to a 0-based line number.
// Returns (0, false) if the offset is out of range.
func (c *LineCache) LineOf(offset int) (int, bool) {
	if c == nil || offset < 0 || offset >= len(c.content) || len(c.lines) == 0 {
		return 0, false
	}

	idx := sort.Search(len(c.lines), func(i int) bool {
		return c.lines[i].EndOffset > offset
	})
	if idx >= len(c.lines) {
		return 0, false
	}
	return idx, true
}
