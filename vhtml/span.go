package vhtml

import (
	"fmt"
	"unicode/utf8"
)

// Range is a half-open span [Start, End) of byte offsets into a template.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsZero returns true if the range is uninitialized
func (r Range) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// Position is a human readable source location.
type Position struct {
	Line   int `json:"line"`   // 1-based line number
	Column int `json:"column"` // 1-based column number (in runes, not bytes)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionOf converts a byte offset in src into a line and column. Offsets past the end
// of src are clamped.
func PositionOf(src string, offset int) Position {
	if offset > len(src) {
		offset = len(src)
	}
	pos := Position{Line: 1, Column: 1}
	for i := 0; i < offset; {
		r, w := utf8.DecodeRuneInString(src[i:])
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
		i += w
	}
	return pos
}
