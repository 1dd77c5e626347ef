package vhtml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionOf(t *testing.T) {
	src := "<div>\n  <span>héllo</span>\n</div>"
	tests := []struct {
		name   string
		offset int
		want   Position
	}{
		{"start", 0, Position{1, 1}},
		{"same_line", 5, Position{1, 6}},
		{"second_line", 8, Position{2, 3}},
		{"after_multibyte", 17, Position{2, 11}},
		{"third_line", 28, Position{3, 1}},
		{"clamped", 1000, Position{3, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PositionOf(src, tt.offset))
		})
	}
}

func TestRange(t *testing.T) {
	require.True(t, Range{}.IsZero())
	require.False(t, Range{Start: 0, End: 1}.IsZero())
	require.Equal(t, 4, Range{Start: 2, End: 6}.Len())
	require.Equal(t, "2:3", Position{Line: 2, Column: 3}.String())
}
