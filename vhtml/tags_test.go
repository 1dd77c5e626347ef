package vhtml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagPredicates(t *testing.T) {
	for _, tag := range []string{"br", "img", "input", "meta", "link", "hr", "wbr", "source"} {
		require.True(t, IsUnaryTag(tag), tag)
	}
	for _, tag := range []string{"div", "p", "span", "my-comp", "", "BR"} {
		require.False(t, IsUnaryTag(tag), tag)
	}

	for _, tag := range []string{"li", "p", "td", "tr", "dd", "dt", "colgroup", "thead", "tfoot"} {
		require.True(t, CanBeLeftOpenTag(tag), tag)
	}
	for _, tag := range []string{"div", "ul", "options", "tbody"} {
		require.False(t, CanBeLeftOpenTag(tag), tag)
	}

	for _, tag := range []string{"div", "h1", "li", "form", "header", "footer", "tbody"} {
		require.True(t, IsNonPhrasingTag(tag), tag)
	}
	for _, tag := range []string{"span", "a", "b", "em", "img", "ul", "table", "my-comp"} {
		require.False(t, IsNonPhrasingTag(tag), tag)
	}
}

func TestIsRawTextTag(t *testing.T) {
	require.True(t, IsRawTextTag("script"))
	require.True(t, IsRawTextTag("STYLE"))
	require.True(t, IsRawTextTag("textarea"))
	require.False(t, IsRawTextTag("pre"))
	require.False(t, IsRawTextTag("noscript"))
}

func TestHTMLOptions(t *testing.T) {
	opts := HTMLOptions()
	require.True(t, opts.ExpectHTML)
	require.True(t, opts.isUnaryTag("br"))
	require.True(t, opts.canBeLeftOpenTag("li"))
	require.True(t, opts.isNonPhrasingTag("div"))

	var zero Options
	require.False(t, zero.isUnaryTag("br"))
	require.False(t, zero.canBeLeftOpenTag("li"))
	require.False(t, zero.isNonPhrasingTag("div"))
	require.Equal(t, `_f("f")(a)`, zero.filters()("a | f"))
}
