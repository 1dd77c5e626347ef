package vhtml

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// dumpTree renders a tree with one node per line, children indented below their parent.
func dumpTree(n *Node) string {
	var b strings.Builder
	var walk func(n *Node, level int)
	walk = func(n *Node, level int) {
		if n.Type != DocumentNode {
			b.WriteString("| " + strings.Repeat("  ", level))
			switch n.Type {
			case ElementNode:
				b.WriteString("<" + n.Tag)
				for _, a := range n.Attr {
					b.WriteString(" ")
					if a.Dynamic {
						b.WriteString(":")
					}
					fmt.Fprintf(&b, "%s=%q", a.Name, a.Value)
				}
				if n.Unary {
					b.WriteString("/")
				}
				b.WriteString(">")
			case TextNode:
				fmt.Fprintf(&b, "%q", n.Data)
			case ExpressionNode:
				fmt.Fprintf(&b, "{%q} %s", n.Data, n.Expression)
			case CommentNode:
				b.WriteString("<!--" + n.Data + "-->")
			default:
				b.WriteString("#" + n.Type.String())
			}
			b.WriteString("\n")
			level++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, level)
		}
	}
	walk(n, 0)
	return b.String()
}

func TestParse(t *testing.T) {
	condense := func(o *Options) *Options {
		o.Whitespace = WhitespaceCondense
		return o
	}

	tests := []struct {
		name     string
		template string
		opts     *Options
		want     string
	}{
		{
			name:     "elements_and_interpolation",
			template: `<div id="a"><p>hello {{ name }}!</p><br></div>`,
			opts:     HTMLOptions(),
			want: `| <div id="a">
|   <p>
|     {"hello {{ name }}!"} "hello "+_s(name)+"!"
|   <br/>
`,
		},
		{
			name:     "dynamic_attributes",
			template: `<my-comp :msg="text | upper" v-bind:count=" n " @click="go"></my-comp>`,
			want: `| <my-comp :msg="_f(\"upper\")(text)" :count="n" @click="go">
`,
		},
		{
			name:     "whitespace_preserved",
			template: "<div>\n  <span>a</span>\n</div>",
			want: `| <div>
|   "\n  "
|   <span>
|     "a"
|   "\n"
`,
		},
		{
			name:     "whitespace_condensed",
			template: "<div>\n  <span>a</span>\n</div>",
			opts:     condense(&Options{}),
			want: `| <div>
|   <span>
|     "a"
`,
		},
		{
			name:     "whitespace_between_inline_elements",
			template: `<p><b>a</b> <i>b</i></p>`,
			opts:     condense(&Options{}),
			want: `| <p>
|   <b>
|     "a"
|   " "
|   <i>
|     "b"
`,
		},
		{
			name:     "whitespace_runs_collapsed",
			template: "<p>  a   b \n c  </p>",
			opts:     condense(&Options{}),
			want: `| <p>
|   " a b c "
`,
		},
		{
			name:     "pre_never_condensed",
			template: "<pre>  a   b  <b> x  y </b></pre>",
			opts:     condense(&Options{}),
			want: `| <pre>
|   "  a   b  "
|   <b>
|     " x  y "
`,
		},
		{
			name:     "raw_text_is_literal",
			template: `<script>var s = "{{ x }}"</script>`,
			want: `| <script>
|   "var s = \"{{ x }}\""
`,
		},
		{
			name:     "textarea_is_interpolated",
			template: `<textarea>{{ x }}</textarea>`,
			want: `| <textarea>
|   {"{{ x }}"} _s(x)
`,
		},
		{
			name:     "text_merged_across_skipped_comment",
			template: `a<!-- c -->{{ b }}`,
			want: `| {"a{{ b }}"} "a"+_s(b)
`,
		},
		{
			name:     "comments_kept",
			template: `a<!-- c -->{{ b }}`,
			opts:     &Options{ShouldKeepComment: true},
			want: `| "a"
| <!-- c -->
| {"{{ b }}"} _s(b)
`,
		},
		{
			name:     "custom_delimiters",
			template: `<p>[[ a ]] {{ b }}</p>`,
			opts:     &Options{Delimiters: Delimiters{Open: "[[", Close: "]]"}},
			want: `| <p>
|   {"[[ a ]] {{ b }}"} _s(a)+" {{ b }}"
`,
		},
		{
			name:     "custom_filters",
			template: `<p :title="a | f">{{ b | f }}</p>`,
			opts:     &Options{Filters: func(exp string) string { return "[" + exp + "]" }},
			want: `| <p :title="[a | f]">
|   {"{{ b | f }}"} _s([b | f])
`,
		},
		{
			name:     "stray_p",
			template: `</p>`,
			want: `| <p>
`,
		},
		{
			name:     "unclosed_elements",
			template: `<div><span>x`,
			want: `| <div>
|   <span>
|     "x"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := Parse(tt.template, tt.opts)
			require.Equal(t, DocumentNode, doc.Type)
			if diff := cmp.Diff(tt.want, dumpTree(doc)); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_ranges(t *testing.T) {
	doc, err := Parse(`<div>x</div>`, nil)
	require.NoError(t, err)
	require.Equal(t, Range{Start: 0, End: 12}, doc.Range)

	div := doc.FirstChild
	require.Equal(t, Range{Start: 0, End: 12}, div.Range)
	require.Equal(t, Range{Start: 5, End: 6}, div.FirstChild.Range)

	doc, _ = Parse(`<div>x`, nil)
	require.Equal(t, Range{Start: 0, End: 6}, doc.FirstChild.Range)

	doc, _ = Parse(`a<!-- c -->{{ b }}`, nil)
	require.Equal(t, Range{Start: 0, End: 18}, doc.FirstChild.Range)
}

func TestParse_segments(t *testing.T) {
	doc, err := Parse(`<p>Hi {{ user.name | upper }}</p>`, nil)
	require.NoError(t, err)

	text := doc.FirstChild.FirstChild
	require.Equal(t, ExpressionNode, text.Type)
	require.Len(t, text.Segments, 2)
	require.Equal(t, "user.name | upper", text.Segments[1].Expr)
	require.Equal(t, `_f("upper")(user.name)`, text.Segments[1].Value)
}

func TestParse_attributeRanges(t *testing.T) {
	template := `<input :value="v" name="n">`
	doc, err := Parse(template, &Options{IsUnaryTag: IsUnaryTag, OutputSourceRange: true})
	require.NoError(t, err)

	input := doc.FirstChild
	require.True(t, input.Unary)
	require.Len(t, input.Attr, 2)
	require.Equal(t, `:value="v"`, template[input.Attr[0].Range.Start:input.Attr[0].Range.End])
	require.Equal(t, `name="n"`, template[input.Attr[1].Range.Start:input.Attr[1].Range.End])

	v, ok := input.AttrValue("value")
	require.True(t, ok)
	require.Equal(t, "v", v)
	_, ok = input.AttrValue("missing")
	require.False(t, ok)
}

func TestParse_warnings(t *testing.T) {
	tests := []struct {
		name     string
		template string
		opts     *Options
		want     []string
	}{
		{
			name:     "clean",
			template: `<div :id="a">{{ b }}</div>`,
			opts:     &Options{CheckExpressions: true},
			want:     nil,
		},
		{
			name:     "interpolation_in_attribute",
			template: `<div id="{{ x }}"></div>`,
			want: []string{`/div: id="{{ x }}": Interpolation inside attributes has been removed. ` +
				`Use v-bind or the colon shorthand instead. For example, ` +
				`instead of <div id="{{ val }}">, use <div :id="val">.`},
		},
		{
			name:     "duplicate_attribute",
			template: `<div a="1" a="2"></div>`,
			want:     []string{"/div: duplicate attribute: a"},
		},
		{
			name:     "unclosed_elements",
			template: `<div><span>`,
			want: []string{
				"/div/span: tag <span> has no matching end tag.",
				"/div: tag <div> has no matching end tag.",
			},
		},
		{
			name:     "malformed_at_top_level",
			template: `a<!-- b`,
			want:     []string{`Mal-formatted tag at end of template: "<!-- b"`},
		},
		{
			name:     "bad_expressions_ignored_by_default",
			template: `<p :title="a +">{{ b ) }}</p>`,
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.template, tt.opts)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, strings.Join(tt.want, "\n"), err.Error())
			require.Len(t, Warnings(err), len(tt.want))
		})
	}
}

func TestParse_checkExpressions(t *testing.T) {
	template := `<p :title="a +">{{ b ) }}</p>`
	_, err := Parse(template, &Options{CheckExpressions: true, OutputSourceRange: true})
	require.Error(t, err)

	warnings := Warnings(err)
	require.Len(t, warnings, 2)

	require.Contains(t, warnings[0].Msg, `invalid expression "a +"`)
	require.Equal(t, `:title="a +"`, template[warnings[0].Range.Start:warnings[0].Range.End])

	require.Contains(t, warnings[1].Msg, `invalid expression "b )"`)
	require.Equal(t, `{{ b ) }}`, template[warnings[1].Range.Start:warnings[1].Range.End])

	var ne *NodeError
	require.True(t, errors.As(err, &ne))
	require.Equal(t, warnings[0], ne.Warning())
}

func TestWarnings(t *testing.T) {
	require.Nil(t, Warnings(nil))

	w := Warning{Msg: "x", Range: Range{Start: 1, End: 2}}
	require.Equal(t, []Warning{w}, Warnings(w))
	require.Equal(t, []Warning{w, w}, Warnings(errors.Join(w, errors.New("other"), w)))
}
