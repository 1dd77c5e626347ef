package vhtml

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		delim Delimiters
		want  string
		ok    bool
	}{
		{"empty", "", Delimiters{}, "", false},
		{"no_interpol", "hello", Delimiters{}, "", false},
		{"unclosed", "hello {{ name", Delimiters{}, "", false},
		{"empty_binding", "{{}}", Delimiters{}, "", false},
		{"single", "{{name}}", Delimiters{}, `_s(name)`, true},
		{"surrounded", "hello {{ name }}!", Delimiters{}, `"hello "+_s(name)+"!"`, true},
		{"two", "{{a}}{{b}}", Delimiters{}, `_s(a)+_s(b)`, true},
		{"multiline", "{{\n  a + b\n}}", Delimiters{}, `_s(a + b)`, true},
		{"quotes", `say "hi" {{x}}`, Delimiters{}, `"say \"hi\" "+_s(x)`, true},
		{"no_html_escaping", "a<b&{{x}}", Delimiters{}, `"a<b&"+_s(x)`, true},
		{"newline_literal", "a\n{{x}}", Delimiters{}, `"a\n"+_s(x)`, true},
		{"filters", "{{ msg | capitalize }}", Delimiters{}, `_s(_f("capitalize")(msg))`, true},
		{"custom_delimiters", "a ${b} c", Delimiters{"${", "}"}, `"a "+_s(b)+" c"`, true},
		{"custom_regexp_chars", "[[ x ]] {{y}}", Delimiters{"[[", "]]"}, `_s(x)+" {{y}}"`, true},
		{"default_not_matched_with_custom", "{{y}}", Delimiters{"[[", "]]"}, "", false},
		{"half_delimiters_mean_default", "{{y}}", Delimiters{Open: "[["}, `_s(y)`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := ParseText(tt.text, tt.delim)
			require.Equal(t, tt.ok, ok)
			if !ok {
				require.Nil(t, res)
				return
			}
			require.Equal(t, tt.want, res.Expression)
		})
	}
}

func TestParseText_segments(t *testing.T) {
	text := "hello {{ name | upper }}, {{n}} items"
	res, ok := ParseText(text, Delimiters{})
	require.True(t, ok)

	want := []Segment{
		{Kind: LiteralSegment, Value: "hello ", Raw: "hello ", Range: Range{0, 6}},
		{Kind: BindingSegment, Value: `_f("upper")(name)`, Expr: "name | upper", Raw: "{{ name | upper }}", Range: Range{6, 24}},
		{Kind: LiteralSegment, Value: ", ", Raw: ", ", Range: Range{24, 26}},
		{Kind: BindingSegment, Value: "n", Expr: "n", Raw: "{{n}}", Range: Range{26, 31}},
		{Kind: LiteralSegment, Value: " items", Raw: " items", Range: Range{31, 37}},
	}
	if diff := cmp.Diff(want, res.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, res.Bindings(), 2)
	require.True(t, res.Bindings()[0].IsBinding())
}

func TestParseText_reconstruct(t *testing.T) {
	texts := []string{
		"{{a}}",
		"x {{ a }} y {{b}}z",
		"  {{ a }}\n{{ b | f(1) }}  ",
		"héllo {{ wörld }} ✓",
	}
	for _, text := range texts {
		res, ok := ParseText(text, Delimiters{})
		require.True(t, ok, text)

		var b strings.Builder
		for _, s := range res.Segments {
			require.Equal(t, s.Raw, text[s.Range.Start:s.Range.End])
			b.WriteString(s.Raw)
		}
		require.Equal(t, text, b.String())
	}
}

func TestParseTextWith(t *testing.T) {
	res, ok := ParseTextWith("{{ a | f }}", Delimiters{}, nil)
	require.True(t, ok)
	require.Equal(t, `_s(a | f)`, res.Expression)

	upper := func(exp string) string { return strings.ToUpper(exp) }
	res, ok = ParseTextWith("{{ a }}", Delimiters{}, upper)
	require.True(t, ok)
	require.Equal(t, `_s(A)`, res.Expression)
}

func TestDelimPattern_concurrent(t *testing.T) {
	d := Delimiters{Open: "<%", Close: "%>"}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, ok := ParseText("<% x %>", d)
			if ok {
				_ = res.Expression
			}
		}()
	}
	wg.Wait()
	require.Same(t, delimPattern(d), delimPattern(d))
}
