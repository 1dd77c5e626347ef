package vhtml

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
)

// Delimiters are the markers around an interpolated expression.
type Delimiters struct {
	Open  string
	Close string
}

// DefaultDelimiters are used when no custom delimiters are configured.
var DefaultDelimiters = Delimiters{Open: "{{", Close: "}}"}

// orDefault returns the default delimiters unless both markers are set.
func (d Delimiters) orDefault() Delimiters {
	if d.Open == "" || d.Close == "" {
		return DefaultDelimiters
	}
	return d
}

// SegmentKind tells literal text from bound expressions.
type SegmentKind int

const (
	LiteralSegment SegmentKind = iota
	BindingSegment
)

// Segment is a part of an interpolated string.
type Segment struct {
	Kind SegmentKind
	// Value is the literal text, or the rewritten expression of a binding.
	Value string
	// Expr is the trimmed binding expression as written, before filters are applied.
	Expr string
	// Raw is the source text of the segment, delimiters included for bindings.
	Raw string
	// Range is the position of Raw within the scanned string.
	Range Range
}

// IsBinding reports whether the segment is a bound expression.
func (s Segment) IsBinding() bool {
	return s.Kind == BindingSegment
}

// TextResult is the outcome of scanning a string for interpolations.
type TextResult struct {
	// Expression concatenates the segments with "+": literals as quoted strings,
	// bindings wrapped in _s().
	Expression string
	// Segments lists literal and binding segments in source order.
	Segments []Segment
}

// Bindings returns the binding segments of the result.
func (r *TextResult) Bindings() []Segment {
	var out []Segment
	for _, s := range r.Segments {
		if s.IsBinding() {
			out = append(out, s)
		}
	}
	return out
}

// delimPatterns caches the compiled interpolation pattern for each delimiter pair.
var delimPatterns sync.Map // map[Delimiters]*regexp.Regexp

func delimPattern(d Delimiters) *regexp.Regexp {
	if re, ok := delimPatterns.Load(d); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(regexp.QuoteMeta(d.Open) + `((?s:.)+?)` + regexp.QuoteMeta(d.Close))
	actual, _ := delimPatterns.LoadOrStore(d, re)
	return actual.(*regexp.Regexp)
}

// ParseText scans text for interpolated expressions. It returns false when text holds
// no interpolation at all, so the caller can keep it as plain text. Binding
// expressions are trimmed and rewritten with ParseFilters.
func ParseText(text string, d Delimiters) (*TextResult, bool) {
	return ParseTextWith(text, d, ParseFilters)
}

// ParseTextWith is like ParseText but rewrites binding expressions with filters. A nil
// filters leaves the expressions as written (trimmed).
func ParseTextWith(text string, d Delimiters, filters FilterFunc) (*TextResult, bool) {
	re := delimPattern(d.orDefault())

	matches := re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return nil, false
	}

	res := &TextResult{Segments: make([]Segment, 0, 2*len(matches)+1)}
	tokens := make([]string, 0, cap(res.Segments))

	lastIndex := 0
	for _, m := range matches {
		if m[0] > lastIndex {
			lit := text[lastIndex:m[0]]
			res.Segments = append(res.Segments, Segment{
				Kind:  LiteralSegment,
				Value: lit,
				Raw:   lit,
				Range: Range{Start: lastIndex, End: m[0]},
			})
			tokens = append(tokens, quoteJS(lit))
		}

		src := strings.TrimSpace(text[m[2]:m[3]])
		exp := src
		if filters != nil {
			exp = filters(src)
		}
		res.Segments = append(res.Segments, Segment{
			Kind:  BindingSegment,
			Value: exp,
			Expr:  src,
			Raw:   text[m[0]:m[1]],
			Range: Range{Start: m[0], End: m[1]},
		})
		tokens = append(tokens, "_s("+exp+")")

		lastIndex = m[1]
	}
	if lastIndex < len(text) {
		lit := text[lastIndex:]
		res.Segments = append(res.Segments, Segment{
			Kind:  LiteralSegment,
			Value: lit,
			Raw:   lit,
			Range: Range{Start: lastIndex, End: len(text)},
		})
		tokens = append(tokens, quoteJS(lit))
	}

	res.Expression = strings.Join(tokens, "+")
	return res, true
}

// quoteJS renders s as a double-quoted JavaScript string literal.
func quoteJS(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// Encoding a string cannot fail.
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
