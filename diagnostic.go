package vcompile

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dpotapov/go-vcompile/vhtml"
)

// SourceLine is a line of a template shown around a diagnostic.
type SourceLine struct {
	Number  int    `json:"number"`
	Text    string `json:"text"`
	IsError bool   `json:"isError"`
}

// SourceCodeContext is an excerpt of a template around a diagnostic, in a form suitable
// for editors: line and column are 1-based, column and length count runes.
type SourceCodeContext struct {
	Lines       []SourceLine `json:"lines"`
	ErrorLine   int          `json:"errorLine"`
	ErrorColumn int          `json:"errorColumn"`
	ErrorLength int          `json:"errorLength"`
}

// SourceContext returns the lines of src around the range r, with around lines before
// and after the first line of r. The error length is cut at the end of that line. It
// returns nil if r lies outside of src.
func SourceContext(src string, r vhtml.Range, around int) *SourceCodeContext {
	if r.Start < 0 || r.Start > len(src) || r.End < r.Start {
		return nil
	}

	pos := vhtml.PositionOf(src, r.Start)
	lines := strings.Split(src, "\n")

	ctx := &SourceCodeContext{
		ErrorLine:   pos.Line,
		ErrorColumn: pos.Column,
	}

	// length of the range on the error line
	end := r.End
	if end > len(src) {
		end = len(src)
	}
	span := src[r.Start:end]
	if i := strings.IndexByte(span, '\n'); i >= 0 {
		span = strings.TrimSuffix(span[:i], "\r")
	}
	ctx.ErrorLength = utf8.RuneCountInString(span)

	first := max(pos.Line-around, 1)
	last := min(pos.Line+around, len(lines))
	for n := first; n <= last; n++ {
		ctx.Lines = append(ctx.Lines, SourceLine{
			Number:  n,
			Text:    strings.TrimSuffix(lines[n-1], "\r"),
			IsError: n == pos.Line,
		})
	}

	return ctx
}

// Diagnostic is a template warning prepared for display.
type Diagnostic struct {
	Message     string             `json:"message"`
	Range       vhtml.Range        `json:"range"`
	Position    vhtml.Position     `json:"position"`
	Path        string             `json:"path,omitempty"`
	HTMLContext string             `json:"htmlContext,omitempty"`
	Source      *SourceCodeContext `json:"source,omitempty"`
}

// sourceContextLines is the number of lines shown before and after a diagnostic.
const sourceContextLines = 3

// Diagnostics converts the error returned by vhtml.Parse into a list of diagnostics
// for the template src. Errors that carry no position are reported at the start of src.
func Diagnostics(src string, err error) []Diagnostic {
	if err == nil {
		return nil
	}

	var out []Diagnostic
	for _, err := range flatten(err) {
		d := Diagnostic{Message: err.Error()}

		var ne *vhtml.NodeError
		var w vhtml.Warning
		switch {
		case errors.As(err, &ne):
			w = ne.Warning()
			d.Message = w.Msg
			d.Range = w.Range
			d.Path = ne.Path()
			d.HTMLContext = ne.HTMLContext()
		case errors.As(err, &w):
			d.Message = w.Msg
			d.Range = w.Range
		}

		d.Position = vhtml.PositionOf(src, d.Range.Start)
		d.Source = SourceContext(src, d.Range, sourceContextLines)
		out = append(out, d)
	}
	return out
}

// flatten lists the errors combined with errors.Join, at any depth.
func flatten(err error) []error {
	multierr, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var errs []error
	for _, e := range multierr.Unwrap() {
		errs = append(errs, flatten(e)...)
	}
	return errs
}
