// Package vhtml implements the front end of the template compiler: a forgiving HTML
// tokenizer that reports markup as a flat stream of events, an interpolation scanner
// for {{ }} bindings, and a small tree builder on top of both.
//
// The tokenizer does not build a DOM. It keeps a stack of open elements only to pair
// end tags with start tags and to close elements the way browsers do when the markup
// leaves them open.
package vhtml

import (
	"fmt"
	"strings"
)

// Attr is an attribute of a start tag. Value has its character references decoded.
// Start and End are set only when Options.OutputSourceRange is enabled.
type Attr struct {
	Name  string
	Value string
	Start int
	End   int

	hasRange bool
}

// HasRange reports whether Start and End hold a source range.
func (a Attr) HasRange() bool {
	return a.hasRange
}

// Range returns the source range of the attribute, name and value included.
func (a Attr) Range() Range {
	return Range{Start: a.Start, End: a.End}
}

// Callbacks receive the tokenizer events in document order. Every field is optional.
type Callbacks struct {
	// StartTag is called for every start tag. unary is set for void elements and
	// self-closing tags; such elements get no EndTag call.
	StartTag func(tag string, attrs []Attr, unary bool, start, end int)

	// EndTag is called when an element is closed, explicitly or implicitly.
	EndTag func(tag string, start, end int)

	// Text is called for character data between tags.
	Text func(text string, start, end int)

	// Comment is called for comments when Options.ShouldKeepComment is set.
	Comment func(text string, start, end int)

	// Warn receives advisory diagnostics. It never affects the result.
	Warn func(w Warning)
}

// rawTextExempt lists the elements whose raw text keeps comment and CDATA markers.
var rawTextExempt = map[string]bool{"script": true, "style": true, "textarea": true, "noscript": true}

// A tokenizer walks a template from left to right. html is the unconsumed suffix of
// the template and index is its offset in the template.
type tokenizer struct {
	opts  *Options
	cb    Callbacks
	html  string
	index int
	// The stack of open elements.
	stack elementStack
}

// startTag is a start tag recognized by parseStartTag, before attribute decoding.
type startTag struct {
	tag        string
	attrs      []rawAttr
	unarySlash bool
	start, end int
}

// rawAttr holds the submatches of the attribute patterns and the source range of the
// whole match (leading whitespace included).
type rawAttr struct {
	groups     []string
	start, end int
}

// Tokenize scans template and reports its structure through cb. It never fails:
// malformed markup is reported as text, and problems are only signaled through
// cb.Warn. A nil opts is the same as a zero Options.
func Tokenize(template string, opts *Options, cb Callbacks) {
	if opts == nil {
		opts = &Options{}
	}
	t := &tokenizer{
		opts: opts,
		cb:   cb,
		html: template,
	}
	t.run()
}

func (t *tokenizer) run() {
	for t.html != "" {
		last := t.html

		if top := t.stack.top(); top == nil || !IsRawTextTag(top.tag) {
			if t.parseMarkup() {
				continue
			}
		} else {
			t.parseRawText(top)
		}

		if t.html == last {
			// Nothing could be consumed: the rest of the template is an unterminated
			// comment or the content of a raw-text element without an end tag. The
			// warning is raised whether or not elements are still open.
			start := t.index
			t.emitText(t.html, start, start+len(t.html))
			t.warn(fmt.Sprintf("Mal-formatted tag at end of template: %q", t.html),
				Range{Start: start, End: start + len(t.html)})
			t.advance(len(t.html))
			break
		}
	}

	// Close whatever is left open.
	t.closeTag("", t.index, t.index)
}

// parseMarkup consumes one unit of markup or text at the cursor. It returns true when
// the cursor moved past a comment, doctype or tag.
func (t *tokenizer) parseMarkup() bool {
	textEnd := strings.IndexByte(t.html, '<')
	abandoned := false

	if textEnd == 0 {
		if strings.HasPrefix(t.html, commentOpen) {
			// A comment without "-->" is probably not meant to be a comment, so it is
			// left for the text scanner.
			if commentEnd := strings.Index(t.html, commentClose); commentEnd >= 0 {
				if t.opts.ShouldKeepComment && t.cb.Comment != nil {
					// In "<!-->" and "<!--->" the opener and closer overlap; the
					// content is then what lies between them, "->" or "-".
					content := t.html[min(len(commentOpen), commentEnd):max(len(commentOpen), commentEnd)]
					t.cb.Comment(content, t.index, t.index+commentEnd+len(commentClose))
				}
				t.advance(commentEnd + len(commentClose))
				return true
			}
		}

		// https://en.wikipedia.org/wiki/Conditional_comment#Downlevel-revealed_conditional_comment
		if strings.HasPrefix(t.html, conditionalCommentOpen) {
			if end := strings.Index(t.html, conditionalCommentEnd); end >= 0 {
				t.advance(end + len(conditionalCommentEnd))
				return true
			}
		}

		if loc := doctype.FindStringIndex(t.html); loc != nil {
			t.advance(loc[1])
			return true
		}

		if m := endTag.FindStringSubmatch(t.html); m != nil {
			start := t.index
			t.advance(len(m[0]))
			t.closeTag(m[1], start, t.index)
			return true
		}

		st, matched := t.parseStartTag()
		if st != nil {
			t.handleStartTag(st)
			if shouldIgnoreFirstNewline(st.tag, t.html) {
				t.advance(1)
			}
			return true
		}
		// "<name" without a proper end of the tag: the "<" is plain text.
		abandoned = matched
	}

	var text string
	if textEnd >= 0 {
		rest := t.html[textEnd:]
		for abandoned || !isTagStart(rest) {
			abandoned = false
			// "<" in plain text, be forgiving and treat it as text.
			next := strings.IndexByte(rest[1:], '<')
			if next < 0 {
				textEnd = len(t.html)
				break
			}
			textEnd += next + 1
			rest = t.html[textEnd:]
		}
		text = t.html[:textEnd]
	} else {
		text = t.html
	}

	if text != "" {
		start := t.index
		t.advance(len(text))
		t.emitText(text, start, t.index)
	}
	return false
}

// parseRawText consumes the content of a script, style or textarea element up to its
// end tag. Without an end tag the element is closed at the cursor and its content is
// left for the stall guard.
func (t *tokenizer) parseRawText(top *element) {
	m := rawTextEndPattern(top.lowerTag).FindStringSubmatchIndex(t.html)
	if m == nil {
		t.closeTag(top.lowerTag, t.index, t.index)
		return
	}

	start, end := t.index+m[2], t.index+m[3]
	text := t.html[m[2]:m[3]]
	if !rawTextExempt[top.lowerTag] {
		text = stripRawTextMarkers(text)
	}
	if shouldIgnoreFirstNewline(top.lowerTag, text) {
		text = text[1:]
		start++
	}
	if text != "" {
		t.emitText(text, start, end)
	}

	endStart, endEnd := t.index+m[4], t.index+m[5]
	t.advance(m[1])
	t.closeTag(top.lowerTag, endStart, endEnd)
}

// parseStartTag recognizes a start tag with its attributes at the cursor and moves
// the cursor past it. The second result reports whether a tag name was found at all;
// it is true with a nil tag when the tag is not properly closed, in which case the
// cursor is left untouched.
func (t *tokenizer) parseStartTag() (*startTag, bool) {
	open := startTagOpen.FindStringSubmatchIndex(t.html)
	if open == nil {
		return nil, false
	}

	st := &startTag{
		tag:   t.html[open[2]:open[3]],
		start: t.index,
	}

	pos := open[1]
	for {
		rest := t.html[pos:]
		if end := startTagClose.FindStringSubmatch(rest); end != nil {
			st.unarySlash = end[1] == "/"
			pos += len(end[0])
			st.end = t.index + pos
			t.advance(pos)
			return st, true
		}

		m := dynamicArgAttribute.FindStringSubmatch(rest)
		if m == nil {
			m = attribute.FindStringSubmatch(rest)
		}
		if m == nil {
			return nil, true
		}
		st.attrs = append(st.attrs, rawAttr{
			groups: m,
			start:  t.index + pos,
			end:    t.index + pos + len(m[0]),
		})
		pos += len(m[0])
	}
}

func (t *tokenizer) handleStartTag(st *startTag) {
	tag := st.tag

	if t.opts.ExpectHTML {
		if last := t.lastTag(); last == "p" && t.opts.isNonPhrasingTag(tag) {
			t.closeTag(last, t.index, t.index)
		}
		if t.opts.canBeLeftOpenTag(tag) && t.lastTag() == tag {
			t.closeTag(tag, t.index, t.index)
		}
	}

	unary := t.opts.isUnaryTag(tag) || st.unarySlash

	attrs := make([]Attr, len(st.attrs))
	for i, ra := range st.attrs {
		name := ra.groups[1]
		value := firstNonEmpty(ra.groups[3], ra.groups[4], ra.groups[5])
		decodeNewlines := t.opts.ShouldDecodeNewlines
		if tag == "a" && name == "href" {
			decodeNewlines = t.opts.ShouldDecodeNewlinesForHref
		}
		attrs[i] = Attr{
			Name:  name,
			Value: DecodeAttr(value, decodeNewlines),
		}
		if t.opts.OutputSourceRange {
			attrs[i].Start = ra.start + len(leadingSpace.FindString(ra.groups[0]))
			attrs[i].End = ra.end
			attrs[i].hasRange = true
		}
	}

	if !unary {
		t.stack.push(&element{
			tag:      tag,
			lowerTag: strings.ToLower(tag),
			attrs:    attrs,
			start:    st.start,
			end:      st.end,
		})
	}

	if t.cb.StartTag != nil {
		t.cb.StartTag(tag, attrs, unary, st.start, st.end)
	}
}

// closeTag closes the most recent open element named tag (case-insensitively) and
// everything opened after it. An empty tag closes every open element. A stray </br>
// is reported as <br>, a stray </p> as an empty <p></p>; other stray end tags are
// ignored.
func (t *tokenizer) closeTag(tag string, start, end int) {
	pos := 0
	lowerTag := ""
	if tag != "" {
		lowerTag = strings.ToLower(tag)
		pos = t.stack.lastIndex(lowerTag)
	}

	if pos >= 0 {
		for i := len(t.stack) - 1; i >= pos; i-- {
			e := t.stack[i]
			if i > pos || tag == "" {
				t.warn(fmt.Sprintf("tag <%s> has no matching end tag.", e.tag),
					Range{Start: e.start, End: e.end})
			}
			if t.cb.EndTag != nil {
				t.cb.EndTag(e.tag, start, end)
			}
		}
		t.stack.truncate(pos)
		return
	}

	switch lowerTag {
	case "br":
		if t.cb.StartTag != nil {
			t.cb.StartTag(tag, nil, true, start, end)
		}
	case "p":
		if t.cb.StartTag != nil {
			t.cb.StartTag(tag, nil, false, start, end)
		}
		if t.cb.EndTag != nil {
			t.cb.EndTag(tag, start, end)
		}
	}
}

// lastTag returns the name of the innermost open element, or "".
func (t *tokenizer) lastTag() string {
	if e := t.stack.top(); e != nil {
		return e.tag
	}
	return ""
}

func (t *tokenizer) advance(n int) {
	t.index += n
	t.html = t.html[n:]
}

func (t *tokenizer) emitText(text string, start, end int) {
	if t.cb.Text != nil {
		t.cb.Text(text, start, end)
	}
}

func (t *tokenizer) warn(msg string, r Range) {
	if t.cb.Warn != nil {
		t.cb.Warn(Warning{Msg: msg, Range: r})
	}
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
