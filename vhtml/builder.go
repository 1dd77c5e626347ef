package vhtml

import (
	"errors"
	"fmt"
	"strings"

	a "golang.org/x/net/html/atom"
)

const whitespace = " \t\r\n\f"

// A builder turns tokenizer events into a Node tree.
type builder struct {
	opts       *Options
	delimiters Delimiters
	// doc is the document root element.
	doc *Node
	// The stack of open elements. It mirrors the stack of the tokenizer.
	oe nodeStack
	// errs captures all diagnostics encountered during parsing.
	errs []error
}

// Parse builds the Node tree of template. The returned error, if any, joins the
// diagnostics found along the way; the tree is complete regardless. Use Warnings to
// list them. A nil opts is the same as a zero Options.
func Parse(template string, opts *Options) (*Node, error) {
	if opts == nil {
		opts = &Options{}
	}
	b := &builder{
		opts:       opts,
		delimiters: opts.Delimiters.orDefault(),
		doc: &Node{
			Type:  DocumentNode,
			Range: Range{Start: 0, End: len(template)},
		},
	}

	Tokenize(template, opts, Callbacks{
		StartTag: b.startTag,
		EndTag:   b.endTag,
		Text:     b.text,
		Comment:  b.comment,
		Warn:     b.warn,
	})

	return b.doc, errors.Join(b.errs...)
}

func (b *builder) top() *Node {
	if n := b.oe.top(); n != nil {
		return n
	}
	return b.doc
}

func (b *builder) startTag(tag string, attrs []Attr, unary bool, start, end int) {
	n := &Node{
		Type:     ElementNode,
		Tag:      tag,
		DataAtom: a.Lookup([]byte(strings.ToLower(tag))),
		Unary:    unary,
		Range:    Range{Start: start, End: end},
	}
	b.top().AppendChild(n)
	if !unary {
		b.oe = append(b.oe, n)
	}

	var warns []Warning
	seen := make(map[string]bool, len(attrs))
	for _, at := range attrs {
		attr := Attribute{Name: at.Name, Value: at.Value}
		if at.HasRange() {
			attr.Range = at.Range()
		}
		if seen[at.Name] {
			warns = append(warns, Warning{Msg: "duplicate attribute: " + at.Name, Range: attr.Range})
		}
		seen[at.Name] = true

		switch {
		case strings.HasPrefix(at.Name, ":"):
			attr.Name, attr.Dynamic = at.Name[1:], true
		case strings.HasPrefix(at.Name, "v-bind:"):
			attr.Name, attr.Dynamic = at.Name[len("v-bind:"):], true
		}

		if attr.Dynamic {
			exp := strings.TrimSpace(at.Value)
			if b.opts.CheckExpressions {
				if err := CheckExpression(exp); err != nil {
					warns = append(warns, Warning{Msg: err.Error(), Range: attr.Range})
				}
			}
			attr.Value = b.opts.filters()(exp)
		} else if _, ok := ParseTextWith(at.Value, b.delimiters, nil); ok {
			warns = append(warns, Warning{
				Msg: fmt.Sprintf(`%s="%s": Interpolation inside attributes has been removed. `+
					`Use v-bind or the colon shorthand instead. For example, `+
					`instead of <div id="{{ val }}">, use <div :id="val">.`, at.Name, at.Value),
				Range: attr.Range,
			})
		}

		n.Attr = append(n.Attr, attr)
	}

	// Report once the element is complete, so the error context shows all of it.
	for _, w := range warns {
		b.error(n, w)
	}
}

func (b *builder) endTag(tag string, start, end int) {
	if len(b.oe) == 0 {
		return
	}
	n := b.oe.pop()
	n.Range.End = end

	if b.opts.Whitespace == WhitespaceCondense && !b.inPre(n) {
		// Trailing whitespace of an element carries no meaning.
		if last := n.LastChild; last != nil && last.IsWhitespace() {
			n.RemoveChild(last)
		}
	}
}

func (b *builder) text(text string, start, end int) {
	parent := b.top()

	if isTextTag(parent) {
		b.addText(parent, &Node{
			Type:  TextNode,
			Data:  text,
			Range: Range{Start: start, End: end},
		})
		return
	}

	verbatim := true
	if b.opts.Whitespace == WhitespaceCondense && !b.inPre(parent) {
		text, verbatim = condense(text, parent)
		if text == "" {
			return
		}
	}

	n := &Node{Type: TextNode, Data: text, Range: Range{Start: start, End: end}}

	if b.opts.CheckExpressions {
		if res, ok := ParseTextWith(text, b.delimiters, nil); ok {
			for _, seg := range res.Bindings() {
				r := n.Range
				if verbatim {
					r = Range{Start: start + seg.Range.Start, End: start + seg.Range.End}
				}
				b.checkExpression(parent, seg.Expr, r)
			}
		}
	}

	b.addText(parent, n)
}

// addText appends n to parent, merging it into the previous text node if there is one.
// Interpolations are resolved on the merged text.
func (b *builder) addText(parent, n *Node) {
	if last := parent.LastChild; last != nil && (last.Type == TextNode || last.Type == ExpressionNode) {
		last.Data += n.Data
		last.Range.End = n.Range.End
		n = last
	} else {
		parent.AppendChild(n)
	}

	if isTextTag(parent) {
		return
	}

	n.Type, n.Expression, n.Segments = TextNode, "", nil
	if res, ok := ParseTextWith(n.Data, b.delimiters, b.opts.filters()); ok {
		n.Type = ExpressionNode
		n.Expression = res.Expression
		n.Segments = res.Segments
	}
}

func (b *builder) comment(text string, start, end int) {
	b.top().AppendChild(&Node{
		Type:  CommentNode,
		Data:  text,
		Range: Range{Start: start, End: end},
	})
}

// warn attaches a tokenizer warning to the innermost open element. The tokenizer warns
// about an unclosed element right before closing it, so that is the element at fault.
func (b *builder) warn(w Warning) {
	if n := b.oe.top(); n != nil {
		b.error(n, w)
		return
	}
	b.errs = append(b.errs, w)
}

func (b *builder) error(n *Node, w Warning) {
	b.errs = append(b.errs, newNodeError(n, w))
}

func (b *builder) checkExpression(n *Node, exp string, r Range) {
	if err := CheckExpression(exp); err != nil {
		b.error(n, Warning{Msg: err.Error(), Range: r})
	}
}

// isTextTag reports whether n is a <script> or <style> element, whose text is kept
// literal. Text of a <textarea> is raw for the tokenizer but still interpolated.
func isTextTag(n *Node) bool {
	return n.Type == ElementNode && (n.DataAtom == a.Script || n.DataAtom == a.Style)
}

// inPre reports whether n is a <pre> element or sits inside one.
func (b *builder) inPre(n *Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Type == ElementNode && n.DataAtom == a.Pre {
			return true
		}
	}
	return false
}

// condense applies the condensing whitespace policy to a text chunk appended to parent.
// Whitespace-only text is dropped when it spans lines or opens an element, and reduced to
// a single space otherwise. Other text has its whitespace runs collapsed. verbatim
// reports whether the text was left untouched.
func condense(text string, parent *Node) (string, bool) {
	if strings.Trim(text, whitespace) == "" {
		if parent.LastChild == nil || strings.ContainsAny(text, "\r\n") {
			return "", false
		}
		return " ", text == " "
	}
	out := strings.Join(strings.FieldsFunc(text, isWhitespace), " ")
	if strings.IndexByte(whitespace, text[0]) >= 0 {
		out = " " + out
	}
	if strings.IndexByte(whitespace, text[len(text)-1]) >= 0 {
		out += " "
	}
	return out, out == text
}

func isWhitespace(r rune) bool {
	return strings.ContainsRune(whitespace, r)
}
