package vhtml

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
)

// Warning is an advisory diagnostic about the template. Warnings never stop
// tokenization.
type Warning struct {
	Msg   string `json:"msg"`
	Range Range  `json:"range"`
}

func (w Warning) Error() string {
	return w.Msg
}

// NodeError is a diagnostic attached to a node of the tree built by Parse.
type NodeError struct {
	err  Warning
	path string
	doc  *etree.Element
}

func newNodeError(n *Node, w Warning) *NodeError {
	return &NodeError{
		err:  w,
		path: n.Path(),
		doc:  buildErrorContext(n),
	}
}

func (e *NodeError) Error() string {
	return e.path + ": " + e.err.Error()
}

func (e *NodeError) Unwrap() error {
	return e.err
}

// Path returns the slash separated element names leading to the node.
func (e *NodeError) Path() string {
	return e.path
}

// Warning returns the underlying diagnostic.
func (e *NodeError) Warning() Warning {
	return e.err
}

// HTMLContext renders the node with a few of its siblings and its parent, as a short
// excerpt of the template.
func (e *NodeError) HTMLContext() string {
	return renderErrorContext(e.doc)
}

// Warnings extracts the diagnostics from an error returned by Parse.
func Warnings(err error) []Warning {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if multierr, ok := err.(interface{ Unwrap() []error }); ok {
		errs = multierr.Unwrap()
	}
	var out []Warning
	for _, e := range errs {
		var w Warning
		if errors.As(e, &w) {
			out = append(out, w)
		}
	}
	return out
}

// errorContextBuilder is a type to organize helper functions for building error context trees.
type errorContextBuilder struct{}

func (b errorContextBuilder) addPrevSiblings(doc *etree.Element, n *Node) {
	var prev []*Node
	for s, c := n.PrevSibling, 0; s != nil; s = s.PrevSibling {
		// skip whitespace text nodes
		if s.IsWhitespace() {
			continue
		}
		if c == 2 {
			prev = append(prev, nil)
			break
		}
		prev = append(prev, s)
		c++
	}
	for i := len(prev) - 1; i >= 0; i-- {
		if prev[i] == nil {
			doc.AddChild(etree.NewText("..."))
		} else {
			b.addNode(doc, prev[i])
		}
	}
}

func (b errorContextBuilder) addNextSiblings(doc *etree.Element, n *Node) {
	for s, c := n.NextSibling, 0; s != nil; s = s.NextSibling {
		// skip whitespace text nodes
		if s.IsWhitespace() {
			continue
		}
		if c == 2 {
			doc.AddChild(etree.NewText("..."))
			break
		}
		b.addNode(doc, s)
		c++
	}
}

func (b errorContextBuilder) addNode(doc *etree.Element, n *Node) {
	switch n.Type {
	case ElementNode:
		clone := etree.NewElement(n.Tag)
		b.copyAttrs(clone, n)
		var text strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == ElementNode {
				text.Reset()
				text.WriteString("...")
				break
			}
			if c.Type == TextNode || c.Type == ExpressionNode {
				text.WriteString(c.Data)
			}
		}
		if text.Len() > 0 {
			clone.SetText(text.String())
		}
		doc.AddChild(clone)
	case TextNode, ExpressionNode:
		if !n.IsWhitespace() {
			doc.AddChild(etree.NewText(n.Data))
		}
	case CommentNode:
		doc.AddChild(etree.NewComment(n.Data))
	}
}

// copyAttrs sets the attributes of n on el. Keys are stored whole: etree would read the
// colon of a binding as a namespace separator.
func (b errorContextBuilder) copyAttrs(el *etree.Element, n *Node) {
	for _, a := range n.Attr {
		key := a.Name
		if a.Dynamic {
			key = ":" + key
		}
		el.Attr = append(el.Attr, etree.Attr{Key: key, Value: a.Value})
	}
}

func (b errorContextBuilder) wrapParent(doc *etree.Element, n *Node) *etree.Element {
	parent := n.Parent
	if parent == nil || parent.Type != ElementNode {
		return doc // do not wrap the root element
	}

	doc.Tag = parent.Tag
	b.copyAttrs(doc, parent)

	wrapper := &etree.Element{}
	wrapper.AddChild(doc)

	return wrapper
}

// buildErrorContext creates an XML tree around the node n to provide context for an error.
func buildErrorContext(n *Node) *etree.Element {
	doc := &etree.Element{}
	b := errorContextBuilder{}
	b.addPrevSiblings(doc, n)
	b.addNode(doc, n)
	b.addNextSiblings(doc, n)
	doc = b.wrapParent(doc, n)
	return doc
}

func renderErrorContext(doc *etree.Element) string {
	dst := &html.Node{Type: html.DocumentNode}

	// traverse the etree.Element and build the html.Node
	var render func(*html.Node, *etree.Element)
	render = func(dst *html.Node, src *etree.Element) {
		for _, c := range src.Child {
			switch t := c.(type) {
			case *etree.Element:
				n := &html.Node{Type: html.ElementNode, Data: t.FullTag()}
				for _, a := range t.Attr {
					n.Attr = append(n.Attr, html.Attribute{Key: a.FullKey(), Val: a.Value})
				}
				dst.AppendChild(n)
				render(n, t)
			case *etree.CharData:
				dst.AppendChild(&html.Node{Type: html.TextNode, Data: t.Data})
			case *etree.Comment:
				dst.AppendChild(&html.Node{Type: html.CommentNode, Data: t.Data})
			}
		}
	}

	render(dst, doc)

	var buf strings.Builder
	_ = html.Render(&buf, dst)

	return buf.String()
}
