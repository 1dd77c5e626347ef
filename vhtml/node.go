// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// Modifications:
// Copyright 2024 Daniel Potapov
//  - Node carries template data: source ranges, attribute bindings and interpolation
//    segments.

package vhtml

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// A NodeType is the type of a Node.
type NodeType uint32

const (
	ErrorNode NodeType = iota
	DocumentNode
	ElementNode
	// TextNode is character data without interpolation.
	TextNode
	// ExpressionNode is character data with at least one interpolated expression.
	ExpressionNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case ExpressionNode:
		return "expression"
	case CommentNode:
		return "comment"
	default:
		return "error"
	}
}

type Node struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	Type NodeType

	// Tag is the element name as written in the template. DataAtom is its atom, or
	// zero for custom elements.
	Tag      string
	DataAtom atom.Atom

	// Data is the text of text, expression and comment nodes.
	Data string

	// Expression is the render expression of an ExpressionNode, Segments its parts.
	Expression string
	Segments   []Segment

	Attr []Attribute

	// Unary is set for void elements and self-closing tags.
	Unary bool

	// Static can be set by an optimizer for subtrees without bindings.
	Static bool

	// Range spans the node in the template: for elements, from the start tag to the
	// end tag.
	Range Range
}

// Attribute is an element attribute. Dynamic attributes (":name" or "v-bind:name")
// hold an expression in Value, with the binding prefix removed from Name.
type Attribute struct {
	Name    string
	Value   string
	Dynamic bool
	Range   Range
}

// IsWhitespace reports whether n is a text node with only whitespace.
func (n *Node) IsWhitespace() bool {
	return n.Type == TextNode && strings.TrimLeft(n.Data, whitespace) == ""
}

// AttrValue returns the value of the first attribute named name.
func (n *Node) AttrValue(name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Path returns a slash separated list of element names from the root to n.
func (n *Node) Path() string {
	var parts []string
	for c := n; c != nil; c = c.Parent {
		switch c.Type {
		case ElementNode:
			parts = append(parts, c.Tag)
		case DocumentNode:
		default:
			parts = append(parts, "#"+c.Type.String())
		}
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// InsertBefore inserts newChild as a child of n, immediately before oldChild
// in the sequence of n's children. oldChild may be nil, in which case newChild
// is appended to the end of n's children.
//
// It will panic if newChild already has a parent or siblings.
func (n *Node) InsertBefore(newChild, oldChild *Node) {
	if newChild.Parent != nil || newChild.PrevSibling != nil || newChild.NextSibling != nil {
		panic("vhtml: InsertBefore called for an attached child Node")
	}
	var prev, next *Node
	if oldChild != nil {
		prev, next = oldChild.PrevSibling, oldChild
	} else {
		prev = n.LastChild
	}
	if prev != nil {
		prev.NextSibling = newChild
	} else {
		n.FirstChild = newChild
	}
	if next != nil {
		next.PrevSibling = newChild
	} else {
		n.LastChild = newChild
	}
	newChild.Parent = n
	newChild.PrevSibling = prev
	newChild.NextSibling = next
}

// AppendChild adds a node c as a child of n.
//
// It will panic if c already has a parent or siblings.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil || c.PrevSibling != nil || c.NextSibling != nil {
		panic("vhtml: AppendChild called for an attached child Node")
	}
	last := n.LastChild
	if last != nil {
		last.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
	c.Parent = n
	c.PrevSibling = last
}

// RemoveChild removes a node c that is a child of n. Afterwards, c will have
// no parent and no siblings.
//
// It will panic if c's parent is not n.
func (n *Node) RemoveChild(c *Node) {
	if c.Parent != n {
		panic("vhtml: RemoveChild called for a non-child Node")
	}
	if n.FirstChild == c {
		n.FirstChild = c.NextSibling
	}
	if c.NextSibling != nil {
		c.NextSibling.PrevSibling = c.PrevSibling
	}
	if n.LastChild == c {
		n.LastChild = c.PrevSibling
	}
	if c.PrevSibling != nil {
		c.PrevSibling.NextSibling = c.NextSibling
	}
	c.Parent = nil
	c.PrevSibling = nil
	c.NextSibling = nil
}

// nodeStack is a stack of nodes.
type nodeStack []*Node

// pop pops the stack. It will panic if s is empty.
func (s *nodeStack) pop() *Node {
	i := len(*s)
	n := (*s)[i-1]
	*s = (*s)[:i-1]
	return n
}

// top returns the most recently pushed node, or nil if s is empty.
func (s *nodeStack) top() *Node {
	if i := len(*s); i > 0 {
		return (*s)[i-1]
	}
	return nil
}
