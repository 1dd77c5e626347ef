package vhtml

import (
	"io"

	"golang.org/x/net/html"
)

// Render writes the tree rooted at n as HTML. Dynamic attributes are written with the
// colon shorthand and their rewritten expression; interpolations are written as found
// in the template.
func Render(w io.Writer, n *Node) error {
	return html.Render(w, toHTML(n))
}

func toHTML(n *Node) *html.Node {
	var dst *html.Node
	switch n.Type {
	case DocumentNode:
		dst = &html.Node{Type: html.DocumentNode}
	case ElementNode:
		dst = &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: n.DataAtom}
		for _, at := range n.Attr {
			key := at.Name
			if at.Dynamic {
				key = ":" + key
			}
			dst.Attr = append(dst.Attr, html.Attribute{Key: key, Val: at.Value})
		}
	case TextNode, ExpressionNode:
		dst = &html.Node{Type: html.TextNode, Data: n.Data}
	case CommentNode:
		dst = &html.Node{Type: html.CommentNode, Data: n.Data}
	default:
		dst = &html.Node{Type: html.ErrorNode}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dst.AppendChild(toHTML(c))
	}
	return dst
}
