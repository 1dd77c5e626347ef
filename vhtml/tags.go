package vhtml

import (
	a "golang.org/x/net/html/atom"
)

func atomSet(atoms ...a.Atom) map[a.Atom]bool {
	m := make(map[a.Atom]bool, len(atoms))
	for _, t := range atoms {
		m[t] = true
	}
	return m
}

var (
	// Void elements: they never have content and never take an end tag.
	unaryTags = atomSet(
		a.Area, a.Base, a.Br, a.Col, a.Embed, a.Frame, a.Hr, a.Img, a.Input, a.Isindex,
		a.Keygen, a.Link, a.Meta, a.Param, a.Source, a.Track, a.Wbr,
	)

	// Elements whose end tag may be omitted when another instance of the same element
	// starts.
	leftOpenTags = atomSet(
		a.Colgroup, a.Dd, a.Dt, a.Li, a.P, a.Td, a.Tfoot, a.Th, a.Thead, a.Tr, a.Source,
	)

	// Elements that are not phrasing content and therefore cannot live inside <p>.
	// https://html.spec.whatwg.org/multipage/dom.html#phrasing-content
	nonPhrasingTags = atomSet(
		a.Address, a.Article, a.Aside, a.Base, a.Blockquote, a.Body, a.Caption, a.Col,
		a.Colgroup, a.Dd, a.Details, a.Dialog, a.Div, a.Dl, a.Dt, a.Fieldset,
		a.Figcaption, a.Figure, a.Footer, a.Form, a.H1, a.H2, a.H3, a.H4, a.H5, a.H6,
		a.Head, a.Header, a.Hgroup, a.Hr, a.Html, a.Legend, a.Li, a.Menuitem, a.Meta,
		a.Optgroup, a.Option, a.Param, a.Rp, a.Rt, a.Source, a.Style, a.Summary,
		a.Tbody, a.Td, a.Tfoot, a.Th, a.Thead, a.Title, a.Tr, a.Track,
	)
)

// lookup maps a tag name to its atom. Tag names are matched as written, so "DIV" is
// not the same as "div"; templates are expected to use lower case for HTML elements.
func lookup(tag string) a.Atom {
	return a.Lookup([]byte(tag))
}

// IsUnaryTag reports whether tag is an HTML void element.
func IsUnaryTag(tag string) bool {
	return unaryTags[lookup(tag)]
}

// CanBeLeftOpenTag reports whether tag is closed implicitly by a following sibling of
// the same name.
func CanBeLeftOpenTag(tag string) bool {
	return leftOpenTags[lookup(tag)]
}

// IsNonPhrasingTag reports whether tag closes an open <p> element.
func IsNonPhrasingTag(tag string) bool {
	return nonPhrasingTags[lookup(tag)]
}
