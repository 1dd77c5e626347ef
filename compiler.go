// Package vcompile compiles HTML templates with {{ }} interpolations into an element tree
// and hands it to pluggable optimizer and code generator stages.
package vcompile

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dpotapov/go-vcompile/vhtml"
)

// Optimizer annotates a parsed tree in place, for instance marking static subtrees.
type Optimizer interface {
	Optimize(root *vhtml.Node, opts *vhtml.Options)
}

// OptimizerFunc is an adapter to allow the use of ordinary functions as Optimizer.
type OptimizerFunc func(root *vhtml.Node, opts *vhtml.Options)

func (f OptimizerFunc) Optimize(root *vhtml.Node, opts *vhtml.Options) {
	f(root, opts)
}

// Code is the output of a Generator.
type Code struct {
	Render          string
	StaticRenderFns []string
}

// Generator turns a tree into render code.
type Generator interface {
	Generate(root *vhtml.Node, opts *vhtml.Options) (*Code, error)
}

// GeneratorFunc is an adapter to allow the use of ordinary functions as Generator.
type GeneratorFunc func(root *vhtml.Node, opts *vhtml.Options) (*Code, error)

func (f GeneratorFunc) Generate(root *vhtml.Node, opts *vhtml.Options) (*Code, error) {
	return f(root, opts)
}

// Compiler runs the compilation pipeline: parse, optimize, generate. A Compiler is safe
// for concurrent use if its Optimizer and Generator are.
type Compiler struct {
	// Options configures the tokenizer and the tree builder. Nil means vhtml.HTMLOptions
	// with source ranges enabled.
	Options *vhtml.Options

	// Optimizer is run on the tree when set.
	Optimizer Optimizer

	// Generator produces the render code when set. Without it, Result.Render is empty.
	Generator Generator

	// Logger configures logging for internal events.
	Logger *slog.Logger
}

// Result is the outcome of a compilation.
type Result struct {
	// Template is the compiled template, surrounding whitespace trimmed. Warning ranges
	// refer to it.
	Template string `json:"-"`

	AST             *vhtml.Node     `json:"-"`
	Render          string          `json:"render"`
	StaticRenderFns []string        `json:"staticRenderFns"`
	Warnings        []vhtml.Warning `json:"warnings"`

	// diag holds the diagnostics returned by the parser.
	diag error
}

// Diagnostics returns the warnings of the compilation with their source and HTML context.
func (r *Result) Diagnostics() []Diagnostic {
	return Diagnostics(r.Template, r.diag)
}

// Compile compiles template. Warnings never fail a compilation; the returned error
// comes from the Generator only.
func (c *Compiler) Compile(template string) (*Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts := c.Options
	if opts == nil {
		opts = vhtml.HTMLOptions()
		opts.OutputSourceRange = true
	}

	res := &Result{
		Template:        strings.TrimSpace(template),
		StaticRenderFns: []string{},
	}

	res.AST, res.diag = vhtml.Parse(res.Template, opts)
	res.Warnings = vhtml.Warnings(res.diag)
	for _, w := range res.Warnings {
		logger.Debug("Template warning", "msg", w.Msg, "start", w.Range.Start, "end", w.Range.End)
	}

	if c.Optimizer != nil {
		c.Optimizer.Optimize(res.AST, opts)
	}

	if c.Generator != nil {
		code, err := c.Generator.Generate(res.AST, opts)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		if code != nil {
			res.Render = code.Render
			if code.StaticRenderFns != nil {
				res.StaticRenderFns = code.StaticRenderFns
			}
		}
	}

	return res, nil
}

// MarkStatic is an Optimizer that sets Node.Static on every node whose subtree holds
// no binding: no interpolated text and no dynamic attribute.
var MarkStatic = OptimizerFunc(func(root *vhtml.Node, _ *vhtml.Options) {
	markStatic(root)
})

func markStatic(n *vhtml.Node) bool {
	static := n.Type != vhtml.ExpressionNode
	for _, a := range n.Attr {
		if a.Dynamic {
			static = false
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !markStatic(c) {
			static = false
		}
	}
	n.Static = static
	return static
}
