package vhtml

import (
	"fmt"

	"github.com/expr-lang/expr/parser"
)

// CheckExpression reports whether exp, a binding with optional filters, parses as an
// expression. Each filter must be an identifier or a call.
func CheckExpression(exp string) error {
	expression, filters, ok := splitFilters(exp)
	if !ok {
		// Let the parser describe what the lexer choked on.
		expression, filters = exp, nil
	}
	if expression == "" {
		return fmt.Errorf("empty expression")
	}
	if _, err := parser.Parse(expression); err != nil {
		return fmt.Errorf("invalid expression %q: %w", expression, err)
	}
	for _, f := range filters {
		if f == "" {
			return fmt.Errorf("empty filter in %q", exp)
		}
		if _, err := parser.Parse(f); err != nil {
			return fmt.Errorf("invalid filter %q: %w", f, err)
		}
	}
	return nil
}
