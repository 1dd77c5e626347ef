package vhtml

import (
	"strings"

	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/parser/lexer"
)

// FilterFunc rewrites a binding expression, possibly containing "|" filters, into the
// expression emitted by the code generator.
type FilterFunc func(exp string) string

// ParseFilters rewrites the filters of exp into calls of the _f filter resolver:
//
//	msg | capitalize          ->  _f("capitalize")(msg)
//	msg | truncate(10) | upper ->  _f("upper")(_f("truncate")(msg,10))
//
// Only a "|" outside of brackets and string literals starts a filter; "||" is the
// logical operator. An expression the lexer cannot read, or one with a regular
// expression literal, is returned unchanged.
func ParseFilters(exp string) string {
	expression, filters, ok := splitFilters(exp)
	if !ok || len(filters) == 0 {
		return exp
	}
	for _, f := range filters {
		expression = wrapFilter(expression, f)
	}
	return expression
}

// splitFilters cuts exp on its top-level "|" operators. The parts are trimmed. ok is
// false when exp cannot be lexed or holds a regular expression literal, whose "|"
// would otherwise be taken for a filter.
func splitFilters(exp string) (expression string, filters []string, ok bool) {
	tokens, err := lexer.Lex(file.NewSource(exp))
	if err != nil {
		return exp, nil, false
	}

	// Token locations are rune offsets.
	var pipes []int
	depth := 0
	var prev lexer.Token
	for _, tok := range tokens {
		switch {
		case tok.Is(lexer.Operator, "/") && startsOperand(prev):
			return exp, nil, false
		case tok.Is(lexer.Bracket, "(", "[", "{"):
			depth++
		case tok.Is(lexer.Bracket, ")", "]", "}"):
			depth--
		case tok.Is(lexer.Operator, "|") && depth == 0:
			pipes = append(pipes, tok.From)
		}
		prev = tok
	}
	if len(pipes) == 0 {
		return strings.TrimSpace(exp), nil, true
	}

	runes := []rune(exp)
	expression = strings.TrimSpace(string(runes[:pipes[0]]))
	for i, p := range pipes {
		end := len(runes)
		if i+1 < len(pipes) {
			end = pipes[i+1]
		}
		filters = append(filters, strings.TrimSpace(string(runes[p+1:end])))
	}
	return expression, filters, true
}

// startsOperand reports whether the token after prev begins an operand, where a "/"
// opens a regular expression instead of dividing.
func startsOperand(prev lexer.Token) bool {
	return prev.Kind == "" || prev.Kind == lexer.Operator || prev.Is(lexer.Bracket, "(", "[", "{")
}

func wrapFilter(exp, filter string) string {
	i := strings.IndexByte(filter, '(')
	if i < 0 {
		return `_f("` + filter + `")(` + exp + `)`
	}
	name, args := filter[:i], filter[i+1:]
	if args == ")" {
		return `_f("` + name + `")(` + exp + args
	}
	return `_f("` + name + `")(` + exp + "," + args
}
