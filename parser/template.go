package parser

import (
	"fmt"
	"strings"

	"github.com/sqlc-dev/druidsql/ast"
)

// Interpolate fills the {} placeholders of template with args, in order.
//
// A placeholder inside double quotes, "{}", takes its argument as an
// identifier and '{}' takes it as the content of a string literal; both
// are escaped. A bare {} prints an ast.Node as is and any other value as a
// literal. A placeholder quoted on one side only is rejected with an
// *ast.PreconditionError, as is a mismatch between placeholders and args.
func Interpolate(template string, args ...any) (string, error) {
	var b strings.Builder
	rest := template
	i := 0
	for {
		at := strings.Index(rest, "{}")
		if at < 0 {
			b.WriteString(rest)
			break
		}
		if i >= len(args) {
			return "", &ast.PreconditionError{
				Op:     "interpolate",
				Reason: fmt.Sprintf("template has more placeholders than the %d arguments", len(args)),
			}
		}

		before := byte(0)
		if at > 0 {
			before = rest[at-1]
		}
		after := byte(0)
		if at+2 < len(rest) {
			after = rest[at+2]
		}

		b.WriteString(rest[:at])
		switch {
		case before == '"' && after == '"':
			b.WriteString(strings.ReplaceAll(fmt.Sprint(args[i]), `"`, `""`))
		case before == '\'' && after == '\'':
			b.WriteString(strings.ReplaceAll(fmt.Sprint(args[i]), `'`, `''`))
		case isQuote(before) || isQuote(after):
			return "", &ast.PreconditionError{
				Op:     "interpolate",
				Reason: fmt.Sprintf("placeholder %d is unevenly quoted", i+1),
			}
		default:
			if n, ok := args[i].(ast.Node); ok {
				b.WriteString(n.String())
			} else {
				b.WriteString(ast.Lit(args[i]).String())
			}
		}
		rest = rest[at+2:]
		i++
	}
	if i != len(args) {
		return "", &ast.PreconditionError{
			Op:     "interpolate",
			Reason: fmt.Sprintf("%d arguments for %d placeholders", len(args), i),
		}
	}
	return b.String(), nil
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}

// ParseTemplate interpolates args into template and parses the result.
func ParseTemplate(template string, args []any, opts ...Option) (ast.Node, error) {
	sql, err := Interpolate(template, args...)
	if err != nil {
		return nil, err
	}
	return ParseString(sql, opts...)
}
