package parser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/druidsql/ast"
	"github.com/sqlc-dev/druidsql/parser"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []any
		want     string
	}{
		{
			name:     "identifier",
			template: `SELECT "{}" FROM t`,
			args:     []any{`we"ird`},
			want:     `SELECT "we""ird" FROM t`,
		},
		{
			name:     "string",
			template: `x = '{}'`,
			args:     []any{"it's"},
			want:     `x = 'it''s'`,
		},
		{
			name:     "node",
			template: `{} AND b`,
			args:     []any{ast.Eq(ast.ColumnRef("a"), ast.Int(1))},
			want:     `"a" = 1 AND b`,
		},
		{
			name:     "literals",
			template: `x IN ({}, {}, {})`,
			args:     []any{1, "two", nil},
			want:     `x IN (1, 'two', NULL)`,
		},
		{
			name:     "no placeholders",
			template: `SELECT 1`,
			want:     `SELECT 1`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parser.Interpolate(tc.template, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInterpolateErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []any
	}{
		{"too few args", `{} = {}`, []any{1}},
		{"too many args", `{}`, []any{1, 2}},
		{"uneven quotes", `"{}' = 1`, []any{"a"}},
		{"left quote only", `'{} = 1`, []any{"a"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.Interpolate(tc.template, tc.args...)
			var perr *ast.PreconditionError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, "interpolate", perr.Op)
		})
	}
}

func TestParseTemplate(t *testing.T) {
	n, err := parser.ParseTemplate(`SELECT "{}" FROM "{}" WHERE "{}" = '{}'`,
		[]any{"page", "wikipedia", "channel", "#en"})
	require.NoError(t, err)

	q, ok := n.(*ast.Query)
	require.True(t, ok)
	assert.Equal(t, "wikipedia", q.Tables()[0].(*ast.Table).Name())
	assert.Equal(t, `"channel" = '#en'`, ast.Raw(q.Where.Expr))

	_, err = parser.ParseTemplate(`SELECT {} FROM`, []any{"a"})
	var serr *parser.SyntaxError
	require.True(t, errors.As(err, &serr), "got %v", err)
}
