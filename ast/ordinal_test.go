package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/druidsql/ast"
)

func ordinals(t *testing.T, l ast.List[ast.Node]) []int {
	t.Helper()
	var out []int
	for _, n := range l.Values {
		v, ok := ast.Ordinal(n)
		require.True(t, ok, "not an ordinal: %s", n)
		out = append(out, v)
	}
	return out
}

func TestShiftOrdinals(t *testing.T) {
	l := ast.NewList[ast.Node](ast.CommaSpace, ast.Int(2), ast.Int(3), ast.Int(4))
	tests := []struct {
		at   int
		want []int
	}{
		{0, []int{3, 4, 5}},
		{1, []int{3, 4, 5}},
		{2, []int{2, 4, 5}},
		{3, []int{2, 3, 5}},
		{4, []int{2, 3, 4}},
		{5, []int{2, 3, 4}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ordinals(t, ast.ShiftOrdinals(l, tc.at)), "shift at %d", tc.at)
	}
	assert.Equal(t, []int{2, 3, 4}, ordinals(t, l))
}

func TestUnshiftOrdinals(t *testing.T) {
	l := ast.NewList[ast.Node](ast.CommaSpace, ast.Int(2), ast.Int(3), ast.Int(4))
	tests := []struct {
		at   int
		want []int
	}{
		{0, []int{1, 2, 3}},
		{1, []int{2, 3}},
		{2, []int{2, 3}},
		{3, []int{2, 3}},
		{4, []int{2, 3, 4}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ordinals(t, ast.UnshiftOrdinals(l, tc.at)), "unshift at %d", tc.at)
	}
}

func TestOrdinal(t *testing.T) {
	v, ok := ast.Ordinal(ast.Int(3))
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	for _, n := range []ast.Node{ast.Int(0), ast.Int(-1), ast.Number(1.5), ast.String("1"), ast.ColumnRef("a")} {
		_, ok := ast.Ordinal(n)
		assert.False(t, ok, "%s", n)
	}
}

func TestQueryShiftOrdinals(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		at   int
		want string
	}{
		{
			name: "group by",
			sql:  "SELECT a, b, c, d, e FROM t GROUP BY 2, 3, 4",
			at:   0,
			want: "SELECT a, b, c, d, e FROM t GROUP BY 3, 4, 5",
		},
		{
			name: "order by keeps direction",
			sql:  "SELECT a, b FROM t ORDER BY 2 DESC, a",
			at:   1,
			want: "SELECT a, b FROM t ORDER BY 3 DESC, a",
		},
		{
			name: "grouping sets",
			sql:  "SELECT a, b FROM t GROUP BY GROUPING SETS ((1, 2), (2), ())",
			at:   0,
			want: "SELECT a, b FROM t GROUP BY GROUPING SETS ((2, 3), (3), ())",
		},
		{
			name: "clustered by",
			sql:  "INSERT INTO x SELECT a, b FROM t PARTITIONED BY DAY CLUSTERED BY 1, 2",
			at:   1,
			want: "INSERT INTO x SELECT a, b FROM t PARTITIONED BY DAY CLUSTERED BY 1, 3",
		},
		{
			name: "no ordinals",
			sql:  "SELECT a FROM t GROUP BY a",
			at:   0,
			want: "SELECT a FROM t GROUP BY a",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := mustParseQuery(t, tc.sql)
			assert.Equal(t, tc.want, q.ShiftOrdinals(tc.at).String())
			assert.Equal(t, tc.sql, q.String())
		})
	}
}

func TestQueryUnshiftOrdinals(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		at   int
		want string
	}{
		{
			name: "drop and decrement",
			sql:  "SELECT a, b, c FROM t GROUP BY 1, 2, 3 ORDER BY 3",
			at:   1,
			want: "SELECT a, b, c FROM t GROUP BY 1, 2 ORDER BY 2",
		},
		{
			name: "empty clause is dropped",
			sql:  "SELECT a, b FROM t GROUP BY 2 ORDER BY 2 DESC",
			at:   1,
			want: "SELECT a, b FROM t",
		},
		{
			name: "grouping sets keep the decorator",
			sql:  "SELECT a, b FROM t GROUP BY ROLLUP (2)",
			at:   1,
			want: "SELECT a, b FROM t GROUP BY ROLLUP ()",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := mustParseQuery(t, tc.sql)
			assert.Equal(t, tc.want, q.UnshiftOrdinals(tc.at).String())
		})
	}
}
