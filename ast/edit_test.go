package ast_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/druidsql/ast"
)

func TestAddSelect(t *testing.T) {
	q := mustParseQuery(t, "SELECT a FROM t GROUP BY 1 ORDER BY 1")
	out := q.AddSelect(ast.ColumnRef("b"), ast.AddSelectOptions{GroupBy: true, OrderBy: "desc"})
	assert.Equal(t, `SELECT a, "b" FROM t GROUP BY 1, 2 ORDER BY 1, 2 DESC`, out.String())
	assert.Equal(t, "SELECT a FROM t GROUP BY 1 ORDER BY 1", q.String())

	out = mustParseQuery(t, "SELECT a FROM t").
		AddSelect(ast.As(ast.Func("COUNT", ast.NewStar()), "n"), ast.AddSelectOptions{OrderBy: "DESC"})
	assert.Equal(t, "SELECT a, COUNT(*) AS \"n\" FROM t\nORDER BY 2 DESC", out.String())

	out = mustParseQuery(t, "SELECT a FROM t").AddSelect(ast.ColumnRef("b"), ast.AddSelectOptions{GroupBy: true})
	assert.Equal(t, "SELECT a, \"b\" FROM t\nGROUP BY 2", out.String())
}

func TestInsertSelect(t *testing.T) {
	q := mustParseQuery(t, "SELECT a,\n  b FROM t GROUP BY 1, 2 ORDER BY 2 DESC")
	out := q.InsertSelect(0, ast.ColumnRef("x"), ast.AddSelectOptions{})
	assert.Equal(t, "SELECT \"x\",\n  a,\n  b FROM t GROUP BY 2, 3 ORDER BY 3 DESC", out.String())

	out = q.InsertSelect(1, ast.ColumnRef("x"), ast.AddSelectOptions{GroupBy: true})
	assert.Equal(t, "SELECT a,\n  \"x\",\n  b FROM t GROUP BY 1, 3, 2 ORDER BY 3 DESC", out.String())
}

func TestRemoveSelect(t *testing.T) {
	q := mustParseQuery(t, "SELECT a, b, c FROM t GROUP BY 1, 2 ORDER BY 3")
	out, err := q.RemoveSelect(0)
	require.NoError(t, err)
	assert.Equal(t, "SELECT b, c FROM t GROUP BY 1 ORDER BY 2", out.String())

	out, err = q.RemoveSelect(2)
	require.NoError(t, err)
	assert.Equal(t, "SELECT a, b FROM t GROUP BY 1, 2", out.String())

	_, err = mustParseQuery(t, "SELECT a FROM t").RemoveSelect(0)
	var perr *ast.PreconditionError
	require.ErrorAs(t, err, &perr)
	assert.True(t, errors.Is(err, ast.ErrNotRemovable))
}

func TestAddWhere(t *testing.T) {
	q := mustParseQuery(t, "SELECT a FROM t")
	q = q.AddWhere(ast.Eq(ast.ColumnRef("x"), ast.Int(1)))
	assert.Equal(t, "SELECT a FROM t\nWHERE \"x\" = 1", q.String())

	q = q.AddWhere(ast.Eq(ast.ColumnRef("y"), ast.String("z")))
	assert.Equal(t, "SELECT a FROM t\nWHERE \"x\" = 1 AND \"y\" = 'z'", q.String())

	q = mustParseQuery(t, "SELECT a FROM t WHERE b = 1 OR c = 2 LIMIT 3")
	q = q.AddWhere(ast.Eq(ast.ColumnRef("x"), ast.Int(1)))
	assert.Equal(t, "SELECT a FROM t WHERE (b = 1 OR c = 2) AND \"x\" = 1 LIMIT 3", q.String())
}

func TestAddHaving(t *testing.T) {
	q := mustParseQuery(t, "SELECT a, COUNT(*) FROM t GROUP BY 1")
	q = q.AddHaving(ast.Compare(ast.Func("COUNT", ast.NewStar()), ast.OpGt, ast.Int(10)))
	assert.Equal(t, "SELECT a, COUNT(*) FROM t GROUP BY 1\nHAVING COUNT(*) > 10", q.String())
}

func TestRemoveColumnFromWhere(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "nested conjunction",
			sql:  "SELECT a FROM t WHERE x = 1 AND (y > 2 AND x < 5) AND z = 3",
			want: "SELECT a FROM t WHERE (y > 2) AND z = 3",
		},
		{
			name: "everything",
			sql:  "SELECT a FROM t WHERE x = 1 AND x > 0",
			want: "SELECT a FROM t",
		},
		{
			name: "disjunction is one conjunct",
			sql:  "SELECT a FROM t WHERE x = 1 OR y = 2",
			want: "SELECT a FROM t",
		},
		{
			name: "no reference",
			sql:  "SELECT a FROM t WHERE y = 1 AND f(z) > 2",
			want: "SELECT a FROM t WHERE y = 1 AND f(z) > 2",
		},
		{
			name: "inside function",
			sql:  "SELECT a FROM t WHERE y = 1 AND LOWER(x) = 'a'",
			want: "SELECT a FROM t WHERE y = 1",
		},
		{
			name: "no where",
			sql:  "SELECT x FROM t",
			want: "SELECT x FROM t",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := mustParseQuery(t, tc.sql).RemoveColumnFromWhere("x")
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.String())
		})
	}
}

func TestRemoveColumnFromHaving(t *testing.T) {
	q := mustParseQuery(t, "SELECT a FROM t GROUP BY 1 HAVING SUM(x) > 1 AND SUM(y) > 2")
	out, err := q.RemoveColumnFromHaving("y")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t GROUP BY 1 HAVING SUM(x) > 1", out.String())
}

func TestReferencesColumn(t *testing.T) {
	n := mustParse(t, "CASE WHEN t.x > 1 THEN y END")
	assert.True(t, ast.ReferencesColumn(n, "x"))
	assert.True(t, ast.ReferencesColumn(n, "y"))
	assert.False(t, ast.ReferencesColumn(n, "t"))
	assert.False(t, ast.ReferencesColumn(n, "z"))
}

func TestJoins(t *testing.T) {
	q := mustParseQuery(t, "SELECT a FROM t")
	out, err := q.AddJoin(ast.NewJoin("LEFT", ast.TableRef("u"), ast.Eq(ast.ColumnRef("t", "id"), ast.ColumnRef("u", "id"))))
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t\nLEFT JOIN \"u\" ON \"t\".\"id\" = \"u\".\"id\"", out.String())
	require.Len(t, out.Joins(), 1)
	assert.Equal(t, "LEFT", out.Joins()[0].JoinType())
	assert.Empty(t, q.Joins())

	out, err = out.AddJoin(ast.NewJoin("CROSS", ast.TableRef("v"), nil))
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t\nLEFT JOIN \"u\" ON \"t\".\"id\" = \"u\".\"id\"\nCROSS JOIN \"v\"", out.String())

	assert.Equal(t, "SELECT a FROM t\nCROSS JOIN \"v\"", out.RemoveJoin(0).String())
	assert.Same(t, out, out.RemoveJoin(5))

	_, err = mustParseQuery(t, "SELECT 1").AddJoin(ast.NewJoin("", ast.TableRef("u"), nil))
	var perr *ast.PreconditionError
	require.ErrorAs(t, err, &perr)
}

func TestChangeClauses(t *testing.T) {
	q := mustParseQuery(t, "SELECT a FROM t WHERE b LIMIT 10")
	assert.Equal(t, "SELECT a FROM t WHERE b", q.ChangeLimit(nil).String())
	assert.Equal(t, "SELECT a FROM t WHERE b LIMIT 5", q.ChangeLimit(ast.Int(5)).String())
	assert.Equal(t, "SELECT a FROM t WHERE b LIMIT 10\nOFFSET 20", q.ChangeOffset(ast.Int(20)).String())
	assert.Equal(t, "SELECT a FROM t LIMIT 10", q.ChangeWhere(nil).String())

	ordered := q.ChangeOrderBy(ast.NewList(ast.CommaSpace, ast.Desc(ast.ColumnRef("a"))))
	assert.Equal(t, "SELECT a FROM t WHERE b\nORDER BY \"a\" DESC LIMIT 10", ordered.String())

	ins := mustParseQuery(t, "INSERT INTO x SELECT a FROM t PARTITIONED BY DAY")
	assert.Equal(t, "INSERT INTO x SELECT a FROM t PARTITIONED BY ALL",
		ins.ChangePartitionedBy(&ast.TypeName{Text: "ALL"}).String())
	assert.Equal(t, "INSERT INTO x SELECT a FROM t PARTITIONED BY DAY\nCLUSTERED BY \"a\"",
		ins.ChangeClusteredBy(ast.NewList[ast.Node](ast.CommaSpace, ast.ColumnRef("a"))).String())
}
