package ast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/druidsql/ast"
	"github.com/sqlc-dev/druidsql/parser"
)

func mustParse(t *testing.T, sql string) ast.Node {
	t.Helper()
	n, err := parser.ParseString(sql)
	require.NoError(t, err)
	return n
}

func mustParseQuery(t *testing.T, sql string) *ast.Query {
	t.Helper()
	q, err := parser.ParseQuery(sql)
	require.NoError(t, err)
	return q
}

func TestConstructors(t *testing.T) {
	a, b, c := ast.ColumnRef("a"), ast.ColumnRef("b"), ast.ColumnRef("c")
	tests := []struct {
		name string
		node ast.Node
		want string
	}{
		{"eq", ast.Eq(a, ast.Int(1)), `"a" = 1`},
		{"qualified", ast.ColumnRef("t", "id"), `"t"."id"`},
		{"table", ast.TableRef("druid", "wikipedia"), `"druid"."wikipedia"`},
		{"and or", ast.And(ast.Eq(a, ast.Int(1)), ast.Or(ast.Eq(b, ast.Int(2)), ast.Eq(c, ast.Int(3)))),
			`"a" = 1 AND ("b" = 2 OR "c" = 3)`},
		{"and flattens", ast.And(ast.And(a, b), c), `"a" AND "b" AND "c"`},
		{"and single", ast.And(a), `"a"`},
		{"and empty", ast.And(), `TRUE`},
		{"or empty", ast.Or(), `FALSE`},
		{"not", ast.Not(ast.And(a, b)), `NOT ("a" AND "b")`},
		{"in", ast.In(a, ast.Int(1), ast.String("b")), `"a" IN (1,'b')`},
		{"between", ast.Between(a, ast.Int(1), ast.Int(5)), `"a" BETWEEN 1 AND 5`},
		{"cast", ast.Cast(a, "VARCHAR"), `CAST("a" AS VARCHAR)`},
		{"array", ast.Array(ast.String("x"), ast.String("y")), `ARRAY['x','y']`},
		{"alias", ast.As(ast.Func("COUNT", ast.NewStar()), "n"), `COUNT(*) AS "n"`},
		{"parenless", ast.ParenlessFunc("CURRENT_TIMESTAMP"), `CURRENT_TIMESTAMP`},
		{"desc", ast.Desc(a), `"a" DESC`},
		{"number", ast.Number(2), `2`},
		{"fraction", ast.Number(1.5), `1.5`},
		{"string", ast.String("it's"), `'it''s'`},
		{"timestamp", ast.Timestamp(time.Date(2022, 6, 30, 22, 56, 14, 123000000, time.UTC)),
			`TIMESTAMP '2022-06-30 22:56:14.123'`},
		{"whole second", ast.Timestamp(time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC)),
			`TIMESTAMP '2022-06-30 00:00:00'`},
		{"interval", ast.IntervalLit("1", "DAY"), `INTERVAL '1' DAY`},
		{"lit nil", ast.Lit(nil), `NULL`},
		{"lit bool", ast.Lit(true), `TRUE`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.node.String())
		})
	}
}

func TestQueryConstructors(t *testing.T) {
	q := ast.NewQuery(ast.ColumnRef("a"), ast.As(ast.Func("COUNT", ast.NewStar()), "n"))
	q = q.ChangeFrom(ast.NewFrom(ast.TableRef("t")))
	assert.Equal(t, "SELECT \"a\", COUNT(*) AS \"n\"\nFROM \"t\"", q.String())

	reparsed := mustParse(t, q.String())
	assert.True(t, ast.Equivalent(q, reparsed))
}

func TestRaw(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"select  /*c*/ a as b from t where x in (1,2)", `SELECT "a" AS "b" FROM "t" WHERE "x" IN (1, 2)`},
		{"select count ( distinct x ) from t", `SELECT COUNT(DISTINCT "x") FROM "t"`},
		{"a is not  null", `"a" IS NOT NULL`},
		{"not  ( a )", `NOT ("a")`},
		{"x not  between symmetric 1 and 2", `"x" NOT BETWEEN SYMMETRIC 1 AND 2`},
		{"timestamp  '2022-01-01'", `TIMESTAMP '2022-01-01'`},
		{"case  when a then b end", `CASE WHEN "a" THEN "b" END`},
		{"select a from t group by rollup(a)", `SELECT "a" FROM "t" GROUP BY ROLLUP ("a")`},
		{"select a from t order -- c\n by a", `SELECT "a" FROM "t" ORDER BY "a"`},
		{"select a from t group /* c */ by a", `SELECT "a" FROM "t" GROUP BY "a"`},
		{"cast(x as decimal(10,  2))", `CAST("x" AS DECIMAL(10, 2))`},
	}
	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.want, ast.Raw(mustParse(t, tc.sql)))
		})
	}
}

func TestEqualAndEquivalent(t *testing.T) {
	a := mustParse(t, "a=1")
	b := mustParse(t, "a  =  1 -- note")
	c := mustParse(t, "a=1")

	assert.False(t, ast.Equal(a, b))
	assert.True(t, ast.Equal(a, c))
	assert.True(t, ast.Equivalent(a, b))
	assert.False(t, ast.Equivalent(a, mustParse(t, "A = 1")))
	assert.True(t, ast.Equal(nil, nil))
	assert.False(t, ast.Equivalent(a, nil))
}

func TestList(t *testing.T) {
	r := ast.NewRecord(ast.Int(1), ast.Int(2), ast.Int(3))
	l := r.Items
	assert.Equal(t, "(1,2,3)", r.String())

	assert.Equal(t, "(2,3)", r.ChangeItems(l.Remove(0)).String())
	assert.Equal(t, "(1,3)", r.ChangeItems(l.Remove(1)).String())
	assert.Equal(t, "(1,2)", r.ChangeItems(l.Remove(2)).String())
	assert.Equal(t, "(1,2,3)", r.ChangeItems(l.Remove(3)).String())
	assert.Equal(t, "(1,9, 2,3)", r.ChangeItems(l.Insert(1, ast.Int(9), ast.CommaSpace)).String())
	assert.Equal(t, "(1,2,3, 4)", r.ChangeItems(l.Append(ast.Int(4), ast.CommaSpace)).String())
	assert.Equal(t, "(1,7,3)", r.ChangeItems(l.Replace(1, ast.Int(7))).String())

	// The original list is untouched.
	assert.Equal(t, "(1,2,3)", r.String())
	assert.Len(t, l.Separators, 2)

	var empty ast.List[ast.Node]
	one := empty.Insert(0, ast.Int(1), ast.CommaSpace)
	assert.Equal(t, 1, one.Len())
	assert.Empty(t, one.Separators)
	assert.Equal(t, 0, one.Remove(0).Len())
}

func TestParens(t *testing.T) {
	n := mustParse(t, "(( a ))")
	assert.Len(t, ast.Parens(n), 2)
	assert.Equal(t, "(( a ))", n.String())

	bare := ast.StripParens(n)
	assert.Equal(t, "a", bare.String())
	assert.False(t, ast.HasParens(bare))
	assert.Equal(t, "(a)", ast.EnsureParens(bare).String())
	assert.Equal(t, "(( a ))", ast.EnsureParens(n).String())
	assert.Equal(t, "[a]", "["+ast.ChangeParens(n, nil).String()+"]")

	// Editing a copy leaves the parsed node alone.
	assert.Len(t, ast.Parens(n), 2)
}

func TestNegate(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"a = 1", "a <> 1"},
		{"a <> 1", "a = 1"},
		{"a < 1", "a >= 1"},
		{"a >= 1", "a < 1"},
		{"a > 1", "a <= 1"},
		{"a <= 1", "a > 1"},
		{"a IS NULL", "a IS NOT NULL"},
		{"a IS NOT NULL", "a IS NULL"},
		{"a NOT IN (1)", "a IN (1)"},
		{"a BETWEEN 1 AND 2", "a NOT BETWEEN 1 AND 2"},
		{"a LIKE 'x%'", "a NOT LIKE 'x%'"},
	}
	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			c, ok := mustParse(t, tc.sql).(*ast.Comparison)
			require.True(t, ok)
			assert.Equal(t, tc.want, c.Negate().String())
			assert.Equal(t, tc.sql, c.Negate().Negate().String())
		})
	}
}

func TestLiteralValue(t *testing.T) {
	v, ok := ast.LiteralValue(mustParse(t, "- 2"))
	require.True(t, ok)
	assert.Equal(t, int64(-2), v)

	v, ok = ast.LiteralValue(mustParse(t, "-2.5"))
	require.True(t, ok)
	assert.Equal(t, -2.5, v)

	_, ok = ast.LiteralValue(mustParse(t, "NOT TRUE"))
	assert.False(t, ok)
	_, ok = ast.LiteralValue(mustParse(t, "a"))
	assert.False(t, ok)
}

func TestTimestamps(t *testing.T) {
	ts, ok := ast.ParseTimestamp("2022-02-03T04:05:06.789Z")
	require.True(t, ok)
	assert.Equal(t, "2022-02-03 04:05:06.789", ast.FormatTimestamp(ts))

	ts, ok = ast.ParseTimestamp("2022-02-03")
	require.True(t, ok)
	assert.Equal(t, "2022-02-03 00:00:00", ast.FormatTimestamp(ts))

	_, ok = ast.ParseTimestamp("yesterday")
	assert.False(t, ok)
}
