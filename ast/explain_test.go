package ast_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/druidsql/ast"
	"github.com/sqlc-dev/druidsql/parser"
)

// TestExplain checks that the tree dump ignores formatting: every query of
// the parser corpus has the same dump as its canonical form.
func TestExplain(t *testing.T) {
	testdataDir := "../parser/testdata/roundtrip"

	entries, err := os.ReadDir(testdataDir)
	require.NoError(t, err)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		testName := entry.Name()
		t.Run(testName, func(t *testing.T) {
			query, err := os.ReadFile(filepath.Join(testdataDir, testName, "query.sql"))
			require.NoError(t, err)

			n, err := parser.ParseString(string(query))
			require.NoError(t, err)
			canonical, err := parser.ParseString(ast.Raw(n))
			require.NoError(t, err)

			assert.Equal(t, ast.Explain(n), ast.Explain(canonical))
		})
	}
}

func TestExplainNodes(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{
			sql: "CASE WHEN a THEN 1 ELSE 2 END",
			want: `Case (children 2)
 WhenThen (children 2)
  Column "a"
  Literal number 1
 Else (children 1)
  Literal number 2
`,
		},
		{
			sql: "SUM(x) FILTER (WHERE y = 1) OVER (PARTITION BY a ORDER BY b DESC)",
			want: `Call SUM (children 3)
 Column "x"
 Filter (children 1)
  Comparison = (children 2)
   Column "y"
   Literal number 1
 Over (children 2)
  PartitionBy (children 1)
   Column "a"
  OrderBy (children 1)
   OrderItem DESC (children 1)
    Column "b"
`,
		},
		{
			sql: "COUNT(DISTINCT t.*)",
			want: `Call COUNT DISTINCT (children 1)
 Star "t".*
`,
		},
		{
			sql: "CAST(x AS varchar)",
			want: `Call CAST (children 2)
 Column "x"
 TypeName VARCHAR
`,
		},
		{
			sql: "x NOT LIKE 'a!%' ESCAPE '!'",
			want: `Comparison NOT LIKE (children 3)
 Column "x"
 Literal string 'a!%'
 Literal string '!'
`,
		},
		{
			sql: "REPLACE INTO t OVERWRITE ALL SELECT * FROM s PARTITIONED BY DAY",
			want: `Query (children 4)
 Replace (children 2)
  Table "t"
  OverwriteAll
 Select (children 1)
  Star *
 From (children 1)
  Table "s"
 PartitionedBy (children 1)
  TypeName DAY
`,
		},
		{
			sql: "WITH w AS (SELECT 1) SELECT ? FROM w UNION ALL SELECT 2",
			want: `Query (children 4)
 With (children 1)
  WithPart "w" (children 1)
   Query (children 1) parens=1
    Select (children 1)
     Literal number 1
 Select (children 1)
  Placeholder
 From (children 1)
  Table "w"
 Union ALL (children 1)
  Query (children 1)
   Select (children 1)
    Literal number 2
`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			n, err := parser.ParseString(tc.sql)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ast.Explain(n))
		})
	}
}
