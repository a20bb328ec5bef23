package ast

import "strings"

// Query is a SELECT query together with its optional statement prefix
// (EXPLAIN PLAN FOR, INSERT INTO, REPLACE INTO) and ingestion suffix
// (PARTITIONED BY, CLUSTERED BY).
//
// Clauses print in field order. Each clause keyword carries the text in
// front of it, so a clause can be added or removed without touching its
// neighbours.
type Query struct {
	Wrapping
	Explain       *Keyword // EXPLAIN PLAN FOR
	Insert        *Insert
	With          *ListClause[*WithPart]
	Select        Keyword
	Distinct      *Keyword
	Space         string
	Columns       List[Node]
	From          *From
	Where         *ExprClause
	GroupBy       *GroupBy
	Having        *ExprClause
	OrderBy       *ListClause[*OrderItem]
	Limit         *ExprClause
	Offset        *ExprClause
	Union         *Union
	PartitionedBy *ExprClause
	ClusteredBy   *ListClause[Node]
}

func (q *Query) Kind() Kind     { return KindQuery }
func (q *Query) String() string { return Format(q) }

// Insert is the INSERT INTO t or REPLACE INTO t OVERWRITE ... prefix.
type Insert struct {
	Keyword   Keyword
	Space     string
	Table     Node
	Overwrite *Overwrite
}

// Replace reports whether this is a REPLACE statement.
func (i *Insert) Replace() bool {
	return strings.HasPrefix(strings.ToUpper(i.Keyword.Text), "REPLACE")
}

// Overwrite is the OVERWRITE ALL or OVERWRITE WHERE ... part of REPLACE.
type Overwrite struct {
	Keyword Keyword
	All     *Keyword
	Where   *ExprClause
}

// ExprClause is a keyword followed by one expression, like WHERE x or LIMIT 10.
type ExprClause struct {
	Keyword Keyword
	Space   string
	Expr    Node
}

// From is the FROM clause with its sources and joins.
type From struct {
	Keyword Keyword
	Space   string
	Tables  List[Node]
	Joins   []*Join
}

// Join is one JOIN of a FROM clause. Type holds the join keywords as
// written, e.g. "LEFT OUTER JOIN".
type Join struct {
	Type  Keyword
	Space string
	Table Node
	On    *ExprClause
}

// JoinType returns the normalized join type: INNER, LEFT, RIGHT, FULL or CROSS.
func (j *Join) JoinType() string {
	for _, w := range strings.Fields(strings.ToUpper(j.Type.Text)) {
		switch w {
		case "LEFT", "RIGHT", "FULL", "CROSS", "INNER":
			return w
		}
	}
	return "INNER"
}

// GroupBy is the GROUP BY clause. A decorated clause is written
// GROUP BY ROLLUP (...), CUBE (...) or GROUPING SETS (...).
type GroupBy struct {
	Keyword   Keyword
	Decorator *Keyword
	PreParen  string
	Space     string
	Items     List[Node]
	Close     string
}

// Union continues a query with UNION [ALL] and another query.
type Union struct {
	Keyword Keyword
	Space   string
	Query   Node
}

// All reports whether the union keeps duplicates.
func (u *Union) All() bool {
	return strings.Contains(strings.ToUpper(u.Keyword.Text), "ALL")
}

// Joins returns the joins of the FROM clause.
func (q *Query) Joins() []*Join {
	if q.From == nil {
		return nil
	}
	return q.From.Joins
}

// Tables returns the sources of the FROM clause, without joins.
func (q *Query) Tables() []Node {
	if q.From == nil {
		return nil
	}
	return q.From.Tables.Values
}

// clone returns a shallow copy of q.
func (q *Query) clone() *Query {
	n := *q
	return &n
}
