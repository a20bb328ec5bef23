package ast

import "strings"

// Editing helpers on Query. Every method returns a new query and leaves the
// receiver untouched; clauses that already exist keep their keyword
// spelling and spacing.

func changeExprClause(c *ExprClause, keyword string, expr Node) *ExprClause {
	if expr == nil {
		return nil
	}
	if c == nil {
		return &ExprClause{Keyword: Kw("\n", keyword), Space: " ", Expr: unpad(expr)}
	}
	if c.Expr == expr {
		return c
	}
	n := *c
	n.Expr = expr
	return &n
}

// ChangeSelect returns q with a new SELECT list, which must not be empty.
func (q *Query) ChangeSelect(columns List[Node]) *Query {
	out := q.clone()
	out.Columns = columns
	return out
}

// ChangeFrom returns q with a new FROM clause; nil removes it.
func (q *Query) ChangeFrom(from *From) *Query {
	out := q.clone()
	out.From = from
	return out
}

// ChangeWhere returns q with a new WHERE expression; nil removes the clause.
func (q *Query) ChangeWhere(expr Node) *Query {
	out := q.clone()
	out.Where = changeExprClause(q.Where, "WHERE", expr)
	return out
}

// ChangeHaving returns q with a new HAVING expression; nil removes the clause.
func (q *Query) ChangeHaving(expr Node) *Query {
	out := q.clone()
	out.Having = changeExprClause(q.Having, "HAVING", expr)
	return out
}

// ChangeLimit returns q with a new LIMIT; nil removes the clause.
func (q *Query) ChangeLimit(expr Node) *Query {
	out := q.clone()
	out.Limit = changeExprClause(q.Limit, "LIMIT", expr)
	return out
}

// ChangeOffset returns q with a new OFFSET; nil removes the clause.
func (q *Query) ChangeOffset(expr Node) *Query {
	out := q.clone()
	out.Offset = changeExprClause(q.Offset, "OFFSET", expr)
	return out
}

// ChangePartitionedBy returns q with a new PARTITIONED BY; nil removes it.
func (q *Query) ChangePartitionedBy(expr Node) *Query {
	out := q.clone()
	out.PartitionedBy = changeExprClause(q.PartitionedBy, "PARTITIONED BY", expr)
	return out
}

// ChangeGroupBy returns q grouping by items. An empty list removes the clause.
func (q *Query) ChangeGroupBy(items List[Node]) *Query {
	out := q.clone()
	switch {
	case items.Len() == 0:
		out.GroupBy = nil
	case q.GroupBy == nil:
		out.GroupBy = &GroupBy{Keyword: Kw("\n", "GROUP BY"), Space: " ", Items: items}
	default:
		g := *q.GroupBy
		g.Items = items
		out.GroupBy = &g
	}
	return out
}

// ChangeOrderBy returns q ordered by items. An empty list removes the clause.
func (q *Query) ChangeOrderBy(items List[*OrderItem]) *Query {
	out := q.clone()
	out.OrderBy = changeList(q.OrderBy, "ORDER BY", items)
	return out
}

// ChangeClusteredBy returns q clustered by items. An empty list removes the clause.
func (q *Query) ChangeClusteredBy(items List[Node]) *Query {
	out := q.clone()
	out.ClusteredBy = changeList(q.ClusteredBy, "CLUSTERED BY", items)
	return out
}

func changeList[T Node](c *ListClause[T], keyword string, items List[T]) *ListClause[T] {
	switch {
	case items.Len() == 0:
		return nil
	case c == nil:
		return &ListClause[T]{Keyword: Kw("\n", keyword), Space: " ", Items: items}
	}
	n := *c
	n.Items = items
	return &n
}

// listSep returns the separator to use when adding to l: the one already
// in use at the end of the list, or def.
func listSep[T Node](l List[T], def Separator) Separator {
	if len(l.Separators) > 0 {
		return l.Separators[len(l.Separators)-1]
	}
	return def
}

// -----------------------------------------------------------------------------
// Joins

// AddJoin returns q with j appended to its FROM clause.
func (q *Query) AddJoin(j *Join) (*Query, error) {
	if q.From == nil {
		return nil, &PreconditionError{Op: "add join", Reason: "query has no FROM clause"}
	}
	f := *q.From
	f.Joins = append(append([]*Join(nil), q.From.Joins...), j)
	return q.ChangeFrom(&f), nil
}

// RemoveJoin returns q without its i'th join.
func (q *Query) RemoveJoin(i int) *Query {
	joins := q.Joins()
	if i < 0 || i >= len(joins) {
		return q
	}
	f := *q.From
	f.Joins = append(append([]*Join(nil), joins[:i]...), joins[i+1:]...)
	return q.ChangeFrom(&f)
}

// -----------------------------------------------------------------------------
// Filters

// AddWhere returns q with expr ANDed to its WHERE clause.
func (q *Query) AddWhere(expr Node) *Query {
	if q.Where == nil {
		return q.ChangeWhere(expr)
	}
	return q.ChangeWhere(And(q.Where.Expr, expr))
}

// AddHaving returns q with expr ANDed to its HAVING clause.
func (q *Query) AddHaving(expr Node) *Query {
	if q.Having == nil {
		return q.ChangeHaving(expr)
	}
	return q.ChangeHaving(And(q.Having.Expr, expr))
}

// RemoveColumnFromWhere returns q without the WHERE conjuncts that refer to
// column. The clause is dropped when nothing is left.
func (q *Query) RemoveColumnFromWhere(column string) (*Query, error) {
	if q.Where == nil {
		return q, nil
	}
	expr, err := RemoveConjuncts(q.Where.Expr, column)
	if err != nil {
		return nil, err
	}
	return q.ChangeWhere(expr), nil
}

// RemoveColumnFromHaving returns q without the HAVING conjuncts that refer
// to column.
func (q *Query) RemoveColumnFromHaving(column string) (*Query, error) {
	if q.Having == nil {
		return q, nil
	}
	expr, err := RemoveConjuncts(q.Having.Expr, column)
	if err != nil {
		return nil, err
	}
	return q.ChangeHaving(expr), nil
}

// RemoveConjuncts removes from expr every conjunct that refers to column.
// Conjuncts are the operands of top-level ANDs, including parenthesized
// ones; an expression that is not an AND is a single conjunct. The result
// is nil when every conjunct was removed.
func RemoveConjuncts(expr Node, column string) (Node, error) {
	return Walk(expr, PreOrder, func(n Node, stack []Node) (Node, error) {
		if len(stack) > 0 && !isAnd(stack[len(stack)-1]) {
			return n, nil
		}
		if isAnd(n) {
			return n, nil
		}
		if ReferencesColumn(n, column) {
			return nil, nil
		}
		return n, nil
	})
}

func isAnd(n Node) bool {
	m, ok := n.(*Multi)
	return ok && m.Op == OpAnd
}

// ReferencesColumn reports whether n contains a reference to column.
func ReferencesColumn(n Node, column string) bool {
	found := false
	Walk(n, PreOrder, func(n Node, _ []Node) (Node, error) {
		if c, ok := n.(*Column); ok && c.Name() == column {
			found = true
		}
		return n, nil
	})
	return found
}

// -----------------------------------------------------------------------------
// SELECT columns

// AddSelectOptions controls how a new SELECT column is registered.
type AddSelectOptions struct {
	// GroupBy adds the column's ordinal to GROUP BY.
	GroupBy bool
	// OrderBy adds the column's ordinal to ORDER BY with this direction
	// (ASC or DESC) when not empty.
	OrderBy string
}

// AddSelect returns q with expr appended to the SELECT list.
func (q *Query) AddSelect(expr Node, opts AddSelectOptions) *Query {
	return q.InsertSelect(q.Columns.Len(), expr, opts)
}

// InsertSelect returns q with expr inserted into the SELECT list at 0-based
// index. Ordinal references to later columns are shifted.
func (q *Query) InsertSelect(index int, expr Node, opts AddSelectOptions) *Query {
	n := q.Columns.Len()
	if index < 0 || index > n {
		index = n
	}
	out := q.ShiftOrdinals(index)
	out = out.ChangeSelect(q.Columns.Insert(index, unpad(expr), listSep(q.Columns, CommaSpace)))

	ordinal := Int(int64(index + 1))
	if opts.GroupBy {
		var items List[Node]
		if out.GroupBy != nil {
			items = out.GroupBy.Items
		}
		out = out.ChangeGroupBy(items.Append(ordinal, listSep(items, CommaSpace)))
	}
	if opts.OrderBy != "" {
		var items List[*OrderItem]
		if out.OrderBy != nil {
			items = out.OrderBy.Items
		}
		item := &OrderItem{Expr: ordinal, Direction: &Keyword{Space: " ", Text: strings.ToUpper(opts.OrderBy)}}
		out = out.ChangeOrderBy(items.Append(item, listSep(items, CommaSpace)))
	}
	return out
}

// RemoveSelect returns q without its i'th SELECT column. Ordinal references
// to the column are dropped and later ones decremented.
func (q *Query) RemoveSelect(i int) (*Query, error) {
	n := q.Columns.Len()
	if i < 0 || i >= n {
		return q, nil
	}
	if n == 1 {
		return nil, &PreconditionError{
			Op:     "remove select column",
			Reason: "a query needs at least one column",
			Err:    ErrNotRemovable,
		}
	}
	return q.ChangeSelect(q.Columns.Remove(i)).UnshiftOrdinals(i), nil
}
