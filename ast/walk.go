package ast

import "fmt"

// Order selects when Walk visits a node relative to its children.
type Order int

const (
	// PreOrder visits a node before its children. When the visitor
	// replaces a node, the replacement is not walked.
	PreOrder Order = iota
	// PostOrder visits a node after its children, so the visitor sees the
	// node as rebuilt from its walked children.
	PostOrder
)

// Visitor is called by Walk for every node. stack holds the ancestors of n,
// root first; it is only valid during the call.
//
// The visitor returns n to keep it, another node to replace it, or nil to
// remove it. Removal is allowed where the owner can do without the child:
// list elements, operands of AND and OR, optional clause expressions and
// join tables. Removing anything else fails with a PreconditionError.
type Visitor func(n Node, stack []Node) (Node, error)

// Walk traverses the tree rooted at n and returns the rebuilt tree. Nodes
// whose subtrees did not change are returned as is; changed ancestors are
// copied. The result is nil when the root itself was removed.
//
// Owners react to removals as follows. A clause list that becomes empty
// drops its clause, except the SELECT list and the FROM sources which must
// keep one element. An AND or OR with one operand left is replaced by that
// operand, which takes over the operator's parentheses; with none left the
// operator is removed as well. Removing the expression of WHERE, HAVING,
// LIMIT, OFFSET, ON, PARTITIONED BY, FILTER or ELSE drops that clause, and
// removing a join's table drops the join.
func Walk(n Node, order Order, visit Visitor) (Node, error) {
	w := &walker{order: order, visit: visit}
	return w.walk(n)
}

type walker struct {
	order Order
	visit Visitor
	stack []Node
}

func (w *walker) walk(n Node) (Node, error) {
	if w.order == PreOrder {
		r, err := w.visit(n, w.stack)
		if err != nil || r == nil {
			return nil, err
		}
		if r != n {
			return r, nil
		}
	}

	w.stack = append(w.stack, n)
	r, err := w.children(n)
	w.stack = w.stack[:len(w.stack)-1]
	if err != nil {
		return nil, err
	}

	if w.order == PostOrder && r != nil {
		return w.visit(r, w.stack)
	}
	return r, nil
}

// required walks a child the owner cannot lose.
func (w *walker) required(owner Node, what string, n Node) (Node, error) {
	r, err := w.walk(n)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notRemovable(owner, what)
	}
	return r, nil
}

// optional walks a child that may be absent or removed.
func (w *walker) optional(n Node) (Node, error) {
	if n == nil {
		return nil, nil
	}
	return w.walk(n)
}

func walkList[T Node](w *walker, l List[T]) (List[T], bool, error) {
	results := make([]Node, len(l.Values))
	changed := false
	for i, v := range l.Values {
		r, err := w.walk(v)
		if err != nil {
			return l, false, err
		}
		results[i] = r
		if r != Node(v) {
			changed = true
		}
	}
	if !changed {
		return l, false, nil
	}

	out := List[T]{Values: make([]T, len(l.Values)), Separators: l.Separators}
	for i, r := range results {
		if r == nil {
			continue
		}
		t, ok := r.(T)
		if !ok {
			return l, false, &PreconditionError{
				Op:     "replace",
				Reason: fmt.Sprintf("%s cannot stand in for %s", r.Kind(), l.Values[i].Kind()),
			}
		}
		out.Values[i] = t
	}
	for i := len(results) - 1; i >= 0; i-- {
		if results[i] == nil {
			out = out.Remove(i)
		}
	}
	return out, true, nil
}

func walkListClause[T Node](w *walker, c *ListClause[T]) (*ListClause[T], error) {
	if c == nil {
		return nil, nil
	}
	items, changed, err := walkList(w, c.Items)
	if err != nil || !changed {
		return c, err
	}
	if items.Len() == 0 {
		return nil, nil
	}
	n := *c
	n.Items = items
	return &n, nil
}

func (w *walker) exprClause(c *ExprClause) (*ExprClause, error) {
	if c == nil {
		return nil, nil
	}
	e, err := w.walk(c.Expr)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}
	if e == c.Expr {
		return c, nil
	}
	n := *c
	n.Expr = e
	return &n, nil
}

func (w *walker) children(n Node) (Node, error) {
	switch n := n.(type) {
	case *Literal, *Column, *Table, *Star, *Placeholder, *TypeName:
		return n, nil

	case *Unary:
		op, err := w.required(n, "operand", n.Operand)
		if err != nil || op == n.Operand {
			return n, err
		}
		return n.ChangeOperand(op), nil

	case *Multi:
		args, changed, err := walkList(w, n.Args)
		if err != nil || !changed {
			return n, err
		}
		if args.Len() < n.Args.Len() && n.Op != OpAnd && n.Op != OpOr {
			return nil, notRemovable(n, "operand")
		}
		switch args.Len() {
		case 0:
			return nil, nil
		case 1:
			return addOuterParens(args.At(0), n.Parens, n.Padding), nil
		}
		return n.ChangeArgs(args), nil

	case *Comparison:
		return w.comparison(n)

	case *Call:
		return w.call(n)

	case *Case:
		return w.caseNode(n)

	case *WhenThen:
		cond, err := w.required(n, "condition", n.Cond)
		if err != nil {
			return nil, err
		}
		result, err := w.required(n, "result", n.Result)
		if err != nil {
			return nil, err
		}
		if cond == n.Cond && result == n.Result {
			return n, nil
		}
		c := *n
		c.Cond, c.Result = cond, result
		return &c, nil

	case *Record:
		items, changed, err := walkList(w, n.Items)
		if err != nil || !changed {
			return n, err
		}
		return n.ChangeItems(items), nil

	case *Alias:
		expr, err := w.required(n, "expression", n.Expr)
		if err != nil || expr == n.Expr {
			return n, err
		}
		return n.ChangeExpr(expr), nil

	case *OrderItem:
		expr, err := w.required(n, "expression", n.Expr)
		if err != nil || expr == n.Expr {
			return n, err
		}
		c := *n
		c.Expr = expr
		return &c, nil

	case *WithPart:
		q, err := w.required(n, "query", n.Query)
		if err != nil || q == n.Query {
			return n, err
		}
		c := *n
		c.Query = q
		return &c, nil

	case *Query:
		return w.query(n)
	}
	panic("ast: unknown node type")
}

func (w *walker) comparison(n *Comparison) (Node, error) {
	left, err := w.required(n, "left operand", n.Left)
	if err != nil {
		return nil, err
	}
	right, err := w.required(n, "right operand", n.Right)
	if err != nil {
		return nil, err
	}
	end := n.End
	if end != nil {
		if end, err = w.required(n, "BETWEEN end", end); err != nil {
			return nil, err
		}
	}
	escape, err := w.optional(n.Escape)
	if err != nil {
		return nil, err
	}
	if left == n.Left && right == n.Right && end == n.End && escape == n.Escape {
		return n, nil
	}
	c := *n
	c.Left, c.Right, c.End, c.Escape = left, right, end, escape
	if escape == nil {
		c.PreEscape, c.EscapeText, c.PostEscape = "", "", ""
	}
	return &c, nil
}

func (w *walker) call(n *Call) (Node, error) {
	args, changed, err := walkList(w, n.Args)
	if err != nil {
		return nil, err
	}

	filter := n.Filter
	if filter != nil {
		expr, err := w.walk(filter.Expr)
		if err != nil {
			return nil, err
		}
		switch {
		case expr == nil:
			filter = nil
		case expr != filter.Expr:
			f := *filter
			f.Expr = expr
			filter = &f
		}
	}

	over := n.Over
	if over != nil {
		partitionBy, err := walkListClause(w, over.PartitionBy)
		if err != nil {
			return nil, err
		}
		orderBy, err := walkListClause(w, over.OrderBy)
		if err != nil {
			return nil, err
		}
		if partitionBy != over.PartitionBy || orderBy != over.OrderBy {
			o := *over
			o.PartitionBy, o.OrderBy = partitionBy, orderBy
			over = &o
		}
	}

	if !changed && filter == n.Filter && over == n.Over {
		return n, nil
	}
	c := *n
	c.Args, c.Filter, c.Over = args, filter, over
	return &c, nil
}

func (w *walker) caseNode(n *Case) (Node, error) {
	subject := n.Subject
	if subject != nil {
		var err error
		if subject, err = w.required(n, "subject", subject); err != nil {
			return nil, err
		}
	}

	changed := subject != n.Subject
	var whens []*WhenThen
	for _, wt := range n.Whens {
		r, err := w.walk(wt)
		if err != nil {
			return nil, err
		}
		if r == nil {
			changed = true
			continue
		}
		rw, ok := r.(*WhenThen)
		if !ok {
			return nil, &PreconditionError{Op: "replace", Reason: fmt.Sprintf("%s cannot stand in for WhenThen", r.Kind())}
		}
		if rw != wt {
			changed = true
		}
		whens = append(whens, rw)
	}
	if len(whens) == 0 {
		return nil, notRemovable(n, "last WHEN")
	}

	els, err := w.optional(n.Else)
	if err != nil {
		return nil, err
	}
	if !changed && els == n.Else {
		return n, nil
	}
	c := *n
	c.Subject, c.Whens, c.Else = subject, whens, els
	if els == nil {
		c.PreElse, c.ElseText, c.PostElse = "", "", ""
	}
	return &c, nil
}

func (w *walker) query(q *Query) (Node, error) {
	out := q
	mut := func() *Query {
		if out == q {
			out = q.clone()
		}
		return out
	}

	if ins := q.Insert; ins != nil {
		table, err := w.required(q, "INSERT table", ins.Table)
		if err != nil {
			return nil, err
		}
		ow := ins.Overwrite
		if ow != nil && ow.Where != nil {
			where, err := w.exprClause(ow.Where)
			if err != nil {
				return nil, err
			}
			if where == nil {
				return nil, notRemovable(q, "OVERWRITE WHERE expression")
			}
			if where != ow.Where {
				o := *ow
				o.Where = where
				ow = &o
			}
		}
		if table != ins.Table || ow != ins.Overwrite {
			i := *ins
			i.Table, i.Overwrite = table, ow
			mut().Insert = &i
		}
	}

	with, err := walkListClause(w, q.With)
	if err != nil {
		return nil, err
	}
	if with != q.With {
		mut().With = with
	}

	columns, changed, err := walkList(w, q.Columns)
	if err != nil {
		return nil, err
	}
	if changed {
		if columns.Len() == 0 {
			return nil, notRemovable(q, "last SELECT column")
		}
		mut().Columns = columns
	}

	if f := q.From; f != nil {
		from, err := w.from(q, f)
		if err != nil {
			return nil, err
		}
		if from != f {
			mut().From = from
		}
	}

	where, err := w.exprClause(q.Where)
	if err != nil {
		return nil, err
	}
	if where != q.Where {
		mut().Where = where
	}

	if g := q.GroupBy; g != nil {
		items, changed, err := walkList(w, g.Items)
		if err != nil {
			return nil, err
		}
		if changed {
			if items.Len() == 0 && g.Decorator == nil {
				mut().GroupBy = nil
			} else {
				c := *g
				c.Items = items
				mut().GroupBy = &c
			}
		}
	}

	having, err := w.exprClause(q.Having)
	if err != nil {
		return nil, err
	}
	if having != q.Having {
		mut().Having = having
	}

	orderBy, err := walkListClause(w, q.OrderBy)
	if err != nil {
		return nil, err
	}
	if orderBy != q.OrderBy {
		mut().OrderBy = orderBy
	}

	limit, err := w.exprClause(q.Limit)
	if err != nil {
		return nil, err
	}
	if limit != q.Limit {
		mut().Limit = limit
	}

	offset, err := w.exprClause(q.Offset)
	if err != nil {
		return nil, err
	}
	if offset != q.Offset {
		mut().Offset = offset
	}

	if u := q.Union; u != nil {
		r, err := w.walk(u.Query)
		if err != nil {
			return nil, err
		}
		switch {
		case r == nil:
			mut().Union = nil
		case r != u.Query:
			c := *u
			c.Query = r
			mut().Union = &c
		}
	}

	partitionedBy, err := w.exprClause(q.PartitionedBy)
	if err != nil {
		return nil, err
	}
	if partitionedBy != q.PartitionedBy {
		mut().PartitionedBy = partitionedBy
	}

	clusteredBy, err := walkListClause(w, q.ClusteredBy)
	if err != nil {
		return nil, err
	}
	if clusteredBy != q.ClusteredBy {
		mut().ClusteredBy = clusteredBy
	}

	return out, nil
}

func (w *walker) from(q *Query, f *From) (*From, error) {
	tables, changed, err := walkList(w, f.Tables)
	if err != nil {
		return nil, err
	}
	if changed && tables.Len() == 0 {
		return nil, notRemovable(q, "last FROM source")
	}

	var joins []*Join
	joinsChanged := false
	for _, j := range f.Joins {
		table, err := w.walk(j.Table)
		if err != nil {
			return nil, err
		}
		if table == nil {
			joinsChanged = true
			continue
		}
		on, err := w.exprClause(j.On)
		if err != nil {
			return nil, err
		}
		if table != j.Table || on != j.On {
			c := *j
			c.Table, c.On = table, on
			j = &c
			joinsChanged = true
		}
		joins = append(joins, j)
	}

	if !changed && !joinsChanged {
		return f, nil
	}
	c := *f
	c.Tables, c.Joins = tables, joins
	return &c, nil
}
