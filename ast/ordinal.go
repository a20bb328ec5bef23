package ast

import "strconv"

// GROUP BY, ORDER BY and CLUSTERED BY may refer to SELECT columns by their
// 1-based position. When columns are inserted or removed those references
// have to follow.

// Ordinal returns the SELECT position referenced by n, if n is a positive
// integer literal.
func Ordinal(n Node) (int, bool) {
	lit, ok := n.(*Literal)
	if !ok {
		return 0, false
	}
	v, ok := lit.Int()
	if !ok || v < 1 {
		return 0, false
	}
	return int(v), true
}

// ShiftOrdinals returns l with every ordinal reference greater than n
// incremented. It models inserting a column at 0-based position n.
func ShiftOrdinals[T Node](l List[T], n int) List[T] {
	out, _ := remapList(l, shiftFunc(n))
	return out
}

// UnshiftOrdinals returns l adjusted for removing the column at 0-based
// position n: references to it are dropped and later ones decremented.
func UnshiftOrdinals[T Node](l List[T], n int) List[T] {
	out, _ := remapList(l, unshiftFunc(n))
	return out
}

// ShiftOrdinals returns q with the ordinal references of GROUP BY, ORDER BY
// and CLUSTERED BY shifted for a column inserted at 0-based position n.
func (q *Query) ShiftOrdinals(n int) *Query {
	return q.remapOrdinals(shiftFunc(n))
}

// UnshiftOrdinals returns q with the ordinal references of GROUP BY, ORDER BY
// and CLUSTERED BY adjusted for the column at 0-based position n being
// removed. Clauses left without items are dropped.
func (q *Query) UnshiftOrdinals(n int) *Query {
	return q.remapOrdinals(unshiftFunc(n))
}

// ordinalFunc maps an ordinal to its new value; false drops the reference.
type ordinalFunc func(int) (int, bool)

func shiftFunc(n int) ordinalFunc {
	return func(v int) (int, bool) {
		if v > n {
			return v + 1, true
		}
		return v, true
	}
}

func unshiftFunc(n int) ordinalFunc {
	removed := n + 1
	return func(v int) (int, bool) {
		switch {
		case v == removed:
			return 0, false
		case v > removed:
			return v - 1, true
		}
		return v, true
	}
}

func (q *Query) remapOrdinals(f ordinalFunc) *Query {
	out := q
	mut := func() *Query {
		if out == q {
			out = q.clone()
		}
		return out
	}

	if g := q.GroupBy; g != nil {
		if items, changed := remapList(g.Items, f); changed {
			if items.Len() == 0 && g.Decorator == nil {
				mut().GroupBy = nil
			} else {
				c := *g
				c.Items = items
				mut().GroupBy = &c
			}
		}
	}
	if o := q.OrderBy; o != nil {
		if items, changed := remapList(o.Items, f); changed {
			mut().OrderBy = changeListClause(o, items)
		}
	}
	if c := q.ClusteredBy; c != nil {
		if items, changed := remapList(c.Items, f); changed {
			mut().ClusteredBy = changeListClause(c, items)
		}
	}
	return out
}

func changeListClause[T Node](c *ListClause[T], items List[T]) *ListClause[T] {
	if items.Len() == 0 {
		return nil
	}
	n := *c
	n.Items = items
	return &n
}

func remapList[T Node](l List[T], f ordinalFunc) (List[T], bool) {
	out := l
	changed := false
	for i := len(l.Values) - 1; i >= 0; i-- {
		r, ok := remapOrdinal(l.Values[i], f)
		if r == Node(l.Values[i]) {
			continue
		}
		changed = true
		if !ok {
			out = out.Remove(i)
			continue
		}
		out = out.Replace(i, r.(T))
	}
	return out, changed
}

// remapOrdinal rewrites the ordinal references in a clause item: a bare
// ordinal, the expression of an ORDER BY item, or the items of a
// GROUPING SETS record. It returns false when the item is dropped.
func remapOrdinal(n Node, f ordinalFunc) (Node, bool) {
	switch n := n.(type) {
	case *Literal:
		v, ok := Ordinal(n)
		if !ok {
			return n, true
		}
		nv, keep := f(v)
		if !keep {
			return nil, false
		}
		if nv == v {
			return n, true
		}
		c := *n
		c.Value = int64(nv)
		c.Text = strconv.Itoa(nv)
		return &c, true
	case *OrderItem:
		expr, keep := remapOrdinal(n.Expr, f)
		if !keep {
			return nil, false
		}
		if expr == n.Expr {
			return n, true
		}
		c := *n
		c.Expr = expr
		return &c, true
	case *Record:
		items, changed := remapList(n.Items, f)
		if !changed {
			return n, true
		}
		return n.ChangeItems(items), true
	}
	return n, true
}
