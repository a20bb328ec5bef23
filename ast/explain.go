package ast

import (
	"fmt"
	"strings"
)

// Explain returns an indented dump of the tree structure of n, one node per
// line. Formatting is left out: the dump of two equivalent trees is the
// same.
func Explain(n Node) string {
	var b strings.Builder
	explainNode(&b, n, 0)
	return b.String()
}

func explainNode(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat(" ", depth)
	parens := ""
	if k := len(Parens(n)); k > 0 {
		parens = fmt.Sprintf(" parens=%d", k)
	}

	switch n := n.(type) {
	case *Literal:
		fmt.Fprintf(b, "%sLiteral %s %s%s\n", indent, n.Type, Raw(StripParens(n)), parens)
	case *Column:
		fmt.Fprintf(b, "%sColumn %s%s\n", indent, Raw(StripParens(n)), parens)
	case *Table:
		fmt.Fprintf(b, "%sTable %s%s\n", indent, Raw(StripParens(n)), parens)
	case *Star:
		fmt.Fprintf(b, "%sStar %s%s\n", indent, Raw(StripParens(n)), parens)
	case *Placeholder:
		fmt.Fprintf(b, "%sPlaceholder%s\n", indent, parens)
	case *TypeName:
		fmt.Fprintf(b, "%sTypeName %s%s\n", indent, Raw(StripParens(n)), parens)

	case *Unary:
		fmt.Fprintf(b, "%sUnary %s (children 1)%s\n", indent, n.Operator(), parens)
		explainNode(b, n.Operand, depth+1)

	case *Multi:
		fmt.Fprintf(b, "%sMulti %s (children %d)%s\n", indent, n.Op, n.Args.Len(), parens)
		explainList(b, n.Args.Values, depth+1)

	case *Comparison:
		children := []Node{n.Left, n.Right}
		if n.End != nil {
			children = append(children, n.End)
		}
		if n.Escape != nil {
			children = append(children, n.Escape)
		}
		fmt.Fprintf(b, "%sComparison %s (children %d)%s\n", indent,
			OpText(n.Op, n.Not, n.Symmetric), len(children), parens)
		explainList(b, children, depth+1)

	case *Call:
		explainCall(b, n, depth, parens)

	case *Case:
		children := len(n.Whens)
		if n.Subject != nil {
			children++
		}
		if n.Else != nil {
			children++
		}
		fmt.Fprintf(b, "%sCase (children %d)%s\n", indent, children, parens)
		if n.Subject != nil {
			explainNode(b, n.Subject, depth+1)
		}
		for _, w := range n.Whens {
			explainNode(b, w, depth+1)
		}
		if n.Else != nil {
			fmt.Fprintf(b, "%s Else (children 1)\n", indent)
			explainNode(b, n.Else, depth+2)
		}

	case *WhenThen:
		fmt.Fprintf(b, "%sWhenThen (children 2)%s\n", indent, parens)
		explainNode(b, n.Cond, depth+1)
		explainNode(b, n.Result, depth+1)

	case *Record:
		fmt.Fprintf(b, "%sRecord (children %d)%s\n", indent, n.Items.Len(), parens)
		explainList(b, n.Items.Values, depth+1)

	case *Alias:
		fmt.Fprintf(b, "%sAlias %s (children 1)%s\n", indent, QuoteIdent(n.Name.Name), parens)
		explainNode(b, n.Expr, depth+1)

	case *OrderItem:
		dir := ""
		if n.Direction != nil {
			dir = " " + canonicalWords(n.Direction.Text)
		}
		fmt.Fprintf(b, "%sOrderItem%s (children 1)%s\n", indent, dir, parens)
		explainNode(b, n.Expr, depth+1)

	case *WithPart:
		fmt.Fprintf(b, "%sWithPart %s (children 1)%s\n", indent, QuoteIdent(n.Name.Name), parens)
		explainNode(b, n.Query, depth+1)

	case *Query:
		explainQuery(b, n, depth, parens)

	default:
		fmt.Fprintf(b, "%s%T\n", indent, n)
	}
}

func explainList[T Node](b *strings.Builder, nodes []T, depth int) {
	for _, n := range nodes {
		explainNode(b, n, depth)
	}
}

func explainCall(b *strings.Builder, n *Call, depth int, parens string) {
	indent := strings.Repeat(" ", depth)
	children := n.Args.Len()
	if n.Filter != nil {
		children++
	}
	if n.Over != nil {
		children++
	}
	name := n.FunctionName()
	if n.Decorator != nil {
		name += " " + canonicalWords(n.Decorator.Text)
	}
	fmt.Fprintf(b, "%sCall %s (children %d)%s\n", indent, name, children, parens)
	explainList(b, n.Args.Values, depth+1)
	if n.Filter != nil {
		fmt.Fprintf(b, "%s Filter (children 1)\n", indent)
		explainNode(b, n.Filter.Expr, depth+2)
	}
	if o := n.Over; o != nil {
		if o.Name != nil {
			fmt.Fprintf(b, "%s Over %s\n", indent, QuoteIdent(o.Name.Name))
			return
		}
		k := 0
		if o.PartitionBy != nil {
			k++
		}
		if o.OrderBy != nil {
			k++
		}
		fmt.Fprintf(b, "%s Over (children %d)\n", indent, k)
		if o.PartitionBy != nil {
			explainListClause(b, "PartitionBy", o.PartitionBy, depth+2)
		}
		if o.OrderBy != nil {
			explainListClause(b, "OrderBy", o.OrderBy, depth+2)
		}
	}
}

func explainListClause[T Node](b *strings.Builder, label string, c *ListClause[T], depth int) {
	fmt.Fprintf(b, "%s%s (children %d)\n", strings.Repeat(" ", depth), label, c.Items.Len())
	explainList(b, c.Items.Values, depth+1)
}

func explainExprClause(b *strings.Builder, label string, c *ExprClause, depth int) {
	fmt.Fprintf(b, "%s%s (children 1)\n", strings.Repeat(" ", depth), label)
	explainNode(b, c.Expr, depth+1)
}

func countQueryChildren(q *Query) int {
	n := 1 // SELECT list
	for _, present := range []bool{
		q.Explain != nil, q.Insert != nil, q.With != nil, q.From != nil,
		q.Where != nil, q.GroupBy != nil, q.Having != nil, q.OrderBy != nil,
		q.Limit != nil, q.Offset != nil, q.Union != nil,
		q.PartitionedBy != nil, q.ClusteredBy != nil,
	} {
		if present {
			n++
		}
	}
	return n
}

func explainQuery(b *strings.Builder, q *Query, depth int, parens string) {
	indent := strings.Repeat(" ", depth)
	distinct := ""
	if q.Distinct != nil {
		distinct = " DISTINCT"
	}
	fmt.Fprintf(b, "%sQuery%s (children %d)%s\n", indent, distinct, countQueryChildren(q), parens)

	if q.Explain != nil {
		fmt.Fprintf(b, "%s ExplainPlan\n", indent)
	}
	if ins := q.Insert; ins != nil {
		stmt := "Insert"
		if ins.Replace() {
			stmt = "Replace"
		}
		children := 1
		if ins.Overwrite != nil {
			children++
		}
		fmt.Fprintf(b, "%s %s (children %d)\n", indent, stmt, children)
		explainNode(b, ins.Table, depth+2)
		if ow := ins.Overwrite; ow != nil {
			if ow.Where != nil {
				explainExprClause(b, "OverwriteWhere", ow.Where, depth+2)
			} else {
				fmt.Fprintf(b, "%s  OverwriteAll\n", indent)
			}
		}
	}
	if q.With != nil {
		explainListClause(b, "With", q.With, depth+1)
	}
	fmt.Fprintf(b, "%s Select (children %d)\n", indent, q.Columns.Len())
	explainList(b, q.Columns.Values, depth+2)

	if f := q.From; f != nil {
		fmt.Fprintf(b, "%s From (children %d)\n", indent, f.Tables.Len()+len(f.Joins))
		explainList(b, f.Tables.Values, depth+2)
		for _, j := range f.Joins {
			children := 1
			if j.On != nil {
				children++
			}
			fmt.Fprintf(b, "%s  Join %s (children %d)\n", indent, j.JoinType(), children)
			explainNode(b, j.Table, depth+3)
			if j.On != nil {
				explainExprClause(b, "On", j.On, depth+3)
			}
		}
	}
	if q.Where != nil {
		explainExprClause(b, "Where", q.Where, depth+1)
	}
	if g := q.GroupBy; g != nil {
		label := "GroupBy"
		if g.Decorator != nil {
			label += " " + canonicalWords(g.Decorator.Text)
		}
		fmt.Fprintf(b, "%s %s (children %d)\n", indent, label, g.Items.Len())
		explainList(b, g.Items.Values, depth+2)
	}
	if q.Having != nil {
		explainExprClause(b, "Having", q.Having, depth+1)
	}
	if q.OrderBy != nil {
		explainListClause(b, "OrderBy", q.OrderBy, depth+1)
	}
	if q.Limit != nil {
		explainExprClause(b, "Limit", q.Limit, depth+1)
	}
	if q.Offset != nil {
		explainExprClause(b, "Offset", q.Offset, depth+1)
	}
	if u := q.Union; u != nil {
		label := "Union"
		if u.All() {
			label += " ALL"
		}
		fmt.Fprintf(b, "%s %s (children 1)\n", indent, label)
		explainNode(b, u.Query, depth+2)
	}
	if q.PartitionedBy != nil {
		explainExprClause(b, "PartitionedBy", q.PartitionedBy, depth+1)
	}
	if q.ClusteredBy != nil {
		explainListClause(b, "ClusteredBy", q.ClusteredBy, depth+1)
	}
}
