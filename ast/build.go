package ast

import (
	"fmt"
	"math"
	"time"
)

// Constructors for canonically formatted nodes: single spaces around
// operators and keywords, "," between arguments, ", " between clause list
// items and double-quoted identifiers.

func unpadAll(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = unpad(n)
	}
	return out
}

func unpad[T Node](n T) T {
	if n.wrapping().Padding == (Padding{}) {
		return n
	}
	return ChangePadding(n, Padding{})
}

func idents(parts []string) ([]Ident, []Separator) {
	if len(parts) == 0 {
		panic("ast: reference needs at least one part")
	}
	ids := make([]Ident, len(parts))
	var dots []Separator
	for i, p := range parts {
		ids[i] = Ident{Name: p, Quoted: true}
		if i > 0 {
			dots = append(dots, Separator{Text: "."})
		}
	}
	return ids, dots
}

// ColumnRef returns a reference to a column. Parts run from the outermost
// qualifier to the column name: ColumnRef("t", "city") is "t"."city".
func ColumnRef(parts ...string) *Column {
	ids, dots := idents(parts)
	return &Column{Parts: ids, Dots: dots}
}

// TableRef returns a reference to a table, optionally with its namespace
// first: TableRef("druid", "wikipedia").
func TableRef(parts ...string) *Table {
	ids, dots := idents(parts)
	return &Table{Parts: ids, Dots: dots}
}

// Func returns a call of the named function.
func Func(name string, args ...Node) *Call {
	return &Call{Name: name, Args: NewList(Comma, unpadAll(args)...)}
}

// FuncSep returns a call whose arguments are joined by sep instead of ",".
func FuncSep(name string, sep Separator, args ...Node) *Call {
	c := Func(name, args...)
	c.Args = NewList(sep, c.Args.Values...)
	return c
}

// ParenlessFunc returns a call written without parentheses, like CURRENT_TIMESTAMP.
func ParenlessFunc(name string) *Call {
	return &Call{Name: name, Parenless: true}
}

// Cast returns CAST(n AS typ).
func Cast(n Node, typ string) *Call {
	c := &Call{Name: "CAST"}
	c.Args = List[Node]{
		Values:     []Node{unpad(n), &TypeName{Text: typ}},
		Separators: []Separator{Sep("AS")},
	}
	return c
}

// Array returns ARRAY[items...].
func Array(items ...Node) *Call {
	c := Func("ARRAY", items...)
	c.Bracket = true
	return c
}

// NewStar returns *.
func NewStar() *Star {
	return &Star{}
}

// And returns the conjunction of args. Nested unparenthesized ANDs are
// flattened, keeping their own separators, and OR operands are
// parenthesized. With a single argument it returns that argument and with
// none it returns TRUE.
func And(args ...Node) Node {
	return logical(OpAnd, args)
}

// Or returns the disjunction of args, flattening nested unparenthesized ORs.
// With no arguments it returns FALSE.
func Or(args ...Node) Node {
	return logical(OpOr, args)
}

func logical(op MultiOp, args []Node) Node {
	var l List[Node]
	sep := Sep(op.String())
	for _, a := range args {
		if a == nil {
			continue
		}
		a = unpad(a)
		if m, ok := a.(*Multi); ok && !HasParens(m) {
			if m.Op == op {
				for i, v := range m.Args.Values {
					s := sep
					if i > 0 {
						s = m.Args.Separators[i-1]
					}
					l = l.Append(v, s)
				}
				continue
			}
			if op == OpAnd && m.Op == OpOr {
				a = EnsureParens(a)
			}
		}
		l = l.Append(a, sep)
	}
	switch l.Len() {
	case 0:
		return Bool(op == OpAnd)
	case 1:
		return l.At(0)
	}
	return &Multi{Op: op, Args: l}
}

// Not returns NOT n. An unparenthesized AND or OR is parenthesized first.
func Not(n Node) *Unary {
	n = unpad(n)
	if m, ok := n.(*Multi); ok && (m.Op == OpAnd || m.Op == OpOr) {
		n = EnsureParens(n)
	}
	return &Unary{Op: "NOT", Space: " ", Operand: n}
}

// Compare returns left op right.
func Compare(left Node, op CompareOp, right Node) *Comparison {
	return &Comparison{
		Left:   unpad(left),
		PreOp:  " ",
		Op:     op,
		OpText: OpText(op, false, false),
		PostOp: " ",
		Right:  unpad(right),
	}
}

// Eq returns left = right.
func Eq(left, right Node) *Comparison {
	return Compare(left, OpEq, right)
}

// In returns left IN (values...).
func In(left Node, values ...Node) *Comparison {
	return Compare(left, OpIn, NewRecord(values...))
}

// Between returns x BETWEEN start AND end.
func Between(x, start, end Node) *Comparison {
	c := Compare(x, OpBetween, start)
	c.PreAnd, c.AndText, c.PostAnd = " ", "AND", " "
	c.End = unpad(end)
	return c
}

// NewRecord returns (items...).
func NewRecord(items ...Node) *Record {
	return &Record{Items: NewList(Comma, unpadAll(items)...)}
}

// As returns n AS "name".
func As(n Node, name string) *Alias {
	return &Alias{
		Expr:   unpad(n),
		PreAs:  " ",
		As:     "AS",
		PostAs: " ",
		Name:   Ident{Name: name, Quoted: true},
	}
}

// Asc returns an ORDER BY item sorting n ascending; Desc sorts descending.
func Asc(n Node) *OrderItem {
	return &OrderItem{Expr: unpad(n), Direction: &Keyword{Space: " ", Text: "ASC"}}
}

// Desc returns an ORDER BY item sorting n descending.
func Desc(n Node) *OrderItem {
	return &OrderItem{Expr: unpad(n), Direction: &Keyword{Space: " ", Text: "DESC"}}
}

// -----------------------------------------------------------------------------
// Literals

// Null returns NULL.
func Null() *Literal {
	return &Literal{Type: NullLiteral, Text: "NULL"}
}

// Bool returns TRUE or FALSE.
func Bool(v bool) *Literal {
	text := "FALSE"
	if v {
		text = "TRUE"
	}
	return &Literal{Type: BooleanLiteral, Value: v, Text: text}
}

// Int returns an integer literal.
func Int(v int64) *Literal {
	return &Literal{Type: NumberLiteral, Value: v, Text: formatNumber(v)}
}

// Number returns a numeric literal. Integral values are written without a
// fraction.
func Number(v float64) *Literal {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return &Literal{Type: NumberLiteral, Value: v, Text: formatNumber(int64(v))}
	}
	return &Literal{Type: NumberLiteral, Value: v, Text: formatNumber(v)}
}

// String returns a string literal.
func String(s string) *Literal {
	return &Literal{Type: StringLiteral, Value: s, Text: QuoteString(s)}
}

// Timestamp returns TIMESTAMP '...' for t in UTC.
func Timestamp(t time.Time) *Literal {
	t = t.UTC()
	return &Literal{
		Type:  TimestampLiteral,
		Value: t,
		Text:  "TIMESTAMP " + QuoteString(FormatTimestamp(t)),
	}
}

// IntervalLit returns INTERVAL 'value' unit.
func IntervalLit(value, unit string) *Literal {
	return &Literal{
		Type:  IntervalLiteral,
		Value: Interval{Value: value, Unit: unit},
		Text:  "INTERVAL " + QuoteString(value) + " " + unit,
	}
}

// Lit returns the literal for a Go value: nil, bool, integer and float
// types, string, time.Time or Interval.
func Lit(v any) *Literal {
	switch v := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case float32:
		return Number(float64(v))
	case float64:
		return Number(v)
	case string:
		return String(v)
	case time.Time:
		return Timestamp(v)
	case Interval:
		return IntervalLit(v.Value, v.Unit)
	case fmt.Stringer:
		return String(v.String())
	}
	return String(fmt.Sprint(v))
}

// LiteralValue returns the Go value of a literal node, which may be a
// negated number literal.
func LiteralValue(n Node) (any, bool) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, true
	case *Unary:
		if n.Op != "-" {
			return nil, false
		}
		v, ok := LiteralValue(n.Operand)
		if !ok {
			return nil, false
		}
		switch v := v.(type) {
		case int64:
			return -v, true
		case float64:
			return -v, true
		}
	}
	return nil, false
}

// -----------------------------------------------------------------------------
// Queries

// NewQuery returns SELECT columns with no other clauses.
func NewQuery(columns ...Node) *Query {
	return &Query{
		Select:  Kw("", "SELECT"),
		Space:   " ",
		Columns: NewList(CommaSpace, unpadAll(columns)...),
	}
}

// NewFrom returns a FROM clause reading from tables.
func NewFrom(tables ...Node) *From {
	return &From{
		Keyword: Kw("\n", "FROM"),
		Space:   " ",
		Tables:  NewList(CommaSpace, unpadAll(tables)...),
	}
}

// NewJoin returns a join of table. joinType is INNER, LEFT, RIGHT, FULL,
// CROSS or empty for a plain JOIN. on may be nil.
func NewJoin(joinType string, table Node, on Node) *Join {
	kw := "JOIN"
	if joinType != "" {
		kw = joinType + " JOIN"
	}
	j := &Join{Type: Kw("\n", kw), Space: " ", Table: unpad(table)}
	if on != nil {
		j.On = &ExprClause{Keyword: Kw(" ", "ON"), Space: " ", Expr: unpad(on)}
	}
	return j
}
