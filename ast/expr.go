package ast

import (
	"strconv"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Literals

// LiteralType classifies a literal.
type LiteralType int

const (
	NullLiteral LiteralType = iota
	BooleanLiteral
	NumberLiteral
	StringLiteral
	TimestampLiteral
	DateLiteral
	IntervalLiteral
)

var literalTypes = [...]string{
	NullLiteral:      "null",
	BooleanLiteral:   "boolean",
	NumberLiteral:    "number",
	StringLiteral:    "string",
	TimestampLiteral: "timestamp",
	DateLiteral:      "date",
	IntervalLiteral:  "interval",
}

func (t LiteralType) String() string {
	if t >= 0 && int(t) < len(literalTypes) {
		return literalTypes[t]
	}
	return "unknown"
}

// Interval is the value of an INTERVAL literal such as INTERVAL '1' DAY.
type Interval struct {
	Value string
	Unit  string
}

// Literal is a constant. Value holds nil, a bool, an int64 or float64, a
// string, a time.Time or an Interval depending on Type. Text is the exact
// source spelling, including the keyword of typed literals.
type Literal struct {
	Wrapping
	Type  LiteralType
	Value any
	Text  string
}

func (l *Literal) Kind() Kind     { return KindLiteral }
func (l *Literal) String() string { return Format(l) }

// Int returns the value of an integer literal.
func (l *Literal) Int() (int64, bool) {
	v, ok := l.Value.(int64)
	return v, ok
}

// Float returns the value of any numeric literal.
func (l *Literal) Float() (float64, bool) {
	switch v := l.Value.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// Str returns the value of a string literal.
func (l *Literal) Str() (string, bool) {
	if l.Type != StringLiteral {
		return "", false
	}
	v, ok := l.Value.(string)
	return v, ok
}

// Time returns the value of a TIMESTAMP or DATE literal.
func (l *Literal) Time() (time.Time, bool) {
	v, ok := l.Value.(time.Time)
	return v, ok
}

// quotedPart returns the string token of a typed literal, e.g. '1' for
// INTERVAL '1' DAY.
func (l *Literal) quotedPart() string {
	start := strings.IndexByte(l.Text, '\'')
	end := strings.LastIndexByte(l.Text, '\'')
	if start < 0 || end <= start {
		return "''"
	}
	return l.Text[start : end+1]
}

// -----------------------------------------------------------------------------
// References

// Ident is one part of a dotted name.
type Ident struct {
	Name   string
	Quoted bool
}

func (i Ident) String() string {
	if i.Quoted {
		return QuoteIdent(i.Name)
	}
	return i.Name
}

// QuoteIdent returns name as a double-quoted identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString returns s as a single-quoted string literal.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Column is a column reference: column, table.column or ns.table.column.
// Dots holds the len(Parts)-1 separators between the parts.
type Column struct {
	Wrapping
	Parts []Ident
	Dots  []Separator
}

func (c *Column) Kind() Kind     { return KindColumn }
func (c *Column) String() string { return Format(c) }

// Name returns the unquoted column name.
func (c *Column) Name() string {
	return c.Parts[len(c.Parts)-1].Name
}

// Qualifier returns the table part of the reference, if any.
func (c *Column) Qualifier() string {
	if len(c.Parts) < 2 {
		return ""
	}
	return c.Parts[len(c.Parts)-2].Name
}

// ChangeName returns a copy of the column with its last part renamed.
// The quoting of the original part is kept.
func (c *Column) ChangeName(name string) *Column {
	parts := make([]Ident, len(c.Parts))
	copy(parts, c.Parts)
	parts[len(parts)-1].Name = name
	n := *c
	n.Parts = parts
	return &n
}

// Table is a table reference: table or namespace.table.
type Table struct {
	Wrapping
	Parts []Ident
	Dots  []Separator
}

func (t *Table) Kind() Kind     { return KindTable }
func (t *Table) String() string { return Format(t) }

// Name returns the unquoted table name.
func (t *Table) Name() string {
	return t.Parts[len(t.Parts)-1].Name
}

// Namespace returns the namespace part of the reference, if any.
func (t *Table) Namespace() string {
	if len(t.Parts) < 2 {
		return ""
	}
	return t.Parts[len(t.Parts)-2].Name
}

// Star is * or t.*. Each qualifier part is followed by its dot separator.
type Star struct {
	Wrapping
	Qualifier []Ident
	Dots      []Separator
}

func (s *Star) Kind() Kind     { return KindStar }
func (s *Star) String() string { return Format(s) }

// Placeholder is a ? parameter.
type Placeholder struct {
	Wrapping
}

func (p *Placeholder) Kind() Kind     { return KindPlaceholder }
func (p *Placeholder) String() string { return Format(p) }

// -----------------------------------------------------------------------------
// Operators

// Unary is a prefix operator: NOT, - or +.
type Unary struct {
	Wrapping
	Op      string // as written
	Space   string
	Operand Node
}

func (u *Unary) Kind() Kind     { return KindUnary }
func (u *Unary) String() string { return Format(u) }

// Operator returns the upper-cased operator.
func (u *Unary) Operator() string { return strings.ToUpper(u.Op) }

// ChangeOperand returns a copy of u applied to operand.
func (u *Unary) ChangeOperand(operand Node) *Unary {
	n := *u
	n.Operand = operand
	return &n
}

// MultiOp is the operator of a Multi node.
type MultiOp int

const (
	OpAnd MultiOp = iota
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpConcat
)

var multiOps = [...]string{
	OpAnd:    "AND",
	OpOr:     "OR",
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpMod:    "%",
	OpConcat: "||",
}

func (o MultiOp) String() string { return multiOps[o] }

// Multi is a chain of one binary operator over two or more operands, such
// as a AND b AND c. The separators hold the operator spellings.
type Multi struct {
	Wrapping
	Op   MultiOp
	Args List[Node]
}

func (m *Multi) Kind() Kind     { return KindMulti }
func (m *Multi) String() string { return Format(m) }

// Operands returns the operands in order.
func (m *Multi) Operands() []Node { return m.Args.Values }

// ChangeArgs returns a copy of m with the given operands.
func (m *Multi) ChangeArgs(args List[Node]) *Multi {
	n := *m
	n.Args = args
	return &n
}

// CompareOp is the operator of a Comparison.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpIs
	OpIn
	OpBetween
	OpLike
	OpSimilarTo
)

var compareOps = [...]string{
	OpEq:        "=",
	OpNe:        "<>",
	OpLt:        "<",
	OpLe:        "<=",
	OpGt:        ">",
	OpGe:        ">=",
	OpIs:        "IS",
	OpIn:        "IN",
	OpBetween:   "BETWEEN",
	OpLike:      "LIKE",
	OpSimilarTo: "SIMILAR TO",
}

func (o CompareOp) String() string { return compareOps[o] }

// Negatable reports whether the operator takes a NOT modifier.
func (o CompareOp) Negatable() bool {
	return o >= OpIs
}

// OpText returns the canonical spelling of an operator.
func OpText(op CompareOp, not, symmetric bool) string {
	var b strings.Builder
	switch {
	case op == OpIs && not:
		b.WriteString("IS NOT")
	case not && op.Negatable():
		b.WriteString("NOT ")
		b.WriteString(op.String())
	default:
		b.WriteString(op.String())
	}
	if op == OpBetween && symmetric {
		b.WriteString(" SYMMETRIC")
	}
	return b.String()
}

// Comparison is a binary predicate: a symbolic comparison, IS [NOT],
// [NOT] IN, [NOT] BETWEEN [SYMMETRIC], [NOT] LIKE [ESCAPE] or
// [NOT] SIMILAR TO. OpText is the operator exactly as written, which may
// span several words.
type Comparison struct {
	Wrapping
	Left      Node
	PreOp     string
	Op        CompareOp
	Not       bool
	Symmetric bool
	OpText    string
	PostOp    string
	Right     Node

	// BETWEEN start AND end
	PreAnd  string
	AndText string
	PostAnd string
	End     Node

	// LIKE pattern ESCAPE char
	PreEscape  string
	EscapeText string
	PostEscape string
	Escape     Node
}

func (c *Comparison) Kind() Kind     { return KindComparison }
func (c *Comparison) String() string { return Format(c) }

// ChangeLeft returns a copy of c with a new left operand.
func (c *Comparison) ChangeLeft(left Node) *Comparison {
	n := *c
	n.Left = left
	return &n
}

// ChangeRight returns a copy of c with a new right operand.
func (c *Comparison) ChangeRight(right Node) *Comparison {
	n := *c
	n.Right = right
	return &n
}

// ChangeOp returns a copy of c with a new operator, spelled canonically.
// A BETWEEN keeps its end operand only while the operator stays BETWEEN,
// and ESCAPE is kept only for LIKE.
func (c *Comparison) ChangeOp(op CompareOp, not bool) *Comparison {
	n := *c
	n.Op = op
	n.Not = not && op.Negatable()
	if op != OpBetween {
		n.Symmetric = false
		n.End = nil
		n.PreAnd, n.AndText, n.PostAnd = "", "", ""
	}
	if op != OpLike {
		n.Escape = nil
		n.PreEscape, n.EscapeText, n.PostEscape = "", "", ""
	}
	n.OpText = OpText(n.Op, n.Not, n.Symmetric)
	return &n
}

// Negate returns the comparison with the opposite meaning, expressed by
// changing the operator: = and <> swap, < and >= swap, > and <= swap, and
// the keyword operators toggle their NOT.
func (c *Comparison) Negate() *Comparison {
	switch c.Op {
	case OpEq:
		return c.ChangeOp(OpNe, false)
	case OpNe:
		return c.ChangeOp(OpEq, false)
	case OpLt:
		return c.ChangeOp(OpGe, false)
	case OpGe:
		return c.ChangeOp(OpLt, false)
	case OpGt:
		return c.ChangeOp(OpLe, false)
	case OpLe:
		return c.ChangeOp(OpGt, false)
	}
	n := *c
	n.Not = !c.Not
	n.OpText = OpText(n.Op, n.Not, n.Symmetric)
	return &n
}

// -----------------------------------------------------------------------------
// Function calls

// Call is a function call. Bracket calls are written ARRAY[...]; parenless
// calls such as CURRENT_TIMESTAMP have no argument list at all.
//
// The argument list prints as
//
//	Name PreParen "(" Decorator Open Args Close ")"
type Call struct {
	Wrapping
	Name      string // as written
	Parenless bool
	Bracket   bool
	PreParen  string
	Decorator *Keyword // DISTINCT or ALL; Space is the text after "("
	Open      string
	Args      List[Node]
	Close     string
	Filter    *Filter
	Over      *Over
}

func (c *Call) Kind() Kind     { return KindCall }
func (c *Call) String() string { return Format(c) }

// FunctionName returns the upper-cased function name.
func (c *Call) FunctionName() string { return strings.ToUpper(c.Name) }

// NumArgs returns the number of arguments.
func (c *Call) NumArgs() int { return c.Args.Len() }

// Arg returns the i'th argument, or nil.
func (c *Call) Arg(i int) Node {
	if i < 0 || i >= c.Args.Len() {
		return nil
	}
	return c.Args.At(i)
}

// ChangeArgs returns a copy of c with the given arguments.
func (c *Call) ChangeArgs(args List[Node]) *Call {
	n := *c
	n.Args = args
	return &n
}

// ChangeArg returns a copy of c with the i'th argument replaced.
func (c *Call) ChangeArg(i int, arg Node) *Call {
	return c.ChangeArgs(c.Args.Replace(i, arg))
}

// Filter is the FILTER (WHERE ...) clause of an aggregate call.
type Filter struct {
	Keyword  Keyword
	PreParen string
	Where    Keyword // Space is the text after "("
	Space    string
	Expr     Node
	Close    string
}

// Over is the window of a call: OVER name, or OVER (PARTITION BY ... ORDER BY ...).
type Over struct {
	Keyword     Keyword
	Space       string
	Name        *Ident
	PartitionBy *ListClause[Node]
	OrderBy     *ListClause[*OrderItem]
	Close       string
}

// ListClause is a keyword followed by a list, like ORDER BY a, b.
type ListClause[T Node] struct {
	Keyword Keyword
	Space   string
	Items   List[T]
}

// TypeName is a bare word argument: the target type of a CAST or the unit
// of EXTRACT, TIMESTAMPADD and FLOOR(x TO unit).
type TypeName struct {
	Wrapping
	Text string
}

func (t *TypeName) Kind() Kind     { return KindTypeName }
func (t *TypeName) String() string { return Format(t) }

// -----------------------------------------------------------------------------
// CASE

// Case is a searched (CASE WHEN ...) or simple (CASE x WHEN ...) case.
type Case struct {
	Wrapping
	Keyword    string
	PreSubject string
	Subject    Node // nil for a searched case
	Whens      []*WhenThen
	PreElse    string
	ElseText   string
	PostElse   string
	Else       Node
	PreEnd     string
	End        string
}

func (c *Case) Kind() Kind     { return KindCase }
func (c *Case) String() string { return Format(c) }

// WhenThen is one WHEN ... THEN ... branch. Unlike other nodes it owns the
// text in front of it, which is the text after CASE, the subject or the
// previous branch.
type WhenThen struct {
	Wrapping
	Space    string
	When     string
	PostWhen string
	Cond     Node
	PreThen  string
	Then     string
	PostThen string
	Result   Node
}

func (w *WhenThen) Kind() Kind     { return KindWhenThen }
func (w *WhenThen) String() string { return Format(w) }

// -----------------------------------------------------------------------------
// Records, aliases and list items

// Record is a parenthesized list of values: (a, b) or ROW(a, b). The
// right-hand side of IN is always a Record unless it is a sub-query.
type Record struct {
	Wrapping
	Keyword  string // ROW, or empty
	PreParen string
	Open     string
	Items    List[Node]
	Close    string
}

func (r *Record) Kind() Kind     { return KindRecord }
func (r *Record) String() string { return Format(r) }

// ChangeItems returns a copy of r with the given items.
func (r *Record) ChangeItems(items List[Node]) *Record {
	n := *r
	n.Items = items
	return &n
}

// Alias is an expression with a name: expr AS name, or expr name.
// As is empty for an implicit alias.
type Alias struct {
	Wrapping
	Expr   Node
	PreAs  string
	As     string
	PostAs string
	Name   Ident
}

func (a *Alias) Kind() Kind     { return KindAlias }
func (a *Alias) String() string { return Format(a) }

// ChangeExpr returns a copy of a naming a different expression.
func (a *Alias) ChangeExpr(expr Node) *Alias {
	n := *a
	n.Expr = expr
	return &n
}

// OrderItem is an ORDER BY element.
type OrderItem struct {
	Wrapping
	Expr      Node
	Direction *Keyword // ASC or DESC
}

func (o *OrderItem) Kind() Kind     { return KindOrderItem }
func (o *OrderItem) String() string { return Format(o) }

// Desc reports whether the item sorts descending.
func (o *OrderItem) Desc() bool {
	return o.Direction != nil && strings.EqualFold(o.Direction.Text, "DESC")
}

// WithPart is one name AS (query) entry of a WITH clause.
type WithPart struct {
	Wrapping
	Name   Ident
	PreAs  string
	As     string
	PostAs string
	Query  Node
}

func (w *WithPart) Kind() Kind     { return KindWithPart }
func (w *WithPart) String() string { return Format(w) }

// -----------------------------------------------------------------------------
// Literal helpers

// formatNumber returns the canonical spelling of a number.
func formatNumber(v any) string {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "0"
}

// FormatTimestamp returns t in the format of a TIMESTAMP literal:
// milliseconds are only written when non-zero.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.000")
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses the content of a TIMESTAMP or DATE literal as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
