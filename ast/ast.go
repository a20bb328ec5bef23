// Package ast defines the abstract syntax tree for Druid SQL.
//
// Trees keep every formatting detail of the text they were parsed from:
// keyword spelling, whitespace, comments and parentheses are stored as
// fields, so printing a parsed tree reproduces the input byte for byte.
// Nodes are immutable. Methods that change a node return a shallow copy
// that shares all untouched children with the original.
package ast

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() Kind
	String() string
	wrapping() *Wrapping
}

// Kind identifies the concrete type of a Node.
type Kind int

const (
	KindLiteral Kind = iota
	KindColumn
	KindTable
	KindStar
	KindPlaceholder
	KindUnary
	KindMulti
	KindComparison
	KindCall
	KindTypeName
	KindCase
	KindWhenThen
	KindRecord
	KindAlias
	KindOrderItem
	KindWithPart
	KindQuery
)

var kinds = [...]string{
	KindLiteral:     "Literal",
	KindColumn:      "Column",
	KindTable:       "Table",
	KindStar:        "Star",
	KindPlaceholder: "Placeholder",
	KindUnary:       "Unary",
	KindMulti:       "Multi",
	KindComparison:  "Comparison",
	KindCall:        "Call",
	KindTypeName:    "TypeName",
	KindCase:        "Case",
	KindWhenThen:    "WhenThen",
	KindRecord:      "Record",
	KindAlias:       "Alias",
	KindOrderItem:   "OrderItem",
	KindWithPart:    "WithPart",
	KindQuery:       "Query",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kinds) {
		return kinds[k]
	}
	return "Unknown"
}

// -----------------------------------------------------------------------------
// Formatting data

// Paren is one pair of parentheses around a node.
// Left is the text after "(" and Right the text before ")".
type Paren struct {
	Left  string
	Right string
}

// Padding is the text before and after a top level node.
// The parser puts leading and trailing whitespace, comments and a final
// semicolon of the input here.
type Padding struct {
	Before string
	After  string
}

// Wrapping is embedded in every node. It holds the parentheses around the
// node, innermost first, and the padding of a top level node.
type Wrapping struct {
	Parens  []Paren
	Padding Padding
}

func (w *Wrapping) wrapping() *Wrapping { return w }

// Separator is the connective between two list items, such as a comma or
// an AND, with the exact text on either side of it.
type Separator struct {
	Pre  string
	Text string
	Post string
}

// Sep returns a separator surrounded by single spaces.
func Sep(text string) Separator {
	return Separator{Pre: " ", Text: text, Post: " "}
}

// Separators used by constructed nodes.
var (
	// Comma separates function arguments and record items.
	Comma = Separator{Text: ","}
	// CommaSpace separates clause list items.
	CommaSpace = Separator{Text: ",", Post: " "}
)

// Keyword is a fixed keyword as written in the source together with the
// whitespace and comments in front of it. Multi-word keywords such as
// "GROUP BY" keep their inner spacing in Text.
type Keyword struct {
	Space string
	Text  string
}

// Kw returns a keyword preceded by space.
func Kw(space, text string) Keyword {
	return Keyword{Space: space, Text: text}
}

// -----------------------------------------------------------------------------
// Lists

// List is an ordered list of nodes with exactly Len()-1 separators.
type List[T Node] struct {
	Values     []T
	Separators []Separator
}

// NewList returns a list of values joined by sep.
func NewList[T Node](sep Separator, values ...T) List[T] {
	l := List[T]{Values: values}
	for i := 1; i < len(values); i++ {
		l.Separators = append(l.Separators, sep)
	}
	return l
}

// Len returns the number of values in the list.
func (l List[T]) Len() int { return len(l.Values) }

// At returns the i'th value.
func (l List[T]) At(i int) T { return l.Values[i] }

// Insert returns a new list with v at index i. The separator goes between
// v and its neighbour; an index past the end appends.
func (l List[T]) Insert(i int, v T, sep Separator) List[T] {
	n := len(l.Values)
	if i < 0 || i > n {
		i = n
	}
	values := make([]T, 0, n+1)
	values = append(values, l.Values[:i]...)
	values = append(values, v)
	values = append(values, l.Values[i:]...)
	if n == 0 {
		return List[T]{Values: values}
	}
	seps := make([]Separator, 0, n)
	if i == n {
		seps = append(seps, l.Separators...)
		seps = append(seps, sep)
	} else {
		seps = append(seps, l.Separators[:i]...)
		seps = append(seps, sep)
		seps = append(seps, l.Separators[i:]...)
	}
	return List[T]{Values: values, Separators: seps}
}

// Append returns a new list with v added at the end.
func (l List[T]) Append(v T, sep Separator) List[T] {
	return l.Insert(len(l.Values), v, sep)
}

// Remove returns a new list without the i'th value. The separator after the
// value is dropped, or the one before it when it is the last value.
func (l List[T]) Remove(i int) List[T] {
	n := len(l.Values)
	if i < 0 || i >= n {
		return l
	}
	if n == 1 {
		return List[T]{}
	}
	values := make([]T, 0, n-1)
	values = append(values, l.Values[:i]...)
	values = append(values, l.Values[i+1:]...)
	s := i
	if s == n-1 {
		s = i - 1
	}
	seps := make([]Separator, 0, n-2)
	seps = append(seps, l.Separators[:s]...)
	seps = append(seps, l.Separators[s+1:]...)
	return List[T]{Values: values, Separators: seps}
}

// Replace returns a new list with the i'th value replaced by v.
func (l List[T]) Replace(i int, v T) List[T] {
	values := make([]T, len(l.Values))
	copy(values, l.Values)
	values[i] = v
	return List[T]{Values: values, Separators: l.Separators}
}

// -----------------------------------------------------------------------------
// Parentheses

// Parens returns the parentheses around n, innermost first.
func Parens(n Node) []Paren {
	return n.wrapping().Parens
}

// HasParens reports whether n is wrapped in at least one pair of parentheses.
func HasParens(n Node) bool {
	return len(n.wrapping().Parens) > 0
}

// ChangeParens returns a copy of n wrapped in exactly parens.
func ChangeParens[T Node](n T, parens []Paren) T {
	c := shallowCopy(n).(T)
	c.wrapping().Parens = parens
	return c
}

// EnsureParens returns n wrapped in parentheses, adding a pair if n has none.
func EnsureParens[T Node](n T) T {
	if HasParens(n) {
		return n
	}
	return ChangeParens(n, []Paren{{}})
}

// StripParens returns n without any parentheses or padding.
func StripParens[T Node](n T) T {
	w := n.wrapping()
	if len(w.Parens) == 0 && w.Padding == (Padding{}) {
		return n
	}
	c := shallowCopy(n).(T)
	cw := c.wrapping()
	cw.Parens = nil
	cw.Padding = Padding{}
	return c
}

// ChangePadding returns a copy of n with the given padding.
func ChangePadding[T Node](n T, p Padding) T {
	c := shallowCopy(n).(T)
	c.wrapping().Padding = p
	return c
}

// addOuterParens returns n wrapped additionally in parens, which are outside
// of any parentheses n already has.
func addOuterParens(n Node, parens []Paren, padding Padding) Node {
	if len(parens) == 0 && padding == (Padding{}) {
		return n
	}
	c := shallowCopy(n)
	w := c.wrapping()
	ps := make([]Paren, 0, len(w.Parens)+len(parens))
	ps = append(ps, w.Parens...)
	ps = append(ps, parens...)
	w.Parens = ps
	if padding != (Padding{}) {
		w.Padding = padding
	}
	return c
}

func shallowCopy(n Node) Node {
	switch n := n.(type) {
	case *Literal:
		c := *n
		return &c
	case *Column:
		c := *n
		return &c
	case *Table:
		c := *n
		return &c
	case *Star:
		c := *n
		return &c
	case *Placeholder:
		c := *n
		return &c
	case *Unary:
		c := *n
		return &c
	case *Multi:
		c := *n
		return &c
	case *Comparison:
		c := *n
		return &c
	case *Call:
		c := *n
		return &c
	case *TypeName:
		c := *n
		return &c
	case *Case:
		c := *n
		return &c
	case *WhenThen:
		c := *n
		return &c
	case *Record:
		c := *n
		return &c
	case *Alias:
		c := *n
		return &c
	case *OrderItem:
		c := *n
		return &c
	case *WithPart:
		c := *n
		return &c
	case *Query:
		c := *n
		return &c
	}
	panic("ast: unknown node type")
}

// Equal reports whether a and b print to the same text.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// Equivalent reports whether a and b are the same expression once
// formatting is ignored.
func Equivalent(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Raw(a) == Raw(b)
}
