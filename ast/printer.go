package ast

import (
	"strings"
	"unicode"

	"github.com/sqlc-dev/druidsql/lexer"
	"github.com/sqlc-dev/druidsql/token"
)

// Format returns the text of n exactly as it was parsed or constructed.
func Format(n Node) string {
	p := printer{}
	p.node(n)
	return p.String()
}

// Raw returns n in canonical form: spacing, keyword case and identifier
// quoting are normalized and comments are dropped. Two trees with the same
// raw form differ only in formatting.
func Raw(n Node) string {
	p := printer{raw: true}
	p.node(n)
	return p.String()
}

type printer struct {
	strings.Builder
	raw bool
}

// text writes s, or canonical in raw mode.
func (p *printer) text(s, canonical string) {
	if p.raw {
		p.WriteString(canonical)
		return
	}
	p.WriteString(s)
}

// keyword writes a keyword and the text in front of it.
func (p *printer) keyword(k Keyword, space string) {
	p.text(k.Space, space)
	p.text(k.Text, canonicalWords(k.Text))
}

func (p *printer) sep(s Separator) {
	if p.raw {
		if s.Text == "," {
			p.WriteString(", ")
		} else {
			p.WriteString(" " + canonicalWords(s.Text) + " ")
		}
		return
	}
	p.WriteString(s.Pre)
	p.WriteString(s.Text)
	p.WriteString(s.Post)
}

func (p *printer) ident(i Ident) {
	if p.raw {
		p.WriteString(QuoteIdent(i.Name))
		return
	}
	p.WriteString(i.String())
}

func printList[T Node](p *printer, l List[T]) {
	for i, v := range l.Values {
		if i > 0 {
			p.sep(l.Separators[i-1])
		}
		p.node(v)
	}
}

func printListClause[T Node](p *printer, c *ListClause[T], space string) {
	p.keyword(c.Keyword, space)
	p.text(c.Space, " ")
	printList(p, c.Items)
}

func (p *printer) exprClause(c *ExprClause, space string) {
	p.keyword(c.Keyword, space)
	p.text(c.Space, " ")
	p.node(c.Expr)
}

func (p *printer) node(n Node) {
	w := n.wrapping()
	if !p.raw {
		p.WriteString(w.Padding.Before)
	}
	for i := len(w.Parens) - 1; i >= 0; i-- {
		p.WriteString("(")
		p.text(w.Parens[i].Left, "")
	}
	p.inner(n)
	for _, paren := range w.Parens {
		p.text(paren.Right, "")
		p.WriteString(")")
	}
	if !p.raw {
		p.WriteString(w.Padding.After)
	}
}

func (p *printer) inner(n Node) {
	switch n := n.(type) {
	case *Literal:
		p.literal(n)

	case *Column:
		for i, part := range n.Parts {
			if i > 0 {
				p.dot(n.Dots[i-1])
			}
			p.ident(part)
		}

	case *Table:
		for i, part := range n.Parts {
			if i > 0 {
				p.dot(n.Dots[i-1])
			}
			p.ident(part)
		}

	case *Star:
		for i, part := range n.Qualifier {
			p.ident(part)
			p.dot(n.Dots[i])
		}
		p.WriteString("*")

	case *Placeholder:
		p.WriteString("?")

	case *Unary:
		op := strings.ToUpper(n.Op)
		p.text(n.Op, op)
		space := ""
		if isWord(op) || signedOperand(n.Operand) {
			space = " "
		}
		p.text(n.Space, space)
		p.node(n.Operand)

	case *Multi:
		printList(p, n.Args)

	case *Comparison:
		p.node(n.Left)
		p.text(n.PreOp, " ")
		p.text(n.OpText, OpText(n.Op, n.Not, n.Symmetric))
		p.text(n.PostOp, " ")
		p.node(n.Right)
		if n.End != nil {
			p.text(n.PreAnd, " ")
			p.text(n.AndText, "AND")
			p.text(n.PostAnd, " ")
			p.node(n.End)
		}
		if n.Escape != nil {
			p.text(n.PreEscape, " ")
			p.text(n.EscapeText, "ESCAPE")
			p.text(n.PostEscape, " ")
			p.node(n.Escape)
		}

	case *Call:
		p.call(n)

	case *TypeName:
		p.text(n.Text, canonicalWords(n.Text))

	case *Case:
		p.text(n.Keyword, "CASE")
		if n.Subject != nil {
			p.text(n.PreSubject, " ")
			p.node(n.Subject)
		}
		for _, w := range n.Whens {
			p.node(w)
		}
		if n.Else != nil {
			p.text(n.PreElse, " ")
			p.text(n.ElseText, "ELSE")
			p.text(n.PostElse, " ")
			p.node(n.Else)
		}
		p.text(n.PreEnd, " ")
		p.text(n.End, "END")

	case *WhenThen:
		p.text(n.Space, " ")
		p.text(n.When, "WHEN")
		p.text(n.PostWhen, " ")
		p.node(n.Cond)
		p.text(n.PreThen, " ")
		p.text(n.Then, "THEN")
		p.text(n.PostThen, " ")
		p.node(n.Result)

	case *Record:
		if n.Keyword != "" {
			p.text(n.Keyword, "ROW")
			p.text(n.PreParen, "")
		}
		p.WriteString("(")
		p.text(n.Open, "")
		printList(p, n.Items)
		p.text(n.Close, "")
		p.WriteString(")")

	case *Alias:
		p.node(n.Expr)
		p.text(n.PreAs, " ")
		if n.As != "" {
			p.text(n.As, "AS")
			p.text(n.PostAs, " ")
		} else if p.raw {
			p.WriteString("AS ")
		}
		p.ident(n.Name)

	case *OrderItem:
		p.node(n.Expr)
		if n.Direction != nil {
			p.keyword(*n.Direction, " ")
		}

	case *WithPart:
		p.ident(n.Name)
		p.text(n.PreAs, " ")
		p.text(n.As, "AS")
		p.text(n.PostAs, " ")
		p.node(n.Query)

	case *Query:
		p.query(n)

	default:
		panic("ast: unknown node type")
	}
}

func (p *printer) dot(s Separator) {
	if p.raw {
		p.WriteString(".")
		return
	}
	p.sep(s)
}

func (p *printer) literal(n *Literal) {
	if !p.raw {
		p.WriteString(n.Text)
		return
	}
	switch n.Type {
	case NullLiteral:
		p.WriteString("NULL")
	case BooleanLiteral:
		if v, _ := n.Value.(bool); v {
			p.WriteString("TRUE")
		} else {
			p.WriteString("FALSE")
		}
	case StringLiteral:
		s, _ := n.Value.(string)
		p.WriteString(QuoteString(s))
	case TimestampLiteral:
		p.WriteString("TIMESTAMP " + n.quotedPart())
	case DateLiteral:
		p.WriteString("DATE " + n.quotedPart())
	case IntervalLiteral:
		iv, _ := n.Value.(Interval)
		p.WriteString("INTERVAL " + n.quotedPart() + " " + canonicalWords(iv.Unit))
	default:
		p.WriteString(n.Text)
	}
}

func (p *printer) call(n *Call) {
	p.text(n.Name, strings.ToUpper(n.Name))
	if n.Parenless {
		return
	}
	p.text(n.PreParen, "")
	if n.Bracket {
		p.WriteString("[")
	} else {
		p.WriteString("(")
	}
	if n.Decorator != nil {
		p.keyword(*n.Decorator, "")
		if p.raw {
			p.WriteString(" ")
		}
	}
	p.text(n.Open, "")
	printList(p, n.Args)
	p.text(n.Close, "")
	if n.Bracket {
		p.WriteString("]")
	} else {
		p.WriteString(")")
	}
	if f := n.Filter; f != nil {
		p.keyword(f.Keyword, " ")
		p.text(f.PreParen, " ")
		p.WriteString("(")
		p.keyword(f.Where, "")
		p.text(f.Space, " ")
		p.node(f.Expr)
		p.text(f.Close, "")
		p.WriteString(")")
	}
	if o := n.Over; o != nil {
		p.keyword(o.Keyword, " ")
		p.text(o.Space, " ")
		if o.Name != nil {
			p.ident(*o.Name)
			return
		}
		p.WriteString("(")
		first := ""
		if o.PartitionBy != nil {
			printListClause(p, o.PartitionBy, first)
			first = " "
		}
		if o.OrderBy != nil {
			printListClause(p, o.OrderBy, first)
		}
		p.text(o.Close, "")
		p.WriteString(")")
	}
}

func (p *printer) query(q *Query) {
	// In raw mode every keyword after the first is preceded by one space.
	first := true
	space := func() string {
		if first {
			first = false
			return ""
		}
		return " "
	}

	if q.Explain != nil {
		p.keyword(*q.Explain, space())
	}
	if ins := q.Insert; ins != nil {
		p.keyword(ins.Keyword, space())
		p.text(ins.Space, " ")
		p.node(ins.Table)
		if ow := ins.Overwrite; ow != nil {
			p.keyword(ow.Keyword, " ")
			if ow.All != nil {
				p.keyword(*ow.All, " ")
			}
			if ow.Where != nil {
				p.exprClause(ow.Where, " ")
			}
		}
	}
	if q.With != nil {
		printListClause(p, q.With, space())
	}
	p.keyword(q.Select, space())
	if q.Distinct != nil {
		p.keyword(*q.Distinct, " ")
	}
	p.text(q.Space, " ")
	printList(p, q.Columns)

	if f := q.From; f != nil {
		p.keyword(f.Keyword, " ")
		p.text(f.Space, " ")
		printList(p, f.Tables)
		for _, j := range f.Joins {
			p.keyword(j.Type, " ")
			p.text(j.Space, " ")
			p.node(j.Table)
			if j.On != nil {
				p.exprClause(j.On, " ")
			}
		}
	}
	if q.Where != nil {
		p.exprClause(q.Where, " ")
	}
	if g := q.GroupBy; g != nil {
		p.keyword(g.Keyword, " ")
		if g.Decorator != nil {
			p.keyword(*g.Decorator, " ")
			p.text(g.PreParen, " ")
			p.WriteString("(")
			p.text(g.Space, "")
		} else {
			p.text(g.Space, " ")
		}
		printList(p, g.Items)
		if g.Decorator != nil {
			p.text(g.Close, "")
			p.WriteString(")")
		}
	}
	if q.Having != nil {
		p.exprClause(q.Having, " ")
	}
	if q.OrderBy != nil {
		printListClause(p, q.OrderBy, " ")
	}
	if q.Limit != nil {
		p.exprClause(q.Limit, " ")
	}
	if q.Offset != nil {
		p.exprClause(q.Offset, " ")
	}
	if u := q.Union; u != nil {
		p.keyword(u.Keyword, " ")
		p.text(u.Space, " ")
		p.node(u.Query)
	}
	if q.PartitionedBy != nil {
		p.exprClause(q.PartitionedBy, " ")
	}
	if q.ClusteredBy != nil {
		printListClause(p, q.ClusteredBy, " ")
	}
}

// canonicalWords upper-cases s, drops comments and collapses the trivia
// between tokens to a single space. Tokens written without trivia between
// them stay adjacent, so DECIMAL(10,2) keeps its shape.
func canonicalWords(s string) string {
	var b strings.Builder
	for _, item := range lexer.Tokenize(s) {
		if item.Token == token.EOF {
			break
		}
		if b.Len() > 0 && item.Space != "" {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ToUpper(item.Raw))
	}
	return b.String()
}

// signedOperand reports whether a sign directly in front of n would change
// how n is read back: -2 is a literal and -- starts a comment.
func signedOperand(n Node) bool {
	if HasParens(n) {
		return false
	}
	switch n := n.(type) {
	case *Unary:
		return true
	case *Literal:
		return n.Type == NumberLiteral
	}
	return false
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
