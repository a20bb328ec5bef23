package parser

import (
	"strconv"
	"strings"

	"github.com/sqlc-dev/druidsql/ast"
	"github.com/sqlc-dev/druidsql/token"
)

// Operator precedence levels
const (
	LOWEST   = iota
	OR_PREC  // OR
	AND_PREC // AND
	NOT_PREC // NOT
	COMPARE  // =, <>, <, >, <=, >=, IS, IN, BETWEEN, LIKE, SIMILAR TO
	ADD_PREC // +, -, ||
	MUL_PREC // *, /, %
	UNARY    // -x, +x
	HIGHEST
)

var multiOps = map[token.Token]ast.MultiOp{
	token.AND:      ast.OpAnd,
	token.OR:       ast.OpOr,
	token.PLUS:     ast.OpAdd,
	token.MINUS:    ast.OpSub,
	token.ASTERISK: ast.OpMul,
	token.SLASH:    ast.OpDiv,
	token.PERCENT:  ast.OpMod,
	token.CONCAT:   ast.OpConcat,
}

var compareOps = map[token.Token]ast.CompareOp{
	token.EQ:  ast.OpEq,
	token.NEQ: ast.OpNe,
	token.LT:  ast.OpLt,
	token.LTE: ast.OpLe,
	token.GT:  ast.OpGt,
	token.GTE: ast.OpGe,
}

func (p *Parser) precedence(tok token.Token) int {
	switch tok {
	case token.OR:
		return OR_PREC
	case token.AND:
		return AND_PREC
	case token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE,
		token.IS, token.IN, token.BETWEEN, token.LIKE, token.SIMILAR:
		return COMPARE
	case token.PLUS, token.MINUS, token.CONCAT:
		return ADD_PREC
	case token.ASTERISK, token.SLASH, token.PERCENT:
		return MUL_PREC
	default:
		return LOWEST
	}
}

// precedenceForCurrent returns the precedence of the current token as an
// infix operator. NOT is only infix in front of IN, LIKE, BETWEEN and
// SIMILAR.
func (p *Parser) precedenceForCurrent() int {
	if p.currentIs(token.NOT) {
		switch p.peek().Token {
		case token.IN, token.LIKE, token.BETWEEN, token.SIMILAR:
			return COMPARE
		}
		return LOWEST
	}
	return p.precedence(p.current.Token)
}

func (p *Parser) parseExpression(precedence int) ast.Node {
	defer p.enter()()

	left := p.parsePrefixExpression()
	for !p.currentIs(token.EOF) && precedence < p.precedenceForCurrent() {
		left = p.parseInfixExpression(left)
	}
	return left
}

func (p *Parser) parseInfixExpression(left ast.Node) ast.Node {
	if _, ok := multiOps[p.current.Token]; ok {
		return p.parseMulti(left)
	}
	return p.parseComparison(left)
}

// parseMulti parses a binary operator. Chains of the same operator
// collect into one Multi unless the left side is parenthesized.
func (p *Parser) parseMulti(left ast.Node) ast.Node {
	op := multiOps[p.current.Token]
	prec := p.precedenceForCurrent()
	sep := p.separator()
	right := p.parseExpression(prec)

	if m, ok := left.(*ast.Multi); ok && m.Op == op && !ast.HasParens(m) {
		return m.ChangeArgs(m.Args.Append(right, sep))
	}
	return &ast.Multi{
		Op: op,
		Args: ast.List[ast.Node]{
			Values:     []ast.Node{left, right},
			Separators: []ast.Separator{sep},
		},
	}
}

// separator consumes the current token as a list separator.
func (p *Parser) separator() ast.Separator {
	sep := ast.Separator{Pre: p.space(), Text: p.word()}
	sep.Post = p.space()
	return sep
}

func (p *Parser) parseComparison(left ast.Node) ast.Node {
	defer p.enter()()

	c := &ast.Comparison{Left: left, PreOp: p.space()}
	if op, ok := compareOps[p.current.Token]; ok {
		c.Op = op
		c.OpText = p.word()
	} else if p.currentIs(token.IS) {
		c.Op = ast.OpIs
		c.OpText = p.word()
		if p.currentIs(token.NOT) {
			c.OpText += p.space() + p.word()
			c.Not = true
		}
	} else {
		if p.currentIs(token.NOT) {
			c.OpText = p.word() + p.space()
			c.Not = true
		}
		switch p.current.Token {
		case token.IN:
			c.Op = ast.OpIn
			c.OpText += p.word()
		case token.LIKE:
			c.Op = ast.OpLike
			c.OpText += p.word()
		case token.BETWEEN:
			c.Op = ast.OpBetween
			c.OpText += p.word()
			if p.currentIs(token.SYMMETRIC) {
				c.OpText += p.space() + p.word()
				c.Symmetric = true
			}
		case token.SIMILAR:
			c.Op = ast.OpSimilarTo
			c.OpText += p.word() + p.space() + p.expect(token.TO)
		default:
			p.fail("IN, LIKE, BETWEEN or SIMILAR TO")
		}
	}
	c.PostOp = p.space()

	switch c.Op {
	case ast.OpIn:
		if p.currentIs(token.LPAREN) && !p.peekIs(token.SELECT) && !p.peekIs(token.WITH) {
			c.Right = p.parseRecord()
		} else {
			c.Right = p.parseExpression(COMPARE)
		}

	case ast.OpBetween:
		c.Right = p.parseExpression(COMPARE)
		c.PreAnd = p.space()
		c.AndText = p.expect(token.AND)
		c.PostAnd = p.space()
		// A BETWEEN directly after the end operand nests into it:
		// x BETWEEN a AND b BETWEEN c AND d is x BETWEEN a AND (b BETWEEN c AND d).
		end := p.parseExpression(COMPARE)
		for p.currentIs(token.BETWEEN) || (p.currentIs(token.NOT) && p.peekIs(token.BETWEEN)) {
			end = p.parseComparison(end)
		}
		c.End = end

	case ast.OpLike, ast.OpSimilarTo:
		c.Right = p.parseExpression(COMPARE)
		if p.currentIs(token.ESCAPE) {
			c.PreEscape = p.space()
			c.EscapeText = p.word()
			c.PostEscape = p.space()
			c.Escape = p.parseExpression(COMPARE)
		}

	default:
		c.Right = p.parseExpression(COMPARE)
	}
	return c
}

// -----------------------------------------------------------------------------
// Prefix expressions

func (p *Parser) parsePrefixExpression() ast.Node {
	switch p.current.Token {
	case token.NUMBER:
		return p.parseNumber("")
	case token.STRING:
		value := p.current.Value
		return &ast.Literal{Type: ast.StringLiteral, Value: value, Text: p.word()}
	case token.TRUE, token.FALSE:
		value := p.currentIs(token.TRUE)
		return &ast.Literal{Type: ast.BooleanLiteral, Value: value, Text: p.word()}
	case token.NULL:
		return &ast.Literal{Type: ast.NullLiteral, Text: p.word()}
	case token.TIMESTAMP, token.DATE:
		return p.parseTimeLiteral()
	case token.INTERVAL:
		return p.parseInterval()
	case token.QUESTION:
		p.word()
		return &ast.Placeholder{}
	case token.ASTERISK:
		p.word()
		return &ast.Star{}
	case token.IDENT:
		return p.parseIdentifierExpression()
	case token.LPAREN:
		return p.parseParenExpression()
	case token.CASE:
		return p.parseCase()
	case token.ROW:
		return p.parseRecord()
	case token.NOT:
		return p.parseUnary(NOT_PREC)
	case token.MINUS:
		next := p.peek()
		if next.Token == token.NUMBER && next.Space == "" {
			p.word()
			return p.parseNumber("-")
		}
		return p.parseUnary(UNARY)
	case token.PLUS:
		return p.parseUnary(UNARY)
	case token.CAST:
		if p.peekIs(token.LPAREN) {
			return p.parseCall()
		}
	case token.ARRAY:
		if p.peekIs(token.LBRACKET) || p.peekIs(token.LPAREN) {
			return p.parseCall()
		}
	default:
		if p.current.Token.IsKeyword() && p.peekIs(token.LPAREN) &&
			p.config.Functions.IsKeywordFunction(p.current.Raw) {
			return p.parseCall()
		}
	}
	p.fail("expression")
	return nil
}

func (p *Parser) parseNumber(sign string) ast.Node {
	if !p.currentIs(token.NUMBER) {
		p.fail("number")
	}
	text := sign + p.current.Raw
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		p.word()
		return &ast.Literal{Type: ast.NumberLiteral, Value: v, Text: text}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.fail("number")
	}
	p.word()
	return &ast.Literal{Type: ast.NumberLiteral, Value: v, Text: text}
}

// parseTimeLiteral parses TIMESTAMP '...' or DATE '...'.
func (p *Parser) parseTimeLiteral() ast.Node {
	typ := ast.TimestampLiteral
	if p.currentIs(token.DATE) {
		typ = ast.DateLiteral
	}
	if !p.peekIs(token.STRING) {
		p.fail("expression")
	}
	text := p.word()
	text += p.space()
	value := p.current.Value
	text += p.word()

	lit := &ast.Literal{Type: typ, Value: value, Text: text}
	if t, ok := ast.ParseTimestamp(value); ok {
		lit.Value = t
	}
	return lit
}

// parseInterval parses INTERVAL '1' DAY.
func (p *Parser) parseInterval() ast.Node {
	text := p.word()
	text += p.space()
	if !p.currentIs(token.STRING) {
		p.fail("string")
	}
	value := p.current.Value
	text += p.word()
	text += p.space()
	if !p.currentIs(token.IDENT) || p.current.Quoted {
		p.fail("interval unit")
	}
	unit := p.current.Raw
	text += p.word()
	return &ast.Literal{
		Type:  ast.IntervalLiteral,
		Value: ast.Interval{Value: value, Unit: unit},
		Text:  text,
	}
}

func (p *Parser) parseUnary(precedence int) ast.Node {
	op := p.word()
	space := p.space()
	operand := p.parseExpression(precedence)
	return &ast.Unary{Op: op, Space: space, Operand: operand}
}

// parseIdentifierExpression parses a column reference, t.*, a function call
// or a parenless function.
func (p *Parser) parseIdentifierExpression() ast.Node {
	if !p.current.Quoted {
		if p.peekIs(token.LPAREN) {
			return p.parseCall()
		}
		if p.config.Functions.IsParenless(p.current.Raw) {
			return &ast.Call{Name: p.word(), Parenless: true}
		}
	}

	parts := []ast.Ident{p.parseIdent()}
	var dots []ast.Separator
	for p.currentIs(token.DOT) {
		dot := p.separator()
		if p.currentIs(token.ASTERISK) {
			p.word()
			return &ast.Star{Qualifier: parts, Dots: append(dots, dot)}
		}
		dots = append(dots, dot)
		parts = append(parts, p.parseIdent())
	}
	return &ast.Column{Parts: parts, Dots: dots}
}

// parseParenExpression parses a parenthesized expression or sub-query, or
// a record (a, b).
func (p *Parser) parseParenExpression() ast.Node {
	p.expect(token.LPAREN)
	left := p.space()
	if p.currentIs(token.RPAREN) {
		p.word()
		return &ast.Record{Open: left}
	}

	var inner ast.Node
	if p.currentIs(token.SELECT) || p.currentIs(token.WITH) {
		q := &ast.Query{}
		p.parseQueryBody(q)
		inner = q
	} else {
		inner = p.parseExpression(LOWEST)
		if p.currentIs(token.COMMA) {
			r := &ast.Record{Open: left, Items: parseListFrom(p, inner, p.parseExpr)}
			r.Close = p.space()
			p.expect(token.RPAREN)
			return r
		}
	}

	right := p.space()
	p.expect(token.RPAREN)
	parens := append(append([]ast.Paren(nil), ast.Parens(inner)...), ast.Paren{Left: left, Right: right})
	return ast.ChangeParens(inner, parens)
}

// parseRecord parses (a, b) or ROW(a, b).
func (p *Parser) parseRecord() *ast.Record {
	r := &ast.Record{}
	if p.currentIs(token.ROW) {
		r.Keyword = p.word()
		r.PreParen = p.space()
	}
	p.expect(token.LPAREN)
	r.Open = p.space()
	if !p.currentIs(token.RPAREN) {
		r.Items = parseList(p, p.parseExpr)
	}
	r.Close = p.space()
	p.expect(token.RPAREN)
	return r
}

func (p *Parser) parseCase() ast.Node {
	c := &ast.Case{Keyword: p.word()}
	if !p.currentIs(token.WHEN) {
		c.PreSubject = p.space()
		c.Subject = p.parseExpression(LOWEST)
	}
	for p.currentIs(token.WHEN) {
		w := &ast.WhenThen{Space: p.space(), When: p.word()}
		w.PostWhen = p.space()
		w.Cond = p.parseExpression(LOWEST)
		w.PreThen = p.space()
		w.Then = p.expect(token.THEN)
		w.PostThen = p.space()
		w.Result = p.parseExpression(LOWEST)
		c.Whens = append(c.Whens, w)
	}
	if len(c.Whens) == 0 {
		p.fail("WHEN")
	}
	if p.currentIs(token.ELSE) {
		c.PreElse = p.space()
		c.ElseText = p.word()
		c.PostElse = p.space()
		c.Else = p.parseExpression(LOWEST)
	}
	c.PreEnd = p.space()
	c.End = p.expect(token.END)
	return c
}

// -----------------------------------------------------------------------------
// Function calls

func (p *Parser) parseCall() ast.Node {
	name := p.current.Raw
	if p.config.Functions.Strict && !p.config.Functions.IsKnown(name) {
		p.fail("known function")
	}
	p.word()

	c := &ast.Call{Name: name, PreParen: p.space()}
	closing := token.RPAREN
	if p.currentIs(token.LBRACKET) {
		c.Bracket = true
		closing = token.RBRACKET
		p.word()
	} else {
		p.expect(token.LPAREN)
	}
	if p.currentIs(token.DISTINCT) || (p.currentIs(token.ALL) && !c.Bracket) {
		d := p.keyword()
		c.Decorator = &d
	}
	c.Open = p.space()
	if !p.currentIs(closing) {
		c.Args = p.parseArguments(strings.ToUpper(name))
	}
	c.Close = p.space()
	p.expect(closing)

	if p.currentIs(token.FILTER) {
		c.Filter = p.parseFilter()
	}
	if p.currentIs(token.OVER) {
		c.Over = p.parseOver()
	}
	return c
}

// parseArguments parses the argument list of the named function, including
// the keyword separated forms CAST(x AS t), EXTRACT(unit FROM x),
// POSITION(a IN b [FROM n]) and FLOOR(x TO unit).
func (p *Parser) parseArguments(name string) ast.List[ast.Node] {
	var first ast.Node
	switch name {
	case "EXTRACT", "TIMESTAMPADD", "TIMESTAMPDIFF":
		first = p.parseUnit()
	case "POSITION":
		first = p.parseExpression(COMPARE)
	default:
		first = p.parseExpression(LOWEST)
	}
	l := ast.List[ast.Node]{Values: []ast.Node{first}}
	add := func(sep ast.Separator, n ast.Node) {
		l.Values = append(l.Values, n)
		l.Separators = append(l.Separators, sep)
	}

	switch name {
	case "CAST", "TRY_CAST":
		if !p.currentIs(token.AS) {
			p.fail(`"AS"`)
		}
		sep := p.separator()
		add(sep, p.parseTypeName())
		return l
	case "EXTRACT":
		if !p.currentIs(token.FROM) {
			p.fail(`"FROM"`)
		}
		sep := p.separator()
		add(sep, p.parseExpression(LOWEST))
		return l
	case "POSITION":
		if p.currentIs(token.IN) {
			sep := p.separator()
			add(sep, p.parseExpression(LOWEST))
			if p.currentIs(token.FROM) {
				sep := p.separator()
				add(sep, p.parseExpression(LOWEST))
			}
			return l
		}
	case "FLOOR", "CEIL":
		if p.currentIs(token.TO) {
			sep := p.separator()
			add(sep, p.parseUnit())
			return l
		}
	}

	for p.currentIs(token.COMMA) {
		sep := p.separator()
		add(sep, p.parseExpression(LOWEST))
	}
	return l
}

// parseUnit parses a time unit such as DAY.
func (p *Parser) parseUnit() *ast.TypeName {
	if !p.currentIs(token.IDENT) || p.current.Quoted {
		p.fail("time unit")
	}
	return &ast.TypeName{Text: p.word()}
}

// parseTypeName takes the tokens of a type up to the closing parenthesis of
// the CAST, e.g. VARCHAR or DECIMAL(10, 2).
func (p *Parser) parseTypeName() *ast.TypeName {
	var b strings.Builder
	depth := 0
	for !p.currentIs(token.EOF) {
		if p.currentIs(token.RPAREN) {
			if depth == 0 {
				break
			}
			depth--
		}
		if p.currentIs(token.LPAREN) {
			depth++
		}
		b.WriteString(p.word())
	}
	if b.Len() == 0 {
		p.fail("type")
	}
	return &ast.TypeName{Text: b.String()}
}

func (p *Parser) parseFilter() *ast.Filter {
	f := &ast.Filter{Keyword: p.keyword()}
	f.PreParen = p.space()
	p.expect(token.LPAREN)
	if !p.currentIs(token.WHERE) {
		p.fail(`"WHERE"`)
	}
	f.Where = p.keyword()
	f.Space = p.space()
	f.Expr = p.parseExpression(LOWEST)
	f.Close = p.space()
	p.expect(token.RPAREN)
	return f
}

func (p *Parser) parseOver() *ast.Over {
	o := &ast.Over{Keyword: p.keyword()}
	o.Space = p.space()
	if p.currentIs(token.IDENT) {
		name := p.parseIdent()
		o.Name = &name
		return o
	}
	p.expect(token.LPAREN)
	if p.currentIs(token.PARTITION) {
		o.PartitionBy = parseListClause(p, p.keywords(token.BY), p.parseExpr)
	}
	if p.currentIs(token.ORDER) {
		o.OrderBy = parseListClause(p, p.keywords(token.BY), p.parseOrderItem)
	}
	o.Close = p.space()
	p.expect(token.RPAREN)
	return o
}
