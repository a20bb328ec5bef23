// Package parser implements a parser for Druid SQL.
//
// The parser keeps every byte of its input. Whitespace and comments end up
// in the fields of the node that owns the surrounding tokens, so printing
// the returned tree with ast.Format reproduces the input exactly.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sqlc-dev/druidsql/ast"
	"github.com/sqlc-dev/druidsql/lexer"
	"github.com/sqlc-dev/druidsql/token"
)

// DefaultMaxDepth is the default nesting limit of Config.MaxDepth.
const DefaultMaxDepth = 512

// Config holds the parser settings.
type Config struct {
	// Functions is the function table; nil means DefaultFunctionTable.
	Functions *FunctionTable
	// MaxDepth bounds the nesting of expressions and queries.
	MaxDepth int
	// Logger receives debug records about rejected input; nil discards them.
	Logger *slog.Logger
}

// Option changes a Config.
type Option func(*Config)

// WithFunctions sets the function table.
func WithFunctions(t *FunctionTable) Option {
	return func(c *Config) { c.Functions = t }
}

// WithMaxDepth sets the nesting limit.
func WithMaxDepth(depth int) Option {
	return func(c *Config) { c.MaxDepth = depth }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func newConfig(opts []Option) Config {
	c := Config{MaxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&c)
	}
	if c.Functions == nil {
		c.Functions = DefaultFunctionTable()
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// SyntaxError is returned for input the parser cannot derive a tree from.
type SyntaxError struct {
	Pos      token.Position
	Expected string
	Found    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: expected %s, found %s",
		e.Pos.Line, e.Pos.Column, e.Expected, e.Found)
}

// Parser parses one Druid SQL query or expression.
type Parser struct {
	config  Config
	ctx     context.Context
	items   []lexer.Item
	pos     int
	current lexer.Item
	depth   int
}

// bailout carries an error from deep inside the parser up to parse.
type bailout struct{ err error }

// New creates a Parser over src.
func New(src string, opts ...Option) *Parser {
	p := &Parser{
		config: newConfig(opts),
		ctx:    context.Background(),
		items:  lexer.Tokenize(src),
	}
	p.current = p.items[0]
	return p
}

// Parse parses the query or expression read from r.
func Parse(ctx context.Context, r io.Reader, opts ...Option) (ast.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := New(string(src), opts...)
	p.ctx = ctx
	return p.Parse()
}

// ParseFile parses the query or expression stored in the named file.
func ParseFile(ctx context.Context, path string, opts ...Option) (ast.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(ctx, f, opts...)
}

// ParseString parses a query or an expression.
func ParseString(sql string, opts ...Option) (ast.Node, error) {
	return New(sql, opts...).Parse()
}

// ParseQuery parses sql, which must be a query.
func ParseQuery(sql string, opts ...Option) (*ast.Query, error) {
	n, err := ParseString(sql, opts...)
	if err != nil {
		return nil, err
	}
	q, ok := n.(*ast.Query)
	if !ok {
		return nil, &SyntaxError{Pos: token.Position{Line: 1, Column: 1}, Expected: "query", Found: n.Kind().String()}
	}
	return q, nil
}

// ParseExpression parses sql, which must be an expression.
func ParseExpression(sql string, opts ...Option) (ast.Node, error) {
	p := New(sql, opts...)
	return p.parseRoot(func() ast.Node { return p.parseExpression(LOWEST) })
}

// Parse parses the whole input as one query or expression.
func (p *Parser) Parse() (ast.Node, error) {
	return p.parseRoot(func() ast.Node {
		if p.atStatement() {
			return p.parseStatement()
		}
		return p.parseExpression(LOWEST)
	})
}

func (p *Parser) parseRoot(parse func() ast.Node) (n ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			n, err = nil, b.err
			var serr *SyntaxError
			if errors.As(err, &serr) {
				p.config.Logger.Debug("syntax error",
					slog.Int("line", serr.Pos.Line),
					slog.Int("column", serr.Pos.Column),
					slog.String("expected", serr.Expected),
					slog.String("found", serr.Found))
			}
		}
	}()
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}

	before := p.space()
	n = parse()
	after := p.space()
	if p.currentIs(token.SEMICOLON) {
		after += p.word()
		after += p.space()
	}
	if !p.currentIs(token.EOF) {
		p.fail("end of input")
	}
	if before != "" || after != "" {
		n = ast.ChangePadding(n, ast.Padding{Before: before, After: after})
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// Token helpers
//
// Every token carries the whitespace and comments in front of it. The
// parser hands that text to a node with space() before it consumes the
// token with word(); a parse function is entered with the text in front of
// its first token already taken.

func (p *Parser) next() {
	if p.pos < len(p.items)-1 {
		p.pos++
	}
	p.current = p.items[p.pos]
}

func (p *Parser) peek() lexer.Item {
	if p.pos < len(p.items)-1 {
		return p.items[p.pos+1]
	}
	return p.items[len(p.items)-1]
}

func (p *Parser) currentIs(t token.Token) bool {
	return p.current.Token == t
}

func (p *Parser) peekIs(t token.Token) bool {
	return p.peek().Token == t
}

// currentIsWord reports whether the current token is the unquoted
// non-reserved word w.
func (p *Parser) currentIsWord(w string) bool {
	return p.current.Token == token.IDENT && !p.current.Quoted && strings.EqualFold(p.current.Raw, w)
}

// space takes the text in front of the current token.
func (p *Parser) space() string {
	s := p.current.Space
	p.current.Space = ""
	return s
}

// word consumes the current token and returns its source text, including
// any leading space nobody has taken.
func (p *Parser) word() string {
	raw := p.current.Space + p.current.Raw
	p.next()
	return raw
}

// expect consumes a token of type t and returns its source text.
func (p *Parser) expect(t token.Token) string {
	if !p.currentIs(t) {
		p.fail(describe(t))
	}
	return p.word()
}

// expectWord consumes the unquoted word w.
func (p *Parser) expectWord(w string) string {
	if !p.currentIsWord(w) {
		p.fail(w)
	}
	return p.word()
}

// keyword consumes the current token as a keyword.
func (p *Parser) keyword() ast.Keyword {
	space := p.space()
	return ast.Keyword{Space: space, Text: p.word()}
}

// keywords consumes a multi-word keyword such as GROUP BY. The first word
// is the current token; the rest must follow as given.
func (p *Parser) keywords(rest ...token.Token) ast.Keyword {
	k := p.keyword()
	for _, t := range rest {
		k.Text += p.space() + p.expect(t)
	}
	return k
}

// extendWord appends the next word w to k.
func (p *Parser) extendWord(k *ast.Keyword, w string) {
	k.Text += p.space() + p.expectWord(w)
}

func (p *Parser) fail(expected string) {
	found := "end of input"
	if !p.currentIs(token.EOF) {
		found = fmt.Sprintf("%q", p.current.Raw)
	}
	panic(bailout{&SyntaxError{Pos: p.current.Pos, Expected: expected, Found: found}})
}

func describe(t token.Token) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.NUMBER:
		return "number"
	case token.STRING:
		return "string"
	case token.EOF:
		return "end of input"
	}
	return fmt.Sprintf("%q", t.String())
}

// enter guards the recursion depth; the returned func restores it.
func (p *Parser) enter() func() {
	p.depth++
	if p.depth > p.config.MaxDepth {
		panic(bailout{&SyntaxError{
			Pos:      p.current.Pos,
			Expected: fmt.Sprintf("at most %d levels of nesting", p.config.MaxDepth),
			Found:    "deeper nesting",
		}})
	}
	return func() { p.depth-- }
}

// -----------------------------------------------------------------------------
// Statements

func (p *Parser) atStatement() bool {
	switch p.current.Token {
	case token.SELECT, token.WITH, token.EXPLAIN, token.INSERT:
		return true
	case token.REPLACE:
		return p.peekIs(token.INTO)
	}
	return false
}

func (p *Parser) parseStatement() *ast.Query {
	q := &ast.Query{}
	if p.currentIs(token.EXPLAIN) {
		k := p.keyword()
		p.extendWord(&k, "PLAN")
		k.Text += p.space() + p.expect(token.FOR)
		q.Explain = &k
	}
	if p.currentIs(token.INSERT) || p.currentIs(token.REPLACE) {
		q.Insert = p.parseInsert()
	}
	p.parseQueryBody(q)
	return q
}

func (p *Parser) parseInsert() *ast.Insert {
	replace := p.currentIs(token.REPLACE)
	ins := &ast.Insert{Keyword: p.keywords(token.INTO)}
	ins.Space = p.space()
	ins.Table = p.parseTableSource()
	if !replace {
		return ins
	}
	if !p.currentIsWord("OVERWRITE") {
		p.fail("OVERWRITE")
	}
	ow := &ast.Overwrite{Keyword: p.keyword()}
	switch {
	case p.currentIs(token.ALL):
		all := p.keyword()
		ow.All = &all
	case p.currentIs(token.WHERE):
		ow.Where = p.parseExprClause()
	default:
		p.fail("ALL or WHERE")
	}
	ins.Overwrite = ow
	return ins
}

// parseQueryBody parses WITH ... SELECT ... up to CLUSTERED BY into q.
func (p *Parser) parseQueryBody(q *ast.Query) {
	defer p.enter()()
	if err := p.ctx.Err(); err != nil {
		panic(bailout{err})
	}

	if p.currentIs(token.WITH) {
		q.With = parseListClause(p, p.keyword(), p.parseWithPart)
	}
	if !p.currentIs(token.SELECT) {
		p.fail("SELECT")
	}
	q.Select = p.keyword()
	if p.currentIs(token.DISTINCT) {
		d := p.keyword()
		q.Distinct = &d
	}
	q.Space = p.space()
	q.Columns = parseList(p, p.parseSelectItem)

	if p.currentIs(token.FROM) {
		q.From = p.parseFrom()
	}
	if p.currentIs(token.WHERE) {
		q.Where = p.parseExprClause()
	}
	if p.currentIs(token.GROUP) {
		q.GroupBy = p.parseGroupBy()
	}
	if p.currentIs(token.HAVING) {
		q.Having = p.parseExprClause()
	}
	if p.currentIs(token.ORDER) {
		q.OrderBy = parseListClause(p, p.keywords(token.BY), p.parseOrderItem)
	}
	if p.currentIs(token.LIMIT) {
		q.Limit = p.parseExprClause()
	}
	if p.currentIs(token.OFFSET) {
		q.Offset = p.parseExprClause()
	}
	if p.currentIs(token.UNION) {
		q.Union = p.parseUnion()
	}
	if p.currentIsWord("PARTITIONED") {
		q.PartitionedBy = p.parsePartitionedBy()
	}
	if p.currentIsWord("CLUSTERED") {
		k := p.keyword()
		k.Text += p.space() + p.expect(token.BY)
		q.ClusteredBy = parseListClause(p, k, p.parseExpr)
	}
}

// parseList parses one or more comma separated items.
func parseList[T ast.Node](p *Parser, item func() T) ast.List[T] {
	return parseListFrom(p, item(), item)
}

// parseListFrom continues a list whose first item has been parsed.
func parseListFrom[T ast.Node](p *Parser, first T, item func() T) ast.List[T] {
	l := ast.List[T]{Values: []T{first}}
	for p.currentIs(token.COMMA) {
		sep := p.separator()
		l.Values = append(l.Values, item())
		l.Separators = append(l.Separators, sep)
	}
	return l
}

func parseListClause[T ast.Node](p *Parser, k ast.Keyword, item func() T) *ast.ListClause[T] {
	c := &ast.ListClause[T]{Keyword: k, Space: p.space()}
	c.Items = parseList(p, item)
	return c
}

func (p *Parser) parseExpr() ast.Node {
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseExprClause() *ast.ExprClause {
	c := &ast.ExprClause{Keyword: p.keyword()}
	c.Space = p.space()
	c.Expr = p.parseExpression(LOWEST)
	return c
}

func (p *Parser) parseWithPart() *ast.WithPart {
	w := &ast.WithPart{Name: p.parseIdent()}
	w.PreAs = p.space()
	w.As = p.expect(token.AS)
	w.PostAs = p.space()
	if !p.currentIs(token.LPAREN) {
		p.fail(`"("`)
	}
	w.Query = p.parseParenExpression()
	return w
}

func (p *Parser) parseIdent() ast.Ident {
	if !p.currentIs(token.IDENT) {
		p.fail("identifier")
	}
	id := ast.Ident{Name: p.current.Value, Quoted: p.current.Quoted}
	p.word()
	return id
}

// contextual words are not reserved but end an implicit alias position.
var contextual = map[string]bool{
	"PARTITIONED": true,
	"CLUSTERED":   true,
	"OVERWRITE":   true,
	"PLAN":        true,
}

// parseAlias parses an optional [AS] name after expr.
func (p *Parser) parseAlias(expr ast.Node) ast.Node {
	switch {
	case p.currentIs(token.AS):
		a := &ast.Alias{Expr: expr, PreAs: p.space(), As: p.word()}
		a.PostAs = p.space()
		a.Name = p.parseIdent()
		return a
	case p.currentIs(token.IDENT) && (p.current.Quoted || !contextual[strings.ToUpper(p.current.Raw)]):
		a := &ast.Alias{Expr: expr, PreAs: p.space()}
		a.Name = p.parseIdent()
		return a
	}
	return expr
}

func (p *Parser) parseSelectItem() ast.Node {
	return p.parseAlias(p.parseExpression(LOWEST))
}

// parseTableSource parses a table reference, table function or sub-query.
// Plain references become *ast.Table.
func (p *Parser) parseTableSource() ast.Node {
	n := p.parseExpression(LOWEST)
	if c, ok := n.(*ast.Column); ok {
		return &ast.Table{Wrapping: c.Wrapping, Parts: c.Parts, Dots: c.Dots}
	}
	return n
}

func (p *Parser) parseFromItem() ast.Node {
	return p.parseAlias(p.parseTableSource())
}

func (p *Parser) parseFrom() *ast.From {
	f := &ast.From{Keyword: p.keyword()}
	f.Space = p.space()
	f.Tables = parseList(p, p.parseFromItem)
	for p.atJoin() {
		f.Joins = append(f.Joins, p.parseJoin())
	}
	return f
}

func (p *Parser) atJoin() bool {
	switch p.current.Token {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL, token.CROSS:
		return true
	}
	return false
}

func (p *Parser) parseJoin() *ast.Join {
	k := p.keyword()
	switch strings.ToUpper(k.Text) {
	case "LEFT", "RIGHT", "FULL":
		if p.currentIs(token.OUTER) {
			k.Text += p.space() + p.word()
		}
		k.Text += p.space() + p.expect(token.JOIN)
	case "INNER", "CROSS":
		k.Text += p.space() + p.expect(token.JOIN)
	}
	j := &ast.Join{Type: k, Space: p.space()}
	j.Table = p.parseFromItem()
	if p.currentIs(token.ON) {
		j.On = p.parseExprClause()
	}
	return j
}

func (p *Parser) parseGroupBy() *ast.GroupBy {
	g := &ast.GroupBy{Keyword: p.keywords(token.BY)}
	switch p.current.Token {
	case token.ROLLUP, token.CUBE:
		d := p.keyword()
		g.Decorator = &d
	case token.GROUPING:
		d := p.keywords(token.SETS)
		g.Decorator = &d
	}
	if g.Decorator == nil {
		g.Space = p.space()
		g.Items = parseList(p, p.parseExpr)
		return g
	}
	g.PreParen = p.space()
	p.expect(token.LPAREN)
	g.Space = p.space()
	if !p.currentIs(token.RPAREN) {
		g.Items = parseList(p, p.parseExpr)
	}
	g.Close = p.space()
	p.expect(token.RPAREN)
	return g
}

func (p *Parser) parseOrderItem() *ast.OrderItem {
	o := &ast.OrderItem{Expr: p.parseExpression(LOWEST)}
	if p.currentIs(token.ASC) || p.currentIs(token.DESC) {
		d := p.keyword()
		o.Direction = &d
	}
	return o
}

func (p *Parser) parseUnion() *ast.Union {
	k := p.keyword()
	if p.currentIs(token.ALL) {
		k.Text += p.space() + p.word()
	}
	u := &ast.Union{Keyword: k, Space: p.space()}
	if p.currentIs(token.LPAREN) {
		u.Query = p.parseParenExpression()
		return u
	}
	q := &ast.Query{}
	p.parseQueryBody(q)
	u.Query = q
	return u
}

func (p *Parser) parsePartitionedBy() *ast.ExprClause {
	k := p.keyword()
	k.Text += p.space() + p.expect(token.BY)
	c := &ast.ExprClause{Keyword: k, Space: p.space()}
	if p.currentIs(token.ALL) {
		t := &ast.TypeName{Text: p.word()}
		if p.currentIsWord("TIME") {
			t.Text += p.space() + p.word()
		}
		c.Expr = t
		return c
	}
	// A bare granularity: DAY, HOUR, ...
	if p.currentIs(token.IDENT) && !p.current.Quoted && !p.peekIs(token.LPAREN) && !p.peekIs(token.DOT) {
		c.Expr = &ast.TypeName{Text: p.word()}
		return c
	}
	c.Expr = p.parseExpression(LOWEST)
	return c
}
