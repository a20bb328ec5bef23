package filterpattern

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sqlc-dev/druidsql/ast"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger that receives debug records about rejected
// matches. A nil logger turns logging off.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func currentLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// candidate is an expression prepared for matching.
type candidate struct {
	orig    ast.Node // the expression without padding
	expr    ast.Node // orig without outer parentheses
	inner   ast.Node // expr without a leading NOT
	operand ast.Node // inner without parentheses
	negated bool
}

func newCandidate(ex ast.Node) candidate {
	c := candidate{orig: ast.ChangePadding(ex, ast.Padding{}), expr: ast.StripParens(ex)}
	c.inner = c.expr
	if u, ok := c.expr.(*ast.Unary); ok && u.Operator() == "NOT" {
		c.inner = u.Operand
		c.negated = true
	}
	c.operand = ast.StripParens(c.inner)
	return c
}

// matcher recognizes one pattern type. fit reports false when the
// expression does not have the shape of the pattern.
type matcher struct {
	typ Type
	fit func(c candidate) (Pattern, bool)
}

// catalog lists the matchers in priority order. The first one whose
// pattern builds the expression back wins; Custom takes everything else.
var catalog = []matcher{
	{TypeValues, fitValues},
	{TypeContains, fitContains},
	{TypeRegexp, fitRegexp},
	{TypeTimeInterval, fitTimeInterval},
	{TypeTimeRelative, fitTimeRelative},
	{TypeNumberRange, fitNumberRange},
	{TypeMVContains, fitMVContains},
}

// Catalog returns the pattern types in the order FitFilterPattern tries
// them.
func Catalog() []Type {
	types := make([]Type, 0, len(catalog)+1)
	for _, m := range catalog {
		types = append(types, m.typ)
	}
	return append(types, TypeCustom)
}

// FitFilterPattern returns the first pattern of the catalog that describes
// ex. A structural match only counts when the pattern's expression has the
// same raw form as ex, outer parentheses aside, so every pattern other
// than Custom turns back into ex. A nil expression is an empty Custom.
func FitFilterPattern(ex ast.Node) Pattern {
	if ex == nil {
		return &Custom{}
	}
	c := newCandidate(ex)
	for _, m := range catalog {
		p, ok := m.fit(c)
		if !ok {
			continue
		}
		if reproduces(p, c.expr) {
			return p
		}
		currentLogger().Debug("filter pattern rejected", "type", m.typ, "expr", ast.Raw(c.expr))
	}
	if c.negated {
		return &Custom{Negated: true, Expression: c.inner}
	}
	return &Custom{Expression: c.orig}
}

func reproduces(p Pattern, ex ast.Node) bool {
	return ast.Raw(ast.StripParens(p.toExpression())) == ast.Raw(ex)
}

// FitFilterPatterns splits a filter into patterns. The whole expression is
// tried first; only when it is Custom are its top-level AND conjuncts
// fitted one by one. A nil expression has no patterns.
func FitFilterPatterns(ex ast.Node) []Pattern {
	if ex == nil {
		return nil
	}
	p := FitFilterPattern(ex)
	if p.Type() != TypeCustom {
		return []Pattern{p}
	}
	conjuncts := flattenAnd(nil, ast.StripParens(ex))
	if len(conjuncts) < 2 {
		return []Pattern{p}
	}
	patterns := make([]Pattern, len(conjuncts))
	for i, c := range conjuncts {
		patterns[i] = FitFilterPattern(c)
	}
	return patterns
}

// flattenAnd appends the operands of n, descending into operands that are
// themselves unparenthesized ANDs.
func flattenAnd(dst []ast.Node, n ast.Node) []ast.Node {
	m, ok := n.(*ast.Multi)
	if !ok || m.Op != ast.OpAnd {
		return append(dst, n)
	}
	for _, arg := range m.Operands() {
		if ast.HasParens(arg) {
			dst = append(dst, arg)
			continue
		}
		dst = flattenAnd(dst, arg)
	}
	return dst
}

// -----------------------------------------------------------------------------
// Matchers

func fitValues(c candidate) (Pattern, bool) {
	cmp, ok := c.operand.(*ast.Comparison)
	if !ok {
		return nil, false
	}
	column, ok := columnName(cmp.Left)
	if !ok {
		return nil, false
	}
	negated := c.negated
	switch {
	case cmp.Op == ast.OpEq || cmp.Op == ast.OpNe:
		v, ok := ast.LiteralValue(cmp.Right)
		if !ok || v == nil {
			return nil, false
		}
		if cmp.Op == ast.OpNe {
			negated = !negated
		}
		return &Values{Negated: negated, Column: column, Values: []any{v}}, true
	case cmp.Op == ast.OpIn:
		values, ok := literalValues(cmp.Right)
		if !ok {
			return nil, false
		}
		if cmp.Not {
			negated = !negated
		}
		return &Values{Negated: negated, Column: column, Values: values}, true
	}
	return nil, false
}

// literalValues returns the values of a parenthesized list of non-null
// literals. A single value is parsed as a parenthesized literal rather than
// a record.
func literalValues(n ast.Node) ([]any, bool) {
	var items []ast.Node
	switch n := n.(type) {
	case *ast.Record:
		if n.Keyword != "" {
			return nil, false
		}
		items = n.Items.Values
	default:
		if !ast.HasParens(n) {
			return nil, false
		}
		items = []ast.Node{ast.StripParens(n)}
	}
	values := make([]any, len(items))
	for i, item := range items {
		v, ok := ast.LiteralValue(item)
		if !ok || v == nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func fitContains(c candidate) (Pattern, bool) {
	column, text, bare, ok := stringSearch(c.operand, "ICONTAINS_STRING")
	if !ok {
		return nil, false
	}
	return &Contains{Negated: c.negated, Column: column, Contains: text, Bare: bare}, true
}

func fitRegexp(c candidate) (Pattern, bool) {
	column, text, bare, ok := stringSearch(c.operand, "REGEXP_LIKE")
	if !ok {
		return nil, false
	}
	return &Regexp{Negated: c.negated, Column: column, Regexp: text, Bare: bare}, true
}

// stringSearch matches fn(col, 'text') where col may be cast to VARCHAR.
// bare reports a column without the cast.
func stringSearch(n ast.Node, fn string) (column, text string, bare, ok bool) {
	call, ok := callOf(n, fn, 2)
	if !ok {
		return "", "", false, false
	}
	arg, cast := uncastVarchar(call.Arg(0))
	column, ok = columnName(arg)
	if !ok {
		return "", "", false, false
	}
	text, ok = stringValue(call.Arg(1))
	return column, text, !cast, ok
}

func uncastVarchar(n ast.Node) (ast.Node, bool) {
	call, ok := callOf(n, "CAST", 2)
	if !ok {
		return n, false
	}
	if t, ok := call.Arg(1).(*ast.TypeName); ok && strings.EqualFold(t.Text, "VARCHAR") {
		return call.Arg(0), true
	}
	return n, false
}

func fitTimeInterval(c candidate) (Pattern, bool) {
	if call, ok := callOf(c.operand, "TIME_IN_INTERVAL", 2); ok {
		column, ok := columnName(call.Arg(0))
		if !ok {
			return nil, false
		}
		interval, ok := stringValue(call.Arg(1))
		if !ok {
			return nil, false
		}
		startText, endText, ok := strings.Cut(interval, "/")
		if !ok {
			return nil, false
		}
		start, ok1 := ast.ParseTimestamp(startText)
		end, ok2 := ast.ParseTimestamp(endText)
		if !ok1 || !ok2 {
			return nil, false
		}
		return &TimeInterval{
			Negated: c.negated,
			Column:  column,
			Form:    FormFunction,
			Start:   start,
			End:     end,
		}, true
	}

	r, ok := rangeOf(c.operand)
	if !ok {
		return nil, false
	}
	start, ok1 := timestampValue(r.lower)
	end, ok2 := timestampValue(r.upper)
	if !ok1 || !ok2 {
		return nil, false
	}
	return &TimeInterval{
		Negated:    c.negated,
		Column:     r.column,
		Form:       FormComparison,
		Start:      start,
		StartBound: r.startBound,
		End:        end,
		EndBound:   r.endBound,
	}, true
}

// timeRange is a conjunction lower <[=] col AND col <[=] upper.
type timeRange struct {
	column     string
	lower      ast.Node
	startBound string
	upper      ast.Node
	endBound   string
}

func rangeOf(n ast.Node) (timeRange, bool) {
	m, ok := n.(*ast.Multi)
	if !ok || m.Op != ast.OpAnd || m.Args.Len() != 2 {
		return timeRange{}, false
	}
	lo, ok1 := m.Args.At(0).(*ast.Comparison)
	hi, ok2 := m.Args.At(1).(*ast.Comparison)
	if !ok1 || !ok2 || ast.HasParens(lo) || ast.HasParens(hi) {
		return timeRange{}, false
	}
	var r timeRange
	switch lo.Op {
	case ast.OpLe:
		r.startBound = StartInclusive
	case ast.OpLt:
		r.startBound = StartExclusive
	default:
		return timeRange{}, false
	}
	switch hi.Op {
	case ast.OpLt:
		r.endBound = EndExclusive
	case ast.OpLe:
		r.endBound = EndInclusive
	default:
		return timeRange{}, false
	}
	loColumn, ok1 := columnName(lo.Right)
	hiColumn, ok2 := columnName(hi.Left)
	if !ok1 || !ok2 || loColumn != hiColumn {
		return timeRange{}, false
	}
	r.column = loColumn
	r.lower = lo.Left
	r.upper = hi.Right
	return r, true
}

func fitTimeRelative(c candidate) (Pattern, bool) {
	r, ok := rangeOf(c.operand)
	if !ok {
		return nil, false
	}
	p := &TimeRelative{
		Negated:    c.negated,
		Column:     r.column,
		StartBound: r.startBound,
		EndBound:   r.endBound,
	}

	// The window shift sits on the lower bound for a window before the
	// anchor and on the upper bound for one after it. The other bound is
	// the anchor itself.
	var anchor ast.Node
	var zones []string
	if s, ok := timeShiftOf(r.lower); ok && s.step < 0 && ast.Equivalent(s.expr, r.upper) {
		anchor = r.upper
		p.RangeDuration, p.RangeStep = s.period, s.step
		zones = append(zones, s.timezone)
	} else if s, ok := timeShiftOf(r.upper); ok && s.step > 0 && ast.Equivalent(s.expr, r.lower) {
		anchor = r.lower
		p.RangeDuration, p.RangeStep = s.period, s.step
		zones = append(zones, s.timezone)
	} else {
		return nil, false
	}

	if s, ok := timeShiftOf(anchor); ok {
		anchor = s.expr
		p.ShiftDuration, p.ShiftStep = s.period, s.step
		zones = append(zones, s.timezone)
	}
	if a, ok := alignOf(anchor); ok {
		anchor = a.expr
		p.AlignType, p.AlignDuration = a.typ, a.period
		zones = append(zones, a.timezone)
	}

	switch {
	case isCall(anchor, "CURRENT_TIMESTAMP", true):
		p.Anchor = AnchorTimestamp
	case isCall(anchor, "MAX_DATA_TIME", false):
		p.Anchor = AnchorMaxDataTime
	default:
		t, ok := timestampValue(anchor)
		if !ok {
			return nil, false
		}
		p.Anchor = AnchorLiteral
		p.AnchorTime = t
	}

	for _, tz := range zones[1:] {
		if tz != zones[0] {
			return nil, false
		}
	}
	p.Timezone = zones[0]
	return p, true
}

// shift is TIME_SHIFT(expr, period, step[, timezone]).
type shift struct {
	expr     ast.Node
	period   string
	step     int64
	timezone string
}

func timeShiftOf(n ast.Node) (shift, bool) {
	call, ok := callOf(n, "TIME_SHIFT", -1)
	if !ok || call.NumArgs() < 3 || call.NumArgs() > 4 {
		return shift{}, false
	}
	s := shift{expr: call.Arg(0)}
	s.period, ok = stringValue(call.Arg(1))
	if !ok {
		return shift{}, false
	}
	v, _ := ast.LiteralValue(call.Arg(2))
	if s.step, ok = v.(int64); !ok {
		return shift{}, false
	}
	if call.NumArgs() == 4 {
		if s.timezone, ok = stringValue(call.Arg(3)); !ok {
			return shift{}, false
		}
	}
	return s, true
}

// align is TIME_FLOOR or TIME_CEIL(expr, period[, NULL, timezone]).
type align struct {
	typ      string
	expr     ast.Node
	period   string
	timezone string
}

func alignOf(n ast.Node) (align, bool) {
	var a align
	call, ok := callOf(n, "TIME_FLOOR", -1)
	a.typ = AlignFloor
	if !ok {
		call, ok = callOf(n, "TIME_CEIL", -1)
		a.typ = AlignCeil
	}
	if !ok {
		return align{}, false
	}
	switch call.NumArgs() {
	case 2:
	case 4:
		if lit, ok := call.Arg(2).(*ast.Literal); !ok || lit.Type != ast.NullLiteral {
			return align{}, false
		}
		if a.timezone, ok = stringValue(call.Arg(3)); !ok {
			return align{}, false
		}
	default:
		return align{}, false
	}
	a.expr = call.Arg(0)
	if a.period, ok = stringValue(call.Arg(1)); !ok {
		return align{}, false
	}
	return a, true
}

func fitNumberRange(c candidate) (Pattern, bool) {
	m, ok := c.operand.(*ast.Multi)
	if !ok || m.Op != ast.OpAnd || m.Args.Len() != 2 {
		return nil, false
	}
	lo, ok1 := m.Args.At(0).(*ast.Comparison)
	hi, ok2 := m.Args.At(1).(*ast.Comparison)
	if !ok1 || !ok2 {
		return nil, false
	}
	p := &NumberRange{Negated: c.negated}
	switch lo.Op {
	case ast.OpGe:
		p.StartBound = StartInclusive
	case ast.OpGt:
		p.StartBound = StartExclusive
	default:
		return nil, false
	}
	switch hi.Op {
	case ast.OpLt:
		p.EndBound = EndExclusive
	case ast.OpLe:
		p.EndBound = EndInclusive
	default:
		return nil, false
	}
	loColumn, ok1 := columnName(lo.Left)
	hiColumn, ok2 := columnName(hi.Left)
	if !ok1 || !ok2 || loColumn != hiColumn {
		return nil, false
	}
	p.Column = loColumn
	if p.Start, ok = numberValue(lo.Right); !ok {
		return nil, false
	}
	if p.End, ok = numberValue(hi.Right); !ok {
		return nil, false
	}
	return p, true
}

func fitMVContains(c candidate) (Pattern, bool) {
	call, ok := callOf(c.operand, "MV_CONTAINS", 2)
	if !ok {
		return nil, false
	}
	column, ok := columnName(call.Arg(0))
	if !ok {
		return nil, false
	}
	array, ok := callOf(call.Arg(1), "ARRAY", -1)
	if !ok || !array.Bracket {
		return nil, false
	}
	values := make([]any, array.NumArgs())
	for i, item := range array.Args.Values {
		v, ok := ast.LiteralValue(item)
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return &MVContains{Negated: c.negated, Column: column, Values: values}, true
}

// -----------------------------------------------------------------------------
// Node accessors

func columnName(n ast.Node) (string, bool) {
	c, ok := n.(*ast.Column)
	if !ok || len(c.Parts) != 1 {
		return "", false
	}
	return c.Name(), true
}

// callOf returns n as a call of fn with nargs arguments; nargs < 0 accepts
// any number.
func callOf(n ast.Node, fn string, nargs int) (*ast.Call, bool) {
	call, ok := n.(*ast.Call)
	if !ok || call.Parenless || call.FunctionName() != fn {
		return nil, false
	}
	if call.Decorator != nil || call.Filter != nil || call.Over != nil {
		return nil, false
	}
	if nargs >= 0 && call.NumArgs() != nargs {
		return nil, false
	}
	return call, true
}

func isCall(n ast.Node, fn string, parenless bool) bool {
	call, ok := n.(*ast.Call)
	return ok && call.FunctionName() == fn && call.Parenless == parenless && call.NumArgs() == 0
}

func stringValue(n ast.Node) (string, bool) {
	lit, ok := n.(*ast.Literal)
	if !ok {
		return "", false
	}
	return lit.Str()
}

func numberValue(n ast.Node) (float64, bool) {
	switch v, _ := ast.LiteralValue(n); v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func timestampValue(n ast.Node) (time.Time, bool) {
	lit, ok := n.(*ast.Literal)
	if !ok || lit.Type != ast.TimestampLiteral {
		return time.Time{}, false
	}
	return lit.Time()
}
