package filterpattern

import (
	"time"

	"github.com/sqlc-dev/druidsql/ast"
)

// intervalLayout is the instant format inside TIME_IN_INTERVAL.
const intervalLayout = "2006-01-02T15:04:05.000Z"

// FilterPatternToExpression returns the expression of p. Patterns joining
// two comparisons are parenthesized so they stay one conjunct when ANDed
// with other filters.
func FilterPatternToExpression(p Pattern) ast.Node {
	return p.toExpression()
}

// FilterPatternsToExpression returns the conjunction of patterns, or TRUE
// when there are none.
func FilterPatternsToExpression(patterns []Pattern) ast.Node {
	exprs := make([]ast.Node, len(patterns))
	for i, p := range patterns {
		exprs[i] = p.toExpression()
	}
	return ast.And(exprs...)
}

// not applies NOT to n when negated is set.
func not(n ast.Node, negated bool) ast.Node {
	if negated {
		return ast.Not(n)
	}
	return n
}

func literals(values []any) []ast.Node {
	nodes := make([]ast.Node, len(values))
	for i, v := range values {
		nodes[i] = ast.Lit(v)
	}
	return nodes
}

func (p *Values) toExpression() ast.Node {
	col := ast.ColumnRef(p.Column)
	var cmp *ast.Comparison
	switch len(p.Values) {
	case 0:
		// Nothing is one of no values.
		return ast.Bool(p.Negated)
	case 1:
		cmp = ast.Eq(col, ast.Lit(p.Values[0]))
	default:
		cmp = ast.In(col, literals(p.Values)...)
	}
	if p.Negated {
		return cmp.Negate()
	}
	return cmp
}

func (p *Contains) toExpression() ast.Node {
	call := ast.Func("ICONTAINS_STRING", varcharColumn(p.Column, p.Bare), ast.String(p.Contains))
	return not(call, p.Negated)
}

func (p *Regexp) toExpression() ast.Node {
	call := ast.Func("REGEXP_LIKE", varcharColumn(p.Column, p.Bare), ast.String(p.Regexp))
	return not(call, p.Negated)
}

func varcharColumn(column string, bare bool) ast.Node {
	if bare {
		return ast.ColumnRef(column)
	}
	return ast.Cast(ast.ColumnRef(column), "VARCHAR")
}

func (p *TimeInterval) toExpression() ast.Node {
	col := ast.ColumnRef(p.Column)
	if p.Form != FormComparison {
		interval := p.Start.UTC().Format(intervalLayout) + "/" + p.End.UTC().Format(intervalLayout)
		call := ast.FuncSep("TIME_IN_INTERVAL", ast.CommaSpace, col, ast.String(interval))
		return not(call, p.Negated)
	}
	lower := ast.Compare(ast.Timestamp(p.Start), lowerOp(p.StartBound), col)
	upper := ast.Compare(col, upperOp(p.EndBound), ast.Timestamp(p.End))
	return not(ast.EnsureParens(ast.And(lower, upper)), p.Negated)
}

func lowerOp(bound string) ast.CompareOp {
	if bound == StartExclusive {
		return ast.OpLt
	}
	return ast.OpLe
}

func upperOp(bound string) ast.CompareOp {
	if bound == EndInclusive {
		return ast.OpLe
	}
	return ast.OpLt
}

func (p *TimeRelative) toExpression() ast.Node {
	col := ast.ColumnRef(p.Column)
	anchor := p.anchorExpression()
	lowerBound, upperBound := anchor, anchor
	if p.RangeStep < 0 {
		lowerBound = timeShift(anchor, p.RangeDuration, p.RangeStep, p.Timezone)
	} else {
		upperBound = timeShift(anchor, p.RangeDuration, p.RangeStep, p.Timezone)
	}
	lower := ast.Compare(lowerBound, lowerOp(p.StartBound), col)
	upper := ast.Compare(col, upperOp(p.EndBound), upperBound)
	return not(ast.EnsureParens(ast.And(lower, upper)), p.Negated)
}

// anchorExpression returns the aligned and shifted anchor.
func (p *TimeRelative) anchorExpression() ast.Node {
	var ex ast.Node
	switch p.Anchor {
	case AnchorMaxDataTime:
		ex = ast.Func("MAX_DATA_TIME")
	case AnchorLiteral:
		ex = ast.Timestamp(p.AnchorTime)
	default:
		ex = ast.ParenlessFunc("CURRENT_TIMESTAMP")
	}
	switch p.AlignType {
	case AlignFloor:
		ex = timeAlign("TIME_FLOOR", ex, p.AlignDuration, p.Timezone)
	case AlignCeil:
		ex = timeAlign("TIME_CEIL", ex, p.AlignDuration, p.Timezone)
	}
	if p.ShiftDuration != "" {
		ex = timeShift(ex, p.ShiftDuration, p.ShiftStep, p.Timezone)
	}
	return ex
}

func timeShift(ex ast.Node, period string, step int64, timezone string) ast.Node {
	if timezone == "" {
		return ast.Func("TIME_SHIFT", ex, ast.String(period), ast.Int(step))
	}
	return ast.Func("TIME_SHIFT", ex, ast.String(period), ast.Int(step), ast.String(timezone))
}

func timeAlign(fn string, ex ast.Node, period, timezone string) ast.Node {
	if timezone == "" {
		return ast.Func(fn, ex, ast.String(period))
	}
	return ast.Func(fn, ex, ast.String(period), ast.Null(), ast.String(timezone))
}

func (p *NumberRange) toExpression() ast.Node {
	col := ast.ColumnRef(p.Column)
	startOp := ast.OpGe
	if p.StartBound == StartExclusive {
		startOp = ast.OpGt
	}
	lower := ast.Compare(col, startOp, ast.Number(p.Start))
	upper := ast.Compare(col, upperOp(p.EndBound), ast.Number(p.End))
	return not(ast.EnsureParens(ast.And(lower, upper)), p.Negated)
}

func (p *MVContains) toExpression() ast.Node {
	call := ast.Func("MV_CONTAINS", ast.ColumnRef(p.Column), ast.Array(literals(p.Values)...))
	return not(call, p.Negated)
}

func (p *Custom) toExpression() ast.Node {
	if p.Expression == nil {
		return ast.Bool(!p.Negated)
	}
	return not(p.Expression, p.Negated)
}

// dayWindow returns the UTC day containing t.
func dayWindow(t time.Time) (start, end time.Time) {
	t = t.UTC()
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
