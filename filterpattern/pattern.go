// Package filterpattern recognizes common WHERE clause idioms and builds
// them back.
//
// A Pattern is a formatting-free description of one filter, such as
// "column x is one of these values" or "__time lies in the hour before the
// start of today". FitFilterPattern turns an expression into the most
// specific Pattern that reproduces it, falling back to Custom, and
// FilterPatternToExpression turns a Pattern back into an expression.
package filterpattern

import (
	"time"

	"github.com/sqlc-dev/druidsql/ast"
)

// Type names a kind of pattern. The values double as the "type" field of
// the JSON and YAML forms.
type Type string

const (
	TypeValues       Type = "values"
	TypeContains     Type = "contains"
	TypeRegexp       Type = "regexp"
	TypeTimeInterval Type = "timeInterval"
	TypeTimeRelative Type = "timeRelative"
	TypeNumberRange  Type = "numberRange"
	TypeMVContains   Type = "mvContains"
	TypeCustom       Type = "custom"
)

// Pattern is one of *Values, *Contains, *Regexp, *TimeInterval,
// *TimeRelative, *NumberRange, *MVContains or *Custom. Patterns are values:
// functions that change a pattern return a copy.
type Pattern interface {
	Type() Type
	IsNegated() bool

	withNegated(negated bool) Pattern
	toExpression() ast.Node
}

// Bound brackets of a range. A square bracket includes the bound.
const (
	StartInclusive = "["
	StartExclusive = "("
	EndInclusive   = "]"
	EndExclusive   = ")"
)

// Values matches a column against a list of literal values:
// col = v, col <> v, col IN (...) or col NOT IN (...).
type Values struct {
	Negated bool   `json:"negated" yaml:"negated"`
	Column  string `json:"column" yaml:"column"`
	Values  []any  `json:"values" yaml:"values"`
}

// Contains is a case insensitive substring match:
// ICONTAINS_STRING(CAST(col AS VARCHAR), 'text'). Bare drops the cast:
// ICONTAINS_STRING(col, 'text').
type Contains struct {
	Negated  bool   `json:"negated" yaml:"negated"`
	Column   string `json:"column" yaml:"column"`
	Contains string `json:"contains" yaml:"contains"`
	Bare     bool   `json:"bare,omitempty" yaml:"bare,omitempty"`
}

// Regexp is REGEXP_LIKE(CAST(col AS VARCHAR), 'pattern'), or
// REGEXP_LIKE(col, 'pattern') when Bare is set.
type Regexp struct {
	Negated bool   `json:"negated" yaml:"negated"`
	Column  string `json:"column" yaml:"column"`
	Regexp  string `json:"regexp" yaml:"regexp"`
	Bare    bool   `json:"bare,omitempty" yaml:"bare,omitempty"`
}

// Forms of a TimeInterval.
const (
	// FormFunction is TIME_IN_INTERVAL(col, 'start/end').
	FormFunction = "function"
	// FormComparison is (TIMESTAMP 'start' <= col AND col < TIMESTAMP 'end').
	FormComparison = "comparison"
)

// TimeInterval restricts a time column to a fixed interval.
// The function form always includes the start and excludes the end.
type TimeInterval struct {
	Negated    bool      `json:"negated" yaml:"negated"`
	Column     string    `json:"column" yaml:"column"`
	Form       string    `json:"form,omitempty" yaml:"form,omitempty"`
	Start      time.Time `json:"start" yaml:"start"`
	StartBound string    `json:"startBound,omitempty" yaml:"startBound,omitempty"`
	End        time.Time `json:"end" yaml:"end"`
	EndBound   string    `json:"endBound,omitempty" yaml:"endBound,omitempty"`
}

// Anchors of a TimeRelative window.
const (
	AnchorTimestamp   = "timestamp"   // CURRENT_TIMESTAMP
	AnchorMaxDataTime = "maxDataTime" // MAX_DATA_TIME()
	AnchorLiteral     = "literal"     // TIMESTAMP '...'
)

// Alignments of a TimeRelative anchor.
const (
	AlignFloor = "floor"
	AlignCeil  = "ceil"
)

// TimeRelative restricts a time column to a window of RangeDuration next to
// an anchor. The anchor is optionally aligned with TIME_FLOOR or TIME_CEIL
// and then moved with TIME_SHIFT:
//
//	TIME_SHIFT(TIME_CEIL(CURRENT_TIMESTAMP, 'P1D'), 'P1D', -1)
//
// A negative RangeStep puts the window before the anchor, a positive one
// after it. Every TIME_FLOOR, TIME_CEIL and TIME_SHIFT uses Timezone.
type TimeRelative struct {
	Negated       bool      `json:"negated" yaml:"negated"`
	Column        string    `json:"column" yaml:"column"`
	Anchor        string    `json:"anchor" yaml:"anchor"`
	AnchorTime    time.Time `json:"anchorTime,omitzero" yaml:"anchorTime,omitempty"`
	AlignType     string    `json:"alignType,omitempty" yaml:"alignType,omitempty"`
	AlignDuration string    `json:"alignDuration,omitempty" yaml:"alignDuration,omitempty"`
	ShiftDuration string    `json:"shiftDuration,omitempty" yaml:"shiftDuration,omitempty"`
	ShiftStep     int64     `json:"shiftStep,omitempty" yaml:"shiftStep,omitempty"`
	RangeDuration string    `json:"rangeDuration" yaml:"rangeDuration"`
	RangeStep     int64     `json:"rangeStep" yaml:"rangeStep"`
	Timezone      string    `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	StartBound    string    `json:"startBound" yaml:"startBound"`
	EndBound      string    `json:"endBound" yaml:"endBound"`
}

// NumberRange restricts a numeric column to a range:
// ("x" >= start AND "x" < end).
type NumberRange struct {
	Negated    bool    `json:"negated" yaml:"negated"`
	Column     string  `json:"column" yaml:"column"`
	Start      float64 `json:"start" yaml:"start"`
	StartBound string  `json:"startBound" yaml:"startBound"`
	End        float64 `json:"end" yaml:"end"`
	EndBound   string  `json:"endBound" yaml:"endBound"`
}

// MVContains matches a multi-value column containing all of Values:
// MV_CONTAINS(col, ARRAY[...]).
type MVContains struct {
	Negated bool   `json:"negated" yaml:"negated"`
	Column  string `json:"column" yaml:"column"`
	Values  []any  `json:"values" yaml:"values"`
}

// Custom is any other filter. When Negated is set, Expression is the
// operand of the NOT.
type Custom struct {
	Negated    bool
	Expression ast.Node
}

func (p *Values) Type() Type       { return TypeValues }
func (p *Contains) Type() Type     { return TypeContains }
func (p *Regexp) Type() Type       { return TypeRegexp }
func (p *TimeInterval) Type() Type { return TypeTimeInterval }
func (p *TimeRelative) Type() Type { return TypeTimeRelative }
func (p *NumberRange) Type() Type  { return TypeNumberRange }
func (p *MVContains) Type() Type   { return TypeMVContains }
func (p *Custom) Type() Type       { return TypeCustom }

func (p *Values) IsNegated() bool       { return p.Negated }
func (p *Contains) IsNegated() bool     { return p.Negated }
func (p *Regexp) IsNegated() bool       { return p.Negated }
func (p *TimeInterval) IsNegated() bool { return p.Negated }
func (p *TimeRelative) IsNegated() bool { return p.Negated }
func (p *NumberRange) IsNegated() bool  { return p.Negated }
func (p *MVContains) IsNegated() bool   { return p.Negated }
func (p *Custom) IsNegated() bool       { return p.Negated }

func (p *Values) withNegated(v bool) Pattern       { c := *p; c.Negated = v; return &c }
func (p *Contains) withNegated(v bool) Pattern     { c := *p; c.Negated = v; return &c }
func (p *Regexp) withNegated(v bool) Pattern       { c := *p; c.Negated = v; return &c }
func (p *TimeInterval) withNegated(v bool) Pattern { c := *p; c.Negated = v; return &c }
func (p *TimeRelative) withNegated(v bool) Pattern { c := *p; c.Negated = v; return &c }
func (p *NumberRange) withNegated(v bool) Pattern  { c := *p; c.Negated = v; return &c }
func (p *MVContains) withNegated(v bool) Pattern   { c := *p; c.Negated = v; return &c }
func (p *Custom) withNegated(v bool) Pattern       { c := *p; c.Negated = v; return &c }

// Negate returns p with the opposite meaning.
func Negate(p Pattern) Pattern {
	return p.withNegated(!p.IsNegated())
}

// ChangeNegated returns p with its negated flag set to negated.
func ChangeNegated(p Pattern, negated bool) Pattern {
	if p.IsNegated() == negated {
		return p
	}
	return p.withNegated(negated)
}

// GetColumn returns the column a pattern filters on. For a Custom pattern
// it is the first column the expression references, if any.
func GetColumn(p Pattern) string {
	switch p := p.(type) {
	case *Values:
		return p.Column
	case *Contains:
		return p.Column
	case *Regexp:
		return p.Column
	case *TimeInterval:
		return p.Column
	case *TimeRelative:
		return p.Column
	case *NumberRange:
		return p.Column
	case *MVContains:
		return p.Column
	case *Custom:
		var name string
		visitFirst(p.Expression, func(n ast.Node) bool {
			if c, ok := n.(*ast.Column); ok {
				name = c.Name()
				return true
			}
			return false
		})
		return name
	}
	return ""
}

// GetThing returns a representative value of a pattern: the first of its
// values, its search text or the start of its range. It returns nil for
// patterns with no such value.
func GetThing(p Pattern) any {
	switch p := p.(type) {
	case *Values:
		if len(p.Values) > 0 {
			return p.Values[0]
		}
	case *MVContains:
		if len(p.Values) > 0 {
			return p.Values[0]
		}
	case *Contains:
		return p.Contains
	case *Regexp:
		return p.Regexp
	case *NumberRange:
		return p.Start
	case *Custom:
		var thing any
		visitFirst(p.Expression, func(n ast.Node) bool {
			if l, ok := n.(*ast.Literal); ok && l.Type != ast.NullLiteral {
				thing = l.Value
				return true
			}
			return false
		})
		return thing
	}
	return nil
}

// visitFirst walks n in pre-order until found returns true.
func visitFirst(n ast.Node, found func(ast.Node) bool) {
	if n == nil {
		return
	}
	done := false
	_, _ = ast.Walk(n, ast.PreOrder, func(n ast.Node, _ []ast.Node) (ast.Node, error) {
		if !done && found(n) {
			done = true
		}
		return n, nil
	})
}
