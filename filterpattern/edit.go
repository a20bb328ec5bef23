package filterpattern

import (
	"fmt"
	"strings"
	"time"
)

// Now returns the current time. Default time windows are computed from it.
var Now = time.Now

// DefaultTimeColumn is the column of new time patterns that have no other
// column to go on.
const DefaultTimeColumn = "__time"

// ChangeFilterPatternType converts p to a pattern of type t. The column and
// the representative value of p (see GetColumn and GetThing) carry over
// where t has room for them; the other fields get defaults. The negated
// flag is kept.
func ChangeFilterPatternType(p Pattern, t Type) (Pattern, error) {
	if p.Type() == t {
		return p, nil
	}
	column := GetColumn(p)
	thing := GetThing(p)
	negated := p.IsNegated()

	var out Pattern
	switch t {
	case TypeValues:
		out = &Values{Column: column, Values: thingValues(thing)}
	case TypeMVContains:
		out = &MVContains{Column: column, Values: thingValues(thing)}
	case TypeContains:
		out = &Contains{Column: column, Contains: thingString(thing), Bare: isBare(p)}
	case TypeRegexp:
		out = &Regexp{Column: column, Regexp: thingString(thing), Bare: isBare(p)}
	case TypeTimeInterval:
		out = defaultTimeInterval(timeColumn(column))
	case TypeTimeRelative:
		out = defaultTimeRelative(timeColumn(column))
	case TypeNumberRange:
		out = &NumberRange{
			Column:     column,
			Start:      0,
			StartBound: StartInclusive,
			End:        100,
			EndBound:   EndExclusive,
		}
	case TypeCustom:
		return &Custom{Negated: negated, Expression: p.withNegated(false).toExpression()}, nil
	default:
		return nil, fmt.Errorf("filterpattern: unknown pattern type %q", t)
	}
	return ChangeNegated(out, negated), nil
}

// InitPatternForColumn returns the starting pattern for a filter on a
// column of the given SQL type: the current day for a TIMESTAMP column and
// an empty value list otherwise.
func InitPatternForColumn(column, sqlType string) Pattern {
	if strings.EqualFold(strings.TrimSpace(sqlType), "TIMESTAMP") {
		return defaultTimeInterval(column)
	}
	return &Values{Column: column, Values: []any{}}
}

func defaultTimeInterval(column string) *TimeInterval {
	start, end := dayWindow(Now())
	return &TimeInterval{Column: column, Form: FormFunction, Start: start, End: end}
}

// defaultTimeRelative is the last day up to now.
func defaultTimeRelative(column string) *TimeRelative {
	return &TimeRelative{
		Column:        column,
		Anchor:        AnchorTimestamp,
		RangeDuration: "P1D",
		RangeStep:     -1,
		StartBound:    StartInclusive,
		EndBound:      EndExclusive,
	}
}

// isBare reports a string search written without the VARCHAR cast.
func isBare(p Pattern) bool {
	switch p := p.(type) {
	case *Contains:
		return p.Bare
	case *Regexp:
		return p.Bare
	}
	return false
}

func timeColumn(column string) string {
	if column == "" {
		return DefaultTimeColumn
	}
	return column
}

func thingValues(thing any) []any {
	if thing == nil {
		return []any{}
	}
	return []any{thing}
}

func thingString(thing any) string {
	switch thing := thing.(type) {
	case nil:
		return ""
	case string:
		return thing
	case time.Time:
		return thing.UTC().Format(intervalLayout)
	}
	return fmt.Sprint(thing)
}
