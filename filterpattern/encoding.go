package filterpattern

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sqlc-dev/druidsql/ast"
	"github.com/sqlc-dev/druidsql/parser"
)

// Patterns encode as objects with a "type" field next to their own fields.
// A Custom pattern encodes its expression as SQL text.

func (p *Values) MarshalJSON() ([]byte, error) {
	type values Values
	return json.Marshal(struct {
		Type Type `json:"type"`
		*values
	}{TypeValues, (*values)(p)})
}

func (p *Contains) MarshalJSON() ([]byte, error) {
	type contains Contains
	return json.Marshal(struct {
		Type Type `json:"type"`
		*contains
	}{TypeContains, (*contains)(p)})
}

func (p *Regexp) MarshalJSON() ([]byte, error) {
	type regexp Regexp
	return json.Marshal(struct {
		Type Type `json:"type"`
		*regexp
	}{TypeRegexp, (*regexp)(p)})
}

func (p *TimeInterval) MarshalJSON() ([]byte, error) {
	type timeInterval TimeInterval
	return json.Marshal(struct {
		Type Type `json:"type"`
		*timeInterval
	}{TypeTimeInterval, (*timeInterval)(p)})
}

func (p *TimeRelative) MarshalJSON() ([]byte, error) {
	type timeRelative TimeRelative
	return json.Marshal(struct {
		Type Type `json:"type"`
		*timeRelative
	}{TypeTimeRelative, (*timeRelative)(p)})
}

func (p *NumberRange) MarshalJSON() ([]byte, error) {
	type numberRange NumberRange
	return json.Marshal(struct {
		Type Type `json:"type"`
		*numberRange
	}{TypeNumberRange, (*numberRange)(p)})
}

func (p *MVContains) MarshalJSON() ([]byte, error) {
	type mvContains MVContains
	return json.Marshal(struct {
		Type Type `json:"type"`
		*mvContains
	}{TypeMVContains, (*mvContains)(p)})
}

// customDocument is the encoded form of a Custom pattern.
type customDocument struct {
	Type       Type   `json:"type" yaml:"type"`
	Negated    bool   `json:"negated" yaml:"negated"`
	Expression string `json:"expression" yaml:"expression"`
}

func (p *Custom) document() customDocument {
	d := customDocument{Type: TypeCustom, Negated: p.Negated}
	if p.Expression != nil {
		d.Expression = p.Expression.String()
	}
	return d
}

func (p *Custom) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.document())
}

func (p *Custom) UnmarshalJSON(data []byte) error {
	var d customDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	return p.fromDocument(d)
}

func (p *Custom) fromDocument(d customDocument) error {
	var expr ast.Node
	if d.Expression != "" {
		var err error
		expr, err = parser.ParseExpression(d.Expression)
		if err != nil {
			return fmt.Errorf("custom filter: %w", err)
		}
	}
	*p = Custom{Negated: d.Negated, Expression: expr}
	return nil
}

func (p *Values) MarshalYAML() (any, error) {
	type values Values
	return struct {
		Type  Type   `yaml:"type"`
		Value values `yaml:",inline"`
	}{TypeValues, values(*p)}, nil
}

func (p *Contains) MarshalYAML() (any, error) {
	type contains Contains
	return struct {
		Type  Type     `yaml:"type"`
		Value contains `yaml:",inline"`
	}{TypeContains, contains(*p)}, nil
}

func (p *Regexp) MarshalYAML() (any, error) {
	type regexp Regexp
	return struct {
		Type  Type   `yaml:"type"`
		Value regexp `yaml:",inline"`
	}{TypeRegexp, regexp(*p)}, nil
}

func (p *TimeInterval) MarshalYAML() (any, error) {
	type timeInterval TimeInterval
	return struct {
		Type  Type         `yaml:"type"`
		Value timeInterval `yaml:",inline"`
	}{TypeTimeInterval, timeInterval(*p)}, nil
}

func (p *TimeRelative) MarshalYAML() (any, error) {
	type timeRelative TimeRelative
	return struct {
		Type  Type         `yaml:"type"`
		Value timeRelative `yaml:",inline"`
	}{TypeTimeRelative, timeRelative(*p)}, nil
}

func (p *NumberRange) MarshalYAML() (any, error) {
	type numberRange NumberRange
	return struct {
		Type  Type        `yaml:"type"`
		Value numberRange `yaml:",inline"`
	}{TypeNumberRange, numberRange(*p)}, nil
}

func (p *MVContains) MarshalYAML() (any, error) {
	type mvContains MVContains
	return struct {
		Type  Type       `yaml:"type"`
		Value mvContains `yaml:",inline"`
	}{TypeMVContains, mvContains(*p)}, nil
}

func (p *Custom) MarshalYAML() (any, error) {
	return p.document(), nil
}

func (p *Custom) UnmarshalYAML(node *yaml.Node) error {
	var d customDocument
	if err := node.Decode(&d); err != nil {
		return err
	}
	return p.fromDocument(d)
}

// newPattern returns an empty pattern of type t.
func newPattern(t Type) (Pattern, error) {
	switch t {
	case TypeValues:
		return &Values{}, nil
	case TypeContains:
		return &Contains{}, nil
	case TypeRegexp:
		return &Regexp{}, nil
	case TypeTimeInterval:
		return &TimeInterval{}, nil
	case TypeTimeRelative:
		return &TimeRelative{}, nil
	case TypeNumberRange:
		return &NumberRange{}, nil
	case TypeMVContains:
		return &MVContains{}, nil
	case TypeCustom:
		return &Custom{}, nil
	}
	return nil, fmt.Errorf("filterpattern: unknown pattern type %q", t)
}

// UnmarshalJSON decodes a pattern from its JSON form.
func UnmarshalJSON(data []byte) (Pattern, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	p, err := newPattern(head.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UnmarshalYAML decodes a pattern from its YAML form.
func UnmarshalYAML(data []byte) (Pattern, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	var head struct {
		Type Type `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, err
	}
	p, err := newPattern(head.Type)
	if err != nil {
		return nil, err
	}
	if err := node.Decode(p); err != nil {
		return nil, err
	}
	return p, nil
}
