package parser

import (
	_ "embed"
	"fmt"
	"io"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed functions.yaml
var defaultFunctionsYAML []byte

// FunctionTable lists the function names the parser recognizes. Names are
// matched case-insensitively.
type FunctionTable struct {
	// Parenless functions are called without parentheses, like
	// CURRENT_TIMESTAMP.
	Parenless []string `yaml:"parenless"`
	// Keywords are functions spelled like reserved words, like LEFT. They
	// are only recognized in front of "(".
	Keywords []string `yaml:"keywords"`
	// Functions are all other known functions.
	Functions []string `yaml:"functions"`
	// Strict rejects calls of functions not listed in the table.
	Strict bool `yaml:"strict"`

	parenless map[string]bool
	keywords  map[string]bool
	known     map[string]bool
}

// LoadFunctionTable reads a function table in YAML form.
func LoadFunctionTable(r io.Reader) (*FunctionTable, error) {
	var t FunctionTable
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && err != io.EOF {
		return nil, fmt.Errorf("function table: %w", err)
	}
	t.index()
	return &t, nil
}

// NewFunctionTable returns a table built from the given lists.
func NewFunctionTable(parenless, keywords, functions []string) *FunctionTable {
	t := &FunctionTable{Parenless: parenless, Keywords: keywords, Functions: functions}
	t.index()
	return t
}

var (
	defaultTableOnce sync.Once
	defaultTable     *FunctionTable
)

// DefaultFunctionTable returns the built-in table of Druid SQL functions.
// The returned table is shared and must not be modified.
func DefaultFunctionTable() *FunctionTable {
	defaultTableOnce.Do(func() {
		var t FunctionTable
		if err := yaml.Unmarshal(defaultFunctionsYAML, &t); err != nil {
			panic(fmt.Sprintf("parser: embedded function table: %v", err))
		}
		t.index()
		defaultTable = &t
	})
	return defaultTable
}

func fold(name string) string {
	return cases.Fold().String(name)
}

func (t *FunctionTable) index() {
	t.parenless = make(map[string]bool, len(t.Parenless))
	t.keywords = make(map[string]bool, len(t.Keywords))
	t.known = make(map[string]bool, len(t.Parenless)+len(t.Keywords)+len(t.Functions))
	for _, name := range t.Parenless {
		t.parenless[fold(name)] = true
		t.known[fold(name)] = true
	}
	for _, name := range t.Keywords {
		t.keywords[fold(name)] = true
		t.known[fold(name)] = true
	}
	for _, name := range t.Functions {
		t.known[fold(name)] = true
	}
}

// IsParenless reports whether name is called without parentheses.
func (t *FunctionTable) IsParenless(name string) bool {
	return t.parenless[fold(name)]
}

// IsKeywordFunction reports whether the reserved word name is also a function.
func (t *FunctionTable) IsKeywordFunction(name string) bool {
	return t.keywords[fold(name)]
}

// IsKnown reports whether name is listed in the table.
func (t *FunctionTable) IsKnown(name string) bool {
	return t.known[fold(name)]
}
