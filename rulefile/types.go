package rulefile

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// File is the top level structure of a rule file.
type File struct {
	Version    string           `yaml:"version"`
	Source     SchemaDef        `yaml:"source"`
	Target     SchemaDef        `yaml:"target"`
	CopyShared bool             `yaml:"copy_shared,omitempty"`
	Let        map[string]*Expr `yaml:"let,omitempty"`
	Rules      []Rule           `yaml:"rules"`
}

// SchemaDef declares a schema by listing its fields or by naming a Go
// struct type.
type SchemaDef struct {
	Name   string     `yaml:"name,omitempty"`
	Go     string     `yaml:"go,omitempty"`
	Fields []FieldDef `yaml:"fields,omitempty"`
}

// FieldDef is a schema field. Type is a name accepted by schema.ParseType;
// empty means untyped.
type FieldDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// UnmarshalYAML accepts a bare field name or a {name, type} map.
func (f *FieldDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&f.Name)
	case yaml.MappingNode:
		type plain FieldDef
		return node.Decode((*plain)(f))
	default:
		return fmt.Errorf("line %d: field must be a name or a {name, type} map", node.Line)
	}
}

// StringOrArray is a list of strings that may be written as a single string.
type StringOrArray []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("line %d: expected string or array", node.Line)
	}
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if len(s) == 0 {
		return ""
	}

	return s[0]
}

// IsMultiple returns true if the array has more than one element.
func (s StringOrArray) IsMultiple() bool {
	return len(s) > 1
}

// ExprKind tells which of the expression keys is set.
type ExprKind string

const (
	ExprNone  ExprKind = ""
	ExprField ExprKind = "field"
	ExprValue ExprKind = "value"
	ExprCall  ExprKind = "call"
	ExprRef   ExprKind = "ref"
)

// Expr is a rule expression. Exactly one of Field, Value, Call and Ref is
// set. Index and Attr select part of the result of a call or ref.
type Expr struct {
	Field string `yaml:"field,omitempty"`
	Value any    `yaml:"value,omitempty"`
	Call  string `yaml:"call,omitempty"`
	Args  []Expr `yaml:"args,omitempty"`
	Ref   string `yaml:"ref,omitempty"`
	Index *int   `yaml:"index,omitempty"`
	Attr  string `yaml:"attr,omitempty"`

	// HasValue is set when the value key is present, so that a null value
	// is still a literal.
	HasValue bool `yaml:"-"`
	// Line is the line of the expression in the file, zero if unknown.
	Line int `yaml:"-"`
}

var exprKeys = []string{"field", "value", "call", "args", "ref", "index", "attr"}

// UnmarshalYAML reads a mapping as an expression. Scalars and sequences
// are literals, so that call arguments can be written inline.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		e.Line = node.Line
		e.HasValue = true

		return node.Decode(&e.Value)
	}

	return e.decodeMapping(node)
}

func (e *Expr) decodeMapping(node *yaml.Node, extra ...string) error {
	e.Line = node.Line

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(exprKeys, key.Value) && !slices.Contains(extra, key.Value) {
			return fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
		}

		if key.Value == "value" {
			e.HasValue = true
		}
	}

	type plain Expr

	hasValue, line := e.HasValue, e.Line
	if err := node.Decode((*plain)(e)); err != nil {
		return err
	}

	e.HasValue, e.Line = hasValue, line

	return nil
}

// Kinds returns every expression key that is set.
func (e *Expr) Kinds() []ExprKind {
	var kinds []ExprKind
	if e.Field != "" {
		kinds = append(kinds, ExprField)
	}

	if e.HasValue {
		kinds = append(kinds, ExprValue)
	}

	if e.Call != "" {
		kinds = append(kinds, ExprCall)
	}

	if e.Ref != "" {
		kinds = append(kinds, ExprRef)
	}

	return kinds
}

// Kind returns the expression kind, or ExprNone unless exactly one key is
// set.
func (e *Expr) Kind() ExprKind {
	kinds := e.Kinds()
	if len(kinds) != 1 {
		return ExprNone
	}

	return kinds[0]
}

// HasSelector reports whether index or attr is set.
func (e *Expr) HasSelector() bool {
	return e.Index != nil || e.Attr != ""
}

// Rule maps an expression to one or more target fields.
type Rule struct {
	Target StringOrArray
	Expr
}

// UnmarshalYAML reads the target key and the expression keys of a rule
// from the same mapping.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: rule must be a mapping", node.Line)
	}

	var head struct {
		Target StringOrArray `yaml:"target"`
	}

	if err := node.Decode(&head); err != nil {
		return err
	}

	r.Target = head.Target

	return r.Expr.decodeMapping(node, "target")
}
