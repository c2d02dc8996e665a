package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ExceptionField is the reserved target field that captures the failure of
// a typed transformation instead of propagating it.
const ExceptionField = "exception"

var (
	ErrEmptyFieldName = errors.New("field name must not be empty")
	ErrDuplicateField = errors.New("duplicate field name")
	ErrNotAStruct     = errors.New("type is not a struct")
)

// Field is a named slot of a record. A nil Type means the field is untyped.
type Field struct {
	Name string
	Type reflect.Type
	// TypeName is the declared type name, kept for display when Type is nil
	// (e.g. a type discovered from source code that has no runtime value).
	TypeName string

	index []int
}

// Untyped returns a field that accepts any value.
func Untyped(name string) Field {
	return Field{Name: name}
}

// Typed returns a field declared with the Go type t.
func Typed(name string, t reflect.Type) Field {
	return Field{Name: name, Type: t}
}

// As returns a field declared with the Go type T.
func As[T any](name string) Field {
	return Typed(name, reflect.TypeFor[T]())
}

// TypeString returns a printable type name, "any" for untyped fields.
func (f Field) TypeString() string {
	switch {
	case f.Type != nil:
		return f.Type.String()
	case f.TypeName != "":
		return f.TypeName
	default:
		return "any"
	}
}

// StructIndex returns the reflect index path of the struct field this field
// was derived from, or nil for declared fields.
func (f Field) StructIndex() []int {
	return f.index
}

// Schema is an immutable, ordered set of fields.
type Schema struct {
	name   string
	fields []Field
	byName map[string]int
	goType reflect.Type
}

// New builds a schema from fields, rejecting empty and duplicate names.
func New(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if err := s.add(f); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, fields ...Field) *Schema {
	s, err := New(name, fields...)
	if err != nil {
		panic(err)
	}

	return s
}

// Names builds a schema of untyped fields.
func Names(name string, names ...string) (*Schema, error) {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Untyped(n)
	}

	return New(name, fields...)
}

func (s *Schema) add(f Field) error {
	if f.Name == "" {
		return fmt.Errorf("schema %s: %w", s.name, ErrEmptyFieldName)
	}

	if _, ok := s.byName[f.Name]; ok {
		return fmt.Errorf("schema %s: %w: %q", s.name, ErrDuplicateField, f.Name)
	}

	s.byName[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)

	return nil
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)

	return out
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}

	return out
}

// Has reports whether the schema declares name.
func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Index returns the position of name, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.byName[name]; ok {
		return i
	}

	return -1
}

// Lookup returns the field called name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}

	return s.fields[i], true
}

// Require is like Lookup but returns a *FieldError for unknown names.
func (s *Schema) Require(name string) (Field, error) {
	f, ok := s.Lookup(name)
	if !ok {
		return Field{}, NewFieldError(s, name)
	}

	return f, nil
}

// HasException reports whether the schema declares ExceptionField.
func (s *Schema) HasException() bool {
	return s.Has(ExceptionField)
}

// GoType returns the struct type the schema was derived from, if any.
func (s *Schema) GoType() reflect.Type {
	return s.goType
}

// String renders the schema as "Name{a, b, c}".
func (s *Schema) String() string {
	return s.name + "{" + strings.Join(s.Names(), ", ") + "}"
}

// Intersect returns the names declared by both schemas, in a's order.
func Intersect(a, b *Schema) []string {
	var out []string

	for _, f := range a.fields {
		if b.Has(f.Name) {
			out = append(out, f.Name)
		}
	}

	return out
}
