package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag that names a record field.
const TagName = "df"

// Of derives a schema from the struct type T.
func Of[T any]() (*Schema, error) {
	return FromType(reflect.TypeFor[T]())
}

// FromType derives a schema from a struct type (or pointer to one).
// Unexported fields and fields tagged `df:"-"` are skipped; fields of
// embedded structs without a name of their own are promoted.
func FromType(t reflect.Type) (*Schema, error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotAStruct, t)
	}

	s, err := New(t.Name())
	if err != nil {
		return nil, err
	}

	s.goType = t
	if err := collectFields(s, t, nil); err != nil {
		return nil, err
	}

	return s, nil
}

func collectFields(s *Schema, t reflect.Type, prefix []int) error {
	for i := range t.NumField() {
		sf := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		name, tagged, skip := fieldName(sf)
		if skip {
			continue
		}

		if sf.Anonymous && !tagged {
			et := sf.Type
			if et.Kind() == reflect.Struct {
				if err := collectFields(s, et, index); err != nil {
					return err
				}

				continue
			}
		}

		if !sf.IsExported() {
			continue
		}

		if err := s.add(Field{Name: name, Type: sf.Type, index: index}); err != nil {
			return err
		}
	}

	return nil
}

// fieldName resolves the record name of a struct field.
func fieldName(sf reflect.StructField) (name string, tagged, skip bool) {
	for _, key := range []string{TagName, "json"} {
		tag, ok := sf.Tag.Lookup(key)
		if !ok {
			continue
		}

		name, _, _ = strings.Cut(tag, ",")
		if name == "-" {
			return "", true, true
		}

		if name != "" {
			return name, true, false
		}
	}

	return sf.Name, false, false
}
