package record

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrFieldNotFound is matched by every *MissingFieldError.
	ErrFieldNotFound = errors.New("field not found in record")
	// ErrFieldType is matched by every *FieldTypeError.
	ErrFieldType = errors.New("field has an incompatible value")
)

// Record maps field names to values.
type Record map[string]any

// Get returns the value stored under name. A missing field is an error,
// never defaulted.
func (r Record) Get(name string) (any, error) {
	v, ok := r[name]
	if !ok {
		return nil, &MissingFieldError{Field: name}
	}

	return v, nil
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	return maps.Clone(r)
}

// Keys returns the field names of r, sorted.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// MissingFieldError reports a lookup of a field absent from a record.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q not found in record", e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrFieldNotFound
}

// FieldTypeError reports a record value that cannot be stored in a typed
// field.
type FieldTypeError struct {
	Field    string
	Expected string
	Value    any
	Err      error
}

func (e *FieldTypeError) Error() string {
	msg := fmt.Sprintf("field %q: cannot use %v (%T) as %s", e.Field, e.Value, e.Value, e.Expected)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *FieldTypeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFieldType}
	}

	return []error{ErrFieldType, e.Err}
}
