package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ErrIncompatible is returned by Convert when a value cannot be stored in
// a field of the requested type without changing its meaning.
var ErrIncompatible = errors.New("incompatible value")

// Convert returns v as a value of type t.
//
// Assignable values pass through. Numbers convert between numeric kinds
// only when the conversion is lossless, so 3.0 fits an int field while 3.5
// does not. Named types convert to and from their underlying scalar kind.
// A nil v yields the zero value of t.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)

		return out, nil
	}

	from, to := KindOf(rv.Type()), KindOf(t)

	switch {
	case from.IsNumber() && to.IsNumber():
		if out, ok := convertNumber(rv, t, from, to); ok {
			return out, nil
		}
	case from != KindOther && from == to && rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: %T cannot be stored as %s", ErrIncompatible, v, t)
}

func convertNumber(rv reflect.Value, t reflect.Type, from, to Kind) (reflect.Value, bool) {
	if from.IsSigned() && to.IsUnsigned() && rv.Int() < 0 {
		return reflect.Value{}, false
	}

	if from.IsUnsigned() && to.IsSigned() && rv.Uint() > 1<<63-1 {
		return reflect.Value{}, false
	}

	if from.IsFloat() && to.IsUnsigned() && rv.Float() < 0 {
		return reflect.Value{}, false
	}

	out := rv.Convert(t)
	if !out.Convert(rv.Type()).Equal(rv) {
		return reflect.Value{}, false
	}

	return out, true
}

// Coerce is like Convert but also parses strings into numeric, bool, time
// and duration fields, as read from text formats such as CSV. Integers
// must be written as integers ("3", not "3.0") and times in RFC 3339.
func Coerce(v any, t reflect.Type) (reflect.Value, error) {
	out, err := Convert(v, t)
	if err == nil {
		return out, nil
	}

	s, ok := v.(string)
	if !ok {
		return reflect.Value{}, err
	}

	parsed, perr := parseString(s, t)
	if perr != nil {
		return reflect.Value{}, fmt.Errorf("%w: %q cannot be parsed as %s: %w", ErrIncompatible, s, t, perr)
	}

	return parsed, nil
}

func parseString(s string, t reflect.Type) (reflect.Value, error) {
	var (
		v   any
		err error
	)

	switch k := KindOf(t); {
	case k == KindTime:
		v, err = time.Parse(time.RFC3339Nano, s)
	case k == KindDuration:
		v, err = time.ParseDuration(s)
	case k.IsSigned():
		var n int64
		n, err = strconv.ParseInt(s, 10, t.Bits())
		v = n
	case k.IsUnsigned():
		var n uint64
		n, err = strconv.ParseUint(s, 10, t.Bits())
		v = n
	case k.IsFloat():
		v, err = strconv.ParseFloat(s, t.Bits())
	case k == KindBool:
		v, err = strconv.ParseBool(s)
	default:
		return reflect.Value{}, errors.New("no text form")
	}

	if err != nil {
		return reflect.Value{}, err
	}

	return reflect.ValueOf(v).Convert(t), nil
}
