package funcs

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNotInteger is returned by SafeInt for values that are not integral.
var ErrNotInteger = errors.New("value is not an integer")

// Identity returns v.
func Identity(v any) any { return v }

// Concat formats every value with %v and joins them without separator.
func Concat(values ...any) string {
	var b strings.Builder
	for _, v := range values {
		fmt.Fprint(&b, v)
	}

	return b.String()
}

// Join formats every value with %v and joins them with sep.
func Join(sep string, values ...any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}

	return strings.Join(parts, sep)
}

// Split splits s around sep.
func Split(s, sep string) []string {
	return strings.Split(s, sep)
}

// SplitTrim splits s around sep and trims the spaces around every part.
func SplitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}

// Trim removes leading and trailing white space.
func Trim(s string) string { return strings.TrimSpace(s) }

// Upper maps s to upper case.
func Upper(s string) string { return strings.ToUpper(s) }

// Lower maps s to lower case.
func Lower(s string) string { return strings.ToLower(s) }

// Title maps s to title case using English rules.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// Len returns the length of a string, slice, array or map.
func Len(v any) (int, error) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	case reflect.Invalid:
		return 0, nil
	default:
		return 0, fmt.Errorf("len: unsupported %T", v)
	}
}

// SafeInt converts v to an int. nil and blank strings become 0; floats
// must be integral; strings must hold a decimal integer, so "3.0" is
// rejected.
func SafeInt(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if x {
			return 1, nil
		}

		return 0, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}

		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotInteger, x)
		}

		return i, nil
	case float32:
		return SafeInt(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) ||
			x >= 1<<63 || x < -(1<<63) {
			return 0, fmt.Errorf("%w: %v", ErrNotInteger, x)
		}

		return int(x), nil
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.CanInt():
		return int(rv.Int()), nil
	case rv.CanUint():
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v overflows int", ErrNotInteger, u)
		}

		return int(u), nil
	default:
		return 0, fmt.Errorf("%w: unsupported %T", ErrNotInteger, v)
	}
}

// NoneTo returns def when v is nil, v otherwise.
func NoneTo(v, def any) any {
	if v == nil {
		return def
	}

	return v
}
