package schema

import (
	"fmt"
	"reflect"
	"time"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind classifies the scalar types a field can declare.
type Kind int

const (
	KindOther Kind = iota // composite, named non-scalar or untyped

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration
)

// IsNumber reports whether k is an integer or floating point kind.
func (k Kind) IsNumber() bool {
	return k.IsInteger() || k.IsFloat()
}

// IsInteger reports whether k is a signed or unsigned integer kind.
func (k Kind) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool {
	return k >= KindInt && k <= KindInt64
}

// IsUnsigned reports whether k is an unsigned integer kind.
func (k Kind) IsUnsigned() bool {
	return k >= KindUint && k <= KindUint64
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

// KindOf classifies t. Named types are classified by their underlying
// scalar kind, except time.Time and time.Duration.
func KindOf(t reflect.Type) Kind {
	if t == nil {
		return KindOther
	}

	switch t {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	}

	switch t.Kind() {
	case reflect.Int:
		return KindInt
	case reflect.Int8:
		return KindInt8
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint8:
		return KindUint8
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64:
		return KindUint64
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	default:
		return KindOther
	}
}

var typeNames = map[string]reflect.Type{
	"bool":     reflect.TypeFor[bool](),
	"string":   reflect.TypeFor[string](),
	"int":      reflect.TypeFor[int](),
	"int8":     reflect.TypeFor[int8](),
	"int16":    reflect.TypeFor[int16](),
	"int32":    reflect.TypeFor[int32](),
	"int64":    reflect.TypeFor[int64](),
	"uint":     reflect.TypeFor[uint](),
	"uint8":    reflect.TypeFor[uint8](),
	"uint16":   reflect.TypeFor[uint16](),
	"uint32":   reflect.TypeFor[uint32](),
	"uint64":   reflect.TypeFor[uint64](),
	"float32":  reflect.TypeFor[float32](),
	"float64":  reflect.TypeFor[float64](),
	"float":    reflect.TypeFor[float64](),
	"byte":     reflect.TypeFor[byte](),
	"rune":     reflect.TypeFor[rune](),
	"bytes":    reflect.TypeFor[[]byte](),
	"time":     timeType,
	"duration": durationType,
	"error":    reflect.TypeFor[error](),
}

// ParseType resolves a type name as written in rule files. The empty name
// and "any" resolve to nil (untyped).
func ParseType(name string) (reflect.Type, error) {
	if name == "" || name == "any" {
		return nil, nil
	}

	t, ok := typeNames[name]
	if !ok {
		return nil, fmt.Errorf("unknown type name %q", name)
	}

	return t, nil
}
