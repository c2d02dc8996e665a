package transform

import (
	"fmt"
	"reflect"
	"strconv"
)

type selector struct {
	index  int
	attr   string
	byAttr bool
}

func (s selector) String() string {
	if s.byAttr {
		return "." + s.attr
	}

	return "[" + strconv.Itoa(s.index) + "]"
}

func (s selector) apply(v any) (any, error) {
	if v == nil {
		return nil, &ProjectionError{Selector: s.String(), Value: v, Detail: "value is nil"}
	}

	if s.byAttr {
		return s.applyAttr(v)
	}

	return s.applyIndex(v)
}

func (s selector) applyIndex(v any) (any, error) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, &ProjectionError{Selector: s.String(), Value: v, Detail: "value is not indexable"}
	}

	i := s.index
	if i < 0 {
		i += rv.Len()
	}

	if i < 0 || i >= rv.Len() {
		return nil, &ProjectionError{
			Selector: s.String(),
			Value:    v,
			Detail:   fmt.Sprintf("index out of range with length %d", rv.Len()),
		}
	}

	return rv.Index(i).Interface(), nil
}

func (s selector) applyAttr(v any) (any, error) {
	rv := reflect.ValueOf(v)

	if m := rv.MethodByName(s.attr); m.IsValid() {
		return s.callMethod(v, m)
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, &ProjectionError{Selector: s.String(), Value: v, Detail: "value is nil"}
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}

		e := rv.MapIndex(reflect.ValueOf(s.attr).Convert(rv.Type().Key()))
		if !e.IsValid() {
			return nil, &ProjectionError{Selector: s.String(), Value: v, Detail: "key not found"}
		}

		return e.Interface(), nil
	case reflect.Struct:
		f, ok := rv.Type().FieldByName(s.attr)
		if ok && f.IsExported() {
			return rv.FieldByIndex(f.Index).Interface(), nil
		}
	}

	return nil, &ProjectionError{Selector: s.String(), Value: v, Detail: "no such attribute"}
}

func (s selector) callMethod(v any, m reflect.Value) (res any, err error) {
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() == 0 || mt.NumOut() > 2 ||
		(mt.NumOut() == 2 && mt.Out(1) != errorType) {
		return nil, &ProjectionError{Selector: s.String(), Value: v, Detail: "method must take no arguments and return (T) or (T, error)"}
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%s: %w: %v", s, ErrPanic, r)
		}
	}()

	out := m.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}

	return out[0].Interface(), nil
}
