package transform

import (
	"context"
	"fmt"
	"path"
	"reflect"
	"runtime"

	"github.com/hgrecco/dataframing/schema"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// invoker calls a deferred function with already evaluated arguments.
type invoker func(args []any) (any, error)

// funcName returns "pkg.Func" for a function value.
func funcName(fv reflect.Value) string {
	fn := runtime.FuncForPC(fv.Pointer())
	if fn == nil {
		return fv.Type().String()
	}

	return path.Base(fn.Name())
}

// parseCallable checks that fn can be called with nargs arguments and
// returns an invoker for it.
//
// Supported shapes:
//   - func(args...) T
//   - func(args...) (T, error)
//
// Variadic functions are accepted when nargs covers the fixed parameters.
func parseCallable(fn any, nargs int) (invoker, string, error) {
	if fn == nil {
		return nil, "<nil>", &DeclarationError{Func: "<nil>", Reason: ErrNotAFunction}
	}

	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		name := ft.String()
		return nil, name, &DeclarationError{Func: name, Reason: ErrNotAFunction}
	}

	name := funcName(fv)

	switch {
	case ft.IsVariadic() && nargs < ft.NumIn()-1:
		return nil, name, &DeclarationError{
			Func:   name,
			Reason: ErrArity,
			Detail: fmt.Sprintf("need at least %d, got %d", ft.NumIn()-1, nargs),
		}
	case !ft.IsVariadic() && nargs != ft.NumIn():
		return nil, name, &DeclarationError{
			Func:   name,
			Reason: ErrArity,
			Detail: fmt.Sprintf("need %d, got %d", ft.NumIn(), nargs),
		}
	}

	hasErr := false

	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, name, &DeclarationError{Func: name, Reason: ErrResults, Detail: "second result must be error"}
		}

		hasErr = true
	default:
		return nil, name, &DeclarationError{Func: name, Reason: ErrResults, Detail: "want (T) or (T, error)"}
	}

	call := func(args []any) (any, error) {
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			v, err := schema.Convert(a, paramType(ft, i))
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", name, i, err)
			}

			in[i] = v
		}

		out := fv.Call(in)
		if hasErr && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}

		return out[0].Interface(), nil
	}

	return call, name, nil
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}

	return ft.In(i)
}

// typedSignature describes a function usable by Wrap.
type typedSignature struct {
	name   string
	src    reflect.Type
	dst    reflect.Type
	hasErr bool
}

// parseTyped checks the shape func(context.Context, S, *T) [error].
func parseTyped(fn any) (typedSignature, error) {
	if fn == nil {
		return typedSignature{}, &DeclarationError{Func: "<nil>", Reason: ErrNotAFunction}
	}

	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return typedSignature{}, &DeclarationError{Func: ft.String(), Reason: ErrNotAFunction}
	}

	sig := typedSignature{name: funcName(fv)}
	fail := func(reason error, detail string) (typedSignature, error) {
		return typedSignature{}, &DeclarationError{Func: sig.name, Reason: reason, Detail: detail}
	}

	if ft.NumIn() != 3 || ft.IsVariadic() {
		return fail(ErrArity, fmt.Sprintf("want func(context.Context, S, *T), got %s", ft))
	}

	if ft.In(0) != contextType {
		return fail(ErrNoContext, ft.In(0).String())
	}

	sig.src = ft.In(1)
	if sig.src.Kind() != reflect.Struct {
		return fail(ErrSourceShape, sig.src.String())
	}

	dst := ft.In(2)
	if dst.Kind() != reflect.Pointer || dst.Elem().Kind() != reflect.Struct {
		return fail(ErrTargetShape, dst.String())
	}

	sig.dst = dst.Elem()

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) != errorType {
			return fail(ErrResults, "only a single error result is allowed")
		}

		sig.hasErr = true
	default:
		return fail(ErrResults, "only a single error result is allowed")
	}

	return sig, nil
}
