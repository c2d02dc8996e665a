package transform

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/hgrecco/dataframing/record"
	"github.com/hgrecco/dataframing/schema"
)

// Func is a transformation written as a Go function over two struct types.
// The struct types are the source and target schemas.
type Func struct {
	fn     reflect.Value
	sig    typedSignature
	src    *schema.Schema
	dst    *schema.Schema
	shared []sharedField
	// exception is the target field capturing failures, if declared.
	exception *schema.Field
}

type sharedField struct {
	name     string
	src, dst []int
}

// Wrap validates fn and returns it as a transformation. fn must have the
// shape func(context.Context, S, *T) or func(context.Context, S, *T) error
// with S and T struct types; anything else is a *DeclarationError.
//
// If T declares an "exception" field (of type error, string or any), a
// failure inside fn, including a source record missing a field of S, is
// stored there instead of being returned.
func Wrap(fn any) (*Func, error) {
	sig, err := parseTyped(fn)
	if err != nil {
		return nil, err
	}

	f := &Func{fn: reflect.ValueOf(fn), sig: sig}

	if f.src, err = schema.FromType(sig.src); err != nil {
		return nil, &DeclarationError{Func: sig.name, Reason: ErrSourceShape, Detail: err.Error()}
	}

	if f.dst, err = schema.FromType(sig.dst); err != nil {
		return nil, &DeclarationError{Func: sig.name, Reason: ErrTargetShape, Detail: err.Error()}
	}

	if f.src.Len() == 0 {
		return nil, &DeclarationError{Func: sig.name, Reason: ErrSourceShape, Detail: sig.src.String() + " declares no fields"}
	}

	if f.dst.Len() == 0 {
		return nil, &DeclarationError{Func: sig.name, Reason: ErrTargetShape, Detail: sig.dst.String() + " declares no fields"}
	}

	if ex, ok := f.dst.Lookup(schema.ExceptionField); ok {
		if !isExceptionType(ex.Type) {
			return nil, &DeclarationError{Func: sig.name, Reason: ErrExceptionType, Detail: ex.Type.String()}
		}

		f.exception = &ex
	}

	for _, name := range schema.Intersect(f.src, f.dst) {
		if name == schema.ExceptionField {
			continue
		}

		s, _ := f.src.Lookup(name)
		d, _ := f.dst.Lookup(name)
		f.shared = append(f.shared, sharedField{name: name, src: s.StructIndex(), dst: d.StructIndex()})
	}

	return f, nil
}

// Typed is Wrap for a statically typed function.
func Typed[S, T any](fn func(ctx context.Context, src S, dst *T) error) (*Func, error) {
	return Wrap(fn)
}

// MustWrap is like Wrap but panics on error.
func MustWrap(fn any) *Func {
	f, err := Wrap(fn)
	if err != nil {
		panic(err)
	}

	return f
}

func isExceptionType(t reflect.Type) bool {
	return t == errorType || t.Kind() == reflect.String ||
		(t.Kind() == reflect.Interface && t.NumMethod() == 0)
}

// Name returns the wrapped function name.
func (f *Func) Name() string { return f.sig.name }

// Source returns the schema derived from the source struct.
func (f *Func) Source() *schema.Schema { return f.src }

// Target returns the schema derived from the target struct.
func (f *Func) Target() *schema.Schema { return f.dst }

// Shared returns the names CopyShared copies.
func (f *Func) Shared() []string {
	out := make([]string, len(f.shared))
	for i, s := range f.shared {
		out[i] = s.name
	}

	return out
}

// Columns returns the target field names in declaration order.
func (f *Func) Columns() []string { return f.dst.Names() }

// Map runs the transformation on in with a background context.
func (f *Func) Map(in record.Record) (record.Record, error) {
	return f.Call(context.Background(), in)
}

// Records transforms every record of recs, preserving order.
func (f *Func) Records(ctx context.Context, recs []record.Record, opts ...Option) ([]record.Record, error) {
	return ApplyRecords(ctx, f, recs, opts...)
}

// Table transforms every row of tbl into a table with the target columns.
func (f *Func) Table(ctx context.Context, tbl *record.Table, opts ...Option) (*record.Table, error) {
	return ApplyTable(ctx, f, tbl, opts...)
}

// Call decodes in into a fresh source value, runs the function against a
// fresh target value and returns the target fields as a record. The
// exception field is only present when a failure was captured.
func (f *Func) Call(ctx context.Context, in record.Record) (record.Record, error) {
	dst := reflect.New(f.sig.dst)

	if err := f.run(ctx, in, dst); err != nil {
		if f.exception != nil {
			return f.captured(err), nil
		}

		return nil, &RowError{Row: -1, Record: in, Err: err}
	}

	out := make(record.Record, f.dst.Len())
	for _, fd := range f.dst.Fields() {
		if fd.Name == schema.ExceptionField {
			continue
		}

		out[fd.Name] = dst.Elem().FieldByIndex(fd.StructIndex()).Interface()
	}

	return out, nil
}

func (f *Func) run(ctx context.Context, in record.Record, dst reflect.Value) (err error) {
	src, err := f.decode(in)
	if err != nil {
		return err
	}

	state := &callState{src: src, dst: dst.Elem(), shared: f.shared}
	defer state.closed.Store(true)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", f.sig.name, ErrPanic, r)
		}
	}()

	out := f.fn.Call([]reflect.Value{
		reflect.ValueOf(context.WithValue(ctx, callKey{}, state)),
		src,
		dst,
	})

	if f.sig.hasErr && !out[0].IsNil() {
		return out[0].Interface().(error)
	}

	return nil
}

func (f *Func) decode(in record.Record) (reflect.Value, error) {
	src := reflect.New(f.sig.src).Elem()

	for _, fd := range f.src.Fields() {
		v, err := in.Get(fd.Name)
		if err != nil {
			return reflect.Value{}, err
		}

		cv, err := schema.Coerce(v, fd.Type)
		if err != nil {
			return reflect.Value{}, &record.FieldTypeError{Field: fd.Name, Expected: fd.TypeString(), Value: v, Err: err}
		}

		src.FieldByIndex(fd.StructIndex()).Set(cv)
	}

	return src, nil
}

func (f *Func) captured(err error) record.Record {
	if f.exception.Type.Kind() == reflect.String {
		return record.Record{schema.ExceptionField: err.Error()}
	}

	return record.Record{schema.ExceptionField: err}
}

type callKey struct{}

// callState is the explicit per-call context read by CopyShared.
type callState struct {
	src    reflect.Value
	dst    reflect.Value
	shared []sharedField
	closed atomic.Bool
}

// CopyShared copies every field declared by both the source and the target
// struct from the source value to the target value of the typed
// transformation running in ctx. Outside such a call it returns a
// *ContextError.
func CopyShared(ctx context.Context) error {
	state, _ := ctx.Value(callKey{}).(*callState)
	if state == nil || state.closed.Load() {
		return &ContextError{Op: "CopyShared"}
	}

	for _, sf := range state.shared {
		v := state.src.FieldByIndex(sf.src)
		d := state.dst.FieldByIndex(sf.dst)

		cv, err := schema.Convert(v.Interface(), d.Type())
		if err != nil {
			return fmt.Errorf("copy %q: %w", sf.name, err)
		}

		d.Set(cv)
	}

	return nil
}
