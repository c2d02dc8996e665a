package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/hgrecco/dataframing/record"
)

var (
	ErrDeclaration     = errors.New("malformed function declaration")
	ErrNotAFunction    = errors.New("value is not a function")
	ErrNilComputation  = errors.New("computation is nil")
	ErrArity           = errors.New("wrong number of arguments")
	ErrResults         = errors.New("unsupported results")
	ErrNoContext       = errors.New("first parameter must be context.Context")
	ErrSourceShape     = errors.New("source parameter must be a struct")
	ErrTargetShape     = errors.New("target parameter must be a pointer to a struct")
	ErrExceptionType   = errors.New("exception field must be of type error, string or any")
	ErrInvalidState    = errors.New("invalid transformer state")
	ErrNoActiveCall    = errors.New("no active typed transformation")
	ErrPoolUnavailable = errors.New("parallel execution requested but no worker pool is available")
	ErrInvalidWorkers  = errors.New("worker count must be at least 1")
	ErrProjection      = errors.New("projection failed")
	ErrPanic           = errors.New("function panicked")
)

// DeclarationError reports a function that cannot be used as a
// transformation or deferred computation. It is raised at build time.
type DeclarationError struct {
	Func   string
	Reason error
	Detail string
}

func (e *DeclarationError) Error() string {
	msg := fmt.Sprintf("declaration of %s: %v", e.Func, e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

func (e *DeclarationError) Unwrap() []error {
	return []error{ErrDeclaration, e.Reason}
}

// StateError reports use of a transformer or its proxies in the wrong
// phase. Proxies panic with it once the rule set is frozen.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

func frozenError(op string) *StateError {
	return &StateError{Op: op, Reason: "rule set is frozen"}
}

// ContextError reports a helper that needs an active typed transformation
// called outside of one.
type ContextError struct {
	Op string
}

func (e *ContextError) Error() string {
	return e.Op + ": called outside of a typed transformation"
}

func (e *ContextError) Unwrap() error {
	return ErrNoActiveCall
}

// ConfigError reports batch options that cannot be honored. It is
// returned before any row is processed.
type ConfigError struct {
	Option string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("option %s: %v", e.Option, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ProjectionError reports a selector that could not be applied to the
// result of its computation.
type ProjectionError struct {
	Selector string
	Value    any
	Detail   string
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projection %s on %T: %s", e.Selector, e.Value, e.Detail)
}

func (e *ProjectionError) Unwrap() error {
	return ErrProjection
}

// RowError annotates a failure with the source record that caused it.
// Row is the position in the batch, or -1 for a single record call.
type RowError struct {
	Row    int
	Record record.Record
	Err    error
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func (e *RowError) Error() string {
	var b strings.Builder
	if e.Row >= 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}

	b.WriteString(e.Err.Error())
	b.WriteString(dumper.Sprintf(" (record: %v)", map[string]any(e.Record)))

	return b.String()
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Dump renders the offending record in full, one field per line.
func (e *RowError) Dump() string {
	return dumper.Sdump(map[string]any(e.Record))
}

func atRow(err error, row int, rec record.Record) *RowError {
	var re *RowError
	if errors.As(err, &re) {
		return &RowError{Row: row, Record: re.Record, Err: re.Err}
	}

	return &RowError{Row: row, Record: rec, Err: err}
}
