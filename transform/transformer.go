package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/hgrecco/dataframing/internal/diagnostic"
	"github.com/hgrecco/dataframing/record"
	"github.com/hgrecco/dataframing/schema"
)

// Transformer holds a frozen rule set between a source and a target
// schema. It keeps no per-record state and is safe for concurrent use.
type Transformer struct {
	src, dst *schema.Schema

	// build phase
	pending []binding
	targets map[string]int
	diags   diagnostic.Diagnostics
	frozen  bool

	// compiled
	rules []rule
	nodes []node
}

type binding struct {
	target string
	expr   Expr
}

type rule struct {
	target string
	op     operand
}

type operand struct {
	kind  Kind
	lit   any
	field string
	slot  int
	sel   selector
}

type node struct {
	name string
	call invoker
	args []operand
}

// Source returns the source schema.
func (t *Transformer) Source() *schema.Schema { return t.src }

// Target returns the target schema.
func (t *Transformer) Target() *schema.Schema { return t.dst }

// Columns returns the target field names in rule order.
func (t *Transformer) Columns() []string {
	out := make([]string, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.target
	}

	return out
}

// Len returns the number of rules.
func (t *Transformer) Len() int { return len(t.rules) }

// Computations returns the number of distinct deferred computations.
func (t *Transformer) Computations() int { return len(t.nodes) }

func (t *Transformer) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s", t.src.Name(), t.dst.Name())

	for _, r := range t.rules {
		fmt.Fprintf(&b, "\n  %s = %s", r.target, t.describe(r.op))
	}

	return b.String()
}

func (t *Transformer) describe(op operand) string {
	switch op.kind {
	case KindLiteral:
		return Lit(op.lit).String()
	case KindField:
		return "source." + op.field
	case KindComputation, KindProjection:
		n := t.nodes[op.slot]
		args := make([]string, len(n.args))
		for i, a := range n.args {
			args[i] = t.describe(a)
		}

		s := n.name + "(" + strings.Join(args, ", ") + ")"
		if op.kind == KindProjection {
			s += op.sel.String()
		}

		return s
	default:
		return "?"
	}
}

// Record transforms in. Results are written to out, or to a fresh record
// when out is nil; passing in as out augments it in place, leaving fields
// without a rule untouched. All rules read in as it was before the call.
func (t *Transformer) Record(in, out record.Record) (record.Record, error) {
	if !t.frozen {
		return nil, &StateError{Op: "Transformer.Record", Reason: "rule set is still being declared"}
	}

	values, err := t.evaluate(in)
	if err != nil {
		return nil, err
	}

	if out == nil {
		out = make(record.Record, len(t.rules))
	}

	for i, r := range t.rules {
		out[r.target] = values[i]
	}

	return out, nil
}

// Map transforms in into a fresh record.
func (t *Transformer) Map(in record.Record) (record.Record, error) {
	return t.Record(in, nil)
}

// Records transforms every record of recs, preserving order.
func (t *Transformer) Records(ctx context.Context, recs []record.Record, opts ...Option) ([]record.Record, error) {
	return ApplyRecords(ctx, t, recs, opts...)
}

// Table transforms every row of tbl. The result has one column per rule,
// in rule order, and a copy of tbl's attributes.
func (t *Transformer) Table(ctx context.Context, tbl *record.Table, opts ...Option) (*record.Table, error) {
	return ApplyTable(ctx, t, tbl, opts...)
}

func (t *Transformer) evaluate(in record.Record) ([]any, error) {
	m := memo{vals: make([]any, len(t.nodes)), done: make([]bool, len(t.nodes))}
	values := make([]any, len(t.rules))

	for i, r := range t.rules {
		v, err := t.eval(in, r.op, &m)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", r.target, err)
		}

		values[i] = v
	}

	return values, nil
}

// memo caches computation results for a single record.
type memo struct {
	vals []any
	done []bool
}

func (t *Transformer) eval(in record.Record, op operand, m *memo) (any, error) {
	switch op.kind {
	case KindLiteral:
		return op.lit, nil
	case KindField:
		return in.Get(op.field)
	case KindComputation:
		return t.force(in, op.slot, m)
	case KindProjection:
		v, err := t.force(in, op.slot, m)
		if err != nil {
			return nil, err
		}

		return op.sel.apply(v)
	default:
		return nil, fmt.Errorf("unknown operand kind %v", op.kind)
	}
}

func (t *Transformer) force(in record.Record, slot int, m *memo) (any, error) {
	if m.done[slot] {
		return m.vals[slot], nil
	}

	n := t.nodes[slot]
	args := make([]any, len(n.args))

	for i, a := range n.args {
		v, err := t.eval(in, a, m)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	v, err := invoke(n.name, n.call, args)
	if err != nil {
		return nil, err
	}

	m.vals[slot], m.done[slot] = v, true

	return v, nil
}

// invoke runs a user function, turning a panic into an error.
func invoke(name string, call invoker, args []any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", name, ErrPanic, r)
		}
	}()

	return call(args)
}
