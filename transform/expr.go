package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant of an Expr.
type Kind int

const (
	KindLiteral Kind = iota + 1
	KindField
	KindComputation
	KindProjection
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindField:
		return "field"
	case KindComputation:
		return "computation"
	case KindProjection:
		return "projection"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Expr is a node of a rule: a literal, a source field reference, a
// deferred computation or a projection of one.
type Expr interface {
	Kind() Kind
	String() string
}

// Literal is a constant value.
type Literal struct {
	Value any
}

// Lit wraps v as a literal. Plain values passed where an Expr is expected
// are wrapped automatically; Lit is only needed to pass an Expr value as
// data.
func Lit(v any) *Literal {
	return &Literal{Value: v}
}

func (l *Literal) Kind() Kind { return KindLiteral }

func (l *Literal) String() string {
	if s, ok := l.Value.(string); ok {
		return strconv.Quote(s)
	}

	return fmt.Sprint(l.Value)
}

// FieldRef names a field of the source record. It is only obtained through
// Source, which checks the name against the source schema.
type FieldRef struct {
	name string
}

// Name returns the referenced field name.
func (f *FieldRef) Name() string { return f.name }

func (f *FieldRef) Kind() Kind { return KindField }

func (f *FieldRef) String() string { return "source." + f.name }

// Computation is a function call whose evaluation is deferred until a
// record is transformed. Within one record it is evaluated at most once,
// however many rules reference it.
type Computation struct {
	call invoker
	name string
	args []Expr
	err  error
}

// Use defers the call fn(args...). Arguments may be expressions or plain
// values, which are treated as literals. fn must return a single value or
// a value and an error; mismatches are reported when the rule set is
// built.
func Use(fn any, args ...any) *Computation {
	call, name, err := parseCallable(fn, len(args))

	return &Computation{call: call, name: name, args: exprs(args), err: err}
}

// Call defers fn(args) for a function that takes its arguments as a slice.
func Call(name string, fn func(args []any) (any, error), args ...any) *Computation {
	c := &Computation{call: fn, name: name, args: exprs(args)}
	if fn == nil {
		c.err = &DeclarationError{Func: name, Reason: ErrNotAFunction}
	}

	return c
}

func exprs(args []any) []Expr {
	out := make([]Expr, len(args))
	for i, a := range args {
		out[i] = asExpr(a)
	}

	return out
}

func asExpr(v any) Expr {
	if e, ok := v.(Expr); ok && !isNilExpr(e) {
		return e
	}

	return Lit(v)
}

func isNilExpr(e Expr) bool {
	switch x := e.(type) {
	case *Literal:
		return x == nil
	case *FieldRef:
		return x == nil
	case *Computation:
		return x == nil
	case *Projection:
		return x == nil
	}

	return false
}

// Name returns the name of the deferred function.
func (c *Computation) Name() string { return c.name }

// Args returns the argument expressions.
func (c *Computation) Args() []Expr { return append([]Expr(nil), c.args...) }

func (c *Computation) Kind() Kind { return KindComputation }

func (c *Computation) String() string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = a.String()
	}

	return c.name + "(" + strings.Join(parts, ", ") + ")"
}

// Index projects element i of the computation's result. Negative indexes
// count from the end.
func (c *Computation) Index(i int) *Projection {
	return &Projection{owner: c, sel: selector{index: i}}
}

// Attr projects a named part of the computation's result: a map key, an
// exported struct field or a method without arguments.
func (c *Computation) Attr(name string) *Projection {
	return &Projection{owner: c, sel: selector{attr: name, byAttr: true}}
}

// SplitInto returns the projections [0] through [n-1], for binding one
// computation to several targets.
func (c *Computation) SplitInto(n int) []*Projection {
	out := make([]*Projection, n)
	for i := range out {
		out[i] = c.Index(i)
	}

	return out
}

// Projection selects part of a computation's result. It never evaluates
// on its own: it goes through its owner and so shares its memoized value.
type Projection struct {
	owner *Computation
	sel   selector
}

// Owner returns the computation the projection selects from.
func (p *Projection) Owner() *Computation { return p.owner }

func (p *Projection) Kind() Kind { return KindProjection }

func (p *Projection) String() string {
	return p.owner.String() + p.sel.String()
}
