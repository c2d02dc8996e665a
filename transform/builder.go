package transform

import (
	"errors"

	"github.com/hgrecco/dataframing/internal/diagnostic"
	"github.com/hgrecco/dataframing/schema"
)

// Diagnostic codes reported by Build.
const (
	CodeUnknownSourceField = "unknown_source_field"
	CodeUnknownTargetField = "unknown_target_field"
	CodeDeclaration        = "declaration"
	CodeMissingSchema      = "missing_schema"
	CodeEmptyUnpack        = "empty_unpack"
)

// BuildFunc is the construction block of a rule set. It receives the
// transformer being built and the proxies used to declare its rules.
type BuildFunc func(t *Transformer, src *Source, dst *Target)

// Build runs fn to declare the rules mapping src records to dst records.
// When fn returns, the rule set is frozen and compiled; every unknown
// field and malformed function found along the way is returned together.
func Build(src, dst *schema.Schema, fn BuildFunc) (*Transformer, error) {
	t := &Transformer{src: src, dst: dst, targets: map[string]int{}}

	if src == nil || dst == nil {
		t.diags.AddError(CodeMissingSchema, "source and target schemas are required", "", "")
		return nil, t.diags.Err()
	}

	if fn == nil {
		return nil, errors.New("transform: nil build function")
	}

	func() {
		defer t.freeze()
		fn(t, &Source{t: t}, &Target{t: t})
	}()

	t.compile()

	if err := t.diags.Err(); err != nil {
		return nil, err
	}

	return t, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(src, dst *schema.Schema, fn BuildFunc) *Transformer {
	t, err := Build(src, dst, fn)
	if err != nil {
		panic(err)
	}

	return t
}

// Source gives access to the fields of the source schema while rules are
// being declared.
type Source struct {
	t *Transformer
}

// Field references the source field called name. An unknown name is
// reported by Build as a *schema.FieldError.
func (s *Source) Field(name string) *FieldRef {
	s.t.mustBuild("Source.Field")

	if !s.t.src.Has(name) {
		s.t.diags.AddErr(CodeUnknownSourceField, schema.NewFieldError(s.t.src, name), s.t.src.Name(), name)
	}

	return &FieldRef{name: name}
}

// Lookup is like Field but reports an unknown name to the caller instead
// of failing the build.
func (s *Source) Lookup(name string) (*FieldRef, error) {
	s.t.mustBuild("Source.Lookup")

	if _, err := s.t.src.Require(name); err != nil {
		return nil, err
	}

	return &FieldRef{name: name}, nil
}

// Schema returns the source schema.
func (s *Source) Schema() *schema.Schema {
	return s.t.src
}

// Target records the rules of the rule set.
type Target struct {
	t *Transformer
}

// Set declares the rule for target field name. v is an Expr or a plain
// value, taken as a literal. Setting a name twice replaces the earlier
// expression but keeps its position.
func (d *Target) Set(name string, v any) {
	d.t.mustBuild("Target.Set")

	if !d.t.dst.Has(name) {
		d.t.diags.AddErr(CodeUnknownTargetField, schema.NewFieldError(d.t.dst, name), d.t.dst.Name(), name)
		return
	}

	d.t.bind(name, asExpr(v))
}

// Unpack binds element i of c's result to names[i].
func (d *Target) Unpack(c *Computation, names ...string) {
	d.t.mustBuild("Target.Unpack")

	if c == nil {
		d.t.diags.AddErr(CodeDeclaration, &DeclarationError{Func: "unpack", Reason: ErrNilComputation}, d.t.dst.Name(), "")
		return
	}

	if len(names) == 0 {
		d.t.diags.AddError(CodeEmptyUnpack, "unpack needs at least one target", c.String(), "")
		return
	}

	for i, p := range c.SplitInto(len(names)) {
		d.Set(names[i], p)
	}
}

// CopyShared declares a copy rule for every field present in both schemas
// that has no rule yet. Later Set calls override these copies.
func (d *Target) CopyShared() {
	d.t.mustBuild("Target.CopyShared")

	for _, name := range schema.Intersect(d.t.src, d.t.dst) {
		if _, ok := d.t.targets[name]; !ok {
			d.t.bind(name, &FieldRef{name: name})
		}
	}
}

// Schema returns the target schema.
func (d *Target) Schema() *schema.Schema {
	return d.t.dst
}

func (t *Transformer) mustBuild(op string) {
	if t.frozen {
		panic(frozenError(op))
	}
}

func (t *Transformer) bind(name string, e Expr) {
	if i, ok := t.targets[name]; ok {
		t.pending[i].expr = e
		return
	}

	t.targets[name] = len(t.pending)
	t.pending = append(t.pending, binding{target: name, expr: e})
}

func (t *Transformer) freeze() {
	t.frozen = true
}

// compile lowers the declared expressions into operands over a node arena.
// Every computation gets one slot, shared by all rules that reach it.
func (t *Transformer) compile() {
	c := compiler{slots: map[*Computation]int{}, diags: &t.diags}

	t.rules = make([]rule, len(t.pending))
	for i, b := range t.pending {
		t.rules[i] = rule{target: b.target, op: c.operand(b.expr)}
	}

	t.nodes = c.nodes
	t.pending = nil
}

type compiler struct {
	slots map[*Computation]int
	nodes []node
	diags *diagnostic.Diagnostics
}

func (c *compiler) operand(e Expr) operand {
	switch x := e.(type) {
	case *Literal:
		return operand{kind: KindLiteral, lit: x.Value}
	case *FieldRef:
		return operand{kind: KindField, field: x.name}
	case *Computation:
		return operand{kind: KindComputation, slot: c.slot(x)}
	case *Projection:
		return operand{kind: KindProjection, slot: c.slot(x.owner), sel: x.sel}
	default:
		return operand{kind: KindLiteral, lit: e}
	}
}

func (c *compiler) slot(comp *Computation) int {
	if comp == nil {
		c.diags.AddErr(CodeDeclaration, &DeclarationError{Func: "projection", Reason: ErrNilComputation}, "", "")
		return -1
	}

	if s, ok := c.slots[comp]; ok {
		return s
	}

	if comp.err != nil {
		c.diags.AddErr(CodeDeclaration, comp.err, comp.name, "")
	}

	args := make([]operand, len(comp.args))
	for i, a := range comp.args {
		args[i] = c.operand(a)
	}

	s := len(c.nodes)
	c.slots[comp] = s
	c.nodes = append(c.nodes, node{name: comp.name, call: comp.call, args: args})

	return s
}
