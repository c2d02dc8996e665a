package rulefile

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/hgrecco/dataframing/internal/diagnostic"
	"github.com/hgrecco/dataframing/internal/match"
	"github.com/hgrecco/dataframing/schema"
)

// Diagnostic codes reported by Validate.
const (
	CodeNilFile            = "file_is_nil"
	CodeInvalidSchema      = "invalid_schema"
	CodeEmptyTarget        = "empty_target"
	CodeDuplicateTarget    = "duplicate_target"
	CodeUnknownTargetField = "unknown_target_field"
	CodeUnknownSourceField = "unknown_source_field"
	CodeUnknownFunction    = "unknown_function"
	CodeUnknownRef         = "unknown_ref"
	CodeInvalidExpression  = "invalid_expression"
	CodeNotAComputation    = "not_a_computation"
	CodeRefCycle           = "ref_cycle"
	CodeUnusedLet          = "unused_let"
)

// Validate checks f without building it: schemas must resolve, every rule
// must name known fields, functions and refs, and let declarations must
// not refer to themselves.
func Validate(f *File, opts ...Option) *diagnostic.Diagnostics {
	res, _, _ := validate(f, buildOptions(opts))
	return res
}

func validate(f *File, o Options) (*diagnostic.Diagnostics, *schema.Schema, *schema.Schema) {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError(CodeNilFile, "rule file is nil", "", "")
		return res, nil, nil
	}

	src, err := f.Source.Build(o.Loader)
	if err != nil {
		res.AddErr(CodeInvalidSchema, err, "source", f.Source.Name)
	}

	dst, err := f.Target.Build(o.Loader)
	if err != nil {
		res.AddErr(CodeInvalidSchema, err, "target", f.Target.Name)
	}

	v := &validator{file: f, opts: o, res: res, src: src, used: map[string]bool{}}

	v.checkLets()

	seen := map[string]int{}

	for i := range f.Rules {
		r := &f.Rules[i]
		subject := fmt.Sprintf("rule %d", i+1)

		if len(r.Target) == 0 {
			res.AddError(CodeEmptyTarget, "rule has no target", subject, "")
		}

		for _, name := range r.Target {
			if prev, ok := seen[name]; ok {
				res.AddError(CodeDuplicateTarget, fmt.Sprintf("target already set by rule %d", prev), subject, name)
				continue
			}

			seen[name] = i + 1

			if dst != nil && !dst.Has(name) {
				res.AddErr(CodeUnknownTargetField, schema.NewFieldError(dst, name), subject, name)
			}
		}

		v.checkExpr(&r.Expr, subject)

		if r.Target.IsMultiple() && !v.isComputation(&r.Expr) {
			res.AddError(CodeNotAComputation,
				"a rule with several targets needs a call or ref without index or attr", subject, strings.Join(r.Target, ", "))
		}
	}

	for _, name := range v.letNames() {
		if !v.used[name] {
			res.AddWarning(CodeUnusedLet, "let computation is never used", "let", name)
		}
	}

	return res, src, dst
}

type validator struct {
	file *File
	opts Options
	res  *diagnostic.Diagnostics
	src  *schema.Schema
	used map[string]bool
}

func (v *validator) letNames() []string {
	names := make([]string, 0, len(v.file.Let))
	for name := range v.file.Let {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (v *validator) checkLets() {
	const (
		unvisited = iota
		visiting
		done
	)

	state := map[string]int{}

	var visit func(name string, path []string)
	visit = func(name string, path []string) {
		switch state[name] {
		case visiting:
			v.res.AddError(CodeRefCycle, "let refers to itself: "+strings.Join(append(path, name), " -> "), "let", name)
			return
		case done:
			return
		}

		state[name] = visiting

		for _, ref := range refsOf(v.file.Let[name]) {
			if _, ok := v.file.Let[ref]; ok {
				visit(ref, append(slices.Clone(path), name))
			}
		}

		state[name] = done
	}

	for _, name := range v.letNames() {
		if state[name] == unvisited {
			visit(name, nil)
		}

		v.checkExpr(v.file.Let[name], "let "+name)
	}
}

func refsOf(e *Expr) []string {
	if e == nil {
		return nil
	}

	var refs []string
	if e.Ref != "" {
		refs = append(refs, e.Ref)
	}

	for i := range e.Args {
		refs = append(refs, refsOf(&e.Args[i])...)
	}

	return refs
}

func (v *validator) checkExpr(e *Expr, subject string) {
	if e == nil {
		v.res.AddError(CodeInvalidExpression, "missing expression", subject, "")
		return
	}

	kinds := e.Kinds()

	switch {
	case len(kinds) == 0:
		v.res.AddError(CodeInvalidExpression, "expression needs one of field, value, call or ref", subject, "")
		return
	case len(kinds) > 1:
		v.res.AddError(CodeInvalidExpression, fmt.Sprintf("expression mixes %v", kinds), subject, "")
		return
	}

	if len(e.Args) > 0 && kinds[0] != ExprCall {
		v.res.AddError(CodeInvalidExpression, "args are only allowed with call", subject, "")
	}

	if e.HasSelector() {
		if kinds[0] != ExprCall && kinds[0] != ExprRef {
			v.res.AddError(CodeInvalidExpression, "index and attr apply to call or ref only", subject, "")
		}

		if e.Index != nil && e.Attr != "" {
			v.res.AddError(CodeInvalidExpression, "use either index or attr", subject, "")
		}
	}

	switch kinds[0] {
	case ExprField:
		if v.src != nil && !v.src.Has(e.Field) {
			v.res.AddErr(CodeUnknownSourceField, schema.NewFieldError(v.src, e.Field), subject, e.Field)
		}
	case ExprCall:
		if !v.opts.Registry.Has(e.Call) {
			v.res.AddError(CodeUnknownFunction, "unknown function", subject, e.Call,
				match.Suggest(e.Call, v.opts.Registry.Names(), 3)...)
		}

		for i := range e.Args {
			v.checkExpr(&e.Args[i], subject)
		}
	case ExprRef:
		v.used[e.Ref] = true

		if _, ok := v.file.Let[e.Ref]; !ok {
			v.res.AddError(CodeUnknownRef, "unknown let computation", subject, e.Ref,
				match.Suggest(e.Ref, v.letNames(), 3)...)

			return
		}

		if e.HasSelector() && !v.isComputation(v.file.Let[e.Ref]) {
			v.res.AddError(CodeNotAComputation, "index and attr need a let computation bound to a call", subject, e.Ref)
		}
	}
}

// isComputation reports whether e compiles to a computation, so that it
// can be unpacked or projected.
func (v *validator) isComputation(e *Expr) bool {
	for seen := map[string]bool{}; e != nil && !e.HasSelector(); {
		switch e.Kind() {
		case ExprCall:
			return true
		case ExprRef:
			if seen[e.Ref] {
				return false
			}

			seen[e.Ref] = true
			e = v.file.Let[e.Ref]
		default:
			return false
		}
	}

	return false
}
