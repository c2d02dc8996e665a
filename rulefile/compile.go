package rulefile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hgrecco/dataframing/transform"
)

// Compile validates f and builds its transformer. Validation errors and
// build errors are returned joined.
func Compile(f *File, opts ...Option) (*transform.Transformer, error) {
	o := buildOptions(opts)

	diags, src, dst := validate(f, o)
	for _, w := range diags.Warnings {
		o.Logger.Warn("rule file warning",
			zap.String("code", w.Code),
			zap.String("subject", w.Subject),
			zap.String("field", w.Field),
			zap.String("message", w.Message),
		)
	}

	if err := diags.Err(); err != nil {
		return nil, err
	}

	c := &compiler{file: f, opts: o, lets: map[string]transform.Expr{}}

	t, err := transform.Build(src, dst, func(_ *transform.Transformer, s *transform.Source, d *transform.Target) {
		c.src = s

		for i := range f.Rules {
			r := &f.Rules[i]

			if r.Target.IsMultiple() {
				comp, ok := c.expr(&r.Expr).(*transform.Computation)
				if !ok {
					continue
				}

				d.Unpack(comp, r.Target...)

				continue
			}

			d.Set(r.Target.First(), c.expr(&r.Expr))
		}

		if f.CopyShared {
			d.CopyShared()
		}
	})
	if err != nil {
		return nil, err
	}

	o.Logger.Debug("compiled rule file",
		zap.String("source", src.Name()),
		zap.String("target", dst.Name()),
		zap.Int("rules", t.Len()),
		zap.Int("computations", t.Computations()),
	)

	return t, nil
}

// CompileFile loads the rule file at path and compiles it.
func CompileFile(path string, opts ...Option) (*transform.Transformer, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	t, err := Compile(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

type compiler struct {
	file *File
	opts Options
	src  *transform.Source
	lets map[string]transform.Expr
}

// expr lowers e into a transform expression. Let computations are built
// once so that every rule using them shares the same node.
func (c *compiler) expr(e *Expr) transform.Expr {
	var base transform.Expr

	switch e.Kind() {
	case ExprField:
		return c.src.Field(e.Field)
	case ExprValue:
		return transform.Lit(e.Value)
	case ExprCall:
		fn, _ := c.opts.Registry.Get(e.Call)

		args := make([]any, len(e.Args))
		for i := range e.Args {
			args[i] = c.expr(&e.Args[i])
		}

		base = transform.Use(fn, args...)
	case ExprRef:
		base = c.let(e.Ref)
	default:
		return transform.Lit(nil)
	}

	comp, ok := base.(*transform.Computation)
	if !ok {
		return base
	}

	switch {
	case e.Index != nil:
		return comp.Index(*e.Index)
	case e.Attr != "":
		return comp.Attr(e.Attr)
	default:
		return comp
	}
}

func (c *compiler) let(name string) transform.Expr {
	if e, ok := c.lets[name]; ok {
		return e
	}

	e := c.expr(c.file.Let[name])
	c.lets[name] = e

	return e
}
