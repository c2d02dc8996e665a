package transform

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgrecco/dataframing/record"
	"github.com/hgrecco/dataframing/schema"
)

func splitNames(t *testing.T, sp *splitter) *Transformer {
	t.Helper()

	src := mustNames("Person", "full_name")
	dst := mustNames("Named", "last_name", "first_name", "initial")

	tr, err := Build(src, dst, func(_ *Transformer, s *Source, d *Target) {
		parts := Use(sp.split, s.Field("full_name"))
		d.Unpack(parts, "last_name", "first_name")
		d.Set("initial", Use(initial, parts.Index(1)))
	})
	require.NoError(t, err)

	return tr
}

func TestTransformer_SplitViaProjection(t *testing.T) {
	t.Parallel()

	sp := &splitter{}
	tr := splitNames(t, sp)

	out, err := tr.Map(record.Record{"full_name": "Cleese, John"})
	require.NoError(t, err)

	assert.Equal(t, record.Record{
		"last_name":  "Cleese",
		"first_name": "John",
		"initial":    "J.",
	}, out)
	assert.Equal(t, 2, tr.Computations())
}

func TestTransformer_Memoization(t *testing.T) {
	t.Parallel()

	sp := &splitter{}
	tr := splitNames(t, sp)

	_, err := tr.Map(record.Record{"full_name": "Cleese, John"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sp.calls.Load(), "three rules share one computation")

	recs := []record.Record{
		{"full_name": "Idle, Eric"},
		{"full_name": "Palin, Michael"},
		{"full_name": "Jones, Terry"},
	}

	_, err = tr.Records(t.Context(), recs)
	require.NoError(t, err)
	assert.Equal(t, int64(4), sp.calls.Load(), "one call per record")
}

func TestTransformer_InPlace(t *testing.T) {
	t.Parallel()

	src := mustNames("Person", "last_name", "first_name")
	dst := mustNames("Person+", "full_name")

	tr := MustBuild(src, dst, func(_ *Transformer, s *Source, d *Target) {
		d.Set("full_name", Use(fmt.Sprintf, "%s, %s", s.Field("last_name"), s.Field("first_name")))
	})

	in := record.Record{"last_name": "Cleese", "first_name": "John", "age": 84}

	out, err := tr.Record(in, in)
	require.NoError(t, err)

	assert.Equal(t, record.Record{
		"last_name":  "Cleese",
		"first_name": "John",
		"age":        84,
		"full_name":  "Cleese, John",
	}, in)
	assert.Equal(t, in, out)

	fresh, err := tr.Record(record.Record{"last_name": "Idle", "first_name": "Eric"}, nil)
	require.NoError(t, err)
	assert.Equal(t, record.Record{"full_name": "Idle, Eric"}, fresh)
}

func TestTransformer_ReadsInputBeforeWriting(t *testing.T) {
	t.Parallel()

	src := mustNames("S", "a", "b")
	dst := mustNames("T", "a", "b")

	tr := MustBuild(src, dst, func(_ *Transformer, s *Source, d *Target) {
		d.Set("a", s.Field("b"))
		d.Set("b", s.Field("a"))
	})

	in := record.Record{"a": 1, "b": 2}
	_, err := tr.Record(in, in)
	require.NoError(t, err)
	assert.Equal(t, record.Record{"a": 2, "b": 1}, in)
}

func TestTransformer_LookupFailure(t *testing.T) {
	t.Parallel()

	tr := splitNames(t, &splitter{})

	_, err := tr.Map(record.Record{"other": 1})
	require.ErrorIs(t, err, record.ErrFieldNotFound)

	var mf *record.MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "full_name", mf.Field)
	assert.Contains(t, err.Error(), `target "last_name"`)
}

type point struct {
	X, Y int
}

func (p point) Sum() int { return p.X + p.Y }

func (p point) Check() (bool, error) { return false, errors.New("unchecked") }

func TestTransformer_Projections(t *testing.T) {
	t.Parallel()

	src := mustNames("S", "v")
	mk := func(sel func(c *Computation) Expr, value any) (any, error) {
		dst := mustNames("T", "out")
		tr := MustBuild(src, dst, func(_ *Transformer, s *Source, d *Target) {
			c := Use(func(v any) any { return v }, s.Field("v"))
			d.Set("out", sel(c))
		})

		out, err := tr.Map(record.Record{"v": value})
		if err != nil {
			return nil, err
		}

		return out["out"], nil
	}

	tests := []struct {
		name  string
		sel   func(c *Computation) Expr
		value any
		want  any
	}{
		{"index", func(c *Computation) Expr { return c.Index(1) }, []int{1, 2, 3}, 2},
		{"negative index", func(c *Computation) Expr { return c.Index(-1) }, []string{"a", "b"}, "b"},
		{"array", func(c *Computation) Expr { return c.Index(0) }, [2]int{7, 8}, 7},
		{"map key", func(c *Computation) Expr { return c.Attr("k") }, map[string]any{"k": "v"}, "v"},
		{"struct field", func(c *Computation) Expr { return c.Attr("Y") }, point{1, 2}, 2},
		{"pointer field", func(c *Computation) Expr { return c.Attr("X") }, &point{5, 6}, 5},
		{"method", func(c *Computation) Expr { return c.Attr("Sum") }, point{1, 2}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mk(tt.sel, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	failures := []struct {
		name  string
		sel   func(c *Computation) Expr
		value any
	}{
		{"out of range", func(c *Computation) Expr { return c.Index(3) }, []int{1}},
		{"not indexable", func(c *Computation) Expr { return c.Index(0) }, 12},
		{"nil", func(c *Computation) Expr { return c.Index(0) }, nil},
		{"missing key", func(c *Computation) Expr { return c.Attr("z") }, map[string]int{"a": 1}},
		{"unexported", func(c *Computation) Expr { return c.Attr("x") }, struct{ x int }{1}},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mk(tt.sel, tt.value)
			require.ErrorIs(t, err, ErrProjection)
		})
	}

	t.Run("method error", func(t *testing.T) {
		_, err := mk(func(c *Computation) Expr { return c.Attr("Check") }, point{})
		require.EqualError(t, err, `target "out": unchecked`)
	})
}

func TestTransformer_ErrorsAndPanics(t *testing.T) {
	t.Parallel()

	src := mustNames("S", "n")
	dst := mustNames("T", "out")

	boom := errors.New("boom")

	failing := MustBuild(src, dst, func(_ *Transformer, s *Source, d *Target) {
		d.Set("out", Use(func(int) (int, error) { return 0, boom }, s.Field("n")))
	})

	_, err := failing.Map(record.Record{"n": 1})
	require.ErrorIs(t, err, boom)

	panicking := MustBuild(src, dst, func(_ *Transformer, s *Source, d *Target) {
		d.Set("out", Use(func(n int) int { return 10 / n }, s.Field("n")))
	})

	_, err = panicking.Map(record.Record{"n": 0})
	require.ErrorIs(t, err, ErrPanic)

	out, err := panicking.Map(record.Record{"n": 2.0})
	require.NoError(t, err, "an integral float converts to the int parameter")
	assert.Equal(t, 5, out["out"])

	_, err = panicking.Map(record.Record{"n": "2"})
	require.ErrorIs(t, err, schema.ErrIncompatible)
}

// badName dereferences its receiver, so Last panics on a nil *badName.
type badName struct{ last string }

func (b *badName) Last() string { return b.last }

func TestTransformer_MethodPanics(t *testing.T) {
	t.Parallel()

	src := mustNames("S", "n")
	dst := mustNames("T", "last")

	tr := MustBuild(src, dst, func(_ *Transformer, s *Source, d *Target) {
		d.Set("last", Use(func(any) *badName { return nil }, s.Field("n")).Attr("Last"))
	})

	var err error
	require.NotPanics(t, func() { _, err = tr.Map(record.Record{"n": 1}) })
	require.ErrorIs(t, err, ErrPanic)

	recs := make([]record.Record, 8)
	for i := range recs {
		recs[i] = record.Record{"n": i}
	}

	require.NotPanics(t, func() { _, err = tr.Records(t.Context(), recs, WithWorkers(4)) })

	var re *RowError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, []int{0, 2, 4, 6}, re.Row, "each worker fails on its first row")
	assert.ErrorIs(t, err, ErrPanic)
}

func TestTransformer_CallAndNested(t *testing.T) {
	t.Parallel()

	src := mustNames("S", "words")
	dst := mustNames("T", "shout", "count", "tag")

	join := Call("join", func(args []any) (any, error) {
		words, ok := args[0].([]string)
		if !ok {
			return nil, fmt.Errorf("join: unexpected %T", args[0])
		}

		return strings.Join(words, args[1].(string)), nil
	}, Use(strings.Fields, s0(src)), "-")

	tr, err := Build(src, dst, func(_ *Transformer, s *Source, d *Target) {
		d.Set("shout", Use(strings.ToUpper, join))
		d.Set("count", Use(func(ws []string) int { return len(ws) }, join.Args()[0]))
		d.Set("tag", Lit("v1"))
	})
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Computations())

	out, err := tr.Map(record.Record{"words": "and now  for"})
	require.NoError(t, err)
	assert.Equal(t, record.Record{"shout": "AND-NOW-FOR", "count": 3, "tag": "v1"}, out)

	desc := tr.String()
	assert.Contains(t, desc, "S -> T")
	assert.Contains(t, desc, `tag = "v1"`)
	assert.Contains(t, desc, "source.words")
}

// s0 references the first field of a schema outside a build block, the
// way a helper shared between rule sets would.
func s0(s *schema.Schema) *FieldRef {
	return &FieldRef{name: s.Names()[0]}
}
