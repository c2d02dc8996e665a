package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgrecco/dataframing/record"
)

type person struct {
	LastName  string `df:"last_name"`
	FirstName string `df:"first_name"`
}

type named struct {
	LastName  string `df:"last_name"`
	FirstName string `df:"first_name"`
	FullName  string `df:"full_name"`
}

type namedWithException struct {
	FullName  string `df:"full_name"`
	Exception error  `df:"exception"`
}

type namedWithMessage struct {
	FullName  string `df:"full_name"`
	Exception string `df:"exception"`
}

func fullName(ctx context.Context, src person, dst *named) error {
	if err := CopyShared(ctx); err != nil {
		return err
	}

	dst.FullName = src.LastName + ", " + src.FirstName

	return nil
}

func TestFunc_CopyShared(t *testing.T) {
	t.Parallel()

	f, err := Typed(fullName)
	require.NoError(t, err)

	assert.Equal(t, []string{"last_name", "first_name"}, f.Shared())
	assert.Equal(t, []string{"last_name", "first_name", "full_name"}, f.Columns())
	assert.Equal(t, "person", f.Source().Name())
	assert.Equal(t, "named", f.Target().Name())
	assert.Contains(t, f.Name(), "fullName")

	out, err := f.Call(t.Context(), record.Record{"last_name": "Cleese", "first_name": "John"})
	require.NoError(t, err)
	assert.Equal(t, record.Record{
		"last_name":  "Cleese",
		"first_name": "John",
		"full_name":  "Cleese, John",
	}, out)
}

func TestCopyShared_OutsideCall(t *testing.T) {
	t.Parallel()

	err := CopyShared(t.Context())
	require.ErrorIs(t, err, ErrNoActiveCall)

	var ce *ContextError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "CopyShared", ce.Op)
}

func TestCopyShared_AfterCall(t *testing.T) {
	t.Parallel()

	var leaked context.Context

	f := MustWrap(func(ctx context.Context, src person, dst *named) {
		leaked = ctx
	})

	_, err := f.Map(record.Record{"last_name": "Idle", "first_name": "Eric"})
	require.NoError(t, err)
	require.ErrorIs(t, CopyShared(leaked), ErrNoActiveCall, "the call context is torn down on return")
}

func TestWrap_Declarations(t *testing.T) {
	t.Parallel()

	type empty struct{}

	tests := []struct {
		name   string
		fn     any
		reason error
	}{
		{"nil", nil, ErrNotAFunction},
		{"not a function", "fn", ErrNotAFunction},
		{"arity", func(person, *named) {}, ErrArity},
		{"variadic", func(context.Context, person, ...*named) {}, ErrArity},
		{"no context", func(int, person, *named) {}, ErrNoContext},
		{"source not struct", func(context.Context, string, *named) {}, ErrSourceShape},
		{"source pointer", func(context.Context, *person, *named) {}, ErrSourceShape},
		{"target not pointer", func(context.Context, person, named) {}, ErrTargetShape},
		{"returns value", func(context.Context, person, *named) int { return 0 }, ErrResults},
		{"two results", func(context.Context, person, *named) (int, error) { return 0, nil }, ErrResults},
		{"empty source", func(context.Context, empty, *named) {}, ErrSourceShape},
		{"empty target", func(context.Context, person, *empty) {}, ErrTargetShape},
		{"exception type", func(context.Context, person, *struct {
			Exception int `df:"exception"`
		}) {
		}, ErrExceptionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Wrap(tt.fn)
			require.ErrorIs(t, err, ErrDeclaration)
			require.ErrorIs(t, err, tt.reason)
		})
	}

	assert.Panics(t, func() { MustWrap(42) })
}

func TestFunc_ExceptionCapture(t *testing.T) {
	t.Parallel()

	t.Run("error field", func(t *testing.T) {
		f := MustWrap(func(_ context.Context, src person, dst *namedWithException) {
			dst.FullName = src.LastName + ", " + src.FirstName
		})

		out, err := f.Map(record.Record{"last_name": "Chapman"})
		require.NoError(t, err)
		require.Len(t, out, 1, "no other target field is populated")

		exc, ok := out["exception"].(error)
		require.True(t, ok)
		assert.ErrorIs(t, exc, record.ErrFieldNotFound)
	})

	t.Run("string field", func(t *testing.T) {
		f := MustWrap(func(context.Context, person, *namedWithMessage) error {
			return errors.New("not today")
		})

		out, err := f.Map(record.Record{"last_name": "Gilliam", "first_name": "Terry"})
		require.NoError(t, err)
		assert.Equal(t, record.Record{"exception": "not today"}, out)
	})

	t.Run("panic", func(t *testing.T) {
		f := MustWrap(func(_ context.Context, src person, dst *namedWithException) {
			var m map[string]int
			m[src.LastName] = 1
		})

		out, err := f.Map(record.Record{"last_name": "Palin", "first_name": "Michael"})
		require.NoError(t, err)
		assert.ErrorIs(t, out["exception"].(error), ErrPanic)
	})

	t.Run("success omits exception", func(t *testing.T) {
		f := MustWrap(func(_ context.Context, src person, dst *namedWithException) {
			dst.FullName = src.LastName
		})

		out, err := f.Map(record.Record{"last_name": "Jones", "first_name": "Terry"})
		require.NoError(t, err)
		assert.Equal(t, record.Record{"full_name": "Jones"}, out)
	})
}

func TestFunc_Propagates(t *testing.T) {
	t.Parallel()

	f, err := Typed(fullName)
	require.NoError(t, err)

	in := record.Record{"first_name": "Graham"}
	_, err = f.Map(in)
	require.ErrorIs(t, err, record.ErrFieldNotFound)

	var re *RowError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, -1, re.Row)
	assert.Equal(t, in, re.Record)
	assert.Contains(t, err.Error(), "first_name:")
	assert.Contains(t, re.Dump(), `"Graham"`)
}

func TestFunc_TypeConversion(t *testing.T) {
	t.Parallel()

	type measure struct {
		Count int     `df:"count"`
		Ratio float64 `df:"ratio"`
	}

	type scaled struct {
		Count int64 `df:"count"`
		Total float64
	}

	f := MustWrap(func(ctx context.Context, src measure, dst *scaled) error {
		if err := CopyShared(ctx); err != nil {
			return err
		}

		dst.Total = float64(src.Count) * src.Ratio

		return nil
	})

	out, err := f.Map(record.Record{"count": 4.0, "ratio": 0.5})
	require.NoError(t, err)
	assert.Equal(t, record.Record{"count": int64(4), "Total": 2.0}, out)

	_, err = f.Map(record.Record{"count": 4.5, "ratio": 0.5})
	require.ErrorIs(t, err, record.ErrFieldType)
}

func TestFunc_DecodesText(t *testing.T) {
	t.Parallel()

	type row struct {
		Count int  `df:"count"`
		Ok    bool `df:"ok"`
	}

	type doubled struct {
		Count int `df:"count"`
	}

	f := MustWrap(func(_ context.Context, src row, dst *doubled) {
		if src.Ok {
			dst.Count = 2 * src.Count
		}
	})

	out, err := f.Map(record.Record{"count": "21", "ok": "true"})
	require.NoError(t, err)
	assert.Equal(t, record.Record{"count": 42}, out)

	_, err = f.Map(record.Record{"count": "21.5", "ok": "true"})
	require.ErrorIs(t, err, record.ErrFieldType)
}
