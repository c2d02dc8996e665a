package funcs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register("double", func(n int) int { return 2 * n }))
	require.Error(t, r.Register("", Trim))
	require.Error(t, r.Register("x", 42))
	require.Error(t, r.Register("y", nil))

	assert.True(t, r.Has("double"))
	assert.False(t, r.Has("triple"))

	fn, ok := r.Get("double")
	require.True(t, ok)
	assert.Equal(t, 8, fn.(func(int) int)(4))

	c := r.Clone()
	c.MustRegister("triple", func(n int) int { return 3 * n })
	assert.False(t, r.Has("triple"))
	assert.Equal(t, []string{"double", "triple"}, c.Names())

	assert.Panics(t, func() { r.MustRegister("bad", "x") })
}

func TestDefault(t *testing.T) {
	t.Parallel()

	r := Default()
	for _, name := range []string{"format", "split_trim", "title", "safe_int", "none_to"} {
		assert.True(t, r.Has(name), name)
	}
}

func TestStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a1true", Concat("a", 1, true))
	assert.Equal(t, "a, 1", Join(", ", "a", 1))
	assert.Equal(t, []string{"Cleese", " John"}, Split("Cleese, John", ","))
	assert.Equal(t, []string{"Cleese", "John"}, SplitTrim("Cleese, John", ","))
	assert.Equal(t, "x", Trim("  x\n"))
	assert.Equal(t, "ABC", Upper("abc"))
	assert.Equal(t, "abc", Lower("ABC"))
	assert.Equal(t, "John Marwood Cleese", Title("john marwood cleese"))
	assert.Equal(t, 3, Identity(3))
}

func TestLen(t *testing.T) {
	t.Parallel()

	n, err := Len([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Len(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = Len(3)
	require.Error(t, err)
}

func TestSafeInt(t *testing.T) {
	t.Parallel()

	ok := []struct {
		in   any
		want int
	}{
		{nil, 0},
		{"", 0},
		{"  ", 0},
		{"42", 42},
		{" 7 ", 7},
		{3.0, 3},
		{float32(2), 2},
		{int8(-4), -4},
		{uint16(9), 9},
		{true, 1},
	}

	for _, tt := range ok {
		got, err := SafeInt(tt.in)
		require.NoError(t, err, "%#v", tt.in)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
	}

	for _, in := range []any{3.5, "abc", "1.5", "3.0", math.NaN(), math.Inf(1), uint64(math.MaxUint64), []int{}} {
		_, err := SafeInt(in)
		require.ErrorIs(t, err, ErrNotInteger, "%#v", in)
	}
}

func TestNoneTo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "n/a", NoneTo(nil, "n/a"))
	assert.Equal(t, 0, NoneTo(0, "n/a"))
}
