package rulefile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgrecco/dataframing/schema"
)

func codes(t *testing.T, yaml string) []string {
	t.Helper()

	f, err := Parse([]byte(yaml))
	require.NoError(t, err)

	var out []string
	for _, d := range Validate(f).Errors {
		out = append(out, d.Code)
	}

	return out
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(namesYAML))
	require.NoError(t, err)

	res := Validate(f)
	assert.False(t, res.HasErrors(), res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	const schemas = `
source: {fields: [a, b]}
target: {fields: [x, y]}
`

	tests := []struct {
		name  string
		rules string
		want  []string
	}{
		{"unknown target", "rules: [{target: z, field: a}]", []string{CodeUnknownTargetField}},
		{"unknown source", "rules: [{target: x, field: c}]", []string{CodeUnknownSourceField}},
		{"unknown function", "rules: [{target: x, call: uper, args: [{field: a}]}]", []string{CodeUnknownFunction}},
		{"unknown ref", "rules: [{target: x, ref: nope}]", []string{CodeUnknownRef}},
		{"no expression", "rules: [{target: x}]", []string{CodeInvalidExpression}},
		{"two kinds", "rules: [{target: x, field: a, value: 1}]", []string{CodeInvalidExpression}},
		{"args without call", "rules: [{target: x, field: a, args: [1]}]", []string{CodeInvalidExpression}},
		{"index on field", "rules: [{target: x, field: a, index: 0}]", []string{CodeInvalidExpression}},
		{"index and attr", "rules: [{target: x, call: split, args: [{field: a}, ','], index: 0, attr: n}]", []string{CodeInvalidExpression}},
		{"empty target", "rules: [{target: [], field: a}]", []string{CodeEmptyTarget}},
		{"duplicate target", "rules: [{target: x, field: a}, {target: x, field: b}]", []string{CodeDuplicateTarget}},
		{"unpack a field", "rules: [{target: [x, y], field: a}]", []string{CodeNotAComputation}},
		{"unpack a projection", "rules: [{target: [x, y], call: split, args: [{field: a}, ','], index: 0}]", []string{CodeNotAComputation}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, codes(t, schemas+tt.rules))
		})
	}
}

func TestValidate_Lets(t *testing.T) {
	t.Parallel()

	got := codes(t, `
source: {fields: [a]}
target: {fields: [x, y]}
let:
  one: {call: identity, args: [{ref: two}]}
  two: {call: identity, args: [{ref: one}]}
  plain: {field: a}
rules:
  - {target: x, ref: one}
  - {target: y, ref: plain, index: 0}
`)
	assert.Contains(t, got, CodeRefCycle)
	assert.Contains(t, got, CodeNotAComputation)
}

func TestValidate_UnusedLetWarning(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`
source: {fields: [a]}
target: {fields: [x]}
let:
  spare: {call: upper, args: [{field: a}]}
rules:
  - {target: x, field: a}
`))
	require.NoError(t, err)

	res := Validate(f)
	assert.False(t, res.HasErrors())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, CodeUnusedLet, res.Warnings[0].Code)
	assert.Equal(t, "spare", res.Warnings[0].Field)
}

func TestValidate_Suggestions(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`
source: {fields: [full_name]}
target: {fields: [x]}
rules:
  - {target: x, call: uper, args: [{field: fullname}]}
`))
	require.NoError(t, err)

	res := Validate(f)
	require.Len(t, res.Errors, 2)

	assert.Equal(t, CodeUnknownFunction, res.Errors[0].Code)
	assert.Contains(t, res.Errors[0].Suggestions, "upper")

	var fe *schema.FieldError
	require.True(t, errors.As(res.Err(), &fe))
	assert.Equal(t, "fullname", fe.Field)
	assert.Contains(t, fe.Suggestions, "full_name")
}

func TestValidate_Schemas(t *testing.T) {
	t.Parallel()

	got := codes(t, `
source: {}
target: {go: example.com/x.T, fields: [a]}
rules: []
`)
	assert.Equal(t, []string{CodeInvalidSchema, CodeInvalidSchema}, got)

	assert.Equal(t, []string{CodeNilFile}, func() []string {
		var out []string
		for _, d := range Validate(nil).Errors {
			out = append(out, d.Code)
		}

		return out
	}())
}

func TestSchemaDef_Build(t *testing.T) {
	t.Parallel()

	d := SchemaDef{Name: "S", Fields: []FieldDef{{Name: "a", Type: "int"}, {Name: "b"}}}
	s, err := d.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, "S{a, b}", s.String())

	_, err = SchemaDef{Name: "S", Fields: []FieldDef{{Name: "a", Type: "complex"}}}.Build(nil)
	assert.ErrorContains(t, err, "complex")

	_, err = SchemaDef{Name: "S"}.Build(nil)
	assert.ErrorIs(t, err, ErrSchemaUndeclared)

	loaded := schema.MustNew("Loaded", schema.Untyped("z"))
	s, err = SchemaDef{Name: "S", Go: "example.com/x.T"}.Build(func(ref string) (*schema.Schema, error) {
		assert.Equal(t, "example.com/x.T", ref)
		return loaded, nil
	})
	require.NoError(t, err)
	assert.Same(t, loaded, s)
}
