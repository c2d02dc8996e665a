package validate

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/hgrecco/dataframing/record"
	"github.com/hgrecco/dataframing/schema"
)

// Table validates the columns of tbl against s.
func Table(tbl *record.Table, s *schema.Schema, opts ...Option) *Report {
	v := newValidator(s, tbl.Len(), opts)

	var present []schema.Field

	for _, f := range s.Fields() {
		if tbl.HasColumn(f.Name) {
			present = append(present, f)
		} else if !v.add(Issue{Row: -1, Column: f.Name, Code: CodeMissingColumn, Expected: f.TypeString()}) {
			return v.done()
		}
	}

	if v.opts.strict {
		for _, c := range tbl.Columns() {
			if !s.Has(c) && !v.add(Issue{Row: -1, Column: c, Code: CodeUnknownColumn}) {
				return v.done()
			}
		}
	}

	for _, f := range present {
		values, _ := tbl.Column(f.Name)
		for row, val := range values {
			if !v.check(row, f, val) {
				return v.done()
			}
		}
	}

	return v.done()
}

// Records validates each record against s.
func Records(recs []record.Record, s *schema.Schema, opts ...Option) *Report {
	v := newValidator(s, len(recs), opts)

	for row, rec := range recs {
		for _, f := range s.Fields() {
			val, ok := rec[f.Name]
			if !ok {
				if !v.add(Issue{Row: row, Column: f.Name, Code: CodeMissingField, Expected: f.TypeString()}) {
					return v.done()
				}

				continue
			}

			if !v.check(row, f, val) {
				return v.done()
			}
		}

		if v.opts.strict {
			for _, k := range rec.Keys() {
				if !s.Has(k) && !v.add(Issue{Row: row, Column: k, Code: CodeUnknownColumn}) {
					return v.done()
				}
			}
		}
	}

	return v.done()
}

// Value checks a single value against the declared type t. A nil t
// accepts anything.
func Value(t reflect.Type, val any, opts ...Option) error {
	if code := checkValue(t, val, buildOptions(opts)); code != "" {
		return fmt.Errorf("%s: expected %s, got %s", code, t, typeName(val))
	}

	return nil
}

type validator struct {
	opts   options
	report *Report
}

func newValidator(s *schema.Schema, rows int, opts []Option) *validator {
	return &validator{
		opts:   buildOptions(opts),
		report: &Report{Schema: s.Name(), Rows: rows},
	}
}

func (v *validator) check(row int, f schema.Field, val any) bool {
	code := checkValue(f.Type, val, v.opts)
	if code == "" {
		return true
	}

	return v.add(Issue{Row: row, Column: f.Name, Code: code, Expected: f.TypeString(), Got: typeName(val), Value: val})
}

// add records it and reports whether validation may continue.
func (v *validator) add(it Issue) bool {
	v.report.Issues = append(v.report.Issues, it)

	v.opts.logger.Warn("validation issue",
		zap.String("schema", v.report.Schema),
		zap.Int("row", it.Row),
		zap.String("column", it.Column),
		zap.String("code", it.Code),
		zap.String("expected", it.Expected),
		zap.String("got", it.Got),
	)

	if v.opts.maxIssues > 0 && len(v.report.Issues) >= v.opts.maxIssues {
		v.report.Truncated = true
		return false
	}

	return true
}

func (v *validator) done() *Report {
	v.opts.logger.Debug("validation finished",
		zap.String("schema", v.report.Schema),
		zap.Int("rows", v.report.Rows),
		zap.Int("issues", len(v.report.Issues)),
		zap.Bool("truncated", v.report.Truncated),
	)

	return v.report
}

func checkValue(t reflect.Type, val any, o options) string {
	if t == nil {
		return ""
	}

	if val == nil {
		if nilable(t) {
			return ""
		}

		return CodeNilValue
	}

	vt := reflect.TypeOf(val)
	if vt.AssignableTo(t) {
		return ""
	}

	if o.convertible {
		if _, err := schema.Coerce(val, t); err == nil {
			return ""
		}

		return CodeInvalidType
	}

	if k := schema.KindOf(t); k != schema.KindOther && k == schema.KindOf(vt) {
		return ""
	}

	return CodeInvalidType
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

func typeName(val any) string {
	if val == nil {
		return "nil"
	}

	return reflect.TypeOf(val).String()
}
