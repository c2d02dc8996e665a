package record

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrRowLength       = errors.New("row length does not match columns")
)

// Table is a columnar collection of records. Every column holds exactly
// Len values; a cell missing from an appended record is nil.
type Table struct {
	columns []string
	index   map[string]int
	data    [][]any
	rows    int

	// Attrs carries table level metadata (e.g. a content hash). It is
	// copied, not shared, by transformations.
	Attrs map[string]any
}

// NewTable returns an empty table with the given columns. Repeated names
// are kept once.
func NewTable(columns ...string) *Table {
	t := &Table{
		index: make(map[string]int, len(columns)),
		Attrs: map[string]any{},
	}

	for _, c := range columns {
		t.addColumn(c)
	}

	return t
}

// FromRecords builds a table from recs. Without explicit columns the
// column order is the order in which names are first seen, iterating each
// record's keys sorted.
func FromRecords(recs []Record, columns ...string) (*Table, error) {
	if len(columns) == 0 {
		columns = inferColumns(recs)
	}

	t := NewTable(columns...)
	for i, r := range recs {
		if err := t.Append(r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	return t, nil
}

// FromColumns builds a table from column slices of equal length.
func FromColumns(columns []string, data map[string][]any) (*Table, error) {
	t := NewTable()

	for _, c := range columns {
		if _, ok := t.index[c]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}

		vals := data[c]
		if len(t.columns) > 0 && len(vals) != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d values, want %d", ErrRowLength, c, len(vals), t.rows)
		}

		t.addColumn(c)
		t.data[len(t.data)-1] = slices.Clone(vals)
		t.rows = len(vals)
	}

	return t, nil
}

func inferColumns(recs []Record) []string {
	seen := map[string]bool{}

	var cols []string

	for _, r := range recs {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}

	return cols
}

func (t *Table) addColumn(name string) {
	if _, ok := t.index[name]; ok {
		return
	}

	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	t.data = append(t.data, make([]any, t.rows))
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Columns returns a copy of the column names.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the values of a column. The slice is shared with the
// table.
func (t *Table) Column(name string) ([]any, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}

	return t.data[i], true
}

// Value returns a single cell.
func (t *Table) Value(row int, column string) (any, bool) {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= t.rows {
		return nil, false
	}

	return t.data[i][row], true
}

// Row returns row i as a fresh record.
func (t *Table) Row(i int) Record {
	r := make(Record, len(t.columns))
	for c, name := range t.columns {
		r[name] = t.data[c][i]
	}

	return r
}

// Records returns every row as a record.
func (t *Table) Records() []Record {
	out := make([]Record, t.rows)
	for i := range out {
		out[i] = t.Row(i)
	}

	return out
}

// Append adds rec as a new row. Fields the table has no column for are
// rejected; columns absent from rec are set to nil.
func (t *Table) Append(rec Record) error {
	for k := range rec {
		if _, ok := t.index[k]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, k)
		}
	}

	for c, name := range t.columns {
		t.data[c] = append(t.data[c], rec[name])
	}

	t.rows++

	return nil
}

// AppendRow adds a row given positionally in column order.
func (t *Table) AppendRow(values []any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrRowLength, len(values), len(t.columns))
	}

	for c, v := range values {
		t.data[c] = append(t.data[c], v)
	}

	t.rows++

	return nil
}

// CloneAttrs returns a shallow copy of the table attributes.
func (t *Table) CloneAttrs() map[string]any {
	if t.Attrs == nil {
		return map[string]any{}
	}

	return maps.Clone(t.Attrs)
}

// Equal reports whether both tables have the same columns in the same
// order, the same cells and the same attributes.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}

	if t.rows != o.rows || !slices.Equal(t.columns, o.columns) {
		return false
	}

	for c := range t.data {
		for i := range t.rows {
			if !reflect.DeepEqual(t.data[c][i], o.data[c][i]) {
				return false
			}
		}
	}

	return reflect.DeepEqual(t.CloneAttrs(), o.CloneAttrs())
}
