package tableio

import (
	"fmt"
	"io"
	"maps"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/hgrecco/dataframing/record"
)

type tableDoc struct {
	Columns []string       `json:"columns"`
	Rows    [][]any        `json:"rows"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// newDoc lays out tbl as a document, without the stored hash.
func newDoc(tbl *record.Table) *tableDoc {
	cols := tbl.Columns()
	doc := &tableDoc{
		Columns: append([]string{}, cols...),
		Rows:    make([][]any, tbl.Len()),
		Attrs:   tbl.CloneAttrs(),
	}

	for i := range doc.Rows {
		rec := tbl.Row(i)
		row := make([]any, len(cols))

		for c, name := range cols {
			row[c] = rec[name]
		}

		doc.Rows[i] = row
	}

	delete(doc.Attrs, HashKey)

	return doc
}

func (d *tableDoc) table() (*record.Table, error) {
	tbl := record.NewTable(d.Columns...)
	if len(tbl.Columns()) != len(d.Columns) {
		return nil, fmt.Errorf("%w in %v", record.ErrDuplicateColumn, d.Columns)
	}

	for i, row := range d.Rows {
		if err := tbl.AppendRow(normalizeSlice(row)); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	if d.Attrs != nil {
		tbl.Attrs = normalizeMap(d.Attrs)
	}

	return tbl, nil
}

func encodeDoc(tbl *record.Table, opts Options) (*tableDoc, error) {
	doc := newDoc(tbl)

	if opts.UseHash {
		digest, err := Hash(tbl)
		if err != nil {
			return nil, err
		}

		if doc.Attrs == nil {
			doc.Attrs = map[string]any{}
		}

		doc.Attrs[HashKey] = digest
	}

	return doc, nil
}

func decodeDoc(doc *tableDoc, opts Options) (*record.Table, error) {
	tbl, err := doc.table()
	if err != nil {
		return nil, err
	}

	if opts.UseHash {
		if err := Verify(tbl); err != nil {
			return nil, err
		}
	}

	delete(tbl.Attrs, HashKey)

	return tbl, nil
}

// WriteJSON writes tbl as a table document.
func WriteJSON(w io.Writer, tbl *record.Table, opts Options) error {
	doc, err := encodeDoc(tbl, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode table: %w", err)
	}

	return nil
}

// ReadJSON reads a table document. Integral numbers are read as int and
// other numbers as float64.
func ReadJSON(r io.Reader, opts Options) (*record.Table, error) {
	var doc tableDoc
	if err := decode(r, &doc); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	return decodeDoc(&doc, opts)
}

// WriteJSONMany writes several named tables as one document.
func WriteJSONMany(w io.Writer, tables map[string]*record.Table, opts Options) error {
	docs := make(map[string]*tableDoc, len(tables))

	for name, tbl := range tables {
		if name == "" {
			return ErrEmptyTableName
		}

		doc, err := encodeDoc(tbl, opts)
		if err != nil {
			return fmt.Errorf("table %s: %w", name, err)
		}

		docs[name] = doc
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode tables: %w", err)
	}

	return nil
}

// ReadJSONMany reads a document written by WriteJSONMany.
func ReadJSONMany(r io.Reader, opts Options) (map[string]*record.Table, error) {
	var docs map[string]*tableDoc
	if err := decode(r, &docs); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}

	tables := make(map[string]*record.Table, len(docs))

	for _, name := range sortedKeys(docs) {
		tbl, err := decodeDoc(docs[name], opts)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}

		tables[name] = tbl
	}

	return tables, nil
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	return dec.Decode(v)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// normalize replaces json.Number values, recursively, by int when the
// number is integral and fits, and by float64 otherwise.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}

		if f, err := x.Float64(); err == nil {
			return f
		}

		return x.String()
	case []any:
		return normalizeSlice(x)
	case map[string]any:
		return normalizeMap(x)
	default:
		return v
	}
}

func normalizeSlice(s []any) []any {
	for i, v := range s {
		s[i] = normalize(v)
	}

	return s
}

func normalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalize(v)
	}

	return m
}
