package tableio

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/hgrecco/dataframing/record"
)

// WriteJSONL writes one JSON object per row. Cells that are nil are kept
// as null.
func WriteJSONL(w io.Writer, tbl *record.Table) error {
	enc := json.NewEncoder(w)

	for i := range tbl.Len() {
		if err := enc.Encode(map[string]any(tbl.Row(i))); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	return nil
}

// ReadJSONL reads one JSON object per line. Columns are ordered as
// record.FromRecords orders them.
func ReadJSONL(r io.Reader) (*record.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var recs []record.Record

	for {
		var obj map[string]any

		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(recs), err)
		}

		recs = append(recs, record.Record(normalizeMap(obj)))
	}

	return record.FromRecords(recs)
}
