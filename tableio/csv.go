package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hgrecco/dataframing/record"
)

// WriteCSV writes a header row and one row per record. Nil cells are
// empty, times use RFC 3339 and composite values are written as JSON.
func WriteCSV(w io.Writer, tbl *record.Table) error {
	cw := csv.NewWriter(w)
	cols := tbl.Columns()

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	line := make([]string, len(cols))

	for i := range tbl.Len() {
		rec := tbl.Row(i)

		for c, name := range cols {
			s, err := formatCell(rec[name])
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", i, name, err)
			}

			line[c] = s
		}

		if err := cw.Write(line); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func formatCell(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return x.String(), nil
	case error:
		return x.Error(), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// ReadCSV reads a header row followed by data rows. Every cell is read as
// a string.
func ReadCSV(r io.Reader) (*record.Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return record.NewTable(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	tbl := record.NewTable(header...)
	if len(tbl.Columns()) != len(header) {
		return nil, fmt.Errorf("%w in %v", record.ErrDuplicateColumn, header)
	}

	for i := 0; ; i++ {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		row := make([]any, len(line))
		for c, s := range line {
			row[c] = s
		}

		if err := tbl.AppendRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	return tbl, nil
}
