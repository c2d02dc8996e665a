package tableio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hgrecco/dataframing/record"
)

// Format is a table file format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// FormatOf picks the format of path from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Write writes tbl to w in format f. Options apply to table documents.
func Write(w io.Writer, f Format, tbl *record.Table, opts Options) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, tbl, opts)
	case FormatJSONL:
		return WriteJSONL(w, tbl)
	case FormatCSV:
		return WriteCSV(w, tbl)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Read reads a table in format f from r.
func Read(r io.Reader, f Format, opts Options) (*record.Table, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r, opts)
	case FormatJSONL:
		return ReadJSONL(r)
	case FormatCSV:
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Save writes tbl to path in the format given by its extension.
func Save(path string, tbl *record.Table, opts Options) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}

	return writeFile(path, func(w io.Writer) error {
		return Write(w, f, tbl, opts)
	})
}

// Load reads the table stored at path.
func Load(path string, opts Options) (*record.Table, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var tbl *record.Table

	err = readFile(path, func(r io.Reader) error {
		tbl, err = Read(r, f, opts)
		return err
	})

	return tbl, err
}

// SaveMany writes several named tables to a single table document.
func SaveMany(path string, tables map[string]*record.Table, opts Options) error {
	if f, err := FormatOf(path); err != nil || f != FormatJSON {
		return fmt.Errorf("%w: %q holds a single table", ErrUnsupportedFormat, path)
	}

	return writeFile(path, func(w io.Writer) error {
		return WriteJSONMany(w, tables, opts)
	})
}

// LoadMany reads a document written by SaveMany.
func LoadMany(path string, opts Options) (map[string]*record.Table, error) {
	var tables map[string]*record.Table

	err := readFile(path, func(r io.Reader) error {
		var err error
		tables, err = ReadJSONMany(r, opts)

		return err
	})

	return tables, err
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer func() {
		err = errors.Join(err, file.Close())
	}()

	w := bufio.NewWriter(file)
	if err := write(w); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return w.Flush()
}

func readFile(path string, read func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := read(bufio.NewReader(file)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}
