package tableio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hgrecco/dataframing/record"
)

// Dialect describes how statements are written for a database.
type Dialect int

const (
	// DialectSQLite uses ? placeholders and double quoted identifiers.
	DialectSQLite Dialect = iota
	// DialectPostgres uses $n placeholders.
	DialectPostgres
	// DialectMySQL uses ? placeholders and backquoted identifiers.
	DialectMySQL
)

// DialectFor returns the dialect of a database/sql driver name.
func DialectFor(driver string) Dialect {
	switch driver {
	case "pgx", "postgres":
		return DialectPostgres
	case "mysql":
		return DialectMySQL
	default:
		return DialectSQLite
	}
}

func (d Dialect) placeholder(i int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(i+1)
	}

	return "?"
}

func (d Dialect) quote(ident string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}

	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// SQLOptions configures WriteSQL.
type SQLOptions struct {
	Dialect Dialect
	// Create issues CREATE TABLE IF NOT EXISTS before inserting. Column
	// types are taken from the first non-nil value of each column.
	Create bool
}

// ReadSQL runs query and collects the result set into a table. Byte
// slices are read as strings and 64-bit integers as int.
func ReadSQL(ctx context.Context, db *sql.DB, query string, args ...any) (*record.Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	tbl := record.NewTable(cols...)
	if len(tbl.Columns()) != len(cols) {
		return nil, fmt.Errorf("%w in %v", record.ErrDuplicateColumn, cols)
	}

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", tbl.Len(), err)
		}

		for i, v := range values {
			values[i] = scanValue(v)
		}

		if err := tbl.AppendRow(values); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}

	return tbl, nil
}

func scanValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int64:
		return int(x)
	default:
		return v
	}
}

// WriteSQL inserts every row of tbl into the table name within a single
// transaction.
func WriteSQL(ctx context.Context, db *sql.DB, name string, tbl *record.Table, opts SQLOptions) (err error) {
	if name == "" {
		return ErrEmptyTableName
	}

	cols := tbl.Columns()
	d := opts.Dialect

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if opts.Create {
		if _, err := tx.ExecContext(ctx, createStatement(d, name, tbl)); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))

	for i, c := range cols {
		quoted[i] = d.quote(c)
		marks[i] = d.placeholder(i)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.quote(name), strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))

	for i := range tbl.Len() {
		rec := tbl.Row(i)

		for c, col := range cols {
			if args[c], err = sqlValue(rec[col]); err != nil {
				return fmt.Errorf("row %d column %s: %w", i, col, err)
			}
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// sqlValue passes driver friendly values through and writes composite
// values as JSON text.
func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, []byte, bool, int, int8, int16, int32, int64,
		uint8, uint16, uint32, float32, float64, time.Time:
		return v, nil
	case error:
		return x.Error(), nil
	case fmt.Stringer:
		return x.String(), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return string(data), nil
}

func createStatement(d Dialect, name string, tbl *record.Table) string {
	cols := tbl.Columns()
	defs := make([]string, len(cols))

	for i, c := range cols {
		values, _ := tbl.Column(c)
		defs[i] = d.quote(c) + " " + columnType(values)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.quote(name), strings.Join(defs, ", "))
}

func columnType(values []any) string {
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			return "BIGINT"
		case float32, float64:
			return "DOUBLE PRECISION"
		case bool:
			return "BOOLEAN"
		case time.Time:
			return "TIMESTAMP"
		default:
			return "TEXT"
		}
	}

	return "TEXT"
}
