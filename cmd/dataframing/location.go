package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hgrecco/dataframing/record"
	"github.com/hgrecco/dataframing/tableio"
)

var errUsage = errors.New("invalid usage")

// location is where a table is read from or written to: a file, standard
// input or output ("-"), or a database table or query.
type location struct {
	path   string
	driver string
	dsn    string
	target string // table name or query
}

func parseLocation(s string) (location, error) {
	if s == "" {
		return location{}, fmt.Errorf("%w: missing table location", errUsage)
	}

	driver, rest, found := strings.Cut(s, ":")
	if !found || !slices.Contains(sql.Drivers(), driver) {
		return location{path: s}, nil
	}

	dsn, target, found := strings.Cut(rest, "#")
	if !found || dsn == "" || target == "" {
		return location{}, fmt.Errorf("%w: %q: want %s:DSN#TABLE_OR_QUERY", errUsage, s, driver)
	}

	return location{driver: driver, dsn: dsn, target: target}, nil
}

func (l location) isSQL() bool { return l.driver != "" }

func (l location) String() string {
	if l.isSQL() {
		return l.driver + ":" + l.target
	}

	return l.path
}

// query returns the statement reading the location: the target itself
// when it looks like a query, otherwise every row of the named table.
func (l location) query() string {
	if strings.ContainsAny(strings.TrimSpace(l.target), " \t\n") {
		return l.target
	}

	return "SELECT * FROM " + l.target
}

func openDB(ctx context.Context, l location) (*sql.DB, error) {
	db, err := sql.Open(l.driver, l.dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", l.driver, err)
	}

	return db, nil
}

func readTable(ctx context.Context, l location, format tableio.Format, stdin io.Reader, opts tableio.Options) (*record.Table, error) {
	switch {
	case l.isSQL():
		db, err := openDB(ctx, l)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		return tableio.ReadSQL(ctx, db, l.query())
	case l.path == "-":
		return tableio.Read(stdin, format, opts)
	default:
		return tableio.Load(l.path, opts)
	}
}

func writeTable(ctx context.Context, l location, format tableio.Format, stdout io.Writer, tbl *record.Table, opts tableio.Options) error {
	switch {
	case l.isSQL():
		db, err := openDB(ctx, l)
		if err != nil {
			return err
		}
		defer db.Close()

		return tableio.WriteSQL(ctx, db, l.target, tbl, tableio.SQLOptions{
			Dialect: tableio.DialectFor(l.driver),
			Create:  true,
		})
	case l.path == "-":
		return tableio.Write(stdout, format, tbl, opts)
	default:
		return tableio.Save(l.path, tbl, opts)
	}
}
