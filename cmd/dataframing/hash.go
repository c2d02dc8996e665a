package main

import (
	"context"
	"fmt"

	"github.com/hgrecco/dataframing/tableio"
)

func hashCmd(ctx context.Context, args []string, e *env) error {
	fs := newFlagSet("hash", e)

	var (
		in     = fs.String("in", "", "table: file, - or DRIVER:DSN#TABLE_OR_QUERY")
		verify = fs.Bool("verify", false, "fail unless the stored hash matches")
		format = formatFlag(fs)
	)

	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := required(fs, "in"); err != nil {
		return err
	}

	loc, err := parseLocation(*in)
	if err != nil {
		return err
	}

	tbl, err := readTable(ctx, loc, tableio.Format(*format), e.stdin, tableio.Options{UseHash: *verify})
	if err != nil {
		return fmt.Errorf("read %s: %w", loc, err)
	}

	digest, err := tableio.Hash(tbl)
	if err != nil {
		return err
	}

	fmt.Fprintln(e.stdout, digest)

	return nil
}
