package main

import (
	"context"
	"fmt"

	"github.com/hgrecco/dataframing/rulefile"
	"github.com/hgrecco/dataframing/schema"
	"github.com/hgrecco/dataframing/tableio"
	"github.com/hgrecco/dataframing/validate"
)

func validateCmd(ctx context.Context, args []string, e *env) error {
	fs := newFlagSet("validate", e)

	var (
		logs        logFlags
		rules       = fs.String("rules", "", "rule file (YAML)")
		in          = fs.String("in", "", "table to check: file, - or DRIVER:DSN#TABLE_OR_QUERY")
		side        = fs.String("side", "source", "schema to check against: source or target")
		convertible = fs.Bool("convertible", false, "accept values that convert to the declared type without loss")
		strict      = fs.Bool("strict", false, "report columns the schema does not declare")
		maxIssues   = fs.Int("max-issues", 0, "stop after this many issues (0 means no limit)")
		noHash      = fs.Bool("no-hash", false, "do not verify table content hashes")
		format      = formatFlag(fs)
	)

	logs.register(fs)

	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := required(fs, "rules", "in"); err != nil {
		return err
	}

	loc, err := parseLocation(*in)
	if err != nil {
		return err
	}

	logger, err := logs.logger(e)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f, err := rulefile.LoadFile(*rules)
	if err != nil {
		return err
	}

	src, dst, err := f.Schemas(rulefile.WithLogger(logger))
	if err != nil {
		return err
	}

	var s *schema.Schema

	switch *side {
	case "source":
		s = src
	case "target":
		s = dst
	default:
		return fmt.Errorf("%w: -side must be source or target, got %q", errUsage, *side)
	}

	tbl, err := readTable(ctx, loc, tableio.Format(*format), e.stdin, tableio.Options{UseHash: !*noHash})
	if err != nil {
		return fmt.Errorf("read %s: %w", loc, err)
	}

	opts := []validate.Option{validate.WithLogger(logger), validate.WithMaxIssues(*maxIssues)}
	if *convertible {
		opts = append(opts, validate.WithConvertible())
	}

	if *strict {
		opts = append(opts, validate.WithStrictColumns())
	}

	report := validate.Table(tbl, s, opts...)
	for _, it := range report.Issues {
		fmt.Fprintln(e.stdout, it)
	}

	if report.OK() {
		fmt.Fprintf(e.stdout, "%d rows match %s\n", report.Rows, s)
		return nil
	}

	fmt.Fprintf(e.stdout, "%d issues in %d rows\n", len(report.Issues), report.Rows)

	return errIssues
}
