// Package main provides the dataframing command line tool.
//
// dataframing applies YAML rule files to tables:
//   - apply     transforms an input table with a rule file
//   - validate  checks a table against the source or target schema of a rule file
//   - hash      prints the content digest of a table
//
// Tables are read from and written to .json, .jsonl and .csv files, or to
// a database given as DRIVER:DSN#TABLE_OR_QUERY, for example
// sqlite:people.db#contacts or "pgx:postgres://localhost/db#SELECT * FROM t".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})

	stop()
	os.Exit(code)
}

// env holds the standard streams of a run.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, e *env) error
}

var commands = []command{
	{"apply", "transform a table with a rule file", applyCmd},
	{"validate", "check a table against a rule file schema", validateCmd},
	{"hash", "print the content digest of a table", hashCmd},
}

// errIssues is returned by commands that completed but found problems.
var errIssues = errors.New("issues found")

func run(ctx context.Context, args []string, e *env) int {
	if len(args) == 0 {
		usage(e.stderr)
		return exitUsage
	}

	for _, c := range commands {
		if c.name != args[0] {
			continue
		}

		err := c.run(ctx, args[1:], e)

		switch {
		case err == nil:
			return exitOK
		case errors.Is(err, flag.ErrHelp):
			return exitOK
		case errors.Is(err, errUsage):
			fmt.Fprintf(e.stderr, "%s: %v\n", c.name, err)
			return exitUsage
		case errors.Is(err, errIssues):
			return exitFailure
		default:
			fmt.Fprintf(e.stderr, "%s: %v\n", c.name, err)
			return exitFailure
		}
	}

	usage(e.stderr)

	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "dataframing - apply rule files to tables")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  dataframing <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, `Run "dataframing <command> -h" for the flags of a command.`)
}
