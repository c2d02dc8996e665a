package main

import (
	"errors"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/hgrecco/dataframing/internal/observability"
	"github.com/hgrecco/dataframing/tableio"
)

func newFlagSet(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)

	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)

	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		return err
	default:
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	return nil
}

func required(fs *flag.FlagSet, names ...string) error {
	for _, name := range names {
		if fs.Lookup(name).Value.String() == "" {
			return fmt.Errorf("%w: -%s is required", errUsage, name)
		}
	}

	return nil
}

// logFlags are the logging flags shared by every command.
type logFlags struct {
	level  string
	format string
}

func (l *logFlags) register(fs *flag.FlagSet) {
	def := observability.DefaultLogConfig()
	fs.StringVar(&l.level, "log-level", def.Level, "log level: debug, info, warn or error")
	fs.StringVar(&l.format, "log-format", def.Format, "log format: console or json")
}

func (l *logFlags) logger(e *env) (*zap.Logger, error) {
	cfg := observability.DefaultLogConfig()
	cfg.Level = l.level
	cfg.Format = l.format

	logger, err := observability.NewLoggerTo(cfg, e.stderr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}

	return logger, nil
}

// formatFlag picks the format of tables read from stdin or written to
// stdout.
func formatFlag(fs *flag.FlagSet) *string {
	return fs.String("format", string(tableio.FormatJSON), "format used with - (json, jsonl or csv)")
}
