package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hgrecco/dataframing/internal/observability"
	"github.com/hgrecco/dataframing/rulefile"
	"github.com/hgrecco/dataframing/tableio"
	"github.com/hgrecco/dataframing/transform"
	"github.com/hgrecco/dataframing/validate"
)

func applyCmd(ctx context.Context, args []string, e *env) error {
	fs := newFlagSet("apply", e)

	var (
		logs        logFlags
		rules       = fs.String("rules", "", "rule file (YAML)")
		in          = fs.String("in", "", "input table: file, - or DRIVER:DSN#TABLE_OR_QUERY")
		out         = fs.String("out", "", "output table: file, - or DRIVER:DSN#TABLE")
		workers     = fs.Int("workers", 1, "number of rows transformed concurrently")
		noHash      = fs.Bool("no-hash", false, "do not write or verify table content hashes")
		check       = fs.Bool("check", false, "validate the input against the source schema first")
		metricsFile = fs.String("metrics", "", "write Prometheus metrics to this file when done")
		format      = formatFlag(fs)
	)

	logs.register(fs)

	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := required(fs, "rules", "in", "out"); err != nil {
		return err
	}

	inLoc, err := parseLocation(*in)
	if err != nil {
		return err
	}

	outLoc, err := parseLocation(*out)
	if err != nil {
		return err
	}

	logger, err := logs.logger(e)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	tr, err := rulefile.CompileFile(*rules, rulefile.WithLogger(logger))
	if err != nil {
		return err
	}

	ioOpts := tableio.Options{UseHash: !*noHash}

	tbl, err := readTable(ctx, inLoc, tableio.Format(*format), e.stdin, ioOpts)
	if err != nil {
		return fmt.Errorf("read %s: %w", inLoc, err)
	}

	if *check {
		report := validate.Table(tbl, tr.Source(), validate.WithLogger(logger), validate.WithConvertible())
		if err := report.Err(); err != nil {
			return err
		}
	}

	reg := observability.NewRegistry()
	start := time.Now()

	result, err := tr.Table(ctx, tbl,
		transform.WithWorkers(*workers),
		transform.WithLogger(logger),
		transform.WithMetrics(transform.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	if err := writeTable(ctx, outLoc, tableio.Format(*format), e.stdout, result, ioOpts); err != nil {
		return fmt.Errorf("write %s: %w", outLoc, err)
	}

	logger.Info("applied rules",
		zap.String("rules", *rules),
		zap.String("in", inLoc.String()),
		zap.String("out", outLoc.String()),
		zap.Int("rows", result.Len()),
		zap.Int("workers", *workers),
		zap.Duration("duration", time.Since(start)),
	)

	if *metricsFile != "" {
		return writeMetricsFile(*metricsFile, reg)
	}

	return nil
}

func writeMetricsFile(path string, g prometheus.Gatherer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return observability.WriteMetrics(f, g)
}
