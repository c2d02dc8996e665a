package transform

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/hgrecco/dataframing/record"
	"github.com/hgrecco/dataframing/schema"
)

// Mapper transforms one record into a fresh record. Transformer and Func
// are Mappers.
type Mapper interface {
	Map(in record.Record) (record.Record, error)
	// Columns lists the output fields in table column order.
	Columns() []string
}

// ApplyRecords maps every record of recs. The result has the same length
// and order as recs whatever the number of workers. The first failing row
// aborts the batch with a *RowError; with several workers the lowest
// failing row observed is reported.
func ApplyRecords(ctx context.Context, m Mapper, recs []record.Record, opts ...Option) ([]record.Record, error) {
	o := buildOptions(opts)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	workers := min(o.Workers, len(recs))
	mode := ModeSequential
	if workers > 1 {
		mode = ModeParallel
	}

	runID := uuid.NewString()
	log := o.Logger.With(zap.String("run_id", runID))

	ctx, span := o.Tracer.Start(ctx, "transform.apply")
	defer span.End()

	span.SetAttributes(
		attribute.String("dataframing.run_id", runID),
		attribute.Int("dataframing.rows", len(recs)),
		attribute.Int("dataframing.workers", max(workers, 1)),
	)

	log.Debug("batch started",
		zap.Int("rows", len(recs)),
		zap.Int("workers", max(workers, 1)),
		zap.String("mode", mode),
	)

	start := time.Now()
	out := make([]record.Record, len(recs))

	var err error
	if mode == ModeParallel {
		err = applyParallel(ctx, o.Pool, workers, m, recs, out)
	} else {
		err = applyRange(ctx, m, recs, out, 0, len(recs))
	}

	elapsed := time.Since(start)
	o.Metrics.recordBatch(mode, elapsed.Seconds())

	completed := countCompleted(out)
	captured := countCaptured(m, out, log)
	o.Metrics.recordRows(ResultCaptured, captured)
	o.Metrics.recordRows(ResultOK, completed-captured)

	if err != nil {
		o.Metrics.recordRows(ResultError, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("batch aborted",
			zap.Error(err),
			zap.Int("completed", completed),
			zap.Duration("elapsed", elapsed),
		)

		return nil, err
	}

	span.SetStatus(codes.Ok, "")

	log.Debug("batch finished",
		zap.Int("rows", len(out)),
		zap.Int("captured", captured),
		zap.Duration("elapsed", elapsed),
	)

	return out, nil
}

// ApplyTable maps every row of tbl into a new table whose columns are
// m.Columns() and whose attributes are a copy of tbl's.
func ApplyTable(ctx context.Context, m Mapper, tbl *record.Table, opts ...Option) (*record.Table, error) {
	recs, err := ApplyRecords(ctx, m, tbl.Records(), opts...)
	if err != nil {
		return nil, err
	}

	out, err := record.FromRecords(recs, m.Columns()...)
	if err != nil {
		return nil, err
	}

	out.Attrs = tbl.CloneAttrs()

	return out, nil
}

func applyRange(ctx context.Context, m Mapper, recs, out []record.Record, lo, hi int) error {
	for i := lo; i < hi; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := m.Map(recs[i])
		if err != nil {
			return atRow(err, i, recs[i])
		}

		out[i] = r
	}

	return nil
}

// applyParallel splits recs into contiguous chunks, one per worker. Each
// worker writes only its own range of out, so results are reassembled by
// position without locking.
func applyParallel(ctx context.Context, pool Pool, workers int, m Mapper, recs, out []record.Record) error {
	n := len(recs)
	errs := make([]error, workers)

	runErr := pool.Run(ctx, workers, workers, func(ctx context.Context, k int) error {
		lo, hi := k*n/workers, (k+1)*n/workers
		errs[k] = applyRange(ctx, m, recs, out, lo, hi)

		return errs[k]
	})

	var first *RowError
	for _, err := range errs {
		var re *RowError
		if errors.As(err, &re) && (first == nil || re.Row < first.Row) {
			first = re
		}
	}

	if first != nil {
		return first
	}

	return runErr
}

// countCompleted counts the rows mapped before the batch ended. Rows of an
// aborted batch that never ran stay nil.
func countCompleted(out []record.Record) int {
	n := 0

	for _, r := range out {
		if r != nil {
			n++
		}
	}

	return n
}

func countCaptured(m Mapper, out []record.Record, log *zap.Logger) int {
	if _, ok := m.(*Func); !ok {
		return 0
	}

	n := 0

	for i, r := range out {
		if exc, ok := r[schema.ExceptionField]; ok && exc != nil {
			n++
			log.Warn("exception captured", zap.Int("row", i), zap.Any("exception", exc))
		}
	}

	return n
}
