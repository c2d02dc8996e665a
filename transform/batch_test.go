package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hgrecco/dataframing/record"
)

func numbered(n int) []record.Record {
	recs := make([]record.Record, n)
	for i := range recs {
		recs[i] = record.Record{"full_name": fmt.Sprintf("Last%d, First%d", i, i)}
	}

	return recs
}

func TestApplyRecords_OrderPreserved(t *testing.T) {
	t.Parallel()

	sp := &splitter{}
	tr := splitNames(t, sp)
	recs := numbered(1000)

	for _, workers := range []int{1, 2, 4, 7} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out, err := tr.Records(t.Context(), recs, WithWorkers(workers))
			require.NoError(t, err)
			require.Len(t, out, len(recs))

			for i, r := range out {
				assert.Equal(t, fmt.Sprintf("Last%d", i), r["last_name"])
				assert.Equal(t, fmt.Sprintf("First%d", i), r["first_name"])
			}
		})
	}
}

func TestApplyRecords_Restartable(t *testing.T) {
	t.Parallel()

	sp := &splitter{}
	tr := splitNames(t, sp)
	recs := numbered(50)

	first, err := tr.Records(t.Context(), recs, WithWorkers(3))
	require.NoError(t, err)

	second, err := tr.Records(t.Context(), recs, WithWorkers(3))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(100), sp.calls.Load(), "every record gets its own memo")
}

func TestApplyRecords_Config(t *testing.T) {
	t.Parallel()

	sp := &splitter{}
	tr := splitNames(t, sp)
	recs := numbered(10)

	_, err := tr.Records(t.Context(), recs, WithWorkers(4), WithPool(nil))
	require.ErrorIs(t, err, ErrPoolUnavailable)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "pool", ce.Option)

	_, err = tr.Records(t.Context(), recs, WithWorkers(0))
	require.ErrorIs(t, err, ErrInvalidWorkers)

	assert.Zero(t, sp.calls.Load(), "no row runs on a configuration failure")

	_, err = tr.Records(t.Context(), recs, WithWorkers(1), WithPool(nil))
	require.NoError(t, err, "sequential execution needs no pool")
}

func TestApplyRecords_Abort(t *testing.T) {
	t.Parallel()

	tr := splitNames(t, &splitter{})
	recs := numbered(100)
	recs[30] = record.Record{"other": 1}
	recs[70] = record.Record{"other": 2}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			_, err := tr.Records(t.Context(), recs, WithWorkers(workers))
			require.ErrorIs(t, err, record.ErrFieldNotFound)

			var re *RowError
			require.ErrorAs(t, err, &re)
			assert.Contains(t, []int{30, 70}, re.Row)
			assert.Equal(t, recs[re.Row], re.Record)

			if workers == 1 {
				assert.Equal(t, 30, re.Row)
			}
		})
	}
}

func TestApplyRecords_AbortMetrics(t *testing.T) {
	t.Parallel()

	tr := splitNames(t, &splitter{})
	recs := numbered(100)
	recs[30] = record.Record{"other": 1}

	metrics := NewMetrics(prometheus.NewRegistry())
	metrics.Init()

	_, err := tr.Records(t.Context(), recs, WithMetrics(metrics))
	require.Error(t, err)

	assert.InDelta(t, 30, testutil.ToFloat64(metrics.rowsTotal.WithLabelValues(ResultOK)), 1e-9,
		"rows mapped before the failure are counted")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.rowsTotal.WithLabelValues(ResultError)), 1e-9)
}

// countingPool runs tasks sequentially and counts them.
type countingPool struct {
	tasks atomic.Int64
}

func (p *countingPool) Run(ctx context.Context, _, n int, task func(ctx context.Context, i int) error) error {
	for i := range n {
		p.tasks.Add(1)

		if err := task(ctx, i); err != nil {
			return err
		}
	}

	return nil
}

func TestApplyRecords_CustomPool(t *testing.T) {
	t.Parallel()

	tr := splitNames(t, &splitter{})
	pool := &countingPool{}

	out, err := tr.Records(t.Context(), numbered(9), WithWorkers(3), WithPool(pool))
	require.NoError(t, err)
	assert.Len(t, out, 9)
	assert.Equal(t, int64(3), pool.tasks.Load(), "one task per worker chunk")

	out, err = tr.Records(t.Context(), numbered(2), WithWorkers(8), WithPool(pool))
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, int64(5), pool.tasks.Load(), "workers are capped by the row count")
}

func TestApplyTable(t *testing.T) {
	t.Parallel()

	tr := splitNames(t, &splitter{})

	in, err := record.FromRecords(numbered(20))
	require.NoError(t, err)
	in.Attrs["source"] = "people.json"

	seq, err := tr.Table(t.Context(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"last_name", "first_name", "initial"}, seq.Columns())
	assert.Equal(t, 20, seq.Len())
	assert.Equal(t, "people.json", seq.Attrs["source"])

	seq.Attrs["touched"] = true
	assert.NotContains(t, in.Attrs, "touched", "attributes are copied")

	par, err := tr.Table(t.Context(), in, WithWorkers(4))
	require.NoError(t, err)
	delete(seq.Attrs, "touched")
	assert.True(t, seq.Equal(par), "parallel and sequential tables are identical")
}

func TestApplyTable_Exceptions(t *testing.T) {
	t.Parallel()

	f := MustWrap(func(_ context.Context, src person, dst *namedWithMessage) error {
		if src.FirstName == "" {
			return errors.New("no first name")
		}

		dst.FullName = src.LastName + ", " + src.FirstName

		return nil
	})

	in, err := record.FromRecords([]record.Record{
		{"last_name": "Cleese", "first_name": "John"},
		{"last_name": "Chapman", "first_name": ""},
	})
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	metrics.Init()

	out, err := f.Table(t.Context(), in, WithLogger(zap.New(core)), WithMetrics(metrics))
	require.NoError(t, err)

	assert.Equal(t, []string{"full_name", "exception"}, out.Columns())
	assert.Equal(t, record.Record{"full_name": "Cleese, John", "exception": nil}, out.Row(0))
	assert.Equal(t, record.Record{"full_name": nil, "exception": "no first name"}, out.Row(1))

	assert.Equal(t, 1, logs.FilterMessage("exception captured").Len())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.rowsTotal.WithLabelValues(ResultOK)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.rowsTotal.WithLabelValues(ResultCaptured)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.batchesTotal.WithLabelValues(ModeSequential)), 1e-9)
}

func TestApplyTable_ExceptionsParallel(t *testing.T) {
	t.Parallel()

	f := MustWrap(func(_ context.Context, src person, dst *namedWithMessage) error {
		if src.FirstName == "" {
			return fmt.Errorf("no first name for %s", src.LastName)
		}

		dst.FullName = src.LastName + ", " + src.FirstName

		return nil
	})

	recs := make([]record.Record, 10)
	for i := range recs {
		first := fmt.Sprintf("First%d", i)
		if i%3 == 0 {
			first = ""
		}

		recs[i] = record.Record{"last_name": fmt.Sprintf("Last%d", i), "first_name": first}
	}

	in, err := record.FromRecords(recs)
	require.NoError(t, err)

	seq, err := f.Table(t.Context(), in)
	require.NoError(t, err)

	par, err := f.Table(t.Context(), in, WithWorkers(2))
	require.NoError(t, err)
	assert.True(t, seq.Equal(par), "parallel and sequential tables are identical")

	for i := range recs {
		row := par.Row(i)
		if i%3 == 0 {
			assert.Equal(t, record.Record{"full_name": nil, "exception": fmt.Sprintf("no first name for Last%d", i)}, row)
			continue
		}

		assert.Equal(t, record.Record{"full_name": fmt.Sprintf("Last%d, First%d", i, i), "exception": nil}, row)
	}
}

func TestApplyRecords_Logging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	tr := splitNames(t, &splitter{})

	_, err := tr.Records(t.Context(), numbered(3), WithLogger(zap.New(core)))
	require.NoError(t, err)

	finished := logs.FilterMessage("batch finished").All()
	require.Len(t, finished, 1)

	fields := finished[0].ContextMap()
	assert.Equal(t, int64(3), fields["rows"])
	assert.NotEmpty(t, fields["run_id"])

	_, err = tr.Records(t.Context(), []record.Record{{"x": 1}}, WithLogger(zap.New(core)))
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("batch aborted").Len())
}

func TestApplyRecords_Empty(t *testing.T) {
	t.Parallel()

	tr := splitNames(t, &splitter{})

	out, err := tr.Records(t.Context(), nil, WithWorkers(4))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRowError_Message(t *testing.T) {
	t.Parallel()

	err := &RowError{Row: 2, Record: record.Record{"b": 2, "a": "x"}, Err: errors.New("bad")}
	assert.Equal(t, "row 2: bad (record: map[a:x b:2])", err.Error())
	assert.True(t, strings.HasPrefix(err.Dump(), "(map[string]interface {})"))
}
