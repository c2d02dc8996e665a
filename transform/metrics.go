package transform

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Row results recorded by Metrics.
const (
	ResultOK       = "ok"
	ResultCaptured = "captured"
	ResultError    = "error"
)

// Batch modes recorded by Metrics.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// Metrics contains Prometheus collectors for batch application.
type Metrics struct {
	rowsTotal     *prometheus.CounterVec
	batchesTotal  *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dataframing",
				Subsystem: "transform",
				Name:      "rows_total",
				Help:      "Total number of transformed rows by result",
			},
			[]string{"result"},
		),
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dataframing",
				Subsystem: "transform",
				Name:      "batches_total",
				Help:      "Total number of batches by execution mode",
			},
			[]string{"mode"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dataframing",
				Subsystem: "transform",
				Name:      "batch_duration_seconds",
				Help:      "Duration of batch application in seconds",
				Buckets:   prometheus.ExponentialBuckets(.0005, 4, 10),
			},
			[]string{"mode"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.rowsTotal, m.batchesTotal, m.batchDuration)
	}

	return m
}

// Init creates every label combination so the series exist before the
// first batch.
func (m *Metrics) Init() {
	for _, r := range []string{ResultOK, ResultCaptured, ResultError} {
		m.rowsTotal.WithLabelValues(r)
	}

	for _, mode := range []string{ModeSequential, ModeParallel} {
		m.batchesTotal.WithLabelValues(mode)
		m.batchDuration.WithLabelValues(mode)
	}
}

func (m *Metrics) recordRows(result string, n int) {
	if m == nil || n == 0 {
		return
	}

	m.rowsTotal.WithLabelValues(result).Add(float64(n))
}

func (m *Metrics) recordBatch(mode string, seconds float64) {
	if m == nil {
		return
	}

	m.batchesTotal.WithLabelValues(mode).Inc()
	m.batchDuration.WithLabelValues(mode).Observe(seconds)
}
