package transform

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/hgrecco/dataframing/transform"

// Options configures batch application.
type Options struct {
	// Workers is the number of rows processed concurrently. 1 processes
	// rows strictly in sequence on the calling goroutine.
	Workers int
	// Pool runs the workers when Workers > 1.
	Pool    Pool
	Logger  *zap.Logger
	Metrics *Metrics
	Tracer  trace.Tracer
}

// Option modifies Options.
type Option func(*Options)

// DefaultOptions returns sequential execution with the errgroup pool
// available, a no-op logger, no metrics and the global tracer.
func DefaultOptions() Options {
	return Options{
		Workers: 1,
		Pool:    GroupPool{},
		Logger:  zap.NewNop(),
		Tracer:  otel.Tracer(tracerName),
	}
}

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithPool sets the pool used for parallel execution. A nil pool makes
// parallel execution unavailable.
func WithPool(p Pool) Option {
	return func(o *Options) { o.Pool = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics enables metrics collection.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithTracer sets the tracer used for batch spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) {
		if t != nil {
			o.Tracer = t
		}
	}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Validate reports options that cannot be honored.
func (o Options) Validate() error {
	if o.Workers < 1 {
		return &ConfigError{Option: "workers", Err: ErrInvalidWorkers}
	}

	if o.Workers > 1 && o.Pool == nil {
		return &ConfigError{Option: "pool", Err: ErrPoolUnavailable}
	}

	return nil
}
