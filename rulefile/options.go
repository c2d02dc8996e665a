package rulefile

import (
	"go.uber.org/zap"

	"github.com/hgrecco/dataframing/funcs"
	"github.com/hgrecco/dataframing/internal/analyze"
	"github.com/hgrecco/dataframing/schema"
)

// SchemaLoader resolves the go: reference of a schema definition.
type SchemaLoader func(ref string) (*schema.Schema, error)

// Options configures validation and compilation of rule files.
type Options struct {
	Registry *funcs.Registry
	Logger   *zap.Logger
	Loader   SchemaLoader
}

// Option modifies Options.
type Option func(*Options)

// DefaultOptions uses the default function registry and loads Go types
// from source.
func DefaultOptions() Options {
	return Options{
		Registry: funcs.Default(),
		Logger:   zap.NewNop(),
		Loader:   analyze.LoadSchema,
	}
}

// WithRegistry sets the functions available to call expressions.
func WithRegistry(r *funcs.Registry) Option {
	return func(o *Options) {
		if r != nil {
			o.Registry = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithSchemaLoader sets how go: schema references are resolved.
func WithSchemaLoader(l SchemaLoader) Option {
	return func(o *Options) {
		if l != nil {
			o.Loader = l
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
