package validate

import "go.uber.org/zap"

type options struct {
	logger      *zap.Logger
	convertible bool
	strict      bool
	maxIssues   int
}

// Option configures a validation.
type Option func(*options)

// WithLogger logs every issue at Warn level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithConvertible accepts values that schema.Coerce can store in the
// declared type without loss.
func WithConvertible() Option {
	return func(o *options) { o.convertible = true }
}

// WithStrictColumns reports columns and record keys that the schema does
// not declare.
func WithStrictColumns() Option {
	return func(o *options) { o.strict = true }
}

// WithMaxIssues stops validating after n issues. Zero means no limit.
func WithMaxIssues(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxIssues = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
