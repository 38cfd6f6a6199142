package react

import (
	"log/slog"

	"github.com/spetersoncode/reactor/tool"
	"github.com/spetersoncode/reactor/trajectory"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Defaults.
const (
	DefaultMaxIters    = 5
	DefaultMaxAttempts = 3
)

const tracerName = "github.com/spetersoncode/reactor/react"

// TruncateFunc shortens a trajectory in place after a context-window error.
// It returns an error when the trajectory cannot be shortened further.
type TruncateFunc func(t *trajectory.Trajectory) error

// Options configures a Program.
type Options struct {
	// MaxIters is the default iteration budget (default: 5).
	MaxIters int

	// MaxAttempts caps the calls per predictor invocation when the context
	// window overflows (default: 3).
	MaxAttempts int

	// Cutoff is the minimum similarity for fuzzy tool-name recovery.
	Cutoff float64

	Model       string
	Temperature *float64
	MaxTokens   int

	Logger   *slog.Logger
	Tracer   trace.Tracer
	Truncate TruncateFunc
}

// Option is a functional option for configuring a Program.
type Option func(*Options)

// WithMaxIters sets the default iteration budget.
func WithMaxIters(n int) Option {
	return func(o *Options) {
		o.MaxIters = n
	}
}

// WithMaxAttempts sets the number of calls allowed per predictor invocation
// when the prompt overflows the context window.
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		o.MaxAttempts = n
	}
}

// WithCutoff sets the similarity threshold for fuzzy tool-name recovery.
func WithCutoff(c float64) Option {
	return func(o *Options) {
		o.Cutoff = c
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithTemperature sets the sampling temperature of both predictors.
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithMaxTokens caps each model response.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithTracer sets the tracer for run, step and extraction spans.
// Defaults to the global OpenTelemetry tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) {
		o.Tracer = t
	}
}

// WithTruncateFunc replaces the default truncation, which drops the oldest
// step.
func WithTruncateFunc(fn TruncateFunc) Option {
	return func(o *Options) {
		o.Truncate = fn
	}
}

// ApplyOptions applies functional options over the defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		MaxIters:    DefaultMaxIters,
		MaxAttempts: DefaultMaxAttempts,
		Cutoff:      tool.DefaultCutoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}
	if o.Truncate == nil {
		o.Truncate = (*trajectory.Trajectory).Truncate
	}
	return o
}

type runOptions struct {
	maxIters int
}

// RunOption configures a single invocation.
type RunOption func(*runOptions)

// MaxIters overrides the iteration budget for one invocation.
func MaxIters(n int) RunOption {
	return func(o *runOptions) {
		o.maxIters = n
	}
}
