package reactor

// Options are the per-request settings a ChatProvider honours. Zero values
// mean "provider default".
type Options struct {
	Model     string
	MaxTokens int
	// Temperature is nil when unset so that 0 can be requested explicitly.
	Temperature *float64
}

// Option sets one request setting.
type Option func(*Options)

// WithModel overrides the provider's configured model for one request.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// ApplyOptions folds opts in order; later options win.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ModelOr returns the requested model, or def when none was requested.
func (o *Options) ModelOr(def string) string {
	if o.Model != "" {
		return o.Model
	}
	return def
}
