package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/config"
	"github.com/spetersoncode/reactor/internal/provider/anthropic"
	"github.com/spetersoncode/reactor/internal/provider/google"
	"github.com/spetersoncode/reactor/internal/provider/langchain"
	"github.com/spetersoncode/reactor/internal/provider/openai"
	"github.com/spetersoncode/reactor/retry"
)

// ErrMissingAPIKey is returned when the configured provider needs an API
// key and none is set.
type ErrMissingAPIKey struct {
	Provider ai.Provider
}

func (e *ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// Option configures the retrying wrapper.
type Option func(*Retrying)

// WithEvents sets a channel that receives request and retry events.
func WithEvents(ch chan<- Event) Option {
	return func(r *Retrying) {
		r.events = ch
	}
}

// WithLogger sets the logger for retry warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Retrying) {
		r.logger = l
	}
}

// WithDefaultOptions sets options applied to every request.
// Per-request options override these defaults.
func WithDefaultOptions(opts ...ai.Option) Option {
	return func(r *Retrying) {
		r.defaults = append(r.defaults, opts...)
	}
}

// New validates cfg, builds the provider it selects and wraps it with
// retries. A configured MaxTokens becomes a default request option.
func New(ctx context.Context, cfg config.Config, opts ...Option) (ai.ChatProvider, error) {
	if cfg.APIKey == "" && cfg.Provider != ai.ProviderOllama && cfg.Provider.Valid() {
		return nil, &ErrMissingAPIKey{Provider: cfg.Provider}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MaxTokens > 0 {
		opts = append([]Option{WithDefaultOptions(ai.WithMaxTokens(cfg.MaxTokens))}, opts...)
	}
	r := NewRetrying(provider, cfg.Retry, opts...)
	r.name = cfg.Provider
	r.model = cfg.Model
	return r, nil
}

func newProvider(ctx context.Context, cfg config.Config) (ai.ChatProvider, error) {
	base := cfg.BaseURL()

	switch cfg.Provider {
	case ai.ProviderOpenAI, ai.ProviderOpenRouter:
		var opts []openai.ClientOption
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if base != "" {
			opts = append(opts, openai.WithBaseURL(base))
		}
		if cfg.Provider == ai.ProviderOpenRouter {
			opts = append(opts, openai.WithHeader("X-Title", "reactor"))
		}
		return openai.New(cfg.APIKey, opts...), nil

	case ai.ProviderAnthropic:
		var opts []anthropic.ClientOption
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		if base != "" {
			opts = append(opts, anthropic.WithBaseURL(base))
		}
		return anthropic.New(cfg.APIKey, opts...), nil

	case ai.ProviderGoogle:
		var opts []google.ClientOption
		if cfg.Model != "" {
			opts = append(opts, google.WithModel(cfg.Model))
		}
		if base != "" {
			opts = append(opts, google.WithBaseURL(base))
		}
		c, err := google.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google client: %w", err)
		}
		return c, nil

	case ai.ProviderOllama:
		return langchain.NewOllama(cfg.Model, base)
	}
	return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
}

// Retrying wraps a ChatProvider and retries transient failures.
type Retrying struct {
	provider ai.ChatProvider
	cfg      retry.Config
	events   chan<- Event
	logger   *slog.Logger
	defaults []ai.Option
	name     ai.Provider
	model    string
}

// NewRetrying wraps provider with the given retry configuration.
func NewRetrying(provider ai.ChatProvider, cfg retry.Config, opts ...Option) *Retrying {
	r := &Retrying{
		provider: provider,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Chat sends the conversation, retrying transient errors.
func (r *Retrying) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	opts = append(append([]ai.Option{}, r.defaults...), opts...)
	model := ai.ApplyOptions(opts...).ModelOr(r.model)

	start := time.Now()
	emit(r.events, Event{Type: EventRequestStart, Provider: r.name, Model: model})

	retryEvents := make(chan retry.Event, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.forwardRetryEvents(retryEvents, model)
	}()

	resp, err := retry.DoWithEvents(ctx, r.cfg, retryEvents, func() (*ai.Response, error) {
		return r.provider.Chat(ctx, messages, opts...)
	})
	close(retryEvents)
	<-done

	if err != nil {
		emit(r.events, Event{
			Type:     EventRequestError,
			Provider: r.name,
			Model:    model,
			Duration: time.Since(start),
			Error:    err,
		})
		return nil, err
	}

	emit(r.events, Event{
		Type:     EventRequestComplete,
		Provider: r.name,
		Model:    model,
		Duration: time.Since(start),
		Usage:    &resp.Usage,
	})
	return resp, nil
}

// forwardRetryEvents logs retries and forwards them to the client channel.
func (r *Retrying) forwardRetryEvents(in <-chan retry.Event, model string) {
	for ev := range in {
		switch {
		case ev.Type == retry.EventRetrying:
			r.logger.Warn("retrying model call", "provider", r.name, "model", model, "retry", ev)
		case ev.Type == retry.EventExhausted:
			r.logger.Error("model call failed after retries", "provider", r.name, "model", model, "retry", ev)
		}
		if r.events == nil {
			continue
		}
		ev := ev
		emit(r.events, Event{
			Type:       EventRetry,
			Provider:   r.name,
			Model:      model,
			RetryEvent: &ev,
		})
	}
}

var _ ai.ChatProvider = (*Retrying)(nil)
