package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/config"
	"github.com/spetersoncode/reactor/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns errs in order, then a fixed response.
type scriptedProvider struct {
	errs  []error
	calls int
	opts  []*ai.Options
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	p.calls++
	p.opts = append(p.opts, ai.ApplyOptions(opts...))
	if p.calls <= len(p.errs) {
		return nil, p.errs[p.calls-1]
	}
	return &ai.Response{Content: "ok", Usage: ai.Usage{InputTokens: 3, OutputTokens: 1}}, nil
}

func fastRetry(attempts int) retry.Config {
	return retry.Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func drain(ch chan Event) []EventType {
	var types []EventType
	for {
		select {
		case ev := <-ch:
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}

func TestRetryingChat(t *testing.T) {
	t.Run("retries transient errors", func(t *testing.T) {
		p := &scriptedProvider{errs: []error{ai.NewTransientError("rate limited", 429, nil)}}
		events := make(chan Event, 100)
		r := NewRetrying(p, fastRetry(3), WithEvents(events))

		resp, err := r.Chat(context.Background(), []ai.Message{ai.UserMessage("hi")})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Content)
		assert.Equal(t, 2, p.calls)

		types := drain(events)
		require.NotEmpty(t, types)
		assert.Equal(t, EventRequestStart, types[0])
		assert.Equal(t, EventRequestComplete, types[len(types)-1])
		assert.Contains(t, types, EventRetry)
	})

	t.Run("context window errors are not retried", func(t *testing.T) {
		p := &scriptedProvider{errs: []error{ai.NewContextWindowError("prompt is too long", 400, nil)}}
		r := NewRetrying(p, fastRetry(5))

		_, err := r.Chat(context.Background(), []ai.Message{ai.UserMessage("hi")})
		assert.True(t, ai.IsContextWindowExceeded(err))
		assert.Equal(t, 1, p.calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		p := &scriptedProvider{errs: []error{ai.NewPermanentError("unauthorized", 401, nil)}}
		events := make(chan Event, 100)
		r := NewRetrying(p, fastRetry(5), WithEvents(events))

		_, err := r.Chat(context.Background(), nil)
		assert.Error(t, err)
		assert.Equal(t, 1, p.calls)
		types := drain(events)
		assert.Equal(t, EventRequestError, types[len(types)-1])
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		transient := ai.NewTransientError("unavailable", 503, nil)
		p := &scriptedProvider{errs: []error{transient, transient, transient}}
		r := NewRetrying(p, fastRetry(2))

		_, err := r.Chat(context.Background(), nil)
		assert.True(t, errors.Is(err, transient))
		assert.Equal(t, 2, p.calls)
	})

	t.Run("default options are overridden per request", func(t *testing.T) {
		p := &scriptedProvider{}
		r := NewRetrying(p, fastRetry(1), WithDefaultOptions(ai.WithMaxTokens(10), ai.WithModel("a")))

		_, err := r.Chat(context.Background(), nil, ai.WithModel("b"))
		require.NoError(t, err)
		require.Len(t, p.opts, 1)
		assert.Equal(t, 10, p.opts[0].MaxTokens)
		assert.Equal(t, "b", p.opts[0].Model)
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("missing API key", func(t *testing.T) {
		cfg := config.Default()
		_, err := New(ctx, cfg)
		var missing *ErrMissingAPIKey
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, ai.ProviderOpenAI, missing.Provider)
		assert.Equal(t, "no API key configured for openai", err.Error())
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Provider = "acme"
		cfg.APIKey = "k"
		_, err := New(ctx, cfg)
		assert.ErrorContains(t, err, "unknown provider")
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		cfg := config.Default()
		cfg.Provider = ai.ProviderOllama
		cfg.Model = "llama3"
		p, err := New(ctx, cfg)
		require.NoError(t, err)
		assert.IsType(t, &Retrying{}, p)
	})

	t.Run("openai compatible base", func(t *testing.T) {
		var gotMaxTokens float64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if v, ok := body["max_completion_tokens"].(float64); ok {
				gotMaxTokens = v
			} else if v, ok := body["max_tokens"].(float64); ok {
				gotMaxTokens = v
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m",
				"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"pong"}}],
				"usage":{"prompt_tokens":2,"completion_tokens":1,"total_tokens":3}}`))
		}))
		defer server.Close()

		cfg := config.Default()
		cfg.Provider = ai.ProviderOpenRouter
		cfg.APIKey = "k"
		cfg.APIBase = server.URL + "/"
		cfg.MaxTokens = 64
		cfg.Retry = fastRetry(1)

		p, err := New(ctx, cfg)
		require.NoError(t, err)

		resp, err := p.Chat(ctx, []ai.Message{ai.UserMessage("ping")})
		require.NoError(t, err)
		assert.Equal(t, "pong", resp.Content)
		assert.Equal(t, 3, resp.Usage.Total())
		assert.InDelta(t, 64, gotMaxTokens, 0)
	})
}
