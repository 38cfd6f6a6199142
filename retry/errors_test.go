package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	ai "github.com/spetersoncode/reactor"
	"github.com/stretchr/testify/assert"
)

// mockAPIError simulates an SDK error with a status code.
type mockAPIError struct {
	code int
	msg  string
}

func (e *mockAPIError) Error() string   { return e.msg }
func (e *mockAPIError) StatusCode() int { return e.code }

func TestIsTransientStatusCode(t *testing.T) {
	tests := []struct {
		code     int
		expected bool
	}{
		{200, false},
		{400, false},
		{401, false},
		{404, false},
		{408, true},
		{429, true},
		{500, true},
		{503, true},
		{599, true},
		{600, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, isTransientStatusCode(tt.code))
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limited api error", err: &mockAPIError{code: 429, msg: "slow down"}, want: true},
		{name: "bad request api error", err: &mockAPIError{code: 400, msg: "bad"}, want: false},
		{name: "wrapped api error", err: fmt.Errorf("call: %w", &mockAPIError{code: 502, msg: "gw"}), want: true},
		{name: "url timeout", err: &url.Error{Op: "Post", URL: "http://x", Err: &mockTransientError{msg: "i/o"}}, want: true},
		{name: "connection reset errno", err: fmt.Errorf("read: %w", syscall.ECONNRESET), want: true},
		{name: "temporary dns", err: &net.DNSError{Err: "no such host", IsTemporary: true}, want: true},
		{name: "permanent dns", err: &net.DNSError{Err: "no such host"}, want: false},
		{name: "message pattern", err: errors.New("503 Service Unavailable"), want: true},
		{name: "plain error", err: errors.New("invalid api key"), want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: false},
		{name: "context window message", err: errors.New("server error: maximum context length is 8192 tokens"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientWithCategorizedError(t *testing.T) {
	t.Run("transient", func(t *testing.T) {
		assert.True(t, IsTransient(ai.NewTransientError("rate limited", 429, nil)))
	})

	t.Run("permanent", func(t *testing.T) {
		assert.False(t, IsTransient(ai.NewPermanentError("unauthorized", 401, nil)))
	})

	t.Run("user input", func(t *testing.T) {
		assert.False(t, IsTransient(ai.NewUserInputError("bad request", 400, nil)))
	})

	t.Run("context window", func(t *testing.T) {
		assert.False(t, IsTransient(ai.NewContextWindowError("too long", 400, nil)))
	})

	t.Run("category overrides status heuristics", func(t *testing.T) {
		assert.False(t, IsTransient(ai.NewPermanentError("rate limit but don't retry", 429, nil)))
	})
}
