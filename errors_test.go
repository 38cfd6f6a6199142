package reactor

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("Error includes cause", func(t *testing.T) {
		err := NewPermanentError("bad key", 401, errors.New("unauthorized"))
		assert.Equal(t, "bad key: unauthorized", err.Error())
	})

	t.Run("Error without cause", func(t *testing.T) {
		err := &Error{Msg: "plain", Cat: ErrorPermanent}
		assert.Equal(t, "plain", err.Error())
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		err := NewTransientError("wrapped", 503, cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestCategoryHelpers(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		transient     bool
		permanent     bool
		userInput     bool
		contextWindow bool
	}{
		{"transient", NewTransientError("rate limited", 429, nil), true, false, false, false},
		{"permanent", NewPermanentError("forbidden", 403, nil), false, true, false, false},
		{"user input", NewUserInputError("bad request", 400, nil), false, false, true, false},
		{"context window", NewContextWindowError("too long", 400, nil), false, false, false, true},
		{"plain error", errors.New("boom"), false, false, false, false},
		{"nil", nil, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
			assert.Equal(t, tt.permanent, IsPermanent(tt.err))
			assert.Equal(t, tt.userInput, IsUserInput(tt.err))
			assert.Equal(t, tt.contextWindow, IsContextWindowExceeded(tt.err))
		})
	}

	t.Run("sees through wrapping", func(t *testing.T) {
		err := fmt.Errorf("predict: %w", NewContextWindowError("too long", 400, nil))
		assert.True(t, IsContextWindowExceeded(err))
	})
}

func TestStatusAndRetryAfter(t *testing.T) {
	err := NewTransientErrorWithRetry("slow down", 429, 3*time.Second, nil)
	assert.Equal(t, 429, StatusCodeOf(err))
	assert.Equal(t, 3*time.Second, RetryAfterOf(err))
	assert.True(t, err.Retryable())

	assert.Equal(t, 0, StatusCodeOf(errors.New("plain")))
	assert.Equal(t, time.Duration(0), RetryAfterOf(errors.New("plain")))
}

func TestMentionsContextWindow(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"This model's maximum context length is 8192 tokens", true},
		{"error code: context_length_exceeded", true},
		{"prompt is too long: 210000 tokens > 200000 maximum", true},
		{"The input token count (1200000) exceeds the maximum number of tokens allowed", true},
		{"invalid api key", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, MentionsContextWindow(tt.msg))
		})
	}
}

func TestNewStatusError(t *testing.T) {
	tests := []struct {
		name          string
		msg           string
		code          int
		retryAfter    time.Duration
		contextWindow bool
		want          ErrorCategory
	}{
		{name: "rate limit", msg: "slow down", code: 429, want: ErrorTransient},
		{name: "server error", msg: "oops", code: 503, want: ErrorTransient},
		{name: "auth", msg: "bad key", code: 401, want: ErrorPermanent},
		{name: "bad request", msg: "invalid", code: 400, want: ErrorUserInput},
		{name: "unknown code", msg: "teapot", code: 418, want: ErrorPermanent},
		{name: "retry after wins", msg: "busy", code: 400, retryAfter: time.Second, want: ErrorTransient},
		{name: "context window by message", msg: "maximum context length exceeded", code: 400, want: ErrorContextWindow},
		{name: "context window forced", msg: "rejected", code: 400, contextWindow: true, want: ErrorContextWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStatusError(tt.msg, tt.code, tt.retryAfter, tt.contextWindow, errors.New("cause"))
			assert.Equal(t, tt.want, err.Category())
			assert.Equal(t, tt.code, err.StatusCode())
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, time.Duration(0), ParseRetryAfter(h))

	h.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, ParseRetryAfter(h))

	h.Set("Retry-After", "garbage")
	assert.Equal(t, time.Duration(0), ParseRetryAfter(h))

	h.Set("Retry-After", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	assert.Greater(t, ParseRetryAfter(h), 59*time.Minute)
}

func TestCategorizeStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want ErrorCategory
	}{
		{http.StatusTooManyRequests, ErrorTransient},
		{http.StatusRequestTimeout, ErrorTransient},
		{http.StatusBadGateway, ErrorTransient},
		{http.StatusUnauthorized, ErrorPermanent},
		{http.StatusForbidden, ErrorPermanent},
		{http.StatusBadRequest, ErrorUserInput},
		{http.StatusUnprocessableEntity, ErrorUserInput},
		{http.StatusTeapot, ErrorPermanent},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeStatusCode(tt.code))
		})
	}
}

func TestCategoryOf(t *testing.T) {
	cat, ok := CategoryOf(fmt.Errorf("wrapped: %w", NewContextWindowError("too long", 400, nil)))
	assert.True(t, ok)
	assert.Equal(t, ErrorContextWindow, cat)

	_, ok = CategoryOf(errors.New("plain"))
	assert.False(t, ok)
}
