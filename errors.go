package reactor

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorCategory classifies errors by how they should be handled.
type ErrorCategory string

const (
	// ErrorTransient indicates the error is temporary and the operation can be retried.
	// Examples: rate limits, temporary network issues, server overload.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent indicates the error is not recoverable through retry.
	// Examples: invalid API key, insufficient permissions, model not found.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput indicates the request itself was invalid.
	// Examples: malformed request, invalid parameters, content policy violation.
	ErrorUserInput ErrorCategory = "user_input"

	// ErrorContextWindow indicates the prompt does not fit the model's context window.
	// Retrying the same request is pointless; the prompt has to shrink first.
	ErrorContextWindow ErrorCategory = "context_window"
)

// CategorizedError is an error that provides information about how it should be handled.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool          // convenience: returns true if Category == ErrorTransient
	StatusCode() int          // HTTP status code if applicable, 0 otherwise
	RetryAfter() time.Duration // suggested retry delay from server, 0 if not available
}

// Error is a categorized error with metadata for error handling decisions.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int           // HTTP status code, 0 if not applicable
	RetryDelay time.Duration // from Retry-After header, 0 if not available
	Cause      error         // underlying error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.Cat
}

// Retryable returns true if the error is transient and can be retried.
func (e *Error) Retryable() bool {
	return e.Cat == ErrorTransient
}

// StatusCode returns the HTTP status code, or 0 if not applicable.
func (e *Error) StatusCode() int {
	return e.Code
}

// RetryAfter returns the suggested retry delay, or 0 if not available.
func (e *Error) RetryAfter() time.Duration {
	return e.RetryDelay
}

func newError(cat ErrorCategory, msg string, code int, cause error) *Error {
	return &Error{Msg: msg, Cat: cat, Code: code, Cause: cause}
}

// NewTransientError creates a retryable error.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return newError(ErrorTransient, msg, statusCode, cause)
}

// NewTransientErrorWithRetry creates a retryable error carrying the server's
// requested delay.
func NewTransientErrorWithRetry(msg string, statusCode int, retryAfter time.Duration, cause error) *Error {
	e := newError(ErrorTransient, msg, statusCode, cause)
	e.RetryDelay = retryAfter
	return e
}

// NewPermanentError creates an error that retrying cannot fix.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return newError(ErrorPermanent, msg, statusCode, cause)
}

// NewUserInputError creates an error for a request the provider rejected
// as invalid.
func NewUserInputError(msg string, statusCode int, cause error) *Error {
	return newError(ErrorUserInput, msg, statusCode, cause)
}

// NewContextWindowError creates an error for a prompt that exceeded the
// model's context window.
func NewContextWindowError(msg string, statusCode int, cause error) *Error {
	return newError(ErrorContextWindow, msg, statusCode, cause)
}

// CategoryOf returns the category of the first CategorizedError in err's
// chain.
func CategoryOf(err error) (ErrorCategory, bool) {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category(), true
	}
	return "", false
}

func hasCategory(err error, cat ErrorCategory) bool {
	c, ok := CategoryOf(err)
	return ok && c == cat
}

// IsTransient reports whether err is categorized as transient.
func IsTransient(err error) bool { return hasCategory(err, ErrorTransient) }

// IsPermanent reports whether err is categorized as permanent.
func IsPermanent(err error) bool { return hasCategory(err, ErrorPermanent) }

// IsUserInput reports whether err is categorized as a user input error.
func IsUserInput(err error) bool { return hasCategory(err, ErrorUserInput) }

// IsContextWindowExceeded reports whether err is a context-window
// rejection. The ReAct loop truncates its trajectory on this error.
func IsContextWindowExceeded(err error) bool { return hasCategory(err, ErrorContextWindow) }

// StatusCodeOf returns the HTTP status code of a categorized error, or 0.
func StatusCodeOf(err error) int {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the server-requested retry delay, or 0.
func RetryAfterOf(err error) time.Duration {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// contextWindowPhrases are fragments providers use when rejecting an
// oversized prompt. Matching is case-insensitive.
var contextWindowPhrases = []string{
	"context_length_exceeded",
	"context length",
	"context window",
	"maximum context",
	"prompt is too long",
	"too many tokens",
	"exceeds the maximum number of tokens",
	"input token count",
}

// MentionsContextWindow reports whether an error message looks like a
// context-window rejection. Provider adapters use it for SDK errors that do
// not carry a dedicated error code.
func MentionsContextWindow(msg string) bool {
	lower := strings.ToLower(msg)
	for _, phrase := range contextWindowPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// CategorizeStatusCode maps an HTTP status code to a category. Rate limits,
// timeouts and server errors are transient.
func CategorizeStatusCode(code int) ErrorCategory {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout,
		code >= 500 && code < 600:
		return ErrorTransient
	case code == http.StatusBadRequest, code == http.StatusNotFound,
		code == http.StatusRequestEntityTooLarge, code == http.StatusUnprocessableEntity:
		return ErrorUserInput
	default:
		return ErrorPermanent
	}
}

// NewStatusError builds a categorized error for a failed provider call.
// Context-window rejections are recognised from msg (or forced with
// contextWindow) before the status code is consulted; a positive retryAfter
// always yields a transient error.
func NewStatusError(msg string, code int, retryAfter time.Duration, contextWindow bool, cause error) *Error {
	if contextWindow || MentionsContextWindow(msg) {
		return NewContextWindowError(msg, code, cause)
	}
	if retryAfter > 0 {
		return NewTransientErrorWithRetry(msg, code, retryAfter, cause)
	}
	switch CategorizeStatusCode(code) {
	case ErrorTransient:
		return NewTransientError(msg, code, cause)
	case ErrorUserInput:
		return NewUserInputError(msg, code, cause)
	default:
		return NewPermanentError(msg, code, cause)
	}
}

// ParseRetryAfter extracts the Retry-After duration from response headers.
// Returns 0 if the header is not present or cannot be parsed.
func ParseRetryAfter(h http.Header) time.Duration {
	header := h.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}
	return 0
}
