package retry

import (
	"log/slog"
	"time"
)

// EventType names a point in the life of a retried call.
type EventType string

const (
	EventAttemptStart  EventType = "attempt_start"
	EventAttemptFailed EventType = "attempt_failed"
	// EventRetrying is sent before the backoff sleep; Delay is set.
	EventRetrying EventType = "retrying"
	EventSuccess  EventType = "success"
	// EventExhausted carries the last error after the final attempt.
	EventExhausted EventType = "exhausted"
)

// Event reports retry progress. Attempt is 1-based.
type Event struct {
	Type        EventType
	Attempt     int
	MaxAttempts int
	Error       error
	Delay       time.Duration
	// Retryable is set on EventAttemptFailed when the error is transient.
	Retryable bool
	Timestamp time.Time
}

// Terminal reports whether no further event follows e.
func (e Event) Terminal() bool {
	return e.Type == EventSuccess || e.Type == EventExhausted ||
		(e.Type == EventAttemptFailed && !e.Retryable)
}

// LogValue renders the event as a slog group.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(e.Type)),
		slog.Int("attempt", e.Attempt),
		slog.Int("max_attempts", e.MaxAttempts),
	}
	if e.Delay > 0 {
		attrs = append(attrs, slog.Duration("delay", e.Delay))
	}
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}
	return slog.GroupValue(attrs...)
}

// emit stamps e and sends it unless ch is nil or full.
func emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
