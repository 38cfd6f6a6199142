package client

import (
	"time"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/retry"
)

// EventType names a stage of a model request made through Retrying.
type EventType string

const (
	EventRequestStart    EventType = "request_start"
	EventRequestComplete EventType = "request_complete"
	// EventRequestError is sent once, after retries have given up.
	EventRequestError EventType = "request_error"
	// EventRetry wraps each retry.Event of the request.
	EventRetry EventType = "retry"
)

// Event reports request progress for monitoring and cost accounting.
type Event struct {
	Type     EventType
	Provider ai.Provider
	Model    string
	// Duration covers every attempt, backoff included.
	Duration   time.Duration
	Usage      *ai.Usage
	Error      error
	RetryEvent *retry.Event
	Timestamp  time.Time
}

// emit stamps e and hands it to ch, dropping it when ch is nil or full so
// that a slow observer never delays a model call.
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
