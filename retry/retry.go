package retry

import (
	"context"
	"time"

	ai "github.com/spetersoncode/reactor"
)

// effectiveDelay returns the delay to use, honoring the server's Retry-After
// if larger.
func effectiveDelay(configuredDelay time.Duration, err error) time.Duration {
	if serverDelay := ai.RetryAfterOf(err); serverDelay > configuredDelay {
		return serverDelay
	}
	return configuredDelay
}

// Do executes fn, retrying transient failures with exponential backoff.
// It respects context cancellation during backoff waits and returns the last
// error if all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return DoWithEvents(ctx, cfg, nil, fn)
}

// DoWithEvents is like Do but reports progress on events. Sends never block;
// events are dropped when the channel is full. A nil channel disables
// reporting.
func DoWithEvents[T any](ctx context.Context, cfg Config, events chan<- Event, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	maxAttempts := cfg.attempts()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		emit(events, Event{Type: EventAttemptStart, Attempt: attempt + 1, MaxAttempts: maxAttempts})

		result, err := fn()
		if err == nil {
			emit(events, Event{Type: EventSuccess, Attempt: attempt + 1, MaxAttempts: maxAttempts})
			return result, nil
		}

		lastErr = err
		retryable := IsTransient(err)
		emit(events, Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt + 1,
			MaxAttempts: maxAttempts,
			Error:       err,
			Retryable:   retryable,
		})

		if !retryable {
			return zero, err
		}

		// No sleep after the last attempt
		if attempt < maxAttempts-1 {
			delay := effectiveDelay(cfg.Delay(attempt), err)
			emit(events, Event{Type: EventRetrying, Attempt: attempt + 1, MaxAttempts: maxAttempts, Delay: delay})

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	emit(events, Event{Type: EventExhausted, Attempt: maxAttempts, MaxAttempts: maxAttempts, Error: lastErr})
	return zero, lastErr
}
