// Package event defines the events a ReAct run emits while it executes. The
// event types map onto the AG-UI protocol, see the agui package.
package event

import (
	"context"
	"time"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/predict"
	"github.com/spetersoncode/reactor/trajectory"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when an invocation begins, after inputs are validated.
	RunStart Type = "run_start"

	// RunEnd fires after extraction with the final prediction.
	RunEnd Type = "run_end"

	// RunError fires when an invocation is rejected before any model call.
	RunError Type = "run_error"
)

// Step lifecycle events
const (
	// StepStart fires before the decision call of an iteration.
	StepStart Type = "step_start"

	// StepEnd fires once a complete step has been recorded.
	StepEnd Type = "step_end"
)

// Recovery events
const (
	// ToolSubstituted fires when a chosen tool name was replaced, either by
	// a fuzzy match or by finish.
	ToolSubstituted Type = "tool_substituted"

	// Truncated fires when the oldest step was dropped after a context
	// window error.
	Truncated Type = "truncated"
)

// Extracted fires when the final answer has been produced, from the model or
// from placeholders.
const Extracted Type = "extracted"

// Event represents an observable occurrence during a run.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// RunID correlates all events of one invocation.
	RunID string

	// Step is the 0-based step index for step and recovery events.
	Step int

	// StepData is the recorded step for StepEnd events.
	StepData *trajectory.Step

	// Prediction is the extracted answer for Extracted and RunEnd events.
	Prediction *predict.Prediction

	// State names the loop state: the termination state on Extracted and
	// RunEnd events.
	State string

	// Usage is the accumulated token usage on RunEnd events.
	Usage ai.Usage

	// Error contains the error for RunError events.
	Error error

	// Message contains additional context, e.g. the original tool name on
	// ToolSubstituted events.
	Message string

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Emit stamps e and sends it on ch. Unlike a fire-and-forget notification,
// it blocks until the consumer receives the event so no step is lost, and
// gives up when ctx is done. It reports whether the event was delivered.
func Emit(ctx context.Context, ch chan<- Event, e Event) bool {
	if ch == nil {
		return false
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

// NewChannel creates a buffered event channel with standard capacity.
func NewChannel() chan Event {
	return make(chan Event, 100)
}
