package react

import (
	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/predict"
	"github.com/spetersoncode/reactor/trajectory"
)

// State is a ReAct loop state.
type State string

const (
	// StateIterating means the loop is choosing and running tools.
	StateIterating State = "iterating"

	// StateFinishedByTool means the model selected finish.
	StateFinishedByTool State = "finished_by_tool"

	// StateFinishedByBudget means the iteration budget was used up.
	StateFinishedByBudget State = "finished_by_budget"

	// StateFinishedByError means the decision call failed, the context
	// window could not be recovered, or the context was cancelled.
	StateFinishedByError State = "finished_by_error"

	// StateExtracting means the final outputs are being produced.
	StateExtracting State = "extracting"

	// StateDone means the invocation is complete.
	StateDone State = "done"
)

// Finished reports whether s ends the iteration phase.
func (s State) Finished() bool {
	switch s {
	case StateFinishedByTool, StateFinishedByBudget, StateFinishedByError:
		return true
	}
	return false
}

// Result is the outcome of one invocation.
type Result struct {
	// RunID correlates the result with emitted events.
	RunID string

	// Prediction holds every declared output field plus the trajectory.
	Prediction *predict.Prediction

	// Trajectory is the recorded steps, after any truncation.
	Trajectory *trajectory.Trajectory

	// Termination is the state that ended the iteration phase.
	Termination State

	// Steps is the number of steps taken, including truncated ones.
	Steps int

	// Extracted reports whether the outputs came from the model rather than
	// placeholders.
	Extracted bool

	// Usage aggregates token usage across all successful model calls.
	Usage ai.Usage
}
