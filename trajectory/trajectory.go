// Package trajectory holds the ordered record of reasoning steps produced by
// one agent run.
//
// Each step carries four related entries (thought, tool name, tool arguments
// and observation) that are always written together. Steps are only ever
// appended; truncation drops the oldest complete step.
package trajectory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrCannotTruncate is returned by Truncate when the trajectory holds at most
// one step.
var ErrCannotTruncate = errors.New("trajectory: cannot truncate a trajectory with fewer than two steps")

// Step is one thought/action/observation record.
type Step struct {
	// Index is the step number assigned when the step was appended. It is
	// not renumbered by truncation.
	Index       int            `json:"index"`
	Thought     string         `json:"thought"`
	ToolName    string         `json:"tool_name"`
	ToolArgs    map[string]any `json:"tool_args"`
	Observation string         `json:"observation"`
}

// Entries returns the step's four keyed entries in their canonical order.
func (s Step) Entries() []Entry {
	return []Entry{
		{Key: fmt.Sprintf("thought_%d", s.Index), Value: s.Thought},
		{Key: fmt.Sprintf("tool_name_%d", s.Index), Value: s.ToolName},
		{Key: fmt.Sprintf("tool_args_%d", s.Index), Value: formatArgs(s.ToolArgs)},
		{Key: fmt.Sprintf("observation_%d", s.Index), Value: s.Observation},
	}
}

// Entry is one keyed line of a serialized trajectory.
type Entry struct {
	Key   string
	Value string
}

// Trajectory is an append-only sequence of steps. It is owned by a single
// run and is not safe for concurrent mutation.
type Trajectory struct {
	steps []Step
	next  int
}

// New returns an empty trajectory.
func New() *Trajectory {
	return &Trajectory{}
}

// Append records a complete step and returns it.
func (t *Trajectory) Append(thought, toolName string, toolArgs map[string]any, observation string) Step {
	if toolArgs == nil {
		toolArgs = map[string]any{}
	}
	s := Step{
		Index:       t.next,
		Thought:     thought,
		ToolName:    toolName,
		ToolArgs:    toolArgs,
		Observation: observation,
	}
	t.steps = append(t.steps, s)
	t.next++
	return s
}

// Len returns the number of complete steps currently held.
func (t *Trajectory) Len() int {
	if t == nil {
		return 0
	}
	return len(t.steps)
}

// Steps returns a copy of the held steps, oldest first.
func (t *Trajectory) Steps() []Step {
	if t == nil {
		return nil
	}
	return append([]Step(nil), t.steps...)
}

// Last returns the most recent step.
func (t *Trajectory) Last() (Step, bool) {
	if t.Len() == 0 {
		return Step{}, false
	}
	return t.steps[len(t.steps)-1], true
}

// Truncate removes the oldest complete step. It fails with ErrCannotTruncate,
// leaving the trajectory unchanged, when one step or none remains.
func (t *Trajectory) Truncate() error {
	if t.Len() <= 1 {
		return ErrCannotTruncate
	}
	t.steps = append(t.steps[:0:0], t.steps[1:]...)
	return nil
}

// Clone returns an independent copy. Tool argument maps are shared.
func (t *Trajectory) Clone() *Trajectory {
	if t == nil {
		return New()
	}
	return &Trajectory{steps: t.Steps(), next: t.next}
}

// Entries returns the keyed entries of every step in order.
func (t *Trajectory) Entries() []Entry {
	entries := make([]Entry, 0, t.Len()*4)
	for _, s := range t.Steps() {
		entries = append(entries, s.Entries()...)
	}
	return entries
}

// Format serializes the trajectory into the flat text block embedded into
// prompts: one "key: value" line per entry. An empty trajectory formats as
// the empty string.
func (t *Trajectory) Format() string {
	var b strings.Builder
	for i, e := range t.Entries() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Key)
		b.WriteString(": ")
		b.WriteString(e.Value)
	}
	return b.String()
}

// String implements fmt.Stringer.
func (t *Trajectory) String() string {
	return t.Format()
}

// MarshalJSON encodes the trajectory as its list of steps.
func (t *Trajectory) MarshalJSON() ([]byte, error) {
	steps := t.Steps()
	if steps == nil {
		steps = []Step{}
	}
	return json.Marshal(steps)
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprint(args)
	}
	return string(data)
}
