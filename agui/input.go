package agui

import (
	"encoding/json"
	"errors"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/reactor/signature"
)

// RunAgentInput is the request body for running a ReAct program. Inputs
// are given by name; messages follow the AG-UI protocol and supply the
// first missing input from the latest user message.
type RunAgentInput struct {
	ThreadID       string           `json:"threadId"`
	RunID          string           `json:"runId"`
	Inputs         map[string]any   `json:"inputs,omitempty"`
	Messages       []events.Message `json:"messages,omitempty"`
	ForwardedProps any              `json:"forwardedProps,omitempty"`
}

// PreparedInput contains the resolved program inputs.
type PreparedInput struct {
	ThreadID       string
	RunID          string
	Inputs         map[string]any
	ForwardedProps any
}

// ErrNoInputs is returned when the request carries neither inputs nor a
// user message.
var ErrNoInputs = errors.New("no inputs provided")

// Prepare resolves the program inputs for sig. Explicit inputs win; the
// latest user message fills the first declared input still missing.
// Remaining gaps are reported by the program itself.
func (r *RunAgentInput) Prepare(sig *signature.Signature) (*PreparedInput, error) {
	inputs := make(map[string]any, len(r.Inputs)+1)
	for k, v := range r.Inputs {
		inputs[k] = v
	}

	if content, ok := LastUserMessage(r.Messages); ok {
		for _, name := range sig.InputNames() {
			if _, present := inputs[name]; !present {
				inputs[name] = content
				break
			}
		}
	}

	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	return &PreparedInput{
		ThreadID:       r.ThreadID,
		RunID:          r.RunID,
		Inputs:         inputs,
		ForwardedProps: r.ForwardedProps,
	}, nil
}

// Decode converts a loosely typed JSON value, such as ForwardedProps, into
// T. A nil value yields the zero T.
func Decode[T any](raw any) (T, error) {
	var result T
	if raw == nil {
		return result, nil
	}

	// Re-marshal and unmarshal to get proper typing
	data, err := json.Marshal(raw)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, err
	}
	return result, nil
}
