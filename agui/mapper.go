package agui

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/google/uuid"

	"github.com/spetersoncode/reactor/event"
	"github.com/spetersoncode/reactor/predict"
)

// Mapper converts ReAct run events to AG-UI events. A completed step
// expands into the thought as a text message followed by the tool call and
// its result.
//
// Create a new Mapper for each run using NewMapper. The Mapper is not
// safe for concurrent use.
type Mapper struct {
	threadID string
	runID    string
	openStep string
}

// NewMapper creates a new Mapper for a single run.
// The threadID and runID are used in lifecycle events (RUN_STARTED, RUN_FINISHED).
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{
		threadID: threadID,
		runID:    runID,
	}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(err error) events.Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return events.NewRunErrorEvent(msg)
}

// StepName names the AG-UI step for a loop iteration.
func StepName(idx int) string {
	return fmt.Sprintf("step_%d", idx)
}

// MapEvent converts one run event into zero or more AG-UI events.
// Recovery events (tool substitution, truncation) have no AG-UI
// equivalent and map to nothing.
func (m *Mapper) MapEvent(e event.Event) []events.Event {
	switch e.Type {
	case event.RunStart:
		return []events.Event{m.RunStarted()}

	case event.RunEnd:
		return append(m.closeStep(), m.RunFinished())

	case event.RunError:
		return append(m.closeStep(), m.RunError(e.Error))

	case event.StepStart:
		out := m.closeStep()
		m.openStep = StepName(e.Step)
		return append(out, events.NewStepStartedEvent(m.openStep))

	case event.StepEnd:
		if e.StepData == nil {
			return nil
		}
		return append(m.mapStep(e), m.closeStep()...)

	case event.Extracted:
		if e.Prediction == nil {
			return nil
		}
		return textMessage(outputsJSON(e.Prediction))

	default:
		return nil
	}
}

func (m *Mapper) mapStep(e event.Event) []events.Event {
	s := e.StepData
	var out []events.Event
	if s.Thought != "" {
		out = append(out, textMessage(s.Thought)...)
	}

	args, err := json.Marshal(s.ToolArgs)
	if err != nil {
		args = []byte("{}")
	}
	callID := uuid.NewString()
	return append(out,
		events.NewToolCallStartEvent(callID, s.ToolName),
		events.NewToolCallArgsEvent(callID, string(args)),
		events.NewToolCallEndEvent(callID),
		events.NewToolCallResultEvent(events.GenerateMessageID(), callID, s.Observation),
	)
}

// closeStep finishes the open step, if any. A step whose decision failed
// never sees StepEnd and is closed by the next lifecycle event.
func (m *Mapper) closeStep() []events.Event {
	if m.openStep == "" {
		return nil
	}
	name := m.openStep
	m.openStep = ""
	return []events.Event{events.NewStepFinishedEvent(name)}
}

func textMessage(content string) []events.Event {
	id := events.GenerateMessageID()
	return []events.Event{
		events.NewTextMessageStartEvent(id, events.WithRole(RoleAssistant)),
		events.NewTextMessageContentEvent(id, content),
		events.NewTextMessageEndEvent(id),
	}
}

// outputsJSON renders the prediction's output fields, without the
// trajectory, as an ordered JSON object.
func outputsJSON(p *predict.Prediction) string {
	outputs := predict.NewPrediction()
	for _, k := range p.Keys() {
		if k == predict.TrajectoryKey {
			continue
		}
		v, _ := p.Get(k)
		outputs.Set(k, v)
	}
	data, err := json.Marshal(outputs)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// MapStream maps a run's event stream. The returned channel closes when in
// closes or ctx is done.
func (m *Mapper) MapStream(ctx context.Context, in <-chan event.Event) <-chan events.Event {
	out := make(chan events.Event, 100)
	go func() {
		defer close(out)
		for e := range in {
			for _, ev := range m.MapEvent(e) {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
