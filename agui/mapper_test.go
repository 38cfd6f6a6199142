package agui

import (
	"context"
	"errors"
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/reactor/event"
	"github.com/spetersoncode/reactor/predict"
	"github.com/spetersoncode/reactor/trajectory"
)

func TestNewMapper(t *testing.T) {
	t.Run("with provided IDs", func(t *testing.T) {
		m := NewMapper("thread-123", "run-456")
		if m.ThreadID() != "thread-123" {
			t.Errorf("expected thread ID 'thread-123', got %q", m.ThreadID())
		}
		if m.RunID() != "run-456" {
			t.Errorf("expected run ID 'run-456', got %q", m.RunID())
		}
	})

	t.Run("generates IDs when empty", func(t *testing.T) {
		m := NewMapper("", "")
		if m.ThreadID() == "" {
			t.Error("expected generated thread ID, got empty")
		}
		if m.RunID() == "" {
			t.Error("expected generated run ID, got empty")
		}
	})
}

func types(evs []events.Event) []events.EventType {
	out := make([]events.EventType, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type()
	}
	return out
}

func assertTypes(t *testing.T, got []events.Event, want ...events.EventType) {
	t.Helper()
	gotTypes := types(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("got %v, want %v", gotTypes, want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Fatalf("event %d: got %v, want %v", i, gotTypes, want)
		}
	}
}

func sampleStep() *trajectory.Step {
	return &trajectory.Step{
		Index:       0,
		Thought:     "look it up",
		ToolName:    "search",
		ToolArgs:    map[string]any{"query": "go"},
		Observation: "results",
	}
}

func TestMapper_MapEvent(t *testing.T) {
	t.Run("run lifecycle", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")
		assertTypes(t, m.MapEvent(event.Event{Type: event.RunStart}), events.EventTypeRunStarted)
		assertTypes(t, m.MapEvent(event.Event{Type: event.RunEnd}), events.EventTypeRunFinished)
		assertTypes(t, m.MapEvent(event.Event{Type: event.RunError, Error: errors.New("boom")}), events.EventTypeRunError)
	})

	t.Run("completed step", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")
		assertTypes(t, m.MapEvent(event.Event{Type: event.StepStart, Step: 0}), events.EventTypeStepStarted)

		got := m.MapEvent(event.Event{Type: event.StepEnd, Step: 0, StepData: sampleStep()})
		assertTypes(t, got,
			events.EventTypeTextMessageStart,
			events.EventTypeTextMessageContent,
			events.EventTypeTextMessageEnd,
			events.EventTypeToolCallStart,
			events.EventTypeToolCallArgs,
			events.EventTypeToolCallEnd,
			events.EventTypeToolCallResult,
			events.EventTypeStepFinished,
		)

		start, ok := got[3].(*events.ToolCallStartEvent)
		if !ok {
			t.Fatalf("expected *ToolCallStartEvent, got %T", got[3])
		}
		if start.ToolCallName != "search" {
			t.Errorf("tool name = %q, want search", start.ToolCallName)
		}
		args, ok := got[4].(*events.ToolCallArgsEvent)
		if !ok {
			t.Fatalf("expected *ToolCallArgsEvent, got %T", got[4])
		}
		if args.Delta != `{"query":"go"}` {
			t.Errorf("args = %q", args.Delta)
		}
		result, ok := got[6].(*events.ToolCallResultEvent)
		if !ok {
			t.Fatalf("expected *ToolCallResultEvent, got %T", got[6])
		}
		if result.Content != "results" || result.ToolCallID != start.ToolCallID {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("step without thought", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")
		s := sampleStep()
		s.Thought = ""
		got := m.MapEvent(event.Event{Type: event.StepEnd, StepData: s})
		assertTypes(t, got,
			events.EventTypeToolCallStart,
			events.EventTypeToolCallArgs,
			events.EventTypeToolCallEnd,
			events.EventTypeToolCallResult,
		)
	})

	t.Run("unfinished step is closed by run end", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")
		m.MapEvent(event.Event{Type: event.StepStart, Step: 2})
		assertTypes(t, m.MapEvent(event.Event{Type: event.RunEnd}),
			events.EventTypeStepFinished, events.EventTypeRunFinished)
	})

	t.Run("extracted outputs", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")
		pred := predict.NewPrediction()
		pred.Set(predict.TrajectoryKey, trajectory.New())
		pred.Set("answer", "42")
		pred.Set("reason", "math")

		got := m.MapEvent(event.Event{Type: event.Extracted, Prediction: pred})
		assertTypes(t, got,
			events.EventTypeTextMessageStart,
			events.EventTypeTextMessageContent,
			events.EventTypeTextMessageEnd,
		)
		content, ok := got[1].(*events.TextMessageContentEvent)
		if !ok {
			t.Fatalf("expected *TextMessageContentEvent, got %T", got[1])
		}
		if content.Delta != `{"answer":"42","reason":"math"}` {
			t.Errorf("content = %q", content.Delta)
		}
	})

	t.Run("recovery events are dropped", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")
		if got := m.MapEvent(event.Event{Type: event.ToolSubstituted}); len(got) != 0 {
			t.Errorf("expected no events, got %v", types(got))
		}
		if got := m.MapEvent(event.Event{Type: event.Truncated}); len(got) != 0 {
			t.Errorf("expected no events, got %v", types(got))
		}
	})
}

func TestMapper_MapStream(t *testing.T) {
	in := make(chan event.Event, 4)
	in <- event.Event{Type: event.RunStart}
	in <- event.Event{Type: event.StepStart}
	in <- event.Event{Type: event.StepEnd, StepData: sampleStep()}
	in <- event.Event{Type: event.RunEnd}
	close(in)

	m := NewMapper("thread-1", "run-1")
	var got []events.Event
	for ev := range m.MapStream(context.Background(), in) {
		got = append(got, ev)
	}

	if len(got) != 11 {
		t.Fatalf("got %d events: %v", len(got), types(got))
	}
	if got[0].Type() != events.EventTypeRunStarted || got[len(got)-1].Type() != events.EventTypeRunFinished {
		t.Errorf("unexpected order: %v", types(got))
	}
}
