package react

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/event"
	"github.com/spetersoncode/reactor/predict"
	"github.com/spetersoncode/reactor/tool"
	"github.com/spetersoncode/reactor/trajectory"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// run holds the state of one invocation.
type run struct {
	p        *Program
	id       string
	inputs   map[string]any
	maxIters int
	events   chan<- event.Event
	log      *slog.Logger

	// caller is the run's own context. Events are sent under it, also
	// during extraction.
	caller context.Context

	traj  *trajectory.Trajectory
	state State
	steps int
	usage ai.Usage
}

func (p *Program) newRun(inputs map[string]any, events chan<- event.Event, opts ...RunOption) *run {
	ro := runOptions{maxIters: p.opts.MaxIters}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.maxIters < 1 {
		ro.maxIters = 1
	}

	id := uuid.NewString()
	return &run{
		p:        p,
		id:       id,
		inputs:   inputs,
		maxIters: ro.maxIters,
		events:   events,
		log:      p.opts.Logger.With("run_id", id),
		traj:     trajectory.New(),
		state:    StateIterating,
	}
}

func (r *run) emit(e event.Event) {
	e.RunID = r.id
	event.Emit(r.caller, r.events, e)
}

// execute drives the state machine to StateDone.
func (r *run) execute(ctx context.Context) *Result {
	ctx, span := r.p.opts.Tracer.Start(ctx, "react.forward", trace.WithAttributes(
		attribute.String("react.run_id", r.id),
		attribute.String("react.signature", r.p.sig.String()),
		attribute.Int("react.max_iters", r.maxIters),
	))
	defer span.End()
	r.caller = ctx

	r.emit(event.Event{Type: event.RunStart})
	r.iterate(ctx)
	termination := r.state

	// Extraction always runs, even after cancellation.
	r.state = StateExtracting
	pred, extracted := r.extractOutputs(context.WithoutCancel(ctx))
	r.state = StateDone

	span.SetAttributes(
		attribute.String("react.termination", string(termination)),
		attribute.Int("react.steps", r.steps),
		attribute.Int("react.input_tokens", r.usage.InputTokens),
		attribute.Int("react.output_tokens", r.usage.OutputTokens),
	)
	if termination == StateFinishedByError {
		span.SetStatus(codes.Error, "iteration ended by error")
	}

	r.log.Info("react run finished",
		"termination", termination,
		"steps", r.steps,
		"extracted", extracted,
		"input_tokens", r.usage.InputTokens,
		"output_tokens", r.usage.OutputTokens,
	)

	r.emit(event.Event{Type: event.Extracted, Prediction: pred, State: string(termination)})
	r.emit(event.Event{Type: event.RunEnd, Prediction: pred, State: string(termination), Step: r.steps, Usage: r.usage})

	return &Result{
		RunID:       r.id,
		Prediction:  pred,
		Trajectory:  r.traj,
		Termination: termination,
		Steps:       r.steps,
		Extracted:   extracted,
		Usage:       r.usage,
	}
}

// iterate runs steps until a terminal state is reached.
func (r *run) iterate(ctx context.Context) {
	for idx := 0; idx < r.maxIters; idx++ {
		if err := ctx.Err(); err != nil {
			r.log.Warn("run cancelled", "step", idx, "error", err)
			r.state = StateFinishedByError
			return
		}

		r.state = r.step(ctx, idx)
		if r.state.Finished() {
			return
		}
	}
	r.state = StateFinishedByBudget
}

// step performs one decide/act/observe iteration and returns the next state.
func (r *run) step(ctx context.Context, idx int) State {
	ctx, span := r.p.opts.Tracer.Start(ctx, "react.step", trace.WithAttributes(attribute.Int("react.step", idx)))
	defer span.End()

	r.emit(event.Event{Type: event.StepStart, Step: idx})

	pred, ok := r.callWithTruncation(ctx, r.p.decide, idx)
	if !ok || !hasFields(pred, predict.FieldNextThought, predict.FieldNextToolName, predict.FieldNextToolArgs) {
		r.log.Error("decision call produced no action, ending iteration", "step", idx)
		span.SetStatus(codes.Error, "no action")
		return StateFinishedByError
	}

	thought := pred.String(predict.FieldNextThought)
	chosen := pred.String(predict.FieldNextToolName)
	args := pred.Map(predict.FieldNextToolArgs)
	if args == nil {
		args = map[string]any{}
	}

	name, ok := r.p.registry.ResolveWithCutoff(chosen, r.p.opts.Cutoff)
	switch {
	case !ok:
		r.log.Info("unknown tool, finishing", "step", idx, "tool", chosen, "available", r.p.registry.Names())
		name = tool.FinishName
		args = map[string]any{}
		r.emit(event.Event{Type: event.ToolSubstituted, Step: idx, Message: fmt.Sprintf("%s -> %s", chosen, name)})
	case name != chosen:
		r.log.Info("substituted closest tool", "step", idx, "tool", chosen, "resolved", name)
		r.emit(event.Event{Type: event.ToolSubstituted, Step: idx, Message: fmt.Sprintf("%s -> %s", chosen, name)})
	}

	r.log.Debug("react step", "step", idx, "thought", thought, "tool", name, "args", args)
	span.SetAttributes(attribute.String("react.tool", name))

	observation := r.p.registry.Invoke(ctx, name, args)
	s := r.traj.Append(thought, name, args, observation)
	r.steps++

	r.log.Debug("observation", "step", idx, "tool", name, "observation", observation)
	r.emit(event.Event{Type: event.StepEnd, Step: idx, StepData: &s})

	if name == tool.FinishName {
		return StateFinishedByTool
	}
	if idx+1 == r.maxIters {
		return StateFinishedByBudget
	}
	return StateIterating
}

// callWithTruncation calls pr with the inputs and the formatted trajectory.
// On a context-window error it truncates the trajectory and tries again, up
// to MaxAttempts calls. ok is false when no prediction was produced.
func (r *run) callWithTruncation(ctx context.Context, pr *predict.Predictor, idx int) (*predict.Prediction, bool) {
	attempts := r.p.opts.MaxAttempts
	for attempt := 1; attempt <= attempts; attempt++ {
		pred, outcome, err := pr.Call(ctx, r.predictorInputs())
		switch outcome {
		case predict.OutcomeOK:
			r.usage = r.usage.Add(pred.Usage())
			return pred, true

		case predict.OutcomeOverflow:
			if attempt == attempts {
				r.log.Error("context window still exceeded, giving up", "attempts", attempts)
				return predict.NewPrediction(), false
			}
			r.log.Warn("trajectory exceeded the context window, truncating the oldest step",
				"steps", r.traj.Len(), "attempt", attempt)
			if terr := r.p.opts.Truncate(r.traj); terr != nil {
				r.log.Error("cannot truncate trajectory", "error", terr)
				return predict.NewPrediction(), false
			}
			r.emit(event.Event{Type: event.Truncated, Step: idx, Message: fmt.Sprintf("%d steps remain", r.traj.Len())})

		default:
			r.log.Error("predictor call failed", "error", err)
			return predict.NewPrediction(), false
		}
	}
	return predict.NewPrediction(), false
}

func (r *run) predictorInputs() map[string]any {
	in := make(map[string]any, len(r.inputs)+1)
	for k, v := range r.inputs {
		in[k] = v
	}
	in[predict.TrajectoryKey] = r.traj.Format()
	return in
}

// extractOutputs produces every declared output, from the model when
// possible and from placeholders otherwise. The trajectory is attached
// first.
func (r *run) extractOutputs(ctx context.Context) (*predict.Prediction, bool) {
	ctx, span := r.p.opts.Tracer.Start(ctx, "react.extract")
	defer span.End()

	outputs := r.p.sig.OutputNames()
	extracted, ok := r.callWithTruncation(ctx, r.p.extract, r.steps)
	if ok && !hasFields(extracted, outputs...) {
		ok = false
	}

	pred := predict.NewPrediction()
	pred.Set(predict.TrajectoryKey, r.traj)
	if !ok {
		r.log.Error("extraction failed, using placeholder outputs", "outputs", outputs)
		span.SetStatus(codes.Error, "extraction failed")
		for _, name := range outputs {
			pred.Set(name, Placeholder(name))
		}
		return pred, false
	}
	for _, name := range outputs {
		v, _ := extracted.Get(name)
		pred.Set(name, v)
	}
	return pred, true
}

// Placeholder is the value given to an output field that could not be
// extracted.
func Placeholder(field string) string {
	return fmt.Sprintf("could not produce %s due to a processing error", field)
}

func hasFields(p *predict.Prediction, names ...string) bool {
	for _, n := range names {
		if !p.Has(n) {
			return false
		}
	}
	return true
}
