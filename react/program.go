package react

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/event"
	"github.com/spetersoncode/reactor/predict"
	"github.com/spetersoncode/reactor/signature"
	"github.com/spetersoncode/reactor/tool"
	"golang.org/x/sync/errgroup"
)

// Program is a ReAct agent built around a task signature and a set of
// tools. It is read-only after New and safe for concurrent invocations;
// every invocation owns its own trajectory.
type Program struct {
	sig      *signature.Signature
	registry *tool.Registry
	decide   *predict.Predictor
	extract  *predict.Predictor
	opts     *Options
}

// New builds a program for sig. The finish tool is added after tools; a
// caller tool named finish is rejected.
func New(sig *signature.Signature, provider ai.ChatProvider, tools []tool.Tool, opts ...Option) (*Program, error) {
	if sig == nil {
		return nil, fmt.Errorf("%w: nil signature", ErrInvalidProgram)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: nil provider", ErrInvalidProgram)
	}
	if sig.HasInput(predict.TrajectoryKey) || sig.HasOutput(predict.TrajectoryKey) {
		return nil, fmt.Errorf("%w: field name %q is reserved", ErrInvalidProgram, predict.TrajectoryKey)
	}

	o := ApplyOptions(opts...)
	if o.MaxIters < 1 {
		return nil, fmt.Errorf("%w: max iters must be at least 1", ErrInvalidProgram)
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}

	registry := tool.NewRegistry()
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}
	if err := registry.Register(tool.Finish(sig.OutputNames())); err != nil {
		return nil, err
	}

	decisionSig, err := decisionSignature(sig, registry)
	if err != nil {
		return nil, err
	}
	extractionSig, err := sig.Append(signature.Input, trajectoryField)
	if err != nil {
		return nil, err
	}

	popts := []predict.Option{predict.WithLogger(o.Logger)}
	if o.Model != "" {
		popts = append(popts, predict.WithModel(o.Model))
	}
	if o.Temperature != nil {
		popts = append(popts, predict.WithTemperature(*o.Temperature))
	}
	if o.MaxTokens > 0 {
		popts = append(popts, predict.WithMaxTokens(o.MaxTokens))
	}

	return &Program{
		sig:      sig,
		registry: registry,
		decide:   predict.New(decisionSig, provider, popts...),
		extract:  predict.NewChainOfThought(extractionSig, provider, popts...),
		opts:     o,
	}, nil
}

var trajectoryField = signature.Field{
	Name: predict.TrajectoryKey,
	Desc: "the steps taken so far",
	Type: "string",
}

const baseInstructions = `You are an Agent. In each episode, you will be given the fields %[1]s as input. And you can see your past trajectory so far.
Your goal is to use one or more of the supplied tools to collect any necessary information for producing %[2]s.

To do this, you will interleave next_thought, next_tool_name, and next_tool_args in each turn, and also when finishing the task.
After each tool call, you receive a resulting observation, which gets appended to your trajectory.

When writing next_thought, you may reason about the current situation and plan for future steps.
When selecting the next_tool_name and its next_tool_args, the tool must be one of:
`

// decisionSignature derives the per-step signature: the caller's inputs
// plus the trajectory, producing the next thought and tool call.
func decisionSignature(sig *signature.Signature, registry *tool.Registry) (*signature.Signature, error) {
	var instr strings.Builder
	if s := sig.Instructions(); s != "" {
		instr.WriteString(s)
		instr.WriteString("\n\n")
	}
	fmt.Fprintf(&instr, baseInstructions, backtickList(sig.InputNames()), backtickList(sig.OutputNames()))
	instr.WriteString(registry.Describe())

	inputs := append(sig.Inputs(), trajectoryField)
	outputs := []signature.Field{
		{Name: predict.FieldNextThought, Type: "string"},
		{Name: predict.FieldNextToolName, Type: "string", Desc: "one of " + strings.Join(registry.Names(), ", ")},
		{Name: predict.FieldNextToolArgs, Type: "object"},
	}
	return signature.New(inputs, outputs, instr.String())
}

func backtickList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}

// Signature returns the caller's task signature.
func (p *Program) Signature() *signature.Signature { return p.sig }

// DecisionSignature returns the derived per-step signature.
func (p *Program) DecisionSignature() *signature.Signature { return p.decide.Signature() }

// ExtractionSignature returns the derived final-answer signature.
func (p *Program) ExtractionSignature() *signature.Signature { return p.extract.Signature() }

// Registry returns the program's tools, finish included.
func (p *Program) Registry() *tool.Registry { return p.registry }

// MaxIters returns the default iteration budget.
func (p *Program) MaxIters() int { return p.opts.MaxIters }

// Forward runs one invocation and returns the prediction holding every
// declared output plus the trajectory. It fails only with
// *MissingInputsError, before any model call.
func (p *Program) Forward(ctx context.Context, inputs map[string]any, opts ...RunOption) (*predict.Prediction, error) {
	res, err := p.Run(ctx, inputs, opts...)
	if err != nil {
		return nil, err
	}
	return res.Prediction, nil
}

// Run is like Forward but returns the full result.
func (p *Program) Run(ctx context.Context, inputs map[string]any, opts ...RunOption) (*Result, error) {
	if err := p.checkInputs(inputs); err != nil {
		return nil, err
	}
	return p.newRun(inputs, nil, opts...).execute(ctx), nil
}

// Stream runs one invocation in the background and returns its events.
// The channel is closed after event.RunEnd, or after event.RunError when
// required inputs are missing. Sends block until received, so callers must
// drain the channel or cancel ctx.
func (p *Program) Stream(ctx context.Context, inputs map[string]any, opts ...RunOption) <-chan event.Event {
	ch := event.NewChannel()

	go func() {
		defer close(ch)
		if err := p.checkInputs(inputs); err != nil {
			event.Emit(ctx, ch, event.Event{Type: event.RunError, RunID: uuid.NewString(), Error: err, Message: err.Error()})
			return
		}
		p.newRun(inputs, ch, opts...).execute(ctx)
	}()

	return ch
}

// Batch runs independent invocations with at most concurrency running at
// once. Results are in input order. All inputs are checked before any run
// starts.
func (p *Program) Batch(ctx context.Context, inputs []map[string]any, concurrency int, opts ...RunOption) ([]*Result, error) {
	for i, in := range inputs {
		if err := p.checkInputs(in); err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
	}

	results := make([]*Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, in := range inputs {
		g.Go(func() error {
			res, err := p.Run(gctx, in, opts...)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Program) checkInputs(inputs map[string]any) error {
	var missing []string
	for _, name := range p.sig.InputNames() {
		if _, ok := inputs[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingInputsError{Missing: missing}
	}
	return nil
}
