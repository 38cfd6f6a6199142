package predict

import (
	"context"
	"log/slog"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/signature"
)

// DefaultTemperature biases predictor calls toward deterministic output.
const DefaultTemperature = 0.1

// Outcome classifies a predictor call.
type Outcome int

const (
	// OutcomeOK means the model answered and the response was parsed.
	OutcomeOK Outcome = iota
	// OutcomeOverflow means the prompt exceeded the model's context window.
	// Callers may shrink the prompt and retry.
	OutcomeOverflow
	// OutcomeFailed means the call failed for any other reason.
	OutcomeFailed
)

// String returns a short lowercase name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeOverflow:
		return "overflow"
	default:
		return "failed"
	}
}

type options struct {
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// Option configures a Predictor.
type Option func(*options)

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithTemperature sets the sampling temperature. Defaults to 0.1.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// WithLogger sets the logger for parse warnings and call failures.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Predictor issues one model call per invocation and parses the response
// into the output fields of its signature. It holds no per-call state and
// is safe for concurrent use.
type Predictor struct {
	sig      *signature.Signature
	provider ai.ChatProvider
	opts     options
}

// New creates a predictor for sig backed by provider.
func New(sig *signature.Signature, provider ai.ChatProvider, opts ...Option) *Predictor {
	o := options{temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Predictor{sig: sig, provider: provider, opts: o}
}

// NewChainOfThought creates a predictor whose instructions end with a
// step-by-step reasoning directive.
func NewChainOfThought(sig *signature.Signature, provider ai.ChatProvider, opts ...Option) *Predictor {
	instr := ChainOfThoughtDirective
	if existing := sig.Instructions(); existing != "" {
		instr = existing + "\n\n" + ChainOfThoughtDirective
	}
	return New(sig.WithInstructions(instr), provider, opts...)
}

// Signature returns the signature the predictor parses against.
func (p *Predictor) Signature() *signature.Signature {
	return p.sig
}

func (p *Predictor) chatOptions() []ai.Option {
	opts := []ai.Option{ai.WithTemperature(p.opts.temperature)}
	if p.opts.model != "" {
		opts = append(opts, ai.WithModel(p.opts.model))
	}
	if p.opts.maxTokens > 0 {
		opts = append(opts, ai.WithMaxTokens(p.opts.maxTokens))
	}
	return opts
}

// Call issues one model call. On OutcomeOK the returned prediction holds
// every output field. Otherwise the prediction is empty and err describes
// the failure; OutcomeOverflow marks a context-window error.
func (p *Predictor) Call(ctx context.Context, inputs map[string]any) (*Prediction, Outcome, error) {
	messages := BuildMessages(p.sig, inputs)
	log := p.opts.logger.With("signature", p.sig.String())

	if log.Enabled(ctx, slog.LevelDebug) {
		log.DebugContext(ctx, "model request", "system", messages[0].Content, "user", messages[1].Content)
	}

	resp, err := p.provider.Chat(ctx, messages, p.chatOptions()...)
	if err != nil {
		if ai.IsContextWindowExceeded(err) {
			log.WarnContext(ctx, "context window exceeded", "error", err)
			return NewPrediction(), OutcomeOverflow, err
		}
		log.ErrorContext(ctx, "model call failed", "error", err)
		return NewPrediction(), OutcomeFailed, err
	}

	log.DebugContext(ctx, "model response", "content", resp.Content,
		"input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)

	pred, warnings := Parse(p.sig, resp.Content)
	for _, w := range warnings {
		log.WarnContext(ctx, "parse warning", "field", w.Field, "message", w.Message)
	}
	pred.usage = resp.Usage
	return pred, OutcomeOK, nil
}

// Predict is like Call but never fails: any error yields an empty
// prediction.
func (p *Predictor) Predict(ctx context.Context, inputs map[string]any) *Prediction {
	pred, _, _ := p.Call(ctx, inputs)
	return pred
}
