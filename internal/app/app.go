// Package app holds the wiring shared by the reactor commands: logging,
// program construction from configuration, and the demo tool set.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/client"
	"github.com/spetersoncode/reactor/config"
	"github.com/spetersoncode/reactor/react"
	"github.com/spetersoncode/reactor/signature"
	"github.com/spetersoncode/reactor/tool"
)

// NewLogger returns a text logger writing to w. Debug enables debug level,
// which includes prompts and raw model responses.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ProgramOptions maps configuration onto program options.
func ProgramOptions(cfg config.Config, logger *slog.Logger) []react.Option {
	opts := []react.Option{
		react.WithMaxIters(cfg.MaxIters),
		react.WithTemperature(cfg.Temperature),
	}
	if cfg.Model != "" {
		opts = append(opts, react.WithModel(cfg.Model))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, react.WithMaxTokens(cfg.MaxTokens))
	}
	if logger != nil {
		opts = append(opts, react.WithLogger(logger))
	}
	return opts
}

// NewProgram builds the configured provider and a program over it.
func NewProgram(ctx context.Context, cfg config.Config, sig *signature.Signature, tools []tool.Tool, logger *slog.Logger) (*react.Program, error) {
	var clientOpts []client.Option
	if logger != nil {
		clientOpts = append(clientOpts, client.WithLogger(logger))
	}
	provider, err := client.New(ctx, cfg, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return NewProgramWithProvider(cfg, provider, sig, tools, logger)
}

// NewProgramWithProvider builds a program over an existing provider.
func NewProgramWithProvider(cfg config.Config, provider ai.ChatProvider, sig *signature.Signature, tools []tool.Tool, logger *slog.Logger) (*react.Program, error) {
	return react.New(sig, provider, tools, ProgramOptions(cfg, logger)...)
}

// CalculatorSignature describes the calculator agent.
func CalculatorSignature() *signature.Signature {
	return signature.MustNew(
		[]signature.Field{{Name: "expression", Desc: "the math expression to evaluate"}},
		[]signature.Field{
			{Name: "result", Desc: "the computed result"},
			{Name: "explanation", Desc: "how the result was computed"},
		},
		"You are a calculator agent that parses and evaluates math expressions. "+
			"Break complex expressions into simple steps and use the provided tools for each calculation.",
	)
}

// QuestionSignature describes a general question answering agent.
func QuestionSignature() *signature.Signature {
	return signature.MustNew(
		[]signature.Field{{Name: "question", Desc: "the user's question"}},
		[]signature.Field{{Name: "answer", Desc: "a concise answer"}},
		"Answer the question. Use the tools for arithmetic, the current time and fetching web pages.",
	)
}

// BinaryArgs are the operands of a calculator tool.
type BinaryArgs struct {
	A float64 `json:"a" desc:"First number" required:"true"`
	B float64 `json:"b" desc:"Second number" required:"true"`
}

// CalculatorTools returns add, subtract, multiply and divide.
func CalculatorTools() []tool.Tool {
	return []tool.Tool{
		tool.Func("add", "Add two numbers.", func(ctx context.Context, args BinaryArgs) (string, error) {
			return formatNumber(args.A + args.B), nil
		}),
		tool.Func("subtract", "Subtract the second number from the first.", func(ctx context.Context, args BinaryArgs) (string, error) {
			return formatNumber(args.A - args.B), nil
		}),
		tool.Func("multiply", "Multiply two numbers.", func(ctx context.Context, args BinaryArgs) (string, error) {
			return formatNumber(args.A * args.B), nil
		}),
		tool.Func("divide", "Divide the first number by the second.", func(ctx context.Context, args BinaryArgs) (string, error) {
			if args.B == 0 {
				return "", fmt.Errorf("cannot divide by zero")
			}
			return formatNumber(args.A / args.B), nil
		}),
	}
}

// TimeArgs are the arguments for the current_time tool.
type TimeArgs struct {
	Format string `json:"format" desc:"Time format: 'rfc3339', 'unix' or 'human' (the default)"`
}

// DemoTools returns the calculator tools plus a clock and an HTTP client
// that cannot reach local or metadata addresses.
func DemoTools() []tool.Tool {
	return append(CalculatorTools(),
		tool.Func("current_time", "Get the current time.", func(ctx context.Context, args TimeArgs) (string, error) {
			return formatTime(time.Now(), args.Format), nil
		}),
		tool.HTTP(
			tool.WithBlockedHosts("localhost", "127.0.0.1", "::1", "169.254.169.254"),
			tool.WithHTTPTimeout(15*time.Second),
			tool.WithMaxResponseSize(64*1024),
		),
	)
}

func formatTime(now time.Time, format string) string {
	switch strings.ToLower(format) {
	case "rfc3339":
		return now.Format(time.RFC3339)
	case "unix":
		return fmt.Sprintf("%d", now.Unix())
	default:
		return now.Format("Monday, January 2, 2006 at 3:04 PM MST")
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
