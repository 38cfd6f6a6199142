// Command react is an interactive calculator agent.
//
// Each expression typed at the prompt is solved by a ReAct program using
// add, subtract, multiply and divide tools. The result and explanation are
// printed, optionally followed by the recorded trajectory.
//
// Configuration comes from the environment (or a .env file), optionally
// from a YAML file given with -config:
//
//	LLM_PROVIDER      - openai, anthropic, google, openrouter or ollama
//	LLM_MODEL         - model name
//	LLM_API_KEY       - API key (falls back to the provider's own variable)
//	LLM_API_BASE      - base URL override
//	LLM_TEMPERATURE   - sampling temperature (default: 0.1)
//	LLM_MAX_ITERS     - step budget (default: 5)
//
// Usage:
//
//	LLM_PROVIDER=openai go run ./cmd/react -trajectory
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"

	"github.com/spetersoncode/reactor/config"
	"github.com/spetersoncode/reactor/internal/app"
	"github.com/spetersoncode/reactor/react"
	"github.com/spetersoncode/reactor/trajectory"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	maxIters := flag.Int("max-iters", 0, "override the step budget")
	debug := flag.Bool("debug", false, "log prompts and model responses")
	showTrajectory := flag.Bool("trajectory", false, "print the trajectory after each answer")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if *maxIters > 0 {
		cfg.MaxIters = *maxIters
	}
	if *debug {
		cfg.Debug = true
	}

	logger := app.NewLogger(os.Stderr, cfg.Debug)
	ctx := context.Background()

	program, err := app.NewProgram(ctx, cfg, app.CalculatorSignature(), app.CalculatorTools(), logger)
	if err != nil {
		return err
	}

	rl, err := readline.New("expression> ")
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("Calculator agent (%s). Enter an expression such as '3 + 4 * 2', or 'exit' to quit.\n", cfg.Provider)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Println("Goodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "q":
			fmt.Println("Goodbye!")
			return nil
		}

		solve(ctx, program, line, *showTrajectory)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// solve runs one expression. Ctrl-C cancels the run without leaving the REPL.
func solve(ctx context.Context, program *react.Program, expression string, showTrajectory bool) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	res, err := program.Run(ctx, map[string]any{"expression": expression})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	fmt.Printf("Result:      %s\n", res.Prediction.String("result"))
	fmt.Printf("Explanation: %s\n", res.Prediction.String("explanation"))
	fmt.Printf("(%s after %d steps, %d tokens)\n", res.Termination, res.Steps, res.Usage.Total())

	if showTrajectory {
		printTrajectory(os.Stdout, res.Trajectory)
	}
}

func printTrajectory(w io.Writer, traj *trajectory.Trajectory) {
	fmt.Fprintln(w, "\nTrajectory:")
	for _, s := range traj.Steps() {
		fmt.Fprintf(w, "  [%d] thought: %s\n", s.Index, s.Thought)
		fmt.Fprintf(w, "      tool: %s %v\n", s.ToolName, s.ToolArgs)
		fmt.Fprintf(w, "      observation: %s\n", s.Observation)
	}
}
