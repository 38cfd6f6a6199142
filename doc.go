// Package reactor is a ReAct (reason + act) agent runtime.
//
// A language model solves a task by alternating free-text reasoning with
// calls to a fixed set of tools. Each step (thought, tool, arguments,
// observation) is appended to a trajectory that is fed back into the next
// prompt, until the model picks the synthetic finish tool or the iteration
// budget runs out. A final structured answer is then extracted from the
// whole trajectory.
//
// The root package holds the vocabulary shared by all sub packages:
// chat messages, the [ChatProvider] interface implemented by the provider
// adapters, request options, and categorised errors.
//
// # Packages
//
//   - [github.com/spetersoncode/reactor/signature]: declarative input/output field contracts
//   - [github.com/spetersoncode/reactor/predict]: one model call parsed into named fields
//   - [github.com/spetersoncode/reactor/trajectory]: the append-only step log
//   - [github.com/spetersoncode/reactor/tool]: tool binding, catalogue rendering, invocation
//   - [github.com/spetersoncode/reactor/react]: the ReAct control loop
//   - [github.com/spetersoncode/reactor/client]: provider construction from explicit config
//
// # Basic Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider, err := client.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sig := signature.MustParse("question -> answer")
//	program, err := react.New(sig, provider, []tool.Tool{
//	    tool.Func("search", "Search the web", searchFn),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pred, err := program.Forward(ctx, map[string]any{"question": "Who wrote Dune?"})
//	if err != nil {
//	    log.Fatal(err) // only missing inputs end up here
//	}
//	fmt.Println(pred.String("answer"))
//
// # Errors
//
// Providers return [*Error] values carrying an [ErrorCategory]. The
// [ErrorContextWindow] category marks prompts that no longer fit the model's
// context; the ReAct loop reacts to it by dropping the oldest trajectory step
// and retrying.
package reactor
