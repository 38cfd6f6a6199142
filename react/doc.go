// Package react runs the ReAct loop: a model alternates between reasoning
// about a task and calling tools until it selects the finish tool or the
// iteration budget runs out, then a second model call extracts the caller's
// output fields from the accumulated trajectory.
//
// # Basic Usage
//
//	sig := signature.MustParse("question -> answer")
//	program, err := react.New(sig, provider, []tool.Tool{search},
//	    react.WithMaxIters(6),
//	)
//	if err != nil {
//	    return err
//	}
//	pred, err := program.Forward(ctx, map[string]any{"question": "..."})
//	fmt.Println(pred.String("answer"))
//
// Forward fails only when required inputs are missing. Model failures,
// malformed responses, unknown tools and tool errors all degrade into the
// trajectory or into placeholder outputs.
//
// # Streaming
//
// Stream delivers one event.StepEnd per completed step, in order, followed
// by event.Extracted and event.RunEnd:
//
//	for ev := range program.Stream(ctx, inputs) {
//	    if ev.Type == event.StepEnd {
//	        fmt.Println(ev.StepData.ToolName, ev.StepData.Observation)
//	    }
//	}
//
// # Context overflow
//
// When the model reports that the prompt exceeds its context window, the
// oldest step is dropped from the trajectory and the call is repeated, up
// to WithMaxAttempts attempts. Use WithTruncateFunc to change how the
// trajectory is shortened.
package react
