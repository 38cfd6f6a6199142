// Package agui streams ReAct runs over the AG-UI protocol.
//
// AG-UI (Agent-User Interface) is an event-based protocol connecting agents
// to user-facing applications. This package maps the events of a react
// Program onto AG-UI events; transport is left to the caller, see
// cmd/reactserver for an SSE handler.
//
// # Usage
//
//	mapper := agui.NewMapper(threadID, runID)
//	for ev := range mapper.MapStream(ctx, program.Stream(ctx, inputs)) {
//	    writeEvent(ev)
//	}
//
// # Event Mapping
//
//   - RunStart → RUN_STARTED
//   - StepStart → STEP_STARTED
//   - StepEnd → TEXT_MESSAGE_* (thought), TOOL_CALL_START/ARGS/END,
//     TOOL_CALL_RESULT (observation), STEP_FINISHED
//   - Extracted → TEXT_MESSAGE_* carrying the outputs as JSON
//   - RunEnd → RUN_FINISHED, RunError → RUN_ERROR
//
// # Thread Safety
//
// The Mapper is NOT safe for concurrent use. Each run should have its own
// Mapper instance.
package agui
