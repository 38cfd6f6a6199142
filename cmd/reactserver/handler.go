package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/reactor/agui"
	"github.com/spetersoncode/reactor/react"
)

// Handler runs a program per request and streams AG-UI events over SSE.
type Handler struct {
	program *react.Program
	logger  *slog.Logger
}

// NewHandler creates a handler for program.
func NewHandler(program *react.Program, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{program: program, logger: logger}
}

// ServeHTTP handles POST requests to run the program and stream events via SSE.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		h.logger.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input agui.RunAgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	log := h.logger.With(
		"run_id", input.RunID,
		"thread_id", input.ThreadID,
	)

	prepared, err := input.Prepare(h.program.Signature())
	if err != nil {
		log.Warn("invalid input", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	log.Info("request started", "inputs", len(prepared.Inputs))

	ctx := r.Context()
	mapper := agui.NewMapper(prepared.ThreadID, prepared.RunID)
	stream := h.program.Stream(ctx, prepared.Inputs)

	var eventCount int
	for ev := range mapper.MapStream(ctx, stream) {
		eventCount++
		log.Debug("sending SSE event", "event_type", ev.Type(), "event_num", eventCount)

		if err := writeSSE(w, flusher, ev); err != nil {
			log.Error("failed to write SSE event", "error", err, "event_type", ev.Type())
			return
		}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		log.Info("request cancelled", "duration_ms", time.Since(start).Milliseconds(), "events_sent", eventCount)
		return
	}
	log.Info("request completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"events_sent", eventCount,
	)
}

// writeSSE writes an AG-UI event in SSE format.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev aguievents.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), string(data)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	flusher.Flush()
	return nil
}
