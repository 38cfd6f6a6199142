// Command reactserver exposes a ReAct program over the AG-UI protocol.
//
// Each POST to /api/react runs the program and streams its steps as AG-UI
// events over Server-Sent Events (SSE). The request body carries the
// program inputs by name, or AG-UI messages whose latest user message
// becomes the question:
//
//	{"threadId": "t1", "runId": "r1", "inputs": {"question": "What is 12 * 7?"}}
//
// Configuration is read from the environment (see package config), plus:
//
//	REACT_PORT            - server port (default: 8000)
//	REACT_ALLOWED_ORIGINS - comma separated CORS origins (default: *)
//
// Usage:
//
//	LLM_PROVIDER=anthropic go run ./cmd/reactserver
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/spetersoncode/reactor/config"
	"github.com/spetersoncode/reactor/internal/app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		app.NewLogger(os.Stderr, false).Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(os.Stderr, cfg.Debug)

	program, err := app.NewProgram(context.Background(), cfg, app.QuestionSignature(), app.DemoTools(), logger)
	if err != nil {
		logger.Error("failed to create program", "error", err)
		os.Exit(1)
	}

	port := getEnvOrDefault("REACT_PORT", "8000")
	origins := strings.Split(getEnvOrDefault("REACT_ALLOWED_ORIGINS", "*"), ",")

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      newMux(NewHandler(program, logger), origins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("reactor server starting",
		"addr", server.Addr,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"max_iters", cfg.MaxIters,
	)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// newMux routes the API and health endpoints behind CORS.
func newMux(h http.Handler, origins []string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/react", h)
	mux.HandleFunc("/health", healthHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

// healthHandler returns a simple health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
