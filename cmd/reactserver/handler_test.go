package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/config"
	"github.com/spetersoncode/reactor/internal/app"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	provider := ai.ChatFunc(func(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
		if strings.Contains(messages[0].Content, "next_tool_args:") {
			return &ai.Response{Content: "next_thought: I know this\nnext_tool_name: finish\nnext_tool_args: {}"}, nil
		}
		return &ai.Response{Content: "answer: 84"}, nil
	})
	program, err := app.NewProgramWithProvider(config.Default(), provider, app.QuestionSignature(), app.DemoTools(), nil)
	require.NoError(t, err)
	return newMux(NewHandler(program, nil), []string{"*"})
}

func TestHandler_Stream(t *testing.T) {
	h := testHandler(t)

	body := `{"threadId":"t1","runId":"r1","inputs":{"question":"What is 12 * 7?"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/react", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	out := rec.Body.String()
	for _, typ := range []string{"RUN_STARTED", "STEP_STARTED", "TOOL_CALL_START", "STEP_FINISHED", "TEXT_MESSAGE_CONTENT", "RUN_FINISHED"} {
		assert.Contains(t, out, "event: "+typ, typ)
	}
	assert.Contains(t, out, `"threadId":"t1"`)
	assert.Contains(t, out, "84")
	assert.Less(t, strings.Index(out, "event: RUN_STARTED"), strings.Index(out, "event: RUN_FINISHED"))
}

func TestHandler_MessagesFillQuestion(t *testing.T) {
	h := testHandler(t)

	body := `{"threadId":"t1","runId":"r1","messages":[{"id":"m1","role":"user","content":"What is 12 * 7?"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/react", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: RUN_FINISHED")
}

func TestHandler_MissingInputs(t *testing.T) {
	h := testHandler(t)

	body := `{"threadId":"t1","runId":"r1","inputs":{"other":"x"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/react", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: RUN_ERROR")
	assert.Contains(t, rec.Body.String(), "question")
}

func TestHandler_BadRequests(t *testing.T) {
	h := testHandler(t)

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "{", http.StatusBadRequest},
		{"no inputs", http.MethodPost, `{"threadId":"t1"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/react", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/react", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
