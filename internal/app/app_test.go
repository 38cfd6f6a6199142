package app

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/config"
	"github.com/spetersoncode/reactor/tool"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	NewLogger(&buf, true).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestCalculatorTools(t *testing.T) {
	registry := tool.NewRegistry().Add(CalculatorTools()...)
	ctx := context.Background()

	tests := []struct {
		name string
		a, b float64
		want string
	}{
		{"add", 3, 4, "7"},
		{"subtract", 10, 4, "6"},
		{"multiply", 4, 2, "8"},
		{"divide", 1, 4, "0.25"},
		{"multiply", 123456, 789, "97406784"},
		{"add", 0.1, 0.2, "0.30000000000000004"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %v %v", tt.name, tt.a, tt.b), func(t *testing.T) {
			out, err := registry.Execute(ctx, tt.name, map[string]any{"a": tt.a, "b": tt.b})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	t.Run("divide by zero", func(t *testing.T) {
		_, err := registry.Execute(ctx, "divide", map[string]any{"a": 1, "b": 0})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "divide by zero")

		obs := registry.Invoke(ctx, "divide", map[string]any{"a": 1, "b": 0})
		assert.Contains(t, obs, "divide by zero")
	})
}

func TestDemoTools(t *testing.T) {
	registry := tool.NewRegistry().Add(DemoTools()...)
	assert.True(t, registry.Has("current_time"))
	assert.True(t, registry.Has("http_request"))
	assert.Equal(t, 6, registry.Len())

	_, err := registry.Execute(context.Background(), "http_request", map[string]any{"url": "http://localhost:8080/"})
	require.Error(t, err)

	for _, format := range []string{"", "unix", "whatever"} {
		_, err := registry.Execute(context.Background(), "current_time", map[string]any{"format": format})
		assert.NoError(t, err, "format %q", format)
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T15:04:00Z", formatTime(now, "rfc3339"))
	assert.Equal(t, "1709305440", formatTime(now, "unix"))
	assert.Equal(t, "Friday, March 1, 2024 at 3:04 PM UTC", formatTime(now, ""))
}

func TestNewProgramWithProvider(t *testing.T) {
	cfg := config.Default()
	cfg.MaxIters = 3

	provider := ai.ChatFunc(func(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
		return &ai.Response{Content: "next_thought: done\nnext_tool_name: finish\nnext_tool_args: {}"}, nil
	})

	prog, err := NewProgramWithProvider(cfg, provider, CalculatorSignature(), CalculatorTools(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, prog.MaxIters())
	assert.Equal(t, []string{"expression"}, prog.Signature().InputNames())
	assert.True(t, prog.Registry().Has(tool.FinishName))
}

func TestProgramOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Model = "gpt-4o-mini"
	cfg.MaxTokens = 256

	assert.Len(t, ProgramOptions(cfg, nil), 4)
	assert.Len(t, ProgramOptions(config.Default(), NewLogger(&bytes.Buffer{}, false)), 3)
}
