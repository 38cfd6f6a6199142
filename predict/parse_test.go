package predict

import (
	"testing"

	"github.com/spetersoncode/reactor/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("extracts each marked field", func(t *testing.T) {
		sig := signature.MustParse("question -> a, b")
		pred, warnings := Parse(sig, "a: X\nb: Y")

		assert.Empty(t, warnings)
		assert.Equal(t, "X", pred.String("a"))
		assert.Equal(t, "Y", pred.String("b"))
		assert.Equal(t, []string{"a", "b"}, pred.Keys())
	})

	t.Run("stops at the end of the line", func(t *testing.T) {
		sig := signature.MustParse("q -> answer")
		pred, _ := Parse(sig, "Sure.\nanswer:   42  \nextra commentary")
		assert.Equal(t, "42", pred.String("answer"))
	})

	t.Run("falls back to the whole text for a single field", func(t *testing.T) {
		sig := signature.MustParse("q -> answer")
		content := "The answer is forty-two."
		pred, warnings := Parse(sig, content)

		assert.Equal(t, content, pred.String("answer"))
		require.Len(t, warnings, 1)
		assert.Equal(t, "answer", warnings[0].Field)
	})

	t.Run("every missing field receives the whole text", func(t *testing.T) {
		sig := signature.MustParse("q -> a, b, c")
		content := "b: found\nsomething else"
		pred, _ := Parse(sig, content)

		assert.Equal(t, content, pred.String("a"))
		assert.Equal(t, "found", pred.String("b"))
		assert.Equal(t, content, pred.String("c"))
	})

	t.Run("uses the first marker occurrence", func(t *testing.T) {
		sig := signature.MustParse("q -> answer")
		pred, _ := Parse(sig, "answer: first\nanswer: second")
		assert.Equal(t, "first", pred.String("answer"))
	})
}

func TestParseActionFields(t *testing.T) {
	sig := signature.MustParse("question, trajectory -> next_thought, next_tool_name, next_tool_args")

	t.Run("parses a well formed action", func(t *testing.T) {
		pred, warnings := Parse(sig, "next_thought: I need to search\nnext_tool_name: search\nnext_tool_args: {\"query\": \"go\"}")

		assert.Empty(t, warnings)
		assert.Equal(t, "I need to search", pred.String(FieldNextThought))
		assert.Equal(t, "search", pred.String(FieldNextToolName))
		assert.Equal(t, map[string]any{"query": "go"}, pred.Map(FieldNextToolArgs))
	})

	t.Run("recovers arguments embedded in noise", func(t *testing.T) {
		pred, _ := Parse(sig, "next_tool_args: noise {\"x\": 1} trailing")
		assert.Equal(t, map[string]any{"x": float64(1)}, pred.Map(FieldNextToolArgs))
	})

	t.Run("defaults unparseable arguments to an empty map", func(t *testing.T) {
		pred, warnings := Parse(sig, "next_thought: hmm\nnext_tool_name: finish\nnext_tool_args: not json")

		assert.Equal(t, map[string]any{}, pred.Map(FieldNextToolArgs))
		require.Len(t, warnings, 1)
		assert.Equal(t, FieldNextToolArgs, warnings[0].Field)
	})

	t.Run("cleans the tool name", func(t *testing.T) {
		pred, _ := Parse(sig, "next_tool_name: [\"search\"]")
		assert.Equal(t, "search", pred.String(FieldNextToolName))
	})
}

func TestParseToolArgs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{name: "direct object", input: `{"a": 1, "b": "two"}`, want: map[string]any{"a": float64(1), "b": "two"}},
		{name: "empty object", input: `{}`, want: map[string]any{}},
		{name: "embedded span", input: `use {"x": 1} please`, want: map[string]any{"x": float64(1)}},
		{name: "multiline span", input: "args:\n{\n  \"x\": true\n}\n", want: map[string]any{"x": true}},
		{name: "repairs single quotes", input: `{'city': 'Paris'}`, want: map[string]any{"city": "Paris"}},
		{name: "repairs a missing brace", input: `{"city": "Paris"`, want: map[string]any{"city": "Paris"}},
		{name: "plain text", input: "not json", want: map[string]any{}, wantErr: true},
		{name: "json array", input: `[1, 2]`, want: map[string]any{}, wantErr: true},
		{name: "null", input: `null`, want: map[string]any{}, wantErr: true},
		{name: "empty", input: "", want: map[string]any{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToolArgs(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnparseableArgs)
			} else {
				assert.NoError(t, err)
			}
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseToolName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "search", want: "search"},
		{input: "  search  ", want: "search"},
		{input: "'search'", want: "search"},
		{input: `"search"`, want: "search"},
		{input: "[search]", want: "search"},
		{input: "`finish`", want: "finish"},
		{input: "search (to find facts)", want: "search"},
		{input: "get_weather_v2", want: "get_weather_v2"},
		{input: "1. add", want: "add"},
		{input: "get-weather", want: "get-weather"},
		{input: "'fs.read_file'", want: "fs.read_file"},
		{input: "finish.", want: "finish"},
		{input: "get-weather - looks up the forecast", want: "get-weather"},
		{input: "???", want: "???"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseToolName(tt.input))
		})
	}
}
