// Package langchain adapts any langchaingo llms.Model to ai.ChatProvider.
// It backs the Ollama preset for locally served models.
package langchain

import (
	"context"
	"fmt"

	ai "github.com/spetersoncode/reactor"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// DefaultOllamaURL is the address of a default local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// Client wraps a langchaingo model to implement ai.ChatProvider.
type Client struct {
	model     llms.Model
	modelName string
}

// Wrap adapts an existing langchaingo model. modelName is reported on
// responses and may be empty.
func Wrap(model llms.Model, modelName string) *Client {
	return &Client{model: model, modelName: modelName}
}

// NewOllama connects to an Ollama server. An empty serverURL uses
// DefaultOllamaURL.
func NewOllama(modelName, serverURL string) (*Client, error) {
	if serverURL == "" {
		serverURL = DefaultOllamaURL
	}
	llm, err := ollama.New(ollama.WithModel(modelName), ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	return Wrap(llm, modelName), nil
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)

	var callOpts []llms.CallOption
	model := c.modelName
	if options.Model != "" {
		model = options.Model
		callOpts = append(callOpts, llms.WithModel(options.Model))
	}
	if options.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(options.MaxTokens))
	}
	if options.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*options.Temperature))
	}

	resp, err := c.model.GenerateContent(ctx, convertMessages(messages), callOpts...)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ai.NewTransientError("langchain: empty choices", 0, nil)
	}

	choice := resp.Choices[0]
	return &ai.Response{
		Content:      choice.Content,
		FinishReason: choice.StopReason,
		Model:        model,
		Usage: ai.Usage{
			InputTokens:  tokenCount(choice.GenerationInfo, "PromptTokens", "InputTokens", "input_tokens", "prompt_eval_count"),
			OutputTokens: tokenCount(choice.GenerationInfo, "CompletionTokens", "OutputTokens", "output_tokens", "eval_count"),
		},
	}, nil
}

func convertMessages(messages []ai.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case ai.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case ai.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		result = append(result, llms.TextParts(role, msg.Content))
	}
	return result
}

// tokenCount returns the first positive integer found under keys.
// Backends report usage under different names.
func tokenCount(info map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			if v > 0 {
				return v
			}
		case int32:
			if v > 0 {
				return int(v)
			}
		case int64:
			if v > 0 {
				return int(v)
			}
		case float64:
			if v > 0 {
				return int(v)
			}
		}
	}
	return 0
}

// wrapError categorizes langchaingo errors, which carry no status codes.
func wrapError(err error) error {
	if ai.MentionsContextWindow(err.Error()) {
		return ai.NewContextWindowError(err.Error(), 0, err)
	}
	return err
}

var _ ai.ChatProvider = (*Client)(nil)
