package reactor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsage(t *testing.T) {
	u := Usage{InputTokens: 10, OutputTokens: 5}.Add(Usage{InputTokens: 1, OutputTokens: 2})
	assert.Equal(t, Usage{InputTokens: 11, OutputTokens: 7}, u)
	assert.Equal(t, 18, u.Total())
}

func TestMessageConstructors(t *testing.T) {
	assert.Equal(t, Message{Role: RoleSystem, Content: "s"}, SystemMessage("s"))
	assert.Equal(t, Message{Role: RoleUser, Content: "u"}, UserMessage("u"))
}

func TestApplyOptions(t *testing.T) {
	o := ApplyOptions(WithModel("gpt-4o-mini"), WithMaxTokens(128), WithTemperature(0.1))
	assert.Equal(t, "gpt-4o-mini", o.Model)
	assert.Equal(t, 128, o.MaxTokens)
	require.NotNil(t, o.Temperature)
	assert.InDelta(t, 0.1, *o.Temperature, 1e-9)

	empty := ApplyOptions()
	assert.Nil(t, empty.Temperature)
}

func TestOptionsModelOr(t *testing.T) {
	assert.Equal(t, "default", ApplyOptions().ModelOr("default"))
	assert.Equal(t, "override", ApplyOptions(WithModel("override")).ModelOr("default"))
	assert.Equal(t, "second", ApplyOptions(WithModel("first"), WithModel("second")).ModelOr("default"))
}

func TestChatFunc(t *testing.T) {
	var provider ChatProvider = ChatFunc(func(ctx context.Context, messages []Message, opts ...Option) (*Response, error) {
		return &Response{Content: messages[len(messages)-1].Content}, nil
	})
	resp, err := provider.Chat(context.Background(), []Message{UserMessage("echo")})
	require.NoError(t, err)
	assert.Equal(t, "echo", resp.Content)
}

func TestProviderValid(t *testing.T) {
	assert.True(t, ProviderOllama.Valid())
	assert.False(t, Provider("bedrock").Valid())
	assert.Equal(t, "openai", ProviderOpenAI.String())
}
