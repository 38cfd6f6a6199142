package reactor

import "context"

// ChatProvider is the model-calling collaborator: it sends an ordered list of
// role-tagged messages and returns the response text with usage metadata.
//
// Implementations report a prompt that exceeds the model's context window as
// an error for which [IsContextWindowExceeded] returns true. Any other error
// is treated by callers as a generic call failure.
type ChatProvider interface {
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error)
}

// ChatFunc adapts an ordinary function to the ChatProvider interface.
type ChatFunc func(ctx context.Context, messages []Message, opts ...Option) (*Response, error)

// Chat calls f(ctx, messages, opts...).
func (f ChatFunc) Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error) {
	return f(ctx, messages, opts...)
}
