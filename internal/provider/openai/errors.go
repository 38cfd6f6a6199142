package openai

import (
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	ai "github.com/spetersoncode/reactor"
)

// contextLengthCode is the error code OpenAI-compatible servers return for
// oversized prompts.
const contextLengthCode = "context_length_exceeded"

// wrapError wraps an OpenAI SDK error with error categorization.
// It extracts status codes, Retry-After headers and context-length errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		// Not an API error, likely network; handled by retry heuristics
		if ai.MentionsContextWindow(err.Error()) {
			return ai.NewContextWindowError(err.Error(), 0, err)
		}
		return err
	}

	var header http.Header
	if apiErr.Response != nil {
		header = apiErr.Response.Header
	}
	return ai.NewStatusError(
		err.Error(),
		apiErr.StatusCode,
		ai.ParseRetryAfter(header),
		apiErr.Code == contextLengthCode,
		err,
	)
}
