package agui

import (
	"strings"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
)

// Role constants matching AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// LastUserMessage returns the content of the most recent non-empty user
// message.
func LastUserMessage(msgs []events.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Role != RoleUser || msg.Content == nil {
			continue
		}
		if content := strings.TrimSpace(*msg.Content); content != "" {
			return content, true
		}
	}
	return "", false
}
