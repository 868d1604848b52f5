package triage

import "context"

// Chat roles used in the message history and provider requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMClient produces an assistant reply from a system prompt, the bounded
// conversation window, and the current user message. Implementations must
// honor ctx deadlines. An error or empty string is a normal outcome; the
// responder falls back to templates rather than surfacing it.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt string, history []ChatMessage, userMessage string) (string, error)
}
