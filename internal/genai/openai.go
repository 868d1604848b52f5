package genai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/medikah/telehealth-intake/internal/triage"
	"github.com/medikah/telehealth-intake/pkg/logging"
)

// DefaultModel is used when the config names none.
const DefaultModel = "gpt-4o"

// Config holds the OpenAI connection settings.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Client implements triage.LLMClient over the OpenAI chat completions API.
type Client struct {
	api    *openai.Client
	cfg    Config
	logger *logging.Logger
}

// NewClient requires an API key; callers without one should not construct a
// client and instead leave the responder on templates.
func NewClient(cfg Config, logger *logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		api:    openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Complete sends the prompt and bounded history to the chat completions API.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []triage.ChatMessage, userMessage string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    buildMessages(systemPrompt, history, userMessage),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("genai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// buildMessages flattens system prompt, prior turns, and the current message
// into the provider's wire shape. Unknown history roles are passed through
// as user content rather than dropped.
func buildMessages(systemPrompt string, history []triage.ChatMessage, userMessage string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == triage.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})
	return messages
}
