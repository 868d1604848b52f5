package genai

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medikah/telehealth-intake/internal/triage"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.Error(t, err)

	c, err := NewClient(Config{APIKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.cfg.Model)
	assert.Equal(t, 300, c.cfg.MaxTokens)
}

func TestBuildMessages(t *testing.T) {
	history := []triage.ChatMessage{
		{Role: triage.RoleUser, Content: "I have a headache"},
		{Role: triage.RoleAssistant, Content: "When did it start?"},
		{Role: "tool", Content: "odd role"},
	}

	messages := buildMessages("you are an intake assistant", history, "two days ago")
	require.Len(t, messages, 5)

	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, "you are an intake assistant", messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	// Unknown roles degrade to user content.
	assert.Equal(t, openai.ChatMessageRoleUser, messages[3].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[4].Role)
	assert.Equal(t, "two days ago", messages[4].Content)
}
