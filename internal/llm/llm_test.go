package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToContents(t *testing.T) {
	contents, system := toContents([]Message{
		{Role: RoleSystem, Content: "You are a tutor."},
		{Role: RoleUser, Content: "Explain osmosis."},
		{Role: RoleAssistant, Content: "Osmosis is..."},
		{Role: RoleSystem, Content: "Reply in JSON."},
		{Role: RoleUser, Content: "Thanks"},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "Osmosis is...", contents[1].Parts[0].Text)

	require.NotNil(t, system)
	assert.Equal(t, "You are a tutor.\n\nReply in JSON.", system.Parts[0].Text)
}

func TestToContents_NoSystem(t *testing.T) {
	contents, system := toContents([]Message{{Role: RoleUser, Content: "hi"}})
	assert.Len(t, contents, 1)
	assert.Nil(t, system)
}

func TestNewGenAIClient_RequiresKey(t *testing.T) {
	_, err := NewGenAIClient(context.Background(), "", "")
	assert.Error(t, err)
}
