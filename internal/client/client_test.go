package client

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prollm/translatorui/internal/chat"
)

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := New("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewExplicitKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	c, err := New("sk-test")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestNewKeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	c, err := New("")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestBuildParamsDefaults(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "translate"},
		{Role: RoleUser, Content: "hi"},
	}

	params := buildParams(messages, nil)
	assert.Equal(t, openai.ChatModel(defaultModel), params.Model)
	assert.Len(t, params.Messages, 2)
}

func TestBuildParamsAppliesSetting(t *testing.T) {
	setting := &chat.Setting{
		ID: "creative",
		Data: map[string]any{
			"model":       "gpt-4o",
			"temperature": 1.2,
			"top_p":       0.9,
			"max_tokens":  float64(256),
		},
	}

	params := buildParams([]Message{{Role: RoleUser, Content: "hi"}}, setting)
	assert.Equal(t, openai.ChatModel("gpt-4o"), params.Model)
	assert.Equal(t, 1.2, params.Temperature.Value)
	assert.Equal(t, 0.9, params.TopP.Value)
	assert.Equal(t, int64(256), params.MaxTokens.Value)
}

func TestBuildParamsIgnoresUnknownAndMistypedKeys(t *testing.T) {
	setting := &chat.Setting{
		ID: "odd",
		Data: map[string]any{
			"temperature": "hot",
			"comment":     "not a parameter",
		},
	}

	params := buildParams([]Message{{Role: RoleUser, Content: "hi"}}, setting)
	assert.Equal(t, openai.ChatModel(defaultModel), params.Model)
	assert.False(t, params.Temperature.Valid())
}
