// Package client wraps the outbound chat-completion call to the remote
// service.
package client

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/prollm/translatorui/internal/chat"
)

// apiKeyEnvVar is consulted when no explicit API key is configured.
const apiKeyEnvVar = "OPENAI_API_KEY"

// defaultModel is used when the active setting does not name a model.
const defaultModel = "gpt-4o-mini"

// ErrMissingAPIKey is returned before any network call when no API key
// is available.
var ErrMissingAPIKey = errors.New("an API key must be provided explicitly or via the OPENAI_API_KEY environment variable")

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation sent to the completion
// endpoint.
type Message struct {
	Role    Role
	Content string
}

// Fragment is one incremental piece of a streamed completion response.
// A fragment with Err set reports a transport failure and is the last
// value on the channel.
type Fragment struct {
	Content string
	Err     error
}

// Client issues single completion requests to the remote service.
// No retry, no backoff.
type Client struct {
	api openai.Client
}

// New creates a Client. The API key is taken from apiKey or, when
// empty, from the OPENAI_API_KEY environment variable; without either
// it fails with ErrMissingAPIKey before any request is made.
func New(apiKey string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnvVar)
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{api: openai.NewClient(option.WithAPIKey(apiKey))}, nil
}

// Complete sends one non-streaming completion request and returns the
// first choice's full text.
func (c *Client) Complete(ctx context.Context, messages []Message, setting *chat.Setting) (string, error) {
	completion, err := c.api.Chat.Completions.New(ctx, buildParams(messages, setting))
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// Stream sends one streaming completion request. Fragments arrive in
// server-delivery order with empty deltas filtered out; the channel is
// closed when the remote side ends the stream. The sequence is finite
// and not restartable. Cancellation beyond ctx expiry is unsupported.
func (c *Client) Stream(ctx context.Context, messages []Message, setting *chat.Setting) <-chan Fragment {
	stream := c.api.Chat.Completions.NewStreaming(ctx, buildParams(messages, setting))
	out := make(chan Fragment, 16)

	go func() {
		defer close(out)
		defer func() { _ = stream.Close() }()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				out <- Fragment{Content: chunk.Choices[0].Delta.Content}
			}
		}
		if err := stream.Err(); err != nil {
			out <- Fragment{Err: err}
		}
	}()

	return out
}

func buildParams(messages []Message, setting *chat.Setting) openai.ChatCompletionNewParams {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			converted = append(converted, openai.SystemMessage(m.Content))
		case RoleAssistant:
			converted = append(converted, openai.AssistantMessage(m.Content))
		default:
			converted = append(converted, openai.UserMessage(m.Content))
		}
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(defaultModel),
		Messages: converted,
	}
	if setting != nil {
		applySetting(&params, setting.Data)
	}
	return params
}

// applySetting maps the recognized keys of a setting's opaque data onto
// request parameters. JSON numbers decode as float64.
func applySetting(params *openai.ChatCompletionNewParams, data map[string]any) {
	if model, ok := data["model"].(string); ok {
		params.Model = openai.ChatModel(model)
	}
	if temperature, ok := data["temperature"].(float64); ok {
		params.Temperature = openai.Float(temperature)
	}
	if topP, ok := data["top_p"].(float64); ok {
		params.TopP = openai.Float(topP)
	}
	if maxTokens, ok := data["max_tokens"].(float64); ok {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
}
