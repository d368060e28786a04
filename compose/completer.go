package compose

import (
	"context"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/c360/semhome/errors"
)

// Completer is the model-call collaborator: prompt in, completion text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatConfig configures the chat-completion completer.
type ChatConfig struct {
	// BaseURL of an OpenAI-compatible chat API. Empty uses the default
	// cloud endpoint.
	BaseURL string

	// APIKey for authentication. An empty key means no model is
	// configured; callers should not construct a completer in that case.
	APIKey string

	// Model name, e.g. "gpt-4o-mini" or any local model id.
	Model string

	// Timeout for the whole request (default 30s).
	Timeout time.Duration
}

// ChatCompleter calls an OpenAI-compatible chat-completion endpoint.
type ChatCompleter struct {
	client *openai.Client
	model  string
}

// NewChatCompleter builds a completer from config.
func NewChatCompleter(cfg ChatConfig) (*ChatCompleter, error) {
	if cfg.APIKey == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "compose", "NewChatCompleter", "api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "compose", "NewChatCompleter", "model is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &ChatCompleter{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

// Complete sends the prompt as a single user message and returns the first
// choice's content.
func (c *ChatCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.WrapTransient(errors.ErrModelTimeout, "compose", "Complete", "chat completion")
		}
		return "", errors.WrapTransient(err, "compose", "Complete", "chat completion")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.WrapTransient(errors.ErrEmptyCompletion, "compose", "Complete", "chat completion")
	}
	return resp.Choices[0].Message.Content, nil
}
