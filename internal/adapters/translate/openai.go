package translate

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// OpenAIConfig configures an OpenAI-compatible chat backend.
type OpenAIConfig struct {
	// BaseURL of the API, e.g. Ollama's "http://localhost:11434/v1".
	BaseURL string
	// APIKey may be empty for local servers.
	APIKey string
	Model  string
	Prompt Prompt
	// HTTPClient overrides the default client.
	HTTPClient ports.HTTPClient
}

// OpenAI implements ports.Translator with chat completions.
type OpenAI struct {
	client *openai.Client
	model  string
	prompt Prompt
}

// NewOpenAI creates an OpenAI-compatible translator.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		c.HTTPClient = cfg.HTTPClient
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(c),
		model:  cfg.Model,
		prompt: cfg.Prompt,
	}
}

// Translate sends one unit to the model.
func (o *OpenAI) Translate(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: o.prompt.Render(text),
			},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", domain.ErrBackendFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", domain.ErrBackendFailure)
	}
	return finish("openai", resp.Choices[0].Message.Content)
}
