package translate

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/bft-labs/filetranslator/internal/domain"
)

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL    string
	Prompt     Prompt
	HTTPClient *http.Client
}

// Gemini implements ports.Translator with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	prompt Prompt
}

// NewGemini creates a Gemini translator.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, prompt: cfg.Prompt}, nil
}

// Translate sends one unit to the model.
func (g *Gemini) Translate(ctx context.Context, text string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(g.prompt.Render(text)), nil)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", domain.ErrBackendFailure, err)
	}
	return finish("gemini", resp.Text())
}
