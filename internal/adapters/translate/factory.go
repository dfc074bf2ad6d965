package translate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// Backend names.
const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
	BackendEcho   = "echo"
)

// Config selects and configures a backend.
type Config struct {
	Backend        string
	URL            string
	Model          string
	APIKey         string
	SourceLanguage string
	TargetLanguage string

	BreakerEnabled     bool
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration

	HTTPClient *http.Client
}

// New builds the configured backend, wrapped in a breaker when enabled.
func New(ctx context.Context, cfg Config, logger ports.Logger) (ports.Translator, error) {
	prompt := Prompt{Source: cfg.SourceLanguage, Target: cfg.TargetLanguage}
	if prompt.Source == "" || prompt.Target == "" {
		prompt = DefaultPrompt()
	}

	var t ports.Translator
	switch cfg.Backend {
	case BackendOpenAI, "":
		oc := OpenAIConfig{BaseURL: cfg.URL, APIKey: cfg.APIKey, Model: cfg.Model, Prompt: prompt}
		if cfg.HTTPClient != nil {
			oc.HTTPClient = cfg.HTTPClient
		}
		t = NewOpenAI(oc)
	case BackendGemini:
		g, err := NewGemini(ctx, GeminiConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Prompt:     prompt,
			HTTPClient: cfg.HTTPClient,
		})
		if err != nil {
			return nil, err
		}
		t = g
	case BackendEcho:
		t = Echo{}
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", domain.ErrInvalidConfig, cfg.Backend)
	}

	logger.Info("translation backend ready",
		ports.String("backend", backendName(cfg.Backend)),
		ports.String("model", cfg.Model),
		ports.Bool("breaker", cfg.BreakerEnabled),
	)

	if cfg.BreakerEnabled {
		t = NewBreaker(t, BreakerConfig{
			MaxFailures: uint32(cfg.BreakerMaxFailures),
			OpenTimeout: cfg.BreakerOpenTimeout,
		}, logger)
	}
	return t, nil
}

func backendName(b string) string {
	if b == "" {
		return BackendOpenAI
	}
	return b
}
