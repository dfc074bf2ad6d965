package filetranslator

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bft-labs/filetranslator/internal/adapters/translate"
	"github.com/bft-labs/filetranslator/internal/domain"
)

// DefaultBackendURL is Ollama's OpenAI-compatible endpoint on the local host.
const DefaultBackendURL = "http://localhost:11434/v1"

// DefaultModel is the model used when none is configured.
const DefaultModel = "aya:8b-23"

// XMLParams is the <Params> header written to new XML output files.
type XMLParams struct {
	Addon   string
	Source  string
	Dest    string
	Version int
}

// BackendConfig selects and configures the translation backend.
type BackendConfig struct {
	// Name is "openai" (any OpenAI-compatible server, Ollama included),
	// "gemini" or "echo".
	Name   string
	URL    string
	Model  string
	APIKey string

	SourceLanguage string
	TargetLanguage string

	BreakerEnabled     bool
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
}

// Config holds the configuration of a Service.
type Config struct {
	TextInput  string
	TextOutput string
	XMLInput   string
	XMLOutput  string

	XML     XMLParams
	Backend BackendConfig

	// StateDir holds the last batch report of each pipeline.
	// Derived from TextOutput when empty.
	StateDir string

	// ShutdownTimeout bounds how long Shutdown waits for running batches.
	ShutdownTimeout time.Duration

	// StallLimit ends a batch after this many consecutive failures that
	// left the input unchanged. Zero keeps retrying until the batch is stopped.
	StallLimit int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		TextInput:  filepath.Join("data", "english_text.txt"),
		TextOutput: filepath.Join("data", "romanian_text.txt"),
		XMLInput:   filepath.Join("data", "Fallout4_en_fr.xml"),
		XMLOutput:  filepath.Join("data", "Fallout4_en_ro.xml"),
		XML: XMLParams{
			Addon:   "Fallout4",
			Source:  "en",
			Dest:    "ro",
			Version: 2,
		},
		Backend: BackendConfig{
			Name:               translate.BackendOpenAI,
			URL:                DefaultBackendURL,
			Model:              DefaultModel,
			SourceLanguage:     "English",
			TargetLanguage:     "Romanian",
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: 30 * time.Second,
		},
		ShutdownTimeout: 30 * time.Second,
	}
}

// SetDefaults fills zero-valued fields other than the file paths.
func (c *Config) SetDefaults() {
	d := DefaultConfig()

	if c.XML.Addon == "" {
		c.XML.Addon = d.XML.Addon
	}
	if c.XML.Source == "" {
		c.XML.Source = d.XML.Source
	}
	if c.XML.Dest == "" {
		c.XML.Dest = d.XML.Dest
	}
	if c.XML.Version == 0 {
		c.XML.Version = d.XML.Version
	}
	if c.Backend.Name == "" {
		c.Backend.Name = d.Backend.Name
	}
	if c.Backend.URL == "" && c.Backend.Name == translate.BackendOpenAI {
		c.Backend.URL = d.Backend.URL
	}
	if c.Backend.Model == "" {
		c.Backend.Model = d.Backend.Model
	}
	if c.Backend.SourceLanguage == "" {
		c.Backend.SourceLanguage = d.Backend.SourceLanguage
	}
	if c.Backend.TargetLanguage == "" {
		c.Backend.TargetLanguage = d.Backend.TargetLanguage
	}
	if c.Backend.BreakerMaxFailures == 0 {
		c.Backend.BreakerMaxFailures = d.Backend.BreakerMaxFailures
	}
	if c.Backend.BreakerOpenTimeout == 0 {
		c.Backend.BreakerOpenTimeout = d.Backend.BreakerOpenTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	for name, p := range map[string]string{
		"text input":  c.TextInput,
		"text output": c.TextOutput,
		"xml input":   c.XMLInput,
		"xml output":  c.XMLOutput,
	} {
		if p == "" {
			return fmt.Errorf("%w: %s path is required", domain.ErrInvalidConfig, name)
		}
	}
	if filepath.Clean(c.TextInput) == filepath.Clean(c.TextOutput) {
		return fmt.Errorf("%w: text input and output are the same file", domain.ErrInvalidConfig)
	}
	if filepath.Clean(c.XMLInput) == filepath.Clean(c.XMLOutput) {
		return fmt.Errorf("%w: xml input and output are the same file", domain.ErrInvalidConfig)
	}
	if c.XML.Version <= 0 {
		return fmt.Errorf("%w: xml version must be positive", domain.ErrInvalidConfig)
	}

	switch c.Backend.Name {
	case translate.BackendOpenAI, translate.BackendEcho:
	case translate.BackendGemini:
		if c.Backend.APIKey == "" {
			return fmt.Errorf("%w: gemini backend requires an api key", domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", domain.ErrInvalidConfig, c.Backend.Name)
	}
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")

	if c.Backend.BreakerEnabled {
		if c.Backend.BreakerMaxFailures <= 0 {
			return fmt.Errorf("%w: breaker max failures must be positive", domain.ErrInvalidConfig)
		}
		if c.Backend.BreakerOpenTimeout <= 0 {
			return fmt.Errorf("%w: breaker open timeout must be positive", domain.ErrInvalidConfig)
		}
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.StallLimit < 0 {
		return fmt.Errorf("%w: stall limit must not be negative", domain.ErrInvalidConfig)
	}

	if c.StateDir == "" {
		c.StateDir = filepath.Join(filepath.Dir(c.TextOutput), ".filetranslator")
	}
	return nil
}
