package cliconfig

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/filetranslator/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %v, want %v", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.TextInput != filepath.Join("data", "english_text.txt") {
		t.Errorf("TextInput = %v", cfg.TextInput)
	}
	if cfg.XMLOutput != filepath.Join("data", "Fallout4_en_ro.xml") {
		t.Errorf("XMLOutput = %v", cfg.XMLOutput)
	}
	if cfg.Backend != "openai" {
		t.Errorf("Backend = %v, want openai", cfg.Backend)
	}
	if cfg.BreakerEnabled {
		t.Error("BreakerEnabled should default to false")
	}
	if cfg.WatchDebounce != 500*time.Millisecond {
		t.Errorf("WatchDebounce = %v, want 500ms", cfg.WatchDebounce)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.StallLimit != 0 {
		t.Errorf("StallLimit = %v, want 0 (keep retrying)", cfg.StallLimit)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing text input",
			mutate:  func(c *Config) { c.TextInput = "" },
			wantErr: true,
		},
		{
			name:    "xml input equals output",
			mutate:  func(c *Config) { c.XMLOutput = c.XMLInput },
			wantErr: true,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Backend = "carrier-pigeon" },
			wantErr: true,
		},
		{
			name:    "gemini without key",
			mutate:  func(c *Config) { c.Backend = "gemini" },
			wantErr: true,
		},
		{
			name: "gemini with key",
			mutate: func(c *Config) {
				c.Backend = "gemini"
				c.APIKey = "k"
			},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "chatty" },
			wantErr: true,
		},
		{
			name: "watch needs a debounce",
			mutate: func(c *Config) {
				c.Watch = true
				c.WatchDebounce = 0
			},
			wantErr: true,
		},
		{
			name:    "negative stall limit",
			mutate:  func(c *Config) { c.StallLimit = -1 },
			wantErr: true,
		},
		{
			name: "breaker with zero failures",
			mutate: func(c *Config) {
				c.BreakerEnabled = true
				c.BreakerMaxFailures = -1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_ValidateDerivesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = ""
	cfg.TextOutput = filepath.Join("out", "ro.txt")
	cfg.BackendURL = "http://ollama:11434/v1/"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %v, want %v", cfg.ListenAddr, DefaultListenAddr)
	}
	if want := filepath.Join("out", ".filetranslator"); cfg.StateDir != want {
		t.Errorf("StateDir = %v, want %v", cfg.StateDir, want)
	}
	if cfg.BackendURL != "http://ollama:11434/v1" {
		t.Errorf("BackendURL = %v, want trailing slash trimmed", cfg.BackendURL)
	}
}

func TestConfig_Service(t *testing.T) {
	cfg := DefaultConfig()
	cfg.XMLAddon = "Skyrim"
	cfg.XMLVersion = 3
	cfg.BackendModel = "llama3"
	cfg.BreakerEnabled = true
	cfg.StallLimit = 7

	svc := cfg.Service()
	if svc.XML.Addon != "Skyrim" || svc.XML.Version != 3 {
		t.Errorf("XML params = %+v", svc.XML)
	}
	if svc.Backend.Model != "llama3" || !svc.Backend.BreakerEnabled {
		t.Errorf("Backend = %+v", svc.Backend)
	}
	if svc.StallLimit != 7 {
		t.Errorf("StallLimit = %d, want 7", svc.StallLimit)
	}
	if svc.TextInput != cfg.TextInput || svc.XMLOutput != cfg.XMLOutput {
		t.Error("paths not carried over")
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.LogFile = filepath.Join(dir, "logs", "filetranslator.log")

	logger, closeFn, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Info("hello")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !FileExists(cfg.LogFile) {
		t.Error("log file was not created")
	}

	cfg.LogLevel = "nope"
	if _, _, err := NewLogger(cfg); err == nil {
		t.Error("expected error for bad level")
	}
}
