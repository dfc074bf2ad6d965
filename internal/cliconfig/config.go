package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/pkg/filetranslator"
)

// DefaultListenAddr is where the HTTP API listens by default.
const DefaultListenAddr = ":5000"

// Config holds CLI configuration for filetranslator.
type Config struct {
	ListenAddr string

	TextInput  string
	TextOutput string
	XMLInput   string
	XMLOutput  string

	XMLAddon      string
	XMLSourceLang string
	XMLDestLang   string
	XMLVersion    int

	Backend        string
	BackendURL     string
	BackendModel   string
	APIKey         string
	SourceLanguage string
	TargetLanguage string

	BreakerEnabled     bool
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration

	StateDir        string
	Watch           bool
	WatchDebounce   time.Duration
	ShutdownTimeout time.Duration
	StallLimit      int

	LogLevel string
	LogFile  string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	svc := filetranslator.DefaultConfig()
	return Config{
		ListenAddr:         DefaultListenAddr,
		TextInput:          svc.TextInput,
		TextOutput:         svc.TextOutput,
		XMLInput:           svc.XMLInput,
		XMLOutput:          svc.XMLOutput,
		XMLAddon:           svc.XML.Addon,
		XMLSourceLang:      svc.XML.Source,
		XMLDestLang:        svc.XML.Dest,
		XMLVersion:         svc.XML.Version,
		Backend:            svc.Backend.Name,
		BackendURL:         svc.Backend.URL,
		BackendModel:       svc.Backend.Model,
		SourceLanguage:     svc.Backend.SourceLanguage,
		TargetLanguage:     svc.Backend.TargetLanguage,
		BreakerMaxFailures: svc.Backend.BreakerMaxFailures,
		BreakerOpenTimeout: svc.Backend.BreakerOpenTimeout,
		StateDir:           "", // Derived from TextOutput during Validate
		WatchDebounce:      500 * time.Millisecond,
		ShutdownTimeout:    svc.ShutdownTimeout,
		LogLevel:           "info",
	}
}

// Service returns the embeddable service configuration.
func (c Config) Service() filetranslator.Config {
	return filetranslator.Config{
		TextInput:  c.TextInput,
		TextOutput: c.TextOutput,
		XMLInput:   c.XMLInput,
		XMLOutput:  c.XMLOutput,
		XML: filetranslator.XMLParams{
			Addon:   c.XMLAddon,
			Source:  c.XMLSourceLang,
			Dest:    c.XMLDestLang,
			Version: c.XMLVersion,
		},
		Backend: filetranslator.BackendConfig{
			Name:               c.Backend,
			URL:                c.BackendURL,
			Model:              c.BackendModel,
			APIKey:             c.APIKey,
			SourceLanguage:     c.SourceLanguage,
			TargetLanguage:     c.TargetLanguage,
			BreakerEnabled:     c.BreakerEnabled,
			BreakerMaxFailures: c.BreakerMaxFailures,
			BreakerOpenTimeout: c.BreakerOpenTimeout,
		},
		StateDir:        c.StateDir,
		ShutdownTimeout: c.ShutdownTimeout,
		StallLimit:      c.StallLimit,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	svc := c.Service()
	if err := svc.Validate(); err != nil {
		return err
	}
	c.StateDir = svc.StateDir
	c.BackendURL = svc.Backend.URL

	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Watch && c.WatchDebounce <= 0 {
		return fmt.Errorf("%w: watch debounce must be positive", domain.ErrInvalidConfig)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
