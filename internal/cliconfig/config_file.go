package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ListenAddr         string `toml:"listen_addr"`
	TextInput          string `toml:"text_input"`
	TextOutput         string `toml:"text_output"`
	XMLInput           string `toml:"xml_input"`
	XMLOutput          string `toml:"xml_output"`
	XMLAddon           string `toml:"xml_addon"`
	XMLSourceLang      string `toml:"xml_source_lang"`
	XMLDestLang        string `toml:"xml_dest_lang"`
	XMLVersion         int    `toml:"xml_version"`
	Backend            string `toml:"backend"`
	BackendURL         string `toml:"backend_url"`
	BackendModel       string `toml:"backend_model"`
	APIKey             string `toml:"api_key"`
	SourceLanguage     string `toml:"source_language"`
	TargetLanguage     string `toml:"target_language"`
	BreakerEnabled     *bool  `toml:"breaker_enabled"`
	BreakerMaxFailures int    `toml:"breaker_max_failures"`
	BreakerOpenTimeout string `toml:"breaker_open_timeout"`
	StateDir           string `toml:"state_dir"`
	Watch              *bool  `toml:"watch"`
	WatchDebounce      string `toml:"watch_debounce"`
	ShutdownTimeout    string `toml:"shutdown_timeout"`
	StallLimit         int    `toml:"stall_limit"`
	LogLevel           string `toml:"log_level"`
	LogFile            string `toml:"log_file"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.filetranslator/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".filetranslator", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("text-input", fc.TextInput, &cfg.TextInput)
	s.setString("text-output", fc.TextOutput, &cfg.TextOutput)
	s.setString("xml-input", fc.XMLInput, &cfg.XMLInput)
	s.setString("xml-output", fc.XMLOutput, &cfg.XMLOutput)
	s.setString("xml-addon", fc.XMLAddon, &cfg.XMLAddon)
	s.setString("xml-source-lang", fc.XMLSourceLang, &cfg.XMLSourceLang)
	s.setString("xml-dest-lang", fc.XMLDestLang, &cfg.XMLDestLang)
	s.setString("backend", fc.Backend, &cfg.Backend)
	s.setString("backend-url", fc.BackendURL, &cfg.BackendURL)
	s.setString("model", fc.BackendModel, &cfg.BackendModel)
	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("source-language", fc.SourceLanguage, &cfg.SourceLanguage)
	s.setString("target-language", fc.TargetLanguage, &cfg.TargetLanguage)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)

	s.setInt("xml-version", fc.XMLVersion, &cfg.XMLVersion)
	s.setInt("breaker-max-failures", fc.BreakerMaxFailures, &cfg.BreakerMaxFailures)
	s.setInt("stall-limit", fc.StallLimit, &cfg.StallLimit)

	if err := s.setDuration("breaker-open-timeout", fc.BreakerOpenTimeout, &cfg.BreakerOpenTimeout); err != nil {
		return err
	}
	if err := s.setDuration("watch-debounce", fc.WatchDebounce, &cfg.WatchDebounce); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setBool("breaker", fc.BreakerEnabled, &cfg.BreakerEnabled)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
