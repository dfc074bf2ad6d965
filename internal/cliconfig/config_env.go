package cliconfig

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "FILETRANSLATOR_"

// legacyEnv maps variable names understood by earlier deployments of the
// service to their current names.
var legacyEnv = map[string]string{
	"TEXT_INPUT":    "INPUT_FILE_PATH",
	"TEXT_OUTPUT":   "OUTPUT_FILE_PATH",
	"XML_INPUT":     "XML_INPUT_FILE_PATH",
	"XML_OUTPUT":    "XML_OUTPUT_FILE_PATH",
	"BACKEND_MODEL": "ENHANCE_PRODUCT_MODEL",
	"API_KEY":       "OPENAI_API_KEY",
}

// getenv returns FILETRANSLATOR_<key>, falling back to the legacy name.
func getenv(key string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	if legacy, ok := legacyEnv[key]; ok {
		return os.Getenv(legacy)
	}
	return ""
}

// backendURLFromEnv resolves the backend URL. OLLAMA_SERVICE_URL holds the
// bare Ollama address, so the OpenAI-compatible path is appended to it.
func backendURLFromEnv() string {
	if v := os.Getenv(EnvPrefix + "BACKEND_URL"); v != "" {
		return v
	}
	v := strings.TrimRight(os.Getenv("OLLAMA_SERVICE_URL"), "/")
	if v == "" || strings.HasSuffix(v, "/v1") {
		return v
	}
	return v + "/v1"
}

// ApplyEnvConfig applies configuration from environment variables.
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", getenv("LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("text-input", getenv("TEXT_INPUT"), &cfg.TextInput)
	s.setString("text-output", getenv("TEXT_OUTPUT"), &cfg.TextOutput)
	s.setString("xml-input", getenv("XML_INPUT"), &cfg.XMLInput)
	s.setString("xml-output", getenv("XML_OUTPUT"), &cfg.XMLOutput)
	s.setString("xml-addon", getenv("XML_ADDON"), &cfg.XMLAddon)
	s.setString("xml-source-lang", getenv("XML_SOURCE_LANG"), &cfg.XMLSourceLang)
	s.setString("xml-dest-lang", getenv("XML_DEST_LANG"), &cfg.XMLDestLang)
	s.setString("backend", getenv("BACKEND"), &cfg.Backend)
	s.setString("backend-url", backendURLFromEnv(), &cfg.BackendURL)
	s.setString("model", getenv("BACKEND_MODEL"), &cfg.BackendModel)
	s.setString("api-key", getenv("API_KEY"), &cfg.APIKey)
	s.setString("source-language", getenv("SOURCE_LANGUAGE"), &cfg.SourceLanguage)
	s.setString("target-language", getenv("TARGET_LANGUAGE"), &cfg.TargetLanguage)
	s.setString("state-dir", getenv("STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", getenv("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-file", getenv("LOG_FILE"), &cfg.LogFile)

	if err := s.setIntFromString("xml-version", getenv("XML_VERSION"), &cfg.XMLVersion); err != nil {
		return err
	}
	if err := s.setIntFromString("breaker-max-failures", getenv("BREAKER_MAX_FAILURES"), &cfg.BreakerMaxFailures); err != nil {
		return err
	}

	if err := s.setIntFromString("stall-limit", getenv("STALL_LIMIT"), &cfg.StallLimit); err != nil {
		return err
	}

	if err := s.setDuration("breaker-open-timeout", getenv("BREAKER_OPEN_TIMEOUT"), &cfg.BreakerOpenTimeout); err != nil {
		return err
	}
	if err := s.setDuration("watch-debounce", getenv("WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", getenv("SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setBoolFromString("breaker", getenv("BREAKER_ENABLED"), &cfg.BreakerEnabled)
	s.setBoolFromString("watch", getenv("WATCH"), &cfg.Watch)

	return nil
}
