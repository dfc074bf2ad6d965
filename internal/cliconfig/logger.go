package cliconfig

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	logadapter "github.com/bft-labs/filetranslator/internal/adapters/log"
)

// NewLogger builds the CLI logger. When LogFile is set, events also go to
// that file and the returned closer must be called on exit.
func NewLogger(cfg Config) (*logadapter.ZerologAdapter, func() error, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.LogFile == "" {
		return logadapter.NewZerologAdapter(level), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logadapter.NewZerologAdapter(level, io.Writer(f)), f.Close, nil
}
