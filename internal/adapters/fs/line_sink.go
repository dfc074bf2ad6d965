package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bft-labs/filetranslator/internal/domain"
)

// LineSink implements ports.EntrySink by appending one line per unit.
type LineSink struct {
	path string
}

// NewLineSink creates a LineSink for the given file.
func NewLineSink(path string) *LineSink {
	return &LineSink{path: path}
}

// Append writes the translation followed by a newline.
func (s *LineSink) Append(ctx context.Context, unit domain.Unit, translated string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.NewIOError("append", s.path, err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.NewIOError("append", s.path, err)
	}
	if _, err := f.WriteString(translated + "\n"); err != nil {
		f.Close()
		return domain.NewIOError("append", s.path, err)
	}
	if err := f.Close(); err != nil {
		return domain.NewIOError("append", s.path, err)
	}
	return nil
}

// Count returns the number of lines written.
func (s *LineSink) Count(ctx context.Context) (int, error) {
	data, _, err := readOptional(s.path)
	if err != nil {
		return 0, domain.NewIOError("count", s.path, err)
	}
	return countLines(data), nil
}

// Path returns the output file path.
func (s *LineSink) Path() string { return s.path }

// Exists reports whether the file is present.
func (s *LineSink) Exists() bool { return fileExists(s.path) }
