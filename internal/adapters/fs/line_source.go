package fs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/bft-labs/filetranslator/internal/domain"
)

var errEmptySource = errors.New("no lines left")

// LineSource implements ports.EntrySource over a plain text file where each
// line is a unit.
type LineSource struct {
	path string
}

// NewLineSource creates a LineSource for the given file.
func NewLineSource(path string) *LineSource {
	return &LineSource{path: path}
}

// Next returns the first line, even when it is blank. The span covers the
// line and its newline.
func (s *LineSource) Next(ctx context.Context) (domain.Unit, bool, error) {
	data, exists, err := readOptional(s.path)
	if err != nil {
		return domain.Unit{}, false, domain.NewIOError("read", s.path, err)
	}
	if !exists || len(data) == 0 {
		return domain.Unit{}, false, nil
	}

	end := bytes.IndexByte(data, '\n')
	if end < 0 {
		end = len(data)
	} else {
		end++
	}

	return domain.Unit{
		Payload: strings.TrimSpace(string(data[:end])),
		Span:    domain.Span{Start: 0, End: end},
	}, true, nil
}

// Remove deletes the first line of the file. The unit's span is ignored:
// text mode always consumes from the top.
func (s *LineSource) Remove(ctx context.Context, unit domain.Unit) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.NewIOError("remove", s.path, err)
	}
	if len(data) == 0 {
		return domain.NewIOError("remove", s.path, errEmptySource)
	}

	var rest []byte
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		rest = data[i+1:]
	}
	if err := writeFileAtomic(s.path, rest); err != nil {
		return domain.NewIOError("remove", s.path, err)
	}
	return nil
}

// Count returns the number of lines left.
func (s *LineSource) Count(ctx context.Context) (int, error) {
	data, _, err := readOptional(s.path)
	if err != nil {
		return 0, domain.NewIOError("count", s.path, err)
	}
	return countLines(data), nil
}

// Path returns the input file path.
func (s *LineSource) Path() string { return s.path }

// Exists reports whether the file is present.
func (s *LineSource) Exists() bool { return fileExists(s.path) }
