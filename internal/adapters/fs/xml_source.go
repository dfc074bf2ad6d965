package fs

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

var blankLines = regexp.MustCompile(`\n\s*\n`)

// XMLSource implements ports.EntrySource over an SST XML file where each
// <String> block is a unit.
type XMLSource struct {
	path   string
	logger ports.Logger
}

// NewXMLSource creates an XMLSource for the given file.
func NewXMLSource(path string, logger ports.Logger) *XMLSource {
	return &XMLSource{path: path, logger: logger}
}

// Next returns the first <String> block. A block without <Source> ends the
// scan: it is logged and reported as absence.
func (s *XMLSource) Next(ctx context.Context) (domain.Unit, bool, error) {
	data, exists, err := readOptional(s.path)
	if err != nil {
		return domain.Unit{}, false, domain.NewIOError("read", s.path, err)
	}
	if !exists {
		return domain.Unit{}, false, nil
	}

	entry, ok := FindEntry(string(data))
	if !ok {
		return domain.Unit{}, false, nil
	}
	if !entry.HasSource {
		s.logger.Warn("malformed entry without <Source>",
			ports.String("path", s.path),
			ports.Int("offset", entry.Start),
		)
		return domain.Unit{}, false, nil
	}

	return domain.Unit{
		Payload:    UnescapeText(strings.TrimSpace(entry.Source)),
		Attributes: entry.Attributes,
		Span:       domain.Span{Start: entry.Start, End: entry.End},
	}, true, nil
}

// Remove deletes the unit's exact byte span and collapses the blank lines
// left behind.
func (s *XMLSource) Remove(ctx context.Context, unit domain.Unit) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.NewIOError("remove", s.path, err)
	}
	content := string(data)

	sp := unit.Span
	if sp.Start < 0 || sp.End > len(content) || sp.Start >= sp.End {
		return domain.NewIOError("remove", s.path,
			fmt.Errorf("%w: [%d,%d) outside %d bytes", domain.ErrSpanMismatch, sp.Start, sp.End, len(content)))
	}
	block := content[sp.Start:sp.End]
	if !strings.HasPrefix(block, stringOpen) || !strings.HasSuffix(block, stringClose) {
		return domain.NewIOError("remove", s.path,
			fmt.Errorf("%w: [%d,%d)", domain.ErrSpanMismatch, sp.Start, sp.End))
	}

	updated := content[:sp.Start] + content[sp.End:]
	updated = blankLines.ReplaceAllString(updated, "\n")

	if err := writeFileAtomic(s.path, []byte(updated)); err != nil {
		return domain.NewIOError("remove", s.path, err)
	}
	return nil
}

// Count returns the number of <String> tags left.
func (s *XMLSource) Count(ctx context.Context) (int, error) {
	data, _, err := readOptional(s.path)
	if err != nil {
		return 0, domain.NewIOError("count", s.path, err)
	}
	return CountEntries(string(data)), nil
}

// Path returns the input file path.
func (s *XMLSource) Path() string { return s.path }

// Exists reports whether the file is present.
func (s *XMLSource) Exists() bool { return fileExists(s.path) }
