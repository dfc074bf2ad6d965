package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bft-labs/filetranslator/internal/domain"
)

// contentMarker is the closing Content tag new entries are inserted before.
const contentMarker = "  </Content>"

// Params is the <Params> header of an SST XML document.
type Params struct {
	Addon   string
	Source  string
	Dest    string
	Version int
}

// DefaultParams returns the header used for Fallout 4 en->ro resources.
func DefaultParams() Params {
	return Params{Addon: "Fallout4", Source: "en", Dest: "ro", Version: 2}
}

// XMLSink implements ports.EntrySink over an SST XML document.
type XMLSink struct {
	path   string
	params Params
}

// NewXMLSink creates an XMLSink for the given file.
func NewXMLSink(path string, params Params) *XMLSink {
	return &XMLSink{path: path, params: params}
}

// Skeleton renders the empty wrapper document.
func (p Params) Skeleton() string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<SSTXMLRessources>
  <Params>
    <Addon>%s</Addon>
    <Source>%s</Source>
    <Dest>%s</Dest>
    <Version>%d</Version>
  </Params>
  <Content>
  </Content>
</SSTXMLRessources>`, p.Addon, p.Source, p.Dest, p.Version)
}

// Append inserts a <String> block before the closing Content tag, creating
// the wrapper document first if the file does not exist. A document without
// the marker is reported as ErrSinkCorruption.
func (s *XMLSink) Append(ctx context.Context, unit domain.Unit, translated string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.NewIOError("append", s.path, err)
	}

	data, exists, err := readOptional(s.path)
	if err != nil {
		return domain.NewIOError("append", s.path, err)
	}
	if !exists {
		data = []byte(s.params.Skeleton())
	}
	content := string(data)

	at := strings.Index(content, contentMarker)
	if at < 0 {
		return domain.NewIOError("append", s.path,
			fmt.Errorf("%w: %q not found", domain.ErrSinkCorruption, contentMarker))
	}

	entry := RenderEntry(unit.Attributes, unit.Payload, translated)
	updated := content[:at] + entry + "\n" + content[at:]

	if err := writeFileAtomic(s.path, []byte(updated)); err != nil {
		return domain.NewIOError("append", s.path, err)
	}
	return nil
}

// RenderEntry builds the indented <String> block written to the sink.
func RenderEntry(attributes, source, dest string) string {
	var b strings.Builder
	b.WriteString("    <String")
	b.WriteString(attributes)
	b.WriteString(">\n      <Source>")
	b.WriteString(EscapeText(source))
	b.WriteString("</Source>\n      <Dest>")
	b.WriteString(EscapeText(dest))
	b.WriteString("</Dest>\n    </String>")
	return b.String()
}

// Count returns the number of <String> tags written.
func (s *XMLSink) Count(ctx context.Context) (int, error) {
	data, _, err := readOptional(s.path)
	if err != nil {
		return 0, domain.NewIOError("count", s.path, err)
	}
	return CountEntries(string(data)), nil
}

// Path returns the output file path.
func (s *XMLSink) Path() string { return s.path }

// Exists reports whether the file is present.
func (s *XMLSink) Exists() bool { return fileExists(s.path) }
