package domain

import "fmt"

// Mode selects how units are parsed from the source store.
type Mode string

const (
	// ModeText treats every line of a plain text file as a unit.
	ModeText Mode = "text"

	// ModeXML treats every <String>...</String> block of an SST XML file as a unit.
	ModeXML Mode = "xml"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeText, ModeXML:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q: %w", s, ErrInvalidConfig)
	}
}

// Span is a half-open byte range [Start, End) in the source file.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Unit is the atomic piece of translatable content.
type Unit struct {
	// Payload is the unescaped, trimmed text to translate.
	Payload string

	// Attributes holds the raw attribute substring of the XML <String> tag,
	// including its leading space. Empty in text mode.
	Attributes string

	// Span locates the unit in the source file for removal.
	Span Span
}

// Empty reports whether the payload has nothing to translate.
func (u Unit) Empty() bool { return u.Payload == "" }
