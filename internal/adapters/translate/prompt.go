package translate

import (
	"fmt"
	"strings"

	"github.com/bft-labs/filetranslator/internal/domain"
)

// Prompt renders translation requests between two languages.
type Prompt struct {
	Source string
	Target string
}

// DefaultPrompt translates English to Romanian.
func DefaultPrompt() Prompt {
	return Prompt{Source: "English", Target: "Romanian"}
}

// Render builds the request text for one unit.
func (p Prompt) Render(text string) string {
	return fmt.Sprintf("Translate the following %s text to %s. Return only the %s translation, no additional text or formatting:\n\n%s",
		p.Source, p.Target, p.Target, text)
}

// Clean strips whitespace and markdown code fences that chat models wrap
// around their answer.
func Clean(response string) string {
	s := strings.TrimSpace(response)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s[3:], "json")
	}
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// finish cleans a raw response and rejects empty ones.
func finish(backend, response string) (string, error) {
	out := Clean(response)
	if out == "" {
		return "", fmt.Errorf("%w: %s returned an empty response", domain.ErrBackendFailure, backend)
	}
	return out, nil
}
