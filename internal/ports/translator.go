package ports

import "context"

// Translator is the translation backend.
// Implementations must wrap failures in domain.ErrBackendFailure.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}
