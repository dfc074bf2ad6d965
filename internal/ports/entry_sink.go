package ports

import (
	"context"

	"github.com/bft-labs/filetranslator/internal/domain"
)

// EntrySink appends translated units to the output file.
type EntrySink interface {
	// Append writes the translated unit, creating the file and any required
	// wrapper on first write.
	Append(ctx context.Context, unit domain.Unit, translated string) error

	// Count returns the number of units written. An absent file counts zero.
	Count(ctx context.Context) (int, error)

	// Path returns the output file path.
	Path() string

	// Exists reports whether the file is present.
	Exists() bool
}
