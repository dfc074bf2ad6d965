package ports

import (
	"context"

	"github.com/bft-labs/filetranslator/internal/domain"
)

// EntrySource reads pending units from the input file.
type EntrySource interface {
	// Next returns the next pending unit.
	// Returns ok == false with a nil error when the file is absent or holds
	// no unit. Malformed entries are reported as absence, not as errors.
	Next(ctx context.Context) (unit domain.Unit, ok bool, err error)

	// Remove deletes the unit from the input file.
	Remove(ctx context.Context, unit domain.Unit) error

	// Count returns the number of units left. An absent file counts zero.
	Count(ctx context.Context) (int, error)

	// Path returns the input file path.
	Path() string

	// Exists reports whether the file is present.
	Exists() bool
}
