package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the filetranslator domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when a batch is started while one is active.
	ErrAlreadyRunning = errors.New("filetranslator: batch already running")

	// ErrNotRunning is returned when a stop is requested with no active batch.
	ErrNotRunning = errors.New("filetranslator: no batch running")

	// ErrBatchRunning is returned when a single step is requested during a batch.
	ErrBatchRunning = errors.New("filetranslator: batch processing is currently running")

	// ErrNothingToProcess is returned when a batch is started on an empty source.
	ErrNothingToProcess = errors.New("filetranslator: nothing to process")

	// ErrSinkCorruption is returned when the XML sink lacks its closing Content marker.
	ErrSinkCorruption = errors.New("filetranslator: sink file is corrupted")

	// ErrBackendFailure is returned when the translation backend fails or returns nothing.
	ErrBackendFailure = errors.New("filetranslator: translation failed")

	// ErrSpanMismatch is returned when a unit's span no longer matches the source content.
	ErrSpanMismatch = errors.New("filetranslator: unit span no longer matches source")

	// ErrShutdownTimeout is returned when a batch does not finish within the shutdown bound.
	ErrShutdownTimeout = errors.New("filetranslator: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("filetranslator: invalid configuration")
)

// IOError reports a failed read, write or remove on one of the stores.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError wraps err with the operation and path that failed.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}
