package domain

import (
	"errors"
	"os"
)

// Kind is the error taxonomy exposed in logs and API responses.
type Kind string

const (
	KindUnknown        Kind = "unknown"
	KindNotFound       Kind = "not_found"
	KindBackendFailure Kind = "backend_failure"
	KindIOFailure      Kind = "io_failure"
	KindStateConflict  Kind = "state_conflict"
	KindSinkCorruption Kind = "sink_corruption"
)

// Classify maps an error to its Kind. Sentinels are checked before I/O
// errors because sink corruption is reported wrapped in an IOError.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	switch {
	case errors.Is(err, ErrAlreadyRunning), errors.Is(err, ErrNotRunning), errors.Is(err, ErrBatchRunning):
		return KindStateConflict
	case errors.Is(err, ErrSinkCorruption):
		return KindSinkCorruption
	case errors.Is(err, ErrBackendFailure):
		return KindBackendFailure
	case errors.Is(err, ErrNothingToProcess), errors.Is(err, os.ErrNotExist):
		return KindNotFound
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return KindIOFailure
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return KindIOFailure
	}
	return KindUnknown
}
