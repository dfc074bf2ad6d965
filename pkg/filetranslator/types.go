package filetranslator

import (
	"github.com/bft-labs/filetranslator/internal/app"
	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// Re-exported types so callers need not import internal packages.
type (
	// Logger is the interface for structured logging.
	Logger = ports.Logger

	// LogField represents a structured log field.
	LogField = ports.Field

	// Pipeline exposes step, process-all, batch and status operations for
	// one mode.
	Pipeline = app.Pipeline

	// Mode selects text or XML units.
	Mode = domain.Mode

	// Unit is one translatable item.
	Unit = domain.Unit

	// StepOutcome is the result of a single step.
	StepOutcome = domain.StepOutcome

	// BatchReport is the tally of a batch run.
	BatchReport = domain.BatchReport

	// Status is a point-in-time view of a pipeline.
	Status = domain.Status

	// State is the batch state of a pipeline.
	State = app.State
)

const (
	ModeText = domain.ModeText
	ModeXML  = domain.ModeXML

	StepCompleted = domain.StepCompleted
	StepSkipped   = domain.StepSkipped
	StepSuccess   = domain.StepSuccess
	StepFailed    = domain.StepFailed

	StateIdle     = app.StateIdle
	StateRunning  = app.StateRunning
	StateStopping = app.StateStopping
)

// Errors returned by the service and its pipelines.
var (
	ErrAlreadyRunning   = domain.ErrAlreadyRunning
	ErrNotRunning       = domain.ErrNotRunning
	ErrBatchRunning     = domain.ErrBatchRunning
	ErrNothingToProcess = domain.ErrNothingToProcess
	ErrSinkCorruption   = domain.ErrSinkCorruption
	ErrBackendFailure   = domain.ErrBackendFailure
	ErrSpanMismatch     = domain.ErrSpanMismatch
	ErrShutdownTimeout  = domain.ErrShutdownTimeout
	ErrInvalidConfig    = domain.ErrInvalidConfig
)
