package domain

import "errors"

// StepStatus is the terminal state of one step.
type StepStatus int

const (
	StepCompleted StepStatus = iota
	StepSkipped
	StepSuccess
	StepFailed
)

// String returns a human-readable representation of the status.
func (s StepStatus) String() string {
	switch s {
	case StepCompleted:
		return "completed"
	case StepSkipped:
		return "skipped"
	case StepSuccess:
		return "success"
	case StepFailed:
		return "error"
	default:
		return "unknown"
	}
}

// FailureReason tells which stage of a step failed.
type FailureReason string

const (
	ReasonNone            FailureReason = ""
	ReasonSourceRead      FailureReason = "source read failed"
	ReasonTranslation     FailureReason = "translation failed"
	ReasonSinkWrite       FailureReason = "sink write failed"
	ReasonSourceRemoval   FailureReason = "source removal failed"
	ReasonUnexpectedPanic FailureReason = "unexpected panic"
)

// Fatal reports whether a batch run must stop after this failure.
// A failed removal after a successful append leaves the unit in both stores.
func (r FailureReason) Fatal() bool {
	return r == ReasonSourceRemoval
}

// StepOutcome is the result of one step.
type StepOutcome struct {
	Status StepStatus
	Reason FailureReason
	Err    error

	// Unit is the unit that was processed; zero for StepCompleted.
	Unit Unit

	// Translated is the text written to the sink.
	Translated string

	// Retained is set when a failed unit is still at the head of the source.
	Retained bool
}

// Completed returns the outcome for an exhausted source.
func Completed() StepOutcome { return StepOutcome{Status: StepCompleted} }

// Skipped returns the outcome for an empty unit.
func Skipped(u Unit) StepOutcome { return StepOutcome{Status: StepSkipped, Unit: u, Translated: u.Payload} }

// Succeeded returns the outcome for a translated unit.
func Succeeded(u Unit, translated string) StepOutcome {
	return StepOutcome{Status: StepSuccess, Unit: u, Translated: translated}
}

// Failed returns the outcome for a failed stage.
func Failed(u Unit, reason FailureReason, err error) StepOutcome {
	return StepOutcome{Status: StepFailed, Unit: u, Reason: reason, Err: err}
}

// Fatal reports whether a batch run must stop after this outcome.
func (o StepOutcome) Fatal() bool {
	if o.Status != StepFailed {
		return false
	}
	return o.Reason.Fatal() || errors.Is(o.Err, ErrSinkCorruption)
}

// Message renders the failure for error tallies.
func (o StepOutcome) Message() string {
	if o.Status != StepFailed {
		return o.Status.String()
	}
	msg := string(o.Reason)
	if o.Unit.Payload != "" {
		msg += " for: " + o.Unit.Payload
	}
	if o.Err != nil {
		msg += ": " + o.Err.Error()
	}
	return msg
}
