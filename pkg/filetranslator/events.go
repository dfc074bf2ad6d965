package filetranslator

import "github.com/bft-labs/filetranslator/internal/domain"

// StateChangeEvent reports a batch state transition of one pipeline.
type StateChangeEvent struct {
	Mode     Mode
	Previous State
	Current  State
	Reason   string
}

// StepEvent reports a finished step, from a direct request or a batch.
type StepEvent struct {
	Mode    Mode
	Outcome StepOutcome
}

// EventHandler receives service events. Calls are synchronous and come from
// the goroutine doing the work, so implementations should return quickly.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnStep(StepEvent)
	OnBatchFinished(*BatchReport)
}

// eventEmitterWrapper adapts EventHandler to app.EventEmitter.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e eventEmitterWrapper) OnStateChange(mode domain.Mode, previous, current State, reason string) {
	e.handler.OnStateChange(StateChangeEvent{Mode: mode, Previous: previous, Current: current, Reason: reason})
}

func (e eventEmitterWrapper) OnStep(mode domain.Mode, outcome domain.StepOutcome) {
	e.handler.OnStep(StepEvent{Mode: mode, Outcome: outcome})
}

func (e eventEmitterWrapper) OnBatchFinished(report *domain.BatchReport) {
	e.handler.OnBatchFinished(report)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only the events you care about.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnStep(StepEvent)               {}
func (BaseEventHandler) OnBatchFinished(*BatchReport)   {}
