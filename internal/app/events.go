package app

import "github.com/bft-labs/filetranslator/internal/domain"

// EventEmitter receives pipeline events. Calls are synchronous and come from
// the goroutine doing the work.
type EventEmitter interface {
	OnStateChange(mode domain.Mode, previous, current State, reason string)
	OnStep(mode domain.Mode, outcome domain.StepOutcome)
	OnBatchFinished(report *domain.BatchReport)
}

type noopEmitter struct{}

func (noopEmitter) OnStateChange(domain.Mode, State, State, string) {}
func (noopEmitter) OnStep(domain.Mode, domain.StepOutcome)          {}
func (noopEmitter) OnBatchFinished(*domain.BatchReport)             {}

// modeEmitter adapts an EventEmitter to the lifecycle of one pipeline.
type modeEmitter struct {
	mode    domain.Mode
	emitter EventEmitter
}

func (m modeEmitter) OnStateChange(previous, current State, reason string) {
	m.emitter.OnStateChange(m.mode, previous, current, reason)
}
