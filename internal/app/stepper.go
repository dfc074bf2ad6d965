package app

import (
	"context"
	"sync"

	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// Policy holds the per-mode differences of a step.
type Policy struct {
	// ForwardSkipped writes empty units to the sink with the source text as
	// the translation.
	ForwardSkipped bool

	// DropOnBackendFailure removes a unit whose translation failed instead
	// of leaving it at the head of the source.
	DropOnBackendFailure bool
}

// PolicyFor returns the step policy of a mode. XML entries are forwarded and
// dropped; text lines are neither.
func PolicyFor(mode domain.Mode) Policy {
	if mode == domain.ModeXML {
		return Policy{ForwardSkipped: true, DropOnBackendFailure: true}
	}
	return Policy{}
}

// Stepper moves one unit from source to sink. Steps are serialized so a
// unit's locate, translate, append and remove never interleave with another.
type Stepper struct {
	mu         sync.Mutex
	source     ports.EntrySource
	sink       ports.EntrySink
	translator ports.Translator
	policy     Policy
	logger     ports.Logger
}

// NewStepper creates a Stepper.
func NewStepper(source ports.EntrySource, sink ports.EntrySink, translator ports.Translator, policy Policy, logger ports.Logger) *Stepper {
	return &Stepper{
		source:     source,
		sink:       sink,
		translator: translator,
		policy:     policy,
		logger:     logger,
	}
}

// Step processes the next unit.
func (s *Stepper) Step(ctx context.Context) domain.StepOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step(ctx)
}

// StepUnless processes the next unit unless busy reports true once the
// step lock is held. The second result is false when the step was refused.
func (s *Stepper) StepUnless(ctx context.Context, busy func() bool) (domain.StepOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if busy() {
		return domain.StepOutcome{}, false
	}
	return s.step(ctx), true
}

func (s *Stepper) step(ctx context.Context) domain.StepOutcome {
	unit, ok, err := s.source.Next(ctx)
	if err != nil {
		o := domain.Failed(unit, domain.ReasonSourceRead, err)
		o.Retained = true
		return o
	}
	if !ok {
		return domain.Completed()
	}

	if unit.Empty() {
		if s.policy.ForwardSkipped {
			if err := s.sink.Append(ctx, unit, unit.Payload); err != nil {
				return retained(domain.Failed(unit, domain.ReasonSinkWrite, err))
			}
		}
		if err := s.source.Remove(ctx, unit); err != nil {
			return domain.Failed(unit, domain.ReasonSourceRemoval, err)
		}
		return domain.Skipped(unit)
	}

	translated, err := s.translator.Translate(ctx, unit.Payload)
	if err != nil {
		failed := domain.Failed(unit, domain.ReasonTranslation, err)
		// A cancelled request is not the unit's fault; keep it.
		if !s.policy.DropOnBackendFailure || ctx.Err() != nil {
			return retained(failed)
		}
		if rerr := s.source.Remove(ctx, unit); rerr != nil {
			s.logger.Error("failed to drop untranslated unit",
				ports.String("path", s.source.Path()),
				ports.Err(rerr),
			)
			return domain.Failed(unit, domain.ReasonSourceRemoval, rerr)
		}
		return failed
	}

	if err := s.sink.Append(ctx, unit, translated); err != nil {
		return retained(domain.Failed(unit, domain.ReasonSinkWrite, err))
	}
	if err := s.source.Remove(ctx, unit); err != nil {
		return domain.Failed(unit, domain.ReasonSourceRemoval, err)
	}
	return domain.Succeeded(unit, translated)
}

func retained(o domain.StepOutcome) domain.StepOutcome {
	o.Retained = true
	return o
}
