package app

import (
	"context"
	"time"

	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// PipelineConfig wires one pipeline.
type PipelineConfig struct {
	Mode       domain.Mode
	Source     ports.EntrySource
	Sink       ports.EntrySink
	Translator ports.Translator
	// Reports is optional.
	Reports ports.ReportRepository
	Logger  ports.Logger
	// Emitter is optional.
	Emitter EventEmitter
	// StallLimit ends a batch after this many consecutive failures that
	// left the source unchanged. Zero keeps retrying until stopped.
	StallLimit int
}

// Pipeline is the set of operations exposed for one mode.
type Pipeline struct {
	mode      domain.Mode
	source    ports.EntrySource
	sink      ports.EntrySink
	stepper   *Stepper
	worker    *Worker
	lifecycle *Lifecycle
	logger    ports.Logger
	emitter   EventEmitter
}

// NewPipeline creates an idle pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = noopEmitter{}
	}
	lifecycle := NewLifecycle(cfg.Logger, modeEmitter{mode: cfg.Mode, emitter: emitter})
	stepper := NewStepper(cfg.Source, cfg.Sink, cfg.Translator, PolicyFor(cfg.Mode), cfg.Logger)

	return &Pipeline{
		mode:      cfg.Mode,
		source:    cfg.Source,
		sink:      cfg.Sink,
		stepper:   stepper,
		worker:    NewWorker(cfg.Mode, stepper, cfg.Source, lifecycle, cfg.Reports, cfg.Logger, emitter).WithStallLimit(cfg.StallLimit),
		lifecycle: lifecycle,
		logger:    cfg.Logger,
		emitter:   emitter,
	}
}

// Mode returns the pipeline's mode.
func (p *Pipeline) Mode() domain.Mode { return p.mode }

// InputPath returns the path of the source file.
func (p *Pipeline) InputPath() string { return p.source.Path() }

// Step processes a single unit. Returns ErrBatchRunning without touching
// either store while a batch is running.
func (p *Pipeline) Step(ctx context.Context) (domain.StepOutcome, error) {
	if p.lifecycle.IsRunning() {
		return domain.StepOutcome{}, domain.ErrBatchRunning
	}
	o, ok := p.stepper.StepUnless(ctx, p.lifecycle.IsRunning)
	if !ok {
		return domain.StepOutcome{}, domain.ErrBatchRunning
	}
	p.emitter.OnStep(p.mode, o)

	if o.Status == domain.StepFailed {
		p.logger.Warn("step failed",
			ports.String("mode", string(p.mode)),
			ports.String("reason", string(o.Reason)),
			ports.Err(o.Err),
		)
	} else {
		p.logger.Debug("step finished",
			ports.String("mode", string(p.mode)),
			ports.String("status", o.Status.String()),
		)
	}
	return o, nil
}

// ProcessAll drains the source synchronously.
func (p *Pipeline) ProcessAll(ctx context.Context) (*domain.BatchReport, error) {
	return p.worker.ProcessAll(ctx)
}

// StartBatch launches a background batch and returns the pre-count.
func (p *Pipeline) StartBatch(ctx context.Context) (int, error) {
	return p.worker.Start(ctx)
}

// StopBatch requests the running batch to stop.
func (p *Pipeline) StopBatch() error {
	return p.worker.Stop()
}

// Running reports whether a batch is running.
func (p *Pipeline) Running() bool {
	return p.worker.Running()
}

// Status recounts both stores.
func (p *Pipeline) Status(ctx context.Context) (domain.Status, error) {
	remaining, err := p.source.Count(ctx)
	if err != nil {
		return domain.Status{}, err
	}
	translated, err := p.sink.Count(ctx)
	if err != nil {
		return domain.Status{}, err
	}

	return domain.Status{
		Mode:         p.mode,
		InputPath:    p.source.Path(),
		InputExists:  p.source.Exists(),
		Remaining:    remaining,
		OutputPath:   p.sink.Path(),
		OutputExists: p.sink.Exists(),
		Translated:   translated,
		Running:      p.worker.Running(),
		LastRun:      p.worker.LastReport(ctx),
	}, nil
}

// Shutdown stops any batch, waiting up to timeout.
func (p *Pipeline) Shutdown(timeout time.Duration) error {
	return p.worker.Shutdown(timeout)
}
