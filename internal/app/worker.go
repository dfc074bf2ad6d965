package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// DefaultProgressEvery is how many processed units pass between progress logs.
const DefaultProgressEvery = 100

// Worker runs at most one batch at a time over a Stepper.
type Worker struct {
	mode          domain.Mode
	stepper       *Stepper
	source        ports.EntrySource
	lifecycle     *Lifecycle
	reports       ports.ReportRepository
	logger        ports.Logger
	emitter       EventEmitter
	progressEvery int
	stallLimit    int

	mu   sync.RWMutex
	last *domain.BatchReport
}

// NewWorker creates a Worker. reports may be nil.
func NewWorker(
	mode domain.Mode,
	stepper *Stepper,
	source ports.EntrySource,
	lifecycle *Lifecycle,
	reports ports.ReportRepository,
	logger ports.Logger,
	emitter EventEmitter,
) *Worker {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Worker{
		mode:          mode,
		stepper:       stepper,
		source:        source,
		lifecycle:     lifecycle,
		reports:       reports,
		logger:        logger,
		emitter:       emitter,
		progressEvery: DefaultProgressEvery,
	}
}

// WithStallLimit sets how many consecutive failures leaving the source
// unchanged end a batch. Zero, the default, never ends it.
func (w *Worker) WithStallLimit(n int) *Worker {
	if n > 0 {
		w.stallLimit = n
	}
	return w
}

// Start launches a batch in the background and returns the number of units
// found by an advisory pre-count. The batch outlives ctx; use Stop or
// Shutdown to end it.
func (w *Worker) Start(ctx context.Context) (int, error) {
	if w.lifecycle.IsRunning() {
		return 0, domain.ErrAlreadyRunning
	}

	count, err := w.source.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, domain.ErrNothingToProcess
	}

	if err := w.lifecycle.TryStart("batch started"); err != nil {
		return 0, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.lifecycle.SetCancel(cancel)

	w.logger.Info("batch processing started",
		ports.String("mode", string(w.mode)),
		ports.Int("count", count),
	)

	go func() {
		defer cancel()
		w.run(runCtx)
	}()

	return count, nil
}

// ProcessAll drains the source in the caller's goroutine. It holds the batch
// state for its whole run, so it is exclusive with Start.
func (w *Worker) ProcessAll(ctx context.Context) (*domain.BatchReport, error) {
	if err := w.lifecycle.TryStart("process-all started"); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	w.lifecycle.SetCancel(cancel)

	return w.run(runCtx), nil
}

// Stop asks the running batch to stop after its in-flight unit.
// Returns ErrNotRunning when no batch is running.
func (w *Worker) Stop() error {
	if err := w.lifecycle.RequestStop("stop requested"); err != nil {
		return err
	}
	w.logger.Info("batch stop requested", ports.String("mode", string(w.mode)))
	return nil
}

// Shutdown requests a stop and waits up to timeout for the batch to exit.
// On timeout the batch context is cancelled and ErrShutdownTimeout returned.
func (w *Worker) Shutdown(timeout time.Duration) error {
	if w.lifecycle.IsRunning() {
		_ = w.lifecycle.RequestStop("shutdown")
	}
	if err := w.lifecycle.WaitWithTimeout(timeout); err != nil {
		w.lifecycle.Cancel()
		return err
	}
	return nil
}

// Running reports whether a batch is running.
func (w *Worker) Running() bool {
	return w.lifecycle.IsRunning()
}

// LastReport returns a copy of the most recent report, loading the persisted
// one when no batch has run in this process. Returns nil if there is none.
func (w *Worker) LastReport(ctx context.Context) *domain.BatchReport {
	w.mu.RLock()
	last := w.last
	w.mu.RUnlock()

	if last == nil && w.reports != nil {
		loaded, err := w.reports.Load(ctx)
		if err != nil {
			w.logger.Warn("failed to load batch report", ports.Err(err))
			return nil
		}
		last = loaded
	}
	if last == nil {
		return nil
	}
	cp := *last
	cp.Errors = append([]string(nil), last.Errors...)
	return &cp
}

// run drains the source and always returns the batch state to idle.
func (w *Worker) run(ctx context.Context) (report *domain.BatchReport) {
	report = domain.NewBatchReport(w.mode)

	defer func() {
		if r := recover(); r != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", domain.ReasonUnexpectedPanic, r))
			report.Aborted = true
			w.logger.Error("batch processing panicked",
				ports.String("mode", string(w.mode)),
				ports.Any("panic", r),
			)
		}
		report.Finish()
		w.finish(report)
		w.lifecycle.Finish("batch finished")
		w.logger.Debug("batch flags reset", ports.String("mode", string(w.mode)))
	}()

	w.drain(ctx, report)
	return report
}

func (w *Worker) drain(ctx context.Context, report *domain.BatchReport) {
	stalled := 0
	for {
		if w.lifecycle.StopRequested() {
			report.Stopped = true
			w.logger.Info("batch processing stopped by request",
				ports.String("mode", string(w.mode)),
				ports.Int("processed", report.Processed),
			)
			return
		}
		if ctx.Err() != nil {
			report.Stopped = true
			return
		}

		o := w.stepper.Step(ctx)
		w.emitter.OnStep(w.mode, o)

		switch o.Status {
		case domain.StepCompleted:
			w.logger.Info("batch processing completed, no more units",
				ports.String("mode", string(w.mode)),
			)
			return

		case domain.StepSkipped:
			stalled = 0
			report.Record(o)

		case domain.StepSuccess:
			stalled = 0
			report.Record(o)
			if report.Processed%w.progressEvery == 0 {
				w.logger.Info("batch progress",
					ports.String("mode", string(w.mode)),
					ports.Int("processed", report.Processed),
				)
			}

		case domain.StepFailed:
			report.Record(o)
			w.logger.Warn("unit failed",
				ports.String("mode", string(w.mode)),
				ports.String("reason", string(o.Reason)),
				ports.Err(o.Err),
			)
			if o.Fatal() {
				report.Aborted = true
				return
			}
			if !o.Retained {
				stalled = 0
				continue
			}
			stalled++
			if w.stallLimit > 0 && stalled >= w.stallLimit {
				w.logger.Error("batch stalled on the same unit, aborting",
					ports.String("mode", string(w.mode)),
					ports.Int("failures", stalled),
				)
				report.Aborted = true
				return
			}
		}
	}
}

func (w *Worker) finish(report *domain.BatchReport) {
	w.mu.Lock()
	w.last = report
	w.mu.Unlock()

	w.logger.Info("batch processing finished",
		ports.String("mode", string(w.mode)),
		ports.Int("processed", report.Processed),
		ports.Int("skipped", report.Skipped),
		ports.Int("errors", len(report.Errors)),
		ports.Bool("stopped", report.Stopped),
		ports.Bool("aborted", report.Aborted),
		ports.Duration("duration", report.Duration()),
	)

	if w.reports != nil {
		// The batch may have been cancelled; the report is still worth keeping.
		if err := w.reports.Save(context.Background(), report); err != nil {
			w.logger.Error("failed to save batch report", ports.Err(err))
		}
	}
	w.emitter.OnBatchFinished(report)
}
