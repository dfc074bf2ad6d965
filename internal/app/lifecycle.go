package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// DefaultShutdownTimeout bounds how long Shutdown waits for a batch.
const DefaultShutdownTimeout = 30 * time.Second

// State is the batch state of a pipeline.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	default:
		return "Unknown"
	}
}

// Lifecycle owns the batch state of one pipeline. Running and Stopping both
// count as running; Stopping means a stop was requested.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	cancel       context.CancelFunc
	done         chan struct{}
	logger       ports.Logger
	eventEmitter StateEmitter
}

// StateEmitter is called when the batch state changes.
type StateEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// NewLifecycle creates an idle lifecycle.
func NewLifecycle(logger ports.Logger, emitter StateEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TryStart moves Idle to Running in one critical section and registers the
// run, so WaitWithTimeout called after a successful TryStart always waits
// for the matching Finish. Returns ErrAlreadyRunning otherwise.
func (l *Lifecycle) TryStart(reason string) error {
	l.mu.Lock()
	if l.state != StateIdle {
		l.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	l.state = StateRunning
	l.done = make(chan struct{})
	l.mu.Unlock()

	l.emit(StateIdle, StateRunning, reason)
	return nil
}

// RequestStop moves Running to Stopping. A repeated request is a no-op.
// Returns ErrNotRunning when idle.
func (l *Lifecycle) RequestStop(reason string) error {
	l.mu.Lock()
	switch l.state {
	case StateIdle:
		l.mu.Unlock()
		return domain.ErrNotRunning
	case StateStopping:
		l.mu.Unlock()
		return nil
	}
	l.state = StateStopping
	l.mu.Unlock()

	l.emit(StateRunning, StateStopping, reason)
	return nil
}

// Finish returns to Idle from any state, clearing the stop request and
// releasing waiters.
func (l *Lifecycle) Finish(reason string) {
	l.mu.Lock()
	previous := l.state
	l.state = StateIdle
	l.cancel = nil
	if l.done != nil {
		close(l.done)
		l.done = nil
	}
	l.mu.Unlock()

	if previous != StateIdle {
		l.emit(previous, StateIdle, reason)
	}
}

// IsRunning reports whether a batch holds the stores.
func (l *Lifecycle) IsRunning() bool {
	return l.State() != StateIdle
}

// StopRequested reports whether the running batch was asked to stop.
func (l *Lifecycle) StopRequested() bool {
	return l.State() == StateStopping
}

func (l *Lifecycle) emit(previous, current State, reason string) {
	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(previous, current, reason)
	}

	l.logger.Info("batch state transition",
		ports.String("from", previous.String()),
		ports.String("to", current.String()),
		ports.String("reason", reason),
	)
}

// SetCancel stores the cancel function of the running batch.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel aborts the running batch context, if any.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// WaitWithTimeout waits for the current run, if any, to Finish.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	l.mu.RLock()
	done := l.done
	l.mu.RUnlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, cancelling batch",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
