// Package sourcewatch starts a batch whenever new content lands in a
// pipeline's input file.
package sourcewatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/filetranslator/pkg/filetranslator"
)

// Config holds configuration options for the source watcher plugin.
type Config struct {
	// DebounceDelay is the quiet period after a change before a batch starts.
	// Default: 500 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 500 * time.Millisecond}
}

// target is one watched input file.
type target struct {
	pipeline *filetranslator.Pipeline
	path     string
	size     int64
	debounce *time.Timer
}

// Plugin watches the input files of all pipelines. A batch is started when a
// file grows; the pipelines themselves only ever shrink their inputs.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration
	logger        filetranslator.Logger
	targets       map[string]*target
	watcher       *fsnotify.Watcher
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// New creates a new source watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 500 * time.Millisecond
	}
	return &Plugin{debounceDelay: cfg.DebounceDelay}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "sourcewatch"
}

// Initialize starts watching the directories of the input files.
func (p *Plugin) Initialize(ctx context.Context, cfg filetranslator.PluginConfig) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	p.mu.Lock()
	p.logger = cfg.Logger
	p.watcher = watcher
	p.targets = make(map[string]*target)
	dirs := make(map[string]bool)
	for _, pl := range cfg.Pipelines {
		path := filepath.Clean(pl.InputPath())
		p.targets[path] = &target{pipeline: pl, path: path, size: fileSize(path)}
		dirs[filepath.Dir(path)] = true
	}
	p.mu.Unlock()

	for dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			watcher.Close()
			return fmt.Errorf("create input dir: %w", err)
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("source watcher initialized")

	p.wg.Add(1)
	go p.watchLoop(watchCtx)
	return nil
}

// Shutdown stops the watcher and any pending debounce timers.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.targets {
		if t.debounce != nil {
			t.debounce.Stop()
		}
	}
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()
	defer p.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.changed(ctx, filepath.Clean(event.Name))

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("source watcher error", filetranslator.LogField{Key: "error", Value: err})
		}
	}
}

func (p *Plugin) changed(ctx context.Context, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.targets[path]
	if !ok {
		return
	}
	size := fileSize(path)
	grew := size > t.size
	t.size = size
	if !grew {
		return
	}

	if t.debounce != nil {
		t.debounce.Stop()
	}
	t.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.start(ctx, t)
	})
}

func (p *Plugin) start(ctx context.Context, t *target) {
	if ctx.Err() != nil {
		return
	}
	mode := filetranslator.LogField{Key: "mode", Value: string(t.pipeline.Mode())}

	count, err := t.pipeline.StartBatch(ctx)
	switch {
	case errors.Is(err, filetranslator.ErrAlreadyRunning), errors.Is(err, filetranslator.ErrNothingToProcess):
		p.logger.Debug("source changed, no batch started", mode, filetranslator.LogField{Key: "reason", Value: err.Error()})
	case err != nil:
		p.logger.Error("source changed, batch start failed", mode, filetranslator.LogField{Key: "error", Value: err})
	default:
		p.logger.Info("source changed, batch started", mode, filetranslator.LogField{Key: "count", Value: count})
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Ensure Plugin implements filetranslator.Plugin.
var _ filetranslator.Plugin = (*Plugin)(nil)
