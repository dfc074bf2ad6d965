package filetranslator

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/bft-labs/filetranslator/internal/adapters/fs"
	"github.com/bft-labs/filetranslator/internal/adapters/httpapi"
	logAdapter "github.com/bft-labs/filetranslator/internal/adapters/log"
	"github.com/bft-labs/filetranslator/internal/adapters/translate"
	"github.com/bft-labs/filetranslator/internal/app"
	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// Service owns the text and XML pipelines, their HTTP API and plugins.
// Use New() to create an instance.
type Service struct {
	config  Config
	logger  ports.Logger
	text    *app.Pipeline
	xml     *app.Pipeline
	handler http.Handler
	plugins []Plugin

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// New creates a Service with the given configuration.
// Returns an error if configuration is invalid or the backend cannot be built.
func New(cfg Config, opts ...Option) (*Service, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logAdapter.NewNoopLogger()
	}

	var emitter app.EventEmitter
	if o.eventHandler != nil {
		emitter = eventEmitterWrapper{handler: o.eventHandler}
	}

	translator := o.translator
	if translator == nil {
		t, err := translate.New(context.Background(), translate.Config{
			Backend:            cfg.Backend.Name,
			URL:                cfg.Backend.URL,
			Model:              cfg.Backend.Model,
			APIKey:             cfg.Backend.APIKey,
			SourceLanguage:     cfg.Backend.SourceLanguage,
			TargetLanguage:     cfg.Backend.TargetLanguage,
			BreakerEnabled:     cfg.Backend.BreakerEnabled,
			BreakerMaxFailures: cfg.Backend.BreakerMaxFailures,
			BreakerOpenTimeout: cfg.Backend.BreakerOpenTimeout,
			HTTPClient:         o.httpClient,
		}, logger)
		if err != nil {
			return nil, err
		}
		translator = t
	}

	text := app.NewPipeline(app.PipelineConfig{
		Mode:       domain.ModeText,
		Source:     fs.NewLineSource(cfg.TextInput),
		Sink:       fs.NewLineSink(cfg.TextOutput),
		Translator: translator,
		Reports:    fs.NewReportFileRepository(cfg.StateDir, domain.ModeText),
		Logger:     logger,
		Emitter:    emitter,
		StallLimit: cfg.StallLimit,
	})

	xml := app.NewPipeline(app.PipelineConfig{
		Mode:   domain.ModeXML,
		Source: fs.NewXMLSource(cfg.XMLInput, logger),
		Sink: fs.NewXMLSink(cfg.XMLOutput, fs.Params{
			Addon:   cfg.XML.Addon,
			Source:  cfg.XML.Source,
			Dest:    cfg.XML.Dest,
			Version: cfg.XML.Version,
		}),
		Translator: translator,
		Reports:    fs.NewReportFileRepository(cfg.StateDir, domain.ModeXML),
		Logger:     logger,
		Emitter:    emitter,
		StallLimit: cfg.StallLimit,
	})

	return &Service{
		config:  cfg,
		logger:  logger,
		text:    text,
		xml:     xml,
		handler: httpapi.NewHandler(logger, text, xml),
		plugins: o.plugins,
	}, nil
}

// Start initializes plugins. Pipelines are usable without Start; it only
// matters when plugins are registered.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return domain.ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	pluginCfg := PluginConfig{
		Pipelines: s.Pipelines(),
		Logger:    s.logger,
	}
	for i, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			// Unwind the plugins that did start.
			for j := i - 1; j >= 0; j-- {
				_ = s.plugins[j].Shutdown(context.Background())
			}
			cancel()
			return err
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	s.cancel = cancel
	s.started = true
	return nil
}

// Shutdown stops running batches, waiting up to ShutdownTimeout, then shuts
// plugins down in reverse order. Returns ErrShutdownTimeout if a batch had
// to be cancelled.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, p := range s.Pipelines() {
		wg.Add(1)
		go func(i int, p *app.Pipeline) {
			defer wg.Done()
			errs[i] = p.Shutdown(s.config.ShutdownTimeout)
		}(i, p)
	}
	wg.Wait()

	for i := len(s.plugins) - 1; s.started && i >= 0; i-- {
		p := s.plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			errs = append(errs, err)
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.started = false
	return errors.Join(errs...)
}

// Text returns the text pipeline.
func (s *Service) Text() *Pipeline { return s.text }

// XML returns the XML pipeline.
func (s *Service) XML() *Pipeline { return s.xml }

// Pipelines returns both pipelines, text first.
func (s *Service) Pipelines() []*Pipeline { return []*Pipeline{s.text, s.xml} }

// Pipeline returns the pipeline for mode.
func (s *Service) Pipeline(mode Mode) (*Pipeline, error) {
	switch mode {
	case ModeText:
		return s.text, nil
	case ModeXML:
		return s.xml, nil
	}
	_, err := domain.ParseMode(string(mode))
	return nil, err
}

// Handler returns the JSON HTTP API.
func (s *Service) Handler() http.Handler { return s.handler }
