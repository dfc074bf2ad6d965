package filetranslator

import (
	"net/http"

	"github.com/bft-labs/filetranslator/internal/ports"
)

// Translator is a translation backend. Failures should wrap
// ErrBackendFailure.
type Translator = ports.Translator

// Option configures optional behavior of a Service.
type Option func(*options)

type options struct {
	logger       ports.Logger
	translator   ports.Translator
	httpClient   *http.Client
	eventHandler EventHandler
	plugins      []Plugin
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTranslator replaces the configured backend.
func WithTranslator(t Translator) Option {
	return func(o *options) {
		o.translator = t
	}
}

// WithHTTPClient sets the HTTP client used by the translation backend.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithEventHandler sets a handler for service events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the service starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
