package filetranslator

import "context"

// Plugin extends a Service. Plugins are initialized in registration order
// by Start and shut down in reverse order by Shutdown.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin gets to work with.
type PluginConfig struct {
	// Pipelines holds the text and XML pipelines.
	Pipelines []*Pipeline
	Logger    Logger
}
