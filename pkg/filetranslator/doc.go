// Package filetranslator provides an embeddable service that translates a
// plain text file line by line and an XML string table entry by entry.
//
// Each step removes one unit from the front of the input only after its
// translation was appended to the output, so the input always holds exactly
// the work that is left and a crash loses nothing.
//
// # Basic Usage
//
//	cfg := filetranslator.DefaultConfig()
//	cfg.XMLInput = "strings_en.xml"
//	cfg.XMLOutput = "strings_ro.xml"
//
//	svc, err := filetranslator.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := svc.XML().ProcessAll(ctx)
//
// The same operations are served over HTTP by [Service.Handler]:
// GET /{mode}/step, POST /{mode}/process-all, POST /{mode}/batch/start,
// POST /{mode}/batch/stop and GET /{mode}/status, where mode is text or xml.
//
// # Backends
//
// [BackendConfig] selects "openai" (any OpenAI-compatible server, Ollama
// included), "gemini" or "echo". Use [WithTranslator] to plug in your own.
//
// # Event Handling
//
// Implement [EventHandler] (or embed [BaseEventHandler]) and pass it via
// [WithEventHandler]. Events are called synchronously from the goroutine
// doing the work.
//
// # Plugins
//
//	import "github.com/bft-labs/filetranslator/plugins/sourcewatch"
//
//	svc, err := filetranslator.New(cfg,
//	    sourcewatch.WithSourceWatch(sourcewatch.DefaultConfig()),
//	)
//	err = svc.Start(ctx)
//	defer svc.Shutdown(ctx)
package filetranslator
