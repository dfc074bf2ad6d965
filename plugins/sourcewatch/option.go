package sourcewatch

import "github.com/bft-labs/filetranslator/pkg/filetranslator"

// WithSourceWatch returns a filetranslator Option that starts a batch when
// an input file receives new content.
//
// Usage:
//
//	svc, err := filetranslator.New(cfg,
//	    sourcewatch.WithSourceWatch(sourcewatch.Config{
//	        DebounceDelay: time.Second,
//	    }),
//	)
func WithSourceWatch(cfg Config) filetranslator.Option {
	return filetranslator.WithPlugin(New(cfg))
}
