package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/filetranslator/internal/adapters/log"
	"github.com/bft-labs/filetranslator/internal/cliconfig"
	"github.com/bft-labs/filetranslator/pkg/filetranslator"
	"github.com/bft-labs/filetranslator/plugins/sourcewatch"
)

const longHelp = `Translate text files line by line and XML string tables entry by entry
through an LLM backend (Ollama, any OpenAI-compatible server, or Gemini).

Each step takes one unit off the front of the input, translates it and appends
it to the output, so an interrupted run resumes where it stopped.`

var exampleUsage = strings.TrimSpace(`
  filetranslator serve --listen :5000 --backend-url http://localhost:11434/v1
  filetranslator process-all --mode xml --xml-input strings_en.xml --xml-output strings_ro.xml
  filetranslator status --mode text
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the resolved configuration and logger between commands.
type cli struct {
	cfg      cliconfig.Config
	cfgPath  string
	logger   *logAdapter.ZerologAdapter
	closeLog func() error
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig()}
	bootLog := logAdapter.NewZerologAdapter(zerolog.InfoLevel).Logger()

	root := &cobra.Command{
		Use:               "filetranslator",
		Short:             "Incrementally translate text and XML string files with an LLM",
		Long:              longHelp,
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closeLog != nil {
				return c.closeLog()
			}
			return nil
		},
		RunE: c.serve,
	}

	c.bindFlags(root.PersistentFlags())

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default command)",
		RunE:  c.serve,
	}

	var mode string
	step := &cobra.Command{
		Use:   "step",
		Short: "Translate the next unit and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPipeline(cmd.Context(), mode, func(ctx context.Context, p *filetranslator.Pipeline) (any, error) {
				outcome, err := p.Step(ctx)
				if err != nil {
					return nil, err
				}
				if outcome.Status == filetranslator.StepFailed {
					return nil, errors.New(outcome.Message())
				}
				return map[string]any{
					"status":     outcome.Status.String(),
					"message":    outcome.Message(),
					"translated": outcome.Translated,
				}, nil
			})
		},
	}
	processAll := &cobra.Command{
		Use:   "process-all",
		Short: "Translate every remaining unit and print the batch report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPipeline(cmd.Context(), mode, func(ctx context.Context, p *filetranslator.Pipeline) (any, error) {
				return p.ProcessAll(ctx)
			})
		},
	}
	status := &cobra.Command{
		Use:   "status",
		Short: "Print remaining and translated counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPipeline(cmd.Context(), mode, func(ctx context.Context, p *filetranslator.Pipeline) (any, error) {
				return p.Status(ctx)
			})
		},
	}
	for _, sub := range []*cobra.Command{step, processAll, status} {
		sub.Flags().StringVar(&mode, "mode", string(filetranslator.ModeText), "pipeline to use: text or xml")
	}

	root.AddCommand(serve, step, processAll, status)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		bootLog.Error().Err(err).Msg("filetranslator")
		os.Exit(1)
	}
}

func (c *cli) bindFlags(fs *pflag.FlagSet) {
	cfg := &c.cfg

	fs.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.filetranslator/config.toml)")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")

	fs.StringVar(&cfg.TextInput, "text-input", cfg.TextInput, "text input file, one unit per line")
	fs.StringVar(&cfg.TextOutput, "text-output", cfg.TextOutput, "text output file")
	fs.StringVar(&cfg.XMLInput, "xml-input", cfg.XMLInput, "XML string table to translate")
	fs.StringVar(&cfg.XMLOutput, "xml-output", cfg.XMLOutput, "XML string table to append to")
	fs.StringVar(&cfg.XMLAddon, "xml-addon", cfg.XMLAddon, "addon name written to new XML output")
	fs.StringVar(&cfg.XMLSourceLang, "xml-source-lang", cfg.XMLSourceLang, "source language code written to new XML output")
	fs.StringVar(&cfg.XMLDestLang, "xml-dest-lang", cfg.XMLDestLang, "destination language code written to new XML output")
	fs.IntVar(&cfg.XMLVersion, "xml-version", cfg.XMLVersion, "version written to new XML output")

	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "translation backend: openai, gemini or echo")
	fs.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "OpenAI-compatible base URL")
	fs.StringVar(&cfg.BackendModel, "model", cfg.BackendModel, "model name")
	fs.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "backend API key")
	fs.StringVar(&cfg.SourceLanguage, "source-language", cfg.SourceLanguage, "language translated from")
	fs.StringVar(&cfg.TargetLanguage, "target-language", cfg.TargetLanguage, "language translated to")

	fs.BoolVar(&cfg.BreakerEnabled, "breaker", cfg.BreakerEnabled, "stop calling the backend after repeated failures")
	fs.IntVar(&cfg.BreakerMaxFailures, "breaker-max-failures", cfg.BreakerMaxFailures, "consecutive failures that open the breaker")
	fs.DurationVar(&cfg.BreakerOpenTimeout, "breaker-open-timeout", cfg.BreakerOpenTimeout, "how long the breaker stays open")

	fs.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for batch reports (defaults next to text output)")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "start a batch when an input file receives new content (serve only)")
	fs.DurationVar(&cfg.WatchDebounce, "watch-debounce", cfg.WatchDebounce, "quiet period before a watched change starts a batch")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "how long shutdown waits for a running batch")
	fs.IntVar(&cfg.StallLimit, "stall-limit", cfg.StallLimit, "end a batch after this many consecutive failures on the same unit (0 retries until stopped)")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write logs to this file")
}

// load resolves configuration with precedence flags > env > file > defaults.
func (c *cli) load(cmd *cobra.Command, args []string) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	// FILETRANSLATOR_* and the legacy variable names
	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := cliconfig.NewLogger(c.cfg)
	if err != nil {
		return err
	}
	c.logger = logger
	c.closeLog = closeLog

	logCfg := c.cfg
	if logCfg.APIKey != "" {
		logCfg.APIKey = "*****"
	}
	log := logger.Logger()
	log.Debug().Interface("config", logCfg).Msg("configuration")
	return nil
}

func (c *cli) newService(opts ...filetranslator.Option) (*filetranslator.Service, error) {
	opts = append([]filetranslator.Option{filetranslator.WithLogger(c.logger)}, opts...)
	svc, err := filetranslator.New(c.cfg.Service(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

func (c *cli) serve(cmd *cobra.Command, args []string) error {
	log := c.logger.Logger()

	var opts []filetranslator.Option
	if c.cfg.Watch {
		opts = append(opts, sourcewatch.WithSourceWatch(sourcewatch.Config{
			DebounceDelay: c.cfg.WatchDebounce,
		}))
	}
	svc, err := c.newService(opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := &http.Server{Addr: c.cfg.ListenAddr, Handler: svc.Handler()}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.cfg.ListenAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("received signal, stopping...")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("service shutdown")
	}
	return serveErr
}

// withPipeline runs fn against one pipeline and prints its result as JSON.
func (c *cli) withPipeline(ctx context.Context, mode string, fn func(context.Context, *filetranslator.Pipeline) (any, error)) error {
	svc, err := c.newService()
	if err != nil {
		return err
	}
	defer svc.Shutdown(context.Background())

	m, err := parseMode(mode)
	if err != nil {
		return err
	}
	p, err := svc.Pipeline(m)
	if err != nil {
		return err
	}

	result, err := fn(ctx, p)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func parseMode(s string) (filetranslator.Mode, error) {
	switch m := filetranslator.Mode(strings.ToLower(s)); m {
	case filetranslator.ModeText, filetranslator.ModeXML:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want text or xml)", s)
}
