package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/crimson-sun/gatekeeper/internal/config"
	"github.com/crimson-sun/gatekeeper/internal/engine/artifact"
	"github.com/crimson-sun/gatekeeper/internal/engine/composer"
	"github.com/crimson-sun/gatekeeper/internal/engine/segment"
	"github.com/crimson-sun/gatekeeper/internal/engine/taxonomy"
	"github.com/crimson-sun/gatekeeper/internal/logging"
	"github.com/crimson-sun/gatekeeper/internal/model"
	"github.com/crimson-sun/gatekeeper/internal/output"
	"github.com/crimson-sun/gatekeeper/internal/output/async"
	"github.com/crimson-sun/gatekeeper/internal/output/file"
	"github.com/crimson-sun/gatekeeper/internal/output/multi"
	"github.com/crimson-sun/gatekeeper/internal/output/stdout"
	"github.com/crimson-sun/gatekeeper/internal/output/webhook"
	"github.com/crimson-sun/gatekeeper/internal/pipeline"
	"github.com/crimson-sun/gatekeeper/internal/server"
	"github.com/crimson-sun/gatekeeper/internal/service"
	"github.com/crimson-sun/gatekeeper/internal/store"
)

// errReported is returned after the failure has already been written.
var errReported = errors.New("failure reported")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "gatekeeper: %v\n", err)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "gatekeeper",
		Usage:   "detect logical fallacies in text",
		Version: config.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model-dir", Usage: "directory holding stage1/stage2 artifacts"},
			&cli.Float64Flag{Name: "threshold", Usage: "stage-2 confidence floor"},
			&cli.BoolFlag{Name: "fallback", Usage: "use rule-based detection when models are missing", Value: true},
			&cli.StringFlag{Name: "metadata", Usage: "YAML metadata overlay"},
			&cli.StringFlag{Name: "rules", Usage: "YAML rule table"},
			&cli.IntFlag{Name: "min-words", Usage: "sentences need more than this many words"},
			&cli.BoolFlag{Name: "language-guard", Usage: "skip non-English sentences"},
			&cli.BoolFlag{Name: "pretty", Usage: "indent JSON output"},
			&cli.StringFlag{Name: "verbosity", Usage: "minimal or standard"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		HideVersion:    true,
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:      "classify",
				Usage:     "classify one sentence and print the result as JSON",
				ArgsUsage: "<text>",
				Action:    classifyAction,
			},
			{
				Name:      "split",
				Usage:     "print the sentences a passage splits into",
				ArgsUsage: "<text>",
				Action:    splitAction,
			},
			{
				Name:      "scan",
				Usage:     "classify every sentence of a file (or stdin), one passage per line",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dedup", Usage: "classify repeated sentences once"},
					&cli.StringFlag{Name: "output-file", Usage: "also append results to this rotating file"},
					&cli.BoolFlag{Name: "fallacies-only", Usage: "write only fallacies to the output file"},
				},
				Action: scanAction,
			},
			{
				Name:      "rules",
				Usage:     "run the rule table alone",
				ArgsUsage: "<text>",
				Action:    rulesAction,
			},
			{
				Name:   "labels",
				Usage:  "list labels with their metadata",
				Action: labelsAction,
			},
			{
				Name:  "serve",
				Usage: "serve the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address"},
					&cli.StringFlag{Name: "db", Usage: "highlight database path, empty disables"},
					&cli.StringFlag{Name: "webhook", Usage: "forward results to this URL"},
				},
				Action: serveAction,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, config.Version)
					return nil
				},
			},
		},
	}
}

// loadConfig reads the environment and applies flags that were set
// explicitly.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Load()
	if c.IsSet("model-dir") {
		cfg.Engine.ModelDir = c.String("model-dir")
	}
	if c.IsSet("threshold") {
		cfg.Engine.ConfidenceThreshold = c.Float64("threshold")
	}
	if c.IsSet("fallback") {
		cfg.Engine.Fallback = c.Bool("fallback")
	}
	if c.IsSet("metadata") {
		cfg.Engine.MetadataPath = c.String("metadata")
	}
	if c.IsSet("rules") {
		cfg.Engine.RulesPath = c.String("rules")
	}
	if c.IsSet("min-words") {
		cfg.Engine.MinWords = c.Int("min-words")
	}
	if c.IsSet("language-guard") {
		cfg.Engine.LanguageGuard = c.Bool("language-guard")
	}
	if c.IsSet("pretty") {
		cfg.Output.Pretty = c.Bool("pretty")
	}
	if c.IsSet("verbosity") {
		cfg.Output.Verbosity = c.String("verbosity")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("output-file") {
		cfg.Output.File = c.String("output-file")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("db") {
		cfg.Server.DBPath = c.String("db")
	}
	if c.IsSet("webhook") {
		cfg.Server.WebhookURL = c.String("webhook")
	}
	// Without fallback, missing models are reported per command instead of
	// failing validation.
	check := cfg
	check.Engine.Fallback = true
	if err := check.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// setup loads configuration, installs the logger and builds the service.
// stdout carries results in every command, so logs go to stderr.
func setup(c *cli.Context) (config.Config, *service.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return cfg, nil, err
	}
	logger := logging.New(c.App.ErrWriter, true, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	svc, err := service.New(cfg.Engine, logger)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, svc, nil
}

func resultWriter(c *cli.Context, cfg config.Config) (*stdout.Output, error) {
	v, err := output.ParseVerbosity(cfg.Output.Verbosity)
	if err != nil {
		return nil, err
	}
	return stdout.NewWriter(c.App.Writer, v, cfg.Output.Pretty), nil
}

func inputText(c *cli.Context) string {
	return strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
}

func reportMissingInput(c *cli.Context, usage string) error {
	writeJSON(c.App.Writer, map[string]string{
		"error": "no text provided",
		"usage": "gatekeeper " + c.Command.Name + " " + usage,
	})
	return errReported
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func classifyAction(c *cli.Context) error {
	text := inputText(c)
	if text == "" {
		return reportMissingInput(c, "<text>")
	}

	cfg, svc, err := setup(c)
	if errors.Is(err, artifact.ErrModelUnavailable) {
		return printUnavailable(c, cfg, text)
	}
	if err != nil {
		return err
	}
	defer svc.Close()

	out, err := resultWriter(c, cfg)
	if err != nil {
		return err
	}
	res, err := svc.Classify(text)
	if err != nil {
		writeJSON(c.App.ErrWriter, map[string]string{"error": err.Error(), "sentence": text})
		return errReported
	}
	return out.Write(c.Context, res)
}

// printUnavailable prints the no_fallacy record with a warning, for when
// models are missing and the rule-based fallback is off.
func printUnavailable(c *cli.Context, cfg config.Config, text string) error {
	tax := taxonomy.Default()
	if cfg.Engine.MetadataPath != "" {
		if t, err := taxonomy.Load(cfg.Engine.MetadataPath); err == nil {
			tax = t
		}
	}
	res := composer.New(tax).Empty(text)
	res.Warning = service.UnavailableWarning(cfg.Engine.ModelDir)

	out, err := resultWriter(c, cfg)
	if err != nil {
		return err
	}
	return out.Write(c.Context, res)
}

func splitAction(c *cli.Context) error {
	text := inputText(c)
	if text == "" {
		return reportMissingInput(c, "<text>")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	sentences := segment.New(cfg.Engine.MinWords).Split(text)
	if sentences == nil {
		sentences = []string{}
	}
	writeJSON(c.App.Writer, sentences)
	return nil
}

func rulesAction(c *cli.Context) error {
	text := inputText(c)
	if text == "" {
		return reportMissingInput(c, "<text>")
	}
	cfg, svc, err := setup(c)
	if errors.Is(err, artifact.ErrModelUnavailable) {
		// The rule table needs no models.
		cfg.Engine.Fallback = true
		svc, err = service.New(cfg.Engine, slog.Default())
	}
	if err != nil {
		return err
	}
	defer svc.Close()

	out, err := resultWriter(c, cfg)
	if err != nil {
		return err
	}
	return out.Write(c.Context, svc.Rules(text))
}

func labelsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	tax := taxonomy.Default()
	if cfg.Engine.MetadataPath != "" {
		if tax, err = taxonomy.Load(cfg.Engine.MetadataPath); err != nil {
			return err
		}
	}

	type entry struct {
		Label       string `json:"label"`
		Title       string `json:"title"`
		Explanation string `json:"explanation"`
		Prompt      string `json:"prompt"`
	}
	var entries []entry
	for _, l := range tax.Labels() {
		md, _ := tax.Lookup(l)
		entries = append(entries, entry{Label: string(l), Title: md.Title, Explanation: md.Explanation, Prompt: md.Prompt})
	}
	writeJSON(c.App.Writer, entries)
	return nil
}

func scanAction(c *cli.Context) error {
	cfg, svc, err := setup(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	var in io.Reader = os.Stdin
	if c.Args().Len() > 0 && c.Args().First() != "-" {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	sink, err := scanOutput(c, cfg)
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if c.Bool("dedup") {
		opts = append(opts, pipeline.WithDedup())
	}
	p := pipeline.New(svc, svc.Splitter(), sink, opts...)
	defer p.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := p.Scan(ctx, in)
	slog.Info("scan finished",
		"passages", stats.Passages, "sentences", stats.Sentences,
		"fallacies", stats.Fallacies, "duplicates", stats.Duplicates,
		"skipped", stats.Skipped, "mode", svc.Mode())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func scanOutput(c *cli.Context, cfg config.Config) (output.Output, error) {
	std, err := resultWriter(c, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Output.File == "" {
		return std, nil
	}
	v, _ := output.ParseVerbosity(cfg.Output.Verbosity)
	var opts []file.Option
	if cfg.Output.FileMaxSize > 0 {
		opts = append(opts, file.WithMaxSize(cfg.Output.FileMaxSize))
	}
	if c.Bool("fallacies-only") {
		opts = append(opts, file.WithFallaciesOnly())
	}
	f, err := file.New(cfg.Output.File, v, opts...)
	if err != nil {
		return nil, err
	}
	return multi.New(std, f), nil
}

func serveAction(c *cli.Context) error {
	cfg, svc, err := setup(c)
	if err != nil {
		return err
	}
	defer svc.Close()
	logger := slog.Default()

	gin.SetMode(gin.ReleaseMode)
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	}

	if cfg.Server.DBPath != "" {
		st, err := store.Open(cfg.Server.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, server.WithStore(st))
	}

	if cfg.Server.WebhookURL != "" {
		v, _ := output.ParseVerbosity(cfg.Output.Verbosity)
		fwd := async.New(webhook.New(cfg.Server.WebhookURL, webhook.WithVerbosity(v)),
			async.WithDropOnFull(),
			async.WithDrainTimeout(cfg.ShutdownTimeout))
		defer fwd.Close()
		opts = append(opts, server.WithForwarder(fwd))
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if svc.Mode() != model.ModeModel {
		logger.Warn("serving rule-based results", "warning", svc.Warning())
	}
	return server.New(svc, opts...).Run(ctx, cfg.Server.Addr)
}
