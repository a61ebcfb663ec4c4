package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CTAG07/funnelgen/pkg/landing"
	"github.com/CTAG07/funnelgen/pkg/manifest"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// options holds the command line flags.
type options struct {
	configPath  string
	history     int
	historyRun  string
	previewPath string
	args        []string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "./config.json", "path to the JSON configuration file")
	flag.IntVar(&opts.history, "history", 0, "list the `N` most recent runs from the manifest and exit")
	flag.StringVar(&opts.historyRun, "history-run", "", "print the run with this `id` and its pages from the manifest and exit")
	flag.StringVar(&opts.previewPath, "preview", "", "render the template in `file` for the first keyword to stdout and exit")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [-config path] [-history N | -history-run id | -preview file] [<main_site_url> <target_site_url> <keyword_list_path> <photo_list_path>]\n",
			os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.args = flag.Args()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Stdout, opts)
	stop()

	if err != nil {
		baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		baseLogger.Error("funnelgen failed", "error", err)
		os.Exit(1)
	}
}

// parseLogLevel maps a config log level to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// run loads the configuration and performs one generation. The history and
// preview options instead print to out and return without generating.
func run(ctx context.Context, out io.Writer, opts options) error {
	config, err := LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err = applyArgs(config.Generator, opts.args); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(config.Run.LogLevel)}))
	logger.Debug("Starting funnelgen", "version", Version, "commit", Commit, "build_date", BuildDate)

	var store *manifest.Store
	if config.Run.ManifestPath != "" {
		db, s, err := openManifest(config.Run.ManifestPath)
		if err != nil {
			return err
		}
		defer func() {
			s.Close()
			if err := db.Close(); err != nil {
				logger.Error("Failed to close manifest database", "error", err)
			}
		}()
		s.SetLogger(logger)
		store = s
	}

	if opts.history > 0 || opts.historyRun != "" {
		if store == nil {
			return errors.New("-history and -history-run need manifest_path to be set in the configuration")
		}
		if opts.historyRun != "" {
			return printRun(ctx, out, store, opts.historyRun)
		}
		return printHistory(ctx, out, store, opts.history)
	}

	tm, err := landing.NewTemplateManager(logger, config.Run.TemplateDir)
	if err != nil {
		return fmt.Errorf("failed to create template manager: %w", err)
	}
	g, err := landing.NewGenerator(config.Generator, tm)
	if err != nil {
		return err
	}
	g.SetLogger(logger)

	if opts.previewPath != "" {
		content, err := os.ReadFile(opts.previewPath)
		if err != nil {
			return fmt.Errorf("failed to read preview template: %w", err)
		}
		return g.Preview(out, string(content))
	}

	var runID string
	if store != nil {
		r, err := store.BeginRun(ctx, config.Generator.MainSiteURL, config.Generator.OutputDir)
		if err != nil {
			logger.Error("Failed to start manifest run, continuing without it", "error", err)
		} else {
			runID = r.ID
			g.SetRecorder(&manifestRecorder{store: store, runID: runID})
		}
	}

	result, runErr := g.Run(ctx)
	if result == nil {
		result = &landing.Result{}
	}

	if runID != "" {
		summary := manifest.Summary{Keywords: result.Keywords, Photos: result.Photos, Err: runErr}
		// The run may have been stopped by a signal; the outcome is still recorded.
		if err := store.FinishRun(context.WithoutCancel(ctx), runID, summary); err != nil {
			logger.Error("Failed to finish manifest run", "run_id", runID, "error", err)
		}
	}

	if runErr != nil {
		logger.Error("Generation aborted, sitemap not written",
			"pages", len(result.Pages), "keywords", result.Keywords, "error", runErr)
		return runErr
	}
	logger.Info("Generation complete",
		"pages", len(result.Pages), "keywords", result.Keywords, "photos", result.Photos,
		"sitemap", result.SitemapPath, "run_id", runID)
	return nil
}
