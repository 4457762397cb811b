// CLAUDE:SUMMARY CLI entry point for revgraph — asset-revisioning builds, dry runs, stats, and a preview server.
// Command revgraph rewrites local asset references in a static HTML tree to
// content-hashed filenames and records the dependency graph of the build.
//
// Usage:
//
//	revgraph -config revgraph.yaml        # run with config file
//	revgraph -root ./public               # build with defaults
//	revgraph -root ./public -dry-run      # extract and report, rewrite nothing
//	revgraph -root ./public -stats        # show the latest build and exit
//	revgraph -root ./public -serve :8080  # preview server over the built root
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/revgraph/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to revgraph.yaml config file")
	root := flag.String("root", "", "build root to scan for HTML documents")
	dbPath := flag.String("db", "", "path to the manifest SQLite database")
	dryRun := flag.Bool("dry-run", false, "extract and report without rewriting")
	showStats := flag.Bool("stats", false, "show the latest recorded build and exit")
	serveAddr := flag.String("serve", "", "address to serve the built root on (e.g. :8080)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *root, *dbPath, *dryRun, *showStats, *serveAddr); err != nil {
		logger.Error("revgraph: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, root, dbPath string, dryRun, showStats bool, serveAddr string) error {
	cfg, err := resolveConfig(configPath, root, dbPath)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer p.Close()

	// One-shot: stats.
	if showStats {
		stats, err := p.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		return printJSON(stats)
	}

	// One-shot: dry run.
	if dryRun {
		report, err := p.Analyze(ctx)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		return printJSON(report)
	}

	// Preview server only, no build.
	if serveAddr != "" {
		return p.Serve(ctx, serveAddr)
	}

	report, err := p.Build(ctx)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return printJSON(report)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func resolveConfig(configPath, root, dbPath string) (*pipeline.Config, error) {
	var cfg *pipeline.Config
	if configPath != "" {
		loaded, err := pipeline.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &pipeline.Config{}
	}

	if root != "" {
		cfg.Root = root
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	if cfg.Root == "" {
		fmt.Fprintln(os.Stderr, "usage: revgraph -config <file> | -root <dir> [-db <path>] [-dry-run] [-stats] [-serve <addr>]")
		os.Exit(1)
	}
	return cfg, nil
}
