package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docscheck/internal/build"
	"git.home.luguber.info/inful/docscheck/internal/linkcheck"
	"git.home.luguber.info/inful/docscheck/internal/logfields"
	"git.home.luguber.info/inful/docscheck/internal/metrics"
	"git.home.luguber.info/inful/docscheck/internal/report"
	"git.home.luguber.info/inful/docscheck/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Root        string `arg:"" optional:"" help:"Documentation root directory (defaults to config root or .)"`
	Format      string `short:"f" help:"Report format (text or json), overrides config" enum:",text,json" default:""`
	External    bool   `help:"Also verify external links over HTTP"`
	MetricsAddr string `help:"Prometheus listen address, overrides config"`
}

// Run watches the root and rechecks on changes until interrupted.
func (c *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.External {
		cfg.External.Enabled = true
	}
	if c.MetricsAddr != "" {
		cfg.Watch.MetricsAddr = c.MetricsAddr
	}

	recorder := metrics.NewPrometheusRecorder(nil)
	runner := build.NewRunner(cfg).WithRecorder(recorder)

	if cfg.External.Enabled {
		checker, err := linkcheck.NewChecker(cfg.External)
		if err != nil {
			return fmt.Errorf("failed to set up external link checking: %w", err)
		}
		defer func() { _ = checker.Close() }()
		runner = runner.WithExternalChecker(checker)
	}

	docsRoot := resolveRoot(c.Root, cfg)
	formatter := report.NewFormatter(cfg.Format)

	check := func(ctx context.Context) {
		result, err := runner.Run(ctx, docsRoot)
		if err != nil {
			slog.Error("Check failed", logfields.Error(err))
			return
		}
		if err := formatter.Format(os.Stdout, result); err != nil {
			slog.Error("Failed to write report", logfields.Error(err))
		}
	}

	watcher, err := watch.NewWatcher(docsRoot, cfg.Watch, check)
	if err != nil {
		return err
	}
	if cfg.Watch.MetricsAddr != "" {
		watcher = watcher.WithMetricsHandler(recorder.Handler())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watcher.Run(ctx)
}
