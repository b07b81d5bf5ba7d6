package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/docscheck/internal/build"
	"git.home.luguber.info/inful/docscheck/internal/events"
	"git.home.luguber.info/inful/docscheck/internal/linkcheck"
	"git.home.luguber.info/inful/docscheck/internal/report"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Root     string `arg:"" optional:"" help:"Documentation root directory (defaults to config root or .)"`
	Strict   bool   `help:"Exit with code 1 when broken links or orphan documents are found"`
	Format   string `short:"f" help:"Report format (text or json), overrides config" enum:",text,json" default:""`
	External bool   `help:"Also verify external links over HTTP"`
}

// Run executes one check pass and writes the report to stdout.
func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.Strict {
		cfg.Strict = true
	}
	if c.External {
		cfg.External.Enabled = true
	}

	ctx := context.Background()
	runner := build.NewRunner(cfg)

	if cfg.External.Enabled {
		checker, err := linkcheck.NewChecker(cfg.External)
		if err != nil {
			return fmt.Errorf("failed to set up external link checking: %w", err)
		}
		defer func() { _ = checker.Close() }()
		runner = runner.WithExternalChecker(checker)
	}

	if cfg.Events.Enabled {
		pub, err := events.NewPublisher(cfg.Events)
		if err != nil {
			return fmt.Errorf("failed to set up event publishing: %w", err)
		}
		defer pub.Close()
		runner = runner.WithPublisher(pub)
	}

	result, err := runner.Run(ctx, resolveRoot(c.Root, cfg))
	if err != nil {
		return err
	}

	if err := report.NewFormatter(cfg.Format).Format(os.Stdout, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.Strict && result.HasIssues() {
		return ErrIssuesFound
	}
	return nil
}
