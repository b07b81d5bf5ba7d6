package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/docscheck/internal/htmlscan"
	"git.home.luguber.info/inful/docscheck/internal/report"
)

// VerifyCmd implements the 'verify' command for rendered site output.
type VerifyCmd struct {
	SiteDir string `arg:"" help:"Rendered site directory (static-site generator output)"`
	Strict  bool   `help:"Exit with code 1 when broken references are found"`
	Format  string `short:"f" help:"Report format (text or json)" enum:",text,json" default:""`
}

// Run walks the rendered site and validates its internal references.
func (c *VerifyCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}

	result, err := htmlscan.VerifySite(c.SiteDir)
	if err != nil {
		return err
	}

	if err := report.NewFormatter(cfg.Format).Format(os.Stdout, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if (c.Strict || cfg.Strict) && result.HasIssues() {
		return ErrIssuesFound
	}
	return nil
}
