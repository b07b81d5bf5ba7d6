package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docscheck/internal/config"
)

// ErrIssuesFound signals a strict-mode failure: the run completed but the
// corpus has broken links or orphans. main maps it to exit code 1.
var ErrIssuesFound = errors.New("documentation issues found")

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docscheck.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check  CheckCmd  `cmd:"" default:"withargs" help:"Check a documentation directory for broken links and orphans"`
	Watch  WatchCmd  `cmd:"" help:"Recheck continuously as documentation files change"`
	Verify VerifyCmd `cmd:"" help:"Verify internal references in a rendered site directory"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configured file, falling back to defaults when the
// default path is absent.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(c.Config)
}

// resolveRoot picks the documentation root: CLI argument over config.
func resolveRoot(arg string, cfg *config.Config) string {
	if arg != "" {
		return arg
	}
	if cfg.Root != "" {
		return cfg.Root
	}
	return "."
}
