package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docscheck/cmd/docscheck/commands"
	"git.home.luguber.info/inful/docscheck/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docscheck"),
		kong.Description("Static documentation checker: broken links, orphan documents, navigation cycles."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{})
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrIssuesFound):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "docscheck: %v\n", err)
		os.Exit(2)
	}
}
