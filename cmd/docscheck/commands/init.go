package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docscheck/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

// Run writes an example configuration file.
func (c *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.Init(root.Config, c.Force); err != nil {
		return err
	}
	fmt.Printf("Created configuration file: %s\n", root.Config)
	return nil
}
