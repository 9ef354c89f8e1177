package commands

import (
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Preset string `help:"Collection preset" enum:"articles,posts" default:"articles"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force, i.Preset); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Wrote %s configuration to %s\n", i.Preset, root.Config)
	return nil
}
