package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides output.directory)"`
	Clean  bool   `help:"Remove the output directory before building"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if err := applyOutputOverrides(cfg, b.Output, b.Clean); err != nil {
		return err
	}

	g.Logger.Info("Starting build",
		"version", version.Version,
		"config", root.Config,
		"output", cfg.OutputDir())

	builder, closeBuilder := newBuilder(cfg, g.Logger)
	defer closeBuilder()

	report, err := builder.Run(g.Context)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Built %d documents and %d pages into %s (%s)\n",
		report.Documents, report.Pages, report.OutputDir, report.Outcome)
	return nil
}

// applyOutputOverrides applies -o and --clean, then revalidates the output settings.
func applyOutputOverrides(cfg *config.Config, output string, clean bool) error {
	if output == "" && !clean {
		return nil
	}
	if output != "" {
		abs, err := filepath.Abs(output)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid output directory").
				WithContext("value", output).
				Build()
		}
		cfg.Output.Directory = abs
	}
	if clean {
		cfg.Output.Clean = true
	}
	return config.ValidateConfig(cfg)
}
