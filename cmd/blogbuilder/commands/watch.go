package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command. It does not serve the output.
type WatchCmd struct {
	Output   string `short:"o" help:"Output directory (overrides output.directory)"`
	Clean    bool   `help:"Remove the output directory before the first build"`
	Schedule string `help:"Also rebuild on this schedule (Go duration or cron expression)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if err := applyOutputOverrides(cfg, w.Output, w.Clean); err != nil {
		return err
	}
	if w.Schedule != "" {
		cfg.Watch.Schedule = w.Schedule
		if err := config.ValidateConfig(cfg); err != nil {
			return err
		}
	}

	builder, closeBuilder := newBuilder(cfg, g.Logger)
	defer closeBuilder()

	opts := watch.OptionsFromConfig(cfg)
	opts.Logger = g.Logger
	watcher := watch.New(opts, func(ctx context.Context, trigger string) error {
		report, err := builder.Run(ctx)
		if err != nil {
			return err
		}
		// only the first build may clean the output root
		cfg.Output.Clean = false
		_, _ = fmt.Fprintf(g.Out, "Built %d documents and %d pages (%s, %s)\n",
			report.Documents, report.Pages, trigger, report.Outcome)
		return nil
	})

	g.Logger.Info("Watching for changes; press Ctrl+C to stop", logfields.Path(cfg.BaseDir))
	return watcher.Run(g.Context)
}
