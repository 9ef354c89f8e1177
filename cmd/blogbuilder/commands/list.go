package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Tags bool `help:"Include tags in the listing"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	paths, err := content.Discover(cfg.SourcePattern())
	if err != nil {
		return err
	}
	opts, err := content.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.Logger = g.Logger
	records, err := content.NewLoader(opts).Load(g.Context, paths)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	header := "DATE\tBASENAME\tLINK\tTITLE"
	if l.Tags {
		header += "\tTAGS"
	}
	_, _ = fmt.Fprintln(tw, header)
	for _, rec := range records {
		date := rec.Date
		if date == "" {
			date = "-"
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s", date, rec.Basename, rec.Link, rec.Title)
		if l.Tags {
			line += "\t" + strings.Join(rec.Tags, ",")
		}
		_, _ = fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "%d documents\n", len(records))
	return nil
}
