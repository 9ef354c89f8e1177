package build

import (
	"context"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/pagination"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

func stageDiscoverSources(_ context.Context, bs *BuildState) error {
	pattern := bs.Config.SourcePattern()
	paths, err := content.Discover(pattern)
	if err != nil {
		return newFatalStageError(StageDiscoverSources, err)
	}
	if len(paths) == 0 {
		bs.Logger.Info("No source documents matched", logfields.Path(pattern))
	}
	bs.Sources = paths
	bs.Report.Sources = len(paths)
	return nil
}

func stageLoadDocuments(ctx context.Context, bs *BuildState) error {
	opts, err := content.OptionsFromConfig(bs.Config)
	if err != nil {
		return newFatalStageError(StageLoadDocuments, err)
	}
	opts.Logger = bs.Logger
	if bs.Git != nil {
		opts.ModTimes = bs.Git
	}

	records, err := content.NewLoader(opts).Load(ctx, bs.Sources)
	if err != nil {
		return err
	}
	bs.Records = records
	bs.Report.Documents = len(records)
	bs.Logger.Info("Loaded documents", logfields.Count(len(records)))
	return nil
}

// stagePaginate windows the sorted records and assembles the site-wide props.
func stagePaginate(_ context.Context, bs *BuildState) error {
	bs.Pages = pagination.Paginate(bs.Records, bs.Config.Collection.PageSize)
	bs.Props = site.NewProps(bs.Config, bs.Records, bs.Pages, bs.Report.CacheBuster, bs.Report.Revision)
	bs.Report.CacheBuster = bs.Props.CacheBuster
	bs.Report.Pages = len(bs.Pages)
	return nil
}
