package build

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

func stageLoadTemplates(_ context.Context, bs *BuildState) error {
	opts := site.OptionsFromConfig(bs.Config, bs.Props.CacheBuster)
	opts.Logger = bs.Logger
	r, err := site.NewRenderer(opts)
	if err != nil {
		return newFatalStageError(StageLoadTemplates, err)
	}
	bs.Renderer = r
	return nil
}

func stageRenderDocuments(ctx context.Context, bs *BuildState) error {
	n, err := bs.Renderer.RenderDocuments(ctx, bs.Props)
	bs.Report.RenderedDocuments = n
	return err
}

func stageRenderPages(ctx context.Context, bs *BuildState) error {
	n, err := bs.Renderer.RenderPages(ctx, bs.Props)
	bs.Report.RenderedPages += n
	return err
}

func stageRenderIndex(ctx context.Context, bs *BuildState) error {
	if err := bs.Renderer.RenderIndex(ctx, bs.Props); err != nil {
		return err
	}
	bs.Report.RenderedPages++
	return nil
}

// stageRenderFeeds writes the RSS feed and sitemap. Without a base URL the
// stage is skipped, or reports a warning when feeds were explicitly enabled.
func stageRenderFeeds(ctx context.Context, bs *BuildState) error {
	feeds := bs.Config.Feeds
	if !feeds.IsEnabled() {
		return errSkipped
	}
	err := site.RenderFeeds(ctx, bs.Config.OutputDir(), bs.Props, feeds.Limit)
	if errors.Is(err, site.ErrNoBaseURL) {
		if feeds.Enabled == nil {
			bs.Logger.Info("Skipping feeds, site.base_url is not set")
			return errSkipped
		}
		return newWarnStageError(StageRenderFeeds, err)
	}
	if err != nil {
		return err
	}
	bs.Report.FeedsWritten = true
	return nil
}

func stageCopyStatic(ctx context.Context, bs *BuildState) error {
	src := bs.Config.StaticPath()
	n, err := site.CopyStatic(ctx, src, bs.Config.OutputDir())
	bs.Report.StaticFiles = n
	if err != nil {
		return err
	}
	if n > 0 {
		bs.Logger.Info("Copied static files", logfields.Path(src), logfields.Count(n))
	}
	return nil
}
