package build

import (
	"log/slog"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/gitinfo"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/pagination"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// BuildState carries mutable state and data shared across stages.
// Stages run sequentially, so no locking is needed.
type BuildState struct {
	Config   *config.Config
	Report   *Report
	Logger   *slog.Logger
	Recorder metrics.Recorder
	Observer Observer

	// Git is nil when the sources are not in a repository.
	Git *gitinfo.Repo

	Sources  []string
	Records  []*content.Record
	Pages    []*pagination.Page
	Props    site.Props
	Renderer *site.Renderer
}

func newBuildState(cfg *config.Config, report *Report, logger *slog.Logger, recorder metrics.Recorder, observer Observer) *BuildState {
	return &BuildState{
		Config:   cfg,
		Report:   report,
		Logger:   logger,
		Recorder: recorder,
		Observer: observer,
	}
}
