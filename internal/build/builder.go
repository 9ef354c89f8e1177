package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/gitinfo"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/notify"
)

const notifyTimeout = 10 * time.Second

// textfileWriter is implemented by recorders that can export to a file.
type textfileWriter interface {
	WriteTextfile(path string) error
}

// Builder runs the pipeline for one configuration. A Builder may be reused
// for repeated runs but Run must not be called concurrently.
type Builder struct {
	cfg         *config.Config
	logger      *slog.Logger
	recorder    metrics.Recorder
	publisher   notify.Publisher
	observers   []Observer
	cacheBuster string
	useGit      bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used by the builder and its stages.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithPublisher sets the build event publisher.
func WithPublisher(p notify.Publisher) Option {
	return func(b *Builder) {
		if p != nil {
			b.publisher = p
		}
	}
}

// WithObserver adds a stage observer.
func WithObserver(o Observer) Option {
	return func(b *Builder) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// WithCacheBuster pins the asset cache-busting token instead of generating one per run.
func WithCacheBuster(token string) Option {
	return func(b *Builder) { b.cacheBuster = token }
}

// WithoutGit disables revision and commit time lookups.
func WithoutGit() Option {
	return func(b *Builder) { b.useGit = false }
}

// New creates a Builder for cfg.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:       cfg,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NopPublisher{},
		useGit:    true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Pipeline returns the ordered stage list for the current configuration.
func (b *Builder) Pipeline() []StageDef {
	return NewPipeline().
		Add(StagePrepareOutput, stagePrepareOutput).
		Add(StageDiscoverSources, stageDiscoverSources).
		Add(StageLoadDocuments, stageLoadDocuments).
		Add(StagePaginate, stagePaginate).
		Add(StageLoadTemplates, stageLoadTemplates).
		Add(StageRenderDocuments, stageRenderDocuments).
		Add(StageRenderPages, stageRenderPages).
		Add(StageRenderIndex, stageRenderIndex).
		AddIf(b.cfg.Feeds.IsEnabled(), StageRenderFeeds, stageRenderFeeds).
		Add(StageCopyStatic, stageCopyStatic).
		Build()
}

// Run executes one build. The report is always returned, also on failure.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	report := newReport()
	report.OutputDir = b.cfg.OutputDir()
	report.CacheBuster = b.cacheBuster

	observer := multiObserver{RecorderObserver{Recorder: b.recorder}, LogObserver{Logger: b.logger}}
	observer = append(observer, b.observers...)

	bs := newBuildState(b.cfg, report, b.logger, b.recorder, observer)
	if b.useGit {
		bs.Git = b.openRepo()
		if bs.Git != nil {
			report.Revision = bs.Git.Revision()
		}
	}

	err := runStages(ctx, bs, b.Pipeline())
	report.finish()
	observer.OnBuildComplete(report)

	b.logger.Info("Build complete", slog.String("summary", report.Summary()), logfields.Outcome(string(report.Outcome)))

	b.writeMetrics()
	b.publish(ctx, report)
	return report, err
}

func (b *Builder) openRepo() *gitinfo.Repo {
	dir := b.cfg.BaseDir
	if dir == "" {
		dir = "."
	}
	repo, err := gitinfo.Open(dir)
	if err != nil {
		if !errors.Is(err, gitinfo.ErrNotRepository) {
			b.logger.Warn("Git metadata unavailable", logfields.Path(dir), logfields.Error(err))
		}
		return nil
	}
	return repo
}

func (b *Builder) writeMetrics() {
	path := b.cfg.Monitoring.MetricsFile
	if path == "" {
		return
	}
	w, ok := b.recorder.(textfileWriter)
	if !ok {
		b.logger.Debug("Recorder cannot export a textfile", logfields.Path(path))
		return
	}
	if err := w.WriteTextfile(b.cfg.ResolvePath(path)); err != nil {
		b.logger.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
	}
}

// publish sends the build event. Failures are logged and never change the outcome.
func (b *Builder) publish(ctx context.Context, report *Report) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := b.publisher.Publish(ctx, NewEvent(report)); err != nil {
		b.logger.Warn("Failed to publish build event", logfields.Error(err))
	}
}

// NewEvent converts a report into the event published after each build.
func NewEvent(report *Report) notify.BuildEvent {
	return notify.BuildEvent{
		ID:          uuid.NewString(),
		Outcome:     string(report.Outcome),
		Documents:   report.Documents,
		Pages:       report.Pages,
		DurationMS:  report.Duration().Milliseconds(),
		Revision:    report.Revision,
		CacheBuster: report.CacheBuster,
		OutputDir:   report.OutputDir,
		Errors:      report.ErrorStrings(),
		Warnings:    report.WarningStrings(),
		FinishedAt:  report.End.UTC(),
	}
}
