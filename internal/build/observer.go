package build

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// Observer receives callbacks around stage execution and build lifecycle.
type Observer interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnBuildComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(StageName)                                 {}
func (NoopObserver) OnStageComplete(StageName, time.Duration, StageResult) {}
func (NoopObserver) OnBuildComplete(*Report)                                {}

// RecorderObserver adapts a metrics.Recorder into an Observer.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(StageName) {}

func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	if r.Recorder != nil && result != StageResultSkipped {
		r.Recorder.ObserveStageDuration(string(stage), d)
	}
}

func (r RecorderObserver) OnBuildComplete(report *Report) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveBuildDuration(report.Duration())
	r.Recorder.IncBuildOutcome(string(report.Outcome))
	r.Recorder.SetDocuments(report.Documents)
	r.Recorder.SetPages(report.Pages)
	if report.Outcome == OutcomeSuccess || report.Outcome == OutcomeWarning {
		r.Recorder.SetLastBuild(report.End)
	}
}

// LogObserver logs stage progress at debug level.
type LogObserver struct{ Logger *slog.Logger }

func (l LogObserver) OnStageStart(stage StageName) {
	l.Logger.Debug("Stage started", logfields.Stage(string(stage)))
}

func (l LogObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	l.Logger.Debug("Stage finished",
		logfields.Stage(string(stage)),
		logfields.DurationMS(ms(d)),
		logfields.Outcome(string(result)))
}

func (l LogObserver) OnBuildComplete(report *Report) {
	l.Logger.Debug("Build finished", logfields.Outcome(string(report.Outcome)), logfields.DurationMS(ms(report.Duration())))
}

// multiObserver fans callbacks out to several observers.
type multiObserver []Observer

func (m multiObserver) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m multiObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, result)
	}
}

func (m multiObserver) OnBuildComplete(report *Report) {
	for _, o := range m {
		o.OnBuildComplete(report)
	}
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
