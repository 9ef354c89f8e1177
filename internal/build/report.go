package build

import (
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// Outcome is the final result state of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a structured record of a problem encountered by a stage.
type Issue struct {
	Stage    StageName     `json:"stage"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
	Skipped  int
}

// Report captures what a build run did.
type Report struct {
	Start time.Time
	End   time.Time

	Sources           int // paths matched by the source pattern
	Documents         int // records loaded
	Pages             int
	RenderedDocuments int
	RenderedPages     int // listing pages plus the index
	StaticFiles       int
	FeedsWritten      bool

	OutputDir   string
	Revision    string
	CacheBuster string

	Errors          []error // fatal errors causing build abortion (at most one)
	Warnings        []error
	Issues          []Issue
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount
	Outcome         Outcome
}

func newReport() *Report {
	return &Report{
		Start:           time.Now(),
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
	}
}

// addIssue records a stage error and mirrors it into Errors or Warnings.
func (r *Report) addIssue(se *StageError) {
	severity := SeverityError
	if se.Kind == StageErrorWarning {
		severity = SeverityWarning
		r.Warnings = append(r.Warnings, se)
	} else {
		r.Errors = append(r.Errors, se)
	}
	r.StageErrorKinds[se.Stage] = se.Kind
	r.Issues = append(r.Issues, Issue{Stage: se.Stage, Severity: severity, Message: se.Err.Error()})
}

// recordStageResult updates the per-stage counters and emits the stage result metric.
func (r *Report) recordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultWarning:
		sc.Warning++
		label = metrics.ResultWarning
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	case StageResultSkipped:
		sc.Skipped++
	}
	r.StageCounts[stage] = sc
	if recorder != nil && label != "" {
		recorder.IncStageResult(string(stage), label)
	}
}

// finish stamps the end time and derives the outcome.
func (r *Report) finish() {
	r.End = time.Now()
	r.deriveOutcome()
}

func (r *Report) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("documents=%d pages=%d rendered=%d static=%d duration=%s errors=%d warnings=%d stages=%d outcome=%s",
		r.Documents, r.Pages, r.RenderedDocuments+r.RenderedPages, r.StaticFiles,
		r.Duration().Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), len(r.StageDurations), r.Outcome)
}

// ErrorStrings flattens Errors for serialization.
func (r *Report) ErrorStrings() []string { return errorStrings(r.Errors) }

// WarningStrings flattens Warnings for serialization.
func (r *Report) WarningStrings() []string { return errorStrings(r.Warnings) }

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
