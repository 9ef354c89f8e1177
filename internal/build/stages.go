package build

import (
	"context"
	"errors"
	"fmt"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names.
const (
	StagePrepareOutput   StageName = "prepare_output"
	StageDiscoverSources StageName = "discover_sources"
	StageLoadDocuments   StageName = "load_documents"
	StagePaginate        StageName = "paginate"
	StageLoadTemplates   StageName = "load_templates"
	StageRenderDocuments StageName = "render_documents"
	StageRenderPages     StageName = "render_pages"
	StageRenderIndex     StageName = "render_index"
	StageRenderFeeds     StageName = "render_feeds"
	StageCopyStatic      StageName = "copy_static"
)

// StageErrorKind classifies the outcome of a failed stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError carries the stage and kind of a failure along with its cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
	StageResultSkipped  StageResult = "skipped"
)

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// errSkipped lets a stage report that it had nothing to do.
var errSkipped = errors.New("stage skipped")

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{defs: make([]StageDef, 0, 10)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.defs = append(p.defs, StageDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		p.Add(name, fn)
	}
	return p
}

// Build returns a copy of the stage definitions.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.defs))
	copy(out, p.defs)
	return out
}

// outcome is the normalized result of one stage execution.
type outcome struct {
	err    *StageError
	result StageResult
	abort  bool
}

// classify converts the raw error returned by a stage. Errors that are not
// StageErrors are fatal unless they stem from context cancellation.
func classify(stage StageName, err error) outcome {
	switch {
	case err == nil:
		return outcome{result: StageResultSuccess}
	case errors.Is(err, errSkipped):
		return outcome{result: StageResultSkipped}
	}

	var se *StageError
	if !errors.As(err, &se) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			se = newCanceledStageError(stage, err)
		} else {
			se = newFatalStageError(stage, err)
		}
	}

	switch se.Kind {
	case StageErrorWarning:
		return outcome{err: se, result: StageResultWarning}
	case StageErrorCanceled:
		return outcome{err: se, result: StageResultCanceled, abort: true}
	default:
		return outcome{err: se, result: StageResultFatal, abort: true}
	}
}
