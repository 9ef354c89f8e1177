package build

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState() *BuildState {
	return newBuildState(nil, newReport(), quietLogger(), nil, NoopObserver{})
}

func failingFatalStage(_ context.Context, _ *BuildState) error {
	return newFatalStageError(StageName("fatal_stage"), errors.New("boom"))
}

func failingWarnStage(_ context.Context, _ *BuildState) error {
	return newWarnStageError(StageName("warn_stage"), errors.New("soft"))
}

func TestRunStages_ErrorClassification(t *testing.T) {
	bs := newTestState()
	ran := false
	stages := []StageDef{
		{StageName("warn_stage"), failingWarnStage},
		{StageName("fatal_stage"), failingFatalStage},
		{StageName("after"), func(context.Context, *BuildState) error { ran = true; return nil }},
	}

	err := runStages(context.Background(), bs, stages)
	require.Error(t, err)
	assert.False(t, ran, "stages after a fatal error must not run")

	report := bs.Report
	assert.Len(t, report.Warnings, 1)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, StageErrorWarning, report.StageErrorKinds["warn_stage"])
	assert.Equal(t, StageErrorFatal, report.StageErrorKinds["fatal_stage"])
	assert.Contains(t, report.StageDurations, StageName("warn_stage"))

	report.finish()
	assert.Equal(t, OutcomeFailed, report.Outcome)
}

func TestRunStages_PlainErrorsAreFatal(t *testing.T) {
	bs := newTestState()
	err := runStages(context.Background(), bs, []StageDef{
		{StageName("plain"), func(context.Context, *BuildState) error { return errors.New("disk full") }},
	})

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageErrorFatal, se.Kind)
	assert.Equal(t, StageName("plain"), se.Stage)
	assert.EqualError(t, err, "fatal stage plain: disk full")
}

func TestRunStages_ContextErrorFromStageIsCanceled(t *testing.T) {
	bs := newTestState()
	err := runStages(context.Background(), bs, []StageDef{
		{StageName("slow"), func(context.Context, *BuildState) error {
			return fmt.Errorf("render: %w", context.DeadlineExceeded)
		}},
	})

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageErrorCanceled, se.Kind)
	bs.Report.finish()
	assert.Equal(t, OutcomeCanceled, bs.Report.Outcome)
}

func TestRunStages_Canceled(t *testing.T) {
	bs := newTestState()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runStages(ctx, bs, []StageDef{{StagePrepareOutput, failingFatalStage}})
	require.Error(t, err)
	assert.Len(t, bs.Report.Errors, 1)
	assert.Equal(t, StageErrorCanceled, bs.Report.StageErrorKinds[StagePrepareOutput])
	assert.Equal(t, 1, bs.Report.StageCounts[StagePrepareOutput].Canceled)
}

func TestRunStages_SkippedStage(t *testing.T) {
	bs := newTestState()
	err := runStages(context.Background(), bs, []StageDef{
		{StageName("noop"), func(context.Context, *BuildState) error { return errSkipped }},
	})
	require.NoError(t, err)
	assert.NotContains(t, bs.Report.StageDurations, StageName("noop"))
	assert.Equal(t, 1, bs.Report.StageCounts["noop"].Skipped)

	bs.Report.finish()
	assert.Equal(t, OutcomeSuccess, bs.Report.Outcome)
}

func TestPipeline_AddIf(t *testing.T) {
	noop := func(context.Context, *BuildState) error { return nil }
	defs := NewPipeline().Add("a", noop).AddIf(false, "b", noop).AddIf(true, "c", noop).Build()

	names := make([]StageName, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []StageName{"a", "c"}, names)
}

func TestReport_Summary(t *testing.T) {
	r := newReport()
	r.Documents, r.Pages, r.RenderedDocuments, r.RenderedPages = 3, 1, 3, 2
	r.Warnings = append(r.Warnings, errors.New("w"))
	r.finish()

	s := r.Summary()
	assert.Contains(t, s, "documents=3 pages=1 rendered=5 static=0")
	assert.Contains(t, s, "errors=0 warnings=1")
	assert.Contains(t, s, "outcome=warning")
}
