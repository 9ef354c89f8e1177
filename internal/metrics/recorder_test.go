package metrics

import (
	"testing"
	"time"
)

// Compile-time interface checks.
var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("paginate", time.Millisecond)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("paginate", ResultCanceled)
	r.IncBuildOutcome("canceled")
	r.SetDocuments(0)
	r.SetPages(1)
	r.SetLastBuild(time.Time{})
}
