package build

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// runStages executes stages in order, recording timing and stopping on the
// first fatal error or cancellation.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.Name, ctx.Err())
			bs.Report.addIssue(se)
			bs.Report.recordStageResult(st.Name, StageResultCanceled, bs.Recorder)
			bs.Observer.OnStageComplete(st.Name, 0, StageResultCanceled)
			return se
		default:
		}

		bs.Observer.OnStageStart(st.Name)

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		out := classify(st.Name, err)
		if out.result != StageResultSkipped {
			bs.Report.StageDurations[st.Name] = dur
		}
		if out.err != nil {
			bs.Report.addIssue(out.err)
			if out.err.Kind == StageErrorWarning {
				bs.Logger.Warn("Stage finished with warning",
					logfields.Stage(string(st.Name)), logfields.Error(out.err.Err))
			}
		}
		bs.Report.recordStageResult(st.Name, out.result, bs.Recorder)
		bs.Observer.OnStageComplete(st.Name, dur, out.result)

		if out.abort {
			if out.err != nil {
				return out.err
			}
			return fmt.Errorf("stage %s aborted", st.Name)
		}
	}
	return nil
}
