package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/pipeline/steps"
	"github.com/jonathan/brand-studio/internal/runstate"
)

// recorder forwards step transitions of one run to the tracker and the
// progress callback. Tracker errors are logged and never fail the run.
type recorder struct {
	runID      string
	tracker    runstate.Tracker
	onProgress ProgressCallback
	logger     *slog.Logger
}

func (s *Studio) startRun(ctx context.Context, kind string, companyID int64, onProgress ProgressCallback) *recorder {
	rec := &recorder{
		runID:      s.newRunID(),
		tracker:    s.tracker,
		onProgress: onProgress,
	}
	rec.logger = s.logger.With("run_id", rec.runID, "kind", kind)

	if rec.tracker != nil {
		// Tracking writes outlive request cancellation so a cancelled run is
		// still recorded as failed.
		err := rec.tracker.StartRun(context.WithoutCancel(ctx), runstate.Run{ID: rec.runID, Kind: kind, CompanyID: companyID})
		if err != nil {
			rec.logger.Warn("failed to record run start", "error", err)
		}
	}
	rec.logger.Info("run started", "company_id", companyID)
	return rec
}

func (r *recorder) begin(ctx context.Context, step string) {
	now := time.Now().UTC()
	r.update(ctx, runstate.StepState{
		Step:      step,
		Category:  steps.StepRegistry[step].Category,
		Status:    steps.StatusInProgress,
		StartedAt: &now,
	})
	r.emit(step, steps.StatusInProgress, "started", nil)
}

func (r *recorder) end(ctx context.Context, step string, start time.Time, f *outcome.Failure, content any) {
	now := time.Now().UTC()
	state := runstate.StepState{
		Step:        step,
		Category:    steps.StepRegistry[step].Category,
		Status:      steps.StatusCompleted,
		CompletedAt: &now,
		DurationMs:  now.Sub(start).Milliseconds(),
	}
	if f != nil {
		state.Status = steps.StatusFailed
		state.FailureKind = string(f.Kind)
		state.Error = f.Error()
		r.update(ctx, state)
		r.emit(step, steps.StatusFailed, f.Error(), nil)
		return
	}
	r.update(ctx, state)
	r.emit(step, steps.StatusCompleted, fmt.Sprintf("completed in %s", now.Sub(start).Round(time.Millisecond)), content)
}

func (r *recorder) skip(ctx context.Context, step string) {
	r.update(ctx, runstate.StepState{
		Step:     step,
		Category: steps.StepRegistry[step].Category,
		Status:   steps.StatusSkipped,
	})
	r.emit(step, steps.StatusSkipped, "skipped", nil)
}

// done records the end of the run; f is nil for a successful run.
func (r *recorder) done(ctx context.Context, f *outcome.Failure) {
	status, kind, message := runstate.StatusCompleted, "", ""
	if f != nil {
		status, kind, message = runstate.StatusFailed, string(f.Kind), f.Error()
		r.logger.Warn("run failed", "failure_kind", f.Kind, "error", message)
	} else {
		r.logger.Info("run completed")
	}
	if r.tracker == nil {
		return
	}
	if err := r.tracker.FinishRun(context.WithoutCancel(ctx), r.runID, status, kind, message); err != nil {
		r.logger.Warn("failed to record run end", "error", err)
	}
}

func (r *recorder) update(ctx context.Context, state runstate.StepState) {
	if r.tracker == nil {
		return
	}
	if err := r.tracker.UpdateStep(context.WithoutCancel(ctx), r.runID, state); err != nil {
		r.logger.Warn("failed to record step", "step", state.Step, "status", state.Status, "error", err)
	}
}

func (r *recorder) emit(step, status, message string, content any) {
	if r.onProgress == nil {
		return
	}
	r.onProgress(ProgressEvent{
		Step:     step,
		Category: steps.StepRegistry[step].Category,
		Status:   status,
		Message:  message,
		RunID:    r.runID,
		Content:  content,
	})
}
