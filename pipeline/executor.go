package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"llmpipe/perr"
)

// StepTelemetry records one top-level child's execution outcome, per
// spec.md §6's telemetry record shape.
type StepTelemetry struct {
	Step     string
	Duration time.Duration
	Success  bool
}

// RunTelemetry summarizes one Executor.Run invocation: a correlation id,
// the wall-clock duration, per-top-level-child timings, and
// success/failure counts. Token totals are left at zero here since this
// package has no knowledge of any particular provider's response shape;
// callers that want token accounting attach it via a step's own declared
// writes and read it back out of the final state.
type RunTelemetry struct {
	RunID      string
	Root       string
	Duration   time.Duration
	Steps      []StepTelemetry
	Successes  int
	Failures   int
	Cancelled  bool
}

// Executor drives a single root Runnable to completion, injecting
// cancellation and recording telemetry around the run.
type Executor struct {
	log        *zap.SugaredLogger
	cancelled  atomic.Bool
}

// NewExecutor returns an Executor that logs through log. A nil log is
// replaced with a no-op logger so callers in tests don't need to construct
// one.
func NewExecutor(log *zap.SugaredLogger) *Executor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Executor{log: log}
}

// Cancel marks the executor cancelled. In-flight steps observe this
// through ctx.Err() on their next check; already-started steps are not
// forcibly interrupted, matching spec.md §5's cooperative cancellation
// model.
func (e *Executor) Cancel() {
	e.cancelled.Store(true)
}

// Run executes root against state, returning the accumulated telemetry.
// The returned error is whatever root.Execute returned. A Sequence or
// Parallel root returns nil for non-fatal child failures, which are
// recorded in state's error log and in the returned telemetry, and an
// error for fatal ones; a leaf root's error is returned whether or not the
// step is marked fatal.
func (e *Executor) Run(ctx context.Context, root Runnable, state *PipelineState) (RunTelemetry, error) {
	runID := uuid.NewString()
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := e.watchCancellation(ctx, cancel)
	defer stop()

	e.log.Infow("pipeline run starting", "run_id", runID, "root", root.Name())

	stepStart := time.Now()
	err := root.Execute(ctx, state)
	stepDuration := time.Since(stepStart)

	// A composite root (Sequence/Parallel) reports each top-level child's
	// own outcome; anything else is a single opaque unit. Without this,
	// a multi-child root with one non-fatal failing child would be
	// misreported as "1 succeeded, 0 failed" instead of counting every
	// child that ran (spec.md §8 scenario 2).
	var steps []StepTelemetry
	if cr, ok := root.(compositeRunnable); ok {
		steps = cr.childTelemetry()
	}
	if len(steps) == 0 {
		steps = []StepTelemetry{{Step: root.Name(), Duration: stepDuration, Success: err == nil}}
	}

	telemetry := RunTelemetry{
		RunID:    runID,
		Root:     root.Name(),
		Duration: time.Since(start),
		Steps:    steps,
	}

	for _, st := range steps {
		if st.Success {
			telemetry.Successes++
		} else {
			telemetry.Failures++
		}
	}

	var pe *perr.Error
	if asPerr(err, &pe) && pe.Kind == perr.KindCancelled {
		telemetry.Cancelled = true
	}

	e.log.Infow("pipeline run finished", "run_id", runID, "duration", telemetry.Duration, "error", err)
	return telemetry, err
}

// watchCancellation returns a stop function; while running, it cancels ctx
// (via cancel) as soon as e.Cancel has been called, polling at a short
// interval since Executor.cancelled has no associated channel to select
// on.
func (e *Executor) watchCancellation(ctx context.Context, cancel context.CancelFunc) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if e.cancelled.Load() {
					cancel()
					return
				}
			}
		}
	}()
	return func() { close(done) }
}
