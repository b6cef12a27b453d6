package pipeline

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestExecutorRunSuccessTelemetry(t *testing.T) {
	defer goleak.VerifyNone(t)

	state := NewState()
	step := &writeStep{stepName: "root", key: Key{Name: "out", Type: "string"}, value: "done"}
	exec := NewExecutor(nil)

	telemetry, err := exec.Run(context.Background(), step, state)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if telemetry.Root != "root" {
		t.Errorf("telemetry.Root = %q", telemetry.Root)
	}
	if telemetry.Successes != 1 || telemetry.Failures != 0 {
		t.Errorf("telemetry = %+v, want 1 success 0 failures", telemetry)
	}
	if len(telemetry.Steps) != 1 || !telemetry.Steps[0].Success {
		t.Errorf("telemetry.Steps = %+v", telemetry.Steps)
	}
}

func TestExecutorRunRecordsFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	state := NewState()
	step := &writeStep{stepName: "root", key: Key{Name: "out", Type: "string"}, err: context.DeadlineExceeded, fatal: true}
	exec := NewExecutor(nil)

	telemetry, err := exec.Run(context.Background(), step, state)
	if err == nil {
		t.Fatal("expected Run() to surface the fatal root error")
	}
	if telemetry.Successes != 0 {
		t.Errorf("telemetry.Successes = %d, want 0", telemetry.Successes)
	}
}

func TestExecutorRunReportsPerChildOutcomesForCompositeRoot(t *testing.T) {
	defer goleak.VerifyNone(t)

	state := NewState()
	a := &writeStep{stepName: "a", key: Key{Name: "a", Type: "string"}, value: "A"}
	failing := &writeStep{stepName: "failing", key: Key{Name: "f", Type: "string"}, err: context.DeadlineExceeded}
	c := &writeStep{stepName: "c", key: Key{Name: "c", Type: "string"}, value: "C"}
	seq := &Sequence{SeqName: "seq", Children: []Runnable{a, failing, c}}
	exec := NewExecutor(nil)

	telemetry, err := exec.Run(context.Background(), seq, state)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil (failing child is non-fatal)", err)
	}
	if telemetry.Successes != 2 || telemetry.Failures != 1 {
		t.Errorf("telemetry = %+v, want 2 successes and 1 failure for a 3-child Sequence with one non-fatal failure", telemetry)
	}
	if len(telemetry.Steps) != 3 {
		t.Fatalf("telemetry.Steps = %+v, want one entry per child", telemetry.Steps)
	}
	if telemetry.Steps[0].Step != "a" || !telemetry.Steps[0].Success {
		t.Errorf("telemetry.Steps[0] = %+v", telemetry.Steps[0])
	}
	if telemetry.Steps[1].Step != "failing" || telemetry.Steps[1].Success {
		t.Errorf("telemetry.Steps[1] = %+v", telemetry.Steps[1])
	}
	if telemetry.Steps[2].Step != "c" || !telemetry.Steps[2].Success {
		t.Errorf("telemetry.Steps[2] = %+v", telemetry.Steps[2])
	}
}

func TestExecutorCancelStopsInFlightRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := NewExecutor(nil)
	blocking := &Func{
		FuncName: "blocking",
		Fn: func(ctx context.Context, s *PipelineState) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
				return nil
			}
		},
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		exec.Cancel()
	}()

	start := time.Now()
	_, err := exec.Run(context.Background(), blocking, NewState())
	if time.Since(start) > time.Second {
		t.Fatal("expected cancellation to interrupt the blocking step quickly")
	}
	if err == nil {
		t.Error("expected an error from the cancelled context")
	}
}
