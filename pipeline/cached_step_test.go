package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"llmpipe/cache"
)

func newTestCachedStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	return s
}

type countingStep struct {
	NonFatal
	key   Key
	calls atomic.Int32
}

func (c *countingStep) Name() string         { return "counting" }
func (c *countingStep) DeclaredReads() []Key  { return nil }
func (c *countingStep) DeclaredWrites() []Key { return []Key{c.key} }
func (c *countingStep) SupportsReadOnly() bool { return true }

func (c *countingStep) Execute(ctx context.Context, state *PipelineState) error {
	writes, err := c.ExecuteReadOnly(ctx, state.Snapshot())
	if err != nil {
		return err
	}
	for k, v := range writes {
		state.Set(k, v)
	}
	return nil
}

func (c *countingStep) ExecuteReadOnly(ctx context.Context, state ReadOnlyState) (map[Key]any, error) {
	c.calls.Add(1)
	return map[Key]any{c.key: "computed"}, nil
}

// slowCountingStep is countingStep with an artificial delay in
// ExecuteReadOnly, long enough that concurrent callers sharing a
// CachedStep's fingerprint key are guaranteed to overlap in-flight.
type slowCountingStep struct {
	NonFatal
	key   Key
	delay time.Duration
	calls atomic.Int32
}

func (c *slowCountingStep) Name() string          { return "slow-counting" }
func (c *slowCountingStep) DeclaredReads() []Key  { return nil }
func (c *slowCountingStep) DeclaredWrites() []Key { return []Key{c.key} }
func (c *slowCountingStep) SupportsReadOnly() bool { return true }

func (c *slowCountingStep) Execute(ctx context.Context, state *PipelineState) error {
	writes, err := c.ExecuteReadOnly(ctx, state.Snapshot())
	if err != nil {
		return err
	}
	for k, v := range writes {
		state.Set(k, v)
	}
	return nil
}

func (c *slowCountingStep) ExecuteReadOnly(ctx context.Context, state ReadOnlyState) (map[Key]any, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	return map[Key]any{c.key: "computed"}, nil
}

func wrapEncode(writes map[Key]any) ([]byte, error) {
	m := make(map[string]any, len(writes))
	for k, v := range writes {
		m[k.Name] = v
	}
	return json.Marshal(m)
}

func wrapDecode(outKey Key) func([]byte) (map[Key]any, error) {
	return func(data []byte) (map[Key]any, error) {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return map[Key]any{outKey: m[outKey.Name]}, nil
	}
}

func TestCachedStepMissThenHit(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newTestCachedStore(t)
	outKey := Key{Name: "result", Type: "string"}
	inner := &countingStep{key: outKey}

	cached := &CachedStep{
		Inner:            inner,
		Store:            store,
		FingerprintInput: func(*PipelineState) string { return "fixed-input" },
		Encode:           wrapEncode,
		Decode:           wrapDecode(outKey),
	}

	state1 := NewState()
	if err := cached.Execute(context.Background(), state1); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if cached.LastHit() {
		t.Error("expected first Execute() to be a cache miss")
	}
	if inner.calls.Load() != 1 {
		t.Fatalf("expected inner step to run once, ran %d times", inner.calls.Load())
	}

	state2 := NewState()
	if err := cached.Execute(context.Background(), state2); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !cached.LastHit() {
		t.Error("expected second Execute() with identical input to be a cache hit")
	}
	if inner.calls.Load() != 1 {
		t.Errorf("expected inner step to NOT run again on cache hit, total calls = %d", inner.calls.Load())
	}

	v, ok := state2.Get(outKey)
	if !ok || v != "computed" {
		t.Errorf("expected cached write to be applied, got %v", v)
	}
}

func TestCachedStepDifferentInputIsDifferentKey(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newTestCachedStore(t)
	outKey := Key{Name: "result", Type: "string"}
	inner := &countingStep{key: outKey}

	input := "a"
	cached := &CachedStep{
		Inner:            inner,
		Store:            store,
		FingerprintInput: func(*PipelineState) string { return input },
		Encode:           wrapEncode,
		Decode:           wrapDecode(outKey),
	}

	_ = cached.Execute(context.Background(), NewState())
	input = "b"
	_ = cached.Execute(context.Background(), NewState())

	if inner.calls.Load() != 2 {
		t.Errorf("expected inner step to run once per distinct fingerprint input, ran %d times", inner.calls.Load())
	}
}

// TestCachedStepSingleFlightCoalescesConcurrentCallers exercises spec.md
// §8's single-flight invariant directly: N concurrent callers sharing a
// CachedStep and fingerprint key must invoke the inner step at most once,
// with every caller observing the one shared result.
func TestCachedStepSingleFlightCoalescesConcurrentCallers(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newTestCachedStore(t)
	outKey := Key{Name: "result", Type: "string"}
	inner := &slowCountingStep{key: outKey, delay: 50 * time.Millisecond}

	cached := &CachedStep{
		Inner:            inner,
		Store:            store,
		FingerprintInput: func(*PipelineState) string { return "fixed-input" },
		Encode:           wrapEncode,
		Decode:           wrapDecode(outKey),
	}

	const callers = 20
	var wg sync.WaitGroup
	errs := make([]error, callers)
	states := make([]*PipelineState, callers)
	for i := 0; i < callers; i++ {
		states[i] = NewState()
	}

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		i := i
		go func() {
			defer wg.Done()
			errs[i] = cached.Execute(context.Background(), states[i])
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: Execute() error = %v", i, err)
		}
		v, ok := states[i].Get(outKey)
		if !ok || v != "computed" {
			t.Errorf("caller %d: expected shared result %q, got %v", i, "computed", v)
		}
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("expected inner step to run at most once across %d concurrent callers, ran %d times", callers, got)
	}
}
