package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"llmpipe/perr"
)

// compositeRunnable is implemented by combinators that run more than one
// top-level child and can report each child's own outcome. The executor
// uses it to avoid collapsing a multi-child root into a single opaque
// success/failure count (spec.md §8 scenario 2).
type compositeRunnable interface {
	childTelemetry() []StepTelemetry
}

// Sequence runs its children in declaration order against the shared
// mutable state. A child's failure is recorded in the state's error log
// and execution continues to the next child unless the failed step (or
// the error kind itself, via perr's Fatal semantics) is fatal, per spec.md
// §9's "continue-on-error with fatal opt-in" resolution.
type Sequence struct {
	NonFatal
	SeqName  string
	Children []Runnable

	// lastRun holds each child's outcome from the most recent Execute
	// call, reported to the executor through childTelemetry. Like
	// Parallel.childErrs, this trades reuse-across-overlapping-runs safety
	// for simplicity, consistent with PipelineState's single-owner
	// discipline.
	lastRun []StepTelemetry
}

func (s *Sequence) Name() string { return s.SeqName }

func (s *Sequence) DeclaredReads() []Key {
	var keys []Key
	for _, c := range s.Children {
		keys = append(keys, c.DeclaredReads()...)
	}
	return keys
}

func (s *Sequence) DeclaredWrites() []Key {
	var keys []Key
	for _, c := range s.Children {
		keys = append(keys, c.DeclaredWrites()...)
	}
	return keys
}

func (s *Sequence) SupportsReadOnly() bool {
	for _, c := range s.Children {
		if !c.SupportsReadOnly() {
			return false
		}
	}
	return true
}

func (s *Sequence) ExecuteReadOnly(ctx context.Context, state ReadOnlyState) (map[Key]any, error) {
	merged := make(map[Key]any)
	for _, c := range s.Children {
		writes, err := c.ExecuteReadOnly(ctx, state)
		if err != nil {
			if c.IsFatal() || isFatalErr(err) {
				return merged, err
			}
			continue
		}
		for k, v := range writes {
			merged[k] = v
		}
	}
	return merged, nil
}

func (s *Sequence) Execute(ctx context.Context, state *PipelineState) error {
	s.lastRun = s.lastRun[:0]
	for _, c := range s.Children {
		if err := ctx.Err(); err != nil {
			state.AddError(StepError{Step: s.SeqName, Err: perr.Cancelled(s.SeqName), Fatal: true})
			return perr.Cancelled(s.SeqName)
		}
		childStart := time.Now()
		err := c.Execute(ctx, state)
		s.lastRun = append(s.lastRun, StepTelemetry{Step: c.Name(), Duration: time.Since(childStart), Success: err == nil})
		if err != nil {
			fatal := c.IsFatal() || isFatalErr(err)
			state.AddError(StepError{Step: c.Name(), Err: err, Fatal: fatal})
			if fatal {
				return err
			}
		}
	}
	return nil
}

// childTelemetry reports the outcome of each child from the most recent
// Execute call, implementing compositeRunnable.
func (s *Sequence) childTelemetry() []StepTelemetry {
	out := make([]StepTelemetry, len(s.lastRun))
	copy(out, s.lastRun)
	return out
}

func isFatalErr(err error) bool {
	var pe *perr.Error
	if ok := asPerr(err, &pe); ok {
		return pe.Fatal()
	}
	return false
}

func asPerr(err error, target **perr.Error) bool {
	for err != nil {
		if pe, ok := err.(*perr.Error); ok {
			*target = pe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Parallel runs its children concurrently against an immutable snapshot of
// the state taken at fan-out time (spec.md §4.7's read-only guarantee). It
// requires every child to support read-only execution; SupportsReadOnly on
// the Parallel itself reports the AND of its children's, per spec.md §9's
// resolution that a Parallel node's own read-only support is derived, not
// independently declared.
//
// Children's writes are merged into the real state after all children
// complete, in declaration order, so the merged result is identical
// regardless of which goroutine actually finished first (spec.md §4.7's
// "declaration-order output preservation regardless of completion order").
// When MaxConcurrency is positive, concurrency is bounded with
// errgroup.SetLimit; with the default of 0 every child starts at once.
type Parallel struct {
	NonFatal
	ParName        string
	Children       []Runnable
	MaxConcurrency int // 0 means unbounded

	// childErrs holds the non-fatal per-child errors from the most recent
	// Execute call, folded into the shared state's error log. Parallel
	// instances are not safe for concurrent reuse across overlapping
	// Execute calls, matching the single-owner state discipline documented
	// on PipelineState.
	childErrs []error

	// lastRun holds each child's outcome from the most recent run call,
	// reported to the executor through childTelemetry. Each goroutine in
	// run writes only its own index, so no synchronization is needed
	// beyond errgroup.Wait having already joined every goroutine.
	lastRun []StepTelemetry
}

func (p *Parallel) Name() string { return p.ParName }

func (p *Parallel) DeclaredReads() []Key {
	var keys []Key
	for _, c := range p.Children {
		keys = append(keys, c.DeclaredReads()...)
	}
	return keys
}

func (p *Parallel) DeclaredWrites() []Key {
	var keys []Key
	for _, c := range p.Children {
		keys = append(keys, c.DeclaredWrites()...)
	}
	return keys
}

func (p *Parallel) SupportsReadOnly() bool {
	for _, c := range p.Children {
		if !c.SupportsReadOnly() {
			return false
		}
	}
	return true
}

func (p *Parallel) ExecuteReadOnly(ctx context.Context, state ReadOnlyState) (map[Key]any, error) {
	results, err := p.run(ctx, state)
	if err != nil {
		return nil, err
	}
	merged := make(map[Key]any)
	for _, r := range results {
		for k, v := range r {
			merged[k] = v
		}
	}
	return merged, nil
}

// run executes every child concurrently against state and returns each
// child's writes in declaration order. A fatal child error cancels the
// remaining in-flight children and is returned; otherwise the non-fatal
// per-child errors are stored in p.childErrs for Execute to fold into the
// real state's error log.
func (p *Parallel) run(ctx context.Context, state ReadOnlyState) ([]map[Key]any, error) {
	results := make([]map[Key]any, len(p.Children))
	errs := make([]error, len(p.Children))
	lastRun := make([]StepTelemetry, len(p.Children))

	if !p.SupportsReadOnly() {
		return nil, perr.Internal(p.ParName + ": all children of a Parallel must support read-only execution")
	}

	g, gctx := errgroup.WithContext(ctx)
	if p.MaxConcurrency > 0 {
		g.SetLimit(p.MaxConcurrency)
	}

	for i, child := range p.Children {
		i, child := i, child
		g.Go(func() error {
			start := time.Now()
			writes, err := child.ExecuteReadOnly(gctx, state)
			lastRun[i] = StepTelemetry{Step: child.Name(), Duration: time.Since(start), Success: err == nil}
			if err != nil {
				errs[i] = err
				if child.IsFatal() || isFatalErr(err) {
					return err
				}
				return nil
			}
			results[i] = writes
			return nil
		})
	}

	fatalErr := g.Wait()
	p.lastRun = lastRun
	if fatalErr != nil {
		return results, fatalErr
	}
	p.childErrs = errs
	return results, nil
}

// childTelemetry reports the outcome of each child from the most recent run
// call, implementing compositeRunnable.
func (p *Parallel) childTelemetry() []StepTelemetry {
	out := make([]StepTelemetry, len(p.lastRun))
	copy(out, p.lastRun)
	return out
}

func (p *Parallel) Execute(ctx context.Context, state *PipelineState) error {
	snapshot := state.Snapshot()
	results, err := p.run(ctx, snapshot)
	if err != nil {
		state.AddError(StepError{Step: p.ParName, Err: err, Fatal: true})
		return err
	}
	for i, child := range p.Children {
		if p.childErrs != nil && p.childErrs[i] != nil {
			state.AddError(StepError{Step: child.Name(), Err: p.childErrs[i]})
		}
	}
	for _, writes := range results {
		for k, v := range writes {
			state.Set(k, v)
		}
	}
	return nil
}

// Conditional runs Then if Predicate(state) reports true, otherwise Else
// (if non-nil).
type Conditional struct {
	NonFatal
	CondName  string
	Predicate func(state *PipelineState) bool
	Then      Runnable
	Else      Runnable
}

func (c *Conditional) Name() string { return c.CondName }

func (c *Conditional) DeclaredReads() []Key {
	keys := c.Then.DeclaredReads()
	if c.Else != nil {
		keys = append(keys, c.Else.DeclaredReads()...)
	}
	return keys
}

func (c *Conditional) DeclaredWrites() []Key {
	keys := c.Then.DeclaredWrites()
	if c.Else != nil {
		keys = append(keys, c.Else.DeclaredWrites()...)
	}
	return keys
}

// SupportsReadOnly is always false: branch selection evaluates Predicate
// against a live *PipelineState, which a read-only snapshot cannot provide,
// so a Conditional can never sit under a Parallel combinator.
func (c *Conditional) SupportsReadOnly() bool { return false }

func (c *Conditional) ExecuteReadOnly(ctx context.Context, state ReadOnlyState) (map[Key]any, error) {
	panic("pipeline: Conditional's branch selection requires mutable state; it cannot run under ExecuteReadOnly")
}

func (c *Conditional) Execute(ctx context.Context, state *PipelineState) error {
	if c.Predicate(state) {
		return c.Then.Execute(ctx, state)
	}
	if c.Else != nil {
		return c.Else.Execute(ctx, state)
	}
	return nil
}
