package pipeline

import "context"

// Runnable is the contract every pipeline step implements (spec.md §4.6).
// A step declares the state keys it reads and writes; combinators report
// the union of their children's declarations. The executor does not audit
// actual key access against these declarations. Whether a step can run
// under a Parallel combinator is decided by SupportsReadOnly.
type Runnable interface {
	// Name identifies the step in telemetry and error records.
	Name() string

	// Execute runs the step against a mutable state, performing whatever
	// side effect the step exists for (an HTTP call, a cache write, a
	// transform) and writing its declared output keys.
	Execute(ctx context.Context, state *PipelineState) error

	// DeclaredReads lists the state keys this step reads.
	DeclaredReads() []Key

	// DeclaredWrites lists the state keys this step writes. Execute must
	// not write any key outside this set.
	DeclaredWrites() []Key

	// SupportsReadOnly reports whether ExecuteReadOnly is implemented
	// meaningfully; a step that only supports mutating execution cannot
	// be placed under a Parallel combinator.
	SupportsReadOnly() bool

	// ExecuteReadOnly runs the step against an immutable snapshot,
	// returning its writes rather than applying them in place. Called
	// only when SupportsReadOnly reports true.
	ExecuteReadOnly(ctx context.Context, state ReadOnlyState) (map[Key]any, error)

	// IsFatal reports whether this step's failure aborts its parent
	// Sequence/Parallel unconditionally, per spec.md §4.6/§9's
	// continue-on-error-with-fatal-opt-in default.
	IsFatal() bool
}

// NonFatal is an embeddable helper that implements IsFatal() as false, the
// default for steps that do not need to abort their parent on failure.
type NonFatal struct{}

func (NonFatal) IsFatal() bool { return false }

// Fatal is an embeddable helper that implements IsFatal() as true.
type Fatal struct{}

func (Fatal) IsFatal() bool { return true }

// ReadOnlyUnsupported is an embeddable helper for steps that only support
// mutating execution.
type ReadOnlyUnsupported struct{}

func (ReadOnlyUnsupported) SupportsReadOnly() bool { return false }

func (ReadOnlyUnsupported) ExecuteReadOnly(ctx context.Context, state ReadOnlyState) (map[Key]any, error) {
	panic("pipeline: ExecuteReadOnly called on a step that does not support it")
}

// Func adapts a plain function into a Runnable with no declared keys and
// no read-only support, for small ad hoc steps (glue code, logging) that
// do not participate in the state-access contract.
type Func struct {
	NonFatal
	ReadOnlyUnsupported
	FuncName string
	Fn       func(ctx context.Context, state *PipelineState) error
}

func (f Func) Name() string                              { return f.FuncName }
func (f Func) Execute(ctx context.Context, s *PipelineState) error { return f.Fn(ctx, s) }
func (f Func) DeclaredReads() []Key                       { return nil }
func (f Func) DeclaredWrites() []Key                      { return nil }
