// Package pipeline implements the execution substrate of spec.md §4.6-§4.8:
// a typed key-value state bag, the Step/Runnable contract, the Sequence/
// Parallel/Conditional combinators, and the executor that drives a step
// tree to completion while collecting telemetry.
package pipeline

import (
	"fmt"
	"sync"
)

// Key identifies one named, typed slot in a PipelineState. A state holds at
// most one Type per Name: spec.md §4.6 requires key type stability, so Set
// panics when a Name already stored under one Type is set with another.
type Key struct {
	Name string
	Type string // a human-readable type tag, e.g. "string", "[]byte", "modelcatalog.ModelVariant"
}

// StepError records one failure raised by a step during execution. Errors
// accumulate in declaration order and are never removed, per spec.md §4.6's
// append-only error log invariant.
type StepError struct {
	Step  string
	Err   error
	Fatal bool
}

// PipelineState is the typed key-value bag threaded through a step tree.
// It is owned by exactly one executor at a time (spec.md §4.6). Each method
// holds an internal mutex for the duration of the call, so single calls do
// not race; single ownership across a series of calls is not enforced.
type PipelineState struct {
	mu     sync.Mutex
	values map[Key]any
	errors []StepError
}

// NewState returns an empty PipelineState.
func NewState() *PipelineState {
	return &PipelineState{values: make(map[Key]any)}
}

// Get returns the value stored at key and whether it was present.
func (s *PipelineState) Get(key Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value at key. It panics if key was previously set with a
// different Type tag, enforcing spec.md §4.6's key type stability
// invariant at the point of violation rather than silently corrupting
// downstream readers.
func (s *PipelineState) Set(key Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for existing := range s.values {
		if existing.Name == key.Name && existing.Type != key.Type {
			panic(fmt.Sprintf("pipeline: key %q re-set with type %q, previously %q", key.Name, key.Type, existing.Type))
		}
	}
	s.values[key] = value
}

// Remove deletes the value stored at key, if any.
func (s *PipelineState) Remove(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// AddError appends e to the accumulated error log. Errors are never
// removed once added.
func (s *PipelineState) AddError(e StepError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, e)
}

// Errors returns a copy of the accumulated error log in append order.
func (s *PipelineState) Errors() []StepError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StepError, len(s.errors))
	copy(out, s.errors)
	return out
}

// HasFatalError reports whether any accumulated error is marked fatal.
func (s *PipelineState) HasFatalError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.errors {
		if e.Fatal {
			return true
		}
	}
	return false
}

// ReadOnlyState is an immutable view over a PipelineState, the only view a
// Parallel combinator's children receive (spec.md §4.7's read-only
// guarantee). It is a snapshot taken at fan-out time, not a live view, so
// sibling writes during a parallel run are never visible to other
// siblings.
type ReadOnlyState struct {
	values map[Key]any
}

// Snapshot captures s's current values into an immutable ReadOnlyState.
func (s *PipelineState) Snapshot() ReadOnlyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make(map[Key]any, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return ReadOnlyState{values: values}
}

// Get returns the value stored at key in the snapshot.
func (r ReadOnlyState) Get(key Key) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}
