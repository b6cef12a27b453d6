package pipeline

import (
	"context"
	"sync"

	"llmpipe/cache"
	"llmpipe/fingerprint"
)

// CacheTelemetry records whether a CachedStep's most recent run was served
// from the artifact cache or computed fresh.
type CacheTelemetry struct {
	Hit bool
}

// flightGroup coalesces concurrent callers computing the same fingerprint
// key so only one of them actually runs the wrapped step, the others
// blocking until it finishes and sharing its result. golang.org/x/sync's
// singleflight package is not present in this module's dependency surface,
// so this is implemented directly against sync.Mutex/sync.Cond, following
// the same call-once-wake-all-waiters shape singleflight.Group provides.
type flightGroup struct {
	mu     sync.Mutex
	inFlight map[string]*flightCall
}

type flightCall struct {
	cond    *sync.Cond
	done    bool
	err     error
	writes  map[Key]any
}

func newFlightGroup() *flightGroup {
	return &flightGroup{inFlight: make(map[string]*flightCall)}
}

// do runs fn for key, coalescing concurrent callers with the same key onto
// a single execution of fn.
func (g *flightGroup) do(key string, fn func() (map[Key]any, error)) (map[Key]any, error) {
	g.mu.Lock()
	if call, ok := g.inFlight[key]; ok {
		for !call.done {
			call.cond.Wait()
		}
		g.mu.Unlock()
		return call.writes, call.err
	}

	call := &flightCall{cond: sync.NewCond(&g.mu)}
	g.inFlight[key] = call
	g.mu.Unlock()

	writes, err := fn()

	g.mu.Lock()
	call.writes, call.err, call.done = writes, err, true
	delete(g.inFlight, key)
	call.cond.Broadcast()
	g.mu.Unlock()

	return writes, err
}

// CachedStep wraps a Runnable with fingerprint-gated artifact caching
// (spec.md §4.7.4): before running Inner, it computes a fingerprint over
// the declared input state, checks the cache for a hit, and if found
// decodes the cached writes instead of re-running Inner. A single-flight
// group owned by the CachedStep instance coalesces concurrent callers
// computing the same fingerprint so the underlying step runs at most once
// per key at a time. Callers going through different CachedStep instances
// are not coalesced with each other, even for the same key.
type CachedStep struct {
	NonFatal
	Inner Runnable
	Store *cache.Store

	// FingerprintInput derives the string that gets fingerprinted into the
	// cache key, typically a serialization of Inner's declared read keys.
	FingerprintInput func(state *PipelineState) string

	// Encode/Decode translate Inner's writes to and from cache bytes.
	Encode func(writes map[Key]any) ([]byte, error)
	Decode func(data []byte) (map[Key]any, error)

	flight *flightGroup
	once   sync.Once

	lastHit bool
}

func (c *CachedStep) Name() string { return c.Inner.Name() + ".cached" }

func (c *CachedStep) DeclaredReads() []Key  { return c.Inner.DeclaredReads() }
func (c *CachedStep) DeclaredWrites() []Key { return c.Inner.DeclaredWrites() }

func (c *CachedStep) SupportsReadOnly() bool { return c.Inner.SupportsReadOnly() }

func (c *CachedStep) ExecuteReadOnly(ctx context.Context, state ReadOnlyState) (map[Key]any, error) {
	return c.Inner.ExecuteReadOnly(ctx, state)
}

// LastHit reports whether the most recent Execute call was served from
// cache. It is not safe to read concurrently with an in-flight Execute.
func (c *CachedStep) LastHit() bool { return c.lastHit }

func (c *CachedStep) group() *flightGroup {
	c.once.Do(func() { c.flight = newFlightGroup() })
	return c.flight
}

func (c *CachedStep) Execute(ctx context.Context, state *PipelineState) error {
	key := fingerprint.FastHex(c.FingerprintInput(state))

	writes, err := c.group().do(key, func() (map[Key]any, error) {
		if data, err := c.Store.Get(key); err == nil {
			if decoded, err := c.Decode(data); err == nil {
				c.lastHit = true
				return decoded, nil
			}
		}

		c.lastHit = false
		snapshot := state.Snapshot()
		writes, err := c.Inner.ExecuteReadOnly(ctx, snapshot)
		if err != nil {
			return nil, err
		}
		if data, err := c.Encode(writes); err == nil {
			_ = c.Store.Put(key, data)
		}
		return writes, nil
	})
	if err != nil {
		return err
	}

	for k, v := range writes {
		state.Set(k, v)
	}
	return nil
}
