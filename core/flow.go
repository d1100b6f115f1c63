package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Pull is the uniform executable shape of every stage, primitive or
// composite, lazy, strict, or flow: calling it demands exactly one value
// from whatever sits upstream. A non-nil error is either ErrBlockedUpstream
// (end of stream) or a genuine failure; Pull never returns a value together
// with a non-nil error.
type Pull func() (any, error)

// FlowFunc is the user logic run by a Flow. It receives an explicit handle
// rather than reading a package-level "current flow" (Design Notes: no
// global mutable scheduling state). Returning ErrBlockedUpstream or
// ErrFlowletExit (typically via `return f.Close()`) are the two graceful
// terminations; any other non-nil error is a genuine stage-logic failure
// and propagates per §7.
type FlowFunc func(f *Flow) error

type resumeSignal int

const (
	sigResume resumeSignal = iota
	sigClose
)

type resumeMsg struct {
	sig resumeSignal
}

type yieldMsg struct {
	val    any
	err    error
	closed bool
}

// flowExitPanic is the internal-only signal used to unwind a Send() call
// that was interrupted by a forced close while blocked waiting for the next
// demand. It never escapes the owning goroutine.
type flowExitPanic struct{}

// Flow is a suspendable coroutine: the executable form of a flow-strategy
// stage. It is implemented as one goroutine paired with two single-slot
// rendezvous channels (Design Notes §9, option (b)) rather than a stackful
// coroutine — each Await/Send/Close/Final call is a deterministic,
// synchronous control transfer, so scheduling stays single-threaded and
// observable order stays deterministic even though real goroutines are
// involved.
type Flow struct {
	name string
	fn   FlowFunc
	up   Pull

	// upFlow/downFlow are populated only when two Flows are bound directly
	// to one another (BindFlow) rather than through the Stage/Pull
	// composition layer; they exist purely for introspection and the
	// one-to-one/no-cycles invariants in spec.md §3.
	upFlow   *Flow
	downFlow *Flow

	resumeCh chan resumeMsg
	yieldCh  chan yieldMsg

	startOnce sync.Once
	started   atomic.Bool
	dead      atomic.Bool
	steps     atomic.Int64

	mu        sync.Mutex
	resources []func() error
}

// NewFlow constructs a fresh, unstarted flow. up may be nil, in which case
// Await always reports ErrBlockedUpstream (the flow has no producer).
func NewFlow(name string, fn FlowFunc, up Pull) *Flow {
	return &Flow{
		name:     name,
		fn:       fn,
		up:       up,
		resumeCh: make(chan resumeMsg),
		yieldCh:  make(chan yieldMsg),
	}
}

// Name returns the flow's diagnostic name.
func (f *Flow) Name() string { return f.name }

// Active reports whether the flow has been resumed at least once and has
// not yet reached the Dead terminal state.
func (f *Flow) Active() bool { return f.started.Load() && !f.dead.Load() }

// Position is a coherent-but-synthetic stand-in for the bytecode-level
// frame/instruction-pointer introspection spec.md requests: Go has no
// analogue, so Position reports the flow's lifecycle state and a step
// counter that advances once each time the flow yields to its caller and
// once each time it is resumed inside Send.
func (f *Flow) Position() string {
	state := "fresh"
	switch {
	case f.dead.Load():
		state = "dead"
	case f.started.Load():
		state = "running"
	}
	return fmt.Sprintf("%s:%s@%d", f.name, state, f.steps.Load())
}

// BindFlow binds upstream directly as f's producer, for the cases where two
// Flows are wired together without going through Stage composition (e.g.
// testing the primitive itself, or prelude combinators like First/Second
// that hand-wire a secondary flow). Binding is one-to-one and rejects
// cycles, per spec.md §3's invariants.
func (f *Flow) BindFlow(upstream *Flow) error {
	if upstream == nil {
		return errors.New("flowlet: cannot bind a nil upstream flow")
	}
	if f.upFlow != nil {
		return fmt.Errorf("flowlet: flow %q already has an upstream", f.name)
	}
	if upstream.downFlow != nil {
		return fmt.Errorf("flowlet: flow %q already has a downstream", upstream.name)
	}
	for cur := upstream; cur != nil; cur = cur.upFlow {
		if cur == f {
			return fmt.Errorf("flowlet: binding %q to %q would create a cycle", f.name, upstream.name)
		}
	}
	f.upFlow = upstream
	upstream.downFlow = f
	f.up = upstream.Next
	return nil
}

// Up returns the directly-bound upstream flow, or nil if none (either there
// is no upstream, or it was supplied as a plain Pull rather than a Flow).
func (f *Flow) Up() *Flow { return f.upFlow }

// Down returns the directly-bound downstream flow, or nil.
func (f *Flow) Down() *Flow { return f.downFlow }

// Acquire registers a resource release to run during finalization. Releases
// run in LIFO order — last acquired, first released — matching spec.md's
// "scoped resource stack" model of nested `with` blocks.
func (f *Flow) Acquire(release func() error) {
	f.mu.Lock()
	f.resources = append(f.resources, release)
	f.mu.Unlock()
}

// Await blocks until the upstream producer emits a value, returning
// ErrBlockedUpstream if there is no upstream or it has ended.
func (f *Flow) Await() (any, error) {
	if f.up == nil {
		return nil, ErrBlockedUpstream
	}
	return f.up()
}

// Send delivers v to whatever is pulling this flow (its downstream Await,
// or the Runner at the tail of the chain) and suspends until the next
// demand. If the caller has gone away (downstream-initiated cancellation,
// e.g. a `take` that stopped pulling), Send never returns: it unwinds the
// flow's resource stack and terminates the coroutine, exactly as if the
// flow had returned normally.
func (f *Flow) Send(v any) error {
	f.yieldCh <- yieldMsg{val: v}
	in := <-f.resumeCh
	f.steps.Add(1)
	if in.sig == sigClose {
		panic(flowExitPanic{})
	}
	return nil
}

// Close finalizes f's directly-bound upstream (if any, via BindFlow) and
// reports graceful, voluntary termination for f itself by returning
// ErrFlowletExit. It does not stop f's own execution — callers normally
// write `return f.Close()` so the enclosing return performs the early exit,
// but a bare `f.Close()` (its result ignored) is also valid and simply tears
// down the upstream while letting f keep running (mirroring the original's
// `close(); await()` idiom, where closing the producer turns a subsequent
// await into ErrBlockedUpstream rather than aborting the caller outright).
func (f *Flow) Close() error {
	if f.upFlow != nil {
		f.upFlow.Final()
	}
	return ErrFlowletExit
}

// Next drives the flow forward by one step: it is the Pull form of the
// flow, used both by a bound downstream Flow's Await and by runner.Run at
// the tail of a chain.
func (f *Flow) Next() (any, error) {
	if f.dead.Load() {
		return nil, ErrBlockedUpstream
	}
	f.ensureStarted()
	f.resumeCh <- resumeMsg{sig: sigResume}
	out := <-f.yieldCh
	f.steps.Add(1)
	if out.closed {
		f.dead.Store(true)
		if out.err == nil || errors.Is(out.err, ErrFlowletExit) {
			return nil, ErrBlockedUpstream
		}
		return nil, out.err
	}
	return out.val, nil
}

// Final triggers finalization from outside: f's directly-bound upstream (if
// any) is finalized first, then, if f itself is alive and suspended (the
// only state a started flow can be in between Pull calls — see runner's
// head-first finalize sweep), f is forced to unwind its own resource stack
// and terminate. A flow that never started is marked dead without running
// its body; a flow that is already dead is left untouched.
// Finalizing upstream-before-self is what reproduces the head-first
// unwind order a bound chain requires: closing the tail of A→B→C unwinds
// A's resources, then B's, then C's own, last.
func (f *Flow) Final() {
	if f.dead.Load() {
		return
	}
	if f.upFlow != nil {
		f.upFlow.Final()
	}
	if !f.started.Load() {
		f.dead.Store(true)
		return
	}
	f.resumeCh <- resumeMsg{sig: sigClose}
	<-f.yieldCh
	f.dead.Store(true)
}

func (f *Flow) ensureStarted() {
	f.startOnce.Do(func() {
		f.started.Store(true)
		go f.run()
	})
}

func (f *Flow) run() {
	first := <-f.resumeCh
	if first.sig == sigClose {
		f.yieldCh <- yieldMsg{err: ErrFlowletExit, closed: true}
		return
	}
	f.runBody()
}

func (f *Flow) runBody() {
	var finalErr error
	defer func() {
		r := recover()
		unwindErr := f.unwind()
		switch {
		case r != nil:
			if _, ok := r.(flowExitPanic); ok {
				finalErr = ErrFlowletExit
			} else if e, ok := r.(error); ok {
				finalErr = e
			} else {
				finalErr = fmt.Errorf("flowlet: flow %q panicked: %v", f.name, r)
			}
		case finalErr == nil:
			finalErr = unwindErr
		}
		f.yieldCh <- yieldMsg{err: finalErr, closed: true}
	}()

	if err := f.fn(f); err != nil {
		finalErr = err
	}
}

// unwind releases every acquired resource in LIFO order and returns the
// first error encountered, if any.
func (f *Flow) unwind() error {
	f.mu.Lock()
	resources := f.resources
	f.resources = nil
	f.mu.Unlock()

	var firstErr error
	for i := len(resources) - 1; i >= 0; i-- {
		if err := resources[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
