// Package runner drives a bound Stage chain to completion (or to an early
// stop) and owns the single place finalization happens: the FlowRegistry
// built at bind time, swept head-first once the chain stops being pulled.
package runner

import (
	"errors"

	"github.com/PlumpMath/flowlet/core"
)

// Decomposer turns a Pull into a final result. The two built-in
// decomposers mirror the original's identity/materialize-list split:
// Identity hands back the very next value (the shape `iterate()` needs so
// it never forces more of the stream than a caller asks for), MaterializeList
// drains the whole stream into a slice.
type Decomposer func(core.Pull) (any, error)

// Identity returns the single next value pulled, translating end-of-stream
// into (nil, nil) rather than surfacing ErrBlockedUpstream as a result
// error — callers that want to detect "no more data" should prefer Iterate.
func Identity(pull core.Pull) (any, error) {
	v, err := pull()
	if err != nil {
		if errors.Is(err, core.ErrBlockedUpstream) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// MaterializeList drains pull to exhaustion and returns every value
// produced, in order, as a []any.
func MaterializeList(pull core.Pull) (any, error) {
	var out []any
	for {
		v, err := pull()
		if err != nil {
			if errors.Is(err, core.ErrBlockedUpstream) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}

// Run binds stage to up, applies decomposer to the resulting Pull, and
// finalizes every Flow the bind created, head-first, before returning —
// regardless of whether decomposer returned an error.
func Run(stage *core.Stage, up core.Pull, decomposer Decomposer) (any, error) {
	reg := core.NewFlowRegistry()
	pull := stage.Bind(up, reg)
	result, err := decomposer(pull)
	reg.FinalizeAll()
	return result, err
}

// Iterate binds stage to up and returns a pull-one-at-a-time cursor: next
// reports (value, true, nil) per element, then (nil, false, nil) at clean
// end-of-stream, or (nil, false, err) on a genuine failure. stop finalizes
// the chain immediately — callers that abandon iteration early (such as
// the prelude's First and Second) must call it so upstream flows
// are not left dangling; next finalizes automatically on its own exhaustion
// or error, making a second stop call after that a no-op.
func Iterate(stage *core.Stage, up core.Pull) (next func() (any, bool, error), stop func()) {
	reg := core.NewFlowRegistry()
	pull := stage.Bind(up, reg)
	done := false

	next = func() (any, bool, error) {
		if done {
			return nil, false, nil
		}
		v, err := pull()
		if err != nil {
			done = true
			reg.FinalizeAll()
			if errors.Is(err, core.ErrBlockedUpstream) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return v, true, nil
	}
	stop = func() {
		if !done {
			done = true
			reg.FinalizeAll()
		}
	}
	return next, stop
}
