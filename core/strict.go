package core

import "errors"

// WindowFunc computes a strict stage's output from its current window,
// oldest element first. The slice passed in is a private snapshot; callers
// may retain it freely.
type WindowFunc func(window []any) (any, error)

// NewStrictStage builds a stage that eagerly maintains a sliding window of
// up to maxsize upstream elements before ever yielding: the first downstream
// demand pulls maxsize elements upfront to prime the window (this is the
// "strict" half of lazy/strict — work happens ahead of, not in lockstep
// with, what it produces), and every demand after that pulls exactly one
// new element, evicting the oldest once the window is full. maxsize <= 0 is
// treated as a window of size 1 (every element evaluated alone, eagerly).
// This is StrictStage's *bounded* mode (spec.md §4.4); see NewEagerStage for
// the unbounded, full-materialization default that mode is contrasted with.
func NewStrictStage(name string, maxsize int, fn WindowFunc) *Stage {
	if maxsize <= 0 {
		maxsize = 1
	}
	logic := func(up Pull, _ *FlowRegistry) Pull {
		window := make([]any, 0, maxsize)
		primed := false
		return func() (any, error) {
			if !primed {
				for len(window) < maxsize {
					v, err := up()
					if err != nil {
						return nil, err
					}
					window = append(window, v)
				}
				primed = true
			} else {
				v, err := up()
				if err != nil {
					return nil, err
				}
				if len(window) >= maxsize {
					window = append(window[:0], window[1:]...)
				}
				window = append(window, v)
			}
			snapshot := append([]any(nil), window...)
			return fn(snapshot)
		}
	}
	return NewStage(name, StrategyStrict, logic)
}

// NewBoundedStrict specializes NewStrictStage with an identity WindowFunc:
// it emits the current window itself, oldest element first, once primed.
// A plain ring-buffer-of-the-last-maxsize-elements view, useful on its own
// for history/lookback stages without writing a WindowFunc.
func NewBoundedStrict(name string, maxsize int) *Stage {
	return NewStrictStage(name, maxsize, func(window []any) (any, error) {
		return append([]any(nil), window...), nil
	})
}

// EagerFunc computes a stage's complete output from its fully materialized
// upstream, in one shot. The returned slice is replayed downstream one
// element at a time; an error here, or one raised while draining upstream,
// surfaces before any downstream value has been produced.
type EagerFunc func(all []any) ([]any, error)

// NewEagerStage is spec.md §4.4's *default* StrictStage discipline: drain
// upstream fully before producing anything, in contrast to NewStrictStage's
// bounded sliding-window mode. fn runs exactly once, against the complete
// materialized input, and can itself produce any number of output elements
// (e.g. workers.Scatter's chunking) — unlike WindowFunc, which recomputes
// one output per incoming element. A failure either draining upstream or
// inside fn is surfaced at the first downstream pull, before any element of
// this stage's own output has been yielded, matching spec.md's "strict
// eager failure" property.
func NewEagerStage(name string, fn EagerFunc) *Stage {
	logic := func(up Pull, _ *FlowRegistry) Pull {
		var out []any
		pos := 0
		ready := false
		return func() (any, error) {
			if !ready {
				var all []any
				for {
					v, err := up()
					if err != nil {
						if !errors.Is(err, ErrBlockedUpstream) {
							return nil, err
						}
						break
					}
					all = append(all, v)
				}
				result, err := fn(all)
				if err != nil {
					return nil, err
				}
				out = result
				ready = true
			}
			if pos >= len(out) {
				return nil, ErrBlockedUpstream
			}
			v := out[pos]
			pos++
			return v, nil
		}
	}
	return NewStage(name, StrategyStrict, logic)
}
