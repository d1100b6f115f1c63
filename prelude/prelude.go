// Package prelude provides the small, general-purpose stage combinators
// every pipeline is assembled from, ported from the original's
// flowlet/prelude.py line for line where the combinator is about stream
// shape (pipe, take, filter, flatten, barrier, split/unsplit, dimap,
// parmap); combinators about external I/O or worker fan-out live in
// adapters/ and workers/ instead.
package prelude

import (
	"errors"
	"fmt"

	"github.com/PlumpMath/flowlet/core"
	"github.com/PlumpMath/flowlet/runner"
	"github.com/PlumpMath/flowlet/telemetry"
)

// Pipe is the original's `pipe(f)`: a 1-in/1-out map, await one value, send
// f(x), forever, as a Flow. A non-nil error from f ends the stage and
// surfaces as the stage's own error rather than as end-of-input.
func Pipe(name string, f func(any) (any, error)) *core.Stage {
	return core.NewFlowStage(name, func(fl *core.Flow) error {
		for {
			v, err := fl.Await()
			if err != nil {
				return nil
			}
			out, err := f(v)
			if err != nil {
				return err
			}
			if err := fl.Send(out); err != nil {
				return nil
			}
		}
	})
}

// PipeSink is the original's `pipe_(f)`: a 1-in/0-out sink, calling f for
// its side effect on every element and never sending anything downstream.
func PipeSink(name string, f func(any) error) *core.Stage {
	return core.NewFlowStage(name, func(fl *core.Flow) error {
		for {
			v, err := fl.Await()
			if err != nil {
				return nil
			}
			if err := f(v); err != nil {
				return err
			}
		}
	})
}

// Chain folds stages left to right with Then, the same composition Stage
// exposes directly — provided as a free function so a whole chain can be
// built from a slice rather than a fixed call chain.
func Chain(stages ...*core.Stage) *core.Stage {
	if len(stages) == 0 {
		panic("flowlet: prelude.Chain requires at least one stage")
	}
	out := stages[0]
	for _, s := range stages[1:] {
		out = out.Then(s)
	}
	return out
}

// ChainSink composes stages and appends a terminal stage that calls sink for
// its side effect on every element, forwarding the element unchanged —
// grounded on the passthrough-plus-side-effect shape of a history-recording
// stage, generalized to an arbitrary callback.
func ChainSink(name string, stages []*core.Stage, sink func(any) error) *core.Stage {
	sinkStage := core.NewLazyStage(name, func(v any) (any, bool, error) {
		if err := sink(v); err != nil {
			return nil, false, err
		}
		return v, true, nil
	})
	return Chain(append(append([]*core.Stage{}, stages...), sinkStage)...)
}

// Forever produces v on every pull, forever. Combine with Take to bound it.
func Forever(name string, v any) *core.Stage {
	logic := func(_ core.Pull, _ *core.FlowRegistry) core.Pull {
		return func() (any, error) { return v, nil }
	}
	return core.NewStage(name, core.StrategyLazy, logic)
}

// Repeat produces v exactly n times, then ends.
func Repeat(name string, n int, v any) *core.Stage {
	logic := func(_ core.Pull, _ *core.FlowRegistry) core.Pull {
		count := 0
		return func() (any, error) {
			if count >= n {
				return nil, core.ErrBlockedUpstream
			}
			count++
			return v, nil
		}
	}
	return core.NewStage(name, core.StrategyLazy, logic)
}

// Counter produces start, start+1, start+2, ... forever — the Go
// counterpart to `itertools.count(start)`, which the original imports and
// uses directly as a source iterator rather than defining its own. Combine
// with Take to bound it, as in `count(0) >> take(5)`.
func Counter(start int) *core.Stage {
	logic := func(_ core.Pull, _ *core.FlowRegistry) core.Pull {
		n := start
		return func() (any, error) {
			v := n
			n++
			return v, nil
		}
	}
	return core.NewStage(fmt.Sprintf("counter(%d)", start), core.StrategyLazy, logic)
}

// Cycle replays items in order, forever, restarting from the first element
// once the last is produced — the Go counterpart to `itertools.cycle`.
// Cycling an empty slice blocks upstream immediately rather than looping
// forever over nothing.
func Cycle(items []any) *core.Stage {
	logic := func(_ core.Pull, _ *core.FlowRegistry) core.Pull {
		i := 0
		return func() (any, error) {
			if len(items) == 0 {
				return nil, core.ErrBlockedUpstream
			}
			v := items[i%len(items)]
			i++
			return v, nil
		}
	}
	return core.NewStage("cycle", core.StrategyLazy, logic)
}

// Take bounds a stream to at most n elements, refining any longer or
// infinite upstream down to a finite prefix.
func Take(n int) *core.Stage {
	logic := func(up core.Pull, _ *core.FlowRegistry) core.Pull {
		count := 0
		return func() (any, error) {
			if count >= n {
				return nil, core.ErrBlockedUpstream
			}
			v, err := up()
			if err != nil {
				return nil, err
			}
			count++
			return v, nil
		}
	}
	return core.NewStage(fmt.Sprintf("take(%d)", n), core.StrategyLazy, logic)
}

// Filter keeps only elements for which pred returns true.
func Filter(name string, pred func(any) bool) *core.Stage {
	return core.NewLazyStage(name, func(v any) (any, bool, error) {
		return v, pred(v), nil
	})
}

// Flatten expands a stream of []any elements into a stream of their
// members, in order — the streaming analogue of itertools.chain.
func Flatten(name string) *core.Stage {
	logic := func(up core.Pull, _ *core.FlowRegistry) core.Pull {
		var current []any
		idx := 0
		return func() (any, error) {
			for {
				if idx < len(current) {
					v := current[idx]
					idx++
					return v, nil
				}
				v, err := up()
				if err != nil {
					return nil, err
				}
				seq, ok := v.([]any)
				if !ok {
					return nil, fmt.Errorf("flowlet: %s expected []any, got %T", name, v)
				}
				current = seq
				idx = 0
			}
		}
	}
	return core.NewStage(name, core.StrategyLazy, logic)
}

// Barrier holds the stream closed until pred matches an element, then
// forwards that triggering element and every element after it unchanged —
// a one-way gate rather than a per-element filter.
func Barrier(name string, pred func(any) bool) *core.Stage {
	return core.NewFlowStage(name, func(f *core.Flow) error {
		opened := false
		for {
			v, err := f.Await()
			if err != nil {
				return nil
			}
			if !opened {
				if !pred(v) {
					continue
				}
				opened = true
			}
			if err := f.Send(v); err != nil {
				return nil
			}
		}
	})
}

// Split duplicates every element into a pair, letting two independent
// stages each operate on a copy before Unsplit recombines them.
func Split(name string) *core.Stage {
	return core.NewLazyStage(name, func(v any) (any, bool, error) {
		return [2]any{v, v}, true, nil
	})
}

// Unsplit recombines a paired stream (as produced by Split) via combine.
func Unsplit(name string, combine func(a, b any) any) *core.Stage {
	return core.NewLazyStage(name, func(v any) (any, bool, error) {
		pair := v.([2]any)
		return combine(pair[0], pair[1]), true, nil
	})
}

// First is the original's `first(f)`: it drives producer, a separately
// bound 0-in stage, alongside upstream, zipping each of producer's values
// as the *left* half of a pair against the next upstream value — `send(i,
// await())` in the source, evaluated in that order (producer pulled before
// upstream on every iteration). The composite ends as soon as either side
// does.
func First(name string, producer *core.Stage) *core.Stage {
	return core.NewFlowStage(name, func(f *core.Flow) error {
		next, stop := runner.Iterate(producer, core.Nothing)
		defer stop()
		for {
			pv, ok, err := next()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			uv, err := f.Await()
			if err != nil {
				return nil
			}
			if err := f.Send([2]any{pv, uv}); err != nil {
				return nil
			}
		}
	})
}

// Second is the original's `second(f)`: the mirror of First, zipping
// producer's values as the *right* half of a pair — `send(await(), i)` in
// the source.
func Second(name string, producer *core.Stage) *core.Stage {
	return core.NewFlowStage(name, func(f *core.Flow) error {
		next, stop := runner.Iterate(producer, core.Nothing)
		defer stop()
		for {
			pv, ok, err := next()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			uv, err := f.Await()
			if err != nil {
				return nil
			}
			if err := f.Send([2]any{uv, pv}); err != nil {
				return nil
			}
		}
	})
}

// Dimap is the original's `dimap(f,g)`: apply f and g independently to the
// same input, producing (f(x), g(x)) — distinct from Unsplit's combine-two-
// into-one, and from the old profunctor-style pre/post wrapper this name
// used to carry.
func Dimap(name string, f, g func(any) (any, error)) *core.Stage {
	return core.NewLazyStage(name, func(v any) (any, bool, error) {
		fv, err := f(v)
		if err != nil {
			return nil, false, err
		}
		gv, err := g(v)
		if err != nil {
			return nil, false, err
		}
		return [2]any{fv, gv}, true, nil
	})
}

// Parmap is the original's `parmap(f,g)`: given an already-paired stream
// (x,y), produce (f(x), g(y)) — applying two independent functions to their
// respective halves. No concurrency is involved; see ParallelMap for the
// bounded-concurrency single-function map this name used to mean.
func Parmap(name string, f, g func(any) (any, error)) *core.Stage {
	return core.NewLazyStage(name, func(v any) (any, bool, error) {
		pair, ok := v.([2]any)
		if !ok {
			return nil, false, fmt.Errorf("flowlet: %s expected [2]any{x, y}, got %T", name, v)
		}
		fx, err := f(pair[0])
		if err != nil {
			return nil, false, err
		}
		gy, err := g(pair[1])
		if err != nil {
			return nil, false, err
		}
		return [2]any{fx, gy}, true, nil
	})
}

// IdentityLazy is the do-nothing lazy stage: useful as a placeholder or a
// base case when building a chain conditionally.
func IdentityLazy(name string) *core.Stage {
	return core.NewLazyStage(name, func(v any) (any, bool, error) {
		return v, true, nil
	})
}

// IdentityStrict is the do-nothing strict stage: it still primes and
// maintains a window of size n, demonstrating the eager-evaluation
// discipline, but always yields the most recent element.
func IdentityStrict(name string, n int) *core.Stage {
	return core.NewStrictStage(name, n, func(window []any) (any, error) {
		return window[len(window)-1], nil
	})
}

// Printer forwards every element unchanged, logging it at debug level as a
// side effect — a replacement for the original's bare `print`, since a
// library logs rather than writes to stdout.
func Printer(name string, logger telemetry.Logger) *core.Stage {
	log := logger.WithModule(name)
	return core.NewLazyStage(name, func(v any) (any, bool, error) {
		log.Debug("element", telemetry.String("value", fmt.Sprint(v)))
		return v, true, nil
	})
}

// PrinterSink logs every element at debug level and produces nothing
// further downstream; used as the tail of a chain driven with DrainSide.
func PrinterSink(name string, logger telemetry.Logger) *core.Stage {
	log := logger.WithModule(name)
	return core.NewLazyStage(name, func(v any) (any, bool, error) {
		log.Debug("element", telemetry.String("value", fmt.Sprint(v)))
		return nil, false, nil
	})
}

// Collect is the original's `collect(n)`: a composable stage that
// accumulates exactly n upstream elements, sends the accumulated list once,
// then ends — `run([1,2,3,4,5] >> collect(5)) = [[1,2,3,4,5]]`. Unlike
// DrainAll, this is a stage in its own right and can sit mid-chain.
func Collect(n int) *core.Stage {
	return core.NewFlowStage(fmt.Sprintf("collect(%d)", n), func(f *core.Flow) error {
		accum := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := f.Await()
			if err != nil {
				return nil
			}
			accum = append(accum, v)
		}
		if err := f.Send(accum); err != nil {
			return nil
		}
		return nil
	})
}

// Consume is the original's `consume()`: a composable 1-in/0-out stage that
// discards every element, exhausting upstream without ever sending
// anything downstream of itself.
func Consume() *core.Stage {
	return core.NewFlowStage("consume", func(f *core.Flow) error {
		for {
			if _, err := f.Await(); err != nil {
				return nil
			}
		}
	})
}

// ForM is the original's `forM(f, start=0)`: a 0-in/1-out stage producing
// f(start), f(start+1), ... forever — `for i in count(n): send(f(i))` in
// the source. Combine with Take to bound it.
func ForM(f func(int) (any, error), start int) *core.Stage {
	return core.NewFlowStage(fmt.Sprintf("forM(%d)", start), func(fl *core.Flow) error {
		i := start
		for {
			v, err := f(i)
			if err != nil {
				return err
			}
			if err := fl.Send(v); err != nil {
				return nil
			}
			i++
		}
	})
}

// DrainAll binds stage to up and drains it into a slice — a driver, not a
// composable stage; compare the real, composable Collect.
func DrainAll(stage *core.Stage, up core.Pull) ([]any, error) {
	result, err := runner.Run(stage, up, runner.MaterializeList)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.([]any), nil
}

// DrainSide binds stage to up and drains it purely for side effects — a
// driver, not a composable stage; compare the real, composable Consume.
func DrainSide(stage *core.Stage, up core.Pull) error {
	_, err := runner.Run(stage, up, func(pull core.Pull) (any, error) {
		for {
			_, err := pull()
			if err != nil {
				if errors.Is(err, core.ErrBlockedUpstream) {
					return nil, nil
				}
				return nil, err
			}
		}
	})
	return err
}

// DrainEach binds stage to up and calls fn with every element produced,
// stopping at the first error fn returns — a driver, not the composable
// producer ForM now names.
func DrainEach(stage *core.Stage, up core.Pull, fn func(any) error) error {
	_, err := runner.Run(stage, up, func(pull core.Pull) (any, error) {
		for {
			v, err := pull()
			if err != nil {
				if errors.Is(err, core.ErrBlockedUpstream) {
					return nil, nil
				}
				return nil, err
			}
			if err := fn(v); err != nil {
				return nil, err
			}
		}
	})
	return err
}
