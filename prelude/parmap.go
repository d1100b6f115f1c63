package prelude

import "github.com/PlumpMath/flowlet/core"

// ParallelMap applies fn to each element with up to n computations in
// flight at once, preserving input order in its output. Concurrency is
// maintained by a FIFO queue of futures kept full as results are consumed,
// rather than a worker pool draining a shared queue — simpler to keep
// ordered, and n is typically small enough that per-element goroutines are
// cheap. Despite the name similarity, this is unrelated to the original's
// `parmap(f,g)`; see prelude.Parmap for that combinator.
func ParallelMap(name string, n int, fn func(any) (any, error)) *core.Stage {
	if n < 1 {
		n = 1
	}

	type outcome struct {
		val any
		err error
	}

	logic := func(up core.Pull, _ *core.FlowRegistry) core.Pull {
		var pending []chan outcome
		ended := false

		fill := func() {
			for !ended && len(pending) < n {
				v, err := up()
				if err != nil {
					ch := make(chan outcome, 1)
					ch <- outcome{err: err}
					pending = append(pending, ch)
					ended = true
					break
				}
				ch := make(chan outcome, 1)
				go func(val any, out chan outcome) {
					r, ferr := fn(val)
					out <- outcome{val: r, err: ferr}
				}(v, ch)
				pending = append(pending, ch)
			}
		}

		done := false
		return func() (any, error) {
			if done {
				return nil, core.ErrBlockedUpstream
			}
			if len(pending) == 0 {
				fill()
			}
			if len(pending) == 0 {
				done = true
				return nil, core.ErrBlockedUpstream
			}
			ch := pending[0]
			pending = pending[1:]
			r := <-ch
			if r.err != nil {
				done = true
				return nil, r.err
			}
			fill()
			return r.val, nil
		}
	}
	return core.NewStage(name, core.StrategyLazy, logic)
}
