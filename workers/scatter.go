// Package workers implements the external par/scatter/gather layer: fanning
// a single chain out across N goroutine workers and merging their output
// back, grounded on the teacher's core/fanout.go (per-branch goroutine +
// channel routing) and core/barrier.go (multi-branch consolidation), plus
// the original's scatter/roundrobin/par/gather combinators.
package workers

import (
	"fmt"

	"github.com/PlumpMath/flowlet/core"
)

// Scatter splits its input into equal-size chunks *atemporally*, forcing
// the whole stream into memory on the first downstream pull — grounds on the
// original's `scatter`, including its own comment that this forces the
// entire container into memory. Built on core.NewEagerStage, the shared
// full-materialization primitive, rather than hand-rolling its own
// materialize-then-slice loop. Each chunk is tagged with its destination
// worker index as a [2]any{index, chunk} pair for workers.Par/Gather.
//
// The original tags every chunk with `i % N` where i is the *source slice
// offset* (0, N, 2N, ...), so idx is always 0 — a bug, not a round-robin
// assignment. Scatter here tags with the chunk's ordinal position modulo n
// instead, so chunks are actually distributed across all n workers.
func Scatter(n int) *core.Stage {
	if n < 1 {
		n = 1
	}
	return core.NewEagerStage(fmt.Sprintf("scatter(%d)", n), func(all []any) ([]any, error) {
		var chunks []any
		chunkIdx := 0
		for pos := 0; pos < len(all); pos += n {
			end := pos + n
			if end > len(all) {
				end = len(all)
			}
			chunk := append([]any{}, all[pos:end]...)
			chunks = append(chunks, [2]any{chunkIdx % n, chunk})
			chunkIdx++
		}
		return chunks, nil
	})
}

// RoundRobin tags each element with `index % n` as a [2]any{index, element}
// pair, distributing the stream across n workers *across time* rather than
// materializing it — the streaming counterpart to Scatter, grounding on the
// original's `roundrobin`, generalized to the modulo reading of its unused
// `n` parameter (see DESIGN.md).
func RoundRobin(n int) *core.Stage {
	if n < 1 {
		n = 1
	}
	logic := func(up core.Pull, _ *core.FlowRegistry) core.Pull {
		i := 0
		return func() (any, error) {
			v, err := up()
			if err != nil {
				return nil, err
			}
			idx := i % n
			i++
			return [2]any{idx, v}, nil
		}
	}
	return core.NewStage(fmt.Sprintf("round_robin(%d)", n), core.StrategyLazy, logic)
}

// RoundRobinIndexed tags each element with its literal, unbounded position
// (`enumerate`), exactly as the original's `roundrobin` does — kept
// alongside RoundRobin so both readings of the original's unused `n`
// parameter are available (see DESIGN.md Open Question resolution).
func RoundRobinIndexed() *core.Stage {
	logic := func(up core.Pull, _ *core.FlowRegistry) core.Pull {
		i := 0
		return func() (any, error) {
			v, err := up()
			if err != nil {
				return nil, err
			}
			idx := i
			i++
			return [2]any{idx, v}, nil
		}
	}
	return core.NewStage("round_robin_indexed", core.StrategyLazy, logic)
}
