package workers

import (
	"errors"
	"fmt"

	"github.com/PlumpMath/flowlet/core"
)

// MergeStrategy selects how Gather consolidates elements tagged by
// branch index ([2]any{index, value}, as produced by Scatter/RoundRobin)
// back into a single stream.
type MergeStrategy int

const (
	// MergeStrategyCollect forwards every tagged element's value downstream
	// as it arrives, discarding the branch tag — the streaming merge.
	MergeStrategyCollect MergeStrategy = iota
	// MergeStrategyLastOnly retains only the most recently seen value per
	// branch and emits a single []any snapshot (index order) once upstream
	// ends — the original's "wait for every branch, emit one consolidated
	// result" shape.
	MergeStrategyLastOnly
)

// Gather merges a branch-tagged stream back into one, grounded on the
// teacher's core/barrier.go BarrierStage: that stage collects events from N
// upstream branches and, depending on what it sees, either forwards them
// immediately or waits for all N and emits one consolidated DoneEvent.
// MergeStrategyCollect is the immediate-forward half; MergeStrategyLastOnly
// is the wait-and-consolidate half, generalized from a fixed DoneEvent to a
// generic per-branch value slot.
func Gather(n int, strategy MergeStrategy) *core.Stage {
	if n < 1 {
		n = 1
	}
	logic := func(up core.Pull, _ *core.FlowRegistry) core.Pull {
		switch strategy {
		case MergeStrategyLastOnly:
			last := make([]any, n)
			emitted := false
			return func() (any, error) {
				if emitted {
					return nil, core.ErrBlockedUpstream
				}
				for {
					v, err := up()
					if err != nil {
						if !errors.Is(err, core.ErrBlockedUpstream) {
							return nil, err
						}
						emitted = true
						return append([]any{}, last...), nil
					}
					pair, ok := v.([2]any)
					if !ok {
						return nil, fmt.Errorf("flowlet: gather expected [2]any{index, value}, got %T", v)
					}
					idx, ok := pair[0].(int)
					if !ok || idx < 0 || idx >= n {
						return nil, fmt.Errorf("flowlet: gather received out-of-range branch index %v", pair[0])
					}
					last[idx] = pair[1]
				}
			}
		default:
			return func() (any, error) {
				v, err := up()
				if err != nil {
					return nil, err
				}
				pair, ok := v.([2]any)
				if !ok {
					return nil, fmt.Errorf("flowlet: gather expected [2]any{index, value}, got %T", v)
				}
				return pair[1], nil
			}
		}
	}
	return core.NewStage(fmt.Sprintf("gather(%d)", n), core.StrategyLazy, logic)
}
