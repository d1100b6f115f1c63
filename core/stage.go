package core

import "fmt"

// Logic is the executable definition of a stage: given the Pull of
// whatever sits upstream and the FlowRegistry for the run being assembled,
// it returns the Pull of this stage. reg is threaded through purely so
// flow-strategy stages can register the Flow they create for finalization;
// lazy and strict stages ignore it. Binding two stages is plain function
// composition of their Logic values (reg just along for the ride), which
// is associative by construction — see DESIGN.md's redesign note on why
// spec.md's four-case fusion table collapses to this one shape.
type Logic func(up Pull, reg *FlowRegistry) Pull

// Strategy names the evaluation discipline a primitive stage was built
// with. It exists for introspection and diagnostics only; execution never
// branches on it once a Stage has been turned into a Pull.
type Strategy int

const (
	// StrategyLazy evaluates purely on demand, with no buffering beyond the
	// current element.
	StrategyLazy Strategy = iota
	// StrategyStrict drains its upstream eagerly (optionally bounded to a
	// sliding window) before ever yielding.
	StrategyStrict
	// StrategyFlow is backed by a suspendable Flow coroutine, able to hold
	// internal state across Await/Send boundaries.
	StrategyFlow
)

func (s Strategy) String() string {
	switch s {
	case StrategyLazy:
		return "lazy"
	case StrategyStrict:
		return "strict"
	case StrategyFlow:
		return "flow"
	default:
		return "unknown"
	}
}

// Stage is a named, composable unit of pipeline logic. It carries a tagged
// Primitive/Composite shape purely for introspection: Flatten() and the
// primitive-count invariant (spec.md §3) need to recover the leaves of a
// composition tree, even though the executable Logic is built once, flat,
// at bind time.
type Stage struct {
	name     string
	strategy Strategy
	logic    Logic

	// composite, when non-nil, records the two stages this Stage was built
	// from via Then. A primitive Stage has composite == nil.
	composite *compositeInfo
}

type compositeInfo struct {
	left  *Stage
	right *Stage
}

// NewStage constructs a primitive stage from its name, declared evaluation
// strategy, and executable Logic.
func NewStage(name string, strategy Strategy, logic Logic) *Stage {
	return &Stage{name: name, strategy: strategy, logic: logic}
}

// Name returns the stage's diagnostic name.
func (s *Stage) Name() string { return s.name }

// Strategy returns the stage's declared evaluation strategy. For a
// composite stage this is the strategy of its rightmost (outermost)
// primitive, matching the intuition that a chain's overall behavior is
// dominated by its tail.
func (s *Stage) Strategy() Strategy { return s.strategy }

// IsComposite reports whether this stage was built by composing two others.
func (s *Stage) IsComposite() bool { return s.composite != nil }

// Composite returns the two stages a composite Stage was built from. It
// panics if called on a primitive stage; callers should guard with
// IsComposite.
func (s *Stage) Composite() (left, right *Stage) {
	if s.composite == nil {
		panic(fmt.Sprintf("flowlet: %q is a primitive stage, not composite", s.name))
	}
	return s.composite.left, s.composite.right
}

// Logic returns the stage's executable binder.
func (s *Stage) Logic() Logic { return s.logic }

// Then binds s to next, producing a new composite stage whose Logic is the
// ordinary function composition next.Logic ∘ s.Logic. Associativity of
// Then follows directly from associativity of function composition:
// a.Then(b).Then(c) and a.Then(b.Then(c)) build the same executable Pull
// chain for any upstream, even though their composite trees differ.
func (s *Stage) Then(next *Stage) *Stage {
	combinedLogic := func(up Pull, reg *FlowRegistry) Pull {
		return next.logic(s.logic(up, reg), reg)
	}
	return &Stage{
		name:     "(" + s.name + "." + next.name + ")",
		strategy: next.strategy,
		logic:    combinedLogic,
		composite: &compositeInfo{
			left:  s,
			right: next,
		},
	}
}

// Flatten returns every primitive stage in s's composition tree, in
// left-to-right (execution) order. For a primitive stage it returns a
// single-element slice containing s itself.
func (s *Stage) Flatten() []*Stage {
	if s.composite == nil {
		return []*Stage{s}
	}
	left := s.composite.left.Flatten()
	right := s.composite.right.Flatten()
	out := make([]*Stage, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

// Bind applies the stage's Logic to an upstream Pull, producing the Pull
// this stage exposes to whatever is bound after it. reg collects any Flow
// coroutines created in the process; pass a fresh NewFlowRegistry() per run.
func (s *Stage) Bind(up Pull, reg *FlowRegistry) Pull {
	return s.logic(up, reg)
}
