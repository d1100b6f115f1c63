package core

import "sync"

// FlowRegistry collects the Flow coroutines created while a Stage chain is
// bound to its upstream, in head-first (upstream-to-downstream) order —
// the same order Logic composition invokes left before right. runner.Run
// uses that order to finalize every live flow head-first once a run ends,
// which tests/test_flow.py's finalize-order suite requires: at any point
// between top-level Pull calls every live flow is blocked on its own
// resume channel, so unwinding head-first is always deadlock-free.
type FlowRegistry struct {
	mu    sync.Mutex
	flows []*Flow
}

// NewFlowRegistry returns an empty registry.
func NewFlowRegistry() *FlowRegistry {
	return &FlowRegistry{}
}

// Register appends f to the registry. Called once per Flow, at the moment
// its owning FlowStage's Logic is applied to an upstream Pull.
func (r *FlowRegistry) Register(f *Flow) {
	r.mu.Lock()
	r.flows = append(r.flows, f)
	r.mu.Unlock()
}

// FinalizeAll calls Final on every registered flow, head-first.
func (r *FlowRegistry) FinalizeAll() {
	r.mu.Lock()
	flows := append([]*Flow(nil), r.flows...)
	r.mu.Unlock()

	for _, f := range flows {
		f.Final()
	}
}
