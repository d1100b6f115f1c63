package core

// NewFlowStage builds a stage backed by a suspendable Flow coroutine,
// binding it to its upstream only once the stage is actually bound into a
// run and registering the created Flow with reg so the owning runner can
// finalize it head-first when the run ends.
func NewFlowStage(name string, fn FlowFunc) *Stage {
	logic := func(up Pull, reg *FlowRegistry) Pull {
		fl := NewFlow(name, fn, up)
		if reg != nil {
			reg.Register(fl)
		}
		return fl.Next
	}
	return NewStage(name, StrategyFlow, logic)
}
