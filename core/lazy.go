package core

// LazyFunc is the per-element transform behind a lazy stage. Returning
// keep=false drops v and pulls again without producing output, giving
// LazyFunc double duty as both map and filter (the prelude's Filter is
// built directly on this). A non-nil err short-circuits the stage.
type LazyFunc func(v any) (out any, keep bool, err error)

// NewLazyStage builds a stage that demands exactly one upstream element per
// downstream demand (skipping dropped elements transparently), applies fn,
// and yields the result. It holds no state beyond the single in-flight
// element, so it never affects how far ahead of demand the pipeline runs.
func NewLazyStage(name string, fn LazyFunc) *Stage {
	logic := func(up Pull, _ *FlowRegistry) Pull {
		return func() (any, error) {
			for {
				v, err := up()
				if err != nil {
					return nil, err
				}
				out, keep, ferr := fn(v)
				if ferr != nil {
					return nil, ferr
				}
				if keep {
					return out, nil
				}
			}
		}
	}
	return NewStage(name, StrategyLazy, logic)
}
