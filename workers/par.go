package workers

import (
	"sync"

	"github.com/PlumpMath/flowlet/adapters"
	"github.com/PlumpMath/flowlet/core"
	"github.com/PlumpMath/flowlet/runner"
)

// Par runs n goroutine workers, each driving one of lines (cycled if fewer
// lines than n, per the original's `lines = lines*N` repetition) over its
// own pair of in-process queues. Grounds on the original's `par`
// (`Queue()`/`Process(target=parline)` per worker) translated from OS
// processes to goroutines, and on the teacher's core/fanout.go per-branch
// goroutine + channel pattern.
//
// Par is a FlowStage. Feeding upstream into worker inputs and draining
// worker outputs run in their own goroutines, concurrently with each other
// and with the n workers themselves: an earlier feed-then-drain design
// (buffer every input first, only read outputs afterward) deadlocked once
// a worker's output queue filled, since nothing would drain it until every
// worker had already finished, and a worker blocked writing its output
// stops pulling its input, which backs the feed loop up permanently.
// f.Await() is called only from the feeder goroutine and f.Send() only from
// this function's own goroutine; everything else communicates over channels.
func Par(lines []*core.Stage, n int) *core.Stage {
	if n < 1 {
		n = 1
	}
	if len(lines) == 0 {
		panic("flowlet: workers.Par requires at least one line")
	}

	return core.NewFlowStage("par", func(f *core.Flow) error {
		inputs := make([]*adapters.MemQueue, n)
		outputs := make([]*adapters.MemQueue, n)
		for i := range inputs {
			inputs[i] = adapters.NewMemQueue(64)
			outputs[i] = adapters.NewMemQueue(64)
		}

		var workers sync.WaitGroup
		for i := 0; i < n; i++ {
			line := lines[i%len(lines)]
			in, out := inputs[i], outputs[i]
			workers.Add(1)
			go func() {
				defer workers.Done()
				chain := adapters.Queue(in).Then(line).Then(adapters.QueueSink(out))
				runner.Run(chain, core.Nothing, runner.Identity)
			}()
		}

		feedDone := make(chan struct{})
		go func() {
			defer close(feedDone)
			idx := 0
			for {
				v, err := f.Await()
				if err != nil {
					break
				}
				inputs[idx%n].Put(v)
				idx++
			}
			for _, in := range inputs {
				in.Close()
			}
		}()

		merged := make(chan any)
		var drainers sync.WaitGroup
		drainers.Add(n)
		for _, out := range outputs {
			out := out
			go func() {
				defer drainers.Done()
				for {
					v, ok := out.Get()
					if !ok {
						return
					}
					merged <- v
				}
			}()
		}
		go func() {
			drainers.Wait()
			close(merged)
		}()

		for v := range merged {
			if err := f.Send(v); err != nil {
				return nil
			}
		}
		<-feedDone
		workers.Wait()
		return nil
	})
}
