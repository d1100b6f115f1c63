package adapters

import (
	"sync"

	"github.com/PlumpMath/flowlet/core"
)

// MemQueue is a bounded, concurrency-safe FIFO used as the handle between a
// workers.Par worker and its caller — the in-process stand-in for the
// original's multiprocessing.Queue (queuepipe/queueput), since the par
// layer here is goroutines rather than OS processes.
type MemQueue struct {
	ch        chan any
	closeOnce sync.Once
	closed    chan struct{}
}

// NewMemQueue builds a MemQueue buffering up to capacity items before Put
// blocks.
func NewMemQueue(capacity int) *MemQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &MemQueue{ch: make(chan any, capacity), closed: make(chan struct{})}
}

// Put enqueues v, blocking if the queue is full. A Put after Close is a
// silent no-op rather than a panic, so a writer racing a reader's shutdown
// doesn't need its own synchronization.
func (q *MemQueue) Put(v any) {
	select {
	case <-q.closed:
		return
	default:
	}
	select {
	case q.ch <- v:
	case <-q.closed:
	}
}

// Close signals that no further items will be put. Idempotent.
func (q *MemQueue) Close() {
	q.closeOnce.Do(func() { close(q.closed) })
}

// Get returns the next item, or ok=false once the queue is closed and
// drained — the Get-side analogue of the original's Empty/EOFError.
func (q *MemQueue) Get() (any, bool) {
	select {
	case v := <-q.ch:
		return v, true
	case <-q.closed:
		select {
		case v := <-q.ch:
			return v, true
		default:
			return nil, false
		}
	}
}

// Queue produces every item put into q, ending when q is closed and
// drained — grounds on the original's queuepipe.
func Queue(q *MemQueue) *core.Stage {
	return core.NewFlowStage("queue", func(f *core.Flow) error {
		for {
			v, ok := q.Get()
			if !ok {
				return nil
			}
			if err := f.Send(v); err != nil {
				return nil
			}
		}
	})
}

// QueueSink puts every upstream element into q, closing q once upstream
// ends — grounds on the original's queueput.
func QueueSink(q *MemQueue) *core.Stage {
	return core.NewFlowStage("queue_sink", func(f *core.Flow) error {
		for {
			v, err := f.Await()
			if err != nil {
				q.Close()
				return nil
			}
			q.Put(v)
		}
	})
}
