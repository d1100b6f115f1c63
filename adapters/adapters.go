// Package adapters bridges the stage algebra in core to external byte and
// message sources: files, in-memory queues, and WebSocket connections.
// Every adapter is a core.FlowStage; FileLines and WebSocketSource release
// their handle through the flow's own resource stack (core.Flow.Acquire),
// QueueSink closes its queue once upstream ends, and Queue and
// WebSocketSink leave their handle open.
package adapters

// MessageSource is a pull-based external source: Recv returns the next
// message or an error, io.EOF (or an equivalent sentinel) signaling a
// graceful end. Close releases the underlying handle.
type MessageSource interface {
	Recv() (any, error)
	Close() error
}

// ByteSink accepts serialized messages, e.g. a socket or file handle.
type ByteSink interface {
	Send([]byte) error
}
