package adapters

import (
	"encoding/json"

	"github.com/PlumpMath/flowlet/core"
	"github.com/PlumpMath/flowlet/telemetry"
	"github.com/gorilla/websocket"
)

// WebSocketConfig configures a WebSocket adapter stage.
type WebSocketConfig struct {
	Conn   *websocket.Conn
	Logger telemetry.Logger // optional; defaults to telemetry.Nop()
}

func (c WebSocketConfig) logger() telemetry.Logger {
	if c.Logger == nil {
		return telemetry.Nop()
	}
	return c.Logger
}

// WebSocketSource produces one element per inbound WebSocket message, as
// raw []byte, ending when the connection closes or errors. Materially
// rewritten from the teacher's stages/websocket_sink.go, which only ever
// wrote typed core.Event values outward — this direction (reading from the
// browser back into a pipeline) had no teacher analogue, so it mirrors the
// sink's read loop shape instead.
func WebSocketSource(cfg WebSocketConfig) *core.Stage {
	log := cfg.logger().WithModule("websocket_source")
	return core.NewFlowStage("websocket_source", func(f *core.Flow) error {
		f.Acquire(cfg.Conn.Close)
		for {
			_, data, err := cfg.Conn.ReadMessage()
			if err != nil {
				log.Debug("websocket read ended", telemetry.Err(err))
				return nil
			}
			if err := f.Send(data); err != nil {
				return nil
			}
		}
	})
}

// WebSocketSink writes every upstream element to the WebSocket connection,
// generalized from the teacher's typed core.Event-to-protocol.Message
// marshaling into: []byte sent as a binary frame, string sent as text, and
// anything else marshaled to JSON and sent as text — the generic contract
// a domain-neutral pipeline core can offer, with per-event-type framing
// left to the caller's own stages upstream of this one.
func WebSocketSink(cfg WebSocketConfig) *core.Stage {
	log := cfg.logger().WithModule("websocket_sink")
	return core.NewFlowStage("websocket_sink", func(f *core.Flow) error {
		for {
			v, err := f.Await()
			if err != nil {
				return nil
			}

			var (
				msgType int
				data    []byte
			)
			switch val := v.(type) {
			case []byte:
				msgType, data = websocket.BinaryMessage, val
			case string:
				msgType, data = websocket.TextMessage, []byte(val)
			default:
				encoded, err := json.Marshal(val)
				if err != nil {
					log.Error("failed to marshal element", telemetry.Err(err))
					continue
				}
				msgType, data = websocket.TextMessage, encoded
			}

			if err := cfg.Conn.WriteMessage(msgType, data); err != nil {
				log.Error("failed to write to websocket, draining upstream", telemetry.Err(err))
				for {
					if _, err := f.Await(); err != nil {
						return nil
					}
				}
			}
		}
	})
}
