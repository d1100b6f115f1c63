package adapters

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PlumpMath/flowlet/core"
	"github.com/PlumpMath/flowlet/runner"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketSinkWritesTextAndBinary(t *testing.T) {
	received := make(chan []byte, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		c, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer c.Close()
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				close(received)
				return
			}
			received <- data
		}
	}))
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()

	i := 0
	values := []any{"hello", []byte("raw-bytes"), 42}
	src := core.NewStage("src", core.StrategyLazy, func(_ core.Pull, _ *core.FlowRegistry) core.Pull {
		return func() (any, error) {
			if i >= len(values) {
				return nil, core.ErrBlockedUpstream
			}
			v := values[i]
			i++
			return v, nil
		}
	})

	sink := WebSocketSink(WebSocketConfig{Conn: conn})
	_, err = runner.Run(src.Then(sink), core.Nothing, runner.MaterializeList)
	require.NoError(t, err)
	conn.Close()

	var got [][]byte
	for msg := range received {
		got = append(got, msg)
	}
	require.Len(t, got, 3)
	assert.Equal(t, "hello", string(got[0]))
	assert.Equal(t, "raw-bytes", string(got[1]))
	assert.Equal(t, "42", string(got[2]))
}

func TestWebSocketSourceProducesIncomingMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		c, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer c.Close()
		require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("one")))
		require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("two")))
		c.Close()
	}))
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)

	source := WebSocketSource(WebSocketConfig{Conn: conn})
	result, err := runner.Run(source, core.Nothing, runner.MaterializeList)
	require.NoError(t, err)

	list := result.([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "one", string(list[0].([]byte)))
	assert.Equal(t, "two", string(list[1].([]byte)))
}
