package adapters

import (
	"testing"

	"github.com/PlumpMath/flowlet/core"
	"github.com/PlumpMath/flowlet/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemQueuePutGetFIFO(t *testing.T) {
	q := NewMemQueue(4)
	q.Put(1)
	q.Put(2)
	q.Put(3)

	v, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = q.Get()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestMemQueueGetAfterCloseDrainsThenEnds(t *testing.T) {
	q := NewMemQueue(4)
	q.Put("a")
	q.Close()

	v, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = q.Get()
	assert.False(t, ok)
}

func TestQueueStageProducesPutItems(t *testing.T) {
	q := NewMemQueue(4)
	q.Put(1)
	q.Put(2)
	q.Close()

	result, err := runner.Run(Queue(q), core.Nothing, runner.MaterializeList)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, result)
}

func TestQueueSinkPutsUpstreamAndClosesOnEnd(t *testing.T) {
	i := 0
	values := []int{10, 20, 30}
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

	q := NewMemQueue(8)
	_, err := runner.Run(src.Then(QueueSink(q)), core.Nothing, runner.MaterializeList)
	require.NoError(t, err)

	var got []any
	for {
		v, ok := q.Get()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []any{10, 20, 30}, got)
}
