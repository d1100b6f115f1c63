package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainStage(t *testing.T, s *Stage) []any {
	t.Helper()
	pull := s.Bind(Nothing, NewFlowRegistry())
	var out []any
	for {
		v, err := pull()
		if err != nil {
			require.ErrorIs(t, err, ErrBlockedUpstream)
			return out
		}
		out = append(out, v)
	}
}

func TestCoerceSlice(t *testing.T) {
	s, err := Coerce("nums", []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, drainStage(t, s))
}

func TestCoerceArray(t *testing.T) {
	s, err := Coerce("nums", [3]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, drainStage(t, s))
}

func TestCoerceMap(t *testing.T) {
	s, err := Coerce("kv", map[string]int{"a": 1})
	require.NoError(t, err)
	out := drainStage(t, s)
	require.Len(t, out, 1)
	assert.Equal(t, [2]any{"a", 1}, out[0])
}

func TestCoerceChannel(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	s, err := Coerce("ch", ch)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, drainStage(t, s))
}

func TestCoerceGeneratorFunc(t *testing.T) {
	i := 0
	gen := func() (any, bool) {
		if i >= 3 {
			return nil, false
		}
		i++
		return i, true
	}
	s, err := Coerce("gen", gen)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, drainStage(t, s))
}

func TestCoerceExistingStagePassesThrough(t *testing.T) {
	original := addN(1)
	s, err := Coerce("ignored", original)
	require.NoError(t, err)
	assert.Same(t, original, s)
}

func TestCoerceRejectsUnknownType(t *testing.T) {
	_, err := Coerce("bad", 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCannotCoerce))

	var coerceErr *CannotCoerceError
	require.ErrorAs(t, err, &coerceErr)
	assert.Equal(t, 42, coerceErr.Value)
}
