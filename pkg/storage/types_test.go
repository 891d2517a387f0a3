package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidID,
		ErrInvalidData,
		ErrStorageClosed,
	}

	t.Run("distinct", func(t *testing.T) {
		for i, a := range sentinels {
			for j, b := range sentinels {
				if i == j {
					continue
				}
				assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
			}
		}
	})

	t.Run("survive wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("loading node %q: %w", "n1", ErrNotFound)
		assert.ErrorIs(t, wrapped, ErrNotFound)
	})
}

func TestEdge_OtherEnd(t *testing.T) {
	edge := &Edge{ID: "e", StartNode: "a", EndNode: "b", Type: "R"}

	t.Run("from start", func(t *testing.T) {
		assert.Equal(t, NodeID("b"), edge.OtherEnd("a"))
	})

	t.Run("from end", func(t *testing.T) {
		assert.Equal(t, NodeID("a"), edge.OtherEnd("b"))
	})

	t.Run("self-loop", func(t *testing.T) {
		loop := &Edge{ID: "l", StartNode: "a", EndNode: "a", Type: "R"}
		assert.Equal(t, NodeID("a"), loop.OtherEnd("a"))
	})
}

func TestDirection(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "outgoing", DirectionOutgoing.String())
		assert.Equal(t, "incoming", DirectionIncoming.String())
		assert.Equal(t, "both", DirectionBoth.String())
	})

	t.Run("reverse", func(t *testing.T) {
		assert.Equal(t, DirectionIncoming, DirectionOutgoing.Reverse())
		assert.Equal(t, DirectionOutgoing, DirectionIncoming.Reverse())
		assert.Equal(t, DirectionBoth, DirectionBoth.Reverse())
	})
}
