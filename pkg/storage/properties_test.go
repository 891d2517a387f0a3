package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPropertyGraph(t *testing.T) *MemoryEngine {
	t.Helper()
	engine := NewMemoryEngine()
	require.NoError(t, engine.CreateNode(&Node{
		ID:         "alice",
		Labels:     []string{"Person"},
		Properties: map[string]any{"name": "Alice", "age": 30},
	}))
	require.NoError(t, engine.CreateNode(&Node{ID: "bob"}))
	require.NoError(t, engine.CreateEdge(&Edge{
		ID: "e1", StartNode: "alice", EndNode: "bob", Type: "KNOWS",
		Properties: map[string]any{"since": 2020, "close": true},
	}))
	return engine
}

func TestNodeProperties(t *testing.T) {
	engine := setupPropertyGraph(t)

	t.Run("has property", func(t *testing.T) {
		ok, err := engine.NodeHasProperty("alice", "name")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = engine.NodeHasProperty("alice", "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("get property", func(t *testing.T) {
		v, ok, err := engine.NodeProperty("alice", "name")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Alice", v)
	})

	t.Run("missing key is not an error", func(t *testing.T) {
		v, ok, err := engine.NodeProperty("alice", "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("node without properties", func(t *testing.T) {
		keys, err := engine.NodePropertyKeys("bob")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("keys are sorted", func(t *testing.T) {
		keys, err := engine.NodePropertyKeys("alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"age", "name"}, keys)
	})

	t.Run("missing node", func(t *testing.T) {
		_, err := engine.NodeHasProperty("ghost", "name")
		assert.ErrorIs(t, err, ErrNotFound)

		_, _, err = engine.NodeProperty("ghost", "name")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = engine.NodePropertyKeys("ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty ID", func(t *testing.T) {
		_, _, err := engine.NodeProperty("", "name")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("closed engine", func(t *testing.T) {
		closed := setupPropertyGraph(t)
		require.NoError(t, closed.Close())

		_, err := closed.NodeHasProperty("alice", "name")
		assert.ErrorIs(t, err, ErrStorageClosed)
	})
}

func TestRelProperties(t *testing.T) {
	engine := setupPropertyGraph(t)

	t.Run("has property", func(t *testing.T) {
		ok, err := engine.RelHasProperty("e1", "since")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = engine.RelHasProperty("e1", "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("get property", func(t *testing.T) {
		v, ok, err := engine.RelProperty("e1", "since")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2020, v)
	})

	t.Run("missing key is not an error", func(t *testing.T) {
		v, ok, err := engine.RelProperty("e1", "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("keys are sorted", func(t *testing.T) {
		keys, err := engine.RelPropertyKeys("e1")
		require.NoError(t, err)
		assert.Equal(t, []string{"close", "since"}, keys)
	})

	t.Run("missing edge", func(t *testing.T) {
		_, err := engine.RelHasProperty("ghost", "since")
		assert.ErrorIs(t, err, ErrNotFound)

		_, _, err = engine.RelProperty("ghost", "since")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = engine.RelPropertyKeys("ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty ID", func(t *testing.T) {
		_, err := engine.RelHasProperty("", "since")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("reads are live", func(t *testing.T) {
		engine := setupPropertyGraph(t)
		require.NoError(t, engine.UpdateEdge(&Edge{
			ID: "e1", StartNode: "alice", EndNode: "bob", Type: "KNOWS",
			Properties: map[string]any{"since": 2021},
		}))

		v, ok, err := engine.RelProperty("e1", "since")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2021, v)
	})
}
