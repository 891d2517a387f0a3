package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/sleipnir/pkg/storage"
)

// setupChainGraph creates a straight line for variable-length walks.
// Graph structure:
//
//	a -[NEXT e1]-> b -[NEXT e2]-> c -[NEXT e3]-> d
func setupChainGraph(t *testing.T) *storage.MemoryEngine {
	t.Helper()
	engine := storage.NewMemoryEngine()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, engine.CreateNode(&storage.Node{ID: storage.NodeID(id)}))
	}
	links := []struct {
		id, from, to string
	}{
		{"e1", "a", "b"},
		{"e2", "b", "c"},
		{"e3", "c", "d"},
	}
	for _, l := range links {
		require.NoError(t, engine.CreateEdge(&storage.Edge{
			ID: storage.EdgeID(l.id), Type: "NEXT",
			StartNode: storage.NodeID(l.from), EndNode: storage.NodeID(l.to),
		}))
	}
	return engine
}

func TestVarLengthStep_Expand(t *testing.T) {
	t.Run("filters one traversal like a single hop", func(t *testing.T) {
		engine := setupChainGraph(t)
		state := NewQueryState(engine, nil)

		step := NewVarLengthStep(0, []string{"NEXT"}, storage.DirectionOutgoing, 1, 3, nil, nil, nil)
		exp, _ := step.Expand("a", state)

		assert.Equal(t, []string{"e1"}, collectEdges(t, exp))
	})

	t.Run("continuation shifts both bounds down", func(t *testing.T) {
		engine := setupChainGraph(t)
		state := NewQueryState(engine, nil)

		step := NewVarLengthStep(0, []string{"NEXT"}, storage.DirectionOutgoing, 2, 3, nil, nil, nil)
		_, next := step.Expand("a", state)

		rest, ok := next.(*VarLengthStep)
		require.True(t, ok)
		assert.Equal(t, 1, rest.Min())
		assert.Equal(t, 2, rest.Max())
		assert.False(t, rest.ShouldInclude())
	})

	t.Run("minimum bottoms out at zero", func(t *testing.T) {
		engine := setupChainGraph(t)
		state := NewQueryState(engine, nil)

		step := NewVarLengthStep(0, []string{"NEXT"}, storage.DirectionOutgoing, 0, 3, nil, nil, nil)
		_, next := step.Expand("a", state)

		rest, ok := next.(*VarLengthStep)
		require.True(t, ok)
		assert.Equal(t, 0, rest.Min())
		assert.True(t, rest.ShouldInclude())
	})

	t.Run("unlimited stays unlimited", func(t *testing.T) {
		engine := setupChainGraph(t)
		state := NewQueryState(engine, nil)

		step := NewVarLengthStep(0, []string{"NEXT"}, storage.DirectionOutgoing, 1, Unlimited, nil, nil, nil)
		_, next := step.Expand("a", state)

		rest, ok := next.(*VarLengthStep)
		require.True(t, ok)
		assert.Equal(t, Unlimited, rest.Max())
	})

	t.Run("last allowed traversal hands over the tail", func(t *testing.T) {
		engine := setupChainGraph(t)
		state := NewQueryState(engine, nil)

		tail := NewSingleStep(1, []string{"NEXT"}, storage.DirectionOutgoing, nil, nil, nil)
		step := NewVarLengthStep(0, []string{"NEXT"}, storage.DirectionOutgoing, 1, 1, tail, nil, nil)
		exp, next := step.Expand("a", state)

		assert.Same(t, tail, next)
		assert.Equal(t, []string{"e1"}, collectEdges(t, exp))
	})

	t.Run("consumed span yields nothing", func(t *testing.T) {
		engine := setupChainGraph(t)
		state := NewQueryState(engine, nil)

		step := NewVarLengthStep(0, []string{"NEXT"}, storage.DirectionOutgoing, 0, 0, nil, nil, nil)
		exp, next := step.Expand("a", state)

		assert.Nil(t, next)
		assert.False(t, exp.Next())
		assert.NoError(t, exp.Err())
	})

	t.Run("bounded walk to exhaustion", func(t *testing.T) {
		engine := setupChainGraph(t)
		state := NewQueryState(engine, nil)

		// *1..2 from a: paths a->b and a->b->c, never a->b->c->d.
		var endpoints []string
		var walk func(node storage.NodeID, step Step)
		walk = func(node storage.NodeID, step Step) {
			if step == nil {
				return
			}
			exp, next := step.Expand(node, state)
			for exp.Next() {
				far := exp.Relationship().OtherEnd(node)
				if next == nil || next.ShouldInclude() {
					endpoints = append(endpoints, string(far))
				}
				walk(far, next)
			}
			require.NoError(t, exp.Err())
		}

		step := NewVarLengthStep(0, []string{"NEXT"}, storage.DirectionOutgoing, 1, 2, nil, nil, nil)
		if step.ShouldInclude() {
			endpoints = append(endpoints, "a")
		}
		walk("a", step)

		assert.Equal(t, []string{"b", "c"}, endpoints)
	})
}

func TestVarLengthStep_CreateCopy(t *testing.T) {
	relPred := HasProp(BindingRelationship, "w")
	tail := NewSingleStep(9, nil, storage.DirectionOutgoing, nil, nil, nil)
	orig := NewVarLengthStep(4, []string{"NEXT"}, storage.DirectionOutgoing, 2, 6, tail, relPred, nil)

	t.Run("preserves bounds and relationship predicate", func(t *testing.T) {
		cp, ok := orig.CreateCopy(nil, storage.DirectionIncoming, nil).(*VarLengthStep)
		require.True(t, ok)

		assert.Equal(t, 4, cp.ID())
		assert.Equal(t, 2, cp.Min())
		assert.Equal(t, 6, cp.Max())
		assert.Equal(t, []string{"NEXT"}, cp.Types())
		assert.Equal(t, relPred, cp.RelationshipPredicate())
		assert.Equal(t, storage.DirectionIncoming, cp.Direction())
		assert.Nil(t, cp.Next())
	})

	t.Run("round-trip copy equals the original", func(t *testing.T) {
		cp := orig.CreateCopy(orig.Next(), orig.Direction(), orig.NodePredicate())
		assert.True(t, cp.Equals(orig))
	})
}

func TestVarLengthStep_Equals(t *testing.T) {
	build := func(min, max int) *VarLengthStep {
		return NewVarLengthStep(0, []string{"NEXT"}, storage.DirectionOutgoing, min, max, nil, nil, nil)
	}

	assert.True(t, build(1, 3).Equals(build(1, 3)))
	assert.False(t, build(1, 3).Equals(build(0, 3)))
	assert.False(t, build(1, 3).Equals(build(1, Unlimited)))
}

func TestNewVarLengthStep_ClampsNegativeMin(t *testing.T) {
	s := NewVarLengthStep(0, nil, storage.DirectionOutgoing, -2, 3, nil, nil, nil)
	assert.Equal(t, 0, s.Min())
	assert.True(t, s.ShouldInclude())
}
