package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/sleipnir/pkg/storage"
)

// Interface compliance checks.
func TestStepInterfaces(t *testing.T) {
	var _ Step = (*SingleStep)(nil)
	var _ Step = (*VarLengthStep)(nil)
	var _ QueryContext = (*storage.MemoryEngine)(nil)
}

// chainOf links single steps right to left so chainOf(a, b, c) reads a->b->c.
func chainOf(t *testing.T, specs ...func(next Step) Step) Step {
	t.Helper()
	var next Step
	for i := len(specs) - 1; i >= 0; i-- {
		next = specs[i](next)
	}
	return next
}

func single(id int, types []string, direction storage.Direction) func(next Step) Step {
	return func(next Step) Step {
		return NewSingleStep(id, types, direction, next, nil, nil)
	}
}

func TestSingleStep_Equals(t *testing.T) {
	build := func() Step {
		return chainOf(t,
			single(0, []string{"KNOWS"}, storage.DirectionOutgoing),
			single(1, []string{"LIKES", "OWNS"}, storage.DirectionIncoming),
		)
	}

	t.Run("reflexive", func(t *testing.T) {
		a := build()
		assert.True(t, a.Equals(a))
	})

	t.Run("structurally equal chains match pairwise", func(t *testing.T) {
		a, b := build(), build()
		assert.True(t, a.Equals(b))
		assert.True(t, b.Equals(a))
	})

	t.Run("transitive", func(t *testing.T) {
		a, b, c := build(), build(), build()
		require.True(t, a.Equals(b))
		require.True(t, b.Equals(c))
		assert.True(t, a.Equals(c))
	})

	t.Run("id differs", func(t *testing.T) {
		a := NewSingleStep(0, nil, storage.DirectionOutgoing, nil, nil, nil)
		b := NewSingleStep(7, nil, storage.DirectionOutgoing, nil, nil, nil)
		assert.False(t, a.Equals(b))
	})

	t.Run("direction differs", func(t *testing.T) {
		a := NewSingleStep(0, nil, storage.DirectionOutgoing, nil, nil, nil)
		b := NewSingleStep(0, nil, storage.DirectionBoth, nil, nil, nil)
		assert.False(t, a.Equals(b))
	})

	t.Run("type order matters", func(t *testing.T) {
		a := NewSingleStep(0, []string{"A", "B"}, storage.DirectionOutgoing, nil, nil, nil)
		b := NewSingleStep(0, []string{"B", "A"}, storage.DirectionOutgoing, nil, nil, nil)
		assert.False(t, a.Equals(b))
	})

	t.Run("predicate differs", func(t *testing.T) {
		a := NewSingleStep(0, nil, storage.DirectionOutgoing, nil, PropEquals("r", "k", 1), nil)
		b := NewSingleStep(0, nil, storage.DirectionOutgoing, nil, PropEquals("r", "k", 2), nil)
		c := NewSingleStep(0, nil, storage.DirectionOutgoing, nil, PropEquals("r", "k", 1), nil)
		assert.False(t, a.Equals(b))
		assert.True(t, a.Equals(c))
	})

	t.Run("continuation differs", func(t *testing.T) {
		tail := NewSingleStep(1, nil, storage.DirectionOutgoing, nil, nil, nil)
		a := NewSingleStep(0, nil, storage.DirectionOutgoing, tail, nil, nil)
		b := NewSingleStep(0, nil, storage.DirectionOutgoing, nil, nil, nil)
		assert.False(t, a.Equals(b))
		assert.False(t, b.Equals(a))
	})

	t.Run("different hop kinds never equal", func(t *testing.T) {
		a := NewSingleStep(0, []string{"T"}, storage.DirectionOutgoing, nil, nil, nil)
		b := NewVarLengthStep(0, []string{"T"}, storage.DirectionOutgoing, 1, 1, nil, nil, nil)
		assert.False(t, a.Equals(b))
		assert.False(t, b.Equals(a))
	})
}

func TestSingleStep_CreateCopy(t *testing.T) {
	relPred := PropEquals(BindingRelationship, "since", 2020)
	nodePred := PropEquals(BindingNode, "name", "Alice")
	tail := NewSingleStep(1, []string{"LIKES"}, storage.DirectionOutgoing, nil, nil, nil)
	orig := NewSingleStep(0, []string{"KNOWS"}, storage.DirectionOutgoing, tail, relPred, nodePred)

	t.Run("replaces the three named fields", func(t *testing.T) {
		newTail := NewSingleStep(2, nil, storage.DirectionBoth, nil, nil, nil)
		newPred := PropEquals(BindingNode, "name", "Bob")

		cp := orig.CreateCopy(newTail, storage.DirectionIncoming, newPred)

		assert.Equal(t, storage.DirectionIncoming, cp.Direction())
		assert.True(t, newTail.Equals(cp.Next()))
		assert.Equal(t, newPred, cp.NodePredicate())
	})

	t.Run("preserves id, types, relationship predicate", func(t *testing.T) {
		cp := orig.CreateCopy(nil, storage.DirectionIncoming, nil)

		assert.Equal(t, 0, cp.ID())
		assert.Equal(t, []string{"KNOWS"}, cp.Types())
		assert.Equal(t, relPred, cp.RelationshipPredicate())
	})

	t.Run("round-trip copy equals the original", func(t *testing.T) {
		cp := orig.CreateCopy(orig.Next(), orig.Direction(), orig.NodePredicate())
		assert.True(t, cp.Equals(orig))
		assert.True(t, orig.Equals(cp))
	})

	t.Run("copy is structurally new", func(t *testing.T) {
		cp := orig.CreateCopy(orig.Next(), orig.Direction(), orig.NodePredicate())
		require.NotSame(t, orig, cp)

		// Mutating the copy's type slice must not leak back.
		cpTypes := cp.Types()
		cpTypes[0] = "MUTATED"
		assert.Equal(t, []string{"KNOWS"}, orig.Types())
	})
}

func TestStep_Size(t *testing.T) {
	t.Run("single hop", func(t *testing.T) {
		s := NewSingleStep(0, nil, storage.DirectionOutgoing, nil, nil, nil)
		n, ok := s.Size()
		assert.True(t, ok)
		assert.Equal(t, 1, n)
	})

	t.Run("chain of three fixed hops", func(t *testing.T) {
		s := chainOf(t,
			single(0, nil, storage.DirectionOutgoing),
			single(1, nil, storage.DirectionOutgoing),
			single(2, nil, storage.DirectionOutgoing),
		)
		n, ok := s.Size()
		assert.True(t, ok)
		assert.Equal(t, 3, n)
	})

	t.Run("variable hop anywhere makes the chain unbounded", func(t *testing.T) {
		varHop := NewVarLengthStep(1, nil, storage.DirectionOutgoing, 1, 3, nil, nil, nil)
		head := NewSingleStep(0, nil, storage.DirectionOutgoing, varHop, nil, nil)

		_, ok := head.Size()
		assert.False(t, ok)

		_, ok = varHop.Size()
		assert.False(t, ok)
	})
}

func TestStep_ShouldInclude(t *testing.T) {
	t.Run("single hops never force-include", func(t *testing.T) {
		s := NewSingleStep(0, nil, storage.DirectionOutgoing, nil, nil, nil)
		assert.False(t, s.ShouldInclude())
	})

	t.Run("variable hop includes once its minimum is met", func(t *testing.T) {
		mandatory := NewVarLengthStep(0, nil, storage.DirectionOutgoing, 2, 5, nil, nil, nil)
		satisfied := NewVarLengthStep(0, nil, storage.DirectionOutgoing, 0, 5, nil, nil, nil)
		assert.False(t, mandatory.ShouldInclude())
		assert.True(t, satisfied.ShouldInclude())
	})
}

func TestStep_String(t *testing.T) {
	t.Run("outgoing then incoming", func(t *testing.T) {
		s := chainOf(t,
			single(0, []string{"KNOWS"}, storage.DirectionOutgoing),
			single(1, []string{"LIKES", "OWNS"}, storage.DirectionIncoming),
		)
		assert.Equal(t, "(0)-[:KNOWS]->(1)<-[:LIKES|OWNS]-()", s.String())
	})

	t.Run("untyped both-direction hop", func(t *testing.T) {
		s := NewSingleStep(3, nil, storage.DirectionBoth, nil, nil, nil)
		assert.Equal(t, "(3)-[]-()", s.String())
	})

	t.Run("variable-length spans", func(t *testing.T) {
		bounded := NewVarLengthStep(0, []string{"KNOWS"}, storage.DirectionOutgoing, 1, 3, nil, nil, nil)
		assert.Equal(t, "(0)-[:KNOWS*1..3]->()", bounded.String())

		open := NewVarLengthStep(0, nil, storage.DirectionOutgoing, 2, Unlimited, nil, nil, nil)
		assert.Equal(t, "(0)-[*2..]->()", open.String())
	})
}

func TestSingleStep_Accessors(t *testing.T) {
	relPred := HasProp(BindingRelationship, "since")
	nodePred := HasProp(BindingNode, "name")
	tail := NewSingleStep(1, nil, storage.DirectionOutgoing, nil, nil, nil)
	s := NewSingleStep(0, []string{"A", "B"}, storage.DirectionIncoming, tail, relPred, nodePred)

	assert.Equal(t, 0, s.ID())
	assert.Equal(t, []string{"A", "B"}, s.Types())
	assert.Equal(t, storage.DirectionIncoming, s.Direction())
	assert.Same(t, tail, s.Next())
	assert.Equal(t, relPred, s.RelationshipPredicate())
	assert.Equal(t, nodePred, s.NodePredicate())

	t.Run("nil predicates normalize to True", func(t *testing.T) {
		bare := NewSingleStep(0, nil, storage.DirectionOutgoing, nil, nil, nil)
		assert.Equal(t, True, bare.RelationshipPredicate())
		assert.Equal(t, True, bare.NodePredicate())
	})

	t.Run("constructor copies the type slice", func(t *testing.T) {
		types := []string{"A"}
		s := NewSingleStep(0, types, storage.DirectionOutgoing, nil, nil, nil)
		types[0] = "MUTATED"
		assert.Equal(t, []string{"A"}, s.Types())
	})
}
