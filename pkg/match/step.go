// Package match implements the graph-pattern expansion engine: hop
// descriptors compiled from a query's pattern clause, lazy filtered
// expansion over the store's relationship cursors, and the uniform map
// views predicate evaluation runs against.
//
// A traversal driver owns a current node and a Step. It calls Expand, walks
// the returned Expansion, and for each yielded relationship moves to the far
// node and recurses with the returned continuation until the continuation is
// nil or the driver halts early. Everything is synchronous and pull-based:
// work happens on Next, never ahead of it.
package match

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/orneryd/sleipnir/pkg/storage"
)

// Step is one hop of a compiled pattern chain, an immutable value. Steps
// form a singly-linked acyclic chain through Next; each step exclusively
// owns its continuation. Planners re-link chains with CreateCopy, never by
// mutation.
type Step interface {
	// ID identifies the hop within its originating pattern.
	ID() int
	// Types is the relationship type filter, in pattern order. Empty means
	// any type.
	Types() []string
	// Direction is the traversal direction relative to the current node.
	Direction() storage.Direction
	// Next is the continuation, nil at chain end.
	Next() Step
	// RelationshipPredicate filters candidate relationships.
	RelationshipPredicate() Predicate
	// NodePredicate filters candidate far nodes.
	NodePredicate() Predicate

	// Expand returns the lazy filtered sequence of qualifying relationships
	// incident to node, plus the step the driver continues with. Building
	// the result reads no properties; store errors surface through the
	// Expansion's Err.
	Expand(node storage.NodeID, state *QueryState) (*Expansion, Step)

	// CreateCopy returns a structurally new step with continuation,
	// direction, and node predicate replaced and every other field
	// preserved.
	CreateCopy(next Step, direction storage.Direction, nodePredicate Predicate) Step

	// Size is the hop count from this step to chain end. ok is false when
	// any downstream hop has variable cardinality.
	Size() (n int, ok bool)

	// ShouldInclude reports whether the current position already satisfies
	// this hop for path-length accounting. Fixed hops always report false;
	// a variable-length hop reports true once its remaining minimum is zero.
	ShouldInclude() bool

	// Equals compares chains structurally, continuations included. Hops of
	// different kinds are never equal.
	Equals(other Step) bool

	// String renders the chain for diagnostics, e.g.
	// (0)-[:KNOWS]->(1)<-[:LIKES|OWNS]-().
	String() string
}

// SingleStep is the fixed-cardinality hop: exactly one relationship
// traversal, then the continuation.
type SingleStep struct {
	id        int
	types     []string
	direction storage.Direction
	next      Step
	relPred   Predicate
	nodePred  Predicate
}

// NewSingleStep builds one fixed hop. types are matched in order; nil
// predicates normalize to True.
func NewSingleStep(id int, types []string, direction storage.Direction, next Step, relPredicate, nodePredicate Predicate) *SingleStep {
	return &SingleStep{
		id:        id,
		types:     copyTypes(types),
		direction: direction,
		next:      next,
		relPred:   normalizePredicate(relPredicate),
		nodePred:  normalizePredicate(nodePredicate),
	}
}

func (s *SingleStep) ID() int { return s.id }

func (s *SingleStep) Types() []string { return copyTypes(s.types) }

func (s *SingleStep) Direction() storage.Direction { return s.direction }

func (s *SingleStep) Next() Step { return s.next }

func (s *SingleStep) RelationshipPredicate() Predicate { return s.relPred }

func (s *SingleStep) NodePredicate() Predicate { return s.nodePred }

// Expand pushes direction and type filtering down to the store cursor and
// wraps it with per-candidate predicate evaluation.
func (s *SingleStep) Expand(node storage.NodeID, state *QueryState) (*Expansion, Step) {
	source := state.Query.RelationshipsFor(node, s.direction, s.types...)
	return newExpansion(source, node, s.relPred, s.nodePred, state), s.next
}

func (s *SingleStep) CreateCopy(next Step, direction storage.Direction, nodePredicate Predicate) Step {
	return &SingleStep{
		id:        s.id,
		types:     copyTypes(s.types),
		direction: direction,
		next:      next,
		relPred:   s.relPred,
		nodePred:  normalizePredicate(nodePredicate),
	}
}

func (s *SingleStep) Size() (int, bool) {
	if s.next == nil {
		return 1, true
	}
	n, ok := s.next.Size()
	if !ok {
		return 0, false
	}
	return n + 1, true
}

func (s *SingleStep) ShouldInclude() bool { return false }

func (s *SingleStep) Equals(other Step) bool {
	o, ok := other.(*SingleStep)
	if !ok || o == nil {
		return false
	}
	if s.id != o.id || s.direction != o.direction {
		return false
	}
	if !equalTypes(s.types, o.types) {
		return false
	}
	if !reflect.DeepEqual(s.relPred, o.relPred) || !reflect.DeepEqual(s.nodePred, o.nodePred) {
		return false
	}
	return stepEquals(s.next, o.next)
}

func (s *SingleStep) String() string {
	var b strings.Builder
	writeHop(&b, s.id, s.direction, typeLabel(s.types))
	writeTail(&b, s.next)
	return b.String()
}

// ===== Chain helpers =====

func normalizePredicate(p Predicate) Predicate {
	if p == nil {
		return True
	}
	return p
}

func copyTypes(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, len(types))
	copy(out, types)
	return out
}

func equalTypes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stepEquals(a, b Step) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

func typeLabel(types []string) string {
	if len(types) == 0 {
		return ""
	}
	return ":" + strings.Join(types, "|")
}

func writeHop(b *strings.Builder, id int, direction storage.Direction, label string) {
	fmt.Fprintf(b, "(%d)", id)
	switch direction {
	case storage.DirectionOutgoing:
		fmt.Fprintf(b, "-[%s]->", label)
	case storage.DirectionIncoming:
		fmt.Fprintf(b, "<-[%s]-", label)
	default:
		fmt.Fprintf(b, "-[%s]-", label)
	}
}

func writeTail(b *strings.Builder, next Step) {
	if next == nil {
		b.WriteString("()")
		return
	}
	b.WriteString(next.String())
}
