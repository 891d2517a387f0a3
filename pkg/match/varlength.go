package match

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/orneryd/sleipnir/pkg/storage"
)

// Unlimited marks a variable-length hop with no upper bound.
const Unlimited = -1

// VarLengthStep is the variable-cardinality hop: between min and max
// relationship traversals of the same shape before the chain continues.
// Each traversal filters exactly like a single hop; repetition is carried by
// the continuation Expand returns, so a driver never needs to know which
// kind of step it is walking.
type VarLengthStep struct {
	id        int
	types     []string
	direction storage.Direction
	min       int
	max       int
	next      Step
	relPred   Predicate
	nodePred  Predicate
}

// NewVarLengthStep builds one variable-length hop covering min..max
// traversals. max may be Unlimited; a negative min clamps to zero. Nil
// predicates normalize to True.
func NewVarLengthStep(id int, types []string, direction storage.Direction, min, max int, next Step, relPredicate, nodePredicate Predicate) *VarLengthStep {
	if min < 0 {
		min = 0
	}
	return &VarLengthStep{
		id:        id,
		types:     copyTypes(types),
		direction: direction,
		min:       min,
		max:       max,
		next:      next,
		relPred:   normalizePredicate(relPredicate),
		nodePred:  normalizePredicate(nodePredicate),
	}
}

func (s *VarLengthStep) ID() int { return s.id }

func (s *VarLengthStep) Types() []string { return copyTypes(s.types) }

func (s *VarLengthStep) Direction() storage.Direction { return s.direction }

func (s *VarLengthStep) Next() Step { return s.next }

func (s *VarLengthStep) RelationshipPredicate() Predicate { return s.relPred }

func (s *VarLengthStep) NodePredicate() Predicate { return s.nodePred }

// Min is the remaining minimum number of traversals.
func (s *VarLengthStep) Min() int { return s.min }

// Max is the remaining maximum number of traversals, or Unlimited.
func (s *VarLengthStep) Max() int { return s.max }

// Expand filters one traversal like a single hop. The returned continuation
// carries the repetition: with exactly one traversal left it hands over the
// tail, otherwise a copy of this step with both bounds shifted down
// (Unlimited stays Unlimited). A hop whose span is already consumed yields
// nothing.
func (s *VarLengthStep) Expand(node storage.NodeID, state *QueryState) (*Expansion, Step) {
	if s.max == 0 {
		return exhaustedExpansion(), s.next
	}
	source := state.Query.RelationshipsFor(node, s.direction, s.types...)
	exp := newExpansion(source, node, s.relPred, s.nodePred, state)
	if s.max == 1 {
		return exp, s.next
	}
	rest := &VarLengthStep{
		id:        s.id,
		types:     copyTypes(s.types),
		direction: s.direction,
		min:       decrementMin(s.min),
		max:       decrementMax(s.max),
		next:      s.next,
		relPred:   s.relPred,
		nodePred:  s.nodePred,
	}
	return exp, rest
}

func decrementMin(min int) int {
	if min == 0 {
		return 0
	}
	return min - 1
}

func decrementMax(max int) int {
	if max == Unlimited {
		return Unlimited
	}
	return max - 1
}

func (s *VarLengthStep) CreateCopy(next Step, direction storage.Direction, nodePredicate Predicate) Step {
	return &VarLengthStep{
		id:        s.id,
		types:     copyTypes(s.types),
		direction: direction,
		min:       s.min,
		max:       s.max,
		next:      next,
		relPred:   s.relPred,
		nodePred:  normalizePredicate(nodePredicate),
	}
}

// Size is never bounded: any chain containing a variable-length hop reports
// ok=false regardless of what follows it.
func (s *VarLengthStep) Size() (int, bool) { return 0, false }

// ShouldInclude is true once the remaining minimum reaches zero: the current
// position already satisfies the hop, so the driver may count the path here
// and continue to the tail without another traversal.
func (s *VarLengthStep) ShouldInclude() bool { return s.min == 0 }

func (s *VarLengthStep) Equals(other Step) bool {
	o, ok := other.(*VarLengthStep)
	if !ok || o == nil {
		return false
	}
	if s.id != o.id || s.direction != o.direction || s.min != o.min || s.max != o.max {
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

func (s *VarLengthStep) String() string {
	var b strings.Builder
	writeHop(&b, s.id, s.direction, typeLabel(s.types)+spanLabel(s.min, s.max))
	writeTail(&b, s.next)
	return b.String()
}

func spanLabel(min, max int) string {
	if max == Unlimited {
		return fmt.Sprintf("*%d..", min)
	}
	return fmt.Sprintf("*%d..%d", min, max)
}
