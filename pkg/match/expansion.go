package match

import (
	"github.com/orneryd/sleipnir/pkg/metrics"
	"github.com/orneryd/sleipnir/pkg/storage"
)

// Expansion is the lazy filtered sequence one Expand call produces. Each
// pull fetches candidates from the store cursor until one passes both
// predicates; rejected candidates are never surfaced. Nothing is buffered
// beyond the in-flight candidate, so store reads are bounded by what the
// caller actually consumes. Single pass: restarting means calling Expand
// again. Abandoning it early is safe and needs no teardown.
type Expansion struct {
	source   storage.EdgeIterator
	node     storage.NodeID
	relPred  Predicate
	nodePred Predicate
	state    *QueryState

	cur  *storage.Edge
	err  error
	done bool
}

func newExpansion(source storage.EdgeIterator, node storage.NodeID, relPred, nodePred Predicate, state *QueryState) *Expansion {
	metrics.ExpansionsTotal.Inc()
	return &Expansion{
		source:   source,
		node:     node,
		relPred:  relPred,
		nodePred: nodePred,
		state:    state,
	}
}

// exhaustedExpansion yields nothing. Used for hops whose span is already
// consumed.
func exhaustedExpansion() *Expansion {
	metrics.ExpansionsTotal.Inc()
	return &Expansion{done: true}
}

// Next advances to the next relationship passing both predicates. It returns
// false when the source is exhausted or an error stopped iteration; check
// Err afterwards.
func (e *Expansion) Next() bool {
	if e.done {
		return false
	}
	for e.source.Next() {
		rel := e.source.Edge()
		mm := NewMiniMap(rel, rel.OtherEnd(e.node), e.state)

		ok, err := e.relPred.IsMatch(mm)
		if err != nil {
			e.fail(err)
			return false
		}
		if ok {
			ok, err = e.nodePred.IsMatch(mm)
			if err != nil {
				e.fail(err)
				return false
			}
		}
		if !ok {
			metrics.CandidatesRejected.Inc()
			continue
		}

		e.cur = rel
		metrics.RelationshipsYielded.Inc()
		return true
	}
	e.done = true
	e.cur = nil
	e.err = e.source.Err()
	return false
}

func (e *Expansion) fail(err error) {
	e.done = true
	e.cur = nil
	e.err = err
}

// Relationship returns the relationship yielded by the last successful Next.
func (e *Expansion) Relationship() *storage.Edge { return e.cur }

// Err reports the error that stopped iteration: a store error from the
// cursor or a predicate failure, unchanged either way.
func (e *Expansion) Err() error { return e.err }
