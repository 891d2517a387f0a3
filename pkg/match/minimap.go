package match

import (
	"github.com/orneryd/sleipnir/pkg/storage"
)

// Binding names the expansion core publishes on every candidate context.
const (
	// BindingRelationship resolves to the candidate *storage.Edge.
	BindingRelationship = "r"
	// BindingNode resolves to the candidate far node's storage.NodeID.
	BindingNode = "n"
)

// MiniMap is the per-candidate binding context: one relationship, the node on
// its far side, and the ambient query state. Built fresh for every candidate
// a step inspects and discarded right after the predicates run.
type MiniMap struct {
	rel   *storage.Edge
	node  storage.NodeID
	state *QueryState
}

// NewMiniMap binds one candidate relationship/node pair to the query state.
func NewMiniMap(rel *storage.Edge, node storage.NodeID, state *QueryState) *MiniMap {
	return &MiniMap{rel: rel, node: node, state: state}
}

// Value resolves a binding by name. Unknown names return (nil, false).
func (m *MiniMap) Value(name string) (any, bool) {
	switch name {
	case BindingRelationship:
		return m.rel, true
	case BindingNode:
		return m.node, true
	}
	return nil, false
}

// Relationship returns the candidate relationship.
func (m *MiniMap) Relationship() *storage.Edge { return m.rel }

// Node returns the candidate far node.
func (m *MiniMap) Node() storage.NodeID { return m.node }

// State returns the ambient query state.
func (m *MiniMap) State() *QueryState { return m.state }
