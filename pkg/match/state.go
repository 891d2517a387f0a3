package match

import (
	"github.com/orneryd/sleipnir/pkg/storage"
)

// QueryContext is the slice of the store that expansion needs: relationship
// enumeration plus property reads on both entity kinds. *storage.MemoryEngine
// satisfies it directly; tests wrap it to count calls.
type QueryContext interface {
	// RelationshipsFor returns a lazy cursor over the relationships incident
	// to nodeID in the given direction, optionally filtered to the named
	// types. Errors surface through the cursor's Err, not here.
	RelationshipsFor(nodeID storage.NodeID, direction storage.Direction, types ...string) storage.EdgeIterator

	NodeHasProperty(nodeID storage.NodeID, key string) (bool, error)
	NodeProperty(nodeID storage.NodeID, key string) (any, bool, error)
	NodePropertyKeys(nodeID storage.NodeID) ([]string, error)

	RelHasProperty(edgeID storage.EdgeID, key string) (bool, error)
	RelProperty(edgeID storage.EdgeID, key string) (any, bool, error)
	RelPropertyKeys(edgeID storage.EdgeID) ([]string, error)
}

// QueryState carries everything predicate evaluation may consult during one
// query execution: the store handle and the query's parameter map.
type QueryState struct {
	Query  QueryContext
	Params map[string]any
}

// NewQueryState builds a QueryState over the given store. Params may be nil
// when the query carries no parameters.
func NewQueryState(query QueryContext, params map[string]any) *QueryState {
	if params == nil {
		params = map[string]any{}
	}
	return &QueryState{Query: query, Params: params}
}

// Parameter looks up a query parameter by name.
func (s *QueryState) Parameter(name string) (any, bool) {
	v, ok := s.Params[name]
	return v, ok
}
