package storage

import (
	"sort"

	"github.com/orneryd/sleipnir/pkg/metrics"
)

// Property access, per entity kind. Every call is a live store read:
// nothing is cached on the caller's side of the lock. A missing entity
// is ErrNotFound; a missing key is reported through the boolean.

// NodeHasProperty reports whether the node carries the property key.
func (m *MemoryEngine) NodeHasProperty(id NodeID, key string) (bool, error) {
	metrics.PropertyReads.WithLabelValues("node").Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.nodeLocked(id)
	if err != nil {
		return false, err
	}
	_, ok := node.Properties[key]
	return ok, nil
}

// NodeProperty returns the value of a node property and whether the
// key is present.
func (m *MemoryEngine) NodeProperty(id NodeID, key string) (any, bool, error) {
	metrics.PropertyReads.WithLabelValues("node").Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.nodeLocked(id)
	if err != nil {
		return nil, false, err
	}
	v, ok := node.Properties[key]
	return v, ok, nil
}

// NodePropertyKeys returns the node's property keys in sorted order.
func (m *MemoryEngine) NodePropertyKeys(id NodeID) ([]string, error) {
	metrics.PropertyReads.WithLabelValues("node").Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.nodeLocked(id)
	if err != nil {
		return nil, err
	}
	return sortedKeys(node.Properties), nil
}

// RelHasProperty reports whether the edge carries the property key.
func (m *MemoryEngine) RelHasProperty(id EdgeID, key string) (bool, error) {
	metrics.PropertyReads.WithLabelValues("relationship").Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	edge, err := m.edgeLocked(id)
	if err != nil {
		return false, err
	}
	_, ok := edge.Properties[key]
	return ok, nil
}

// RelProperty returns the value of an edge property and whether the
// key is present.
func (m *MemoryEngine) RelProperty(id EdgeID, key string) (any, bool, error) {
	metrics.PropertyReads.WithLabelValues("relationship").Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	edge, err := m.edgeLocked(id)
	if err != nil {
		return nil, false, err
	}
	v, ok := edge.Properties[key]
	return v, ok, nil
}

// RelPropertyKeys returns the edge's property keys in sorted order.
func (m *MemoryEngine) RelPropertyKeys(id EdgeID) ([]string, error) {
	metrics.PropertyReads.WithLabelValues("relationship").Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	edge, err := m.edgeLocked(id)
	if err != nil {
		return nil, err
	}
	return sortedKeys(edge.Properties), nil
}

func (m *MemoryEngine) nodeLocked(id NodeID) (*Node, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if m.closed {
		return nil, ErrStorageClosed
	}
	node, exists := m.nodes[id]
	if !exists {
		return nil, ErrNotFound
	}
	return node, nil
}

func (m *MemoryEngine) edgeLocked(id EdgeID) (*Edge, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if m.closed {
		return nil, ErrStorageClosed
	}
	edge, exists := m.edges[id]
	if !exists {
		return nil, ErrNotFound
	}
	return edge, nil
}

func sortedKeys(props map[string]any) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
