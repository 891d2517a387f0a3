// Package storage provides the property-graph store the expansion engine
// runs against. MemoryEngine is a thread-safe in-memory implementation
// for tests, tooling, and datasets that fit in RAM.
package storage

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/btree"
)

func edgeIDLess(a, b EdgeID) bool { return a < b }

// MemoryEngine is an in-memory implementation of Engine. Adjacency is
// kept in ordered trees so incident edges always enumerate in ascending
// edge ID order, independent of insertion order.
type MemoryEngine struct {
	mu    sync.RWMutex
	nodes map[NodeID]*Node
	edges map[EdgeID]*Edge

	// Indexes for efficient lookups. Label keys are lower-cased:
	// label matching is case-insensitive.
	nodesByLabel  map[string]map[NodeID]struct{}
	outgoingEdges map[NodeID]*btree.BTreeG[EdgeID]
	incomingEdges map[NodeID]*btree.BTreeG[EdgeID]

	closed bool
}

// NewMemoryEngine creates a new in-memory storage engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		nodes:         make(map[NodeID]*Node),
		edges:         make(map[EdgeID]*Edge),
		nodesByLabel:  make(map[string]map[NodeID]struct{}),
		outgoingEdges: make(map[NodeID]*btree.BTreeG[EdgeID]),
		incomingEdges: make(map[NodeID]*btree.BTreeG[EdgeID]),
	}
}

func labelKey(label string) string { return strings.ToLower(label) }

// CreateNode creates a new node. An empty ID is assigned a fresh UUID,
// written back to the caller's struct.
func (m *MemoryEngine) CreateNode(node *Node) error {
	if node == nil {
		return ErrInvalidData
	}
	if node.ID == "" {
		node.ID = NodeID(uuid.New().String())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}

	if _, exists := m.nodes[node.ID]; exists {
		return ErrAlreadyExists
	}

	// Deep copy to prevent external mutation
	m.nodes[node.ID] = m.copyNode(node)
	m.indexLabels(node.ID, node.Labels)

	return nil
}

// GetNode retrieves a node by ID.
func (m *MemoryEngine) GetNode(id NodeID) (*Node, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageClosed
	}

	node, exists := m.nodes[id]
	if !exists {
		return nil, ErrNotFound
	}

	return m.copyNode(node), nil
}

// UpdateNode replaces an existing node and reindexes its labels.
func (m *MemoryEngine) UpdateNode(node *Node) error {
	if node == nil {
		return ErrInvalidData
	}
	if node.ID == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}

	existing, exists := m.nodes[node.ID]
	if !exists {
		return ErrNotFound
	}

	m.unindexLabels(node.ID, existing.Labels)
	m.nodes[node.ID] = m.copyNode(node)
	m.indexLabels(node.ID, node.Labels)

	return nil
}

// DeleteNode removes a node and cascades to its incident edges.
func (m *MemoryEngine) DeleteNode(id NodeID) error {
	if id == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}

	node, exists := m.nodes[id]
	if !exists {
		return ErrNotFound
	}

	// Snapshot incident edge IDs before mutating the trees.
	var incident []EdgeID
	if tree := m.outgoingEdges[id]; tree != nil {
		tree.Scan(func(eid EdgeID) bool {
			incident = append(incident, eid)
			return true
		})
	}
	if tree := m.incomingEdges[id]; tree != nil {
		tree.Scan(func(eid EdgeID) bool {
			incident = append(incident, eid)
			return true
		})
	}
	for _, eid := range incident {
		m.removeEdgeLocked(eid)
	}

	m.unindexLabels(id, node.Labels)
	delete(m.nodes, id)
	delete(m.outgoingEdges, id)
	delete(m.incomingEdges, id)

	return nil
}

// CreateEdge creates a new edge. Both endpoints must exist. An empty ID
// is assigned a fresh UUID, written back to the caller's struct.
func (m *MemoryEngine) CreateEdge(edge *Edge) error {
	if edge == nil {
		return ErrInvalidData
	}
	if edge.ID == "" {
		edge.ID = EdgeID(uuid.New().String())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}

	if _, exists := m.edges[edge.ID]; exists {
		return ErrAlreadyExists
	}
	if _, exists := m.nodes[edge.StartNode]; !exists {
		return ErrNotFound
	}
	if _, exists := m.nodes[edge.EndNode]; !exists {
		return ErrNotFound
	}

	m.edges[edge.ID] = m.copyEdge(edge)
	m.indexEdgeLocked(edge)

	return nil
}

// GetEdge retrieves an edge by ID.
func (m *MemoryEngine) GetEdge(id EdgeID) (*Edge, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageClosed
	}

	edge, exists := m.edges[id]
	if !exists {
		return nil, ErrNotFound
	}

	return m.copyEdge(edge), nil
}

// UpdateEdge replaces an existing edge, reindexing adjacency when the
// endpoints change. New endpoints must exist.
func (m *MemoryEngine) UpdateEdge(edge *Edge) error {
	if edge == nil {
		return ErrInvalidData
	}
	if edge.ID == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}

	existing, exists := m.edges[edge.ID]
	if !exists {
		return ErrNotFound
	}
	if _, exists := m.nodes[edge.StartNode]; !exists {
		return ErrNotFound
	}
	if _, exists := m.nodes[edge.EndNode]; !exists {
		return ErrNotFound
	}

	m.unindexEdgeLocked(existing)
	m.edges[edge.ID] = m.copyEdge(edge)
	m.indexEdgeLocked(edge)

	return nil
}

// DeleteEdge removes an edge.
func (m *MemoryEngine) DeleteEdge(id EdgeID) error {
	if id == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}

	if _, exists := m.edges[id]; !exists {
		return ErrNotFound
	}

	m.removeEdgeLocked(id)
	return nil
}

// GetNodesByLabel returns all nodes carrying the given label.
// Matching is case-insensitive.
func (m *MemoryEngine) GetNodesByLabel(label string) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageClosed
	}

	nodeIDs := m.nodesByLabel[labelKey(label)]
	if nodeIDs == nil {
		return []*Node{}, nil
	}

	nodes := make([]*Node, 0, len(nodeIDs))
	for id := range nodeIDs {
		if node := m.nodes[id]; node != nil {
			nodes = append(nodes, m.copyNode(node))
		}
	}

	return nodes, nil
}

// GetAllNodes returns all nodes in the storage.
func (m *MemoryEngine) GetAllNodes() []*Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return []*Node{}
	}

	nodes := make([]*Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		nodes = append(nodes, m.copyNode(node))
	}

	return nodes
}

// GetAllEdges returns all edges in the storage.
func (m *MemoryEngine) GetAllEdges() []*Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return []*Edge{}
	}

	edges := make([]*Edge, 0, len(m.edges))
	for _, edge := range m.edges {
		edges = append(edges, m.copyEdge(edge))
	}

	return edges
}

// GetOutgoingEdges returns all edges starting from the given node, in
// ascending edge ID order.
func (m *MemoryEngine) GetOutgoingEdges(nodeID NodeID) ([]*Edge, error) {
	if nodeID == "" {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageClosed
	}

	return m.collectEdgesLocked(m.outgoingEdges[nodeID]), nil
}

// GetIncomingEdges returns all edges ending at the given node, in
// ascending edge ID order.
func (m *MemoryEngine) GetIncomingEdges(nodeID NodeID) ([]*Edge, error) {
	if nodeID == "" {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageClosed
	}

	return m.collectEdgesLocked(m.incomingEdges[nodeID]), nil
}

// GetEdgesBetween returns all edges from startID to endID.
func (m *MemoryEngine) GetEdgesBetween(startID, endID NodeID) ([]*Edge, error) {
	if startID == "" || endID == "" {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageClosed
	}

	tree := m.outgoingEdges[startID]
	if tree == nil {
		return []*Edge{}, nil
	}

	edges := make([]*Edge, 0)
	tree.Scan(func(id EdgeID) bool {
		if edge := m.edges[id]; edge != nil && edge.EndNode == endID {
			edges = append(edges, m.copyEdge(edge))
		}
		return true
	})

	return edges, nil
}

// GetEdgeBetween returns the first edge from source to target with the
// given type, or nil if none exists. An empty type matches any edge.
func (m *MemoryEngine) GetEdgeBetween(source, target NodeID, edgeType string) *Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil
	}

	tree := m.outgoingEdges[source]
	if tree == nil {
		return nil
	}

	var found *Edge
	tree.Scan(func(id EdgeID) bool {
		edge := m.edges[id]
		if edge != nil && edge.EndNode == target {
			if edgeType == "" || edge.Type == edgeType {
				found = m.copyEdge(edge)
				return false
			}
		}
		return true
	})

	return found
}

// GetInDegree returns the number of incoming edges. Unknown nodes and
// closed storage report zero.
func (m *MemoryEngine) GetInDegree(nodeID NodeID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0
	}
	if tree := m.incomingEdges[nodeID]; tree != nil {
		return tree.Len()
	}
	return 0
}

// GetOutDegree returns the number of outgoing edges. Unknown nodes and
// closed storage report zero.
func (m *MemoryEngine) GetOutDegree(nodeID NodeID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0
	}
	if tree := m.outgoingEdges[nodeID]; tree != nil {
		return tree.Len()
	}
	return 0
}

// BulkCreateNodes creates multiple nodes atomically: everything is
// validated before anything is inserted.
func (m *MemoryEngine) BulkCreateNodes(nodes []*Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}

	for _, node := range nodes {
		if node == nil {
			return ErrInvalidData
		}
		if node.ID == "" {
			node.ID = NodeID(uuid.New().String())
		}
		if _, exists := m.nodes[node.ID]; exists {
			return ErrAlreadyExists
		}
	}

	for _, node := range nodes {
		m.nodes[node.ID] = m.copyNode(node)
		m.indexLabels(node.ID, node.Labels)
	}

	return nil
}

// BulkCreateEdges creates multiple edges atomically: everything is
// validated before anything is inserted.
func (m *MemoryEngine) BulkCreateEdges(edges []*Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}

	for _, edge := range edges {
		if edge == nil {
			return ErrInvalidData
		}
		if edge.ID == "" {
			edge.ID = EdgeID(uuid.New().String())
		}
		if _, exists := m.edges[edge.ID]; exists {
			return ErrAlreadyExists
		}
		if _, exists := m.nodes[edge.StartNode]; !exists {
			return ErrNotFound
		}
		if _, exists := m.nodes[edge.EndNode]; !exists {
			return ErrNotFound
		}
	}

	for _, edge := range edges {
		m.edges[edge.ID] = m.copyEdge(edge)
		m.indexEdgeLocked(edge)
	}

	return nil
}

// Close closes the storage engine. All subsequent calls fail with
// ErrStorageClosed.
func (m *MemoryEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.nodes = nil
	m.edges = nil
	m.nodesByLabel = nil
	m.outgoingEdges = nil
	m.incomingEdges = nil

	return nil
}

// NodeCount returns the number of nodes.
func (m *MemoryEngine) NodeCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStorageClosed
	}

	return int64(len(m.nodes)), nil
}

// EdgeCount returns the number of edges.
func (m *MemoryEngine) EdgeCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStorageClosed
	}

	return int64(len(m.edges)), nil
}

// ===== Index maintenance (callers hold the write lock) =====

func (m *MemoryEngine) indexLabels(id NodeID, labels []string) {
	for _, label := range labels {
		key := labelKey(label)
		if m.nodesByLabel[key] == nil {
			m.nodesByLabel[key] = make(map[NodeID]struct{})
		}
		m.nodesByLabel[key][id] = struct{}{}
	}
}

func (m *MemoryEngine) unindexLabels(id NodeID, labels []string) {
	for _, label := range labels {
		key := labelKey(label)
		if m.nodesByLabel[key] != nil {
			delete(m.nodesByLabel[key], id)
			if len(m.nodesByLabel[key]) == 0 {
				delete(m.nodesByLabel, key)
			}
		}
	}
}

func (m *MemoryEngine) indexEdgeLocked(edge *Edge) {
	out := m.outgoingEdges[edge.StartNode]
	if out == nil {
		out = btree.NewBTreeG(edgeIDLess)
		m.outgoingEdges[edge.StartNode] = out
	}
	out.Set(edge.ID)

	in := m.incomingEdges[edge.EndNode]
	if in == nil {
		in = btree.NewBTreeG(edgeIDLess)
		m.incomingEdges[edge.EndNode] = in
	}
	in.Set(edge.ID)
}

func (m *MemoryEngine) unindexEdgeLocked(edge *Edge) {
	if tree := m.outgoingEdges[edge.StartNode]; tree != nil {
		tree.Delete(edge.ID)
		if tree.Len() == 0 {
			delete(m.outgoingEdges, edge.StartNode)
		}
	}
	if tree := m.incomingEdges[edge.EndNode]; tree != nil {
		tree.Delete(edge.ID)
		if tree.Len() == 0 {
			delete(m.incomingEdges, edge.EndNode)
		}
	}
}

func (m *MemoryEngine) removeEdgeLocked(id EdgeID) {
	edge, exists := m.edges[id]
	if !exists {
		return
	}
	m.unindexEdgeLocked(edge)
	delete(m.edges, id)
}

func (m *MemoryEngine) collectEdgesLocked(tree *btree.BTreeG[EdgeID]) []*Edge {
	if tree == nil {
		return []*Edge{}
	}
	edges := make([]*Edge, 0, tree.Len())
	tree.Scan(func(id EdgeID) bool {
		if edge := m.edges[id]; edge != nil {
			edges = append(edges, m.copyEdge(edge))
		}
		return true
	})
	return edges
}

// ===== Deep copies =====

// copyNode creates a deep copy of a node.
func (m *MemoryEngine) copyNode(n *Node) *Node {
	if n == nil {
		return nil
	}

	copied := &Node{
		ID:         n.ID,
		Labels:     make([]string, len(n.Labels)),
		Properties: make(map[string]any),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}

	copy(copied.Labels, n.Labels)
	for k, v := range n.Properties {
		copied.Properties[k] = v
	}

	return copied
}

// copyEdge creates a deep copy of an edge.
func (m *MemoryEngine) copyEdge(e *Edge) *Edge {
	if e == nil {
		return nil
	}

	copied := &Edge{
		ID:         e.ID,
		StartNode:  e.StartNode,
		EndNode:    e.EndNode,
		Type:       e.Type,
		Properties: make(map[string]any),
		CreatedAt:  e.CreatedAt,
	}

	for k, v := range e.Properties {
		copied.Properties[k] = v
	}

	return copied
}
