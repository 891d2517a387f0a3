package storage

import (
	"errors"
	"time"
)

// Storage errors.
var (
	// ErrNotFound is returned when a node or edge doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a node/edge with duplicate ID.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidID is returned for malformed IDs.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidData is returned for malformed node/edge data.
	ErrInvalidData = errors.New("invalid data")

	// ErrStorageClosed is returned when operating on closed storage.
	ErrStorageClosed = errors.New("storage closed")
)

// NodeID uniquely identifies a node.
type NodeID string

// EdgeID uniquely identifies an edge.
type EdgeID string

// Node is a labeled property container, one vertex of the graph.
type Node struct {
	ID         NodeID         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Edge is a typed, directed relationship between two nodes.
type Edge struct {
	ID         EdgeID         `json:"id"`
	StartNode  NodeID         `json:"start_node"`
	EndNode    NodeID         `json:"end_node"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
}

// OtherEnd returns the endpoint opposite to the given node. For a
// self-loop both endpoints are the same node, so the node itself comes
// back. The edge is assumed incident to the node; if it isn't, the
// start node is returned.
func (e *Edge) OtherEnd(id NodeID) NodeID {
	if e.StartNode == id {
		return e.EndNode
	}
	return e.StartNode
}

// Direction selects which incident edges of a node a query visits,
// relative to that node.
type Direction int

const (
	// DirectionOutgoing visits edges starting at the node.
	DirectionOutgoing Direction = iota
	// DirectionIncoming visits edges ending at the node.
	DirectionIncoming
	// DirectionBoth visits edges in either direction.
	DirectionBoth
)

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionOutgoing:
		return "outgoing"
	case DirectionIncoming:
		return "incoming"
	case DirectionBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Reverse flips outgoing and incoming. Both stays both.
func (d Direction) Reverse() Direction {
	switch d {
	case DirectionOutgoing:
		return DirectionIncoming
	case DirectionIncoming:
		return DirectionOutgoing
	default:
		return d
	}
}

// EdgeIterator is a single-pass cursor over edges. Next advances the
// cursor and reports whether Edge holds a result. After Next returns
// false, Err reports the error that stopped iteration, if any.
// Abandoning a cursor before exhaustion requires no cleanup.
type EdgeIterator interface {
	Next() bool
	Edge() *Edge
	Err() error
}

// Engine is the storage surface the rest of the system builds on.
// All implementations must be safe for concurrent use and must return
// copies, never aliases of internal state.
type Engine interface {
	// Node CRUD
	CreateNode(node *Node) error
	GetNode(id NodeID) (*Node, error)
	UpdateNode(node *Node) error
	DeleteNode(id NodeID) error

	// Edge CRUD
	CreateEdge(edge *Edge) error
	GetEdge(id EdgeID) (*Edge, error)
	UpdateEdge(edge *Edge) error
	DeleteEdge(id EdgeID) error

	// Queries
	GetNodesByLabel(label string) ([]*Node, error)
	GetOutgoingEdges(nodeID NodeID) ([]*Edge, error)
	GetIncomingEdges(nodeID NodeID) ([]*Edge, error)
	GetEdgesBetween(startID, endID NodeID) ([]*Edge, error)

	// RelationshipsFor streams the edges incident to a node, filtered
	// by direction and, when types are given, by edge type. The cursor
	// is lazy: it touches the store only when pulled.
	RelationshipsFor(nodeID NodeID, direction Direction, types ...string) EdgeIterator

	// Property access, per entity kind. A missing entity is ErrNotFound;
	// a missing key is reported through the boolean, not an error.
	NodeHasProperty(id NodeID, key string) (bool, error)
	NodeProperty(id NodeID, key string) (any, bool, error)
	NodePropertyKeys(id NodeID) ([]string, error)
	RelHasProperty(id EdgeID, key string) (bool, error)
	RelProperty(id EdgeID, key string) (any, bool, error)
	RelPropertyKeys(id EdgeID) ([]string, error)

	// Bulk operations
	BulkCreateNodes(nodes []*Node) error
	BulkCreateEdges(edges []*Edge) error

	// Counts
	NodeCount() (int64, error)
	EdgeCount() (int64, error)

	Close() error
}
