package storage

import "github.com/tidwall/btree"

// RelationshipsFor returns a lazy cursor over the edges incident to a
// node, filtered by direction and, when types are given, by edge type.
// Construction does no work. The first pull snapshots the candidate
// edge IDs under the read lock; each later pull fetches and copies a
// single edge. Yield order is ascending edge ID; for DirectionBoth the
// outgoing edges come first, then the incoming ones, with self-loops
// yielded only once. Edges deleted between pulls are skipped.
//
// Validation failures (empty ID, unknown node, closed storage) surface
// through Err after the first Next returns false.
func (m *MemoryEngine) RelationshipsFor(nodeID NodeID, direction Direction, types ...string) EdgeIterator {
	return &edgeCursor{
		engine:    m,
		node:      nodeID,
		direction: direction,
		types:     typeSet(types),
	}
}

func typeSet(types []string) map[string]struct{} {
	var set map[string]struct{}
	for _, t := range types {
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(types))
		}
		set[t] = struct{}{}
	}
	return set
}

type edgeCursor struct {
	engine    *MemoryEngine
	node      NodeID
	direction Direction
	types     map[string]struct{} // nil means any type

	started bool
	ids     []EdgeID
	pos     int
	cur     *Edge
	err     error
}

// Next advances to the next matching edge. It returns false when the
// cursor is exhausted or an error occurred; check Err afterwards.
func (c *edgeCursor) Next() bool {
	if c.err != nil {
		return false
	}
	if !c.started {
		c.started = true
		if err := c.snapshot(); err != nil {
			c.err = err
			return false
		}
	}

	for c.pos < len(c.ids) {
		id := c.ids[c.pos]
		c.pos++

		edge := c.fetch(id)
		if edge == nil {
			continue
		}
		if c.types != nil {
			if _, ok := c.types[edge.Type]; !ok {
				continue
			}
		}
		c.cur = edge
		return true
	}

	c.cur = nil
	return false
}

// Edge returns the edge produced by the last successful Next.
func (c *edgeCursor) Edge() *Edge { return c.cur }

// Err returns the error that stopped iteration, if any.
func (c *edgeCursor) Err() error { return c.err }

// snapshot records the candidate edge IDs for the node in yield order.
// Only IDs are captured; edges are fetched one at a time on demand.
func (c *edgeCursor) snapshot() error {
	if c.node == "" {
		return ErrInvalidID
	}

	m := c.engine
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrStorageClosed
	}
	if _, exists := m.nodes[c.node]; !exists {
		return ErrNotFound
	}

	appendIDs := func(tree *btree.BTreeG[EdgeID], skip map[EdgeID]struct{}) {
		if tree == nil {
			return
		}
		tree.Scan(func(id EdgeID) bool {
			if skip != nil {
				if _, dup := skip[id]; dup {
					return true
				}
			}
			c.ids = append(c.ids, id)
			return true
		})
	}

	switch c.direction {
	case DirectionOutgoing:
		appendIDs(m.outgoingEdges[c.node], nil)
	case DirectionIncoming:
		appendIDs(m.incomingEdges[c.node], nil)
	case DirectionBoth:
		appendIDs(m.outgoingEdges[c.node], nil)
		seen := make(map[EdgeID]struct{}, len(c.ids))
		for _, id := range c.ids {
			seen[id] = struct{}{}
		}
		appendIDs(m.incomingEdges[c.node], seen)
	}

	return nil
}

func (c *edgeCursor) fetch(id EdgeID) *Edge {
	m := c.engine
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil
	}
	return m.copyEdge(m.edges[id])
}
