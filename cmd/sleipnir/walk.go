package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/orneryd/sleipnir/pkg/match"
	"github.com/orneryd/sleipnir/pkg/storage"
)

// walker runs a bounded depth-first traversal over a step chain,
// printing one line per complete path.
type walker struct {
	state    *match.QueryState
	maxDepth int
	maxPaths int
	out      io.Writer

	emitted   int
	truncated bool
}

// run walks the chain from start. A nil chain, or a chain of zero-length
// hops, matches the start node alone.
func (w *walker) run(start storage.NodeID, chain match.Step) error {
	if chainSatisfied(chain) {
		w.emit(start, nil)
	}
	return w.walk(start, chain, nil, start)
}

func (w *walker) walk(node storage.NodeID, step match.Step, path []*storage.Edge, start storage.NodeID) error {
	if step == nil {
		return nil
	}
	if len(path) >= w.maxDepth {
		// Probe for one candidate, so unbounded chains cut here report
		// truncation only when something was actually left unexplored.
		exp, _ := step.Expand(node, w.state)
		if exp.Next() {
			w.truncated = true
		}
		return exp.Err()
	}

	exp, next := step.Expand(node, w.state)
	for exp.Next() {
		if w.emitted >= w.maxPaths {
			// A candidate is in hand that will never be explored.
			w.truncated = true
			return nil
		}
		rel := exp.Relationship()
		far := rel.OtherEnd(node)
		hopPath := append(append([]*storage.Edge(nil), path...), rel)
		if chainSatisfied(next) {
			w.emit(start, hopPath)
		}
		if err := w.walk(far, next, hopPath, start); err != nil {
			return err
		}
	}
	return exp.Err()
}

func (w *walker) emit(start storage.NodeID, path []*storage.Edge) {
	fmt.Fprintln(w.out, formatPath(start, path))
	w.emitted++
}

// chainSatisfied reports whether every remaining step can match zero
// relationships, so a path may legally end here.
func chainSatisfied(step match.Step) bool {
	for s := step; s != nil; s = s.Next() {
		if !s.ShouldInclude() {
			return false
		}
	}
	return true
}

// formatPath renders a path in arrow notation, one relationship per hop:
// (a)-[KNOWS]->(b)<-[WROTE]-(c)
func formatPath(start storage.NodeID, path []*storage.Edge) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(string(start))
	b.WriteString(")")

	node := start
	for _, rel := range path {
		far := rel.OtherEnd(node)
		if rel.StartNode == node {
			fmt.Fprintf(&b, "-[%s]->(%s)", rel.Type, far)
		} else {
			fmt.Fprintf(&b, "<-[%s]-(%s)", rel.Type, far)
		}
		node = far
	}
	return b.String()
}
