package match

import (
	"sort"

	"github.com/orneryd/sleipnir/pkg/storage"
)

// MapView is a uniform read-only key/value projection: the same interface
// whether the values came from a literal map in the query text or from a
// live graph entity's properties. Set and Remove always fail; a view is a
// projection, not a collection.
type MapView interface {
	// Get returns the value for key. present is false when the key or
	// property is missing.
	Get(key string) (value any, present bool, err error)
	// Contains reports whether key is present.
	Contains(key string) (bool, error)
	// Iterate calls fn for each key/value pair until fn returns false or
	// the keys are exhausted. Literal maps iterate in insertion order,
	// foreign maps in sorted key order, entities in the store's key order.
	Iterate(fn func(key string, value any) bool) error
	// Set fails with ErrInvariant.
	Set(key string, value any) error
	// Remove fails with ErrInvariant.
	Remove(key string) error
}

// Binder produces the MapView for a classified value once the ambient query
// state is known. Graph entities need the state for property access; literal
// and foreign mappings ignore it.
type Binder func(state *QueryState) MapView

// IsMapLike reports whether v is one of the shapes AsMapView recognizes.
func IsMapLike(v any) bool {
	_, ok := AsMapView(v)
	return ok
}

// AsMapView classifies v and returns its deferred binding. Recognized
// shapes: *LiteralMap, plain map[string]any (adapted, not copied), graph
// nodes (*storage.Node or storage.NodeID), and graph relationships
// (*storage.Edge or storage.EdgeID).
func AsMapView(v any) (Binder, bool) {
	switch t := v.(type) {
	case *LiteralMap:
		return func(*QueryState) MapView { return t }, true
	case map[string]any:
		return func(*QueryState) MapView { return foreignView(t) }, true
	case *storage.Node:
		return func(state *QueryState) MapView { return &nodeView{id: t.ID, state: state} }, true
	case storage.NodeID:
		return func(state *QueryState) MapView { return &nodeView{id: t, state: state} }, true
	case *storage.Edge:
		return func(state *QueryState) MapView { return &relView{id: t.ID, state: state} }, true
	case storage.EdgeID:
		return func(state *QueryState) MapView { return &relView{id: t, state: state} }, true
	}
	return nil, false
}

// Entry is one key/value pair of a LiteralMap.
type Entry struct {
	Key   string
	Value any
}

// LiteralMap is an insertion-ordered literal mapping. Duplicate keys keep
// the first occurrence's position; the last value wins.
type LiteralMap struct {
	entries []Entry
}

// NewLiteralMap builds a literal mapping from entries, in order.
func NewLiteralMap(entries ...Entry) *LiteralMap {
	m := &LiteralMap{}
	for _, e := range entries {
		m.put(e.Key, e.Value)
	}
	return m
}

func (l *LiteralMap) put(key string, value any) {
	for i := range l.entries {
		if l.entries[i].Key == key {
			l.entries[i].Value = value
			return
		}
	}
	l.entries = append(l.entries, Entry{Key: key, Value: value})
}

// Len returns the number of distinct keys.
func (l *LiteralMap) Len() int { return len(l.entries) }

func (l *LiteralMap) Get(key string) (any, bool, error) {
	for _, e := range l.entries {
		if e.Key == key {
			return e.Value, true, nil
		}
	}
	return nil, false, nil
}

func (l *LiteralMap) Contains(key string) (bool, error) {
	_, ok, _ := l.Get(key)
	return ok, nil
}

func (l *LiteralMap) Iterate(fn func(key string, value any) bool) error {
	for _, e := range l.entries {
		if !fn(e.Key, e.Value) {
			return nil
		}
	}
	return nil
}

func (l *LiteralMap) Set(key string, _ any) error {
	return invariant("set %q on a read-only literal map view", key)
}

func (l *LiteralMap) Remove(key string) error {
	return invariant("remove %q on a read-only literal map view", key)
}

// foreignView adapts a plain Go map in place, without copying.
type foreignView map[string]any

func (f foreignView) Get(key string) (any, bool, error) {
	v, ok := f[key]
	return v, ok, nil
}

func (f foreignView) Contains(key string) (bool, error) {
	_, ok := f[key]
	return ok, nil
}

func (f foreignView) Iterate(fn func(key string, value any) bool) error {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn(k, f[k]) {
			return nil
		}
	}
	return nil
}

func (f foreignView) Set(key string, _ any) error {
	return invariant("set %q on a read-only map view", key)
}

func (f foreignView) Remove(key string) error {
	return invariant("remove %q on a read-only map view", key)
}

// nodeView projects a node's properties straight off the store. Nothing is
// cached: every call re-queries, so the view tracks live data and costs
// nothing until read.
type nodeView struct {
	id    storage.NodeID
	state *QueryState
}

func (v *nodeView) Get(key string) (any, bool, error) {
	return v.state.Query.NodeProperty(v.id, key)
}

func (v *nodeView) Contains(key string) (bool, error) {
	return v.state.Query.NodeHasProperty(v.id, key)
}

func (v *nodeView) Iterate(fn func(key string, value any) bool) error {
	keys, err := v.state.Query.NodePropertyKeys(v.id)
	if err != nil {
		return err
	}
	for _, k := range keys {
		val, ok, err := v.state.Query.NodeProperty(v.id, k)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if !fn(k, val) {
			return nil
		}
	}
	return nil
}

func (v *nodeView) Set(key string, _ any) error {
	return invariant("set %q on a read-only node view", key)
}

func (v *nodeView) Remove(key string) error {
	return invariant("remove %q on a read-only node view", key)
}

// relView is the relationship twin of nodeView.
type relView struct {
	id    storage.EdgeID
	state *QueryState
}

func (v *relView) Get(key string) (any, bool, error) {
	return v.state.Query.RelProperty(v.id, key)
}

func (v *relView) Contains(key string) (bool, error) {
	return v.state.Query.RelHasProperty(v.id, key)
}

func (v *relView) Iterate(fn func(key string, value any) bool) error {
	keys, err := v.state.Query.RelPropertyKeys(v.id)
	if err != nil {
		return err
	}
	for _, k := range keys {
		val, ok, err := v.state.Query.RelProperty(v.id, k)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if !fn(k, val) {
			return nil
		}
	}
	return nil
}

func (v *relView) Set(key string, _ any) error {
	return invariant("set %q on a read-only relationship view", key)
}

func (v *relView) Remove(key string) error {
	return invariant("remove %q on a read-only relationship view", key)
}
