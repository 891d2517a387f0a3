package match

import (
	"fmt"
	"strconv"
)

// Predicate filters one candidate during expansion. IsMatch reads the
// candidate bindings out of the MiniMap; errors abort the expansion that
// raised them.
type Predicate interface {
	IsMatch(m *MiniMap) (bool, error)
}

// True passes every candidate. Steps built without predicates use it so
// Expand never branches on missing filters.
var True Predicate = truePredicate{}

type truePredicate struct{}

func (truePredicate) IsMatch(*MiniMap) (bool, error) { return true, nil }

type andPredicate struct {
	left, right Predicate
}

// And passes when both predicates pass. left evaluates first; a failing or
// erroring left short-circuits right.
func And(left, right Predicate) Predicate {
	if left == nil {
		left = True
	}
	if right == nil {
		right = True
	}
	return andPredicate{left: left, right: right}
}

func (p andPredicate) IsMatch(m *MiniMap) (bool, error) {
	ok, err := p.left.IsMatch(m)
	if err != nil || !ok {
		return false, err
	}
	return p.right.IsMatch(m)
}

type orPredicate struct {
	left, right Predicate
}

// Or passes when either predicate passes. left evaluates first; a passing
// left short-circuits right.
func Or(left, right Predicate) Predicate {
	if left == nil {
		left = True
	}
	if right == nil {
		right = True
	}
	return orPredicate{left: left, right: right}
}

func (p orPredicate) IsMatch(m *MiniMap) (bool, error) {
	ok, err := p.left.IsMatch(m)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return p.right.IsMatch(m)
}

type notPredicate struct {
	inner Predicate
}

// Not inverts a predicate. Errors pass through unchanged.
func Not(p Predicate) Predicate {
	if p == nil {
		p = True
	}
	return notPredicate{inner: p}
}

func (p notPredicate) IsMatch(m *MiniMap) (bool, error) {
	ok, err := p.inner.IsMatch(m)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type compareOp int

const (
	opEq compareOp = iota
	opNe
	opGt
	opGe
	opLt
	opLe
)

// propCompare compares one bound entity's property against a literal.
type propCompare struct {
	binding string
	key     string
	want    any
	op      compareOp
}

// PropEquals passes when the entity bound under binding has property key
// equal to want. A missing property never matches, not even for the negated
// comparisons.
func PropEquals(binding, key string, want any) Predicate {
	return propCompare{binding: binding, key: key, want: want, op: opEq}
}

// PropNotEquals passes when the property is present and differs from want.
func PropNotEquals(binding, key string, want any) Predicate {
	return propCompare{binding: binding, key: key, want: want, op: opNe}
}

// PropGreater passes when the property is present and greater than want.
func PropGreater(binding, key string, want any) Predicate {
	return propCompare{binding: binding, key: key, want: want, op: opGt}
}

// PropGreaterEq passes when the property is present and at least want.
func PropGreaterEq(binding, key string, want any) Predicate {
	return propCompare{binding: binding, key: key, want: want, op: opGe}
}

// PropLess passes when the property is present and less than want.
func PropLess(binding, key string, want any) Predicate {
	return propCompare{binding: binding, key: key, want: want, op: opLt}
}

// PropLessEq passes when the property is present and at most want.
func PropLessEq(binding, key string, want any) Predicate {
	return propCompare{binding: binding, key: key, want: want, op: opLe}
}

func (p propCompare) IsMatch(m *MiniMap) (bool, error) {
	got, ok, err := bindingProperty(m, p.binding, p.key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return compareValues(got, p.want, p.op), nil
}

// paramCompare compares a bound entity's property against a query parameter.
type paramCompare struct {
	binding string
	key     string
	param   string
}

// PropEqualsParam passes when the property equals the named query parameter.
// An unset parameter or a missing property never matches.
func PropEqualsParam(binding, key, param string) Predicate {
	return paramCompare{binding: binding, key: key, param: param}
}

func (p paramCompare) IsMatch(m *MiniMap) (bool, error) {
	want, ok := m.State().Parameter(p.param)
	if !ok {
		return false, nil
	}
	got, ok, err := bindingProperty(m, p.binding, p.key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return compareValues(got, want, opEq), nil
}

// hasProp checks property existence on a bound entity.
type hasProp struct {
	binding string
	key     string
}

// HasProp passes when the entity bound under binding carries property key.
func HasProp(binding, key string) Predicate {
	return hasProp{binding: binding, key: key}
}

func (p hasProp) IsMatch(m *MiniMap) (bool, error) {
	view, err := bindingView(m, p.binding)
	if err != nil {
		return false, err
	}
	return view.Contains(p.key)
}

// bindingView resolves a binding name to its map view. A name the context
// does not publish, or a bound value that is not map-like, is an engine bug.
func bindingView(m *MiniMap, binding string) (MapView, error) {
	v, ok := m.Value(binding)
	if !ok {
		return nil, invariant("predicate references unknown binding %q", binding)
	}
	bind, ok := AsMapView(v)
	if !ok {
		return nil, invariant("binding %q is not map-like (%T)", binding, v)
	}
	return bind(m.State()), nil
}

// bindingProperty reads one property of a bound entity through its view.
func bindingProperty(m *MiniMap, binding, key string) (any, bool, error) {
	view, err := bindingView(m, binding)
	if err != nil {
		return nil, false, err
	}
	return view.Get(key)
}

// compareValues applies op with type coercion: numbers (and numeric strings)
// compare numerically, booleans support equality, everything else falls back
// to formatted-string comparison.
func compareValues(actual, want any, op compareOp) bool {
	if actual == nil || want == nil {
		eq := actual == nil && want == nil
		switch op {
		case opEq:
			return eq
		case opNe:
			return !eq
		}
		return false
	}

	if an, aok := toFloat64(actual); aok {
		if wn, wok := toFloat64(want); wok {
			switch op {
			case opEq:
				return an == wn
			case opNe:
				return an != wn
			case opGt:
				return an > wn
			case opGe:
				return an >= wn
			case opLt:
				return an < wn
			case opLe:
				return an <= wn
			}
		}
	}

	if ab, aok := actual.(bool); aok {
		if wb, wok := want.(bool); wok {
			switch op {
			case opEq:
				return ab == wb
			case opNe:
				return ab != wb
			}
			return false
		}
	}

	as := fmt.Sprintf("%v", actual)
	ws := fmt.Sprintf("%v", want)
	switch op {
	case opEq:
		return as == ws
	case opNe:
		return as != ws
	case opGt:
		return as > ws
	case opGe:
		return as >= ws
	case opLt:
		return as < ws
	case opLe:
		return as <= ws
	}
	return false
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
