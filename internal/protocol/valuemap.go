package protocol

import "fmt"

// ValueMap is a bijection between a semantic enumerant and its raw wire code.
// A miss on either side is a validation failure, never a default.
type ValueMap[K comparable, R comparable] struct {
	name  string
	toRaw map[K]R
	toKey map[R]K
}

// NewValueMap builds a ValueMap from pairs. It panics when two enumerants
// share a raw code; maps are built at package init and never change.
func NewValueMap[K comparable, R comparable](name string, pairs map[K]R) ValueMap[K, R] {
	m := ValueMap[K, R]{
		name:  name,
		toRaw: make(map[K]R, len(pairs)),
		toKey: make(map[R]K, len(pairs)),
	}
	for k, r := range pairs {
		if prev, dup := m.toKey[r]; dup {
			panic(fmt.Sprintf("protocol: value map %s: raw code %v used by %v and %v", name, r, prev, k))
		}
		m.toRaw[k] = r
		m.toKey[r] = k
	}
	return m
}

// Raw returns the wire code for k.
func (m ValueMap[K, R]) Raw(k K) (R, error) {
	r, ok := m.toRaw[k]
	if !ok {
		var zero R
		return zero, fmt.Errorf("%w: %s has no raw code for %v", ErrDataValidation, m.name, k)
	}
	return r, nil
}

// Value returns the enumerant for raw code r.
func (m ValueMap[K, R]) Value(r R) (K, error) {
	k, ok := m.toKey[r]
	if !ok {
		var zero K
		return zero, fmt.Errorf("%w: %s has no value for raw code %v", ErrDataValidation, m.name, r)
	}
	return k, nil
}

func (m ValueMap[K, R]) Len() int {
	return len(m.toRaw)
}

// Keys returns every enumerant in the map, in no particular order.
func (m ValueMap[K, R]) Keys() []K {
	out := make([]K, 0, len(m.toRaw))
	for k := range m.toRaw {
		out = append(out, k)
	}
	return out
}
