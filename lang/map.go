package lang

import (
	"cmp"
	"iter"
	"slices"
	"strings"
)

// Map is an ordered mapping from unique string keys to values. Iteration
// follows insertion order.
//
// A Map is mutable while it is being built. Once wrapped in a [Value] it
// must be treated as read-only; use [Map.Clone] or [Map.With] to derive a
// changed copy.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{vals: map[string]Value{}}
}

// MapOf builds a Map from alternating keys and values.
func MapOf(pairs ...any) *Map {
	m := NewMap()

	for i := 0; i+1 < len(pairs); i += 2 {
		k, _ := pairs[i].(string)
		v, _ := pairs[i+1].(Value)
		m.Set(k, v)
	}

	return m
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Empty(), false
	}

	v, ok := m.vals[key]

	return v, ok
}

// Set binds key to v, appending key to the order if it is new.
func (m *Map) Set(key string, v Value) {
	if m.vals == nil {
		m.vals = map[string]Value{}
	}

	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.vals[key] = v
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	if _, ok := m.vals[key]; !ok {
		return false
	}

	delete(m.vals, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })

	return true
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}

	return slices.Clone(m.keys)
}

// All iterates the entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}

		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// shallow copies the key order and bindings but shares the values.
func (m *Map) shallow() *Map {
	out := &Map{
		keys: make([]string, len(m.keys)),
		vals: make(map[string]Value, len(m.vals)),
	}

	copy(out.keys, m.keys)

	for k, v := range m.vals {
		out.vals[k] = v
	}

	return out
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return NewMap()
	}

	out := &Map{
		keys: slices.Clone(m.keys),
		vals: make(map[string]Value, len(m.vals)),
	}

	for k, v := range m.vals {
		out.vals[k] = v.Clone()
	}

	return out
}

// With returns a copy of m with key bound to v.
func (m *Map) With(key string, v Value) *Map {
	var out *Map
	if m == nil {
		out = NewMap()
	} else {
		out = m.shallow()
	}

	out.Set(key, v)

	return out
}

// Equal reports whether m and o hold the same keys bound to equal values.
// Key order is not significant.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}

	for k, v := range m.All() {
		w, ok := o.Get(k)
		if !ok || !v.Equal(w) {
			return false
		}
	}

	return true
}

// compare orders maps by their sorted keys, then by the values bound to
// those keys.
func (m *Map) compare(o *Map) int {
	mk, ok := m.Keys(), o.Keys()

	slices.Sort(mk)
	slices.Sort(ok)

	if c := slices.Compare(mk, ok); c != 0 {
		return c
	}

	for _, k := range mk {
		a, _ := m.Get(k)
		b, _ := o.Get(k)

		if c := a.Compare(b); c != 0 {
			return c
		}
	}

	return cmp.Compare(m.Len(), o.Len())
}

// GetPath resolves a sequence of keys through nested maps.
func (m *Map) GetPath(path ...string) (Value, bool) {
	if len(path) == 0 {
		return MapValue(m), true
	}

	v, ok := m.Get(path[0])
	if !ok {
		return Empty(), false
	}

	if len(path) == 1 {
		return v, true
	}

	if v.Kind() != KindMap {
		return Empty(), false
	}

	return v.Map().GetPath(path[1:]...)
}

// WithPath returns a copy of m with the nested key path bound to v.
// Missing intermediate maps are created. Maps along the path are copied, so
// m and any value sharing its nested maps are left unchanged. It fails with
// [ErrTypeMismatch] if an intermediate key holds a value other than a Map.
func (m *Map) WithPath(path []string, v Value) (*Map, error) {
	if len(path) == 0 {
		return m, nil
	}

	if len(path) == 1 {
		return m.With(path[0], v), nil
	}

	child := NewMap()

	if cur, ok := m.Get(path[0]); ok {
		if cur.Kind() != KindMap {
			return nil, ErrTypeMismatch.Errorf(
				"cannot assign through %s: it is %s, not map", path[0], cur.Kind())
		}

		child = cur.Map()
	}

	nested, err := child.WithPath(path[1:], v)
	if err != nil {
		return nil, err
	}

	return m.With(path[0], MapValue(nested)), nil
}

// splitPath splits a dotted identifier into its segments.
func splitPath(path string) []string {
	return strings.Split(path, ".")
}
