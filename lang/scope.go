package lang

import (
	"log/slog"
	"slices"
	"sync"
)

// InputKey is the name of the implicit binding introduced by yields,
// function invocations and table predicates.
const InputKey = "input"

// Scope maps variable names to values for one lexical scope and links to the
// scope that encloses it.
//
// Lookups walk outward through parent scopes; writes always land in the
// receiver, so a child never modifies its parent.
type Scope struct {
	mu     sync.RWMutex
	parent *Scope
	vars   *Map
}

// NewScope returns an empty root scope.
func NewScope() *Scope {
	return &Scope{vars: NewMap()}
}

// NewScopeFrom returns a root scope seeded with the entries of m.
func NewScopeFrom(m *Map) *Scope {
	s := NewScope()

	for k, v := range m.All() {
		s.vars.Set(k, v)
	}

	return s
}

// Child returns a new empty scope enclosed by s.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, vars: NewMap()}
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// local returns the binding of name in s itself.
func (s *Scope) local(name string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.vars.Get(name)
}

// resolve finds the innermost binding of name.
func (s *Scope) resolve(name string) (Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.local(name); ok {
			return v, true
		}
	}

	return Empty(), false
}

// Lookup resolves a possibly dotted path. The first segment is found in the
// innermost scope that binds it; remaining segments index nested maps.
func (s *Scope) Lookup(path string) (Value, bool) {
	segs := splitPath(path)

	v, ok := s.resolve(segs[0])
	if !ok {
		return Empty(), false
	}

	for _, seg := range segs[1:] {
		if v.Kind() != KindMap {
			return Empty(), false
		}

		if v, ok = v.Map().Get(seg); !ok {
			return Empty(), false
		}
	}

	return v, true
}

// Get is like [Scope.Lookup] but fails with [ErrUnknownVariable].
func (s *Scope) Get(path string) (Value, error) {
	v, ok := s.Lookup(path)
	if !ok {
		return Empty(), ErrUnknownVariable.Errorf("%s", path).
			With(slog.String("name", path))
	}

	return v, nil
}

// Set binds a possibly dotted path in s.
//
// For a dotted path the map bound to the first segment is copied (from an
// enclosing scope if s does not bind it), updated, and bound in s; missing
// intermediate maps are created. Nothing is written if an intermediate
// segment holds a value other than a Map.
func (s *Scope) Set(path string, v Value) error {
	segs := splitPath(path)
	if len(segs) == 1 {
		s.Bind(path, v)

		return nil
	}

	head := NewMap()

	if cur, ok := s.resolve(segs[0]); ok {
		if cur.Kind() != KindMap {
			return ErrTypeMismatch.Errorf(
				"cannot assign %s: %s is %s, not map", path, segs[0], cur.Kind()).
				With(slog.String("name", path))
		}

		head = cur.Map()
	}

	updated, err := head.WithPath(segs[1:], v)
	if err != nil {
		return WrapError(err).With(slog.String("name", path))
	}

	s.Bind(segs[0], MapValue(updated))

	return nil
}

// Bind binds name in s without interpreting dots.
func (s *Scope) Bind(name string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vars.Set(name, v)
}

// Unbind removes a binding from s itself and reports whether it existed.
func (s *Scope) Unbind(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.vars.Delete(name)
}

// Map returns a copy of the bindings made in s itself.
func (s *Scope) Map() *Map {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.vars.shallow()
}

// Snapshot returns a root scope holding every binding visible from s, with
// inner bindings shadowing outer ones. The snapshot shares no mutable state
// with s.
func (s *Scope) Snapshot() *Scope {
	var chain []*Scope
	for sc := s; sc != nil; sc = sc.parent {
		chain = append(chain, sc)
	}

	snap := NewScope()

	for _, sc := range slices.Backward(chain) {
		for k, v := range sc.Map().All() {
			snap.vars.Set(k, v)
		}
	}

	return snap
}

// Keys returns the names visible from s, innermost scope first, without
// duplicates.
func (s *Scope) Keys() []string {
	var keys []string

	seen := map[string]bool{}

	for sc := s; sc != nil; sc = sc.parent {
		for _, k := range sc.Map().Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	return keys
}
