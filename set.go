package probemap

import "iter"

// Set is a hash set sharing the map's probing, tombstoning, and growth, with
// entries that carry no value.
type Set[K any] struct {
	table[K, struct{}]
}

// NewSet returns an empty set whose key hashing, equality, and reserved keys
// are defined by policy. NewSet panics if policy is nil.
func NewSet[K any](policy Policy[K], opts ...Option[K, struct{}]) *Set[K] {
	s := &Set[K]{}
	s.init(policy, opts...)

	return s
}

// Has reports whether key is in the set.
func (s *Set[K]) Has(key K) bool {
	return s.search(key).Found()
}

// Put adds key to the set and reports whether it was absent.
func (s *Set[K]) Put(key K) bool {
	p := s.search(key)
	if p.Found() {
		return false
	}

	s.insertAt(key, struct{}{}, p)

	return true
}

// Delete removes key if present and reports whether it was.
func (s *Set[K]) Delete(key K) bool {
	p := s.search(key)
	if !p.Found() {
		return false
	}

	s.erase(p)

	return true
}

// All returns an iterator over the set's keys in slot order. The set must not
// grow while the iteration runs.
func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for p := s.Begin(); p != s.End(); p = s.Next(p) {
			if !yield(s.slots[p].key) {
				return
			}
		}
	}
}
