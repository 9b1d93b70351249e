// Package probemap provides open-addressing hash containers that keep keys
// and values in a single flat slot array. Deleted slots are tombstoned rather
// than compacted, lookups hand out stable positions that stay valid until the
// table grows, and slot states are encoded through two reserved keys supplied
// by a Policy instead of per-slot metadata.
//
// None of the containers is safe for concurrent use.
package probemap

// Pos is the result of a probe. A non-negative Pos is the slot index of the
// key that was found. A negative Pos means the key is absent and encodes the
// slot an insert would use as -(1+slot); when that slot equals the capacity
// the table has no usable slot left and must grow before inserting.
//
// Any Pos is invalidated by an operation that rebuilds the table, such as a
// growing insert, Reserve, or Reset.
type Pos int

// Found reports whether the probe located the key.
func (p Pos) Found() bool { return p >= 0 }

// InsertionSlot decodes the slot a failed probe selected for insertion. It is
// only meaningful when Found reports false; a result equal to the capacity
// means no slot was usable and an insert must grow the table first.
func (p Pos) InsertionSlot() int { return int(-(1 + p)) }

// Map is a hash map over a slot array probed with triangular steps. The zero
// Map is not usable; construct one with New so a key policy is attached.
type Map[K, V any] struct {
	table[K, V]
}

// New returns an empty map whose key hashing, equality, and reserved keys are
// defined by policy. New panics if policy is nil.
func New[K, V any](policy Policy[K], opts ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{}
	m.init(policy, opts...)

	return m
}

// Search probes for key and returns its position, found or not. Keys equal to
// either reserved key are outside the map's domain and must not be passed.
func (m *Map[K, V]) Search(key K) Pos {
	return m.search(key)
}

// Insert adds a key that must not be present and returns its position.
// Insert panics if key is already in the map; use Set to overwrite.
func (m *Map[K, V]) Insert(key K, value V) Pos {
	p := m.search(key)
	if p.Found() {
		panic("probemap: key is already present")
	}

	return m.insertAt(key, value, p)
}

// InsertAt adds key at the insertion position p returned by a failed Search
// for the same key, skipping the second probe. The table may still grow here
// if p reports no usable slot or every slot is taken, in which case the
// returned position is freshly derived.
func (m *Map[K, V]) InsertAt(key K, value V, p Pos) Pos {
	return m.insertAt(key, value, p)
}

// Erase removes the entry at a found position p by tombstoning its slot.
func (m *Map[K, V]) Erase(p Pos) {
	m.erase(p)
}

// Key returns the key stored at a found position p.
func (m *Map[K, V]) Key(p Pos) K {
	if !p.Found() {
		panic("probemap: position refers to no entry")
	}
	if checkEnabled {
		m.assertOccupied(int(p))
	}

	return m.slots[p].key
}

// Value returns the value stored at a found position p.
func (m *Map[K, V]) Value(p Pos) V {
	if !p.Found() {
		panic("probemap: position refers to no entry")
	}
	if checkEnabled {
		m.assertOccupied(int(p))
	}

	return m.slots[p].value
}

// SetValue overwrites the value at a found position p, leaving the key and
// the slot layout untouched.
func (m *Map[K, V]) SetValue(p Pos, value V) {
	if !p.Found() {
		panic("probemap: position refers to no entry")
	}
	if checkEnabled {
		m.assertOccupied(int(p))
	}

	m.slots[p].value = value
}

// Get returns the value for key and whether it is present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	p := m.search(key)
	if !p.Found() {
		var zero V
		return zero, false
	}

	return m.slots[p].value, true
}

// Set inserts key or overwrites its value if it is already present.
func (m *Map[K, V]) Set(key K, value V) {
	p := m.search(key)
	if p.Found() {
		m.slots[p].value = value
		return
	}

	m.insertAt(key, value, p)
}

// Delete removes key if present and reports whether it was.
func (m *Map[K, V]) Delete(key K) bool {
	p := m.search(key)
	if !p.Found() {
		return false
	}

	m.erase(p)

	return true
}
