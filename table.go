package probemap

import "fmt"

// table is the open-addressing engine shared by Map and Set: one contiguous
// slot array probed with triangular steps, lazy tombstone deletion, and a
// power-of-two capacity so bucket indexes are a bitmask away from the hash.
type table[K, V any] struct {
	policy Policy[K]
	slots  []slot[K, V]

	size       int
	tombstones int
}

type Option[K, V any] func(t *table[K, V])

// WithCapacity pre-sizes the table for the given number of live entries.
func WithCapacity[K, V any](entries int) Option[K, V] {
	return func(t *table[K, V]) {
		t.Reserve(entries)
	}
}

func (t *table[K, V]) init(policy Policy[K], opts ...Option[K, V]) {
	if policy == nil {
		panic("probemap: nil policy")
	}

	t.policy = policy

	for _, opt := range opts {
		opt(t)
	}
}

// search probes for key and reports the outcome as a Pos: a slot index when
// the key is present, otherwise the encoded insertion point (which is the
// first tombstone passed on the way, so erased slots get reused).
//
// The probe must not stop at a tombstone: a matching key may sit further
// along the sequence, placed there while the tombstoned slot was still
// occupied by something else.
func (t *table[K, V]) search(key K) Pos {
	if checkEnabled {
		t.assertNotReserved(key)
	}

	n := len(t.slots)
	if n == 0 {
		return Pos(-(1 + n))
	}

	empty := t.policy.EmptyKey()
	tombstone := t.policy.TombstoneKey()

	i := int(t.policy.Hash(key) & uint64(n-1))
	firstTombstone := -1

	// Triangular probe: the step grows by one each iteration, which visits
	// every slot of a power-of-two table exactly once in n steps.
	for k, delta := 0, 1; k < n; k, delta = k+1, delta+1 {
		switch {
		case t.policy.Equal(t.slots[i].key, key):
			return Pos(i)

		case t.policy.Equal(t.slots[i].key, empty):
			if firstTombstone >= 0 {
				return Pos(-(1 + firstTombstone))
			}

			return Pos(-(1 + i))

		case firstTombstone < 0 && t.policy.Equal(t.slots[i].key, tombstone):
			firstTombstone = i
		}

		i = (i + delta) & (n - 1)
	}

	// No empty slot anywhere: the table is saturated with entries and
	// tombstones and must be rebuilt before an insert can land.
	return Pos(-(1 + n))
}

// insertAt writes a new entry at the insertion point p obtained from search.
// If the table has no usable room left it grows first and re-derives the
// insertion point, since a rebuild invalidates every previously returned Pos.
func (t *table[K, V]) insertAt(key K, value V, p Pos) Pos {
	if p.Found() {
		panic("probemap: insert position refers to an existing entry")
	}
	if checkEnabled {
		t.assertNotReserved(key)
	}

	i := p.InsertionSlot()
	if t.size >= len(t.slots) || i >= len(t.slots) {
		t.grow(t.growTarget())

		p = t.search(key)
		i = p.InsertionSlot()
	}

	if checkEnabled {
		t.assertInsertable(i)
	}

	// The slot handed out by search is the first tombstone on the probe
	// path when there is one, so an insert can give a dead slot back.
	if t.policy.Equal(t.slots[i].key, t.policy.TombstoneKey()) {
		t.tombstones--
	}

	t.slots[i].key = key
	t.slots[i].value = value
	t.size++

	return Pos(i)
}

// erase tombstones the occupied slot at p. The slot keeps participating in
// probe sequences as a continue-past marker until the next grow drops it.
func (t *table[K, V]) erase(p Pos) {
	if !p.Found() {
		panic("probemap: erase position refers to no entry")
	}
	if checkEnabled {
		t.assertOccupied(int(p))
	}

	var zero V
	t.slots[p].key = t.policy.TombstoneKey()
	t.slots[p].value = zero
	t.size--
	t.tombstones++
}

// growTarget picks the bucket count for a grow forced by an insert: room for
// the current entries plus headroom, and never below the current capacity, so
// a tombstone-saturated table rebuilds in place instead of shrinking.
func (t *table[K, V]) growTarget() int {
	n := bucketCountFor(t.size)
	if n < len(t.slots) {
		n = len(t.slots)
	}

	return n
}

// grow replaces the slot array with a fresh one of n slots and re-inserts
// every live entry through the regular probe path. Tombstones are dropped,
// not carried over; this is the only way they are ever reclaimed.
func (t *table[K, V]) grow(n int) {
	if checkEnabled && n < len(t.slots) {
		panic(fmt.Sprintf("probemap: grow from %d to %d slots", len(t.slots), n))
	}

	empty := t.policy.EmptyKey()
	tombstone := t.policy.TombstoneKey()

	old := t.slots
	t.slots = newSlots[K, V](n, empty)
	t.size = 0
	t.tombstones = 0

	for i := range old {
		if t.occupiedKey(old[i].key, empty, tombstone) {
			t.insertAt(old[i].key, old[i].value, t.search(old[i].key))
		}
	}

	if checkEnabled {
		t.checkInvariants()
	}
}

// Reserve grows the table so that capacity accommodates n live entries.
// It does nothing when the table is already large enough, keeping existing
// positions and cursors valid.
func (t *table[K, V]) Reserve(n int) {
	if target := bucketCountFor(n); target > len(t.slots) {
		t.grow(target)
	}
}

// Reset drops every entry and tombstone in place, keeping the allocation.
func (t *table[K, V]) Reset() {
	empty := t.policy.EmptyKey()

	var zero V
	for i := range t.slots {
		t.slots[i].key = empty
		t.slots[i].value = zero
	}

	t.size = 0
	t.tombstones = 0
}

// Size returns the number of live entries.
func (t *table[K, V]) Size() int { return t.size }

// Capacity returns the current slot count; always zero or a power of two.
func (t *table[K, V]) Capacity() int { return len(t.slots) }

// Empty reports whether the table holds no live entries.
func (t *table[K, V]) Empty() bool { return t.size == 0 }

// occupiedKey reports whether key marks a live entry, given the two reserved
// keys fetched once by the caller.
func (t *table[K, V]) occupiedKey(key, empty, tombstone K) bool {
	return !t.policy.Equal(key, empty) && !t.policy.Equal(key, tombstone)
}

func (t *table[K, V]) assertNotReserved(key K) {
	if t.policy.Equal(key, t.policy.EmptyKey()) {
		panic("probemap: key equals the policy's empty reserved key")
	}
	if t.policy.Equal(key, t.policy.TombstoneKey()) {
		panic("probemap: key equals the policy's tombstone reserved key")
	}
}

func (t *table[K, V]) assertOccupied(i int) {
	if i >= len(t.slots) ||
		!t.occupiedKey(t.slots[i].key, t.policy.EmptyKey(), t.policy.TombstoneKey()) {
		panic(fmt.Sprintf("probemap: slot %d holds no entry", i))
	}
}

func (t *table[K, V]) assertInsertable(i int) {
	if i < 0 || i >= len(t.slots) ||
		t.occupiedKey(t.slots[i].key, t.policy.EmptyKey(), t.policy.TombstoneKey()) {
		panic(fmt.Sprintf("probemap: stale insert position %d", i))
	}
}

// checkInvariants re-derives the counters from the slot array and verifies
// that every live entry can still be found through the probe path.
func (t *table[K, V]) checkInvariants() {
	n := len(t.slots)
	if n&(n-1) != 0 {
		panic(fmt.Sprintf("probemap: capacity %d is not a power of two", n))
	}

	empty := t.policy.EmptyKey()
	tombstone := t.policy.TombstoneKey()

	var size, tombstones int
	for i := range t.slots {
		switch {
		case t.policy.Equal(t.slots[i].key, empty):
		case t.policy.Equal(t.slots[i].key, tombstone):
			tombstones++
		default:
			if p := t.search(t.slots[i].key); int(p) != i {
				panic(fmt.Sprintf("probemap: entry at slot %d found at %d", i, int(p)))
			}
			size++
		}
	}

	if size != t.size {
		panic(fmt.Sprintf("probemap: counted %d entries, size is %d", size, t.size))
	}
	if tombstones != t.tombstones {
		panic(fmt.Sprintf("probemap: counted %d tombstones, recorded %d", tombstones, t.tombstones))
	}
}
