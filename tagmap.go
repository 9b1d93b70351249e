package probemap

import (
	"hash/maphash"
	"iter"
)

const (
	tagEmpty uint8 = iota
	tagTombstone
	tagOccupied
)

// TagMap is a map variant that tracks slot states in a control-byte array
// instead of reserving keys, so every value of K is usable as a key. It costs
// a byte of metadata per slot and requires a comparable K; probing, growth,
// and tombstone handling match Map. The zero TagMap is not usable; construct
// one with NewTagMap.
type TagMap[K comparable, V any] struct {
	hash  HashFunc[K]
	tags  []uint8
	slots []slot[K, V]

	size       int
	tombstones int
}

type TagMapOption[K comparable, V any] func(m *TagMap[K, V])

// WithTagMapHash replaces the default maphash-based hash function.
func WithTagMapHash[K comparable, V any](hash HashFunc[K]) TagMapOption[K, V] {
	return func(m *TagMap[K, V]) {
		m.hash = hash
	}
}

// WithTagMapCapacity pre-sizes the map for the given number of live entries.
func WithTagMapCapacity[K comparable, V any](entries int) TagMapOption[K, V] {
	return func(m *TagMap[K, V]) {
		m.Reserve(entries)
	}
}

// NewTagMap returns an empty TagMap hashing with hash/maphash unless an
// option overrides it.
func NewTagMap[K comparable, V any](opts ...TagMapOption[K, V]) *TagMap[K, V] {
	m := &TagMap[K, V]{
		hash: MakeDefaultHashFunc[K](maphash.MakeSeed()),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// find probes for key. It returns the key's slot when found is true, the
// insertion slot when false, and the capacity when no slot is usable.
func (m *TagMap[K, V]) find(key K) (i int, found bool) {
	n := len(m.tags)
	if n == 0 {
		return n, false
	}

	i = int(m.hash(key) & uint64(n-1))
	firstTombstone := -1

	for k, delta := 0, 1; k < n; k, delta = k+1, delta+1 {
		switch m.tags[i] {
		case tagOccupied:
			if m.slots[i].key == key {
				return i, true
			}

		case tagEmpty:
			if firstTombstone >= 0 {
				return firstTombstone, false
			}

			return i, false

		case tagTombstone:
			if firstTombstone < 0 {
				firstTombstone = i
			}
		}

		i = (i + delta) & (n - 1)
	}

	return n, false
}

// Get returns the value for key and whether it is present.
func (m *TagMap[K, V]) Get(key K) (V, bool) {
	i, found := m.find(key)
	if !found {
		var zero V
		return zero, false
	}

	return m.slots[i].value, true
}

// Has reports whether key is in the map.
func (m *TagMap[K, V]) Has(key K) bool {
	_, found := m.find(key)

	return found
}

// Set inserts key or overwrites its value if it is already present.
func (m *TagMap[K, V]) Set(key K, value V) {
	i, found := m.find(key)
	if found {
		m.slots[i].value = value
		return
	}

	if m.size >= len(m.tags) || i >= len(m.tags) {
		m.grow(m.growTarget())
		i, _ = m.find(key)
	}

	if m.tags[i] == tagTombstone {
		m.tombstones--
	}

	m.tags[i] = tagOccupied
	m.slots[i].key = key
	m.slots[i].value = value
	m.size++
}

// Delete removes key if present and reports whether it was. The slot is
// tombstoned and its contents zeroed so they do not pin referenced memory.
func (m *TagMap[K, V]) Delete(key K) bool {
	i, found := m.find(key)
	if !found {
		return false
	}

	var zero slot[K, V]
	m.tags[i] = tagTombstone
	m.slots[i] = zero
	m.size--
	m.tombstones++

	return true
}

func (m *TagMap[K, V]) growTarget() int {
	n := bucketCountFor(m.size)
	if n < len(m.tags) {
		n = len(m.tags)
	}

	return n
}

// grow rebuilds tags and slots at n slots, dropping tombstones. A fresh tag
// array is all tagEmpty already, so only occupied entries need re-inserting.
func (m *TagMap[K, V]) grow(n int) {
	oldTags := m.tags
	oldSlots := m.slots

	m.tags = make([]uint8, n)
	m.slots = make([]slot[K, V], n)
	m.size = 0
	m.tombstones = 0

	for i := range oldTags {
		if oldTags[i] == tagOccupied {
			m.Set(oldSlots[i].key, oldSlots[i].value)
		}
	}
}

// Reserve grows the map so that capacity accommodates n live entries. It
// does nothing when the map is already large enough.
func (m *TagMap[K, V]) Reserve(n int) {
	if target := bucketCountFor(n); target > len(m.tags) {
		m.grow(target)
	}
}

// Reset drops every entry and tombstone in place, keeping the allocation.
func (m *TagMap[K, V]) Reset() {
	var zero slot[K, V]
	for i := range m.tags {
		m.tags[i] = tagEmpty
		m.slots[i] = zero
	}

	m.size = 0
	m.tombstones = 0
}

// Len returns the number of live entries.
func (m *TagMap[K, V]) Len() int { return m.size }

// Capacity returns the current slot count; always zero or a power of two.
func (m *TagMap[K, V]) Capacity() int { return len(m.tags) }

// Tombstones returns the number of deleted slots still waiting for a rebuild
// to reclaim them.
func (m *TagMap[K, V]) Tombstones() int { return m.tombstones }

// All returns an iterator over the map's entries in slot order. The map must
// not grow while the iteration runs.
func (m *TagMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.tags {
			if m.tags[i] != tagOccupied {
				continue
			}
			if !yield(m.slots[i].key, m.slots[i].value) {
				return
			}
		}
	}
}
