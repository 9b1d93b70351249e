package probemap

import "iter"

// Begin returns the position of the first entry in slot order, or End when
// the table holds none.
func (t *table[K, V]) Begin() Pos {
	return t.nextOccupied(0)
}

// End returns the position one past the last slot. It never refers to an
// entry and only serves as the loop bound for Begin and Next.
func (t *table[K, V]) End() Pos {
	return Pos(len(t.slots))
}

// Next returns the position of the entry following p in slot order, or End.
// Erasing the entry at p before calling Next is fine; growing the table in
// between is not, as a rebuild reshuffles every slot.
func (t *table[K, V]) Next(p Pos) Pos {
	return t.nextOccupied(int(p) + 1)
}

func (t *table[K, V]) nextOccupied(i int) Pos {
	empty := t.policy.EmptyKey()
	tombstone := t.policy.TombstoneKey()

	for ; i < len(t.slots); i++ {
		if t.occupiedKey(t.slots[i].key, empty, tombstone) {
			return Pos(i)
		}
	}

	return Pos(len(t.slots))
}

// All returns an iterator over the map's entries in slot order. The map must
// not grow while the iteration runs.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for p := m.Begin(); p != m.End(); p = m.Next(p) {
			if !yield(m.slots[p].key, m.slots[p].value) {
				return
			}
		}
	}
}

// Keys returns an iterator over the map's keys in slot order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for p := m.Begin(); p != m.End(); p = m.Next(p) {
			if !yield(m.slots[p].key) {
				return
			}
		}
	}
}
