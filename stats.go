package probemap

// Stats is a point-in-time snapshot of the table's shape. Load measures how
// full the slot array is, while Displaced and DisplacedTwice measure
// clustering as the fraction of entries sitting off their home slot, and two
// or more slots off. All of it is recomputed from the slot array on request.
type Stats struct {
	Size           int
	Capacity       int
	Tombstones     int
	Load           float64
	Displaced      float64
	DisplacedTwice float64
}

// Tombstones returns the number of erased slots still waiting for a rebuild
// to reclaim them.
func (t *table[K, V]) Tombstones() int { return t.tombstones }

// Load returns size over capacity, or 0 for an unallocated table.
func (t *table[K, V]) Load() float64 {
	if len(t.slots) == 0 {
		return 0
	}

	return float64(t.size) / float64(len(t.slots))
}

// Displaced returns the fraction of entries not stored at their home slot,
// or 0 for an empty table.
func (t *table[K, V]) Displaced() float64 {
	if t.size == 0 {
		return 0
	}

	displaced, _ := t.displacement()

	return float64(displaced) / float64(t.size)
}

// DisplacedTwice returns the fraction of entries stored at least two slots
// past their home slot, or 0 for an empty table.
func (t *table[K, V]) DisplacedTwice() float64 {
	if t.size == 0 {
		return 0
	}

	_, twice := t.displacement()

	return float64(twice) / float64(t.size)
}

// displacement counts entries off their home slot in one sweep. An entry in
// the slot right after its home one counts as displaced but not twice; the
// neighbor test does not wrap, so slot 0 never counts as twice.
func (t *table[K, V]) displacement() (displaced, twice int) {
	n := len(t.slots)
	if n == 0 {
		return 0, 0
	}

	empty := t.policy.EmptyKey()
	tombstone := t.policy.TombstoneKey()

	for i := range t.slots {
		if !t.occupiedKey(t.slots[i].key, empty, tombstone) {
			continue
		}

		home := int(t.policy.Hash(t.slots[i].key) & uint64(n-1))
		if home == i {
			continue
		}

		displaced++
		if i > 0 && home != i-1 {
			twice++
		}
	}

	return displaced, twice
}

// Stats gathers every diagnostic in a single pass over the slot array.
func (t *table[K, V]) Stats() Stats {
	s := Stats{
		Size:       t.size,
		Capacity:   len(t.slots),
		Tombstones: t.tombstones,
		Load:       t.Load(),
	}

	if t.size > 0 {
		displaced, twice := t.displacement()
		s.Displaced = float64(displaced) / float64(t.size)
		s.DisplacedTwice = float64(twice) / float64(t.size)
	}

	return s
}
