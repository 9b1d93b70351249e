package probemap

// slot is one key/value cell of the table array. There is no state field:
// a slot is empty, tombstoned or occupied depending on whether its key equals
// the policy's empty key, its tombstone key, or neither.
type slot[K, V any] struct {
	key   K
	value V
}

// newSlots allocates n slots with every key set to the policy's empty key.
// The zero value of K is not the empty marker in general, so a plain make
// is not enough.
func newSlots[K, V any](n int, empty K) []slot[K, V] {
	s := make([]slot[K, V], n)
	for i := range s {
		s[i].key = empty
	}

	return s
}
