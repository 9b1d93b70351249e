package probemap

import (
	"hash/maphash"

	"golang.org/x/exp/constraints"
)

type HashFunc[K comparable] func(K) uint64

// MakeDefaultHashFunc returns a HashFunc backed by hash/maphash with the
// given seed.
func MakeDefaultHashFunc[K comparable](seed maphash.Seed) HashFunc[K] {
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// Policy supplies everything a table needs to know about its key type:
// hashing, equality, and the two reserved keys that encode slot state.
//
// The reserved keys must be distinct from each other and from every key the
// caller will ever store. The usual hashing rules apply on top of that:
//   - Equal(a, b) implies Hash(a) == Hash(b)
//   - Equal(a, a) must hold for every stored key; be careful with NaN-like
//     values if you implement Equal yourself.
//
// Handing the table a key equal to one of the reserved keys is a contract
// violation, not a recoverable error (see the package documentation).
type Policy[K any] interface {
	Hash(key K) uint64
	Equal(a, b K) bool
	EmptyKey() K
	TombstoneKey() K
}

// FuncPolicy builds a Policy for comparable keys from a hash function and the
// two reserved keys; equality is ==.
func FuncPolicy[K comparable](hash HashFunc[K], empty, tombstone K) Policy[K] {
	return &funcPolicy[K]{hash: hash, empty: empty, tombstone: tombstone}
}

type funcPolicy[K comparable] struct {
	hash      HashFunc[K]
	empty     K
	tombstone K
}

func (p *funcPolicy[K]) Hash(key K) uint64 { return p.hash(key) }
func (p *funcPolicy[K]) Equal(a, b K) bool { return a == b }
func (p *funcPolicy[K]) EmptyKey() K       { return p.empty }
func (p *funcPolicy[K]) TombstoneKey() K   { return p.tombstone }

// IntegerPolicy returns the default Policy for integer keys. It reserves the
// two largest values of K (maxValue for empty, maxValue-1 for tombstone), so
// those two must never be stored. Hashing uses a freshly seeded maphash.
func IntegerPolicy[K constraints.Integer]() Policy[K] {
	max := maxInteger[K]()

	return FuncPolicy(MakeDefaultHashFunc[K](maphash.MakeSeed()), max, max-1)
}

// The string policy reserves two single-byte strings that cannot occur in
// valid UTF-8 (0xC0 and 0xC1 are forbidden lead bytes), so every valid
// string, including "", remains a legal key.
const (
	stringEmptyKey     = "\xc0"
	stringTombstoneKey = "\xc1"
)

// StringPolicy returns the default Policy for string keys.
func StringPolicy() Policy[string] {
	seed := maphash.MakeSeed()

	return FuncPolicy(func(k string) uint64 {
		return maphash.String(seed, k)
	}, stringEmptyKey, stringTombstoneKey)
}
