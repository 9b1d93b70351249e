package probemap

import (
	"math/bits"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// NextPowerOf2 returns the smallest power of two that is >= v.
func NextPowerOf2(v uint64) uint64 {
	if v <= 1 {
		return 1
	}

	return uint64(1) << bits.Len64(v-1)
}

// bucketCountFor returns the slot-array length needed to hold n live entries:
// at least 3n/2+1 slots rounded up to a power of two, keeping the load factor
// below ~2/3 right after a grow. A table sized for zero entries still gets one
// slot so the probe loop has somewhere to terminate.
func bucketCountFor(n int) int {
	if n == 0 {
		return 1
	}

	return int(NextPowerOf2(uint64(3*n/2 + 1)))
}

// Estimates capacity (number of slots) from the given memory size in bytes.
func CapacityFromSize[K, V any](size uintptr) int {
	return int(size / unsafe.Sizeof(slot[K, V]{}))
}

// maxInteger returns the largest value representable by K.
func maxInteger[K constraints.Integer]() K {
	var zero K
	all := ^zero
	if all > zero {
		return all
	}

	// Signed: all bits set is -1; clearing the sign bit gives the maximum.
	return all ^ (all << (8*unsafe.Sizeof(zero) - 1))
}
