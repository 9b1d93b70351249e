package probemap

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intPolicy hashes a non-negative int to itself, so a key's home slot in
// tests is just the key masked by the capacity. Negative values are reserved.
func intPolicy() Policy[int] {
	return FuncPolicy(func(k int) uint64 { return uint64(k) }, -1, -2)
}

// collidingPolicy sends every key to bucket 0 to force probe chains.
func collidingPolicy() Policy[int] {
	return FuncPolicy(func(k int) uint64 { return 0 }, -1, -2)
}

func TestMap_Basic(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, int](5))

	// Insert and Search
	p := m.Insert(3, 42)
	require.True(t, p.Found())

	p = m.Search(3)
	require.True(t, p.Found())
	assert.Equal(t, 3, m.Key(p))
	assert.Equal(t, 42, m.Value(p))

	// Overwrite through the position
	m.SetValue(p, 100)
	assert.Equal(t, 100, m.Value(p))

	// Search non-existent key
	p = m.Search(4)
	assert.False(t, p.Found())

	// Erase
	p = m.Search(3)
	m.Erase(p)
	assert.False(t, m.Search(3).Found())
	assert.Equal(t, 0, m.Size())
	assert.True(t, m.Empty())
}

func TestMap_SearchThenInsertAt(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, string](5))
	require.Equal(t, 8, m.Capacity())

	// A failed search hands back the slot an insert would take.
	p := m.Search(5)
	require.False(t, p.Found())
	require.Equal(t, 5, p.InsertionSlot())

	p = m.InsertAt(5, "five", p)
	require.Equal(t, Pos(5), p)

	// The second probe is skipped, but the outcome matches a fresh search.
	require.Equal(t, p, m.Search(5))
	assert.Equal(t, "five", m.Value(p))
	assert.Equal(t, 1, m.Size())
}

func TestMap_Growth(t *testing.T) {
	m := New[int, int](intPolicy())
	require.Equal(t, 0, m.Capacity())

	// One slot for the first entry, then capacity doubles whenever an
	// insert finds the table at its limit.
	wantCaps := []int{1, 2, 4, 4, 8}
	for i := range 5 {
		m.Insert(i, i*10)
		require.Equalf(t, wantCaps[i], m.Capacity(), "capacity after %d inserts", i+1)
	}

	require.Equal(t, 5, m.Size())
	require.Equal(t, 0, m.Tombstones())

	// After the last rebuild every key sits in its home slot again.
	for i := range 5 {
		require.Equal(t, Pos(i), m.Search(i))

		v, ok := m.Get(i)
		require.True(t, ok)
		assert.Equal(t, i*10, v)
	}
}

func TestMap_EraseReusesSlot(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, string](5))

	p := m.Insert(3, "x")
	require.Equal(t, Pos(3), p)

	m.Erase(p)
	require.Equal(t, 0, m.Size())
	require.Equal(t, 1, m.Tombstones())

	// The tombstone, not the empty slot behind it, is offered for reuse.
	p = m.Search(3)
	require.False(t, p.Found())
	require.Equal(t, 3, p.InsertionSlot())

	p = m.InsertAt(3, "y", p)
	assert.Equal(t, Pos(3), p)
	assert.Equal(t, 0, m.Tombstones())
	assert.Equal(t, 1, m.Size())

	v, ok := m.Get(3)
	require.True(t, ok)
	assert.Equal(t, "y", v)
}

func TestMap_TombstoneBridge(t *testing.T) {
	m := New(collidingPolicy(), WithCapacity[int, string](8))

	m.Insert(1, "foo") // slot 0
	m.Insert(2, "bar") // slot 1 (via probe)
	m.Insert(3, "lol") // slot 3 (via probe)

	// Delete the bridge element in the middle of the probe chain.
	require.True(t, m.Delete(2))

	// The probe must continue past the hole, or key 3 becomes unreachable.
	v, ok := m.Get(3)
	require.True(t, ok, "probe chain broken: could not find key 3 past the hole")
	require.Equal(t, "lol", v)

	// The hole is the first tombstone on the path, so an insert takes it.
	p := m.Search(4)
	require.False(t, p.Found())
	assert.Equal(t, 1, p.InsertionSlot())
}

func TestMap_SaturatedRebuild(t *testing.T) {
	m := New(collidingPolicy(), WithCapacity[int, int](2))
	require.Equal(t, 4, m.Capacity())

	// With every key probing from bucket 0, slots fill as 0, 1, 3, 2.
	for i, key := range []int{10, 20, 30, 40} {
		m.Insert(key, i)
	}
	require.Equal(t, 4, m.Size())

	require.True(t, m.Delete(20))
	require.True(t, m.Delete(40))
	require.Equal(t, 2, m.Tombstones())

	// Every slot is now occupied or tombstoned: no usable slot for a probe.
	p := m.Search(50)
	require.False(t, p.Found())
	require.Equal(t, m.Capacity(), p.InsertionSlot())

	// The insert still succeeds by rebuilding in place, dropping tombstones.
	m.Insert(50, 5)
	assert.Equal(t, 4, m.Capacity())
	assert.Equal(t, 0, m.Tombstones())
	assert.Equal(t, 3, m.Size())

	for _, key := range []int{10, 30, 50} {
		require.Truef(t, m.Search(key).Found(), "lost key %d across the rebuild", key)
	}
	assert.False(t, m.Search(20).Found())
	assert.False(t, m.Search(40).Found())
}

func TestMap_InsertDuplicatePanics(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, int](5))
	m.Insert(1, 10)

	require.PanicsWithValue(t, "probemap: key is already present", func() {
		m.Insert(1, 20)
	})
}

func TestMap_PositionPanics(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, int](5))
	found := m.Insert(1, 10)
	miss := m.Search(2)

	require.PanicsWithValue(t, "probemap: position refers to no entry", func() { m.Key(miss) })
	require.PanicsWithValue(t, "probemap: position refers to no entry", func() { m.Value(miss) })
	require.PanicsWithValue(t, "probemap: position refers to no entry", func() { m.SetValue(miss, 0) })
	require.PanicsWithValue(t, "probemap: erase position refers to no entry", func() { m.Erase(miss) })
	require.PanicsWithValue(t, "probemap: insert position refers to an existing entry", func() {
		m.InsertAt(1, 10, found)
	})
}

func TestMap_NilPolicyPanics(t *testing.T) {
	require.PanicsWithValue(t, "probemap: nil policy", func() {
		New[int, int](nil)
	})
}

func TestMap_Conveniences(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, int](5))

	// Set and Get
	m.Set(1, 42)

	v, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, 42, v)

	// Update existing key
	m.Set(1, 100)

	v, ok = m.Get(1)
	require.True(t, ok)
	assert.Equal(t, 100, v)

	// Get non-existent key
	_, ok = m.Get(2)
	assert.False(t, ok)

	// Delete
	assert.True(t, m.Delete(1))
	_, ok = m.Get(1)
	assert.False(t, ok)

	// Delete non-existent key
	assert.False(t, m.Delete(1))
}

func TestMap_Reserve(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, int](5))
	require.Equal(t, 8, m.Capacity())

	p := m.Insert(3, 30)

	// Reserving below the current capacity is a no-op, so p stays valid.
	m.Reserve(2)
	require.Equal(t, 8, m.Capacity())
	require.Equal(t, 30, m.Value(p))

	m.Reserve(100)
	require.Equal(t, 256, m.Capacity())

	v, ok := m.Get(3)
	require.True(t, ok)
	assert.Equal(t, 30, v)
}

func TestMap_Reset(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, int](5))

	for i := range 5 {
		m.Insert(i, i)
	}
	m.Delete(2)
	require.Equal(t, 1, m.Tombstones())

	before := m.Capacity()
	m.Reset()

	assert.Equal(t, 0, m.Size())
	assert.Equal(t, 0, m.Tombstones())
	assert.Equal(t, before, m.Capacity())

	_, ok := m.Get(0)
	assert.False(t, ok)

	// The table is immediately reusable.
	m.Insert(7, 70)
	v, ok := m.Get(7)
	require.True(t, ok)
	assert.Equal(t, 70, v)
}

func TestMap_StringKeys(t *testing.T) {
	m := New(StringPolicy(), WithCapacity[string, int](4))

	// The reserved keys are invalid UTF-8, so "" is an ordinary key.
	m.Set("", 1)
	m.Set("foo", 2)

	v, ok := m.Get("")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = m.Get("foo")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	require.True(t, m.Delete(""))
	_, ok = m.Get("")
	assert.False(t, ok)
}

func TestMap_IntegerPolicy(t *testing.T) {
	m := New(IntegerPolicy[uint64](), WithCapacity[uint64, int](64))

	for i := range uint64(100) {
		m.Set(i, int(i)*3)
	}
	require.Equal(t, 100, m.Size())

	for i := range uint64(100) {
		v, ok := m.Get(i)
		require.True(t, ok)
		require.Equal(t, int(i)*3, v)
	}
}

func TestMap_GrowthPreservesEntries(t *testing.T) {
	m := New[int, int](intPolicy())

	for i := range 1000 {
		m.Set(i, i*100)
	}

	// Delete half to spread tombstones around.
	deleted := make([]int, 0, 500)
	for len(deleted) < 500 {
		idx := rand.Intn(1000)

		if m.Delete(idx) {
			deleted = append(deleted, idx)
		}
	}

	// Force a rebuild so the tombstones get dropped.
	before := m.Capacity()
	m.Reserve(2000)
	require.Greater(t, m.Capacity(), before)
	require.Equal(t, 0, m.Tombstones())

	for i := range 1000 {
		v, ok := m.Get(i)

		if slices.Contains(deleted, i) {
			require.Falsef(t, ok, "deleted key %d came back after the rebuild", i)
			continue
		}

		require.Truef(t, ok, "lost key %d across the rebuild", i)
		require.Equal(t, i*100, v)
	}
}
