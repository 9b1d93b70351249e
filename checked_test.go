//go:build probemapcheck

package probemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecked_ReservedKeyPanics(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, int](5))

	require.Panics(t, func() { m.Search(-1) })
	require.Panics(t, func() { m.Search(-2) })
}

func TestChecked_ErasedPositionPanics(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, int](5))

	p := m.Insert(3, 30)
	m.Erase(p)

	// p still points at the slot, but the entry behind it is gone.
	require.Panics(t, func() { m.Value(p) })
	require.Panics(t, func() { m.Key(p) })
	require.Panics(t, func() { m.SetValue(p, 0) })
	require.Panics(t, func() { m.Erase(p) })
}

func TestChecked_StaleInsertPositionPanics(t *testing.T) {
	m := New(intPolicy(), WithCapacity[int, int](5))

	p := m.Search(3)
	require.False(t, p.Found())

	// The insertion slot gets taken before the position is used.
	m.Insert(3, 30)

	require.Panics(t, func() { m.InsertAt(4, 40, p) })
}
