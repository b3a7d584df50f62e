package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateReturnsStableDistinctPointers(t *testing.T) {
	c := New[int](4)
	var ptrs []*int
	for i := 0; i < 4; i++ {
		p := c.Allocate()
		require.NotNil(t, p)
		*p = i
		ptrs = append(ptrs, p)
	}
	for i, p := range ptrs {
		require.Equal(t, i, *p, "pointer %d value changed after further allocations", i)
	}
	require.Equal(t, 4, c.Len())
}

func TestAllocateGrowsBeyondOnePool(t *testing.T) {
	c := New[int](2)
	for i := 0; i < 10; i++ {
		require.NotNil(t, c.Allocate())
	}
	require.Equal(t, 10, c.Len())
	require.Len(t, c.All(), 10)
}

func TestDeallocateFreesSlotForReuse(t *testing.T) {
	c := New[int](2)
	a := c.Allocate()
	*a = 1
	b := c.Allocate()
	*b = 2
	require.Equal(t, 2, c.Len())

	c.Deallocate(a)
	require.Equal(t, 1, c.Len())

	c2 := c.Allocate()
	require.Equal(t, 0, *c2, "reused slot must come back zeroed")
	require.Equal(t, 2, c.Len())
}

func TestDeallocateUnknownPointerIsNoop(t *testing.T) {
	c := New[int](4)
	other := new(int)
	c.Allocate()
	require.Equal(t, 1, c.Len())
	c.Deallocate(other)
	require.Equal(t, 1, c.Len())
}

func TestAllReturnsOnlyOccupiedSlots(t *testing.T) {
	c := New[int](4)
	a := c.Allocate()
	*a = 7
	b := c.Allocate()
	*b = 8
	c.Deallocate(a)

	all := c.All()
	require.Len(t, all, 1)
	require.Equal(t, 8, *all[0])
}

func TestDefaultObjectCountForDegenerateInput(t *testing.T) {
	c := New[int](0)
	require.NotNil(t, c.Allocate())
}
