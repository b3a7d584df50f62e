package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinsAreStableSingletons(t *testing.T) {
	c := New()
	require.Same(t, c.U32(), c.U32())
	require.Same(t, c.S64(), c.S64())
	require.Same(t, c.F64(), c.F64())
	require.Equal(t, uint64(4), c.U32().Size())
	require.Equal(t, uint64(4), c.U32().Align())
	require.True(t, c.S32().IsSigned())
	require.False(t, c.U32().IsSigned())
	require.True(t, c.U32().IsInteger())
}

func TestStructurallyIdenticalTypesAreInternedToTheSamePointer(t *testing.T) {
	c := New()
	p1 := c.Pointer(c.U32())
	p2 := c.Pointer(c.U32())
	require.Same(t, p1, p2, "two pointers to the same canonical element must share one CT")

	a1 := c.Array(c.U8(), 4)
	a2 := c.Array(c.U8(), 4)
	require.Same(t, a1, a2)

	a3 := c.Array(c.U8(), 5)
	require.NotSame(t, a1, a3, "different extent must not be interned together")
}

func TestTupleNamesDoNotAffectIdentity(t *testing.T) {
	c := New()
	t1 := c.Tuple([]*CT{c.U32(), c.F64()}, []string{"x", "y"}, "")
	t2 := c.Tuple([]*CT{c.U32(), c.F64()}, []string{"other", "names"}, "")
	require.Same(t, t1, t2, "field names are not part of structural identity")
	require.True(t, t1.Equal(t2))
}

func TestTuplePaddingInsertion(t *testing.T) {
	c := New()
	// u8 then u32: offset after u8 is 1, needs 3 bytes of padding to reach
	// 4-byte alignment, then the u32, for a total size of 8 (already
	// aligned to max align 4).
	tup := c.Tuple([]*CT{c.U8(), c.U32()}, nil, "")
	fields := tup.Fields()
	require.Len(t, fields, 3, "u8, padding, u32")
	require.True(t, fields[0].T.Equal(c.U8()))
	require.True(t, fields[1].T.IsPadding())
	require.Equal(t, uint64(3), fields[1].T.Size())
	require.True(t, fields[2].T.Equal(c.U32()))
	require.Equal(t, uint64(8), tup.Size())
	require.Equal(t, uint64(4), tup.Align())
}

func TestTupleNoTrailingPaddingWhenAlreadyAligned(t *testing.T) {
	c := New()
	tup := c.Tuple([]*CT{c.U32(), c.U32()}, nil, "")
	require.Len(t, tup.Fields(), 2)
	require.Equal(t, uint64(8), tup.Size())
}

func TestTupleTrailingPadding(t *testing.T) {
	c := New()
	// u32 then u8: offset 4 + 1 = 5, round up to max align 4 -> 8, with a
	// trailing 3-byte padding field.
	tup := c.Tuple([]*CT{c.U32(), c.U8()}, nil, "")
	fields := tup.Fields()
	require.Len(t, fields, 3)
	require.True(t, fields[2].T.IsPadding())
	require.Equal(t, uint64(3), fields[2].T.Size())
	require.Equal(t, uint64(8), tup.Size())
}

func TestUnionLayout(t *testing.T) {
	c := New()
	// variants: String (16 bytes, align 8) and Sint32 (4 bytes, align 4).
	// payload = 16 bytes (largest variant) + 1 tag byte = 17, rounded up
	// to align 8 -> 24.
	u := c.Union([]*CT{c.Str(), c.S32()}, []string{"s", "n"}, "")
	require.Equal(t, uint64(24), u.Size())
	require.Equal(t, uint64(8), u.Align())
	require.Len(t, u.Fields(), 2)
}

func TestUnionLayoutSmallVariantsStillReserveTagByte(t *testing.T) {
	c := New()
	u := c.Union([]*CT{c.U8(), c.B8()}, nil, "")
	// payload 1 + tag 1 = 2, align 1, no rounding needed.
	require.Equal(t, uint64(2), u.Size())
	require.Equal(t, uint64(1), u.Align())
}

func TestEnumIdentityIncludesEnumeratorList(t *testing.T) {
	c := New()
	e1 := c.Enum(c.U32(), []Enumerator{{Name: "A", Value: 0}, {Name: "B", Value: 1}}, "Color")
	e2 := c.Enum(c.U32(), []Enumerator{{Name: "A", Value: 0}, {Name: "B", Value: 1}}, "Color")
	require.Same(t, e1, e2)

	e3 := c.Enum(c.U32(), []Enumerator{{Name: "A", Value: 0}, {Name: "C", Value: 2}}, "Color")
	require.NotSame(t, e1, e3, "different enumerator values must not be interned together")
}

func TestPaddingOfZeroReturnsUnit(t *testing.T) {
	c := New()
	require.Same(t, c.Unit(), c.Padding(0))
}

func TestFnIdentity(t *testing.T) {
	c := New()
	args := c.Tuple([]*CT{c.U32()}, nil, "")
	rets := c.Tuple([]*CT{c.B8()}, nil, "")
	f1 := c.Fn(args, rets, nil)
	f2 := c.Fn(args, rets, nil)
	require.Same(t, f1, f2)
}
