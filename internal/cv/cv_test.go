package cv

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biron-lang/bironc/internal/types"
)

func TestCopyIsDeep(t *testing.T) {
	c := types.New()
	orig := Tuple(c.Tuple([]*types.CT{c.U32(), c.U32()}, nil, ""), []Value{
		Int(c.U32(), big.NewInt(1)),
		Int(c.U32(), big.NewInt(2)),
	})
	cp := orig.Copy()
	cp.Elems[0].Int.SetInt64(99)
	require.Equal(t, int64(1), orig.Elems[0].Int.Int64(), "mutating the copy must not affect the original")

	orig.Int = big.NewInt(5)
	cp2 := orig.Copy()
	cp2.Int.SetInt64(100)
	require.Equal(t, int64(5), orig.Int.Int64())
}

func TestFitsInWidthSignedBoundaries(t *testing.T) {
	require.True(t, FitsInWidth(big.NewInt(127), 8, true))
	require.False(t, FitsInWidth(big.NewInt(128), 8, true))
	require.True(t, FitsInWidth(big.NewInt(-128), 8, true))
	require.False(t, FitsInWidth(big.NewInt(-129), 8, true))
}

func TestFitsInWidthUnsignedBoundaries(t *testing.T) {
	require.True(t, FitsInWidth(big.NewInt(255), 8, false))
	require.False(t, FitsInWidth(big.NewInt(256), 8, false))
	require.False(t, FitsInWidth(big.NewInt(-1), 8, false))
}

func TestDivByZeroNotOk(t *testing.T) {
	_, ok := Div(big.NewInt(10), big.NewInt(0))
	require.False(t, ok)
}

func TestDivTruncates(t *testing.T) {
	result, ok := Div(big.NewInt(7), big.NewInt(2))
	require.True(t, ok)
	require.Equal(t, int64(3), result.Int64())
}

func TestCastUntypedIntNarrowsWhenItFits(t *testing.T) {
	c := types.New()
	v := UntypedInt(big.NewInt(200))
	out, err := Cast(v, c.U8())
	require.NoError(t, err)
	require.Equal(t, KindInt, out.Kind)
	require.Equal(t, int64(200), out.Int.Int64())
}

func TestCastOutOfRangeIsAnError(t *testing.T) {
	c := types.New()
	v := UntypedInt(big.NewInt(300))
	_, err := Cast(v, c.U8())
	require.Error(t, err)
}

func TestCastIntToBool(t *testing.T) {
	c := types.New()
	zero := Int(c.U32(), big.NewInt(0))
	out, err := Cast(zero, c.B8())
	require.NoError(t, err)
	require.False(t, out.Bool)

	nonzero := Int(c.U32(), big.NewInt(5))
	out, err = Cast(nonzero, c.B8())
	require.NoError(t, err)
	require.True(t, out.Bool)
}

func TestCastIntToFloat(t *testing.T) {
	c := types.New()
	v := Int(c.U32(), big.NewInt(4))
	out, err := Cast(v, c.F64())
	require.NoError(t, err)
	require.Equal(t, 4.0, out.Float)
}

func TestCastFloatToIntTruncates(t *testing.T) {
	c := types.New()
	v := UntypedReal(3.9)
	out, err := Cast(v, c.S32())
	require.NoError(t, err)
	require.Equal(t, int64(3), out.Int.Int64())
}

func TestCastUnsupportedDestinationKind(t *testing.T) {
	c := types.New()
	v := Int(c.U32(), big.NewInt(1))
	_, err := Cast(v, c.Str())
	require.Error(t, err)
}

func TestIsUntyped(t *testing.T) {
	require.True(t, UntypedInt(big.NewInt(1)).IsUntyped())
	require.True(t, UntypedReal(1.5).IsUntyped())
	c := types.New()
	require.False(t, Int(c.U32(), big.NewInt(1)).IsUntyped())
}
