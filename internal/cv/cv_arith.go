package cv

import "math/big"

// widened bounds for every representable integer width/signedness,
// computed once (spec.md §4.3: "widened signed 128-bit carrier").
var (
	unsignedMax = [4]*big.Int{
		new(big.Int).SetUint64(0xff),
		new(big.Int).SetUint64(0xffff),
		new(big.Int).SetUint64(0xffffffff),
		new(big.Int).SetUint64(0xffffffffffffffff),
	}
	signedMin = [4]*big.Int{
		big.NewInt(-0x80),
		big.NewInt(-0x8000),
		big.NewInt(-0x80000000),
		big.NewInt(-0x8000000000000000),
	}
	signedMax = [4]*big.Int{
		big.NewInt(0x7f),
		big.NewInt(0x7fff),
		big.NewInt(0x7fffffff),
		big.NewInt(0x7fffffffffffffff),
	}
)

func widthIndex(bits int) int {
	switch bits {
	case 8:
		return 0
	case 16:
		return 1
	case 32:
		return 2
	default:
		return 3
	}
}

// FitsInWidth reports whether val is representable in an integer of the
// given bit width and signedness, per spec.md §4.3's narrowing rule.
func FitsInWidth(val *big.Int, bits int, signed bool) bool {
	i := widthIndex(bits)
	if signed {
		return val.Cmp(signedMin[i]) >= 0 && val.Cmp(signedMax[i]) <= 0
	}
	return val.Sign() >= 0 && val.Cmp(unsignedMax[i]) <= 0
}

// Add, Sub, Mul perform widened 128-bit-safe integer arithmetic; the
// caller narrows and range-checks the result against the destination
// width (spec.md §4.3). big.Int already grows arbitrarily, so "widened
// 128-bit carrier" here just means: never truncate mid-computation.
func Add(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }
func Sub(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }
func Mul(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }

// Div performs truncating integer division. ok is false on division by
// zero; the evaluator then treats the expression as not const-evaluable.
func Div(a, b *big.Int) (result *big.Int, ok bool) {
	if b.Sign() == 0 {
		return nil, false
	}
	return new(big.Int).Quo(a, b), true
}
