package cv

import (
	"fmt"
	"math/big"

	"github.com/biron-lang/bironc/internal/types"
)

// Cast performs the "checked constant cast" spec.md §4.3 requires for
// `x as T` at const-eval time: an untyped carrier resolves against dst's
// kind, and a typed integer narrows only if the value fits dst's width —
// otherwise err reports the out-of-range value, matching §4.3's "overflow
// outside the destination's representable range is a fatal diagnostic".
func Cast(v Value, dst *types.CT) (Value, error) {
	switch {
	case dst.IsInteger():
		return castToInt(v, dst)
	case dst.IsBool():
		return castToBool(v, dst)
	case dst.IsFloat():
		return castToFloat(v, dst)
	default:
		return Value{}, fmt.Errorf("cannot constant-cast %v to %s", v.Kind, dst)
	}
}

func bitsOf(t *types.CT) int {
	switch t.Size() {
	case 1:
		return 8
	case 2:
		return 16
	case 4:
		return 32
	default:
		return 64
	}
}

func castToInt(v Value, dst *types.CT) (Value, error) {
	var i *big.Int
	switch v.Kind {
	case KindInt, KindUntypedInt:
		i = v.Int
	case KindFloat, KindUntypedReal:
		i, _ = big.NewFloat(v.Float).Int(nil)
	case KindBool:
		i = big.NewInt(0)
		if v.Bool {
			i = big.NewInt(1)
		}
	default:
		return Value{}, fmt.Errorf("cannot cast %v to integer", v.Kind)
	}
	bits := bitsOf(dst)
	if !FitsInWidth(i, bits, dst.IsSigned()) {
		return Value{}, fmt.Errorf("constant %s does not fit in %s", i.String(), dst)
	}
	return Int(dst, new(big.Int).Set(i)), nil
}

func castToBool(v Value, dst *types.CT) (Value, error) {
	switch v.Kind {
	case KindBool:
		return Bool(dst, v.Bool), nil
	case KindInt, KindUntypedInt:
		return Bool(dst, v.Int.Sign() != 0), nil
	default:
		return Value{}, fmt.Errorf("cannot cast %v to boolean", v.Kind)
	}
}

func castToFloat(v Value, dst *types.CT) (Value, error) {
	switch v.Kind {
	case KindFloat, KindUntypedReal:
		return Float(dst, v.Float), nil
	case KindInt, KindUntypedInt:
		f := new(big.Float).SetInt(v.Int)
		out, _ := f.Float64()
		return Float(dst, out), nil
	default:
		return Value{}, fmt.Errorf("cannot cast %v to float", v.Kind)
	}
}
