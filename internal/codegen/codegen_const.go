package codegen

import (
	"math/big"

	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/cv"
)

// lowerConst lowers a folded compile-time constant to a backend constant
// of its CT's backend type (spec.md §4.6: "each CV lowers to a backend
// constant of the matching CT"). v must already be a typed (non-untyped)
// constant — callers coerce untyped int/real carriers via cv.Cast before
// reaching here, per spec.md §4.3.
func (cg *CG) lowerConst(v cv.Value) backend.Value {
	t := cg.backendType(v.T)
	switch v.Kind {
	case cv.KindBool:
		b := int64(0)
		if v.Bool {
			b = 1
		}
		return cg.Mod.ConstInt(t, big.NewInt(b))
	case cv.KindInt, cv.KindUntypedInt:
		return cg.Mod.ConstInt(t, v.Int)
	case cv.KindFloat, cv.KindUntypedReal:
		return cg.Mod.ConstFloat(t, v.Float)
	case cv.KindString:
		return cg.lowerConstString(v.Str)
	case cv.KindTuple:
		return cg.lowerConstRecord(v)
	case cv.KindArray:
		return cg.lowerConstArray(v)
	default:
		return cg.Mod.ConstZero(t)
	}
}

// lowerConstString builds a `{ptr, u64}` string constant from a global
// byte array holding the literal with an appended NUL (spec.md §4.6:
// "strings lower to `{global_string_ptr, length}` struct constants, with
// a trailing NUL appended to the literal before global-string creation",
// mirroring original_source/cg_unit.cpp's string-literal interning).
func (cg *CG) lowerConstString(s string) backend.Value {
	ptr := cg.Mod.BuildGlobalString(s, cg.name("str"))
	length := cg.Mod.ConstInt(cg.Mod.IntType(64), big.NewInt(int64(len(s))))
	return cg.Mod.ConstStruct(cg.backendStringType(), []backend.Value{ptr, length})
}

// lowerConstRecord builds a named-struct constant for a tuple CV,
// zero-initializing any inserted padding field (spec.md §4.6: "tuples to
// named-struct constants with zero-initialized padding").
func (cg *CG) lowerConstRecord(v cv.Value) backend.Value {
	fields := v.T.Fields()
	vals := make([]backend.Value, len(fields))
	for i, f := range fields {
		if f.T.IsPadding() {
			vals[i] = cg.Mod.ConstZero(cg.backendType(f.T))
			continue
		}
		vals[i] = cg.lowerConst(v.Elems[i])
	}
	return cg.Mod.ConstStruct(cg.backendType(v.T), vals)
}

func (cg *CG) lowerConstArray(v cv.Value) backend.Value {
	elemT := cg.backendType(v.T.Base())
	vals := make([]backend.Value, len(v.Elems))
	for i, e := range v.Elems {
		vals[i] = cg.lowerConst(e)
	}
	return cg.Mod.ConstArray(elemT, vals)
}
