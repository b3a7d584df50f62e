// Package cv implements bironc's compile-time constant values (spec.md
// §3.3): the typed sum the constant evaluator in internal/consteval
// produces and internal/codegen lowers to backend constants (spec.md
// §4.6). Grounded on
// _examples/original_source/src/biron/ast_const.{h,cpp}'s AstConst, with
// the C++ tagged union reworked as a Go tagged struct — Value is deeply
// copyable by value per spec.md §3.3, so there is no analog of AstConst's
// hand-written move constructor/destructor pair to port.
package cv

import (
	"math/big"

	"github.com/biron-lang/bironc/internal/types"
)

// Kind tags every constant value form.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindBool
	KindFloat
	KindString
	KindTuple
	KindArray
	KindUntypedInt
	KindUntypedReal
)

// Value is a typed compile-time constant. Exactly one payload field is
// meaningful per Kind; Int carries a widened signed 128-bit-safe *big.Int
// for both signed and unsigned forms, narrowed to T's width at use
// (spec.md §4.3).
type Value struct {
	Kind Kind
	T    *types.CT

	Int   *big.Int
	Bool  bool
	Float float64
	Str   string
	Elems []Value // TUPLE / ARRAY, in declaration order
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindUntypedInt:
		return "untyped-int"
	case KindUntypedReal:
		return "untyped-real"
	default:
		return "?"
	}
}

// None is the absent constant (e.g. an Expr that is not const-evaluable).
func None() Value { return Value{Kind: KindNone} }

// IsNone reports whether v carries no value.
func (v Value) IsNone() bool { return v.Kind == KindNone }

// Int constant constructors. t is the destination CT; the raw value is
// stored as-is (callers are expected
// to have already range-checked it against the destination width, per
// spec.md §4.3's overflow-is-fatal rule).
func Int(t *types.CT, v *big.Int) Value  { return Value{Kind: KindInt, T: t, Int: v} }
func Bool(t *types.CT, v bool) Value     { return Value{Kind: KindBool, T: t, Bool: v} }
func Float(t *types.CT, v float64) Value { return Value{Kind: KindFloat, T: t, Float: v} }
func String(t *types.CT, v string) Value { return Value{Kind: KindString, T: t, Str: v} }

// UntypedInt is the 64-bit carrier produced for a bare integer literal; it
// must be coerced to a typed Int at its use site (spec.md §3.3, §4.3).
func UntypedInt(v *big.Int) Value { return Value{Kind: KindUntypedInt, Int: v} }

// UntypedReal is the 64-bit carrier produced for a bare float literal.
func UntypedReal(v float64) Value { return Value{Kind: KindUntypedReal, Float: v} }

// Tuple builds a tuple constant. len(elems) must equal t's arity
// (spec.md §3.3 invariant).
func Tuple(t *types.CT, elems []Value) Value {
	return Value{Kind: KindTuple, T: t, Elems: elems}
}

// Array builds an array constant of array CT t; len(elems) must equal t's
// extent (spec.md §3.3 invariant).
func Array(t *types.CT, elems []Value) Value {
	return Value{Kind: KindArray, T: t, Elems: elems}
}

// IsUntyped reports whether v is one of the two untyped carrier forms
// that must never reach the IR directly.
func (v Value) IsUntyped() bool {
	return v.Kind == KindUntypedInt || v.Kind == KindUntypedReal
}

// Copy returns a deep copy of v: tuple/array element slices are cloned so
// the result owns storage independent of v (spec.md §3.3: "tuple/array
// ownership is unique").
func (v Value) Copy() Value {
	out := v
	if v.Int != nil {
		out.Int = new(big.Int).Set(v.Int)
	}
	if v.Elems != nil {
		out.Elems = make([]Value, len(v.Elems))
		for i, e := range v.Elems {
			out.Elems[i] = e.Copy()
		}
	}
	return out
}
