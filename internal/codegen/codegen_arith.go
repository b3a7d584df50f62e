package codegen

import (
	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/types"
)

// emitAdd/Sub/Mul/Div route on the operand CT's numeric family (integer
// vs float) and, for division, signedness — the "corresponding
// emit_add/sub/mul/div helpers" spec.md §4.5.2's Assign clause calls for,
// shared here with Bin's arithmetic lowering so both call sites agree.
func (cg *CG) emitAdd(t *types.CT, lhs, rhs backend.Value) backend.Value {
	if t.IsFloat() {
		return cg.Mod.BuildFAdd(lhs, rhs, cg.name("add"))
	}
	return cg.Mod.BuildAdd(lhs, rhs, cg.name("add"))
}

func (cg *CG) emitSub(t *types.CT, lhs, rhs backend.Value) backend.Value {
	if t.IsFloat() {
		return cg.Mod.BuildFSub(lhs, rhs, cg.name("sub"))
	}
	return cg.Mod.BuildSub(lhs, rhs, cg.name("sub"))
}

func (cg *CG) emitMul(t *types.CT, lhs, rhs backend.Value) backend.Value {
	if t.IsFloat() {
		return cg.Mod.BuildFMul(lhs, rhs, cg.name("mul"))
	}
	return cg.Mod.BuildMul(lhs, rhs, cg.name("mul"))
}

func (cg *CG) emitDiv(t *types.CT, lhs, rhs backend.Value) backend.Value {
	switch {
	case t.IsFloat():
		return cg.Mod.BuildFDiv(lhs, rhs, cg.name("div"))
	case t.IsSigned():
		return cg.Mod.BuildSDiv(lhs, rhs, cg.name("div"))
	default:
		return cg.Mod.BuildUDiv(lhs, rhs, cg.name("div"))
	}
}

// intPredicate selects the signed or unsigned comparison opcode by the
// operand type's signedness (spec.md §4.5.1 "Bin": "comparisons ...
// signed/unsigned predicate selection based on LHS type").
func intPredicate(op opKindCompare, signed bool) backend.IntPredicate {
	if signed {
		switch op {
		case cmpEQ:
			return backend.IntEQ
		case cmpNE:
			return backend.IntNE
		case cmpLT:
			return backend.IntSLT
		case cmpLE:
			return backend.IntSLE
		case cmpGT:
			return backend.IntSGT
		default:
			return backend.IntSGE
		}
	}
	switch op {
	case cmpEQ:
		return backend.IntEQ
	case cmpNE:
		return backend.IntNE
	case cmpLT:
		return backend.IntULT
	case cmpLE:
		return backend.IntULE
	case cmpGT:
		return backend.IntUGT
	default:
		return backend.IntUGE
	}
}

type opKindCompare int

const (
	cmpEQ opKindCompare = iota
	cmpNE
	cmpLT
	cmpLE
	cmpGT
	cmpGE
)

func realPredicate(op opKindCompare) backend.RealPredicate {
	switch op {
	case cmpEQ:
		return backend.RealOEQ
	case cmpNE:
		return backend.RealONE
	case cmpLT:
		return backend.RealOLT
	case cmpLE:
		return backend.RealOLE
	case cmpGT:
		return backend.RealOGT
	default:
		return backend.RealOGE
	}
}

// emitShr picks arithmetic vs logical right shift by the operand's
// signedness (spec.md §4.5.1: "bitwise (... << >> with arithmetic vs
// logical right-shift by signedness)").
func (cg *CG) emitShr(t *types.CT, lhs, rhs backend.Value) backend.Value {
	if t.IsSigned() {
		return cg.Mod.BuildAShr(lhs, rhs, cg.name("ashr"))
	}
	return cg.Mod.BuildLShr(lhs, rhs, cg.name("lshr"))
}
