package codegen

import (
	"math/big"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/types"
)

// genBin lowers arithmetic, comparison, bitwise, and max/min binary forms
// (spec.md §4.5.1 "Bin"). `.` (AccessExpr), `of` (PropExpr, see genProp)
// and `as`/`is` (CastExpr/TestExpr) are their own Expr kinds, not Bin
// operators, in this AST.
func (cg *CG) genBin(n *ast.BinExpr, want *types.CT) (Value, bool) {
	lhs, ok := cg.genValue(n.LHS, want)
	if !ok {
		return Value{}, false
	}
	rhs, ok := cg.genValue(n.RHS, lhs.T)
	if !ok {
		return Value{}, false
	}
	if !lhs.T.Equal(rhs.T) {
		cg.Sink.Errorf(n.R, "type mismatch in binary expression: %s vs %s", lhs.T, rhs.T)
		return Value{}, false
	}
	switch n.Op {
	case ast.BinAdd:
		return Value{T: lhs.T, V: cg.emitAdd(lhs.T, lhs.V, rhs.V)}, true
	case ast.BinSub:
		return Value{T: lhs.T, V: cg.emitSub(lhs.T, lhs.V, rhs.V)}, true
	case ast.BinMul:
		return Value{T: lhs.T, V: cg.emitMul(lhs.T, lhs.V, rhs.V)}, true
	case ast.BinDiv:
		return Value{T: lhs.T, V: cg.emitDiv(lhs.T, lhs.V, rhs.V)}, true
	case ast.BinMax, ast.BinMin:
		return cg.genMaxMin(n.Op, lhs, rhs), true
	case ast.BinBAnd:
		return Value{T: lhs.T, V: cg.Mod.BuildAnd(lhs.V, rhs.V, cg.name("and"))}, true
	case ast.BinBOr:
		return Value{T: lhs.T, V: cg.Mod.BuildOr(lhs.V, rhs.V, cg.name("or"))}, true
	case ast.BinShl:
		return Value{T: lhs.T, V: cg.Mod.BuildShl(lhs.V, rhs.V, cg.name("shl"))}, true
	case ast.BinShr:
		return Value{T: lhs.T, V: cg.emitShr(lhs.T, lhs.V, rhs.V)}, true
	case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		return cg.genCompare(n.Op, lhs, rhs), true
	default:
		cg.Sink.Errorf(n.R, "unsupported binary operator")
		return Value{}, false
	}
}

func cmpKindOf(op ast.BinOp) opKindCompare {
	switch op {
	case ast.BinEq:
		return cmpEQ
	case ast.BinNe:
		return cmpNE
	case ast.BinLt:
		return cmpLT
	case ast.BinLe:
		return cmpLE
	case ast.BinGt:
		return cmpGT
	default:
		return cmpGE
	}
}

func (cg *CG) genCompare(op ast.BinOp, lhs, rhs Value) Value {
	b8 := cg.Types.B8()
	k := cmpKindOf(op)
	var v backend.Value
	switch {
	case lhs.T.IsFloat():
		v = cg.Mod.BuildFCmp(realPredicate(k), lhs.V, rhs.V, cg.name("fcmp"))
	default:
		v = cg.Mod.BuildICmp(intPredicate(k, lhs.T.IsSigned()), lhs.V, rhs.V, cg.name("icmp"))
	}
	return Value{T: b8, V: v}
}

func (cg *CG) genMaxMin(op ast.BinOp, lhs, rhs Value) Value {
	var pred backend.IntPredicate
	if op == ast.BinMax {
		pred = backend.IntSGT
		if lhs.T.IsUnsigned() {
			pred = backend.IntUGT
		}
	} else {
		pred = backend.IntSLT
		if lhs.T.IsUnsigned() {
			pred = backend.IntULT
		}
	}
	cond := cg.Mod.BuildICmp(pred, lhs.V, rhs.V, cg.name("cmp"))
	// No select opcode in the backend interface (§6.3): model max/min as a
	// 2-predecessor phi over a conditional branch, the same shape Bin's
	// sibling LBin uses for ||/&&.
	thenB := cg.Mod.AppendBlock(cg.curFnHandle(), cg.name("maxmin.then"))
	elseB := cg.Mod.AppendBlock(cg.curFnHandle(), cg.name("maxmin.else"))
	joinB := cg.Mod.AppendBlock(cg.curFnHandle(), cg.name("maxmin.join"))
	cg.Mod.BuildCondBr(cond, thenB, elseB)
	cg.position(thenB)
	cg.Mod.BuildBr(joinB)
	cg.position(elseB)
	cg.Mod.BuildBr(joinB)
	cg.position(joinB)
	t := cg.backendType(lhs.T)
	phi := cg.Mod.BuildPhi(t, []backend.PhiIncoming{
		{Value: lhs.V, Block: thenB},
		{Value: rhs.V, Block: elseB},
	}, cg.name("maxmin"))
	return Value{T: lhs.T, V: phi}
}

// genLBin lowers short-circuiting ||/&& with a two-predecessor phi in the
// join block: one edge from the LHS block carrying the short-circuit
// constant and one from the end of the RHS; there is no third
// predecessor (spec.md §4.5.1 "LBin"). LHS true short-circuits || to true without
// evaluating RHS, LHS false short-circuits && to false without
// evaluating RHS.
func (cg *CG) genLBin(n *ast.LBinExpr) (Value, bool) {
	b8 := cg.Types.B8()
	lhs, ok := cg.genValue(n.LHS, b8)
	if !ok {
		return Value{}, false
	}
	lhsBlock := cg.curBlock
	rhsB := cg.Mod.AppendBlock(cg.curFnHandle(), cg.name("lbin.rhs"))
	joinB := cg.Mod.AppendBlock(cg.curFnHandle(), cg.name("lbin.join"))
	if n.Op == ast.LBinOrOr {
		cg.Mod.BuildCondBr(lhs.V, joinB, rhsB)
	} else {
		cg.Mod.BuildCondBr(lhs.V, rhsB, joinB)
	}
	cg.position(rhsB)
	rhs, ok := cg.genValue(n.RHS, b8)
	if !ok {
		return Value{}, false
	}
	rhsEndBlock := cg.curBlock
	cg.Mod.BuildBr(joinB)
	cg.position(joinB)
	shortCircuit := cg.Mod.ConstInt(cg.backendType(b8), big.NewInt(boolConst(n.Op)))
	phi := cg.Mod.BuildPhi(cg.backendType(b8), []backend.PhiIncoming{
		{Value: shortCircuit, Block: lhsBlock},
		{Value: rhs.V, Block: rhsEndBlock},
	}, cg.name("lbin"))
	return Value{T: b8, V: phi}, true
}

func boolConst(op ast.LBinOp) int64 {
	if op == ast.LBinOrOr {
		return 1
	}
	return 0
}

// genUnary lowers `! - * &` (spec.md §4.5.1 "Unary").
func (cg *CG) genUnary(n *ast.UnaryExpr, want *types.CT) (Value, bool) {
	switch n.Op {
	case ast.UnaryAddr:
		addr, ok := cg.genAddr(n.X, nil)
		if !ok {
			return Value{}, false
		}
		return Value{T: cg.Types.Pointer(addr.T), V: addr.Ptr}, true
	case ast.UnaryDeref:
		addr, ok := cg.genAddr(n, want)
		if !ok {
			return Value{}, false
		}
		return cg.load(addr), true
	case ast.UnaryNeg:
		v, ok := cg.genValue(n.X, want)
		if !ok {
			return Value{}, false
		}
		if v.T.IsFloat() {
			return Value{T: v.T, V: cg.Mod.BuildFNeg(v.V, cg.name("neg"))}, true
		}
		return Value{T: v.T, V: cg.Mod.BuildNeg(v.V, cg.name("neg"))}, true
	case ast.UnaryNot:
		v, ok := cg.genValue(n.X, cg.Types.B8())
		if !ok {
			return Value{}, false
		}
		return Value{T: v.T, V: cg.Mod.BuildNot(v.V, cg.name("not"))}, true
	default:
		cg.Sink.Errorf(n.R, "unsupported unary operator")
		return Value{}, false
	}
}

// genCast lowers `x as T`: a checked cast to a structural type. The
// opcode is chosen here by castOpFor, not by the backend, and passed to
// BuildCast (spec.md §4.5.1 "Cast/Test/Prop", §6.3).
func (cg *CG) genCast(n *ast.CastExpr) (Value, bool) {
	dst, ok := cg.genType(n.T)
	if !ok {
		return Value{}, false
	}
	v, ok := cg.genValue(n.X, dst)
	if !ok {
		return Value{}, false
	}
	if v.T.Equal(dst) {
		return Value{T: dst, V: v.V}, true
	}
	op, ok := castOpFor(v.T, dst)
	if !ok {
		cg.Sink.Errorf(n.R, "type mismatch: cannot cast %s to %s", v.T, dst)
		return Value{}, false
	}
	t := cg.backendType(dst)
	return Value{T: dst, V: cg.Mod.BuildCast(op, v.V, t, cg.name("cast"))}, true
}

func castOpFor(src, dst *types.CT) (backend.CastOp, bool) {
	switch {
	case src.IsInteger() && dst.IsInteger():
		if dst.Size() < src.Size() {
			return backend.CastTrunc, true
		}
		if src.IsSigned() {
			return backend.CastSExt, true
		}
		return backend.CastZExt, true
	case (src.IsInteger() || src.IsBool()) && dst.IsFloat():
		if src.IsSigned() {
			return backend.CastSIToFP, true
		}
		return backend.CastUIToFP, true
	case src.IsFloat() && dst.IsInteger():
		if dst.IsSigned() {
			return backend.CastFPToSI, true
		}
		return backend.CastFPToUI, true
	case src.IsFloat() && dst.IsFloat():
		if dst.Size() > src.Size() {
			return backend.CastFPExt, true
		}
		return backend.CastFPTrunc, true
	case src.IsPointer() && dst.IsInteger():
		return backend.CastPtrToInt, true
	case src.IsInteger() && dst.IsPointer():
		return backend.CastIntToPtr, true
	case src.IsPointer() && dst.IsPointer():
		return backend.CastBitCast, true
	case src.IsBool() && dst.IsInteger():
		return backend.CastZExt, true
	case src.IsInteger() && dst.IsBool():
		return backend.CastTrunc, true
	default:
		return 0, false
	}
}

// genTest lowers `x is T`: a structural type check. When X is a plain
// variable of union type and T is one of its variants, the result also
// pushes a narrowing onto the current scope so a later `.`/access through
// that variable resolves against the tested variant; a non-union X yields
// a constant and pushes no narrowing (spec.md §4.5.1, §4.5.2 "If").
func (cg *CG) genTest(n *ast.TestExpr) (Value, bool) {
	dst, ok := cg.genType(n.T)
	if !ok {
		return Value{}, false
	}
	xv, ok := cg.genValue(n.X, nil)
	if !ok {
		return Value{}, false
	}
	var isMatch bool
	if xv.T.IsUnion() {
		// A union's runtime tag byte records which variant is live; read it
		// back and compare against dst's index among the union's variants.
		addr, ok := cg.genAddr(n.X, nil)
		if ok {
			tagIdx, found := unionVariantIndex(xv.T, dst)
			if found {
				tag := cg.loadUnionTag(addr)
				expect := cg.Mod.ConstInt(cg.Mod.IntType(8), big.NewInt(int64(tagIdx)))
				cmp := cg.Mod.BuildICmp(backend.IntEQ, tag, expect, cg.name("is"))
				b8 := cg.Types.B8()
				if vb, ok := cg.Scopes.Lookup(varName(n.X)); ok {
					cg.Scopes.PushNarrowing(vb, dst)
				}
				return Value{T: b8, V: cmp}, true
			}
		}
		return Value{T: cg.Types.B8(), V: cg.Mod.ConstInt(cg.Mod.IntType(8), big.NewInt(0))}, true
	}
	isMatch = xv.T.Equal(dst)
	b8 := cg.Types.B8()
	c := int64(0)
	if isMatch {
		c = 1
	}
	return Value{T: b8, V: cg.Mod.ConstInt(cg.Mod.IntType(8), big.NewInt(c))}, true
}

func varName(e ast.Expr) string {
	if v, ok := e.(*ast.VarExpr); ok {
		return v.Name
	}
	return ""
}

func unionVariantIndex(union, variant *types.CT) (int, bool) {
	for i, f := range union.Fields() {
		if f.T.Equal(variant) {
			return i, true
		}
	}
	return 0, false
}

// genProp lowers `p of T`: property-of-type access. The only fully
// specified form (SPEC_FULL.md §4, grounded on
// original_source/cg_expr.cpp's `of` handling) is an enum value lookup —
// `Name of EnumType` resolves to that enumerator's constant.
func (cg *CG) genProp(n *ast.PropExpr) (Value, bool) {
	t, ok := cg.genType(n.T)
	if !ok {
		return Value{}, false
	}
	if !t.IsEnum() {
		cg.Sink.Errorf(n.R, "'of' is only supported for enum types in this lowering")
		return Value{}, false
	}
	for _, en := range t.Enumerators() {
		if en.Name == n.Name {
			v := cg.Mod.ConstInt(cg.backendType(t), big.NewInt(en.Value))
			return Value{T: t, V: v}, true
		}
	}
	cg.Sink.Errorf(n.R, "enum %s has no member %q", t, n.Name)
	return Value{}, false
}
