package codegen

import (
	"math/big"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/cv"
	"github.com/biron-lang/bironc/internal/types"
)

// genAddr lowers e to an Addr (L-value), the gen_addr mode of spec.md
// §4.5: a typed pointer suitable as a load/store target, a field/index
// base, or an assignment destination.
func (cg *CG) genAddr(e ast.Expr, want *types.CT) (Addr, bool) {
	switch n := e.(type) {
	case *ast.VarExpr:
		return cg.addrOfVar(n)
	case *ast.UnaryExpr:
		if n.Op == ast.UnaryDeref {
			v, ok := cg.genValue(n.X, nil)
			if !ok {
				return Addr{}, false
			}
			if !v.T.IsPointer() {
				cg.Sink.Errorf(n.R, "cannot dereference non-pointer type %s", v.T)
				return Addr{}, false
			}
			return Addr{T: v.T.Deref(), Ptr: v.V}, true
		}
	case *ast.AccessExpr:
		return cg.addrOfAccess(n)
	case *ast.IndexExpr:
		return cg.addrOfIndex(n)
	case *ast.TupleExpr:
		if len(n.Elems) == 1 {
			return cg.genAddr(n.Elems[0], want)
		}
		return cg.addrOfTuple(n, want)
	case *ast.AggExpr:
		return cg.addrOfAgg(n)
	case *ast.CallExpr:
		v, ok := cg.genValue(n, want)
		if !ok {
			return Addr{}, false
		}
		return cg.spillToAddr(v), true
	}
	cg.Sink.Errorf(e.Range(), "expression is not addressable")
	return Addr{}, false
}

// spillToAddr stores an R-value into a fresh alloca and returns its
// address, used where a later consumer (e.g. field access on a call
// result) needs an L-value but only a Value is in hand.
func (cg *CG) spillToAddr(v Value) Addr {
	t := cg.backendType(v.T)
	ptr := cg.Mod.BuildAlloca(t, cg.name("spill"))
	cg.Mod.BuildStore(v.V, ptr)
	return Addr{T: v.T, Ptr: ptr}
}

func (cg *CG) addrOfVar(n *ast.VarExpr) (Addr, bool) {
	if b, ok := cg.Scopes.Lookup(n.Name); ok {
		t := b.T
		if narrowed, ok := cg.Scopes.Narrowed(b); ok {
			t = narrowed
		}
		return Addr{T: t, Ptr: b.Addr}, true
	}
	if g, ok := cg.Globals[n.Name]; ok {
		return Addr{T: g.T, Ptr: g.Handle}, true
	}
	cg.Sink.Errorf(n.R, "undeclared entity %q", n.Name)
	return Addr{}, false
}

// addrOfAccess lowers `a.b` to the address of field b, dereferencing a
// once implicitly when its static type is a pointer (spec.md §4.5.1).
func (cg *CG) addrOfAccess(n *ast.AccessExpr) (Addr, bool) {
	base, ok := cg.genAddr(n.X, nil)
	if !ok {
		return Addr{}, false
	}
	recT := base.T
	basePtr := base.Ptr
	if recT.IsPointer() {
		// Implicit single dereference: load the pointer value, then treat
		// it as the base address of the field access.
		loaded := cg.Mod.BuildLoad(cg.Mod.PointerType(), basePtr, cg.name("deref"))
		basePtr = loaded
		recT = recT.Deref()
	}
	if !recT.IsTuple() {
		cg.Sink.Errorf(n.R, "field access on non-aggregate type %s", recT)
		return Addr{}, false
	}
	idx, fieldT, ok := findField(recT, n.Field)
	if !ok {
		cg.Sink.Errorf(n.R, "type %s has no field %q", recT, n.Field)
		return Addr{}, false
	}
	recordT := cg.backendType(recT)
	zero := cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(0))
	idxV := cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(int64(idx)))
	ptr := cg.Mod.BuildGEP(recordT, basePtr, []backend.Value{zero, idxV}, cg.name("field"))
	return Addr{T: fieldT, Ptr: ptr}, true
}

func findField(t *types.CT, name string) (int, *types.CT, bool) {
	for i, f := range t.Fields() {
		if f.Name == name {
			return i, f.T, true
		}
	}
	return 0, nil, false
}

// addrOfIndex lowers `x[i]`: a GEP with a leading 0 index, skipped when
// the base is already a pointer (to honor the implicit dereference the
// array/slice-via-pointer case needs), per spec.md §4.5.1.
func (cg *CG) addrOfIndex(n *ast.IndexExpr) (Addr, bool) {
	base, ok := cg.genAddr(n.X, nil)
	if !ok {
		return Addr{}, false
	}
	idx, ok := cg.genValue(n.Index, cg.Types.U64())
	if !ok {
		return Addr{}, false
	}
	baseT := base.T
	basePtr := base.Ptr
	var elemT *types.CT
	var indices []backend.Value
	switch {
	case baseT.IsArray():
		elemT = baseT.Base()
		zero := cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(0))
		indices = []backend.Value{zero, idx.V}
	case baseT.IsPointer():
		elemT = baseT.Deref()
		basePtr = cg.Mod.BuildLoad(cg.Mod.PointerType(), basePtr, cg.name("deref"))
		indices = []backend.Value{idx.V}
	case baseT.IsSlice():
		// {ptr, len} record: load the data pointer field, then index into
		// what it points to with no leading 0 (the implicit pointer case).
		dataPtr := cg.Mod.BuildGEP(cg.backendType(baseT), basePtr,
			[]backend.Value{cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(0)), cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(0))},
			cg.name("slice.ptr"))
		basePtr = cg.Mod.BuildLoad(cg.Mod.PointerType(), dataPtr, cg.name("slice.data"))
		elemT = baseT.Base()
		indices = []backend.Value{idx.V}
	default:
		cg.Sink.Errorf(n.R, "cannot index type %s", baseT)
		return Addr{}, false
	}
	ptr := cg.Mod.BuildGEP(cg.backendType(elemT), basePtr, indices, cg.name("idx"))
	return Addr{T: elemT, Ptr: ptr}, true
}

// addrOfTuple allocates storage for a multi-element tuple literal and
// writes each element into its aligned slot, zero-initializing padding
// slots, then returns the aggregate's address (spec.md §4.5.1 "Tuple").
func (cg *CG) addrOfTuple(n *ast.TupleExpr, want *types.CT) (Addr, bool) {
	elemHints := make([]*types.CT, len(n.Elems))
	if want != nil && want.IsTuple() {
		fi := 0
		fields := want.Fields()
		for _, f := range fields {
			if f.T.IsPadding() {
				continue
			}
			if fi < len(elemHints) {
				elemHints[fi] = f.T
			}
			fi++
		}
	}
	values := make([]Value, len(n.Elems))
	elemTypes := make([]*types.CT, len(n.Elems))
	for i, el := range n.Elems {
		v, ok := cg.genValue(el, elemHints[i])
		if !ok {
			return Addr{}, false
		}
		values[i] = v
		elemTypes[i] = v.T
	}
	ct := cg.Types.Tuple(elemTypes, nil, "")
	t := cg.backendType(ct)
	ptr := cg.Mod.BuildAlloca(t, cg.name("tuple"))
	cg.storeFields(ptr, ct, values)
	return Addr{T: ct, Ptr: ptr}, true
}

// storeFields writes values into ptr's tuple slots in declaration order,
// zeroing any padding slot the layout inserted (spec.md §4.5.1).
func (cg *CG) storeFields(ptr backend.Value, ct *types.CT, values []Value) {
	recordT := cg.backendType(ct)
	zero32 := cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(0))
	vi := 0
	for i, f := range ct.Fields() {
		idxV := cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(int64(i)))
		slot := cg.Mod.BuildGEP(recordT, ptr, []backend.Value{zero32, idxV}, cg.name("slot"))
		if f.T.IsPadding() {
			cg.Mod.BuildStore(cg.Mod.ConstZero(cg.backendType(f.T)), slot)
			continue
		}
		cg.Mod.BuildStore(values[vi].V, slot)
		vi++
	}
}

// addrOfAgg allocates storage for a typed aggregate literal, visits every
// slot in declaration order (writing the matching initializer or a zero),
// and returns its address (spec.md §4.5.1 "Agg").
func (cg *CG) addrOfAgg(n *ast.AggExpr) (Addr, bool) {
	ct, ok := cg.genType(n.T)
	if !ok {
		return Addr{}, false
	}
	if !ct.IsTuple() {
		cg.Sink.Errorf(n.R, "aggregate literal requires a tuple/struct type, got %s", ct)
		return Addr{}, false
	}
	recordT := cg.backendType(ct)
	ptr := cg.Mod.BuildAlloca(recordT, cg.name("agg"))
	zero32 := cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(0))
	for i, f := range ct.Fields() {
		idxV := cg.Mod.ConstInt(cg.Mod.IntType(32), big.NewInt(int64(i)))
		slot := cg.Mod.BuildGEP(recordT, ptr, []backend.Value{zero32, idxV}, cg.name("slot"))
		if f.T.IsPadding() {
			cg.Mod.BuildStore(cg.Mod.ConstZero(cg.backendType(f.T)), slot)
			continue
		}
		init := findAggField(n.Fields, f.Name)
		if init == nil {
			cg.Mod.BuildStore(cg.Mod.ConstZero(cg.backendType(f.T)), slot)
			continue
		}
		v, ok := cg.genValue(init, f.T)
		if !ok {
			return Addr{}, false
		}
		cg.Mod.BuildStore(v.V, slot)
	}
	return Addr{T: ct, Ptr: ptr}, true
}

func findAggField(fields []ast.AggField, name string) ast.Expr {
	for _, f := range fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// genValue lowers e to a Value (R-value), the gen_value mode of spec.md
// §4.5: an SSA operand suitable as an arithmetic operand, a call
// argument, or a return value. want is a hint used to resolve untyped
// literals and select a union variant; it is never a hard constraint.
func (cg *CG) genValue(e ast.Expr, want *types.CT) (Value, bool) {
	switch n := e.(type) {
	case *ast.IntExpr, *ast.FltExpr:
		return cg.genConstValue(e, want)
	case *ast.StrExpr:
		return cg.genConstValue(e, want)
	case *ast.BoolExpr:
		return cg.genConstValue(e, want)
	case *ast.VarExpr:
		return cg.genVarValue(n, want)
	case *ast.TupleExpr:
		return cg.genTupleValue(n, want)
	case *ast.AggExpr:
		addr, ok := cg.addrOfAgg(n)
		if !ok {
			return Value{}, false
		}
		return cg.load(addr), true
	case *ast.CallExpr:
		return cg.genCall(n, want)
	case *ast.BinExpr:
		return cg.genBin(n, want)
	case *ast.LBinExpr:
		return cg.genLBin(n)
	case *ast.UnaryExpr:
		return cg.genUnary(n, want)
	case *ast.IndexExpr:
		addr, ok := cg.addrOfIndex(n)
		if !ok {
			return Value{}, false
		}
		return cg.load(addr), true
	case *ast.AccessExpr:
		addr, ok := cg.addrOfAccess(n)
		if !ok {
			return Value{}, false
		}
		return cg.load(addr), true
	case *ast.CastExpr:
		return cg.genCast(n)
	case *ast.TestExpr:
		return cg.genTest(n)
	case *ast.PropExpr:
		return cg.genProp(n)
	case *ast.EffExpr:
		// Sparse lowering rule (spec.md §9 Open Questions, SPEC_FULL.md §4):
		// treated as a pass-through of the operand's value.
		return cg.genValue(n.X, want)
	case *ast.ExplodeExpr:
		cg.Sink.Errorf(n.R, "'...' explode is only valid in a call argument list")
		return Value{}, false
	case *ast.SelectorExpr:
		cg.Sink.Errorf(n.R, "selector expressions are not yet supported in this lowering")
		return Value{}, false
	case *ast.InferSizeExpr:
		cg.Sink.Errorf(n.R, "'?' is only valid as an array extent")
		return Value{}, false
	case *ast.TypeLitExpr:
		cg.Sink.Errorf(n.R, "a type is not a value")
		return Value{}, false
	default:
		cg.Sink.Errorf(e.Range(), "unsupported expression form")
		return Value{}, false
	}
}

// load reads addr's storage into an SSA value.
func (cg *CG) load(addr Addr) Value {
	t := cg.backendType(addr.T)
	v := cg.Mod.BuildLoad(t, addr.Ptr, cg.name("load"))
	return Value{T: addr.T, V: v}
}

// genConstValue lowers a literal by const-evaluating it and then
// producing its backend constant — literals never need an addressable
// intermediate.
func (cg *CG) genConstValue(e ast.Expr, want *types.CT) (Value, bool) {
	v, ok := cg.eval.EvalValue(e, want)
	if !ok {
		cg.Sink.Errorf(e.Range(), "invalid literal")
		return Value{}, false
	}
	if v.IsUntyped() {
		if want == nil {
			cg.Sink.Errorf(e.Range(), "untyped literal has no inferred type")
			return Value{}, false
		}
		var err error
		v, err = cv.Cast(v, want)
		if err != nil {
			cg.Sink.Fatalf(e.Range(), "%s", err)
			return Value{}, false
		}
	}
	return Value{T: v.T, V: cg.lowerConst(v)}, true
}

func (cg *CG) genVarValue(n *ast.VarExpr, want *types.CT) (Value, bool) {
	if b, ok := cg.Scopes.Lookup(n.Name); ok {
		t := b.T
		if narrowed, ok := cg.Scopes.Narrowed(b); ok {
			t = narrowed
		}
		return cg.load(Addr{T: t, Ptr: b.Addr}), true
	}
	if fn, ok := cg.Fns[n.Name]; ok {
		return Value{T: fn.T, V: fn.Handle}, true
	}
	if g, ok := cg.Globals[n.Name]; ok {
		return cg.load(Addr{T: g.T, Ptr: g.Handle}), true
	}
	cg.Sink.Errorf(n.R, "undeclared entity %q", n.Name)
	return Value{}, false
}

// genTupleValue detuples a single-element tuple to its inner value;
// multi-element tuples materialize storage and load it back as an
// aggregate value (spec.md §4.5.1).
func (cg *CG) genTupleValue(n *ast.TupleExpr, want *types.CT) (Value, bool) {
	if len(n.Elems) == 1 {
		return cg.genValue(n.Elems[0], want)
	}
	addr, ok := cg.addrOfTuple(n, want)
	if !ok {
		return Value{}, false
	}
	return cg.load(addr), true
}
