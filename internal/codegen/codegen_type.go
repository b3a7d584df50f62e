package codegen

import (
	"fmt"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/types"
)

// genType resolves a syntactic ast.Type to its canonical CT (spec.md
// §4.4's construction entry points, driven from the syntax side).
// Grounded on original_source/cg_type.cpp's Cg::resolve, which walks the
// parser's AstType tree once per use site rather than caching per-node —
// this repo follows the same "resolve on demand, let types.Cache dedupe"
// shape since the type cache, not this function, owns canonicalization.
func (cg *CG) genType(t ast.Type) (*types.CT, bool) {
	switch n := t.(type) {
	case *ast.IdentType:
		return cg.resolveIdent(n)
	case *ast.BoolType:
		return cg.Types.B8(), true
	case *ast.PtrType:
		base, ok := cg.genType(n.Base)
		if !ok {
			return nil, false
		}
		return cg.Types.Pointer(base), true
	case *ast.SliceType:
		base, ok := cg.genType(n.Base)
		if !ok {
			return nil, false
		}
		return cg.Types.Slice(base), true
	case *ast.ArrayType:
		return cg.genArrayType(n)
	case *ast.AtomType:
		base, ok := cg.genType(n.Base)
		if !ok {
			return nil, false
		}
		if !base.IsInteger() && !base.IsPointer() {
			cg.Sink.Errorf(n.R, "atomic wrapper requires an integer or pointer base, got %s", base)
			return nil, false
		}
		return cg.Types.Atomic(base), true
	case *ast.TupleType:
		return cg.genTupleType(n.Elems, "")
	case *ast.ArgsType:
		return cg.genTupleType(n.Elems, "")
	case *ast.UnionType:
		return cg.genUnionType(n)
	case *ast.FnType:
		return cg.genFnType(n.Args, n.Effects, n.Rets)
	case *ast.EnumType:
		return cg.genEnumType(n)
	case *ast.VarArgsType:
		return cg.Types.Va(), true
	default:
		cg.Sink.Errorf(t.Range(), "unsupported type form")
		return nil, false
	}
}

// resolveIdent resolves a named type reference against built-ins, then
// typedefs, then effects — the order spec.md §4.5's prepass establishes
// those environments in.
func (cg *CG) resolveIdent(n *ast.IdentType) (*types.CT, bool) {
	if ct, ok := builtinByName(cg.Types, n.Name); ok {
		return ct, true
	}
	if ct, ok := cg.Typedefs[n.Name]; ok {
		return ct, true
	}
	if ct, ok := cg.Effects[n.Name]; ok {
		return ct, true
	}
	cg.Sink.Errorf(n.R, "undeclared type %q", n.Name)
	return nil, false
}

func builtinByName(tc *types.Cache, name string) (*types.CT, bool) {
	switch name {
	case "Uint8":
		return tc.U8(), true
	case "Uint16":
		return tc.U16(), true
	case "Uint32":
		return tc.U32(), true
	case "Uint64":
		return tc.U64(), true
	case "Sint8":
		return tc.S8(), true
	case "Sint16":
		return tc.S16(), true
	case "Sint32":
		return tc.S32(), true
	case "Sint64":
		return tc.S64(), true
	case "Bool8":
		return tc.B8(), true
	case "Bool16":
		return tc.B16(), true
	case "Bool32":
		return tc.B32(), true
	case "Bool64":
		return tc.B64(), true
	case "Float32":
		return tc.F32(), true
	case "Float64":
		return tc.F64(), true
	case "String":
		return tc.Str(), true
	case "Ptr":
		return tc.Ptr(), true
	default:
		return nil, false
	}
}

func (cg *CG) genArrayType(n *ast.ArrayType) (*types.CT, bool) {
	base, ok := cg.genType(n.Base)
	if !ok {
		return nil, false
	}
	if _, isInfer := n.Extent.(*ast.InferSizeExpr); isInfer {
		// InferSize ("?") has sparse lowering semantics (spec.md §9 Open
		// Questions); preserved as an explicit diagnostic rather than a
		// guessed inference rule.
		cg.Sink.Errorf(n.Extent.Range(), "array extent inference ('?') is not yet supported in this lowering")
		return nil, false
	}
	v, ok := cg.eval.EvalValue(n.Extent, cg.Types.U64())
	if !ok || v.Int == nil {
		cg.Sink.Errorf(n.Extent.Range(), "array extent must be a compile-time integer constant")
		return nil, false
	}
	extent := v.Int.Uint64()
	return cg.Types.Array(base, extent), true
}

func (cg *CG) genTupleType(elems []ast.TupleElem, name string) (*types.CT, bool) {
	cts := make([]*types.CT, len(elems))
	names := make([]string, len(elems))
	for i, e := range elems {
		ct, ok := cg.genType(e.T)
		if !ok {
			return nil, false
		}
		cts[i] = ct
		names[i] = e.Name
	}
	return cg.Types.Tuple(cts, names, name), true
}

func (cg *CG) genUnionType(n *ast.UnionType) (*types.CT, bool) {
	variants := make([]*types.CT, len(n.Variants))
	for i, v := range n.Variants {
		ct, ok := cg.genType(v)
		if !ok {
			return nil, false
		}
		variants[i] = ct
	}
	return cg.Types.Union(variants, nil, ""), true
}

// genFnType builds a function-signature CT from syntactic args/effects/rets
// (spec.md §4.4's Fn kind; used both by the top-level Fn prepass and by
// FnType in expression/type position).
func (cg *CG) genFnType(args *ast.ArgsType, effects []ast.Type, rets *ast.ArgsType) (*types.CT, bool) {
	var argElems []ast.TupleElem
	if args != nil {
		argElems = args.Elems
	}
	argsCT, ok := cg.genTupleType(argElems, "")
	if !ok {
		return nil, false
	}
	var retElems []ast.TupleElem
	if rets != nil {
		retElems = rets.Elems
	}
	retsCT, ok := cg.genTupleType(retElems, "")
	if !ok {
		return nil, false
	}
	effCTs := make([]*types.CT, len(effects))
	for i, e := range effects {
		ct, ok := cg.genType(e)
		if !ok {
			return nil, false
		}
		effCTs[i] = ct
	}
	return cg.Types.Fn(argsCT, retsCT, effCTs), true
}

func (cg *CG) genEnumType(n *ast.EnumType) (*types.CT, bool) {
	base := cg.Types.S32()
	if n.Base != nil {
		b, ok := cg.genType(n.Base)
		if !ok {
			return nil, false
		}
		base = b
	}
	enums := make([]types.Enumerator, len(n.Enumerators))
	var next int64
	for i, e := range n.Enumerators {
		v := next
		if e.Value != nil {
			cv, ok := cg.eval.EvalValue(e.Value, base)
			if !ok || cv.Int == nil {
				cg.Sink.Errorf(e.Value.Range(), "enumerator %q initializer is not a compile-time integer constant", e.Name)
				return nil, false
			}
			v = cv.Int.Int64()
		}
		enums[i] = types.Enumerator{Name: e.Name, Value: v}
		next = v + 1
	}
	return cg.Types.Enum(base, enums, ""), true
}

// backendType lazily produces (and caches on ct) the backend type handle
// for ct (spec.md §3.4: "every CT lazily produces a backend type handle").
// Named aggregates reuse an existing backend named-struct handle by name
// lookup, so two CTs sharing a source type name still end up pointing at
// one backend handle (spec.md §3.4, §4.4).
func (cg *CG) backendType(ct *types.CT) backend.Type {
	if h := ct.Handle(); h != nil {
		return h.(backend.Type)
	}
	t := cg.buildBackendType(ct)
	ct.SetHandle(t)
	return t
}

func (cg *CG) buildBackendType(ct *types.CT) backend.Type {
	switch {
	case ct.IsInteger(), ct.IsBool():
		return cg.Mod.IntType(int(ct.Size() * 8))
	case ct.IsFloat():
		return cg.Mod.FloatType(int(ct.Size() * 8))
	case ct.IsPointer():
		return cg.Mod.PointerType()
	case ct.IsString():
		return cg.backendStringType()
	case ct.IsSlice():
		return cg.backendSliceType(ct)
	case ct.IsArray():
		return cg.Mod.ArrayType(cg.backendType(ct.Base()), ct.Extent())
	case ct.IsPadding():
		return cg.Mod.ArrayType(cg.Mod.IntType(8), ct.Size())
	case ct.IsAtomic():
		return cg.backendType(ct.Base())
	case ct.IsVA():
		return cg.Mod.PointerType()
	case ct.IsEnum():
		return cg.backendType(ct.Base())
	case ct.IsTuple():
		return cg.backendRecordType(ct)
	case ct.IsUnion():
		return cg.backendUnionType(ct)
	case ct.IsFn():
		return cg.backendFnType(ct)
	default:
		panic(fmt.Sprintf("codegen: unhandled CT kind %v", ct.Kind()))
	}
}

func (cg *CG) backendStringType() backend.Type {
	if st, ok := cg.Mod.LookupNamedStruct("biron.string"); ok {
		return st
	}
	st := cg.Mod.NamedStructType("biron.string")
	cg.Mod.SetStructBody(st, []backend.Type{cg.Mod.PointerType(), cg.Mod.IntType(64)}, false)
	return st
}

func (cg *CG) backendSliceType(ct *types.CT) backend.Type {
	name := fmt.Sprintf("biron.slice.%s", ct.Base())
	if st, ok := cg.Mod.LookupNamedStruct(name); ok {
		return st
	}
	st := cg.Mod.NamedStructType(name)
	cg.Mod.SetStructBody(st, []backend.Type{cg.Mod.PointerType(), cg.Mod.IntType(64)}, false)
	return st
}

// backendRecordType builds (or reuses, by name) the backend named-struct
// handle for a tuple CT, including its padding fields in declaration
// order (spec.md §3.4).
func (cg *CG) backendRecordType(ct *types.CT) backend.Type {
	fields := ct.Fields()
	if ct.TypeName() == "" {
		fieldTypes := make([]backend.Type, len(fields))
		for i, f := range fields {
			fieldTypes[i] = cg.backendType(f.T)
		}
		return cg.Mod.StructType(fieldTypes, false)
	}
	if st, ok := cg.Mod.LookupNamedStruct(ct.TypeName()); ok {
		return st
	}
	st := cg.Mod.NamedStructType(ct.TypeName())
	fieldTypes := make([]backend.Type, len(fields))
	for i, f := range fields {
		fieldTypes[i] = cg.backendType(f.T)
	}
	cg.Mod.SetStructBody(st, fieldTypes, false)
	return st
}

// backendUnionType builds the `[size-of-largest-variant]u8, u8 tag,
// padding` record a union CT lowers to (spec.md §3.4), independent of
// which variant is currently stored.
func (cg *CG) backendUnionType(ct *types.CT) backend.Type {
	name := ct.TypeName()
	if name == "" {
		name = fmt.Sprintf("biron.union.%p", ct)
	}
	if st, ok := cg.Mod.LookupNamedStruct(name); ok {
		return st
	}
	st := cg.Mod.NamedStructType(name)
	tagOffset := cg.unionPayloadBytes(ct)
	fieldTypes := []backend.Type{
		cg.Mod.ArrayType(cg.Mod.IntType(8), tagOffset),
		cg.Mod.IntType(8),
	}
	if pad := ct.Size() - tagOffset - 1; pad > 0 {
		fieldTypes = append(fieldTypes, cg.Mod.ArrayType(cg.Mod.IntType(8), pad))
	}
	cg.Mod.SetStructBody(st, fieldTypes, false)
	return st
}

// unionPayloadBytes returns the size of the largest variant, i.e. the
// width of the payload region before the tag byte.
func (cg *CG) unionPayloadBytes(ct *types.CT) uint64 {
	var max uint64
	for _, f := range ct.Fields() {
		if f.T.Size() > max {
			max = f.T.Size()
		}
	}
	return max
}

// backendFnType builds the backend function-pointer type for a Fn CT:
// flat args (effects are passed as trailing pointer parameters, matching
// original_source/cg_unit.cpp's effect-as-implicit-parameter lowering)
// and a return type collapsed per spec.md §4.5.1's detuple rule.
func (cg *CG) backendFnType(ct *types.CT) backend.Type {
	argFields := ct.Args().Fields()
	var paramTypes []backend.Type
	for _, f := range argFields {
		if f.T.IsPadding() {
			continue
		}
		paramTypes = append(paramTypes, cg.backendType(f.T))
	}
	for range ct.Effects() {
		paramTypes = append(paramTypes, cg.Mod.PointerType())
	}
	retT := cg.backendReturnType(ct.Rets())
	return cg.Mod.FnType(paramTypes, retT, false)
}

// backendReturnType applies the detuple rule to a function's syntactic
// return tuple CT: unit -> void, arity 1 -> the element's backend type,
// else the full aggregate (spec.md §4.5.1, §4.5.3).
func (cg *CG) backendReturnType(rets *types.CT) backend.Type {
	fields := rets.Fields()
	switch len(fields) {
	case 0:
		return cg.Mod.VoidType()
	case 1:
		return cg.backendType(fields[0].T)
	default:
		return cg.backendType(rets)
	}
}
