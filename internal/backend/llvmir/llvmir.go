// Package llvmir implements internal/backend.Module against
// github.com/llir/llvm, the pure-Go LLVM IR library already in this
// module's dependency graph. Grounded on
// _examples/original_source/src/biron/llvm.cpp, which drives the real
// C API (LLVMContextCreate, LLVMAddFunction, LLVMBuildAlloca, ...) one
// call per backend.Module method; here the same one-call-per-method
// shape wraps llir/llvm's ir.Module/ir.Func/ir.Block/constant builders
// instead of cgo bindings, so bironc never links against LLVM directly.
package llvmir

import (
	"fmt"
	"math/big"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/biron-lang/bironc/internal/backend"
)

// typ adapts an llir/llvm types.Type to backend.Type.
type typ struct{ t irtypes.Type }

func (typ) backendType() {}

// val adapts an llir/llvm value.Value to backend.Value.
type val struct{ v value.Value }

func (val) backendValue() {}

// blk adapts an *ir.Block to backend.Block.
type blk struct{ b *ir.Block }

func (blk) backendBlock() {}

func wrapT(t irtypes.Type) backend.Type { return typ{t} }
func wrapV(v value.Value) backend.Value { return val{v} }
func wrapB(b *ir.Block) backend.Block   { return blk{b} }

func unwrapT(t backend.Type) irtypes.Type { return t.(typ).t }
func unwrapV(v backend.Value) value.Value { return v.(val).v }
func unwrapB(b backend.Block) *ir.Block   { return b.(blk).b }

func unwrapTs(ts []backend.Type) []irtypes.Type {
	out := make([]irtypes.Type, len(ts))
	for i, t := range ts {
		out[i] = unwrapT(t)
	}
	return out
}

func unwrapVs(vs []backend.Value) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = unwrapV(v)
	}
	return out
}

// Module is the real backend.Module, one per translation unit, matching
// one LLVMModuleRef in the original.
type Module struct {
	name    string
	m       *ir.Module
	cur     *ir.Block
	structs map[string]*irtypes.StructType
}

// New creates an empty module named name (spec.md §6.2: one module per
// compiled source file).
func New(name string) *Module {
	return &Module{
		name:    name,
		m:       ir.NewModule(),
		structs: make(map[string]*irtypes.StructType),
	}
}

var _ backend.Module = (*Module)(nil)

func (m *Module) IntType(bits int) backend.Type { return wrapT(irtypes.NewInt(int64(bits))) }
func (m *Module) FloatType(bits int) backend.Type {
	if bits == 32 {
		return wrapT(irtypes.Float)
	}
	return wrapT(irtypes.Double)
}
func (m *Module) PointerType() backend.Type { return wrapT(irtypes.NewPointer(irtypes.I8)) }
func (m *Module) VoidType() backend.Type    { return wrapT(irtypes.Void) }
func (m *Module) ArrayType(elem backend.Type, count uint64) backend.Type {
	return wrapT(irtypes.NewArray(count, unwrapT(elem)))
}
func (m *Module) StructType(fields []backend.Type, packed bool) backend.Type {
	st := irtypes.NewStruct(unwrapTs(fields)...)
	st.Packed = packed
	return wrapT(st)
}
func (m *Module) NamedStructType(name string) backend.Type {
	if st, ok := m.structs[name]; ok {
		return wrapT(st)
	}
	st := m.m.NewTypeDef(name, irtypes.NewStruct())
	m.structs[name] = st
	return wrapT(st)
}
func (m *Module) SetStructBody(named backend.Type, fields []backend.Type, packed bool) {
	st := unwrapT(named).(*irtypes.StructType)
	st.Fields = unwrapTs(fields)
	st.Packed = packed
}
func (m *Module) FnType(args []backend.Type, ret backend.Type, variadic bool) backend.Type {
	ft := irtypes.NewFunc(unwrapT(ret), unwrapTs(args)...)
	ft.Variadic = variadic
	return wrapT(ft)
}

func (m *Module) AddGlobal(name string, t backend.Type) backend.Value {
	g := m.m.NewGlobalDef(name, constant.NewZeroInitializer(unwrapT(t)))
	return wrapV(g)
}

func (m *Module) AddFunction(name string, t backend.Type) backend.Value {
	ft, ok := unwrapT(t).(*irtypes.FuncType)
	if !ok {
		panic(fmt.Sprintf("llvmir: AddFunction %q: not a function type", name))
	}
	params := make([]*ir.Param, len(ft.Params))
	for i, pt := range ft.Params {
		params[i] = ir.NewParam("", pt)
	}
	fn := m.m.NewFunc(name, ft.RetType, params...)
	fn.Sig.Variadic = ft.Variadic
	return wrapV(fn)
}

// Param returns fn's index'th formal parameter.
func (m *Module) Param(fn backend.Value, index int) backend.Value {
	f := unwrapV(fn).(*ir.Func)
	return wrapV(f.Params[index])
}

func (m *Module) LookupGlobal(name string) (backend.Value, bool) {
	for _, g := range m.m.Globals {
		if g.GlobalName == name {
			return wrapV(g), true
		}
	}
	return nil, false
}

func (m *Module) LookupFunction(name string) (backend.Value, bool) {
	for _, f := range m.m.Funcs {
		if f.GlobalName == name {
			return wrapV(f), true
		}
	}
	return nil, false
}

func (m *Module) LookupNamedStruct(name string) (backend.Type, bool) {
	st, ok := m.structs[name]
	if !ok {
		return nil, false
	}
	return wrapT(st), true
}

// llvmLinkage maps backend.Linkage to llir/llvm's enum. Grounded on
// llvm.h's Linkage enum, trimmed to the forms bironc's codegen emits
// (spec.md §4.2: exported symbols are external, everything else private
// to the translation unit).
func llvmLinkage(l backend.Linkage) ir.Linkage {
	switch l {
	case backend.LinkageInternal:
		return ir.LinkageInternal
	case backend.LinkagePrivate:
		return ir.LinkagePrivate
	case backend.LinkageExternalWeak:
		return ir.LinkageExternWeak
	default:
		return ir.LinkageExternal
	}
}

func (m *Module) SetLinkage(v backend.Value, l backend.Linkage) {
	switch g := unwrapV(v).(type) {
	case *ir.Global:
		g.Linkage = llvmLinkage(l)
	case *ir.Func:
		g.Linkage = llvmLinkage(l)
	}
}

func (m *Module) SetAlignment(v backend.Value, align int) {
	if g, ok := unwrapV(v).(*ir.Global); ok {
		g.Align = ir.Align(align)
	}
}

func (m *Module) SetSection(v backend.Value, section string) {
	if g, ok := unwrapV(v).(*ir.Global); ok {
		g.Section = section
	}
}

func (m *Module) SetInitializer(global, init backend.Value) {
	if g, ok := unwrapV(global).(*ir.Global); ok {
		if c, ok := unwrapV(init).(constant.Constant); ok {
			g.Init = c
		}
	}
}

// AppendToUsed appends v to llvm.used, an appending-linkage array global
// the linker treats as a GC root (spec.md §9 "used attribute" wiring).
func (m *Module) AppendToUsed(v backend.Value) {
	const usedName = "llvm.used"
	ptrT := irtypes.NewPointer(irtypes.I8)
	entry := constant.NewBitCast(unwrapV(v).(constant.Constant), ptrT)
	var arr *irtypes.ArrayType
	var elems []constant.Constant
	if g, ok := m.findUsedGlobal(usedName); ok {
		if existing, ok := g.Init.(*constant.Array); ok {
			elems = append(elems, existing.Elems...)
		}
	}
	elems = append(elems, entry)
	arr = irtypes.NewArray(uint64(len(elems)), ptrT)
	init := constant.NewArray(arr, elems...)
	if g, ok := m.findUsedGlobal(usedName); ok {
		g.ContentType = arr
		g.Init = init
		return
	}
	g := m.m.NewGlobalDef(usedName, init)
	g.Section = "llvm.metadata"
	g.Linkage = ir.LinkageAppending
}

func (m *Module) findUsedGlobal(name string) (*ir.Global, bool) {
	for _, g := range m.m.Globals {
		if g.GlobalName == name {
			return g, true
		}
	}
	return nil, false
}

func (m *Module) ConstInt(t backend.Type, v *big.Int) backend.Value {
	it := unwrapT(t).(*irtypes.IntType)
	return wrapV(constant.NewIntFromString(it, v.String()))
}
func (m *Module) ConstFloat(t backend.Type, v float64) backend.Value {
	return wrapV(constant.NewFloat(unwrapT(t).(*irtypes.FloatType), v))
}
func (m *Module) ConstStruct(t backend.Type, fields []backend.Value) backend.Value {
	cs := make([]constant.Constant, len(fields))
	for i, f := range fields {
		cs[i] = unwrapV(f).(constant.Constant)
	}
	return wrapV(constant.NewStruct(unwrapT(t).(*irtypes.StructType), cs...))
}
func (m *Module) ConstArray(elemType backend.Type, elems []backend.Value) backend.Value {
	cs := make([]constant.Constant, len(elems))
	for i, e := range elems {
		cs[i] = unwrapV(e).(constant.Constant)
	}
	return wrapV(constant.NewArray(irtypes.NewArray(uint64(len(cs)), unwrapT(elemType)), cs...))
}
func (m *Module) ConstZero(t backend.Type) backend.Value {
	return wrapV(constant.NewZeroInitializer(unwrapT(t)))
}

func (m *Module) AppendBlock(fn backend.Value, name string) backend.Block {
	f := unwrapV(fn).(*ir.Func)
	b := f.NewBlock(name)
	return wrapB(b)
}

func (m *Module) PositionAtEnd(b backend.Block) { m.cur = unwrapB(b) }

func (m *Module) BlockHasTerminator(b backend.Block) bool {
	return unwrapB(b).Term != nil
}

func (m *Module) BuildAlloca(t backend.Type, name string) backend.Value {
	i := m.cur.NewAlloca(unwrapT(t))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildLoad(t backend.Type, ptr backend.Value, name string) backend.Value {
	i := m.cur.NewLoad(unwrapT(t), unwrapV(ptr))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildStore(val_, ptr backend.Value) {
	m.cur.NewStore(unwrapV(val_), unwrapV(ptr))
}
func (m *Module) BuildGEP(elemType backend.Type, base backend.Value, indices []backend.Value, name string) backend.Value {
	i := m.cur.NewGetElementPtr(unwrapT(elemType), unwrapV(base), unwrapVs(indices)...)
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildCall(fnType backend.Type, fn backend.Value, args []backend.Value, name string) backend.Value {
	i := m.cur.NewCall(unwrapV(fn), unwrapVs(args)...)
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildRet(v backend.Value) { m.cur.NewRet(unwrapV(v)) }
func (m *Module) BuildRetVoid()            { m.cur.NewRet(nil) }
func (m *Module) BuildBr(target backend.Block) {
	m.cur.NewBr(unwrapB(target))
}
func (m *Module) BuildCondBr(cond backend.Value, then, els backend.Block) {
	m.cur.NewCondBr(unwrapV(cond), unwrapB(then), unwrapB(els))
}
func (m *Module) BuildPhi(t backend.Type, incoming []backend.PhiIncoming, name string) backend.Value {
	incs := make([]*ir.Incoming, len(incoming))
	for i, in := range incoming {
		incs[i] = ir.NewIncoming(unwrapV(in.Value), unwrapB(in.Block))
	}
	i := m.cur.NewPhi(incs...)
	i.LocalName = name
	return wrapV(i)
}

func (m *Module) BuildAdd(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewAdd(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildSub(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewSub(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildMul(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewMul(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildSDiv(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewSDiv(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildUDiv(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewUDiv(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildAnd(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewAnd(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildOr(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewOr(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildXor(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewXor(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildShl(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewShl(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildAShr(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewAShr(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildLShr(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewLShr(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildFAdd(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewFAdd(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildFSub(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewFSub(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildFMul(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewFMul(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildFDiv(lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewFDiv(unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildNeg(v backend.Value, name string) backend.Value {
	i := m.cur.NewSub(constant.NewInt(unwrapV(v).Type().(*irtypes.IntType), 0), unwrapV(v))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildFNeg(v backend.Value, name string) backend.Value {
	i := m.cur.NewFNeg(unwrapV(v))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildNot(v backend.Value, name string) backend.Value {
	it := unwrapV(v).Type().(*irtypes.IntType)
	allOnes := constant.NewInt(it, -1)
	i := m.cur.NewXor(unwrapV(v), allOnes)
	i.LocalName = name
	return wrapV(i)
}

// llvmIntPred maps backend.IntPredicate to llir/llvm's IPred, grounded on
// llvm.h's LLVMIntPredicate enum.
func llvmIntPred(p backend.IntPredicate) ir.IPred {
	switch p {
	case backend.IntEQ:
		return ir.IPredEQ
	case backend.IntNE:
		return ir.IPredNE
	case backend.IntUGT:
		return ir.IPredUGT
	case backend.IntUGE:
		return ir.IPredUGE
	case backend.IntULT:
		return ir.IPredULT
	case backend.IntULE:
		return ir.IPredULE
	case backend.IntSGT:
		return ir.IPredSGT
	case backend.IntSGE:
		return ir.IPredSGE
	case backend.IntSLT:
		return ir.IPredSLT
	default:
		return ir.IPredSLE
	}
}

func llvmRealPred(p backend.RealPredicate) ir.FPred {
	switch p {
	case backend.RealOEQ:
		return ir.FPredOEQ
	case backend.RealOGT:
		return ir.FPredOGT
	case backend.RealOGE:
		return ir.FPredOGE
	case backend.RealOLT:
		return ir.FPredOLT
	case backend.RealOLE:
		return ir.FPredOLE
	default:
		return ir.FPredONE
	}
}

func (m *Module) BuildICmp(pred backend.IntPredicate, lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewICmp(llvmIntPred(pred), unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildFCmp(pred backend.RealPredicate, lhs, rhs backend.Value, name string) backend.Value {
	i := m.cur.NewFCmp(llvmRealPred(pred), unwrapV(lhs), unwrapV(rhs))
	i.LocalName = name
	return wrapV(i)
}

func (m *Module) BuildCast(op backend.CastOp, v backend.Value, t backend.Type, name string) backend.Value {
	var i value.Value
	to := unwrapT(t)
	src := unwrapV(v)
	switch op {
	case backend.CastTrunc:
		i = m.cur.NewTrunc(src, to)
	case backend.CastZExt:
		i = m.cur.NewZExt(src, to)
	case backend.CastSExt:
		i = m.cur.NewSExt(src, to)
	case backend.CastFPTrunc:
		i = m.cur.NewFPTrunc(src, to)
	case backend.CastFPExt:
		i = m.cur.NewFPExt(src, to)
	case backend.CastFPToUI:
		i = m.cur.NewFPToUI(src, to)
	case backend.CastFPToSI:
		i = m.cur.NewFPToSI(src, to)
	case backend.CastUIToFP:
		i = m.cur.NewUIToFP(src, to)
	case backend.CastSIToFP:
		i = m.cur.NewSIToFP(src, to)
	case backend.CastPtrToInt:
		i = m.cur.NewPtrToInt(src, to)
	case backend.CastIntToPtr:
		i = m.cur.NewIntToPtr(src, to)
	default:
		i = m.cur.NewBitCast(src, to)
	}
	if named, ok := i.(ir.Instruction); ok {
		if li, ok := named.(interface{ SetName(string) }); ok {
			li.SetName(name)
		}
	}
	return wrapV(i)
}

func (m *Module) BuildGlobalString(s string, name string) backend.Value {
	g := m.m.NewGlobalDef(name, constant.NewCharArrayFromString(s+"\x00"))
	g.Immutable = true
	return wrapV(g)
}

func (m *Module) BuildExtractValue(agg backend.Value, index int, name string) backend.Value {
	i := m.cur.NewExtractValue(unwrapV(agg), uint64(index))
	i.LocalName = name
	return wrapV(i)
}
func (m *Module) BuildInsertValue(agg, elem backend.Value, index int, name string) backend.Value {
	i := m.cur.NewInsertValue(unwrapV(agg), unwrapV(elem), uint64(index))
	i.LocalName = name
	return wrapV(i)
}

// BuildMemcpy emits a call to the llvm.memcpy intrinsic, declaring it
// lazily the first time it is needed (spec.md §4.6: aggregate-literal and
// struct-copy lowering both rely on a raw byte copy rather than a
// field-by-field store chain).
func (m *Module) BuildMemcpy(dst, src backend.Value, size uint64, align int) {
	name := "llvm.memcpy.p0.p0.i64"
	fn, ok := m.LookupFunction(name)
	if !ok {
		ft := m.FnType([]backend.Type{
			m.PointerType(), m.PointerType(), m.IntType(64), m.IntType(1),
		}, m.VoidType(), false)
		fn = m.AddFunction(name, ft)
	}
	sizeC := constant.NewInt(irtypes.I64, int64(size))
	falseC := constant.NewInt(irtypes.I1, 0)
	m.cur.NewCall(unwrapV(fn), unwrapV(dst), unwrapV(src), sizeC, falseC)
}

// Verify reports structural errors in the module. llir/llvm does not
// expose LLVM's own verifier, so this is a best-effort structural check
// (grounded on LLVMVerifyModule's "no missing terminators" invariant);
// a real toolchain installation may still reject IR this accepts.
func (m *Module) Verify() error {
	for _, f := range m.m.Funcs {
		for _, b := range f.Blocks {
			if b.Term == nil {
				return fmt.Errorf("llvmir: block %q in function %q has no terminator", b.LocalName, f.GlobalName)
			}
		}
	}
	return nil
}

// RunPasses is a no-op: llir/llvm has no built-in pass manager, so the
// -O1/-O2/-O3 pipeline string is accepted and ignored. Nothing else in
// bironc runs an optimizer over the module.
func (m *Module) RunPasses(pipeline string) error { return nil }

func (m *Module) Dump() string { return m.m.String() }

// EmitObject writes the module's textual LLVM IR to path. llir/llvm does
// not implement a native object-file emitter, so the file holds IR text
// even when path ends in .o; internal/pipeline runs no `llc` over it, and
// cmd/bironc passes the file to `cc` as is.
func (m *Module) EmitObject(path string) error {
	return os.WriteFile(path, []byte(m.m.String()), 0o644)
}
