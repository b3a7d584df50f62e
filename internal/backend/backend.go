// Package backend defines bironc's backend interface (spec.md §6.3): the
// opaque module/builder/block/type/value handles and instruction
// constructors internal/codegen lowers every typed expression and
// statement through. Grounded on
// _examples/original_source/src/biron/llvm.h, whose LLVM struct wraps the
// C API as a table of opaque-handle-returning function pointers loaded
// at runtime — reworked here as a plain Go interface so internal/codegen
// depends on a contract, not a concrete LLVM binding, and a recording
// fake (internal/backend/recording) can stand in for tests that exercise
// invariants without linking LLVM.
package backend

import "math/big"

// Type, Value, and Block are opaque handles. Concrete backends define
// their own representations; internal/codegen never inspects them beyond
// passing them back into this interface.
type Type interface{}
type Value interface{}
type Block interface{}

// Linkage mirrors LLVM::Linkage from llvm.h, trimmed to the subset
// bironc's globals and functions actually use.
type Linkage int

const (
	LinkageExternal Linkage = iota
	LinkageInternal
	LinkagePrivate
	LinkageExternalWeak
)

// IntPredicate mirrors LLVM::IntPredicate.
type IntPredicate int

const (
	IntEQ IntPredicate = iota
	IntNE
	IntUGT
	IntUGE
	IntULT
	IntULE
	IntSGT
	IntSGE
	IntSLT
	IntSLE
)

// RealPredicate mirrors LLVM::RealPredicate (ordered comparisons only;
// bironc never produces unordered float comparisons).
type RealPredicate int

const (
	RealOEQ RealPredicate = iota
	RealOGT
	RealOGE
	RealOLT
	RealOLE
	RealONE
)

// CastOp selects which cast opcode build_cast emits (spec.md §6.3: "cast
// (choose opcode)" — the caller picks the opcode, the backend just builds it).
type CastOp int

const (
	CastTrunc CastOp = iota
	CastZExt
	CastSExt
	CastFPTrunc
	CastFPExt
	CastFPToUI
	CastFPToSI
	CastUIToFP
	CastSIToFP
	CastPtrToInt
	CastIntToPtr
	CastBitCast
)

// PhiIncoming is one (value, predecessor) pair of a phi instruction.
type PhiIncoming struct {
	Value Value
	Block Block
}

// Module is one translation unit's backend module: every type, global,
// function, and instruction constructor spec.md §6.3 requires.
type Module interface {
	// Types.
	IntType(bits int) Type
	FloatType(bits int) Type
	PointerType() Type
	VoidType() Type
	ArrayType(elem Type, count uint64) Type
	StructType(fields []Type, packed bool) Type
	NamedStructType(name string) Type
	SetStructBody(named Type, fields []Type, packed bool)
	FnType(args []Type, ret Type, variadic bool) Type

	// Globals and functions.
	AddGlobal(name string, t Type) Value
	AddFunction(name string, t Type) Value
	// Param returns fn's index'th parameter as a Value, for binding an
	// incoming argument to a local at function-entry lowering (spec.md
	// §4.5.3 step 2).
	Param(fn Value, index int) Value
	LookupGlobal(name string) (Value, bool)
	LookupFunction(name string) (Value, bool)
	LookupNamedStruct(name string) (Type, bool)
	SetLinkage(v Value, l Linkage)
	SetAlignment(v Value, align int)
	SetSection(v Value, section string)
	SetInitializer(global, init Value)
	// AppendToUsed appends v to the module's llvm.used compiler-hint
	// array, wiring the `used` attribute spec.md §9 leaves unwired
	// (SPEC_FULL.md §4): a global or function marked `used` must survive
	// the linker's dead-stripping even with no other reference.
	AppendToUsed(v Value)

	// Constants (spec.md §4.6).
	ConstInt(t Type, v *big.Int) Value
	ConstFloat(t Type, v float64) Value
	ConstStruct(t Type, fields []Value) Value
	ConstArray(elemType Type, elems []Value) Value
	ConstZero(t Type) Value

	// Basic blocks and builder positioning.
	AppendBlock(fn Value, name string) Block
	PositionAtEnd(b Block)
	BlockHasTerminator(b Block) bool

	// Instruction builders.
	BuildAlloca(t Type, name string) Value
	BuildLoad(t Type, ptr Value, name string) Value
	BuildStore(val, ptr Value)
	BuildGEP(elemType Type, base Value, indices []Value, name string) Value
	BuildCall(fnType Type, fn Value, args []Value, name string) Value
	BuildRet(v Value)
	BuildRetVoid()
	BuildBr(target Block)
	BuildCondBr(cond Value, then, els Block)
	BuildPhi(t Type, incoming []PhiIncoming, name string) Value
	BuildAdd(lhs, rhs Value, name string) Value
	BuildSub(lhs, rhs Value, name string) Value
	BuildMul(lhs, rhs Value, name string) Value
	BuildSDiv(lhs, rhs Value, name string) Value
	BuildUDiv(lhs, rhs Value, name string) Value
	BuildAnd(lhs, rhs Value, name string) Value
	BuildOr(lhs, rhs Value, name string) Value
	BuildXor(lhs, rhs Value, name string) Value
	BuildShl(lhs, rhs Value, name string) Value
	BuildAShr(lhs, rhs Value, name string) Value
	BuildLShr(lhs, rhs Value, name string) Value
	BuildFAdd(lhs, rhs Value, name string) Value
	BuildFSub(lhs, rhs Value, name string) Value
	BuildFMul(lhs, rhs Value, name string) Value
	BuildFDiv(lhs, rhs Value, name string) Value
	BuildNeg(v Value, name string) Value
	BuildFNeg(v Value, name string) Value
	BuildNot(v Value, name string) Value
	BuildICmp(pred IntPredicate, lhs, rhs Value, name string) Value
	BuildFCmp(pred RealPredicate, lhs, rhs Value, name string) Value
	BuildCast(op CastOp, v Value, t Type, name string) Value
	BuildGlobalString(s string, name string) Value
	BuildExtractValue(agg Value, index int, name string) Value
	BuildInsertValue(agg, elem Value, index int, name string) Value
	BuildMemcpy(dst, src Value, size uint64, align int)

	// Finalization.
	Verify() error
	RunPasses(pipeline string) error
	Dump() string
	EmitObject(path string) error
}
