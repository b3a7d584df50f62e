package ast

// TypeKind tags every syntactic type node (spec.md §3.2).
type TypeKind int

const (
	TypeTuple TypeKind = iota
	TypeArgs
	TypeUnion
	TypeIdent
	TypeBool
	TypeVarArgs
	TypePtr
	TypeArray
	TypeSlice
	TypeFn
	TypeAtom
	TypeEnum
)

// Type is the tagged-sum interface every syntactic type node implements.
type Type interface {
	TypeKind() TypeKind
	Range() Range
}

// TupleElem is one element of a TupleType or ArgsType: an optional name
// (empty when positional) and its type.
type TupleElem struct {
	Name string
	T    Type
}

// TupleType is `(name?: T, ...)`.
type TupleType struct {
	R     Range
	Elems []TupleElem
}

func (t *TupleType) TypeKind() TypeKind { return TypeTuple }
func (t *TupleType) Range() Range       { return t.R }

// ArgsType is a parameter list: syntactically identical to TupleType but
// tagged separately because it never canonicalizes into a CT on its own —
// it only ever contributes its element types to an enclosing FnType.
type ArgsType struct {
	R     Range
	Elems []TupleElem
}

func (t *ArgsType) TypeKind() TypeKind { return TypeArgs }
func (t *ArgsType) Range() Range       { return t.R }

// UnionType is a sum type `T1 | T2 | ...`.
type UnionType struct {
	R        Range
	Variants []Type
}

func (t *UnionType) TypeKind() TypeKind { return TypeUnion }
func (t *UnionType) Range() Range       { return t.R }

// IdentType is a named type reference, resolved against built-ins,
// typedefs, or enum/effect names.
type IdentType struct {
	R    Range
	Name string
}

func (t *IdentType) TypeKind() TypeKind { return TypeIdent }
func (t *IdentType) Range() Range       { return t.R }

// BoolType is the `Bool` type keyword (bit-width resolved at use site).
type BoolType struct{ R Range }

func (t *BoolType) TypeKind() TypeKind { return TypeBool }
func (t *BoolType) Range() Range       { return t.R }

// VarArgsType is the `...` varargs marker in a parameter list.
type VarArgsType struct{ R Range }

func (t *VarArgsType) TypeKind() TypeKind { return TypeVarArgs }
func (t *VarArgsType) Range() Range       { return t.R }

// PtrType is `*T`.
type PtrType struct {
	R    Range
	Base Type
}

func (t *PtrType) TypeKind() TypeKind { return TypePtr }
func (t *PtrType) Range() Range       { return t.R }

// ArrayType is `[extent]T`; Extent is an expression evaluated at
// const-eval time to a non-negative integer.
type ArrayType struct {
	R      Range
	Base   Type
	Extent Expr
}

func (t *ArrayType) TypeKind() TypeKind { return TypeArray }
func (t *ArrayType) Range() Range       { return t.R }

// SliceType is `[]T`.
type SliceType struct {
	R    Range
	Base Type
}

func (t *SliceType) TypeKind() TypeKind { return TypeSlice }
func (t *SliceType) Range() Range       { return t.R }

// FnType is `fn(Args) Effects -> (Rets)`.
type FnType struct {
	R       Range
	Args    *ArgsType
	Effects []Type
	Rets    *ArgsType
}

func (t *FnType) TypeKind() TypeKind { return TypeFn }
func (t *FnType) Range() Range       { return t.R }

// AtomType wraps an integer or pointer base type as atomic.
type AtomType struct {
	R    Range
	Base Type
}

func (t *AtomType) TypeKind() TypeKind { return TypeAtom }
func (t *AtomType) Range() Range       { return t.R }

// Enumerator is one `Name` or `Name = value` member of an EnumType.
type Enumerator struct {
	Name  string
	Value Expr // nil when implicitly one more than the previous enumerator
}

// EnumType is an enumeration over an implicit or explicit base integer
// type.
type EnumType struct {
	R           Range
	Base        Type // nil selects the default base integer type
	Enumerators []Enumerator
}

func (t *EnumType) TypeKind() TypeKind { return TypeEnum }
func (t *EnumType) Range() Range       { return t.R }

// NewTupleType allocates a TupleType from a.
func NewTupleType(a *Arena, r Range, elems []TupleElem) *TupleType {
	n := alloc[TupleType](a)
	n.R, n.Elems = r, elems
	return n
}

// NewArgsType allocates an ArgsType from a.
func NewArgsType(a *Arena, r Range, elems []TupleElem) *ArgsType {
	n := alloc[ArgsType](a)
	n.R, n.Elems = r, elems
	return n
}

// NewIdentType allocates an IdentType from a.
func NewIdentType(a *Arena, r Range, name string) *IdentType {
	n := alloc[IdentType](a)
	n.R, n.Name = r, name
	return n
}

// NewPtrType allocates a PtrType from a.
func NewPtrType(a *Arena, r Range, base Type) *PtrType {
	n := alloc[PtrType](a)
	n.R, n.Base = r, base
	return n
}

// NewArrayType allocates an ArrayType from a.
func NewArrayType(a *Arena, r Range, base Type, extent Expr) *ArrayType {
	n := alloc[ArrayType](a)
	n.R, n.Base, n.Extent = r, base, extent
	return n
}

// NewSliceType allocates a SliceType from a.
func NewSliceType(a *Arena, r Range, base Type) *SliceType {
	n := alloc[SliceType](a)
	n.R, n.Base = r, base
	return n
}

// NewFnType allocates an FnType from a.
func NewFnType(a *Arena, r Range, args *ArgsType, effects []Type, rets *ArgsType) *FnType {
	n := alloc[FnType](a)
	n.R, n.Args, n.Effects, n.Rets = r, args, effects, rets
	return n
}

// NewUnionType allocates a UnionType from a.
func NewUnionType(a *Arena, r Range, variants []Type) *UnionType {
	n := alloc[UnionType](a)
	n.R, n.Variants = r, variants
	return n
}

// NewBoolType allocates a BoolType from a.
func NewBoolType(a *Arena, r Range) *BoolType {
	n := alloc[BoolType](a)
	n.R = r
	return n
}

// NewVarArgsType allocates a VarArgsType from a.
func NewVarArgsType(a *Arena, r Range) *VarArgsType {
	n := alloc[VarArgsType](a)
	n.R = r
	return n
}

// NewAtomType allocates an AtomType from a.
func NewAtomType(a *Arena, r Range, base Type) *AtomType {
	n := alloc[AtomType](a)
	n.R, n.Base = r, base
	return n
}

// NewEnumType allocates an EnumType from a.
func NewEnumType(a *Arena, r Range, base Type, enumerators []Enumerator) *EnumType {
	n := alloc[EnumType](a)
	n.R, n.Base, n.Enumerators = r, base, enumerators
	return n
}
