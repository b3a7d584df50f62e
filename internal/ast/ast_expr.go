package ast

import "math/big"

// ExprKind tags every expression node (spec.md §3.2).
type ExprKind int

const (
	ExprTuple ExprKind = iota
	ExprCall
	ExprTypeLit
	ExprVar
	ExprSelector
	ExprInt
	ExprFlt
	ExprStr
	ExprBool
	ExprAgg
	ExprBin
	ExprLBin
	ExprUnary
	ExprIndex
	ExprExplode
	ExprEff
	ExprAccess
	ExprCast
	ExprTest
	ExprProp
	ExprInferSize
)

// Expr is the tagged-sum interface every expression node implements.
type Expr interface {
	ExprKind() ExprKind
	Range() Range
}

// IntWidth selects an integer literal's representation, including the two
// untyped carrier forms that must be coerced at their use site (spec.md
// §3.3, §4.3).
type IntWidth int

const (
	U8 IntWidth = iota
	U16
	U32
	U64
	S8
	S16
	S32
	S64
	UntypedInt
)

// FltWidth selects a float literal's representation.
type FltWidth int

const (
	F32 FltWidth = iota
	F64
	UntypedReal
)

// BinOp enumerates Bin's operator families (spec.md §4.5.1).
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinBAnd
	BinBOr
	BinShl
	BinShr
	BinMax
	BinMin
)

// LBinOp enumerates the short-circuiting logical operators.
type LBinOp int

const (
	LBinOrOr LBinOp = iota
	LBinAndAnd
)

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryDeref
	UnaryAddr
)

// TupleExpr is `(e1, e2, ...)`. A single-element tuple detuples at
// lowering time (spec.md §4.5.1) but is represented uniformly here.
type TupleExpr struct {
	R     Range
	Elems []Expr
}

func (e *TupleExpr) ExprKind() ExprKind { return ExprTuple }
func (e *TupleExpr) Range() Range       { return e.R }

// CallExpr is `callee(args...)`.
type CallExpr struct {
	R      Range
	Callee Expr
	Args   []Expr
}

func (e *CallExpr) ExprKind() ExprKind { return ExprCall }
func (e *CallExpr) Range() Range       { return e.R }

// TypeLitExpr is a Type used in expression position (e.g. as a call
// argument selecting a generic instantiation, or the operand of `of`).
type TypeLitExpr struct {
	R Range
	T Type
}

func (e *TypeLitExpr) ExprKind() ExprKind { return ExprTypeLit }
func (e *TypeLitExpr) Range() Range       { return e.R }

// VarExpr is a bare identifier reference.
type VarExpr struct {
	R    Range
	Name string
}

func (e *VarExpr) ExprKind() ExprKind { return ExprVar }
func (e *VarExpr) Range() Range       { return e.R }

// SelectorExpr is `module::name`-style qualified reference. Its exact
// semantics are left underspecified by spec.md (§9 Open Questions); the
// code generator reports "not yet supported in this lowering" for it
// rather than inventing behavior.
type SelectorExpr struct {
	R    Range
	X    Expr
	Name string
}

func (e *SelectorExpr) ExprKind() ExprKind { return ExprSelector }
func (e *SelectorExpr) Range() Range       { return e.R }

// IntExpr is an integer literal, typed or untyped per its suffix.
type IntExpr struct {
	R     Range
	Text  string
	Width IntWidth
	Value *big.Int
}

func (e *IntExpr) ExprKind() ExprKind { return ExprInt }
func (e *IntExpr) Range() Range       { return e.R }

// FltExpr is a floating literal, typed or untyped per its suffix.
type FltExpr struct {
	R     Range
	Text  string
	Width FltWidth
	Value float64
}

func (e *FltExpr) ExprKind() ExprKind { return ExprFlt }
func (e *FltExpr) Range() Range       { return e.R }

// StrExpr is a string literal with escapes already resolved by the lexer.
type StrExpr struct {
	R     Range
	Value string
}

func (e *StrExpr) ExprKind() ExprKind { return ExprStr }
func (e *StrExpr) Range() Range       { return e.R }

// BoolExpr is `true`/`false`.
type BoolExpr struct {
	R     Range
	Value bool
}

func (e *BoolExpr) ExprKind() ExprKind { return ExprBool }
func (e *BoolExpr) Range() Range       { return e.R }

// AggField is one `name: value` slot of an Agg literal.
type AggField struct {
	Name  string
	Value Expr
}

// AggExpr is a typed aggregate literal `T{ field: value, ... }`.
type AggExpr struct {
	R      Range
	T      Type
	Fields []AggField
}

func (e *AggExpr) ExprKind() ExprKind { return ExprAgg }
func (e *AggExpr) Range() Range       { return e.R }

// BinExpr is a binary operator application.
type BinExpr struct {
	R        Range
	Op       BinOp
	LHS, RHS Expr
}

func (e *BinExpr) ExprKind() ExprKind { return ExprBin }
func (e *BinExpr) Range() Range       { return e.R }

// LBinExpr is a short-circuiting `||`/`&&` application.
type LBinExpr struct {
	R        Range
	Op       LBinOp
	LHS, RHS Expr
}

func (e *LBinExpr) ExprKind() ExprKind { return ExprLBin }
func (e *LBinExpr) Range() Range       { return e.R }

// UnaryExpr is a unary operator application.
type UnaryExpr struct {
	R  Range
	Op UnaryOp
	X  Expr
}

func (e *UnaryExpr) ExprKind() ExprKind { return ExprUnary }
func (e *UnaryExpr) Range() Range       { return e.R }

// IndexExpr is `x[i]`.
type IndexExpr struct {
	R     Range
	X     Expr
	Index Expr
}

func (e *IndexExpr) ExprKind() ExprKind { return ExprIndex }
func (e *IndexExpr) Range() Range       { return e.R }

// ExplodeExpr is `...x`: expands a tuple into a call's argument list.
type ExplodeExpr struct {
	R Range
	X Expr
}

func (e *ExplodeExpr) ExprKind() ExprKind { return ExprExplode }
func (e *ExplodeExpr) Range() Range       { return e.R }

// EffExpr is `x!`: propagates or unwraps an effectful value. Sparse
// lowering rule per spec.md §9 Open Questions; the code generator
// currently treats it as a pass-through of X's value.
type EffExpr struct {
	R Range
	X Expr
}

func (e *EffExpr) ExprKind() ExprKind { return ExprEff }
func (e *EffExpr) Range() Range       { return e.R }

// AccessExpr is `a.b`: field access, with an implicit single dereference
// when a's type is a pointer (spec.md §4.5.1).
type AccessExpr struct {
	R     Range
	X     Expr
	Field string
}

func (e *AccessExpr) ExprKind() ExprKind { return ExprAccess }
func (e *AccessExpr) Range() Range       { return e.R }

// CastExpr is `x as T`.
type CastExpr struct {
	R Range
	X Expr
	T Type
}

func (e *CastExpr) ExprKind() ExprKind { return ExprCast }
func (e *CastExpr) Range() Range       { return e.R }

// TestExpr is `x is T`.
type TestExpr struct {
	R Range
	X Expr
	T Type
}

func (e *TestExpr) ExprKind() ExprKind { return ExprTest }
func (e *TestExpr) Range() Range       { return e.R }

// PropExpr is `p of T`: property-of-type access (e.g. enum value lookup,
// see SPEC_FULL.md §4).
type PropExpr struct {
	R    Range
	T    Type
	Name string
}

func (e *PropExpr) ExprKind() ExprKind { return ExprProp }
func (e *PropExpr) Range() Range       { return e.R }

// InferSizeExpr is the `?` placeholder used where an array extent should
// be inferred from context. Sparse lowering rule per spec.md §9.
type InferSizeExpr struct {
	R Range
}

func (e *InferSizeExpr) ExprKind() ExprKind { return ExprInferSize }
func (e *InferSizeExpr) Range() Range       { return e.R }

// Constructors. Each allocates its node from the unit's arena.

func NewTupleExpr(a *Arena, r Range, elems []Expr) *TupleExpr {
	n := alloc[TupleExpr](a)
	n.R, n.Elems = r, elems
	return n
}

func NewCallExpr(a *Arena, r Range, callee Expr, args []Expr) *CallExpr {
	n := alloc[CallExpr](a)
	n.R, n.Callee, n.Args = r, callee, args
	return n
}

func NewVarExpr(a *Arena, r Range, name string) *VarExpr {
	n := alloc[VarExpr](a)
	n.R, n.Name = r, name
	return n
}

func NewIntExpr(a *Arena, r Range, text string, width IntWidth, value *big.Int) *IntExpr {
	n := alloc[IntExpr](a)
	n.R, n.Text, n.Width, n.Value = r, text, width, value
	return n
}

func NewFltExpr(a *Arena, r Range, text string, width FltWidth, value float64) *FltExpr {
	n := alloc[FltExpr](a)
	n.R, n.Text, n.Width, n.Value = r, text, width, value
	return n
}

func NewStrExpr(a *Arena, r Range, value string) *StrExpr {
	n := alloc[StrExpr](a)
	n.R, n.Value = r, value
	return n
}

func NewBoolExpr(a *Arena, r Range, value bool) *BoolExpr {
	n := alloc[BoolExpr](a)
	n.R, n.Value = r, value
	return n
}

func NewAggExpr(a *Arena, r Range, t Type, fields []AggField) *AggExpr {
	n := alloc[AggExpr](a)
	n.R, n.T, n.Fields = r, t, fields
	return n
}

func NewBinExpr(a *Arena, r Range, op BinOp, lhs, rhs Expr) *BinExpr {
	n := alloc[BinExpr](a)
	n.R, n.Op, n.LHS, n.RHS = r, op, lhs, rhs
	return n
}

func NewLBinExpr(a *Arena, r Range, op LBinOp, lhs, rhs Expr) *LBinExpr {
	n := alloc[LBinExpr](a)
	n.R, n.Op, n.LHS, n.RHS = r, op, lhs, rhs
	return n
}

func NewUnaryExpr(a *Arena, r Range, op UnaryOp, x Expr) *UnaryExpr {
	n := alloc[UnaryExpr](a)
	n.R, n.Op, n.X = r, op, x
	return n
}

func NewIndexExpr(a *Arena, r Range, x, index Expr) *IndexExpr {
	n := alloc[IndexExpr](a)
	n.R, n.X, n.Index = r, x, index
	return n
}

func NewAccessExpr(a *Arena, r Range, x Expr, field string) *AccessExpr {
	n := alloc[AccessExpr](a)
	n.R, n.X, n.Field = r, x, field
	return n
}

func NewCastExpr(a *Arena, r Range, x Expr, t Type) *CastExpr {
	n := alloc[CastExpr](a)
	n.R, n.X, n.T = r, x, t
	return n
}

func NewTestExpr(a *Arena, r Range, x Expr, t Type) *TestExpr {
	n := alloc[TestExpr](a)
	n.R, n.X, n.T = r, x, t
	return n
}

func NewEffExpr(a *Arena, r Range, x Expr) *EffExpr {
	n := alloc[EffExpr](a)
	n.R, n.X = r, x
	return n
}

func NewExplodeExpr(a *Arena, r Range, x Expr) *ExplodeExpr {
	n := alloc[ExplodeExpr](a)
	n.R, n.X = r, x
	return n
}

func NewInferSizeExpr(a *Arena, r Range) *InferSizeExpr {
	n := alloc[InferSizeExpr](a)
	n.R = r
	return n
}

func NewPropExpr(a *Arena, r Range, t Type, name string) *PropExpr {
	n := alloc[PropExpr](a)
	n.R, n.T, n.Name = r, t, name
	return n
}
