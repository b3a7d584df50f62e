// Package consteval implements bironc's pure constant evaluator (spec.md
// §4.3): `eval_value(cg) -> CV?` for every expression, with no IR
// emission and no scope mutation. Grounded on
// _examples/original_source/src/biron/ast_const.{h,cpp} for the constant
// representation and cg_expr.cpp for which expression forms fold to a
// constant; dispatch is a Go type switch over internal/ast's tagged-sum
// Expr rather than a virtual AstConst::codegen override, matching this
// repo's ast package doc on avoiding an ast<->consumer import cycle.
package consteval

import (
	"math/big"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/cv"
	"github.com/biron-lang/bironc/internal/types"
)

// TypeResolver resolves a syntactic ast.Type to its canonical CT. The
// evaluator needs this for `as`/`is` operands and `let` type annotations;
// the real implementation lives in internal/codegen, which owns the
// typedef/effect environment a resolution may need to consult.
type TypeResolver interface {
	ResolveType(t ast.Type) (*types.CT, error)
}

// ConstLookup resolves a bare identifier against top-level constants —
// globals whose initializer itself successfully const-evaluated. Locals
// are never visible to the evaluator (spec.md §4.3).
type ConstLookup interface {
	LookupConst(name string) (cv.Value, bool)
}

// Evaluator is the pure constant-folding engine. It holds no scope state
// of its own; TypeResolver and ConstLookup are supplied by the caller so
// the evaluator itself never mutates anything.
type Evaluator struct {
	Types    *types.Cache
	Resolve  TypeResolver
	Consts   ConstLookup
}

// New creates an Evaluator over the given type cache and collaborators.
func New(tc *types.Cache, resolver TypeResolver, consts ConstLookup) *Evaluator {
	return &Evaluator{Types: tc, Resolve: resolver, Consts: consts}
}

// EvalValue evaluates e to a constant, or returns ok=false if e is not
// const-evaluable (e.g. it reads a local or calls a function). want is a
// hint used to coerce an untyped literal's carrier to a typed CV; it is
// never a hard requirement.
func (ev *Evaluator) EvalValue(e ast.Expr, want *types.CT) (cv.Value, bool) {
	switch n := e.(type) {
	case *ast.IntExpr:
		return ev.evalInt(n, want)
	case *ast.FltExpr:
		return ev.evalFlt(n, want)
	case *ast.StrExpr:
		return cv.String(ev.Types.Str(), n.Value), true
	case *ast.BoolExpr:
		return cv.Bool(ev.Types.B8(), n.Value), true
	case *ast.VarExpr:
		if ev.Consts == nil {
			return cv.Value{}, false
		}
		return ev.Consts.LookupConst(n.Name)
	case *ast.TupleExpr:
		return ev.evalTuple(n, want)
	case *ast.AggExpr:
		return ev.evalAgg(n, want)
	case *ast.UnaryExpr:
		return ev.evalUnary(n, want)
	case *ast.BinExpr:
		return ev.evalBin(n, want)
	case *ast.LBinExpr:
		return ev.evalLBin(n)
	case *ast.CastExpr:
		return ev.evalCast(n)
	case *ast.TestExpr:
		return ev.evalTest(n)
	default:
		return cv.Value{}, false
	}
}

func (ev *Evaluator) evalInt(n *ast.IntExpr, want *types.CT) (cv.Value, bool) {
	if n.Width != ast.UntypedInt {
		return cv.Int(ev.intCT(n.Width), n.Value), true
	}
	if want != nil && want.IsInteger() {
		if !cv.FitsInWidth(n.Value, bitsOf(want), want.IsSigned()) {
			return cv.Value{}, false
		}
		return cv.Int(want, n.Value), true
	}
	if want != nil && want.IsFloat() {
		f, _ := new(big.Float).SetInt(n.Value).Float64()
		return cv.Float(want, f), true
	}
	return cv.UntypedInt(n.Value), true
}

func (ev *Evaluator) evalFlt(n *ast.FltExpr, want *types.CT) (cv.Value, bool) {
	if n.Width != ast.UntypedReal {
		return cv.Float(ev.fltCT(n.Width), n.Value), true
	}
	if want != nil && want.IsFloat() {
		return cv.Float(want, n.Value), true
	}
	return cv.UntypedReal(n.Value), true
}

func (ev *Evaluator) intCT(w ast.IntWidth) *types.CT {
	switch w {
	case ast.U8:
		return ev.Types.U8()
	case ast.U16:
		return ev.Types.U16()
	case ast.U32:
		return ev.Types.U32()
	case ast.U64:
		return ev.Types.U64()
	case ast.S8:
		return ev.Types.S8()
	case ast.S16:
		return ev.Types.S16()
	case ast.S32:
		return ev.Types.S32()
	default:
		return ev.Types.S64()
	}
}

func (ev *Evaluator) fltCT(w ast.FltWidth) *types.CT {
	if w == ast.F32 {
		return ev.Types.F32()
	}
	return ev.Types.F64()
}

func bitsOf(t *types.CT) int {
	switch t.Size() {
	case 1:
		return 8
	case 2:
		return 16
	case 4:
		return 32
	default:
		return 64
	}
}

func (ev *Evaluator) evalTuple(n *ast.TupleExpr, want *types.CT) (cv.Value, bool) {
	// Single-element tuples detuple at lowering time (spec.md §4.5.1); the
	// evaluator mirrors that so a constant `let x = (1);` folds the same
	// way a non-parenthesized literal would.
	if len(n.Elems) == 1 {
		return ev.EvalValue(n.Elems[0], want)
	}
	raw := make([]cv.Value, len(n.Elems))
	elemTypes := make([]*types.CT, len(n.Elems))
	for i, el := range n.Elems {
		var hint *types.CT
		if want != nil && want.IsTuple() && i < len(want.Fields()) {
			hint = want.Fields()[i].T
		}
		v, ok := ev.EvalValue(el, hint)
		if !ok {
			return cv.Value{}, false
		}
		raw[i] = v
		elemTypes[i] = v.T
	}
	t := ev.Types.Tuple(elemTypes, nil, "")
	// Tuple() may have inserted padding fields for alignment (spec.md
	// §4.4); widen raw into elems parallel to t.Fields() so a CV's Elems
	// always lines up 1:1 with its CT's Fields, matching evalAgg below.
	fields := t.Fields()
	elems := make([]cv.Value, len(fields))
	next := 0
	for i, f := range fields {
		if f.T.IsPadding() {
			elems[i] = zeroOf(f.T)
			continue
		}
		elems[i] = raw[next]
		next++
	}
	return cv.Tuple(t, elems), true
}

func (ev *Evaluator) evalAgg(n *ast.AggExpr, _ *types.CT) (cv.Value, bool) {
	if ev.Resolve == nil {
		return cv.Value{}, false
	}
	t, err := ev.Resolve.ResolveType(n.T)
	if err != nil {
		return cv.Value{}, false
	}
	fields := t.Fields()
	elems := make([]cv.Value, len(fields))
	for i, f := range fields {
		elems[i] = zeroOf(f.T)
	}
	for _, af := range n.Fields {
		idx := -1
		for i, f := range fields {
			if f.Name == af.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return cv.Value{}, false
		}
		v, ok := ev.EvalValue(af.Value, fields[idx].T)
		if !ok {
			return cv.Value{}, false
		}
		elems[idx] = v
	}
	return cv.Tuple(t, elems), true
}

func zeroOf(t *types.CT) cv.Value {
	switch {
	case t.IsInteger():
		return cv.Int(t, zeroBig())
	case t.IsBool():
		return cv.Bool(t, false)
	case t.IsFloat():
		return cv.Float(t, 0)
	case t.IsString():
		return cv.String(t, "")
	case t.IsTuple():
		fields := t.Fields()
		elems := make([]cv.Value, len(fields))
		for i, f := range fields {
			elems[i] = zeroOf(f.T)
		}
		return cv.Tuple(t, elems)
	case t.IsArray():
		elems := make([]cv.Value, t.Extent())
		for i := range elems {
			elems[i] = zeroOf(t.Base())
		}
		return cv.Array(t, elems)
	default:
		return cv.None()
	}
}

func (ev *Evaluator) evalUnary(n *ast.UnaryExpr, want *types.CT) (cv.Value, bool) {
	x, ok := ev.EvalValue(n.X, want)
	if !ok {
		return cv.Value{}, false
	}
	switch n.Op {
	case ast.UnaryNeg:
		if x.Kind == cv.KindInt || x.Kind == cv.KindUntypedInt {
			out := x
			out.Int = new(big.Int).Neg(x.Int)
			return out, true
		}
		if x.Kind == cv.KindFloat || x.Kind == cv.KindUntypedReal {
			out := x
			out.Float = -x.Float
			return out, true
		}
		return cv.Value{}, false
	case ast.UnaryNot:
		if x.Kind != cv.KindBool {
			return cv.Value{}, false
		}
		return cv.Bool(x.T, !x.Bool), true
	default:
		// &/* address-taking and dereference have no constant-evaluation
		// meaning: they require an addressable storage location (spec.md
		// §4.5.1's gen_addr mode), which the pure evaluator never produces.
		return cv.Value{}, false
	}
}

func (ev *Evaluator) evalBin(n *ast.BinExpr, want *types.CT) (cv.Value, bool) {
	lhs, ok := ev.EvalValue(n.LHS, want)
	if !ok {
		return cv.Value{}, false
	}
	rhs, ok := ev.EvalValue(n.RHS, lhs.T)
	if !ok {
		return cv.Value{}, false
	}
	if lhs.T == nil && rhs.T != nil {
		lhs, ok = ev.EvalValue(n.LHS, rhs.T)
		if !ok {
			return cv.Value{}, false
		}
	}
	switch n.Op {
	case ast.BinAdd, ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinMax, ast.BinMin, ast.BinBAnd, ast.BinBOr, ast.BinShl, ast.BinShr:
		return ev.evalArith(n.Op, lhs, rhs)
	case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		return ev.evalCompare(n.Op, lhs, rhs)
	default:
		return cv.Value{}, false
	}
}

func (ev *Evaluator) evalArith(op ast.BinOp, lhs, rhs cv.Value) (cv.Value, bool) {
	if isIntKind(lhs.Kind) && isIntKind(rhs.Kind) {
		var out cv.Value
		switch op {
		case ast.BinAdd:
			out = lhs
			out.Int = cv.Add(lhs.Int, rhs.Int)
		case ast.BinSub:
			out = lhs
			out.Int = cv.Sub(lhs.Int, rhs.Int)
		case ast.BinMul:
			out = lhs
			out.Int = cv.Mul(lhs.Int, rhs.Int)
		case ast.BinDiv:
			q, ok := cv.Div(lhs.Int, rhs.Int)
			if !ok {
				return cv.Value{}, false
			}
			out = lhs
			out.Int = q
		case ast.BinBAnd:
			out = lhs
			out.Int = new(big.Int).And(lhs.Int, rhs.Int)
		case ast.BinBOr:
			out = lhs
			out.Int = new(big.Int).Or(lhs.Int, rhs.Int)
		case ast.BinShl:
			out = lhs
			out.Int = new(big.Int).Lsh(lhs.Int, uint(rhs.Int.Uint64()))
		case ast.BinShr:
			// big.Int stores unsigned values non-negative and signed values
			// with an explicit sign, so Rsh's floor-division semantics already
			// pick arithmetic vs logical shift correctly by representation.
			out = lhs
			out.Int = new(big.Int).Rsh(lhs.Int, uint(rhs.Int.Uint64()))
		case ast.BinMax:
			if lhs.Int.Cmp(rhs.Int) >= 0 {
				out = lhs
			} else {
				out = rhs
			}
		case ast.BinMin:
			if lhs.Int.Cmp(rhs.Int) <= 0 {
				out = lhs
			} else {
				out = rhs
			}
		default:
			return cv.Value{}, false
		}
		if out.T != nil && out.Kind == cv.KindInt {
			if !cv.FitsInWidth(out.Int, bitsOf(out.T), out.T.IsSigned()) {
				return cv.Value{}, false
			}
		}
		return out, true
	}
	if isFloatKind(lhs.Kind) && isFloatKind(rhs.Kind) {
		out := lhs
		switch op {
		case ast.BinAdd:
			out.Float = lhs.Float + rhs.Float
		case ast.BinSub:
			out.Float = lhs.Float - rhs.Float
		case ast.BinMul:
			out.Float = lhs.Float * rhs.Float
		case ast.BinDiv:
			out.Float = lhs.Float / rhs.Float
		default:
			return cv.Value{}, false
		}
		return out, true
	}
	return cv.Value{}, false
}

func (ev *Evaluator) evalCompare(op ast.BinOp, lhs, rhs cv.Value) (cv.Value, bool) {
	var less, equal bool
	switch {
	case isIntKind(lhs.Kind) && isIntKind(rhs.Kind):
		c := lhs.Int.Cmp(rhs.Int)
		less, equal = c < 0, c == 0
	case isFloatKind(lhs.Kind) && isFloatKind(rhs.Kind):
		less, equal = lhs.Float < rhs.Float, lhs.Float == rhs.Float
	case lhs.Kind == cv.KindBool && rhs.Kind == cv.KindBool:
		equal = lhs.Bool == rhs.Bool
	case lhs.Kind == cv.KindString && rhs.Kind == cv.KindString:
		equal, less = lhs.Str == rhs.Str, lhs.Str < rhs.Str
	default:
		return cv.Value{}, false
	}
	var r bool
	switch op {
	case ast.BinEq:
		r = equal
	case ast.BinNe:
		r = !equal
	case ast.BinLt:
		r = less
	case ast.BinLe:
		r = less || equal
	case ast.BinGt:
		r = !less && !equal
	case ast.BinGe:
		r = !less
	}
	return cv.Bool(ev.Types.B8(), r), true
}

func (ev *Evaluator) evalLBin(n *ast.LBinExpr) (cv.Value, bool) {
	lhs, ok := ev.EvalValue(n.LHS, ev.Types.B8())
	if !ok || lhs.Kind != cv.KindBool {
		return cv.Value{}, false
	}
	if n.Op == ast.LBinOrOr && lhs.Bool {
		return cv.Bool(ev.Types.B8(), true), true
	}
	if n.Op == ast.LBinAndAnd && !lhs.Bool {
		return cv.Bool(ev.Types.B8(), false), true
	}
	rhs, ok := ev.EvalValue(n.RHS, ev.Types.B8())
	if !ok || rhs.Kind != cv.KindBool {
		return cv.Value{}, false
	}
	return cv.Bool(ev.Types.B8(), rhs.Bool), true
}

func (ev *Evaluator) evalCast(n *ast.CastExpr) (cv.Value, bool) {
	if ev.Resolve == nil {
		return cv.Value{}, false
	}
	dst, err := ev.Resolve.ResolveType(n.T)
	if err != nil {
		return cv.Value{}, false
	}
	x, ok := ev.EvalValue(n.X, dst)
	if !ok {
		return cv.Value{}, false
	}
	out, err := cv.Cast(x, dst)
	if err != nil {
		return cv.Value{}, false
	}
	return out, true
}

func (ev *Evaluator) evalTest(n *ast.TestExpr) (cv.Value, bool) {
	if ev.Resolve == nil {
		return cv.Value{}, false
	}
	dst, err := ev.Resolve.ResolveType(n.T)
	if err != nil {
		return cv.Value{}, false
	}
	x, ok := ev.EvalValue(n.X, nil)
	if !ok {
		return cv.Value{}, false
	}
	return cv.Bool(ev.Types.B8(), x.T != nil && x.T.Equal(dst)), true
}

func isIntKind(k cv.Kind) bool { return k == cv.KindInt || k == cv.KindUntypedInt }
func isFloatKind(k cv.Kind) bool {
	return k == cv.KindFloat || k == cv.KindUntypedReal
}

func zeroBig() *big.Int { return big.NewInt(0) }
