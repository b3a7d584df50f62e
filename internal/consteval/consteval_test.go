package consteval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/cv"
	"github.com/biron-lang/bironc/internal/types"
)

var zeroRange ast.Range

func newEvaluator() (*Evaluator, *types.Cache, *ast.Arena) {
	tc := types.New()
	return New(tc, nil, nil), tc, ast.NewArena()
}

func TestEvalIntLiteralTyped(t *testing.T) {
	ev, _, a := newEvaluator()
	n := ast.NewIntExpr(a, zeroRange, "42", ast.S32, big.NewInt(42))
	v, ok := ev.EvalValue(n, nil)
	require.True(t, ok)
	require.Equal(t, cv.KindInt, v.Kind)
	require.Equal(t, int64(42), v.Int.Int64())
}

func TestEvalUntypedIntCoercesToWantedWidth(t *testing.T) {
	ev, tc, a := newEvaluator()
	n := ast.NewIntExpr(a, zeroRange, "7", ast.UntypedInt, big.NewInt(7))
	v, ok := ev.EvalValue(n, tc.U8())
	require.True(t, ok)
	require.True(t, v.T.Equal(tc.U8()))
}

func TestEvalUntypedIntOutOfRangeFailsRatherThanTruncating(t *testing.T) {
	ev, tc, a := newEvaluator()
	n := ast.NewIntExpr(a, zeroRange, "300", ast.UntypedInt, big.NewInt(300))
	_, ok := ev.EvalValue(n, tc.U8())
	require.False(t, ok)
}

func TestEvalUntypedIntWithNoWantStaysUntyped(t *testing.T) {
	ev, _, a := newEvaluator()
	n := ast.NewIntExpr(a, zeroRange, "7", ast.UntypedInt, big.NewInt(7))
	v, ok := ev.EvalValue(n, nil)
	require.True(t, ok)
	require.Equal(t, cv.KindUntypedInt, v.Kind)
}

func TestEvalArithmeticAddition(t *testing.T) {
	ev, tc, a := newEvaluator()
	lhs := ast.NewIntExpr(a, zeroRange, "2", ast.UntypedInt, big.NewInt(2))
	rhs := ast.NewIntExpr(a, zeroRange, "3", ast.UntypedInt, big.NewInt(3))
	bin := ast.NewBinExpr(a, zeroRange, ast.BinAdd, lhs, rhs)
	v, ok := ev.EvalValue(bin, tc.U32())
	require.True(t, ok)
	require.Equal(t, int64(5), v.Int.Int64())
}

func TestEvalArithmeticOverflowFails(t *testing.T) {
	ev, tc, a := newEvaluator()
	lhs := ast.NewIntExpr(a, zeroRange, "200", ast.UntypedInt, big.NewInt(200))
	rhs := ast.NewIntExpr(a, zeroRange, "100", ast.UntypedInt, big.NewInt(100))
	bin := ast.NewBinExpr(a, zeroRange, ast.BinAdd, lhs, rhs)
	_, ok := ev.EvalValue(bin, tc.U8())
	require.False(t, ok, "200+100=300 does not fit in u8")
}

func TestEvalDivisionByZeroFails(t *testing.T) {
	ev, tc, a := newEvaluator()
	lhs := ast.NewIntExpr(a, zeroRange, "1", ast.UntypedInt, big.NewInt(1))
	rhs := ast.NewIntExpr(a, zeroRange, "0", ast.UntypedInt, big.NewInt(0))
	bin := ast.NewBinExpr(a, zeroRange, ast.BinDiv, lhs, rhs)
	_, ok := ev.EvalValue(bin, tc.U32())
	require.False(t, ok)
}

func TestEvalComparison(t *testing.T) {
	ev, _, a := newEvaluator()
	lhs := ast.NewIntExpr(a, zeroRange, "2", ast.UntypedInt, big.NewInt(2))
	rhs := ast.NewIntExpr(a, zeroRange, "3", ast.UntypedInt, big.NewInt(3))
	bin := ast.NewBinExpr(a, zeroRange, ast.BinLt, lhs, rhs)
	v, ok := ev.EvalValue(bin, nil)
	require.True(t, ok)
	require.Equal(t, cv.KindBool, v.Kind)
	require.True(t, v.Bool)
}

func TestEvalShortCircuitOrOrSkipsRHS(t *testing.T) {
	ev, _, a := newEvaluator()
	lhs := ast.NewBoolExpr(a, zeroRange, true)
	// RHS references an undeclared identifier, which would fail to
	// evaluate if it were ever visited.
	rhs := ast.NewVarExpr(a, zeroRange, "undeclared")
	n := ast.NewLBinExpr(a, zeroRange, ast.LBinOrOr, lhs, rhs)
	v, ok := ev.EvalValue(n, nil)
	require.True(t, ok, "true || x must short-circuit without evaluating x")
	require.True(t, v.Bool)
}

func TestEvalShortCircuitAndAndSkipsRHS(t *testing.T) {
	ev, _, a := newEvaluator()
	lhs := ast.NewBoolExpr(a, zeroRange, false)
	rhs := ast.NewVarExpr(a, zeroRange, "undeclared")
	n := ast.NewLBinExpr(a, zeroRange, ast.LBinAndAnd, lhs, rhs)
	v, ok := ev.EvalValue(n, nil)
	require.True(t, ok, "false && x must short-circuit without evaluating x")
	require.False(t, v.Bool)
}

func TestEvalAndAndEvaluatesRHSWhenLHSTrue(t *testing.T) {
	ev, _, a := newEvaluator()
	lhs := ast.NewBoolExpr(a, zeroRange, true)
	rhs := ast.NewBoolExpr(a, zeroRange, false)
	n := ast.NewLBinExpr(a, zeroRange, ast.LBinAndAnd, lhs, rhs)
	v, ok := ev.EvalValue(n, nil)
	require.True(t, ok)
	require.False(t, v.Bool)
}

func TestEvalTupleDetuplesSingleElement(t *testing.T) {
	ev, _, a := newEvaluator()
	inner := ast.NewIntExpr(a, zeroRange, "5", ast.UntypedInt, big.NewInt(5))
	tup := ast.NewTupleExpr(a, zeroRange, []ast.Expr{inner})
	v, ok := ev.EvalValue(tup, nil)
	require.True(t, ok)
	require.Equal(t, cv.KindUntypedInt, v.Kind, "single-element tuple must detuple to its element")
}

func TestEvalMultiElementTupleInsertsPaddingFields(t *testing.T) {
	ev, tc, a := newEvaluator()
	e1 := ast.NewIntExpr(a, zeroRange, "1", ast.U8, big.NewInt(1))
	e2 := ast.NewIntExpr(a, zeroRange, "2", ast.U32, big.NewInt(2))
	tup := ast.NewTupleExpr(a, zeroRange, []ast.Expr{e1, e2})
	v, ok := ev.EvalValue(tup, nil)
	require.True(t, ok)
	require.Equal(t, cv.KindTuple, v.Kind)
	require.True(t, v.T.Equal(tc.Tuple([]*types.CT{tc.U8(), tc.U32()}, nil, "")))
	require.Len(t, v.Elems, len(v.T.Fields()), "CV.Elems must line up 1:1 with CT.Fields, including padding")
}

func TestEvalVarExprRequiresConstLookup(t *testing.T) {
	ev, _, a := newEvaluator()
	n := ast.NewVarExpr(a, zeroRange, "x")
	_, ok := ev.EvalValue(n, nil)
	require.False(t, ok, "no ConstLookup collaborator was supplied")
}

type constMap map[string]cv.Value

func (m constMap) LookupConst(name string) (cv.Value, bool) {
	v, ok := m[name]
	return v, ok
}

func TestEvalVarExprResolvesThroughConstLookup(t *testing.T) {
	tc := types.New()
	consts := constMap{"X": cv.Int(tc.U32(), big.NewInt(9))}
	ev := New(tc, nil, consts)
	a := ast.NewArena()
	n := ast.NewVarExpr(a, zeroRange, "X")
	v, ok := ev.EvalValue(n, nil)
	require.True(t, ok)
	require.Equal(t, int64(9), v.Int.Int64())
}

func TestEvalUnaryNegation(t *testing.T) {
	ev, _, a := newEvaluator()
	inner := ast.NewIntExpr(a, zeroRange, "5", ast.S32, big.NewInt(5))
	n := ast.NewUnaryExpr(a, zeroRange, ast.UnaryNeg, inner)
	v, ok := ev.EvalValue(n, nil)
	require.True(t, ok)
	require.Equal(t, int64(-5), v.Int.Int64())
}

func TestEvalUnaryNotRequiresBool(t *testing.T) {
	ev, _, a := newEvaluator()
	inner := ast.NewIntExpr(a, zeroRange, "5", ast.S32, big.NewInt(5))
	n := ast.NewUnaryExpr(a, zeroRange, ast.UnaryNot, inner)
	_, ok := ev.EvalValue(n, nil)
	require.False(t, ok)
}

func TestEvalAddressOfIsNeverConstEvaluable(t *testing.T) {
	ev, _, a := newEvaluator()
	inner := ast.NewVarExpr(a, zeroRange, "x")
	n := ast.NewUnaryExpr(a, zeroRange, ast.UnaryAddr, inner)
	_, ok := ev.EvalValue(n, nil)
	require.False(t, ok)
}
