package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/diag"
)

func parseOK(t *testing.T, src string) *ast.Unit {
	t.Helper()
	sink := diag.NewSink(src)
	u := New(src, "test.bn", sink).ParseUnit()
	require.False(t, sink.HasErrors(), "unexpected parse errors: %v", sink.All())
	return u
}

func TestParseFnWithParamsAndReturn(t *testing.T) {
	u := parseOK(t, `
fn add(a: Sint32, b: Sint32) -> Sint32 {
	return a + b;
}
`)
	require.Len(t, u.Fns, 1)
	fn := u.Fns[0]
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params.Elems, 2)
	require.Equal(t, "a", fn.Params.Elems[0].Name)
	require.Len(t, fn.Rets.Elems, 1)
	require.Len(t, fn.Body.Stmts, 1)
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinExpr)
	require.True(t, ok)
	require.Equal(t, ast.BinAdd, bin.Op)
}

func TestParseFnWithNoReturnTypeDefaultsToEmptyRets(t *testing.T) {
	u := parseOK(t, `
fn sideEffect() {
	return;
}
`)
	require.Len(t, u.Fns, 1)
	require.Empty(t, u.Fns[0].Rets.Elems)
}

func TestParseTypedef(t *testing.T) {
	u := parseOK(t, `type Id = Uint32;`)
	require.Len(t, u.Typedefs, 1)
	require.Equal(t, "Id", u.Typedefs[0].Name)
	ident, ok := u.Typedefs[0].T.(*ast.IdentType)
	require.True(t, ok)
	require.Equal(t, "Uint32", ident.Name)
}

func TestParseUnionTypeAnnotation(t *testing.T) {
	u := parseOK(t, `
fn f(x: String | Sint32) {
	return;
}
`)
	elem := u.Fns[0].Params.Elems[0]
	union, ok := elem.T.(*ast.UnionType)
	require.True(t, ok)
	require.Len(t, union.Variants, 2)
}

func TestParseGlobalLetWithAttrs(t *testing.T) {
	u := parseOK(t, `
@section("data") @align(8)
let g: Sint32 = 5;
`)
	require.Len(t, u.Lets, 1)
	g := u.Lets[0]
	require.Equal(t, "g", g.Name)
	require.Len(t, g.Attrs, 2)
	sectionVal, ok := ast.FindSection(g.Attrs)
	require.True(t, ok)
	require.Equal(t, "data", sectionVal)
	alignVal, ok := ast.FindAlign(g.Attrs)
	require.True(t, ok)
	require.Equal(t, 8, alignVal)
}

func TestParseIfElseChain(t *testing.T) {
	u := parseOK(t, `
fn f(x: Sint32) -> Sint32 {
	if x < 0 {
		return 0;
	} else if x == 0 {
		return 1;
	} else {
		return 2;
	}
}
`)
	ifStmt, ok := u.Fns[0].Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Nil(t, ifStmt.Init)
	elseIf, ok := ifStmt.ElseBranch.(*ast.IfStmt)
	require.True(t, ok, "else-if must itself parse as a nested IfStmt")
	_, ok = elseIf.ElseBranch.(*ast.BlockStmt)
	require.True(t, ok)
}

func TestParseIfWithInitClause(t *testing.T) {
	u := parseOK(t, `
fn f(x: Sint32) -> Sint32 {
	if ready(); x > 0 {
		return 1;
	}
	return 0;
}
`)
	ifStmt, ok := u.Fns[0].Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Init, "a ';' after what looked like the condition reparses it as an init clause")
	_, ok = ifStmt.Init.(*ast.ExprStmt)
	require.True(t, ok)
	cond, ok := ifStmt.Cond.(*ast.BinExpr)
	require.True(t, ok)
	require.Equal(t, ast.BinGt, cond.Op)
}

func TestParseForBareCondWithElse(t *testing.T) {
	u := parseOK(t, `
fn f(i: Sint32) -> Sint32 {
	for i < 10 {
		return 1;
	} else {
		return 2;
	}
	return 0;
}
`)
	forStmt, ok := u.Fns[0].Body.Stmts[0].(*ast.ForStmt)
	require.True(t, ok)
	require.Nil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.ElseBody)
}

func TestParseForThreeClause(t *testing.T) {
	u := parseOK(t, `
fn f() -> Sint32 {
	for i; i < 10; i += 1 {
		return 1;
	}
	return 0;
}
`)
	forStmt, ok := u.Fns[0].Body.Stmts[0].(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Post)
	post, ok := forStmt.Post.(*ast.AssignStmt)
	require.True(t, ok)
	require.Equal(t, ast.AssignAdd, post.Op)
}

func TestParseDeferDefersExpressesBody(t *testing.T) {
	u := parseOK(t, `
fn f() {
	defer { x = 1; }
	return;
}
`)
	defStmt, ok := u.Fns[0].Body.Stmts[0].(*ast.DeferStmt)
	require.True(t, ok)
	block, ok := defStmt.Body.(*ast.BlockStmt)
	require.True(t, ok)
	require.Len(t, block.Stmts, 1)
}

func TestParseUsingStmtWithEffectName(t *testing.T) {
	u := parseOK(t, `
fn f() {
	using io: IO;
	return;
}
`)
	using, ok := u.Fns[0].Body.Stmts[0].(*ast.UsingStmt)
	require.True(t, ok)
	require.Equal(t, "io", using.Name)
	require.Equal(t, "IO", using.EffectName)
}

func TestParseCallExpression(t *testing.T) {
	u := parseOK(t, `
fn f() -> Sint32 {
	return add(1, 2);
}
`)
	ret := u.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	call, ok := ret.Value.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
}

func TestParseOperatorPrecedence(t *testing.T) {
	// `1 + 2 * 3` must parse as `1 + (2 * 3)`, not `(1 + 2) * 3`.
	u := parseOK(t, `
fn f() -> Sint32 {
	return 1 + 2 * 3;
}
`)
	ret := u.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	top, ok := ret.Value.(*ast.BinExpr)
	require.True(t, ok)
	require.Equal(t, ast.BinAdd, top.Op)
	_, lhsIsLit := top.LHS.(*ast.IntExpr)
	require.True(t, lhsIsLit)
	rhs, ok := top.RHS.(*ast.BinExpr)
	require.True(t, ok)
	require.Equal(t, ast.BinMul, rhs.Op)
}

func TestParseAsAndIsChainAsPostfixOperators(t *testing.T) {
	u := parseOK(t, `
fn f(x: Sint32) -> Bool {
	return x as Sint64 is Sint64;
}
`)
	ret := u.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	_, ok := ret.Value.(*ast.TestExpr)
	require.True(t, ok)
}

func TestParseTupleLiteralVsParenthesizedExpr(t *testing.T) {
	u := parseOK(t, `
fn f() -> Sint32 {
	return (1);
}
`)
	ret := u.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	_, ok := ret.Value.(*ast.IntExpr)
	require.True(t, ok, "a single parenthesized expr is not a tuple")
}

func TestParseMultiElementTupleLiteral(t *testing.T) {
	u := parseOK(t, `
fn f() -> (Sint32, Sint32) {
	return (1, 2);
}
`)
	ret := u.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	tup, ok := ret.Value.(*ast.TupleExpr)
	require.True(t, ok)
	require.Len(t, tup.Elems, 2)
}

func TestParseAggregateLiteral(t *testing.T) {
	u := parseOK(t, `
fn f() -> Sint32 {
	let p = Point{x: 1, y: 2};
	return 0;
}
`)
	let, ok := u.Fns[0].Body.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	agg, ok := let.Value.(*ast.AggExpr)
	require.True(t, ok)
	require.Len(t, agg.Fields, 2)
}

func TestParseUnexpectedTopLevelTokenResyncs(t *testing.T) {
	src := `
123;
fn f() -> Sint32 {
	return 0;
}
`
	sink := diag.NewSink(src)
	u := New(src, "test.bn", sink).ParseUnit()
	require.True(t, sink.HasErrors())
	require.Len(t, u.Fns, 1, "the parser must resync at the ';' and still parse the following fn")
}

func TestParseImportWithAlias(t *testing.T) {
	u := parseOK(t, `import "std/io" as io;`)
	require.Len(t, u.Imports, 1)
	require.Equal(t, "std/io", u.Imports[0].Path)
	require.Equal(t, "io", u.Imports[0].Alias)
}

func TestParseEnumType(t *testing.T) {
	u := parseOK(t, `
type Color = enum {
	Red,
	Green,
	Blue = 10,
};
`)
	enumT, ok := u.Typedefs[0].T.(*ast.EnumType)
	require.True(t, ok)
	require.Len(t, enumT.Enumerators, 3)
	require.Equal(t, "Blue", enumT.Enumerators[2].Name)
	require.NotNil(t, enumT.Enumerators[2].Value)
}
