package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/types"
)

// markerStmt is a minimal ast.Stmt used only to tell defers apart by name
// in assertions below.
type markerStmt struct{ name string }

func (m markerStmt) StmtKind() ast.StmtKind { return ast.StmtExpr }
func (m markerStmt) Range() ast.Range       { return ast.Range{} }

func marker(name string) ast.Stmt { return markerStmt{name: name} }

func names(stmts []ast.Stmt) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.(markerStmt).name
	}
	return out
}

func TestBindAndLookupInsideOut(t *testing.T) {
	var s Stack
	s.Push()
	s.BindVar("x", nil, types.New().U32(), nil)
	s.Push()
	s.BindVar("x", nil, types.New().B8(), nil)

	b, ok := s.Lookup("x")
	require.True(t, ok)
	require.True(t, b.T.IsBool(), "inner scope's binding shadows the outer one")

	s.Pop()
	b, ok = s.Lookup("x")
	require.True(t, ok)
	require.True(t, b.T.IsInteger(), "after popping the inner scope, the outer binding is visible again")
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	var s Stack
	s.Push()
	_, ok := s.Lookup("nope")
	require.False(t, ok)
}

func TestPopOnEmptyStackPanics(t *testing.T) {
	var s Stack
	require.Panics(t, func() { s.Pop() })
}

func TestPendingDefersAreReverseInsertionOrder(t *testing.T) {
	var s Stack
	s.Push()
	s.Defer(marker("a"))
	s.Defer(marker("b"))
	s.Defer(marker("c"))
	got := s.Top().PendingDefers()
	require.Equal(t, []string{"c", "b", "a"}, names(got))
}

func TestAllPendingDefersInnermostFirstAcrossScopes(t *testing.T) {
	var s Stack
	s.Push()
	s.Defer(marker("outer1"))
	s.Defer(marker("outer2"))
	s.Push()
	s.Defer(marker("inner1"))
	s.Defer(marker("inner2"))

	got := s.AllPendingDefers()
	require.Equal(t, []string{"inner2", "inner1", "outer2", "outer1"}, names(got))
}

func TestLoopHandlesInheritIntoNestedBlockScope(t *testing.T) {
	var s Stack
	s.Push()
	s.Top().Loop = &LoopHandles{}
	s.Push() // nested block inside the loop body
	_, ok := s.CurrentLoop()
	require.True(t, ok, "a nested block scope must still see the enclosing loop's handles")
}

func TestCurrentLoopFalseOutsideAnyLoop(t *testing.T) {
	var s Stack
	s.Push()
	_, ok := s.CurrentLoop()
	require.False(t, ok)
}

func TestNarrowingSurvivesIntoNestedScope(t *testing.T) {
	c := types.New()
	var s Stack
	s.Push()
	b := s.BindVar("x", nil, c.U32(), nil)
	s.PushNarrowing(b, c.U32())
	s.Push()
	tT, ok := s.Narrowed(b)
	require.True(t, ok)
	require.True(t, tT.Equal(c.U32()))
}

func TestNarrowingKeyedByBindingIdentityNotName(t *testing.T) {
	c := types.New()
	var s Stack
	s.Push()
	b1 := s.BindVar("x", nil, c.U32(), nil)
	s.PushNarrowing(b1, c.U32())
	s.Push()
	b2 := s.BindVar("x", nil, c.B8(), nil) // shadowing binding, no narrowing of its own
	_, ok := s.Narrowed(b2)
	require.False(t, ok, "a different binding under the same name has no narrowing of its own")
	_, ok = s.Narrowed(b1)
	require.True(t, ok, "the original binding's narrowing is unaffected by shadowing")
}

func TestLookupUsingByType(t *testing.T) {
	c := types.New()
	var s Stack
	s.Push()
	s.BindUsing("io", nil, c.U32(), nil)
	b, ok := s.LookupUsingByType(c.U32())
	require.True(t, ok)
	require.Equal(t, "io", b.Name)

	_, ok = s.LookupUsingByType(c.B8())
	require.False(t, ok)
}

func TestDepth(t *testing.T) {
	var s Stack
	require.Equal(t, 0, s.Depth())
	s.Push()
	s.Push()
	require.Equal(t, 2, s.Depth())
	s.Pop()
	require.Equal(t, 1, s.Depth())
}

