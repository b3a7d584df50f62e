package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biron-lang/bironc/internal/backend/recording"
	"github.com/biron-lang/bironc/internal/codegen"
	"github.com/biron-lang/bironc/internal/diag"
	"github.com/biron-lang/bironc/internal/parser"
)

// compile parses src and lowers it into a fresh recording module, returning
// the module alongside the diagnostic sink so callers can assert on both.
func compile(t *testing.T, src string) (*recording.Module, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink(src)
	u := parser.New(src, "test.bn", sink).ParseUnit()
	require.False(t, sink.HasErrors(), "parse errors: %v", sink.All())
	mod := recording.New("test")
	cg := codegen.New(mod, sink)
	cg.Compile(u)
	return mod, sink
}

func findFn(mod *recording.Module, name string) *recording.Global {
	for _, g := range mod.Globals {
		if g.Name == name && g.IsFunc {
			return g
		}
	}
	return nil
}

func allInstrs(g *recording.Global) []*recording.Instr {
	var out []*recording.Instr
	for _, b := range g.Blocks {
		out = append(out, b.Instrs...)
	}
	return out
}

func countOps(instrs []*recording.Instr, op string) int {
	n := 0
	for _, in := range instrs {
		if in.Op == op {
			n++
		}
	}
	return n
}

// TestLetUnionCoercionSelectsVariantAndTag is a regression test for
// spec.md §8.4 scenario 5: binding a bare-variant value to a union-typed
// `let` must stack-allocate the union and write both its payload and tag,
// not a bare String-typed slot.
func TestLetUnionCoercionSelectsVariantAndTag(t *testing.T) {
	src := `
fn main() -> Sint32 {
	let x: String | Sint32 = "hi";
	return 0;
}
`
	mod, sink := compile(t, src)
	require.False(t, sink.HasErrors())
	fn := findFn(mod, "main")
	require.NotNil(t, fn)
	instrs := allInstrs(fn)

	require.Equal(t, 1, countOps(instrs, "alloca"), "the union-typed let must allocate exactly one slot")
	require.GreaterOrEqual(t, countOps(instrs, "gep"), 2, "storing a variant touches both the payload and tag fields")

	var tagStoreIdx = -1
	for i, in := range instrs {
		if in.Op != "store" || len(in.Operands) != 2 {
			continue
		}
		val := in.Operands[0]
		if val.IsConst && val.Int != nil && val.Int.Int64() == 0 {
			// Candidate tag store: the String variant is index 0.
			tagStoreIdx = i
		}
	}
	require.NotEqual(t, -1, tagStoreIdx, "expected a tag store selecting variant index 0 (String)")
}

// TestDeferOrdering asserts defers run in reverse-insertion order within a
// scope, and innermost-scope-first across nested scopes, right before the
// terminator, per spec.md §4.5.2 "Block"/"Return".
func TestDeferOrdering(t *testing.T) {
	src := `
let g: Sint32 = 0;

fn main() -> Sint32 {
	defer { g = 1; }
	defer { g = 2; }
	return 0;
}
`
	mod, sink := compile(t, src)
	require.False(t, sink.HasErrors())
	fn := findFn(mod, "main")
	require.NotNil(t, fn)
	instrs := allInstrs(fn)

	var storedInts []int64
	for _, in := range instrs {
		if in.Op != "store" || len(in.Operands) != 2 {
			continue
		}
		v := in.Operands[0]
		if v.IsConst && v.Int != nil {
			storedInts = append(storedInts, v.Int.Int64())
		}
	}
	require.Equal(t, []int64{2, 1}, storedInts, "defers fire in reverse-insertion order")

	last := instrs[len(instrs)-1]
	require.Equal(t, "ret", last.Op, "defers must run before the terminator")
}

// TestDeferInnermostScopeFirst checks that when a return sits inside a
// nested block, that block's own defers run before the enclosing
// function-level defers.
func TestDeferInnermostScopeFirst(t *testing.T) {
	src := `
let g: Sint32 = 0;

fn main() -> Sint32 {
	defer { g = 1; }
	{
		defer { g = 2; }
		return 0;
	}
}
`
	mod, sink := compile(t, src)
	require.False(t, sink.HasErrors())
	fn := findFn(mod, "main")
	require.NotNil(t, fn)
	instrs := allInstrs(fn)

	var storedInts []int64
	for _, in := range instrs {
		if in.Op != "store" || len(in.Operands) != 2 {
			continue
		}
		v := in.Operands[0]
		if v.IsConst && v.Int != nil {
			storedInts = append(storedInts, v.Int.Int64())
		}
	}
	require.Equal(t, []int64{2, 1}, storedInts, "the nested block's defer runs before the function-level one")
}

// TestShortCircuitOrOrBuildsPhi checks the CFG shape genLBin documents for
// `||`: LHS short-circuits via a condbr, otherwise RHS is evaluated, and
// the result merges through a phi.
func TestShortCircuitOrOrBuildsPhi(t *testing.T) {
	src := `
fn main(a: Bool, b: Bool) -> Bool {
	return a || b;
}
`
	mod, sink := compile(t, src)
	require.False(t, sink.HasErrors())
	fn := findFn(mod, "main")
	require.NotNil(t, fn)
	instrs := allInstrs(fn)
	require.Equal(t, 1, countOps(instrs, "phi"))
	require.Equal(t, 1, countOps(instrs, "condbr"))
}

// TestForElseCFGShape checks that a for/else loop lowers to loop/post/else/
// exit blocks, per spec.md §4.5.2 "For".
func TestForElseCFGShape(t *testing.T) {
	src := `
fn main(i: Sint32) -> Sint32 {
	for i < 10 {
		return 1;
	} else {
		return 2;
	}
	return 0;
}
`
	mod, sink := compile(t, src)
	require.False(t, sink.HasErrors())
	fn := findFn(mod, "main")
	require.NotNil(t, fn)
	require.GreaterOrEqual(t, len(fn.Blocks), 5, "expect at least entry/cond/body/else/exit blocks")
}

// TestGlobalAttributeWiring checks that @section/@align/@used/@export on a
// top-level let reach the backend's recorded Global fields.
func TestGlobalAttributeWiring(t *testing.T) {
	src := `
@section("data.init") @align(16) @used @export
let g: Sint32 = 5;
`
	mod, sink := compile(t, src)
	require.False(t, sink.HasErrors())
	var g *recording.Global
	for _, gl := range mod.Globals {
		if gl.Name == "g" {
			g = gl
		}
	}
	require.NotNil(t, g)
	require.Equal(t, "data.init", g.Section)
	require.Equal(t, 16, g.Align)
	require.Len(t, mod.UsedEntries(), 1)
}

// TestCyclicTypedefIsDiagnosedNotInfiniteLooped guards the topo-sort cycle
// check: a self-referential typedef chain must be reported as an error
// rather than hanging or silently resolving to a garbage type.
func TestCyclicTypedefIsDiagnosedNotInfiniteLooped(t *testing.T) {
	src := `
type A = B;
type B = A;

fn main() -> Sint32 {
	return 0;
}
`
	sink := diag.NewSink(src)
	u := parser.New(src, "test.bn", sink).ParseUnit()
	require.False(t, sink.HasErrors(), "parse errors: %v", sink.All())
	mod := recording.New("test")
	cg := codegen.New(mod, sink)
	cg.Compile(u)
	require.True(t, sink.HasErrors(), "a cyclic typedef chain must be diagnosed")
}

// TestUntypedIntOutOfRangeForGlobalIsFatal exercises the const-eval
// overflow rejection path reaching all the way through lowerGLet.
func TestUntypedIntOutOfRangeForGlobalIsFatal(t *testing.T) {
	src := `
let g: Sint8 = 300;
`
	sink := diag.NewSink(src)
	u := parser.New(src, "test.bn", sink).ParseUnit()
	mod := recording.New("test")
	cg := codegen.New(mod, sink)
	cg.Compile(u)
	require.True(t, sink.IsFatal() || sink.HasErrors())
}
