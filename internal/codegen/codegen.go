// Package codegen implements the CG (spec.md §4.5): the component that
// owns a translation unit's backend module handle, its type cache, its
// scope stack, and the stacks of functions/globals/typedefs/effects it
// discovers during the unit's prepass, and that lowers every statement
// and expression to IR through the internal/backend interface.
//
// Structurally grounded on funvibe-funxy's internal/vm.Compiler
// (internal/vm/compiler.go): a single struct owning scope/loop/function
// bookkeeping that walks an AST and emits instructions one node at a
// time. Here the emission target is internal/backend.Module instead of
// a bytecode chunk, and the "instructions" are SSA values instead of
// opcodes, but the owning-struct-plus-method-per-node-kind shape is the
// same.
package codegen

import (
	"fmt"
	"math/big"

	"github.com/biron-lang/bironc/internal/arena"
	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/consteval"
	"github.com/biron-lang/bironc/internal/cv"
	"github.com/biron-lang/bironc/internal/diag"
	"github.com/biron-lang/bironc/internal/srcrange"
	"github.com/biron-lang/bironc/internal/symbols"
	"github.com/biron-lang/bironc/internal/types"
)

// Addr is an L-value: a typed pointer into storage (GLOSSARY "Address").
type Addr struct {
	T    *types.CT
	Ptr  backend.Value
}

// Value is an R-value: a typed SSA operand (GLOSSARY "Value").
type Value struct {
	T  *types.CT
	V  backend.Value
}

// FnInfo is a prepass-registered function: its CT, its backend handle,
// and enough of its syntax to emit the body later (spec.md §4.5 step 1).
type FnInfo struct {
	Name   string
	T      *types.CT // fn CT: args/rets/effects
	Handle backend.Value
	Decl   *ast.Fn
}

// GlobalInfo is a prepass-registered top-level `let` (spec.md §4.5 step 2).
type GlobalInfo struct {
	Name   string
	T      *types.CT
	Handle backend.Value
	Const  cv.Value
}

// CG is the code generator for one translation unit. One CG is created
// per unit and never shared across units (spec.md §5: "no state is
// shared between translation units").
type CG struct {
	Mod     backend.Module
	Types   *types.Cache
	Sink    *diag.Sink
	Scratch *arena.Scratch
	Scopes  symbols.Stack

	Fns      map[string]*FnInfo
	Globals  map[string]*GlobalInfo
	Typedefs map[string]*types.CT
	Effects  map[string]*types.CT

	curFn    *FnInfo
	curBlock backend.Block
	eval     *consteval.Evaluator

	namer int
}

// curFnHandle returns the backend function handle currently being
// emitted into, for helpers (LBin/max-min phi construction) that need to
// append new basic blocks mid-expression.
func (cg *CG) curFnHandle() backend.Value { return cg.curFn.Handle }

// position moves the builder to b and records it as cg.curBlock, so
// later helpers (genLBin, genMaxMin) can read back "the block this value
// was produced in" for phi incoming edges.
func (cg *CG) position(b backend.Block) {
	cg.Mod.PositionAtEnd(b)
	cg.curBlock = b
}

// New creates a CG over an already-created backend module, ready for
// Compile to run its prepass/globals/bodies lifecycle.
func New(mod backend.Module, sink *diag.Sink) *CG {
	cg := &CG{
		Mod:      mod,
		Types:    types.New(),
		Sink:     sink,
		Scratch:  arena.NewScratch(),
		Fns:      make(map[string]*FnInfo),
		Globals:  make(map[string]*GlobalInfo),
		Typedefs: make(map[string]*types.CT),
		Effects:  make(map[string]*types.CT),
	}
	cg.eval = consteval.New(cg.Types, cg, cg)
	return cg
}

// ResolveType implements consteval.TypeResolver.
func (cg *CG) ResolveType(t ast.Type) (*types.CT, error) {
	ct, ok := cg.genType(t)
	if !ok {
		return nil, fmt.Errorf("codegen: could not resolve type")
	}
	return ct, nil
}

// LookupConst implements consteval.ConstLookup: only top-level constants
// are visible to the pure evaluator (spec.md §4.3: "Var resolves only
// against top-level constants ... Locals are not visible").
func (cg *CG) LookupConst(name string) (cv.Value, bool) {
	g, ok := cg.Globals[name]
	if !ok {
		return cv.Value{}, false
	}
	return g.Const, true
}

// name returns a fresh scratch SSA name hint. Backend implementations may
// ignore it (LLVM assigns numeric names automatically when empty), but a
// hint keeps recording-backend dumps readable in tests.
func (cg *CG) name(prefix string) string {
	cg.namer++
	return fmt.Sprintf("%s.%d", prefix, cg.namer)
}

// Compile runs the full per-unit lifecycle: prepass, globals, bodies
// (spec.md §4.5).
func (cg *CG) Compile(u *ast.Unit) {
	cg.prepassTypedefs(u)
	cg.prepassEffects(u)
	cg.prepassFns(u)
	cg.lowerGlobals(u)
	if cg.Sink.IsFatal() {
		return
	}
	for _, fn := range u.Fns {
		cg.emitFn(cg.Fns[fn.Name])
	}
}

// prepassTypedefs resolves every top-level typedef to a CT before any
// other resolution runs. Typedefs are resolved in dependency order from
// topoSortTypedefs; names it reports as cyclic get a "cyclic typedef"
// error, and typedefs caught in or depending on a cycle are left
// unresolved. No placeholder CT is created.
func (cg *CG) prepassTypedefs(u *ast.Unit) {
	order, cyclic := topoSortTypedefs(u.Typedefs)
	for _, name := range cyclic {
		cg.Sink.Errorf(srcrange.Range{}, "cyclic typedef %q", name)
	}
	byName := make(map[string]*ast.Typedef, len(u.Typedefs))
	for _, td := range u.Typedefs {
		byName[td.Name] = td
	}
	for _, name := range order {
		td := byName[name]
		ct, ok := cg.genType(td.T)
		if !ok {
			continue
		}
		cg.Typedefs[td.Name] = ct
	}
}

func (cg *CG) prepassEffects(u *ast.Unit) {
	for _, ef := range u.Effects {
		ct, ok := cg.genType(ef.T)
		if !ok {
			continue
		}
		cg.Effects[ef.Name] = ct
	}
}

// prepassFns creates every top-level function's CT and backend handle
// with external linkage before any body is emitted (spec.md §4.5 step 1:
// "this removes the need for forward declarations in source order").
func (cg *CG) prepassFns(u *ast.Unit) {
	for _, fn := range u.Fns {
		ct, ok := cg.genFnType(fn.Params, fn.Effects, fn.Rets)
		if !ok {
			continue
		}
		handleT := cg.backendFnType(ct)
		handle := cg.Mod.AddFunction(fn.Name, handleT)
		if used, _ := ast.FindUsed(fn.Attrs); used {
			cg.Mod.AppendToUsed(handle)
		}
		info := &FnInfo{Name: fn.Name, T: ct, Handle: handle, Decl: fn}
		cg.Fns[fn.Name] = info
	}
}

// lowerGlobals const-evaluates every top-level `let` in source order,
// infers its CT, and creates a backend global initialized to the folded
// constant (spec.md §4.5 step 2).
func (cg *CG) lowerGlobals(u *ast.Unit) {
	for _, g := range u.Lets {
		cg.lowerGLet(g)
	}
}

func (cg *CG) lowerGLet(g *ast.GLetStmt) {
	var hint *types.CT
	if g.Anno != nil {
		if ct, ok := cg.genType(g.Anno); ok {
			hint = ct
		}
	}
	val, ok := cg.eval.EvalValue(g.Value, hint)
	if !ok {
		// An untyped initializer that evaluates on its own but not under
		// the annotation has overflowed the annotated type.
		if raw, rawOK := cg.eval.EvalValue(g.Value, nil); hint != nil && rawOK && raw.IsUntyped() {
			if _, err := cv.Cast(raw, hint); err != nil {
				cg.Sink.Fatalf(g.R, "%s", err)
				return
			}
		}
		cg.Sink.Errorf(g.R, "global %q initializer is not a compile-time constant", g.Name)
		return
	}
	if val.IsUntyped() {
		if hint == nil {
			cg.Sink.Errorf(g.R, "global %q has no type and its initializer is untyped", g.Name)
			return
		}
		coerced, err := cv.Cast(val, hint)
		if err != nil {
			cg.Sink.Fatalf(g.R, "%s", err)
			return
		}
		val = coerced
	}
	ct := val.T
	if ct == nil {
		ct = hint
	}
	handleT := cg.backendType(ct)
	handle := cg.Mod.AddGlobal(g.Name, handleT)
	cg.Mod.SetInitializer(handle, cg.lowerConst(val))
	cg.Mod.SetLinkage(handle, backend.LinkagePrivate)
	if _, exported := ast.FindExport(g.Attrs); exported {
		cg.Mod.SetLinkage(handle, backend.LinkageExternal)
	}
	if section, ok := ast.FindSection(g.Attrs); ok {
		cg.Mod.SetSection(handle, section)
	}
	if align, ok := ast.FindAlign(g.Attrs); ok {
		cg.Mod.SetAlignment(handle, align)
	} else {
		cg.Mod.SetAlignment(handle, int(ct.Align()))
	}
	if used, _ := ast.FindUsed(g.Attrs); used {
		cg.Mod.AppendToUsed(handle)
	}
	cg.Globals[g.Name] = &GlobalInfo{Name: g.Name, T: ct, Handle: handle, Const: val}
}

// topoSortTypedefs orders typedefs so that every typedef referencing
// another typedef by Ident name is resolved after its dependency. For each
// top-level visit that hits a cycle, cyclic gets the name that visit
// started from (a typedef in the cycle or one that depends on it); the
// other names on that chain are not listed, and none of them appear in
// order. Non-typedef Idents (built-ins,
// forward function/effect names) are not dependencies for this purpose.
func topoSortTypedefs(typedefs []*ast.Typedef) (order []string, cyclic []string) {
	byName := make(map[string]*ast.Typedef, len(typedefs))
	for _, td := range typedefs {
		byName[td.Name] = td
	}
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(typedefs))
	var visit func(name string) bool
	visit = func(name string) bool {
		switch color[name] {
		case black:
			return true
		case gray:
			return false
		}
		color[name] = gray
		td := byName[name]
		ok := true
		if td != nil {
			for _, dep := range identDeps(td.T) {
				if _, isTypedef := byName[dep]; isTypedef {
					if !visit(dep) {
						ok = false
					}
				}
			}
		}
		color[name] = black
		if ok {
			order = append(order, name)
		}
		return ok
	}
	for _, td := range typedefs {
		if color[td.Name] == white {
			if !visit(td.Name) {
				cyclic = append(cyclic, td.Name)
			}
		}
	}
	return order, cyclic
}

// identDeps returns every bare Ident name referenced directly within t
// (one level of traversal is enough: nested typedefs resolve
// transitively through the recursive visit in topoSortTypedefs).
func identDeps(t ast.Type) []string {
	switch t := t.(type) {
	case *ast.IdentType:
		return []string{t.Name}
	case *ast.PtrType:
		return identDeps(t.Base)
	case *ast.SliceType:
		return identDeps(t.Base)
	case *ast.ArrayType:
		return identDeps(t.Base)
	case *ast.AtomType:
		return identDeps(t.Base)
	case *ast.UnionType:
		var out []string
		for _, v := range t.Variants {
			out = append(out, identDeps(v)...)
		}
		return out
	case *ast.TupleType:
		var out []string
		for _, e := range t.Elems {
			out = append(out, identDeps(e.T)...)
		}
		return out
	default:
		return nil
	}
}

// zeroBig returns a fresh zero big.Int for use as an untyped constant's
// scratch value in CT inference paths that don't otherwise need one.
func zeroBig() *big.Int { return big.NewInt(0) }
