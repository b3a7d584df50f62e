// Package ast defines bironc's typed AST: a tagged sum per category
// (Type, Expr, Stmt, Attr) plus top-level items (Fn, Typedef, Effect,
// Import, Module), exactly as spec.md §3.2 and the Design Notes in §9
// ("virtual dispatch on AST nodes -> tagged sum") call for.
//
// Nodes are allocated from a per-Unit arena.Cache[T], one cache per
// concrete node type, so every node born from a translation unit shares
// that unit's lifetime (spec.md §4.1). Child references are plain Go
// pointers into those caches: Go's GC already gives pointers into a
// pre-sized slab a stable address for the object's lifetime, so a pointer
// *is* the "non-owning handle" spec.md's Design Notes call for — there is
// no separate handle-indirection type.
//
// This generalizes funvibe/funxy's internal/ast package (ast.Node /
// ast.Expression / ast.Statement interfaces dispatched through an
// Accept(Visitor) double-dispatch, see internal/ast/ast_core.go) into a
// Kind-tagged struct per category: lowering (gen_addr/gen_value/gen_type/
// eval_value, spec.md §4.5) is implemented as a type switch in
// internal/codegen rather than as methods on the node or a Visitor
// interface, which is both more idiomatic Go and avoids an import cycle
// between ast and codegen.
package ast

import "github.com/biron-lang/bironc/internal/srcrange"

// Range is re-exported for convenience so callers need not import
// srcrange directly when only touching AST node ranges.
type Range = srcrange.Range

// Unit owns every top-level declaration of one translation unit, in
// source order, plus the arena caches every node in the unit was
// allocated from (spec.md §3.5).
type Unit struct {
	File string

	Fns      []*Fn
	Lets     []*GLetStmt
	Typedefs []*Typedef
	Effects  []*Effect
	Imports  []*Import

	Arena *Arena
}

// NewUnit creates an empty Unit with a fresh node arena.
func NewUnit(file string) *Unit {
	return &Unit{File: file, Arena: NewArena()}
}
