package ast

import (
	"reflect"

	"github.com/biron-lang/bironc/internal/arena"
)

// Arena groups one arena.Cache per concrete AST node type, so every node
// kind gets its own pool of node-size slots (spec.md §4.1: "Nodes are
// allocated in pooled caches keyed by node size") while still sharing one
// overall lifetime per translation unit.
type Arena struct {
	caches map[reflect.Type]any
}

// NewArena creates an empty, per-Unit node arena.
func NewArena() *Arena {
	return &Arena{caches: make(map[reflect.Type]any)}
}

// alloc returns a fresh, zero-valued *T from a's cache for T, creating
// that cache on first use.
func alloc[T any](a *Arena) *T {
	var zero T
	key := reflect.TypeOf(zero)
	c, ok := a.caches[key]
	if !ok {
		nc := arena.New[T](64)
		a.caches[key] = nc
		c = nc
	}
	return c.(*arena.Cache[T]).Allocate()
}
