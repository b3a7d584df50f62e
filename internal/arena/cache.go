// Package arena implements the grouped allocation scheme used for every
// AST and type-cache node in bironc: fixed-size pools of slots, grouped
// into a cache, so that all nodes born from a single translation unit
// share one lifetime and are never individually freed mid-compile.
//
// This is a Go-idiomatic rendition of the pooled bitset-occupied slab
// allocator in _examples/original_source/src/biron/util/pool.h: instead
// of hand-tracking raw byte offsets behind a manual occupancy bitset, a
// Pool here is backed by a single []T slab (Go's GC already keeps slice
// elements at a stable address for the slice's lifetime), with a bitset
// tracking which slots are occupied so Deallocate and iteration keep the
// same semantics as the original.
package arena

const slotsPerWord = 64

// pool is one fixed-capacity slab of T, with a bitset of occupied slots.
type pool[T any] struct {
	slots    []T
	occupied []uint64
	count    int
}

func newPool[T any](capacity int) *pool[T] {
	words := (capacity + slotsPerWord - 1) / slotsPerWord
	return &pool[T]{
		slots:    make([]T, capacity),
		occupied: make([]uint64, words),
	}
}

func (p *pool[T]) test(i int) bool {
	return p.occupied[i/slotsPerWord]&(1<<uint(i%slotsPerWord)) != 0
}

func (p *pool[T]) mark(i int) {
	p.occupied[i/slotsPerWord] |= 1 << uint(i%slotsPerWord)
}

func (p *pool[T]) clear(i int) {
	p.occupied[i/slotsPerWord] &^= 1 << uint(i%slotsPerWord)
}

func (p *pool[T]) allocate() (*T, bool) {
	for i := range p.slots {
		if !p.test(i) {
			p.mark(i)
			p.count++
			var zero T
			p.slots[i] = zero
			return &p.slots[i], true
		}
	}
	return nil, false
}

func (p *pool[T]) owns(ptr *T) (int, bool) {
	for i := range p.slots {
		if &p.slots[i] == ptr {
			return i, true
		}
	}
	return 0, false
}

// Cache is a list of equal-capacity Pools. It is the per-kind allocation
// pool the Unit (AST) and the type cache (CT) build their nodes from: one
// Cache per node size/kind, one long-lived allocator per translation unit.
type Cache[T any] struct {
	pools       []*pool[T]
	objectCount int
	length      int
}

// New creates a Cache whose pools each hold objectCount slots. objectCount
// is the pool granularity, not a hard cap: Allocate grows by adding pools.
func New[T any](objectCount int) *Cache[T] {
	if objectCount <= 0 {
		objectCount = 64
	}
	return &Cache[T]{objectCount: objectCount}
}

// Allocate returns a stably addressed, zero-valued *T. It only fails (nil)
// if objectCount is degenerate; in practice Allocate never fails in Go
// since slab growth is backed by the runtime allocator.
func (c *Cache[T]) Allocate() *T {
	for _, p := range c.pools {
		if ptr, ok := p.allocate(); ok {
			c.length++
			return ptr
		}
	}
	p := newPool[T](c.objectCount)
	c.pools = append(c.pools, p)
	ptr, ok := p.allocate()
	if !ok {
		return nil
	}
	c.length++
	return ptr
}

// Deallocate clears the slot containing ptr. It is a no-op if ptr was not
// allocated from this cache.
func (c *Cache[T]) Deallocate(ptr *T) {
	for _, p := range c.pools {
		if idx, ok := p.owns(ptr); ok && p.test(idx) {
			p.clear(idx)
			p.count--
			c.length--
			return
		}
	}
}

// Len returns the number of currently occupied slots across all pools.
func (c *Cache[T]) Len() int { return c.length }

// All returns every currently occupied slot, in pool-then-index order.
func (c *Cache[T]) All() []*T {
	out := make([]*T, 0, c.length)
	for _, p := range c.pools {
		for i := range p.slots {
			if p.test(i) {
				out = append(out, &p.slots[i])
			}
		}
	}
	return out
}
