// Package symbols implements the CG scope stack (spec.md §3.5, §4.5):
// the nested frames internal/codegen pushes on block entry and on the
// init-block of if/for, tracking local bindings, usings, pending
// defers, and the current loop's exit handles. Generalizes
// funvibe-funxy's internal/symbols.SymbolTable — an outer-linked stack
// of name tables with a ScopeType tag — from pure name resolution into
// the codegen-time bookkeeping spec.md's Design Notes describe: defer
// lists, loop handles, and `is`-narrowing facts, none of which funxy's
// symbol table needs since it resolves names at analysis time, not
// while emitting IR.
package symbols

import (
	"fmt"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/types"
)

// Binding is one (name -> backend address) entry for a local variable
// or a using. Stmt records the declaring ast.Stmt for diagnostics; it is
// nil for function parameters and effect bindings.
type Binding struct {
	Name string
	Addr backend.Value
	T    *types.CT
	Stmt ast.Stmt
}

// LoopHandles carries the two blocks a break/continue inside the
// current loop must branch to: Post is the loop's increment/condition
// re-check block (continue's target) and Exit is the block after the
// loop, including its else clause (break's target), per spec.md §4.5's
// "post-block + exit-block handles".
type LoopHandles struct {
	Post backend.Block
	Exit backend.Block
}

// Narrowing records one `x is T` fact pushed onto the current scope's
// tests by a Test expression (spec.md §4.5: "is pushes a narrowing onto
// the current scope's tests"). Subject identifies the narrowed variable
// by its binding rather than by name, so narrowings survive shadowing.
type Narrowing struct {
	Subject *Binding
	T       *types.CT
}

// Scope is one CG scope frame (spec.md §3.5: "each frame owns ordered
// vars, usings, pending defers, an optional loop ..., and a per-branch
// list of tests").
type Scope struct {
	Vars   []*Binding
	Usings []*Binding
	Defers []ast.Stmt
	Loop   *LoopHandles
	Tests  []Narrowing
	parent *Scope
}

// Stack is the CG's scope stack, pushed on block entry and on the
// init-block of if/for and popped on exit. The zero Stack is empty;
// callers must Push a frame before binding anything.
type Stack struct {
	top *Scope
}

// Push opens a new frame nested inside the current one. The new frame
// copies the enclosing frame's loop handles so a
// break/continue inside a nested block (but not inside a nested loop)
// still finds its target, matching how a C-style for's body block is
// itself a nested scope.
func (s *Stack) Push() *Scope {
	sc := &Scope{parent: s.top}
	if s.top != nil {
		sc.Loop = s.top.Loop
	}
	s.top = sc
	return sc
}

// Pop discards the innermost frame. Panics if the stack is empty — a
// codegen bug, never a user error.
func (s *Stack) Pop() {
	if s.top == nil {
		panic("symbols: Pop on empty scope stack")
	}
	s.top = s.top.parent
}

// Top returns the innermost scope, or nil if the stack is empty.
func (s *Stack) Top() *Scope { return s.top }

// BindVar records a local variable binding in the current scope (spec.md
// §4.5 Let: "Bind (stmt, name, addr) on the current scope").
func (s *Stack) BindVar(name string, addr backend.Value, t *types.CT, stmt ast.Stmt) *Binding {
	b := &Binding{Name: name, Addr: addr, T: t, Stmt: stmt}
	s.top.Vars = append(s.top.Vars, b)
	return b
}

// BindUsing records a using-effect binding in the current scope (spec.md
// §4.5 Using: "Stack-allocate, initialize, bind on the current scope").
func (s *Stack) BindUsing(name string, addr backend.Value, t *types.CT, stmt ast.Stmt) *Binding {
	b := &Binding{Name: name, Addr: addr, T: t, Stmt: stmt}
	s.top.Usings = append(s.top.Usings, b)
	return b
}

// Defer appends a deferred statement to the current scope's defer list
// without emitting it (spec.md §4.5 Defer).
func (s *Stack) Defer(stmt ast.Stmt) {
	s.top.Defers = append(s.top.Defers, stmt)
}

// PushNarrowing records an `is`-test fact in the current scope.
func (s *Stack) PushNarrowing(subject *Binding, t *types.CT) {
	s.top.Tests = append(s.top.Tests, Narrowing{Subject: subject, T: t})
}

// Lookup searches scopes inside-out across vars and usings (spec.md
// §4.5 Var: "search scopes inside-out across vars and usings"). Usings
// are searched after vars within the same frame since a using binds an
// effect value, which only a `using name.field` access resolves through
// — ordinary Var lookup prefers an exact-name local over shadowing it.
func (s *Stack) Lookup(name string) (*Binding, bool) {
	for sc := s.top; sc != nil; sc = sc.parent {
		for i := len(sc.Vars) - 1; i >= 0; i-- {
			if sc.Vars[i].Name == name {
				return sc.Vars[i], true
			}
		}
		for i := len(sc.Usings) - 1; i >= 0; i-- {
			if sc.Usings[i].Name == name {
				return sc.Usings[i], true
			}
		}
	}
	return nil, false
}

// LookupUsingByType searches scopes inside-out for a using binding whose
// type equals t, the resolution rule an implicit effect argument needs
// when a call site names no using explicitly (spec.md §4.5.1 Call's
// effects-as-implicit-parameters lowering).
func (s *Stack) LookupUsingByType(t *types.CT) (*Binding, bool) {
	for sc := s.top; sc != nil; sc = sc.parent {
		for i := len(sc.Usings) - 1; i >= 0; i-- {
			if sc.Usings[i].T.Equal(t) {
				return sc.Usings[i], true
			}
		}
	}
	return nil, false
}

// Narrowed reports the most specific narrowing recorded for subject
// across the live scope chain, innermost first, or false if subject has
// no narrowing in scope.
func (s *Stack) Narrowed(subject *Binding) (*types.CT, bool) {
	for sc := s.top; sc != nil; sc = sc.parent {
		for i := len(sc.Tests) - 1; i >= 0; i-- {
			if sc.Tests[i].Subject == subject {
				return sc.Tests[i].T, true
			}
		}
	}
	return nil, false
}

// CurrentLoop returns the innermost enclosing loop's handles, or false
// if break/continue would be used outside any loop — a diagnostic
// condition the caller reports (spec.md §4.5's For/Break/Continue).
func (s *Stack) CurrentLoop() (*LoopHandles, bool) {
	if s.top == nil || s.top.Loop == nil {
		return nil, false
	}
	return s.top.Loop, true
}

// PendingDefers returns every deferred statement live at the point of a
// normal fall-through out of the current (innermost) scope only, in
// reverse-insertion order (spec.md invariant 5: "Defers emitted on
// normal fall-through of a block equal, in order, the reverse of that
// block's defer-insertion sequence").
func (s *Scope) PendingDefers() []ast.Stmt {
	out := make([]ast.Stmt, len(s.Defers))
	for i, d := range s.Defers {
		out[len(s.Defers)-1-i] = d
	}
	return out
}

// AllPendingDefers returns every deferred statement live across every
// scope on the stack, innermost-first within each scope and innermost
// scope before outermost scope (spec.md invariant 6: "the concatenation
// of defers emitted equals the reverse of the union of defer-insertion
// orders across all live scopes, innermost-first, outermost-last"),
// exactly the sequence a Return statement must emit before its
// terminator.
func (s *Stack) AllPendingDefers() []ast.Stmt {
	var out []ast.Stmt
	for sc := s.top; sc != nil; sc = sc.parent {
		out = append(out, sc.PendingDefers()...)
	}
	return out
}

// Depth reports how many frames are currently pushed, for diagnostics
// and assertions in tests.
func (s *Stack) Depth() int {
	n := 0
	for sc := s.top; sc != nil; sc = sc.parent {
		n++
	}
	return n
}

func (b *Binding) String() string {
	return fmt.Sprintf("%s: %s", b.Name, b.T)
}
