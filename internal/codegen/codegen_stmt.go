package codegen

import (
	"fmt"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/symbols"
	"github.com/biron-lang/bironc/internal/types"
)

// emitFn lowers one function body (spec.md §4.5.3): entry block, parameter
// binding, body, and an implicit return if control falls off the end.
func (cg *CG) emitFn(info *FnInfo) {
	if info == nil || info.Decl.Body == nil {
		return // C-ABI declaration: no body to emit.
	}
	cg.curFn = info
	entry := cg.Mod.AppendBlock(info.Handle, "entry")
	cg.position(entry)
	cg.Scopes.Push()

	paramFields := info.T.Args().Fields()
	paramElems := info.Decl.Params
	var elems []ast.TupleElem
	if paramElems != nil {
		elems = paramElems.Elems
	}
	pi := 0       // index into elems (syntactic parameter list, no padding)
	backendIdx := 0 // index into the backend function's flattened parameter list
	for _, f := range paramFields {
		if f.T.IsPadding() {
			continue
		}
		name := ""
		if pi < len(elems) {
			name = elems[pi].Name
		}
		pi++
		incoming := cg.Mod.Param(info.Handle, backendIdx)
		backendIdx++
		if name == "" {
			continue
		}
		paramT := cg.backendType(f.T)
		slot := cg.Mod.BuildAlloca(paramT, cg.name(name))
		cg.Mod.BuildStore(incoming, slot)
		cg.Scopes.BindVar(name, slot, f.T, nil)
	}
	// Effects flow in as trailing pointer parameters (backendFnType) and
	// are bound as usings so resolveEffectArg can thread them into any
	// nested call this body makes that requires the same effect.
	for i, eff := range info.T.Effects() {
		incoming := cg.Mod.Param(info.Handle, backendIdx)
		backendIdx++
		cg.Scopes.BindUsing(cg.name(fmt.Sprintf("effect%d", i)), incoming, eff, nil)
	}

	cg.lowerBlock(info.Decl.Body)

	if !cg.Mod.BlockHasTerminator(cg.curBlock) {
		cg.emitImplicitReturn()
	}
	cg.Scopes.Pop()
	cg.curFn = nil
}

// emitImplicitReturn emits the control-falls-off-the-end return spec.md
// §4.5.3 step 4 requires: void for a unit return type, a zero of the
// element for arity 1, a zeroed aggregate otherwise.
func (cg *CG) emitImplicitReturn() {
	for _, d := range cg.Scopes.AllPendingDefers() {
		cg.lowerStmt(d)
	}
	rets := cg.curFn.T.Rets()
	fields := rets.Fields()
	switch len(fields) {
	case 0:
		cg.Mod.BuildRetVoid()
	case 1:
		cg.Mod.BuildRet(cg.Mod.ConstZero(cg.backendType(fields[0].T)))
	default:
		cg.Mod.BuildRet(cg.Mod.ConstZero(cg.backendType(rets)))
	}
}

// lowerBlock lowers a BlockStmt in its own scope, emitting deferred
// statements in reverse-insertion order on normal fall-through (spec.md
// §4.5.2 "Block").
func (cg *CG) lowerBlock(b *ast.BlockStmt) {
	cg.Scopes.Push()
	for _, s := range b.Stmts {
		if cg.Mod.BlockHasTerminator(cg.curBlock) {
			break
		}
		cg.lowerStmt(s)
	}
	if !cg.Mod.BlockHasTerminator(cg.curBlock) {
		for _, d := range cg.Scopes.Top().PendingDefers() {
			cg.lowerStmt(d)
		}
	}
	cg.Scopes.Pop()
}

func (cg *CG) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		cg.lowerBlock(n)
	case *ast.ReturnStmt:
		cg.lowerReturn(n)
	case *ast.DeferStmt:
		cg.Scopes.Defer(n.Body)
	case *ast.BreakStmt:
		cg.lowerBreak(n)
	case *ast.ContinueStmt:
		cg.lowerContinue(n)
	case *ast.IfStmt:
		cg.lowerIf(n)
	case *ast.ForStmt:
		cg.lowerFor(n)
	case *ast.LetStmt:
		cg.lowerLet(n)
	case *ast.GLetStmt:
		cg.lowerGLet(n)
	case *ast.UsingStmt:
		cg.lowerUsing(n)
	case *ast.ExprStmt:
		cg.genValue(n.X, nil)
	case *ast.AssignStmt:
		cg.lowerAssign(n)
	default:
		cg.Sink.Errorf(s.Range(), "unsupported statement form")
	}
}

// lowerReturn wraps the return value in a union if the formal return type
// is a union and the produced value is a bare variant, detuples arity-1
// returns, and emits every pending defer innermost-first before the
// terminator (spec.md §4.5.2 "Return").
func (cg *CG) lowerReturn(n *ast.ReturnStmt) {
	rets := cg.curFn.T.Rets()
	fields := rets.Fields()
	var retVal backend.Value
	var haveVal bool
	if n.Value != nil {
		var want *types.CT
		if len(fields) == 1 {
			want = fields[0].T
		} else if len(fields) > 1 {
			want = rets
		}
		v, ok := cg.genValue(n.Value, want)
		if !ok {
			return
		}
		if want != nil && want.IsUnion() && !v.T.IsUnion() {
			addr := cg.spillUnion(want, v)
			v = cg.load(addr)
		}
		retVal = v.V
		haveVal = true
	}
	for _, d := range cg.Scopes.AllPendingDefers() {
		cg.lowerStmt(d)
	}
	switch {
	case len(fields) == 0:
		cg.Mod.BuildRetVoid()
	case haveVal:
		cg.Mod.BuildRet(retVal)
	default:
		cg.Sink.Errorf(n.R, "missing return value for a non-unit return type")
		cg.Mod.BuildRet(cg.Mod.ConstZero(cg.backendReturnType(rets)))
	}
}

// spillUnion stack-allocates a union of type unionT, stores v under its
// matching variant, and returns the union's address (spec.md §4.5.2
// Return: "stack-allocate a union, store the value, and return the
// loaded union").
func (cg *CG) spillUnion(unionT *types.CT, v Value) Addr {
	ut := cg.backendType(unionT)
	ptr := cg.Mod.BuildAlloca(ut, cg.name("union"))
	addr := Addr{T: unionT, Ptr: ptr}
	cg.storeUnionVariant(addr, v.T, v.V)
	return addr
}

func (cg *CG) lowerBreak(n *ast.BreakStmt) {
	loop, ok := cg.Scopes.CurrentLoop()
	if !ok {
		cg.Sink.Errorf(n.R, "cannot 'break' from outside a loop")
		return
	}
	cg.Mod.BuildBr(loop.Exit)
}

func (cg *CG) lowerContinue(n *ast.ContinueStmt) {
	loop, ok := cg.Scopes.CurrentLoop()
	if !ok {
		cg.Sink.Errorf(n.R, "cannot 'continue' from outside a loop")
		return
	}
	cg.Mod.BuildBr(loop.Post)
}

// lowerIf lowers an optional scoped init, the condition, then/else
// branches, and a join block (spec.md §4.5.2 "If").
func (cg *CG) lowerIf(n *ast.IfStmt) {
	cg.Scopes.Push()
	if n.Init != nil {
		cg.lowerStmt(n.Init)
	}
	cond, ok := cg.genValue(n.Cond, cg.Types.B8())
	if !ok {
		cg.Scopes.Pop()
		return
	}
	fn := cg.curFnHandle()
	thenB := cg.Mod.AppendBlock(fn, cg.name("if.then"))
	var elseB backend.Block
	if n.ElseBranch != nil {
		elseB = cg.Mod.AppendBlock(fn, cg.name("if.else"))
	}
	joinB := cg.Mod.AppendBlock(fn, cg.name("if.join"))
	elseTarget := joinB
	if n.ElseBranch != nil {
		elseTarget = elseB
	}
	cg.Mod.BuildCondBr(cond.V, thenB, elseTarget)

	cg.position(thenB)
	cg.lowerBlock(n.Then)
	if !cg.Mod.BlockHasTerminator(cg.curBlock) {
		cg.Mod.BuildBr(joinB)
	}

	if n.ElseBranch != nil {
		// Clear this scope's narrowings before lowering else (spec.md
		// §4.5.2: "Clear tests before lowering else").
		cg.Scopes.Top().Tests = nil
		cg.position(elseB)
		cg.lowerStmt(n.ElseBranch)
		if !cg.Mod.BlockHasTerminator(cg.curBlock) {
			cg.Mod.BuildBr(joinB)
		}
	}

	cg.position(joinB)
	cg.Scopes.Pop()
}

// lowerFor lowers a C-style for loop: loop (header/cond), join (body),
// post (step), optional else (falling-through tail), exit (spec.md
// §4.5.2 "For").
func (cg *CG) lowerFor(n *ast.ForStmt) {
	cg.Scopes.Push()
	if n.Init != nil {
		cg.lowerStmt(n.Init)
	}
	fn := cg.curFnHandle()
	loopB := cg.Mod.AppendBlock(fn, cg.name("for.cond"))
	bodyB := cg.Mod.AppendBlock(fn, cg.name("for.body"))
	postB := cg.Mod.AppendBlock(fn, cg.name("for.post"))
	var elseB backend.Block
	if n.ElseBody != nil {
		elseB = cg.Mod.AppendBlock(fn, cg.name("for.else"))
	}
	exitB := cg.Mod.AppendBlock(fn, cg.name("for.exit"))
	fallThrough := exitB
	if n.ElseBody != nil {
		fallThrough = elseB
	}

	cg.Scopes.Top().Loop = &symbols.LoopHandles{Post: postB, Exit: exitB}

	cg.Mod.BuildBr(loopB)
	cg.position(loopB)
	if n.Cond != nil {
		cond, ok := cg.genValue(n.Cond, cg.Types.B8())
		if !ok {
			cg.Scopes.Pop()
			return
		}
		cg.Mod.BuildCondBr(cond.V, bodyB, fallThrough)
	} else {
		cg.Mod.BuildBr(bodyB)
	}

	cg.position(bodyB)
	cg.lowerBlock(n.Body)
	if !cg.Mod.BlockHasTerminator(cg.curBlock) {
		cg.Mod.BuildBr(postB)
	}

	cg.position(postB)
	if n.Post != nil {
		cg.lowerStmt(n.Post)
	}
	if !cg.Mod.BlockHasTerminator(cg.curBlock) {
		cg.Mod.BuildBr(loopB)
	}

	if n.ElseBody != nil {
		cg.position(elseB)
		cg.lowerBlock(n.ElseBody)
		if !cg.Mod.BlockHasTerminator(cg.curBlock) {
			cg.Mod.BuildBr(exitB)
		}
	}

	cg.position(exitB)
	cg.Scopes.Pop()
}

// lowerLet lowers a local `let`: an aggregate-literal initializer binds
// its address directly; otherwise allocate and store, using a block copy
// when the initializer is itself addressable (spec.md §4.5.2 "Let").
func (cg *CG) lowerLet(n *ast.LetStmt) {
	var want *types.CT
	if n.Anno != nil {
		t, ok := cg.genType(n.Anno)
		if !ok {
			return
		}
		want = t
	}
	if agg, ok := n.Value.(*ast.AggExpr); ok {
		addr, ok := cg.addrOfAgg(agg)
		if !ok {
			return
		}
		cg.applyLocalAlign(addr.Ptr, n.Attrs, addr.T)
		cg.Scopes.BindVar(n.Name, addr.Ptr, addr.T, n)
		return
	}
	if want == nil {
		v, ok := cg.genValue(n.Value, nil)
		if !ok {
			return
		}
		want = v.T
	}
	if addressable, ok := cg.tryGenAddr(n.Value, want); ok {
		t := cg.backendType(want)
		slot := cg.Mod.BuildAlloca(t, cg.name(n.Name))
		cg.applyLocalAlign(slot, n.Attrs, want)
		cg.Mod.BuildMemcpy(slot, addressable.Ptr, want.Size(), int(want.Align()))
		cg.Scopes.BindVar(n.Name, slot, want, n)
		return
	}
	v, ok := cg.genValue(n.Value, want)
	if !ok {
		return
	}
	if want != nil && want.IsUnion() && !v.T.IsUnion() {
		// A union-typed let bound to a bare variant's value selects that
		// variant, the same coercion spec.md §4.5.2 "Return" describes for
		// a union-typed return (spec.md §8.4 scenario 5).
		addr := cg.spillUnion(want, v)
		cg.applyLocalAlign(addr.Ptr, n.Attrs, want)
		cg.Scopes.BindVar(n.Name, addr.Ptr, want, n)
		return
	}
	t := cg.backendType(v.T)
	slot := cg.Mod.BuildAlloca(t, cg.name(n.Name))
	cg.applyLocalAlign(slot, n.Attrs, v.T)
	cg.Mod.BuildStore(v.V, slot)
	cg.Scopes.BindVar(n.Name, slot, v.T, n)
}

// tryGenAddr attempts to lower e as an addressable aggregate (tuple
// literal, field/index access, another variable) so lowerLet can choose
// the block-copy path; a bare literal or computed scalar is not
// addressable and returns ok=false rather than a diagnostic.
func (cg *CG) tryGenAddr(e ast.Expr, want *types.CT) (Addr, bool) {
	switch n := e.(type) {
	case *ast.VarExpr, *ast.AccessExpr, *ast.IndexExpr:
		return cg.genAddr(e, want)
	case *ast.TupleExpr:
		if len(n.Elems) > 1 {
			return cg.genAddr(e, want)
		}
	}
	return Addr{}, false
}

func (cg *CG) applyLocalAlign(slot backend.Value, attrs []ast.Attr, t *types.CT) {
	if align, ok := ast.FindAlign(attrs); ok {
		cg.Mod.SetAlignment(slot, align)
	}
}

// lowerUsing stack-allocates and zero-initializes the resolved effect
// type, binding it as a using in the current scope (spec.md §4.5.2
// "Using").
func (cg *CG) lowerUsing(n *ast.UsingStmt) {
	ct, ok := cg.Effects[n.EffectName]
	if !ok {
		cg.Sink.Errorf(n.R, "undeclared effect %q", n.EffectName)
		return
	}
	t := cg.backendType(ct)
	slot := cg.Mod.BuildAlloca(t, cg.name(n.Name))
	cg.Mod.BuildStore(cg.Mod.ConstZero(t), slot)
	cg.Scopes.BindUsing(n.Name, slot, ct, n)
}

// lowerAssign lowers `lhs op= rhs` (spec.md §4.5.2 "Assign"): atomics are
// rejected, a union LHS selects the variant matching the RHS's CT, and
// compound forms route through the shared emit_add/sub/mul/div helpers.
func (cg *CG) lowerAssign(n *ast.AssignStmt) {
	dst, ok := cg.genAddr(n.LHS, nil)
	if !ok {
		return
	}
	if dst.T.IsAtomic() {
		cg.Sink.Errorf(n.R, "cannot assign directly to an atomic; use its intrinsic operations")
		return
	}
	rhs, ok := cg.genValue(n.RHS, dst.T)
	if !ok {
		return
	}
	if dst.T.IsUnion() {
		if !cg.storeUnionVariant(dst, rhs.T, rhs.V) {
			cg.Sink.Errorf(n.R, "type %s is not a variant of %s", rhs.T, dst.T)
		}
		return
	}
	if n.Op == ast.AssignSet {
		cg.Mod.BuildStore(rhs.V, dst.Ptr)
		return
	}
	cur := cg.load(dst)
	var result backend.Value
	switch n.Op {
	case ast.AssignAdd:
		result = cg.emitAdd(dst.T, cur.V, rhs.V)
	case ast.AssignSub:
		result = cg.emitSub(dst.T, cur.V, rhs.V)
	case ast.AssignMul:
		result = cg.emitMul(dst.T, cur.V, rhs.V)
	case ast.AssignDiv:
		result = cg.emitDiv(dst.T, cur.V, rhs.V)
	}
	cg.Mod.BuildStore(result, dst.Ptr)
}
