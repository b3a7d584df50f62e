package codegen

import (
	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/backend"
	"github.com/biron-lang/bironc/internal/types"
)

// genCall lowers `callee(args...)` (spec.md §4.5.1 "Call"): lower the
// callee, lower args left-to-right against the callee's declared
// parameter types, destructure string arguments into their raw pointer
// field when the callee is a C-ABI declaration (a top-level fn with no
// body — an extern/import binding), emit the call, and detuple a
// single-element return.
func (cg *CG) genCall(n *ast.CallExpr, want *types.CT) (Value, bool) {
	calleeV, ok := cg.genValue(n.Callee, nil)
	if !ok {
		return Value{}, false
	}
	fnT := calleeV.T
	if !fnT.IsFn() {
		cg.Sink.Errorf(n.Callee.Range(), "callee is not callable")
		return Value{}, false
	}
	cAbi := cg.isCABI(n.Callee)
	paramFields := fnT.Args().Fields()
	paramIdx := 0
	nextParamType := func() *types.CT {
		for paramIdx < len(paramFields) {
			f := paramFields[paramIdx]
			paramIdx++
			if f.T.IsPadding() {
				continue
			}
			return f.T
		}
		return nil
	}

	var argVals []backend.Value
	for _, a := range n.Args {
		if ex, isExplode := a.(*ast.ExplodeExpr); isExplode {
			vals, ok := cg.genExplodeArgs(ex, cAbi, nextParamType)
			if !ok {
				return Value{}, false
			}
			argVals = append(argVals, vals...)
			continue
		}
		hint := nextParamType()
		v, ok := cg.genValue(a, hint)
		if !ok {
			return Value{}, false
		}
		argVals = append(argVals, cg.coerceCallArg(v, cAbi)...)
	}
	for _, eff := range fnT.Effects() {
		argVals = append(argVals, cg.resolveEffectArg(eff, n.R))
	}

	fnHandleT := cg.backendFnType(fnT)
	retT := fnT.Rets()
	call := cg.Mod.BuildCall(fnHandleT, calleeV.V, argVals, cg.name("call"))
	return Value{T: detupleRets(retT), V: call}, true
}

// genExplodeArgs lowers `...x`: x must be a tuple value, whose elements
// expand positionally into the call's argument list (spec.md §4.5.1
// "Explode").
func (cg *CG) genExplodeArgs(ex *ast.ExplodeExpr, cAbi bool, nextParamType func() *types.CT) ([]backend.Value, bool) {
	v, ok := cg.genValue(ex.X, nil)
	if !ok {
		return nil, false
	}
	if !v.T.IsTuple() {
		cg.Sink.Errorf(ex.R, "'...' requires a tuple operand")
		return nil, false
	}
	fields := v.T.Fields()
	var out []backend.Value
	for i, f := range fields {
		nextParamType()
		if f.T.IsPadding() {
			continue
		}
		elem := cg.Mod.BuildExtractValue(v.V, i, cg.name("explode"))
		out = append(out, cg.coerceCallArg(Value{T: f.T, V: elem}, cAbi)...)
	}
	return out, true
}

// coerceCallArg destructures a string argument into its raw data pointer
// when the callee is C-ABI (spec.md §4.5.1: "if the callee is C-ABI,
// destructure any string argument into its raw pointer field").
func (cg *CG) coerceCallArg(v Value, cAbi bool) []backend.Value {
	if cAbi && v.T.IsString() {
		ptr := cg.Mod.BuildExtractValue(v.V, 0, cg.name("str.ptr"))
		return []backend.Value{ptr}
	}
	return []backend.Value{v.V}
}

// isCABI reports whether callee statically names a top-level fn declared
// without a body, the AST's representation of an extern/import binding
// (spec.md §3's Import item feeds exactly these bodyless Fn entries into
// a unit's fn list).
func (cg *CG) isCABI(callee ast.Expr) bool {
	v, ok := callee.(*ast.VarExpr)
	if !ok {
		return false
	}
	fn, ok := cg.Fns[v.Name]
	if !ok {
		return false
	}
	return fn.Decl.Body == nil
}

// resolveEffectArg passes the current scope's using binding for an
// effect parameter as an implicit trailing call argument (spec.md
// §4.5.3's effects-as-implicit-parameters lowering, mirrored from
// backendFnType). A callee requiring an effect with no enclosing `using`
// of that type is a diagnosable caller error, not a codegen panic.
func (cg *CG) resolveEffectArg(eff *types.CT, r ast.Range) backend.Value {
	b, ok := cg.Scopes.LookupUsingByType(eff)
	if !ok {
		cg.Sink.Errorf(r, "no enclosing 'using' provides effect %s", eff)
		return cg.Mod.ConstZero(cg.Mod.PointerType())
	}
	return b.Addr
}

// detupleRets applies the single-element detuple rule to a call's return
// CT (spec.md §4.5.1: "if the callee's return tuple is of arity 1, the
// returned value's type is that single element").
func detupleRets(rets *types.CT) *types.CT {
	fields := rets.Fields()
	if len(fields) == 1 {
		return fields[0].T
	}
	return rets
}
