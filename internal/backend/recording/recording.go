// Package recording implements internal/backend.Module as an in-memory
// fake: every instruction is appended to its block's []Instr instead of
// being handed to LLVM. This lets internal/codegen's tests assert the
// exact instruction sequence a statement or expression lowers to without
// linking github.com/llir/llvm or shelling out to cc, the same role
// funvibe-funxy's recording fakes play for its own transport-layer
// invariant tests.
package recording

import (
	"fmt"
	"math/big"

	"github.com/biron-lang/bironc/internal/backend"
)

// Type is a recorded type descriptor. Its Fields and Params slices make
// it non-comparable with ==; every constructor returns a fresh *Type, so
// two handles for the same shape are distinct pointers. Named structs
// carry their name in Name.
type Type struct {
	Kind     string // "int", "float", "ptr", "void", "array", "struct", "fn"
	Bits     int
	Name     string // set for named structs
	Elem     *Type
	Fields   []Type
	Count    uint64
	Ret      *Type
	Params   []Type
	Variadic bool
}

func (*Type) backendType() {}

// Value is a recorded value: either a reference to an instruction/global/
// function by name, or a literal constant.
type Value struct {
	Name    string
	T       *Type
	IsConst bool
	Int     *big.Int
	Float   float64
	Str     string
	Elems   []*Value
	Zero    bool
}

func (*Value) backendValue() {}

// Instr is one recorded instruction, kept generic (Op + operands) so
// tests can pattern-match on Op without a type per opcode.
type Instr struct {
	Op       string
	Result   *Value
	Operands []*Value
	Extra    map[string]any // e.g. {"index": 2} for extractvalue, {"pred": backend.IntEQ} for icmp
}

// Block is a recorded basic block: an ordered instruction log plus the
// terminator flag internal/codegen relies on to avoid double-terminating
// a block (spec.md §4.5's "every block has exactly one terminator").
type Block struct {
	Name       string
	Instrs     []*Instr
	Terminated bool
}

func (*Block) backendBlock() {}

// Global records one module-level global or function declaration.
type Global struct {
	Name    string
	T       *Type
	IsFunc  bool
	Linkage backend.Linkage
	Align   int
	Section string
	Init    *Value
	Blocks  []*Block
	Params  []*Value
}

// Module is the recording backend.Module.
type Module struct {
	Name    string
	Globals []*Global
	structs map[string]*Type

	cur         *Block
	nextID      int
	usedEntries []*Value
}

// New creates an empty recording module.
func New(name string) *Module {
	return &Module{Name: name, structs: make(map[string]*Type)}
}

var _ backend.Module = (*Module)(nil)

func (m *Module) name(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s%d", prefix, m.nextID)
}

func (m *Module) IntType(bits int) backend.Type   { return &Type{Kind: "int", Bits: bits} }
func (m *Module) FloatType(bits int) backend.Type { return &Type{Kind: "float", Bits: bits} }
func (m *Module) PointerType() backend.Type       { return &Type{Kind: "ptr"} }
func (m *Module) VoidType() backend.Type          { return &Type{Kind: "void"} }
func (m *Module) ArrayType(elem backend.Type, count uint64) backend.Type {
	return &Type{Kind: "array", Elem: elem.(*Type), Count: count}
}
func (m *Module) StructType(fields []backend.Type, packed bool) backend.Type {
	fs := make([]Type, len(fields))
	for i, f := range fields {
		fs[i] = *f.(*Type)
	}
	return &Type{Kind: "struct", Fields: fs, Variadic: packed}
}
func (m *Module) NamedStructType(name string) backend.Type {
	if st, ok := m.structs[name]; ok {
		return st
	}
	st := &Type{Kind: "struct", Name: name}
	m.structs[name] = st
	return st
}
func (m *Module) SetStructBody(named backend.Type, fields []backend.Type, packed bool) {
	st := named.(*Type)
	st.Fields = make([]Type, len(fields))
	for i, f := range fields {
		st.Fields[i] = *f.(*Type)
	}
	st.Variadic = packed
}
func (m *Module) FnType(args []backend.Type, ret backend.Type, variadic bool) backend.Type {
	ps := make([]Type, len(args))
	for i, a := range args {
		ps[i] = *a.(*Type)
	}
	r := ret.(*Type)
	return &Type{Kind: "fn", Params: ps, Ret: r, Variadic: variadic}
}

func (m *Module) AddGlobal(name string, t backend.Type) backend.Value {
	g := &Global{Name: name, T: t.(*Type)}
	m.Globals = append(m.Globals, g)
	return &Value{Name: name, T: g.T}
}

func (m *Module) AddFunction(name string, t backend.Type) backend.Value {
	g := &Global{Name: name, T: t.(*Type), IsFunc: true}
	g.Params = make([]*Value, len(g.T.Params))
	for i, pt := range g.T.Params {
		pt := pt
		g.Params[i] = &Value{Name: fmt.Sprintf("%s.arg%d", name, i), T: &pt}
	}
	m.Globals = append(m.Globals, g)
	return &Value{Name: name, T: g.T}
}

// Param returns the recorded placeholder Value for fn's index'th
// parameter, created when AddFunction built the function's signature.
func (m *Module) Param(fn backend.Value, index int) backend.Value {
	g, ok := m.findGlobal(fn.(*Value).Name, true)
	if !ok || index >= len(g.Params) {
		return &Value{Name: fmt.Sprintf("param%d", index)}
	}
	return g.Params[index]
}

func (m *Module) findGlobal(name string, wantFunc bool) (*Global, bool) {
	for _, g := range m.Globals {
		if g.Name == name && g.IsFunc == wantFunc {
			return g, true
		}
	}
	return nil, false
}

func (m *Module) LookupGlobal(name string) (backend.Value, bool) {
	g, ok := m.findGlobal(name, false)
	if !ok {
		return nil, false
	}
	return &Value{Name: g.Name, T: g.T}, true
}
func (m *Module) LookupFunction(name string) (backend.Value, bool) {
	g, ok := m.findGlobal(name, true)
	if !ok {
		return nil, false
	}
	return &Value{Name: g.Name, T: g.T}, true
}
func (m *Module) LookupNamedStruct(name string) (backend.Type, bool) {
	st, ok := m.structs[name]
	return st, ok
}

func (m *Module) globalFor(v backend.Value) *Global {
	rv := v.(*Value)
	g, ok := m.findGlobal(rv.Name, false)
	if !ok {
		g, _ = m.findGlobal(rv.Name, true)
	}
	return g
}

func (m *Module) SetLinkage(v backend.Value, l backend.Linkage) {
	if g := m.globalFor(v); g != nil {
		g.Linkage = l
	}
}
func (m *Module) SetAlignment(v backend.Value, align int) {
	if g := m.globalFor(v); g != nil {
		g.Align = align
	}
}
func (m *Module) SetSection(v backend.Value, section string) {
	if g := m.globalFor(v); g != nil {
		g.Section = section
	}
}
func (m *Module) SetInitializer(global, init backend.Value) {
	if g := m.globalFor(global); g != nil {
		g.Init = init.(*Value)
	}
}

// AppendToUsed records every value passed to it, in call order, so
// tests can assert the `used` attribute (spec.md §9) actually reached
// the backend.
func (m *Module) AppendToUsed(v backend.Value) {
	m.usedEntries = append(m.usedEntries, v.(*Value))
}

func (m *Module) ConstInt(t backend.Type, v *big.Int) backend.Value {
	return &Value{T: t.(*Type), IsConst: true, Int: new(big.Int).Set(v)}
}
func (m *Module) ConstFloat(t backend.Type, v float64) backend.Value {
	return &Value{T: t.(*Type), IsConst: true, Float: v}
}
func (m *Module) ConstStruct(t backend.Type, fields []backend.Value) backend.Value {
	elems := make([]*Value, len(fields))
	for i, f := range fields {
		elems[i] = f.(*Value)
	}
	return &Value{T: t.(*Type), IsConst: true, Elems: elems}
}
func (m *Module) ConstArray(elemType backend.Type, elems []backend.Value) backend.Value {
	vs := make([]*Value, len(elems))
	for i, e := range elems {
		vs[i] = e.(*Value)
	}
	return &Value{T: &Type{Kind: "array", Elem: elemType.(*Type), Count: uint64(len(vs))}, IsConst: true, Elems: vs}
}
func (m *Module) ConstZero(t backend.Type) backend.Value {
	return &Value{T: t.(*Type), IsConst: true, Zero: true}
}

func (m *Module) AppendBlock(fn backend.Value, name string) backend.Block {
	g := m.globalFor(fn)
	b := &Block{Name: name}
	g.Blocks = append(g.Blocks, b)
	return b
}
func (m *Module) PositionAtEnd(b backend.Block) { m.cur = b.(*Block) }
func (m *Module) BlockHasTerminator(b backend.Block) bool {
	return b.(*Block).Terminated
}

func (m *Module) emit(op string, resultT *Type, operands ...backend.Value) *Value {
	ops := make([]*Value, len(operands))
	for i, o := range operands {
		ops[i] = o.(*Value)
	}
	var result *Value
	if resultT != nil {
		result = &Value{Name: m.name("%v"), T: resultT}
	}
	m.cur.Instrs = append(m.cur.Instrs, &Instr{Op: op, Result: result, Operands: ops})
	return result
}

func (m *Module) BuildAlloca(t backend.Type, name string) backend.Value {
	v := m.emit("alloca", &Type{Kind: "ptr"})
	v.Name = name
	return v
}
func (m *Module) BuildLoad(t backend.Type, ptr backend.Value, name string) backend.Value {
	v := m.emit("load", t.(*Type), ptr)
	v.Name = name
	return v
}
func (m *Module) BuildStore(val_, ptr backend.Value) { m.emit("store", nil, val_, ptr) }
func (m *Module) BuildGEP(elemType backend.Type, base backend.Value, indices []backend.Value, name string) backend.Value {
	ops := append([]backend.Value{base}, indices...)
	v := m.emit("gep", &Type{Kind: "ptr"}, ops...)
	v.Name = name
	return v
}
func (m *Module) BuildCall(fnType backend.Type, fn backend.Value, args []backend.Value, name string) backend.Value {
	ops := append([]backend.Value{fn}, args...)
	ft := fnType.(*Type)
	v := m.emit("call", ft.Ret, ops...)
	v.Name = name
	return v
}
func (m *Module) BuildRet(v backend.Value) {
	m.emit("ret", nil, v)
	m.cur.Terminated = true
}
func (m *Module) BuildRetVoid() {
	m.emit("ret.void", nil)
	m.cur.Terminated = true
}
func (m *Module) BuildBr(target backend.Block) {
	tb := target.(*Block)
	m.cur.Instrs = append(m.cur.Instrs, &Instr{Op: "br", Extra: map[string]any{"target": tb.Name}})
	m.cur.Terminated = true
}
func (m *Module) BuildCondBr(cond backend.Value, then, els backend.Block) {
	tb, eb := then.(*Block), els.(*Block)
	m.cur.Instrs = append(m.cur.Instrs, &Instr{
		Op:       "condbr",
		Operands: []*Value{cond.(*Value)},
		Extra:    map[string]any{"then": tb.Name, "else": eb.Name},
	})
	m.cur.Terminated = true
}
func (m *Module) BuildPhi(t backend.Type, incoming []backend.PhiIncoming, name string) backend.Value {
	v := &Value{Name: name, T: t.(*Type)}
	extra := map[string]any{"incoming": incoming}
	m.cur.Instrs = append(m.cur.Instrs, &Instr{Op: "phi", Result: v, Extra: extra})
	return v
}

func binOp(op string) func(m *Module, lhs, rhs backend.Value, name string) backend.Value {
	return func(m *Module, lhs, rhs backend.Value, name string) backend.Value {
		v := m.emit(op, lhs.(*Value).T, lhs, rhs)
		v.Name = name
		return v
	}
}

var (
	buildAdd  = binOp("add")
	buildSub  = binOp("sub")
	buildMul  = binOp("mul")
	buildSDiv = binOp("sdiv")
	buildUDiv = binOp("udiv")
	buildAnd  = binOp("and")
	buildOr   = binOp("or")
	buildXor  = binOp("xor")
	buildShl  = binOp("shl")
	buildAShr = binOp("ashr")
	buildLShr = binOp("lshr")
	buildFAdd = binOp("fadd")
	buildFSub = binOp("fsub")
	buildFMul = binOp("fmul")
	buildFDiv = binOp("fdiv")
)

func (m *Module) BuildAdd(lhs, rhs backend.Value, name string) backend.Value  { return buildAdd(m, lhs, rhs, name) }
func (m *Module) BuildSub(lhs, rhs backend.Value, name string) backend.Value  { return buildSub(m, lhs, rhs, name) }
func (m *Module) BuildMul(lhs, rhs backend.Value, name string) backend.Value  { return buildMul(m, lhs, rhs, name) }
func (m *Module) BuildSDiv(lhs, rhs backend.Value, name string) backend.Value { return buildSDiv(m, lhs, rhs, name) }
func (m *Module) BuildUDiv(lhs, rhs backend.Value, name string) backend.Value { return buildUDiv(m, lhs, rhs, name) }
func (m *Module) BuildAnd(lhs, rhs backend.Value, name string) backend.Value  { return buildAnd(m, lhs, rhs, name) }
func (m *Module) BuildOr(lhs, rhs backend.Value, name string) backend.Value   { return buildOr(m, lhs, rhs, name) }
func (m *Module) BuildXor(lhs, rhs backend.Value, name string) backend.Value  { return buildXor(m, lhs, rhs, name) }
func (m *Module) BuildShl(lhs, rhs backend.Value, name string) backend.Value  { return buildShl(m, lhs, rhs, name) }
func (m *Module) BuildAShr(lhs, rhs backend.Value, name string) backend.Value { return buildAShr(m, lhs, rhs, name) }
func (m *Module) BuildLShr(lhs, rhs backend.Value, name string) backend.Value { return buildLShr(m, lhs, rhs, name) }
func (m *Module) BuildFAdd(lhs, rhs backend.Value, name string) backend.Value { return buildFAdd(m, lhs, rhs, name) }
func (m *Module) BuildFSub(lhs, rhs backend.Value, name string) backend.Value { return buildFSub(m, lhs, rhs, name) }
func (m *Module) BuildFMul(lhs, rhs backend.Value, name string) backend.Value { return buildFMul(m, lhs, rhs, name) }
func (m *Module) BuildFDiv(lhs, rhs backend.Value, name string) backend.Value { return buildFDiv(m, lhs, rhs, name) }

func (m *Module) BuildNeg(v backend.Value, name string) backend.Value {
	r := m.emit("neg", v.(*Value).T, v)
	r.Name = name
	return r
}
func (m *Module) BuildFNeg(v backend.Value, name string) backend.Value {
	r := m.emit("fneg", v.(*Value).T, v)
	r.Name = name
	return r
}
func (m *Module) BuildNot(v backend.Value, name string) backend.Value {
	r := m.emit("not", v.(*Value).T, v)
	r.Name = name
	return r
}

func (m *Module) BuildICmp(pred backend.IntPredicate, lhs, rhs backend.Value, name string) backend.Value {
	v := m.emit("icmp", &Type{Kind: "int", Bits: 1}, lhs, rhs)
	v.Name = name
	m.cur.Instrs[len(m.cur.Instrs)-1].Extra = map[string]any{"pred": pred}
	return v
}
func (m *Module) BuildFCmp(pred backend.RealPredicate, lhs, rhs backend.Value, name string) backend.Value {
	v := m.emit("fcmp", &Type{Kind: "int", Bits: 1}, lhs, rhs)
	v.Name = name
	m.cur.Instrs[len(m.cur.Instrs)-1].Extra = map[string]any{"pred": pred}
	return v
}

func (m *Module) BuildCast(op backend.CastOp, v backend.Value, t backend.Type, name string) backend.Value {
	r := m.emit("cast", t.(*Type), v)
	r.Name = name
	m.cur.Instrs[len(m.cur.Instrs)-1].Extra = map[string]any{"op": op}
	return r
}

func (m *Module) BuildGlobalString(s string, name string) backend.Value {
	g := &Global{Name: name, T: &Type{Kind: "array", Elem: &Type{Kind: "int", Bits: 8}, Count: uint64(len(s) + 1)}}
	m.Globals = append(m.Globals, g)
	return &Value{Name: name, T: g.T, Str: s}
}

func (m *Module) BuildExtractValue(agg backend.Value, index int, name string) backend.Value {
	v := &Value{Name: name}
	m.cur.Instrs = append(m.cur.Instrs, &Instr{
		Op:       "extractvalue",
		Result:   v,
		Operands: []*Value{agg.(*Value)},
		Extra:    map[string]any{"index": index},
	})
	return v
}
func (m *Module) BuildInsertValue(agg, elem backend.Value, index int, name string) backend.Value {
	v := m.emit("insertvalue", agg.(*Value).T, agg, elem)
	v.Name = name
	m.cur.Instrs[len(m.cur.Instrs)-1].Extra = map[string]any{"index": index}
	return v
}
func (m *Module) BuildMemcpy(dst, src backend.Value, size uint64, align int) {
	m.cur.Instrs = append(m.cur.Instrs, &Instr{
		Op:       "memcpy",
		Operands: []*Value{dst.(*Value), src.(*Value)},
		Extra:    map[string]any{"size": size, "align": align},
	})
}

// Verify checks every recorded block is terminated, the same invariant
// the llvmir backend's Verify enforces, so codegen tests exercise it
// without depending on which Module implementation they were built with.
func (m *Module) Verify() error {
	for _, g := range m.Globals {
		for _, b := range g.Blocks {
			if !b.Terminated {
				return fmt.Errorf("recording: block %q in %q has no terminator", b.Name, g.Name)
			}
		}
	}
	return nil
}

// UsedEntries returns every value appended via AppendToUsed, in order.
func (m *Module) UsedEntries() []*Value { return m.usedEntries }

func (m *Module) RunPasses(pipeline string) error { return nil }

func (m *Module) Dump() string {
	out := fmt.Sprintf("; module %s\n", m.Name)
	for _, g := range m.Globals {
		out += fmt.Sprintf("; global %s blocks=%d\n", g.Name, len(g.Blocks))
	}
	return out
}

func (m *Module) EmitObject(path string) error {
	return fmt.Errorf("recording: EmitObject not supported by the in-memory backend")
}
