package ast

import (
	"fmt"
	"io"
	"strings"
)

// DumpUnit writes a bracketed s-expression rendering of every top-level
// item in u to w, for the `-da` CLI flag (spec.md §6.1). This is a
// debugging aid, not a pretty-printer the round-trip property in spec.md
// §8.2 depends on — that property binds the external parser, which is out
// of this repo's scope (spec.md §1).
func DumpUnit(w io.Writer, u *Unit) {
	for _, imp := range u.Imports {
		fmt.Fprintf(w, "(import %q as %q)\n", imp.Path, imp.Alias)
	}
	for _, td := range u.Typedefs {
		fmt.Fprintf(w, "(typedef %s %s)\n", td.Name, dumpType(td.T))
	}
	for _, ef := range u.Effects {
		fmt.Fprintf(w, "(effect %s %s)\n", ef.Name, dumpType(ef.T))
	}
	for _, g := range u.Lets {
		fmt.Fprintf(w, "(glet %s %s)\n", g.Name, dumpExpr(g.Value))
	}
	for _, fn := range u.Fns {
		dumpFn(w, fn)
	}
}

func dumpFn(w io.Writer, fn *Fn) {
	fmt.Fprintf(w, "(fn %s\n", fn.Name)
	dumpBlock(w, fn.Body, 1)
	fmt.Fprintln(w, ")")
}

func indent(n int) string { return strings.Repeat("  ", n) }

func dumpBlock(w io.Writer, b *BlockStmt, depth int) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		fmt.Fprintf(w, "%s%s\n", indent(depth), dumpStmt(s, depth))
	}
}

func dumpStmt(s Stmt, depth int) string {
	switch n := s.(type) {
	case *BlockStmt:
		var sb strings.Builder
		sb.WriteString("(block\n")
		for _, st := range n.Stmts {
			sb.WriteString(indent(depth + 1))
			sb.WriteString(dumpStmt(st, depth+1))
			sb.WriteByte('\n')
		}
		sb.WriteString(indent(depth))
		sb.WriteByte(')')
		return sb.String()
	case *ReturnStmt:
		if n.Value == nil {
			return "(return)"
		}
		return fmt.Sprintf("(return %s)", dumpExpr(n.Value))
	case *DeferStmt:
		return fmt.Sprintf("(defer %s)", dumpStmt(n.Body, depth))
	case *BreakStmt:
		return "(break)"
	case *ContinueStmt:
		return "(continue)"
	case *IfStmt:
		return fmt.Sprintf("(if %s %s)", dumpExpr(n.Cond), dumpStmt(n.Then, depth))
	case *LetStmt:
		return fmt.Sprintf("(let %s %s)", n.Name, dumpExpr(n.Value))
	case *GLetStmt:
		return fmt.Sprintf("(glet %s %s)", n.Name, dumpExpr(n.Value))
	case *UsingStmt:
		return fmt.Sprintf("(using %s %s)", n.Name, n.EffectName)
	case *ForStmt:
		return fmt.Sprintf("(for %s)", dumpStmt(n.Body, depth))
	case *ExprStmt:
		return fmt.Sprintf("(expr %s)", dumpExpr(n.X))
	case *AssignStmt:
		return fmt.Sprintf("(assign %s %s)", dumpExpr(n.LHS), dumpExpr(n.RHS))
	default:
		return "(?stmt)"
	}
}

func dumpExpr(e Expr) string {
	if e == nil {
		return "()"
	}
	switch n := e.(type) {
	case *TupleExpr:
		parts := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			parts[i] = dumpExpr(el)
		}
		return "(tuple " + strings.Join(parts, " ") + ")"
	case *CallExpr:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = dumpExpr(a)
		}
		return fmt.Sprintf("(call %s %s)", dumpExpr(n.Callee), strings.Join(parts, " "))
	case *VarExpr:
		return n.Name
	case *IntExpr:
		return n.Text
	case *FltExpr:
		return n.Text
	case *StrExpr:
		return fmt.Sprintf("%q", n.Value)
	case *BoolExpr:
		return fmt.Sprintf("%v", n.Value)
	case *BinExpr:
		return fmt.Sprintf("(bin %d %s %s)", n.Op, dumpExpr(n.LHS), dumpExpr(n.RHS))
	case *LBinExpr:
		return fmt.Sprintf("(lbin %d %s %s)", n.Op, dumpExpr(n.LHS), dumpExpr(n.RHS))
	case *UnaryExpr:
		return fmt.Sprintf("(unary %d %s)", n.Op, dumpExpr(n.X))
	case *IndexExpr:
		return fmt.Sprintf("(index %s %s)", dumpExpr(n.X), dumpExpr(n.Index))
	case *AccessExpr:
		return fmt.Sprintf("(access %s %s)", dumpExpr(n.X), n.Field)
	case *CastExpr:
		return fmt.Sprintf("(as %s %s)", dumpExpr(n.X), dumpType(n.T))
	case *TestExpr:
		return fmt.Sprintf("(is %s %s)", dumpExpr(n.X), dumpType(n.T))
	default:
		return "(?expr)"
	}
}

func dumpType(t Type) string {
	if t == nil {
		return "()"
	}
	switch n := t.(type) {
	case *IdentType:
		return n.Name
	case *PtrType:
		return "*" + dumpType(n.Base)
	case *SliceType:
		return "[]" + dumpType(n.Base)
	case *ArrayType:
		return "[" + dumpExpr(n.Extent) + "]" + dumpType(n.Base)
	default:
		return "(?type)"
	}
}
