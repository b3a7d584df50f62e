// Package parser implements the boundary-only parser spec.md §1 treats as
// an external collaborator. Like internal/lexer, it exists only to drive
// the end-to-end scenarios in spec.md §8.4 and is not a tuning target in
// its own right. Its structure — a single Parser walking a token stream
// with cur/peek lookahead, precedence-climbing binary expressions, split
// across per-construct methods — follows funvibe/funxy's
// internal/parser package (expressions_core.go's Pratt-style
// parseExpression, statements.go's per-keyword dispatch), adapted to this
// repo's own grammar (spec.md §6.2).
package parser

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/diag"
	"github.com/biron-lang/bironc/internal/lexer"
	"github.com/biron-lang/bironc/internal/srcrange"
	"github.com/biron-lang/bironc/internal/token"
)

// precedence levels, lowest to tightest-binding, matching spec.md §6.2's
// table read bottom-to-top (`||` loosest, `.`/call/index/`as` tightest).
const (
	lowest = iota + 1
	orPrec
	andPrec
	bitOrPrec
	bitAndPrec
	equalsPrec
	comparePrec
	shiftPrec
	sumPrec
	productPrec
	unaryPrec
	postfixPrec
)

var binPrecedence = map[token.Kind]int{
	token.OROR:    orPrec,
	token.ANDAND:  andPrec,
	token.PIPE:    bitOrPrec,
	token.AMP:     bitAndPrec,
	token.EQ:      equalsPrec,
	token.NE:      equalsPrec,
	token.LT:      comparePrec,
	token.LE:      comparePrec,
	token.GT:      comparePrec,
	token.GE:      comparePrec,
	token.SHL:     shiftPrec,
	token.SHR:     shiftPrec,
	token.PLUS:    sumPrec,
	token.MINUS:   sumPrec,
	token.STAR:    productPrec,
	token.SLASH:   productPrec,
	token.PERCENT: productPrec,
	token.LPAREN:  postfixPrec,
	token.LBRACKET: postfixPrec,
	token.DOT:     postfixPrec,
	token.AS:      postfixPrec,
	token.IS:      postfixPrec,
	token.BANG:    postfixPrec,
	token.OF:      postfixPrec,
}

// Parser turns a token stream into a *ast.Unit.
type Parser struct {
	l      *lexer.Lexer
	arena  *ast.Arena
	sink   *diag.Sink
	file   string

	cur  token.Token
	peek token.Token

	// noAgg suppresses `Ident { ... }` aggregate-literal parsing while
	// parsing an if/for condition, where `{` instead opens the body.
	noAgg bool
}

// New creates a Parser over source, reporting diagnostics to sink.
func New(source, file string, sink *diag.Sink) *Parser {
	p := &Parser{l: lexer.New(source), sink: sink, file: file}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
	for p.peek.Kind == token.NEWLINE || p.peek.Kind == token.COMMENT {
		p.peek = p.l.NextToken()
	}
}

func (p *Parser) rangeFrom(start token.Token) srcrange.Range {
	return srcrange.Range{Offset: start.Offset, Length: p.cur.Offset - start.Offset}
}

func (p *Parser) expect(k token.Kind, what string) bool {
	if p.cur.Kind != k {
		p.sink.Errorf(srcrange.Range{Offset: p.cur.Offset, Length: uint32(len(p.cur.Lexeme))},
			"expected %s, got %q", what, p.cur.Lexeme)
		return false
	}
	p.next()
	return true
}

// ParseUnit parses an entire translation unit.
func (p *Parser) ParseUnit() *ast.Unit {
	u := ast.NewUnit(p.file)
	for p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.IMPORT:
			if imp := p.parseImport(u); imp != nil {
				u.Imports = append(u.Imports, imp)
			}
		case token.TYPE:
			if td := p.parseTypedef(u); td != nil {
				u.Typedefs = append(u.Typedefs, td)
			}
		case token.EFFECT:
			if ef := p.parseEffect(u); ef != nil {
				u.Effects = append(u.Effects, ef)
			}
		case token.LET:
			if g := p.parseGLet(u); g != nil {
				u.Lets = append(u.Lets, g)
			}
		case token.FN:
			if fn := p.parseFn(u); fn != nil {
				u.Fns = append(u.Fns, fn)
			}
		case token.AT:
			// Leading attributes on a `let` or `fn`: reparse with attrs collected.
			attrs := p.parseAttrs(u)
			p.attachAttrs(u, attrs)
		default:
			p.sink.Errorf(srcrange.Range{Offset: p.cur.Offset, Length: 1},
				"unexpected top-level token %q", p.cur.Lexeme)
			p.resyncTopLevel()
		}
	}
	return u
}

// attachAttrs parses the declaration that follows a leading attribute run
// and attaches attrs to it.
func (p *Parser) attachAttrs(u *ast.Unit, attrs []ast.Attr) {
	switch p.cur.Kind {
	case token.LET:
		if g := p.parseGLetWithAttrs(u, attrs); g != nil {
			u.Lets = append(u.Lets, g)
		}
	case token.FN:
		if fn := p.parseFnWithAttrs(u, attrs); fn != nil {
			u.Fns = append(u.Fns, fn)
		}
	case token.TYPE:
		if td := p.parseTypedefWithAttrs(u, attrs); td != nil {
			u.Typedefs = append(u.Typedefs, td)
		}
	default:
		p.sink.Errorf(srcrange.Range{Offset: p.cur.Offset, Length: 1}, "attributes must precede let/fn/type")
	}
}

// resyncTopLevel resynchronizes at the next top-level keyword or semicolon
// (spec.md §7: "parser attempts to resynchronize at the next top-level
// keyword or semicolon").
func (p *Parser) resyncTopLevel() {
	for p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.FN, token.LET, token.TYPE, token.EFFECT, token.IMPORT:
			return
		case token.SEMI:
			p.next()
			return
		}
		p.next()
	}
}

func (p *Parser) parseImport(u *ast.Unit) *ast.Import {
	start := p.cur
	p.next() // import
	if p.cur.Kind != token.STRING {
		p.sink.Errorf(srcrange.Range{Offset: p.cur.Offset, Length: 1}, "expected import path string")
		p.resyncTopLevel()
		return nil
	}
	path := p.cur.Lexeme
	p.next()
	alias := ""
	if p.cur.Kind == token.AS {
		p.next()
		alias = p.cur.Lexeme
		p.next()
	}
	if p.cur.Kind == token.SEMI {
		p.next()
	}
	return ast.NewImport(u.Arena, p.rangeFrom(start), path, alias)
}

func (p *Parser) parseTypedef(u *ast.Unit) *ast.Typedef {
	return p.parseTypedefWithAttrs(u, nil)
}

func (p *Parser) parseTypedefWithAttrs(u *ast.Unit, attrs []ast.Attr) *ast.Typedef {
	start := p.cur
	p.next() // type
	name := p.cur.Lexeme
	p.next()
	if !p.expect(token.ASSIGN, "'='") {
		p.resyncTopLevel()
		return nil
	}
	t := p.parseType(u)
	if p.cur.Kind == token.SEMI {
		p.next()
	}
	return ast.NewTypedef(u.Arena, p.rangeFrom(start), name, t, attrs)
}

func (p *Parser) parseEffect(u *ast.Unit) *ast.Effect {
	start := p.cur
	p.next() // effect
	name := p.cur.Lexeme
	p.next()
	if !p.expect(token.ASSIGN, "'='") {
		p.resyncTopLevel()
		return nil
	}
	t := p.parseType(u)
	if p.cur.Kind == token.SEMI {
		p.next()
	}
	return ast.NewEffect(u.Arena, p.rangeFrom(start), name, t)
}

func (p *Parser) parseAttrs(u *ast.Unit) []ast.Attr {
	var attrs []ast.Attr
	for p.cur.Kind == token.AT {
		start := p.cur
		p.next()
		name := p.cur.Lexeme
		p.next()
		var args []ast.Expr
		if p.cur.Kind == token.LPAREN {
			p.next()
			for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
				args = append(args, p.parseExpr(u, lowest))
				if p.cur.Kind == token.COMMA {
					p.next()
				}
			}
			p.next() // )
		}
		r := p.rangeFrom(start)
		switch name {
		case "section":
			val := ""
			if len(args) > 0 {
				if s, ok := args[0].(*ast.StrExpr); ok {
					val = s.Value
				}
			}
			attrs = append(attrs, ast.NewSectionAttr(u.Arena, r, val))
		case "align":
			val := 0
			if len(args) > 0 {
				if i, ok := args[0].(*ast.IntExpr); ok {
					val = int(i.Value.Int64())
				}
			}
			attrs = append(attrs, ast.NewAlignAttr(u.Arena, r, val))
		case "used":
			val := true
			if len(args) > 0 {
				if b, ok := args[0].(*ast.BoolExpr); ok {
					val = b.Value
				}
			}
			attrs = append(attrs, ast.NewUsedAttr(u.Arena, r, val))
		case "export":
			val := true
			if len(args) > 0 {
				if b, ok := args[0].(*ast.BoolExpr); ok {
					val = b.Value
				}
			}
			attrs = append(attrs, ast.NewExportAttr(u.Arena, r, val))
		default:
			p.sink.Errorf(r, "unknown attribute %q", name)
		}
	}
	return attrs
}

func (p *Parser) parseGLet(u *ast.Unit) *ast.GLetStmt {
	return p.parseGLetWithAttrs(u, nil)
}

func (p *Parser) parseGLetWithAttrs(u *ast.Unit, attrs []ast.Attr) *ast.GLetStmt {
	start := p.cur
	p.next() // let
	name := p.cur.Lexeme
	p.next()
	var anno ast.Type
	if p.cur.Kind == token.COLON {
		p.next()
		anno = p.parseType(u)
	}
	if !p.expect(token.ASSIGN, "'='") {
		p.resyncTopLevel()
		return nil
	}
	val := p.parseExpr(u, lowest)
	if p.cur.Kind == token.SEMI {
		p.next()
	}
	return ast.NewGLetStmt(u.Arena, p.rangeFrom(start), name, anno, val, attrs)
}

func (p *Parser) parseFn(u *ast.Unit) *ast.Fn {
	return p.parseFnWithAttrs(u, nil)
}

func (p *Parser) parseFnWithAttrs(u *ast.Unit, attrs []ast.Attr) *ast.Fn {
	start := p.cur
	p.next() // fn
	name := p.cur.Lexeme
	p.next()
	params := p.parseArgsType(u)
	var effects []ast.Type
	for p.cur.Kind == token.BANG {
		p.next()
		effects = append(effects, p.parseType(u))
	}
	var rets *ast.ArgsType
	if p.cur.Kind == token.ARROW {
		p.next()
		rets = p.parseRetsType(u)
	} else {
		rets = ast.NewArgsType(u.Arena, p.rangeFrom(start), nil)
	}
	body := p.parseBlock(u)
	return ast.NewFn(u.Arena, p.rangeFrom(start), name, params, effects, rets, body, attrs)
}

// parseArgsType parses a `(name: T, ...)` parameter list.
func (p *Parser) parseArgsType(u *ast.Unit) *ast.ArgsType {
	start := p.cur
	p.expect(token.LPAREN, "'('")
	var elems []ast.TupleElem
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		elemName := ""
		if p.cur.Kind == token.IDENT && p.peek.Kind == token.COLON {
			elemName = p.cur.Lexeme
			p.next()
			p.next()
		}
		t := p.parseType(u)
		elems = append(elems, ast.TupleElem{Name: elemName, T: t})
		if p.cur.Kind == token.COMMA {
			p.next()
		}
	}
	p.expect(token.RPAREN, "')'")
	return ast.NewArgsType(u.Arena, p.rangeFrom(start), elems)
}

// parseRetsType parses a return type list, which may be a single bare
// type (sugar for a one-element tuple) or a parenthesized list.
func (p *Parser) parseRetsType(u *ast.Unit) *ast.ArgsType {
	start := p.cur
	if p.cur.Kind == token.LPAREN {
		return p.parseArgsType(u)
	}
	t := p.parseType(u)
	return ast.NewArgsType(u.Arena, p.rangeFrom(start), []ast.TupleElem{{T: t}})
}

func (p *Parser) parseBlock(u *ast.Unit) *ast.BlockStmt {
	start := p.cur
	p.expect(token.LBRACE, "'{'")
	var stmts []ast.Stmt
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		if s := p.parseStmt(u); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expect(token.RBRACE, "'}'")
	return ast.NewBlockStmt(u.Arena, p.rangeFrom(start), stmts)
}

func parseIntLiteral(text string) (*big.Int, ast.IntWidth) {
	width := ast.UntypedInt
	num := text
	if idx := strings.IndexByte(text, '_'); idx >= 0 {
		num = text[:idx]
		suffix := text[idx+1:]
		switch suffix {
		case "u8":
			width = ast.U8
		case "u16":
			width = ast.U16
		case "u32":
			width = ast.U32
		case "u64":
			width = ast.U64
		case "s8":
			width = ast.S8
		case "s16":
			width = ast.S16
		case "s32":
			width = ast.S32
		case "s64":
			width = ast.S64
		}
	}
	v := new(big.Int)
	base := 10
	if strings.HasPrefix(num, "0x") || strings.HasPrefix(num, "0X") {
		base = 16
		num = num[2:]
	}
	v.SetString(num, base)
	return v, width
}

func parseFloatLiteral(text string) (float64, ast.FltWidth) {
	width := ast.UntypedReal
	num := text
	if idx := strings.IndexByte(text, '_'); idx >= 0 {
		num = text[:idx]
		switch text[idx+1:] {
		case "f32":
			width = ast.F32
		case "f64":
			width = ast.F64
		}
	}
	f, _ := strconv.ParseFloat(num, 64)
	return f, width
}

// errorf is a convenience wrapper around the sink for parser-local spans.
func (p *Parser) errorf(t token.Token, format string, args ...any) {
	p.sink.Errorf(srcrange.Range{Offset: t.Offset, Length: uint32(len(t.Lexeme))}, format, args...)
}
