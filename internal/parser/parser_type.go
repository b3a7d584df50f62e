package parser

import (
	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/srcrange"
	"github.com/biron-lang/bironc/internal/token"
)

// parseType parses a syntactic type per spec.md §6.2's type grammar, then
// absorbs a trailing `| T2 | T3...` chain into a UnionType.
func (p *Parser) parseType(u *ast.Unit) ast.Type {
	t := p.parsePrimaryType(u)
	if p.cur.Kind != token.PIPE {
		return t
	}
	r := t.Range()
	variants := []ast.Type{t}
	for p.cur.Kind == token.PIPE {
		p.next()
		v := p.parsePrimaryType(u)
		variants = append(variants, v)
		r = srcrange.Union(r, v.Range())
	}
	return ast.NewUnionType(u.Arena, r, variants)
}

func (p *Parser) parsePrimaryType(u *ast.Unit) ast.Type {
	start := p.cur
	switch p.cur.Kind {
	case token.STAR:
		p.next()
		base := p.parsePrimaryType(u)
		return ast.NewPtrType(u.Arena, p.rangeFrom(start), base)
	case token.ELLIPSIS:
		p.next()
		return ast.NewVarArgsType(u.Arena, p.rangeFrom(start))
	case token.LBRACKET:
		p.next()
		if p.cur.Kind == token.RBRACKET {
			p.next()
			base := p.parsePrimaryType(u)
			return ast.NewSliceType(u.Arena, p.rangeFrom(start), base)
		}
		extent := p.parseExpr(u, lowest)
		p.expect(token.RBRACKET, "']'")
		base := p.parsePrimaryType(u)
		return ast.NewArrayType(u.Arena, p.rangeFrom(start), base, extent)
	case token.LPAREN:
		p.next()
		var elems []ast.TupleElem
		for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
			name := ""
			if p.cur.Kind == token.IDENT && p.peek.Kind == token.COLON {
				name = p.cur.Lexeme
				p.next()
				p.next()
			}
			elems = append(elems, ast.TupleElem{Name: name, T: p.parseType(u)})
			if p.cur.Kind == token.COMMA {
				p.next()
			}
		}
		p.expect(token.RPAREN, "')'")
		return ast.NewTupleType(u.Arena, p.rangeFrom(start), elems)
	case token.FN:
		p.next()
		args := p.parseArgsType(u)
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
		return ast.NewFnType(u.Arena, p.rangeFrom(start), args, effects, rets)
	case token.IDENT:
		name := p.cur.Lexeme
		switch name {
		case "Bool":
			p.next()
			return ast.NewBoolType(u.Arena, p.rangeFrom(start))
		case "atom":
			p.next()
			p.expect(token.LPAREN, "'('")
			base := p.parseType(u)
			p.expect(token.RPAREN, "')'")
			return ast.NewAtomType(u.Arena, p.rangeFrom(start), base)
		case "enum":
			p.next()
			var base ast.Type
			if p.cur.Kind == token.LPAREN {
				p.next()
				base = p.parseType(u)
				p.expect(token.RPAREN, "')'")
			}
			p.expect(token.LBRACE, "'{'")
			var enumerators []ast.Enumerator
			for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
				enName := p.cur.Lexeme
				p.next()
				var val ast.Expr
				if p.cur.Kind == token.ASSIGN {
					p.next()
					val = p.parseExpr(u, lowest)
				}
				enumerators = append(enumerators, ast.Enumerator{Name: enName, Value: val})
				if p.cur.Kind == token.COMMA {
					p.next()
				}
			}
			p.expect(token.RBRACE, "'}'")
			return ast.NewEnumType(u.Arena, p.rangeFrom(start), base, enumerators)
		default:
			p.next()
			return ast.NewIdentType(u.Arena, p.rangeFrom(start), name)
		}
	default:
		p.errorf(p.cur, "unexpected token %q in type", p.cur.Lexeme)
		p.next()
		return ast.NewIdentType(u.Arena, p.rangeFrom(start), "?")
	}
}
