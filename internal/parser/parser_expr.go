package parser

import (
	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/srcrange"
	"github.com/biron-lang/bironc/internal/token"
)

// parseExpr implements precedence-climbing over spec.md §6.2's operator
// table: a prefix (unary/primary) parse, then a loop absorbing infix and
// postfix operators whose precedence is at least minPrec.
func (p *Parser) parseExpr(u *ast.Unit, minPrec int) ast.Expr {
	left := p.parsePrefix(u)
	for {
		prec, ok := binPrecedence[p.cur.Kind]
		if !ok || prec < minPrec {
			return left
		}
		left = p.parseInfix(u, left, prec)
	}
}

func (p *Parser) parsePrefix(u *ast.Unit) ast.Expr {
	start := p.cur
	switch p.cur.Kind {
	case token.BANG:
		p.next()
		x := p.parseExpr(u, unaryPrec)
		return ast.NewUnaryExpr(u.Arena, p.rangeFrom(start), ast.UnaryNot, x)
	case token.MINUS:
		p.next()
		x := p.parseExpr(u, unaryPrec)
		return ast.NewUnaryExpr(u.Arena, p.rangeFrom(start), ast.UnaryNeg, x)
	case token.STAR:
		p.next()
		x := p.parseExpr(u, unaryPrec)
		return ast.NewUnaryExpr(u.Arena, p.rangeFrom(start), ast.UnaryDeref, x)
	case token.AMP:
		p.next()
		x := p.parseExpr(u, unaryPrec)
		return ast.NewUnaryExpr(u.Arena, p.rangeFrom(start), ast.UnaryAddr, x)
	case token.ELLIPSIS:
		p.next()
		x := p.parseExpr(u, unaryPrec)
		return ast.NewExplodeExpr(u.Arena, p.rangeFrom(start), x)
	case token.QUESTION:
		p.next()
		return ast.NewInferSizeExpr(u.Arena, p.rangeFrom(start))
	case token.INT:
		lit := p.cur.Lexeme
		p.next()
		v, w := parseIntLiteral(lit)
		return ast.NewIntExpr(u.Arena, p.rangeFrom(start), lit, w, v)
	case token.FLOAT:
		lit := p.cur.Lexeme
		p.next()
		v, w := parseFloatLiteral(lit)
		return ast.NewFltExpr(u.Arena, p.rangeFrom(start), lit, w, v)
	case token.STRING:
		lit := p.cur.Lexeme
		p.next()
		return ast.NewStrExpr(u.Arena, p.rangeFrom(start), lit)
	case token.TRUE:
		p.next()
		return ast.NewBoolExpr(u.Arena, p.rangeFrom(start), true)
	case token.FALSE:
		p.next()
		return ast.NewBoolExpr(u.Arena, p.rangeFrom(start), false)
	case token.IDENT:
		name := p.cur.Lexeme
		p.next()
		if p.cur.Kind == token.LBRACE && p.canStartAggBody() {
			return p.parseAggLiteral(u, start, ast.NewIdentType(u.Arena, p.rangeFrom(start), name))
		}
		return ast.NewVarExpr(u.Arena, p.rangeFrom(start), name)
	case token.LPAREN:
		p.next()
		var elems []ast.Expr
		for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
			elems = append(elems, p.parseExpr(u, lowest))
			if p.cur.Kind == token.COMMA {
				p.next()
			}
		}
		p.expect(token.RPAREN, "')'")
		if len(elems) == 1 {
			return elems[0]
		}
		return ast.NewTupleExpr(u.Arena, p.rangeFrom(start), elems)
	case token.OF:
		// `of T.Name` form is also reachable via infix `of`; a bare leading
		// `of` is a parse error.
		p.errorf(p.cur, "unexpected 'of'")
		p.next()
		return ast.NewInferSizeExpr(u.Arena, p.rangeFrom(start))
	default:
		p.errorf(p.cur, "unexpected token %q in expression", p.cur.Lexeme)
		p.next()
		return ast.NewInferSizeExpr(u.Arena, p.rangeFrom(start))
	}
}

// canStartAggBody disambiguates `Name {` as an aggregate literal header
// versus the `{` of an enclosing if/for block when Name is used as a bare
// condition, matching spec.md §3.2's `Agg` expression kind. Condition
// parsing sets p.noAgg so `if flag { ... }` parses flag as a bare Var
// rather than swallowing the block as an aggregate body.
func (p *Parser) canStartAggBody() bool { return !p.noAgg }

func (p *Parser) parseAggLiteral(u *ast.Unit, start token.Token, t ast.Type) ast.Expr {
	p.next() // {
	var fields []ast.AggField
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		name := p.cur.Lexeme
		p.next()
		p.expect(token.COLON, "':'")
		val := p.parseExpr(u, lowest)
		fields = append(fields, ast.AggField{Name: name, Value: val})
		if p.cur.Kind == token.COMMA {
			p.next()
		}
	}
	p.expect(token.RBRACE, "'}'")
	return ast.NewAggExpr(u.Arena, p.rangeFrom(start), t, fields)
}

func (p *Parser) parseInfix(u *ast.Unit, left ast.Expr, prec int) ast.Expr {
	start := p.cur
	switch p.cur.Kind {
	case token.LPAREN:
		p.next()
		var args []ast.Expr
		for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
			args = append(args, p.parseExpr(u, lowest))
			if p.cur.Kind == token.COMMA {
				p.next()
			}
		}
		p.expect(token.RPAREN, "')'")
		return ast.NewCallExpr(u.Arena, srcrange.Union(left.Range(), p.rangeFrom(start)), left, args)
	case token.LBRACKET:
		p.next()
		idx := p.parseExpr(u, lowest)
		p.expect(token.RBRACKET, "']'")
		return ast.NewIndexExpr(u.Arena, srcrange.Union(left.Range(), p.rangeFrom(start)), left, idx)
	case token.DOT:
		p.next()
		field := p.cur.Lexeme
		p.next()
		return ast.NewAccessExpr(u.Arena, srcrange.Union(left.Range(), p.rangeFrom(start)), left, field)
	case token.AS:
		p.next()
		t := p.parseType(u)
		return ast.NewCastExpr(u.Arena, srcrange.Union(left.Range(), t.Range()), left, t)
	case token.IS:
		p.next()
		t := p.parseType(u)
		return ast.NewTestExpr(u.Arena, srcrange.Union(left.Range(), t.Range()), left, t)
	case token.BANG:
		p.next()
		return ast.NewEffExpr(u.Arena, srcrange.Union(left.Range(), p.rangeFrom(start)), left)
	case token.OF:
		// `Name of T` — property-of-type access (spec.md §4.5.1's
		// "of (enum/property access)"; SPEC_FULL.md §4 fully specifies the
		// enum case). Name must be a bare identifier on the left.
		p.next()
		t := p.parseType(u)
		name := ""
		if v, ok := left.(*ast.VarExpr); ok {
			name = v.Name
		} else {
			p.errorf(start, "'of' requires a bare name on its left")
		}
		return ast.NewPropExpr(u.Arena, srcrange.Union(left.Range(), t.Range()), t, name)
	case token.OROR:
		p.next()
		right := p.parseExpr(u, orPrec+1)
		return ast.NewLBinExpr(u.Arena, srcrange.Union(left.Range(), right.Range()), ast.LBinOrOr, left, right)
	case token.ANDAND:
		p.next()
		right := p.parseExpr(u, andPrec+1)
		return ast.NewLBinExpr(u.Arena, srcrange.Union(left.Range(), right.Range()), ast.LBinAndAnd, left, right)
	default:
		op, ok := binOpFor(p.cur.Kind)
		if !ok {
			p.errorf(p.cur, "unexpected infix token %q", p.cur.Lexeme)
			p.next()
			return left
		}
		p.next()
		right := p.parseExpr(u, prec+1)
		return ast.NewBinExpr(u.Arena, srcrange.Union(left.Range(), right.Range()), op, left, right)
	}
}

func binOpFor(k token.Kind) (ast.BinOp, bool) {
	switch k {
	case token.PLUS:
		return ast.BinAdd, true
	case token.MINUS:
		return ast.BinSub, true
	case token.STAR:
		return ast.BinMul, true
	case token.SLASH:
		return ast.BinDiv, true
	case token.EQ:
		return ast.BinEq, true
	case token.NE:
		return ast.BinNe, true
	case token.LT:
		return ast.BinLt, true
	case token.LE:
		return ast.BinLe, true
	case token.GT:
		return ast.BinGt, true
	case token.GE:
		return ast.BinGe, true
	case token.AMP:
		return ast.BinBAnd, true
	case token.PIPE:
		return ast.BinBOr, true
	case token.SHL:
		return ast.BinShl, true
	case token.SHR:
		return ast.BinShr, true
	default:
		return 0, false
	}
}
