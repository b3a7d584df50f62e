package parser

import (
	"github.com/biron-lang/bironc/internal/ast"
	"github.com/biron-lang/bironc/internal/token"
)

// parseStmt parses one statement inside a block (spec.md §3.2/§6.2).
func (p *Parser) parseStmt(u *ast.Unit) ast.Stmt {
	switch p.cur.Kind {
	case token.LBRACE:
		return p.parseBlock(u)
	case token.RETURN:
		return p.parseReturnStmt(u)
	case token.DEFER:
		return p.parseDeferStmt(u)
	case token.BREAK:
		start := p.cur
		p.next()
		p.skipSemi()
		return ast.NewBreakStmt(u.Arena, p.rangeFrom(start))
	case token.CONTINUE:
		start := p.cur
		p.next()
		p.skipSemi()
		return ast.NewContinueStmt(u.Arena, p.rangeFrom(start))
	case token.IF:
		return p.parseIfStmt(u)
	case token.FOR:
		return p.parseForStmt(u)
	case token.LET:
		s := p.parseLetStmt(u, nil)
		return s
	case token.USING:
		return p.parseUsingStmt(u)
	case token.AT:
		attrs := p.parseAttrs(u)
		if p.cur.Kind == token.LET {
			return p.parseLetStmt(u, attrs)
		}
		p.errorf(p.cur, "attributes must precede a let statement here")
		return p.parseExprOrAssignStmt(u)
	case token.SEMI:
		p.next()
		return nil
	default:
		return p.parseExprOrAssignStmt(u)
	}
}

func (p *Parser) skipSemi() {
	if p.cur.Kind == token.SEMI {
		p.next()
	}
}

func (p *Parser) parseReturnStmt(u *ast.Unit) ast.Stmt {
	start := p.cur
	p.next() // return
	var val ast.Expr
	if p.cur.Kind != token.SEMI && p.cur.Kind != token.RBRACE {
		val = p.parseExpr(u, lowest)
	}
	p.skipSemi()
	return ast.NewReturnStmt(u.Arena, p.rangeFrom(start), val)
}

func (p *Parser) parseDeferStmt(u *ast.Unit) ast.Stmt {
	start := p.cur
	p.next() // defer
	body := p.parseStmt(u)
	return ast.NewDeferStmt(u.Arena, p.rangeFrom(start), body)
}

// parseCondExpr parses an if/for condition with aggregate-literal parsing
// suppressed, so `if flag { ... }` doesn't swallow the block as an Agg
// body (see parser_expr.go's canStartAggBody).
func (p *Parser) parseCondExpr(u *ast.Unit) ast.Expr {
	prev := p.noAgg
	p.noAgg = true
	e := p.parseExpr(u, lowest)
	p.noAgg = prev
	return e
}

func (p *Parser) parseIfStmt(u *ast.Unit) ast.Stmt {
	start := p.cur
	p.next() // if

	var init ast.Stmt
	cond := p.parseCondExpr(u)
	if p.cur.Kind == token.SEMI {
		// `if init; cond { ... }`: what we parsed as cond was actually init.
		init = p.exprToStmt(u, cond)
		p.next()
		cond = p.parseCondExpr(u)
	}

	then := p.parseBlock(u)
	var elseBranch ast.Stmt
	if p.cur.Kind == token.ELSE {
		p.next()
		if p.cur.Kind == token.IF {
			elseBranch = p.parseIfStmt(u)
		} else {
			elseBranch = p.parseBlock(u)
		}
	}
	return ast.NewIfStmt(u.Arena, p.rangeFrom(start), init, cond, then, elseBranch)
}

// exprToStmt wraps a bare expression parsed speculatively as an if/for
// init clause into an ExprStmt.
func (p *Parser) exprToStmt(u *ast.Unit, e ast.Expr) ast.Stmt {
	return ast.NewExprStmt(u.Arena, e.Range(), e)
}

func (p *Parser) parseForStmt(u *ast.Unit) ast.Stmt {
	start := p.cur
	p.next() // for

	if p.cur.Kind == token.LBRACE {
		body := p.parseBlock(u)
		return ast.NewForStmt(u.Arena, p.rangeFrom(start), nil, nil, nil, body, nil)
	}

	var init ast.Stmt
	var cond ast.Expr
	var post ast.Stmt

	// Try bare `for cond { }` first; disambiguate against the 3-clause
	// `for init; cond; post { }` form by checking for a following SEMI.
	first := p.parseForClauseExpr(u)
	switch p.cur.Kind {
	case token.SEMI:
		init = p.exprToStmt(u, first)
		p.next()
		if p.cur.Kind != token.SEMI {
			cond = p.parseCondExpr(u)
		}
		p.expect(token.SEMI, "';'")
		if p.cur.Kind != token.LBRACE {
			post = p.parseSimpleStmt(u)
		}
	default:
		cond = first
	}

	body := p.parseBlock(u)
	var elseBody *ast.BlockStmt
	if p.cur.Kind == token.ELSE {
		p.next()
		elseBody = p.parseBlock(u)
	}
	return ast.NewForStmt(u.Arena, p.rangeFrom(start), init, cond, post, body, elseBody)
}

// parseForClauseExpr parses the first clause of a for-loop header with Agg
// literals suppressed, exactly like an if/for condition.
func (p *Parser) parseForClauseExpr(u *ast.Unit) ast.Expr {
	return p.parseCondExpr(u)
}

// parseSimpleStmt parses the post-clause of a for loop: either a bare
// expression or an assignment, with no trailing semicolon consumed (the
// caller is responsible for the loop header's `{`).
func (p *Parser) parseSimpleStmt(u *ast.Unit) ast.Stmt {
	start := p.cur
	e := p.parseCondExpr(u)
	if op, ok := assignOpFor(p.cur.Kind); ok {
		p.next()
		rhs := p.parseCondExpr(u)
		return ast.NewAssignStmt(u.Arena, p.rangeFrom(start), op, e, rhs)
	}
	return ast.NewExprStmt(u.Arena, p.rangeFrom(start), e)
}

func (p *Parser) parseLetStmt(u *ast.Unit, attrs []ast.Attr) ast.Stmt {
	start := p.cur
	p.next() // let
	name := p.cur.Lexeme
	p.next()
	var anno ast.Type
	if p.cur.Kind == token.COLON {
		p.next()
		anno = p.parseType(u)
	}
	var val ast.Expr
	if p.cur.Kind == token.ASSIGN {
		p.next()
		val = p.parseExpr(u, lowest)
	}
	p.skipSemi()
	return ast.NewLetStmt(u.Arena, p.rangeFrom(start), name, anno, val, attrs)
}

func (p *Parser) parseUsingStmt(u *ast.Unit) ast.Stmt {
	start := p.cur
	p.next() // using
	name := p.cur.Lexeme
	p.next()
	effectName := ""
	if p.cur.Kind == token.COLON {
		p.next()
		effectName = p.cur.Lexeme
		p.next()
	}
	p.skipSemi()
	return ast.NewUsingStmt(u.Arena, p.rangeFrom(start), name, effectName)
}

func (p *Parser) parseExprOrAssignStmt(u *ast.Unit) ast.Stmt {
	start := p.cur
	e := p.parseExpr(u, lowest)
	if op, ok := assignOpFor(p.cur.Kind); ok {
		p.next()
		rhs := p.parseExpr(u, lowest)
		p.skipSemi()
		return ast.NewAssignStmt(u.Arena, p.rangeFrom(start), op, e, rhs)
	}
	p.skipSemi()
	return ast.NewExprStmt(u.Arena, p.rangeFrom(start), e)
}

func assignOpFor(k token.Kind) (ast.AssignOp, bool) {
	switch k {
	case token.ASSIGN:
		return ast.AssignSet, true
	case token.PLUS_ASSIGN:
		return ast.AssignAdd, true
	case token.MINUS_ASSIGN:
		return ast.AssignSub, true
	case token.STAR_ASSIGN:
		return ast.AssignMul, true
	case token.SLASH_ASSIGN:
		return ast.AssignDiv, true
	default:
		return 0, false
	}
}
