package parser

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/token"
)

func diagSpan(start, end token.Token) diag.Span {
	return diag.Span{Start: start.Start, End: end.End}
}

// parseStmt parses one statement. On return p.cur sits on the last token
// consumed — never advanced past it; callers (parseBlock, ParseProgram)
// own advancing to whatever follows.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Type {
	case token.FN:
		return p.parseFunctionDecl(false)
	case token.LET:
		return p.parseVarDecl(false)
	case token.VAR:
		return p.parseVarDecl(true)
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		tok := p.cur
		return &ast.BreakStmt{Tok: tok, Sp: diagSpan(tok, tok)}
	case token.CONTINUE:
		tok := p.cur
		return &ast.ContinueStmt{Tok: tok, Sp: diagSpan(tok, tok)}
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseSimpleStmt()
	}
}

// parseSimpleStmt dispatches an expression-leading statement into plain
// ExprStmt, assignment, compound-assignment, or increment/decrement, by
// parsing the left-hand expression once and inspecting what follows.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	tok := p.cur
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	switch p.peek.Type {
	case token.ASSIGN:
		p.advance() // cur = '='
		p.advance() // cur = first token of value
		val := p.parseExpression(LOWEST)
		return &ast.AssignStmt{Tok: tok, Target: expr, Value: val, Sp: diagSpan(tok, p.cur)}
	case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN:
		opTok := p.peek
		p.advance()
		p.advance()
		val := p.parseExpression(LOWEST)
		return &ast.CompoundAssignStmt{Tok: tok, Op: opTok.Type, Target: expr, Value: val, Sp: diagSpan(tok, p.cur)}
	case token.PLUS_PLUS:
		p.advance() // cur = '++'
		return &ast.IncDecStmt{Tok: tok, Target: expr, Inc: true, Sp: diagSpan(tok, p.cur)}
	case token.MINUS_MINUS:
		p.advance() // cur = '--'
		return &ast.IncDecStmt{Tok: tok, Target: expr, Inc: false, Sp: diagSpan(tok, p.cur)}
	default:
		return &ast.ExprStmt{Tok: tok, X: expr, Sp: expr.Span()}
	}
}

// parseBlock parses `{ stmt... }`, leaving p.cur on the closing '}'.
func (p *Parser) parseBlock() *ast.Block {
	tok := p.cur // '{'
	b := &ast.Block{Tok: tok}
	p.advance() // cur = first stmt token, or '}'
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			p.advance()
			continue
		}
		s := p.parseStmt()
		if s != nil {
			b.Stmts = append(b.Stmts, s)
			p.advance()
		} else {
			p.synchronize()
		}
	}
	b.Sp = diagSpan(tok, p.cur)
	return b
}

func (p *Parser) parseVarDecl(mutable bool) ast.Stmt {
	tok := p.cur // let/var
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Lexeme
	d := &ast.VarDecl{Tok: tok, Name: name, Mutable: mutable}
	if p.peekIs(token.COLON) {
		p.advance() // cur = ':'
		p.advance() // cur = first token of type
		d.Type = p.parseTypeRef()
		if d.Type == nil {
			return nil
		}
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.advance() // cur = first token of value
	d.Value = p.parseExpression(LOWEST)
	if d.Value == nil {
		return nil
	}
	d.Sp = diagSpan(tok, p.cur)
	return d
}

func (p *Parser) parseIfStmt() ast.Stmt {
	tok := p.cur
	p.advance() // cur = first token of condition
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	then := p.parseBlock() // cur = '}'
	s := &ast.IfStmt{Tok: tok, Cond: cond, Then: then}
	if p.peekIs(token.ELSE) {
		p.advance() // cur = 'else'
		p.advance() // cur = 'if' or '{'
		if p.curIs(token.IF) {
			s.Else = p.parseIfStmt()
		} else if p.curIs(token.LBRACE) {
			s.Else = p.parseBlock()
		} else {
			p.errorf(diag.ErrParse, p.cur, "expected 'if' or '{' after 'else', got %s", p.cur.Type)
			return nil
		}
	}
	s.Sp = diagSpan(tok, p.cur)
	return s
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	tok := p.cur
	p.advance() // cur = first token of condition
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlock() // cur = '}'
	return &ast.WhileStmt{Tok: tok, Cond: cond, Body: body, Sp: diagSpan(tok, p.cur)}
}

// parseForStmt parses both the C-style `for init; cond; post { }` form and
// the `for name in iterable { }` form, disambiguated by whether the
// identifier after `for` is followed by `in`.
func (p *Parser) parseForStmt() ast.Stmt {
	tok := p.cur
	if p.peekIs(token.IDENT) {
		save, savedCur, savedPeek := p.pos, p.cur, p.peek
		p.advance() // cur = IDENT
		name := p.cur.Lexeme
		if p.peekIs(token.IN) {
			p.advance() // cur = 'in'
			p.advance() // cur = first token of iterable
			iterable := p.parseExpression(LOWEST)
			if iterable == nil {
				return nil
			}
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			body := p.parseBlock()
			return &ast.ForInStmt{Tok: tok, Name: name, Iterable: iterable, Body: body, Sp: diagSpan(tok, p.cur)}
		}
		// Not a for-in: rewind and fall through to the C-style parse.
		p.pos, p.cur, p.peek = save, savedCur, savedPeek
	}

	p.advance() // cur = first token of init, or ';'
	f := &ast.ForStmt{Tok: tok}
	if !p.curIs(token.SEMICOLON) {
		f.Init = p.parseSimpleStmt()
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
	}
	p.advance() // cur = first token of condition, or ';'
	if !p.curIs(token.SEMICOLON) {
		f.Cond = p.parseExpression(LOWEST)
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
	}
	p.advance() // cur = first token of post, or '{'
	if !p.curIs(token.LBRACE) {
		f.Post = p.parseSimpleStmt()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
	}
	f.Body = p.parseBlock() // cur = '}'
	f.Sp = diagSpan(tok, p.cur)
	return f
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	tok := p.cur
	s := &ast.ReturnStmt{Tok: tok}
	if p.peekIs(token.SEMICOLON) || p.peekIs(token.RBRACE) || p.peekIs(token.EOF) {
		s.Sp = diagSpan(tok, tok)
		return s
	}
	p.advance() // cur = first token of return value
	s.Value = p.parseExpression(LOWEST)
	s.Sp = diagSpan(tok, p.cur)
	return s
}
