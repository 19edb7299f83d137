package parser

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/token"
)

// parseExpression is the Pratt core: prefix functions never advance past
// their own last token; the loop below advances into an operator only
// once precedence says it binds tighter than the caller's floor.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.errorf(diag.ErrParse, p.cur, "unexpected token %s in expression", p.cur.Type)
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}
	for !p.peekIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peek.Type]
		if infix == nil {
			return left
		}
		p.advance()
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseLiteral() ast.Expr {
	tok := p.cur
	var val interface{}
	switch tok.Type {
	case token.NUMBER:
		val = tok.Literal.(float64)
	case token.STRING:
		val = tok.Literal.(string)
	case token.TRUE:
		val = true
	case token.FALSE:
		val = false
	case token.NULL:
		val = nil
	}
	return &ast.Literal{Tok: tok, Value: val, Sp: diag.Span{Start: tok.Start, End: tok.End}}
}

func (p *Parser) parseIdent() ast.Expr {
	tok := p.cur
	return &ast.Ident{Tok: tok, Name: tok.Lexeme, Sp: diag.Span{Start: tok.Start, End: tok.End}}
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.cur
	op := tok.Type
	p.advance() // cur = first token of operand
	x := p.parseExpression(UNARY)
	if x == nil {
		return nil
	}
	return &ast.UnaryExpr{Tok: tok, Op: op, X: x, Sp: diag.Span{Start: tok.Start, End: x.Span().End}}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	tok := p.cur
	op := tok.Type
	precedence := p.curPrecedence()
	p.advance() // cur = first token of right operand
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.BinaryExpr{Tok: tok, Op: op, Left: left, Right: right, Sp: diag.Merge(left.Span(), right.Span())}
}

func (p *Parser) parseGroup() ast.Expr {
	tok := p.cur
	p.advance() // cur = first token inside parens
	x := p.parseExpression(LOWEST)
	if x == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) { // cur = ')'
		return nil
	}
	return &ast.GroupExpr{Tok: tok, X: x, Sp: diag.Span{Start: tok.Start, End: p.cur.End}}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	tok := p.cur
	lit := &ast.ArrayLiteral{Tok: tok}
	p.advance() // cur = first element, or ']'
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		el := p.parseExpression(LOWEST)
		if el == nil {
			return nil
		}
		lit.Elements = append(lit.Elements, el)
		if p.peekIs(token.COMMA) {
			p.advance() // cur = ','
			p.advance() // cur = next element
		} else {
			p.advance() // cur = ']'
			break
		}
	}
	if !p.curIs(token.RBRACKET) {
		p.errorf(diag.ErrParse, p.cur, "expected ']' to close array literal, got %s", p.cur.Type)
		return nil
	}
	lit.Sp = diag.Span{Start: tok.Start, End: p.cur.End}
	return lit
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	tok := p.cur // '('
	call := &ast.CallExpr{Tok: tok, Callee: callee}
	p.advance() // cur = first arg, or ')'
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
		} else {
			p.advance() // cur = ')'
			break
		}
	}
	if !p.curIs(token.RPAREN) {
		p.errorf(diag.ErrParse, p.cur, "expected ')' to close call arguments, got %s", p.cur.Type)
		return nil
	}
	call.Sp = diag.Span{Start: callee.Span().Start, End: p.cur.End}
	return call
}

func (p *Parser) parseIndex(x ast.Expr) ast.Expr {
	tok := p.cur // '['
	p.advance()  // cur = first token of index expr
	idx := p.parseExpression(LOWEST)
	if idx == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) { // cur = ']'
		return nil
	}
	return &ast.IndexExpr{Tok: tok, X: x, Index: idx, Sp: diag.Span{Start: x.Span().Start, End: p.cur.End}}
}

func (p *Parser) parseMember(x ast.Expr) ast.Expr {
	tok := p.cur // '.'
	if !p.expectPeek(token.IDENT) { // cur = field name
		return nil
	}
	name := p.cur.Lexeme
	return &ast.MemberExpr{Tok: tok, X: x, Member: name, Sp: diag.Span{Start: x.Span().Start, End: p.cur.End}}
}

func (p *Parser) parseTry(x ast.Expr) ast.Expr {
	tok := p.cur // '?', already the last token of this postfix expression
	return &ast.TryExpr{Tok: tok, X: x, Sp: diag.Span{Start: x.Span().Start, End: tok.End}}
}

func (p *Parser) parseMatchExpr() ast.Expr {
	tok := p.cur
	m := &ast.MatchExpr{Tok: tok}
	p.advance() // cur = first token of subject
	m.Subject = p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) { // cur = '{'
		return nil
	}
	p.advance() // cur = first token of first pattern, or '}'
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		arm := ast.MatchArm{}
		arm.Pattern = p.parsePattern() // cur ends on last token of pattern
		if arm.Pattern == nil {
			return nil
		}
		if p.peekIs(token.IF) {
			p.advance() // cur = 'if'
			p.advance() // cur = first token of guard
			arm.Guard = p.parseExpression(LOWEST)
		}
		if !p.expectPeek(token.FAT_ARROW) { // cur = '=>'
			return nil
		}
		p.advance() // cur = first token of arm body
		arm.Body = p.parseExpression(LOWEST)
		if arm.Body == nil {
			return nil
		}
		m.Arms = append(m.Arms, arm)
		if p.peekIs(token.COMMA) {
			p.advance() // cur = ','
		}
		p.advance() // cur = start of next arm, or '}'
	}
	m.Sp = diag.Span{Start: tok.Start, End: p.cur.End}
	return m
}
