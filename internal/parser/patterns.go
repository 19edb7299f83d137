package parser

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/token"
)

// parsePattern parses one match-arm pattern, including trailing `| alt`
// alternatives, leaving p.cur on the pattern's last token.
func (p *Parser) parsePattern() ast.Pattern {
	left := p.parsePatternPrimary()
	if left == nil {
		return nil
	}
	if !p.peekIs(token.PIPE) {
		return left
	}
	alts := []ast.Pattern{left}
	for p.peekIs(token.PIPE) {
		p.advance() // cur = '|'
		p.advance() // cur = first token of next alternative
		alt := p.parsePatternPrimary()
		if alt == nil {
			return nil
		}
		alts = append(alts, alt)
	}
	return &ast.OrPattern{Tok: tokenOfPattern(left), Alternatives: alts, Sp: diagSpan(tokenOfPattern(alts[0]), p.cur)}
}

func (p *Parser) parsePatternPrimary() ast.Pattern {
	tok := p.cur
	switch tok.Type {
	case token.NUMBER:
		return &ast.LiteralPattern{Tok: tok, Value: tok.Literal.(float64), Sp: diagSpan(tok, tok)}
	case token.STRING:
		return &ast.LiteralPattern{Tok: tok, Value: tok.Literal.(string), Sp: diagSpan(tok, tok)}
	case token.TRUE:
		return &ast.LiteralPattern{Tok: tok, Value: true, Sp: diagSpan(tok, tok)}
	case token.FALSE:
		return &ast.LiteralPattern{Tok: tok, Value: false, Sp: diagSpan(tok, tok)}
	case token.NULL:
		return &ast.LiteralPattern{Tok: tok, Value: nil, Sp: diagSpan(tok, tok)}
	case token.MINUS:
		// Negative numeric literal pattern, e.g. `match n { -1 => ... }`.
		if !p.expectPeek(token.NUMBER) {
			return nil
		}
		return &ast.LiteralPattern{Tok: tok, Value: -p.cur.Literal.(float64), Sp: diagSpan(tok, p.cur)}
	case token.IDENT:
		if tok.Lexeme == "_" {
			return &ast.WildcardPattern{Tok: tok, Sp: diagSpan(tok, tok)}
		}
		if p.peekIs(token.LPAREN) {
			return p.parseConstructorPattern()
		}
		return &ast.VariablePattern{Tok: tok, Name: tok.Lexeme, Sp: diagSpan(tok, tok)}
	case token.LBRACKET:
		return p.parseArrayPattern()
	default:
		p.errorf(diag.ErrParse, tok, "unexpected token %s in pattern", tok.Type)
		return nil
	}
}

func (p *Parser) parseConstructorPattern() ast.Pattern {
	tok := p.cur // constructor name
	c := &ast.ConstructorPattern{Tok: tok, Name: tok.Lexeme}
	p.advance() // cur = '('
	p.advance() // cur = first arg pattern, or ')'
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		arg := p.parsePattern()
		if arg == nil {
			return nil
		}
		c.Args = append(c.Args, arg)
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
		} else {
			p.advance() // cur = ')'
			break
		}
	}
	if !p.curIs(token.RPAREN) {
		p.errorf(diag.ErrParse, p.cur, "expected ')' to close constructor pattern, got %s", p.cur.Type)
		return nil
	}
	c.Sp = diagSpan(tok, p.cur)
	return c
}

func (p *Parser) parseArrayPattern() ast.Pattern {
	tok := p.cur // '['
	a := &ast.ArrayPattern{Tok: tok}
	p.advance() // cur = first element pattern, or ']'
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		el := p.parsePattern()
		if el == nil {
			return nil
		}
		a.Elements = append(a.Elements, el)
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
		} else {
			p.advance() // cur = ']'
			break
		}
	}
	if !p.curIs(token.RBRACKET) {
		p.errorf(diag.ErrParse, p.cur, "expected ']' to close array pattern, got %s", p.cur.Type)
		return nil
	}
	a.Sp = diagSpan(tok, p.cur)
	return a
}

// tokenOfPattern recovers a representative token for span-merging OrPattern
// alternatives; only Start is used by diagSpan's caller.
func tokenOfPattern(pat ast.Pattern) token.Token {
	sp := pat.Span()
	return token.Token{Start: sp.Start, End: sp.End}
}
