package parser

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/token"
)

// Type-expression precedence: union binds loosest, then intersection,
// then primary: `|` < `&` < primary.
const (
	tLowest = iota
	tUnion
	tIntersection
)

// parseTypeRef parses a type expression starting at p.cur, leaving p.cur
// on the last token consumed (mirroring parseExpression's convention).
func (p *Parser) parseTypeRef() ast.TypeRef {
	return p.parseTypeRefPrec(tLowest)
}

func (p *Parser) parseTypeRefPrec(prec int) ast.TypeRef {
	left := p.parseTypePrimary()
	if left == nil {
		return nil
	}
	for {
		switch {
		case p.peekIs(token.PIPE) && prec < tUnion:
			tok := p.peek
			p.advance()
			p.advance()
			right := p.parseTypeRefPrec(tUnion)
			left = &ast.UnionTypeRef{Tok: tok, Members: flattenUnion(left, right), Sp: diag.Merge(left.Span(), right.Span())}
		case p.peekIs(token.AMP) && prec < tIntersection:
			tok := p.peek
			p.advance()
			p.advance()
			right := p.parseTypeRefPrec(tIntersection)
			left = &ast.IntersectionTypeRef{Tok: tok, Members: flattenIntersection(left, right), Sp: diag.Merge(left.Span(), right.Span())}
		default:
			return left
		}
	}
}

func flattenUnion(left, right ast.TypeRef) []ast.TypeRef {
	var out []ast.TypeRef
	if u, ok := left.(*ast.UnionTypeRef); ok {
		out = append(out, u.Members...)
	} else {
		out = append(out, left)
	}
	out = append(out, right)
	return out
}

func flattenIntersection(left, right ast.TypeRef) []ast.TypeRef {
	var out []ast.TypeRef
	if i, ok := left.(*ast.IntersectionTypeRef); ok {
		out = append(out, i.Members...)
	} else {
		out = append(out, left)
	}
	out = append(out, right)
	return out
}

// parseTypePrimary parses one of: `(T,U) -> R` function types, `T[]`
// arrays (postfix), `Name<T1,T2>` generics, `{ field: T, ... }`
// structural, or a bare named type.
func (p *Parser) parseTypePrimary() ast.TypeRef {
	var t ast.TypeRef
	switch p.cur.Type {
	case token.LPAREN:
		t = p.parseFunctionTypeRef()
	case token.LBRACE:
		t = p.parseStructuralTypeRef()
	case token.IDENT:
		t = p.parseNamedOrGenericTypeRef()
	default:
		p.errorf(diag.ErrParse, p.cur, "expected a type, got %s", p.cur.Type)
		return nil
	}
	if t == nil {
		return nil
	}
	for p.peekIs(token.LBRACKET) {
		open := p.peek
		p.advance()
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		t = &ast.ArrayTypeRef{Tok: open, Inner: t, Sp: diagSpan(tokenOf(t), p.cur)}
	}
	return t
}

// tokenOf recovers a representative token for span-merging postfix array
// markers onto an already-built TypeRef.
func tokenOf(t ast.TypeRef) token.Token {
	switch n := t.(type) {
	case *ast.NamedTypeRef:
		return n.Tok
	case *ast.GenericTypeRef:
		return n.Tok
	case *ast.FunctionTypeRef:
		return n.Tok
	case *ast.StructuralTypeRef:
		return n.Tok
	case *ast.ArrayTypeRef:
		return n.Tok
	default:
		return token.Token{Start: t.Span().Start, End: t.Span().End}
	}
}

func (p *Parser) parseFunctionTypeRef() ast.TypeRef {
	tok := p.cur // '('
	ft := &ast.FunctionTypeRef{Tok: tok}
	p.advance()
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		pt := p.parseTypeRef()
		if pt == nil {
			return nil
		}
		ft.Params = append(ft.Params, pt)
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
		} else {
			break
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.advance()
	ft.Return = p.parseTypeRefPrec(tIntersection)
	ft.Sp = diagSpan(tok, p.cur)
	return ft
}

func (p *Parser) parseStructuralTypeRef() ast.TypeRef {
	tok := p.cur // '{'
	st := &ast.StructuralTypeRef{Tok: tok}
	p.advance()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.errorf(diag.ErrParse, p.cur, "expected field name in structural type, got %s", p.cur.Type)
			return nil
		}
		name := p.cur.Lexeme
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.advance()
		ft := p.parseTypeRef()
		if ft == nil {
			return nil
		}
		st.Fields = append(st.Fields, ast.StructuralField{Name: name, Type: ft})
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
		} else {
			break
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	st.Sp = diagSpan(tok, p.cur)
	return st
}

func (p *Parser) parseNamedOrGenericTypeRef() ast.TypeRef {
	tok := p.cur
	name := tok.Lexeme
	if p.peekIs(token.LT) {
		p.advance() // consume '<'
		g := &ast.GenericTypeRef{Tok: tok, Name: name}
		p.advance()
		for !p.curIs(token.GT) && !p.curIs(token.EOF) {
			arg := p.parseTypeRef()
			if arg == nil {
				return nil
			}
			g.Args = append(g.Args, arg)
			if p.peekIs(token.COMMA) {
				p.advance()
				p.advance()
			} else {
				p.advance()
				break
			}
		}
		if !p.curIs(token.GT) {
			p.errorf(diag.ErrParse, p.cur, "expected '>' to close generic argument list, got %s", p.cur.Type)
			return nil
		}
		g.Sp = diagSpan(tok, p.cur)
		return g
	}
	n := &ast.NamedTypeRef{Tok: tok, Name: name, Sp: diag.Span{Start: tok.Start, End: tok.End}}
	return n
}
