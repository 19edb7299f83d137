package parser

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/token"
)

// parseTypeParams parses an optional `<T, U>` list, used by function decls,
// type aliases, and trait declarations. Returns nil if no `<` follows cur.
func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.peekIs(token.LT) {
		return nil
	}
	p.advance() // cur = '<'
	var params []ast.TypeParam
	p.advance() // cur = first type-param name, or '>'
	for !p.curIs(token.GT) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.errorf(diag.ErrParse, p.cur, "expected type parameter name, got %s", p.cur.Type)
			return nil
		}
		params = append(params, ast.TypeParam{Name: p.cur.Lexeme})
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
		} else {
			p.advance()
			break
		}
	}
	return params
}

// parseParams parses a parenthesized, possibly-empty parameter list
// `(name: Type, ...rest: Type)`, leaving p.cur on the closing ')'.
func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param
	p.advance() // cur = first param, or ')'
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		variadic := false
		if p.curIs(token.ELLIPSIS) {
			variadic = true
			p.advance()
		}
		if !p.curIs(token.IDENT) {
			p.errorf(diag.ErrParse, p.cur, "expected parameter name, got %s", p.cur.Type)
			return nil
		}
		name := p.cur.Lexeme
		var typ ast.TypeRef
		if p.peekIs(token.COLON) {
			p.advance() // cur = ':'
			p.advance() // cur = first token of type
			typ = p.parseTypeRef()
			if typ == nil {
				return nil
			}
		}
		params = append(params, ast.Param{Name: name, Type: typ, Variadic: variadic})
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
		} else {
			p.advance() // cur = ')'
			break
		}
	}
	return params
}

// parseFunctionDecl parses `fn name<T>(params) -> ReturnType { body }`.
// isExpr is reserved for a future function-expression form; top-level and
// nested statement decls always pass false.
func (p *Parser) parseFunctionDecl(isExpr bool) ast.Stmt {
	tok := p.cur // 'fn'
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Lexeme
	d := &ast.FunctionDecl{Tok: tok, Name: name}
	d.TypeParams = p.parseTypeParams()
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	d.Params = p.parseParams() // cur = ')'
	if !p.curIs(token.RPAREN) {
		p.errorf(diag.ErrParse, p.cur, "expected ')' to close parameter list, got %s", p.cur.Type)
		return nil
	}
	if p.peekIs(token.ARROW) {
		p.advance() // cur = '->'
		p.advance() // cur = first token of return type
		d.ReturnType = p.parseTypeRef()
		if d.ReturnType == nil {
			return nil
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	d.Body = p.parseBlock() // cur = '}'
	d.SetSpan(diagSpan(tok, p.cur))
	return d
}

func (p *Parser) parseImport() ast.Item {
	tok := p.cur // 'import'
	imp := &ast.ImportStmt{Tok: tok}
	if p.peekIs(token.STAR) {
		p.advance() // cur = '*'
		imp.ImportAll = true
		if p.peekIs(token.AS) {
			p.advance() // cur = 'as'
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			imp.Alias = p.cur.Lexeme
		}
		if !p.expectPeek(token.FROM) {
			return nil
		}
	} else if p.peekIs(token.LBRACE) {
		p.advance() // cur = '{'
		p.advance() // cur = first symbol, or '}'
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			if !p.curIs(token.IDENT) {
				p.errorf(diag.ErrParse, p.cur, "expected imported symbol name, got %s", p.cur.Type)
				return nil
			}
			imp.Symbols = append(imp.Symbols, p.cur.Lexeme)
			if p.peekIs(token.COMMA) {
				p.advance()
				p.advance()
			} else {
				p.advance() // cur = '}'
				break
			}
		}
		if !p.curIs(token.RBRACE) {
			p.errorf(diag.ErrParse, p.cur, "expected '}' to close import list, got %s", p.cur.Type)
			return nil
		}
		if !p.expectPeek(token.FROM) {
			return nil
		}
	}
	if !p.expectPeek(token.STRING) {
		return nil
	}
	imp.Path = p.cur.Literal.(string)
	if p.peekIs(token.AS) {
		p.advance() // cur = 'as'
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		imp.Alias = p.cur.Lexeme
	}
	imp.Sp = diagSpan(tok, p.cur)
	return imp
}

func (p *Parser) parseExport() ast.Item {
	tok := p.cur // 'export'
	exp := &ast.ExportStmt{Tok: tok}
	if p.peekIs(token.FN) || p.peekIs(token.LET) || p.peekIs(token.VAR) || p.peekIs(token.TYPE) {
		p.advance() // cur = inner item keyword
		inner := p.parseItem()
		if inner == nil {
			return nil
		}
		switch n := inner.(type) {
		case *ast.FunctionDecl:
			n.Exported = true
			exp.Names = append(exp.Names, n.Name)
			exp.Decl = n
		case *ast.TypeAliasDecl:
			n.Exported = true
			exp.Names = append(exp.Names, n.Name)
			exp.Decl = n
		case *ast.VarDecl:
			n.Exported = true
			exp.Names = append(exp.Names, n.Name)
			exp.Decl = n
		}
		exp.Sp = diagSpan(tok, p.cur)
		return exp
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.advance() // cur = first name, or '}'
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.errorf(diag.ErrParse, p.cur, "expected exported name, got %s", p.cur.Type)
			return nil
		}
		exp.Names = append(exp.Names, p.cur.Lexeme)
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
		} else {
			p.advance() // cur = '}'
			break
		}
	}
	if !p.curIs(token.RBRACE) {
		p.errorf(diag.ErrParse, p.cur, "expected '}' to close export list, got %s", p.cur.Type)
		return nil
	}
	exp.Sp = diagSpan(tok, p.cur)
	return exp
}

func (p *Parser) parseExtern() ast.Item {
	tok := p.cur // 'extern'
	if !p.expectPeek(token.STRING) {
		return nil
	}
	library := p.cur.Literal.(string)
	if !p.expectPeek(token.FN) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Lexeme
	e := &ast.ExternDecl{Tok: tok, Library: library, Name: name}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	e.Params = p.parseParams() // cur = ')'
	if !p.curIs(token.RPAREN) {
		p.errorf(diag.ErrParse, p.cur, "expected ')' to close parameter list, got %s", p.cur.Type)
		return nil
	}
	if p.peekIs(token.ARROW) {
		p.advance()
		p.advance()
		e.ReturnType = p.parseTypeRef()
		if e.ReturnType == nil {
			return nil
		}
	}
	e.Sp = diagSpan(tok, p.cur)
	return e
}

func (p *Parser) parseTypeAlias() ast.Item {
	tok := p.cur // 'type'
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Lexeme
	d := &ast.TypeAliasDecl{Tok: tok, Name: name}
	d.TypeParams = p.parseTypeParams()
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.advance() // cur = first token of target
	d.Target = p.parseTypeRef()
	if d.Target == nil {
		return nil
	}
	d.Sp = diagSpan(tok, p.cur)
	return d
}

func (p *Parser) parseTrait() ast.Item {
	tok := p.cur // 'trait'
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Lexeme
	t := &ast.TraitDecl{Tok: tok, Name: name}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.advance() // cur = 'fn', or '}'
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.FN) {
			p.errorf(diag.ErrParse, p.cur, "expected method signature in trait body, got %s", p.cur.Type)
			return nil
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		m := ast.TraitMethod{Name: p.cur.Lexeme}
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		m.Params = p.parseParams()
		if !p.curIs(token.RPAREN) {
			p.errorf(diag.ErrParse, p.cur, "expected ')' to close parameter list, got %s", p.cur.Type)
			return nil
		}
		if p.peekIs(token.ARROW) {
			p.advance()
			p.advance()
			m.ReturnType = p.parseTypeRef()
			if m.ReturnType == nil {
				return nil
			}
		}
		t.Methods = append(t.Methods, m)
		if p.peekIs(token.SEMICOLON) {
			p.advance()
		}
		p.advance() // cur = next 'fn', or '}'
	}
	if !p.curIs(token.RBRACE) {
		p.errorf(diag.ErrParse, p.cur, "expected '}' to close trait body, got %s", p.cur.Type)
		return nil
	}
	t.Sp = diagSpan(tok, p.cur)
	return t
}

func (p *Parser) parseImpl() ast.Item {
	tok := p.cur // 'impl'
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	first := p.cur.Lexeme
	d := &ast.ImplDecl{Tok: tok}
	if p.peekIs(token.FOR) {
		d.TraitName = first
		p.advance() // cur = 'for'
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		d.TypeName = p.cur.Lexeme
	} else {
		d.TypeName = first
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.advance() // cur = 'fn', or '}'
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.FN) {
			p.errorf(diag.ErrParse, p.cur, "expected method in impl body, got %s", p.cur.Type)
			return nil
		}
		m := p.parseFunctionDecl(false)
		if m == nil {
			return nil
		}
		fn, ok := m.(*ast.FunctionDecl)
		if !ok {
			p.errorf(diag.ErrParse, p.cur, "impl body member is not a function")
			return nil
		}
		d.Methods = append(d.Methods, fn)
		p.advance() // cur = next 'fn', or '}'
	}
	if !p.curIs(token.RBRACE) {
		p.errorf(diag.ErrParse, p.cur, "expected '}' to close impl body, got %s", p.cur.Type)
		return nil
	}
	d.Sp = diagSpan(tok, p.cur)
	return d
}
