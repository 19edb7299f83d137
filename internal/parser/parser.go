// Package parser turns a token stream into an AST: statements by
// recursive descent, expressions by Pratt precedence climbing, and a
// separate mini-Pratt for type expressions. The cursor
// discipline (curToken/peekToken, prefix/infix function tables,
// expectPeek) follows a classic Pratt-parser cursor discipline.
package parser

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/token"
)

// Precedence levels, lowest to highest.
const (
	LOWEST = iota
	OR
	AND
	EQUALITY
	COMPARISON
	TERM
	FACTOR
	UNARY
	CALL // call / index / member / try
)

var precedences = map[token.Type]int{
	token.OR_OR:   OR,
	token.AND_AND: AND,
	token.EQ:      EQUALITY,
	token.NOT_EQ:  EQUALITY,
	token.LT:      COMPARISON,
	token.LTE:     COMPARISON,
	token.GT:      COMPARISON,
	token.GTE:     COMPARISON,
	token.PLUS:    TERM,
	token.MINUS:   TERM,
	token.STAR:    FACTOR,
	token.SLASH:   FACTOR,
	token.PERCENT: FACTOR,
	token.LPAREN:  CALL,
	token.LBRACKET: CALL,
	token.DOT:     CALL,
	token.QUESTION: CALL,
}

// statementStarters are the keywords error recovery resynchronizes on
//.
var statementStarters = map[token.Type]bool{
	token.FN:     true,
	token.LET:    true,
	token.VAR:    true,
	token.IF:     true,
	token.WHILE:  true,
	token.FOR:    true,
	token.RETURN: true,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parser consumes a token slice (already filtered of comments) and
// produces a *ast.Program plus accumulated diagnostics. It never loops on
// EOF: every recovery path advances the cursor at least one token.
type Parser struct {
	tokens []token.Token
	pos    int

	cur  token.Token
	peek token.Token

	diags diag.List

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New creates a Parser over tokens, which must end with an EOF token (as
// produced by lexer.Tokenize with PreserveComments off).
func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	p.prefixFns = map[token.Type]prefixParseFn{
		token.NUMBER:   p.parseLiteral,
		token.STRING:   p.parseLiteral,
		token.TRUE:     p.parseLiteral,
		token.FALSE:    p.parseLiteral,
		token.NULL:     p.parseLiteral,
		token.IDENT:    p.parseIdent,
		token.BANG:     p.parseUnary,
		token.MINUS:    p.parseUnary,
		token.LPAREN:   p.parseGroup,
		token.LBRACKET: p.parseArrayLiteral,
		token.MATCH:    p.parseMatchExpr,
	}
	p.infixFns = map[token.Type]infixParseFn{
		token.PLUS:     p.parseBinary,
		token.MINUS:    p.parseBinary,
		token.STAR:     p.parseBinary,
		token.SLASH:    p.parseBinary,
		token.PERCENT:  p.parseBinary,
		token.EQ:       p.parseBinary,
		token.NOT_EQ:   p.parseBinary,
		token.LT:       p.parseBinary,
		token.LTE:      p.parseBinary,
		token.GT:       p.parseBinary,
		token.GTE:      p.parseBinary,
		token.AND_AND:  p.parseBinary,
		token.OR_OR:    p.parseBinary,
		token.LPAREN:   p.parseCall,
		token.LBRACKET: p.parseIndex,
		token.DOT:      p.parseMember,
		token.QUESTION:  p.parseTry,
	}
	// Prime cur/peek.
	p.pos = -1
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.pos++
	if p.pos < len(p.tokens) {
		p.peek = p.tokens[p.pos]
	}
	// Skip over newline tokens transparently; Atlas statements are
	// terminated by `;` or block structure, not significant whitespace.
	for p.peek.Type == token.NEWLINE && p.pos+1 < len(p.tokens) {
		p.pos++
		p.peek = p.tokens[p.pos]
	}
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekIs(t) {
		p.advance()
		return true
	}
	p.errorf(diag.ErrParse, p.peek, "expected %s, got %s", t, p.peek.Type)
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) errorf(code diag.Code, tok token.Token, format string, args ...interface{}) {
	p.diags = append(p.diags, diag.New(code, diag.Span{Start: tok.Start, End: tok.End}, format, args...))
}

func (p *Parser) span(startTok token.Token) diag.Span {
	return diag.Span{Start: startTok.Start, End: p.cur.End}
}

// Diagnostics returns every diagnostic accumulated while parsing.
func (p *Parser) Diagnostics() diag.List { return p.diags }

// ParseProgram parses the whole token stream into a Program, recovering
// at statement boundaries after each parse error so a single malformed
// statement doesn't abort the rest of the file.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			p.advance()
			continue
		}
		item := p.parseItem()
		if item != nil {
			prog.Items = append(prog.Items, item)
			p.advance()
		} else {
			p.synchronize()
		}
	}
	return prog
}

// synchronize advances until a `;` or a statement-starter keyword, never
// looping on EOF.
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			return
		}
		if statementStarters[p.peek.Type] {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *Parser) parseItem() ast.Item {
	switch p.cur.Type {
	case token.IMPORT:
		return p.parseImport()
	case token.EXPORT:
		return p.parseExport()
	case token.EXTERN:
		return p.parseExtern()
	case token.TYPE:
		return p.parseTypeAlias()
	case token.TRAIT:
		return p.parseTrait()
	case token.IMPL:
		return p.parseImpl()
	default:
		return p.parseStmt()
	}
}
