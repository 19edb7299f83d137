// Package token defines the lexical tokens produced by the lexer and
// consumed by the parser.
package token

import "fmt"

// Type identifies the lexical class of a Token.
type Type int

const (
	ILLEGAL Type = iota
	EOF
	NEWLINE
	COMMENT
	DOC_COMMENT

	// Literals
	IDENT
	NUMBER
	STRING
	TRUE
	FALSE
	NULL

	// Keywords
	LET
	VAR
	FN
	TYPE
	IMPORT
	EXPORT
	EXTERN
	AS
	FROM
	IF
	ELSE
	WHILE
	FOR
	IN
	RETURN
	BREAK
	CONTINUE
	MATCH
	TRAIT
	IMPL

	// Operators & punctuation
	PLUS         // +
	PLUS_PLUS    // ++
	PLUS_ASSIGN  // +=
	MINUS        // -
	MINUS_MINUS  // --
	MINUS_ASSIGN // -=
	ARROW        // ->
	STAR         // *
	STAR_ASSIGN  // *=
	SLASH        // /
	SLASH_ASSIGN // /=
	PERCENT      // %
	PERCENT_ASSIGN

	ASSIGN // =
	FAT_ARROW // =>
	EQ        // ==
	NOT_EQ    // !=
	LT        // <
	LTE       // <=
	GT        // >
	GTE       // >=
	BANG      // !
	AND_AND   // &&
	OR_OR     // ||
	QUESTION  // ?

	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	COLON
	SEMICOLON
	DOT
	ELLIPSIS // ...
	PIPE     // | (union types)
	AMP      // & (intersection types)
)

var names = map[Type]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", NEWLINE: "NEWLINE", COMMENT: "COMMENT",
	DOC_COMMENT: "DOC_COMMENT", IDENT: "IDENT", NUMBER: "NUMBER", STRING: "STRING",
	TRUE: "true", FALSE: "false", NULL: "null",
	LET: "let", VAR: "var", FN: "fn", TYPE: "type", IMPORT: "import",
	EXPORT: "export", EXTERN: "extern", AS: "as", FROM: "from",
	IF: "if", ELSE: "else", WHILE: "while", FOR: "for", IN: "in",
	RETURN: "return", BREAK: "break", CONTINUE: "continue", MATCH: "match",
	TRAIT: "trait", IMPL: "impl",
	PLUS: "+", PLUS_PLUS: "++", PLUS_ASSIGN: "+=",
	MINUS: "-", MINUS_MINUS: "--", MINUS_ASSIGN: "-=", ARROW: "->",
	STAR: "*", STAR_ASSIGN: "*=", SLASH: "/", SLASH_ASSIGN: "/=",
	PERCENT: "%", PERCENT_ASSIGN: "%=",
	ASSIGN: "=", FAT_ARROW: "=>", EQ: "==", NOT_EQ: "!=",
	LT: "<", LTE: "<=", GT: ">", GTE: ">=", BANG: "!",
	AND_AND: "&&", OR_OR: "||", QUESTION: "?",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", COMMA: ",", COLON: ":", SEMICOLON: ";",
	DOT: ".", ELLIPSIS: "...", PIPE: "|", AMP: "&",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

var keywords = map[string]Type{
	"let": LET, "var": VAR, "fn": FN, "type": TYPE,
	"import": IMPORT, "export": EXPORT, "extern": EXTERN, "as": AS, "from": FROM,
	"if": IF, "else": ELSE, "while": WHILE, "for": FOR, "in": IN,
	"return": RETURN, "break": BREAK, "continue": CONTINUE, "match": MATCH,
	"true": TRUE, "false": FALSE, "null": NULL,
	"trait": TRAIT, "impl": IMPL,
}

// LookupIdent returns the keyword Type for ident, or IDENT if it isn't one.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Token is a single lexical token with its source position.
type Token struct {
	Type    Type
	Lexeme  string      // exact source text
	Literal interface{} // decoded literal value (float64, string, ...), when applicable
	Start   int         // byte offset of first byte
	End     int         // byte offset one past the last byte
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}
