package lexer

import (
	"testing"

	"github.com/atlas-lang/atlas/internal/token"
)

func TestNextTokenOperators(t *testing.T) {
	input := `let x = 1 + 2 - 3 * 4 / 5 % 6
x += 1
x -= 1
x *= 1
x /= 1
x %= 1
x++
x--
fn f() -> Int { x }
if x == 1 && y != 2 || z <= 3 { }
match x { _ => 1 }`

	l := New(input)
	toks, diags := l.Tokenize()
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	want := []token.Type{
		token.LET, token.IDENT, token.ASSIGN, token.NUMBER, token.PLUS, token.NUMBER,
		token.MINUS, token.NUMBER, token.STAR, token.NUMBER, token.SLASH, token.NUMBER,
		token.PERCENT, token.NUMBER, token.NEWLINE,
		token.IDENT, token.PLUS_ASSIGN, token.NUMBER, token.NEWLINE,
		token.IDENT, token.MINUS_ASSIGN, token.NUMBER, token.NEWLINE,
		token.IDENT, token.STAR_ASSIGN, token.NUMBER, token.NEWLINE,
		token.IDENT, token.SLASH_ASSIGN, token.NUMBER, token.NEWLINE,
		token.IDENT, token.PERCENT_ASSIGN, token.NUMBER, token.NEWLINE,
		token.IDENT, token.PLUS_PLUS, token.NEWLINE,
		token.IDENT, token.MINUS_MINUS, token.NEWLINE,
		token.FN, token.IDENT, token.LPAREN, token.RPAREN, token.ARROW, token.IDENT, token.LBRACE, token.IDENT, token.RBRACE, token.NEWLINE,
		token.IF, token.IDENT, token.EQ, token.NUMBER, token.AND_AND, token.IDENT, token.NOT_EQ, token.NUMBER, token.OR_OR, token.IDENT, token.LTE, token.NUMBER, token.LBRACE, token.RBRACE, token.NEWLINE,
		token.MATCH, token.IDENT, token.LBRACE, token.IDENT, token.FAT_ARROW, token.NUMBER, token.RBRACE,
		token.EOF,
	}

	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s (%v)", i, toks[i].Type, w, toks[i])
		}
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"hello\nworld\t\"q\""`)
	toks, diags := l.Tokenize()
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if toks[0].Type != token.STRING {
		t.Fatalf("expected STRING, got %s", toks[0].Type)
	}
	got := toks[0].Literal.(string)
	want := "hello\nworld\t\"q\""
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInvalidEscapeContinuesLexing(t *testing.T) {
	l := New(`"bad\qend"`)
	toks, diags := l.Tokenize()
	if !diags.HasErrors() {
		t.Fatalf("expected an AT1003 diagnostic for invalid escape")
	}
	if diags[0].Code != "AT1003" {
		t.Errorf("got code %s, want AT1003", diags[0].Code)
	}
	if toks[0].Type != token.STRING {
		t.Fatalf("lexer should still emit a STRING token, got %s", toks[0].Type)
	}
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"42", 42},
		{"3.14", 3.14},
		{"1.5e-3", 1.5e-3},
		{"2E+10", 2e10},
		{"0.001", 0.001},
	}
	for _, c := range cases {
		l := New(c.input)
		toks, diags := l.Tokenize()
		if diags.HasErrors() {
			t.Fatalf("%q: unexpected diagnostics: %v", c.input, diags)
		}
		if toks[0].Type != token.NUMBER {
			t.Fatalf("%q: expected NUMBER, got %s", c.input, toks[0].Type)
		}
		if toks[0].Literal.(float64) != c.want {
			t.Errorf("%q: got %v, want %v", c.input, toks[0].Literal, c.want)
		}
	}
}

func TestBadExponentIsDiagnosed(t *testing.T) {
	l := New("1.5e")
	_, diags := l.Tokenize()
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic for exponent with no digits")
	}
}

func TestUnexpectedCharacterContinues(t *testing.T) {
	l := New("let x = 1 @ 2")
	toks, diags := l.Tokenize()
	if !diags.HasErrors() {
		t.Fatalf("expected AT1001 diagnostic")
	}
	if diags[0].Code != "AT1001" {
		t.Errorf("got code %s, want AT1001", diags[0].Code)
	}
	// Lexing must continue past the bad character to EOF.
	if toks[len(toks)-1].Type != token.EOF {
		t.Fatalf("lexer stopped early: %v", toks)
	}
}

func TestLineCommentSkippedByDefault(t *testing.T) {
	l := New("let x = 1 // trailing comment\nlet y = 2")
	toks, _ := l.Tokenize()
	for _, tk := range toks {
		if tk.Type == token.COMMENT || tk.Type == token.DOC_COMMENT {
			t.Fatalf("comment token leaked through when PreserveComments is false: %v", tk)
		}
	}
}

func TestDocCommentPreserved(t *testing.T) {
	l := New("/// docs\nfn f() {}")
	l.PreserveComments = true
	toks, _ := l.Tokenize()
	if toks[0].Type != token.DOC_COMMENT {
		t.Fatalf("expected first token to be DOC_COMMENT, got %s", toks[0].Type)
	}
	if toks[0].Lexeme != " docs" {
		t.Errorf("got lexeme %q, want %q", toks[0].Lexeme, " docs")
	}
}

func TestBlockCommentNestingUnaware(t *testing.T) {
	l := New("/* outer /* inner */ still_code */")
	toks, diags := l.Tokenize()
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	// The first */ closes the comment, so "still_code" and the trailing
	// "*/" are lexed as real tokens.
	if toks[0].Type != token.IDENT || toks[0].Lexeme != "still_code" {
		t.Fatalf("expected nesting-unaware close to leave 'still_code' as code, got %v", toks[:2])
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := New("/* never closed")
	_, diags := l.Tokenize()
	if !diags.HasErrors() {
		t.Fatalf("expected AT1004 diagnostic")
	}
	if diags[0].Code != "AT1004" {
		t.Errorf("got code %s, want AT1004", diags[0].Code)
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	l := New("let var fn type import export extern as from if else while for in return break continue match trait impl true false null foo_bar")
	toks, _ := l.Tokenize()
	want := []token.Type{
		token.LET, token.VAR, token.FN, token.TYPE, token.IMPORT, token.EXPORT, token.EXTERN,
		token.AS, token.FROM, token.IF, token.ELSE, token.WHILE, token.FOR, token.IN,
		token.RETURN, token.BREAK, token.CONTINUE, token.MATCH, token.TRAIT, token.IMPL,
		token.TRUE, token.FALSE, token.NULL, token.IDENT, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}
