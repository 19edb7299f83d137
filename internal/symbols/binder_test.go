package symbols

import (
	"testing"

	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/lexer"
	"github.com/atlas-lang/atlas/internal/parser"
)

func bindSource(t *testing.T, src string) (*Table, diag.List) {
	t.Helper()
	toks, ldiags := lexer.New(src).Tokenize()
	if ldiags.HasErrors() {
		t.Fatalf("lex errors: %v", ldiags)
	}
	p := parser.New(toks)
	prog := p.ParseProgram()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse errors: %v", p.Diagnostics())
	}
	return NewBinder().Bind(prog)
}

func TestBindSimpleVariable(t *testing.T) {
	table, diags := bindSource(t, "let x = 42;")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if table.Lookup("x") == nil {
		t.Fatal("x not found")
	}
}

func TestFunctionHoisting(t *testing.T) {
	_, diags := bindSource(t, `
		let x = foo();
		fn foo() -> number { return 42; }
	`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestNestedFunctionResolvesAfterItsDeclaration(t *testing.T) {
	_, diags := bindSource(t, `
		fn outer() -> number {
			fn inner() -> number { return 1; }
			return inner();
		}
	`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestNestedFunctionIsNotHoistedAboveItsDeclaration(t *testing.T) {
	_, diags := bindSource(t, `
		fn outer() -> number {
			let x = inner();
			fn inner() -> number { return 1; }
			return x;
		}
	`)
	if !diags.HasErrors() {
		t.Fatal("expected an unknown-symbol diagnostic referencing inner before its declaration")
	}
}

func TestUnknownSymbol(t *testing.T) {
	_, diags := bindSource(t, "let x = y;")
	if len(diags) != 1 || diags[0].Code != diag.ErrUnknownSymbol {
		t.Fatalf("expected one AT2002, got %v", diags)
	}
}

func TestRedeclarationError(t *testing.T) {
	_, diags := bindSource(t, `
		let x = 1;
		let x = 2;
	`)
	found := false
	for _, d := range diags {
		if d.Code == diag.ErrRedeclared {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AT2003, got %v", diags)
	}
}

func TestScopeShadowingAllowed(t *testing.T) {
	_, diags := bindSource(t, `
		fn outer() -> void {
			let x = 1;
			if (true) {
				let x = 2;
			}
		}
	`)
	if diags.HasErrors() {
		t.Fatalf("shadowing in nested scope should be allowed, got: %v", diags)
	}
}

func TestGlobalPreludeShadowingFunction(t *testing.T) {
	_, diags := bindSource(t, `fn print() -> void { }`)
	if len(diags) != 1 || diags[0].Code != diag.ErrShadowPrelude {
		t.Fatalf("expected AT1012, got %v", diags)
	}
}

func TestGlobalPreludeShadowingVariable(t *testing.T) {
	_, diags := bindSource(t, `let len = 42;`)
	if len(diags) != 1 || diags[0].Code != diag.ErrShadowPrelude {
		t.Fatalf("expected AT1012, got %v", diags)
	}
}

func TestNestedPreludeShadowingAllowed(t *testing.T) {
	_, diags := bindSource(t, `
		fn foo() -> void {
			let print = 42;
			let len = "hello";
		}
	`)
	if diags.HasErrors() {
		t.Fatalf("nested shadowing of prelude should be allowed, got %v", diags)
	}
}

func TestDuplicateTypeParameter(t *testing.T) {
	_, diags := bindSource(t, `
		fn bad<T, T>(x: T) -> T { return x; }
	`)
	found := false
	for _, d := range diags {
		if d.Message == "duplicate type parameter 'T'" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate type parameter diagnostic, got %v", diags)
	}
}
