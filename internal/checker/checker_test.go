package checker

import (
	"testing"

	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/lexer"
	"github.com/atlas-lang/atlas/internal/parser"
	"github.com/atlas-lang/atlas/internal/symbols"
)

func typecheckSource(t *testing.T, src string) diag.List {
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
	table, bdiags := symbols.NewBinder().Bind(prog)
	if bdiags.HasErrors() {
		t.Fatalf("bind errors: %v", bdiags)
	}
	return New(table).Check(prog)
}

func TestValidVariable(t *testing.T) {
	diags := typecheckSource(t, "let x: number = 42;")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
}

func TestTypeMismatch(t *testing.T) {
	diags := typecheckSource(t, `let x: number = "hello";`)
	if len(diags) == 0 || diags[0].Code != diag.ErrTypeMismatch {
		t.Fatalf("expected AT3001, got %v", diags)
	}
}

func TestArithmeticTypeError(t *testing.T) {
	diags := typecheckSource(t, `let x = 5 + "hello";`)
	if len(diags) == 0 || diags[0].Code != diag.ErrOperandType {
		t.Fatalf("expected AT3002, got %v", diags)
	}
}

func TestConditionMustBeBool(t *testing.T) {
	diags := typecheckSource(t, `if (5) { }`)
	if len(diags) == 0 || diags[0].Code != diag.ErrTypeMismatch {
		t.Fatalf("expected AT3001, got %v", diags)
	}
}

func TestImmutableAssignment(t *testing.T) {
	diags := typecheckSource(t, `
		let x = 5;
		x = 10;
	`)
	found := false
	for _, d := range diags {
		if d.Code == diag.ErrImmutableAssign {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AT3003, got %v", diags)
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	diags := typecheckSource(t, "break;")
	if len(diags) == 0 || diags[0].Code != diag.ErrLoopControl {
		t.Fatalf("expected AT3010, got %v", diags)
	}
}

func TestReturnOutsideFunction(t *testing.T) {
	diags := typecheckSource(t, "return 5;")
	if len(diags) == 0 || diags[0].Code != diag.ErrReturnOutsideFn {
		t.Fatalf("expected AT3011, got %v", diags)
	}
}

func TestNonExhaustiveReturn(t *testing.T) {
	diags := typecheckSource(t, `
		fn f() -> number {
			if (true) {
				return 1;
			}
		}
	`)
	found := false
	for _, d := range diags {
		if d.Code == diag.ErrNonExhaustiveRet {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AT3004, got %v", diags)
	}
}

func TestNestedFunctionReturnTypeIsChecked(t *testing.T) {
	diags := typecheckSource(t, `
		fn outer() -> number {
			fn double(n: number) -> number {
				return n * 2;
			}
			return double(21);
		}
	`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestNestedFunctionNonExhaustiveReturn(t *testing.T) {
	diags := typecheckSource(t, `
		fn outer() -> number {
			fn half(n: number) -> number {
				if (n > 0) {
					return n / 2;
				}
			}
			return half(10);
		}
	`)
	found := false
	for _, d := range diags {
		if d.Code == diag.ErrNonExhaustiveRet {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AT3004 for the nested function, got %v", diags)
	}
}

func TestArityMismatch(t *testing.T) {
	diags := typecheckSource(t, `
		fn add(a: number, b: number) -> number { return a + b; }
		let x = add(1);
	`)
	found := false
	for _, d := range diags {
		if d.Code == diag.ErrArityMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AT3005, got %v", diags)
	}
}

func TestNonCallable(t *testing.T) {
	diags := typecheckSource(t, `
		let x = 5;
		let y = x();
	`)
	found := false
	for _, d := range diags {
		if d.Code == diag.ErrNonCallable {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AT3006, got %v", diags)
	}
}
