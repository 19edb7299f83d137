package vm

import (
	"bytes"
	"testing"

	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/compiler"
	"github.com/atlas-lang/atlas/internal/lexer"
	"github.com/atlas-lang/atlas/internal/parser"
	"github.com/atlas-lang/atlas/internal/value"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, diags := lexer.New(src).Tokenize()
	if diags.HasErrors() {
		t.Fatalf("lex errors: %v", diags)
	}
	p := parser.New(toks)
	prog := p.ParseProgram()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse errors: %v", p.Diagnostics())
	}
	return prog
}

func run(t *testing.T, src string) (Value, *bytes.Buffer) {
	t.Helper()
	prog := parseProgram(t, src)
	chunk, diags := compiler.Compile(prog)
	if diags.HasErrors() {
		t.Fatalf("compile errors: %v", diags)
	}
	var out bytes.Buffer
	vm := New()
	vm.SetOutput(&out)
	v, err := vm.Run(chunk)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return v, &out
}

func TestArithmetic(t *testing.T) {
	v, _ := run(t, `1 + 2 * 3;`)
	if n, ok := v.(value.Number); !ok || n != 7 {
		t.Fatalf("expected 7, got %v", v)
	}
}

func TestDivisionByZero(t *testing.T) {
	prog := parseProgram(t, `1 / 0;`)
	chunk, diags := compiler.Compile(prog)
	if diags.HasErrors() {
		t.Fatalf("compile errors: %v", diags)
	}
	_, err := New().Run(chunk)
	if err == nil {
		t.Fatal("expected division by zero error")
	}
	rt, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	if rt.Code != "AT4001" {
		t.Fatalf("expected AT4001, got %s", rt.Code)
	}
}

func TestIfElse(t *testing.T) {
	v, _ := run(t, `
		let x = 5;
		if (x > 3) {
			"big";
		} else {
			"small";
		}
	`)
	if s, ok := v.(value.String); !ok || s != "big" {
		t.Fatalf("expected \"big\", got %v", v)
	}
}

func TestWhileLoop(t *testing.T) {
	v, _ := run(t, `
		var i = 0;
		var total = 0;
		while (i < 5) {
			total = total + i;
			i = i + 1;
		}
		total;
	`)
	if n, ok := v.(value.Number); !ok || n != 10 {
		t.Fatalf("expected 10, got %v", v)
	}
}

func TestFunctionCallAndRecursion(t *testing.T) {
	v, _ := run(t, `
		fn fib(n: number) -> number {
			if (n < 2) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		fib(10);
	`)
	if n, ok := v.(value.Number); !ok || n != 55 {
		t.Fatalf("expected 55, got %v", v)
	}
}

func TestNestedFunctionDeclarationIsCallableAfterItsDeclaration(t *testing.T) {
	v, _ := run(t, `
		fn outer(x: number) -> number {
			fn double(n: number) -> number {
				return n * 2;
			}
			return double(x) + 1;
		}
		outer(10);
	`)
	if n, ok := v.(value.Number); !ok || n != 21 {
		t.Fatalf("expected 21, got %v", v)
	}
}

func TestTopLevelLocalsSurviveSerializeRoundTrip(t *testing.T) {
	prog := parseProgram(t, `
		var total = 0;
		while (total < 5) {
			var step = total + 1;
			total = step;
		}
		total;
	`)
	chunk, diags := compiler.Compile(prog)
	if diags.HasErrors() {
		t.Fatalf("compile errors: %v", diags)
	}

	data, err := bytecode.Serialize(chunk, true)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	deserialized, err := bytecode.Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	v, err := New().Run(deserialized)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if n, ok := v.(value.Number); !ok || n != 5 {
		t.Fatalf("expected 5, got %v", v)
	}
}

func TestArrayIndexAndMutationIsCopyOnWrite(t *testing.T) {
	v, _ := run(t, `
		let a = [1, 2, 3];
		let b = a;
		let c = push(b, 4);
		c[3];
	`)
	if n, ok := v.(value.Number); !ok || n != 4 {
		t.Fatalf("expected 4, got %v", v)
	}
}

func TestNestedIndexAssignmentDoesNotAliasOriginal(t *testing.T) {
	v, _ := run(t, `
		var a = [[1, 2], [3, 4]];
		var b = a;
		a[0][0] = 99;
		b[0][0];
	`)
	if n, ok := v.(value.Number); !ok || n != 1 {
		t.Fatalf("expected original binding unaffected (1), got %v", v)
	}
}

func TestMatchOptionSomeNone(t *testing.T) {
	v, _ := run(t, `
		fn describe(x: number) -> string {
			let r = parse_number(str(x));
			return match (r) {
				Some(n) => "got a number",
				None => "nothing",
			};
		}
		describe(42);
	`)
	if s, ok := v.(value.String); !ok || s != "got a number" {
		t.Fatalf("expected \"got a number\", got %v", v)
	}
}

func TestForInOverArray(t *testing.T) {
	v, _ := run(t, `
		var total = 0;
		for n in [1, 2, 3, 4] {
			total = total + n;
		}
		total;
	`)
	if n, ok := v.(value.Number); !ok || n != 10 {
		t.Fatalf("expected 10, got %v", v)
	}
}

func TestBreakAndContinue(t *testing.T) {
	v, _ := run(t, `
		var total = 0;
		var i = 0;
		while (i < 10) {
			i = i + 1;
			if (i == 5) {
				break;
			}
			if (i % 2 == 0) {
				continue;
			}
			total = total + i;
		}
		total;
	`)
	if n, ok := v.(value.Number); !ok || n != 4 {
		t.Fatalf("expected 4 (1+3), got %v", v)
	}
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	prog := parseProgram(t, `
		fn add(a: number, b: number) -> number { return a + b; }
		add(1);
	`)
	chunk, diags := compiler.Compile(prog)
	if diags.HasErrors() {
		t.Fatalf("compile errors: %v", diags)
	}
	_, err := New().Run(chunk)
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
	rt, ok := err.(*RuntimeError)
	if !ok || rt.Code != "AT4004" {
		t.Fatalf("expected AT4004, got %v", err)
	}
}

func TestIndexOutOfBounds(t *testing.T) {
	prog := parseProgram(t, `
		let a = [1, 2, 3];
		a[10];
	`)
	chunk, diags := compiler.Compile(prog)
	if diags.HasErrors() {
		t.Fatalf("compile errors: %v", diags)
	}
	_, err := New().Run(chunk)
	if err == nil {
		t.Fatal("expected index-out-of-bounds error")
	}
	rt, ok := err.(*RuntimeError)
	if !ok || rt.Code != "AT4002" {
		t.Fatalf("expected AT4002, got %v", err)
	}
}

func TestExportedFunctionIsUsable(t *testing.T) {
	v, _ := run(t, `
		export fn double(n: number) -> number {
			return n * 2;
		}
		double(21);
	`)
	if n, ok := v.(value.Number); !ok || n != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
}

func TestPrintWritesToOutput(t *testing.T) {
	_, out := run(t, `print("hello", "world");`)
	if out.String() != "hello world\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestVariadicFunction(t *testing.T) {
	v, _ := run(t, `
		fn sum(...nums: number[]) -> number {
			var total = 0;
			for n in nums {
				total = total + n;
			}
			return total;
		}
		sum(1, 2, 3, 4);
	`)
	if n, ok := v.(value.Number); !ok || n != 10 {
		t.Fatalf("expected 10, got %v", v)
	}
}

func TestTryOperatorUnwrapsSome(t *testing.T) {
	v, _ := run(t, `
		fn first_even(xs: number[]) -> number {
			var i = 0;
			while (i < len(xs)) {
				if (xs[i] % 2 == 0) {
					return xs[i];
				}
				i = i + 1;
			}
			return 0;
		}
		fn half_of_first_even(xs: number[]) -> Option<number> {
			let n = first_even(xs);
			if (n == 0) {
				return None;
			}
			return Some(n / 2);
		}
		fn describe(xs: number[]) -> number {
			let half = half_of_first_even(xs)?;
			return half;
		}
		describe([1, 3, 8, 5]);
	`)
	if n, ok := v.(value.Number); !ok || n != 4 {
		t.Fatalf("expected 4, got %v", v)
	}
}
