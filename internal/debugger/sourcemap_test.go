package debugger

import (
	"testing"

	"github.com/atlas-lang/atlas/internal/compiler"
	"github.com/atlas-lang/atlas/internal/lexer"
	"github.com/atlas-lang/atlas/internal/parser"
)

func buildTestMap(t *testing.T, src string) *SourceMap {
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
	chunk, cdiags := compiler.Compile(prog)
	if cdiags.HasErrors() {
		t.Fatalf("compile errors: %v", cdiags)
	}
	return BuildSourceMap("test.atl", src, chunk)
}

func TestFirstOffsetForLineFindsNextCompiledLine(t *testing.T) {
	sm := buildTestMap(t, "var x = 1;\n\nvar y = 2;\n")
	if _, ok := sm.FirstOffsetForLine(2); !ok {
		t.Fatal("expected a blank line to fall through to the next compiled line")
	}
	off, ok := sm.FirstOffsetForLine(3)
	if !ok {
		t.Fatal("expected line 3 to map to an instruction offset")
	}
	loc := sm.LocationFor(off)
	if loc.Line != 3 {
		t.Fatalf("expected location on line 3, got line %d", loc.Line)
	}
}

func TestLocationForResolvesFirstInstruction(t *testing.T) {
	sm := buildTestMap(t, "var x = 1;\n")
	loc := sm.LocationFor(0)
	if loc.File != "test.atl" {
		t.Fatalf("expected file test.atl, got %s", loc.File)
	}
	if loc.Line != 1 {
		t.Fatalf("expected line 1, got %d", loc.Line)
	}
}
