package debugger

import (
	"bytes"
	"testing"

	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/compiler"
	"github.com/atlas-lang/atlas/internal/lexer"
	"github.com/atlas-lang/atlas/internal/parser"
	"github.com/atlas-lang/atlas/internal/value"
	"github.com/atlas-lang/atlas/internal/vm"
)

func compileProgram(t *testing.T, src string) *bytecode.Chunk {
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
	return chunk
}

func newSession(t *testing.T, src string) *DebuggerSession {
	t.Helper()
	chunk := compileProgram(t, src)
	v := vm.New()
	var out bytes.Buffer
	v.SetOutput(&out)
	s := NewDebuggerSession(v)
	s.Load("test.atl", src, chunk)
	return s
}

func TestSetBreakpointIsIdempotentOnSameLocation(t *testing.T) {
	s := newSession(t, "var x = 1;\nvar y = 2;\nx + y;\n")
	first := s.bp.Set("test.atl", 3, 1, s.sm)
	second := s.bp.Set("test.atl", 3, 1, s.sm)
	if first.ID != second.ID {
		t.Fatalf("expected same breakpoint id, got %d and %d", first.ID, second.ID)
	}
	if len(s.bp.List()) != 1 {
		t.Fatalf("expected exactly one breakpoint, got %d", len(s.bp.List()))
	}
}

func TestContinueRunsToCompletionWithNoBreakpoints(t *testing.T) {
	s := newSession(t, "var x = 1;\nvar y = 2;\nx + y;\n")
	resp := s.ProcessRequest(Request{Kind: ReqContinue})
	if resp.Kind != RespOK {
		t.Fatalf("expected OK, got %+v", resp)
	}
	if !s.IsStopped() {
		t.Fatal("expected program to have run to completion")
	}
}

func TestBreakpointPausesExecution(t *testing.T) {
	s := newSession(t, "var x = 1;\nvar y = 2;\nx + y;\n")
	bp := s.bp.Set("test.atl", 2, 1, s.sm)
	if !bp.Verified() {
		t.Fatalf("expected breakpoint on line 2 to verify, got %+v", bp)
	}
	resp := s.ProcessRequest(Request{Kind: ReqContinue})
	if resp.Kind != RespPaused {
		t.Fatalf("expected Paused, got %+v", resp)
	}
	if !s.IsPaused() {
		t.Fatal("expected session to be paused")
	}
}

func TestStepIntoPausesAtNextInstruction(t *testing.T) {
	s := newSession(t, "var x = 1;\nvar y = 2;\nx + y;\n")
	resp := s.ProcessRequest(Request{Kind: ReqStepInto})
	if resp.Kind != RespPaused {
		t.Fatalf("expected Paused after step, got %+v", resp)
	}
}

func TestEvaluateReinjectsNumberLocal(t *testing.T) {
	s := newSession(t, "fn add(a: number, b: number) -> number { return a + b; }\nadd(3, 4);\n")
	s.bp.Set("test.atl", 1, 1, s.sm)
	resp := s.ProcessRequest(Request{Kind: ReqContinue})
	if resp.Kind != RespPaused {
		t.Fatalf("expected Paused inside add, got %+v", resp)
	}
	evalResp := s.ProcessRequest(Request{Kind: ReqEvaluate, Expr: "1 + 1"})
	if evalResp.Kind != RespEvalResult {
		t.Fatalf("expected EvalResult, got %+v", evalResp)
	}
	if evalResp.Value != "2" {
		t.Fatalf("expected 2, got %s", evalResp.Value)
	}
}

func TestClassifyMarksOnlyScalarsReinjectable(t *testing.T) {
	cases := []struct {
		v    value.Value
		want bool
	}{
		{value.Number(1), true},
		{value.Bool(true), true},
		{value.Null{}, true},
		{value.String("hi"), true},
		{value.NewArray(nil), false},
	}
	for _, c := range cases {
		_, got := classify(c.v)
		if got != c.want {
			t.Fatalf("classify(%v): got %v, want %v", c.v, got, c.want)
		}
	}
}
