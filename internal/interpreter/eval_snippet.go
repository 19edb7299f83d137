package interpreter

import (
	"fmt"

	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/lexer"
	"github.com/atlas-lang/atlas/internal/parser"
	"github.com/atlas-lang/atlas/internal/value"
)

// EvaluateSnippet parses src as a standalone statement sequence and runs
// it in a scope that encloses Globals, without re-hoisting this
// interpreter's own program — the debugger's Evaluate request runs
// against an already-live program, so only the locals given here (the
// paused frame's re-injectable variables) are newly bound. This is the
// synthesis step spec.md's inspection model describes: the caller
// renders each local as a `let name = <value literal>;` line ahead of
// the user's expression and hands the whole thing to EvaluateSnippet.
func (i *Interpreter) EvaluateSnippet(src string, locals map[string]Value) (Value, error) {
	toks, diags := lexer.New(src).Tokenize()
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluate: %s", diags[0].Message)
	}
	p := parser.New(toks)
	prog := p.ParseProgram()
	if p.Diagnostics().HasErrors() {
		return nil, fmt.Errorf("evaluate: %s", p.Diagnostics()[0].Message)
	}

	env := NewEnclosedEnvironment(i.Globals)
	for name, v := range locals {
		env.Define(name, v, false)
	}

	var last Value = value.Void{}
	for _, item := range prog.Items {
		st, ok := item.(ast.Stmt)
		if !ok {
			continue
		}
		v, sig, err := i.evalStmt(st, env)
		if err != nil {
			return nil, err
		}
		if sig.kind == signalReturn {
			return sig.value, nil
		}
		if v != nil {
			last = v
		}
	}
	return last, nil
}
