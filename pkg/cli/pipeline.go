// Package cli hosts the Atlas command-line entry point: subcommand
// dispatch, the shared front-end pipeline, and the interactive REPL and
// debugger consoles. It plays the role funxy's pkg/cli/entry.go plays for
// that interpreter, trimmed to the subcommands spec.md §6 names (no
// plugin/ext system, no self-extracting embedded bundles, no
// multi-command binaries — those are funxy-specific features with no
// component in Atlas's spec to implement them against).
package cli

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/checker"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/lexer"
	"github.com/atlas-lang/atlas/internal/parser"
	"github.com/atlas-lang/atlas/internal/symbols"
)

// frontend lexes, parses, binds and type-checks src, stopping at the
// first phase that produces an error — diagnostics from a later phase
// are meaningless once an earlier one failed (an unparsed program has no
// symbol table to bind). Warnings from a passing phase are carried
// forward and returned alongside whatever the final phase produces.
func frontend(src string) (*ast.Program, diag.List) {
	toks, diags := lexer.New(src).Tokenize()
	if diags.HasErrors() {
		return nil, diags
	}

	p := parser.New(toks)
	prog := p.ParseProgram()
	diags = append(diags, p.Diagnostics()...)
	if diags.HasErrors() {
		return prog, diags
	}

	table, bdiags := symbols.NewBinder().Bind(prog)
	diags = append(diags, bdiags...)
	if diags.HasErrors() {
		return prog, diags
	}

	cdiags := checker.New(table).Check(prog)
	diags = append(diags, cdiags...)
	return prog, diags
}
