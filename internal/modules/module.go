// Package modules implements Atlas's module loader: path resolution
// relative to an importing file or the project root, recursive
// dependency loading with synchronous cycle detection, and a
// Kahn's-algorithm topological sort restricted to the subgraph
// reachable from a single entry point.
package modules

import (
	"github.com/atlas-lang/atlas/internal/ast"
)

// Module is one loaded, parsed source file plus the metadata the loader
// extracts from it at load time: its exported names (enumerated for
// cross-module binding) and its import declarations (used to build the
// dependency graph).
type Module struct {
	// Path is the canonicalized absolute path; module identity.
	Path string
	// Source is the raw file contents, kept for bytecode-cache hashing
	// and for error rendering.
	Source string
	AST    *ast.Program
	// Exports lists every exported function, variable and type-alias name.
	Exports []string
	Imports []*ast.ImportStmt
}

func extractExports(prog *ast.Program) []string {
	var exports []string
	for _, item := range prog.Items {
		exp, ok := item.(*ast.ExportStmt)
		if !ok {
			continue
		}
		exports = append(exports, exp.Names...)
	}
	return exports
}

func extractImports(prog *ast.Program) []*ast.ImportStmt {
	var imports []*ast.ImportStmt
	for _, item := range prog.Items {
		if imp, ok := item.(*ast.ImportStmt); ok {
			imports = append(imports, imp)
		}
	}
	return imports
}
