package ffi

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

// LibraryResolver maps an extern declaration's library name to the
// platform-specific file BindExterns should actually dlopen.
// *modules.LibManifest satisfies this; a nil LibraryResolver (or a nil
// *modules.LibManifest passed as one) means "no manifest configured" and
// every library name passes through unchanged.
type LibraryResolver interface {
	Resolve(name string) string
}

// BindExterns scans prog for top-level extern declarations, resolves
// each one's library symbol through loader, and calls define with the
// resulting Native callable under the declaration's Atlas-visible name.
// Atlas's grammar has no `as "sym"` rename yet (ast.ExternDecl carries a
// single Name used both as the bound identifier and the dlsym symbol),
// so the two always coincide.
func BindExterns(prog *ast.Program, loader *LibraryLoader, manifest LibraryResolver, define func(name string, v value.Value)) diag.List {
	var diags diag.List
	for _, item := range prog.Items {
		decl, ok := unwrapExternExport(item)
		if !ok {
			continue
		}
		params := make([]CType, len(decl.Params))
		ok = true
		for idx, p := range decl.Params {
			ct, err := ParseCType(p.Type)
			if err != nil {
				diags = append(diags, diag.New(diag.ErrFFI, decl.Span(), "extern %q: %s", decl.Name, err.Error()))
				ok = false
				break
			}
			params[idx] = ct
		}
		if !ok {
			continue
		}
		ret := CVoid
		if decl.ReturnType != nil {
			rt, err := ParseCType(decl.ReturnType)
			if err != nil {
				diags = append(diags, diag.New(diag.ErrFFI, decl.Span(), "extern %q: %s", decl.Name, err.Error()))
				continue
			}
			ret = rt
		}

		libName := decl.Library
		if manifest != nil {
			libName = manifest.Resolve(decl.Library)
		}
		fn, err := Bind(loader, libName, decl.Name, decl.Name, params, ret)
		if err != nil {
			diags = append(diags, diag.New(diag.ErrFFI, decl.Span(), "%s", err.Error()))
			continue
		}
		define(decl.Name, fn.AsNative())
	}
	return diags
}

func unwrapExternExport(item ast.Item) (*ast.ExternDecl, bool) {
	if ex, ok := item.(*ast.ExportStmt); ok && ex.Decl != nil {
		item = ex.Decl
	}
	decl, ok := item.(*ast.ExternDecl)
	return decl, ok
}
