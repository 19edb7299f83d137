package interpreter

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/modules"
	"github.com/atlas-lang/atlas/internal/value"
)

// RunModules executes a dependency-ordered module list (as produced by
// modules.Loader.Load) against a single Interpreter: each module gets
// its own scope enclosing the shared prelude, populated with whatever
// names it imports from modules loaded earlier in the list, and its
// exported bindings are recorded for modules loaded later. It returns
// the value of the last entry module's final top-level expression.
func (i *Interpreter) RunModules(mods []*modules.Module) (Value, error) {
	exported := make(map[string]map[string]Value, len(mods))
	var last Value = value.Void{}

	for _, mod := range mods {
		modEnv := NewEnclosedEnvironment(i.Globals)
		if err := i.bindImports(mod, exported, modEnv); err != nil {
			return nil, err
		}
		if err := i.hoistProgram(mod.AST, modEnv); err != nil {
			return nil, err
		}
		for _, item := range mod.AST.Items {
			st, ok := item.(ast.Stmt)
			if !ok || isHoistable(st) {
				continue
			}
			v, sig, err := i.evalStmt(st, modEnv)
			if err != nil {
				return nil, err
			}
			if sig.kind == signalReturn {
				v = sig.value
			}
			if v != nil {
				last = v
			}
		}
		exported[mod.Path] = collectExports(mod, modEnv)
	}
	return last, nil
}

// bindImports resolves each of mod's import statements against the
// modules loaded before it and defines the requested names (or, for a
// `import * as alias`, a single namespace HashMap) in modEnv.
func (i *Interpreter) bindImports(mod *modules.Module, exported map[string]map[string]Value, modEnv *Environment) error {
	for _, imp := range mod.Imports {
		src, err := resolveImportSource(mod, imp, exported)
		if err != nil {
			return err
		}
		if imp.ImportAll {
			ns := value.NewHashMap()
			for k, v := range src {
				ns.Items[k] = v
			}
			modEnv.Define(imp.Alias, ns, false)
			continue
		}
		names := imp.Symbols
		if len(names) == 0 {
			for name := range src {
				names = append(names, name)
			}
		}
		for _, name := range names {
			v, ok := src[name]
			if !ok {
				return newRuntimeError(diag.ErrUndefinedVar, imp.Sp, "module %q has no export %q", imp.Path, name)
			}
			modEnv.Define(name, v, false)
		}
	}
	return nil
}

// resolveImportSource finds the already-evaluated export table for
// imp's target. Because RunModules walks mods in the loader's
// topologically-sorted order, every dependency has already run by the
// time an importer is evaluated.
func resolveImportSource(mod *modules.Module, imp *ast.ImportStmt, exported map[string]map[string]Value) (map[string]Value, error) {
	for path, tbl := range exported {
		if path == imp.Path || hasSuffixPath(path, imp.Path) {
			return tbl, nil
		}
	}
	return nil, newRuntimeError(diag.ErrUndefinedVar, imp.Sp, "module %q was not loaded before its importer", imp.Path)
}

func hasSuffixPath(full, partial string) bool {
	if len(partial) > len(full) {
		return false
	}
	return full[len(full)-len(partial):] == partial
}

func collectExports(mod *modules.Module, modEnv *Environment) map[string]Value {
	out := make(map[string]Value, len(mod.Exports))
	for _, name := range mod.Exports {
		if v, ok := modEnv.Get(name); ok {
			out[name] = v
		}
	}
	return out
}
