package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atlas-lang/atlas/internal/ffi"
	"github.com/atlas-lang/atlas/internal/interpreter"
	"github.com/atlas-lang/atlas/internal/modules"
)

// cmdRun implements `atlas run <file>`: loads the file and everything it
// imports via internal/modules, binds+checks every module, then
// executes the dependency-ordered list on a single tree-walking
// interpreter — the fast, default path, matching funxy's own
// non-VM-backend `runModule`.
func cmdRun(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: atlas run <file>")
		return ExitUsage
	}
	path := args[0]

	root := filepath.Dir(path)
	loader, err := modules.NewLoader(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: %s\n", err)
		return ExitUsage
	}
	mods, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: %s\n", err)
		return ExitUsage
	}

	hadErrors := false
	for _, mod := range mods {
		_, diags := frontend(mod.Source)
		printDiagnostics(os.Stderr, diags, mod.Path, mod.Source)
		if diags.HasErrors() {
			hadErrors = true
		}
	}
	if hadErrors {
		return ExitDiagnostic
	}

	interp := interpreter.New()
	if len(mods) > 0 {
		manifest, err := modules.LoadManifest(filepath.Join(root, "atlas.lib.yaml"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "atlas: atlas.lib.yaml: %s\n", err)
			return ExitUsage
		}
		loaderFFI := ffi.NewLibraryLoader()
		define := func(name string, v interpreter.Value) { interp.DefineGlobal(name, v) }
		for _, mod := range mods {
			if diags := ffi.BindExterns(mod.AST, loaderFFI, manifest, define); diags.HasErrors() {
				printDiagnostics(os.Stderr, diags, mod.Path, mod.Source)
				return ExitDiagnostic
			}
		}
	}

	_, err = interp.RunModules(mods)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: runtime error: %s\n", err)
		return ExitRuntime
	}
	return ExitOK
}
