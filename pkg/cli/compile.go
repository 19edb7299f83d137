package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/compiler"
	"github.com/atlas-lang/atlas/internal/config"
	"github.com/atlas-lang/atlas/internal/modules"
)

// cmdCompile implements `atlas compile <file> -o <out.atb>`: lexes,
// parses, binds, type-checks and lowers a single file to bytecode, then
// serializes the Chunk with full debug spans so `atlas exec --debug`
// can map instructions back to source. Unlike funxy's `-c`, this does
// not bundle imported modules into the output — spec.md §4.9 describes
// a single compiled unit, with no resource-embedding or multi-module
// bundle format to target. A per-directory disk cache, keyed by the
// source file's content hash, skips the whole pipeline when the file
// hasn't changed since the last compile.
func cmdCompile(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: atlas compile <file> -o <out.atb>")
		return ExitUsage
	}
	path := args[0]
	out := ""
	for i := 1; i < len(args); i++ {
		if args[i] == "-o" && i+1 < len(args) {
			out = args[i+1]
			i++
		}
	}
	if out == "" {
		out = config.TrimSourceExt(path) + config.BytecodeFileExt
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: %s\n", err)
		return ExitUsage
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: %s\n", err)
		return ExitUsage
	}
	cache, err := modules.OpenDiskCache(filepath.Join(filepath.Dir(path), config.CompileCacheFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: compile cache: %s\n", err)
		return ExitUsage
	}
	defer cache.Close()
	hash := modules.Hash(string(src))

	data, ok := cache.Get(absPath, hash)
	if !ok {
		prog, diags := frontend(string(src))
		printDiagnostics(os.Stderr, diags, path, string(src))
		if diags.HasErrors() {
			return ExitDiagnostic
		}

		chunk, cdiags := compiler.Compile(prog)
		printDiagnostics(os.Stderr, cdiags, path, string(src))
		if cdiags.HasErrors() {
			return ExitDiagnostic
		}

		data, err = bytecode.Serialize(chunk, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "atlas: serialize: %s\n", err)
			return ExitRuntime
		}
		if err := cache.Put(absPath, hash, data); err != nil {
			fmt.Fprintf(os.Stderr, "atlas: compile cache: %s\n", err)
		}
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "atlas: %s\n", err)
		return ExitUsage
	}

	fmt.Printf("compiled %s -> %s (%s)\n", path, out, humanize.Bytes(uint64(len(data))))
	return ExitOK
}
