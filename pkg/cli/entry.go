package cli

import (
	"fmt"
	"os"

	"github.com/atlas-lang/atlas/internal/config"
)

// Exit codes, per spec.md §6's CLI surface.
const (
	ExitOK         = 0
	ExitDiagnostic = 1
	ExitRuntime    = 2
	ExitUsage      = 3
)

// Run is the CLI entry point, consumed by cmd/atlas/main.go exactly as
// funxy's pkg/cli.Run is consumed by its own thin cmd/funxy/main.go.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case "run":
		return cmdRun(args[1:])
	case "compile":
		return cmdCompile(args[1:])
	case "exec":
		return cmdExec(args[1:])
	case "check":
		return cmdCheck(args[1:])
	case "repl":
		return cmdRepl(args[1:])
	case "-version", "--version", "version":
		fmt.Println("atlas " + config.Version)
		return ExitOK
	case "-help", "--help", "help":
		printUsage(os.Stdout)
		return ExitOK
	default:
		fmt.Fprintf(os.Stderr, "atlas: unknown command %q\n", args[0])
		printUsage(os.Stderr)
		return ExitUsage
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, `atlas — the Atlas language toolchain

usage:
  atlas run <file>                              run a source file (tree-walking interpreter)
  atlas compile <file> -o <out.atb>            compile to bytecode
  atlas exec <out.atb> [--debug]                run compiled bytecode (stack VM; --debug opens a breakpoint console)
  atlas check <file>                            lex/parse/bind/check only
  atlas repl                                    interactive session
  atlas version                                 print version

exit codes: 0 success, 1 diagnostic errors, 2 runtime error, 3 usage error`)
}
