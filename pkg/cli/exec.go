package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/config"
	"github.com/atlas-lang/atlas/internal/vm"
)

// cmdExec implements `atlas exec <out.atb>`: deserializes a compiled
// Chunk and runs it on the stack VM. With --debug, instead of running
// straight through it hands the loaded Chunk to an interactive
// breakpoint console (debugConsole) built on internal/debugger.
func cmdExec(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: atlas exec <out.atb> [--debug]")
		return ExitUsage
	}
	path := args[0]
	debug := false
	for _, a := range args[1:] {
		if a == "--debug" {
			debug = true
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: %s\n", err)
		return ExitUsage
	}
	chunk, err := bytecode.Deserialize(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: deserialize: %s\n", err)
		return ExitUsage
	}

	machine := vm.New()

	if debug {
		return runDebugConsole(machine, path, chunk)
	}

	start := time.Now()
	_, err = machine.Run(chunk)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: runtime error: %s\n", err)
		return ExitRuntime
	}
	if os.Getenv("ATLAS_REPORT_LIMITS") != "" {
		reportLimits(os.Stderr, config.ResourceLimits{}, elapsed)
	}
	return ExitOK
}
