package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/atlas-lang/atlas/internal/config"
	"github.com/atlas-lang/atlas/internal/diag"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
	ansiReset  = "\x1b[0m"
)

// colorEnabled mirrors funxy's terminal-capability check
// (internal/evaluator/builtins_term*.go): color is only emitted when out
// is a real terminal, never when piped to a file or another process.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printDiagnostics renders every diagnostic in list against src, using
// diag.Render for the caret-annotated body and coloring the severity tag
// when out is a terminal.
func printDiagnostics(out io.Writer, list diag.List, file, src string) {
	color := colorEnabled(out)
	for _, d := range list {
		rendered := diag.Render(d, file, src)
		if !color {
			fmt.Fprint(out, rendered)
			continue
		}
		tag := ansiRed
		if d.Severity == diag.SeverityWarning {
			tag = ansiYellow
		}
		fmt.Fprint(out, tag+ansiBold+rendered+ansiReset)
	}
}

// reportLimits prints the advisory resource limits (spec.md §5) a run
// was bound by, in human-readable form; `exec` prints it after running
// a compiled chunk.
func reportLimits(out io.Writer, limits config.ResourceLimits, elapsed time.Duration) {
	if limits.MaxExecutionTimeMillis > 0 {
		fmt.Fprintf(out, "  time limit:   %v\n", time.Duration(limits.MaxExecutionTimeMillis)*time.Millisecond)
	}
	if limits.MaxMemoryBytes > 0 {
		fmt.Fprintf(out, "  memory limit: %s\n", humanize.Bytes(uint64(limits.MaxMemoryBytes)))
	}
	fmt.Fprintf(out, "  elapsed:      %v\n", elapsed)
}

// processStats reports the REPL's own uptime and heap usage, in the
// spirit of funxy's CLI `-debug` diagnostics output.
func processStats(out io.Writer, startedAt time.Time) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(out, "  started:   %s\n", humanize.Time(startedAt))
	fmt.Fprintf(out, "  heap:      %s\n", humanize.Bytes(mem.HeapAlloc))
	fmt.Fprintf(out, "  goroutines: %d\n", runtime.NumGoroutine())
}
