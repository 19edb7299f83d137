package cli

import (
	"fmt"
	"os"
)

// cmdCheck implements `atlas check <file>`: runs only the front end
// (lex/parse/bind/type-check) and reports diagnostics, without
// executing anything — useful for editor integrations and CI gates
// that only want a pass/fail signal.
func cmdCheck(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: atlas check <file>")
		return ExitUsage
	}
	path := args[0]

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas: %s\n", err)
		return ExitUsage
	}

	_, diags := frontend(string(src))
	printDiagnostics(os.Stderr, diags, path, string(src))
	if diags.HasErrors() {
		return ExitDiagnostic
	}
	if len(diags) > 0 {
		fmt.Fprintf(os.Stderr, "%d warning(s)\n", len(diags))
	}
	return ExitOK
}
