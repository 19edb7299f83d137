// Command atlas is the Atlas language toolchain's entry point: a thin
// wrapper around pkg/cli.Run, split the same way funxy splits
// cmd/funxy/main.go from pkg/cli/entry.go.
package main

import (
	"os"

	"github.com/atlas-lang/atlas/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
