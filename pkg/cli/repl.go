package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atlas-lang/atlas/internal/interpreter"
	"github.com/atlas-lang/atlas/internal/value"
)

// cmdRepl implements `atlas repl`: a line-at-a-time session over a
// single persistent interpreter, so declarations and bindings from
// earlier lines stay visible to later ones — the same persistent-
// environment idiom as funxy's own interactive mode, minus funxy's
// -p/-l auto-print/line-mode flags (those are pipeline flags for `-e`,
// not something a REPL prompt needs).
func cmdRepl(args []string) int {
	startedAt := time.Now()
	interp := interpreter.New()
	prompt := "atlas> "
	if colorEnabled(os.Stdout) {
		prompt = ansiBold + "atlas> " + ansiReset
	}

	fmt.Println("atlas repl — :help for commands, :quit to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			return ExitOK
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := replCommand(line, startedAt); quit {
				return ExitOK
			}
			continue
		}

		v, err := interp.EvaluateSnippet(line, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		if v != nil && v.TypeName() != "void" {
			fmt.Println(value.String_(v))
		}
	}
}

func replCommand(line string, startedAt time.Time) (quit bool) {
	switch strings.TrimSpace(line) {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		fmt.Println(`:help    show this message
:stats   show interpreter uptime and memory usage
:quit    exit the repl`)
	case ":stats":
		processStats(os.Stdout, startedAt)
	default:
		fmt.Printf("unknown repl command %q\n", line)
	}
	return false
}
