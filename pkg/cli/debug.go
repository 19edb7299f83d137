package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/debugger"
	"github.com/atlas-lang/atlas/internal/vm"
)

// runDebugConsole drives a debugger.DebuggerSession from an interactive
// line-oriented console on stdin/stdout — the CLI-native transport for
// spec.md §4.11's protocol; internal/debugger/rpcserver.go offers the
// same requests over gRPC for out-of-process clients, but a terminal
// session has no need for that indirection.
func runDebugConsole(machine *vm.VM, path string, chunk *bytecode.Chunk) int {
	src := chunkSourceOrEmpty(path)
	session := debugger.NewDebuggerSession(machine)
	session.Load(path, src, chunk)

	fmt.Println("atlas debugger — type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("(atlas-dbg) ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := dispatchDebugCommand(session, line); quit {
			break
		}
	}

	if session.IsStopped() {
		return ExitOK
	}
	return ExitOK
}

// chunkSourceOrEmpty reads the original source file next to a compiled
// bundle, if it can be found, so the console can show source lines
// alongside locations; a missing file just means "no source preview",
// not an error — the source map itself comes entirely from the Chunk's
// embedded DebugSpans.
func chunkSourceOrEmpty(path string) string {
	data, err := os.ReadFile(strings.TrimSuffix(path, ".atb") + ".atl")
	if err != nil {
		return ""
	}
	return string(data)
}

func dispatchDebugCommand(session *debugger.DebuggerSession, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd := fields[0]
	rest := fields[1:]

	switch cmd {
	case "help", "h", "?":
		printDebugHelp()
	case "quit", "exit", "q":
		return true
	case "break", "b":
		handleSetBreakpoint(session, rest)
	case "clear":
		handleRemoveBreakpoint(session, rest)
	case "breakpoints", "bl":
		resp := session.ProcessRequest(debugger.Request{Kind: debugger.ReqListBreakpoints})
		for _, bp := range resp.Breakpoints {
			fmt.Printf("  #%d %s:%d:%d verified=%v\n", bp.ID, bp.File, bp.Line, bp.Col, bp.Verified())
		}
	case "continue", "c":
		reportRun(session.ProcessRequest(debugger.Request{Kind: debugger.ReqContinue}))
	case "step", "s":
		reportRun(session.ProcessRequest(debugger.Request{Kind: debugger.ReqStepInto}))
	case "next", "n":
		reportRun(session.ProcessRequest(debugger.Request{Kind: debugger.ReqStepOver}))
	case "out", "o":
		reportRun(session.ProcessRequest(debugger.Request{Kind: debugger.ReqStepOut}))
	case "stack", "bt":
		resp := session.ProcessRequest(debugger.Request{Kind: debugger.ReqGetStack})
		for _, f := range resp.Frames {
			fmt.Printf("  #%d %s at %s:%d:%d\n", f.Depth, f.FuncName, f.Location.File, f.Location.Line, f.Location.Col)
		}
	case "vars", "locals":
		resp := session.ProcessRequest(debugger.Request{Kind: debugger.ReqGetVariables})
		for _, v := range resp.Variables {
			fmt.Printf("  %s: %s = %s\n", v.Name, v.Type, v.Value)
		}
	case "print", "p":
		if len(rest) == 0 {
			fmt.Println("usage: print <expr>")
			return false
		}
		resp := session.ProcessRequest(debugger.Request{Kind: debugger.ReqEvaluate, Expr: strings.Join(rest, " ")})
		if resp.Kind == debugger.RespError {
			fmt.Println("error:", resp.Message)
		} else {
			fmt.Printf("%s (%s)\n", resp.Value, resp.Type)
		}
	default:
		fmt.Printf("unknown command %q — type 'help'\n", cmd)
	}
	return false
}

func handleSetBreakpoint(session *debugger.DebuggerSession, rest []string) {
	if len(rest) == 0 {
		fmt.Println("usage: break <file>:<line>")
		return
	}
	file, line, ok := parseLocation(rest[0])
	if !ok {
		fmt.Println("usage: break <file>:<line>")
		return
	}
	resp := session.ProcessRequest(debugger.Request{Kind: debugger.ReqSetBreakpoint, File: file, Line: line, Col: 1})
	fmt.Printf("breakpoint #%d verified=%v\n", resp.Breakpoint.ID, resp.Verified)
}

func handleRemoveBreakpoint(session *debugger.DebuggerSession, rest []string) {
	if len(rest) == 0 {
		fmt.Println("usage: clear <id>")
		return
	}
	id, err := strconv.Atoi(rest[0])
	if err != nil {
		fmt.Println("usage: clear <id>")
		return
	}
	resp := session.ProcessRequest(debugger.Request{Kind: debugger.ReqRemoveBreakpoint, ID: debugger.BreakpointID(id)})
	if resp.Kind == debugger.RespError {
		fmt.Println("error:", resp.Message)
	}
}

// parseLocation splits "file:line" into its parts.
func parseLocation(spec string) (file string, line int, ok bool) {
	idx := strings.LastIndex(spec, ":")
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(spec[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return spec[:idx], n, true
}

func reportRun(resp debugger.Response) {
	switch resp.Kind {
	case debugger.RespPaused:
		fmt.Printf("paused (%s) at %s:%d:%d\n", resp.Reason, resp.Location.File, resp.Location.Line, resp.Location.Col)
	case debugger.RespOK:
		fmt.Printf("program finished: %s\n", resp.Value)
	case debugger.RespError:
		fmt.Println("runtime error:", resp.Message)
	}
}

func printDebugHelp() {
	fmt.Println(`commands:
  break <file>:<line>   set a breakpoint
  clear <id>             remove a breakpoint
  breakpoints             list breakpoints
  continue, step, next, out   resume execution
  stack                   print the call stack
  vars                    print visible locals and globals
  print <expr>            evaluate an expression in the paused frame
  quit                    exit the debugger`)
}
