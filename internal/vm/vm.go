// Package vm is Atlas's bytecode stack machine: the fast, ahead-of-time
// path for `atlas exec` and `atlas compile`. It executes the same
// Chunk the compiler emits and is checked for observable equivalence
// against the tree-walking interpreter (spec.md §8 invariant 2) — both
// engines share one builtin table (interpreter.Prelude) and one
// equality rule (value.Equal).
package vm

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/interpreter"
	"github.com/atlas-lang/atlas/internal/value"
)

// Value is the runtime value type threaded through execution.
type Value = value.Value

// initialStackSize and maxStackSize bound the operand/locals stack: the
// stack grows by ordinary Go slice append (no fixed bound below
// maxStackSize), satisfying spec.md §4.8's ~1M-depth requirement.
const (
	initialStackSize = 2048
	maxStackSize     = 1024 * 1024
	maxFrameCount    = 4096
)

// CallFrame is one ongoing call's window into the shared value stack:
// base is the index of its first local slot, localCount how many slots
// it reserves, and returnIP where execution resumes in the caller.
type CallFrame struct {
	base       int
	localCount int
	returnIP   int
	fnName     string
}

// Base, LocalCount, ReturnIP and FuncName expose a frame's fields
// read-only to callers outside this package (the debugger's stack
// trace and variable inspection both need them).
func (f CallFrame) Base() int        { return f.base }
func (f CallFrame) LocalCount() int  { return f.localCount }
func (f CallFrame) ReturnIP() int    { return f.returnIP }
func (f CallFrame) FuncName() string { return f.fnName }

// RuntimeError is raised for faults the checker cannot rule out
// statically, mirroring interpreter.RuntimeError field-for-field so the
// CLI's error reporting path is identical regardless of which engine ran
// the program.
type RuntimeError struct {
	Code diag.Code
	Msg  string
	Span diag.Span
}

func (e *RuntimeError) Error() string { return string(e.Code) + ": " + e.Msg }

func (e *RuntimeError) Diagnostic() *diag.Diagnostic {
	return diag.New(e.Code, e.Span, "%s", e.Msg)
}

func newRuntimeError(code diag.Code, span diag.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Code: code, Msg: fmt.Sprintf(format, args...), Span: span}
}

// VM executes one Chunk at a time. Globals are seeded from
// interpreter.Prelude so both engines resolve `print`/`len`/the hidden
// match-and-try helpers to byte-identical builtins.
type VM struct {
	chunk   *bytecode.Chunk
	ip      int
	stack   []Value
	frames  []CallFrame
	globals map[string]Value
	out     io.Writer
	hook    Hook

	// ResourceLimits is advisory per spec.md §5: when non-zero, the
	// dispatch loop checks MaxCallDepth before pushing a new frame and
	// raises AT4007 rather than letting the host process exhaust memory.
	ResourceLimits ResourceLimits
}

// Hook is the debuggable entry point spec.md §4.8/§4.11 requires: the
// dispatch loop consults it before fetching each instruction so a
// debugger session can honor breakpoints and the step tracker without
// the VM itself knowing anything about either.
type Hook interface {
	// ShouldPause is called with the offset of the next instruction and
	// the current call-frame depth. Returning true pauses execution
	// before that instruction runs; reason labels why (for Paused.Reason).
	ShouldPause(ip, frameDepth int) (pause bool, reason string)
}

// PauseError is returned by Continue when the Hook requested a pause.
// It is not a fault: the VM's state (ip, stack, frames) is left exactly
// as it was about to execute the paused instruction, so Continue can be
// called again to resume.
type PauseError struct {
	Reason string
}

func (p *PauseError) Error() string { return "paused: " + p.Reason }

// SetHook installs (or clears, with nil) the debugger hook.
func (vm *VM) SetHook(h Hook) { vm.hook = h }

// CurrentIP returns the offset of the next instruction to execute.
func (vm *VM) CurrentIP() int { return vm.ip }

// FrameDepth returns the current call-frame count (1 at top level).
func (vm *VM) FrameDepth() int { return len(vm.frames) }

// Frames returns a snapshot of the call-frame stack, innermost last —
// used by the debugger's stack-trace and variable-inspection requests.
func (vm *VM) Frames() []CallFrame {
	out := make([]CallFrame, len(vm.frames))
	copy(out, vm.frames)
	return out
}

// LocalAt reads a frame-relative local slot directly off the value
// stack, for the debugger's GetVariables request.
func (vm *VM) LocalAt(frame CallFrame, slot int) Value {
	return vm.stack[frame.base+slot]
}

// Global reads a global by name, ok=false if undefined.
func (vm *VM) Global(name string) (Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// Globals returns every bound global name — used to build the
// debugger's "all visible globals" variable listing.
func (vm *VM) GlobalNames() []string {
	names := make([]string, 0, len(vm.globals))
	for name := range vm.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResourceLimits mirrors the runtime config's advisory execution bounds.
type ResourceLimits struct {
	MaxCallDepth int
}

// New creates a VM with stdout as its output sink and the shared
// prelude (plus hidden match/try helpers) seeded into globals.
func New() *VM {
	vm := &VM{
		out:     os.Stdout,
		globals: make(map[string]Value),
	}
	vm.ResourceLimits.MaxCallDepth = maxFrameCount
	for name, fn := range interpreter.Prelude(vm.out) {
		vm.globals[name] = fn
	}
	return vm
}

// SetOutput redirects print() output (tests capture this to a buffer).
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
	for name, fn := range interpreter.Prelude(w) {
		vm.globals[name] = fn
	}
}

// DefineGlobal binds name into the VM's global namespace, used by the
// FFI layer to install extern-declared callables before Run.
func (vm *VM) DefineGlobal(name string, v Value) {
	vm.globals[name] = v
}

// Start resets the VM to the beginning of chunk without running
// anything, so a caller that wants to step/pause can control execution
// via repeated Continue calls instead of running straight through.
func (vm *VM) Start(chunk *bytecode.Chunk) {
	vm.chunk = chunk
	vm.ip = 0
	vm.stack = make([]Value, chunk.TopLevelLocals, initialStackSize)
	for i := range vm.stack {
		vm.stack[i] = value.Null{}
	}
	vm.frames = []CallFrame{{base: 0, localCount: chunk.TopLevelLocals, returnIP: -1, fnName: "<main>"}}
}

// Continue resumes the dispatch loop from the VM's current ip/stack/
// frames (as left by Start or a prior Continue) until Halt, a runtime
// error, or — if a Hook is installed — the hook requests a pause, in
// which case Continue returns a *PauseError and the VM's state is left
// exactly as it was about to execute the paused instruction.
func (vm *VM) Continue() (Value, error) {
	return vm.run()
}

// Run executes chunk from offset 0 (the start of the compiler's
// hoisted-function preamble, which jumps over each function body and
// binds it into globals) and returns the program's result: the last
// top-level expression
// statement's value, or Void if the program ended on a non-expression
// statement. Non-debugging callers should leave no Hook installed;
// debuggable callers use Start+Continue instead.
func (vm *VM) Run(chunk *bytecode.Chunk) (Value, error) {
	vm.Start(chunk)
	return vm.run()
}
