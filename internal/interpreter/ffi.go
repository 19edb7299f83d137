package interpreter

import "github.com/atlas-lang/atlas/internal/diag"

// DefineGlobal binds name into the top-level scope, used by the FFI
// layer to install an extern declaration's marshaled value.Native once
// its library symbol has been resolved.
func (i *Interpreter) DefineGlobal(name string, v Value) {
	i.Globals.Define(name, v, false)
}

// CallNamed looks up name in the global scope and calls it with args.
// It is the entry point a C→Atlas callback trampoline uses to re-enter
// the interpreter: the trampoline's closure captures the *Interpreter*
// the creating extern call ran on (spec.md §4.10 — "a fresh interpreter
// derived from the creating interpreter's globals and function bodies").
func (i *Interpreter) CallNamed(name string, args []Value) (Value, error) {
	callee, ok := i.Globals.Get(name)
	if !ok {
		return nil, newRuntimeError(diag.ErrUndefinedVar, diag.Dummy, "callback target '%s' is not defined", name)
	}
	return i.callValue(callee, args, diag.Dummy)
}
