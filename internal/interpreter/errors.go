package interpreter

import (
	"fmt"

	"github.com/atlas-lang/atlas/internal/diag"
)

// RuntimeError is raised by the interpreter for faults the checker
// cannot rule out statically: division by zero, out-of-bounds index,
// calling a non-callable value, arity mismatch, and the like. It
// carries the same Code/Span shape as compile-time diagnostics so the
// CLI and debugger can report it uniformly.
type RuntimeError struct {
	Code diag.Code
	Msg  string
	Span diag.Span
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Msg) }

// Diagnostic renders the RuntimeError as a Diagnostic for the CLI's
// shared error-reporting path.
func (e *RuntimeError) Diagnostic() *diag.Diagnostic {
	return diag.New(e.Code, e.Span, "%s", e.Msg)
}

func newRuntimeError(code diag.Code, span diag.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Code: code, Msg: fmt.Sprintf(format, args...), Span: span}
}
