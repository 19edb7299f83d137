// Package interpreter is Atlas's tree-walking evaluator: the fast path
// used by `atlas run` and the REPL, and the reference semantics the
// bytecode VM is checked against. It assumes the program already passed
// the binder and type checker — the only errors it can raise are the
// ones those passes cannot rule out statically (division by zero, index
// out of bounds, calling a non-callable value, arity mismatch).
package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

// Value is the runtime value type threaded through evaluation.
type Value = value.Value

// Closure pairs a user-defined function with the environment it closed
// over at definition time. It lives in this package (not value) because
// it embeds *Environment.
type Closure struct {
	Decl *ast.FunctionDecl
	Env  *Environment
}

func (*Closure) TypeName() string { return "function" }

// maxCallDepth bounds recursion so a runaway Atlas program raises a
// RuntimeError instead of crashing the host process with a Go stack
// overflow.
const maxCallDepth = 4096

// Interpreter holds the state shared across one program's evaluation:
// the global scope, the call-stack-overflow guard, a security policy
// record, and the output sink for print().
type Interpreter struct {
	Out       io.Writer
	Globals   *Environment
	callDepth int
	Security  *SecurityContext
}

// SecurityContext records capability flags for side effects outside the
// language's pure evaluation model (filesystem, process, FFI, network).
// No builtin reads these flags, so they do not restrict anything.
type SecurityContext struct {
	AllowFS      bool
	AllowProcess bool
	AllowFFI     bool
	AllowNetwork bool
}

// New creates an Interpreter with stdout as its output sink and every
// privileged capability denied.
func New() *Interpreter {
	i := &Interpreter{
		Out:      os.Stdout,
		Globals:  NewEnvironment(),
		Security: &SecurityContext{},
	}
	i.registerPrelude()
	return i
}

// Run hoists every top-level declaration in prog, binds module-provided
// imports if any, then executes top-level statements in order. It
// returns the value of the last top-level expression statement, if any.
func (i *Interpreter) Run(prog *ast.Program) (Value, error) {
	if err := i.hoistProgram(prog, i.Globals); err != nil {
		return nil, err
	}
	var last Value = value.Void{}
	for _, item := range prog.Items {
		st, ok := item.(ast.Stmt)
		if !ok {
			continue
		}
		if isHoistable(st) {
			continue
		}
		v, sig, err := i.evalStmt(st, i.Globals)
		if err != nil {
			return nil, err
		}
		if sig.kind == signalReturn {
			return sig.value, nil
		}
		if v != nil {
			last = v
		}
	}
	return last, nil
}

// unwrapExport returns the inner declaration an export wraps, or item
// itself if it isn't an export.
func unwrapExport(item ast.Item) ast.Item {
	if ex, ok := item.(*ast.ExportStmt); ok && ex.Decl != nil {
		return ex.Decl
	}
	return item
}

func isHoistable(st ast.Stmt) bool {
	switch unwrapExport(st).(type) {
	case *ast.FunctionDecl, *ast.TypeAliasDecl, *ast.TraitDecl, *ast.ImplDecl, *ast.ImportStmt:
		return true
	default:
		return false
	}
}

// hoistProgram defines every function (including impl methods, per the
// static-monomorphization dispatch decision — impl methods share the
// flat global function namespace with no receiver) before any top-level
// statement runs, so forward references and mutual recursion resolve.
func (i *Interpreter) hoistProgram(prog *ast.Program, env *Environment) error {
	for _, item := range prog.Items {
		switch d := unwrapExport(item).(type) {
		case *ast.FunctionDecl:
			env.Define(d.Name, &Closure{Decl: d, Env: env}, false)
		case *ast.ImplDecl:
			for _, m := range d.Methods {
				env.Define(m.Name, &Closure{Decl: m, Env: env}, false)
			}
		}
	}
	return nil
}

// evalStmt executes a single statement, returning any produced value
// (only ExprStmt produces one; everything else yields nil) and a signal
// describing non-local control flow (break/continue/return).
func (i *Interpreter) evalStmt(st ast.Stmt, env *Environment) (Value, signal, error) {
	switch s := st.(type) {
	case *ast.FunctionDecl:
		// Only top-level functions are hoisted (spec.md §5); a fn declared
		// inside a block is bound here, at its declaration point, so it is
		// callable from there on but not before — matching the binder's
		// sequential (non-hoisted) scope entry for it.
		env.Define(s.Name, &Closure{Decl: s, Env: env}, false)
		return nil, noSignal, nil
	case *ast.TypeAliasDecl, *ast.TraitDecl, *ast.ImplDecl, *ast.ImportStmt:
		return nil, noSignal, nil // top-level-only; hoisted already
	case *ast.ExportStmt:
		if s.Decl != nil {
			return i.evalStmt(s.Decl.(ast.Stmt), env)
		}
		return nil, noSignal, nil
	case *ast.ExternDecl:
		return nil, noSignal, nil // bound later by the FFI layer
	case *ast.Block:
		return i.evalBlock(s, NewEnclosedEnvironment(env))
	case *ast.VarDecl:
		v, err := i.evalExpr(s.Value, env)
		if tp, ok := err.(*tryPropagation); ok {
			return nil, signal{kind: signalReturn, value: tp.value}, nil
		}
		if err != nil {
			return nil, noSignal, err
		}
		env.Define(s.Name, v, s.Mutable)
		return nil, noSignal, nil
	case *ast.AssignStmt:
		return nil, noSignal, i.evalAssign(s, env)
	case *ast.CompoundAssignStmt:
		return nil, noSignal, i.evalCompoundAssign(s, env)
	case *ast.IncDecStmt:
		return nil, noSignal, i.evalIncDec(s, env)
	case *ast.IfStmt:
		return i.evalIf(s, env)
	case *ast.WhileStmt:
		return i.evalWhile(s, env)
	case *ast.ForStmt:
		return i.evalFor(s, env)
	case *ast.ForInStmt:
		return i.evalForIn(s, env)
	case *ast.ReturnStmt:
		var v Value = value.Void{}
		if s.Value != nil {
			var err error
			v, err = i.evalExpr(s.Value, env)
			if tp, ok := err.(*tryPropagation); ok {
				return nil, signal{kind: signalReturn, value: tp.value}, nil
			}
			if err != nil {
				return nil, noSignal, err
			}
		}
		return nil, signal{kind: signalReturn, value: v}, nil
	case *ast.BreakStmt:
		return nil, signal{kind: signalBreak}, nil
	case *ast.ContinueStmt:
		return nil, signal{kind: signalContinue}, nil
	case *ast.ExprStmt:
		v, err := i.evalExpr(s.X, env)
		if tp, ok := err.(*tryPropagation); ok {
			return nil, signal{kind: signalReturn, value: tp.value}, nil
		}
		return v, noSignal, err
	default:
		return nil, noSignal, fmt.Errorf("interpreter: unhandled statement %T", st)
	}
}

func (i *Interpreter) evalBlock(b *ast.Block, env *Environment) (Value, signal, error) {
	var last Value
	for _, st := range b.Stmts {
		v, sig, err := i.evalStmt(st, env)
		if err != nil {
			return nil, noSignal, err
		}
		if sig.kind != signalNone {
			return nil, sig, nil
		}
		if v != nil {
			last = v
		}
	}
	return last, noSignal, nil
}

func (i *Interpreter) evalIf(s *ast.IfStmt, env *Environment) (Value, signal, error) {
	cond, err := i.evalExpr(s.Cond, env)
	if err != nil {
		return nil, noSignal, err
	}
	b, ok := cond.(value.Bool)
	if !ok {
		return nil, noSignal, newRuntimeError(diag.ErrRuntimeNonCall, s.Cond.Span(), "condition did not evaluate to a bool")
	}
	if bool(b) {
		return i.evalBlock(s.Then, NewEnclosedEnvironment(env))
	}
	if s.Else != nil {
		return i.evalStmt(s.Else, env)
	}
	return nil, noSignal, nil
}

func (i *Interpreter) evalWhile(s *ast.WhileStmt, env *Environment) (Value, signal, error) {
	for {
		cond, err := i.evalExpr(s.Cond, env)
		if err != nil {
			return nil, noSignal, err
		}
		b, ok := cond.(value.Bool)
		if !ok {
			return nil, noSignal, newRuntimeError(diag.ErrRuntimeNonCall, s.Cond.Span(), "condition did not evaluate to a bool")
		}
		if !bool(b) {
			return nil, noSignal, nil
		}
		_, sig, err := i.evalBlock(s.Body, NewEnclosedEnvironment(env))
		if err != nil {
			return nil, noSignal, err
		}
		if sig.kind == signalBreak {
			return nil, noSignal, nil
		}
		if sig.kind == signalReturn {
			return nil, sig, nil
		}
	}
}

func (i *Interpreter) evalFor(s *ast.ForStmt, env *Environment) (Value, signal, error) {
	loopEnv := NewEnclosedEnvironment(env)
	if s.Init != nil {
		if _, _, err := i.evalStmt(s.Init, loopEnv); err != nil {
			return nil, noSignal, err
		}
	}
	for {
		if s.Cond != nil {
			cond, err := i.evalExpr(s.Cond, loopEnv)
			if err != nil {
				return nil, noSignal, err
			}
			b, ok := cond.(value.Bool)
			if !ok {
				return nil, noSignal, newRuntimeError(diag.ErrRuntimeNonCall, s.Cond.Span(), "condition did not evaluate to a bool")
			}
			if !bool(b) {
				return nil, noSignal, nil
			}
		}
		_, sig, err := i.evalBlock(s.Body, NewEnclosedEnvironment(loopEnv))
		if err != nil {
			return nil, noSignal, err
		}
		if sig.kind == signalBreak {
			return nil, noSignal, nil
		}
		if sig.kind == signalReturn {
			return nil, sig, nil
		}
		if s.Post != nil {
			if _, _, err := i.evalStmt(s.Post, loopEnv); err != nil {
				return nil, noSignal, err
			}
		}
	}
}

func (i *Interpreter) evalForIn(s *ast.ForInStmt, env *Environment) (Value, signal, error) {
	iter, err := i.evalExpr(s.Iterable, env)
	if err != nil {
		return nil, noSignal, err
	}
	items, err := iterableItems(iter, s.Iterable.Span())
	if err != nil {
		return nil, noSignal, err
	}
	for _, item := range items {
		iterEnv := NewEnclosedEnvironment(env)
		iterEnv.Define(s.Name, item, false)
		_, sig, err := i.evalBlock(s.Body, iterEnv)
		if err != nil {
			return nil, noSignal, err
		}
		if sig.kind == signalBreak {
			return nil, noSignal, nil
		}
		if sig.kind == signalReturn {
			return nil, sig, nil
		}
	}
	return nil, noSignal, nil
}

func iterableItems(v Value, span diag.Span) ([]Value, error) {
	switch x := v.(type) {
	case *value.Array:
		return x.Items, nil
	case *value.Queue:
		return x.Items, nil
	case *value.Stack:
		return x.Items, nil
	case value.String:
		runes := []rune(string(x))
		out := make([]Value, len(runes))
		for idx, r := range runes {
			out[idx] = value.String(string(r))
		}
		return out, nil
	default:
		return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "value of type %s is not iterable", v.TypeName())
	}
}
