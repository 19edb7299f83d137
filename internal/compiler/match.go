package compiler

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

// compileMatch lowers a MatchExpr using only the fixed 34-opcode ISA:
// the subject is stashed in a temp local once, each arm's pattern test
// is compiled to boolean-producing code (Equal for literals, a set of
// hidden runtime helper globals for tagged variants), and pattern
// variables are bound to further temp locals before the arm body runs.
// Exhaustiveness is guaranteed by the checker (AT3027); the generated
// "no arm matched" tail is unreachable on a well-typed program and exists
// only so every path through the expression balances the value stack.
func (c *Compiler) compileMatch(e *ast.MatchExpr) {
	c.compileExpr(e.Subject)
	subjSlot := c.newTemp()
	c.emitSetLocal(subjSlot, e.Subject.Span())

	var endJumps []int
	for _, arm := range e.Arms {
		c.compilePatternTest(arm.Pattern, subjSlot)
		nextArm := c.emitJump(bytecode.OpJumpIfFalse, arm.Pattern.Span())
		c.beginScope()
		c.compilePatternBind(arm.Pattern, subjSlot)
		if arm.Guard != nil {
			c.compileExpr(arm.Guard)
			guardFail := c.emitJump(bytecode.OpJumpIfFalse, arm.Guard.Span())
			c.compileExpr(arm.Body)
			c.endScope(arm.Body.Span())
			endJumps = append(endJumps, c.emitJump(bytecode.OpJump, arm.Body.Span()))
			c.patchJump(guardFail)
			c.endScope(arm.Body.Span())
		} else {
			c.compileExpr(arm.Body)
			c.endScope(arm.Body.Span())
			endJumps = append(endJumps, c.emitJump(bytecode.OpJump, arm.Body.Span()))
		}
		c.patchJump(nextArm)
	}

	c.emitGetGlobal("__match_fail", e.Span())
	c.emitOp(bytecode.OpCall, e.Span())
	c.chunk.WriteU8(0, e.Span())
	// __match_fail always raises a RuntimeError; the VM never executes
	// past the Call. This Null only keeps the stack depth consistent
	// with every other arm's single pushed value, for callers that
	// disassemble/verify jump targets by stack-depth bookkeeping.
	c.emitOp(bytecode.OpPop, e.Span())
	c.emitOp(bytecode.OpNull, e.Span())

	for _, j := range endJumps {
		c.patchJump(j)
	}
}

// compilePatternTest emits code that pushes a single Bool: whether pat
// matches the value currently held in subjSlot.
func (c *Compiler) compilePatternTest(pat ast.Pattern, subjSlot int) {
	span := pat.Span()
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.VariablePattern:
		c.emitOp(bytecode.OpTrue, span)
	case *ast.LiteralPattern:
		c.emitGetLocal(subjSlot, span)
		c.emitLiteralValue(p.Value, span)
		c.emitOp(bytecode.OpEqual, span)
	case *ast.OrPattern:
		for idx, alt := range p.Alternatives {
			c.compilePatternTest(alt, subjSlot)
			if idx < len(p.Alternatives)-1 {
				c.emitOp(bytecode.OpOr, span)
				skip := c.emitJump(bytecode.OpJump, span)
				// Or is only consulted (and the next alt skipped) when
				// the left side was already true; when false we fall
				// through to test the next alternative.
				c.patchJump(skip)
			}
		}
	case *ast.ArrayPattern:
		c.emitGetLocal(subjSlot, span)
		c.emitOp(bytecode.OpConstant, span)
		c.chunk.WriteU16(c.chunk.AddConstant(value.Number(float64(len(p.Elements)))), span)
		c.emitCallHelper("__array_len_eq", 2, span)
		for idx, elemPat := range p.Elements {
			elemSlot := c.newTemp()
			c.emitGetLocal(subjSlot, span)
			c.emitOp(bytecode.OpConstant, span)
			c.chunk.WriteU16(c.chunk.AddConstant(value.Number(float64(idx))), span)
			c.emitOp(bytecode.OpGetIndex, span)
			c.emitSetLocal(elemSlot, span)
			c.compilePatternTest(elemPat, elemSlot)
			c.emitOp(bytecode.OpAnd, span)
			skip := c.emitJump(bytecode.OpJump, span)
			c.patchJump(skip)
		}
	case *ast.ConstructorPattern:
		switch p.Name {
		case "Some":
			c.emitGetLocal(subjSlot, span)
			c.emitCallHelper("__is_some", 1, span)
		case "None":
			c.emitGetLocal(subjSlot, span)
			c.emitCallHelper("__is_none", 1, span)
		case "Ok":
			c.emitGetLocal(subjSlot, span)
			c.emitCallHelper("__is_ok", 1, span)
		case "Err":
			c.emitGetLocal(subjSlot, span)
			c.emitCallHelper("__is_err", 1, span)
		default:
			c.internalError(span, "unknown constructor pattern %q", p.Name)
			return
		}
		if len(p.Args) == 1 {
			innerSlot := c.newTemp()
			c.emitGetLocal(subjSlot, span)
			c.emitCallHelper(unwrapHelperFor(p.Name), 1, span)
			c.emitSetLocal(innerSlot, span)
			c.compilePatternTest(p.Args[0], innerSlot)
			c.emitOp(bytecode.OpAnd, span)
			skip := c.emitJump(bytecode.OpJump, span)
			c.patchJump(skip)
		}
	default:
		c.internalError(span, "unhandled pattern %T", pat)
	}
}

// compilePatternBind emits code that declares and assigns a local for
// every VariablePattern reachable (without crossing into an OrPattern's
// alternatives, which bind no variables in compiled code; the
// tree-walking interpreter does bind them).
func (c *Compiler) compilePatternBind(pat ast.Pattern, subjSlot int) {
	span := pat.Span()
	switch p := pat.(type) {
	case *ast.VariablePattern:
		c.emitGetLocal(subjSlot, span)
		slot := c.declareLocal(p.Name, span)
		c.emitSetLocal(slot, span)
	case *ast.ArrayPattern:
		for idx, elemPat := range p.Elements {
			elemSlot := c.newTemp()
			c.emitGetLocal(subjSlot, span)
			c.emitOp(bytecode.OpConstant, span)
			c.chunk.WriteU16(c.chunk.AddConstant(value.Number(float64(idx))), span)
			c.emitOp(bytecode.OpGetIndex, span)
			c.emitSetLocal(elemSlot, span)
			c.compilePatternBind(elemPat, elemSlot)
		}
	case *ast.ConstructorPattern:
		if len(p.Args) == 1 {
			innerSlot := c.newTemp()
			c.emitGetLocal(subjSlot, span)
			c.emitCallHelper(unwrapHelperFor(p.Name), 1, span)
			c.emitSetLocal(innerSlot, span)
			c.compilePatternBind(p.Args[0], innerSlot)
		}
	default:
		// Wildcard, Literal, Or: nothing to bind.
	}
}

func unwrapHelperFor(constructor string) string {
	switch constructor {
	case "Some":
		return "__unwrap_some"
	case "Ok":
		return "__unwrap_ok"
	case "Err":
		return "__unwrap_err"
	default:
		return "__match_fail"
	}
}

// emitCallHelper calls one of the VM's hidden runtime-support globals
// (registered alongside print/len/str, but not part of the user-visible
// prelude) with argc already-pushed arguments.
func (c *Compiler) emitCallHelper(name string, argc int, span diag.Span) {
	// The callee must be pushed *before* its arguments; the arguments for
	// this helper are already on the stack, so thread the callee in via
	// a temp local: pop args into temps, push callee, push args back.
	argSlots := make([]int, argc)
	for i := argc - 1; i >= 0; i-- {
		argSlots[i] = c.newTemp()
		c.emitSetLocal(argSlots[i], span)
	}
	c.emitGetGlobal(name, span)
	for _, slot := range argSlots {
		c.emitGetLocal(slot, span)
	}
	c.emitOp(bytecode.OpCall, span)
	c.chunk.WriteU8(uint8(argc), span)
}

func (c *Compiler) emitLiteralValue(v interface{}, span diag.Span) {
	var val value.Value
	switch x := v.(type) {
	case nil:
		c.emitOp(bytecode.OpNull, span)
		return
	case bool:
		if x {
			c.emitOp(bytecode.OpTrue, span)
		} else {
			c.emitOp(bytecode.OpFalse, span)
		}
		return
	case float64:
		val = value.Number(x)
	case string:
		val = value.String(x)
	default:
		c.internalError(span, "unknown literal pattern value %T", v)
		return
	}
	c.emitOp(bytecode.OpConstant, span)
	c.chunk.WriteU16(c.chunk.AddConstant(val), span)
}

// compileTry lowers `x?`: evaluate once into a temp local, ask the
// VM's hidden __try_failed helper whether it's an Err/None, and either
// return the original value immediately (propagating it to the caller,
// mirroring the interpreter's tryPropagation unwind) or unwrap it as the
// expression's value.
func (c *Compiler) compileTry(x *ast.TryExpr) {
	span := x.Span()
	c.compileExpr(x.X)
	slot := c.newTemp()
	c.emitSetLocal(slot, span)

	c.emitGetLocal(slot, span)
	c.emitCallHelper("__try_failed", 1, span)
	okJump := c.emitJump(bytecode.OpJumpIfFalse, span)
	c.emitGetLocal(slot, span)
	c.emitOp(bytecode.OpReturn, span)
	c.patchJump(okJump)

	c.emitGetLocal(slot, span)
	c.emitCallHelper("__try_unwrap", 1, span)
}
