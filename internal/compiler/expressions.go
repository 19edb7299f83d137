package compiler

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/token"
	"github.com/atlas-lang/atlas/internal/value"
)

func (c *Compiler) compileExpr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.Literal:
		c.compileLiteral(x)
	case *ast.Ident:
		c.emitIdentLoad(x.Name, x.Span())
	case *ast.UnaryExpr:
		c.compileExpr(x.X)
		switch x.Op {
		case token.MINUS:
			c.emitOp(bytecode.OpNegate, x.Span())
		case token.BANG:
			c.emitOp(bytecode.OpNot, x.Span())
		default:
			c.internalError(x.Span(), "unknown unary operator %s", x.Op)
		}
	case *ast.BinaryExpr:
		c.compileBinary(x)
	case *ast.CallExpr:
		c.compileExpr(x.Callee)
		for _, arg := range x.Args {
			c.compileExpr(arg)
		}
		c.emitOp(bytecode.OpCall, x.Span())
		c.chunk.WriteU8(uint8(len(x.Args)), x.Span())
	case *ast.IndexExpr:
		c.compileExpr(x.X)
		c.compileExpr(x.Index)
		c.emitOp(bytecode.OpGetIndex, x.Span())
	case *ast.MemberExpr:
		// The only member the data model exposes is `.length` on Array
		// and String (interpreter's evalMember), and `.length` lowers to
		// the same `len` prelude call compileForIn uses. The checker
		// reports unknown fields only on structural types, so any other
		// member reaching here is reported as an internal error.
		if x.Member != "length" {
			c.internalError(x.Span(), "unsupported member %q (checker should have rejected this)", x.Member)
			break
		}
		c.emitGetGlobal("len", x.Span())
		c.compileExpr(x.X)
		c.emitOp(bytecode.OpCall, x.Span())
		c.chunk.WriteU8(1, x.Span())
	case *ast.ArrayLiteral:
		for _, el := range x.Elements {
			c.compileExpr(el)
		}
		c.emitOp(bytecode.OpArray, x.Span())
		c.chunk.WriteU16(uint16(len(x.Elements)), x.Span())
	case *ast.GroupExpr:
		c.compileExpr(x.X)
	case *ast.MatchExpr:
		c.compileMatch(x)
	case *ast.TryExpr:
		// `x?` propagates a non-Ok/non-Some value as an early return;
		// the VM has no dedicated opcode for it, so it's lowered with
		// the same Call/Return machinery a hand-written
		// `match x? { ... }` would use. The checker checks the operand
		// but does not require it to be a Result or Option.
		c.compileTry(x)
	default:
		c.internalError(e.Span(), "unhandled expression %T", e)
	}
}

func (c *Compiler) compileLiteral(l *ast.Literal) {
	switch v := l.Value.(type) {
	case nil:
		c.emitOp(bytecode.OpNull, l.Span())
	case bool:
		if v {
			c.emitOp(bytecode.OpTrue, l.Span())
		} else {
			c.emitOp(bytecode.OpFalse, l.Span())
		}
	case float64:
		c.emitOp(bytecode.OpConstant, l.Span())
		c.chunk.WriteU16(c.chunk.AddConstant(value.Number(v)), l.Span())
	case string:
		c.emitOp(bytecode.OpConstant, l.Span())
		c.chunk.WriteU16(c.chunk.AddConstant(value.String(v)), l.Span())
	default:
		c.internalError(l.Span(), "unknown literal kind %T", l.Value)
	}
}

func (c *Compiler) compileBinary(e *ast.BinaryExpr) {
	switch e.Op {
	case token.AND_AND:
		c.compileExpr(e.Left)
		// OpAnd: if TOS is falsy, skip the next instruction (leaving the
		// falsy left operand as the short-circuited result); otherwise
		// fall through to evaluate and leave the right operand.
		c.emitOp(bytecode.OpAnd, e.Span())
		skip := c.emitJump(bytecode.OpJump, e.Span())
		c.compileExpr(e.Right)
		c.patchJump(skip)
		return
	case token.OR_OR:
		c.compileExpr(e.Left)
		c.emitOp(bytecode.OpOr, e.Span())
		skip := c.emitJump(bytecode.OpJump, e.Span())
		c.compileExpr(e.Right)
		c.patchJump(skip)
		return
	}

	c.compileExpr(e.Left)
	c.compileExpr(e.Right)
	switch e.Op {
	case token.PLUS:
		c.emitOp(bytecode.OpAdd, e.Span())
	case token.MINUS:
		c.emitOp(bytecode.OpSub, e.Span())
	case token.STAR:
		c.emitOp(bytecode.OpMul, e.Span())
	case token.SLASH:
		c.emitOp(bytecode.OpDiv, e.Span())
	case token.PERCENT:
		c.emitOp(bytecode.OpMod, e.Span())
	case token.EQ:
		c.emitOp(bytecode.OpEqual, e.Span())
	case token.NOT_EQ:
		c.emitOp(bytecode.OpNotEqual, e.Span())
	case token.LT:
		c.emitOp(bytecode.OpLess, e.Span())
	case token.LTE:
		c.emitOp(bytecode.OpLessEqual, e.Span())
	case token.GT:
		c.emitOp(bytecode.OpGreater, e.Span())
	case token.GTE:
		c.emitOp(bytecode.OpGreaterEqual, e.Span())
	default:
		c.internalError(e.Span(), "unknown binary operator %s", e.Op)
	}
}
