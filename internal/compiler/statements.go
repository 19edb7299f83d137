package compiler

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/token"
	"github.com/atlas-lang/atlas/internal/value"
)

// loopCtx tracks the jump-patch lists a break/continue inside the
// current loop needs to reach: every break jumps to the loop's exit,
// every continue jumps to the loop's post/condition re-check.
type loopCtx struct {
	breaks    []int
	continues []int
	postStart int // offset continues loop back to
}

func (c *Compiler) pushLoop() *loopCtx {
	l := &loopCtx{}
	c.loops = append(c.loops, l)
	return l
}

func (c *Compiler) popLoop() {
	c.loops = c.loops[:len(c.loops)-1]
}

func (c *Compiler) compileStmt(st ast.Stmt) {
	switch s := st.(type) {
	case *ast.FunctionDecl:
		// Only top-level functions are hoisted (spec.md §5); a fn declared
		// inside a block becomes callable from its declaration point
		// onward, same as the binder's sequential (non-hoisted) scope
		// entry for it — so it compiles here rather than in compileProgram.
		c.compileNestedFunction(s)
	case *ast.TypeAliasDecl, *ast.TraitDecl, *ast.ImplDecl, *ast.ImportStmt:
		// Top-level-only declarations; the parser never produces these
		// nested inside a block, so reaching here would be unreachable.
	case *ast.ExportStmt:
		if s.Decl != nil {
			if inner, ok := s.Decl.(ast.Stmt); ok {
				c.compileStmt(inner)
			}
		}
	case *ast.ExternDecl:
		// Bound later by the FFI layer; no bytecode to emit.
	case *ast.Block:
		c.beginScope()
		c.compileBlockStmts(s)
		c.endScope(s.Span())
	case *ast.VarDecl:
		c.compileVarDecl(s)
	case *ast.AssignStmt:
		c.compileAssign(s)
	case *ast.CompoundAssignStmt:
		c.compileCompoundAssign(s)
	case *ast.IncDecStmt:
		c.compileIncDec(s)
	case *ast.IfStmt:
		c.compileIf(s)
	case *ast.WhileStmt:
		c.compileWhile(s)
	case *ast.ForStmt:
		c.compileFor(s)
	case *ast.ForInStmt:
		c.compileForIn(s)
	case *ast.ReturnStmt:
		c.compileReturn(s)
	case *ast.BreakStmt:
		if len(c.loops) == 0 {
			c.internalError(s.Span(), "break outside loop reached compiler (checker should have rejected this)")
			return
		}
		l := c.loops[len(c.loops)-1]
		l.breaks = append(l.breaks, c.emitJump(bytecode.OpJump, s.Span()))
	case *ast.ContinueStmt:
		if len(c.loops) == 0 {
			c.internalError(s.Span(), "continue outside loop reached compiler (checker should have rejected this)")
			return
		}
		l := c.loops[len(c.loops)-1]
		l.continues = append(l.continues, c.emitJump(bytecode.OpJump, s.Span()))
	case *ast.ExprStmt:
		c.compileExpr(s.X)
		c.emitOp(bytecode.OpPop, s.Span())
	default:
		c.internalError(st.Span(), "unhandled statement %T", st)
	}
}

// compileBlockStmts compiles a block's statements without pushing/popping
// a scope itself (the caller owns scope boundaries: function bodies
// don't pop their parameter scope as a block, loop bodies share the
// loop's own scope, etc.)
func (c *Compiler) compileBlockStmts(b *ast.Block) {
	for _, st := range b.Stmts {
		c.compileStmt(st)
	}
}

func (c *Compiler) compileVarDecl(d *ast.VarDecl) {
	c.compileExpr(d.Value)
	if c.atGlobalScope() {
		c.emitSetGlobal(d.Name, d.Span())
		return
	}
	slot := c.declareLocal(d.Name, d.Span())
	c.emitSetLocal(slot, d.Span())
}

// compileNestedFunction compiles a fn declared inside a block: its body
// is emitted out-of-line (like a hoisted top-level function, jumped
// around so control never falls into it) but the resulting Function
// value is bound into a local slot at the declaration site instead of a
// global, so it is visible only from there on — callers elsewhere in the
// enclosing function resolve it like any other local via emitIdentLoad.
func (c *Compiler) compileNestedFunction(fn *ast.FunctionDecl) {
	skip := c.emitJump(bytecode.OpJump, fn.Span())
	offset := c.chunk.Len()
	outerFrame, outerInFn := c.frame, c.inFn
	c.frame, c.inFn = &funcScope{}, true
	for _, p := range fn.Params {
		c.declareLocal(p.Name, fn.Span())
	}
	c.compileBlockStmts(fn.Body)
	c.emitOp(bytecode.OpNull, fn.Span())
	c.emitOp(bytecode.OpReturn, fn.Span())
	localCount := c.frame.maxSlot
	c.frame, c.inFn = outerFrame, outerInFn
	c.patchJump(skip)

	variadic := len(fn.Params) > 0 && fn.Params[len(fn.Params)-1].Variadic
	idx := c.chunk.AddConstant(value.Function{
		Name:           fn.Name,
		Arity:          len(fn.Params),
		Variadic:       variadic,
		BytecodeOffset: offset,
		LocalCount:     localCount,
	})
	c.emitOp(bytecode.OpConstant, fn.Span())
	c.chunk.WriteU16(idx, fn.Span())
	slot := c.declareLocal(fn.Name, fn.Span())
	c.emitSetLocal(slot, fn.Span())
}

func (c *Compiler) compileIf(s *ast.IfStmt) {
	c.compileExpr(s.Cond)
	elseJump := c.emitJump(bytecode.OpJumpIfFalse, s.Cond.Span())
	c.beginScope()
	c.compileBlockStmts(s.Then)
	c.endScope(s.Then.Span())
	if s.Else == nil {
		c.patchJump(elseJump)
		return
	}
	endJump := c.emitJump(bytecode.OpJump, s.Span())
	c.patchJump(elseJump)
	c.compileStmt(s.Else)
	c.patchJump(endJump)
}

func (c *Compiler) compileWhile(s *ast.WhileStmt) {
	loopStart := c.chunk.Len()
	l := c.pushLoop()
	l.postStart = loopStart

	c.compileExpr(s.Cond)
	exitJump := c.emitJump(bytecode.OpJumpIfFalse, s.Cond.Span())
	c.beginScope()
	c.compileBlockStmts(s.Body)
	c.endScope(s.Body.Span())
	c.emitLoop(loopStart, s.Span())
	c.patchJump(exitJump)

	for _, b := range l.breaks {
		c.patchJump(b)
	}
	for _, ct := range l.continues {
		c.patchJumpTo(ct, l.postStart)
	}
	c.popLoop()
}

func (c *Compiler) compileFor(s *ast.ForStmt) {
	c.beginScope()
	if s.Init != nil {
		c.compileStmt(s.Init)
	}
	condStart := c.chunk.Len()
	var exitJump int
	hasCond := s.Cond != nil
	if hasCond {
		c.compileExpr(s.Cond)
		exitJump = c.emitJump(bytecode.OpJumpIfFalse, s.Cond.Span())
	}

	l := c.pushLoop()

	c.beginScope()
	c.compileBlockStmts(s.Body)
	c.endScope(s.Body.Span())

	postStart := c.chunk.Len()
	l.postStart = postStart
	if s.Post != nil {
		c.compileStmt(s.Post)
	}
	c.emitLoop(condStart, s.Span())
	if hasCond {
		c.patchJump(exitJump)
	}

	for _, b := range l.breaks {
		c.patchJump(b)
	}
	for _, ct := range l.continues {
		c.patchJumpTo(ct, l.postStart)
	}
	c.popLoop()
	c.endScope(s.Span())
}

func (c *Compiler) compileForIn(s *ast.ForInStmt) {
	// Lowered as: __iter = iterable; __i = 0; while __i < len(__iter) { name = __iter[__i]; body; __i += 1 }
	// using only the fixed 34-opcode ISA (no dedicated iteration opcode).
	c.beginScope()
	c.compileExpr(s.Iterable)
	iterSlot := c.newTemp()
	c.emitSetLocal(iterSlot, s.Iterable.Span())

	c.emitOp(bytecode.OpConstant, s.Span())
	c.chunk.WriteU16(c.chunk.AddConstant(numberZero()), s.Span())
	idxSlot := c.newTemp()
	c.emitSetLocal(idxSlot, s.Span())

	condStart := c.chunk.Len()
	c.emitGetLocal(idxSlot, s.Span())
	c.emitOp(bytecode.OpGetGlobal, s.Span())
	c.chunk.WriteU16(c.nameConstant("len"), s.Span())
	c.emitGetLocal(iterSlot, s.Span())
	c.emitOp(bytecode.OpCall, s.Span())
	c.chunk.WriteU8(1, s.Span())
	c.emitOp(bytecode.OpLess, s.Span())
	exitJump := c.emitJump(bytecode.OpJumpIfFalse, s.Span())

	l := c.pushLoop()

	c.beginScope()
	c.emitGetLocal(iterSlot, s.Span())
	c.emitGetLocal(idxSlot, s.Span())
	c.emitOp(bytecode.OpGetIndex, s.Span())
	itemSlot := c.declareLocal(s.Name, s.Span())
	c.emitSetLocal(itemSlot, s.Span())
	c.compileBlockStmts(s.Body)
	c.endScope(s.Body.Span())

	postStart := c.chunk.Len()
	l.postStart = postStart
	c.emitGetLocal(idxSlot, s.Span())
	c.emitOp(bytecode.OpConstant, s.Span())
	c.chunk.WriteU16(c.chunk.AddConstant(numberOne()), s.Span())
	c.emitOp(bytecode.OpAdd, s.Span())
	c.emitSetLocal(idxSlot, s.Span())
	c.emitLoop(condStart, s.Span())
	c.patchJump(exitJump)

	for _, b := range l.breaks {
		c.patchJump(b)
	}
	for _, ct := range l.continues {
		c.patchJumpTo(ct, l.postStart)
	}
	c.popLoop()
	c.endScope(s.Span())
}

func (c *Compiler) compileReturn(s *ast.ReturnStmt) {
	if s.Value != nil {
		c.compileExpr(s.Value)
	} else {
		c.emitOp(bytecode.OpNull, s.Span())
	}
	c.emitOp(bytecode.OpReturn, s.Span())
}

func (c *Compiler) compileAssign(s *ast.AssignStmt) {
	switch target := s.Target.(type) {
	case *ast.Ident:
		c.compileExpr(s.Value)
		c.emitIdentStore(target.Name, s.Span())
	case *ast.IndexExpr:
		c.compileIndexAssignChain(target, s.Value)
	default:
		c.internalError(s.Span(), "unsupported assignment target %T", s.Target)
	}
}

func (c *Compiler) compileCompoundAssign(s *ast.CompoundAssignStmt) {
	var op bytecode.Op
	switch s.Op {
	case token.PLUS_ASSIGN:
		op = bytecode.OpAdd
	case token.MINUS_ASSIGN:
		op = bytecode.OpSub
	case token.STAR_ASSIGN:
		op = bytecode.OpMul
	case token.SLASH_ASSIGN:
		op = bytecode.OpDiv
	case token.PERCENT_ASSIGN:
		op = bytecode.OpMod
	default:
		c.internalError(s.Span(), "unknown compound-assign operator %s", s.Op)
		return
	}
	switch target := s.Target.(type) {
	case *ast.Ident:
		c.emitIdentLoad(target.Name, s.Span())
		c.compileExpr(s.Value)
		c.emitOp(op, s.Span())
		c.emitIdentStore(target.Name, s.Span())
	case *ast.IndexExpr:
		// `a[i] += v` desugars to `a[i] = a[i] + v`.
		desugared := &ast.BinaryExpr{Op: compoundBinOp(s.Op), Left: target, Right: s.Value, Sp: s.Span()}
		c.compileIndexAssignChain(target, desugared)
	default:
		c.internalError(s.Span(), "unsupported compound-assign target %T", s.Target)
	}
}

func compoundBinOp(op token.Type) token.Type {
	switch op {
	case token.PLUS_ASSIGN:
		return token.PLUS
	case token.MINUS_ASSIGN:
		return token.MINUS
	case token.STAR_ASSIGN:
		return token.STAR
	case token.SLASH_ASSIGN:
		return token.SLASH
	case token.PERCENT_ASSIGN:
		return token.PERCENT
	default:
		return op
	}
}

func (c *Compiler) compileIncDec(s *ast.IncDecStmt) {
	op := bytecode.OpAdd
	if !s.Inc {
		op = bytecode.OpSub
	}
	ident, ok := s.Target.(*ast.Ident)
	if !ok {
		c.internalError(s.Span(), "unsupported increment/decrement target %T", s.Target)
		return
	}
	c.emitIdentLoad(ident.Name, s.Span())
	c.emitOp(bytecode.OpConstant, s.Span())
	c.chunk.WriteU16(c.chunk.AddConstant(numberOne()), s.Span())
	c.emitOp(op, s.Span())
	c.emitIdentStore(ident.Name, s.Span())
}

func numberZero() value.Value { return value.Number(0) }
func numberOne() value.Value  { return value.Number(1) }
