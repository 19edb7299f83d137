// Package compiler lowers a bound, type-checked AST to Atlas bytecode in
// a single pass: local-slot assignment per function, forward-jump
// patching for control flow, and a DebugSpan emitted alongside every
// instruction (spec.md §4.7). The lowering produces one bytecode.Chunk
// per program; each top-level function's body is emitted once, and its
// value.Function constant records the byte offset the VM's Call
// instruction jumps to.
package compiler

import (
	"fmt"

	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

// local is one function-local binding: its name (for resolution), the
// block-nesting depth it was declared at (for scope-exit cleanup) and
// its fixed stack slot.
type local struct {
	name  string
	depth int
	slot  int
}

// funcScope is the local-slot bookkeeping for one bytecode frame: the
// top-level statement sequence (frame 0) gets one for the whole program,
// and each hoisted function gets its own while its body compiles.
// Locals nested inside a block/loop/match-arm always get a slot here,
// even at the top level — only a VarDecl reached directly at depth 0 of
// the top-level sequence binds into the VM's globals map instead,
// mirroring the interpreter's single shared Globals environment
// (spec.md §4.6); everything else lives in frame 0's own local window
// because functions have no closures and could never see it regardless.
type funcScope struct {
	locals     []local
	scopeDepth int
	nextSlot   int
	maxSlot    int
}

// Compiler walks one Program and emits bytecode into a single Chunk.
type Compiler struct {
	chunk *bytecode.Chunk
	frame *funcScope // always non-nil: frame 0 at the top level
	inFn  bool       // true while compiling a hoisted function's body
	diags diag.List
	loops []*loopCtx
}

// New creates a Compiler over a fresh, empty Chunk.
func New() *Compiler {
	return &Compiler{chunk: bytecode.NewChunk(), frame: &funcScope{}}
}

// Compile lowers prog to a Chunk. Top-level functions (and impl methods,
// per the static-monomorphization dispatch decision in DESIGN.md) are
// compiled first, each body behind an unconditional jump that skips it,
// followed by the code that binds it into globals; the top-level
// statement sequence comes after them and executes exactly as the
// interpreter's Run does.
func Compile(prog *ast.Program) (*bytecode.Chunk, diag.List) {
	c := New()
	c.compileProgram(prog)
	c.chunk.TopLevelLocals = c.frame.maxSlot
	return c.chunk, c.diags
}

func (c *Compiler) errorf(span diag.Span, format string, args ...interface{}) {
	c.diags = append(c.diags, diag.New(diag.ErrParse, span, format, args...))
}

func unwrapExport(item ast.Item) ast.Item {
	if ex, ok := item.(*ast.ExportStmt); ok && ex.Decl != nil {
		return ex.Decl
	}
	return item
}

func (c *Compiler) compileProgram(prog *ast.Program) {
	var fns []*ast.FunctionDecl
	for _, item := range prog.Items {
		switch d := unwrapExport(item).(type) {
		case *ast.FunctionDecl:
			fns = append(fns, d)
		case *ast.ImplDecl:
			fns = append(fns, d.Methods...)
		}
	}

	for _, fn := range fns {
		c.compileHoistedFunction(fn)
	}

	var stmts []ast.Stmt
	for _, item := range prog.Items {
		st, ok := item.(ast.Stmt)
		if !ok || isHoistable(st) {
			continue
		}
		stmts = append(stmts, st)
	}

	// The interpreter's Run returns the last top-level ExprStmt's value
	// as the program's result (spec.md §8 invariant 2: engine
	// equivalence covers "final return value or printed output"); every
	// other ExprStmt discards its value with an ordinary Pop, so only the
	// trailing one is left on the stack for Halt to report.
	for idx, st := range stmts {
		if idx == len(stmts)-1 {
			if es, ok := st.(*ast.ExprStmt); ok {
				c.compileExpr(es.X)
				c.emitOp(bytecode.OpHalt, st.Span())
				return
			}
		}
		c.compileStmt(st)
	}
	c.emitOp(bytecode.OpHalt, diag.Dummy)
}

func isHoistable(st ast.Stmt) bool {
	switch unwrapExport(st).(type) {
	case *ast.FunctionDecl, *ast.TypeAliasDecl, *ast.TraitDecl, *ast.ImplDecl, *ast.ImportStmt:
		return true
	default:
		return false
	}
}

// compileHoistedFunction compiles fn's body behind a jump that skips it
// and binds a Function constant under fn's name in globals, so both the
// interpreter and the VM resolve calls to it by name.
func (c *Compiler) compileHoistedFunction(fn *ast.FunctionDecl) {
	skip := c.emitJump(bytecode.OpJump, fn.Span())
	offset := c.chunk.Len()
	outerFrame, outerInFn := c.frame, c.inFn
	c.frame, c.inFn = &funcScope{}, true
	for _, p := range fn.Params {
		c.declareLocal(p.Name, fn.Span())
	}
	c.compileBlockStmts(fn.Body)
	// Fall-through return: void functions (and any path that doesn't
	// explicitly return) yield Null, matching the interpreter's
	// `ReturnStmt{Value: nil}` default in evalStmt.
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
	c.emitSetGlobal(fn.Name, fn.Span())
}

// --- scopes & locals ---

func (c *Compiler) beginScope() {
	c.frame.scopeDepth++
}

func (c *Compiler) endScope(span diag.Span) {
	c.frame.scopeDepth--
	for len(c.frame.locals) > 0 && c.frame.locals[len(c.frame.locals)-1].depth > c.frame.scopeDepth {
		c.emitOp(bytecode.OpPop, span)
		c.frame.locals = c.frame.locals[:len(c.frame.locals)-1]
		c.frame.nextSlot--
	}
}

// atGlobalScope reports whether a bare VarDecl reached right here binds
// into the VM's globals map: only true at the direct top-level statement
// sequence (depth 0, outside any function). Anything nested — loop
// bodies, if/match arms, even when lexically at the top level — gets an
// ordinary frame-0 local slot instead, since a hoisted function can
// never see it either way.
func (c *Compiler) atGlobalScope() bool {
	return !c.inFn && c.frame.scopeDepth == 0
}

// declareLocal reserves the next slot in the current frame for name.
func (c *Compiler) declareLocal(name string, span diag.Span) int {
	slot := c.frame.nextSlot
	c.frame.locals = append(c.frame.locals, local{name: name, depth: c.frame.scopeDepth, slot: slot})
	c.frame.nextSlot++
	if c.frame.nextSlot > c.frame.maxSlot {
		c.frame.maxSlot = c.frame.nextSlot
	}
	return slot
}

// newTemp allocates a slot for a synthetic, non-name-addressable local
// in the current frame — used by match/try/chained-index-assignment
// lowering, which all need scratch storage regardless of nesting level.
func (c *Compiler) newTemp() int {
	slot := c.frame.nextSlot
	c.frame.nextSlot++
	if c.frame.nextSlot > c.frame.maxSlot {
		c.frame.maxSlot = c.frame.nextSlot
	}
	return slot
}

func (c *Compiler) resolveLocal(name string) (slot int, ok bool) {
	for i := len(c.frame.locals) - 1; i >= 0; i-- {
		if c.frame.locals[i].name == name {
			return c.frame.locals[i].slot, true
		}
	}
	return 0, false
}

// --- emit helpers ---

func (c *Compiler) emitOp(op bytecode.Op, span diag.Span) int {
	return c.chunk.WriteOp(op, span)
}

func (c *Compiler) emitJump(op bytecode.Op, span diag.Span) int {
	c.emitOp(op, span)
	offset := c.chunk.Len()
	c.chunk.WriteU16(0xFFFF, span)
	return offset
}

func (c *Compiler) patchJump(offset int) {
	c.patchJumpTo(offset, c.chunk.Len())
}

// patchJumpTo patches a forward jump whose 2-byte operand starts at
// offset so it lands exactly on target (used for continue, which jumps
// to the loop's post/condition re-check rather than "here").
func (c *Compiler) patchJumpTo(offset, target int) {
	jump := target - offset - 2
	c.chunk.PatchU16(offset, uint16(jump))
}

// emitLoop emits a backward Loop jump to start.
func (c *Compiler) emitLoop(start int, span diag.Span) {
	c.emitOp(bytecode.OpLoop, span)
	back := c.chunk.Len() - start + 2
	c.chunk.WriteU16(uint16(back), span)
}

func (c *Compiler) nameConstant(name string) uint16 {
	for i, v := range c.chunk.Constants {
		if s, ok := v.(value.String); ok && string(s) == name {
			return uint16(i)
		}
	}
	return c.chunk.AddConstant(value.String(name))
}

func (c *Compiler) emitGetGlobal(name string, span diag.Span) {
	c.emitOp(bytecode.OpGetGlobal, span)
	c.chunk.WriteU16(c.nameConstant(name), span)
}

func (c *Compiler) emitSetGlobal(name string, span diag.Span) {
	c.emitOp(bytecode.OpSetGlobal, span)
	c.chunk.WriteU16(c.nameConstant(name), span)
}

func (c *Compiler) emitGetLocal(slot int, span diag.Span) {
	c.emitOp(bytecode.OpGetLocal, span)
	c.chunk.WriteU16(uint16(slot), span)
}

func (c *Compiler) emitSetLocal(slot int, span diag.Span) {
	c.emitOp(bytecode.OpSetLocal, span)
	c.chunk.WriteU16(uint16(slot), span)
}

// emitIdentLoad resolves name as a local or a global and emits the
// matching Get instruction.
func (c *Compiler) emitIdentLoad(name string, span diag.Span) {
	if slot, ok := c.resolveLocal(name); ok {
		c.emitGetLocal(slot, span)
		return
	}
	c.emitGetGlobal(name, span)
}

// emitIdentStore resolves name as a local or a global and emits the
// matching Set instruction.
func (c *Compiler) emitIdentStore(name string, span diag.Span) {
	if slot, ok := c.resolveLocal(name); ok {
		c.emitSetLocal(slot, span)
		return
	}
	c.emitSetGlobal(name, span)
}

func (c *Compiler) internalError(span diag.Span, format string, args ...interface{}) {
	c.errorf(span, "compiler: %s", fmt.Sprintf(format, args...))
}
