package compiler

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/bytecode"
)

// compileIndexAssignChain lowers `a[i0][i1]...[iN] = value` (and, via the
// caller pre-desugaring compound-assign into a BinaryExpr, `+=` and
// friends) using only GetIndex/SetIndex. Collections are copy-on-write
// (spec.md §4.3): SetIndex pops (container, index, value) and pushes a
// *new* container with that slot replaced, so every enclosing level of
// the chain must be rebuilt and re-stored, innermost first, all the way
// back out to the identifier that roots the chain.
func (c *Compiler) compileIndexAssignChain(target *ast.IndexExpr, valueExpr ast.Expr) {
	span := target.Span()

	var indices []ast.Expr
	cur := ast.Expr(target)
	for {
		ix, ok := cur.(*ast.IndexExpr)
		if !ok {
			break
		}
		indices = append([]ast.Expr{ix.Index}, indices...)
		cur = ix.X
	}
	base, ok := cur.(*ast.Ident)
	if !ok {
		c.internalError(span, "unsupported index-assignment base %T", cur)
		return
	}

	c.emitIdentLoad(base.Name, span)
	baseSlot := c.newTemp()
	c.emitSetLocal(baseSlot, span)

	idxSlots := make([]int, len(indices))
	for i, idxExpr := range indices {
		c.compileExpr(idxExpr)
		idxSlots[i] = c.newTemp()
		c.emitSetLocal(idxSlots[i], span)
	}

	c.compileExpr(valueExpr)
	valSlot := c.newTemp()
	c.emitSetLocal(valSlot, span)

	// Walk down: containerSlots[0] is the base; containerSlots[k+1] is
	// containerSlots[k] indexed by idxSlots[k], for every level but the
	// last (the last index is where the write actually happens).
	containerSlots := make([]int, len(indices))
	containerSlots[0] = baseSlot
	for k := 0; k < len(indices)-1; k++ {
		c.emitGetLocal(containerSlots[k], span)
		c.emitGetLocal(idxSlots[k], span)
		c.emitOp(bytecode.OpGetIndex, span)
		containerSlots[k+1] = c.newTemp()
		c.emitSetLocal(containerSlots[k+1], span)
	}

	// Innermost write, then rebuild each enclosing container in turn.
	rebuilt := valSlot
	for k := len(indices) - 1; k >= 0; k-- {
		c.emitGetLocal(containerSlots[k], span)
		c.emitGetLocal(idxSlots[k], span)
		c.emitGetLocal(rebuilt, span)
		c.emitOp(bytecode.OpSetIndex, span)
		next := c.newTemp()
		c.emitSetLocal(next, span)
		rebuilt = next
	}

	c.emitGetLocal(rebuilt, span)
	c.emitIdentStore(base.Name, span)
}
