package bytecode

import (
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

// DebugSpan maps one instruction offset to the source span that emitted
// it — the authoritative mapping used by both runtime error reporting
// and the debugger's SourceMap.
type DebugSpan struct {
	Offset int
	Span   diag.Span
}

// Chunk is a compiled program's bytecode: a flat instruction stream,
// a constant pool, and an offset-to-span debug table. A whole program
// compiles to a single Chunk; each FunctionDecl's body is emitted inline
// at the offset recorded in its Function constant, per spec.md §4.8.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Debug     []DebugSpan

	// TopLevelLocals is the number of local-variable slots the
	// top-level statement sequence needs for nested (non-global)
	// scopes — loop and match-arm temporaries that live below frame 0's
	// operand stack, exactly like a function's LocalCount. Top-level
	// VarDecls themselves still bind into globals (functions have no
	// closures, so they could never see a frame-0 local anyway).
	//
	// This is a sizing hint only, valid within the process that compiled
	// the Chunk: the `.atb` header has no field for it (spec.md §4.9), so
	// it is not serialized and reads back as 0. The VM doesn't depend on
	// it being accurate — it grows the top-level frame on demand instead.
	TopLevelLocals int
}

// NewChunk creates an empty Chunk ready for append-only emission.
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 256),
		Constants: make([]value.Value, 0, 16),
	}
}

// Write appends a single instruction byte (an opcode or an operand byte)
// recording span as the debug-span entry for this offset.
func (c *Chunk) Write(b byte, span diag.Span) {
	c.Debug = append(c.Debug, DebugSpan{Offset: len(c.Code), Span: span})
	c.Code = append(c.Code, b)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op Op, span diag.Span) int {
	offset := len(c.Code)
	c.Write(byte(op), span)
	return offset
}

// WriteU16 appends a big-endian u16 operand (constant index, local/global
// slot, jump offset).
func (c *Chunk) WriteU16(v uint16, span diag.Span) {
	c.Write(byte(v>>8), span)
	c.Write(byte(v), span)
}

// WriteU8 appends a single-byte operand (Call's argc).
func (c *Chunk) WriteU8(v uint8, span diag.Span) {
	c.Write(v, span)
}

// ReadU16 reads a big-endian u16 operand at offset.
func (c *Chunk) ReadU16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// PatchU16 overwrites a previously emitted u16 operand (used for forward
// jump patching once the target offset is known).
func (c *Chunk) PatchU16(offset int, v uint16) {
	c.Code[offset] = byte(v >> 8)
	c.Code[offset+1] = byte(v)
}

// AddConstant appends v to the constant pool and returns its u16 index.
// Callers must not exceed 65536 constants in one Chunk.
func (c *Chunk) AddConstant(v value.Value) uint16 {
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

// SpanAt returns the source span recorded for the instruction at offset,
// via binary search over the (sorted-by-construction) Debug table.
func (c *Chunk) SpanAt(offset int) diag.Span {
	lo, hi := 0, len(c.Debug)
	for lo < hi {
		mid := (lo + hi) / 2
		if c.Debug[mid].Offset <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return diag.Dummy
	}
	return c.Debug[lo-1].Span
}

// Len returns the number of bytes of emitted instructions.
func (c *Chunk) Len() int { return len(c.Code) }
