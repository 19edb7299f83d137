// Package debugger implements Atlas's interactive debugger: breakpoints,
// stepping and variable/stack inspection layered over the vm package's
// Hook, exactly the "debuggable entry point" spec.md §4.11 describes.
// Nothing here touches bytecode dispatch directly — it only decides,
// before each instruction, whether the VM should pause.
package debugger

import (
	"sort"

	"github.com/atlas-lang/atlas/internal/bytecode"
)

// Location is a source position resolved from an instruction offset.
type Location struct {
	File string
	Line int
	Col  int
}

// SourceMap resolves bytecode offsets to source locations and source
// lines to the instruction offsets they emitted, both in O(log n) via
// binary search over a table built once from a Chunk's debug spans —
// the same Debug slice bytecode.Chunk.SpanAt searches, just indexed the
// other direction (line -> offsets) as well.
type SourceMap struct {
	file    string
	src     string
	offsets []int // sorted ascending, parallel to lines
	lines   []int
	// byLine maps a 1-based line number to its instruction offsets, in
	// ascending order, so the lowest can be taken as the line's entry
	// point for breakpoint verification.
	byLine map[int][]int
}

// BuildSourceMap walks chunk's debug table once and resolves every
// offset's line via src, so repeated lookups never re-scan source text.
func BuildSourceMap(file, src string, chunk *bytecode.Chunk) *SourceMap {
	m := &SourceMap{
		file:   file,
		src:    src,
		byLine: make(map[int][]int),
	}
	for _, ds := range chunk.Debug {
		line, _ := locate(src, ds.Span.Start)
		m.offsets = append(m.offsets, ds.Offset)
		m.lines = append(m.lines, line)
		m.byLine[line] = append(m.byLine[line], ds.Offset)
	}
	for line := range m.byLine {
		sort.Ints(m.byLine[line])
	}
	return m
}

// locate returns the 1-based line and column of a byte offset in src.
func locate(src string, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// LocationFor resolves the source location that produced the
// instruction at offset, via binary search over the offset-sorted
// debug table (the same order Chunk.Write appends in).
func (m *SourceMap) LocationFor(offset int) Location {
	idx := sort.SearchInts(m.offsets, offset+1) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.lines) {
		idx = len(m.lines) - 1
	}
	line := 1
	if len(m.lines) > 0 {
		line = m.lines[idx]
	}
	_, col := locate(m.src, offsetAt(m.offsets, idx))
	return Location{File: m.file, Line: line, Col: col}
}

func offsetAt(offsets []int, idx int) int {
	if idx < 0 || idx >= len(offsets) {
		return 0
	}
	return offsets[idx]
}

// FirstOffsetForLine returns the lowest instruction offset mapped to
// line, used to verify a breakpoint set on a line that itself compiled
// to no instruction (e.g. a comment or blank line falls through to the
// next line that did).
func (m *SourceMap) FirstOffsetForLine(line int) (int, bool) {
	for l := line; l <= line+maxLineSearch; l++ {
		if offs, ok := m.byLine[l]; ok && len(offs) > 0 {
			return offs[0], true
		}
	}
	return 0, false
}

// maxLineSearch bounds how far FirstOffsetForLine looks past a
// breakpoint's requested line for the next line that compiled to code.
const maxLineSearch = 200
