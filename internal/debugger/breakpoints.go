package debugger

import "sync"

// BreakpointID identifies a breakpoint for the session's lifetime.
// IDs are small sequential integers, matching spec.md invariant 5:
// setting a breakpoint twice at the same {file,line,col} returns the
// same id rather than creating a duplicate.
type BreakpointID int

// Breakpoint is a verified or pending source breakpoint. Offset is -1
// until the owning SourceMap resolves it to an instruction.
type Breakpoint struct {
	ID     BreakpointID
	File   string
	Line   int
	Col    int
	Offset int
}

// Verified reports whether Offset has been resolved against a loaded
// program's SourceMap.
func (b Breakpoint) Verified() bool { return b.Offset >= 0 }

// BreakpointManager owns every breakpoint in a debugger session,
// keyed both by id (for Remove/List) and by source location (so
// SetBreakpoint is idempotent per spec.md invariant 5).
type BreakpointManager struct {
	mu     sync.Mutex
	byID   map[BreakpointID]*Breakpoint
	byLoc  map[locKey]BreakpointID
	nextID BreakpointID
	// byOffset indexes verified breakpoints for the hot path the VM's
	// hook calls on every instruction.
	byOffset map[int]BreakpointID
}

type locKey struct {
	file string
	line int
	col  int
}

// NewBreakpointManager returns an empty manager.
func NewBreakpointManager() *BreakpointManager {
	return &BreakpointManager{
		byID:     make(map[BreakpointID]*Breakpoint),
		byLoc:    make(map[locKey]BreakpointID),
		byOffset: make(map[int]BreakpointID),
	}
}

// Set registers a breakpoint at file:line:col. If sm is non-nil the
// breakpoint is verified immediately against its source map; otherwise
// it stays pending (Offset -1) until Verify is called once the program
// loads. Re-setting the same location returns the existing id.
func (m *BreakpointManager) Set(file string, line, col int, sm *SourceMap) Breakpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := locKey{file, line, col}
	if id, ok := m.byLoc[key]; ok {
		return *m.byID[id]
	}

	m.nextID++
	bp := &Breakpoint{ID: m.nextID, File: file, Line: line, Col: col, Offset: -1}
	if sm != nil {
		if off, ok := sm.FirstOffsetForLine(line); ok {
			bp.Offset = off
			m.byOffset[off] = bp.ID
		}
	}
	m.byID[bp.ID] = bp
	m.byLoc[key] = bp.ID
	return *bp
}

// Remove deletes a breakpoint by id, reporting whether one existed.
func (m *BreakpointManager) Remove(id BreakpointID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	bp, ok := m.byID[id]
	if !ok {
		return false
	}
	delete(m.byID, id)
	delete(m.byLoc, locKey{bp.File, bp.Line, bp.Col})
	if bp.Verified() {
		delete(m.byOffset, bp.Offset)
	}
	return true
}

// List returns every breakpoint, ordered by id.
func (m *BreakpointManager) List() []Breakpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Breakpoint, 0, len(m.byID))
	for _, bp := range m.byID {
		out = append(out, *bp)
	}
	sortBreakpoints(out)
	return out
}

func sortBreakpoints(bps []Breakpoint) {
	for i := 1; i < len(bps); i++ {
		for j := i; j > 0 && bps[j].ID < bps[j-1].ID; j-- {
			bps[j], bps[j-1] = bps[j-1], bps[j]
		}
	}
}

// Clear removes every breakpoint.
func (m *BreakpointManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID = make(map[BreakpointID]*Breakpoint)
	m.byLoc = make(map[locKey]BreakpointID)
	m.byOffset = make(map[int]BreakpointID)
}

// MatchOffset reports whether offset carries a verified breakpoint,
// called from the session's Hook on every instruction.
func (m *BreakpointManager) MatchOffset(offset int) (BreakpointID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byOffset[offset]
	return id, ok
}
