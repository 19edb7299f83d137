package debugger

import (
	"errors"
	"fmt"

	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/interpreter"
	"github.com/atlas-lang/atlas/internal/value"
	"github.com/atlas-lang/atlas/internal/vm"
	"github.com/google/uuid"
)

// DebuggerSession owns one paused-or-running program: the VM executing
// it, the source map resolving its instructions back to locations, and
// the breakpoint/step state a client drives through ProcessRequest.
// Concurrency is cooperative and single-threaded per spec.md's
// concurrency model — only the VM engine is debuggable; the
// tree-walking interpreter has no Hook equivalent, so a session only
// ever wraps a vm.VM (Evaluate still reaches for a throwaway
// interpreter to run synthesized snippets — see EvaluateInContext).
type DebuggerSession struct {
	ID string

	vm   *vm.VM
	sm   *SourceMap
	bp   *BreakpointManager
	step StepTracker

	paused      bool
	pauseReason string
	stopped     bool
	result      value.Value
	runErr      error
}

// NewDebuggerSession creates a session around v, ready to load a chunk.
// ID is a fresh random uuid, matching spec.md's domain-stack wiring of
// google/uuid for debugger session identity.
func NewDebuggerSession(v *vm.VM) *DebuggerSession {
	s := &DebuggerSession{
		ID: uuid.NewString(),
		vm: v,
		bp: NewBreakpointManager(),
	}
	v.SetHook(sessionHook{s})
	return s
}

// Load installs chunk (with its source map) and resets the VM to its
// first instruction without running anything, so the client can set
// breakpoints and then Continue.
func (s *DebuggerSession) Load(file, src string, chunk *bytecode.Chunk) {
	s.sm = BuildSourceMap(file, src, chunk)
	s.vm.Start(chunk)
	s.paused = false
	s.stopped = false
	s.result = nil
	s.runErr = nil
	for _, bp := range s.bp.List() {
		s.bp.Remove(bp.ID)
	}
}

type sessionHook struct{ s *DebuggerSession }

func (h sessionHook) ShouldPause(ip, depth int) (bool, string) {
	if id, ok := h.s.bp.MatchOffset(ip); ok {
		return true, fmt.Sprintf("breakpoint:%d", id)
	}
	if h.s.step.Check(depth) {
		return true, "step"
	}
	return false, ""
}

// RunUntilPause resumes the VM until it halts, faults, or the hook
// requests a pause, updating the session's paused/stopped state.
func (s *DebuggerSession) RunUntilPause() {
	result, err := s.vm.Continue()
	var pe *vm.PauseError
	if errors.As(err, &pe) {
		s.paused = true
		s.pauseReason = pe.Reason
		return
	}
	s.paused = false
	s.stopped = true
	s.result = result
	s.runErr = err
}

// IsPaused reports whether the VM is stopped mid-program awaiting a
// debugger command.
func (s *DebuggerSession) IsPaused() bool { return s.paused }

// IsStopped reports whether the program ran to completion or faulted.
func (s *DebuggerSession) IsStopped() bool { return s.stopped }

// CurrentIP returns the VM's next-instruction offset.
func (s *DebuggerSession) CurrentIP() int { return s.vm.CurrentIP() }

// BuildStackTrace renders every live call frame in the VM's own order,
// outermost first: frame 0 is the top-level frame and the last entry is
// the innermost one. The innermost frame uses the VM's current ip for its
// location; every other frame uses the returnIP-1 of the frame it called,
// since returnIP itself points at the instruction *after*
// the call and would resolve to the wrong line for a multi-instruction
// call site.
func (s *DebuggerSession) BuildStackTrace() []StackFrame {
	frames := s.vm.Frames()
	out := make([]StackFrame, len(frames))
	for depth, f := range frames {
		var ip int
		if depth == len(frames)-1 {
			ip = s.vm.CurrentIP()
		} else {
			ip = frames[depth+1].ReturnIP() - 1
			if ip < 0 {
				ip = 0
			}
		}
		out[depth] = StackFrame{
			Depth:    depth,
			FuncName: f.FuncName(),
			Location: s.sm.LocationFor(ip),
		}
	}
	return out
}

// CollectVariables lists every local in frame plus every global,
// classifying each for Evaluate's re-injection rule.
func (s *DebuggerSession) CollectVariables(frame vm.CallFrame) []Variable {
	var out []Variable
	for slot := 0; slot < frame.LocalCount(); slot++ {
		v := s.vm.LocalAt(frame, slot)
		typeName, ok := classify(v)
		out = append(out, Variable{
			Name:         fmt.Sprintf("$local%d", slot),
			Type:         typeName,
			Value:        value.String_(v),
			Reinjectable: ok,
		})
	}
	for _, name := range s.vm.GlobalNames() {
		v, _ := s.vm.Global(name)
		typeName, ok := classify(v)
		out = append(out, Variable{Name: name, Type: typeName, Value: value.String_(v), Reinjectable: ok})
	}
	return out
}

// EvaluateInContext runs expr against the paused frame's variables: it
// synthesizes a snippet that re-binds every reinjectable variable as a
// `let`, then hands that to a fresh tree-walking interpreter seeded
// from the paused VM's globals (per spec.md's "runs on a fresh
// interpreter derived from the creating interpreter's globals" rule).
func (s *DebuggerSession) EvaluateInContext(frame vm.CallFrame, expr string) (value.Value, error) {
	vars := s.CollectVariables(frame)
	values := make(map[string]value.Value, len(vars))
	for slot := 0; slot < frame.LocalCount(); slot++ {
		values[fmt.Sprintf("$local%d", slot)] = s.vm.LocalAt(frame, slot)
	}

	scratch := interpreter.New()
	for _, name := range s.vm.GlobalNames() {
		if v, ok := s.vm.Global(name); ok {
			scratch.DefineGlobal(name, v)
			values[name] = v
		}
	}

	snippet := synthesizeSnippet(vars, values, expr)
	return scratch.EvaluateSnippet(snippet, values)
}

// ProcessRequest dispatches one protocol Request to the session's
// breakpoint manager, step tracker, or VM, per spec.md's request/
// response table.
func (s *DebuggerSession) ProcessRequest(req Request) Response {
	switch req.Kind {
	case ReqSetBreakpoint:
		bp := s.bp.Set(req.File, req.Line, req.Col, s.sm)
		return Response{Kind: RespBreakpointSet, Breakpoint: bp, Verified: bp.Verified()}
	case ReqRemoveBreakpoint:
		ok := s.bp.Remove(req.ID)
		if !ok {
			return errResponse("no breakpoint with id %d", req.ID)
		}
		return Response{Kind: RespOK}
	case ReqListBreakpoints:
		return Response{Kind: RespOK, Breakpoints: s.bp.List()}
	case ReqClearBreakpoints:
		s.bp.Clear()
		return Response{Kind: RespOK}
	case ReqContinue:
		s.step.Disarm()
		return s.runAndReport()
	case ReqStepInto:
		s.step.Arm(StepInto, s.vm.FrameDepth())
		return s.runAndReport()
	case ReqStepOver:
		s.step.Arm(StepOver, s.vm.FrameDepth())
		return s.runAndReport()
	case ReqStepOut:
		s.step.Arm(StepOut, s.vm.FrameDepth())
		return s.runAndReport()
	case ReqPause:
		// A cooperative single-threaded VM can only act on Pause the
		// next time the hook is consulted; arming a one-shot Into step
		// achieves that without a separate "manual pause" code path.
		s.step.Arm(StepInto, s.vm.FrameDepth())
		return s.runAndReport()
	case ReqGetStack:
		return Response{Kind: RespStackTrace, Frames: s.BuildStackTrace()}
	case ReqGetVariables:
		frames := s.vm.Frames()
		if len(frames) == 0 {
			return Response{Kind: RespVariables}
		}
		return Response{Kind: RespVariables, Variables: s.CollectVariables(frames[len(frames)-1])}
	case ReqEvaluate:
		frames := s.vm.Frames()
		if len(frames) == 0 {
			return errResponse("no active frame to evaluate against")
		}
		v, err := s.EvaluateInContext(frames[len(frames)-1], req.Expr)
		if err != nil {
			return errResponse("%s", err.Error())
		}
		return Response{Kind: RespEvalResult, Value: value.String_(v), Type: v.TypeName()}
	case ReqGetLocation:
		return Response{Kind: RespOK, Location: s.sm.LocationFor(s.vm.CurrentIP())}
	default:
		return errResponse("unknown request kind %q", req.Kind)
	}
}

func (s *DebuggerSession) runAndReport() Response {
	s.RunUntilPause()
	if s.stopped {
		if s.runErr != nil {
			return errResponse("%s", s.runErr.Error())
		}
		return Response{Kind: RespOK, Value: value.String_(s.result)}
	}
	return Response{
		Kind:     RespPaused,
		Reason:   s.pauseReason,
		Location: s.sm.LocationFor(s.vm.CurrentIP()),
		IP:       s.vm.CurrentIP(),
	}
}
