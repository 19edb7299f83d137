package debugger

import "testing"

func TestStepOverIgnoresDeeperFrames(t *testing.T) {
	var s StepTracker
	s.Arm(StepOver, 1)
	if s.Check(1) {
		t.Fatal("first check after Arm must not pause (it retries the paused instruction)")
	}
	if s.Check(2) {
		t.Fatal("step-over must not pause while a called function is deeper than the starting frame")
	}
	if !s.Check(1) {
		t.Fatal("step-over must pause once depth returns to the starting frame")
	}
	if s.Active() {
		t.Fatal("tracker should disarm itself once it pauses")
	}
}

func TestStepOutPausesOnlyBelowStartingDepth(t *testing.T) {
	var s StepTracker
	s.Arm(StepOut, 3)
	s.Check(3) // skipNext
	if s.Check(3) {
		t.Fatal("step-out must not pause while still at the starting depth")
	}
	if !s.Check(2) {
		t.Fatal("step-out must pause once the frame returns to its caller")
	}
}

func TestStepIntoPausesOnFirstRealCheck(t *testing.T) {
	var s StepTracker
	s.Arm(StepInto, 5)
	if s.Check(5) {
		t.Fatal("first check after Arm must be skipped")
	}
	if !s.Check(7) {
		t.Fatal("step-into must pause at the very next instruction regardless of depth")
	}
}
