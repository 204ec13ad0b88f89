package process

import (
	"errors"
	"testing"
)

func latchClosed(g *ShutdownGuard) bool {
	select {
	case <-g.Done():
		return true
	default:
		return false
	}
}

func TestEvaluateClosesOnlyWhenIdle(t *testing.T) {
	tests := []struct {
		name    string
		workers bool
		server  bool
		want    bool
	}{
		{"both active", true, true, false},
		{"workers only", true, false, false},
		{"server only", false, true, false},
		{"both idle", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewShutdownGuard()
			g.SetWorkersActive(tt.workers)
			g.SetServerActive(tt.server)
			g.Evaluate()
			if got := latchClosed(g); got != tt.want {
				t.Errorf("latch closed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	g := NewShutdownGuard()
	g.Evaluate()
	g.Evaluate()
	g.Evaluate()
	if !latchClosed(g) {
		t.Fatal("latch should be closed")
	}
	// Latch never reopens, even if liveness flips back.
	g.SetWorkersActive(true)
	g.Evaluate()
	if !latchClosed(g) {
		t.Error("latch reopened")
	}
}

func TestForce(t *testing.T) {
	g := NewShutdownGuard()
	g.SetWorkersActive(true)
	g.SetServerActive(true)
	g.Force()
	if !latchClosed(g) {
		t.Error("Force did not close the latch")
	}
}

func TestRestartSuccessRaisesLatch(t *testing.T) {
	g := NewShutdownGuard()
	g.SetWorkersActive(true)

	var gotExe string
	var gotArgs []string
	c := &Controller{
		exe:   "/fake/botd",
		args:  []string{"--server-mode"},
		guard: g,
		spawn: func(exe string, args []string) error {
			gotExe, gotArgs = exe, args
			return nil
		},
	}

	if !c.Restart() {
		t.Fatal("Restart returned false")
	}
	if gotExe != "/fake/botd" || len(gotArgs) != 1 || gotArgs[0] != "--server-mode" {
		t.Errorf("spawned %s %v", gotExe, gotArgs)
	}
	if !latchClosed(g) {
		t.Error("latch not raised after successful restart")
	}
}

func TestRestartFailureLeavesProcessRunning(t *testing.T) {
	g := NewShutdownGuard()
	c := &Controller{
		exe:   "/fake/botd",
		guard: g,
		spawn: func(string, []string) error { return errors.New("no such file") },
	}

	if c.Restart() {
		t.Fatal("Restart returned true on spawn failure")
	}
	if latchClosed(g) {
		t.Error("latch raised despite failed spawn")
	}
}
