// Package process owns the daemon's own lifecycle: re-spawning the current
// binary after a self-update and deciding when the process may exit.
package process

import (
	"os"
	"os/exec"
	"sync"

	"botd/internal/logging"
)

// ShutdownGuard aggregates worker and command-server liveness into a single
// latch. The latch closes exactly once, when neither side is active, and
// never reopens; the main wait loop blocks on Done.
type ShutdownGuard struct {
	mu            sync.Mutex
	workersActive bool
	serverActive  bool
	once          sync.Once
	done          chan struct{}
}

// NewShutdownGuard starts with both sides inactive; callers mark activity
// before Evaluate is first consulted.
func NewShutdownGuard() *ShutdownGuard {
	return &ShutdownGuard{done: make(chan struct{})}
}

// Done returns the process-wide shutdown latch.
func (g *ShutdownGuard) Done() <-chan struct{} {
	return g.done
}

// SetWorkersActive records whether any worker still intends to run. The
// caller must follow up with Evaluate; the two are split so a batch of
// transitions can be recorded before one evaluation.
func (g *ShutdownGuard) SetWorkersActive(active bool) {
	g.mu.Lock()
	g.workersActive = active
	g.mu.Unlock()
}

// SetServerActive records whether the command server is still listening.
func (g *ShutdownGuard) SetServerActive(active bool) {
	g.mu.Lock()
	g.serverActive = active
	g.mu.Unlock()
}

// Evaluate closes the latch when nothing is active anymore. It is a pure
// aggregation over the recorded inputs, called on every liveness change,
// and idempotent.
func (g *ShutdownGuard) Evaluate() {
	g.mu.Lock()
	idle := !g.workersActive && !g.serverActive
	g.mu.Unlock()
	if idle {
		g.once.Do(func() { close(g.done) })
	}
}

// Force raises the latch regardless of liveness, for explicit stop
// requests and post-update restarts.
func (g *ShutdownGuard) Force() {
	g.once.Do(func() { close(g.done) })
}

// Controller restarts the current process image.
type Controller struct {
	exe   string
	args  []string
	guard *ShutdownGuard

	// spawn is swapped in tests.
	spawn func(exe string, args []string) error
}

// NewController captures the current executable path and the original
// command-line arguments (flags preserved verbatim).
func NewController(guard *ShutdownGuard) (*Controller, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return &Controller{
		exe:   exe,
		args:  os.Args[1:],
		guard: guard,
		spawn: defaultSpawn,
	}, nil
}

// Executable returns the canonical path of the running binary.
func (c *Controller) Executable() string {
	return c.exe
}

// Restart spawns a new process image with the same arguments and, only if
// the spawn succeeded, raises the shutdown latch so the current process
// terminates. It reports whether the spawn succeeded and never panics.
func (c *Controller) Restart() bool {
	logging.Info("process", "restarting: %s %v", c.exe, c.args)
	if err := c.spawn(c.exe, c.args); err != nil {
		logging.Error("process", "restart spawn failed: %v", err)
		return false
	}
	c.guard.Force()
	return true
}

func defaultSpawn(exe string, args []string) error {
	cmd := exec.Command(exe, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	// Detach: the new image outlives us, we never wait on it.
	return cmd.Process.Release()
}
