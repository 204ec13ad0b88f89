// Package bot hosts the account workers. Each bot owns one upstream
// account: it takes the shared login permit, connects, then farms until
// told to stop. The wire protocol lives behind the Connector interface.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"botd/internal/config"
	"botd/internal/limiter"
	"botd/internal/logging"
)

// Status is the lifecycle state of one bot.
type Status int

const (
	StatusOffline Status = iota
	StatusLoggingIn
	StatusRunning
	StatusPaused
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusOffline:
		return "Offline"
	case StatusLoggingIn:
		return "LoggingIn"
	case StatusRunning:
		return "Running"
	case StatusPaused:
		return "Paused"
	case StatusStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Connector performs the upstream login handshake.
type Connector interface {
	Login(ctx context.Context, account, password string) error
	Logout()
}

// CredentialSource supplies a password when the definition carries none.
type CredentialSource interface {
	Password(account string) (string, error)
}

// Bot is one account worker.
type Bot struct {
	Def config.BotDefinition

	mu        sync.Mutex
	status    Status
	startedAt time.Time
	lastErr   error
	cancel    context.CancelFunc
	paused    chan struct{} // non-nil while paused; closed on resume

	connector Connector
	creds     CredentialSource
	gate      *limiter.Limiter
	loginWait time.Duration
	onChange  func()
}

// Snapshot is a point-in-time view of a bot for status reporting.
type Snapshot struct {
	Name    string `json:"name"`
	Account string `json:"account"`
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Error   string `json:"error,omitempty"`
}

func (b *Bot) setStatus(s Status) {
	b.mu.Lock()
	b.status = s
	if s == StatusRunning && b.startedAt.IsZero() {
		b.startedAt = time.Now()
	}
	if s == StatusStopped || s == StatusOffline {
		b.startedAt = time.Time{}
	}
	onChange := b.onChange
	b.mu.Unlock()
	if onChange != nil {
		onChange()
	}
}

// Status returns the current lifecycle state.
func (b *Bot) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// KeepRunning reports whether this worker still intends to run.
func (b *Bot) KeepRunning() bool {
	switch b.Status() {
	case StatusLoggingIn, StatusRunning, StatusPaused:
		return true
	default:
		return false
	}
}

// Snapshot returns the bot's reportable state.
func (b *Bot) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := Snapshot{
		Name:    b.Def.Name,
		Account: b.Def.Account,
		Status:  b.status.String(),
	}
	if !b.startedAt.IsZero() {
		snap.Uptime = time.Since(b.startedAt).Truncate(time.Second).String()
	}
	if b.lastErr != nil {
		snap.Error = b.lastErr.Error()
	}
	return snap
}

// Start launches the bot's run loop. Starting an already running bot is a
// no-op.
func (b *Bot) Start(ctx context.Context) {
	b.mu.Lock()
	if b.cancel != nil {
		b.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	b.setStatus(StatusLoggingIn)
	go b.run(ctx)
}

// Stop ends the run loop. Safe to call at any time.
func (b *Bot) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	if b.paused != nil {
		close(b.paused)
		b.paused = nil
	}
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Pause suspends farming without logging out.
func (b *Bot) Pause() {
	b.mu.Lock()
	if b.status == StatusRunning && b.paused == nil {
		b.paused = make(chan struct{})
	}
	b.mu.Unlock()
	if b.Status() == StatusRunning {
		b.setStatus(StatusPaused)
	}
}

// Resume continues a paused bot.
func (b *Bot) Resume() {
	b.mu.Lock()
	if b.paused != nil {
		close(b.paused)
		b.paused = nil
	}
	resumed := b.status == StatusPaused
	b.mu.Unlock()
	if resumed {
		b.setStatus(StatusRunning)
	}
}

// run is the worker loop: serialized login, then farm until stopped.
func (b *Bot) run(ctx context.Context) {
	defer b.setStatus(StatusStopped)

	password := b.Def.Password
	if password == "" && b.creds != nil {
		p, err := b.creds.Password(b.Def.Account)
		if err != nil {
			b.fail(fmt.Errorf("read credentials: %w", err))
			return
		}
		password = p
	}

	// One login in flight across the whole process; the permit comes back
	// only after the configured cool-down.
	if !b.gate.TryAcquire() {
		logging.Info("bot", "%s waiting for login slot", b.Def.Name)
		b.gate.Acquire()
	}
	err := b.connector.Login(ctx, b.Def.Account, password)
	b.gate.ReleaseAfter(b.loginWait)

	if err != nil {
		b.fail(fmt.Errorf("login %s: %w", b.Def.Account, err))
		return
	}
	defer b.connector.Logout()

	logging.Info("bot", "%s logged in", b.Def.Name)
	b.setStatus(StatusRunning)

	for {
		b.mu.Lock()
		paused := b.paused
		b.mu.Unlock()

		if paused != nil {
			select {
			case <-paused:
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
			// Farming tick. The trading logic behind it is out of scope
			// for this subsystem.
		}
	}
}

func (b *Bot) fail(err error) {
	b.mu.Lock()
	b.lastErr = err
	b.cancel = nil
	b.mu.Unlock()
	logging.Error("bot", "%s: %v", b.Def.Name, err)
}
