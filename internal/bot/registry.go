package bot

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"botd/internal/config"
	"botd/internal/limiter"
)

// Registry tracks every bot in the process.
type Registry struct {
	mu   sync.RWMutex
	bots map[string]*Bot

	connector func() Connector
	creds     CredentialSource
	gate      *limiter.Limiter
	loginWait time.Duration
	onChange  func()
}

// NewRegistry creates an empty registry. newConnector is invoked once per
// bot; onChange fires after every liveness transition (the shutdown guard
// hangs off it).
func NewRegistry(gate *limiter.Limiter, loginWait time.Duration, newConnector func() Connector, creds CredentialSource, onChange func()) *Registry {
	if onChange == nil {
		onChange = func() {}
	}
	return &Registry{
		bots:      make(map[string]*Bot),
		connector: newConnector,
		creds:     creds,
		gate:      gate,
		loginWait: loginWait,
		onChange:  onChange,
	}
}

// Add registers a bot for the given definition.
func (r *Registry) Add(def config.BotDefinition) (*Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bots[def.Name]; exists {
		return nil, fmt.Errorf("bot %q already registered", def.Name)
	}
	b := &Bot{
		Def:       def,
		connector: r.connector(),
		creds:     r.creds,
		gate:      r.gate,
		loginWait: r.loginWait,
		onChange:  r.onChange,
	}
	r.bots[def.Name] = b
	return b, nil
}

// Get returns the named bot.
func (r *Registry) Get(name string) (*Bot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bots[name]
	return b, ok
}

// List returns all bots ordered by name.
func (r *Registry) List() []*Bot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Bot, 0, len(r.bots))
	for _, b := range r.bots {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Def.Name < out[j].Def.Name })
	return out
}

// AnyRunning reports whether any worker still intends to keep running.
func (r *Registry) AnyRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bots {
		if b.KeepRunning() {
			return true
		}
	}
	return false
}

// StopAll stops every bot.
func (r *Registry) StopAll() {
	for _, b := range r.List() {
		b.Stop()
	}
}

// Snapshots returns reportable state for every bot, ordered by name.
func (r *Registry) Snapshots() []Snapshot {
	bots := r.List()
	out := make([]Snapshot, 0, len(bots))
	for _, b := range bots {
		out = append(out, b.Snapshot())
	}
	return out
}
