// Package dispatch turns one textual command into one textual response.
// It is the single interpreter behind every command source: the HTTP
// channel, the MCP tool and the thin client all end up here.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"botd/internal/bot"
	"botd/internal/logging"
)

// Updater is the slice of the self-updater the interpreter needs.
type Updater interface {
	CheckAndApply(ctx context.Context) error
}

// Shutdown requests daemon termination.
type Shutdown interface {
	Force()
}

// Interpreter executes commands against the bot registry. Each Execute
// call is independent; all shared state lives in the collaborators, which
// carry their own locks.
type Interpreter struct {
	Registry *bot.Registry
	Updater  Updater
	Shutdown Shutdown
	Version  string
}

// Execute runs one command and returns its textual result. It never
// returns an error: unknown or failing commands produce a textual
// response, since the caller is a remote operator, not code.
func (i *Interpreter) Execute(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "No command given"
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	logging.Info("dispatch", "executing %q", command)

	switch verb {
	case "status":
		return i.statusText()
	case "version":
		return "botd " + i.Version
	case "update":
		if i.Updater == nil {
			return "Updates are disabled"
		}
		if err := i.Updater.CheckAndApply(ctx); err != nil {
			return "Update check failed: " + err.Error()
		}
		return "Update check finished"
	case "stop":
		if len(args) == 1 {
			return i.withBot(args[0], func(b *bot.Bot) string {
				b.Stop()
				return "Stopped " + b.Def.Name
			})
		}
		if i.Shutdown != nil {
			// The response still reaches the client: the daemon drains
			// in-flight requests before the process exits.
			i.Shutdown.Force()
		}
		return "Shutting down"
	case "start":
		if len(args) != 1 {
			return "Usage: start <bot>"
		}
		return i.withBot(args[0], func(b *bot.Bot) string {
			b.Start(context.Background())
			return "Started " + b.Def.Name
		})
	case "pause":
		if len(args) != 1 {
			return "Usage: pause <bot>"
		}
		return i.withBot(args[0], func(b *bot.Bot) string {
			b.Pause()
			return "Paused " + b.Def.Name
		})
	case "resume":
		if len(args) != 1 {
			return "Usage: resume <bot>"
		}
		return i.withBot(args[0], func(b *bot.Bot) string {
			b.Resume()
			return "Resumed " + b.Def.Name
		})
	case "help":
		return "Commands: status, version, update, start <bot>, stop [bot], pause <bot>, resume <bot>, help"
	default:
		return fmt.Sprintf("Unknown command: %s", verb)
	}
}

func (i *Interpreter) withBot(name string, fn func(*bot.Bot) string) string {
	b, ok := i.Registry.Get(name)
	if !ok {
		return fmt.Sprintf("Unknown bot: %s", name)
	}
	return fn(b)
}

func (i *Interpreter) statusText() string {
	snaps := i.Registry.Snapshots()
	if len(snaps) == 0 {
		return "No bots configured"
	}

	var sb strings.Builder
	for _, s := range snaps {
		fmt.Fprintf(&sb, "%s (%s): %s", s.Name, s.Account, s.Status)
		if s.Uptime != "" {
			fmt.Fprintf(&sb, " for %s", s.Uptime)
		}
		if s.Error != "" {
			fmt.Fprintf(&sb, " [%s]", s.Error)
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}
