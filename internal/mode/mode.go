// Package mode decides, once at startup, whether this process instance is
// a long-lived daemon or a one-shot client, and which toggles apply.
package mode

import (
	"fmt"
	"strings"
)

// Mode is the operating mode of one process instance, immutable after
// parsing.
type Mode int

const (
	Normal        Mode = iota // daemon without the command server
	ClientOnly                // forward commands to a running server, then exit
	ServerEnabled             // daemon plus command server
)

func (m Mode) String() string {
	switch m {
	case ClientOnly:
		return "client"
	case ServerEnabled:
		return "server"
	default:
		return "normal"
	}
}

// Selection is the parse result.
type Selection struct {
	Mode        Mode
	FileLogging bool
	Commands    []string // queued for forwarding, client mode only
	Warnings    []string
}

// Select parses startup tokens. Flags are recognized with or without a
// dash prefix; unknown flags are warned about and skipped. Non-flag
// tokens are commands: queued when the instance is a client, otherwise
// warned and dropped since no server is running locally yet. Flags are
// gathered before commands are classified, so token order between the two
// does not matter.
func Select(args []string) Selection {
	sel := Selection{Mode: Normal, FileLogging: true}
	logForced := false

	var commands []string
	for _, tok := range args {
		flag, isFlag := flagName(tok)
		if !isFlag {
			commands = append(commands, tok)
			continue
		}
		switch flag {
		case "client-mode":
			sel.Mode = ClientOnly
			if !logForced {
				sel.FileLogging = false
			}
		case "server-mode":
			if sel.Mode != ClientOnly {
				sel.Mode = ServerEnabled
			}
		case "enable-log":
			sel.FileLogging = true
			logForced = true
		case "disable-log":
			sel.FileLogging = false
			logForced = true
		default:
			sel.Warnings = append(sel.Warnings, fmt.Sprintf("unknown flag %q ignored", tok))
		}
	}

	for _, cmd := range commands {
		if sel.Mode == ClientOnly {
			sel.Commands = append(sel.Commands, cmd)
		} else {
			sel.Warnings = append(sel.Warnings, fmt.Sprintf("command %q ignored: no server is running in this instance yet", cmd))
		}
	}
	return sel
}

// flagName strips the dash prefix and reports whether the token is one of
// the known flag spellings. Bare "client-mode" style tokens count as
// flags too, so scripted invocations do not depend on dash style.
func flagName(tok string) (string, bool) {
	trimmed := strings.TrimLeft(tok, "-")
	if trimmed != tok {
		return trimmed, true
	}
	switch trimmed {
	case "client-mode", "server-mode", "enable-log", "disable-log":
		return trimmed, true
	}
	return "", false
}
