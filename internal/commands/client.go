package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"botd/internal/client"
	"botd/internal/config"
	"botd/internal/mode"
	"botd/internal/ui"
)

// serverAddr turns the configured bind address into something a client
// can dial: a bare ":port" bind means loopback.
func serverAddr(cfg *config.Config) string {
	addr := cfg.HTTPBind
	if addr == "" {
		addr = ":1242"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return addr
}

func serverToken(cfg *config.Config) string {
	if len(cfg.HTTPTokens) > 0 {
		return cfg.HTTPTokens[0]
	}
	return ""
}

// RunClient forwards the queued commands to the running server instance,
// prints each response, and exits. No retry: an unreachable server is a
// hard failure reported to the invoker.
func RunClient(sel mode.Selection) {
	for _, w := range sel.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(sel.Commands) == 0 {
		ui.ShowError("No command given to forward", nil)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		ui.ShowError("Failed to load config", err)
		os.Exit(1)
	}

	addr := serverAddr(cfg)
	token := serverToken(cfg)
	for _, command := range sel.Commands {
		result, err := client.Send(addr, token, command)
		if err != nil {
			if errors.Is(err, client.ErrChannelUnreachable) {
				ui.ShowError("No botd server reachable at "+addr, err)
			} else {
				ui.ShowError("Command failed", err)
			}
			os.Exit(1)
		}
		fmt.Println(result)
	}
}
