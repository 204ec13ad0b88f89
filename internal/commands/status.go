package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"botd/internal/client"
	"botd/internal/config"
	"botd/internal/output"
	"botd/internal/tui"
	"botd/internal/ui"
)

// StatusCmd queries a running server for bot state. With --watch it keeps
// a live table open instead of printing once.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bot status from the running server",
	Run: func(cmd *cobra.Command, args []string) {
		watch, _ := cmd.Flags().GetBool("watch")
		runStatus(watch)
	},
}

func init() {
	StatusCmd.Flags().BoolP("watch", "w", false, "Keep a live status view open")
	StatusCmd.Flags().BoolVar(&output.JSON, "json", false, "Print status as JSON")
}

func runStatus(watch bool) {
	cfg, err := config.Load()
	if err != nil {
		ui.ShowError("Failed to load config", err)
		os.Exit(1)
	}
	addr := serverAddr(cfg)
	token := serverToken(cfg)

	if watch {
		if err := tui.Run(addr, token); err != nil {
			ui.ShowError("Status view failed", err)
			os.Exit(1)
		}
		return
	}

	if output.JSON {
		var snap interface{}
		if err := client.Status(addr, token, &snap); err != nil {
			output.Fail(fmt.Errorf("no botd server reachable at %s: %w", addr, err))
		}
		output.Emit(snap, func() {})
		return
	}

	result, err := client.Send(addr, token, "status")
	if err != nil {
		ui.ShowError("No botd server reachable at "+addr, err)
		os.Exit(1)
	}
	fmt.Println(result)
}

// LogCmd follows the server's live log stream.
var LogCmd = &cobra.Command{
	Use:   "log",
	Short: "Follow the running server's log stream",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			ui.ShowError("Failed to load config", err)
			os.Exit(1)
		}
		if err := client.Tail(cmd.Context(), serverAddr(cfg), serverToken(cfg), os.Stdout); err != nil {
			ui.ShowError("Log stream failed", err)
			os.Exit(1)
		}
	},
}

// UpdateCmd asks the running server to check for a new build now.
var UpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Trigger an update check on the running server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			ui.ShowError("Failed to load config", err)
			os.Exit(1)
		}
		result, err := client.Send(serverAddr(cfg), serverToken(cfg), "update")
		if err != nil {
			ui.ShowError("No botd server reachable", err)
			os.Exit(1)
		}
		fmt.Println(result)
	},
}
