package commands

import (
	"os"

	"github.com/spf13/cobra"

	"botd/internal/client"
	"botd/internal/config"
	mcpserver "botd/internal/mcp"
	"botd/internal/ui"
)

// McpCmd exposes the command channel as an MCP server over stdio, so MCP
// clients can drive a running daemon through this binary. Commands are
// relayed to the server the same way the thin client relays them.
var McpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server over stdio relaying to the running daemon",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			ui.ShowError("Failed to load config", err)
			os.Exit(1)
		}

		relay := client.NewRelay(serverAddr(cfg), serverToken(cfg))
		if err := mcpserver.RunStdio(cmd.Context(), relay, Version); err != nil {
			ui.ShowError("MCP server error", err)
			os.Exit(1)
		}
	},
}
