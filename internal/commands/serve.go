package commands

import (
	"github.com/spf13/cobra"

	"botd/internal/mode"
)

// ServeCmd runs the daemon with the command server enabled, equivalent to
// `botd --server-mode`.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon with the command server enabled",
	Run: func(cmd *cobra.Command, args []string) {
		RunDaemon(mode.Selection{Mode: mode.ServerEnabled, FileLogging: true})
	},
}
