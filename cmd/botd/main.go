package main

import (
	"os"

	"github.com/spf13/cobra"

	"botd/internal/commands"
	"botd/internal/mode"
)

var rootCmd = &cobra.Command{
	Use:   "botd",
	Short: "Self-updating bot daemon with a command channel",
	Long: "botd hosts a set of account workers, keeps its own binary up to date\n" +
		"from the release feed, and accepts commands from a second invocation\n" +
		"of the same binary running as a thin client.",
	Args: cobra.ArbitraryArgs,
	// Mode flags are parsed by the selector below; anything it does not
	// recognize is a warning, not a usage error.
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
}

func init() {
	rootCmd.Flags().Bool("client-mode", false, "Forward commands to a running server and exit")
	rootCmd.Flags().Bool("server-mode", false, "Start the command server alongside normal operation")
	rootCmd.Flags().Bool("enable-log", false, "Force file logging on")
	rootCmd.Flags().Bool("disable-log", false, "Force file logging off")

	rootCmd.AddCommand(commands.VersionCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.StatusCmd)
	rootCmd.AddCommand(commands.UpdateCmd)
	rootCmd.AddCommand(commands.LogCmd)
	rootCmd.AddCommand(commands.McpCmd)

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		commands.RunDaemon(mode.Select(os.Args[1:]))
	}
}

func main() {
	// Client mode is decided from the raw startup tokens before cobra
	// sees them: a forwarded command like "status" or "update" collides
	// with a subcommand name and would otherwise be run locally.
	if sel := mode.Select(os.Args[1:]); sel.Mode == mode.ClientOnly {
		commands.RunClient(sel)
		return
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
