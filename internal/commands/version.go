package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, set via ldflags at build time. The version string
// participates in the ordinal comparison against release tags, so tags
// and builds must use the same format.
var (
	Version = "1.0.0.0"
	Commit  = "unknown"
	Date    = "unknown"
)

// VersionCmd prints build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("botd version %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}
