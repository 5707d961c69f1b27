package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Release stamps, injected with -ldflags "-X .../cmd.Version=..." by the release build.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the faceauth release, commit and toolchain",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "faceauth %s\n", Version)
		fmt.Fprintf(out, "commit %s, built %s with %s\n", CommitSHA, BuildDate, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
