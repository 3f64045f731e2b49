package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show vcr version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := map[string]string{
			"version":   Version,
			"commit":    Commit,
			"buildDate": BuildDate,
			"goVersion": runtime.Version(),
		}
		w := cmd.OutOrStdout()
		return printResult(w, info, func() {
			fmt.Fprintf(w, "vcr %s (commit %s, built %s, %s)\n", Version, Commit, BuildDate, runtime.Version())
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
