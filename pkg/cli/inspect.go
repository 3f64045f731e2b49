package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/vcr/pkg/cli/internal/output"
)

var inspectBodies bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the interactions stored in a cassette",
	Long: `Show the interactions stored in a cassette file.

Examples:
  vcr inspect testdata/cassettes/github/repos.yaml
  vcr inspect --bodies testdata/cassettes/github/repos.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interactions, err := readCassette(args[0])
		if err != nil {
			return err
		}

		summaries := make([]interactionSummary, len(interactions))
		for i, in := range interactions {
			summaries[i] = summarize(i, in)
		}

		w := cmd.OutOrStdout()
		return printResult(w, summaries, func() {
			fmt.Fprintf(w, "%s: %d interaction(s)\n\n", args[0], len(interactions))
			tw := output.Table(w)
			fmt.Fprintln(tw, "#\tMETHOD\tURI\tSTATUS\tRECORDED")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", s.Index+1, s.Method, s.URI, s.Status, s.RecordedAt)
			}
			_ = tw.Flush()

			if !inspectBodies {
				return
			}
			for i, in := range interactions {
				fmt.Fprintf(w, "\n--- %d request body ---\n%s\n", i+1, in.Request.BodyString())
				if in.Response != nil {
					fmt.Fprintf(w, "--- %d response body ---\n%s\n", i+1, in.Response.Body)
				}
			}
		})
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectBodies, "bodies", false, "Also print request and response bodies")
	rootCmd.AddCommand(inspectCmd)
}
