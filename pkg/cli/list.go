package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/getmockd/vcr/pkg/cli/internal/output"
	"github.com/getmockd/vcr/pkg/persister"
)

type cassetteListing struct {
	Path         string `json:"path"`
	Format       string `json:"format"`
	Interactions int    `json:"interactions"`
}

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the cassettes under a directory",
	Long: `List the cassettes under a directory, recursively.

Without an argument the configured cassette directory is used.
Files that cannot be decoded are reported on stderr and skipped.

Examples:
  vcr list
  vcr list testdata/cassettes
  vcr list --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := cfg.CassetteDir
		if len(args) == 1 {
			dir = args[0]
		}

		paths, err := persister.Discover(dir)
		if err != nil {
			return err
		}

		listings := make([]cassetteListing, 0, len(paths))
		for _, p := range paths {
			full := filepath.Join(dir, filepath.FromSlash(p))
			s, err := persister.SerializerForPath(full)
			if err != nil {
				output.Warn(cmd.ErrOrStderr(), "%s: %v", p, err)
				continue
			}
			doc, err := persister.ReadFile(full)
			if err != nil {
				output.Warn(cmd.ErrOrStderr(), "%s: %v", p, err)
				continue
			}
			listings = append(listings, cassetteListing{Path: p, Format: s.Name(), Interactions: len(doc.Interactions)})
		}

		w := cmd.OutOrStdout()
		return printResult(w, listings, func() {
			if len(listings) == 0 {
				fmt.Fprintf(w, "No cassettes found in %s\n", dir)
				return
			}
			tw := output.Table(w)
			fmt.Fprintln(tw, "PATH\tFORMAT\tINTERACTIONS")
			for _, l := range listings {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", l.Path, l.Format, l.Interactions)
			}
			_ = tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
