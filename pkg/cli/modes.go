package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/getmockd/vcr/pkg/cassette"
	"github.com/getmockd/vcr/pkg/cli/internal/output"
)

var modeDescriptions = map[cassette.Mode]string{
	cassette.ModeNone:        "Replay only. Unmatched requests fail.",
	cassette.ModeAll:         "Every request goes live and is recorded. Nothing is replayed.",
	cassette.ModeOnce:        "Record into a new cassette. Replay only once it exists.",
	cassette.ModeNewEpisodes: "Replay what matches and record everything else.",
}

type modeInfo struct {
	Mode        string `json:"mode"`
	Title       string `json:"title"`
	Default     bool   `json:"default"`
	Description string `json:"description"`
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Describe the record modes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		title := cases.Title(language.English)
		var infos []modeInfo
		for _, m := range cassette.Modes() {
			infos = append(infos, modeInfo{
				Mode:        m.String(),
				Title:       title.String(strings.ReplaceAll(m.String(), "_", " ")),
				Default:     m == cassette.DefaultMode,
				Description: modeDescriptions[m],
			})
		}

		w := cmd.OutOrStdout()
		return printResult(w, infos, func() {
			tw := output.Table(w)
			fmt.Fprintln(tw, "MODE\tNAME\tDESCRIPTION")
			for _, i := range infos {
				name := i.Title
				if i.Default {
					name += " (default)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", i.Mode, name, i.Description)
			}
			_ = tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
