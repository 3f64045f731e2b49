package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/vcr/pkg/cli/internal/parse"
	"github.com/getmockd/vcr/pkg/matching"
	"github.com/getmockd/vcr/pkg/request"
	"github.com/getmockd/vcr/pkg/vcr"
)

var (
	matchMethod  string
	matchURL     string
	matchBody    string
	matchHeaders []string
	matchOn      string
)

type nearMiss struct {
	Index     int                `json:"index"`
	Request   string             `json:"request"`
	Succeeded []string           `json:"succeeded"`
	Failed    []matching.Failure `json:"failed"`
}

type matchReport struct {
	Request     string              `json:"request"`
	MatchOn     []string            `json:"match_on"`
	Matched     bool                `json:"matched"`
	Interaction *interactionSummary `json:"interaction,omitempty"`
	Closest     []nearMiss          `json:"closest,omitempty"`
}

var matchCmd = &cobra.Command{
	Use:   "match <file>",
	Short: "Explain whether a request would be replayed from a cassette",
	Long: `Match a request against every interaction in a cassette.

Prints the first interaction the request matches. When nothing matches,
prints the closest recorded requests together with the matchers that
rejected them, and exits with status 2.

The matchers come from --match-on, or from match_on in the configuration.
Custom expression matchers from the configuration can be named too.

Examples:
  vcr match cassette.yaml --url 'https://api.github.com/users/octocat/repos?page=2'
  vcr match cassette.yaml -X POST --url https://host/api --body '{"a":1}' -H 'Content-Type: application/json'
  vcr match cassette.yaml --url https://host/api --match-on method,path,body`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		v, err := vcr.New(cfg, vcr.WithLogger(newLogger(cfg)))
		if err != nil {
			return err
		}

		names := cfg.MatchOn
		if matchOn != "" {
			names = parse.SplitTrim(matchOn, ",")
		}
		set, err := v.Registry().Resolve(names...)
		if err != nil {
			return err
		}

		headers, err := parse.Headers(matchHeaders)
		if err != nil {
			return err
		}
		var body []byte
		if matchBody != "" {
			body = []byte(matchBody)
		}
		req, err := request.New(matchMethod, matchURL, body, headers)
		if err != nil {
			return err
		}

		interactions, err := readCassette(args[0])
		if err != nil {
			return err
		}
		candidates := make([]*request.Request, len(interactions))
		for i, in := range interactions {
			candidates[i] = in.Request
		}

		report := matchReport{Request: req.String(), MatchOn: names}
		for i, c := range candidates {
			ok, _, err := matching.MatchAll(set, req, c)
			if err != nil {
				return err
			}
			if ok {
				s := summarize(i, interactions[i])
				report.Matched = true
				report.Interaction = &s
				break
			}
		}

		var closest []matching.Breakdown
		if !report.Matched {
			if closest, err = matching.Closest(set, req, candidates); err != nil {
				return err
			}
			for _, bd := range closest {
				report.Closest = append(report.Closest, nearMiss{
					Index:     bd.Index,
					Request:   bd.Request.String(),
					Succeeded: bd.Succeeded,
					Failed:    bd.Failed,
				})
			}
		}

		w := cmd.OutOrStdout()
		err = printResult(w, report, func() {
			if report.Matched {
				s := report.Interaction
				fmt.Fprintf(w, "Matched interaction #%d: %s %s -> %d\n", s.Index+1, s.Method, s.URI, s.Status)
				return
			}
			fmt.Fprintf(w, "No match for the request (%s) was found.\n", req)
			if len(closest) == 0 {
				fmt.Fprintln(w, "No similar requests found.")
				return
			}
			fmt.Fprintf(w, "Found %d similar requests with %d different matcher(s) :\n", len(closest), len(closest[0].Failed))
			for _, bd := range closest {
				fmt.Fprintln(w)
				fmt.Fprint(w, bd.Format())
			}
		})
		if err != nil {
			return err
		}
		if !report.Matched {
			return errNoMatch
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchMethod, "method", "X", "GET", "Request method")
	matchCmd.Flags().StringVarP(&matchURL, "url", "u", "", "Request URL")
	matchCmd.Flags().StringVarP(&matchBody, "body", "d", "", "Request body")
	matchCmd.Flags().StringArrayVarP(&matchHeaders, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	matchCmd.Flags().StringVar(&matchOn, "match-on", "", "Comma-separated matcher names (default: match_on from config)")
	_ = matchCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(matchCmd)
}
