package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/vcr/pkg/cassette"
	"github.com/getmockd/vcr/pkg/persister"
	"github.com/getmockd/vcr/pkg/transport"
)

var (
	convertFilterHeaders  []string
	convertFilterQuery    []string
	convertFilterPostData []string
	convertFilterRespHdrs []string
	convertDecode         bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <src> <dst>",
	Short: "Rewrite a cassette in another format, optionally scrubbing it",
	Long: `Rewrite a cassette file. The formats of src and dst follow their
extensions (.yaml, .yml, .json or .cbor), so convert doubles as a format
converter.

The filter flags remove secrets from cassettes that were recorded before
the matching filters were configured.

Examples:
  # YAML to CBOR
  vcr convert repos.yaml repos.cbor

  # Scrub credentials in place
  vcr convert repos.yaml repos.yaml --filter-header Authorization --filter-query api_key`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dst := args[0], args[1]
		if _, err := persister.SerializerForPath(dst); err != nil {
			return err
		}

		interactions, err := readCassette(src)
		if err != nil {
			return err
		}

		var reqFilters []cassette.RequestFilter
		if len(convertFilterHeaders) > 0 {
			reqFilters = append(reqFilters, cassette.FilterHeaders(convertFilterHeaders...))
		}
		if len(convertFilterQuery) > 0 {
			reqFilters = append(reqFilters, cassette.FilterQueryParameters(convertFilterQuery...))
		}
		if len(convertFilterPostData) > 0 {
			reqFilters = append(reqFilters, cassette.FilterPostDataParameters(convertFilterPostData...))
		}
		var respFilters []cassette.ResponseFilter
		if convertDecode {
			respFilters = append(respFilters, transport.DecodeCompressedResponse)
		}
		if len(convertFilterRespHdrs) > 0 {
			respFilters = append(respFilters, cassette.FilterResponseHeaders(convertFilterRespHdrs...))
		}

		for _, in := range interactions {
			for _, f := range reqFilters {
				if r := f(in.Request); r != nil {
					in.Request = r
				}
			}
			for _, f := range respFilters {
				if in.Response == nil {
					break
				}
				if r := f(in.Response.Clone()); r != nil {
					in.Response = r
				}
			}
		}

		if err := persister.WriteFile(dst, persister.ToDocument(interactions)); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		result := map[string]any{"source": src, "destination": dst, "interactions": len(interactions)}
		return printResult(w, result, func() {
			fmt.Fprintf(w, "Converted %d interactions: %s -> %s\n", len(interactions), src, dst)
		})
	},
}

func init() {
	convertCmd.Flags().StringArrayVar(&convertFilterHeaders, "filter-header", nil, "Remove a request header (repeatable)")
	convertCmd.Flags().StringArrayVar(&convertFilterQuery, "filter-query", nil, "Remove a query parameter (repeatable)")
	convertCmd.Flags().StringArrayVar(&convertFilterPostData, "filter-post-data", nil, "Remove a form or JSON body parameter (repeatable)")
	convertCmd.Flags().StringArrayVar(&convertFilterRespHdrs, "filter-response-header", nil, "Remove a response header (repeatable)")
	convertCmd.Flags().BoolVar(&convertDecode, "decode-compressed", false, "Store compressed response bodies decoded")
	rootCmd.AddCommand(convertCmd)
}
