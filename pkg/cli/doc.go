// Package cli provides the command-line interface for vcr.
//
// The cli package implements commands for working with recorded cassettes:
//   - list: List the cassettes under a directory
//   - inspect: Show the interactions stored in a cassette
//   - match: Explain whether a request would be replayed from a cassette
//   - convert: Rewrite a cassette in another format, optionally scrubbing it
//   - modes: Describe the record modes
//   - config: Show, validate or print the schema of the configuration
//   - version: Show vcr version
package cli
