// Package persister stores cassettes.
//
// FileSystem writes one file per cassette in YAML, JSON or CBOR. Memory keeps
// cassettes in process and is meant for tests and dry runs.
package persister
