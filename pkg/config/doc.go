// Package config loads vcr configuration.
//
// Configuration files are YAML (.yaml, .yml) or JSON (.json, .jsonc; comments
// and trailing commas allowed):
//
//	cassette_dir: testdata/cassettes
//	record_mode: once
//	match_on: [method, scheme, host, port, path, query, body]
//	serializer: yaml
//	filter_headers: [Authorization]
//	decode_compressed_response: true
//	custom_matchers:
//	  same_tenant: a.Headers["X-Tenant"] == b.Headers["X-Tenant"]
//
// Files are checked against an embedded JSON schema before decoding, then
// validated semantically. VCR_RECORD_MODE and VCR_CASSETTE_DIR override the
// file.
package config
