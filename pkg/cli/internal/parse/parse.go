// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"fmt"
	"net/http"
	"strings"
)

// KeyValue parses a "key:value" or "key=value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to ':'.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{':'}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Headers parses repeated "Name: value" flags into a header. Values are
// trimmed and repeated names accumulate.
func Headers(flags []string) (http.Header, error) {
	h := make(http.Header)
	for _, f := range flags {
		key, value, ok := KeyValue(f, ':')
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Name: value\"", f)
		}
		h.Add(key, strings.TrimSpace(value))
	}
	return h, nil
}

// SplitTrim splits a string by separator and trims each part.
func SplitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
