package persister

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// cassettePattern matches every file a built-in serializer can read.
const cassettePattern = "**/*.{yaml,yml,json,cbor}"

// Discover returns the cassette files under dir as slash-separated paths
// relative to dir, sorted.
func Discover(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), cassettePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}
