package cli

import "errors"

// errNoMatch makes the match command exit with status 2.
var errNoMatch = errors.New("no matching interaction")
