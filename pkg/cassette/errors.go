package cassette

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/vcr/pkg/matching"
	"github.com/getmockd/vcr/pkg/request"
)

// Cassette errors.
var (
	ErrNoMatch            = errors.New("no matching interaction")
	ErrRecordingForbidden = errors.New("recording forbidden")
	ErrCassetteNotFound   = errors.New("cassette not found")
	ErrInvalidMode        = errors.New("invalid record mode")
	ErrInvalidName        = errors.New("cassette name is required")
)

// NoMatchError reports a request that no eligible interaction matched while
// the cassette could not record it.
type NoMatchError struct {
	Cassette string
	Mode     Mode
	Request  *request.Request
	// Closest holds the eligible interactions that satisfied the most
	// matchers. Index refers to the cassette's interaction list.
	Closest []matching.Breakdown
}

func (e *NoMatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Can't overwrite existing cassette (%q) in your current record mode (%q).\n", e.Cassette, e.Mode)
	fmt.Fprintf(&sb, "No match for the request (%s) was found.\n", e.Request)
	if len(e.Closest) == 0 {
		sb.WriteString("No similar requests, that have not been played, found.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Found %d similar requests with %d different matcher(s) :\n", len(e.Closest), len(e.Closest[0].Failed))
	for _, bd := range e.Closest {
		sb.WriteString("\n")
		sb.WriteString(bd.Format())
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Is reports whether target is ErrNoMatch.
func (e *NoMatchError) Is(target error) bool { return target == ErrNoMatch }

// RecordingForbiddenError is returned by Record when the cassette is write
// protected.
type RecordingForbiddenError struct {
	Cassette string
	Mode     Mode
}

func (e *RecordingForbiddenError) Error() string {
	return fmt.Sprintf("cassette %q: recording forbidden in record mode %q", e.Cassette, e.Mode)
}

// Is reports whether target is ErrRecordingForbidden.
func (e *RecordingForbiddenError) Is(target error) bool { return target == ErrRecordingForbidden }
