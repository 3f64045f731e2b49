package cassette

import (
	"fmt"
	"strings"
)

// Mode is the record mode of a cassette.
type Mode string

const (
	// ModeNone replays recorded interactions and never performs live calls.
	ModeNone Mode = "none"
	// ModeAll performs every call live and records it. Stored interactions
	// are neither loaded nor replayed.
	ModeAll Mode = "all"
	// ModeOnce replays a cassette that already exists, and records into one
	// that does not.
	ModeOnce Mode = "once"
	// ModeNewEpisodes replays what matches and records everything else.
	ModeNewEpisodes Mode = "new_episodes"
)

// DefaultMode is used when no mode is configured.
const DefaultMode = ModeOnce

// Modes lists every valid mode.
func Modes() []Mode {
	return []Mode{ModeNone, ModeAll, ModeOnce, ModeNewEpisodes}
}

// IsValid checks if the mode is valid.
func (m Mode) IsValid() bool {
	switch m {
	case ModeNone, ModeAll, ModeOnce, ModeNewEpisodes:
		return true
	default:
		return false
	}
}

func (m Mode) String() string { return string(m) }

// ParseMode parses a mode name. Matching is case-insensitive and accepts
// "new-episodes" as well as "new_episodes".
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}
