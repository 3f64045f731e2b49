package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},

		{"DEBUG", LevelDebug},
		{"WARNING", LevelWarn},
		{"Error", LevelError},
		{"dEbUg", LevelDebug},
		{" warn ", LevelWarn},

		// Empty and unrecognized values default to Info
		{"", LevelInfo},
		{"trace", LevelInfo},
		{"fatal", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"", FormatText},
		{"yaml", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf})
	logger.Debug("played interaction", "cassette", "api", "index", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "played interaction", entry["msg"])
	assert.Equal(t, "api", entry["cassette"])
	assert.EqualValues(t, 2, entry["index"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNop(t *testing.T) {
	assert.False(t, Nop().Enabled(context.Background(), LevelError))
	assert.NotNil(t, OrNop(nil))

	l := New(DefaultConfig())
	assert.Same(t, l, OrNop(l))
}

func TestTee(t *testing.T) {
	var debug, warn bytes.Buffer
	h := Tee(
		Handler(Config{Level: LevelDebug, Output: &debug}),
		nil,
		Handler(Config{Level: LevelWarn, Format: FormatJSON, Output: &warn}),
	)
	logger := slog.New(h).With("cassette", "api")

	logger.Debug("quiet")
	logger.Warn("loud")

	assert.Contains(t, debug.String(), "msg=quiet")
	assert.Contains(t, debug.String(), "msg=loud")
	assert.NotContains(t, warn.String(), "quiet")
	assert.Contains(t, warn.String(), `"cassette":"api"`)

	single := Handler(DefaultConfig())
	assert.Equal(t, single, Tee(single, nil))
}

type fakeTB struct {
	testing.TB
	lines []string
}

func (f *fakeTB) Helper()          {}
func (f *fakeTB) Log(args ...any) { f.lines = append(f.lines, strings.TrimSpace(args[0].(string))) }

func TestNewTB(t *testing.T) {
	tb := &fakeTB{}
	logger := NewTB(tb, LevelDebug)
	logger.Debug("first", "n", 1)
	logger.Info("second")

	require.Len(t, tb.lines, 2)
	assert.Contains(t, tb.lines[0], "msg=first n=1")
	assert.Contains(t, tb.lines[1], "msg=second")
}
