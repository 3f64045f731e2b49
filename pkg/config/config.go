package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/getmockd/vcr/pkg/cassette"
	"github.com/getmockd/vcr/pkg/logging"
	"github.com/getmockd/vcr/pkg/matching"
	"github.com/getmockd/vcr/pkg/persister"
)

// Environment variables read by ApplyEnv.
const (
	EnvRecordMode  = "VCR_RECORD_MODE"
	EnvCassetteDir = "VCR_CASSETTE_DIR"
)

// DefaultCassetteDir is where cassettes live when nothing else is configured.
const DefaultCassetteDir = "testdata/cassettes"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config configures cassettes created through the vcr package.
type Config struct {
	CassetteDir              string            `json:"cassette_dir,omitempty" yaml:"cassette_dir,omitempty"`
	RecordMode               string            `json:"record_mode,omitempty" yaml:"record_mode,omitempty"`
	MatchOn                  []string          `json:"match_on,omitempty" yaml:"match_on,omitempty"`
	Serializer               string            `json:"serializer,omitempty" yaml:"serializer,omitempty"`
	AllowPlaybackRepeats     bool              `json:"allow_playback_repeats,omitempty" yaml:"allow_playback_repeats,omitempty"`
	DropUnused               bool              `json:"drop_unused,omitempty" yaml:"drop_unused,omitempty"`
	DecodeCompressedResponse bool              `json:"decode_compressed_response,omitempty" yaml:"decode_compressed_response,omitempty"`
	FilterHeaders            []string          `json:"filter_headers,omitempty" yaml:"filter_headers,omitempty"`
	FilterQueryParameters    []string          `json:"filter_query_parameters,omitempty" yaml:"filter_query_parameters,omitempty"`
	FilterPostDataParameters []string          `json:"filter_post_data_parameters,omitempty" yaml:"filter_post_data_parameters,omitempty"`
	IgnoreHosts              []string          `json:"ignore_hosts,omitempty" yaml:"ignore_hosts,omitempty"`
	IgnoreLocalhost          bool              `json:"ignore_localhost,omitempty" yaml:"ignore_localhost,omitempty"`
	CustomMatchers           map[string]string `json:"custom_matchers,omitempty" yaml:"custom_matchers,omitempty"`
	Log                      LogConfig         `json:"log,omitempty" yaml:"log,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		CassetteDir: DefaultCassetteDir,
		RecordMode:  string(cassette.DefaultMode),
		MatchOn:     append([]string(nil), matching.DefaultMatchOn...),
		Serializer:  persister.DefaultSerializer.Name(),
		Log:         LogConfig{Level: "info", Format: "text"},
	}
}

// applyDefaults fills fields a file left empty.
func (c *Config) applyDefaults() {
	d := Default()
	if c.CassetteDir == "" {
		c.CassetteDir = d.CassetteDir
	}
	if c.RecordMode == "" {
		c.RecordMode = d.RecordMode
	}
	if len(c.MatchOn) == 0 {
		c.MatchOn = d.MatchOn
	}
	if c.Serializer == "" {
		c.Serializer = d.Serializer
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// ApplyEnv overrides the record mode and cassette directory from the
// environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvRecordMode)); v != "" {
		c.RecordMode = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCassetteDir)); v != "" {
		c.CassetteDir = v
	}
}

// Mode returns the parsed record mode.
func (c *Config) Mode() (cassette.Mode, error) {
	return cassette.ParseMode(c.RecordMode)
}

// Logging returns the logging configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	return cfg
}

// Validate checks values the schema cannot: the record mode, the
// serializer, matcher names, and custom matcher expressions.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Mode(); err != nil {
		errs = append(errs, fmt.Errorf("record_mode: %w", err))
	}
	if _, err := persister.SerializerFor(c.Serializer); err != nil {
		errs = append(errs, fmt.Errorf("serializer: %w", err))
	}

	names := make([]string, 0, len(c.CustomMatchers))
	for name := range c.CustomMatchers {
		names = append(names, name)
	}
	sort.Strings(names)

	known := make(map[string]bool)
	for _, name := range matching.Default().Names() {
		known[name] = true
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("custom_matchers: empty matcher name"))
			continue
		}
		if known[name] {
			errs = append(errs, fmt.Errorf("custom_matchers.%s: shadows a built-in matcher", name))
			continue
		}
		if _, err := matching.CompileExpr(c.CustomMatchers[name]); err != nil {
			errs = append(errs, fmt.Errorf("custom_matchers.%s: %w", name, err))
		}
		known[name] = true
	}

	if len(c.MatchOn) == 0 {
		errs = append(errs, fmt.Errorf("match_on: %w", matching.ErrEmptyMatcherSet))
	}
	for _, name := range c.MatchOn {
		if !known[name] {
			errs = append(errs, fmt.Errorf("match_on: %w: %q", matching.ErrUnknownMatcher, name))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
