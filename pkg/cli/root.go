package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/vcr/pkg/config"
	"github.com/getmockd/vcr/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	configPath string
	logLevel   string
	logFormat  string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vcr",
	Short: "vcr inspects and maintains recorded HTTP cassettes",
	Long: `vcr works with the cassettes written by the vcr Go package.

It lists and inspects cassettes, explains why a request would or would not
be replayed from one, and converts cassettes between YAML, JSON and CBOR.

Configuration is read from the file given with --config. The environment
variables VCR_RECORD_MODE and VCR_CASSETTE_DIR override it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	os.Exit(Main())
}

// Main runs the root command and returns the process exit code.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, errNoMatch) {
			return 2
		}
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a vcr configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// loadConfig reads the configuration selected by --config and applies the
// logging flags on top of it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

// newLogger logs to stderr so that stdout stays machine readable.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Logging())
}
