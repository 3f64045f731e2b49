package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/vcr/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, validate or print the schema of the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the configuration after defaults and environment overrides
have been applied.

Examples:
  vcr config show
  vcr -c vcr.yaml config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if jsonOutput {
			return printResult(w, cfg, nil)
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		_, err = w.Write(out)
		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without using it.

This command checks:
  - YAML or JSON syntax (JSON may contain comments and trailing commas)
  - Schema validation (known keys, value types, record modes)
  - Matcher names and custom matcher expressions

Without an argument the file given with --config is validated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no configuration file given")
		}
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		result := map[string]any{"path": path, "valid": true, "record_mode": cfg.RecordMode}
		return printResult(w, result, func() {
			fmt.Fprintf(w, "%s is valid (record mode %s)\n", path, cfg.RecordMode)
		})
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(config.Schema())
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configValidateCmd, configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}
