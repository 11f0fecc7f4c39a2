package main

import (
	"os"

	"github.com/spf13/cobra"

	"tomlsort/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration tomlsort would use in the current directory as TOML.

The file is found by searching toml-sort.toml from the working directory
upwards, unless --config is given. TOMLSORT_* environment variables
override file values, e.g. TOMLSORT_IGNORE_CASE=true.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.New(errors.InternalError, "Failed to get current directory", err)
	}

	cfg, err := loadConfig(cwd)
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return errors.New(errors.InternalError, "Failed to encode configuration", err)
	}

	out := cmd.OutOrStdout()
	if cfg.Path != "" {
		printf(out, "# source: %s\n", cfg.Path)
	} else {
		printf(out, "# source: defaults\n")
	}
	_, _ = out.Write(data)

	if err := cfg.Validate(); err != nil {
		return errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}
	return nil
}
