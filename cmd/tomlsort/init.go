package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tomlsort/internal/config"
	"tomlsort/internal/errors"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Write a default toml-sort.toml",
	Long:  "Creates toml-sort.toml with the default settings in DIR (default: the current directory)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		return runInit(cmd, dir)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing toml-sort.toml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, dir string) error {
	out := cmd.OutOrStdout()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.New(errors.InternalError, "Failed to resolve directory", err)
	}

	configFile := filepath.Join(abs, config.FileName)
	if _, statErr := os.Stat(configFile); statErr == nil && !initForce {
		// Already initialized is success (CI-friendly)
		printf(out, "tomlsort already initialized.\n")
		printf(out, "Configuration at: %s\n", configFile)
		printf(out, "\nRun 'tomlsort init --force' to overwrite.\n")
		return nil
	}

	written, err := config.DefaultConfig().Save(abs)
	if err != nil {
		return errors.New(errors.WriteFailed, "Failed to write config file", err).WithPath(configFile)
	}

	printf(out, "Wrote %s\n", written)
	return nil
}
