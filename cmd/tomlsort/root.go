package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"tomlsort/internal/config"
	"tomlsort/internal/document"
	"tomlsort/internal/errors"
	"tomlsort/internal/runner"
	"tomlsort/internal/slogutil"
	"tomlsort/internal/storage"
	"tomlsort/internal/version"
)

// cacheRetention is how long an untouched cache entry is kept.
const cacheRetention = 30 * 24 * time.Hour

var (
	// Persistent flags shared by every command
	configPath string
	verbosity  int
	quiet      bool

	sortOpts sortFlags
)

// sortFlags holds the flags of the root sort command.
type sortFlags struct {
	check         bool
	stdout        bool
	diff          bool
	format        string
	jobs          int
	ignoreCase    bool
	commentMarker string
	include       []string
	exclude       []string
	noVerify      bool
	cache         bool
}

var rootCmd = &cobra.Command{
	Use:   "tomlsort [flags] [PATH...]",
	Short: "Sort keys in TOML files, keeping groups intact",
	Long: `tomlsort sorts the key/value entries of every table in TOML files.

Blank lines and table headers split a table into groups that are sorted
independently. Comments directly above an entry move with it; a comment at
the top of a group stays there. Tables never move.

Directories are searched for files matching the include globs. "-" reads
standard input and writes the result to standard output.

Examples:
  tomlsort Cargo.toml            # sort in place
  tomlsort --check .             # exit 2 if any file is unsorted
  tomlsort --check --diff .      # also show what would change
  tomlsort --stdout pyproject.toml
  cat Cargo.toml | tomlsort -`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sortFiles(cmd.Context(), &sortOpts, cmd.Flags().Changed, args, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.SetVersionTemplate("tomlsort version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to toml-sort.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress logs and the summary")

	f := rootCmd.Flags()
	f.BoolVarP(&sortOpts.check, "check", "c", false, "Report unsorted files without writing; exit 2 if any")
	f.BoolVar(&sortOpts.stdout, "stdout", false, "Print sorted output instead of writing files")
	f.BoolVar(&sortOpts.diff, "diff", false, "With --check, show a unified diff per unsorted file")
	f.StringVar(&sortOpts.format, "format", string(FormatHuman), "Report format (human, json, yaml)")
	f.IntVar(&sortOpts.jobs, "jobs", 0, "Files processed in parallel (default: number of CPUs)")
	f.BoolVar(&sortOpts.ignoreCase, "ignore-case", false, "Compare keys case-insensitively")
	f.StringVar(&sortOpts.commentMarker, "comment-marker", "", "Comment marker (default \"#\")")
	f.StringSliceVar(&sortOpts.include, "include", nil, "Globs selecting files under directories")
	f.StringSliceVar(&sortOpts.exclude, "exclude", nil, "Globs skipped under directories")
	f.BoolVar(&sortOpts.noVerify, "no-verify", false, "Skip checking that sorting kept the data unchanged")
	f.BoolVar(&sortOpts.cache, "cache", false, "Skip files recorded as already sorted")

	rootCmd.MarkFlagsMutuallyExclusive("check", "stdout")
}

// sortFiles runs the root command.
func sortFiles(ctx context.Context, f *sortFlags, changed func(string) bool, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	format, err := ParseOutputFormat(f.format)
	if err != nil {
		return errors.New(errors.ConfigInvalid, err.Error(), nil)
	}
	if f.diff && !f.check {
		return errors.New(errors.ConfigInvalid, "--diff requires --check", nil)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return errors.New(errors.InternalError, "Failed to get current directory", err)
	}

	cfg, err := loadConfig(cwd)
	if err != nil {
		return err
	}
	applyFlags(cfg, f, changed)
	if err := cfg.Validate(); err != nil {
		return errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}

	logger := newLogger(cfg, stderr)

	mode := runner.ModeWrite
	switch {
	case f.check:
		mode = runner.ModeCheck
	case f.stdout:
		mode = runner.ModeStdout
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	opts := runnerOptions(cfg, cwd, mode)
	opts.Diff = f.diff
	opts.Stdin = stdin
	opts.Stdout = stdout

	if cfg.Cache && mode != runner.ModeStdout {
		db := openCache(ctx, cfg, cwd, logger)
		if db != nil {
			defer db.Close()
			opts.Cache = db
		}
	}

	report, err := runner.New(opts, logger).Run(ctx, args)
	if err != nil {
		return errors.New(errors.InternalError, "run aborted", err)
	}

	// Standard output carries sorted documents in stdout mode and for stdin.
	reportOut := stdout
	piped := mode == runner.ModeStdout || slices.Contains(args, runner.StdinPath)
	if piped {
		reportOut = stderr
	}
	if err := writeReport(reportOut, report, format, quiet || (piped && format == FormatHuman)); err != nil {
		return errors.New(errors.InternalError, "failed to write report", err)
	}

	return report.Err()
}

// loadConfig reads the configuration for the working directory.
func loadConfig(cwd string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath, cwd)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to load configuration", err)
	}
	return cfg, nil
}

// applyFlags overrides configuration with the flags set on the command line.
func applyFlags(cfg *config.Config, f *sortFlags, changed func(string) bool) {
	if changed("ignore-case") {
		cfg.IgnoreCase = f.ignoreCase
	}
	if changed("comment-marker") {
		cfg.CommentMarker = f.commentMarker
	}
	if changed("include") {
		cfg.Include = f.include
	}
	if changed("exclude") {
		cfg.Exclude = f.exclude
	}
	if changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if changed("no-verify") {
		cfg.Verify = !f.noVerify
	}
	if changed("cache") {
		cfg.Cache = f.cache
	}
}

func newLogger(cfg *config.Config, stderr io.Writer) *slog.Logger {
	level := slogutil.ResolveLevel(cfg.Logging.Level, verbosity, quiet)
	return slogutil.New(stderr, cfg.Logging.Format, level)
}

// runnerOptions maps configuration onto runner options.
func runnerOptions(cfg *config.Config, cwd string, mode runner.Mode) runner.Options {
	return runner.Options{
		Mode:        mode,
		Verify:      cfg.Verify,
		Jobs:        cfg.Workers(),
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		Root:        cfg.Root(cwd),
		Engine:      cfg.EngineOptions(),
		Locator:     document.NewLocator(),
		Fingerprint: cfg.Fingerprint(),
	}
}

// openCache opens the sorted-file cache. A cache that cannot be opened is
// logged and skipped; sorting works without it.
func openCache(ctx context.Context, cfg *config.Config, cwd string, logger *slog.Logger) *storage.DB {
	db, err := storage.Open(cfg.Root(cwd), logger)
	if err != nil {
		logger.Warn("Cache disabled",
			"code", string(errors.CacheUnavailable),
			"error", err.Error(),
		)
		return nil
	}
	if _, err := db.Prune(ctx, time.Now().Add(-cacheRetention)); err != nil {
		logger.Debug("Cache prune failed", "error", err.Error())
	}
	return db
}

// printf writes to w, ignoring errors like fmt.Printf.
func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
