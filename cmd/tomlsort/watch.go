package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tomlsort/internal/errors"
	"tomlsort/internal/paths"
	"tomlsort/internal/runner"
	"tomlsort/internal/storage"
	"tomlsort/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [PATH...]",
	Short: "Sort TOML files whenever they change",
	Long: `Sort the given files and directories once, then keep sorting files as
they are saved. Stops on Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cwd, err := os.Getwd()
	if err != nil {
		return errors.New(errors.InternalError, "Failed to get current directory", err)
	}
	cfg, err := loadConfig(cwd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	if len(args) == 0 {
		args = []string{"."}
	}

	opts := runnerOptions(cfg, cwd, runner.ModeWrite)
	var db *storage.DB
	if cfg.Cache {
		if db = openCache(ctx, cfg, cwd, logger); db != nil {
			defer db.Close()
			opts.Cache = db
		}
	}
	r := runner.New(opts, logger)

	// Initial pass
	if err := sortAndReport(ctx, r, args, out); err != nil {
		return err
	}

	targets := newWatchTargets(args, r)
	wcfg := watcher.DefaultConfig()
	wcfg.Match = targets.match
	wcfg.SkipDir = targets.skipDir

	w, err := watcher.New(wcfg, logger, func(ctx context.Context, events []watcher.Event) {
		if db != nil {
			forgetDeleted(ctx, db, r, events, logger)
		}
		changed := watcher.Paths(events)
		if len(changed) == 0 {
			return
		}
		if err := sortAndReport(ctx, r, changed, out); err != nil {
			logger.Error("Sort failed", "error", err.Error())
		}
	})
	if err != nil {
		return errors.New(errors.InternalError, "Failed to start watcher", err)
	}
	for _, target := range args {
		if err := w.Add(target); err != nil {
			return errors.New(errors.FileNotFound, "cannot watch path", err).WithPath(target)
		}
	}

	logger.Info("Watching for changes", "directories", w.WatchedDirs())
	printf(out, "Watching %s (Ctrl+C to stop)\n", strings.Join(args, ", "))
	return w.Run(ctx)
}

// sortAndReport runs one pass and prints the human report. Per-file
// failures are printed, not returned.
func sortAndReport(ctx context.Context, r *runner.Runner, targets []string, out io.Writer) error {
	report, err := r.Run(ctx, targets)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.New(errors.InternalError, "run aborted", err)
	}
	if report.Summary.Sorted == 0 && report.Summary.Errors == 0 {
		return nil
	}
	return writeReport(out, report, FormatHuman, quiet)
}

func forgetDeleted(ctx context.Context, db *storage.DB, r *runner.Runner, events []watcher.Event, logger *slog.Logger) {
	for _, e := range events {
		if e.Type != watcher.EventDelete && e.Type != watcher.EventRename {
			continue
		}
		if err := db.Forget(ctx, r.CacheKey(e.Path)); err != nil {
			logger.Debug("Cache forget failed", "path", e.Path, "error", err.Error())
		}
	}
}

// watchTargets decides which changed files belong to the watched targets.
type watchTargets struct {
	files  map[string]bool
	dirs   []string
	runner *runner.Runner
}

func newWatchTargets(args []string, r *runner.Runner) *watchTargets {
	t := &watchTargets{files: make(map[string]bool), runner: r}
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			t.dirs = append(t.dirs, abs)
		} else {
			t.files[abs] = true
		}
	}
	return t
}

// match selects explicit files and files under a target directory that
// pass the include and exclude globs.
func (t *watchTargets) match(path string) bool {
	if t.files[path] {
		return true
	}
	for _, dir := range t.dirs {
		if rel, ok := relativeTo(dir, path); ok && t.runner.Included(rel) {
			return true
		}
	}
	return false
}

func (t *watchTargets) skipDir(path string) bool {
	for _, dir := range t.dirs {
		if rel, ok := relativeTo(dir, path); ok && t.runner.Excluded(rel) {
			return true
		}
	}
	return false
}

// relativeTo returns path relative to dir with forward slashes, if path is
// inside dir.
func relativeTo(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return paths.NormalizePath(rel), true
}

