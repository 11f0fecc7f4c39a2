// Package runner sorts, checks, or prints a set of TOML files and reports
// what happened to each one.
package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tomlsort/internal/document"
	"tomlsort/internal/errors"
	"tomlsort/internal/tablesort"
)

// Mode selects what happens to sorted output.
type Mode int

const (
	// ModeWrite rewrites unsorted files in place.
	ModeWrite Mode = iota
	// ModeCheck reports unsorted files without writing.
	ModeCheck
	// ModeStdout prints sorted output.
	ModeStdout
)

// String returns the mode name used in reports.
func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "write"
	case ModeCheck:
		return "check"
	case ModeStdout:
		return "stdout"
	default:
		return "unknown"
	}
}

// DefaultInclude selects files under directory targets when no include
// globs are set.
var DefaultInclude = []string{"**/*.toml"}

// StdinPath is the target naming standard input.
const StdinPath = "-"

// Cache remembers files that were already sorted.
type Cache interface {
	IsSorted(ctx context.Context, path, digest, fingerprint string) (bool, error)
	MarkSorted(ctx context.Context, path, digest, fingerprint string) error
}

// Options configures a Runner.
type Options struct {
	Mode Mode
	// Diff attaches a unified diff to unsorted files in check mode.
	Diff bool
	// Verify decodes input and output and fails files whose data changed.
	Verify bool
	// Jobs bounds parallel files. Zero means one per CPU.
	Jobs int

	// Include and Exclude filter files found under directory targets.
	Include []string
	Exclude []string
	// Root anchors cache keys and glob matching for relative paths.
	Root string

	Engine  tablesort.Options
	Locator document.Locator

	// Cache is optional. Fingerprint identifies the engine options the
	// cached entries were sorted with.
	Cache       Cache
	Fingerprint string

	Stdin  io.Reader
	Stdout io.Writer
}

// Runner processes targets with fixed options.
type Runner struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Runner, filling unset options with defaults.
func New(opts Options, logger *slog.Logger) *Runner {
	if opts.Locator == nil {
		opts.Locator = document.NewLocator()
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if len(opts.Include) == 0 {
		opts.Include = DefaultInclude
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{opts: opts, logger: logger}
}

// Run processes every target and returns the report. Per-file failures
// are recorded in the report; the error is only for failures of the run
// itself, such as cancellation or a failed write to stdout.
func (r *Runner) Run(ctx context.Context, targets []string) (*Report, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := r.logger.With("run", runID)

	files, missing := r.Expand(targets)
	logger.Debug("Expanded targets", "targets", len(targets), "files", len(files), "missing", len(missing))

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Jobs)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.process(gctx, logger, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, path := range missing {
		results = append(results, FileResult{
			Path:   path,
			Status: StatusError,
			Error:  errors.New(errors.FileNotFound, "no such file or directory", nil).WithPath(path),
		})
	}

	if err := r.printOutputs(results); err != nil {
		return nil, err
	}

	report := newReport(runID, r.opts.Mode, results, time.Since(start))
	logger.Info("Run finished",
		"mode", r.opts.Mode.String(),
		"files", report.Summary.Files,
		"sorted", report.Summary.Sorted,
		"unsorted", report.Summary.Unsorted,
		"errors", report.Summary.Errors,
		"duration", report.Duration,
	)
	return report, nil
}

// printOutputs writes sorted text in target order: every file in stdout
// mode, standard input in write mode.
func (r *Runner) printOutputs(results []FileResult) error {
	for _, res := range results {
		if res.Status == StatusError || !r.prints(res.Path) {
			continue
		}
		if _, err := io.WriteString(r.opts.Stdout, res.output); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) prints(path string) bool {
	switch r.opts.Mode {
	case ModeStdout:
		return true
	case ModeWrite:
		return path == StdinPath
	default:
		return false
	}
}
