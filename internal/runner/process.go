package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"tomlsort/internal/diff"
	"tomlsort/internal/document"
	"tomlsort/internal/errors"
	"tomlsort/internal/paths"
	"tomlsort/internal/storage"
)

// process handles one file: read, cache lookup, sort, verify, then write,
// report or keep the output for printing.
func (r *Runner) process(ctx context.Context, logger *slog.Logger, path string) FileResult {
	res := FileResult{Path: path}
	fail := func(err *errors.SortError) FileResult {
		res.Status = StatusError
		res.Error = err.WithPath(path)
		logger.Warn("File failed", "path", path, "code", string(err.Code), "error", err.Error())
		return res
	}

	data, err := r.read(path)
	if err != nil {
		return fail(errors.New(errors.ReadFailed, "cannot read file", err))
	}
	src := string(data)

	useCache := r.opts.Cache != nil && path != StdinPath && r.opts.Mode != ModeStdout
	key := r.CacheKey(path)
	digest := storage.Digest(data)
	if useCache {
		ok, err := r.opts.Cache.IsSorted(ctx, key, digest, r.opts.Fingerprint)
		if err != nil {
			logger.Warn("Cache lookup failed", "path", path, "error", err.Error())
		} else if ok {
			logger.Debug("Cache hit", "path", path)
			res.Status = StatusCached
			return res
		}
	}

	sorted, err := document.Sort(ctx, src, r.opts.Locator, r.opts.Engine)
	if err != nil {
		return fail(errors.New(errors.InternalError, "cannot locate tables", err))
	}

	if r.opts.Verify {
		skipped, err := Verify(src, sorted)
		if err != nil {
			return fail(errors.New(errors.VerifyFailed, "sorted output changes the document's data", err))
		}
		if skipped {
			logger.Debug("Verification skipped, input is not valid TOML", "path", path)
		}
	}
	res.output = sorted

	if sorted == src {
		res.Status = StatusUnchanged
		if useCache {
			r.markSorted(ctx, logger, key, digest)
		}
		return res
	}

	switch r.opts.Mode {
	case ModeCheck:
		res.Status = StatusUnsorted
		ops := diff.Lines(src, sorted)
		stats := diff.Count(ops)
		res.Stats = &stats
		if r.opts.Diff {
			name := paths.NormalizePath(path)
			res.Diff = diff.Unified("a/"+name, "b/"+name, src, sorted, diff.DefaultContext)
		}
		logger.Info("File is not sorted", "path", path)

	case ModeWrite:
		res.Status = StatusSorted
		if path == StdinPath {
			return res
		}
		if err := WriteFileAtomic(path, []byte(sorted)); err != nil {
			return fail(errors.New(errors.WriteFailed, "cannot write sorted file", err))
		}
		logger.Info("Sorted file", "path", path)
		if useCache {
			r.markSorted(ctx, logger, key, storage.Digest([]byte(sorted)))
		}

	case ModeStdout:
		res.Status = StatusSorted
	}
	return res
}

func (r *Runner) read(path string) ([]byte, error) {
	if path == StdinPath {
		return io.ReadAll(r.opts.Stdin)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return os.ReadFile(path)
}

func (r *Runner) markSorted(ctx context.Context, logger *slog.Logger, key, digest string) {
	if err := r.opts.Cache.MarkSorted(ctx, key, digest, r.opts.Fingerprint); err != nil {
		logger.Warn("Cache update failed", "path", key, "error", err.Error())
	}
}

// CacheKey is the cache entry name for a file: the path relative to Root
// when it lies inside, else absolute.
func (r *Runner) CacheKey(path string) string {
	if paths.IsWithin(path, r.opts.Root) {
		if rel, err := paths.CanonicalizePath(path, r.opts.Root); err == nil {
			return rel
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return paths.NormalizePath(abs)
	}
	return paths.NormalizePath(path)
}
