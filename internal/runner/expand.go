package runner

import (
	"io/fs"
	"os"
	"path/filepath"

	"tomlsort/internal/paths"
)

// Expand turns targets into the files to process, in target order. Files
// named explicitly are always taken; directories are walked and filtered
// with the include and exclude globs, relative to the directory. Targets
// that do not exist come back separately.
func (r *Runner) Expand(targets []string) (files []string, missing []string) {
	seen := make(map[string]bool)
	add := func(p string) {
		key := p
		if p != StdinPath {
			if abs, err := filepath.Abs(p); err == nil {
				key = abs
			}
		}
		if !seen[key] {
			seen[key] = true
			files = append(files, p)
		}
	}

	for _, target := range targets {
		if target == StdinPath {
			add(target)
			continue
		}

		info, err := os.Stat(target)
		if err != nil {
			missing = append(missing, target)
			continue
		}
		if !info.IsDir() {
			add(target)
			continue
		}

		for _, p := range r.walk(target) {
			add(p)
		}
	}
	return files, missing
}

// walk lists matching files under dir in lexical order.
func (r *Runner) walk(dir string) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped; explicit targets report errors.
			r.logger.Warn("Skipping unreadable path", "path", p, "error", err.Error())
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = paths.NormalizePath(rel)

		if d.IsDir() {
			if r.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && r.Included(rel) {
			out = append(out, p)
		}
		return nil
	})
	return out
}

// Included reports whether a slash-separated relative path passes the
// include and exclude globs.
func (r *Runner) Included(rel string) bool {
	return paths.MatchAny(r.opts.Include, rel) && !r.Excluded(rel)
}

// Excluded reports whether rel matches an exclude glob.
func (r *Runner) Excluded(rel string) bool {
	return paths.MatchAny(r.opts.Exclude, rel)
}
