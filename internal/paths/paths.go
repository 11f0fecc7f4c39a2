package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// CanonicalizePath converts a path to a root-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to root
// - Converts backslashes to forward slashes
func CanonicalizePath(path string, root string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	// Resolve symlinks
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absPath
		} else {
			return "", err
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	rootResolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = absRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	// Convert to forward slashes (platform independent)
	return filepath.ToSlash(relativePath), nil
}

// IsWithin checks if a path is inside root
func IsWithin(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}

	// Path is outside root if it starts with ..
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// FindUp looks for name in dir and then in each parent directory. It
// returns the path of the first regular file found, or "" with no error
// when the file exists nowhere up to the filesystem root.
func FindUp(dir string, name string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(current, name)
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

// MatchGlob matches a slash-separated path against a pattern with **
// support. A ** segment matches zero or more path segments; any other
// segment follows filepath.Match.
func MatchGlob(pattern, path string) bool {
	if pattern == "**" {
		return true
	}
	return matchParts(splitPattern(pattern), splitPattern(NormalizePath(path)))
}

// ValidGlob reports whether every segment of pattern is a well-formed
// filepath.Match pattern.
func ValidGlob(pattern string) bool {
	if strings.TrimSpace(pattern) == "" {
		return false
	}
	for _, part := range splitPattern(pattern) {
		if part == "**" {
			continue
		}
		if _, err := filepath.Match(part, ""); err != nil {
			return false
		}
	}
	return true
}

// MatchAny reports whether path matches at least one of the patterns.
func MatchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if MatchGlob(p, path) {
			return true
		}
	}
	return false
}

func splitPattern(pattern string) []string {
	var parts []string
	for _, part := range strings.Split(pattern, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

func matchParts(pattern, path []string) bool {
	pi, pathi := 0, 0

	for pi < len(pattern) && pathi < len(path) {
		if pattern[pi] == "**" {
			// ** matches zero or more path segments
			if pi == len(pattern)-1 {
				return true
			}
			for i := pathi; i <= len(path); i++ {
				if matchParts(pattern[pi+1:], path[i:]) {
					return true
				}
			}
			return false
		}

		matched, _ := filepath.Match(pattern[pi], path[pathi])
		if !matched {
			return false
		}

		pi++
		pathi++
	}

	// Trailing ** may match nothing
	for pi < len(pattern) && pattern[pi] == "**" {
		pi++
	}
	return pi == len(pattern) && pathi == len(path)
}

// NormalizePath normalizes a path by converting backslashes to forward slashes
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}
