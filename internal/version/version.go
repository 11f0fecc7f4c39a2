// Package version provides centralized version information for tomlsort.
package version

import (
	"runtime"
	"strings"
)

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X tomlsort/internal/version.Version=1.0.0 -X tomlsort/internal/version.Commit=abc123"
var (
	// Version is the semantic version of tomlsort
	Version = "0.4.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info is the short form shown by --version: the version, plus the
// abbreviated commit when one was stamped in.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full is the report of `tomlsort version`. locator names the table
// locator compiled into this binary.
func Full(locator string) string {
	lines := []string{"tomlsort version " + Info()}
	if Commit != "unknown" {
		lines = append(lines, "Commit:  "+Commit)
	}
	if BuildDate != "unknown" {
		lines = append(lines, "Built:   "+BuildDate)
	}
	lines = append(lines,
		"Go:      "+runtime.Version(),
		"Tables:  "+locator,
	)
	return strings.Join(lines, "\n")
}
