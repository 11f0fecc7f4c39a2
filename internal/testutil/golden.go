package testutil

import (
	"flag"
	"os"
	"strings"
	"testing"

	"tomlsort/internal/diff"
)

var (
	// updateGolden controls whether golden files should be updated.
	// Use: go test ./... -run TestGolden -update
	updateGolden = flag.Bool("update", false, "update golden files")

	// goldenFixture filters which fixtures to test.
	// Use: go test ./... -run TestGolden -goldenFixture=cargo,pyproject
	goldenFixture = flag.String("goldenFixture", "", "filter fixtures (comma-separated)")
)

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// ShouldTestFixture returns true if the given fixture should be tested.
func ShouldTestFixture(name string) bool {
	if *goldenFixture == "" {
		return true
	}

	for _, f := range strings.Split(*goldenFixture, ",") {
		if strings.TrimSpace(f) == name {
			return true
		}
	}
	return false
}

// CompareGolden compares got against the golden file, failing with a diff on mismatch.
// Comparison is byte-exact: line endings and trailing newlines matter.
// If -update flag is set, updates the golden file instead of comparing.
func CompareGolden(t *testing.T, fixture *FixtureContext, name string, got string) {
	t.Helper()

	goldenPath := fixture.ExpectedPath(name)

	if *updateGolden {
		UpdateGolden(t, fixture, name, got)
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create:\n  go test ./... -run %s -update",
				goldenPath, got, t.Name())
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	if string(expected) != got {
		d := diff.Unified(goldenPath+" (expected)", goldenPath+" (got)", string(expected), got, diff.DefaultContext)
		t.Fatalf("Golden mismatch for %s:\n%s\n\nRun with -update to refresh:\n  go test ./... -run %s -update",
			name, d, t.Name())
	}
}

// UpdateGolden writes data to the golden file.
// Creates parent directories if they don't exist.
func UpdateGolden(t *testing.T, fixture *FixtureContext, name string, data string) {
	t.Helper()

	goldenPath := fixture.ExpectedPath(name)

	// Create parent directories
	if err := os.MkdirAll(fixture.ExpectedDir, 0o755); err != nil {
		t.Fatalf("Failed to create expected directory: %v", err)
	}

	if err := os.WriteFile(goldenPath, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write golden file: %v", err)
	}
}

// ForEachFixture runs a test function for each available fixture.
// Respects the -goldenFixture flag and -short flag.
func ForEachFixture(t *testing.T, fn func(t *testing.T, fixture *FixtureContext)) {
	t.Helper()

	names := AvailableFixtures(t)
	if len(names) == 0 {
		t.Skip("No fixtures available")
	}

	// In short mode, only test the first fixture
	if testing.Short() && len(names) > 1 {
		names = names[:1]
	}

	for _, name := range names {
		if !ShouldTestFixture(name) {
			continue
		}

		t.Run(name, func(t *testing.T) {
			fixture := LoadFixture(t, name)
			fn(t, fixture)
		})
	}
}
