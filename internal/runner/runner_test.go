package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing"

	"tomlsort/internal/document"
	"tomlsort/internal/errors"
	"tomlsort/internal/slogutil"
)

const (
	unsortedDoc = "[package]\nname = \"demo\"\nedition = \"2021\"\n"
	sortedDoc   = "[package]\nedition = \"2021\"\nname = \"demo\"\n"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (c *memCache) IsSorted(_ context.Context, path, digest, fingerprint string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[path] == digest+"/"+fingerprint, nil
}

func (c *memCache) MarkSorted(_ context.Context, path, digest, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = digest + "/" + fingerprint
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newTestRunner(opts Options) *Runner {
	if opts.Locator == nil {
		opts.Locator = document.LexicalLocator{}
	}
	opts.Jobs = 2
	return New(opts, slogutil.NewDiscardLogger())
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeWrite, "write"},
		{ModeCheck, "check"},
		{ModeStdout, "stdout"},
		{Mode(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	r := New(Options{}, nil)
	if r.opts.Jobs != runtime.NumCPU() {
		t.Errorf("Jobs = %d, want %d", r.opts.Jobs, runtime.NumCPU())
	}
	if !slices.Equal(r.opts.Include, DefaultInclude) {
		t.Errorf("Include = %v, want %v", r.opts.Include, DefaultInclude)
	}
	if r.opts.Locator == nil || r.opts.Stdin == nil || r.opts.Stdout == nil {
		t.Error("defaults should be filled in")
	}
}

func TestExpand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "")
	writeFile(t, filepath.Join(root, "crates", "a", "Cargo.toml"), "")
	writeFile(t, filepath.Join(root, "target", "debug", "x.toml"), "")
	writeFile(t, filepath.Join(root, ".git", "config.toml"), "")
	writeFile(t, filepath.Join(root, "README.md"), "")
	writeFile(t, filepath.Join(root, "notes.txt"), "")

	r := newTestRunner(Options{
		Include: []string{"**/*.toml"},
		Exclude: []string{"**/.git/**", "**/target/**"},
	})

	files, missing := r.Expand([]string{
		root,
		filepath.Join(root, "notes.txt"),  // explicit files skip the globs
		filepath.Join(root, "Cargo.toml"), // duplicate
		filepath.Join(root, "nope.toml"),
		StdinPath,
	})

	want := []string{
		filepath.Join(root, "Cargo.toml"),
		filepath.Join(root, "crates", "a", "Cargo.toml"),
		filepath.Join(root, "notes.txt"),
		StdinPath,
	}
	if !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
	if !slices.Equal(missing, []string{filepath.Join(root, "nope.toml")}) {
		t.Errorf("missing = %v", missing)
	}
}

func TestIncluded(t *testing.T) {
	r := newTestRunner(Options{
		Include: []string{"**/*.toml"},
		Exclude: []string{"**/vendor/**"},
	})

	tests := []struct {
		rel  string
		want bool
	}{
		{"Cargo.toml", true},
		{"a/b/pyproject.toml", true},
		{"vendor/x/Cargo.toml", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		if got := r.Included(tt.rel); got != tt.want {
			t.Errorf("Included(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestRunWrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Cargo.toml")
	writeFile(t, path, unsortedDoc)
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(Options{Mode: ModeWrite, Verify: true, Root: root})
	report, err := r.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Files) != 1 || report.Files[0].Status != StatusSorted {
		t.Fatalf("Files = %+v, want one sorted file", report.Files)
	}
	if got := readFile(t, path); got != sortedDoc {
		t.Errorf("file content = %q, want %q", got, sortedDoc)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}
	if report.Err() != nil {
		t.Errorf("Err() = %v, want nil", report.Err())
	}
	if report.RunID == "" || report.Mode != "write" {
		t.Errorf("report header = %q %q", report.RunID, report.Mode)
	}

	// Second run leaves the file alone
	report, err = r.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Files[0].Status != StatusUnchanged {
		t.Errorf("second run status = %s, want unchanged", report.Files[0].Status)
	}
}

func TestRunCheck(t *testing.T) {
	root := t.TempDir()
	unsorted := filepath.Join(root, "a.toml")
	sorted := filepath.Join(root, "b.toml")
	writeFile(t, unsorted, unsortedDoc)
	writeFile(t, sorted, sortedDoc)

	r := newTestRunner(Options{Mode: ModeCheck, Diff: true, Verify: true, Root: root})
	report, err := r.Run(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := readFile(t, unsorted); got != unsortedDoc {
		t.Error("check mode must not write")
	}
	if report.Summary.Unsorted != 1 || report.Summary.Unchanged != 1 {
		t.Errorf("Summary = %+v", report.Summary)
	}
	if !slices.Equal(report.Unsorted(), []string{unsorted}) {
		t.Errorf("Unsorted() = %v", report.Unsorted())
	}

	res := report.Files[0]
	if res.Stats == nil || res.Stats.Added != 1 || res.Stats.Removed != 1 {
		t.Errorf("Stats = %+v, want 1 added 1 removed", res.Stats)
	}
	for _, want := range []string{"--- a/", "+++ b/", "@@ "} {
		if !strings.Contains(res.Diff, want) {
			t.Errorf("Diff = %q, want it to contain %q", res.Diff, want)
		}
	}

	err = report.Err()
	if errors.CodeOf(err) != errors.CheckFailed {
		t.Fatalf("Err() = %v, want CHECK_FAILED", err)
	}
	if errors.ExitCode(err) != errors.ExitCheckFailed {
		t.Errorf("ExitCode = %d, want %d", errors.ExitCode(err), errors.ExitCheckFailed)
	}
	if !strings.Contains(err.Error(), "1 file is not sorted") {
		t.Errorf("Err() = %q", err.Error())
	}
}

func TestRunStdout(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.toml")
	b := filepath.Join(root, "b.toml")
	writeFile(t, a, "y = 1\nx = 2\n")
	writeFile(t, b, "d = 1\nc = 2\n")

	var out bytes.Buffer
	r := newTestRunner(Options{Mode: ModeStdout, Stdout: &out})
	report, err := r.Run(context.Background(), []string{b, a})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if want := "c = 2\nd = 1\nx = 2\ny = 1\n"; out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
	if readFile(t, a) != "y = 1\nx = 2\n" {
		t.Error("stdout mode must not write")
	}
	if report.Summary.Sorted != 2 {
		t.Errorf("Summary = %+v", report.Summary)
	}
}

func TestRunStdin(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(Options{
		Mode:   ModeWrite,
		Stdin:  strings.NewReader("b = 1\na = 2\n"),
		Stdout: &out,
	})

	report, err := r.Run(context.Background(), []string{StdinPath})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.String() != "a = 2\nb = 1\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if report.Files[0].Path != StdinPath || report.Files[0].Status != StatusSorted {
		t.Errorf("result = %+v", report.Files[0])
	}
}

func TestRunMissing(t *testing.T) {
	r := newTestRunner(Options{Mode: ModeCheck})

	report, err := r.Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.toml")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Summary.Errors != 1 {
		t.Fatalf("Summary = %+v", report.Summary)
	}
	if code := errors.ExitCode(report.Err()); code != errors.ExitReadFailed {
		t.Errorf("ExitCode = %d, want %d", code, errors.ExitReadFailed)
	}
}

func TestRunCache(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "pyproject.toml")
	writeFile(t, path, unsortedDoc)

	cache := newMemCache()
	opts := Options{Mode: ModeWrite, Root: root, Cache: cache, Fingerprint: "f1"}

	report, err := newTestRunner(opts).Run(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if report.Files[0].Status != StatusSorted {
		t.Fatalf("first run status = %s", report.Files[0].Status)
	}
	if _, ok := cache.entries["pyproject.toml"]; !ok {
		t.Fatalf("cache keys = %v, want root-relative path", cache.entries)
	}

	report, err = newTestRunner(opts).Run(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if report.Files[0].Status != StatusCached {
		t.Errorf("second run status = %s, want cached", report.Files[0].Status)
	}

	// Other engine options invalidate the entry
	opts.Fingerprint = "f2"
	report, err = newTestRunner(opts).Run(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if report.Files[0].Status != StatusUnchanged {
		t.Errorf("new fingerprint status = %s, want unchanged", report.Files[0].Status)
	}
}

func TestRunCancelled(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.toml")
	writeFile(t, path, unsortedDoc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestRunner(Options{}).Run(ctx, []string{path}); err == nil {
		t.Error("Run() with cancelled context should fail")
	}
	if readFile(t, path) != unsortedDoc {
		t.Error("cancelled run must not write")
	}
}

func TestReportErr(t *testing.T) {
	verify := errors.New(errors.VerifyFailed, "changed", nil)
	read := errors.New(errors.ReadFailed, "cannot read", nil)

	tests := []struct {
		name  string
		files []FileResult
		want  errors.ErrorCode
	}{
		{"clean", []FileResult{{Status: StatusUnchanged}}, ""},
		{"unsorted", []FileResult{{Status: StatusUnsorted}}, errors.CheckFailed},
		{"error beats unsorted", []FileResult{{Status: StatusUnsorted}, {Status: StatusError, Error: verify}}, errors.VerifyFailed},
		{"read beats others", []FileResult{{Status: StatusError, Error: verify}, {Status: StatusError, Error: read}}, errors.ReadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newReport("id", ModeCheck, tt.files, 0).Err()
			if tt.want == "" {
				if err != nil {
					t.Errorf("Err() = %v, want nil", err)
				}
				return
			}
			if errors.CodeOf(err) != tt.want {
				t.Errorf("Err() code = %v, want %v", errors.CodeOf(err), tt.want)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name        string
		before      string
		after       string
		wantSkipped bool
		wantErr     bool
	}{
		{"reordered", "b = 1\na = 2\n", "a = 2\nb = 1\n", false, false},
		{"tables", "[t]\nb = [1, 2]\na = {x = 1}\n", "[t]\na = {x = 1}\nb = [1, 2]\n", false, false},
		{"invalid input", "a = \n", "a = \n", true, false},
		{"value changed", "a = 1\n", "a = 2\n", false, true},
		{"output broken", "a = 1\n", "a = \n", false, true},
		{"crlf reordered", "b = 1\r\na = 2", "a = 2\r\nb = 1", false, false},
		{"bare carriage return", "b = 1\r\na = 2", "a = 2\nb = 1\r", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skipped, err := Verify(tt.before, tt.after)
			if skipped != tt.wantSkipped {
				t.Errorf("skipped = %v, want %v", skipped, tt.wantSkipped)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunWriteCRLF(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Cargo.toml")
	writeFile(t, path, "[package]\r\nname = \"demo\"\r\nedition = \"2021\"")

	report, err := newTestRunner(Options{Mode: ModeWrite, Verify: true, Root: root}).Run(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res := report.Files[0]; res.Status != StatusSorted {
		t.Fatalf("status = %s, error = %v", res.Status, res.Error)
	}
	if got, want := readFile(t, path), "[package]\r\nedition = \"2021\"\r\nname = \"demo\""; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.toml")
	writeFile(t, path, "old")
	if err := os.Chmod(path, 0o640); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(path, []byte("new")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if got := readFile(t, path); got != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("perm = %v, want 0640", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestCacheKey(t *testing.T) {
	root := t.TempDir()
	r := newTestRunner(Options{Root: root})

	if got := r.CacheKey(filepath.Join(root, "crates", "a", "Cargo.toml")); got != "crates/a/Cargo.toml" {
		t.Errorf("CacheKey(inside) = %q", got)
	}
	// Deleted files map to the same key they had while present
	if got := r.CacheKey(filepath.Join(root, "gone.toml")); got != "gone.toml" {
		t.Errorf("CacheKey(missing) = %q", got)
	}
	outside := filepath.Join(filepath.Dir(root), "other.toml")
	if got := r.CacheKey(outside); !filepath.IsAbs(filepath.FromSlash(got)) {
		t.Errorf("CacheKey(outside) = %q, want absolute", got)
	}
}
