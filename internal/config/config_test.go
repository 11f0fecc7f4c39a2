package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"tomlsort/internal/tablesort"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CommentMarker != "#" {
		t.Errorf("CommentMarker = %q, want %q", cfg.CommentMarker, "#")
	}
	if !cfg.Verify {
		t.Error("Verify should be enabled by default")
	}
	if cfg.Cache {
		t.Error("Cache should be disabled by default")
	}
	if !slices.Equal(cfg.Include, []string{"**/*.toml"}) {
		t.Errorf("Include = %v", cfg.Include)
	}
	if !slices.Contains(cfg.Exclude, "**/.git/**") {
		t.Errorf("Exclude = %v, want .git excluded", cfg.Exclude)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "human" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"defaults", func(*Config) {}, "", false},
		{"custom marker", func(c *Config) { c.CommentMarker = "//" }, "", false},
		{"empty marker", func(c *Config) { c.CommentMarker = " " }, "comment_marker", true},
		{"negative jobs", func(c *Config) { c.Jobs = -1 }, "jobs", true},
		{"bad include", func(c *Config) { c.Include = []string{"[x"} }, "include", true},
		{"bad exclude", func(c *Config) { c.Exclude = []string{""} }, "exclude", true},
		{"dotted priority key", func(c *Config) { c.Keys = []string{"package.name", `"quoted"`} }, "", false},
		{"bad priority key", func(c *Config) { c.Keys = []string{"a b"} }, "keys", true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format", true},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level", true},
		{"level case", func(c *Config) { c.Logging.Level = "DEBUG" }, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error type = %T, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "jobs", Message: "must not be negative"}
	want := "config error in field 'jobs': must not be negative"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig("", dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Path != "" {
		// A toml-sort.toml above the temp dir would be picked up.
		t.Skipf("found config outside temp dir: %s", cfg.Path)
	}
	if cfg.CommentMarker != "#" || !cfg.Verify {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Root(dir) != dir {
		t.Errorf("Root = %q, want %q", cfg.Root(dir), dir)
	}
}

func TestLoadConfig_FindsParent(t *testing.T) {
	root := t.TempDir()
	content := `keys = ["name", "version"]
ignore_case = true
exclude = ["**/fixtures/**"]

[logging]
level = "debug"
`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "crates", "core")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("", sub)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !slices.Equal(cfg.Keys, []string{"name", "version"}) {
		t.Errorf("Keys = %v", cfg.Keys)
	}
	if !cfg.IgnoreCase {
		t.Error("IgnoreCase should be true")
	}
	if !slices.Equal(cfg.Exclude, []string{"**/fixtures/**"}) {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	// Unset keys keep their defaults
	if cfg.CommentMarker != "#" || !cfg.Verify || cfg.Logging.Format != "human" {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Root(sub) != root {
		t.Errorf("Root = %q, want %q", cfg.Root(sub), root)
	}
}

func TestLoadConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("comment_marker = \"//\"\njobs = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.CommentMarker != "//" || cfg.Jobs != 3 {
		t.Errorf("got %+v", cfg)
	}
	if cfg.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", cfg.Workers())
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml"), dir); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("keys = [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig("", dir); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestLoadConfig_Env(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("verify = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOMLSORT_VERIFY", "false")
	t.Setenv("TOMLSORT_LOGGING_FORMAT", "json")

	cfg, err := LoadConfig("", dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Verify {
		t.Error("TOMLSORT_VERIFY should override the file")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Keys = []string{"name"}

	path, err := cfg.Save(dir)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != FileName {
		t.Errorf("Save path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "comment_marker = '#'") && !strings.Contains(string(data), `comment_marker = "#"`) {
		t.Errorf("saved config missing comment_marker:\n%s", data)
	}

	loaded, err := LoadConfig(path, dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !slices.Equal(loaded.Keys, cfg.Keys) || !slices.Equal(loaded.Exclude, cfg.Exclude) {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestConfig_EngineOptions(t *testing.T) {
	a := tablesort.Key{Parts: []string{"Zeta"}}
	b := tablesort.Key{Parts: []string{"alpha"}}
	name := tablesort.Key{Parts: []string{"name"}}

	cfg := DefaultConfig()
	opts := cfg.EngineOptions()
	if opts.CommentMarker != "#" {
		t.Errorf("CommentMarker = %q", opts.CommentMarker)
	}
	if opts.Compare(a, b) >= 0 {
		t.Error("case-sensitive compare should put Zeta before alpha")
	}

	cfg.IgnoreCase = true
	if cfg.EngineOptions().Compare(a, b) <= 0 {
		t.Error("case-insensitive compare should put alpha before Zeta")
	}

	cfg.Keys = []string{"name"}
	if cfg.EngineOptions().Compare(name, b) >= 0 {
		t.Error("priority key should sort first")
	}
}

func TestConfig_Fingerprint(t *testing.T) {
	base := DefaultConfig().Fingerprint()

	if DefaultConfig().Fingerprint() != base {
		t.Error("fingerprint should be deterministic")
	}

	cfg := DefaultConfig()
	cfg.Jobs = 8
	cfg.Exclude = nil
	if cfg.Fingerprint() != base {
		t.Error("fields that don't change output should not change the fingerprint")
	}

	for _, mutate := range []func(*Config){
		func(c *Config) { c.IgnoreCase = true },
		func(c *Config) { c.CommentMarker = "//" },
		func(c *Config) { c.Keys = []string{"name"} },
	} {
		cfg := DefaultConfig()
		mutate(cfg)
		if cfg.Fingerprint() == base {
			t.Errorf("fingerprint unchanged for %+v", cfg)
		}
	}
}
