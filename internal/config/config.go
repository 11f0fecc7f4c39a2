package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"golang.org/x/crypto/blake2b"

	"tomlsort/internal/paths"
	"tomlsort/internal/tablesort"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = "toml-sort.toml"

// EnvPrefix prefixes environment overrides, e.g. TOMLSORT_IGNORE_CASE.
const EnvPrefix = "TOMLSORT"

// Config represents the complete tomlsort configuration
type Config struct {
	// Keys are sorted first, in list order. Other keys follow.
	Keys          []string `toml:"keys" mapstructure:"keys"`
	CommentMarker string   `toml:"comment_marker" mapstructure:"comment_marker"`
	IgnoreCase    bool     `toml:"ignore_case" mapstructure:"ignore_case"`

	Include []string `toml:"include" mapstructure:"include"`
	Exclude []string `toml:"exclude" mapstructure:"exclude"`

	Verify bool `toml:"verify" mapstructure:"verify"`
	Jobs   int  `toml:"jobs" mapstructure:"jobs"`
	Cache  bool `toml:"cache" mapstructure:"cache"`

	Logging LoggingConfig `toml:"logging" mapstructure:"logging"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-" mapstructure:"-"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `toml:"format" mapstructure:"format"`
	Level  string `toml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Keys:          []string{},
		CommentMarker: tablesort.DefaultCommentMarker,
		IgnoreCase:    false,
		Include:       []string{"**/*.toml"},
		Exclude: []string{
			"**/.git/**",
			"**/target/**",
			"**/node_modules/**",
			"**/vendor/**",
		},
		Verify: true,
		Jobs:   0,
		Cache:  false,
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("keys", d.Keys)
	v.SetDefault("comment_marker", d.CommentMarker)
	v.SetDefault("ignore_case", d.IgnoreCase)
	v.SetDefault("include", d.Include)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("verify", d.Verify)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("cache", d.Cache)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// LoadConfig loads configuration. An explicit path must exist; otherwise
// toml-sort.toml is searched from workDir upwards and defaults are used
// when there is none. TOMLSORT_* environment variables override both.
func LoadConfig(explicit string, workDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := explicit
	if path == "" {
		found, err := paths.FindUp(workDir, FileName)
		if err != nil {
			return nil, err
		}
		path = found
	} else if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Path = path

	return &cfg, nil
}

// Root is the directory holding the configuration file, or workDir when
// defaults are in use.
func (c *Config) Root(workDir string) string {
	if c.Path == "" {
		return workDir
	}
	return filepath.Dir(c.Path)
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Save writes the configuration to dir/toml-sort.toml
func (c *Config) Save(dir string) (string, error) {
	configPath := filepath.Join(dir, FileName)

	data, err := c.Marshal()
	if err != nil {
		return "", err
	}

	return configPath, os.WriteFile(configPath, data, 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CommentMarker) == "" {
		return &ConfigError{Field: "comment_marker", Message: "must not be empty"}
	}
	if c.Jobs < 0 {
		return &ConfigError{Field: "jobs", Message: "must not be negative"}
	}
	for _, p := range c.Include {
		if !paths.ValidGlob(p) {
			return &ConfigError{Field: "include", Message: fmt.Sprintf("malformed glob %q", p)}
		}
	}
	for _, p := range c.Exclude {
		if !paths.ValidGlob(p) {
			return &ConfigError{Field: "exclude", Message: fmt.Sprintf("malformed glob %q", p)}
		}
	}
	for _, k := range c.Keys {
		if _, rest, ok := tablesort.ParseKey(k); !ok || strings.TrimSpace(rest) != "" {
			return &ConfigError{Field: "keys", Message: fmt.Sprintf("invalid key %q", k)}
		}
	}
	if !slices.Contains([]string{"human", "json"}, c.Logging.Format) {
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Logging.Level)) {
		return &ConfigError{Field: "logging.level", Message: "must be debug, info, warn or error"}
	}
	return nil
}

// Workers resolves Jobs, where zero means one worker per CPU.
func (c *Config) Workers() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.NumCPU()
}

// EngineOptions builds the sort options described by the configuration.
func (c *Config) EngineOptions() tablesort.Options {
	fallback := tablesort.Lexical
	if c.IgnoreCase {
		fallback = tablesort.CaseInsensitive
	}

	compare := fallback
	if len(c.Keys) > 0 {
		compare = tablesort.Priority(c.Keys, fallback)
	}

	return tablesort.Options{
		CommentMarker: c.CommentMarker,
		Compare:       compare,
	}
}

// Fingerprint digests the fields that change sort output. Cached results
// are only valid for the fingerprint they were recorded under.
func (c *Config) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "marker=%q\n", c.CommentMarker)
	fmt.Fprintf(&b, "ignore_case=%t\n", c.IgnoreCase)
	for _, k := range c.Keys {
		fmt.Fprintf(&b, "key=%q\n", k)
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum[:8])
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
