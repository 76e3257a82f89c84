// Package config loads liteschema settings from defaults, a YAML file,
// LITESCHEMA_ environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/tordrt/liteschema/internal/errs"
)

const (
	EnvPrefix = "LITESCHEMA_"

	DefaultDriver      = "sqlite3"
	DefaultFormat      = "text"
	DefaultConcurrency = 1
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
)

var (
	Drivers    = []string{"sqlite3", "sqlite"}
	Formats    = []string{"text", "markdown", "yaml", "json"}
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"console", "json"}
)

// Config holds everything the CLI needs for one run
type Config struct {
	Database       string   `koanf:"database"`
	Driver         string   `koanf:"driver"`
	Schema         string   `koanf:"schema"`
	Tables         []string `koanf:"tables"`
	ExcludeTables  []string `koanf:"exclude_tables"`
	MigrationTable string   `koanf:"migration_table"`
	Format         string   `koanf:"format"`
	Output         string   `koanf:"output"`
	OutputDir      string   `koanf:"output_dir"`
	Concurrency    int      `koanf:"concurrency"`
	LogLevel       string   `koanf:"log_level"`
	LogFormat      string   `koanf:"log_format"`
	Watch          bool     `koanf:"watch"`

	// File is the config file that was loaded, if any
	File string `koanf:"-"`
}

// flagKeys maps flag names whose config key is not the snake_case form
var flagKeys = map[string]string{
	"exclude": "exclude_tables",
}

// findConfigFile picks the explicit path, else liteschema.yaml, else
// liteschema.yml in the working directory
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"liteschema.yaml", "liteschema.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds the configuration. Precedence (highest to lowest):
// explicitly set flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"driver":      DefaultDriver,
		"format":      DefaultFormat,
		"concurrency": DefaultConcurrency,
		"log_level":   DefaultLogLevel,
		"log_format":  DefaultLogFormat,
		"watch":       false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "error reading config file "+used, err)
		}
	}

	// 3. Environment: LITESCHEMA_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those set explicitly
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "unable to decode config", err)
	}
	cfg.File = used

	// Env vars arrive as one comma-separated string
	cfg.Tables = splitList(cfg.Tables)
	cfg.ExcludeTables = splitList(cfg.ExcludeTables)

	return &cfg, nil
}

// Validate checks the configuration for a run
func (c *Config) Validate() error {
	if c.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "database is required (use --database or "+EnvPrefix+"DATABASE)")
	}
	if !slices.Contains(Drivers, c.Driver) {
		return errs.Newf(errs.ErrKindInvalidInput, "unknown driver %q (available: %s)", c.Driver, strings.Join(Drivers, ", "))
	}
	if !slices.Contains(Formats, c.Format) {
		return errs.Newf(errs.ErrKindInvalidInput, "unknown format %q (available: %s)", c.Format, strings.Join(Formats, ", "))
	}
	if c.Output != "" && c.OutputDir != "" {
		return errs.New(errs.ErrKindInvalidInput, "output and output_dir cannot be used together")
	}
	if c.Concurrency < 1 {
		return errs.Newf(errs.ErrKindInvalidInput, "concurrency must be at least 1, got %d", c.Concurrency)
	}
	if !slices.Contains(LogLevels, c.LogLevel) {
		return errs.Newf(errs.ErrKindInvalidInput, "unknown log level %q", c.LogLevel)
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		return errs.Newf(errs.ErrKindInvalidInput, "unknown log format %q", c.LogFormat)
	}
	return nil
}

// splitList flattens comma-separated entries and drops blanks
func splitList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
