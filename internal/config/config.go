// Package config loads and validates the monthsort YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"monthsort/internal/audit"
	"monthsort/internal/dateparser"
	"monthsort/internal/monthfolder"
	"monthsort/internal/organizer"
	"monthsort/internal/scanner"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidYAML     ConfigErrorType = "INVALID_YAML"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidYAML:
		return fmt.Sprintf("invalid YAML in configuration file %s: %s", e.Path, e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func init() {
	// Report validation failures with the YAML key names users write.
	validation.ErrorTag = "yaml"
}

// DefaultFileName is looked up in the working directory when no --config is given.
const DefaultFileName = "monthsort.yaml"

// Config holds all settings for monthsort.
type Config struct {
	Base        string            `yaml:"base"`
	Sources     []string          `yaml:"sources"`
	Destination string            `yaml:"destination,omitempty"` // empty means Base
	Year        int               `yaml:"year"`                  // 0 means the current year
	Mode        string            `yaml:"mode"`
	ProbeLimit  int               `yaml:"probe_limit"`
	Patterns    PatternsConfig    `yaml:"patterns"`
	Scan        ScanConfig        `yaml:"scan"`
	Audit       audit.AuditConfig `yaml:"audit"`
	Watch       WatchConfig       `yaml:"watch"`
	Log         LogConfig         `yaml:"log"`
}

// PatternsConfig reorders the built-in date patterns.
type PatternsConfig struct {
	Order []string `yaml:"order,omitempty"`
}

// Validate checks every name against the built-in patterns.
func (c PatternsConfig) Validate() error {
	if len(c.Order) == 0 {
		return nil
	}
	_, err := dateparser.NewPatternSet(c.Order)
	return err
}

// ScanConfig controls the source walk.
type ScanConfig struct {
	Symlinks string `yaml:"symlinks"`
	MaxDepth int    `yaml:"max_depth"`
	Workers  int    `yaml:"workers"`
}

// Validate validates the scan configuration.
func (c ScanConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Symlinks, validation.Required,
			validation.In(scanner.SymlinkPolicySkip, scanner.SymlinkPolicyFollow, scanner.SymlinkPolicyError)),
		validation.Field(&c.MaxDepth, validation.Min(-1)),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// Options converts the section into scanner options.
func (c ScanConfig) Options() scanner.Options {
	return scanner.Options{MaxDepth: c.MaxDepth, SymlinkPolicy: c.Symlinks}
}

// WatchConfig controls watch mode timing and ignore globs.
type WatchConfig struct {
	DebounceMs int      `yaml:"debounce_ms"`
	StableMs   int      `yaml:"stable_ms"`
	Ignore     []string `yaml:"ignore"`
}

// Validate validates the watch configuration.
func (c WatchConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DebounceMs, validation.Min(0), validation.Max(600000)),
		validation.Field(&c.StableMs, validation.Min(0), validation.Max(600000)),
		validation.Field(&c.Ignore, validation.Each(validation.By(validGlob))),
	)
}

// Debounce returns DebounceMs as a duration.
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Stable returns StableMs as a duration.
func (c WatchConfig) Stable() time.Duration {
	return time.Duration(c.StableMs) * time.Millisecond
}

func validGlob(value interface{}) error {
	s, _ := value.(string)
	if _, err := filepath.Match(s, ""); err != nil {
		return fmt.Errorf("bad glob %q", s)
	}
	return nil
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Validate validates the log configuration.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

// Validate checks the configuration. Sources may be empty here; commands
// that need them check separately.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Base, validation.Required),
		validation.Field(&c.Sources, validation.Each(validation.Required)),
		validation.Field(&c.Year, validation.When(c.Year != 0,
			validation.Min(monthfolder.MinYear), validation.Max(monthfolder.MaxYear))),
		validation.Field(&c.Mode, validation.Required,
			validation.In(string(organizer.ModeMove), string(organizer.ModeCopy))),
		validation.Field(&c.ProbeLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.Patterns),
		validation.Field(&c.Scan),
		validation.Field(&c.Watch),
		validation.Field(&c.Log),
	)
	if err != nil {
		return &ConfigError{Type: ValidationError, Message: err.Error(), Err: err}
	}
	if c.Audit.Enabled && c.Audit.LogDirectory == "" {
		return &ConfigError{Type: ValidationError, Message: "audit: directory is required when audit is enabled"}
	}
	return nil
}

// NewDefaultConfig returns a Config with sensible default values.
func NewDefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Base:       filepath.Join(home, "Sorted"),
		Sources:    []string{},
		Mode:       string(organizer.ModeCopy),
		ProbeLimit: organizer.DefaultProbeLimit,
		Scan: ScanConfig{
			Symlinks: scanner.SymlinkPolicySkip,
			MaxDepth: -1,
			Workers:  4,
		},
		Audit: audit.DefaultAuditConfig(),
		Watch: WatchConfig{
			DebounceMs: 2000,
			StableMs:   1000,
			Ignore:     []string{"*.tmp", "*.part", "*.crdownload", "*.download", ".*"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// EffectiveYear returns Year, or the current year when Year is zero.
func (c *Config) EffectiveYear(now time.Time) int {
	if c.Year != 0 {
		return c.Year
	}
	return now.Year()
}

// DestinationRoot returns Destination, falling back to Base.
func (c *Config) DestinationRoot() string {
	if c.Destination != "" {
		return c.Destination
	}
	return c.Base
}

// ExpandPaths replaces a leading "~" in every path field with the home directory.
func (c *Config) ExpandPaths() {
	c.Base = ExpandHome(c.Base)
	c.Destination = ExpandHome(c.Destination)
	c.Audit.LogDirectory = ExpandHome(c.Audit.LogDirectory)
	for i, s := range c.Sources {
		c.Sources[i] = ExpandHome(s)
	}
}

// ExpandHome replaces a leading "~" in p with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Load reads filePath, expands ${VAR} references from the environment,
// layers the result over the defaults and validates it.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ConfigError{Type: FileNotFound, Path: filePath, Message: err.Error(), Err: err}
	}

	cfg := NewDefaultConfig()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, &ConfigError{Type: InvalidYAML, Path: filePath, Message: err.Error(), Err: err}
	}

	cfg.ExpandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads filePath if it exists and returns the defaults otherwise.
func LoadOrDefault(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		cfg := NewDefaultConfig()
		cfg.ExpandPaths()
		return cfg, nil
	}
	return Load(filePath)
}

// Save serializes and writes a configuration to the given path.
func Save(cfg *Config, filePath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return &ConfigError{Type: InvalidYAML, Path: filePath, Message: err.Error(), Err: err}
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
