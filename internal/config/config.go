package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/pdfops/internal/output"
)

// MergeConfig holds defaults for the merge command.
type MergeConfig struct {
	// Output is the merged file name, resolved under the input directory when relative
	Output string `yaml:"output"`
}

// SplitConfig holds defaults for the split command.
type SplitConfig struct {
	// Pattern is the output naming template
	Pattern string `yaml:"pattern"`
}

// ScanConfig holds directory scan defaults.
type ScanConfig struct {
	// MaxDepth limits recursion (0 = unlimited)
	MaxDepth int `yaml:"max_depth"`

	// FollowLinks descends into symlinked directories
	FollowLinks bool `yaml:"follow_links"`
}

// InteractiveConfig holds defaults for the interactive shell.
type InteractiveConfig struct {
	// Depth is the initial scan depth (0 = unlimited)
	Depth int `yaml:"depth"`

	// ConfirmThreshold asks before a split producing more files than this (0 = never ask)
	ConfirmThreshold int `yaml:"confirm_threshold"`

	// SplitSuffix is the naming template used by interactive splits
	SplitSuffix string `yaml:"split_suffix"`
}

// Config represents pdfops configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables the JSON run log in this directory when non-empty
	LogDir string `yaml:"log_dir"`

	LogMaxSizeMB  int  `yaml:"log_max_size_mb"`
	LogMaxBackups int  `yaml:"log_max_backups"`
	LogCompress   bool `yaml:"log_compress"`

	// CollisionPolicy is reject, force or suffix
	CollisionPolicy string `yaml:"collision_policy"`

	// MetricsFile receives a Prometheus textfile export after each run
	MetricsFile string `yaml:"metrics_file"`

	Merge       MergeConfig       `yaml:"merge"`
	Split       SplitConfig       `yaml:"split"`
	Scan        ScanConfig        `yaml:"scan"`
	Interactive InteractiveConfig `yaml:"interactive"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		LogDir:          "",
		LogMaxSizeMB:    10,
		LogMaxBackups:   3,
		LogCompress:     false,
		CollisionPolicy: output.Reject.String(),
		Merge: MergeConfig{
			Output: "merged.pdf",
		},
		Split: SplitConfig{
			Pattern: output.DefaultTemplate,
		},
		Scan: ScanConfig{
			MaxDepth: 0, // Unlimited
		},
		Interactive: InteractiveConfig{
			Depth:            1,
			ConfirmThreshold: 20,
			SplitSuffix:      "{base}_{index}.pdf",
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.apply(data); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigStrict is LoadConfig for a path named explicitly by the user:
// a missing file is an error.
func LoadConfigStrict(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	return LoadConfig(path)
}

// LoadConfigFromDir loads configuration from .pdfops/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, HomeDirName, "config.yaml"))
}

// apply overlays the keys present in a YAML document onto c. Keys missing
// from the document keep their current values, so an explicit zero or false
// in the file is honored.
func (c *Config) apply(data []byte) error {
	type yamlMerge struct {
		Output *string `yaml:"output"`
	}
	type yamlSplit struct {
		Pattern *string `yaml:"pattern"`
	}
	type yamlScan struct {
		MaxDepth    *int  `yaml:"max_depth"`
		FollowLinks *bool `yaml:"follow_links"`
	}
	type yamlInteractive struct {
		Depth            *int    `yaml:"depth"`
		ConfirmThreshold *int    `yaml:"confirm_threshold"`
		SplitSuffix      *string `yaml:"split_suffix"`
	}
	type yamlConfig struct {
		LogLevel        *string          `yaml:"log_level"`
		LogDir          *string          `yaml:"log_dir"`
		LogMaxSizeMB    *int             `yaml:"log_max_size_mb"`
		LogMaxBackups   *int             `yaml:"log_max_backups"`
		LogCompress     *bool            `yaml:"log_compress"`
		CollisionPolicy *string          `yaml:"collision_policy"`
		MetricsFile     *string          `yaml:"metrics_file"`
		Merge           *yamlMerge       `yaml:"merge"`
		Split           *yamlSplit       `yaml:"split"`
		Scan            *yamlScan        `yaml:"scan"`
		Interactive     *yamlInteractive `yaml:"interactive"`
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return err
	}

	setString(&c.LogLevel, y.LogLevel)
	setString(&c.LogDir, y.LogDir)
	setInt(&c.LogMaxSizeMB, y.LogMaxSizeMB)
	setInt(&c.LogMaxBackups, y.LogMaxBackups)
	setBool(&c.LogCompress, y.LogCompress)
	setString(&c.CollisionPolicy, y.CollisionPolicy)
	setString(&c.MetricsFile, y.MetricsFile)

	if y.Merge != nil {
		setString(&c.Merge.Output, y.Merge.Output)
	}
	if y.Split != nil {
		setString(&c.Split.Pattern, y.Split.Pattern)
	}
	if y.Scan != nil {
		setInt(&c.Scan.MaxDepth, y.Scan.MaxDepth)
		setBool(&c.Scan.FollowLinks, y.Scan.FollowLinks)
	}
	if y.Interactive != nil {
		setInt(&c.Interactive.Depth, y.Interactive.Depth)
		setInt(&c.Interactive.ConfirmThreshold, y.Interactive.ConfirmThreshold)
		setString(&c.Interactive.SplitSuffix, y.Interactive.SplitSuffix)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, policy *string, metricsFile *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if policy != nil {
		c.CollisionPolicy = *policy
	}
	if metricsFile != nil {
		c.MetricsFile = *metricsFile
	}
}

// Policy returns the parsed collision policy.
func (c *Config) Policy() (output.Policy, error) {
	return output.ParsePolicy(c.CollisionPolicy)
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("invalid collision_policy: %w", err)
	}

	if c.LogMaxSizeMB < 0 {
		return fmt.Errorf("log_max_size_mb must be >= 0, got %d", c.LogMaxSizeMB)
	}
	if c.LogMaxBackups < 0 {
		return fmt.Errorf("log_max_backups must be >= 0, got %d", c.LogMaxBackups)
	}
	if c.Scan.MaxDepth < 0 {
		return fmt.Errorf("scan.max_depth must be >= 0, got %d", c.Scan.MaxDepth)
	}
	if c.Interactive.Depth < 0 {
		return fmt.Errorf("interactive.depth must be >= 0, got %d", c.Interactive.Depth)
	}
	if c.Interactive.ConfirmThreshold < 0 {
		return fmt.Errorf("interactive.confirm_threshold must be >= 0, got %d", c.Interactive.ConfirmThreshold)
	}
	if strings.TrimSpace(c.Merge.Output) == "" {
		return fmt.Errorf("merge.output cannot be empty")
	}
	if strings.TrimSpace(c.Split.Pattern) == "" {
		return fmt.Errorf("split.pattern cannot be empty")
	}
	if strings.TrimSpace(c.Interactive.SplitSuffix) == "" {
		return fmt.Errorf("interactive.split_suffix cannot be empty")
	}

	return nil
}
