package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file and before flags.
const (
	EnvLogLevel        = "PDFOPS_LOG_LEVEL"
	EnvLogDir          = "PDFOPS_LOG_DIR"
	EnvCollisionPolicy = "PDFOPS_COLLISION_POLICY"
	EnvMetricsFile     = "PDFOPS_METRICS_FILE"
	EnvMaxDepth        = "PDFOPS_SCAN_MAX_DEPTH"
	EnvFollowLinks     = "PDFOPS_SCAN_FOLLOW_LINKS"
)

// Load builds the effective configuration for a run started in dir:
// .env from dir (if present), then the config file, then PDFOPS_*
// variables. explicitPath, when set, must exist. Flags are merged by the
// caller with MergeWithFlags.
func Load(dir, explicitPath string) (*Config, error) {
	if err := LoadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	var (
		cfg *Config
		err error
	)
	if explicitPath != "" {
		cfg, err = LoadConfigStrict(explicitPath)
	} else {
		var home string
		home, err = GetHome(dir)
		if err == nil {
			cfg, err = LoadConfig(filepath.Join(home, "config.yaml"))
		}
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from PDFOPS_* environment variables. Empty
// variables are ignored.
func (c *Config) ApplyEnv() {
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.LogDir = getEnv(EnvLogDir, c.LogDir)
	c.CollisionPolicy = getEnv(EnvCollisionPolicy, c.CollisionPolicy)
	c.MetricsFile = getEnv(EnvMetricsFile, c.MetricsFile)
	c.Scan.MaxDepth = parseInt(os.Getenv(EnvMaxDepth), c.Scan.MaxDepth)
	if v := os.Getenv(EnvFollowLinks); v != "" {
		c.Scan.FollowLinks = parseBool(v)
	}
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
