package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeDirName is the per-project directory holding config.yaml and, by
// convention, logs/.
const HomeDirName = ".pdfops"

// HomeEnv overrides the home directory location.
const HomeEnv = "PDFOPS_HOME"

// GetHome returns the pdfops home directory
// Priority order:
//  1. PDFOPS_HOME environment variable (if set)
//  2. .pdfops in the nearest ancestor of dir that already has one
//  3. .pdfops in dir itself (fallback, not created)
func GetHome(dir string) (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}

	if found, ok := findHome(abs); ok {
		return found, nil
	}
	return filepath.Join(abs, HomeDirName), nil
}

// findHome walks up from start looking for an existing .pdfops directory.
func findHome(start string) (string, bool) {
	current := start
	for {
		candidate := filepath.Join(current, HomeDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// DefaultLogDir returns <home>/logs.
func DefaultLogDir(dir string) (string, error) {
	home, err := GetHome(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "logs"), nil
}
