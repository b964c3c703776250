// Package output decides where a generated PDF is written: collision
// handling for existing files and expansion of split naming templates.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrAlreadyExists is returned under the Reject policy when the
	// candidate path is taken.
	ErrAlreadyExists = errors.New("output already exists")

	// ErrSuffixExhausted is returned when no free suffixed name was found.
	ErrSuffixExhausted = errors.New("no free suffixed output name")

	// ErrUnknownPolicy is returned by ParsePolicy.
	ErrUnknownPolicy = errors.New("unknown collision policy")
)

// maxSuffixProbes bounds the Suffix search.
const maxSuffixProbes = 10000

// Policy controls what happens when an output path already exists.
type Policy int

const (
	// Reject fails with ErrAlreadyExists. It is the zero value.
	Reject Policy = iota
	// Force overwrites the existing file.
	Force
	// Suffix picks <stem>_N.<ext> for the first free N.
	Suffix
)

// String returns the lowercase policy name used in config and flags.
func (p Policy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Force:
		return "force"
	case Suffix:
		return "suffix"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a config or flag value to a Policy. An empty string
// yields Reject.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return Reject, nil
	case "force", "overwrite":
		return Force, nil
	case "suffix":
		return Suffix, nil
	default:
		return Reject, fmt.Errorf("%w: %q (want reject, force or suffix)", ErrUnknownPolicy, s)
	}
}

// Plan is a requested output path plus the policy to apply at write time.
type Plan struct {
	Path   string
	Policy Policy
}

// Resolve applies the plan's policy to its path.
func (p Plan) Resolve() (string, error) {
	return Resolve(p.Path, p.Policy)
}

// Resolve returns the path an output should be written to. Nothing is
// reserved; a concurrent writer may still take the name before it is used.
func Resolve(candidate string, policy Policy) (string, error) {
	if candidate == "" {
		return "", errors.New("output path is empty")
	}

	switch policy {
	case Force:
		return candidate, nil

	case Suffix:
		if !exists(candidate) {
			return candidate, nil
		}
		dir := filepath.Dir(candidate)
		ext := filepath.Ext(candidate)
		stem := strings.TrimSuffix(filepath.Base(candidate), ext)
		for i := 1; i < maxSuffixProbes; i++ {
			probe := filepath.Join(dir, stem+"_"+strconv.Itoa(i)+ext)
			if !exists(probe) {
				return probe, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrSuffixExhausted, candidate)

	default:
		if exists(candidate) {
			return "", fmt.Errorf("%w: %s (use --force to overwrite or --suffix to rename)", ErrAlreadyExists, candidate)
		}
		return candidate, nil
	}
}

// ResolveUnder joins a relative path onto dir; absolute paths are returned
// cleaned and unchanged.
func ResolveUnder(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
