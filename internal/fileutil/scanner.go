package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrRootNotFound is returned when the scan root does not exist.
	ErrRootNotFound = errors.New("scan root not found")
	// ErrRootUnreadable is returned when the scan root cannot be listed or
	// is not a directory.
	ErrRootUnreadable = errors.New("scan root unreadable")
	// ErrInvalidGlob is returned before any I/O when a filter glob is malformed.
	ErrInvalidGlob = errors.New("invalid glob")
)

const pdfExt = ".pdf"

// FilterConfig configures which files a scan admits.
type FilterConfig struct {
	// MaxDepth limits descent (0 = unlimited, 1 = root directory only)
	MaxDepth int
	// Include globs; when non-empty a file must match at least one
	Include []string
	// Exclude globs; a match always rejects the file
	Exclude []string
	// ExcludePaths are absolute file paths that are never admitted
	ExcludePaths []string
	// FollowLinks descends into symlinked directories and admits symlinked files
	FollowLinks bool
}

// ScanEntry is one admitted file.
type ScanEntry struct {
	Path    string // absolute path
	RelPath string // slash-separated path relative to the scan root
	Depth   int    // number of components in RelPath
}

// ScanResult contains the results of a synchronous scan
type ScanResult struct {
	// Entries are the admitted files in relative-path order
	Entries []ScanEntry
	// Warnings contains non-fatal errors encountered during scanning
	Warnings []error
}

// Paths returns the absolute paths of all entries.
func (r *ScanResult) Paths() []string {
	paths := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		paths[i] = e.Path
	}
	return paths
}

// WalkSummary describes a finished streaming walk.
type WalkSummary struct {
	Found     int
	Warnings  []error
	Cancelled bool
}

// ScanDirectory scans root and returns every admitted PDF in relative-path order.
func ScanDirectory(root string, cfg FilterConfig) (*ScanResult, error) {
	result := &ScanResult{
		Entries:  make([]ScanEntry, 0),
		Warnings: make([]error, 0),
	}

	summary, err := Walk(context.Background(), root, cfg, func(e ScanEntry) error {
		result.Entries = append(result.Entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, summary.Warnings...)

	// Sort entries for consistent output
	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].RelPath < result.Entries[j].RelPath
	})

	return result, nil
}

// Walk scans root and calls fn for each admitted file in relative-path order.
// Cancelling ctx stops the walk at the next entry and is not an error; the
// summary reports it. An error returned by fn stops the walk and is returned.
func Walk(ctx context.Context, root string, cfg FilterConfig, fn func(ScanEntry) error) (*WalkSummary, error) {
	summary := &WalkSummary{}
	counted := func(e ScanEntry) error {
		if err := fn(e); err != nil {
			return err
		}
		summary.Found++
		return nil
	}
	err := walk(ctx, root, cfg, counted, func(w error) {
		summary.Warnings = append(summary.Warnings, w)
	})
	if errors.Is(err, errCancelled) {
		summary.Cancelled = true
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

var errCancelled = errors.New("walk cancelled")

type itemKind int

const (
	kindFile itemKind = iota
	kindDir
)

// item is one pending stack element: a file to consider or a directory to list.
type item struct {
	kind  itemKind
	abs   string
	rel   string
	depth int
	key   string
}

func walk(ctx context.Context, root string, cfg FilterConfig, fn func(ScanEntry) error, warn func(error)) error {
	m, err := newMatcher(cfg)
	if err != nil {
		return err
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}
	info, err := os.Stat(rootAbs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootUnreadable, root)
	}

	// visited holds resolved directory paths so followed links cannot loop
	visited := make(map[string]bool)
	if real, err := filepath.EvalSymlinks(rootAbs); err == nil {
		visited[real] = true
	}

	rootItems, err := readDir(rootAbs, "", 0, cfg.FollowLinks, warn)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}

	stack := make([]item, 0, len(rootItems))
	stack = pushReversed(stack, rootItems)

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return errCancelled
		}

		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.kind == kindFile {
			if !m.admit(it.abs, it.rel) {
				continue
			}
			if err := fn(ScanEntry{Path: it.abs, RelPath: it.rel, Depth: it.depth}); err != nil {
				return err
			}
			continue
		}

		if cfg.MaxDepth > 0 && it.depth >= cfg.MaxDepth {
			continue
		}
		if cfg.FollowLinks {
			real, err := filepath.EvalSymlinks(it.abs)
			if err != nil {
				warn(fmt.Errorf("error resolving %s: %w", it.rel, err))
				continue
			}
			if visited[real] {
				continue
			}
			visited[real] = true
		}

		children, err := readDir(it.abs, it.rel, it.depth, cfg.FollowLinks, warn)
		if err != nil {
			warn(fmt.Errorf("error reading %s: %w", it.rel, err))
			continue
		}
		stack = pushReversed(stack, children)
	}

	return nil
}

// readDir lists dir and returns its files and subdirectories sorted so that
// depth-first traversal yields relative paths in byte order: files sort by
// name, directories by name + "/".
func readDir(dir, rel string, depth int, followLinks bool, warn func(error)) ([]item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	items := make([]item, 0, len(entries))
	for _, e := range entries {
		childAbs := filepath.Join(dir, e.Name())
		childRel := e.Name()
		if rel != "" {
			childRel = rel + "/" + e.Name()
		}

		kind, ok := classify(e, childAbs, followLinks, func(err error) {
			warn(fmt.Errorf("error accessing %s: %w", childRel, err))
		})
		if !ok {
			continue
		}

		key := e.Name()
		if kind == kindDir {
			key += "/"
		}
		items = append(items, item{
			kind:  kind,
			abs:   childAbs,
			rel:   childRel,
			depth: depth + 1,
			key:   key,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].key < items[j].key })
	return items, nil
}

func classify(e fs.DirEntry, abs string, followLinks bool, warn func(error)) (itemKind, bool) {
	mode := e.Type()
	if mode&fs.ModeSymlink != 0 {
		if !followLinks {
			return 0, false
		}
		info, err := os.Stat(abs)
		if err != nil {
			warn(err)
			return 0, false
		}
		mode = info.Mode().Type()
	}

	switch {
	case mode.IsDir():
		return kindDir, true
	case mode.IsRegular():
		return kindFile, true
	default:
		return 0, false
	}
}

func pushReversed(stack, items []item) []item {
	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, items[i])
	}
	return stack
}

// matcher applies the admission rules of a FilterConfig.
type matcher struct {
	include  []string
	exclude  []string
	excluded map[string]bool
}

func newMatcher(cfg FilterConfig) (*matcher, error) {
	for _, group := range [][]string{cfg.Include, cfg.Exclude} {
		for _, g := range group {
			if !doublestar.ValidatePattern(g) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidGlob, g)
			}
		}
	}

	m := &matcher{
		include:  cfg.Include,
		exclude:  cfg.Exclude,
		excluded: make(map[string]bool, len(cfg.ExcludePaths)),
	}
	for _, p := range cfg.ExcludePaths {
		if abs, err := filepath.Abs(p); err == nil {
			m.excluded[abs] = true
		}
	}
	return m, nil
}

func (m *matcher) admit(abs, rel string) bool {
	if !strings.EqualFold(filepath.Ext(rel), pdfExt) {
		return false
	}
	if len(m.include) > 0 && !matchAny(m.include, rel) {
		return false
	}
	if matchAny(m.exclude, rel) {
		return false
	}
	return !m.excluded[abs]
}

// matchAny matches rel against each glob. A glob without a slash is also
// tried against the base name, so "*draft*" applies at every depth.
func matchAny(globs []string, rel string) bool {
	base := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		base = rel[i+1:]
	}
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if !strings.Contains(g, "/") {
			if ok, _ := doublestar.Match(g, base); ok {
				return true
			}
		}
	}
	return false
}
