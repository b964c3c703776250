// Package fileutil finds the PDF files a merge consumes.
//
// A scan walks a directory tree with an explicit stack of pending entries
// instead of recursion, so deep trees cannot exhaust the goroutine stack and
// cancellation can be checked between any two entries.
//
// # Admission
//
// A regular file is admitted when all of the following hold:
//   - its extension is ".pdf" in any letter case
//   - Include is empty, or its slash-separated relative path matches an
//     Include glob
//   - it matches no Exclude glob (exclude wins over include)
//   - its absolute path is not listed in ExcludePaths
//
// Globs use doublestar syntax, so "**" crosses directory boundaries. A glob
// without a slash is additionally matched against the file's base name.
// Malformed globs fail with ErrInvalidGlob before the file system is touched.
//
// # Depth
//
// The root is depth 0 and a file's depth is the number of components in its
// relative path. MaxDepth 0 means unlimited; MaxDepth 1 lists only the root.
//
// # Ordering
//
// Entries always come out in ascending byte order of their relative path.
// Each directory listing is sorted with files keyed by name and directories
// keyed by name + "/", which makes the depth-first order globally sorted
// without buffering the whole result.
//
// # Modes
//
//	result, err := fileutil.ScanDirectory(dir, fileutil.FilterConfig{MaxDepth: 2})
//
//	summary, err := fileutil.Walk(ctx, dir, cfg, func(e fileutil.ScanEntry) error {
//	    fmt.Println(e.RelPath)
//	    return nil
//	})
//
//	for ev := range fileutil.Stream(ctx, dir, cfg) {
//	    ...
//	}
//
// Unreadable subdirectories and entries become warnings and the scan
// continues. Only a missing or unreadable root is fatal.
package fileutil
