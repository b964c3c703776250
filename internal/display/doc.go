// Package display provides terminal output helpers for warnings and scan
// progress.
//
// Warnings are rendered as an indented block:
//
//	display.WarnSkippedInputs(result.Skipped).Display(os.Stderr)
//
// Numbered inputs such as 1-intro.pdf and 10-appendix.pdf merge in byte
// order, not numeric order. FindUnpaddedNumbering finds them so callers can
// warn before merging:
//
//	if files := display.FindUnpaddedNumbering(scan.Entries); len(files) > 0 {
//	    display.WarnNumberedFiles(files).Display(os.Stderr)
//	}
//
// Colors come from fatih/color and are only emitted when the writer is a
// terminal.
package display
