package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ProgressIndicator prints one line per file found during a streaming scan.
type ProgressIndicator struct {
	writer  io.Writer
	current int
	cyan    *color.Color
	green   *color.Color
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer) *ProgressIndicator {
	p := &ProgressIndicator{
		writer: w,
		cyan:   color.New(color.FgCyan),
		green:  color.New(color.FgGreen),
	}
	if !colorEnabled(w) {
		p.cyan.DisableColor()
		p.green.DisableColor()
	}
	return p
}

// Start displays the header message
func (p *ProgressIndicator) Start(root string) {
	fmt.Fprintf(p.writer, "Scanning %s:\n", root)
}

// Step displays progress for the current item: [N] relpath
func (p *ProgressIndicator) Step(relPath string) {
	p.current++
	fmt.Fprintln(p.writer, p.cyan.Sprintf("  [%d] %s", p.current, relPath))
}

// Count returns the number of steps shown so far.
func (p *ProgressIndicator) Count() int {
	return p.current
}

// Complete displays the final count. cancelled marks a scan stopped early.
func (p *ProgressIndicator) Complete(found int, cancelled bool) {
	if cancelled {
		fmt.Fprintf(p.writer, "Scan cancelled after %d PDF file(s)\n", found)
		return
	}
	fmt.Fprintf(p.writer, "%s Found %d PDF file(s)\n", p.green.Sprint("✓"), found)
}
