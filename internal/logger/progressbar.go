package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar represents an ASCII progress bar with color support.
// It implements models.ProgressSink so engines can drive it directly.
// On a terminal the bar is redrawn in place; otherwise one line is
// written per step.
type ProgressBar struct {
	current     int
	total       int
	width       int
	enableColor bool
	prefix      string
	message     string
	out         io.Writer
	inPlace     bool
	finished    bool
	mu          sync.RWMutex
}

// NewProgressBar creates a new progress bar that only renders on demand.
func NewProgressBar(total, width int, enableColor bool) *ProgressBar {
	if width < 1 {
		width = 10
	}
	return &ProgressBar{
		total:       total,
		width:       width,
		enableColor: enableColor,
	}
}

// NewProgressWriter creates a progress bar that draws itself to out as it
// advances. Color and in-place redraws are enabled when out is a terminal.
func NewProgressWriter(out io.Writer, prefix string) *ProgressBar {
	tty := isTerminal(out)
	pb := NewProgressBar(0, 30, tty)
	pb.out = out
	pb.inPlace = tty
	pb.prefix = prefix
	return pb
}

// Update sets the current progress value
func (pb *ProgressBar) Update(current int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current = current
}

// Increment increments the current progress by 1
func (pb *ProgressBar) Increment() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current++
}

// Current returns the current progress value
func (pb *ProgressBar) Current() int {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.current
}

// Total returns the total progress value
func (pb *ProgressBar) Total() int {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.total
}

// Percentage returns the progress percentage (0-100)
func (pb *ProgressBar) Percentage() int {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.percentage()
}

func (pb *ProgressBar) percentage() int {
	if pb.total == 0 {
		return 0
	}
	perc := (pb.current * 100) / pb.total
	if perc > 100 {
		perc = 100
	}
	if perc < 0 {
		perc = 0
	}
	return perc
}

// SetPrefix sets a custom prefix for the progress bar
func (pb *ProgressBar) SetPrefix(prefix string) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.prefix = prefix
}

// Render generates the ASCII progress bar string
func (pb *ProgressBar) Render() string {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.render()
}

func (pb *ProgressBar) render() string {
	perc := pb.percentage()

	filled := (perc * pb.width) / 100
	if filled > pb.width {
		filled = pb.width
	}

	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", pb.width-filled) + "]"
	result := fmt.Sprintf("%s%s %d/%d (%d%%)", pb.prefix, bar, pb.current, pb.total, perc)
	if pb.message != "" {
		result += " " + pb.message
	}

	if pb.enableColor && perc < 100 {
		result = fmt.Sprintf("\033[36m%s\033[0m", result) // Cyan for in-progress
	} else if pb.enableColor && perc == 100 {
		result = fmt.Sprintf("\033[32m%s\033[0m", result) // Green for complete
	}

	return result
}

// SetLength sets the total number of steps.
func (pb *ProgressBar) SetLength(n int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.total = n
}

// Advance completes one step and records message as the current item.
func (pb *ProgressBar) Advance(message string) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current++
	pb.message = message
	pb.draw()
}

// SetMessage replaces the current item without advancing.
func (pb *ProgressBar) SetMessage(message string) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.message = message
	if pb.inPlace {
		pb.draw()
	}
}

// Finish terminates an in-place bar with a newline. It is safe to call
// more than once.
func (pb *ProgressBar) Finish() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.finished {
		return
	}
	pb.finished = true
	if pb.out != nil && pb.inPlace && pb.current > 0 {
		fmt.Fprintln(pb.out)
	}
}

// draw must be called with pb.mu held.
func (pb *ProgressBar) draw() {
	if pb.out == nil {
		return
	}
	if pb.inPlace {
		fmt.Fprintf(pb.out, "\r\033[K%s", pb.render())
		return
	}
	fmt.Fprintln(pb.out, pb.render())
}
