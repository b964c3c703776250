package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// colorScheme defines consistent colors for summary metrics.
// Green: success counts
// Yellow: skipped/warning counts
// Cyan: labels
type colorScheme struct {
	enabled bool
	success *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme. When enabled is false
// every color renders plain text.
func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		enabled: enabled,
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
	if !enabled {
		for _, c := range []*color.Color{s.success, s.warn, s.label, s.value} {
			c.DisableColor()
		}
	}
	return s
}

// countColor returns warn for non-zero counts of bad things.
func (s *colorScheme) countColor(n int) *color.Color {
	if n > 0 {
		return s.warn
	}
	return s.value
}

// formatColorizedMetric formats "label: value" with the label in the label
// color and the value in valueColor.
func formatColorizedMetric(label string, value interface{}, valueColor *color.Color, scheme *colorScheme) string {
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), valueColor.Sprintf("%v", value))
}
