package display

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/pdfops/internal/models"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning, in yellow when out is a terminal.
func (w Warning) Display(out io.Writer) {
	fmt.Fprint(out, w.Render(colorEnabled(out)))
}

// Render formats the warning. With colored set the whole block is yellow.
func (w Warning) Render(colored bool) string {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}

		for i, file := range w.Files {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	yellow := color.New(color.FgYellow)
	if colored {
		yellow.EnableColor()
	} else {
		yellow.DisableColor()
	}
	return yellow.Sprint(b.String())
}

// colorEnabled reports whether out is a color-capable terminal.
func colorEnabled(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WarnNumberedFiles creates a warning for PDFs whose numeric prefixes will
// not merge in numeric order.
func WarnNumberedFiles(files []string) Warning {
	return Warning{
		Title:      "Unpadded numbered files",
		Message:    "Files are merged in name order, so 10-x.pdf comes before 2-x.pdf.",
		Files:      files,
		Suggestion: "Zero-pad the numbers (02-x.pdf) or use 'select' to reorder.",
	}
}

// WarnSkippedInputs describes merge inputs that were left out of the output.
// Each line names the file and the reason.
func WarnSkippedInputs(skipped []models.SkippedInput) Warning {
	files := make([]string, 0, len(skipped))
	for _, s := range skipped {
		files = append(files, fmt.Sprintf("%s: %v", filepath.Base(s.Path), s.Reason))
	}
	title := fmt.Sprintf("%d input(s) skipped", len(skipped))
	return Warning{Title: title, Files: files}
}

// WarnScanProblems describes directories or entries the scanner could not read.
func WarnScanProblems(warnings []error) Warning {
	files := make([]string, 0, len(warnings))
	for _, w := range warnings {
		files = append(files, w.Error())
	}
	return Warning{
		Title: "Some paths could not be scanned",
		Files: files,
	}
}
