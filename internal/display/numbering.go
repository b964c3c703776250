package display

import (
	"path"
	"strings"
	"unicode"

	"github.com/harrison/pdfops/internal/fileutil"
)

// NumberPrefix returns the leading run of digits of a file name, and whether
// it is followed by a separator ("-", "_", " " or ".") and a .pdf extension.
// "3-intro.pdf" yields ("3", true); "intro.pdf" and "3.pdf" yield ("", false).
func NumberPrefix(filename string) (string, bool) {
	if !strings.EqualFold(path.Ext(filename), ".pdf") {
		return "", false
	}
	stem := filename[:len(filename)-len(".pdf")]

	end := 0
	for end < len(stem) && unicode.IsDigit(rune(stem[end])) {
		end++
	}
	if end == 0 || end == len(stem) {
		return "", false
	}
	switch stem[end] {
	case '-', '_', ' ', '.':
	default:
		return "", false
	}
	if end+1 == len(stem) {
		return "", false
	}
	return stem[:end], true
}

// IsNumberedFile reports whether filename looks like "<digits>-<name>.pdf".
func IsNumberedFile(filename string) bool {
	_, ok := NumberPrefix(filename)
	return ok
}

// FindUnpaddedNumbering returns the relative paths of numbered files in every
// directory whose numbered files use prefixes of different widths, which is
// where byte order and numeric order disagree. Entries keep scan order.
func FindUnpaddedNumbering(entries []fileutil.ScanEntry) []string {
	widths := make(map[string]map[int]bool)
	for _, e := range entries {
		prefix, ok := NumberPrefix(path.Base(e.RelPath))
		if !ok {
			continue
		}
		dir := path.Dir(e.RelPath)
		if widths[dir] == nil {
			widths[dir] = make(map[int]bool)
		}
		widths[dir][len(prefix)] = true
	}

	var out []string
	for _, e := range entries {
		if !IsNumberedFile(path.Base(e.RelPath)) {
			continue
		}
		if len(widths[path.Dir(e.RelPath)]) > 1 {
			out = append(out, e.RelPath)
		}
	}
	return out
}
