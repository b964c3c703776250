package output

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultTemplate names split outputs after their source and page bounds.
const DefaultTemplate = "{base}-{start}-{end}.pdf"

// Fields are the values substituted into a naming template.
type Fields struct {
	Base  string // source file name without extension
	Start int    // first page, 1-based
	End   int    // last page, 1-based
	Index int    // 1-based position of the range in the split
	Width int    // zero-padding width for Start and End
}

// Expand substitutes {base}, {start}, {end} and {index}. Unknown tokens are
// left as written.
func Expand(template string, f Fields) string {
	r := strings.NewReplacer(
		"{base}", f.Base,
		"{start}", pad(f.Start, f.Width),
		"{end}", pad(f.End, f.Width),
		"{index}", strconv.Itoa(f.Index),
	)
	return r.Replace(template)
}

// PadWidth returns the number of decimal digits in total, at least 1.
func PadWidth(total int) int {
	if total < 1 {
		return 1
	}
	return len(strconv.Itoa(total))
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func pad(n, width int) string {
	if width < 1 {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%0*d", width, n)
}
