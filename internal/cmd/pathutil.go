package cmd

import (
	"os"
	"path/filepath"
	"strings"
)

// sanitizePath cleans a path typed or pasted by a user: surrounding
// whitespace and matching quotes are removed, a leading ~ is expanded to the
// home directory and shell-escaped spaces ("\ ") are unescaped.
func sanitizePath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 2 {
		first, last := p[0], p[len(p)-1]
		if (first == '"' || first == '\'') && first == last {
			p = p[1 : len(p)-1]
		}
	}
	p = strings.ReplaceAll(p, `\ `, " ")

	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
