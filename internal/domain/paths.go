package domain

import (
	"path"
	"strings"

	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// NormalizePath maps a filesystem or report path to the key shared by the
// scanner and the filter. Everything before the first marker is dropped; a
// path without the marker is reduced to its file name.
func NormalizePath(p string, marker string) m.Path {
	slashed := toSlash(p)

	if marker != "" {
		if idx := strings.Index(slashed, marker); idx >= 0 {
			return m.Path(slashed[idx:])
		}
	}

	return m.Path(path.Base(slashed))
}

// toSlash also rewrites backslashes so reports produced on Windows line up.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
