package report

import "strings"

// DefaultPathspec covers the whole depot.
const DefaultPathspec = "//..."

// NormalizePathspec makes sure the pathspec ends with the "..." wildcard,
// e.g. "//depot/main/" becomes "//depot/main/...".
func NormalizePathspec(pathspec string) string {
	pathspec = strings.TrimSpace(pathspec)
	if pathspec == "" {
		return DefaultPathspec
	}
	if strings.HasSuffix(pathspec, "...") {
		return pathspec
	}
	return strings.TrimRight(pathspec, "/") + "/..."
}
