package common

import (
	"path"
	"strings"
)

// IsWorkspacePath reports whether p is an absolute workspace, repo, or volume path.
func IsWorkspacePath(p string) bool {
	return strings.HasPrefix(p, "/")
}

// HasVariableRef reports whether p contains a bundle interpolation like ${var.x}.
func HasVariableRef(p string) bool {
	return strings.Contains(p, "${")
}

// Stem returns the base name of a slash path without its extension.
// Returns empty string if p is empty.
func Stem(p string) string {
	if p == "" {
		return ""
	}

	base := path.Base(p)

	return strings.TrimSuffix(base, path.Ext(base))
}
