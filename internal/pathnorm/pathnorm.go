// Package pathnorm provides the uniform path representation and
// filetype-filter predicates shared by the file enumerator and every
// detector.
package pathnorm

import "strings"

// Normalize converts path to the scanner's canonical representation:
// backslashes become forward slashes and a leading Windows UNC prefix
// (\\?\) is stripped. It does not lowercase — report output must stay
// human-readable, and normalize(normalize(p)) == normalize(p) must hold,
// which case-folding would not threaten but would needlessly mangle paths
// that differ only by case on case-sensitive filesystems.
func Normalize(path string) string {
	path = strings.TrimPrefix(path, `\\?\`)
	return strings.ReplaceAll(path, `\`, "/")
}

// HasExt reports whether the normalized path ends in one of the given
// extensions (each without a leading dot, e.g. "js", "ts", "json").
func HasExt(path string, exts ...string) bool {
	p := Normalize(path)
	for _, ext := range exts {
		if strings.HasSuffix(p, "."+ext) {
			return true
		}
	}
	return false
}

// IsExactName reports whether the path's final segment equals name exactly.
func IsExactName(path, name string) bool {
	p := Normalize(path)
	if idx := strings.LastIndex(p, "/"); idx != -1 {
		p = p[idx+1:]
	}
	return p == name
}

// ContainsSegment reports whether any path segment equals name exactly.
func ContainsSegment(path, name string) bool {
	p := Normalize(path)
	for _, seg := range strings.Split(p, "/") {
		if seg == name {
			return true
		}
	}
	return false
}
