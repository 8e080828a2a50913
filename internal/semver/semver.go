// Package semver implements the scanner's deliberately limited version
// matcher: exact, caret (^), tilde (~), wildcard (x/X/*), and disjunction
// (||) only. It does not implement full node-semver — no >=, <, comma
// ranges, or hyphen ranges — by design (see spec §9).
package semver

import (
	"regexp"
	"strconv"
	"strings"
)

var semverRe = regexp.MustCompile(`[^0-9]*([0-9]+)\.([0-9]+)\.([0-9]+)([0-9A-Za-z\-]*)`)

// Version is a parsed M.m.p[-special] version.
type Version struct {
	Major, Minor, Patch int
	Special             string
}

// Parse extracts the first M.m.p[-special] run found in version. A leading
// "v" or other non-digit prefix is tolerated.
func Parse(version string) (Version, bool) {
	version = strings.TrimSpace(version)
	m := semverRe.FindStringSubmatch(version)
	if m == nil {
		return Version{}, false
	}
	major, err1 := strconv.Atoi(m[1])
	minor, err2 := strconv.Atoi(m[2])
	patch, err3 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return Version{}, false
	}
	return Version{Major: major, Minor: minor, Patch: patch, Special: m[4]}, true
}

// Match reports whether subject satisfies pattern, where pattern may be a
// "||"-separated disjunction of exact/caret/tilde/wildcard sub-patterns.
func Match(subject, pattern string) bool {
	if pattern == "*" {
		return true
	}

	sv, ok := Parse(subject)
	if !ok {
		return false
	}

	for _, p := range strings.Split(pattern, "||") {
		p = strings.TrimSpace(p)
		if matchOne(sv, p) {
			return true
		}
	}
	return false
}

func matchOne(subject Version, pattern string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "^"):
		return matchCaret(subject, pattern[1:])
	case strings.HasPrefix(pattern, "~"):
		return matchTilde(subject, pattern[1:])
	case strings.ContainsAny(pattern, "xX"):
		return matchWildcard(subject, pattern)
	default:
		return matchExact(subject, pattern)
	}
}

func matchCaret(subject Version, rest string) bool {
	pv, ok := Parse(rest)
	if !ok {
		return false
	}
	if subject.Major != pv.Major {
		return false
	}
	switch {
	case subject.Minor > pv.Minor:
		return true
	case subject.Minor < pv.Minor:
		return false
	default:
		return subject.Patch >= pv.Patch
	}
}

func matchTilde(subject Version, rest string) bool {
	pv, ok := Parse(rest)
	if !ok {
		return false
	}
	return subject.Major == pv.Major && subject.Minor == pv.Minor && subject.Patch >= pv.Patch
}

func matchExact(subject Version, pattern string) bool {
	pv, ok := Parse(pattern)
	if !ok {
		return false
	}
	return subject.Major == pv.Major && subject.Minor == pv.Minor &&
		subject.Patch == pv.Patch && subject.Special == pv.Special
}

func matchWildcard(subject Version, pattern string) bool {
	patternParts := strings.Split(pattern, ".")
	subjectParts := []string{
		strconv.Itoa(subject.Major),
		strconv.Itoa(subject.Minor),
		strconv.Itoa(subject.Patch),
	}

	for i := 0; i < 3; i++ {
		if i >= len(patternParts) {
			continue
		}
		part := patternParts[i]
		if part == "x" || part == "X" {
			continue
		}
		if numericPrefix(part) != numericPrefix(subjectParts[i]) {
			return false
		}
	}
	return true
}

func numericPrefix(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
