// Package lockfile provides parsers for the lockfile formats named in spec
// §3 (npm v1/v2/v3 JSON, yarn classic text, pnpm YAML) plus the additional
// formats the teacher's SupportedLockfiles table already names (yarn berry,
// bun.lock, deno.lock), all surfaced through one Dependencies() view.
package lockfile

import (
	"errors"
	"path/filepath"

	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

// ErrUnknownFormat indicates an unrecognised lockfile format.
var ErrUnknownFormat = errors.New("lockfile: unknown format")

// Lockfile represents a parsed lockfile.
type Lockfile interface {
	Type() string
	Path() string
	Dependencies() []types.Dependency
}

// DetectAndParse detects the lockfile format from its filename and parses
// it.
func DetectAndParse(path string) (Lockfile, error) {
	switch filepath.Base(path) {
	case "package-lock.json", "npm-shrinkwrap.json":
		return parseNPM(path)
	case "yarn.lock":
		return parseYarn(path)
	case "pnpm-lock.yaml":
		return parsePNPM(path)
	case "bun.lock":
		return parseBun(path)
	case "deno.lock":
		return parseDeno(path)
	default:
		return nil, ErrUnknownFormat
	}
}

// IsLockfile reports whether filename is a recognised lockfile name.
func IsLockfile(filename string) bool {
	switch filename {
	case "package-lock.json", "npm-shrinkwrap.json", "yarn.lock",
		"pnpm-lock.yaml", "bun.lock", "deno.lock":
		return true
	default:
		return false
	}
}

// View builds the name -> installedVersion map described in spec §3
// (LockfileView) from a parsed Lockfile's dependency list. The first
// version encountered for a given name wins.
func View(lf Lockfile) map[string]string {
	view := make(map[string]string)
	for _, dep := range lf.Dependencies() {
		if _, ok := view[dep.Name]; !ok {
			view[dep.Name] = dep.Version
		}
	}
	return view
}
