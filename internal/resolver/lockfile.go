// Package resolver answers "what version is actually installed" for a
// dependency, the question spec §3's LockfileView/RuntimeView exist to
// answer and §4.9 verification needs to classify a Finding as Verified or
// Compromised instead of merely Suspicious.
package resolver

import (
	"path/filepath"

	"github.com/seanhalberthal/shaihulud-scan/internal/lockfile"
)

// LockfileResolver reads the first lockfile it finds in a directory and
// exposes installed versions by package name.
type LockfileResolver struct {
	packages map[string]string
	format   string
}

// LoadLockfile tries package-lock.json, then pnpm-lock.yaml, then
// yarn.lock, then bun.lock, then deno.lock, in that order, mirroring the npm-first priority the rest of
// the scanner uses when multiple lockfiles coexist.
func LoadLockfile(dir string) *LockfileResolver {
	for _, name := range []string{"package-lock.json", "pnpm-lock.yaml", "yarn.lock", "bun.lock", "deno.lock"} {
		path := filepath.Join(dir, name)
		lf, err := lockfile.DetectAndParse(path)
		if err != nil {
			continue
		}
		return &LockfileResolver{packages: lockfile.View(lf), format: lf.Type()}
	}
	return &LockfileResolver{packages: map[string]string{}}
}

// Version returns the locked version for name, if any.
func (r *LockfileResolver) Version(name string) (string, bool) {
	v, ok := r.packages[name]
	return v, ok
}

// HasLockfile reports whether a lockfile was found.
func (r *LockfileResolver) HasLockfile() bool {
	return r.format != ""
}

// View returns the full name-to-installed-version map, for callers (such
// as the §4.5 semver-range pass) that need to resolve a range against
// whatever the lockfile actually pins rather than query one name at a time.
func (r *LockfileResolver) View() map[string]string {
	return r.packages
}
