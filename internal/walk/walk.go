// Package walk provides the recursive directory enumerator shared by every
// detector. It does not skip hidden directories: detectors that look inside
// .git or .github/workflows depend on that.
package walk

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
)

// Files returns every regular file under root whose extension (without a
// leading dot) is in exts, sorted by path as returned (not normalized).
// Symlinks are not followed.
func Files(root string, exts ...string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if pathnorm.HasExt(path, exts...) {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}

// FilesNamed returns every regular file under root whose base name equals
// name exactly, sorted by path as returned (not normalized).
func FilesNamed(root, name string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if filepath.Base(path) == name {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}

// DirsNamed returns every directory under root whose base name equals name
// exactly, sorted by path as returned (not normalized). Used to find .git directories and
// runner-artifact directories (.dev-env, actions-runner, .runner, _work).
func DirsNamed(root, name string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == name {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}
