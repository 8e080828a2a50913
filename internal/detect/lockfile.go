package detect

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/lockfile"
	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

// LockfileIntegrity implements the lockfile-integrity detector (spec §4.6):
// walks package-lock.json, yarn.lock, and pnpm-lock.yaml, flags each
// compromised (name, version) pair found at most once per lockfile, and
// separately flags any lockfile whose raw text contains the literal @ctrl.
func LockfileIntegrity(root string, compromised map[types.CompromisedPackage]bool) []types.Finding {
	var out []types.Finding

	names := map[string]bool{"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true}
	var files []string
	for name := range names {
		files = append(files, walk.FilesNamed(root, name)...)
	}
	sort.Strings(files)

	for _, path := range files {
		lf, err := lockfile.DetectAndParse(path)
		if err != nil {
			continue // unreadable/unparseable lockfile: skipped (spec §7)
		}

		seen := make(map[string]bool)
		for _, dep := range lf.Dependencies() {
			if !compromised[types.CompromisedPackage{Name: dep.Name, Version: dep.Version}] {
				continue
			}
			key := dep.Name + "@" + dep.Version
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, types.NewFinding(pathnorm.Normalize(path),
				fmt.Sprintf("Compromised package in lockfile: %s@%s", dep.Name, dep.Version),
				types.Medium, "integrity"))
		}

		if raw, err := os.ReadFile(path); err == nil && strings.Contains(string(raw), "@ctrl") {
			out = append(out, types.NewFinding(pathnorm.Normalize(path),
				"Recently modified lockfile contains @ctrl packages (potential worm activity)",
				types.Medium, "integrity"))
		}
	}

	return out
}
