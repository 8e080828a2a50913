package detect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/manifest"
	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/resolver"
	"github.com/seanhalberthal/shaihulud-scan/internal/semver"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/verify"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

// ManifestOptions configures the package-manifest detector (spec §4.5).
type ManifestOptions struct {
	// CompromisedPackages is the exact (name, version) set.
	CompromisedPackages map[types.CompromisedPackage]bool
	// Namespaces is the ordered list of compromised namespace prefixes
	// (e.g. "@ctrl").
	Namespaces []string
	// CheckSemverRanges enables the opt-in lockfile_safe_version pass.
	CheckSemverRanges bool
	// LockfileViewForDir returns the LockfileView for the directory
	// containing a manifest, or nil if no lockfile was found there.
	LockfileViewForDir func(dir string) map[string]string
	// Verify enables §4.9 lockfile/runtime verification annotation of
	// compromised_package findings.
	Verify bool
	// Resolvers supplies the lockfile/runtime views Verify consults.
	Resolvers resolver.Resolvers
}

// ManifestChecks implements the package-manifest detector (spec §4.5): the
// exact-match compromised-package check and the namespace-warning check,
// plus the opt-in semver-range pass.
func ManifestChecks(ctx context.Context, root string, opts ManifestOptions) []types.Finding {
	var out []types.Finding

	for _, path := range walk.Files(root, "json") {
		if baseName(path) != "package.json" {
			continue
		}
		m, err := manifest.Parse(path)
		if err != nil {
			continue // unreadable/unparseable manifest: skipped (spec §7)
		}

		out = append(out, compromisedExactMatches(ctx, path, m, opts)...)
		out = append(out, namespaceWarnings(path, m, opts.Namespaces)...)
		if opts.CheckSemverRanges {
			out = append(out, semverRangeWarnings(path, m, opts)...)
		}
	}

	return out
}

func compromisedExactMatches(ctx context.Context, path string, m *manifest.Manifest, opts ManifestOptions) []types.Finding {
	var out []types.Finding
	for _, section := range m.DependencySections() {
		names := make([]string, 0, len(section))
		for name := range section {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			version := section[name]
			if !opts.CompromisedPackages[types.CompromisedPackage{Name: name, Version: version}] {
				continue
			}
			finding := types.NewFinding(pathnorm.Normalize(path),
				fmt.Sprintf("%s@%s", name, version), types.High, "compromised_package")
			if opts.Verify {
				v := verify.Package(ctx, name,
					opts.Resolvers.Runtime, opts.Resolvers.Lockfile, opts.CompromisedPackages)
				finding.Verification = &v
			}
			out = append(out, finding)
		}
	}
	return out
}

func namespaceWarnings(path string, m *manifest.Manifest, namespaces []string) []types.Finding {
	var out []types.Finding
	raw := string(m.Raw)
	for _, ns := range namespaces {
		if strings.Contains(raw, `"`+ns+`/`) {
			out = append(out, types.NewFinding("Namespace warning",
				fmt.Sprintf("Contains packages from compromised namespace: %s (found in %s)", ns, baseName(path)),
				types.Low, "namespace_warning"))
		}
	}
	return out
}

func semverRangeWarnings(path string, m *manifest.Manifest, opts ManifestOptions) []types.Finding {
	var view map[string]string
	if opts.LockfileViewForDir != nil {
		view = opts.LockfileViewForDir(dirOf(path))
	}

	var out []types.Finding
	for _, section := range m.DependencySections() {
		names := make([]string, 0, len(section))
		for name := range section {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rng := section[name]
			if !strings.ContainsAny(rng, "^~") {
				continue
			}
			for cp := range opts.CompromisedPackages {
				if cp.Name != name {
					continue
				}
				if !semver.Match(cp.Version, rng) {
					continue
				}
				resolved := "no lockfile, could resolve to " + cp.Version
				if view != nil {
					if installed, ok := view[name]; ok {
						resolved = "lockfile resolves to " + installed
					}
				}
				out = append(out, types.NewFinding(pathnorm.Normalize(path),
					fmt.Sprintf("%s range %s matches compromised version %s (%s)", name, rng, cp.Version, resolved),
					types.Low, "lockfile_safe_version"))
			}
		}
	}
	return out
}

func dirOf(path string) string {
	p := pathnorm.Normalize(path)
	if idx := strings.LastIndex(p, "/"); idx != -1 {
		return p[:idx]
	}
	return "."
}
