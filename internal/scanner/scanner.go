// Package scanner orchestrates the complete security scan: it runs every
// detector in internal/detect against a directory tree, optionally builds
// the §4.9 verification resolvers, and merges the results with
// internal/aggregate.
package scanner

import (
	"context"
	"fmt"
	"os"

	"github.com/seanhalberthal/shaihulud-scan/internal/aggregate"
	"github.com/seanhalberthal/shaihulud-scan/internal/detect"
	"github.com/seanhalberthal/shaihulud-scan/internal/hashutil"
	"github.com/seanhalberthal/shaihulud-scan/internal/ioc"
	"github.com/seanhalberthal/shaihulud-scan/internal/resolver"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

// defaultParallelism is the hash worker-pool size when Options.Parallelism
// is unset (spec §6).
const defaultParallelism = 4

// Scanner runs the detector suite. It holds no per-scan state beyond the
// resolved home directory, so one instance can serve concurrent Scan calls.
type Scanner struct {
	homeDir string
}

// New creates a Scanner, resolving the user home directory once for the
// github_runners detector's .dev-env check.
func New() *Scanner {
	home, _ := os.UserHomeDir()
	return &Scanner{homeDir: home}
}

// Options configures a Scan invocation (spec §6).
type Options struct {
	Paranoid          bool
	Verify            bool
	Parallelism       int
	CheckSemverRanges bool

	// CompromisedPackages overrides the embedded fallback IOC table
	// (spec §1's external loader is out of scope; this lets a caller
	// supply one parsed via ioc.ParseCompromisedPackages).
	CompromisedPackages map[types.CompromisedPackage]bool
}

// Scan runs every detector against dir and returns the merged, counted
// result. The only fatal error path is dir not existing or not being a
// directory (spec §7); every other failure is a per-file skip inside the
// relevant detector.
func (s *Scanner) Scan(ctx context.Context, dir string, opts Options) (aggregate.ScanResults, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return aggregate.ScanResults{}, fmt.Errorf("scan directory: %w", err)
	}
	if !info.IsDir() {
		return aggregate.ScanResults{}, fmt.Errorf("scan directory: %s is not a directory", dir)
	}

	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = defaultParallelism
	}

	compromised := opts.CompromisedPackages
	if compromised == nil {
		compromised = ioc.EmbeddedFallbackPackages()
	}

	resolvers := resolver.Load(ctx, dir, opts.Verify)
	cache := hashutil.NewCache()

	r := aggregate.ScanResults{Paranoid: opts.Paranoid}

	r.WorkflowFiles = append(detect.Workflows(dir), detect.NewWorkflowFiles(dir)...)
	r.MaliciousHashes = detect.MaliciousHashes(dir, ioc.MaliciousHashes, cache, parallelism)
	manifestFindings := detect.ManifestChecks(ctx, dir, detect.ManifestOptions{
		CompromisedPackages: compromised,
		Namespaces:          ioc.CompromisedNamespaces,
		CheckSemverRanges:   opts.CheckSemverRanges,
		LockfileViewForDir:  lockfileViewFor(resolvers),
		Verify:              opts.Verify,
		Resolvers:           resolvers,
	})
	r.CompromisedFound, r.NamespaceWarnings, r.LockfileSafeVersions = splitManifestFindings(manifestFindings)
	r.PostinstallHooks = detect.PostinstallHooks(dir, opts.Verify, cache)
	r.IntegrityIssues = detect.LockfileIntegrity(dir, compromised)
	r.CryptoPatterns = detect.Crypto(dir, opts.Verify, cache)
	r.TrufflehogActivity = detect.Trufflehog(dir)
	r.SuspiciousContent = detect.Content(dir)

	r.ShaiHuludRepos = detect.GitArtifacts(dir)
	r.GitBranches = detect.GitBranches(dir)
	r.BunAttackFiles = detect.BunAttackFiles(dir, cache)
	r.DiscussionWorkflows = detect.DiscussionWorkflows(dir)
	r.GitHubRunners = detect.GitHubRunners(dir, s.homeDir)
	r.DestructivePatterns = detect.DestructivePatterns(dir)
	r.PreinstallBun = detect.PreinstallBun(dir)
	r.SHA1HuludRunners = detect.SHA1HuludRunners(dir)
	r.SecondComingRepos = detect.SecondComingRepos(dir)

	if opts.Paranoid {
		r.TyposquattingWarnings = detect.Typosquatting(dir)
		r.NetworkExfiltrationWarnings = detect.NetworkExfiltration(dir)
	}

	return aggregate.New(r), nil
}

// CheckPackage classifies a single name@version pair against the
// compromised-package table, independent of any directory scan. It powers
// the MCP server's standalone lookup tool, where there is no manifest or
// lockfile context to resolve against.
func (s *Scanner) CheckPackage(name, version string, compromisedPackages map[types.CompromisedPackage]bool) types.Verification {
	compromised := compromisedPackages
	if compromised == nil {
		compromised = ioc.EmbeddedFallbackPackages()
	}

	if compromised[types.CompromisedPackage{Name: name, Version: version}] {
		return types.Verification{
			Status: types.StatusCompromised,
			Reason: fmt.Sprintf("%s@%s matches a known-compromised release", name, version),
		}
	}
	return types.Verification{
		Status: types.StatusUnknown,
		Reason: fmt.Sprintf("%s@%s is not in the known-compromised package list", name, version),
	}
}

// splitManifestFindings partitions ManifestChecks' combined output back into
// the three categories it can produce, so the caller can assign each to its
// own ScanResults field without running the manifest walk twice.
func splitManifestFindings(findings []types.Finding) (compromised, namespace, semver []types.Finding) {
	for _, f := range findings {
		switch f.Category {
		case "compromised_package":
			compromised = append(compromised, f)
		case "namespace_warning":
			namespace = append(namespace, f)
		case "lockfile_safe_version":
			semver = append(semver, f)
		}
	}
	return compromised, namespace, semver
}

// lockfileViewFor adapts the already-loaded lockfile resolver into the
// per-directory view callback ManifestOptions expects; every manifest under
// dir shares the one resolver loaded for the scan root.
func lockfileViewFor(r resolver.Resolvers) func(string) map[string]string {
	if r.Lockfile == nil || !r.Lockfile.HasLockfile() {
		return nil
	}
	return func(string) map[string]string {
		return r.Lockfile.View()
	}
}
