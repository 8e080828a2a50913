package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"sync"
	"time"
)

var (
	errEmptyResolution = errors.New("resolver: package manager returned no packages")
	errNotFound        = errors.New("resolver: package not found")
)

// runtimeQueryTimeout bounds every package-manager invocation; a hung or
// interactive pnpm/npm process must not stall a scan.
const runtimeQueryTimeout = 15 * time.Second

// pnpmPackage mirrors the subset of `pnpm list --json` this resolver reads.
type pnpmPackage struct {
	Version         string                 `json:"version"`
	Dependencies    map[string]pnpmPackage `json:"dependencies"`
	DevDependencies map[string]pnpmPackage `json:"devDependencies"`
}

type pnpmListResult struct {
	Dependencies    map[string]pnpmPackage `json:"dependencies"`
	DevDependencies map[string]pnpmPackage `json:"devDependencies"`
}

// npmPackage mirrors the subset of `npm list --json` this resolver reads.
type npmPackage struct {
	Version         string                `json:"version"`
	Dependencies    map[string]npmPackage `json:"dependencies"`
	DevDependencies map[string]npmPackage `json:"devDependencies"`
}

type npmListResult struct {
	Dependencies map[string]npmPackage `json:"dependencies"`
}

// RuntimeResolver queries the installed package tree through the project's
// package manager (pnpm, falling back to npm) instead of reading a
// lockfile, so it reflects what is actually on disk. Only constructed when
// the caller has opted into --verify, since it shells out.
type RuntimeResolver struct {
	dir string

	mu       sync.Mutex
	packages map[string]string
}

// NewRuntimeResolver queries dir's package manager once and caches the
// result. The returned resolver has no packages (not an error) if neither
// pnpm nor npm resolves successfully, which Version reports via its ok
// return.
func NewRuntimeResolver(ctx context.Context, dir string) *RuntimeResolver {
	r := &RuntimeResolver{dir: dir, packages: map[string]string{}}

	if pkgs, err := queryPnpm(ctx, dir); err == nil {
		r.packages = pkgs
		return r
	}
	if pkgs, err := queryNpm(ctx, dir); err == nil {
		r.packages = pkgs
	}
	return r
}

// Version returns the installed version for name, querying the package
// manager directly for a single package if it wasn't already resolved by
// the initial whole-tree query (this covers transitive dependencies pnpm's
// summary sometimes omits).
func (r *RuntimeResolver) Version(ctx context.Context, name string) (string, bool) {
	r.mu.Lock()
	v, ok := r.packages[name]
	r.mu.Unlock()
	if ok {
		return v, true
	}

	if v, err := querySpecificPnpm(ctx, r.dir, name); err == nil {
		r.mu.Lock()
		r.packages[name] = v
		r.mu.Unlock()
		return v, true
	}
	if v, err := querySpecificNpm(ctx, r.dir, name); err == nil {
		r.mu.Lock()
		r.packages[name] = v
		r.mu.Unlock()
		return v, true
	}
	return "", false
}

// HasPackages reports whether the initial whole-tree query resolved
// anything.
func (r *RuntimeResolver) HasPackages() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.packages) > 0
}

func queryPnpm(ctx context.Context, dir string) (map[string]string, error) {
	out, err := runCommand(ctx, dir, "pnpm", "list", "--json", "--depth=Infinity")
	if err != nil {
		return nil, err
	}

	var results []pnpmListResult
	if err := json.Unmarshal(out, &results); err != nil {
		return nil, err
	}

	packages := map[string]string{}
	for _, r := range results {
		flattenPnpm(r.Dependencies, packages)
		flattenPnpm(r.DevDependencies, packages)
	}
	if len(packages) == 0 {
		return nil, errEmptyResolution
	}
	return packages, nil
}

func queryNpm(ctx context.Context, dir string) (map[string]string, error) {
	out, err := runCommand(ctx, dir, "npm", "list", "--json", "--depth=999", "--all")
	if err != nil {
		return nil, err
	}

	var result npmListResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, err
	}

	packages := map[string]string{}
	flattenNpm(result.Dependencies, packages)
	if len(packages) == 0 {
		return nil, errEmptyResolution
	}
	return packages, nil
}

func querySpecificPnpm(ctx context.Context, dir, name string) (string, error) {
	out, err := runCommand(ctx, dir, "pnpm", "list", name, "--json", "--depth=0")
	if err != nil {
		return "", err
	}
	var results []pnpmListResult
	if err := json.Unmarshal(out, &results); err != nil {
		return "", err
	}
	for _, r := range results {
		if pkg, ok := r.Dependencies[name]; ok {
			return pkg.Version, nil
		}
		if pkg, ok := r.DevDependencies[name]; ok {
			return pkg.Version, nil
		}
	}
	return "", errNotFound
}

func querySpecificNpm(ctx context.Context, dir, name string) (string, error) {
	out, err := runCommand(ctx, dir, "npm", "list", name, "--json", "--depth=0")
	if err != nil {
		return "", err
	}
	var result npmListResult
	if err := json.Unmarshal(out, &result); err != nil {
		return "", err
	}
	if pkg, ok := result.Dependencies[name]; ok {
		return pkg.Version, nil
	}
	return "", errNotFound
}

func flattenPnpm(deps map[string]pnpmPackage, out map[string]string) {
	for name, pkg := range deps {
		if _, ok := out[name]; !ok {
			out[name] = pkg.Version
		}
		flattenPnpm(pkg.Dependencies, out)
		flattenPnpm(pkg.DevDependencies, out)
	}
}

func flattenNpm(deps map[string]npmPackage, out map[string]string) {
	for name, pkg := range deps {
		if _, ok := out[name]; !ok {
			out[name] = pkg.Version
		}
		flattenNpm(pkg.Dependencies, out)
		flattenNpm(pkg.DevDependencies, out)
	}
}

func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, runtimeQueryTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}
