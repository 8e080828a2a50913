package resolver

import "testing"

func TestFlattenPnpmKeepsFirstVersionAndRecurses(t *testing.T) {
	deps := map[string]pnpmPackage{
		"debug": {
			Version: "4.3.4",
			Dependencies: map[string]pnpmPackage{
				"ms": {Version: "2.1.3"},
			},
		},
	}

	out := map[string]string{}
	flattenPnpm(deps, out)

	if out["debug"] != "4.3.4" {
		t.Errorf(`out["debug"] = %q, want "4.3.4"`, out["debug"])
	}
	if out["ms"] != "2.1.3" {
		t.Errorf(`out["ms"] = %q, want "2.1.3"`, out["ms"])
	}
}

func TestFlattenNpmRecursesDevDependencies(t *testing.T) {
	deps := map[string]npmPackage{
		"jest": {
			Version: "29.0.0",
			DevDependencies: map[string]npmPackage{
				"chalk": {Version: "4.1.2"},
			},
		},
	}

	out := map[string]string{}
	flattenNpm(deps, out)

	if out["jest"] != "29.0.0" || out["chalk"] != "4.1.2" {
		t.Errorf("out = %+v, want jest=29.0.0 chalk=4.1.2", out)
	}
}
