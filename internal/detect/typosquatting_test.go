package detect

import "testing"

func TestTyposquattingDigraphPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"dependencies":{"acvvent":"1.0.0"}}`)

	findings := Typosquatting(dir)
	var sawDigraph bool
	for _, f := range findings {
		if f.Message == "Potential typosquatting pattern 'vv' in package: acvvent" {
			sawDigraph = true
		}
	}
	if !sawDigraph {
		t.Fatalf("findings = %+v, want digraph finding for acvvent", findings)
	}
}

func TestTyposquattingSimilarToPopularOneCharDiff(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"dependencies":{"expres":"1.0.0"}}`)

	findings := Typosquatting(dir)
	var sawSimilar bool
	for _, f := range findings {
		if f.Category == "typosquatting" {
			sawSimilar = true
		}
	}
	if !sawSimilar {
		t.Fatalf("findings = %+v, want a typosquatting finding for expres vs express (missing character)", findings)
	}
}

func TestTyposquattingIgnoresLegitimatePackage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"dependencies":{"react":"18.0.0","utils":"1.0.0"}}`)

	if findings := Typosquatting(dir); len(findings) != 0 {
		t.Fatalf("findings = %+v, want none for exact popular name and legitimate short name", findings)
	}
}

func TestTyposquattingNamespaceVariation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"dependencies":{"@typez/node":"1.0.0"}}`)

	findings := Typosquatting(dir)
	var sawNamespace bool
	for _, f := range findings {
		if f.Category == "typosquatting" && f.Message == "Suspicious namespace variation: @typez (similar to @types)" {
			sawNamespace = true
		}
	}
	if !sawNamespace {
		t.Fatalf("findings = %+v, want namespace-variation finding", findings)
	}
}
