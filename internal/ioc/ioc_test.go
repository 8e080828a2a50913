package ioc

import (
	"testing"

	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

func TestParseCompromisedPackagesSkipsCommentsAndBlanks(t *testing.T) {
	text := "# header\n\n@ctrl/tinycolor:4.1.0\r\nangulartics2:14.1.2\n"
	set := ParseCompromisedPackages(text)

	want := types.CompromisedPackage{Name: "@ctrl/tinycolor", Version: "4.1.0"}
	if !set[want] {
		t.Errorf("expected %v in set", want)
	}
	if len(set) != 2 {
		t.Errorf("len(set) = %d, want 2", len(set))
	}
}

func TestParseCompromisedPackagesMalformedLineIgnored(t *testing.T) {
	set := ParseCompromisedPackages("not-a-valid-line\n")
	if len(set) != 0 {
		t.Errorf("expected malformed line to be skipped, got %v", set)
	}
}

func TestEmbeddedFallbackPackagesNonEmpty(t *testing.T) {
	set := EmbeddedFallbackPackages()
	if len(set) == 0 {
		t.Fatal("expected a non-empty embedded fallback set")
	}
	if !set[types.CompromisedPackage{Name: "@ctrl/deluge", Version: "1.2.0"}] {
		t.Error("expected @ctrl/deluge:1.2.0 in embedded fallback")
	}
}

func TestVerifiedFileByHash(t *testing.T) {
	f, ok := VerifiedFileByHash("ce2f8852444caccee5a19008a7582cc3bd072c39fa6008edac3ad4e489f02d5e")
	if !ok {
		t.Fatal("expected a hit for known verified hash")
	}
	if f.Package != "error-ex@1.3.4" {
		t.Errorf("Package = %q, want error-ex@1.3.4", f.Package)
	}

	if _, ok := VerifiedFileByHash("0000000000000000000000000000000000000000000000000000000000000000"); ok {
		t.Error("expected no hit for unknown hash")
	}
}

func TestMaliciousHashesCount(t *testing.T) {
	if len(MaliciousHashes) != 9 {
		t.Errorf("len(MaliciousHashes) = %d, want 9", len(MaliciousHashes))
	}
}
