package iocsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

const sampleCSV = "package_name,package_versions,sources\n" +
	"left-pad,\"1.0.0,1.0.1\",datadog\n" +
	"@ctrl/tinycolor,4.1.0,datadog\n"

func TestParseCSVProducesOneEntryPerVersion(t *testing.T) {
	set, err := parseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}

	if !set[types.CompromisedPackage{Name: "@ctrl/tinycolor", Version: "4.1.0"}] {
		t.Error("expected @ctrl/tinycolor@4.1.0 in parsed set")
	}
	if !set[types.CompromisedPackage{Name: "left-pad", Version: "1.0.0"}] {
		t.Error("expected left-pad@1.0.0 in parsed set (first version column entry)")
	}
}

func TestParseCSVRejectsMissingColumns(t *testing.T) {
	_, err := parseCSV(strings.NewReader("a,b,c\n1,2,3\n"))
	if err == nil {
		t.Error("expected error for CSV missing package_name/package_versions columns")
	}
}

func TestRefreshFetchesAndCaches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	cacheDir := filepath.Join(t.TempDir(), "cache")
	src := New(WithURL(srv.URL), WithCacheDir(cacheDir))

	set, info, err := src.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !info.Updated {
		t.Error("expected Updated = true on first fetch")
	}
	if len(set) == 0 {
		t.Error("expected a non-empty compromised-package set")
	}

	// Second call without force should serve from the warm cache, not the network.
	srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected second network fetch while cache is fresh")
	})
	set2, info2, err := src.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("Refresh() (cached) error = %v", err)
	}
	if info2.Updated {
		t.Error("expected Updated = false when serving from a fresh cache")
	}
	if len(set2) != len(set) {
		t.Errorf("cached set size = %d, want %d", len(set2), len(set))
	}
}

func TestRefreshFallsBackToCacheOnFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))

	cacheDir := filepath.Join(t.TempDir(), "cache")
	src := New(WithURL(srv.URL), WithCacheDir(cacheDir))

	if _, _, err := src.Refresh(context.Background(), false); err != nil {
		t.Fatalf("initial Refresh() error = %v", err)
	}
	srv.Close()

	set, info, err := src.Refresh(context.Background(), true)
	if err != nil {
		t.Fatalf("Refresh() with dead server should fall back to cache, got error: %v", err)
	}
	if info.Updated {
		t.Error("expected Updated = false when falling back to cache")
	}
	if len(set) == 0 {
		t.Error("expected the cached set to still be returned")
	}
}
