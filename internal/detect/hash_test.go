package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/seanhalberthal/shaihulud-scan/internal/hashutil"
)

func TestMaliciousHashesFlagsKnownHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.js")
	if err := os.WriteFile(path, []byte("malicious content"), 0o644); err != nil {
		t.Fatal(err)
	}

	hex, err := hashutil.HashFileUncached(path)
	if err != nil {
		t.Fatal(err)
	}

	hashes := map[string]bool{hex: true}
	findings := MaliciousHashes(dir, hashes, hashutil.NewCache(), 4)

	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
	if findings[0].Category != "malicious_hash" {
		t.Errorf("Category = %q, want malicious_hash", findings[0].Category)
	}
	if findings[0].Message != "Hash: "+hex {
		t.Errorf("Message = %q, want %q", findings[0].Message, "Hash: "+hex)
	}
}

func TestMaliciousHashesIgnoresUnknownHash(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "benign.ts"), []byte("benign"), 0o644); err != nil {
		t.Fatal(err)
	}

	findings := MaliciousHashes(dir, map[string]bool{}, hashutil.NewCache(), 4)
	if len(findings) != 0 {
		t.Fatalf("len(findings) = %d, want 0", len(findings))
	}
}
