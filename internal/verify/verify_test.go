package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/seanhalberthal/shaihulud-scan/internal/hashutil"
	"github.com/seanhalberthal/shaihulud-scan/internal/resolver"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

func TestPackageVerifiedViaLockfile(t *testing.T) {
	dir := t.TempDir()
	content := `{"packages": {"": {}, "node_modules/ansi-regex": {"version": "6.1.0"}}}`
	if err := os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	lock := resolver.LoadLockfile(dir)

	compromised := map[types.CompromisedPackage]bool{
		{Name: "ansi-regex", Version: "6.2.1"}: true,
	}

	v := Package(context.Background(), "ansi-regex", nil, lock, compromised)
	if v.Status != types.StatusVerified {
		t.Fatalf("Status = %v, want Verified", v.Status)
	}
	if v.Method != types.MethodLockfileMatch {
		t.Errorf("Method = %v, want LockfileMatch", v.Method)
	}
}

func TestPackageCompromisedViaLockfile(t *testing.T) {
	dir := t.TempDir()
	content := `{"packages": {"": {}, "node_modules/ansi-regex": {"version": "6.2.1"}}}`
	if err := os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	lock := resolver.LoadLockfile(dir)

	compromised := map[types.CompromisedPackage]bool{
		{Name: "ansi-regex", Version: "6.2.1"}: true,
	}

	v := Package(context.Background(), "ansi-regex", nil, lock, compromised)
	if v.Status != types.StatusCompromised {
		t.Fatalf("Status = %v, want Compromised", v.Status)
	}
}

func TestPackageUnknownWithoutLockfile(t *testing.T) {
	lock := resolver.LoadLockfile(t.TempDir())
	v := Package(context.Background(), "some-package", nil, lock, nil)
	if v.Status != types.StatusUnknown {
		t.Fatalf("Status = %v, want Unknown", v.Status)
	}
}

func TestFileByHashUnknownForUnreviewedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.js")
	if err := os.WriteFile(path, []byte("console.log('hi')"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := FileByHash(path, hashutil.NewCache())
	if v.Status != types.StatusUnknown {
		t.Fatalf("Status = %v, want Unknown", v.Status)
	}
}
