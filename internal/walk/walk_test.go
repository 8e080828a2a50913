package walk

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFilesTraversesHiddenDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".github/workflows/shai-hulud-workflow.yml")
	writeFile(t, root, "src/index.js")

	got := Files(root, "yml")
	if len(got) != 1 {
		t.Fatalf("Files() = %v, want 1 match under hidden dir", got)
	}
}

func TestFilesNamedSortedOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b/package.json")
	writeFile(t, root, "a/package.json")

	got := FilesNamed(root, "package.json")
	if len(got) != 2 {
		t.Fatalf("got %d files, want 2", len(got))
	}
	if got[0] > got[1] {
		t.Errorf("FilesNamed() not sorted: %v", got)
	}
}

func TestDirsNamedFindsGitDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "repo/.git/config")

	got := DirsNamed(root, ".git")
	if len(got) != 1 {
		t.Fatalf("DirsNamed() = %v, want 1 .git dir", got)
	}
}
