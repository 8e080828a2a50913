package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseDependencySections(t *testing.T) {
	path := writeManifest(t, `{
		"dependencies": {"@ctrl/tinycolor": "4.1.0"},
		"devDependencies": {"jest": "29.0.0"},
		"scripts": {"postinstall": "node setup_bun.js"}
	}`)

	m, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Dependencies["@ctrl/tinycolor"] != "4.1.0" {
		t.Errorf("dependencies not parsed: %+v", m.Dependencies)
	}
	if m.Scripts["postinstall"] != "node setup_bun.js" {
		t.Errorf("scripts not parsed: %+v", m.Scripts)
	}

	sections := m.DependencySections()
	if len(sections) != 4 {
		t.Fatalf("DependencySections() len = %d, want 4", len(sections))
	}
}

func TestParseUnreadableFileReturnsError(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseMalformedJSONReturnsError(t *testing.T) {
	path := writeManifest(t, `{not valid json`)
	if _, err := Parse(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
