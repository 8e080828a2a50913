package detect

import "testing"

func TestContentFlagsWebhookSiteAndC2UUID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "fetch('https://webhook.site/abc')")
	writeFile(t, dir, "b.js", "const id = 'bb8ca5f6-4175-45d2-b042-fc9ebb8170b7'")

	findings := Content(dir)
	if len(findings) != 2 {
		t.Fatalf("findings = %+v, want 2", findings)
	}
	for _, f := range findings {
		if f.Category != "suspicious_content" {
			t.Errorf("Category = %q, want suspicious_content", f.Category)
		}
	}
}

func TestContentIgnoresBenignFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "console.log('hello world')")

	if findings := Content(dir); len(findings) != 0 {
		t.Fatalf("findings = %+v, want none", findings)
	}
}
