package detect

import "testing"

func TestDestructivePatternsBasicRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cleanup.sh", "#!/bin/bash\nrm -rf $HOME/Documents\n")

	findings := DestructivePatterns(dir)
	if len(findings) != 1 {
		t.Fatalf("findings = %+v, want exactly 1", findings)
	}
	if findings[0].Message != "Basic destructive pattern detected" {
		t.Errorf("Message = %q", findings[0].Message)
	}
}

func TestDestructivePatternsConditionalShellRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "install.sh", "if credential check fails then rm -rf /tmp/data\n")

	findings := DestructivePatterns(dir)
	var sawConditional bool
	for _, f := range findings {
		if f.Message == "Shai-Hulud wiper pattern detected" {
			sawConditional = true
		}
	}
	if !sawConditional {
		t.Fatalf("findings = %+v, want a conditional shell finding", findings)
	}
}

func TestDestructivePatternsJSWiperRuleMessage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wipe.js", `Bun.spawnSync(["bash", "-c", "del /F shred"])`)

	findings := DestructivePatterns(dir)
	var sawJS bool
	for _, f := range findings {
		if f.Message == "Shai-Hulud wiper pattern detected (JS/Python context)" {
			sawJS = true
		}
	}
	if !sawJS {
		t.Fatalf("findings = %+v, want a JS-context wiper finding", findings)
	}
}

func TestDestructivePatternsIgnoresBenignScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "build.sh", "#!/bin/bash\nnpm run build\n")

	findings := DestructivePatterns(dir)
	if len(findings) != 0 {
		t.Fatalf("findings = %+v, want none", findings)
	}
}
