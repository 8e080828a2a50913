package detect

import "testing"

func TestDiscussionWorkflowsFlagsDiscussionTrigger(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".github/workflows/ci.yml", "on: discussion\njobs: {}\n")

	findings := DiscussionWorkflows(dir)
	var saw bool
	for _, f := range findings {
		if f.Message == "Discussion trigger detected (enables arbitrary command execution)" {
			saw = true
		}
	}
	if !saw {
		t.Fatalf("findings = %+v, want discussion-trigger finding", findings)
	}
}

func TestDiscussionWorkflowsFlagsSuspiciousFilename(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".github/workflows/discussion.yml", "name: handler\n")

	findings := DiscussionWorkflows(dir)
	var saw bool
	for _, f := range findings {
		if f.Message == "Suspicious discussion workflow filename (matches Koi.ai IOC)" {
			saw = true
		}
	}
	if !saw {
		t.Fatalf("findings = %+v, want filename finding", findings)
	}
}

func TestSHA1HuludRunnersFlagsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".github/workflows/ci.yml", "runs-on: SHA1Hulud-runner\n")

	if findings := SHA1HuludRunners(dir); len(findings) != 1 {
		t.Fatalf("findings = %+v, want exactly 1", findings)
	}
}

func TestPreinstallBunFlagsMaliciousScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name":"pkg","scripts":{"preinstall":"node setup_bun.js"}}`)

	findings := PreinstallBun(dir)
	if len(findings) != 1 || findings[0].Category != "preinstall_bun_patterns" {
		t.Fatalf("findings = %+v, want one preinstall_bun_patterns finding", findings)
	}
}

func TestPreinstallBunIgnoresBenignPreinstall(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name":"pkg","scripts":{"preinstall":"node build.js"}}`)

	if findings := PreinstallBun(dir); len(findings) != 0 {
		t.Fatalf("findings = %+v, want none", findings)
	}
}
