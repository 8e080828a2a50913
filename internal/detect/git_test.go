package detect

import "testing"

func TestGitArtifactsFlagsRepoNameContainingShaiHulud(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shai-hulud-repo/.git/config", "[core]\n")

	findings := GitArtifacts(dir)
	var sawName bool
	for _, f := range findings {
		if f.Message == "Repository name contains 'Shai-Hulud'" {
			sawName = true
		}
	}
	if !sawName {
		t.Fatalf("findings = %+v, want repo-name finding", findings)
	}
}

func TestGitArtifactsFlagsConfigContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "normal-repo/.git/config", "[remote \"origin\"]\n\turl = https://example.test/shai-hulud-mirror.git\n")

	findings := GitArtifacts(dir)
	var sawConfig bool
	for _, f := range findings {
		if f.Message == "Git remote contains 'Shai-Hulud'" {
			sawConfig = true
		}
	}
	if !sawConfig {
		t.Fatalf("findings = %+v, want git-config finding", findings)
	}
}

func TestGitArtifactsIgnoresCleanRepo(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "my-project/.git/config", "[core]\n\tbare = false\n")

	if findings := GitArtifacts(dir); len(findings) != 0 {
		t.Fatalf("findings = %+v, want none", findings)
	}
}

func TestGitBranchesFlagsMatchingBranchName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "repo/.git/refs/heads/shai-hulud-backdoor", "abcdef0123456789\n")
	writeFile(t, dir, "repo/.git/refs/heads/main", "123456\n")

	findings := GitBranches(dir)
	if len(findings) != 1 {
		t.Fatalf("findings = %+v, want exactly 1", findings)
	}
	if findings[0].Message != "Branch 'shai-hulud-backdoor' (commit: abcdef01...)" {
		t.Errorf("Message = %q", findings[0].Message)
	}
	if findings[0].RiskLevel != "Medium" {
		t.Errorf("RiskLevel = %v, want Medium", findings[0].RiskLevel)
	}
}
