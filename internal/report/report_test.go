package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/seanhalberthal/shaihulud-scan/internal/aggregate"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

func TestRenderCleanScanReportsNoIssues(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, aggregate.New(aggregate.ScanResults{}), false)

	if !strings.Contains(buf.String(), "No indicators of compromise detected") {
		t.Errorf("output = %q, want clean-scan message", buf.String())
	}
}

func TestRenderHighFindingAppearsUnderItsSection(t *testing.T) {
	r := aggregate.New(aggregate.ScanResults{
		WorkflowFiles: []types.Finding{
			types.NewFinding("/repo/.github/workflows/shai-hulud-workflow.yml", "Known malicious workflow filename", types.High, "workflow"),
		},
	})

	var buf bytes.Buffer
	Render(&buf, r, false)
	out := buf.String()

	if !strings.Contains(out, "Malicious workflow files") {
		t.Errorf("output missing workflow section heading: %q", out)
	}
	if !strings.Contains(out, "Known malicious workflow filename") {
		t.Errorf("output missing finding message: %q", out)
	}
}

func TestRenderSuppressesLowSectionWhenTotalAtThreshold(t *testing.T) {
	findings := make([]types.Finding, 5)
	for i := range findings {
		findings[i] = types.NewFinding("/repo/f.js", "high finding", types.High, "workflow")
	}
	r := aggregate.New(aggregate.ScanResults{
		WorkflowFiles:     findings,
		NamespaceWarnings: []types.Finding{types.NewFinding("Namespace warning", "Contains packages from compromised namespace: @ctrl", types.Low, "namespace_warning")},
	})

	var buf bytes.Buffer
	Render(&buf, r, false)

	if strings.Contains(buf.String(), "LOW RISK FINDINGS") {
		t.Errorf("want LOW section suppressed when HIGH+MEDIUM >= 5, got: %q", buf.String())
	}
}

func TestRenderShowsLowSectionWhenTotalBelowThreshold(t *testing.T) {
	r := aggregate.New(aggregate.ScanResults{
		WorkflowFiles:     []types.Finding{types.NewFinding("/repo/f.js", "high finding", types.High, "workflow")},
		NamespaceWarnings: []types.Finding{types.NewFinding("Namespace warning", "Contains packages from compromised namespace: @ctrl", types.Low, "namespace_warning")},
	})

	var buf bytes.Buffer
	Render(&buf, r, false)

	if !strings.Contains(buf.String(), "LOW RISK FINDINGS") {
		t.Errorf("want LOW section shown when HIGH+MEDIUM < 5, got: %q", buf.String())
	}
}

func TestRenderVerificationSummaryOnlyWhenVerificationPresent(t *testing.T) {
	without := aggregate.New(aggregate.ScanResults{
		PostinstallHooks: []types.Finding{types.NewFinding("/repo/package.json", "curl in postinstall", types.High, "postinstall_hooks")},
	})
	var buf bytes.Buffer
	Render(&buf, without, false)
	if strings.Contains(buf.String(), "VERIFICATION SUMMARY") {
		t.Error("want no verification summary when no finding carries a Verification")
	}

	verified := types.Verification{Status: types.StatusVerified, Confidence: "High", Method: types.MethodCodePatternAnalysis}
	withVerify := aggregate.New(aggregate.ScanResults{
		PostinstallHooks: []types.Finding{{
			FilePath: "/repo/package.json", Message: "curl in postinstall", RiskLevel: types.High,
			Category: "postinstall_hooks", Verification: &verified,
		}},
	})
	buf.Reset()
	Render(&buf, withVerify, false)
	if !strings.Contains(buf.String(), "VERIFICATION SUMMARY") {
		t.Error("want verification summary when a finding carries a Verification")
	}
	if !strings.Contains(buf.String(), "All findings verified as SAFE") {
		t.Errorf("want all-safe conclusion, got: %q", buf.String())
	}
}

func TestRenderParanoidBannerAndNote(t *testing.T) {
	r := aggregate.New(aggregate.ScanResults{Paranoid: true})

	var buf bytes.Buffer
	Render(&buf, r, true)

	if !strings.Contains(buf.String(), "PARANOID SECURITY REPORT") {
		t.Errorf("want paranoid banner, got: %q", buf.String())
	}
}
