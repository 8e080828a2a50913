// Package report renders an aggregate.ScanResults as the risk-stratified
// textual report described in spec §6: HIGH and MEDIUM findings grouped by
// category under colored banners, LOW findings shown only when the total
// issue count is small, and a closing verification summary when --verify
// was used. The styling is lipgloss, in the teacher's idiom
// (internal/cli/styles.go).
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seanhalberthal/shaihulud-scan/internal/aggregate"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

// lowRiskDetailThreshold mirrors the reference report's "only show LOW
// findings in detail when the project is mostly clean" rule (spec §6):
// HIGH+MEDIUM below this prints the LOW section, at or above it suppresses it.
const lowRiskDetailThreshold = 5

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	highStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mediumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	lowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	divider      = strings.Repeat("=", 46)
)

// category pairs one ScanResults field's findings with the heading they are
// reported under.
type category struct {
	heading  string
	findings []types.Finding
}

// Render writes the full textual report for r to w.
func Render(w io.Writer, r aggregate.ScanResults, paranoid bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bannerStyle.Render(divider))
	if paranoid {
		fmt.Fprintln(w, bannerStyle.Render("  SHAI-HULUD + PARANOID SECURITY REPORT"))
	} else {
		fmt.Fprintln(w, bannerStyle.Render("      SHAI-HULUD DETECTION REPORT"))
	}
	fmt.Fprintln(w, bannerStyle.Render(divider))
	fmt.Fprintln(w)

	high := r.HighCount()
	medium := r.MediumCount()
	low := r.LowCount()
	total := high + medium

	highSections := []category{
		{"Malicious workflow files", r.WorkflowFiles},
		{"Files with known malicious hashes", r.MaliciousHashes},
		{"Compromised package versions", r.CompromisedFound},
		{"Suspicious postinstall hooks", r.PostinstallHooks},
		{"Shai-Hulud repositories", r.ShaiHuludRepos},
		{"Shai-Hulud repositories (Second Coming marker)", r.SecondComingRepos},
		{"Bun-based attack files", r.BunAttackFiles},
		{"Discussion-triggered workflows", r.DiscussionWorkflows},
		{"Persistent GitHub Actions runners", r.GitHubRunners},
		{"Destructive filesystem patterns", r.DestructivePatterns},
		{"Malicious preinstall bun script", r.PreinstallBun},
		{"SHA1Hulud runner labels", r.SHA1HuludRunners},
		{"Cryptocurrency theft patterns", filterRisk(r.CryptoPatterns, types.High)},
		{"Trufflehog/secret scanning activity", filterRisk(r.TrufflehogActivity, types.High)},
	}
	for _, c := range highSections {
		renderSection(w, highStyle, "HIGH RISK", c)
	}

	mediumSections := []category{
		{"Suspicious content found", r.SuspiciousContent},
		{"Shai-Hulud branch names", r.GitBranches},
		{"Lockfile integrity issues", r.IntegrityIssues},
		{"Cryptocurrency theft patterns", filterRisk(r.CryptoPatterns, types.Medium)},
		{"Trufflehog/secret scanning activity", filterRisk(r.TrufflehogActivity, types.Medium)},
	}
	if paranoid {
		mediumSections = append(mediumSections,
			category{"Typosquatting warnings (PARANOID)", r.TyposquattingWarnings},
			category{"Network exfiltration warnings (PARANOID)", r.NetworkExfiltrationWarnings},
		)
	}
	for _, c := range mediumSections {
		renderSection(w, mediumStyle, "MEDIUM RISK", c)
	}

	if high == 0 && medium == 0 && low == 0 {
		fmt.Fprintln(w, goodStyle.Render("✓ No indicators of compromise detected."))
		fmt.Fprintln(w)
		fmt.Fprintln(w, bannerStyle.Render(divider))
		return
	}

	fmt.Fprintln(w, bannerStyle.Render("SUMMARY"))
	fmt.Fprintf(w, "   %s %d\n", highStyle.Render("High Risk:"), high)
	fmt.Fprintf(w, "   %s %d\n", mediumStyle.Render("Medium Risk:"), medium)
	fmt.Fprintf(w, "   %s %d\n", lowStyle.Render("Low Risk (informational):"), low)
	fmt.Fprintf(w, "   Total Critical Issues: %d\n", total)
	fmt.Fprintln(w)

	fmt.Fprintln(w, noteStyle.Render("IMPORTANT:"))
	fmt.Fprintln(w, noteStyle.Render("   - High risk issues likely indicate actual compromise"))
	fmt.Fprintln(w, noteStyle.Render("   - Medium risk issues require manual investigation"))
	fmt.Fprintln(w, noteStyle.Render("   - Low risk issues are likely false positives from legitimate code"))
	if paranoid {
		fmt.Fprintln(w, noteStyle.Render("   - Issues marked (PARANOID) are general security checks, not Shai-Hulud specific"))
	}
	fmt.Fprintln(w, noteStyle.Render("   - Consider running additional security scans"))
	fmt.Fprintln(w, noteStyle.Render("   - Review your npm audit logs and package history"))

	if low > 0 && total < lowRiskDetailThreshold {
		fmt.Fprintln(w)
		fmt.Fprintln(w, lowStyle.Render("LOW RISK FINDINGS (likely false positives):"))
		for _, f := range r.NamespaceWarnings {
			fmt.Fprintf(w, "   - %s\n", f.Message)
		}
		for _, f := range filterRisk(r.CryptoPatterns, types.Low) {
			fmt.Fprintf(w, "   - Crypto pattern: %s\n", f.Message)
		}
		for _, f := range filterRisk(r.TrufflehogActivity, types.Low) {
			fmt.Fprintf(w, "   - %s\n", f.Message)
		}
		fmt.Fprintln(w, mutedStyle.Render("   NOTE: These are typically legitimate framework patterns."))
	}

	renderVerificationSummary(w, r)

	fmt.Fprintln(w, bannerStyle.Render(divider))
}

func renderSection(w io.Writer, style lipgloss.Style, label string, c category) {
	if len(c.findings) == 0 {
		return
	}
	fmt.Fprintln(w, style.Render(fmt.Sprintf("%s: %s detected:", label, c.heading)))
	for _, f := range c.findings {
		fmt.Fprintf(w, "   - %s\n", f.Message)
	}
	fmt.Fprintln(w)
}

func filterRisk(findings []types.Finding, risk types.RiskLevel) []types.Finding {
	var out []types.Finding
	for _, f := range findings {
		if f.RiskLevel == risk {
			out = append(out, f)
		}
	}
	return out
}

// renderVerificationSummary reports verified-safe vs. needs-review counts
// across the categories the §4.9 verification layer annotates. It is a
// no-op when Verify wasn't enabled for the scan (no finding carries a
// Verification).
func renderVerificationSummary(w io.Writer, r aggregate.ScanResults) {
	highTotal, highSafe := tallyVerification(r.PostinstallHooks, nil)
	highTotal2, highSafe2 := tallyVerification(r.CompromisedFound, nil)
	highTotal += highTotal2
	highSafe += highSafe2

	mediumTotal, mediumSafe := tallyVerification(nil, filterRisk(r.CryptoPatterns, types.Medium))

	if !anyVerified(r.PostinstallHooks, r.CompromisedFound, filterRisk(r.CryptoPatterns, types.Medium)) {
		return
	}
	if highTotal == 0 && mediumTotal == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bannerStyle.Render(divider))
	fmt.Fprintln(w, bannerStyle.Render("VERIFICATION SUMMARY (--verify mode)"))
	fmt.Fprintln(w, bannerStyle.Render(divider))
	fmt.Fprintln(w)

	if highTotal > 0 {
		fmt.Fprintln(w, highStyle.Render("HIGH RISK VERIFICATION:"))
		printVerificationLine(w, highTotal, highSafe)
	}
	if mediumTotal > 0 {
		fmt.Fprintln(w, mediumStyle.Render("MEDIUM RISK VERIFICATION:"))
		printVerificationLine(w, mediumTotal, mediumSafe)
	}

	needsReview := (highTotal - highSafe) + (mediumTotal - mediumSafe)
	if needsReview == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, goodStyle.Render("CONCLUSION: All findings verified as SAFE (false positives)"))
		fmt.Fprintln(w, goodStyle.Render("   No malicious activity detected. Project appears clean."))
	} else {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", noteStyle.Render(fmt.Sprintf("CONCLUSION: %d findings still need manual review", needsReview)))
		fmt.Fprintln(w, noteStyle.Render("   Review items marked without a verified-safe tag above."))
	}
}

func anyVerified(lists ...[]types.Finding) bool {
	for _, list := range lists {
		for _, f := range list {
			if f.Verification != nil {
				return true
			}
		}
	}
	return false
}

func tallyVerification(a, b []types.Finding) (total, safe int) {
	for _, f := range append(append([]types.Finding{}, a...), b...) {
		total++
		if f.Verification != nil && f.Verification.Status == types.StatusVerified {
			safe++
		}
	}
	return total, safe
}

func printVerificationLine(w io.Writer, total, safe int) {
	fmt.Fprintf(w, "   Total findings: %d\n", total)
	if safe > 0 {
		pct := int(float64(safe) / float64(total) * 100)
		fmt.Fprintln(w, goodStyle.Render(fmt.Sprintf("   Verified SAFE: %d (%d%%)", safe, pct)))
	}
	needsReview := total - safe
	if needsReview > 0 {
		pct := int(float64(needsReview) / float64(total) * 100)
		fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf("   Needs review: %d (%d%%)", needsReview, pct)))
	}
	fmt.Fprintln(w)
}
