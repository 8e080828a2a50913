// Package aggregate implements spec §4.11: it merges every detector's
// findings into one ScanResults record and derives the HIGH/MEDIUM/LOW
// counts (and the namespace-suppression rule) from that record rather than
// tracking a running tally as detectors run.
package aggregate

import (
	"sort"

	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

// suppressionThreshold is the HIGH+MEDIUM count at or above which namespace
// warnings move into SuppressedNamespaceCount (spec §4.11).
const suppressionThreshold = 5

// paranoidListCap bounds the typosquatting/network-exfiltration lists
// contributed to MEDIUM, and the lists persisted to the JSON artifact,
// under paranoid mode (spec §4.11).
const paranoidListCap = 5

// ScanResults holds one finding list per detector category named in
// spec §4, mirroring the teacher's flat result-struct-with-accessors
// pattern instead of a generic map.
type ScanResults struct {
	WorkflowFiles      []types.Finding
	MaliciousHashes    []types.Finding
	CompromisedFound   []types.Finding
	PostinstallHooks   []types.Finding
	IntegrityIssues    []types.Finding
	CryptoPatterns     []types.Finding
	TrufflehogActivity []types.Finding
	SuspiciousContent  []types.Finding
	NamespaceWarnings  []types.Finding

	// Secondary-IOC categories (§4.10).
	ShaiHuludRepos      []types.Finding
	GitBranches         []types.Finding
	BunAttackFiles      []types.Finding
	DiscussionWorkflows []types.Finding
	GitHubRunners       []types.Finding
	DestructivePatterns []types.Finding
	PreinstallBun       []types.Finding
	SHA1HuludRunners    []types.Finding
	SecondComingRepos   []types.Finding

	// Paranoid-only categories (§4.12, §4.8.4).
	TyposquattingWarnings       []types.Finding
	NetworkExfiltrationWarnings []types.Finding

	// Opt-in semver pass (§4.5); contributes to neither HIGH nor MEDIUM.
	LockfileSafeVersions []types.Finding

	Paranoid                  bool
	SuppressedNamespaceCount int
}

// New builds a ScanResults from every detector's raw output and applies the
// §4.11 namespace-suppression rule. Each finding list is re-sorted here so
// that callers don't need to sort per-detector.
func New(r ScanResults) ScanResults {
	sortAll(&r)

	high := r.highCountBeforeSuppression()
	if high+r.mediumCount() >= suppressionThreshold {
		r.SuppressedNamespaceCount += len(r.NamespaceWarnings)
		r.NamespaceWarnings = nil
	}

	if r.Paranoid {
		r.TyposquattingWarnings = truncate(r.TyposquattingWarnings, paranoidListCap)
		r.NetworkExfiltrationWarnings = truncate(r.NetworkExfiltrationWarnings, paranoidListCap)
	}

	return r
}

func (r ScanResults) highCountBeforeSuppression() int {
	return len(r.WorkflowFiles) + len(r.MaliciousHashes) + len(r.CompromisedFound) +
		len(r.PostinstallHooks) + len(r.ShaiHuludRepos) +
		countByRisk(r.CryptoPatterns, types.High) + countByRisk(r.TrufflehogActivity, types.High) +
		len(r.BunAttackFiles) + len(r.DiscussionWorkflows) + len(r.GitHubRunners) +
		len(r.DestructivePatterns) + len(r.PreinstallBun) + len(r.SHA1HuludRunners) +
		len(r.SecondComingRepos)
}

// HighCount is the total HIGH count (spec §4.11). Namespace suppression
// does not affect HIGH, so this equals highCountBeforeSuppression.
func (r ScanResults) HighCount() int {
	return r.highCountBeforeSuppression()
}

func (r ScanResults) mediumCount() int {
	n := len(r.SuspiciousContent) + len(r.GitBranches) + len(r.IntegrityIssues) +
		countByRisk(r.CryptoPatterns, types.Medium) + countByRisk(r.TrufflehogActivity, types.Medium)
	if r.Paranoid {
		n += min(paranoidListCap, len(r.TyposquattingWarnings)) + min(paranoidListCap, len(r.NetworkExfiltrationWarnings))
	}
	return n
}

// MediumCount is the total MEDIUM count (spec §4.11).
func (r ScanResults) MediumCount() int {
	return r.mediumCount()
}

// LowCount is the total LOW count (spec §4.11).
func (r ScanResults) LowCount() int {
	return len(r.NamespaceWarnings) + r.SuppressedNamespaceCount +
		countByRisk(r.CryptoPatterns, types.Low) + countByRisk(r.TrufflehogActivity, types.Low)
}

func countByRisk(findings []types.Finding, risk types.RiskLevel) int {
	n := 0
	for _, f := range findings {
		if f.RiskLevel == risk {
			n++
		}
	}
	return n
}

func truncate(findings []types.Finding, n int) []types.Finding {
	if len(findings) <= n {
		return findings
	}
	return findings[:n]
}

func sortAll(r *ScanResults) {
	lists := [][]types.Finding{
		r.WorkflowFiles, r.MaliciousHashes, r.CompromisedFound, r.PostinstallHooks,
		r.IntegrityIssues, r.CryptoPatterns, r.TrufflehogActivity, r.SuspiciousContent,
		r.NamespaceWarnings, r.ShaiHuludRepos, r.GitBranches, r.BunAttackFiles,
		r.DiscussionWorkflows, r.GitHubRunners, r.DestructivePatterns, r.PreinstallBun,
		r.SHA1HuludRunners, r.SecondComingRepos, r.TyposquattingWarnings,
		r.NetworkExfiltrationWarnings, r.LockfileSafeVersions,
	}
	for _, l := range lists {
		sortByPath(l)
	}
}

func sortByPath(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].FilePath != findings[j].FilePath {
			return findings[i].FilePath < findings[j].FilePath
		}
		return findings[i].Message < findings[j].Message
	})
}
