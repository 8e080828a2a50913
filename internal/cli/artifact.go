package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/seanhalberthal/shaihulud-scan/internal/aggregate"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

// jsonArtifact is the scan_results.json schema (spec §6): one field per
// detector category, each a sorted list of findings.
type jsonArtifact struct {
	WorkflowFiles      []types.Finding `json:"workflow_files"`
	MaliciousHashes    []types.Finding `json:"malicious_hashes"`
	CompromisedPackage []types.Finding `json:"compromised_package"`
	PostinstallHooks   []types.Finding `json:"postinstall_hooks"`
	IntegrityIssues    []types.Finding `json:"integrity_issues"`
	CryptoPatterns     []types.Finding `json:"crypto_patterns"`
	TrufflehogActivity []types.Finding `json:"trufflehog_activity"`
	SuspiciousContent  []types.Finding `json:"suspicious_content"`
	NamespaceWarnings  []types.Finding `json:"namespace_warnings"`

	ShaiHuludRepos      []types.Finding `json:"shai_hulud_repos"`
	GitBranches         []types.Finding `json:"git_branches"`
	BunAttackFiles      []types.Finding `json:"bun_attack_files"`
	DiscussionWorkflows []types.Finding `json:"discussion_workflows"`
	GitHubRunners       []types.Finding `json:"github_runners"`
	DestructivePatterns []types.Finding `json:"destructive_patterns"`
	PreinstallBun       []types.Finding `json:"preinstall_bun"`
	SHA1HuludRunners    []types.Finding `json:"sha1hulud_runners"`
	SecondComingRepos   []types.Finding `json:"second_coming_repos"`

	TyposquattingWarnings       []types.Finding `json:"typosquatting_warnings,omitempty"`
	NetworkExfiltrationWarnings []types.Finding `json:"network_exfiltration_warnings,omitempty"`
	LockfileSafeVersions        []types.Finding `json:"lockfile_safe_versions,omitempty"`

	Summary artifactSummary `json:"summary"`
}

type artifactSummary struct {
	High                     int `json:"high"`
	Medium                   int `json:"medium"`
	Low                      int `json:"low"`
	SuppressedNamespaceCount int `json:"suppressed_namespace_count,omitempty"`
}

func toJSONArtifact(r aggregate.ScanResults) jsonArtifact {
	return jsonArtifact{
		WorkflowFiles:               r.WorkflowFiles,
		MaliciousHashes:             r.MaliciousHashes,
		CompromisedPackage:          r.CompromisedFound,
		PostinstallHooks:            r.PostinstallHooks,
		IntegrityIssues:             r.IntegrityIssues,
		CryptoPatterns:              r.CryptoPatterns,
		TrufflehogActivity:          r.TrufflehogActivity,
		SuspiciousContent:           r.SuspiciousContent,
		NamespaceWarnings:           r.NamespaceWarnings,
		ShaiHuludRepos:              r.ShaiHuludRepos,
		GitBranches:                 r.GitBranches,
		BunAttackFiles:              r.BunAttackFiles,
		DiscussionWorkflows:         r.DiscussionWorkflows,
		GitHubRunners:               r.GitHubRunners,
		DestructivePatterns:         r.DestructivePatterns,
		PreinstallBun:               r.PreinstallBun,
		SHA1HuludRunners:            r.SHA1HuludRunners,
		SecondComingRepos:           r.SecondComingRepos,
		TyposquattingWarnings:       r.TyposquattingWarnings,
		NetworkExfiltrationWarnings: r.NetworkExfiltrationWarnings,
		LockfileSafeVersions:        r.LockfileSafeVersions,
		Summary: artifactSummary{
			High:                     r.HighCount(),
			Medium:                   r.MediumCount(),
			Low:                      r.LowCount(),
			SuppressedNamespaceCount: r.SuppressedNamespaceCount,
		},
	}
}

func writeJSONArtifact(path string, r aggregate.ScanResults) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(toJSONArtifact(r))
}

// writeFindingLog writes every finding path to path, grouped under
// "# HIGH" / "# MEDIUM" / "# LOW" headers, one path per line (spec §6's
// --save-log, ported from original_source/src/cli.rs).
func writeFindingLog(path string, r aggregate.ScanResults) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	high, medium, low := findingsByRisk(r)

	writeGroup := func(header string, findings []types.Finding) error {
		if len(findings) == 0 {
			return nil
		}
		if _, err := fmt.Fprintln(f, header); err != nil {
			return err
		}
		for _, finding := range findings {
			if _, err := fmt.Fprintln(f, finding.FilePath); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeGroup("# HIGH", high); err != nil {
		return err
	}
	if err := writeGroup("# MEDIUM", medium); err != nil {
		return err
	}
	return writeGroup("# LOW", low)
}

// findingsByRisk flattens every category into three risk-ordered, path-sorted
// lists, for the --save-log artifact.
func findingsByRisk(r aggregate.ScanResults) (high, medium, low []types.Finding) {
	categories := [][]types.Finding{
		r.WorkflowFiles, r.MaliciousHashes, r.CompromisedFound, r.PostinstallHooks,
		r.IntegrityIssues, r.CryptoPatterns, r.TrufflehogActivity, r.SuspiciousContent,
		r.NamespaceWarnings, r.ShaiHuludRepos, r.GitBranches, r.BunAttackFiles,
		r.DiscussionWorkflows, r.GitHubRunners, r.DestructivePatterns, r.PreinstallBun,
		r.SHA1HuludRunners, r.SecondComingRepos, r.TyposquattingWarnings,
		r.NetworkExfiltrationWarnings,
	}
	for _, list := range categories {
		for _, finding := range list {
			switch finding.RiskLevel {
			case types.High:
				high = append(high, finding)
			case types.Medium:
				medium = append(medium, finding)
			case types.Low:
				low = append(low, finding)
			}
		}
	}
	sort.Slice(high, func(i, j int) bool { return high[i].FilePath < high[j].FilePath })
	sort.Slice(medium, func(i, j int) bool { return medium[i].FilePath < medium[j].FilePath })
	sort.Slice(low, func(i, j int) bool { return low[i].FilePath < low[j].FilePath })
	return high, medium, low
}
