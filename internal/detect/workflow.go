package detect

import (
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

// Workflows implements the workflow-file detector (spec §4.4, first check):
// every file named shai-hulud-workflow.yml is a known-malicious IOC.
func Workflows(root string) []types.Finding {
	var out []types.Finding
	for _, f := range walk.FilesNamed(root, "shai-hulud-workflow.yml") {
		out = append(out, types.NewFinding(pathnorm.Normalize(f), "Known malicious workflow filename", types.High, "workflow"))
	}
	return out
}

// NewWorkflowFiles implements the November-2025 workflow sub-detector
// (spec §4.4, second check): formatter_*.yml under .github/workflows/, and
// actionsSecrets.json anywhere.
func NewWorkflowFiles(root string) []types.Finding {
	var out []types.Finding
	for _, f := range walk.Files(root, "yml") {
		name := baseName(f)
		if strings.HasPrefix(name, "formatter_") && inWorkflowsDir(f) {
			out = append(out, types.NewFinding(pathnorm.Normalize(f),
				"Malicious formatter workflow pattern (November 2025 attack)", types.High, "new_workflow_files"))
		}
	}
	for _, f := range walk.FilesNamed(root, "actionsSecrets.json") {
		out = append(out, types.NewFinding(pathnorm.Normalize(f),
			"Suspicious GitHub Actions secrets file (credential exfiltration)", types.High, "actions_secrets_files"))
	}
	return out
}

// baseName returns the final path segment of a normalized path.
func baseName(path string) string {
	p := pathnorm.Normalize(path)
	if idx := strings.LastIndex(p, "/"); idx != -1 {
		return p[idx+1:]
	}
	return p
}

// inWorkflowsDir reports whether path's parent directory ends in
// .github/workflows, matching the Rust reference's parent.ends_with check.
func inWorkflowsDir(path string) bool {
	p := pathnorm.Normalize(path)
	idx := strings.LastIndex(p, "/")
	if idx == -1 {
		return false
	}
	parent := p[:idx]
	return strings.HasSuffix(parent, ".github/workflows")
}
