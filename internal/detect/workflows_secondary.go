package detect

import (
	"os"
	"regexp"
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

var (
	discussionTriggerRe = regexp.MustCompile(`on:[ \t]*discussion`)
	selfHostedRunnerRe  = regexp.MustCompile(`runs-on:.*self-hosted`)
	dynamicPayloadRe    = regexp.MustCompile(`\$\{\{ github\.event\..*\.body \}\}`)
)

// DiscussionWorkflows implements the discussion-workflow detector (spec
// §4.10): three independent HIGH checks over .yml/.yaml files under
// .github/workflows/.
func DiscussionWorkflows(root string) []types.Finding {
	var out []types.Finding

	for _, path := range walk.Files(root, "yml", "yaml") {
		if !inWorkflowsDir(path) {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		content := string(raw)
		norm := pathnorm.Normalize(path)
		name := baseName(path)

		if discussionTriggerRe.MatchString(content) {
			out = append(out, types.NewFinding(norm,
				"Discussion trigger detected (enables arbitrary command execution)", types.High, "discussion_workflows"))
		}
		if selfHostedRunnerRe.MatchString(content) && dynamicPayloadRe.MatchString(content) {
			out = append(out, types.NewFinding(norm,
				"Self-hosted runner with dynamic payload execution (high risk)", types.High, "discussion_workflows"))
		}
		if name == "discussion.yml" || name == "discussion.yaml" {
			out = append(out, types.NewFinding(norm,
				"Suspicious discussion workflow filename (matches Koi.ai IOC)", types.High, "discussion_workflows"))
		}
	}

	return out
}

// SHA1HuludRunners implements the SHA1HULUD-runner detector (spec §4.10):
// any YAML workflow file referencing "sha1hulud" case-insensitively.
func SHA1HuludRunners(root string) []types.Finding {
	var out []types.Finding

	for _, path := range walk.Files(root, "yml", "yaml") {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(raw)), "sha1hulud") {
			out = append(out, types.NewFinding(pathnorm.Normalize(path),
				"GitHub Actions workflow contains SHA1HULUD runner references", types.High, "github_sha1hulud_runners"))
		}
	}

	return out
}

// preinstallBunVariants are the flexible-whitespace JSON renderings of the
// malicious preinstall script value the November 2025 attack injects.
var preinstallBunVariants = []string{
	`"preinstall":"node setup_bun.js"`,
	`"preinstall": "node setup_bun.js"`,
	`"preinstall" : "node setup_bun.js"`,
}

// PreinstallBun implements the preinstall-Bun detector (spec §4.10): a
// package.json whose raw text contains one of the exact preinstall-value
// renderings above.
func PreinstallBun(root string) []types.Finding {
	var out []types.Finding

	for _, path := range walk.FilesNamed(root, "package.json") {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		content := string(raw)
		if !strings.Contains(content, `"preinstall"`) || !strings.Contains(content, "setup_bun.js") {
			continue
		}
		for _, variant := range preinstallBunVariants {
			if strings.Contains(content, variant) {
				out = append(out, types.NewFinding(pathnorm.Normalize(path),
					"Malicious preinstall script: fake Bun runtime installation (November 2025 attack)",
					types.High, "preinstall_bun_patterns"))
				break
			}
		}
	}

	return out
}
