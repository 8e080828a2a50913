package detect

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

// GitArtifacts implements the shai_hulud_repos detector (spec §4.10): four
// independent checks per .git directory's parent (repository root).
func GitArtifacts(root string) []types.Finding {
	var out []types.Finding

	for _, gitDir := range walk.DirsNamed(root, ".git") {
		repoDir := filepath.Dir(gitDir)
		repoName := filepath.Base(repoDir)
		norm := pathnorm.Normalize(repoDir)

		if strings.Contains(strings.ToLower(repoName), "shai-hulud") {
			out = append(out, types.NewFinding(norm, "Repository name contains 'Shai-Hulud'", types.High, "shai_hulud_repos"))
		}
		if strings.Contains(repoName, "-migration") {
			out = append(out, types.NewFinding(norm, "Repository name contains migration pattern", types.High, "shai_hulud_repos"))
		}
		if raw, err := os.ReadFile(filepath.Join(gitDir, "config")); err == nil {
			if strings.Contains(strings.ToLower(string(raw)), "shai-hulud") {
				out = append(out, types.NewFinding(norm, "Git remote contains 'Shai-Hulud'", types.High, "shai_hulud_repos"))
			}
		}
		if raw, err := os.ReadFile(filepath.Join(repoDir, "data.json")); err == nil {
			content := string(raw)
			if strings.Contains(content, "eyJ") && strings.Contains(content, "==") {
				out = append(out, types.NewFinding(norm,
					"Contains suspicious data.json (possible base64-encoded credentials)", types.High, "shai_hulud_repos"))
			}
		}
	}

	return out
}

// GitBranches implements the git_branch detector (spec §4.10): every
// refs/heads entry whose name contains shai-hulud.
func GitBranches(root string) []types.Finding {
	var out []types.Finding

	for _, gitDir := range walk.DirsNamed(root, ".git") {
		repoDir := filepath.Dir(gitDir)
		refsHeads := filepath.Join(gitDir, "refs", "heads")
		entries, err := os.ReadDir(refsHeads)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if !strings.Contains(strings.ToLower(e.Name()), "shai-hulud") {
				continue
			}
			commit := ""
			if raw, err := os.ReadFile(filepath.Join(refsHeads, e.Name())); err == nil {
				commit = strings.TrimSpace(string(raw))
			}
			if len(commit) > 8 {
				commit = commit[:8]
			}
			out = append(out, types.NewFinding(pathnorm.Normalize(repoDir),
				"Branch '"+e.Name()+"' (commit: "+commit+"...)", types.Medium, "git_branch"))
		}
	}

	return out
}

// SecondComingRepos implements the "Second Coming" repository-description
// detector (spec §4.10): for each .git directory, a 5-second-bounded git
// query for repository.description.
func SecondComingRepos(root string) []types.Finding {
	var out []types.Finding

	for _, gitDir := range walk.DirsNamed(root, ".git") {
		repoDir := filepath.Dir(gitDir)
		desc := gitRepositoryDescription(repoDir)
		if strings.Contains(desc, "Sha1-Hulud: The Second Coming") {
			out = append(out, types.NewFinding(pathnorm.Normalize(repoDir),
				"Malicious repository description: 'Sha1-Hulud: The Second Coming' (November 2025 attack marker)",
				types.High, "second_coming_repos"))
		}
	}

	return out
}

func gitRepositoryDescription(repoDir string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", repoDir, "config", "--get", "--local",
		"--null", "--default", "", "repository.description")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.Trim(stdout.String(), "\x00")
}
