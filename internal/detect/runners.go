package detect

import (
	"os"
	"path/filepath"

	"github.com/seanhalberthal/shaihulud-scan/internal/hashutil"
	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

var runnerDirNames = []string{".dev-env", "actions-runner", ".runner", "_work"}

// GitHubRunners implements the github_runners detector (spec §4.10):
// flags persistent-backdoor runner installations by directory name and
// contents, plus the user home directory's .dev-env.
func GitHubRunners(root, homeDir string) []types.Finding {
	var out []types.Finding

	for _, dirName := range runnerDirNames {
		for _, dir := range walk.DirsNamed(root, dirName) {
			norm := pathnorm.Normalize(dir)

			hasConfig := exists(filepath.Join(dir, ".runner")) ||
				exists(filepath.Join(dir, ".credentials")) ||
				exists(filepath.Join(dir, "config.sh"))
			if hasConfig {
				out = append(out, types.NewFinding(norm,
					"Runner configuration files found (potential persistent backdoor)", types.High, "github_runners"))
			}

			hasBinary := exists(filepath.Join(dir, "Runner.Worker")) ||
				exists(filepath.Join(dir, "run.sh")) ||
				exists(filepath.Join(dir, "run.cmd"))
			if hasBinary {
				out = append(out, types.NewFinding(norm,
					"Runner executable files found (potential persistent backdoor)", types.High, "github_runners"))
			}

			if dirName == ".dev-env" {
				out = append(out, types.NewFinding(norm,
					"Suspicious .dev-env directory (matches Koi.ai report IOC)", types.High, "github_runners"))
			}
		}
	}

	if homeDir != "" {
		devEnv := filepath.Join(homeDir, ".dev-env")
		if info, err := os.Stat(devEnv); err == nil && info.IsDir() {
			out = append(out, types.NewFinding(pathnorm.Normalize(devEnv),
				"Malicious runner directory in home folder (Koi.ai IOC)", types.High, "github_runners"))
		}
	}

	return out
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setupBunHashes and bunEnvironmentHashes are the Koi.ai incident-report
// hash IOCs for the November 2025 Bun attack files.
var (
	setupBunHashes = map[string]bool{
		"a3894003ad1d293ba96d77881ccd2071446dc3f65f434669b49b3da92421901a": true,
	}
	bunEnvironmentHashes = map[string]bool{
		"62ee164b9b306250c1172583f138c9614139264f889fa99614903c12755468d0": true,
		"f099c5d9ec417d4445a0328ac0ada9cde79fc37410914103ae9c609cbc0ee068": true,
		"cbb9bc5a8496243e02f3cc080efbe3e4a1430ba0671f2e43a202bf45b05479cd": true,
	}
)

// BunAttackFiles implements the Bun-attack-file detector (spec §4.10):
// setup_bun.js and bun_environment.js are flagged HIGH whether or not their
// hash matches the known-malicious IOC set, with a more specific message on
// a hash hit.
func BunAttackFiles(root string, cache *hashutil.Cache) []types.Finding {
	var out []types.Finding

	for _, path := range walk.FilesNamed(root, "setup_bun.js") {
		norm := pathnorm.Normalize(path)
		if hex, err := cache.HashFile(path); err == nil && setupBunHashes[hex] {
			out = append(out, types.NewFinding(norm, "SHA256="+hex+" (CONFIRMED MALICIOUS - Koi.ai IOC)", types.High, "bun_setup_files"))
		} else {
			out = append(out, types.NewFinding(norm, "setup_bun.js - Fake Bun runtime installation malware", types.High, "bun_setup_files"))
		}
	}

	for _, path := range walk.FilesNamed(root, "bun_environment.js") {
		norm := pathnorm.Normalize(path)
		if hex, err := cache.HashFile(path); err == nil && bunEnvironmentHashes[hex] {
			out = append(out, types.NewFinding(norm, "SHA256="+hex+" (CONFIRMED MALICIOUS - Koi.ai IOC)", types.High, "bun_environment_files"))
		} else {
			out = append(out, types.NewFinding(norm, "bun_environment.js - 10MB+ obfuscated credential harvesting payload", types.High, "bun_environment_files"))
		}
	}

	return out
}
