package detect

import (
	"fmt"
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/hashutil"
	"github.com/seanhalberthal/shaihulud-scan/internal/ioc"
	"github.com/seanhalberthal/shaihulud-scan/internal/manifest"
	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

// suspiciousPostinstallCommands is the ordered substring set from spec §4.7.
var suspiciousPostinstallCommands = []string{"curl", "wget", "node -e", "eval"}

// PostinstallHooks implements the postinstall-hook detector (spec §4.7).
// When verify is true, a matching manifest's file hash is checked against
// the reviewed-artifact whitelist and a Verified status attached on a hit.
func PostinstallHooks(root string, verify bool, cache *hashutil.Cache) []types.Finding {
	var out []types.Finding

	for _, path := range walk.Files(root, "json") {
		if baseName(path) != "package.json" {
			continue
		}
		m, err := manifest.Parse(path)
		if err != nil {
			continue
		}
		cmd, ok := m.Scripts["postinstall"]
		if !ok {
			continue
		}
		if !containsAny(cmd, suspiciousPostinstallCommands) {
			continue
		}

		f := types.NewFinding(pathnorm.Normalize(path),
			fmt.Sprintf("Suspicious postinstall: %s", cmd), types.High, "postinstall_hook")

		if verify {
			if hex, err := cache.HashFile(path); err == nil {
				if vf, ok := ioc.VerifiedFileByHash(hex); ok {
					f.Verification = &types.Verification{
						Status:     types.StatusVerified,
						Reason:     fmt.Sprintf("%s (reviewed by %s on %s)", vf.Reason, vf.ReviewedBy, vf.ReviewedDate),
						Confidence: "High",
						Method:     types.MethodCodePatternAnalysis,
					}
				}
			}
		}

		out = append(out, f)
	}

	return out
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
