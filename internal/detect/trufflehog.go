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
	trufflehogDownloadRe       = regexp.MustCompile(`curl.*trufflehog|wget.*trufflehog|bunExecutable.*trufflehog|download.*trufflehog`)
	trufflehogCredentialScanRe = regexp.MustCompile(`TruffleHog.*scan.*credential|trufflehog.*env|trufflehog.*AWS|trufflehog.*NPM_TOKEN`)
	credentialExfiltrationRe   = regexp.MustCompile(`(AWS_ACCESS_KEY|GITHUB_TOKEN|NPM_TOKEN).*(webhook\.site|curl|https\.request)`)
	credentialPatternsRe       = regexp.MustCompile(`AWS_ACCESS_KEY|GITHUB_TOKEN|NPM_TOKEN`)
	envSuspiciousRe            = regexp.MustCompile(`(process\.env|os\.environ|getenv).*(scan|harvest|steal|exfiltrat)`)
)

// Trufflehog implements the trufflehog-activity detector (spec §4.8.3):
// filename match is policy A, HIGH content rules are policy A, MEDIUM/LOW
// content rules are policy B (skip files already flagged within this
// detector).
func Trufflehog(root string) []types.Finding {
	var out []types.Finding
	flagged := make(map[string]bool)

	files := walk.Files(root, "js", "py", "sh", "json", "ts")

	for _, path := range files {
		norm := pathnorm.Normalize(path)
		if strings.Contains(strings.ToLower(baseName(path)), "trufflehog") {
			out = append(out, types.NewFinding(norm, "Trufflehog binary found", types.High, "trufflehog_binary"))
			flagged[norm] = true
		}
	}

	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		content := string(raw)
		norm := pathnorm.Normalize(path)

		if trufflehogDownloadRe.MatchString(content) {
			out = append(out, types.NewFinding(norm, "Dynamic TruffleHog download via curl/wget/Bun", types.High, "trufflehog_download"))
			flagged[norm] = true
		}
		if trufflehogCredentialScanRe.MatchString(content) {
			out = append(out, types.NewFinding(norm, "Automated TruffleHog credential scanning detected", types.High, "trufflehog_credential_scan"))
			flagged[norm] = true
		}
		if credentialExfiltrationRe.MatchString(content) && !excludedPath(norm, "node_modules/") && !strings.HasSuffix(norm, ".d.ts") {
			out = append(out, types.NewFinding(norm, "Credential patterns with potential exfiltration", types.High, "credential_exfiltration"))
			flagged[norm] = true
		}

		if flagged[norm] {
			continue
		}

		if strings.Contains(strings.ToLower(content), "trufflehog") &&
			!excludedPath(norm, "node_modules/") && !excludedPath(norm, "docs/") &&
			!strings.HasSuffix(norm, ".md") && !strings.HasSuffix(norm, ".d.ts") {
			out = append(out, types.NewFinding(norm, "Contains trufflehog references in source code", types.Medium, "trufflehog_reference"))
			flagged[norm] = true
			continue
		}
		if credentialPatternsRe.MatchString(content) &&
			!excludedPath(norm, "node_modules/") && !excludedPath(norm, "docs/") && !strings.HasSuffix(norm, ".d.ts") {
			out = append(out, types.NewFinding(norm, "Contains credential scanning patterns", types.Medium, "credential_patterns"))
			flagged[norm] = true
			continue
		}
		if envSuspiciousRe.MatchString(content) && !excludedPath(norm, "node_modules/") && !strings.HasSuffix(norm, ".d.ts") {
			out = append(out, types.NewFinding(norm, "Environment variable scanning for credential harvesting", types.Low, "env_suspicious"))
		}
	}

	return out
}

func excludedPath(normalizedPath, segment string) bool {
	return strings.Contains(normalizedPath, segment)
}
