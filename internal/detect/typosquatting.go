package detect

import (
	"fmt"
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/manifest"
	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

var popularPackages = []string{
	"react", "vue", "angular", "express", "lodash", "axios", "typescript",
	"webpack", "babel", "eslint", "jest", "mocha", "chalk", "debug",
	"commander", "inquirer", "yargs", "request", "moment", "underscore",
	"jquery", "bootstrap", "socket.io", "redis", "mongoose", "passport",
}

var legitimateShortNames = map[string]bool{
	"test": true, "tests": true, "testing": true, "types": true, "util": true,
	"utils": true, "core": true, "lib": true, "libs": true, "common": true, "shared": true,
}

var confusableDigraphs = []string{"rn", "vv", "cl", "ii", "nn", "oo"}

var suspiciousNamespaces = []string{"@types", "@angular", "@typescript", "@react", "@vue", "@babel"}

// Typosquatting implements the typosquatting detector (spec §4.12). It is
// gated by paranoid mode at the caller.
func Typosquatting(root string) []types.Finding {
	var out []types.Finding

	for _, path := range walk.FilesNamed(root, "package.json") {
		m, err := manifest.Parse(path)
		if err != nil {
			continue
		}
		norm := pathnorm.Normalize(path)
		for _, section := range m.DependencySections() {
			out = append(out, typosquattingForSection(norm, section)...)
		}
	}

	return out
}

func typosquattingForSection(norm string, section map[string]string) []types.Finding {
	var out []types.Finding
	for name := range section {
		if len(name) < 2 || !hasAlpha(name) {
			continue
		}

		if hasHomoglyph(name) {
			out = append(out, types.NewFinding(norm,
				fmt.Sprintf("Potential Unicode/homoglyph characters in package: %s", name), types.Medium, "typosquatting"))
		}

		for _, pat := range confusableDigraphs {
			if strings.Contains(name, pat) {
				out = append(out, types.NewFinding(norm,
					fmt.Sprintf("Potential typosquatting pattern '%s' in package: %s", pat, name), types.Medium, "typosquatting"))
				break
			}
		}

		out = append(out, similarToPopular(norm, name)...)
		out = append(out, namespaceVariation(norm, name)...)
	}
	return out
}

func hasAlpha(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func hasHomoglyph(name string) bool {
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '@' || r == '/' || r == '.' || r == '_' || r == '-' {
			continue
		}
		return true
	}
	return false
}

func similarToPopular(norm, name string) []types.Finding {
	if legitimateShortNames[name] {
		return nil
	}
	var out []types.Finding
	for _, popular := range popularPackages {
		if name == popular {
			continue
		}

		if len(name) == len(popular) && len(name) > 4 && !strings.Contains(name, "-") && !strings.Contains(popular, "-") {
			if diffCount([]rune(name), []rune(popular)) == 1 {
				out = append(out, types.NewFinding(norm,
					fmt.Sprintf("Potential typosquatting of '%s': %s (1 character difference)", popular, name), types.Medium, "typosquatting"))
			}
		}

		if len(name) == len(popular)-1 && isMissingOneChar(name, popular) {
			out = append(out, types.NewFinding(norm,
				fmt.Sprintf("Potential typosquatting of '%s': %s (missing character)", popular, name), types.Medium, "typosquatting"))
		}

		if len([]rune(name)) == len([]rune(popular))+1 && isExtraOneChar(name, popular) {
			out = append(out, types.NewFinding(norm,
				fmt.Sprintf("Potential typosquatting of '%s': %s (extra character)", popular, name), types.Medium, "typosquatting"))
		}
	}
	return out
}

func diffCount(a, b []rune) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}

// isMissingOneChar reports whether name equals popular with exactly one
// character deleted.
func isMissingOneChar(name, popular string) bool {
	for i := 0; i <= len(popular); i++ {
		candidate := popular[:i] + skipOne(popular, i)
		if name == candidate {
			return true
		}
	}
	return false
}

func skipOne(s string, i int) string {
	if i >= len(s) {
		return ""
	}
	return s[i+1:]
}

// isExtraOneChar reports whether popular equals name with exactly one
// character deleted (i.e. name has one extra rune vs popular).
func isExtraOneChar(name, popular string) bool {
	runes := []rune(name)
	for i := range runes {
		candidate := string(runes[:i]) + string(runes[i+1:])
		if candidate == popular {
			return true
		}
	}
	return false
}

func namespaceVariation(norm, name string) []types.Finding {
	if !strings.HasPrefix(name, "@") {
		return nil
	}
	slash := strings.Index(name, "/")
	if slash == -1 {
		return nil
	}
	namespace := name[:slash]

	var out []types.Finding
	for _, suspicious := range suspiciousNamespaces {
		if namespace == suspicious {
			continue
		}
		nsClean, susClean := namespace[1:], suspicious[1:]
		if len(nsClean) != len(susClean) {
			continue
		}
		diff := diffCount([]rune(nsClean), []rune(susClean))
		if diff >= 1 && diff <= 2 {
			out = append(out, types.NewFinding(norm,
				fmt.Sprintf("Suspicious namespace variation: %s (similar to %s)", namespace, suspicious), types.Medium, "typosquatting"))
		}
	}
	return out
}
