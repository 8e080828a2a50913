package detect

import (
	"os"
	"regexp"

	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

// basicDestructivePatterns target deletion commands aimed at a user's home
// directory, regardless of script language.
var basicDestructivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`rm -rf\s+(\$HOME|~[^a-zA-Z0-9_/]|/home/)`),
	regexp.MustCompile(`del /s /q\s+(%USERPROFILE%|\$HOME)`),
	regexp.MustCompile(`Remove-Item -Recurse\s+(\$HOME|~[^a-zA-Z0-9_/])`),
	regexp.MustCompile(`find\s+(\$HOME|~[^a-zA-Z0-9_/]|/home/).*-exec rm`),
	regexp.MustCompile(`find\s+(\$HOME|~[^a-zA-Z0-9_/]|/home/).*-delete`),
}

// shaiHuludWiperPatterns are the tight Shai-Hulud 2.0 wiper signatures
// (spec §9 adopts this tighter set over the broader historical variant).
var shaiHuludWiperPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Bun\.spawnSync.{1,50}(cmd\.exe|bash).{1,100}(del /F|shred|cipher /W)`),
	regexp.MustCompile(`shred.{1,30}-[nuvz].{1,50}(\$HOME|~/)`),
	regexp.MustCompile(`cipher\s*/W:.{0,30}USERPROFILE`),
	regexp.MustCompile(`del\s*/F\s*/Q\s*/S.{1,30}USERPROFILE`),
	regexp.MustCompile(`find.{1,30}\$HOME.{1,50}shred`),
	regexp.MustCompile(`rd\s*/S\s*/Q.{1,30}USERPROFILE`),
}

var conditionalShellPatterns = []*regexp.Regexp{
	regexp.MustCompile(`if.*credential.*(fail|error).*rm`),
	regexp.MustCompile(`if.*token.*not.*found.*(delete|rm)`),
	regexp.MustCompile(`if.*github.*auth.*fail.*rm`),
	regexp.MustCompile(`catch.*rm -rf`),
	regexp.MustCompile(`error.*delete.*home`),
}

const destructivePatternsFileCap = 100

// DestructivePatterns implements the destructive-patterns detector (spec
// §4.10): at most one "basic" and one "conditional" HIGH finding per file,
// capped at 100 files per extension.
func DestructivePatterns(root string) []types.Finding {
	var out []types.Finding

	for _, ext := range []string{"js", "sh", "ps1", "py", "bat", "cmd"} {
		files := walk.Files(root, ext)
		if len(files) > destructivePatternsFileCap {
			files = files[:destructivePatternsFileCap]
		}
		for _, path := range files {
			out = append(out, destructivePatternsForFile(path, ext)...)
		}
	}

	return out
}

func destructivePatternsForFile(path, ext string) []types.Finding {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	content := string(raw)
	norm := pathnorm.Normalize(path)

	var out []types.Finding
	if matchesAny(basicDestructivePatterns, content) {
		out = append(out, types.NewFinding(norm, "Basic destructive pattern detected", types.High, "destructive_patterns"))
	}

	var conditional bool
	switch ext {
	case "sh", "bat", "ps1", "cmd":
		conditional = matchesAny(conditionalShellPatterns, content)
	case "js", "py":
		conditional = matchesAny(shaiHuludWiperPatterns, content)
	}
	if conditional {
		message := "Shai-Hulud wiper pattern detected"
		if ext == "js" || ext == "py" {
			message += " (JS/Python context)"
		}
		out = append(out, types.NewFinding(norm, message, types.High, "destructive_patterns"))
	}

	return out
}

func matchesAny(patterns []*regexp.Regexp, content string) bool {
	for _, re := range patterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}
