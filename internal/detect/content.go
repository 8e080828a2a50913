package detect

import (
	"os"
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

// c2CallbackUUID is the command-and-control webhook identifier associated
// with the Shai-Hulud exfiltration endpoint.
const c2CallbackUUID = "bb8ca5f6-4175-45d2-b042-fc9ebb8170b7"

// Content implements the content detector (spec §4.8.1): literal matches
// for the webhook.site domain and the C2 callback UUID.
func Content(root string) []types.Finding {
	var out []types.Finding

	for _, path := range walk.Files(root, "js", "ts", "json", "yml", "yaml") {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		content := string(raw)

		if strings.Contains(content, "webhook.site") {
			out = append(out, types.NewFinding(pathnorm.Normalize(path), "webhook.site reference", types.Medium, "suspicious_content"))
		}
		if strings.Contains(content, c2CallbackUUID) {
			out = append(out, types.NewFinding(pathnorm.Normalize(path), "malicious webhook endpoint", types.Medium, "suspicious_content"))
		}
	}

	return out
}
