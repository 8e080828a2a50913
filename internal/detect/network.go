package detect

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

var (
	ipPattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	wsRegex   = regexp.MustCompile(`wss?://[^\s"']+`)
)

// excludedIPs are literal IPv4 addresses that never count as exfiltration
// destinations: loopback, unspecified, and broadcast.
var excludedIPs = map[string]bool{"127.0.0.1": true, "0.0.0.0": true, "255.255.255.255": true}

// suspiciousDomains is the fixed, ordered policy list (spec §9) of hosting
// services historically used as dead-drop/exfiltration endpoints.
var suspiciousDomains = []string{
	"pastebin.com", "hastebin.com", "ix.io", "0x0.st", "transfer.sh",
	"file.io", "anonfiles.com", "mega.nz", "dropbox.com/s/",
	"discord.com/api/webhooks", "telegram.org", "t.me", "ngrok.io",
	"localtunnel.me", "serveo.net", "requestbin.com", "webhook.site",
	"beeceptor.com", "pipedream.com", "zapier.com/hooks",
}

var exfilHeaders = []string{"X-Exfiltrate", "X-Data-Export", "X-Credential"}

// NetworkExfiltration implements the network-exfiltration detector (spec
// §4.8.4). It is gated by paranoid mode at the caller.
func NetworkExfiltration(root string) []types.Finding {
	var out []types.Finding

	for _, path := range walk.Files(root, "js", "ts", "json", "mjs") {
		norm := pathnorm.Normalize(path)
		if strings.Contains(norm, "vendor/") || strings.Contains(norm, "node_modules/") {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		content := string(raw)

		out = append(out, networkIPFindings(norm, content)...)
		out = append(out, networkDomainFindings(norm, content)...)
		out = append(out, networkBase64Findings(norm, content)...)
		out = append(out, networkDNSFindings(norm, content)...)
		out = append(out, networkWebSocketFindings(norm, content)...)
		out = append(out, networkExfilHeaderFindings(norm, content)...)
		out = append(out, networkBtoaFindings(norm, content)...)
	}

	return out
}

func networkIPFindings(norm, content string) []types.Finding {
	var ips []string
	for _, m := range ipPattern.FindAllString(content, -1) {
		if excludedIPs[m] {
			continue
		}
		ips = append(ips, m)
		if len(ips) == 3 {
			break
		}
	}
	if len(ips) == 0 {
		return nil
	}
	msg := "Hardcoded IP addresses found: " + strings.Join(ips, ", ")
	if strings.Contains(norm, ".min.js") {
		msg = "Hardcoded IP addresses found (minified file): " + strings.Join(ips, ", ")
	}
	return []types.Finding{types.NewFinding(norm, msg, types.Medium, "network_exfiltration")}
}

func networkDomainFindings(norm, content string) []types.Finding {
	if strings.HasSuffix(norm, "package-lock.json") || strings.HasSuffix(norm, "yarn.lock") {
		return nil
	}
	var out []types.Finding
	lines := strings.Split(content, "\n")
	for _, domain := range suspiciousDomains {
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
				continue
			}
			if !strings.Contains(line, domain) {
				continue
			}
			snippet := truncateSnippet(line)
			out = append(out, types.NewFinding(norm,
				fmt.Sprintf("Suspicious domain %s found at line %d: %s", domain, i+1, snippet),
				types.Medium, "network_exfiltration"))
			break
		}
	}
	return out
}

func networkBase64Findings(norm, content string) []types.Finding {
	hasHint := strings.Contains(content, "atob(") ||
		(strings.Contains(content, "base64") && strings.Contains(content, "decode"))
	if !hasHint {
		return nil
	}
	for i, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "atob(") || (strings.Contains(line, "base64") && strings.Contains(line, "decode")) {
			return []types.Finding{types.NewFinding(norm,
				fmt.Sprintf("Base64 decoding at line %d: %s", i+1, truncateSnippet(line)),
				types.Medium, "network_exfiltration")}
		}
	}
	return nil
}

func networkDNSFindings(norm, content string) []types.Finding {
	if strings.Contains(content, "dns-query") || strings.Contains(content, "application/dns-message") {
		return []types.Finding{types.NewFinding(norm, "DNS-over-HTTPS signature detected", types.Medium, "network_exfiltration")}
	}
	return nil
}

func networkWebSocketFindings(norm, content string) []types.Finding {
	var out []types.Finding
	for _, m := range wsRegex.FindAllString(content, -1) {
		if strings.Contains(m, "localhost") || strings.Contains(m, "127.0.0.1") {
			continue
		}
		out = append(out, types.NewFinding(norm, "WebSocket connection to external endpoint: "+m, types.Medium, "network_exfiltration"))
	}
	return out
}

func networkExfilHeaderFindings(norm, content string) []types.Finding {
	var out []types.Finding
	for _, h := range exfilHeaders {
		if strings.Contains(content, h) {
			out = append(out, types.NewFinding(norm, "Exfiltration header detected: "+h, types.Medium, "network_exfiltration"))
		}
	}
	return out
}

func networkBtoaFindings(norm, content string) []types.Finding {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "btoa(") {
			continue
		}
		lo := i - 3
		if lo < 0 {
			lo = 0
		}
		hi := i + 3
		if hi > len(lines)-1 {
			hi = len(lines) - 1
		}
		window := strings.Join(lines[lo:hi+1], "\n")
		hasNetCall := strings.Contains(window, "fetch") || strings.Contains(window, "XMLHttpRequest") || strings.Contains(window, "axios")
		hasAuthHeader := strings.Contains(window, "Authorization:") || strings.Contains(window, "Basic ") || strings.Contains(window, "Bearer ")
		if hasNetCall && !hasAuthHeader {
			return []types.Finding{types.NewFinding(norm,
				"btoa() encoding near network call at line "+strconv.Itoa(i+1), types.Medium, "network_exfiltration")}
		}
	}
	return nil
}

func truncateSnippet(line string) string {
	line = strings.TrimSpace(line)
	if len(line) > 80 {
		return line[:80] + "..."
	}
	return line + "..."
}
