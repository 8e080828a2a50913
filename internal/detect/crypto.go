package detect

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/hashutil"
	"github.com/seanhalberthal/shaihulud-scan/internal/ioc"
	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

var (
	ethWalletRe       = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)
	knownWalletsRe    = regexp.MustCompile(`0xFc4a4858bafef54D1b1d7697bfb5c52F4c166976|1H13VnQJKtT4HjD5ZFKaaiZEetMbG7nDHx|TB9emsCq6fQw6wRk4HBxxNnU6Hwt1DnV67`)
	maliciousFuncsRe  = regexp.MustCompile(`checkethereumw|runmask|newdlocal|_0x19ca67`)
	frameworkPathSubs = []string{
		"/node_modules/react-native/Libraries/Network/",
		`\node_modules\react-native\Libraries\Network\`,
		"/node_modules/next/dist/compiled/",
		`\node_modules\next\dist\compiled\`,
	}
)

// Crypto implements the cryptocurrency-theft detector (spec §4.8.2): an
// ordered rule list applied per js/ts/json file, policy A for rules 1-5 and
// policy A-with-skip for rule 6 (the Ethereum-wallet-pattern rule skips any
// file already flagged by an earlier rule in this detector).
func Crypto(root string, verify bool, cache *hashutil.Cache) []types.Finding {
	var out []types.Finding

	for _, path := range walk.Files(root, "js", "ts", "json") {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		content := string(raw)
		norm := pathnorm.Normalize(path)
		flagged := false

		if maliciousFuncsRe.MatchString(content) {
			out = append(out, types.NewFinding(norm, "Known crypto theft function names detected", types.High, "crypto_malicious_functions"))
			flagged = true
		}
		if knownWalletsRe.MatchString(content) {
			out = append(out, types.NewFinding(norm, "Known attacker wallet address detected - HIGH RISK", types.High, "crypto_attacker_wallet"))
			flagged = true
		}
		if strings.Contains(content, "npmjs.help") {
			out = append(out, types.NewFinding(norm, "Phishing domain npmjs.help detected", types.Medium, "crypto_phishing"))
			flagged = true
		}
		if xhr := cryptoXHRFinding(path, norm, content, verify, cache); xhr != nil {
			out = append(out, *xhr)
			flagged = true
		}
		if strings.Contains(content, "javascript-obfuscator") {
			out = append(out, types.NewFinding(norm, "JavaScript obfuscation detected", types.Medium, "crypto_obfuscation"))
			flagged = true
		}

		if flagged {
			continue
		}
		if ethWalletRe.MatchString(content) && hasCryptoKeyword(content) {
			out = append(out, types.NewFinding(norm, "Ethereum wallet address patterns detected", types.Medium, "crypto_wallet_pattern"))
		}
	}

	return out
}

func hasCryptoKeyword(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range []string{"ethereum", "wallet", "address", "crypto"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// cryptoXHRFinding classifies an XMLHttpRequest.prototype.send hijack per
// spec §4.8.2 rule 4, or returns nil if the trigger string is absent.
func cryptoXHRFinding(path, norm, content string, verify bool, cache *hashutil.Cache) *types.Finding {
	if !strings.Contains(content, "XMLHttpRequest.prototype.send") {
		return nil
	}

	framework := false
	for _, sub := range frameworkPathSubs {
		if strings.Contains(path, sub) || strings.Contains(norm, sub) {
			framework = true
			break
		}
	}
	hasCrypto := knownWalletsRe.MatchString(content) ||
		strings.Contains(content, "checkethereumw") ||
		strings.Contains(content, "runmask") ||
		strings.Contains(content, "webhook.site") ||
		strings.Contains(content, "npmjs.help")

	switch {
	case framework && hasCrypto:
		f := types.NewFinding(norm, "XMLHttpRequest prototype modification with crypto patterns detected - HIGH RISK", types.High, "crypto_xhr_hijack")
		return &f
	case framework && !hasCrypto:
		f := types.NewFinding("Crypto pattern",
			fmt.Sprintf("%s:XMLHttpRequest prototype modification detected in framework code - LOW RISK", norm),
			types.Low, "crypto_xhr_framework")
		return &f
	case !framework && hasCrypto:
		f := types.NewFinding(norm, "XMLHttpRequest prototype modification with crypto patterns detected - HIGH RISK", types.High, "crypto_xhr_hijack")
		return &f
	default:
		f := types.NewFinding(norm, "XMLHttpRequest prototype modification detected - MEDIUM RISK", types.Medium, "crypto_xhr_simple")
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
		return &f
	}
}
