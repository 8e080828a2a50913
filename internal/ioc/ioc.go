// Package ioc defines the consumer-facing indicator-of-compromise tables:
// the compromised (name, version) set, the malicious SHA-256 hash set, the
// compromised-namespace prefix list, and the verified-file hash whitelist.
//
// The network loader for the compromised-package set (internal/iocsource)
// is an opt-in collaborator, not a dependency of this package; this package
// only defines the types it must produce and an embedded minimal fallback
// table, ported from the reference scanner's last-resort list.
package ioc

import (
	"bufio"
	"strings"

	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

// MaliciousHashes is the built-in constant set of known-malicious SHA-256
// file hashes (source: Socket.dev's CrowdStrike npm supply-chain writeup).
var MaliciousHashes = map[string]bool{
	"de0e25a3e6c1e1e5998b306b7141b3dc4c0088da9d7bb47c1c00c91e6e4f85d6": true,
	"81d2a004a1bca6ef87a1caf7d0e0b355ad1764238e40ff6d1b1cb77ad4f595c3": true,
	"83a650ce44b2a9854802a7fb4c202877815274c129af49e6c2d1d5d5d55c501e": true,
	"4b2399646573bb737c4969563303d8ee2e9ddbd1b271f1ca9e35ea78062538db": true,
	"dc67467a39b70d1cd4c1f7f7a459b35058163592f4a9e8fb4dffcbba98ef210c": true,
	"46faab8ab153fae6e80e7cca38eab363075bb524edd79e42269217a083628f09": true,
	"b74caeaa75e077c99f7d44f46daaf9796a3be43ecf24f2a1fd381844669da777": true,
	"86532ed94c5804e1ca32fa67257e1bb9de628e3e48a1f56e67042dc055effb5b": true,
	"aba1fcbd15c6ba6d9b96e34cec287660fff4a31632bf76f2a766c499f55ca1ee": true,
}

// CompromisedNamespaces are package-scope prefixes historically associated
// with compromise; presence of any dependency in one of these scopes is
// reported as a LOW namespace warning regardless of version.
var CompromisedNamespaces = []string{
	"@crowdstrike",
	"@art-ws",
	"@ngx",
	"@ctrl",
	"@nativescript-community",
	"@ahmedhfarag",
	"@operato",
	"@teselagen",
	"@things-factory",
	"@hestjs",
	"@nstudio",
	"@basic-ui-components-stc",
	"@nexe",
	"@thangved",
	"@tnf-dev",
	"@ui-ux-gang",
	"@yoobic",
}

// VerifiedFile is a single entry in the reviewed-artifact whitelist: a
// SHA-256 hash known to belong to a manually reviewed, benign file.
type VerifiedFile struct {
	Hash         string
	Path         string
	Package      string
	Reason       string
	ReviewedBy   string
	ReviewedDate string
}

// VerifiedFiles is the compile-time whitelist consulted by the verification
// layer (spec §4.9) when checking a file's hash against known-safe content.
var VerifiedFiles = []VerifiedFile{
	{"ce2f8852444caccee5a19008a7582cc3bd072c39fa6008edac3ad4e489f02d5e", "error-ex/index.js", "error-ex@1.3.4", "Error message manipulation utility - extracts error properties safely", "ai-agent", "2025-10-18"},
	{"85378d9a0f6e2bd60b2cf2228ac75b8004fac78582eebcd0dc9f9161f25666dc", "parse-json/index.js", "parse-json@7.1.1", "JSON parser with better error messages - no network or file system access", "ai-agent", "2025-10-18"},
	{"c5bb23b3ca69e97ddefdb76724b1a7936ac18b5e47c3fe3c5391969d6e6d06f8", "strip-ansi/index.js", "strip-ansi@7.1.2", "ANSI escape code stripping utility - removes terminal color codes safely", "ai-agent", "2025-10-18"},
	{"4508758772b1f52850b576ca714bbfd6edb05f8d36492ceab573db47f5cd7d84", "string-width/index.js", "string-width@5.1.2", "Calculates display width of strings - no network or file system access", "ai-agent", "2025-10-18"},
	{"6e3e10026230a33197e56422a2d95fc1815528c0bde7c1c790fd1a733b04bd39", "unist-util-visit-parents/index.js", "unist-util-visit-parents@6.0.1", "Abstract syntax tree visitor utility - no network or file system access", "ai-agent", "2025-10-18"},
	{"10361ec7e4678874114103e47caa1c8ef1cffc78e0efce5088e081a26fe6e977", "wrap-ansi/index.js", "wrap-ansi@8.1.0", "Text wrapping utility for ANSI escape codes - no network or file system access", "ai-agent", "2025-10-18"},
	{"2dd3014e8ce92317dfd819fc678217d8fdf47086a4607cc49566f0dee02b832a", "markdown-table/index.js", "markdown-table@3.0.4", "Markdown table generation utility - no network or file system access", "ai-agent", "2025-10-18"},
	{"a5dc0fe8f78d02ddf6554e75bab527612c047b80610128fa721287f71187fd7d", "formdata-polyfill/FormData.js", "formdata-polyfill@4.0.10", "FormData polyfill for IE compatibility - wraps XMLHttpRequest for FormData support only", "ai-agent", "2025-10-18"},
	{"697a9732b7e7c2ea771298fe0020dd80797b280a3ce528a5d3044c89f891f1d4", "formdata-polyfill/formdata.min.js", "formdata-polyfill@4.0.10", "FormData polyfill minified - IE compatibility wrapper, no network exfiltration", "ai-agent", "2025-10-18"},
}

// VerifiedFileByHash returns the whitelist entry for hash, if any.
func VerifiedFileByHash(hash string) (VerifiedFile, bool) {
	for _, f := range VerifiedFiles {
		if f.Hash == hash {
			return f, true
		}
	}
	return VerifiedFile{}, false
}

// embeddedFallback is the last-resort compromised-package list used when the
// external loader (out of scope) has no other source.
var embeddedFallback = []string{
	"@ctrl/tinycolor:4.1.0",
	"@ctrl/tinycolor:4.1.1",
	"@ctrl/tinycolor:4.1.2",
	"@ctrl/deluge:1.2.0",
	"angulartics2:14.1.2",
	"koa2-swagger-ui:5.11.1",
	"koa2-swagger-ui:5.11.2",
}

// ParseCompromisedPackages parses the IOC database text format (spec §6):
// one non-blank, non-# line per entry, each "<name>:<version>". Trailing
// carriage returns are tolerated.
func ParseCompromisedPackages(text string) map[types.CompromisedPackage]bool {
	set := make(map[types.CompromisedPackage]bool)
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		addCompromisedLine(set, scanner.Text())
	}
	return set
}

func addCompromisedLine(set map[types.CompromisedPackage]bool, line string) {
	line = strings.TrimRight(line, "\r")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return
	}
	set[types.CompromisedPackage{Name: parts[0], Version: parts[1]}] = true
}

// EmbeddedFallbackPackages returns the minimal built-in compromised-package
// set used when no external IOC source is available.
func EmbeddedFallbackPackages() map[types.CompromisedPackage]bool {
	return ParseCompromisedPackages(strings.Join(embeddedFallback, "\n"))
}
