// Package server exposes the scanner over MCP, for agent-driven callers
// that want scan/check/status tools instead of the CLI.
package server

import (
	"context"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/seanhalberthal/shaihulud-scan/internal/aggregate"
	"github.com/seanhalberthal/shaihulud-scan/internal/ioc"
	"github.com/seanhalberthal/shaihulud-scan/internal/iocsource"
	"github.com/seanhalberthal/shaihulud-scan/internal/scanner"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

// scan holds the scanner instance for tool handlers.
var scan *scanner.Scanner

// Run starts the MCP server with the given scanner.
func Run(s *scanner.Scanner) {
	scan = s

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "shaihulud-scan",
			Version: types.Version,
		},
		nil,
	)

	registerTools(server)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "shaihulud_status",
		Description: "Get scanner version and the size of the built-in IOC tables",
	}, handleStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "shaihulud_scan",
		Description: "Scan a project directory for Shai-Hulud supply-chain compromise indicators",
	}, handleScan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "shaihulud_check",
		Description: "Check a single package@version against the known-compromised package table",
	}, handleCheck)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "shaihulud_refresh",
		Description: "Fetch the latest compromised-package table from DataDog's IOC feed and cache it locally",
	}, handleRefresh)
}

// Tool input/output types

type StatusInput struct{}

type StatusOutput struct {
	Version                   string `json:"version"`
	MaliciousHashCount        int    `json:"malicious_hash_count"`
	CompromisedPackageCount   int    `json:"compromised_package_count"`
	CompromisedNamespaceCount int    `json:"compromised_namespace_count"`
}

type ScanInput struct {
	Path              string `json:"path" jsonschema:"description=Path to the project directory to scan"`
	Paranoid          bool   `json:"paranoid,omitempty" jsonschema:"description=Enable typosquatting and network-exfiltration checks"`
	Verify            bool   `json:"verify,omitempty" jsonschema:"description=Attach lockfile/runtime verification to findings"`
	CheckSemverRanges bool   `json:"check_semver_ranges,omitempty" jsonschema:"description=Flag semver ranges that could resolve to a compromised version"`
}

type ScanOutput struct {
	aggregate.ScanResults
}

type CheckInput struct {
	Package string `json:"package" jsonschema:"description=Package name to check"`
	Version string `json:"version" jsonschema:"description=Package version to check"`
}

type CheckOutput struct {
	types.Verification
}

type RefreshInput struct {
	Force bool `json:"force,omitempty" jsonschema:"description=Refresh even if the local cache is still fresh"`
}

type RefreshOutput struct {
	Updated       bool `json:"updated"`
	PackageCount  int  `json:"package_count"`
	CacheAgeHours int  `json:"cache_age_hours"`
}

// Tool handlers

func handleStatus(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[StatusInput]) (*mcp.CallToolResultFor[StatusOutput], error) {
	status := StatusOutput{
		Version:                   types.Version,
		MaliciousHashCount:        len(ioc.MaliciousHashes),
		CompromisedPackageCount:   len(ioc.EmbeddedFallbackPackages()),
		CompromisedNamespaceCount: len(ioc.CompromisedNamespaces),
	}

	return &mcp.CallToolResultFor[StatusOutput]{StructuredContent: status}, nil
}

func handleScan(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[ScanInput]) (*mcp.CallToolResultFor[ScanOutput], error) {
	input := params.Arguments
	if input.Path == "" {
		return &mcp.CallToolResultFor[ScanOutput]{IsError: true}, fmt.Errorf("path is required")
	}

	result, err := scan.Scan(ctx, input.Path, scanner.Options{
		Paranoid:          input.Paranoid,
		Verify:            input.Verify,
		CheckSemverRanges: input.CheckSemverRanges,
	})
	if err != nil {
		return &mcp.CallToolResultFor[ScanOutput]{IsError: true}, err
	}

	return &mcp.CallToolResultFor[ScanOutput]{StructuredContent: ScanOutput{ScanResults: result}}, nil
}

func handleCheck(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[CheckInput]) (*mcp.CallToolResultFor[CheckOutput], error) {
	input := params.Arguments
	if input.Package == "" {
		return &mcp.CallToolResultFor[CheckOutput]{IsError: true}, fmt.Errorf("package is required")
	}
	if input.Version == "" {
		return &mcp.CallToolResultFor[CheckOutput]{IsError: true}, fmt.Errorf("version is required")
	}

	verification := scan.CheckPackage(input.Package, input.Version, nil)

	return &mcp.CallToolResultFor[CheckOutput]{StructuredContent: CheckOutput{Verification: verification}}, nil
}

func handleRefresh(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[RefreshInput]) (*mcp.CallToolResultFor[RefreshOutput], error) {
	_, info, err := iocsource.New().Refresh(ctx, params.Arguments.Force)
	if err != nil {
		return &mcp.CallToolResultFor[RefreshOutput]{IsError: true}, err
	}

	return &mcp.CallToolResultFor[RefreshOutput]{StructuredContent: RefreshOutput{
		Updated:       info.Updated,
		PackageCount:  info.PackageCount,
		CacheAgeHours: info.CacheAgeHours,
	}}, nil
}
