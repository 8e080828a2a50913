// Package main implements the shaihulud-scan entry point.
package main

import (
	"flag"

	"github.com/seanhalberthal/shaihulud-scan/internal/cli"
	"github.com/seanhalberthal/shaihulud-scan/internal/scanner"
	"github.com/seanhalberthal/shaihulud-scan/internal/server"
)

func main() {
	mcpMode := flag.Bool("mcp", false, "run as an MCP server instead of scanning once from the command line")
	flag.Parse()

	scan := scanner.New()

	if *mcpMode {
		server.Run(scan)
		return
	}

	cli.Run(scan, flag.Args())
}
