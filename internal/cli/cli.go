// Package cli provides the command-line interface for the scanner.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/seanhalberthal/shaihulud-scan/internal/aggregate"
	"github.com/seanhalberthal/shaihulud-scan/internal/iocsource"
	"github.com/seanhalberthal/shaihulud-scan/internal/report"
	"github.com/seanhalberthal/shaihulud-scan/internal/scanner"
)

// exitFunc is the function used to exit the program. Override in tests.
var exitFunc = os.Exit

// Run parses args as scan flags plus a positional scan directory, executes
// the scan, writes the JSON artifact (and optional --save-log file), prints
// the textual report, and exits with the graded code (spec §6).
func Run(scan *scanner.Scanner, args []string) {
	fs := flag.NewFlagSet("shaihulud-scan", flag.ContinueOnError)
	paranoid := fs.Bool("paranoid", false, "enable typosquatting and network-exfiltration checks")
	verify := fs.Bool("verify", false, "attach lockfile/runtime verification to findings")
	parallelism := fs.Int("parallelism", 4, "hash detector worker-pool size")
	checkSemverRanges := fs.Bool("check-semver-ranges", false, "flag semver ranges that could resolve to a compromised version")
	saveLog := fs.String("save-log", "", "write every finding path, grouped by risk, to FILE")
	output := fs.String("output", "scan_results.json", "path to write the JSON results artifact")
	quiet := fs.Bool("quiet", false, "suppress the progress spinner")
	refreshIOCs := fs.Bool("refresh-iocs", false, "fetch the latest compromised-package table from DataDog before scanning (requires network)")

	if err := fs.Parse(args); err != nil {
		exitFunc(2)
		return
	}
	if fs.NArg() != 1 {
		printStyledError("usage: %s [flags] <scan-directory>", fs.Name())
		exitFunc(2)
		return
	}
	dir := fs.Arg(0)

	ctx := context.Background()

	var spin *spinner.Spinner
	if !*quiet {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " scanning " + dir
		spin.Start()
	}

	opts := scanner.Options{
		Paranoid:          *paranoid,
		Verify:            *verify,
		Parallelism:       *parallelism,
		CheckSemverRanges: *checkSemverRanges,
	}

	if *refreshIOCs {
		if set, info, err := iocsource.New().Refresh(ctx, true); err == nil {
			opts.CompromisedPackages = set
			if spin != nil {
				spin.Suffix = fmt.Sprintf(" scanning %s (refreshed %d IOCs)", dir, info.PackageCount)
			}
		} else {
			printStyledError("refreshing IOC table: %v (falling back to the embedded table)", err)
		}
	}

	results, err := scan.Scan(ctx, dir, opts)

	if spin != nil {
		spin.Stop()
	}

	if err != nil {
		printStyledError("%v", err)
		exitFunc(2)
		return
	}

	if err := writeJSONArtifact(*output, results); err != nil {
		printStyledError("writing %s: %v", *output, err)
	}

	if *saveLog != "" {
		if err := writeFindingLog(*saveLog, results); err != nil {
			printStyledError("writing %s: %v", *saveLog, err)
		}
	}

	report.Render(os.Stdout, results, *paranoid)

	exitFunc(exitCode(results))
}

// exitCode grades the process exit status from the HIGH/MEDIUM counts
// (spec §6): 1 if any HIGH finding exists, 2 if none but a MEDIUM finding
// does, 0 otherwise.
func exitCode(r aggregate.ScanResults) int {
	switch {
	case r.HighCount() > 0:
		return 1
	case r.MediumCount() > 0:
		return 2
	default:
		return 0
	}
}
