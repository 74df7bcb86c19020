package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/compliance"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
)

// runCoverage implements the "ctrlmatrix coverage" command.
func runCoverage(g *globals, args []string) int {
	fs := flag.NewFlagSet("coverage", flag.ContinueOnError)

	var (
		matrixPath string
		framework  string
		jsonOutput bool
	)

	fs.StringVar(&matrixPath, "matrix", "", "path to the control matrix CSV")
	fs.StringVar(&framework, "framework", "", "framework to score: ISO27001, SOC2 or NISTCSF (default: all)")
	fs.BoolVar(&jsonOutput, "json", false, "output as JSON")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if matrixPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix coverage --matrix <file> [--framework <id>] [--json]")
		return 2
	}

	opts, err := g.options()
	if err != nil {
		return reportError(err)
	}
	fws := opts.Frameworks
	if framework != "" {
		fw, ok := compliance.Lookup(framework)
		if !ok {
			fmt.Fprintf(os.Stderr, "error: unknown framework: %s\n", framework)
			return 2
		}
		fws = []compliance.Framework{fw}
	}

	m, err := matrix.Load(matrixPath)
	if err != nil {
		return reportError(err)
	}
	analysis := compliance.Analyze(m.Entries, fws...)

	if jsonOutput {
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return reportError(err)
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("Compliance coverage: %s (%d entries)\n", matrixPath, len(m.Entries))
	for _, c := range analysis.Frameworks {
		fmt.Printf("  %-10s %d/%d critical controls (%.1f%%)\n",
			c.Name, len(c.CriticalMatched), c.CriticalTotal, c.Ratio*100)
		if len(c.CriticalMissing) > 0 {
			fmt.Printf("             missing: %s\n", strings.Join(c.CriticalMissing, ", "))
		}
	}
	fmt.Printf("  frameworks represented: %d\n", analysis.FrameworksRepresented)
	fmt.Printf("  mapped controls: %d (%.1f references on average)\n", analysis.MappedControls, analysis.AverageReferences)
	fmt.Printf("  traceability: %.1f%%  documentation: %.1f%%\n", analysis.Traceability*100, analysis.Documentation*100)
	if len(analysis.DomainGaps) > 0 {
		fmt.Printf("  domain gaps: %s\n", strings.Join(analysis.DomainGaps, ", "))
	}
	return 0
}
