package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/nox-hq/ctrlmatrix/core/generate"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
	"github.com/nox-hq/ctrlmatrix/core/requirements"
)

// runGenerate implements the "ctrlmatrix generate" command.
func runGenerate(g *globals, args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)

	var (
		prr       string
		output    string
		overwrite bool
	)

	fs.StringVar(&prr, "prr", "", "path to the PRR requirements document")
	fs.StringVar(&output, "output", "", "output CSV file for the control matrix")
	fs.BoolVar(&overwrite, "overwrite", false, "overwrite an existing output file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if prr == "" || output == "" {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix generate --prr <file> --output <file> [--overwrite]")
		return 2
	}

	text, err := requirements.ReadFile(prr)
	if err != nil {
		return reportError(err)
	}

	if _, err := os.Stat(output); err == nil && !overwrite {
		fmt.Fprintf(os.Stderr, "error: output file already exists: %s\n", output)
		fmt.Fprintln(os.Stderr, "Use --overwrite to replace existing file")
		return 2
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return reportError(err)
	}

	entries := generate.FromDocument(text)
	g.logger.Info("parsed requirements", "path", prr, "count", len(entries))
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "error: no requirements found to generate control matrix")
		return 1
	}

	if err := matrix.Save(output, entries); err != nil {
		return reportError(err)
	}
	g.printf("Generated control matrix with %d entries: %s\n", len(entries), output)
	return 0
}

// runExtract implements the "ctrlmatrix extract" command.
func runExtract(g *globals, args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)

	var (
		prr        string
		jsonOutput bool
	)

	fs.StringVar(&prr, "prr", "", "path to the PRR requirements document")
	fs.BoolVar(&jsonOutput, "json", false, "output as JSON")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if prr == "" {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix extract --prr <file> [--json]")
		return 2
	}

	reqs, err := requirements.ExtractFile(prr)
	if err != nil {
		return reportError(err)
	}
	ids := reqs.Sorted()

	if jsonOutput {
		data, err := json.MarshalIndent(struct {
			Path           string   `json:"path"`
			Count          int      `json:"count"`
			RequirementIDs []string `json:"requirement_ids"`
		}{prr, len(ids), ids}, "", "  ")
		if err != nil {
			return reportError(err)
		}
		fmt.Println(string(data))
		return 0
	}

	g.printf("Extracted %d requirements from %s\n", len(ids), prr)
	for _, id := range ids {
		fmt.Println(id)
	}
	return 0
}
