package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/badge"
	"github.com/nox-hq/ctrlmatrix/core/compliance"
)

// runBadge implements the "ctrlmatrix badge" command.
func runBadge(g *globals, args []string) int {
	fs := flag.NewFlagSet("badge", flag.ContinueOnError)

	var (
		prr        string
		matrixPath string
		output     string
		label      string
		frameworks bool
	)

	fs.StringVar(&prr, "prr", "", "path to the PRR requirements document")
	fs.StringVar(&matrixPath, "matrix", "", "path to the control matrix CSV")
	fs.StringVar(&output, "output", "ctrlmatrix-badge.svg", "output SVG file path")
	fs.StringVar(&label, "label", "ctrl coverage", "badge label text")
	fs.BoolVar(&frameworks, "frameworks", false, "also write one badge per compliance framework")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if prr == "" || matrixPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix badge --prr <file> --matrix <file> [--output <svg>]")
		return 2
	}

	opts, err := g.options()
	if err != nil {
		return reportError(err)
	}
	result, err := core.Validate(context.Background(), prr, matrixPath, opts)
	if err != nil {
		return reportError(err)
	}

	b := badge.GenerateFromCoverage(result.CoverageStats[core.StatCoveragePercentage], len(result.Errors), label)
	if err := writeBadge(output, b.SVG); err != nil {
		return reportError(err)
	}
	g.printf("[badge] wrote %s (%s: %s, grade %s)\n", output, label, b.Value, b.Grade)

	if !frameworks || result.Compliance == nil {
		return 0
	}
	byFramework := badge.FrameworkBadges(result.Compliance.Frameworks, label)
	ids := make([]string, 0, len(byFramework))
	for id := range byFramework {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		fb := byFramework[compliance.FrameworkID(id)]
		path := frameworkBadgePath(output, id)
		if err := writeBadge(path, fb.SVG); err != nil {
			return reportError(err)
		}
		g.printf("[badge] wrote %s (%s: %s)\n", path, fb.Label, fb.Value)
	}
	return 0
}

// frameworkBadgePath derives "<base>-<framework>.svg" from the main badge path.
func frameworkBadgePath(output, id string) string {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = ".svg"
	}
	return base + "-" + strings.ToLower(id) + ext
}

func writeBadge(path, svg string) error {
	return writeReport(path, func(p string) error {
		return os.WriteFile(p, []byte(svg), 0o644)
	})
}
