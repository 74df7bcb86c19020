package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nox-hq/ctrlmatrix/cli/tui"
	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/matrix"

	"golang.org/x/term"
)

// issueDetail is an issue enriched with its catalog entry and matrix row.
type issueDetail struct {
	issues.Issue
	Title       string        `json:"title,omitempty"`
	Component   string        `json:"component,omitempty"`
	Remediation string        `json:"remediation,omitempty"`
	Entry       *matrix.Entry `json:"entry,omitempty"`
}

// runShow implements the "ctrlmatrix show" command.
func runShow(g *globals, args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)

	var (
		prr         string
		matrixPath  string
		levels      string
		codePattern string
		jsonOutput  bool
	)

	fs.StringVar(&prr, "prr", "", "path to the PRR requirements document")
	fs.StringVar(&matrixPath, "matrix", "", "path to the control matrix CSV")
	fs.StringVar(&levels, "level", "", "filter by level: error,warning (comma-separated)")
	fs.StringVar(&codePattern, "code", "", "filter by issue code pattern (e.g., CM-*, XR-001)")
	fs.BoolVar(&jsonOutput, "json", false, "output JSON instead of TUI")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if prr == "" || matrixPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix show --prr <file> --matrix <file> [flags]")
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

	filtered := filterShown(result.Issues.Issues(), splitList(levels), codePattern)
	cat := catalog.Catalog()

	if jsonOutput || !isTerminal() {
		return showJSON(filtered, result.Matrix, cat)
	}

	if len(filtered) == 0 {
		fmt.Println("[show] no issues to display")
		return 0
	}

	m := tui.New(filtered, result.Matrix.Entries, cat, matrixPath)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: TUI failed: %v\n", err)
		return 2
	}
	return 0
}

// filterShown keeps issues whose level is listed (any when empty) and whose
// code matches pattern. A trailing "*" matches a code prefix.
func filterShown(all []issues.Issue, levels []string, pattern string) []issues.Issue {
	out := make([]issues.Issue, 0, len(all))
	for _, i := range all {
		if len(levels) > 0 && !containsFold(levels, string(i.Level)) {
			continue
		}
		if pattern != "" && !matchCode(pattern, i.Code) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func matchCode(pattern, code string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(strings.ToUpper(code), strings.ToUpper(prefix))
	}
	return strings.EqualFold(pattern, code)
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

func showJSON(filtered []issues.Issue, m *matrix.Matrix, cat map[string]catalog.CodeMeta) int {
	rows := make(map[int]matrix.Entry)
	if m != nil {
		for _, e := range m.Entries {
			rows[e.Row] = e
		}
	}

	details := make([]issueDetail, 0, len(filtered))
	for _, i := range filtered {
		d := issueDetail{Issue: i}
		if meta, ok := cat[i.Code]; ok {
			d.Title = meta.Title
			d.Component = meta.Component
			d.Remediation = meta.Remediation
		}
		if e, ok := rows[i.Row]; ok && i.Row > 0 {
			d.Entry = &e
		}
		details = append(details, d)
	}

	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: marshalling JSON: %v\n", err)
		return 2
	}
	fmt.Println(string(data))
	return 0
}

// isTerminal returns true if stdout is connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
