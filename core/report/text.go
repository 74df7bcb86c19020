package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nox-hq/ctrlmatrix/core"
)

var (
	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A3BE8C"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C00"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// TextReporter renders a human-readable summary. Styled output uses ANSI
// colors and should only be enabled for terminals.
type TextReporter struct {
	Styled bool
}

func (t *TextReporter) paint(s lipgloss.Style, text string) string {
	if !t.Styled {
		return text
	}
	return s.Render(text)
}

// Generate renders the summary of every result.
func (t *TextReporter) Generate(results ...*core.Result) ([]byte, error) {
	var b strings.Builder
	if err := t.Write(&b, results...); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// Write renders the summary of every result to w.
func (t *TextReporter) Write(w io.Writer, results ...*core.Result) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, t.render(r)); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextReporter) render(r *core.Result) string {
	var b strings.Builder

	status := Status(r)
	statusText := t.paint(passStyle, status)
	if status == StatusFailed {
		statusText = t.paint(failStyle, status)
	}
	name := ""
	if r.Matrix != nil && r.Matrix.Path != "" {
		name = " " + t.paint(subtleStyle, "("+r.Matrix.Path+")")
	}
	fmt.Fprintf(&b, "%s %s%s\n", t.paint(headingStyle, "Control matrix validation:"), statusText, name)

	s := r.CoverageStats
	fmt.Fprintf(&b, "  requirements: %.0f  mapped: %.0f  unmapped: %.0f  invalid: %.0f  duplicates: %.0f\n",
		s[core.StatTotalRequirements], s[core.StatMapped], s[core.StatUnmapped],
		s[core.StatInvalidReferences], s[core.StatDuplicates])
	fmt.Fprintf(&b, "  entries: %.0f  skipped rows: %.0f  coverage: %.2f%%\n",
		s[core.StatTotalEntries], s[core.StatSkippedRows], s[core.StatCoveragePercentage])

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n%s\n", t.paint(headingStyle, fmt.Sprintf("Errors (%d):", len(r.Errors))))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s %s\n", t.paint(errorStyle, "x"), e)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "\n%s\n", t.paint(headingStyle, fmt.Sprintf("Warnings (%d):", len(r.Warnings))))
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  %s %s\n", t.paint(warningStyle, "!"), w)
		}
	}

	if r.Compliance != nil && len(r.Compliance.Frameworks) > 0 {
		fmt.Fprintf(&b, "\n%s\n", t.paint(headingStyle, "Compliance coverage:"))
		for _, c := range r.Compliance.Frameworks {
			fmt.Fprintf(&b, "  %-10s %d/%d critical controls (%.1f%%)\n",
				c.Name, len(c.CriticalMatched), c.CriticalTotal, c.Ratio*100)
		}
		if len(r.Compliance.DomainGaps) > 0 {
			fmt.Fprintf(&b, "  %s %s\n", t.paint(subtleStyle, "domain gaps:"), strings.Join(r.Compliance.DomainGaps, ", "))
		}
	}

	if r.Policy != nil {
		fmt.Fprintf(&b, "\n%s\n", r.Policy.Summary)
		for _, v := range r.Policy.Violations {
			fmt.Fprintf(&b, "  %s %s\n", t.paint(errorStyle, "x"), v)
		}
		for _, w := range r.Policy.Warnings {
			fmt.Fprintf(&b, "  %s %s\n", t.paint(warningStyle, "!"), w)
		}
	}
	return b.String()
}
