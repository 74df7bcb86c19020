package tui

import (
	"fmt"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/issues"
)

// renderList renders the issue list view.
func renderList(m *Model) string {
	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf(" ctrlmatrix · %d issues", len(m.filtered)))
	if len(m.all) != len(m.filtered) {
		title += subtleStyle.Render(fmt.Sprintf(" (of %d total)", len(m.all)))
	}
	if m.source != "" {
		title += subtleStyle.Render("  " + m.source)
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	filterLine := subtleStyle.Render(" Filter: ") +
		"[" + m.filter.activeLevel() + "]"
	if m.filter.search != "" {
		filterLine += subtleStyle.Render("  Search: ") + "[" + m.filter.search + "]"
	}
	b.WriteString(filterLine)
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(subtleStyle.Render("  No issues match the current filters.\n"))
	} else {
		visibleLines := m.height - 8 // Header + filter + help lines.
		if visibleLines < 1 {
			visibleLines = 1
		}
		start := m.cursor - visibleLines/2
		if start < 0 {
			start = 0
		}
		end := start + visibleLines
		if end > len(m.filtered) {
			end = len(m.filtered)
			start = end - visibleLines
			if start < 0 {
				start = 0
			}
		}

		for i := start; i < end; i++ {
			b.WriteString(renderIssueLine(m.filtered[i], i == m.cursor))
			b.WriteString("\n")
		}
	}

	if m.filter.searching {
		b.WriteString("\n")
		b.WriteString(" Search: " + m.filter.search + "█")
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpLine(listHelp)))
	b.WriteString("\n")

	return b.String()
}

// issueLocation describes where an issue points: a matrix row or a
// requirement of the document.
func issueLocation(i issues.Issue) string {
	switch {
	case i.Row > 0:
		return fmt.Sprintf("row %d", i.Row)
	case i.RequirementID != "":
		return i.RequirementID
	default:
		return "matrix"
	}
}

// renderIssueLine renders a single issue line in the list.
func renderIssueLine(i issues.Issue, selected bool) string {
	code := codeStyle.Render(fmt.Sprintf("%-6s", i.Code))
	loc := locationStyle.Render(fmt.Sprintf("%-12s", issueLocation(i)))

	line := fmt.Sprintf(" %s  %s  %s  %s", levelBadge(i.Level), code, loc, i.Message)

	if selected {
		return selectedStyle.Render("▸") + line
	}
	return " " + line
}
