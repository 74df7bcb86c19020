package tui

import (
	"fmt"
	"sort"
	"strings"
)

// renderDetail renders the detail view for a single issue.
func renderDetail(m *Model) string {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return "No issue selected."
	}

	i := m.filtered[m.cursor]
	meta, known := m.catalog[i.Code]

	var b strings.Builder

	badge := levelStyle(i.Level).Render(strings.ToUpper(string(i.Level)))
	b.WriteString(fmt.Sprintf(" %s · %s · %s\n",
		codeStyle.Render(i.Code),
		i.Message,
		badge))
	b.WriteString(headerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	b.WriteString(" " + locationStyle.Render(issueLocation(i)) + "\n\n")

	// Offending row.
	if e, ok := m.rows[i.Row]; ok && i.Row > 0 {
		b.WriteString(" " + remediationHeaderStyle.Render("Row") + "\n")
		for _, f := range []struct{ name, value string }{
			{"Requirement ID", e.RequirementID},
			{"Description", e.Description},
			{"Service", e.Service},
			{"Enforcement", e.EnforcementMethod},
			{"Automated check", e.AutomatedCheck},
			{"Evidence", e.EvidenceArtifact},
			{"Compliance", e.ComplianceMapping},
		} {
			b.WriteString(fmt.Sprintf("   %s %s\n", subtleStyle.Render(fmt.Sprintf("%-16s", f.name+":")), f.value))
		}
		b.WriteString("\n")
	}

	if known {
		b.WriteString(" " + componentStyle.Render(meta.Title+" ("+meta.Component+")") + "\n\n")
		if meta.Remediation != "" {
			b.WriteString(" " + remediationHeaderStyle.Render("Remediation") + "\n")
			b.WriteString(wrapText(meta.Remediation, m.width-4, "   "))
			b.WriteString("\n")
		}
	}

	if len(i.Metadata) > 0 {
		b.WriteString(" " + remediationHeaderStyle.Render("Metadata") + "\n")
		names := make([]string, 0, len(i.Metadata))
		for k := range i.Metadata {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			b.WriteString(fmt.Sprintf("   %s: %s\n", subtleStyle.Render(k), i.Metadata[k]))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(helpLine(detailHelp)))
	b.WriteString("\n")

	return b.String()
}

// wrapText wraps text at the given width with the given indent prefix.
func wrapText(text string, width int, indent string) string {
	if width <= 0 {
		width = 78
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(indent)
	lineLen := len(indent)

	for i, word := range words {
		if i > 0 && lineLen+1+len(word) > width {
			b.WriteString("\n" + indent)
			lineLen = len(indent)
		} else if i > 0 {
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	b.WriteString("\n")
	return b.String()
}
