package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nox-hq/ctrlmatrix/core/issues"
)

var (
	// Level colors.
	colorError   = lipgloss.Color("#FF0000")
	colorWarning = lipgloss.Color("#FFD700")

	// UI colors.
	colorTitle    = lipgloss.Color("#FFFFFF")
	colorSubtle   = lipgloss.Color("#666666")
	colorSelected = lipgloss.Color("#7D56F4")

	// Styles.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSelected)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorSubtle)

	codeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#AAAAAA"))

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#88C0D0"))

	remediationHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#A3BE8C"))

	componentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B48EAD"))
)

// levelStyle returns the style for a level badge.
func levelStyle(level issues.Level) lipgloss.Style {
	color := colorWarning
	if level == issues.LevelError {
		color = colorError
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}

// levelBadge returns a short level string for list display.
func levelBadge(level issues.Level) string {
	if level == issues.LevelError {
		return levelStyle(level).Render(" ERR")
	}
	return levelStyle(level).Render("WARN")
}
