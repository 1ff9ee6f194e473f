package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals elsewhere.
var (
	// ColorCyan is used for identifiable nouns: project names, paths, identifiers.
	ColorCyan = lipgloss.Color("14")

	// colorGreen marks updated files and successful moves.
	colorGreen = lipgloss.Color("82")

	// ColorYellow marks skipped rules.
	ColorYellow = lipgloss.Color("220")

	// colorRed marks removed lines in diffs.
	colorRed = lipgloss.Color("196")

	// colorBoldRed marks failed rules.
	colorBoldRed = lipgloss.Color("204")

	// colorGreenCheck is used for the completion checkmark.
	colorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns (project names, paths, bundle identifiers).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (cloning, rewriting, installing).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Rule outcome statuses.
const (
	StatusUpdated   = "updated"
	StatusMoved     = "moved"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
	statusFailed    = "failed"
)

// statusStyle returns the lipgloss style for a rule outcome.
// Unknown statuses return an unstyled default.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusUpdated, StatusMoved:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusUnchanged:
		return lipgloss.NewStyle().Faint(true)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case statusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minPathColumnWidth keeps status words aligned across step lines.
const minPathColumnWidth = 56

// FormatStepLine renders one rewrite step with a right-aligned, color-coded
// status suffix.
//
// Format: <kind>:<path>  <status>
func FormatStepLine(kind, path, status string) string {
	label := fmt.Sprintf("%s:", kind)

	padding := minPathColumnWidth - len(label) - len(path)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render(label) + StyleNoun.Render(path) + strings.Repeat(" ", padding) + statusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}

// checkLabelWidth is the column where FormatCheck details start.
const checkLabelWidth = 28

// FormatCheck renders a checkmark line with a label and an aligned, dimmed detail.
func FormatCheck(label, detail string) string {
	line := FormatCheckmark(label)
	if detail == "" {
		return line
	}
	padding := checkLabelWidth - len(label)
	if padding < 2 {
		padding = 2
	}
	return line + strings.Repeat(" ", padding) + StyleDim.Render(detail)
}
