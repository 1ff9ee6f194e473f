package output

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FileChange is one entry of a dry-run preview.
type FileChange struct {
	// Path is the file's final location, relative to the project root.
	Path string

	// MovedFrom is set when the file or directory was relocated.
	MovedFrom string

	// Diff is a unified diff of the content change, empty for pure moves.
	Diff string
}

// RenderFileDiffs renders dry-run changes with colored unified diffs.
func RenderFileDiffs(changes []FileChange) string {
	if len(changes) == 0 {
		return "No changes detected.\n"
	}

	added := lipgloss.NewStyle().Foreground(colorGreen)
	removed := lipgloss.NewStyle().Foreground(colorRed)

	var sb strings.Builder
	moved, modified := 0, 0

	for _, c := range changes {
		if c.MovedFrom != "" {
			moved++
			sb.WriteString(StyleAction.Render("moved"))
			sb.WriteString(" ")
			sb.WriteString(StyleNoun.Render(c.MovedFrom))
			sb.WriteString(StyleDim.Render(" -> "))
			sb.WriteString(StyleNoun.Render(c.Path))
			sb.WriteString("\n")
		}
		if c.Diff == "" {
			continue
		}
		modified++
		for _, line := range strings.Split(strings.TrimRight(c.Diff, "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
				sb.WriteString(StyleSummary.Render(line))
			case strings.HasPrefix(line, "+"):
				sb.WriteString(added.Render(line))
			case strings.HasPrefix(line, "-"):
				sb.WriteString(removed.Render(line))
			case strings.HasPrefix(line, "@@"):
				sb.WriteString(StyleDim.Render(line))
			default:
				sb.WriteString(line)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Summary: ")
	sb.WriteString(diffSummary(modified, moved))
	sb.WriteString("\n")

	return sb.String()
}

// diffSummary returns a summary string of changes.
func diffSummary(modified, moved int) string {
	parts := make([]string, 0, 2)
	if modified > 0 {
		parts = append(parts, strconv.Itoa(modified)+" modified")
	}
	if moved > 0 {
		parts = append(parts, strconv.Itoa(moved)+" moved")
	}
	if len(parts) == 0 {
		return "No changes"
	}
	return strings.Join(parts, ", ")
}
