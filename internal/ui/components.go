package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StageStatus is the progress of one pipeline stage.
type StageStatus int

const (
	StagePending StageStatus = iota
	StageRunning
	StageDone
	StageFailed
)

// StageLine renders one row of the run header. spin is shown while the
// stage runs.
func StageLine(name string, status StageStatus, spin string) string {
	var marker string
	switch status {
	case StageRunning:
		marker = spin
	case StageDone:
		marker = badge("ok", Success)
	case StageFailed:
		marker = badge("failed", Error)
	default:
		marker = DimStyle.Render("·")
	}
	return marker + " " + name
}

// RunBadge summarizes the run for the status bar. errKind is the failure
// kind once the run has returned with an error.
func RunBadge(done bool, errKind string) string {
	switch {
	case !done:
		return badge("running", Warning)
	case errKind != "":
		return badge(errKind, Error)
	}
	return badge("done", Success)
}

// OutputPanel frames the run output. The top border names the panel and
// whether the view sticks to the newest line.
func OutputPanel(title, content string, width, height int, following bool) string {
	edgeColor, mode := Subtle, "paused"
	if following {
		edgeColor, mode = Secondary, "following"
	}
	edge := lipgloss.NewStyle().Foreground(edgeColor)

	label := BoldStyle.Render(title) + " " + DimStyle.Render(mode)
	// ╭─ <label> ─...─╮ spans width
	fill := max(width-lipgloss.Width(label)-5, 0)
	top := edge.Render("╭─ ") + label + edge.Render(" "+strings.Repeat("─", fill)+"╮")

	body := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderTop(false).
		BorderLeft(true).
		BorderRight(true).
		BorderBottom(true).
		BorderForeground(edgeColor).
		Padding(0, 1).
		Width(max(width-2, 0))
	if height > 2 {
		body = body.Height(height - 2)
	}
	return top + "\n" + body.Render(content)
}

// KeyHint renders a key binding hint for the status bar.
func KeyHint(k, desc string) string {
	return StatusBarKeyStyle.Render(k) + StatusBarStyle.Render(":"+desc)
}

func badge(text string, bg lipgloss.Color) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(bg).
		Padding(0, 1).
		Render(text)
}
