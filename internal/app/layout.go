package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AndreCostaaa/ejlv-builder/internal/pipeline"
	"github.com/AndreCostaaa/ejlv-builder/internal/ui"
)

const statusBarHeight = 1

// headerHeight is the title (plus margin), one line per stage and the step
// summary line.
func headerHeight(stages int) int {
	return 2 + stages + 1
}

func renderHeader(board string, stages []pipeline.Stage, state map[pipeline.Stage]ui.StageStatus, spin string, steps []string) string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(fmt.Sprintf("ejlv · %s", board)))
	b.WriteString("\n")

	for _, st := range stages {
		b.WriteString(ui.StageLine(string(st), state[st], spin))
		b.WriteString("\n")
	}

	if len(steps) > 0 {
		b.WriteString(ui.DimStyle.Render(steps[len(steps)-1]))
	}
	return b.String()
}

func renderStatusBar(width int, done bool, err error, report pipeline.Report) string {
	parts := []string{ui.RunBadge(done, pipeline.ErrorKind(err))}
	if done && err == nil && report.Artifact.Path != "" {
		parts = append(parts, ui.DimStyle.Render(report.Artifact.Path))
	}

	parts = append(parts,
		ui.KeyHint("↑/↓", "scroll"),
		ui.KeyHint(GlobalKeys.Follow.Help().Key, GlobalKeys.Follow.Help().Desc),
		ui.KeyHint(GlobalKeys.Clear.Help().Key, GlobalKeys.Clear.Help().Desc),
		ui.KeyHint(GlobalKeys.Quit.Help().Key, GlobalKeys.Quit.Help().Desc),
	)

	line := strings.Join(parts, "  ")
	return ui.StatusBarStyle.Width(width).Render(line)
}

func renderLayout(header, body, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}
