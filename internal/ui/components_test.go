package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestOutputPanelShowsFollowState(t *testing.T) {
	out := OutputPanel("Output", "hello", 40, 0, true)
	top := strings.Split(out, "\n")[0]
	if !strings.Contains(top, "Output") || !strings.Contains(top, "following") {
		t.Fatalf("expected title and follow state in top border, got %q", top)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected content in panel, got %q", out)
	}

	paused := strings.Split(OutputPanel("Output", "", 40, 0, false), "\n")[0]
	if !strings.Contains(paused, "paused") {
		t.Fatalf("expected paused marker, got %q", paused)
	}
}

func TestOutputPanelSize(t *testing.T) {
	out := OutputPanel("Output", "a\nb", 30, 6, true)
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	for _, i := range []int{0, len(lines) - 1} {
		if w := lipgloss.Width(lines[i]); w != 30 {
			t.Errorf("line %d: expected width 30, got %d (%q)", i, w, lines[i])
		}
	}
}

func TestStageLine(t *testing.T) {
	if got := StageLine("build", StageRunning, "*"); got != "* build" {
		t.Errorf("expected spinner marker, got %q", got)
	}
	if got := StageLine("build", StageFailed, "*"); !strings.Contains(got, "failed") {
		t.Errorf("expected failed marker, got %q", got)
	}
	if got := StageLine("build", StageDone, "*"); !strings.Contains(got, "ok") {
		t.Errorf("expected ok marker, got %q", got)
	}
}

func TestRunBadge(t *testing.T) {
	if got := RunBadge(false, ""); !strings.Contains(got, "running") {
		t.Errorf("expected running, got %q", got)
	}
	if got := RunBadge(true, "timeout"); !strings.Contains(got, "timeout") {
		t.Errorf("expected error kind, got %q", got)
	}
	if got := RunBadge(true, ""); !strings.Contains(got, "done") {
		t.Errorf("expected done, got %q", got)
	}
}
