package app

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AndreCostaaa/ejlv-builder/internal/monitor"
	"github.com/AndreCostaaa/ejlv-builder/internal/pipeline"
	"github.com/AndreCostaaa/ejlv-builder/internal/ui"
)

var runStages = []pipeline.Stage{pipeline.StageBuild, pipeline.StageMonitor}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTracksStages(t *testing.T) {
	m := New("esp32s3", runStages)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m = update(t, m, EventMsg{Event: pipeline.Event{Kind: pipeline.StageStarted, Stage: pipeline.StageBuild}})
	if m.state[pipeline.StageBuild] != ui.StageRunning {
		t.Fatalf("expected build running, got %v", m.state[pipeline.StageBuild])
	}

	m = update(t, m, EventMsg{Event: pipeline.Event{Kind: pipeline.StepFinished, Action: "build", ExitCode: 0}})
	m = update(t, m, EventMsg{Event: pipeline.Event{Kind: pipeline.StageFinished, Stage: pipeline.StageBuild}})
	if m.state[pipeline.StageBuild] != ui.StageDone {
		t.Fatalf("expected build done, got %v", m.state[pipeline.StageBuild])
	}
	if len(m.steps) != 1 || !strings.Contains(m.steps[0], "idf.py build") {
		t.Fatalf("unexpected steps %v", m.steps)
	}

	m = update(t, m, EventMsg{Event: pipeline.Event{
		Kind:  pipeline.StageFinished,
		Stage: pipeline.StageMonitor,
		Err:   &monitor.TimeoutError{},
	}})
	if m.state[pipeline.StageMonitor] != ui.StageFailed {
		t.Fatalf("expected monitor failed, got %v", m.state[pipeline.StageMonitor])
	}
}

func TestModelCollectsOutput(t *testing.T) {
	m := New("esp32s3", runStages)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m = update(t, m, EventMsg{Event: pipeline.Event{Kind: pipeline.ToolOutput, Line: "Project build complete."}})
	m = update(t, m, EventMsg{Event: pipeline.Event{Kind: pipeline.SerialOutput, Line: "Benchmark Over\r\n"}})

	out := m.output.String()
	if !strings.Contains(out, "Project build complete.") || !strings.Contains(out, "Benchmark Over") {
		t.Fatalf("expected both lines in output, got %q", out)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if m.output.Len() != 0 {
		t.Fatalf("expected output cleared, got %q", m.output.String())
	}
}

func TestModelFollowToggle(t *testing.T) {
	m := New("esp32s3", runStages)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if m.follow {
		t.Fatal("expected follow disabled")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if !m.follow {
		t.Fatal("expected follow enabled")
	}
}

func TestModelDone(t *testing.T) {
	m := New("esp32s3", runStages)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	failure := errors.New("boom")
	m = update(t, m, DoneMsg{Err: failure})
	if !m.Done() || m.Err() != failure {
		t.Fatalf("expected done with error, got done=%v err=%v", m.Done(), m.Err())
	}
	if !strings.Contains(m.View(), pipeline.KindInternal) {
		t.Fatalf("expected error kind in view:\n%s", m.View())
	}
}

func TestModelQuit(t *testing.T) {
	m := New("esp32s3", runStages)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestModelViewBeforeResize(t *testing.T) {
	if got := New("esp32s3", runStages).View(); got != "Loading..." {
		t.Fatalf("unexpected view %q", got)
	}
}
