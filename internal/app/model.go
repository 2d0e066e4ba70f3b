package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AndreCostaaa/ejlv-builder/internal/pipeline"
	"github.com/AndreCostaaa/ejlv-builder/internal/ui"
)

// Model renders a single run: stage progress on top, tool and serial output
// below.
type Model struct {
	board  string
	stages []pipeline.Stage
	state  map[pipeline.Stage]ui.StageStatus
	steps  []string

	output   strings.Builder
	viewport viewport.Model
	spinner  spinner.Model
	follow   bool

	done   bool
	err    error
	report pipeline.Report

	width, height int
}

// New creates a model for a run over the given stages.
func New(board string, stages []pipeline.Stage) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.BoldStyle.Foreground(ui.Primary)

	state := make(map[pipeline.Stage]ui.StageStatus, len(stages))
	for _, st := range stages {
		state[st] = ui.StagePending
	}

	return Model{
		board:    board,
		stages:   stages,
		state:    state,
		viewport: viewport.New(0, 0),
		spinner:  s,
		follow:   true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Err returns the pipeline error once the run finished.
func (m Model) Err() error {
	return m.err
}

// Done reports whether the pipeline has returned.
func (m Model) Done() bool {
	return m.done
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-6, 1)
		m.viewport.Height = max(msg.Height-headerHeight(len(m.stages))-statusBarHeight-2, 1)
		m.refreshOutput()
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.report = msg.Report
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, GlobalKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, GlobalKeys.Follow):
			m.follow = !m.follow
			if m.follow {
				m.viewport.GotoBottom()
			}
			return m, nil
		case key.Matches(msg, GlobalKeys.Clear):
			m.output.Reset()
			m.refreshOutput()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) applyEvent(e pipeline.Event) {
	switch e.Kind {
	case pipeline.StageStarted:
		m.state[e.Stage] = ui.StageRunning
	case pipeline.StageFinished:
		if e.Err != nil {
			m.state[e.Stage] = ui.StageFailed
		} else {
			m.state[e.Stage] = ui.StageDone
		}
	case pipeline.StepFinished:
		m.steps = append(m.steps, fmt.Sprintf("idf.py %s → exit %d", e.Action, e.ExitCode))
	case pipeline.ToolOutput:
		m.output.WriteString(ui.ToolLineStyle.Render(e.Line))
		m.output.WriteString("\n")
		m.refreshOutput()
	case pipeline.SerialOutput:
		m.output.WriteString(ui.SerialLineStyle.Render(strings.TrimRight(e.Line, "\r\n")))
		m.output.WriteString("\n")
		m.refreshOutput()
	}
}

func (m *Model) refreshOutput() {
	m.viewport.SetContent(m.output.String())
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := renderHeader(m.board, m.stages, m.state, m.spinner.View(), m.steps)
	body := ui.OutputPanel("Output", m.viewport.View(), m.width-2, m.viewport.Height+2, m.follow)
	status := renderStatusBar(m.width, m.done, m.err, m.report)
	return renderLayout(header, ui.ContentStyle.Render(body), status)
}
