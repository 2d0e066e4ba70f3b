package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AndreCostaaa/ejlv-builder/internal/pipeline"
)

// EventMsg carries a pipeline event into the program.
type EventMsg struct {
	Event pipeline.Event
}

// DoneMsg is sent once the pipeline returns.
type DoneMsg struct {
	Report pipeline.Report
	Err    error
}

// Observer forwards pipeline events to p.
func Observer(p *tea.Program) pipeline.Observer {
	return pipeline.ObserverFunc(func(e pipeline.Event) {
		p.Send(EventMsg{Event: e})
	})
}
