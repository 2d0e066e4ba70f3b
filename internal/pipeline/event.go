package pipeline

// Stage names a phase of a run.
type Stage string

const (
	StageBuild   Stage = "build"
	StageMonitor Stage = "flash-monitor"
)

// EventKind classifies an Event.
type EventKind int

const (
	StageStarted EventKind = iota
	StageFinished
	StepFinished
	ToolOutput
	SerialOutput
)

// Event reports progress of a run.
type Event struct {
	Kind     EventKind
	Stage    Stage
	Action   string // idf.py action, for StepFinished
	ExitCode int    // for StepFinished
	Line     string // for ToolOutput and SerialOutput
	Err      error  // for StageFinished
}

// Observer receives events. Observe is called from the goroutine running
// the pipeline and must not block for long.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
