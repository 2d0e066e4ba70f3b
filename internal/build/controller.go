package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/AndreCostaaa/ejlv-builder/internal/board"
	"github.com/AndreCostaaa/ejlv-builder/internal/idf"
)

// Step records one idf.py invocation made by the controller.
type Step struct {
	State   State
	Outcome idf.Outcome
}

// Report describes the path a build took through the state machine.
type Report struct {
	Steps    []Step
	Final    State
	Duration time.Duration
}

// Fallback reports whether the clean reconfigure path was taken.
func (r Report) Fallback() bool {
	for _, s := range r.Steps {
		if s.State == StateReconfiguring {
			return true
		}
	}
	return false
}

// Controller drives idf.py through an incremental build and, when that
// fails, one set-target + build recovery.
type Controller struct {
	runner idf.Runner
	logger *slog.Logger
}

// NewController creates a build controller. A nil logger uses slog.Default.
func NewController(runner idf.Runner, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{runner: runner, logger: logger}
}

// Build brings the board's firmware up to date.
//
// An unsuccessful incremental build is expected when source files were added
// or removed, so it is not an error: the project is reconfigured with
// set-target (which also cleans it) and rebuilt once. A failure of either
// recovery step is returned as a *StepError.
func (c *Controller) Build(ctx context.Context, b board.Board) (Report, error) {
	start := time.Now()
	report := Report{Final: StateFailed}

	if err := b.Validate(); err != nil {
		return report, err
	}

	dir := b.Folder()
	state := StateInitialBuild
	for !state.Terminal() {
		a := action(state, b)
		c.logger.Debug("Running idf.py", "board", b.Name, "state", state, "action", a.String(), "dir", dir)

		out, err := c.runner.Run(ctx, dir, a)
		report.Steps = append(report.Steps, Step{State: state, Outcome: out})
		if err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		next, err := transition(state, out)
		if err != nil {
			c.logger.Error("Build recovery failed", "board", b.Name, "state", state, "exit_code", out.ExitCode)
			report.Duration = time.Since(start)
			return report, err
		}
		if state == StateInitialBuild && next == StateReconfiguring {
			c.logger.Warn("Build failed, performing a clean build. This happens when source files are added or removed",
				"board", b.Name, "exit_code", out.ExitCode)
		}
		state = next
	}

	report.Final = state
	report.Duration = time.Since(start)
	c.logger.Info("Build complete", "board", b.Name, "fallback", report.Fallback(), "duration", report.Duration)
	return report, nil
}
