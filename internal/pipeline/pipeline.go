package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AndreCostaaa/ejlv-builder/internal/board"
	"github.com/AndreCostaaa/ejlv-builder/internal/build"
	"github.com/AndreCostaaa/ejlv-builder/internal/idf"
	"github.com/AndreCostaaa/ejlv-builder/internal/metrics"
	"github.com/AndreCostaaa/ejlv-builder/internal/monitor"
	"github.com/AndreCostaaa/ejlv-builder/internal/store"
)

// Options configures a Pipeline. Zero values disable the optional parts.
type Options struct {
	Sentinel string
	Store    *store.Store
	Metrics  metrics.Recorder
	Observer Observer
	Logger   *slog.Logger
}

// Report summarizes a run.
type Report struct {
	RunID    string
	Board    board.Board
	Build    build.Report
	Artifact monitor.Artifact
	Duration time.Duration
}

// Pipeline runs the build and flash-and-monitor phases for a board, one
// after the other, and records the outcome.
type Pipeline struct {
	builder  *build.Controller
	monitor  *monitor.Controller
	sentinel string
	store    *store.Store
	metrics  metrics.Recorder
	observer Observer
	logger   *slog.Logger

	steps []store.StepRecord
}

// New creates a pipeline around runner and the serial opener.
func New(runner idf.Runner, open monitor.OpenFunc, opts Options) *Pipeline {
	p := &Pipeline{
		sentinel: opts.Sentinel,
		store:    opts.Store,
		metrics:  opts.Metrics,
		observer: opts.Observer,
		logger:   opts.Logger,
	}
	if p.metrics == nil {
		p.metrics = metrics.NoopRecorder{}
	}
	if p.observer == nil {
		p.observer = nopObserver{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	instrumented := &stepRunner{next: runner, p: p}
	p.builder = build.NewController(instrumented, p.logger)
	p.monitor = monitor.NewController(instrumented, open, p.logger)
	p.monitor.OnLine = func(line string) {
		p.observer.Observe(Event{Kind: SerialOutput, Stage: StageMonitor, Line: line})
	}
	return p
}

// Run builds the board, then flashes it and captures its benchmark output.
// A build failure stops the run before anything is flashed.
func (p *Pipeline) Run(ctx context.Context, b board.Board) (Report, error) {
	return p.run(ctx, b, true, true)
}

// Build runs only the build phase.
func (p *Pipeline) Build(ctx context.Context, b board.Board) (Report, error) {
	return p.run(ctx, b, true, false)
}

// Monitor runs only the flash-and-monitor phase. The firmware must already
// be built.
func (p *Pipeline) Monitor(ctx context.Context, b board.Board) (Report, error) {
	return p.run(ctx, b, false, true)
}

func (p *Pipeline) run(ctx context.Context, b board.Board, doBuild, doMonitor bool) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString(), Board: b}
	p.steps = nil

	logger := p.logger.With("run_id", report.RunID, "board", b.Name)
	logger.Info("Starting run", "build", doBuild, "monitor", doMonitor)

	var (
		err   error
		stage Stage
	)
	if doBuild {
		stage = StageBuild
		p.observer.Observe(Event{Kind: StageStarted, Stage: stage})
		report.Build, err = p.builder.Build(ctx, b)
		if report.Build.Fallback() {
			p.metrics.IncBuildFallback()
		}
		p.observer.Observe(Event{Kind: StageFinished, Stage: stage, Err: err})
	}

	if err == nil && doMonitor {
		stage = StageMonitor
		p.observer.Observe(Event{Kind: StageStarted, Stage: stage})
		report.Artifact, err = p.monitor.FlashAndMonitor(ctx, b, p.sentinel)
		p.observer.Observe(Event{Kind: StageFinished, Stage: stage, Err: err})
	}

	report.Duration = time.Since(start)
	kind := ErrorKind(err)
	outcome := kind
	if outcome == "" {
		outcome = "success"
	}
	p.metrics.ObserveRun(outcome, report.Duration)
	if stage == StageMonitor {
		p.metrics.ObserveCapturedBytes(capturedBytes(report, err))
	}

	if err != nil {
		logger.Error("Run failed", "stage", stage, "kind", kind, "error", err)
	} else {
		logger.Info("Run complete", "duration", report.Duration)
	}

	if recErr := p.record(report, stage, err, start); recErr != nil {
		logger.Warn("Failed to record run", "error", recErr)
	}
	return report, err
}

func (p *Pipeline) record(report Report, stage Stage, runErr error, start time.Time) error {
	if p.store == nil {
		return nil
	}

	rec := store.RunRecord{
		ID:         report.RunID,
		Board:      report.Board.Name,
		ConfigName: report.Board.ConfigName,
		Timestamp:  start,
		Stage:      string(stage),
		Success:    runErr == nil,
		Duration:   report.Duration.String(),
		Steps:      p.steps,
		Fallback:   report.Build.Fallback(),
		ResultPath: report.Artifact.Path,
		ErrorKind:  ErrorKind(runErr),
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	var timeoutErr *monitor.TimeoutError
	if errors.As(runErr, &timeoutErr) && timeoutErr.Output != "" {
		path, err := p.store.SaveSerialLog(report.RunID, timeoutErr.Output)
		if err != nil {
			return err
		}
		rec.SerialLog = path
	}

	return p.store.AddRun(rec)
}

func capturedBytes(report Report, err error) int {
	var timeoutErr *monitor.TimeoutError
	if errors.As(err, &timeoutErr) {
		return len(timeoutErr.Output)
	}
	return len(report.Artifact.Output)
}

// stepRunner records every idf.py invocation made on behalf of the pipeline.
type stepRunner struct {
	next idf.Runner
	p    *Pipeline
}

func (s *stepRunner) Run(ctx context.Context, dir string, action idf.Action) (idf.Outcome, error) {
	out, err := s.next.Run(ctx, dir, action)
	if err != nil {
		return out, err
	}

	s.p.steps = append(s.p.steps, store.StepRecord{
		Action:   action.String(),
		ExitCode: out.ExitCode,
		Duration: out.Duration.String(),
	})
	s.p.metrics.ObserveStep(action.String(), out.Duration, out.Success())
	s.p.observer.Observe(Event{Kind: StepFinished, Action: action.String(), ExitCode: out.ExitCode})
	return out, nil
}
