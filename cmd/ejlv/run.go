package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/AndreCostaaa/ejlv-builder/internal/app"
	"github.com/AndreCostaaa/ejlv-builder/internal/config"
	"github.com/AndreCostaaa/ejlv-builder/internal/idf"
	"github.com/AndreCostaaa/ejlv-builder/internal/metrics"
	"github.com/AndreCostaaa/ejlv-builder/internal/pipeline"
	"github.com/AndreCostaaa/ejlv-builder/internal/serial"
	"github.com/AndreCostaaa/ejlv-builder/internal/store"
)

type result struct {
	report pipeline.Report
	err    error
}

func runPipeline(ctx context.Context, command string, cfg config.Config, st *store.Store, logger *slog.Logger) error {
	b := cfg.BoardIdentity()
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%w (set --board and --config-path, or configure them in %s/config.json)", err, config.DirName)
	}

	recorder, stopMetrics, err := startMetrics(cfg.MetricsAddr, logger)
	if err != nil {
		return err
	}
	defer stopMetrics()

	shell := idf.NewShellRunner(cfg.Tool())
	serialCfg := cfg.Serial()
	open := func() (serial.Stream, error) {
		logger.Info("Opening serial port", "port", serialCfg.Port, "baud", serialCfg.BaudRate, "read_timeout", serialCfg.ReadTimeout)
		return serial.Open(serialCfg)
	}

	stages := stagesFor(command)
	run := func(ctx context.Context, observer pipeline.Observer) (pipeline.Report, error) {
		shell.OnLine = func(line string) {
			observer.Observe(pipeline.Event{Kind: pipeline.ToolOutput, Line: line})
		}
		p := pipeline.New(shell, open, pipeline.Options{
			Sentinel: cfg.Sentinel,
			Store:    st,
			Metrics:  recorder,
			Observer: observer,
			Logger:   logger,
		})
		switch command {
		case "build":
			return p.Build(ctx, b)
		case "monitor":
			return p.Monitor(ctx, b)
		}
		return p.Run(ctx, b)
	}

	if !CLI.TUI {
		report, err := run(ctx, printObserver(os.Stdout, os.Stderr))
		if err == nil && report.Artifact.Path != "" {
			fmt.Fprintf(os.Stderr, "Result written to %s\n", report.Artifact.Path)
		}
		return err
	}
	return runTUI(ctx, b.Name, stages, run)
}

// runTUI runs the pipeline while a bubbletea program renders its events.
// Quitting the program early cancels the run.
func runTUI(ctx context.Context, boardName string, stages []pipeline.Stage, run func(context.Context, pipeline.Observer) (pipeline.Report, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(app.New(boardName, stages), tea.WithAltScreen(), tea.WithMouseCellMotion())
	done := make(chan result, 1)
	go func() {
		report, err := run(ctx, app.Observer(prog))
		prog.Send(app.DoneMsg{Report: report, Err: err})
		done <- result{report: report, err: err}
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-done
		return err
	}

	cancel()
	res := <-done
	return res.err
}

func stagesFor(command string) []pipeline.Stage {
	switch command {
	case "build":
		return []pipeline.Stage{pipeline.StageBuild}
	case "monitor":
		return []pipeline.Stage{pipeline.StageMonitor}
	}
	return []pipeline.Stage{pipeline.StageBuild, pipeline.StageMonitor}
}

// printObserver writes serial output to out and tool output to toolOut.
func printObserver(out, toolOut io.Writer) pipeline.Observer {
	return pipeline.ObserverFunc(func(e pipeline.Event) {
		switch e.Kind {
		case pipeline.ToolOutput:
			fmt.Fprintln(toolOut, e.Line)
		case pipeline.SerialOutput:
			fmt.Fprint(out, e.Line)
			if !strings.HasSuffix(e.Line, "\n") {
				fmt.Fprintln(out)
			}
		}
	})
}

// startMetrics serves Prometheus metrics on addr. An empty addr disables
// metrics.
func startMetrics(addr string, logger *slog.Logger) (metrics.Recorder, func(), error) {
	if addr == "" {
		return metrics.NoopRecorder{}, func() {}, nil
	}

	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", ln.Addr().String())

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
	return recorder, stop, nil
}
