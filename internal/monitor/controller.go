package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AndreCostaaa/ejlv-builder/internal/board"
	"github.com/AndreCostaaa/ejlv-builder/internal/idf"
	"github.com/AndreCostaaa/ejlv-builder/internal/serial"
)

// DefaultSentinel is printed by the benchmark firmware when it is done.
const DefaultSentinel = "Benchmark Over"

// Artifact is the serial output captured during a successful session.
type Artifact struct {
	Path     string
	Output   string
	Duration time.Duration
}

// OpenFunc opens the serial stream of the attached device.
type OpenFunc func() (serial.Stream, error)

// Controller flashes a board and captures its serial output.
type Controller struct {
	runner idf.Runner
	open   OpenFunc
	logger *slog.Logger

	// OnLine receives every chunk read from the device. May be nil.
	OnLine func(line string)
}

// NewController creates a flash-and-monitor controller. A nil logger uses
// slog.Default.
func NewController(runner idf.Runner, open OpenFunc, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{runner: runner, open: open, logger: logger}
}

// FlashAndMonitor flashes the board and reads its serial output until the
// accumulated text contains sentinel. The whole buffer is searched after
// every read, so a sentinel split across reads is still found.
//
// Every read is bounded by the port's read timeout; there is no deadline for
// the session as a whole. A read that returns no data yields a
// *TimeoutError carrying the output captured so far.
func (c *Controller) FlashAndMonitor(ctx context.Context, b board.Board, sentinel string) (Artifact, error) {
	if err := b.Validate(); err != nil {
		return Artifact{}, err
	}
	if sentinel == "" {
		sentinel = DefaultSentinel
	}

	path := b.ResultsPath()
	if err := removeStale(path); err != nil {
		return Artifact{}, err
	}

	out, err := c.runner.Run(ctx, b.Folder(), idf.Flash)
	if err != nil {
		return Artifact{}, err
	}
	if !out.Success() {
		return Artifact{}, fmt.Errorf("%w: idf.py flash exited with code %d", ErrFlashFailed, out.ExitCode)
	}
	c.logger.Info("Flashed board", "board", b.Name, "duration", out.Duration)

	stream, err := c.open()
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrSerialOpen, err)
	}
	defer stream.Close()
	// Unblock a pending read when the run is canceled.
	stop := context.AfterFunc(ctx, func() { stream.Close() })
	defer stop()

	start := time.Now()
	var output strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}

		line, err := stream.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return Artifact{}, ctx.Err()
			}
			return Artifact{}, fmt.Errorf("read serial: %w", err)
		}
		if len(line) == 0 {
			if ctx.Err() != nil {
				return Artifact{}, ctx.Err()
			}
			c.logger.Warn("Serial output stalled before the benchmark ended", "board", b.Name, "captured_bytes", output.Len())
			return Artifact{}, &TimeoutError{Output: output.String()}
		}

		output.Write(line)
		if c.OnLine != nil {
			c.OnLine(string(line))
		}

		if strings.Contains(output.String(), sentinel) {
			if err := writeResult(path, output.String()); err != nil {
				return Artifact{}, err
			}
			c.logger.Info("Benchmark finished", "board", b.Name, "result", path, "bytes", output.Len())
			return Artifact{Path: path, Output: output.String(), Duration: time.Since(start)}, nil
		}
	}
}
