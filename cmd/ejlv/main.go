package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/AndreCostaaa/ejlv-builder/internal/config"
	"github.com/AndreCostaaa/ejlv-builder/internal/store"
)

var CLI struct {
	Workspace string `short:"w" help:"Directory holding the .ejlv/ config and history (default: nearest parent with .ejlv/)" type:"path"`
	Verbose   bool   `short:"v" help:"Enable verbose logging"`

	Board       string        `short:"b" help:"Target chip name passed to idf.py set-target"`
	BoardConfig string        `help:"Board configuration name, keys the result file"`
	ConfigPath  string        `help:"Path to the framework config file the board folders live next to" type:"path"`
	Port        string        `short:"p" help:"Serial device of the board"`
	Baud        int           `help:"Serial baud rate"`
	Timeout     time.Duration `help:"Per-read serial timeout"`
	Sentinel    string        `help:"Text that marks the end of the benchmark"`
	MetricsAddr string        `help:"Serve Prometheus metrics on this address while running"`
	TUI         bool          `name:"tui" help:"Show a live view of the run"`

	Run     struct{} `cmd:"" default:"1" help:"Build, flash and capture benchmark output"`
	Build   struct{} `cmd:"" help:"Build the firmware, reconfiguring once if the incremental build fails"`
	Monitor struct{} `cmd:"" help:"Flash the firmware and capture benchmark output"`
	Ports   struct{} `cmd:"" help:"List serial ports"`
	History struct {
		Limit int `short:"n" help:"Number of runs to show" default:"10"`
	} `cmd:"" help:"Show recorded runs"`
	Config struct {
		Save   bool `help:"Write the effective config to the workspace config file"`
		Global bool `help:"With --save, write the global config file instead"`
	} `cmd:"" help:"Show the effective config (files, EJLV_* env and flags merged)"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ejlv"),
		kong.Description("Build, flash and benchmark ESP-IDF boards."),
		kong.UsageOnError(),
	)

	if CLI.Workspace == "" {
		CLI.Workspace = config.FindWorkspace(".")
	}

	cfg := config.Load(CLI.Workspace)
	if err := config.ApplyEnv(&cfg, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}
	applyFlags(&cfg)

	st := store.New(filepath.Join(CLI.Workspace, config.DirName))

	logger, closeLog, err := newLogger(st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "run", "build", "monitor":
		if err := cfg.Validate(); err != nil {
			logger.Error("Invalid configuration", "error", err)
			closeLog()
			os.Exit(exitUsage)
		}
		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := runPipeline(sigCtx, ctx.Command(), cfg, st, logger)
		stop()
		if err != nil {
			closeLog()
			os.Exit(exitCode(err))
		}
	case "ports":
		if err := printPorts(os.Stdout); err != nil {
			slog.Error("Listing ports failed", "error", err)
			os.Exit(1)
		}
	case "history":
		if err := printHistory(os.Stdout, st, CLI.History.Limit); err != nil {
			slog.Error("Reading history failed", "error", err)
			os.Exit(1)
		}
	case "config":
		if err := showConfig(os.Stdout, cfg, CLI.Workspace, CLI.Config.Save, CLI.Config.Global); err != nil {
			slog.Error("Config failed", "error", err)
			if errors.Is(err, config.ErrInvalid) {
				os.Exit(exitUsage)
			}
			os.Exit(1)
		}
	}
}

// applyFlags overrides cfg with flags given on the command line.
func applyFlags(cfg *config.Config) {
	if CLI.Board != "" {
		cfg.Board = CLI.Board
	}
	if CLI.BoardConfig != "" {
		cfg.BoardConfig = CLI.BoardConfig
	}
	if CLI.ConfigPath != "" {
		cfg.ConfigPath = CLI.ConfigPath
	}
	if CLI.Port != "" {
		cfg.SerialPort = CLI.Port
	}
	if CLI.Baud != 0 {
		cfg.SerialBaudRate = CLI.Baud
	}
	if CLI.Timeout != 0 {
		cfg.ReadTimeout = config.Duration(CLI.Timeout)
	}
	if CLI.Sentinel != "" {
		cfg.Sentinel = CLI.Sentinel
	}
	if CLI.MetricsAddr != "" {
		cfg.MetricsAddr = CLI.MetricsAddr
	}
}

// newLogger logs to stderr, or to a file under the logs directory when the
// TUI owns the terminal.
func newLogger(st *store.Store) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if !CLI.TUI {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}

	dir, err := st.LogsDir()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "ejlv.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, opts)), func() { f.Close() }, nil
}
