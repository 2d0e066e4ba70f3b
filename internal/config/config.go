package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/AndreCostaaa/ejlv-builder/internal/board"
	"github.com/AndreCostaaa/ejlv-builder/internal/idf"
	"github.com/AndreCostaaa/ejlv-builder/internal/monitor"
	"github.com/AndreCostaaa/ejlv-builder/internal/serial"
)

const (
	DirName   = ".ejlv"
	EnvPrefix = "EJLV_"
)

// ErrInvalid reports a config value that cannot drive a run.
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration written as text ("2m0s") in JSON and env.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config holds all ejlv configuration.
type Config struct {
	Board          string   `json:"board,omitempty" env:"BOARD"`
	BoardConfig    string   `json:"board_config,omitempty" env:"BOARD_CONFIG"`
	ConfigPath     string   `json:"config_path,omitempty" env:"CONFIG_PATH"`
	SerialPort     string   `json:"serial_port,omitempty" env:"SERIAL_PORT"`
	SerialBaudRate int      `json:"serial_baud_rate,omitempty" env:"SERIAL_BAUD_RATE"`
	ReadTimeout    Duration `json:"read_timeout,omitempty" env:"READ_TIMEOUT"`
	Sentinel       string   `json:"sentinel,omitempty" env:"SENTINEL"`
	Shell          string   `json:"shell,omitempty" env:"SHELL_BIN"`
	ExportScript   string   `json:"export_script,omitempty" env:"IDF_EXPORT_SCRIPT"`
	IDF            string   `json:"idf,omitempty" env:"IDF"`
	EnvFile        string   `json:"env_file,omitempty" env:"ENV_FILE"`
	MetricsAddr    string   `json:"metrics_addr,omitempty" env:"METRICS_ADDR"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	sc := serial.DefaultConfig()
	cfg := Config{
		SerialPort:     sc.Port,
		SerialBaudRate: sc.BaudRate,
		ReadTimeout:    Duration(sc.ReadTimeout),
		Sentinel:       monitor.DefaultSentinel,
		Shell:          idf.DefaultShell,
		IDF:            idf.DefaultIDF,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.ExportScript = filepath.Join(home, "esp", "esp-idf", "export.sh")
	}
	return cfg
}

// Load reads and merges global and workspace configs.
// Order: defaults → global (~/.config/ejlv/config.json) → workspace (.ejlv/config.json).
func Load(workspaceRoot string) Config {
	cfg := Defaults()

	// Global config
	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ".config", "ejlv", "config.json")
		mergeFromFile(&cfg, globalPath)
	}

	// Workspace config
	if workspaceRoot != "" {
		wsPath := filepath.Join(workspaceRoot, DirName, "config.json")
		mergeFromFile(&cfg, wsPath)
	}

	return cfg
}

// ApplyEnv overrides cfg with EJLV_* variables from environ. Unset
// variables leave the field untouched.
func ApplyEnv(cfg *Config, environ []string) error {
	return env.ParseWithOptions(cfg, env.Options{
		Environment: env.ToMap(environ),
		Prefix:      EnvPrefix,
	})
}

// Save writes the config to the workspace .ejlv/config.json by default,
// or to the global config if global is true.
func Save(cfg Config, workspaceRoot string, global bool) error {
	var dir string
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".config", "ejlv")
	} else {
		dir = filepath.Join(workspaceRoot, DirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate rejects serial settings that would stop a run from ever ending:
// without a positive read timeout a silent device blocks forever.
func (c Config) Validate() error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read timeout must be positive, got %s", ErrInvalid, time.Duration(c.ReadTimeout))
	}
	if c.SerialBaudRate <= 0 {
		return fmt.Errorf("%w: serial baud rate must be positive, got %d", ErrInvalid, c.SerialBaudRate)
	}
	return nil
}

// BoardIdentity returns the board the config points at.
func (c Config) BoardIdentity() board.Board {
	return board.Board{
		Name:       c.Board,
		ConfigName: c.BoardConfig,
		ConfigPath: c.ConfigPath,
	}
}

// Serial returns the serial connection settings.
func (c Config) Serial() serial.Config {
	return serial.Config{
		Port:        c.SerialPort,
		BaudRate:    c.SerialBaudRate,
		ReadTimeout: time.Duration(c.ReadTimeout),
	}
}

// Tool returns the idf.py invocation settings.
func (c Config) Tool() idf.Tool {
	return idf.Tool{
		Shell:        c.Shell,
		ExportScript: c.ExportScript,
		IDF:          c.IDF,
		EnvFile:      c.EnvFile,
	}
}

func mergeFromFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return
	}

	mergeString(&cfg.Board, fileCfg.Board)
	mergeString(&cfg.BoardConfig, fileCfg.BoardConfig)
	mergeString(&cfg.ConfigPath, fileCfg.ConfigPath)
	mergeString(&cfg.SerialPort, fileCfg.SerialPort)
	if fileCfg.SerialBaudRate != 0 {
		cfg.SerialBaudRate = fileCfg.SerialBaudRate
	}
	if fileCfg.ReadTimeout != 0 {
		cfg.ReadTimeout = fileCfg.ReadTimeout
	}
	mergeString(&cfg.Sentinel, fileCfg.Sentinel)
	mergeString(&cfg.Shell, fileCfg.Shell)
	mergeString(&cfg.ExportScript, fileCfg.ExportScript)
	mergeString(&cfg.IDF, fileCfg.IDF)
	mergeString(&cfg.EnvFile, fileCfg.EnvFile)
	mergeString(&cfg.MetricsAddr, fileCfg.MetricsAddr)
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
