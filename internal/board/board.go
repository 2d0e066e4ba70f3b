package board

import (
	"errors"
	"path/filepath"
)

// Board identifies one target configuration of the job framework.
type Board struct {
	Name       string // Target chip name, passed to idf.py set-target
	ConfigName string // Board configuration name, keys the result file
	ConfigPath string // Path to the framework config file
}

// Validate reports whether the board carries enough to derive its paths.
func (b Board) Validate() error {
	if b.Name == "" {
		return errors.New("board name is empty")
	}
	if b.ConfigPath == "" {
		return errors.New("board config path is empty")
	}
	return nil
}

// Folder returns the ESP-IDF project directory for the board.
func (b Board) Folder() string {
	return filepath.Join(filepath.Dir(b.ConfigPath), "boards", b.Name)
}

// ResultsPath returns where the captured serial output is written.
func (b Board) ResultsPath() string {
	name := b.ConfigName
	if name == "" {
		name = b.Name
	}
	return filepath.Join(filepath.Dir(b.ConfigPath), "results", "results_"+name)
}
