package config

import (
	"os"
	"path/filepath"
)

// FindWorkspace walks up from startDir looking for a .ejlv/ directory and
// returns the directory containing it. It falls back to startDir when none
// is found, so a first run creates .ejlv/ where it was started.
func FindWorkspace(startDir string) string {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return startDir
	}

	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, DirName)); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start // reached filesystem root
		}
		dir = parent
	}
}
