package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindWorkspaceFromSubdirectory(t *testing.T) {
	tmp := t.TempDir()
	os.MkdirAll(filepath.Join(tmp, DirName), 0o755)
	subdir := filepath.Join(tmp, "boards", "esp32s3", "main")
	os.MkdirAll(subdir, 0o755)

	if got := FindWorkspace(subdir); got != tmp {
		t.Errorf("expected root=%s, got=%s", tmp, got)
	}
}

func TestFindWorkspaceNotFound(t *testing.T) {
	tmp := t.TempDir()
	if got := FindWorkspace(tmp); got != tmp {
		t.Errorf("expected fallback to %s, got=%s", tmp, got)
	}
}
