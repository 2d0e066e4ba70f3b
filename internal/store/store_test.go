package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAddAndRetrieveRuns(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	record := RunRecord{
		ID:         "3b241101-e2bb-4255-8caf-4136c566a962",
		Board:      "esp32s3",
		ConfigName: "esp32s3_bench",
		Timestamp:  time.Now(),
		Stage:      "monitor",
		Success:    true,
		Duration:   "42s",
		Steps:      []StepRecord{{Action: "build", ExitCode: 0, Duration: "12s"}},
		ResultPath: "results/results_esp32s3_bench",
	}

	if err := s.AddRun(record); err != nil {
		t.Fatalf("AddRun failed: %v", err)
	}

	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Board != "esp32s3" {
		t.Errorf("expected board=esp32s3, got=%s", runs[0].Board)
	}
	if len(runs[0].Steps) != 1 || runs[0].Steps[0].Action != "build" {
		t.Errorf("unexpected steps: %+v", runs[0].Steps)
	}
}

func TestAddMultipleRuns(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	s.AddRun(RunRecord{ID: "a", Board: "esp32s3", Timestamp: time.Now(), Success: true})
	s.AddRun(RunRecord{ID: "b", Board: "esp32s3", Timestamp: time.Now(), ErrorKind: "timeout"})

	runs, _ := s.Runs()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[1].ErrorKind != "timeout" {
		t.Errorf("expected second run to keep its error kind, got %q", runs[1].ErrorKind)
	}
}

func TestEmptyStore(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs on empty store failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestSaveSerialLog(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	path, err := s.SaveSerialLog("run-1", "line1\npartial")
	if err != nil {
		t.Fatalf("SaveSerialLog failed: %v", err)
	}
	if path != filepath.Join(tmp, "logs", "run-1.log") {
		t.Errorf("unexpected log path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "line1\npartial" {
		t.Errorf("unexpected log content %q", data)
	}
}

func TestAddRunKeepsCorruptHistory(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	historyPath := filepath.Join(tmp, "history", "runs.json")
	os.MkdirAll(filepath.Dir(historyPath), 0o755)
	os.WriteFile(historyPath, []byte(`[{"id": "a", `), 0o644)

	if err := s.AddRun(RunRecord{ID: "b", Board: "esp32s3", Timestamp: time.Now(), Success: true}); err != nil {
		t.Fatalf("AddRun failed: %v", err)
	}

	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "b" {
		t.Fatalf("expected only the new run, got %+v", runs)
	}

	moved, _ := filepath.Glob(historyPath + ".corrupt-*")
	if len(moved) != 1 {
		t.Fatalf("expected corrupt history to be moved aside, got %v", moved)
	}
	data, err := os.ReadFile(moved[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[{"id": "a", ` {
		t.Errorf("corrupt history content changed: %q", data)
	}
}
