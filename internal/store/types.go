package store

import "time"

// StepRecord captures one idf.py invocation of a run.
type StepRecord struct {
	Action   string `json:"action"`
	ExitCode int    `json:"exit_code"`
	Duration string `json:"duration"`
}

// RunRecord captures the result of one build, flash and monitor run.
type RunRecord struct {
	ID         string       `json:"id"`
	Board      string       `json:"board"`
	ConfigName string       `json:"config_name,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	Stage      string       `json:"stage"`
	Success    bool         `json:"success"`
	Duration   string       `json:"duration"`
	Steps      []StepRecord `json:"steps,omitempty"`
	Fallback   bool         `json:"fallback,omitempty"`
	ResultPath string       `json:"result_path,omitempty"`
	ErrorKind  string       `json:"error_kind,omitempty"`
	Error      string       `json:"error,omitempty"`
	SerialLog  string       `json:"serial_log,omitempty"`
}
