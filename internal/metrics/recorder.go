// Package metrics records build, flash and monitor outcomes.
package metrics

import "time"

// Recorder receives observations from a run. NoopRecorder is used when
// metrics are not configured.
type Recorder interface {
	ObserveStep(action string, d time.Duration, success bool)
	IncBuildFallback()
	ObserveRun(outcome string, d time.Duration)
	ObserveCapturedBytes(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStep(string, time.Duration, bool) {}
func (NoopRecorder) IncBuildFallback()                       {}
func (NoopRecorder) ObserveRun(string, time.Duration)        {}
func (NoopRecorder) ObserveCapturedBytes(int)                {}
